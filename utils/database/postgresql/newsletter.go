package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"assistante-suite/utils"

	entsql "entgo.io/ent/dialect/sql"
)

type NewsletterRepository struct {
	client *Client
	now    func() time.Time
}

func NewNewsletterRepository(client *Client) *NewsletterRepository {
	return &NewsletterRepository{client: client, now: time.Now}
}

var subscriberColumns = []string{"id", "email", "status", "token", "created_at", "confirmed_at"}

func scanSubscriber(row interface{ Scan(...any) error }) (*utils.Subscriber, error) {
	var (
		s           utils.Subscriber
		status      string
		confirmedAt sql.NullTime
	)
	if err := row.Scan(&s.ID, &s.Email, &status, &s.Token, &s.CreatedAt, &confirmedAt); err != nil {
		return nil, err
	}
	s.Status = utils.SubscriberStatus(status)
	if confirmedAt.Valid {
		s.ConfirmedAt = &confirmedAt.Time
	}
	return &s, nil
}

func (r *NewsletterRepository) UpsertPending(ctx context.Context, email, token string) (*utils.Subscriber, error) {
	var out *utils.Subscriber
	err := r.client.withTx(ctx, func(tx *sql.Tx) error {
		query, args := builder().Select(subscriberColumns...).From(entsql.Table(tableSubscribers)).
			Where(entsql.EQ("email", email)).
			ForUpdate().
			Query()
		existing, err := scanSubscriber(tx.QueryRowContext(ctx, query, args...))
		switch {
		case errors.Is(err, sql.ErrNoRows):
			sub := utils.Subscriber{Email: email, Status: utils.SubscriberStatusPending, Token: token, CreatedAt: r.now()}
			query, args = builder().Insert(tableSubscribers).
				Columns("email", "status", "token", "created_at").
				Values(sub.Email, string(sub.Status), sub.Token, sub.CreatedAt).
				Returning("id").
				Query()
			if err := tx.QueryRowContext(ctx, query, args...).Scan(&sub.ID); err != nil {
				if isUniqueViolation(err) {
					return utils.ErrConflict
				}
				return err
			}
			out = &sub
			return nil
		case err != nil:
			return err
		case existing.Status == utils.SubscriberStatusConfirmed:
			out = existing
			return nil
		}
		query, args = builder().Update(tableSubscribers).
			Set("status", string(utils.SubscriberStatusPending)).
			Set("token", token).
			SetNull("confirmed_at").
			Where(entsql.EQ("id", existing.ID)).
			Query()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}
		existing.Status = utils.SubscriberStatusPending
		existing.Token = token
		existing.ConfirmedAt = nil
		out = existing
		return nil
	})
	if err != nil {
		if errors.Is(err, utils.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("upsert subscriber: %w", err)
	}
	return out, nil
}

func (r *NewsletterRepository) SetStatusByToken(ctx context.Context, token string, status utils.SubscriberStatus) (*utils.Subscriber, error) {
	update := builder().Update(tableSubscribers).
		Set("status", string(status)).
		Where(entsql.EQ("token", token)).
		Returning(subscriberColumns...)
	if status == utils.SubscriberStatusConfirmed {
		update.Set("confirmed_at", r.now())
	}
	query, args := update.Query()
	sub, err := scanSubscriber(r.client.DB().QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update subscriber: %w", err)
	}
	return sub, nil
}

func (r *NewsletterRepository) ListSubscribers(ctx context.Context, status utils.SubscriberStatus) ([]utils.Subscriber, error) {
	sel := builder().Select(subscriberColumns...).From(entsql.Table(tableSubscribers)).
		OrderBy(entsql.Desc("created_at"))
	if status != "" {
		sel.Where(entsql.EQ("status", string(status)))
	}
	query, args := sel.Query()
	rows, err := r.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list subscribers: %w", err)
	}
	defer rows.Close()
	out := make([]utils.Subscriber, 0)
	for rows.Next() {
		s, err := scanSubscriber(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}
