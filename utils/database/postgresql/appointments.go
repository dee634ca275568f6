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

type AppointmentRepository struct {
	client *Client
	now    func() time.Time
}

func NewAppointmentRepository(client *Client) *AppointmentRepository {
	return &AppointmentRepository{client: client, now: time.Now}
}

var appointmentColumns = []string{"id", "name", "email", "phone", "starts_at", "duration_minutes", "message", "status", "created_at"}

func scanAppointment(row interface{ Scan(...any) error }) (*utils.Appointment, error) {
	var (
		a      utils.Appointment
		status string
	)
	if err := row.Scan(&a.ID, &a.Name, &a.Email, &a.Phone, &a.StartsAt, &a.DurationMinutes, &a.Message, &status, &a.CreatedAt); err != nil {
		return nil, err
	}
	a.Status = utils.AppointmentStatus(status)
	return &a, nil
}

func collectAppointments(rows *sql.Rows) ([]utils.Appointment, error) {
	defer rows.Close()
	out := make([]utils.Appointment, 0)
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func liveBetween(from, to time.Time) *entsql.Predicate {
	return entsql.And(
		entsql.GTE("starts_at", from),
		entsql.LT("starts_at", to),
		entsql.NEQ("status", string(utils.AppointmentStatusCancelled)),
	)
}

func (r *AppointmentRepository) ListBetween(ctx context.Context, from, to time.Time) ([]utils.Appointment, error) {
	return r.listBetween(ctx, r.client.DB(), from, to)
}

func (r *AppointmentRepository) listBetween(ctx context.Context, q querier, from, to time.Time) ([]utils.Appointment, error) {
	query, args := builder().Select(appointmentColumns...).From(entsql.Table(tableAppointment)).
		Where(liveBetween(from, to)).
		OrderBy("starts_at").
		Query()
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return collectAppointments(rows)
}

// Create serialises bookings of the same day behind a transaction-scoped
// advisory lock, then rejects overlaps with live appointments.
func (r *AppointmentRepository) Create(ctx context.Context, a *utils.Appointment) error {
	if a.Status == "" {
		a.Status = utils.AppointmentStatusPending
	}
	a.CreatedAt = r.now()
	end := a.StartsAt.Add(time.Duration(a.DurationMinutes) * time.Minute)
	day := a.StartsAt.UTC().Truncate(24 * time.Hour)
	return r.client.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", day.Unix()); err != nil {
			return fmt.Errorf("lock day: %w", err)
		}
		existing, err := r.listBetween(ctx, tx, day.Add(-24*time.Hour), day.Add(48*time.Hour))
		if err != nil {
			return err
		}
		for _, e := range existing {
			eEnd := e.StartsAt.Add(time.Duration(e.DurationMinutes) * time.Minute)
			if e.StartsAt.Before(end) && a.StartsAt.Before(eEnd) {
				return utils.ErrConflict
			}
		}
		query, args := builder().Insert(tableAppointment).
			Columns(appointmentColumns[1:]...).
			Values(a.Name, a.Email, a.Phone, a.StartsAt, a.DurationMinutes, a.Message, string(a.Status), a.CreatedAt).
			Returning("id").
			Query()
		if err := tx.QueryRowContext(ctx, query, args...).Scan(&a.ID); err != nil {
			return fmt.Errorf("insert appointment: %w", err)
		}
		return nil
	})
}

func (r *AppointmentRepository) List(ctx context.Context, status utils.AppointmentStatus) ([]utils.Appointment, error) {
	sel := builder().Select(appointmentColumns...).From(entsql.Table(tableAppointment)).
		OrderBy(entsql.Desc("starts_at"))
	if status != "" {
		sel.Where(entsql.EQ("status", string(status)))
	}
	query, args := sel.Query()
	rows, err := r.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return collectAppointments(rows)
}

func (r *AppointmentRepository) UpdateStatus(ctx context.Context, id int64, status utils.AppointmentStatus) (*utils.Appointment, error) {
	query, args := builder().Update(tableAppointment).
		Set("status", string(status)).
		Where(entsql.EQ("id", id)).
		Returning(appointmentColumns...).
		Query()
	a, err := scanAppointment(r.client.DB().QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update appointment %d: %w", id, err)
	}
	return a, nil
}
