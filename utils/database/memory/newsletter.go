package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"assistante-suite/utils"
)

type NewsletterRepository struct {
	mu          sync.Mutex
	subscribers map[string]*utils.Subscriber
	nextID      int64
	now         func() time.Time
}

func NewNewsletterRepository() *NewsletterRepository {
	return &NewsletterRepository{subscribers: make(map[string]*utils.Subscriber), now: time.Now}
}

func (r *NewsletterRepository) UpsertPending(_ context.Context, email, token string) (*utils.Subscriber, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.subscribers[email]; ok {
		if s.Status != utils.SubscriberStatusConfirmed {
			s.Status = utils.SubscriberStatusPending
			s.Token = token
			s.ConfirmedAt = nil
		}
		out := *s
		return &out, nil
	}
	r.nextID++
	s := &utils.Subscriber{
		ID:        r.nextID,
		Email:     email,
		Status:    utils.SubscriberStatusPending,
		Token:     token,
		CreatedAt: r.now(),
	}
	r.subscribers[email] = s
	out := *s
	return &out, nil
}

func (r *NewsletterRepository) SetStatusByToken(_ context.Context, token string, status utils.SubscriberStatus) (*utils.Subscriber, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.subscribers {
		if s.Token != token {
			continue
		}
		s.Status = status
		if status == utils.SubscriberStatusConfirmed {
			at := r.now()
			s.ConfirmedAt = &at
		}
		out := *s
		return &out, nil
	}
	return nil, utils.ErrNotFound
}

func (r *NewsletterRepository) ListSubscribers(_ context.Context, status utils.SubscriberStatus) ([]utils.Subscriber, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]utils.Subscriber, 0, len(r.subscribers))
	for _, s := range r.subscribers {
		if status != "" && s.Status != status {
			continue
		}
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}
