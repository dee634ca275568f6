package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"assistante-suite/utils"
)

type AppointmentRepository struct {
	mu           sync.Mutex
	appointments []utils.Appointment
	nextID       int64
	now          func() time.Time
}

func NewAppointmentRepository() *AppointmentRepository {
	return &AppointmentRepository{now: time.Now}
}

func end(a utils.Appointment) time.Time {
	return a.StartsAt.Add(time.Duration(a.DurationMinutes) * time.Minute)
}

func (r *AppointmentRepository) ListBetween(_ context.Context, from, to time.Time) ([]utils.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]utils.Appointment, 0)
	for _, a := range r.appointments {
		if a.Status == utils.AppointmentStatusCancelled {
			continue
		}
		if !a.StartsAt.Before(from) && a.StartsAt.Before(to) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartsAt.Before(out[j].StartsAt) })
	return out, nil
}

func (r *AppointmentRepository) Create(_ context.Context, a *utils.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a.Status == "" {
		a.Status = utils.AppointmentStatusPending
	}
	for _, e := range r.appointments {
		if e.Status == utils.AppointmentStatusCancelled {
			continue
		}
		if e.StartsAt.Before(end(*a)) && a.StartsAt.Before(end(e)) {
			return utils.ErrConflict
		}
	}
	r.nextID++
	a.ID = r.nextID
	a.CreatedAt = r.now()
	r.appointments = append(r.appointments, *a)
	return nil
}

func (r *AppointmentRepository) List(_ context.Context, status utils.AppointmentStatus) ([]utils.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]utils.Appointment, 0, len(r.appointments))
	for _, a := range r.appointments {
		if status == "" || a.Status == status {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartsAt.After(out[j].StartsAt) })
	return out, nil
}

func (r *AppointmentRepository) UpdateStatus(_ context.Context, id int64, status utils.AppointmentStatus) (*utils.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.appointments {
		if r.appointments[i].ID == id {
			r.appointments[i].Status = status
			out := r.appointments[i]
			return &out, nil
		}
	}
	return nil, utils.ErrNotFound
}
