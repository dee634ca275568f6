package utils

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record conflicts with an existing one")
)

type BlogCategory struct {
	ID   int64  `json:"id"`
	Slug string `json:"slug"`
	Name string `json:"name"`
}

type BlogPost struct {
	ID           int64      `json:"id"`
	Slug         string     `json:"slug"`
	Title        string     `json:"title"`
	Excerpt      string     `json:"excerpt"`
	BodyMarkdown string     `json:"body_markdown"`
	BodyHTML     string     `json:"body_html,omitempty"`
	CategoryID   *int64     `json:"category_id,omitempty"`
	Published    bool       `json:"published"`
	PublishedAt  *time.Time `json:"published_at,omitempty"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type PostFilter struct {
	CategorySlug  string
	PublishedOnly bool
	Limit         int
	Offset        int
}

type Subscriber struct {
	ID          int64            `json:"id"`
	Email       string           `json:"email"`
	Status      SubscriberStatus `json:"status"`
	Token       string           `json:"-"`
	CreatedAt   time.Time        `json:"created_at"`
	ConfirmedAt *time.Time       `json:"confirmed_at,omitempty"`
}

type Appointment struct {
	ID              int64             `json:"id"`
	Name            string            `json:"name"`
	Email           string            `json:"email"`
	Phone           string            `json:"phone,omitempty"`
	StartsAt        time.Time         `json:"starts_at"`
	DurationMinutes int               `json:"duration_minutes"`
	Message         string            `json:"message,omitempty"`
	Status          AppointmentStatus `json:"status"`
	CreatedAt       time.Time         `json:"created_at"`
}

type BlogRepository interface {
	ListPosts(ctx context.Context, filter PostFilter) ([]BlogPost, int, error)
	GetPostBySlug(ctx context.Context, slug string) (*BlogPost, error)
	CreatePost(ctx context.Context, post *BlogPost) error
	UpdatePost(ctx context.Context, post *BlogPost) error
	DeletePost(ctx context.Context, id int64) error
	ListCategories(ctx context.Context) ([]BlogCategory, error)
	CreateCategory(ctx context.Context, category *BlogCategory) error
	DeleteCategory(ctx context.Context, id int64) error
}

type NewsletterRepository interface {
	// UpsertPending stores email as pending with a fresh token unless it is
	// already confirmed, in which case the stored row is returned untouched.
	UpsertPending(ctx context.Context, email, token string) (*Subscriber, error)
	SetStatusByToken(ctx context.Context, token string, status SubscriberStatus) (*Subscriber, error)
	ListSubscribers(ctx context.Context, status SubscriberStatus) ([]Subscriber, error)
}

type AppointmentRepository interface {
	// ListBetween returns the appointments that are not cancelled and start in [from, to).
	ListBetween(ctx context.Context, from, to time.Time) ([]Appointment, error)
	// Create fails with ErrConflict when a live appointment already starts at the same time.
	Create(ctx context.Context, appointment *Appointment) error
	List(ctx context.Context, status AppointmentStatus) ([]Appointment, error)
	UpdateStatus(ctx context.Context, id int64, status AppointmentStatus) (*Appointment, error)
}
