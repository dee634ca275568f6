// Package contentstore defines where page documents live.
package contentstore

import (
	"context"
	"errors"
	"time"
)

var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrRevisionConflict = errors.New("document was modified concurrently")
	ErrDocumentExists   = errors.New("document already exists")
)

// StoredDocument is one page as persisted. Content holds the raw JSON text.
type StoredDocument struct {
	ID        string    `json:"id" bson:"_id"`
	Title     string    `json:"title" bson:"title"`
	Content   []byte    `json:"content" bson:"-"`
	Revision  int64     `json:"revision" bson:"revision"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

type PageSummary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Revision  int64     `json:"revision"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DocumentStore reads and replaces whole documents.
//
// SaveDocument writes doc.Content only if the stored revision still equals
// doc.Revision, and returns the new revision. A zero expected revision with no
// stored row is a conflict, not a create.
type DocumentStore interface {
	LoadDocument(ctx context.Context, id string) (*StoredDocument, error)
	SaveDocument(ctx context.Context, doc StoredDocument) (int64, error)
}

type PageStore interface {
	DocumentStore
	ListPages(ctx context.Context) ([]PageSummary, error)
	CreatePage(ctx context.Context, doc StoredDocument) (*StoredDocument, error)
	DeletePage(ctx context.Context, id string) error
}
