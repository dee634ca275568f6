package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"assistante-suite/utils/contentstore"

	entsql "entgo.io/ent/dialect/sql"
)

// PageStore keeps page documents in the site_pages table.
type PageStore struct {
	client *Client
	now    func() time.Time
}

func NewPageStore(client *Client) *PageStore {
	return &PageStore{client: client, now: time.Now}
}

var pageSelectColumns = []string{"id", "title", "content", "revision", "updated_at"}

func scanPage(row interface{ Scan(...any) error }) (*contentstore.StoredDocument, error) {
	var (
		doc     contentstore.StoredDocument
		content string
	)
	if err := row.Scan(&doc.ID, &doc.Title, &content, &doc.Revision, &doc.UpdatedAt); err != nil {
		return nil, err
	}
	doc.Content = []byte(content)
	return &doc, nil
}

func (s *PageStore) LoadDocument(ctx context.Context, id string) (*contentstore.StoredDocument, error) {
	query, args := builder().Select(pageSelectColumns...).
		From(entsql.Table(tablePages)).
		Where(entsql.EQ("id", id)).
		Query()
	doc, err := scanPage(s.client.DB().QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, contentstore.ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load page %s: %w", id, err)
	}
	return doc, nil
}

// SaveDocument updates the row only while its revision still matches.
func (s *PageStore) SaveDocument(ctx context.Context, doc contentstore.StoredDocument) (int64, error) {
	update := builder().Update(tablePages).
		Set("content", string(doc.Content)).
		Set("updated_at", s.now()).
		Add("revision", 1).
		Where(entsql.And(entsql.EQ("id", doc.ID), entsql.EQ("revision", doc.Revision))).
		Returning("revision")
	if doc.Title != "" {
		update.Set("title", doc.Title)
	}
	query, args := update.Query()

	var revision int64
	err := s.client.DB().QueryRowContext(ctx, query, args...).Scan(&revision)
	if errors.Is(err, sql.ErrNoRows) {
		if _, loadErr := s.LoadDocument(ctx, doc.ID); errors.Is(loadErr, contentstore.ErrDocumentNotFound) {
			return 0, contentstore.ErrDocumentNotFound
		}
		return 0, contentstore.ErrRevisionConflict
	}
	if err != nil {
		return 0, fmt.Errorf("save page %s: %w", doc.ID, err)
	}
	return revision, nil
}

func (s *PageStore) ListPages(ctx context.Context) ([]contentstore.PageSummary, error) {
	query, args := builder().Select("id", "title", "revision", "updated_at").
		From(entsql.Table(tablePages)).
		OrderBy("id").
		Query()
	rows, err := s.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	defer rows.Close()
	pages := make([]contentstore.PageSummary, 0)
	for rows.Next() {
		var p contentstore.PageSummary
		if err := rows.Scan(&p.ID, &p.Title, &p.Revision, &p.UpdatedAt); err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

func (s *PageStore) CreatePage(ctx context.Context, doc contentstore.StoredDocument) (*contentstore.StoredDocument, error) {
	doc.Revision = 1
	doc.UpdatedAt = s.now()
	query, args := builder().Insert(tablePages).
		Columns(pageSelectColumns...).
		Values(doc.ID, doc.Title, string(doc.Content), doc.Revision, doc.UpdatedAt).
		Query()
	if _, err := s.client.DB().ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return nil, contentstore.ErrDocumentExists
		}
		return nil, fmt.Errorf("create page %s: %w", doc.ID, err)
	}
	return &doc, nil
}

func (s *PageStore) DeletePage(ctx context.Context, id string) error {
	query, args := builder().Delete(tablePages).Where(entsql.EQ("id", id)).Query()
	res, err := s.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete page %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return contentstore.ErrDocumentNotFound
	}
	return nil
}
