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

type BlogRepository struct {
	client *Client
	now    func() time.Time
}

func NewBlogRepository(client *Client) *BlogRepository {
	return &BlogRepository{client: client, now: time.Now}
}

var postColumns = []string{"id", "slug", "title", "excerpt", "body_markdown", "category_id", "published", "published_at", "updated_at"}

func scanPost(row interface{ Scan(...any) error }) (*utils.BlogPost, error) {
	var (
		p           utils.BlogPost
		categoryID  sql.NullInt64
		publishedAt sql.NullTime
	)
	if err := row.Scan(&p.ID, &p.Slug, &p.Title, &p.Excerpt, &p.BodyMarkdown, &categoryID, &p.Published, &publishedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if categoryID.Valid {
		p.CategoryID = &categoryID.Int64
	}
	if publishedAt.Valid {
		p.PublishedAt = &publishedAt.Time
	}
	return &p, nil
}

func postFilter(filter utils.PostFilter) *entsql.Predicate {
	preds := make([]*entsql.Predicate, 0, 2)
	if filter.PublishedOnly {
		preds = append(preds, entsql.IsTrue("published"))
	}
	if filter.CategorySlug != "" {
		preds = append(preds, entsql.In("category_id",
			entsql.Select("id").From(entsql.Table(tableCategories)).Where(entsql.EQ("slug", filter.CategorySlug))))
	}
	if len(preds) == 0 {
		return nil
	}
	return entsql.And(preds...)
}

// ListPosts returns one page of posts, newest first, and the total match count.
func (r *BlogRepository) ListPosts(ctx context.Context, filter utils.PostFilter) ([]utils.BlogPost, int, error) {
	countSel := builder().Select().From(entsql.Table(tablePosts)).Count()
	listSel := builder().Select(postColumns...).From(entsql.Table(tablePosts)).
		OrderBy(entsql.Desc("published_at"), entsql.Desc("id"))
	if p := postFilter(filter); p != nil {
		countSel.Where(p)
		listSel.Where(postFilter(filter))
	}
	if filter.Limit > 0 {
		listSel.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		listSel.Offset(filter.Offset)
	}

	var total int
	query, args := countSel.Query()
	if err := r.client.DB().QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count posts: %w", err)
	}

	query, args = listSel.Query()
	rows, err := r.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()
	posts := make([]utils.BlogPost, 0)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, 0, err
		}
		posts = append(posts, *p)
	}
	return posts, total, rows.Err()
}

func (r *BlogRepository) GetPostBySlug(ctx context.Context, slug string) (*utils.BlogPost, error) {
	query, args := builder().Select(postColumns...).From(entsql.Table(tablePosts)).
		Where(entsql.EQ("slug", slug)).Query()
	p, err := scanPost(r.client.DB().QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, utils.ErrNotFound
	}
	return p, err
}

func (r *BlogRepository) CreatePost(ctx context.Context, post *utils.BlogPost) error {
	post.UpdatedAt = r.now()
	if post.Published && post.PublishedAt == nil {
		at := post.UpdatedAt
		post.PublishedAt = &at
	}
	query, args := builder().Insert(tablePosts).
		Columns(postColumns[1:]...).
		Values(post.Slug, post.Title, post.Excerpt, post.BodyMarkdown, post.CategoryID, post.Published, post.PublishedAt, post.UpdatedAt).
		Returning("id").
		Query()
	if err := r.client.DB().QueryRowContext(ctx, query, args...).Scan(&post.ID); err != nil {
		if isUniqueViolation(err) {
			return utils.ErrConflict
		}
		return fmt.Errorf("create post: %w", err)
	}
	return nil
}

func (r *BlogRepository) UpdatePost(ctx context.Context, post *utils.BlogPost) error {
	post.UpdatedAt = r.now()
	if post.Published && post.PublishedAt == nil {
		at := post.UpdatedAt
		post.PublishedAt = &at
	}
	query, args := builder().Update(tablePosts).
		Set("slug", post.Slug).
		Set("title", post.Title).
		Set("excerpt", post.Excerpt).
		Set("body_markdown", post.BodyMarkdown).
		Set("category_id", post.CategoryID).
		Set("published", post.Published).
		Set("published_at", post.PublishedAt).
		Set("updated_at", post.UpdatedAt).
		Where(entsql.EQ("id", post.ID)).
		Query()
	res, err := r.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return utils.ErrConflict
		}
		return fmt.Errorf("update post %d: %w", post.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return utils.ErrNotFound
	}
	return nil
}

func (r *BlogRepository) DeletePost(ctx context.Context, id int64) error {
	return r.deleteByID(ctx, tablePosts, id)
}

func (r *BlogRepository) ListCategories(ctx context.Context) ([]utils.BlogCategory, error) {
	query, args := builder().Select("id", "slug", "name").From(entsql.Table(tableCategories)).
		OrderBy("name").Query()
	rows, err := r.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()
	out := make([]utils.BlogCategory, 0)
	for rows.Next() {
		var c utils.BlogCategory
		if err := rows.Scan(&c.ID, &c.Slug, &c.Name); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *BlogRepository) CreateCategory(ctx context.Context, category *utils.BlogCategory) error {
	query, args := builder().Insert(tableCategories).
		Columns("slug", "name").
		Values(category.Slug, category.Name).
		Returning("id").
		Query()
	if err := r.client.DB().QueryRowContext(ctx, query, args...).Scan(&category.ID); err != nil {
		if isUniqueViolation(err) {
			return utils.ErrConflict
		}
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

func (r *BlogRepository) DeleteCategory(ctx context.Context, id int64) error {
	return r.deleteByID(ctx, tableCategories, id)
}

func (r *BlogRepository) deleteByID(ctx context.Context, table string, id int64) error {
	query, args := builder().Delete(table).Where(entsql.EQ("id", id)).Query()
	res, err := r.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return utils.ErrNotFound
	}
	return nil
}
