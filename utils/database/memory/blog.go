// Package memory holds process-local repositories for the memory content
// driver. Nothing survives a restart.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"assistante-suite/utils"
)

type BlogRepository struct {
	mu         sync.Mutex
	posts      map[int64]utils.BlogPost
	categories map[int64]utils.BlogCategory
	nextID     int64
	now        func() time.Time
}

func NewBlogRepository() *BlogRepository {
	return &BlogRepository{
		posts:      make(map[int64]utils.BlogPost),
		categories: make(map[int64]utils.BlogCategory),
		now:        time.Now,
	}
}

func (r *BlogRepository) id() int64 {
	r.nextID++
	return r.nextID
}

func (r *BlogRepository) categoryID(slug string) (int64, bool) {
	for id, c := range r.categories {
		if c.Slug == slug {
			return id, true
		}
	}
	return 0, false
}

func (r *BlogRepository) ListPosts(_ context.Context, filter utils.PostFilter) ([]utils.BlogPost, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var categoryID int64
	if filter.CategorySlug != "" {
		id, ok := r.categoryID(filter.CategorySlug)
		if !ok {
			return []utils.BlogPost{}, 0, nil
		}
		categoryID = id
	}
	matched := make([]utils.BlogPost, 0, len(r.posts))
	for _, p := range r.posts {
		if filter.PublishedOnly && !p.Published {
			continue
		}
		if categoryID != 0 && (p.CategoryID == nil || *p.CategoryID != categoryID) {
			continue
		}
		matched = append(matched, p)
	}
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i].PublishedAt, matched[j].PublishedAt
		switch {
		case a == nil && b == nil:
			return matched[i].ID > matched[j].ID
		case a == nil:
			// NULLs sort first in a descending Postgres order
			return true
		case b == nil:
			return false
		case !a.Equal(*b):
			return a.After(*b)
		default:
			return matched[i].ID > matched[j].ID
		}
	})
	total := len(matched)
	if filter.Offset > 0 {
		if filter.Offset >= len(matched) {
			matched = matched[:0]
		} else {
			matched = matched[filter.Offset:]
		}
	}
	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	return matched, total, nil
}

func (r *BlogRepository) GetPostBySlug(_ context.Context, slug string) (*utils.BlogPost, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.posts {
		if p.Slug == slug {
			return &p, nil
		}
	}
	return nil, utils.ErrNotFound
}

func (r *BlogRepository) slugTaken(slug string, except int64) bool {
	for id, p := range r.posts {
		if id != except && p.Slug == slug {
			return true
		}
	}
	return false
}

func (r *BlogRepository) stamp(post *utils.BlogPost) {
	post.UpdatedAt = r.now()
	if post.Published && post.PublishedAt == nil {
		at := post.UpdatedAt
		post.PublishedAt = &at
	}
}

func (r *BlogRepository) CreatePost(_ context.Context, post *utils.BlogPost) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.slugTaken(post.Slug, 0) {
		return utils.ErrConflict
	}
	r.stamp(post)
	post.ID = r.id()
	r.posts[post.ID] = *post
	return nil
}

func (r *BlogRepository) UpdatePost(_ context.Context, post *utils.BlogPost) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[post.ID]; !ok {
		return utils.ErrNotFound
	}
	if r.slugTaken(post.Slug, post.ID) {
		return utils.ErrConflict
	}
	r.stamp(post)
	r.posts[post.ID] = *post
	return nil
}

func (r *BlogRepository) DeletePost(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[id]; !ok {
		return utils.ErrNotFound
	}
	delete(r.posts, id)
	return nil
}

func (r *BlogRepository) ListCategories(_ context.Context) ([]utils.BlogCategory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]utils.BlogCategory, 0, len(r.categories))
	for _, c := range r.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *BlogRepository) CreateCategory(_ context.Context, category *utils.BlogCategory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.categoryID(category.Slug); taken {
		return utils.ErrConflict
	}
	category.ID = r.id()
	r.categories[category.ID] = *category
	return nil
}

// DeleteCategory detaches the category's posts, like ON DELETE SET NULL.
func (r *BlogRepository) DeleteCategory(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.categories[id]; !ok {
		return utils.ErrNotFound
	}
	delete(r.categories, id)
	for pid, p := range r.posts {
		if p.CategoryID != nil && *p.CategoryID == id {
			p.CategoryID = nil
			r.posts[pid] = p
		}
	}
	return nil
}
