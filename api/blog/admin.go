package blog

import (
	"errors"
	"strconv"

	"assistante-suite/utils"
	appAPIHelper "assistante-suite/utils/api"
	appLogger "assistante-suite/utils/logger"

	"github.com/gofiber/fiber/v3"
)

func paramID(c fiber.Ctx) (int64, bool) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	return id, err == nil && id > 0
}

func blogError(c fiber.Ctx, err error, what string) error {
	switch {
	case errors.Is(err, utils.ErrNotFound):
		return appAPIHelper.ErrorNotFound(c, what+" not found")
	case errors.Is(err, utils.ErrConflict):
		return appAPIHelper.ErrorConflict(c, "slug already in use")
	default:
		appLogger.Errorf("Blog %s: %v", what, err)
		return appAPIHelper.ErrorInternal(c, "blog store error")
	}
}

func (p PostPayload) toPost(id int64) (*utils.BlogPost, bool) {
	slug := p.Slug
	if slug == "" {
		slug = p.Title
	}
	slug = utils.Slugify(slug)
	if slug == "" {
		return nil, false
	}
	return &utils.BlogPost{
		ID:           id,
		Slug:         slug,
		Title:        p.Title,
		Excerpt:      p.Excerpt,
		BodyMarkdown: p.BodyMarkdown,
		CategoryID:   p.CategoryID,
		Published:    p.Published,
		PublishedAt:  p.PublishedAt,
	}, true
}

func handleAdminListPosts(apiHelper *appAPIHelper.RouterHelpers) fiber.Handler {
	return func(c fiber.Ctx) error {
		list, err := listPosts(c, apiHelper, false)
		if err != nil {
			return blogError(c, err, "posts")
		}
		return appAPIHelper.SuccessResponse(c, "ok", list)
	}
}

func handleCreatePost(apiHelper *appAPIHelper.RouterHelpers) fiber.Handler {
	return func(c fiber.Ctx) error {
		var payload PostPayload
		if err := c.Bind().Body(&payload); err != nil {
			return appAPIHelper.BindError(c, err)
		}
		post, ok := payload.toPost(0)
		if !ok {
			return appAPIHelper.ErrorUnprocessable(c, "a slug cannot be derived from this title")
		}
		if err := apiHelper.Blog.CreatePost(c.Context(), post); err != nil {
			return blogError(c, err, "post")
		}
		invalidate(c, apiHelper)
		return appAPIHelper.CreatedResponse(c, "Post created", post)
	}
}

func handleUpdatePost(apiHelper *appAPIHelper.RouterHelpers) fiber.Handler {
	return func(c fiber.Ctx) error {
		id, ok := paramID(c)
		if !ok {
			return appAPIHelper.ErrorBadRequest(c, "invalid post id")
		}
		var payload PostPayload
		if err := c.Bind().Body(&payload); err != nil {
			return appAPIHelper.BindError(c, err)
		}
		post, ok := payload.toPost(id)
		if !ok {
			return appAPIHelper.ErrorUnprocessable(c, "a slug cannot be derived from this title")
		}
		if err := apiHelper.Blog.UpdatePost(c.Context(), post); err != nil {
			return blogError(c, err, "post")
		}
		invalidate(c, apiHelper)
		return appAPIHelper.SuccessResponse(c, "Post updated", post)
	}
}

func handleDeletePost(apiHelper *appAPIHelper.RouterHelpers) fiber.Handler {
	return func(c fiber.Ctx) error {
		id, ok := paramID(c)
		if !ok {
			return appAPIHelper.ErrorBadRequest(c, "invalid post id")
		}
		if err := apiHelper.Blog.DeletePost(c.Context(), id); err != nil {
			return blogError(c, err, "post")
		}
		invalidate(c, apiHelper)
		return appAPIHelper.SuccessResponse[string](c, "Post deleted", nil)
	}
}

func handleCreateCategory(apiHelper *appAPIHelper.RouterHelpers) fiber.Handler {
	return func(c fiber.Ctx) error {
		var payload CategoryPayload
		if err := c.Bind().Body(&payload); err != nil {
			return appAPIHelper.BindError(c, err)
		}
		slug := payload.Slug
		if slug == "" {
			slug = payload.Name
		}
		category := &utils.BlogCategory{Slug: utils.Slugify(slug), Name: payload.Name}
		if category.Slug == "" {
			return appAPIHelper.ErrorUnprocessable(c, "a slug cannot be derived from this name")
		}
		if err := apiHelper.Blog.CreateCategory(c.Context(), category); err != nil {
			return blogError(c, err, "category")
		}
		invalidate(c, apiHelper)
		return appAPIHelper.CreatedResponse(c, "Category created", category)
	}
}

func handleDeleteCategory(apiHelper *appAPIHelper.RouterHelpers) fiber.Handler {
	return func(c fiber.Ctx) error {
		id, ok := paramID(c)
		if !ok {
			return appAPIHelper.ErrorBadRequest(c, "invalid category id")
		}
		if err := apiHelper.Blog.DeleteCategory(c.Context(), id); err != nil {
			return blogError(c, err, "category")
		}
		invalidate(c, apiHelper)
		return appAPIHelper.SuccessResponse[string](c, "Category deleted", nil)
	}
}
