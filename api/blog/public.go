package blog

import (
	"errors"
	"time"

	"assistante-suite/utils"
	appAPIHelper "assistante-suite/utils/api"
	redisManager "assistante-suite/utils/database/redis"
	appLogger "assistante-suite/utils/logger"

	"github.com/gofiber/fiber/v3"
)

var cacheNamespace = redisManager.BuildPublicCacheNamespace("blog")

func cacheTTL(apiHelper *appAPIHelper.RouterHelpers) time.Duration {
	return time.Duration(apiHelper.Config.Content.CacheTTLSeconds) * time.Second
}

// cached answers from the public cache when possible, and stores what load
// produced otherwise.
func cached[T any](c fiber.Ctx, apiHelper *appAPIHelper.RouterHelpers, load func() (*T, error)) (*T, error) {
	if apiHelper.Cache == nil {
		return load()
	}
	key := redisManager.CacheKeyBuilder(c, cacheNamespace)
	var hit T
	if found, err := apiHelper.Cache.GetCache(c.Context(), key, &hit); err == nil && found {
		return &hit, nil
	}
	out, err := load()
	if err != nil {
		return nil, err
	}
	if err := apiHelper.Cache.SetCache(c.Context(), key, out, cacheTTL(apiHelper)); err != nil {
		appLogger.Warnf("Blog response not cached: %v", err)
	}
	return out, nil
}

func invalidate(c fiber.Ctx, apiHelper *appAPIHelper.RouterHelpers) {
	if apiHelper.Cache == nil {
		return
	}
	if err := apiHelper.Cache.DeletePrefix(c.Context(), cacheNamespace); err != nil {
		appLogger.Warnf("Blog cache not cleared: %v", err)
	}
}

func listPosts(c fiber.Ctx, apiHelper *appAPIHelper.RouterHelpers, publishedOnly bool) (*PostList, error) {
	page := fiber.Query[int](c, "page", 1)
	if page < 1 {
		page = 1
	}
	posts, total, err := apiHelper.Blog.ListPosts(c.Context(), utils.PostFilter{
		CategorySlug:  c.Query("category"),
		PublishedOnly: publishedOnly,
		Limit:         PageSize,
		Offset:        (page - 1) * PageSize,
	})
	if err != nil {
		return nil, err
	}
	return &PostList{
		Posts: posts,
		Total: total,
		Page:  page,
		Pages: (total + PageSize - 1) / PageSize,
	}, nil
}

func handleListPosts(apiHelper *appAPIHelper.RouterHelpers) fiber.Handler {
	return func(c fiber.Ctx) error {
		list, err := cached(c, apiHelper, func() (*PostList, error) {
			return listPosts(c, apiHelper, true)
		})
		if err != nil {
			appLogger.Errorf("List posts: %v", err)
			return appAPIHelper.ErrorInternal(c, "could not list posts")
		}
		return appAPIHelper.SuccessResponse(c, "ok", list)
	}
}

func handleGetPost(apiHelper *appAPIHelper.RouterHelpers) fiber.Handler {
	return func(c fiber.Ctx) error {
		post, err := cached(c, apiHelper, func() (*utils.BlogPost, error) {
			post, err := apiHelper.Blog.GetPostBySlug(c.Context(), c.Params("slug"))
			if err != nil {
				return nil, err
			}
			if !post.Published {
				return nil, utils.ErrNotFound
			}
			html, err := apiHelper.Markdown.Render(post.BodyMarkdown)
			if err != nil {
				return nil, err
			}
			post.BodyHTML = html
			return post, nil
		})
		if errors.Is(err, utils.ErrNotFound) {
			return appAPIHelper.ErrorNotFound(c, "post not found")
		}
		if err != nil {
			appLogger.Errorf("Get post %s: %v", c.Params("slug"), err)
			return appAPIHelper.ErrorInternal(c, "could not load post")
		}
		return appAPIHelper.SuccessResponse(c, "ok", post)
	}
}

func handleListCategories(apiHelper *appAPIHelper.RouterHelpers) fiber.Handler {
	return func(c fiber.Ctx) error {
		categories, err := cached(c, apiHelper, func() (*[]utils.BlogCategory, error) {
			list, err := apiHelper.Blog.ListCategories(c.Context())
			return &list, err
		})
		if err != nil {
			appLogger.Errorf("List categories: %v", err)
			return appAPIHelper.ErrorInternal(c, "could not list categories")
		}
		return appAPIHelper.SuccessResponse(c, "ok", categories)
	}
}
