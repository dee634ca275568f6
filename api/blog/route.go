package blog

import appAPIHelper "assistante-suite/utils/api"

func RegisterBlogRoutes(apiHelper *appAPIHelper.RouterHelpers) {
	public := apiHelper.Router.Group("/api/blog")
	public.Get("/posts", handleListPosts(apiHelper))
	public.Get("/posts/:slug", handleGetPost(apiHelper))
	public.Get("/categories", handleListCategories(apiHelper))

	admin := apiHelper.AdminRouter.Group("/blog")
	admin.Get("/posts", handleAdminListPosts(apiHelper))
	admin.Post("/posts", handleCreatePost(apiHelper))
	admin.Put("/posts/:id", handleUpdatePost(apiHelper))
	admin.Delete("/posts/:id", handleDeletePost(apiHelper))
	admin.Post("/categories", handleCreateCategory(apiHelper))
	admin.Delete("/categories/:id", handleDeleteCategory(apiHelper))
}
