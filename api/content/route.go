package content

import appAPIHelper "assistante-suite/utils/api"

func RegisterContentRoutes(apiHelper *appAPIHelper.RouterHelpers) {
	apiHelper.Router.Get("/api/pages/:page_id", handlePublicPage(apiHelper))

	pages := apiHelper.AdminRouter.Group("/pages")
	pages.Get("/", handleListPages(apiHelper))
	pages.Post("/", handleCreatePage(apiHelper))
	pages.Get("/:page_id", handleGetPage(apiHelper))
	pages.Put("/:page_id", handleReplacePage(apiHelper))
	pages.Delete("/:page_id", handleDeletePage(apiHelper))

	e := &editor{apiHelper: apiHelper}
	ed := pages.Group("/:page_id/editor")
	ed.Get("/", handleView(e))
	ed.Put("/", handleSubmit(e))
	ed.Post("/expand", handleExpand(e))
	ed.Post("/rename/begin", handleBeginRename(e))
	ed.Post("/rename", handleRename(e))
	ed.Post("/add/begin", handleBeginAdd(e))
	ed.Post("/add", handleAdd(e))
	ed.Post("/cancel", handleCancel(e))
	ed.Post("/delete", handleDelete(e))
	ed.Post("/reorder", handleReorder(e))
	ed.Post("/undo", handleUndo(e))
	ed.Post("/reload", handleReload(e))
}
