package api

import (
	"assistante-suite/api/admin"
	"assistante-suite/api/appointment"
	"assistante-suite/api/blog"
	"assistante-suite/api/content"
	"assistante-suite/api/misc"
	"assistante-suite/api/newsletter"
	appAPIHelper "assistante-suite/utils/api"
)

func RegisterRoutes(apiHelper *appAPIHelper.RouterHelpers) {
	apiHelper.AdminRouter = apiHelper.Router.Group("/api/admin", apiHelper.SessionHandler.Middleware(admin.LoginPath))

	misc.RegisterMiscRoutes(apiHelper)
	admin.RegisterAdminRoutes(apiHelper)
	content.RegisterContentRoutes(apiHelper)
	blog.RegisterBlogRoutes(apiHelper)
	newsletter.RegisterNewsletterRoutes(apiHelper)
	appointment.RegisterAppointmentRoutes(apiHelper)
}
