package misc

import (
	"context"
	"time"

	appAPIHelper "assistante-suite/utils/api"

	"github.com/gofiber/fiber/v3"
)

func handleHealth(apiHelper *appAPIHelper.RouterHelpers) fiber.Handler {
	return func(c fiber.Ctx) error {
		status := "ok"
		dependencies := make(map[string]string)
		if apiHelper.DBManager != nil {
			ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
			defer cancel()
			for name, err := range apiHelper.DBManager.Ping(ctx) {
				if err != nil {
					dependencies[name] = err.Error()
					status = "degraded"
					continue
				}
				dependencies[name] = "ok"
			}
		}
		code := fiber.StatusOK
		if status != "ok" {
			code = fiber.StatusServiceUnavailable
		}
		return c.Status(code).JSON(fiber.Map{
			"status":       status,
			"time":         apiHelper.Clock().Unix(),
			"dependencies": dependencies,
		})
	}
}

func registerHealthRoutes(apiHelper *appAPIHelper.RouterHelpers) {
	apiHelper.Router.Get("/health", handleHealth(apiHelper))
}
