package misc

import (
	"fmt"
	"runtime"
	"runtime/debug"

	appAPIHelper "assistante-suite/utils/api"
	"assistante-suite/version"

	"github.com/gofiber/fiber/v3"
)

func mb(v uint64) string {
	return fmt.Sprintf("%.1f", float64(v)/1024/1024)
}

func handleMemStats() fiber.Handler {
	return func(c fiber.Ctx) error {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)
		return c.JSON(fiber.Map{
			"version":          version.Version,
			"alloc_mb":         mb(m.Alloc),
			"total_alloc_mb":   mb(m.TotalAlloc),
			"sys_mb":           mb(m.Sys),
			"heap_alloc_mb":    mb(m.HeapAlloc),
			"heap_inuse_mb":    mb(m.HeapInuse),
			"heap_released_mb": mb(m.HeapReleased),
			"heap_objects":     m.HeapObjects,
			"goroutines":       runtime.NumGoroutine(),
			"num_gc":           m.NumGC,
		})
	}
}

func handleFreeMemory() fiber.Handler {
	return func(c fiber.Ctx) error {
		var before runtime.MemStats
		runtime.ReadMemStats(&before)

		runtime.GC()
		debug.FreeOSMemory()

		var after runtime.MemStats
		runtime.ReadMemStats(&after)

		freed := uint64(0)
		if before.HeapAlloc > after.HeapAlloc {
			freed = before.HeapAlloc - after.HeapAlloc
		}
		return c.JSON(fiber.Map{
			"before_heap_mb": mb(before.HeapAlloc),
			"after_heap_mb":  mb(after.HeapAlloc),
			"freed_mb":       mb(freed),
		})
	}
}

func registerRuntimeRoutes(apiHelper *appAPIHelper.RouterHelpers) {
	apiHelper.AdminRouter.Get("/runtime", handleMemStats())
	apiHelper.AdminRouter.Post("/runtime/freemem", handleFreeMemory())
}
