package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/craftatlas/craftatlas/app/controllers"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New())
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "craftatlas api",
		})
	})

	api.Get("/types", controllers.HandleListTypes)
	api.Get("/biomes", controllers.HandleListBiomes)

	api.Get("/entries", controllers.HandleListEntries)
	api.Post("/entries", controllers.HandleCreateEntry)
	api.Post("/entries/import", controllers.HandleImportEntries)
	api.Get("/entries/:uuid", controllers.HandleGetEntry)
	api.Post("/entries/:uuid/image", controllers.HandleUploadPendingImage)
	api.Get("/entries/:uuid/pending", controllers.HandleListPendingImages)
	api.Post("/entries/:uuid/reports", controllers.HandleCreateReport)

	// Admin routes are grouped for an upstream gateway to protect; this
	// service carries no session handling.
	admin := api.Group("/admin")
	admin.Post("/entries/:uuid/status", controllers.HandleUpdateStatus)
	admin.Put("/entries/:uuid", controllers.HandleEditEntry)
	admin.Delete("/entries/:uuid", controllers.HandleDeleteEntry)
	admin.Post("/entries/:uuid/promote/:pendingUUID", controllers.HandlePromotePendingImage)
	admin.Post("/entries/:uuid/purge-pending", controllers.HandlePurgePendingImages)
	admin.Post("/entries/:uuid/image/remove", controllers.HandleRemoveOfficialImage)
	admin.Get("/reports", controllers.HandleListOpenReports)
	admin.Post("/reports/:id/close", controllers.HandleCloseReport)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
