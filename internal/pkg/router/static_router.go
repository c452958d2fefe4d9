package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/craftatlas/craftatlas/internal/pkg/env"
)

type StaticRouter struct {
}

// InstallRouter serves published image derivatives straight off the image
// root. The quarantine subfolder is inside the root, so superseded files
// stay reachable until housekeeping clears them.
func (h StaticRouter) InstallRouter(app *fiber.App) {
	app.Static("/images", env.GetEnv("IMAGE_ROOT", "images"), fiber.Static{
		MaxAge: 3600,
	})
}

func NewStaticRouter() *StaticRouter {
	return &StaticRouter{}
}
