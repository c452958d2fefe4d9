package controllers

import (
	"github.com/gofiber/fiber/v2"
)

// HandleListTypes returns the active entry types. Served from the redis
// cache when warm.
// GET /api/types
func HandleListTypes(c *fiber.Ctx) error {
	types, err := repos().Taxonomy.ListTypes()
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "listing types failed")
	}
	return c.JSON(fiber.Map{"types": types})
}

// HandleListBiomes returns the active biomes.
// GET /api/biomes
func HandleListBiomes(c *fiber.Ctx) error {
	biomes, err := repos().Taxonomy.ListBiomes()
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "listing biomes failed")
	}
	return c.JSON(fiber.Map{"biomes": biomes})
}
