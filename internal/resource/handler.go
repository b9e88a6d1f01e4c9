package resource

import (
	"github.com/gofiber/fiber/v2"
)

// GET /api/resources
func ListHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(All())
	}
}

// GET /api/resources/:name
func GetHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		d, ok := Lookup(c.Params("name"))
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "Resource not found")
		}
		return c.JSON(d)
	}
}
