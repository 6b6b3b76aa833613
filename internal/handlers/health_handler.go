package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// Health reports server liveness.
func Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message":   "Server is running smoothly",
		"timestamp": time.Now(),
	})
}
