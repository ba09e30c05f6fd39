package routes

import (
	"github.com/anjiri1684/assignment_bidding/handlers"
	"github.com/gofiber/fiber/v2"
)

func PublicRoutes(app *fiber.App) {
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "success",
			"message": "Welcome to the Assignment Bidding API",
		})
	})
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
}

// Setup mounts every route group on app.
func Setup(app *fiber.App, h *handlers.Handler) {
	PublicRoutes(app)
	AuthRoutes(app, h)
	AssignmentRoutes(app, h)
	BidRoutes(app, h)
	MessagingRoutes(app, h)
	PaymentRoutes(app, h)
	UploadRoutes(app, h)
}
