package routes

import (
	"github.com/anjiri1684/assignment_bidding/handlers"
	"github.com/gofiber/fiber/v2"
)

func UploadRoutes(app *fiber.App, h *handlers.Handler) {
	api := app.Group("/api/v1")

	uploads := api.Group("/uploads", h.Auth())
	uploads.Get("/signature", h.UploadSignature)
	uploads.Post("", h.Upload)
}
