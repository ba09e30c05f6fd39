package routes

import (
	"github.com/anjiri1684/assignment_bidding/handlers"
	"github.com/anjiri1684/assignment_bidding/middleware"
	"github.com/anjiri1684/assignment_bidding/models"
	"github.com/gofiber/fiber/v2"
)

func PaymentRoutes(app *fiber.App, h *handlers.Handler) {
	api := app.Group("/api/v1")

	payments := api.Group("/payments", h.Auth())
	payments.Post("", middleware.RoleRequired(models.RoleStudent), h.Pay)
	payments.Get("", h.ListPayments)
	payments.Get("/assignment/:assignmentId", h.PaymentsForAssignment)
	payments.Get("/:id", h.GetPayment)
}
