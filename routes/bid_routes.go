package routes

import (
	"github.com/anjiri1684/assignment_bidding/handlers"
	"github.com/anjiri1684/assignment_bidding/middleware"
	"github.com/anjiri1684/assignment_bidding/models"
	"github.com/gofiber/fiber/v2"
)

func BidRoutes(app *fiber.App, h *handlers.Handler) {
	api := app.Group("/api/v1")
	teacherOnly := middleware.RoleRequired(models.RoleTeacher)

	bids := api.Group("/bids", h.Auth())
	bids.Post("", teacherOnly, h.PlaceBid)
	bids.Get("/assignment/:assignmentId", h.BidsForAssignment)
	bids.Get("/teacher", teacherOnly, h.MyBids)
	bids.Get("/teacher/assignment/:assignmentId", teacherOnly, h.MyBidForAssignment)
	bids.Put("/:id/accept", middleware.RoleRequired(models.RoleStudent), h.AcceptBid)
	bids.Put("/:id", teacherOnly, h.UpdateBid)
	bids.Delete("/:id", teacherOnly, h.WithdrawBid)
}
