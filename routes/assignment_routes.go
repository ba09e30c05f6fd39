package routes

import (
	"github.com/anjiri1684/assignment_bidding/handlers"
	"github.com/anjiri1684/assignment_bidding/middleware"
	"github.com/anjiri1684/assignment_bidding/models"
	"github.com/gofiber/fiber/v2"
)

func AssignmentRoutes(app *fiber.App, h *handlers.Handler) {
	api := app.Group("/api/v1")

	assignments := api.Group("/assignments", h.Auth())
	assignments.Post("", middleware.RoleRequired(models.RoleStudent), h.CreateAssignment)
	assignments.Get("", h.ListAssignments)
	assignments.Get("/:id", h.GetAssignment)
	assignments.Delete("/:id", h.DeleteAssignment)
	assignments.Put("/:id/complete", middleware.RoleRequired(models.RoleTeacher), h.SubmitWork)
	assignments.Put("/:id/update-submission", middleware.RoleRequired(models.RoleTeacher), h.UpdateSubmission)
	assignments.Get("/:id/preview", h.PreviewFile)
	assignments.Get("/:id/download", middleware.RoleRequired(models.RoleStudent), h.DownloadSubmission)
}
