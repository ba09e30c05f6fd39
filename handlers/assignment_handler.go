package handlers

import (
	"context"

	"github.com/anjiri1684/assignment_bidding/authz"
	"github.com/anjiri1684/assignment_bidding/middleware"
	"github.com/anjiri1684/assignment_bidding/models"
	"github.com/anjiri1684/assignment_bidding/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type submitFunc func(ctx context.Context, id authz.Identity, assignmentID uuid.UUID, in services.SubmitWorkInput) (*models.Assignment, error)

func (h *Handler) CreateAssignment(c *fiber.Ctx) error {
	id, _ := middleware.CurrentIdentity(c)
	var req services.CreateAssignmentInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	a, err := h.core.CreateAssignment(c.UserContext(), id, req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(a)
}

func (h *Handler) ListAssignments(c *fiber.Ctx) error {
	id, _ := middleware.CurrentIdentity(c)
	var q services.ListAssignmentsInput
	if err := c.QueryParser(&q); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid query")
	}
	list, err := h.core.ListAssignments(c.UserContext(), id, q)
	if err != nil {
		return err
	}
	return c.JSON(list)
}

func (h *Handler) GetAssignment(c *fiber.Ctx) error {
	id, _ := middleware.CurrentIdentity(c)
	assignmentID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	a, err := h.core.GetAssignment(c.UserContext(), id, assignmentID)
	if err != nil {
		return err
	}
	return c.JSON(a)
}

func (h *Handler) DeleteAssignment(c *fiber.Ctx) error {
	id, _ := middleware.CurrentIdentity(c)
	assignmentID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.core.DeleteAssignment(c.UserContext(), id, assignmentID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Assignment deleted successfully"})
}

func (h *Handler) SubmitWork(c *fiber.Ctx) error {
	return h.submission(c, h.core.SubmitWork)
}

func (h *Handler) UpdateSubmission(c *fiber.Ctx) error {
	return h.submission(c, h.core.UpdateSubmission)
}

func (h *Handler) submission(c *fiber.Ctx, apply submitFunc) error {
	id, _ := middleware.CurrentIdentity(c)
	assignmentID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req services.SubmitWorkInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	a, err := apply(c.UserContext(), id, assignmentID, req)
	if err != nil {
		return err
	}
	return c.JSON(a)
}

func (h *Handler) PreviewFile(c *fiber.Ctx) error {
	id, _ := middleware.CurrentIdentity(c)
	assignmentID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	ref, err := h.core.PreviewFile(c.UserContext(), id, assignmentID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"previewFileUrl": ref.URL, "previewFileId": ref.ID})
}

func (h *Handler) DownloadSubmission(c *fiber.Ctx) error {
	id, _ := middleware.CurrentIdentity(c)
	assignmentID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	ref, err := h.core.DownloadSubmission(c.UserContext(), id, assignmentID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"submissionFileUrl": ref.URL, "submissionFileId": ref.ID})
}
