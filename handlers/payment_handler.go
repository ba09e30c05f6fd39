package handlers

import (
	"github.com/anjiri1684/assignment_bidding/middleware"
	"github.com/anjiri1684/assignment_bidding/services"
	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
)

// Pay records a payment the provider has already confirmed and releases the
// submission to the student.
func (h *Handler) Pay(c *fiber.Ctx) error {
	id, _ := middleware.CurrentIdentity(c)
	var req services.PayInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	payment, err := h.core.Pay(c.UserContext(), id, req)
	if err != nil {
		log.WithError(err).WithField("assignment", req.AssignmentID).Warn("payment rejected")
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(payment)
}

func (h *Handler) ListPayments(c *fiber.Ctx) error {
	id, _ := middleware.CurrentIdentity(c)
	payments, err := h.core.ListPayments(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(payments)
}

func (h *Handler) GetPayment(c *fiber.Ctx) error {
	id, _ := middleware.CurrentIdentity(c)
	paymentID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	payment, err := h.core.GetPayment(c.UserContext(), id, paymentID)
	if err != nil {
		return err
	}
	return c.JSON(payment)
}

func (h *Handler) PaymentsForAssignment(c *fiber.Ctx) error {
	id, _ := middleware.CurrentIdentity(c)
	assignmentID, err := paramID(c, "assignmentId")
	if err != nil {
		return err
	}
	payments, err := h.core.PaymentsForAssignment(c.UserContext(), id, assignmentID)
	if err != nil {
		return err
	}
	return c.JSON(payments)
}
