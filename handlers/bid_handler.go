package handlers

import (
	"github.com/anjiri1684/assignment_bidding/middleware"
	"github.com/anjiri1684/assignment_bidding/services"
	"github.com/gofiber/fiber/v2"
)

// PlaceBid answers 201 for a new bid and 200 when the teacher's existing bid
// was revised instead.
func (h *Handler) PlaceBid(c *fiber.Ctx) error {
	id, _ := middleware.CurrentIdentity(c)
	var req services.PlaceBidInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	res, err := h.core.PlaceBid(c.UserContext(), id, req)
	if err != nil {
		return err
	}
	if res.IsUpdate() {
		return c.JSON(fiber.Map{"message": "Bid updated", "bid": res.Updated})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Bid placed", "bid": res.Created})
}

func (h *Handler) UpdateBid(c *fiber.Ctx) error {
	id, _ := middleware.CurrentIdentity(c)
	bidID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req services.UpdateBidInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	bid, err := h.core.UpdateBid(c.UserContext(), id, bidID, req)
	if err != nil {
		return err
	}
	return c.JSON(bid)
}

func (h *Handler) WithdrawBid(c *fiber.Ctx) error {
	id, _ := middleware.CurrentIdentity(c)
	bidID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.core.WithdrawBid(c.UserContext(), id, bidID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Bid withdrawn successfully"})
}

func (h *Handler) AcceptBid(c *fiber.Ctx) error {
	id, _ := middleware.CurrentIdentity(c)
	bidID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	a, err := h.core.AcceptBid(c.UserContext(), id, bidID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Bid accepted", "assignment": a})
}

func (h *Handler) BidsForAssignment(c *fiber.Ctx) error {
	id, _ := middleware.CurrentIdentity(c)
	assignmentID, err := paramID(c, "assignmentId")
	if err != nil {
		return err
	}
	bids, err := h.core.ListBidsForAssignment(c.UserContext(), id, assignmentID)
	if err != nil {
		return err
	}
	return c.JSON(bids)
}

func (h *Handler) MyBids(c *fiber.Ctx) error {
	id, _ := middleware.CurrentIdentity(c)
	bids, err := h.core.ListBidsForTeacher(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(bids)
}

func (h *Handler) MyBidForAssignment(c *fiber.Ctx) error {
	id, _ := middleware.CurrentIdentity(c)
	assignmentID, err := paramID(c, "assignmentId")
	if err != nil {
		return err
	}
	bid, err := h.core.TeacherBidForAssignment(c.UserContext(), id, assignmentID)
	if err != nil {
		return err
	}
	return c.JSON(bid)
}
