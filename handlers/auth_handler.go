package handlers

import (
	"github.com/anjiri1684/assignment_bidding/middleware"
	"github.com/anjiri1684/assignment_bidding/models"
	"github.com/anjiri1684/assignment_bidding/services"
	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
)

type authResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func (h *Handler) Register(c *fiber.Ctx) error {
	var req services.RegisterInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	user, err := h.core.Register(c.UserContext(), req)
	if err != nil {
		return err
	}
	token, err := middleware.IssueToken(h.secret, user, h.ttl)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create token"})
	}
	log.WithFields(log.Fields{"user": user.ID, "role": user.Role}).Info("✅ User registered")
	return c.Status(fiber.StatusCreated).JSON(authResponse{Token: token, User: user})
}

func (h *Handler) Login(c *fiber.Ctx) error {
	var req services.LoginInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	user, err := h.core.Login(c.UserContext(), req)
	if err != nil {
		return err
	}
	token, err := middleware.IssueToken(h.secret, user, h.ttl)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create token"})
	}
	return c.JSON(authResponse{Token: token, User: user})
}

func (h *Handler) Me(c *fiber.Ctx) error {
	id, err := middleware.CurrentIdentity(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, err.Error())
	}
	user, err := h.core.Me(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(user)
}
