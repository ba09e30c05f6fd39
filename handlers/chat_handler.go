package handlers

import (
	"github.com/anjiri1684/assignment_bidding/middleware"
	"github.com/anjiri1684/assignment_bidding/services"
	"github.com/gofiber/fiber/v2"
)

func (h *Handler) ListChats(c *fiber.Ctx) error {
	id, _ := middleware.CurrentIdentity(c)
	chats, err := h.core.ListChats(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(chats)
}

func (h *Handler) GetChat(c *fiber.Ctx) error {
	id, _ := middleware.CurrentIdentity(c)
	chatID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	chat, err := h.core.GetChat(c.UserContext(), id, chatID)
	if err != nil {
		return err
	}
	return c.JSON(chat)
}

func (h *Handler) CreateChat(c *fiber.Ctx) error {
	id, _ := middleware.CurrentIdentity(c)
	var req services.CreateChatInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	chat, err := h.core.CreateChat(c.UserContext(), id, req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(chat)
}

func (h *Handler) OpenChat(c *fiber.Ctx) error {
	id, _ := middleware.CurrentIdentity(c)
	assignmentID, err := paramID(c, "assignmentId")
	if err != nil {
		return err
	}
	teacherID, err := paramID(c, "teacherId")
	if err != nil {
		return err
	}
	chat, err := h.core.OpenChat(c.UserContext(), id, assignmentID, teacherID)
	if err != nil {
		return err
	}
	return c.JSON(chat)
}

func (h *Handler) PostMessage(c *fiber.Ctx) error {
	id, _ := middleware.CurrentIdentity(c)
	chatID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req services.PostMessageInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	msg, err := h.core.PostMessage(c.UserContext(), id, chatID, req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(msg)
}
