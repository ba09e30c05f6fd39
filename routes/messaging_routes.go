package routes

import (
	"github.com/anjiri1684/assignment_bidding/handlers"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

func MessagingRoutes(app *fiber.App, h *handlers.Handler) {
	api := app.Group("/api/v1")

	chats := api.Group("/chats", h.Auth())
	chats.Get("", h.ListChats)
	chats.Post("", h.CreateChat)
	chats.Get("/assignment/:assignmentId/teacher/:teacherId", h.OpenChat)
	chats.Get("/:id", h.GetChat)
	chats.Post("/:id/messages", h.PostMessage)

	api.Use("/ws", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		return c.Next()
	})
	api.Get("/ws", websocket.New(h.ServeWs))
}
