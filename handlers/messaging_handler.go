package handlers

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/anjiri1684/assignment_bidding/apperrors"
	"github.com/anjiri1684/assignment_bidding/middleware"
	"github.com/anjiri1684/assignment_bidding/realtime"
	"github.com/anjiri1684/assignment_bidding/services"
	websocketcontrib "github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Frame types a client may send.
const (
	frameAuth             = "auth"
	frameJoinRoom         = "join_room"
	frameJoinSubjectRooms = "join_subject_rooms"
	frameLeaveRoom        = "leave_room"
	frameSendMessage      = "send_message"
)

// Replies sent back to the sending connection only.
const (
	replyError         = "error"
	replyAuthenticated = "authenticated"
	replyJoined        = "joined_room"
	replyLeft          = "left_room"
	replyMessageSent   = "message_sent"
)

type inboundFrame struct {
	Type     string   `json:"type"`
	Token    string   `json:"token"`
	RoomID   string   `json:"roomId"`
	Subjects []string `json:"subjects"`
	ChatID   string   `json:"chatId"`
	Content  string   `json:"content"`
}

// ServeWs runs one websocket session until the connection drops.
func (h *Handler) ServeWs(c *websocketcontrib.Conn) {
	client := realtime.NewClient(h.hub, c)
	log.WithField("client", client.ID).Debug("websocket connected")
	client.Serve(h.handleFrame)
	log.WithField("client", client.ID).Debug("websocket disconnected")
}

func (h *Handler) handleFrame(c *realtime.Client, raw []byte) {
	var msg inboundFrame
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.Reply(replyError, map[string]string{"error": "Invalid message"})
		return
	}

	if msg.Type == frameAuth {
		h.authenticate(c, msg.Token)
		return
	}
	id, ok := c.Identity()
	if !ok {
		c.Reply(replyError, map[string]string{"error": "Invalid or missing auth message"})
		return
	}

	ctx := context.Background()
	switch msg.Type {
	case frameJoinRoom:
		assignmentID, err := uuid.Parse(msg.RoomID)
		if err != nil {
			c.Reply(replyError, map[string]string{"error": "Invalid room ID"})
			return
		}
		if _, err := h.core.GetAssignment(ctx, id, assignmentID); err != nil {
			c.Reply(replyError, map[string]string{"error": apperrors.PublicMessage(err)})
			return
		}
		room := realtime.AssignmentRoom(assignmentID.String())
		c.Join(room)
		c.Reply(replyJoined, map[string]string{"room": room})

	case frameJoinSubjectRooms:
		for _, s := range msg.Subjects {
			if s = strings.TrimSpace(s); s != "" {
				c.Join(realtime.SubjectRoom(s))
			}
		}
		c.Reply(replyJoined, map[string][]string{"subjects": msg.Subjects})

	case frameLeaveRoom:
		room := realtime.AssignmentRoom(msg.RoomID)
		c.Leave(room)
		c.Reply(replyLeft, map[string]string{"room": room})

	case frameSendMessage:
		chatID, err := uuid.Parse(msg.ChatID)
		if err != nil {
			c.Reply(replyError, map[string]string{"error": "Invalid chat ID"})
			return
		}
		sent, err := h.core.PostMessage(ctx, id, chatID, services.PostMessageInput{Content: msg.Content})
		if err != nil {
			if apperrors.KindOf(err) == apperrors.KindUnexpected {
				log.WithError(err).WithField("chat", chatID).Error("🔥 failed to save message")
			}
			c.Reply(replyError, map[string]string{"error": apperrors.PublicMessage(err)})
			return
		}
		c.Reply(replyMessageSent, sent)

	default:
		c.Reply(replyError, map[string]string{"error": "Unknown message type"})
	}
}

func (h *Handler) authenticate(c *realtime.Client, token string) {
	id, err := middleware.ParseToken(h.secret, token)
	if err != nil {
		log.WithError(err).WithField("client", c.ID).Warn("websocket auth failed")
		c.Reply(replyError, map[string]string{"error": "Invalid token"})
		return
	}
	c.Authenticate(id)
	c.Join(realtime.UserRoom(id.ID))
	c.Reply(replyAuthenticated, map[string]string{"userId": id.ID.String()})
	log.WithFields(log.Fields{"client": c.ID, "user": id.ID}).Info("WebSocket client authenticated")
}
