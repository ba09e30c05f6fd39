package services

import (
	"context"

	"github.com/anjiri1684/assignment_bidding/apperrors"
	"github.com/anjiri1684/assignment_bidding/authz"
	"github.com/anjiri1684/assignment_bidding/models"
	"github.com/anjiri1684/assignment_bidding/realtime"
	"github.com/anjiri1684/assignment_bidding/store"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type CreateChatInput struct {
	AssignmentID   uuid.UUID  `json:"assignmentId" validate:"required"`
	TeacherID      *uuid.UUID `json:"teacherId"`
	InitialMessage string     `json:"initialMessage" validate:"max=2000"`
}

type PostMessageInput struct {
	Content   string   `json:"content" validate:"required,max=2000"`
	IsBid     bool     `json:"isBid"`
	BidAmount *float64 `json:"bidAmount" validate:"omitempty,gt=0"`
}

// ensureChat finds the chat for the triple or creates it. created reports
// whether this call made it.
func (c *Core) ensureChat(ctx context.Context, st *store.Store, assignmentID, teacherID, studentID uuid.UUID) (*models.Chat, bool, error) {
	chat, err := st.FindChat(ctx, assignmentID, teacherID, studentID)
	if err == nil {
		return chat, false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, false, err
	}

	now := c.now()
	chat = &models.Chat{
		AssignmentID: assignmentID,
		TeacherID:    teacherID,
		StudentID:    studentID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	err = st.CreateChat(ctx, chat)
	if errors.Is(err, store.ErrDuplicate) {
		chat, err = st.FindChat(ctx, assignmentID, teacherID, studentID)
		return chat, false, err
	}
	if err != nil {
		return nil, false, err
	}
	return chat, true, nil
}

// appendBidMessage echoes a bid into the chat. The bid is already committed,
// so a failure here is only logged.
func (c *Core) appendBidMessage(ctx context.Context, chat *models.Chat, teacherID uuid.UUID, text string, amount float64) {
	msg := &models.ChatMessage{
		SenderID:  teacherID,
		Content:   text,
		IsBid:     true,
		BidAmount: &amount,
		Timestamp: c.now(),
	}
	bestEffort(c.store.AppendMessage(ctx, chat.ID, msg), "bid chat message", log.Fields{"chat": chat.ID})
}

// OpenChat returns the chat between an assignment and a teacher. A missing chat
// is created only once the assignment is assigned to that teacher.
func (c *Core) OpenChat(ctx context.Context, id authz.Identity, assignmentID, teacherID uuid.UUID) (*models.Chat, error) {
	existing, err := c.store.FindChatFor(ctx, assignmentID, teacherID)
	switch {
	case err == nil:
		if !authz.CanReadChat(id, *existing) {
			return nil, apperrors.Forbidden("Not authorized to access this chat")
		}
		return c.loadChat(ctx, existing.ID)
	case !errors.Is(err, store.ErrNotFound):
		return nil, unexpected(err)
	}

	a, err := c.store.FindAssignment(ctx, assignmentID)
	if err != nil {
		return nil, notFound(err, "Assignment")
	}
	if !authz.Can(id, authz.OpenChat, *a) || (id.IsTeacher() && id.ID != teacherID) {
		return nil, apperrors.Forbidden("Not authorized to access this chat")
	}
	if !a.IsAssignedTo(teacherID) {
		return nil, apperrors.NotFound("Chat not found")
	}

	chat, _, err := c.ensureChat(ctx, c.store, a.ID, teacherID, a.StudentID)
	if err != nil {
		return nil, unexpected(err)
	}
	return c.loadChat(ctx, chat.ID)
}

// CreateChat opens a thread explicitly. Teachers talk to the owner; students
// name the teacher.
func (c *Core) CreateChat(ctx context.Context, id authz.Identity, in CreateChatInput) (*models.Chat, error) {
	if err := c.check(in); err != nil {
		return nil, err
	}
	a, err := c.store.FindAssignment(ctx, in.AssignmentID)
	if err != nil {
		return nil, notFound(err, "Assignment")
	}

	var teacherID uuid.UUID
	switch {
	case id.IsTeacher():
		teacherID = id.ID
	case id.IsStudent():
		if in.TeacherID == nil || *in.TeacherID == uuid.Nil {
			return nil, apperrors.Validation("Teacher ID is required")
		}
		teacherID = *in.TeacherID
	default:
		return nil, apperrors.Forbidden("Only teachers and students can create chats")
	}
	if !authz.Can(id, authz.OpenChat, *a) {
		return nil, apperrors.Forbidden("Not authorized to open a chat on this assignment")
	}

	now := c.now()
	chat := &models.Chat{
		AssignmentID: a.ID,
		TeacherID:    teacherID,
		StudentID:    a.StudentID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	err = c.store.Transaction(ctx, func(tx *store.Store) error {
		if err := tx.CreateChat(ctx, chat); err != nil {
			return err
		}
		if in.InitialMessage == "" {
			return nil
		}
		return tx.AppendMessage(ctx, chat.ID, &models.ChatMessage{
			SenderID:  id.ID,
			Content:   in.InitialMessage,
			Timestamp: now,
		})
	})
	switch {
	case errors.Is(err, store.ErrDuplicate):
		return nil, apperrors.Conflict("Chat already exists")
	case err != nil:
		return nil, unexpected(err)
	}
	return c.loadChat(ctx, chat.ID)
}

// PostMessage appends to a chat and pushes it to the assignment room.
func (c *Core) PostMessage(ctx context.Context, id authz.Identity, chatID uuid.UUID, in PostMessageInput) (*models.ChatMessage, error) {
	if err := c.check(in); err != nil {
		return nil, err
	}
	chat, err := c.store.FindChatByID(ctx, chatID)
	if err != nil {
		return nil, notFound(err, "Chat")
	}
	if !authz.InChat(id, *chat) {
		return nil, apperrors.Forbidden("Not authorized to post in this chat")
	}

	msg := &models.ChatMessage{
		SenderID:  id.ID,
		Content:   in.Content,
		Timestamp: c.now(),
	}
	if in.IsBid && id.IsTeacher() && in.BidAmount != nil {
		msg.IsBid = true
		msg.BidAmount = in.BidAmount
	}
	if err := c.store.AppendMessage(ctx, chat.ID, msg); err != nil {
		return nil, unexpected(err)
	}

	c.hub.EmitToRoom(realtime.AssignmentRoom(chat.AssignmentID.String()), realtime.EventReceiveMessage, ChatMessageEvent{
		RoomID:     chat.AssignmentID,
		ChatID:     chat.ID,
		Sender:     id.ID,
		SenderName: id.Name,
		Content:    msg.Content,
		IsBid:      msg.IsBid,
		BidAmount:  msg.BidAmount,
		Timestamp:  msg.Timestamp,
	})
	return msg, nil
}

// ListChats returns the caller's threads, most recently active first.
func (c *Core) ListChats(ctx context.Context, id authz.Identity) ([]models.Chat, error) {
	var f store.ChatFilter
	switch {
	case id.IsStudent():
		f.StudentID = &id.ID
	case id.IsTeacher():
		f.TeacherID = &id.ID
	case !id.IsAdmin():
		return nil, apperrors.Forbidden("Unknown role")
	}
	chats, err := c.store.ListChats(ctx, f)
	if err != nil {
		return nil, unexpected(err)
	}
	return chats, nil
}

func (c *Core) GetChat(ctx context.Context, id authz.Identity, chatID uuid.UUID) (*models.Chat, error) {
	chat, err := c.loadChat(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !authz.CanReadChat(id, *chat) {
		return nil, apperrors.Forbidden("Not authorized to access this chat")
	}
	return chat, nil
}

func (c *Core) loadChat(ctx context.Context, chatID uuid.UUID) (*models.Chat, error) {
	chat, err := c.store.LoadChat(ctx, chatID)
	if err != nil {
		return nil, notFound(err, "Chat")
	}
	return chat, nil
}
