package store

import (
	"context"

	"github.com/anjiri1684/assignment_bidding/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func (s *Store) CreateChat(ctx context.Context, c *models.Chat) error {
	return translate(s.conn(ctx).Create(c).Error, "create chat")
}

func (s *Store) FindChat(ctx context.Context, assignmentID, teacherID, studentID uuid.UUID) (*models.Chat, error) {
	var c models.Chat
	err := s.conn(ctx).
		Where("assignment_id = ? AND teacher_id = ? AND student_id = ?", assignmentID, teacherID, studentID).
		First(&c).Error
	if err != nil {
		return nil, translate(err, "find chat")
	}
	return &c, nil
}

// FindChatFor looks a chat up by assignment and teacher only.
func (s *Store) FindChatFor(ctx context.Context, assignmentID, teacherID uuid.UUID) (*models.Chat, error) {
	var c models.Chat
	err := s.conn(ctx).
		Where("assignment_id = ? AND teacher_id = ?", assignmentID, teacherID).
		First(&c).Error
	if err != nil {
		return nil, translate(err, "find chat for teacher")
	}
	return &c, nil
}

// ChatIDsForTeacher maps assignment id to chat id for every chat of teacherID.
func (s *Store) ChatIDsForTeacher(ctx context.Context, teacherID uuid.UUID) (map[uuid.UUID]uuid.UUID, error) {
	var rows []models.Chat
	err := s.conn(ctx).Select("id", "assignment_id").Where("teacher_id = ?", teacherID).Find(&rows).Error
	if err != nil {
		return nil, translate(err, "chat ids for teacher")
	}
	out := make(map[uuid.UUID]uuid.UUID, len(rows))
	for _, r := range rows {
		out[r.AssignmentID] = r.ID
	}
	return out, nil
}

// LoadChat returns the chat with participants, assignment and ordered messages.
func (s *Store) LoadChat(ctx context.Context, id uuid.UUID) (*models.Chat, error) {
	var c models.Chat
	err := s.conn(ctx).
		Preload("Student").
		Preload("Teacher").
		Preload("Assignment").
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("timestamp asc")
		}).
		First(&c, "id = ?", id).Error
	if err != nil {
		return nil, translate(err, "load chat")
	}
	return &c, nil
}

// AppendMessage stores m on chatID and bumps the chat's updated_at.
func (s *Store) AppendMessage(ctx context.Context, chatID uuid.UUID, m *models.ChatMessage) error {
	m.ChatID = chatID
	if err := s.conn(ctx).Create(m).Error; err != nil {
		return translate(err, "append message")
	}
	res := s.conn(ctx).Model(&models.Chat{}).Where("id = ?", chatID).Update("updated_at", m.Timestamp)
	return affected(res, "touch chat")
}

type ChatFilter struct {
	StudentID *uuid.UUID
	TeacherID *uuid.UUID
}

// ListChats returns chats newest-updated first.
func (s *Store) ListChats(ctx context.Context, f ChatFilter) ([]models.Chat, error) {
	q := s.conn(ctx).Model(&models.Chat{})
	if f.StudentID != nil {
		q = q.Where("student_id = ?", *f.StudentID)
	}
	if f.TeacherID != nil {
		q = q.Where("teacher_id = ?", *f.TeacherID)
	}
	var out []models.Chat
	err := q.Preload("Student").
		Preload("Teacher").
		Preload("Assignment").
		Order("updated_at desc").
		Find(&out).Error
	return out, translate(err, "list chats")
}

func (s *Store) FindChatByID(ctx context.Context, id uuid.UUID) (*models.Chat, error) {
	var c models.Chat
	if err := s.conn(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, translate(err, "find chat by id")
	}
	return &c, nil
}
