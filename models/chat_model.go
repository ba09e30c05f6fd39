package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Chat struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	AssignmentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_chats_participants" json:"assignment_id"`
	TeacherID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_chats_participants;index" json:"teacher_id"`
	StudentID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_chats_participants;index" json:"student_id"`

	Messages []ChatMessage `gorm:"foreignKey:ChatID" json:"messages"`

	Assignment *Assignment `gorm:"foreignkey:AssignmentID" json:"assignment,omitempty"`
	Teacher    *User       `gorm:"foreignkey:TeacherID" json:"teacher,omitempty"`
	Student    *User       `gorm:"foreignkey:StudentID" json:"student,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Chat) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (c Chat) HasParticipant(userID uuid.UUID) bool {
	return c.TeacherID == userID || c.StudentID == userID
}

type ChatMessage struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	ChatID    uuid.UUID `gorm:"type:uuid;not null;index" json:"chat_id"`
	SenderID  uuid.UUID `gorm:"type:uuid;not null" json:"sender_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	IsBid     bool      `gorm:"not null;default:false" json:"is_bid"`
	BidAmount *float64  `gorm:"type:numeric(10,2)" json:"bid_amount,omitempty"`
	Timestamp time.Time `gorm:"not null;index" json:"timestamp"`
}

func (m *ChatMessage) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
