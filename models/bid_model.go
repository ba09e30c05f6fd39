package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BidStatus string

const (
	BidPending  BidStatus = "pending"
	BidAccepted BidStatus = "accepted"
	BidRejected BidStatus = "rejected"
)

type Bid struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	AssignmentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_bids_assignment_teacher" json:"assignment_id"`
	TeacherID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_bids_assignment_teacher;index" json:"teacher_id"`
	Amount       float64   `gorm:"type:numeric(10,2);not null" json:"amount"`
	Message      string    `gorm:"size:500" json:"message"`
	Status       BidStatus `gorm:"size:20;not null;default:'pending'" json:"status"`

	Teacher    User        `gorm:"foreignkey:TeacherID" json:"teacher,omitempty"`
	Assignment *Assignment `gorm:"foreignkey:AssignmentID" json:"assignment,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b *Bid) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
