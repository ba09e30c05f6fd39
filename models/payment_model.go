package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Payment struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	AssignmentID  uuid.UUID `gorm:"type:uuid;not null;index" json:"assignment_id"`
	StudentID     uuid.UUID `gorm:"type:uuid;not null;index" json:"student_id"`
	TeacherID     uuid.UUID `gorm:"type:uuid;not null;index" json:"teacher_id"`
	Amount        float64   `gorm:"type:numeric(10,2);not null" json:"amount"`
	Method        string    `gorm:"size:50;not null" json:"payment_method"`
	TransactionID string    `gorm:"size:255;not null" json:"transaction_id"`
	Status        string    `gorm:"size:20;not null" json:"status"`

	Assignment *Assignment `gorm:"foreignkey:AssignmentID" json:"assignment,omitempty"`
	Student    *User       `gorm:"foreignkey:StudentID" json:"student,omitempty"`
	Teacher    *User       `gorm:"foreignkey:TeacherID" json:"teacher,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
