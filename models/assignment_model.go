package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AssignmentStatus string

const (
	AssignmentPending   AssignmentStatus = "pending"
	AssignmentAssigned  AssignmentStatus = "assigned"
	AssignmentCompleted AssignmentStatus = "completed"
	AssignmentDelivered AssignmentStatus = "delivered"
)

// HasAssignee reports whether a teacher must be set for the status.
func (s AssignmentStatus) HasAssignee() bool {
	return s == AssignmentAssigned || s == AssignmentCompleted || s == AssignmentDelivered
}

// FileRef points at a blob held by the upload provider.
type FileRef struct {
	URL string `json:"url"`
	ID  string `json:"id"`
}

type Assignment struct {
	ID           uuid.UUID        `gorm:"type:uuid;primary_key" json:"id"`
	StudentID    uuid.UUID        `gorm:"type:uuid;not null;index" json:"student_id"`
	Title        string           `gorm:"size:100;not null" json:"title"`
	Description  string           `gorm:"type:text;not null" json:"description"`
	Subject      string           `gorm:"size:100;not null;index" json:"subject"`
	Price        float64          `gorm:"type:numeric(10,2);not null" json:"price"`
	Status       AssignmentStatus `gorm:"size:20;not null;default:'pending';index" json:"status"`
	AssignedToID *uuid.UUID       `gorm:"type:uuid;index" json:"assigned_to_id"`
	FinalBid     *float64         `gorm:"type:numeric(10,2)" json:"final_bid"`

	SubmissionFileURL *string `gorm:"type:text" json:"submission_file_url"`
	SubmissionFileID  *string `gorm:"size:255" json:"submission_file_id"`
	PreviewFileURL    *string `gorm:"type:text" json:"preview_file_url"`
	PreviewFileID     *string `gorm:"size:255" json:"preview_file_id"`

	IsPaid bool `gorm:"not null;default:false" json:"is_paid"`

	Student    User  `gorm:"foreignkey:StudentID" json:"student,omitempty"`
	AssignedTo *User `gorm:"foreignkey:AssignedToID" json:"assigned_to,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (a *Assignment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

func (a Assignment) IsAssignedTo(teacherID uuid.UUID) bool {
	return a.AssignedToID != nil && *a.AssignedToID == teacherID
}

func (a Assignment) Submission() *FileRef {
	return fileRef(a.SubmissionFileURL, a.SubmissionFileID)
}

func (a Assignment) Preview() *FileRef {
	return fileRef(a.PreviewFileURL, a.PreviewFileID)
}

func fileRef(url, id *string) *FileRef {
	if url == nil || *url == "" {
		return nil
	}
	ref := &FileRef{URL: *url}
	if id != nil {
		ref.ID = *id
	}
	return ref
}
