package models

import "github.com/google/uuid"

type TeacherSubject struct {
	UserID  uuid.UUID `gorm:"type:uuid;primaryKey" json:"-"`
	Subject string    `gorm:"size:100;primaryKey;index" json:"subject"`
}
