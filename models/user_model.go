package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleStudent    Role = "student"
	RoleTeacher    Role = "teacher"
	RoleSuperAdmin Role = "super_admin"
)

func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleTeacher || r == RoleSuperAdmin
}

type User struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name     string    `gorm:"size:255;not null" json:"name"`
	Email    string    `gorm:"size:255;not null;unique" json:"email"`
	Password string    `gorm:"not null" json:"-"`
	Role     Role      `gorm:"size:20;not null;default:'student'" json:"role"`

	Subjects []TeacherSubject `gorm:"foreignKey:UserID" json:"subjects,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// SubjectNames flattens the preloaded subject rows.
func (u User) SubjectNames() []string {
	names := make([]string, 0, len(u.Subjects))
	for _, s := range u.Subjects {
		names = append(names, s.Subject)
	}
	return names
}
