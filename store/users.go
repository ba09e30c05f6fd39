package store

import (
	"context"

	"github.com/anjiri1684/assignment_bidding/models"
	"github.com/google/uuid"
)

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	return translate(s.conn(ctx).Create(u).Error, "create user")
}

func (s *Store) FindUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	if err := s.conn(ctx).Preload("Subjects").First(&u, "id = ?", id).Error; err != nil {
		return nil, translate(err, "find user")
	}
	return &u, nil
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.conn(ctx).Preload("Subjects").Where("email = ?", email).First(&u).Error; err != nil {
		return nil, translate(err, "find user by email")
	}
	return &u, nil
}

func (s *Store) TeacherSubjects(ctx context.Context, teacherID uuid.UUID) ([]string, error) {
	var subjects []string
	err := s.conn(ctx).Model(&models.TeacherSubject{}).
		Where("user_id = ?", teacherID).
		Order("subject").
		Pluck("subject", &subjects).Error
	return subjects, translate(err, "teacher subjects")
}

// TeacherIDsForSubject lists teachers who declared subject.
func (s *Store) TeacherIDsForSubject(ctx context.Context, subject string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := s.conn(ctx).Model(&models.TeacherSubject{}).
		Joins("JOIN users ON users.id = teacher_subjects.user_id").
		Where("teacher_subjects.subject = ? AND users.role = ?", subject, models.RoleTeacher).
		Pluck("teacher_subjects.user_id", &ids).Error
	return ids, translate(err, "teachers for subject")
}
