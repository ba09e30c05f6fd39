package store

import (
	"context"

	"github.com/anjiri1684/assignment_bidding/models"
	"github.com/google/uuid"
)

func (s *Store) CreatePayment(ctx context.Context, p *models.Payment) error {
	return translate(s.conn(ctx).Create(p).Error, "create payment")
}

func (s *Store) FindPayment(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	var p models.Payment
	err := s.conn(ctx).
		Preload("Assignment").
		Preload("Student").
		Preload("Teacher").
		First(&p, "id = ?", id).Error
	if err != nil {
		return nil, translate(err, "find payment")
	}
	return &p, nil
}

type PaymentFilter struct {
	StudentID    *uuid.UUID
	TeacherID    *uuid.UUID
	AssignmentID *uuid.UUID
}

func (s *Store) ListPayments(ctx context.Context, f PaymentFilter) ([]models.Payment, error) {
	q := s.conn(ctx).Model(&models.Payment{})
	if f.StudentID != nil {
		q = q.Where("student_id = ?", *f.StudentID)
	}
	if f.TeacherID != nil {
		q = q.Where("teacher_id = ?", *f.TeacherID)
	}
	if f.AssignmentID != nil {
		q = q.Where("assignment_id = ?", *f.AssignmentID)
	}
	var out []models.Payment
	err := q.Preload("Assignment").
		Preload("Student").
		Preload("Teacher").
		Order("created_at desc").
		Find(&out).Error
	return out, translate(err, "list payments")
}
