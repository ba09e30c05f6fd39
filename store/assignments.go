package store

import (
	"context"
	"time"

	"github.com/anjiri1684/assignment_bidding/models"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// AssignmentScope selects which rows a caller may list.
type AssignmentScope int

const (
	// ScopeAll applies no role restriction.
	ScopeAll AssignmentScope = iota
	// ScopeStudent restricts to StudentID.
	ScopeStudent
	// ScopeTeacher applies the teacher browsing rules.
	ScopeTeacher
)

type AssignmentFilter struct {
	Scope           AssignmentScope
	StudentID       uuid.UUID
	TeacherID       uuid.UUID
	TeacherSubjects []string
	Status          models.AssignmentStatus
	Subject         string
}

func (s *Store) CreateAssignment(ctx context.Context, a *models.Assignment) error {
	return translate(s.conn(ctx).Create(a).Error, "create assignment")
}

func (s *Store) FindAssignment(ctx context.Context, id uuid.UUID) (*models.Assignment, error) {
	var a models.Assignment
	err := s.conn(ctx).
		Preload("Student").
		Preload("AssignedTo").
		First(&a, "id = ?", id).Error
	if err != nil {
		return nil, translate(err, "find assignment")
	}
	return &a, nil
}

// ListAssignments returns matching assignments, newest first.
func (s *Store) ListAssignments(ctx context.Context, f AssignmentFilter) ([]models.Assignment, error) {
	q := s.conn(ctx).Model(&models.Assignment{})
	if f.Subject != "" {
		q = q.Where("subject = ?", f.Subject)
	}

	switch f.Scope {
	case ScopeStudent:
		q = q.Where("student_id = ?", f.StudentID)
		if f.Status != "" {
			q = q.Where("status = ?", f.Status)
		}
	case ScopeTeacher:
		q = teacherScope(q, f)
	default:
		if f.Status != "" {
			q = q.Where("status = ?", f.Status)
		}
	}

	var out []models.Assignment
	err := q.Preload("Student").
		Preload("AssignedTo").
		Order("created_at desc").
		Find(&out).Error
	return out, translate(err, "list assignments")
}

func teacherScope(q *gorm.DB, f AssignmentFilter) *gorm.DB {
	switch f.Status {
	case models.AssignmentAssigned, models.AssignmentCompleted, models.AssignmentDelivered:
		return q.Where("status = ? AND assigned_to_id = ?", f.Status, f.TeacherID)
	case models.AssignmentPending:
		q = q.Where("status = ?", models.AssignmentPending)
		if len(f.TeacherSubjects) > 0 {
			q = q.Where("subject IN ?", f.TeacherSubjects)
		}
		return q
	default:
		if len(f.TeacherSubjects) == 0 {
			return q.Where("assigned_to_id = ?", f.TeacherID)
		}
		return q.Where(
			"(status = ? AND subject IN ?) OR assigned_to_id = ?",
			models.AssignmentPending, f.TeacherSubjects, f.TeacherID,
		)
	}
}

// TransitionAssignment applies updates only while the row is still in status
// from and matches every extra condition. ErrStale reports a lost race.
func (s *Store) TransitionAssignment(ctx context.Context, id uuid.UUID, from models.AssignmentStatus, updates map[string]any, conds ...Cond) error {
	q := s.conn(ctx).Model(&models.Assignment{}).Where("id = ? AND status = ?", id, from)
	for _, c := range conds {
		q = q.Where(c.Query, c.Args...)
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now()
	}
	return affected(q.Updates(updates), "transition assignment")
}

// Cond is an extra predicate for a conditional write.
type Cond struct {
	Query string
	Args  []any
}

func Where(query string, args ...any) Cond {
	return Cond{Query: query, Args: args}
}

// TouchPendingAssignment claims the assignment row for the current
// transaction and fails with ErrStale unless it is still pending.
func (s *Store) TouchPendingAssignment(ctx context.Context, id uuid.UUID) error {
	res := s.conn(ctx).Model(&models.Assignment{}).
		Where("id = ? AND status = ?", id, models.AssignmentPending).
		Update("updated_at", time.Now())
	return affected(res, "touch pending assignment")
}

// DeletePendingAssignment removes a pending assignment and its bids.
func (s *Store) DeletePendingAssignment(ctx context.Context, id uuid.UUID) error {
	res := s.conn(ctx).
		Where("id = ? AND status = ?", id, models.AssignmentPending).
		Delete(&models.Assignment{})
	if err := affected(res, "delete assignment"); err != nil {
		return err
	}
	err := s.conn(ctx).Where("assignment_id = ?", id).Delete(&models.Bid{}).Error
	return translate(err, "delete assignment bids")
}

// UnpaidCompletedBefore lists completed, unpaid assignments last updated before cutoff.
func (s *Store) UnpaidCompletedBefore(ctx context.Context, cutoff time.Time) ([]models.Assignment, error) {
	var out []models.Assignment
	err := s.conn(ctx).
		Preload("Student").
		Where("status = ? AND is_paid = ? AND updated_at < ?", models.AssignmentCompleted, false, cutoff).
		Order("updated_at asc").
		Find(&out).Error
	if err != nil {
		return nil, errors.Wrap(err, "unpaid completed assignments")
	}
	return out, nil
}
