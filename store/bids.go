package store

import (
	"context"

	"github.com/anjiri1684/assignment_bidding/models"
	"github.com/google/uuid"
)

func (s *Store) CreateBid(ctx context.Context, b *models.Bid) error {
	return translate(s.conn(ctx).Create(b).Error, "create bid")
}

func (s *Store) FindBid(ctx context.Context, id uuid.UUID) (*models.Bid, error) {
	var b models.Bid
	if err := s.conn(ctx).First(&b, "id = ?", id).Error; err != nil {
		return nil, translate(err, "find bid")
	}
	return &b, nil
}

// FindBidFor returns the bid teacherID placed on assignmentID.
func (s *Store) FindBidFor(ctx context.Context, assignmentID, teacherID uuid.UUID) (*models.Bid, error) {
	var b models.Bid
	err := s.conn(ctx).
		Where("assignment_id = ? AND teacher_id = ?", assignmentID, teacherID).
		First(&b).Error
	if err != nil {
		return nil, translate(err, "find bid for teacher")
	}
	return &b, nil
}

// UpdatePendingBid overwrites amount and message while the bid is pending.
func (s *Store) UpdatePendingBid(ctx context.Context, id uuid.UUID, amount float64, message string) error {
	res := s.conn(ctx).Model(&models.Bid{}).
		Where("id = ? AND status = ?", id, models.BidPending).
		Updates(map[string]any{"amount": amount, "message": message})
	return affected(res, "update bid")
}

func (s *Store) DeletePendingBid(ctx context.Context, id uuid.UUID) error {
	res := s.conn(ctx).
		Where("id = ? AND status = ?", id, models.BidPending).
		Delete(&models.Bid{})
	return affected(res, "delete bid")
}

func (s *Store) AcceptPendingBid(ctx context.Context, id uuid.UUID) error {
	res := s.conn(ctx).Model(&models.Bid{}).
		Where("id = ? AND status = ?", id, models.BidPending).
		Update("status", models.BidAccepted)
	return affected(res, "accept bid")
}

// RejectOtherBids rejects every bid on assignmentID except winnerID.
func (s *Store) RejectOtherBids(ctx context.Context, assignmentID, winnerID uuid.UUID) error {
	err := s.conn(ctx).Model(&models.Bid{}).
		Where("assignment_id = ? AND id <> ?", assignmentID, winnerID).
		Update("status", models.BidRejected).Error
	return translate(err, "reject other bids")
}

// PendingBidders lists teachers with a pending bid on assignmentID, except one.
func (s *Store) PendingBidders(ctx context.Context, assignmentID, except uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := s.conn(ctx).Model(&models.Bid{}).
		Where("assignment_id = ? AND status = ? AND teacher_id <> ?", assignmentID, models.BidPending, except).
		Order("created_at asc").
		Pluck("teacher_id", &ids).Error
	return ids, translate(err, "pending bidders")
}

func (s *Store) BidsForAssignment(ctx context.Context, assignmentID uuid.UUID) ([]models.Bid, error) {
	var bids []models.Bid
	err := s.conn(ctx).
		Preload("Teacher").
		Preload("Teacher.Subjects").
		Where("assignment_id = ?", assignmentID).
		Order("created_at desc").
		Find(&bids).Error
	return bids, translate(err, "bids for assignment")
}

func (s *Store) BidsForTeacher(ctx context.Context, teacherID uuid.UUID) ([]models.Bid, error) {
	var bids []models.Bid
	err := s.conn(ctx).
		Preload("Assignment").
		Preload("Assignment.Student").
		Where("teacher_id = ?", teacherID).
		Order("created_at desc").
		Find(&bids).Error
	return bids, translate(err, "bids for teacher")
}

func (s *Store) TeacherBidFor(ctx context.Context, assignmentID, teacherID uuid.UUID) (*models.Bid, error) {
	var b models.Bid
	err := s.conn(ctx).
		Preload("Assignment").
		Preload("Assignment.Student").
		Where("assignment_id = ? AND teacher_id = ?", assignmentID, teacherID).
		First(&b).Error
	if err != nil {
		return nil, translate(err, "teacher bid for assignment")
	}
	return &b, nil
}
