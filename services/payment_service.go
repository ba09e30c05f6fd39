package services

import (
	"context"
	"time"

	"github.com/anjiri1684/assignment_bidding/apperrors"
	"github.com/anjiri1684/assignment_bidding/authz"
	"github.com/anjiri1684/assignment_bidding/models"
	"github.com/anjiri1684/assignment_bidding/notifications"
	"github.com/anjiri1684/assignment_bidding/realtime"
	"github.com/anjiri1684/assignment_bidding/store"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const PaymentCompleted = "completed"

// PayInput is what the payment provider already confirmed.
type PayInput struct {
	AssignmentID  uuid.UUID `json:"assignmentId" validate:"required"`
	Method        string    `json:"paymentMethod" validate:"required,max=50"`
	TransactionID string    `json:"transactionId" validate:"required,max=255"`
}

// Pay records the payment and delivers the assignment in one transaction.
func (c *Core) Pay(ctx context.Context, id authz.Identity, in PayInput) (*models.Payment, error) {
	if err := c.check(in); err != nil {
		return nil, err
	}
	a, err := c.store.FindAssignment(ctx, in.AssignmentID)
	if err != nil {
		return nil, notFound(err, "Assignment")
	}
	if !authz.Can(id, authz.PayAssignment, *a) {
		return nil, apperrors.Forbidden("Not authorized to make payment for this assignment")
	}
	if a.Status != models.AssignmentCompleted {
		return nil, apperrors.InvalidState("Cannot make payment for an assignment that is not completed")
	}
	if a.IsPaid {
		return nil, apperrors.InvalidState("Assignment is already paid")
	}
	if a.AssignedToID == nil || a.FinalBid == nil {
		return nil, apperrors.Unexpected(errors.Errorf("completed assignment %s has no assignee", a.ID))
	}

	payment := &models.Payment{
		AssignmentID:  a.ID,
		StudentID:     a.StudentID,
		TeacherID:     *a.AssignedToID,
		Amount:        *a.FinalBid,
		Method:        in.Method,
		TransactionID: in.TransactionID,
		Status:        PaymentCompleted,
		CreatedAt:     c.now(),
	}
	err = c.store.Transaction(ctx, func(tx *store.Store) error {
		err := tx.TransitionAssignment(ctx, a.ID, models.AssignmentCompleted, map[string]any{
			"status":     models.AssignmentDelivered,
			"is_paid":    true,
			"updated_at": c.now(),
		}, store.Where("is_paid = ?", false))
		if err != nil {
			return err
		}
		return tx.CreatePayment(ctx, payment)
	})
	switch {
	case errors.Is(err, store.ErrStale):
		return nil, apperrors.InvalidState("Assignment is already paid")
	case err != nil:
		return nil, unexpected(err)
	}

	c.emit(realtime.EventStatusUpdate, StatusUpdateEvent{
		AssignmentID: a.ID,
		Status:       string(models.AssignmentDelivered),
		TeacherID:    a.AssignedToID,
		Title:        a.Title,
	}, a.StudentID, *a.AssignedToID)

	if a.AssignedTo != nil {
		subject, body := notifications.PaymentReceived(a.AssignedTo.Name, a.Title, payment.Amount)
		c.mailer.SendEmail(a.AssignedTo.Name, a.AssignedTo.Email, subject, body)
	}

	log.WithFields(log.Fields{"assignment": a.ID, "payment": payment.ID}).Info("✅ Assignment paid and delivered")
	return payment, nil
}

func (c *Core) ListPayments(ctx context.Context, id authz.Identity) ([]models.Payment, error) {
	var f store.PaymentFilter
	switch {
	case id.IsStudent():
		f.StudentID = &id.ID
	case id.IsTeacher():
		f.TeacherID = &id.ID
	case !id.IsAdmin():
		return nil, apperrors.Forbidden("Unknown role")
	}
	payments, err := c.store.ListPayments(ctx, f)
	if err != nil {
		return nil, unexpected(err)
	}
	return payments, nil
}

func (c *Core) GetPayment(ctx context.Context, id authz.Identity, paymentID uuid.UUID) (*models.Payment, error) {
	p, err := c.store.FindPayment(ctx, paymentID)
	if err != nil {
		return nil, notFound(err, "Payment")
	}
	if !authz.CanViewPayment(id, *p) {
		return nil, apperrors.Forbidden("Not authorized to view this payment")
	}
	return p, nil
}

func (c *Core) PaymentsForAssignment(ctx context.Context, id authz.Identity, assignmentID uuid.UUID) ([]models.Payment, error) {
	a, err := c.store.FindAssignment(ctx, assignmentID)
	if err != nil {
		return nil, notFound(err, "Assignment")
	}
	rel := authz.RelationTo(id, *a)
	if !id.IsAdmin() && rel != authz.Owner && rel != authz.Assignee {
		return nil, apperrors.Forbidden("Not authorized to view payments for this assignment")
	}
	payments, err := c.store.ListPayments(ctx, store.PaymentFilter{AssignmentID: &a.ID})
	if err != nil {
		return nil, unexpected(err)
	}
	return payments, nil
}

// RemindUnpaid emails every student whose work has waited unpaid for longer
// than after. It returns how many reminders went out.
func (c *Core) RemindUnpaid(ctx context.Context, after time.Duration) (int, error) {
	pending, err := c.store.UnpaidCompletedBefore(ctx, c.now().Add(-after))
	if err != nil {
		return 0, err
	}
	for _, a := range pending {
		amount := a.Price
		if a.FinalBid != nil {
			amount = *a.FinalBid
		}
		subject, body := notifications.UnpaidReminder(a.Student.Name, a.Title, amount)
		c.mailer.SendEmail(a.Student.Name, a.Student.Email, subject, body)
	}
	return len(pending), nil
}
