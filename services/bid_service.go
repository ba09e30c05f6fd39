package services

import (
	"context"

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

type PlaceBidInput struct {
	AssignmentID uuid.UUID `json:"assignmentId" validate:"required"`
	Amount       float64   `json:"amount" validate:"required,gt=0"`
	Message      string    `json:"message" validate:"max=500"`
}

type UpdateBidInput struct {
	Amount  float64 `json:"amount" validate:"required,gt=0"`
	Message string  `json:"message" validate:"max=500"`
}

// PlaceBidResult tells a fresh bid apart from a revision of the teacher's
// existing one. Exactly one of Created and Updated is set.
type PlaceBidResult struct {
	Created *models.Bid
	Updated *models.Bid
}

func (r PlaceBidResult) Bid() *models.Bid {
	if r.Created != nil {
		return r.Created
	}
	return r.Updated
}

func (r PlaceBidResult) IsUpdate() bool { return r.Updated != nil }

// TeacherBid is a bid as its teacher sees it, with the chat to jump into.
type TeacherBid struct {
	models.Bid
	ChatID *uuid.UUID `json:"chatId,omitempty"`
}

var errBidExists = errors.New("bid exists")

// PlaceBid creates the teacher's bid on a pending assignment, or revises it
// when one already exists.
func (c *Core) PlaceBid(ctx context.Context, id authz.Identity, in PlaceBidInput) (PlaceBidResult, error) {
	if !id.IsTeacher() {
		return PlaceBidResult{}, apperrors.Forbidden("Only teachers can place bids")
	}
	if err := c.check(in); err != nil {
		return PlaceBidResult{}, err
	}

	a, err := c.store.FindAssignment(ctx, in.AssignmentID)
	if err != nil {
		return PlaceBidResult{}, notFound(err, "Assignment")
	}
	if a.Status != models.AssignmentPending {
		return PlaceBidResult{}, apperrors.InvalidState("Cannot bid on an assignment that is no longer pending")
	}

	existing, err := c.store.FindBidFor(ctx, a.ID, id.ID)
	switch {
	case err == nil:
		return c.reviseAsResult(ctx, id, a, existing, in.Amount, in.Message)
	case !errors.Is(err, store.ErrNotFound):
		return PlaceBidResult{}, unexpected(err)
	}

	if !authz.Can(id, authz.PlaceBid, *a) {
		return PlaceBidResult{}, apperrors.Forbidden("Not authorized to bid on this assignment")
	}

	bid := &models.Bid{
		AssignmentID: a.ID,
		TeacherID:    id.ID,
		Amount:       in.Amount,
		Message:      in.Message,
		Status:       models.BidPending,
		CreatedAt:    c.now(),
		UpdatedAt:    c.now(),
	}
	err = c.store.Transaction(ctx, func(tx *store.Store) error {
		if err := tx.TouchPendingAssignment(ctx, a.ID); err != nil {
			return err
		}
		if err := tx.CreateBid(ctx, bid); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				return errBidExists
			}
			return err
		}
		return nil
	})
	switch {
	case errors.Is(err, errBidExists):
		// Another request from the same teacher won the insert.
		existing, err := c.store.FindBidFor(ctx, a.ID, id.ID)
		if err != nil {
			return PlaceBidResult{}, unexpected(err)
		}
		return c.reviseAsResult(ctx, id, a, existing, in.Amount, in.Message)
	case errors.Is(err, store.ErrStale):
		return PlaceBidResult{}, apperrors.InvalidState("Cannot bid on an assignment that is no longer pending")
	case err != nil:
		return PlaceBidResult{}, unexpected(err)
	}

	chat, created, err := c.ensureChat(ctx, c.store, a.ID, id.ID, a.StudentID)
	if err != nil {
		bestEffort(err, "bid chat", log.Fields{"assignment": a.ID, "teacher": id.ID})
	} else {
		text := "I'm bidding " + dollars(bid.Amount) + " for your assignment"
		if created {
			text = "I'm interested in your assignment and I'm bidding " + dollars(bid.Amount)
		}
		c.appendBidMessage(ctx, chat, id.ID, text, bid.Amount)
	}

	c.emit(realtime.EventNewBid, c.bidEvent(ctx, id, bid), a.StudentID, id.ID)
	log.WithFields(log.Fields{"assignment": a.ID, "bid": bid.ID}).Info("✅ Bid placed")
	return PlaceBidResult{Created: bid}, nil
}

func (c *Core) UpdateBid(ctx context.Context, id authz.Identity, bidID uuid.UUID, in UpdateBidInput) (*models.Bid, error) {
	if err := c.check(in); err != nil {
		return nil, err
	}
	bid, err := c.store.FindBid(ctx, bidID)
	if err != nil {
		return nil, notFound(err, "Bid")
	}
	if !authz.OwnsBid(id, *bid) {
		return nil, apperrors.Forbidden("Not authorized to update this bid")
	}
	a, err := c.store.FindAssignment(ctx, bid.AssignmentID)
	if err != nil {
		return nil, notFound(err, "Assignment")
	}
	return c.reviseBid(ctx, id, a, bid, in.Amount, in.Message)
}

func (c *Core) reviseAsResult(ctx context.Context, id authz.Identity, a *models.Assignment, bid *models.Bid, amount float64, message string) (PlaceBidResult, error) {
	updated, err := c.reviseBid(ctx, id, a, bid, amount, message)
	if err != nil {
		return PlaceBidResult{}, err
	}
	return PlaceBidResult{Updated: updated}, nil
}

// reviseBid overwrites a pending bid and echoes the new amount into the chat.
func (c *Core) reviseBid(ctx context.Context, id authz.Identity, a *models.Assignment, bid *models.Bid, amount float64, message string) (*models.Bid, error) {
	if bid.Status != models.BidPending {
		return nil, apperrors.InvalidState("Only pending bids can be updated")
	}

	err := c.store.Transaction(ctx, func(tx *store.Store) error {
		if err := tx.TouchPendingAssignment(ctx, a.ID); err != nil {
			return err
		}
		return tx.UpdatePendingBid(ctx, bid.ID, amount, message)
	})
	switch {
	case errors.Is(err, store.ErrStale):
		return nil, apperrors.InvalidState("Only pending bids on pending assignments can be updated")
	case err != nil:
		return nil, unexpected(err)
	}

	updated, err := c.store.FindBid(ctx, bid.ID)
	if err != nil {
		return nil, unexpected(err)
	}

	chat, _, err := c.ensureChat(ctx, c.store, a.ID, id.ID, a.StudentID)
	if err != nil {
		bestEffort(err, "bid chat", log.Fields{"assignment": a.ID, "teacher": id.ID})
	} else {
		c.appendBidMessage(ctx, chat, id.ID, "I've updated my bid to "+dollars(amount), amount)
	}

	c.emit(realtime.EventBidUpdated, c.bidEvent(ctx, id, updated), a.StudentID, id.ID)
	return updated, nil
}

// WithdrawBid deletes a pending bid for good.
func (c *Core) WithdrawBid(ctx context.Context, id authz.Identity, bidID uuid.UUID) error {
	bid, err := c.store.FindBid(ctx, bidID)
	if err != nil {
		return notFound(err, "Bid")
	}
	if !authz.OwnsBid(id, *bid) {
		return apperrors.Forbidden("Not authorized to withdraw this bid")
	}
	if bid.Status != models.BidPending {
		return apperrors.InvalidState("Only pending bids can be withdrawn")
	}

	err = c.store.DeletePendingBid(ctx, bid.ID)
	if errors.Is(err, store.ErrStale) {
		if _, findErr := c.store.FindBid(ctx, bid.ID); errors.Is(findErr, store.ErrNotFound) {
			return apperrors.NotFound("Bid not found")
		}
		return apperrors.InvalidState("Only pending bids can be withdrawn")
	}
	if err != nil {
		return unexpected(err)
	}
	return nil
}

// AcceptBid assigns the assignment to the bid's teacher. The assignment move,
// the winning bid and the rejection of every sibling commit together.
func (c *Core) AcceptBid(ctx context.Context, id authz.Identity, bidID uuid.UUID) (*models.Assignment, error) {
	bid, err := c.store.FindBid(ctx, bidID)
	if err != nil {
		return nil, notFound(err, "Bid")
	}
	a, err := c.store.FindAssignment(ctx, bid.AssignmentID)
	if err != nil {
		return nil, notFound(err, "Assignment")
	}
	if !authz.Can(id, authz.AcceptBid, *a) {
		return nil, apperrors.Forbidden("Not authorized to accept bids for this assignment")
	}
	if a.Status != models.AssignmentPending {
		return nil, apperrors.InvalidState("Assignment is no longer pending")
	}
	if bid.Status != models.BidPending {
		return nil, apperrors.InvalidState("Bid is no longer pending")
	}

	var previousBidders []uuid.UUID
	err = c.store.Transaction(ctx, func(tx *store.Store) error {
		err := tx.TransitionAssignment(ctx, a.ID, models.AssignmentPending, map[string]any{
			"status":         models.AssignmentAssigned,
			"assigned_to_id": bid.TeacherID,
			"final_bid":      bid.Amount,
			"updated_at":     c.now(),
		})
		if errors.Is(err, store.ErrStale) {
			return apperrors.InvalidState("Assignment is no longer pending")
		}
		if err != nil {
			return err
		}

		err = tx.AcceptPendingBid(ctx, bid.ID)
		if errors.Is(err, store.ErrStale) {
			return apperrors.InvalidState("Bid is no longer pending")
		}
		if err != nil {
			return err
		}

		if previousBidders, err = tx.PendingBidders(ctx, a.ID, bid.TeacherID); err != nil {
			return err
		}
		return tx.RejectOtherBids(ctx, a.ID, bid.ID)
	})
	if err != nil {
		return nil, unexpected(err)
	}

	assigned, err := c.store.FindAssignment(ctx, a.ID)
	if err != nil {
		return nil, unexpected(err)
	}
	var teacher models.User
	if assigned.AssignedTo != nil {
		teacher = *assigned.AssignedTo
	}

	amount := bid.Amount
	if previousBidders == nil {
		previousBidders = []uuid.UUID{}
	}
	audience := append([]uuid.UUID{assigned.StudentID, bid.TeacherID}, previousBidders...)
	c.emit(realtime.EventStatusUpdate, StatusUpdateEvent{
		AssignmentID:    assigned.ID,
		Status:          string(models.AssignmentAssigned),
		TeacherID:       &bid.TeacherID,
		TeacherName:     teacher.Name,
		BidAmount:       &amount,
		PreviousBidders: previousBidders,
		Title:           assigned.Title,
	}, audience...)

	chat, _, err := c.ensureChat(ctx, c.store, assigned.ID, bid.TeacherID, assigned.StudentID)
	if err != nil {
		bestEffort(err, "acceptance chat", log.Fields{"assignment": assigned.ID})
	} else {
		msg := &models.ChatMessage{
			SenderID:  id.ID,
			Content:   "I've accepted your bid of " + dollars(amount) + ". You can now start working on the assignment.",
			Timestamp: c.now(),
		}
		bestEffort(c.store.AppendMessage(ctx, chat.ID, msg), "acceptance chat message", log.Fields{"chat": chat.ID})
	}

	subject, body := notifications.BidAccepted(teacher.Name, assigned.Title, amount)
	c.mailer.SendEmail(teacher.Name, teacher.Email, subject, body)

	log.WithFields(log.Fields{"assignment": assigned.ID, "teacher": bid.TeacherID}).Info("✅ Bid accepted")
	return assigned, nil
}

func (c *Core) ListBidsForAssignment(ctx context.Context, id authz.Identity, assignmentID uuid.UUID) ([]models.Bid, error) {
	a, err := c.store.FindAssignment(ctx, assignmentID)
	if err != nil {
		return nil, notFound(err, "Assignment")
	}
	if !authz.Can(id, authz.ListBids, *a) {
		return nil, apperrors.Forbidden("Not authorized to view bids for this assignment")
	}
	bids, err := c.store.BidsForAssignment(ctx, a.ID)
	if err != nil {
		return nil, unexpected(err)
	}
	return bids, nil
}

func (c *Core) ListBidsForTeacher(ctx context.Context, id authz.Identity) ([]TeacherBid, error) {
	if !id.IsTeacher() {
		return nil, apperrors.Forbidden("Only teachers have bids")
	}
	bids, err := c.store.BidsForTeacher(ctx, id.ID)
	if err != nil {
		return nil, unexpected(err)
	}
	chats, err := c.store.ChatIDsForTeacher(ctx, id.ID)
	if err != nil {
		return nil, unexpected(err)
	}

	out := make([]TeacherBid, 0, len(bids))
	for _, b := range bids {
		tb := TeacherBid{Bid: b}
		if chatID, ok := chats[b.AssignmentID]; ok {
			tb.ChatID = &chatID
		}
		out = append(out, tb)
	}
	return out, nil
}

func (c *Core) TeacherBidForAssignment(ctx context.Context, id authz.Identity, assignmentID uuid.UUID) (*TeacherBid, error) {
	if !id.IsTeacher() {
		return nil, apperrors.Forbidden("Only teachers have bids")
	}
	bid, err := c.store.TeacherBidFor(ctx, assignmentID, id.ID)
	if err != nil {
		return nil, notFound(err, "Bid")
	}
	tb := &TeacherBid{Bid: *bid}
	chat, err := c.store.FindChatFor(ctx, assignmentID, id.ID)
	switch {
	case err == nil:
		tb.ChatID = &chat.ID
	case !errors.Is(err, store.ErrNotFound):
		return nil, unexpected(err)
	}
	return tb, nil
}

func (c *Core) bidEvent(ctx context.Context, id authz.Identity, b *models.Bid) BidEvent {
	return BidEvent{
		AssignmentID: b.AssignmentID,
		BidID:        b.ID,
		TeacherID:    b.TeacherID,
		TeacherName:  c.displayName(ctx, id),
		BidAmount:    b.Amount,
		Timestamp:    c.now(),
	}
}

// displayName prefers the name carried by the identity and falls back to the
// stored user.
func (c *Core) displayName(ctx context.Context, id authz.Identity) string {
	if id.Name != "" {
		return id.Name
	}
	u, err := c.store.FindUser(ctx, id.ID)
	if err != nil {
		return ""
	}
	return u.Name
}
