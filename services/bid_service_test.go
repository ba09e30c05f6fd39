package services

import (
	"context"
	"sync"
	"testing"

	"github.com/anjiri1684/assignment_bidding/apperrors"
	"github.com/anjiri1684/assignment_bidding/models"
	"github.com/anjiri1684/assignment_bidding/realtime"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestAcceptBidAssignsWinnerAndRejectsSiblings(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mailer := NewMockMailer(ctrl)
	e := newEnv(t, WithMailer(mailer))
	ctx := context.Background()

	a := e.assignment(t)
	require.Equal(t, models.AssignmentPending, a.Status)
	require.Nil(t, a.AssignedToID)

	bidA := e.bid(t, e.teacherA, a, 40)
	bidB := e.bid(t, e.teacherB, a, 45)
	e.rec.Reset()

	mailer.EXPECT().SendEmail("Ada Teacher", "ada@example.com", "Your bid was accepted", gomock.Any())

	got, err := e.core.AcceptBid(ctx, e.student, bidA.ID)
	require.NoError(t, err)
	require.Equal(t, models.AssignmentAssigned, got.Status)
	require.Equal(t, e.teacherA.ID, *got.AssignedToID)
	require.Equal(t, 40.0, *got.FinalBid)

	wonBid, err := e.store.FindBid(ctx, bidA.ID)
	require.NoError(t, err)
	require.Equal(t, models.BidAccepted, wonBid.Status)
	lostBid, err := e.store.FindBid(ctx, bidB.ID)
	require.NoError(t, err)
	require.Equal(t, models.BidRejected, lostBid.Status)
	requireConsistent(t, e.store, a.ID)

	updates := e.rec.Named(realtime.EventStatusUpdate)
	require.Len(t, updates, 1)
	ev := updates[0].Payload.(StatusUpdateEvent)
	require.Equal(t, "assigned", ev.Status)
	require.Equal(t, e.teacherA.ID, *ev.TeacherID)
	require.Equal(t, "Ada Teacher", ev.TeacherName)
	require.Equal(t, 40.0, *ev.BidAmount)
	require.Equal(t, []uuid.UUID{e.teacherB.ID}, ev.PreviousBidders)
	require.Equal(t, a.Title, ev.Title)

	chat, err := e.store.FindChatFor(ctx, a.ID, e.teacherA.ID)
	require.NoError(t, err)
	loaded, err := e.store.LoadChat(ctx, chat.ID)
	require.NoError(t, err)
	last := loaded.Messages[len(loaded.Messages)-1]
	require.Equal(t, "I've accepted your bid of $40. You can now start working on the assignment.", last.Content)
	require.Equal(t, e.student.ID, last.SenderID)
	require.False(t, last.IsBid)

	_, err = e.core.AcceptBid(ctx, e.student, bidB.ID)
	require.ErrorIs(t, err, apperrors.ErrInvalidState)
}

func TestAcceptBidPreconditions(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := e.assignment(t)
	b := e.bid(t, e.teacherA, a, 40)

	_, err := e.core.AcceptBid(ctx, e.teacherB, b.ID)
	require.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = e.core.AcceptBid(ctx, e.admin, b.ID)
	require.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = e.core.AcceptBid(ctx, e.student, uuid.New())
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestConcurrentAcceptHasOneWinner(t *testing.T) {
	e := newEnv(t)
	a := e.assignment(t)
	bids := []*models.Bid{e.bid(t, e.teacherA, a, 40), e.bid(t, e.teacherB, a, 45)}

	var wg sync.WaitGroup
	errs := make([]error, len(bids))
	for i, b := range bids {
		wg.Add(1)
		go func(i int, id uuid.UUID) {
			defer wg.Done()
			_, errs[i] = e.core.AcceptBid(context.Background(), e.student, id)
		}(i, b.ID)
	}
	wg.Wait()

	won := 0
	for _, err := range errs {
		if err == nil {
			won++
			continue
		}
		require.ErrorIs(t, err, apperrors.ErrInvalidState)
	}
	require.Equal(t, 1, won)
	requireConsistent(t, e.store, a.ID)
}

func TestPlaceBidTwiceUpdatesInPlace(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := e.assignment(t)
	e.rec.Reset()

	first, err := e.core.PlaceBid(ctx, e.teacherA, PlaceBidInput{AssignmentID: a.ID, Amount: 40, Message: "hi"})
	require.NoError(t, err)
	require.NotNil(t, first.Created)
	require.False(t, first.IsUpdate())

	second, err := e.core.PlaceBid(ctx, e.teacherA, PlaceBidInput{AssignmentID: a.ID, Amount: 40, Message: "still keen"})
	require.NoError(t, err)
	require.True(t, second.IsUpdate())
	require.Equal(t, first.Created.ID, second.Bid().ID)
	require.Equal(t, "still keen", second.Bid().Message)

	bids, err := e.store.BidsForAssignment(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, bids, 1)
	require.Equal(t, models.BidPending, bids[0].Status)

	chat, err := e.store.FindChat(ctx, a.ID, e.teacherA.ID, e.student.ID)
	require.NoError(t, err)
	loaded, err := e.store.LoadChat(ctx, chat.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Messages, 2)
	require.Equal(t, "I'm interested in your assignment and I'm bidding $40", loaded.Messages[0].Content)
	require.Equal(t, "I've updated my bid to $40", loaded.Messages[1].Content)
	for _, m := range loaded.Messages {
		require.True(t, m.IsBid)
		require.Equal(t, 40.0, *m.BidAmount)
	}

	require.Len(t, e.rec.Named(realtime.EventNewBid), 1)
	require.Len(t, e.rec.Named(realtime.EventBidUpdated), 1)
	ev := e.rec.Named(realtime.EventNewBid)[0].Payload.(BidEvent)
	require.Equal(t, a.ID, ev.AssignmentID)
	require.Equal(t, "Ada Teacher", ev.TeacherName)
	require.Equal(t, 40.0, ev.BidAmount)
}

func TestPlaceBidUsesExistingChat(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := e.assignment(t)

	_, err := e.core.CreateChat(ctx, e.teacherA, CreateChatInput{AssignmentID: a.ID})
	require.NoError(t, err)
	e.bid(t, e.teacherA, a, 37.5)

	chat, err := e.store.FindChat(ctx, a.ID, e.teacherA.ID, e.student.ID)
	require.NoError(t, err)
	loaded, err := e.store.LoadChat(ctx, chat.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Messages, 1)
	require.Equal(t, "I'm bidding $37.5 for your assignment", loaded.Messages[0].Content)
}

func TestPlaceBidRejections(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := e.assigned(t)

	tests := []struct {
		name string
		run  func() error
		want error
	}{
		{"not_pending", func() error {
			_, err := e.core.PlaceBid(ctx, e.teacherB, PlaceBidInput{AssignmentID: a.ID, Amount: 10})
			return err
		}, apperrors.ErrInvalidState},
		{"missing_assignment", func() error {
			_, err := e.core.PlaceBid(ctx, e.teacherB, PlaceBidInput{AssignmentID: uuid.New(), Amount: 10})
			return err
		}, apperrors.ErrNotFound},
		{"student_cannot_bid", func() error {
			_, err := e.core.PlaceBid(ctx, e.student, PlaceBidInput{AssignmentID: a.ID, Amount: 10})
			return err
		}, apperrors.ErrForbidden},
		{"zero_amount", func() error {
			_, err := e.core.PlaceBid(ctx, e.teacherB, PlaceBidInput{AssignmentID: a.ID, Amount: 0})
			return err
		}, apperrors.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, tt.run(), tt.want)
		})
	}
}

func TestUpdateBid(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := e.assignment(t)
	b := e.bid(t, e.teacherA, a, 40)

	_, err := e.core.UpdateBid(ctx, e.teacherB, b.ID, UpdateBidInput{Amount: 30})
	require.ErrorIs(t, err, apperrors.ErrForbidden)

	got, err := e.core.UpdateBid(ctx, e.teacherA, b.ID, UpdateBidInput{Amount: 35, Message: "discount"})
	require.NoError(t, err)
	require.Equal(t, 35.0, got.Amount)

	_, err = e.core.AcceptBid(ctx, e.student, b.ID)
	require.NoError(t, err)
	_, err = e.core.UpdateBid(ctx, e.teacherA, b.ID, UpdateBidInput{Amount: 36})
	require.ErrorIs(t, err, apperrors.ErrInvalidState)
}

func TestWithdrawBid(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := e.assignment(t)
	pending := e.bid(t, e.teacherB, a, 45)

	require.ErrorIs(t, e.core.WithdrawBid(ctx, e.teacherA, pending.ID), apperrors.ErrForbidden)
	require.NoError(t, e.core.WithdrawBid(ctx, e.teacherB, pending.ID))
	_, err := e.store.FindBid(ctx, pending.ID)
	require.Error(t, err)
	require.ErrorIs(t, e.core.WithdrawBid(ctx, e.teacherB, pending.ID), apperrors.ErrNotFound)

	accepted := e.bid(t, e.teacherA, a, 40)
	_, err = e.core.AcceptBid(ctx, e.student, accepted.ID)
	require.NoError(t, err)
	require.ErrorIs(t, e.core.WithdrawBid(ctx, e.teacherA, accepted.ID), apperrors.ErrInvalidState)
}

func TestListBids(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := e.assignment(t)
	e.bid(t, e.teacherA, a, 40)
	e.bid(t, e.teacherB, a, 45)

	bids, err := e.core.ListBidsForAssignment(ctx, e.student, a.ID)
	require.NoError(t, err)
	require.Len(t, bids, 2)
	require.Equal(t, e.teacherB.ID, bids[0].TeacherID)
	require.Equal(t, "Ben Teacher", bids[0].Teacher.Name)

	_, err = e.core.ListBidsForAssignment(ctx, e.admin, a.ID)
	require.NoError(t, err)
	_, err = e.core.ListBidsForAssignment(ctx, e.teacherA, a.ID)
	require.ErrorIs(t, err, apperrors.ErrForbidden)

	mine, err := e.core.ListBidsForTeacher(ctx, e.teacherA)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.NotNil(t, mine[0].ChatID)
	require.Equal(t, "Sam Student", mine[0].Assignment.Student.Name)

	one, err := e.core.TeacherBidForAssignment(ctx, e.teacherB, a.ID)
	require.NoError(t, err)
	require.Equal(t, 45.0, one.Amount)
	require.NotNil(t, one.ChatID)

	_, err = e.core.ListBidsForTeacher(ctx, e.student)
	require.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestTargetedDelivery(t *testing.T) {
	e := newEnv(t, WithTargetedDelivery(true))
	ctx := context.Background()

	a := e.assignment(t)
	created := e.rec.Named(realtime.EventNewAssignment)
	require.Len(t, created, 1)
	require.Equal(t, realtime.SubjectRoom("Mathematics"), created[0].Room)
	payload := created[0].Payload.(NewAssignmentEvent)
	require.ElementsMatch(t, []uuid.UUID{e.teacherA.ID, e.teacherB.ID}, payload.TeacherIDs)

	bidA := e.bid(t, e.teacherA, a, 40)
	e.bid(t, e.teacherB, a, 45)
	rooms := map[string]bool{}
	for _, ev := range e.rec.Named(realtime.EventNewBid) {
		rooms[ev.Room] = true
	}
	require.Equal(t, map[string]bool{
		realtime.UserRoom(e.student.ID):  true,
		realtime.UserRoom(e.teacherA.ID): true,
		realtime.UserRoom(e.teacherB.ID): true,
	}, rooms)

	e.rec.Reset()
	_, err := e.core.AcceptBid(ctx, e.student, bidA.ID)
	require.NoError(t, err)
	var targets []string
	for _, ev := range e.rec.Named(realtime.EventStatusUpdate) {
		targets = append(targets, ev.Room)
	}
	require.ElementsMatch(t, []string{
		realtime.UserRoom(e.student.ID),
		realtime.UserRoom(e.teacherA.ID),
		realtime.UserRoom(e.teacherB.ID),
	}, targets)
}
