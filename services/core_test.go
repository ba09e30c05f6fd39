package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/anjiri1684/assignment_bidding/authz"
	"github.com/anjiri1684/assignment_bidding/database/dbtest"
	"github.com/anjiri1684/assignment_bidding/models"
	"github.com/anjiri1684/assignment_bidding/realtime"
	"github.com/anjiri1684/assignment_bidding/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// tick is a clock that advances one second per reading.
type tick struct {
	mu  sync.Mutex
	now time.Time
}

func (c *tick) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

type env struct {
	core  *Core
	db    *gorm.DB
	store *store.Store
	rec   *realtime.Recorder
	clock *tick

	student  authz.Identity
	teacherA authz.Identity
	teacherB authz.Identity
	admin    authz.Identity
}

func newEnv(t *testing.T, opts ...Option) *env {
	t.Helper()
	db := dbtest.Open(t)
	st := store.New(db)
	rec := &realtime.Recorder{}
	clock := &tick{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}

	e := &env{db: db, store: st, rec: rec, clock: clock}
	e.core = NewCore(st, rec, append([]Option{WithClock(clock.Now)}, opts...)...)

	e.student = e.user(t, "Sam Student", "sam@example.com", models.RoleStudent)
	e.teacherA = e.user(t, "Ada Teacher", "ada@example.com", models.RoleTeacher, "Mathematics")
	e.teacherB = e.user(t, "Ben Teacher", "ben@example.com", models.RoleTeacher, "Mathematics", "Physics")
	e.admin = e.user(t, "Root", "root@example.com", models.RoleSuperAdmin)
	return e
}

func (e *env) user(t *testing.T, name, email string, role models.Role, subjects ...string) authz.Identity {
	t.Helper()
	u := models.User{Name: name, Email: email, Password: "x", Role: role}
	for _, s := range subjects {
		u.Subjects = append(u.Subjects, models.TeacherSubject{Subject: s})
	}
	require.NoError(t, e.store.CreateUser(context.Background(), &u))
	return authz.Identity{ID: u.ID, Role: role, Name: name}
}

func (e *env) assignment(t *testing.T) *models.Assignment {
	t.Helper()
	a, err := e.core.CreateAssignment(context.Background(), e.student, CreateAssignmentInput{
		Title: "Linear algebra set", Description: "Ten exercises", Subject: "Mathematics", Price: 50,
	})
	require.NoError(t, err)
	return a
}

func (e *env) bid(t *testing.T, who authz.Identity, a *models.Assignment, amount float64) *models.Bid {
	t.Helper()
	res, err := e.core.PlaceBid(context.Background(), who, PlaceBidInput{AssignmentID: a.ID, Amount: amount})
	require.NoError(t, err)
	require.NotNil(t, res.Created)
	return res.Created
}

// assigned returns an assignment already assigned to teacherA at $40.
func (e *env) assigned(t *testing.T) *models.Assignment {
	t.Helper()
	a := e.assignment(t)
	b := e.bid(t, e.teacherA, a, 40)
	out, err := e.core.AcceptBid(context.Background(), e.student, b.ID)
	require.NoError(t, err)
	return out
}

var files = SubmitWorkInput{
	SubmissionFileURL: "https://cdn.example.com/full.pdf", SubmissionFileID: "full",
	PreviewFileURL: "https://cdn.example.com/preview.pdf", PreviewFileID: "preview",
}

// requireConsistent checks the assignment/bid invariants for a.
func requireConsistent(t *testing.T, st *store.Store, id uuid.UUID) {
	t.Helper()
	ctx := context.Background()
	a, err := st.FindAssignment(ctx, id)
	require.NoError(t, err)

	require.Equal(t, a.Status.HasAssignee(), a.AssignedToID != nil)
	require.Equal(t, a.AssignedToID != nil, a.FinalBid != nil)
	if a.IsPaid {
		require.Equal(t, models.AssignmentDelivered, a.Status)
	}
	if a.Submission() != nil || a.Preview() != nil {
		require.Contains(t, []models.AssignmentStatus{models.AssignmentCompleted, models.AssignmentDelivered}, a.Status)
	}
	if !a.Status.HasAssignee() {
		return
	}

	bids, err := st.BidsForAssignment(ctx, id)
	require.NoError(t, err)
	accepted := 0
	for _, b := range bids {
		switch b.Status {
		case models.BidAccepted:
			accepted++
			require.Equal(t, *a.FinalBid, b.Amount)
			require.Equal(t, *a.AssignedToID, b.TeacherID)
		default:
			require.Equal(t, models.BidRejected, b.Status)
		}
	}
	require.Equal(t, 1, accepted)
}
