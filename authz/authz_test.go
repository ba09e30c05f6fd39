package authz

import (
	"testing"

	"github.com/anjiri1684/assignment_bidding/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestCanViewAssignment(t *testing.T) {
	student := Identity{ID: uuid.New(), Role: models.RoleStudent}
	otherStudent := Identity{ID: uuid.New(), Role: models.RoleStudent}
	assignee := Identity{ID: uuid.New(), Role: models.RoleTeacher}
	otherTeacher := Identity{ID: uuid.New(), Role: models.RoleTeacher}
	admin := Identity{ID: uuid.New(), Role: models.RoleSuperAdmin}

	pending := models.Assignment{ID: uuid.New(), StudentID: student.ID, Status: models.AssignmentPending}
	assigned := models.Assignment{ID: uuid.New(), StudentID: student.ID, Status: models.AssignmentAssigned, AssignedToID: &assignee.ID}

	tests := []struct {
		name string
		id   Identity
		a    models.Assignment
		want bool
	}{
		{"owner_pending", student, pending, true},
		{"owner_assigned", student, assigned, true},
		{"other_student", otherStudent, pending, false},
		{"teacher_browses_pending", otherTeacher, pending, true},
		{"assignee_sees_own_work", assignee, assigned, true},
		{"teacher_cannot_see_others_work", otherTeacher, assigned, false},
		{"admin_sees_all", admin, assigned, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Can(tt.id, ViewAssignment, tt.a))
		})
	}
}

func TestRelationTo(t *testing.T) {
	teacher := Identity{ID: uuid.New(), Role: models.RoleTeacher}
	a := models.Assignment{StudentID: uuid.New(), Status: models.AssignmentPending}
	require.Equal(t, Browser, RelationTo(teacher, a))

	a.Status = models.AssignmentCompleted
	require.Equal(t, None, RelationTo(teacher, a))

	a.AssignedToID = &teacher.ID
	require.Equal(t, Assignee, RelationTo(teacher, a))
}

func TestLifecycleRules(t *testing.T) {
	require.True(t, Allowed(AcceptBid, models.RoleStudent, Owner))
	require.False(t, Allowed(AcceptBid, models.RoleSuperAdmin, None))
	require.True(t, Allowed(DeleteAssignment, models.RoleSuperAdmin, None))
	require.False(t, Allowed(DeleteAssignment, models.RoleTeacher, Browser))
	require.True(t, Allowed(SubmitWork, models.RoleTeacher, Assignee))
	require.False(t, Allowed(SubmitWork, models.RoleTeacher, Browser))
	require.True(t, Allowed(PlaceBid, models.RoleTeacher, Browser))
	require.False(t, Allowed(PlaceBid, models.RoleStudent, Owner))
	require.True(t, Allowed(ListBids, models.RoleSuperAdmin, None))
	require.False(t, Allowed(ListBids, models.RoleTeacher, Browser))
	require.True(t, CanCreateAssignment(Identity{Role: models.RoleStudent}))
	require.False(t, CanCreateAssignment(Identity{Role: models.RoleTeacher}))
}

func TestChatAndBidOwnership(t *testing.T) {
	teacher := Identity{ID: uuid.New(), Role: models.RoleTeacher}
	student := Identity{ID: uuid.New(), Role: models.RoleStudent}
	admin := Identity{ID: uuid.New(), Role: models.RoleSuperAdmin}

	bid := models.Bid{TeacherID: teacher.ID}
	require.True(t, OwnsBid(teacher, bid))
	require.False(t, OwnsBid(student, bid))

	chat := models.Chat{TeacherID: teacher.ID, StudentID: student.ID}
	require.True(t, InChat(teacher, chat))
	require.True(t, InChat(student, chat))
	require.False(t, InChat(admin, chat))
	require.True(t, CanReadChat(admin, chat))

	payment := models.Payment{StudentID: student.ID, TeacherID: teacher.ID}
	require.True(t, CanViewPayment(student, payment))
	require.False(t, CanViewPayment(Identity{ID: uuid.New(), Role: models.RoleTeacher}, payment))
}
