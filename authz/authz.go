// Package authz holds every role and ownership rule the marketplace evaluates.
//
// Rules are keyed by (operation, role, relation). The relation describes how the
// caller stands towards the assignment the operation touches; it is computed once
// by RelationTo and then looked up in a single table, so handlers and services
// never re-derive ownership checks on their own.
package authz

import (
	"github.com/anjiri1684/assignment_bidding/models"
	"github.com/google/uuid"
)

// Identity is what the identity provider hands the core for each request.
type Identity struct {
	ID   uuid.UUID
	Role models.Role
	Name string
}

func (i Identity) IsAdmin() bool   { return i.Role == models.RoleSuperAdmin }
func (i Identity) IsTeacher() bool { return i.Role == models.RoleTeacher }
func (i Identity) IsStudent() bool { return i.Role == models.RoleStudent }

type Operation string

const (
	CreateAssignment   Operation = "assignment.create"
	ViewAssignment     Operation = "assignment.view"
	DeleteAssignment   Operation = "assignment.delete"
	SubmitWork         Operation = "assignment.submit"
	UpdateSubmission   Operation = "assignment.update_submission"
	PayAssignment      Operation = "assignment.pay"
	ViewPreview        Operation = "assignment.preview"
	DownloadSubmission Operation = "assignment.download"
	PlaceBid           Operation = "bid.place"
	ListBids           Operation = "bid.list"
	AcceptBid          Operation = "bid.accept"
	OpenChat           Operation = "chat.open"
)

type Relation string

const (
	// Owner is the student who posted the assignment.
	Owner Relation = "owner"
	// Assignee is the teacher the assignment is assigned to.
	Assignee Relation = "assignee"
	// Browser is a teacher looking at a pending assignment they are not assigned to.
	Browser Relation = "browser"
	// Any matches every relation, including None.
	Any  Relation = "*"
	None Relation = "none"
)

type rule struct {
	op   Operation
	role models.Role
	rel  Relation
}

var rules = map[rule]bool{
	{CreateAssignment, models.RoleStudent, Any}: true,

	{ViewAssignment, models.RoleSuperAdmin, Any}:   true,
	{ViewAssignment, models.RoleStudent, Owner}:    true,
	{ViewAssignment, models.RoleTeacher, Assignee}: true,
	{ViewAssignment, models.RoleTeacher, Browser}:  true,

	{DeleteAssignment, models.RoleSuperAdmin, Any}: true,
	{DeleteAssignment, models.RoleStudent, Owner}:  true,

	{SubmitWork, models.RoleTeacher, Assignee}:       true,
	{UpdateSubmission, models.RoleTeacher, Assignee}: true,

	{PayAssignment, models.RoleStudent, Owner}: true,

	{ViewPreview, models.RoleSuperAdmin, Any}:   true,
	{ViewPreview, models.RoleStudent, Owner}:    true,
	{ViewPreview, models.RoleTeacher, Assignee}: true,

	{DownloadSubmission, models.RoleStudent, Owner}: true,

	{PlaceBid, models.RoleTeacher, Browser}: true,

	{ListBids, models.RoleSuperAdmin, Any}: true,
	{ListBids, models.RoleStudent, Owner}:  true,

	{AcceptBid, models.RoleStudent, Owner}: true,

	{OpenChat, models.RoleSuperAdmin, Any}:   true,
	{OpenChat, models.RoleStudent, Owner}:    true,
	{OpenChat, models.RoleTeacher, Assignee}: true,
	{OpenChat, models.RoleTeacher, Browser}:  true,
}

// RelationTo classifies the caller against an assignment.
func RelationTo(id Identity, a models.Assignment) Relation {
	switch {
	case id.IsStudent() && a.StudentID == id.ID:
		return Owner
	case id.IsTeacher() && a.IsAssignedTo(id.ID):
		return Assignee
	case id.IsTeacher() && a.Status == models.AssignmentPending:
		return Browser
	default:
		return None
	}
}

// Allowed looks the triple up, falling back to the role-wide rule.
func Allowed(op Operation, role models.Role, rel Relation) bool {
	if rules[rule{op, role, rel}] {
		return true
	}
	return rules[rule{op, role, Any}]
}

// Can is Allowed with the relation derived from the assignment.
func Can(id Identity, op Operation, a models.Assignment) bool {
	return Allowed(op, id.Role, RelationTo(id, a))
}

// CanCreateAssignment has no assignment yet to relate to.
func CanCreateAssignment(id Identity) bool {
	return Allowed(CreateAssignment, id.Role, None)
}

// OwnsBid gates bid update and withdrawal.
func OwnsBid(id Identity, b models.Bid) bool {
	return id.IsTeacher() && b.TeacherID == id.ID
}

// InChat gates posting to a chat. Administrators may read but not post.
func InChat(id Identity, c models.Chat) bool {
	return c.HasParticipant(id.ID)
}

// CanReadChat lets administrators read every thread.
func CanReadChat(id Identity, c models.Chat) bool {
	return id.IsAdmin() || InChat(id, c)
}

func CanViewPayment(id Identity, p models.Payment) bool {
	return id.IsAdmin() || p.StudentID == id.ID || p.TeacherID == id.ID
}
