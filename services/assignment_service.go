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

type CreateAssignmentInput struct {
	Title       string  `json:"title" validate:"required,max=100"`
	Description string  `json:"description" validate:"required,max=1000"`
	Subject     string  `json:"subject" validate:"required,max=100"`
	Price       float64 `json:"price" validate:"required,gt=0"`
}

type ListAssignmentsInput struct {
	Status  string `query:"status"`
	Subject string `query:"subject"`
}

// SubmitWorkInput carries the two file refs a delivery consists of.
type SubmitWorkInput struct {
	SubmissionFileURL string `json:"submissionFileUrl"`
	SubmissionFileID  string `json:"submissionFileId"`
	PreviewFileURL    string `json:"previewFileUrl"`
	PreviewFileID     string `json:"previewFileId"`
}

func (in SubmitWorkInput) validate() error {
	if in.SubmissionFileURL == "" || in.PreviewFileURL == "" {
		return apperrors.Validation("Both submission and preview files are required")
	}
	return nil
}

func (in SubmitWorkInput) updates() map[string]any {
	return map[string]any{
		"submission_file_url": in.SubmissionFileURL,
		"submission_file_id":  in.SubmissionFileID,
		"preview_file_url":    in.PreviewFileURL,
		"preview_file_id":     in.PreviewFileID,
	}
}

func (c *Core) CreateAssignment(ctx context.Context, id authz.Identity, in CreateAssignmentInput) (*models.Assignment, error) {
	if !authz.CanCreateAssignment(id) {
		return nil, apperrors.Forbidden("Only students can create assignments")
	}
	if err := c.check(in); err != nil {
		return nil, err
	}

	now := c.now()
	a := &models.Assignment{
		StudentID:   id.ID,
		Title:       in.Title,
		Description: in.Description,
		Subject:     in.Subject,
		Price:       in.Price,
		Status:      models.AssignmentPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := c.store.CreateAssignment(ctx, a); err != nil {
		return nil, unexpected(err)
	}

	created, err := c.store.FindAssignment(ctx, a.ID)
	if err != nil {
		return nil, unexpected(err)
	}

	teacherIDs, err := c.store.TeacherIDsForSubject(ctx, created.Subject)
	bestEffort(err, "teacher lookup", log.Fields{"subject": created.Subject})
	if teacherIDs == nil {
		teacherIDs = []uuid.UUID{}
	}

	event := NewAssignmentEvent{Assignment: *created, Subject: created.Subject, TeacherIDs: teacherIDs}
	if c.targeted {
		c.hub.EmitToRoom(realtime.SubjectRoom(created.Subject), realtime.EventNewAssignment, event)
	} else {
		c.hub.Emit(realtime.EventNewAssignment, event)
	}

	log.WithFields(log.Fields{"assignment": created.ID, "subject": created.Subject}).Info("✅ Assignment created")
	return created, nil
}

func (c *Core) ListAssignments(ctx context.Context, id authz.Identity, in ListAssignmentsInput) ([]models.Assignment, error) {
	status := models.AssignmentStatus(in.Status)
	switch status {
	case "", models.AssignmentPending, models.AssignmentAssigned, models.AssignmentCompleted, models.AssignmentDelivered:
	default:
		return nil, apperrors.Validation("Unknown status filter")
	}

	f := store.AssignmentFilter{Status: status, Subject: in.Subject}
	switch id.Role {
	case models.RoleStudent:
		f.Scope = store.ScopeStudent
		f.StudentID = id.ID
	case models.RoleTeacher:
		subjects, err := c.store.TeacherSubjects(ctx, id.ID)
		if err != nil {
			return nil, unexpected(err)
		}
		f.Scope = store.ScopeTeacher
		f.TeacherID = id.ID
		f.TeacherSubjects = subjects
	case models.RoleSuperAdmin:
		f.Scope = store.ScopeAll
	default:
		return nil, apperrors.Forbidden("Unknown role")
	}

	out, err := c.store.ListAssignments(ctx, f)
	if err != nil {
		return nil, unexpected(err)
	}
	return out, nil
}

func (c *Core) GetAssignment(ctx context.Context, id authz.Identity, assignmentID uuid.UUID) (*models.Assignment, error) {
	a, err := c.store.FindAssignment(ctx, assignmentID)
	if err != nil {
		return nil, notFound(err, "Assignment")
	}
	if !authz.Can(id, authz.ViewAssignment, *a) {
		return nil, apperrors.Forbidden("Not authorized to access this assignment")
	}
	return a, nil
}

// DeleteAssignment removes a pending assignment together with its bids.
func (c *Core) DeleteAssignment(ctx context.Context, id authz.Identity, assignmentID uuid.UUID) error {
	a, err := c.store.FindAssignment(ctx, assignmentID)
	if err != nil {
		return notFound(err, "Assignment")
	}
	if !authz.Can(id, authz.DeleteAssignment, *a) {
		return apperrors.Forbidden("Not authorized to delete this assignment")
	}
	if a.Status != models.AssignmentPending {
		return apperrors.InvalidState("Cannot delete assignment that is already assigned or completed")
	}

	err = c.store.Transaction(ctx, func(tx *store.Store) error {
		return tx.DeletePendingAssignment(ctx, a.ID)
	})
	switch {
	case errors.Is(err, store.ErrStale):
		return apperrors.InvalidState("Cannot delete assignment that is already assigned or completed")
	case err != nil:
		return unexpected(err)
	}

	log.WithField("assignment", a.ID).Info("Assignment deleted")
	return nil
}

// SubmitWork moves an assigned assignment to completed with both file refs.
func (c *Core) SubmitWork(ctx context.Context, id authz.Identity, assignmentID uuid.UUID, in SubmitWorkInput) (*models.Assignment, error) {
	a, err := c.store.FindAssignment(ctx, assignmentID)
	if err != nil {
		return nil, notFound(err, "Assignment")
	}
	if !authz.Can(id, authz.SubmitWork, *a) {
		return nil, apperrors.Forbidden("Not authorized to submit work for this assignment")
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	if a.Status != models.AssignmentAssigned {
		return nil, apperrors.InvalidState("Work can only be submitted for an assigned assignment")
	}

	updates := in.updates()
	updates["status"] = models.AssignmentCompleted
	updates["updated_at"] = c.now()
	err = c.store.TransitionAssignment(ctx, a.ID, models.AssignmentAssigned, updates,
		store.Where("assigned_to_id = ?", id.ID))
	switch {
	case errors.Is(err, store.ErrStale):
		return nil, apperrors.InvalidState("Work can only be submitted for an assigned assignment")
	case err != nil:
		return nil, unexpected(err)
	}

	done, err := c.store.FindAssignment(ctx, a.ID)
	if err != nil {
		return nil, unexpected(err)
	}

	teacherName := id.Name
	if done.AssignedTo != nil {
		teacherName = done.AssignedTo.Name
	}
	c.emit(realtime.EventStatusUpdate, StatusUpdateEvent{
		AssignmentID: done.ID,
		Status:       string(models.AssignmentCompleted),
		TeacherID:    done.AssignedToID,
		TeacherName:  teacherName,
		Title:        done.Title,
	}, done.StudentID, id.ID)

	subject, body := notifications.WorkSubmitted(done.Student.Name, done.Title)
	c.mailer.SendEmail(done.Student.Name, done.Student.Email, subject, body)

	return done, nil
}

// UpdateSubmission replaces both file refs while the work awaits payment.
func (c *Core) UpdateSubmission(ctx context.Context, id authz.Identity, assignmentID uuid.UUID, in SubmitWorkInput) (*models.Assignment, error) {
	a, err := c.store.FindAssignment(ctx, assignmentID)
	if err != nil {
		return nil, notFound(err, "Assignment")
	}
	if !authz.Can(id, authz.UpdateSubmission, *a) {
		return nil, apperrors.Forbidden("Not authorized to update this assignment")
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	if a.Status != models.AssignmentCompleted {
		return nil, apperrors.InvalidState("Submission can only be updated while the assignment is completed")
	}

	updates := in.updates()
	updates["updated_at"] = c.now()
	err = c.store.TransitionAssignment(ctx, a.ID, models.AssignmentCompleted, updates,
		store.Where("assigned_to_id = ?", id.ID))
	switch {
	case errors.Is(err, store.ErrStale):
		return nil, apperrors.InvalidState("Submission can only be updated while the assignment is completed")
	case err != nil:
		return nil, unexpected(err)
	}

	updated, err := c.store.FindAssignment(ctx, a.ID)
	if err != nil {
		return nil, unexpected(err)
	}

	c.hub.EmitToRoom(realtime.AssignmentRoom(updated.ID.String()), realtime.EventStatusUpdate, StatusUpdateEvent{
		AssignmentID: updated.ID,
		Status:       StatusFilesUpdated,
		Message:      "Assignment files have been updated by the teacher",
	})
	return updated, nil
}

func (c *Core) PreviewFile(ctx context.Context, id authz.Identity, assignmentID uuid.UUID) (*models.FileRef, error) {
	a, err := c.store.FindAssignment(ctx, assignmentID)
	if err != nil {
		return nil, notFound(err, "Assignment")
	}
	if !authz.Can(id, authz.ViewPreview, *a) {
		return nil, apperrors.Forbidden("Not authorized to view this preview")
	}
	ref := a.Preview()
	if ref == nil {
		return nil, apperrors.NotFound("Preview file not found")
	}
	return ref, nil
}

// DownloadSubmission releases the full submission to its paying owner.
func (c *Core) DownloadSubmission(ctx context.Context, id authz.Identity, assignmentID uuid.UUID) (*models.FileRef, error) {
	a, err := c.store.FindAssignment(ctx, assignmentID)
	if err != nil {
		return nil, notFound(err, "Assignment")
	}
	if !authz.Can(id, authz.DownloadSubmission, *a) {
		return nil, apperrors.Forbidden("Not authorized to download this submission")
	}
	if !a.IsPaid {
		return nil, apperrors.Forbidden("Payment is required before downloading the submission")
	}
	ref := a.Submission()
	if ref == nil {
		return nil, apperrors.NotFound("Submission file not found")
	}
	return ref, nil
}
