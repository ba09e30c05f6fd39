package realtime

import "github.com/google/uuid"

func AssignmentRoom(id string) string { return "assignment:" + id }

func SubjectRoom(name string) string { return "subject:" + name }

// UserRoom is joined automatically by every authenticated connection.
func UserRoom(id uuid.UUID) string { return "user:" + id.String() }
