package services

import (
	"strconv"
	"time"

	"github.com/anjiri1684/assignment_bidding/models"
	"github.com/google/uuid"
)

type NewAssignmentEvent struct {
	Assignment models.Assignment `json:"assignment"`
	Subject    string            `json:"subject"`
	TeacherIDs []uuid.UUID       `json:"teacherIds"`
}

// BidEvent is the payload of both new_bid and bid_updated.
type BidEvent struct {
	AssignmentID uuid.UUID `json:"assignmentId"`
	BidID        uuid.UUID `json:"bidId"`
	TeacherID    uuid.UUID `json:"teacherId"`
	TeacherName  string    `json:"teacherName"`
	BidAmount    float64   `json:"bidAmount"`
	Timestamp    time.Time `json:"timestamp"`
}

type StatusUpdateEvent struct {
	AssignmentID    uuid.UUID   `json:"assignmentId"`
	Status          string      `json:"status"`
	TeacherID       *uuid.UUID  `json:"teacherId,omitempty"`
	TeacherName     string      `json:"teacherName,omitempty"`
	BidAmount       *float64    `json:"bidAmount,omitempty"`
	PreviousBidders []uuid.UUID `json:"previousBidders,omitempty"`
	Title           string      `json:"title,omitempty"`
	Message         string      `json:"message,omitempty"`
}

const StatusFilesUpdated = "files_updated"

type ChatMessageEvent struct {
	RoomID     uuid.UUID `json:"roomId"`
	ChatID     uuid.UUID `json:"chatId"`
	Sender     uuid.UUID `json:"sender"`
	SenderName string    `json:"senderName,omitempty"`
	Content    string    `json:"content"`
	IsBid      bool      `json:"isBid"`
	BidAmount  *float64  `json:"bidAmount,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// dollars renders an amount the way chat messages quote it: 40, 40.5, 40.25.
func dollars(v float64) string {
	return "$" + strconv.FormatFloat(v, 'f', -1, 64)
}
