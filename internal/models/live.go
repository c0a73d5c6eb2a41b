package models

import (
	"encoding/json"
	"time"
)

const (
	RoleInstructor = "instructor"
	RoleStudent    = "student"
)

// Participant is one user currently joined to a live class. It is owned
// by its Session and removed from the participant map on leave or
// disconnect. ConnectionID points into the connection registry and is
// never serialized to clients.
type Participant struct {
	UserID       string    `json:"userId"`
	DisplayName  string    `json:"userName"`
	Role         string    `json:"role"`
	ConnectionID string    `json:"-"`
	JoinedAt     time.Time `json:"joinedAt"`
	HandRaised   bool      `json:"handRaised"`
}

// ChatMessage lives only in memory for the session's lifetime. Kind is
// "text" for regular messages, "system" for server-generated notices.
type ChatMessage struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"senderId"`
	SenderName string    `json:"senderName"`
	Text       string    `json:"text"`
	Timestamp  time.Time `json:"timestamp"`
	Kind       string    `json:"kind"`
}

// Poll options are immutable after creation; Votes maps userId to the
// selected option index, one entry per voter (last write wins).
type Poll struct {
	ID       string         `json:"id"`
	Question string         `json:"question"`
	Options  []string       `json:"options"`
	Votes    map[string]int `json:"votes"`
	IsActive bool           `json:"isActive"`
}

// Session is the live state of one in-progress class meeting, keyed by
// course id. It exists only while at least one participant is joined.
type Session struct {
	CourseID     string
	Participants map[string]*Participant
	ChatMessages []ChatMessage
	Polls        []*Poll
	IsRecording  bool
	StartTime    time.Time
}

// Stroke is one opaque whiteboard drawing operation. The server never
// interprets Data, it only stores and relays it.
type Stroke struct {
	ID   string          `json:"id"`
	By   string          `json:"by"`
	Data json.RawMessage `json:"data"`
	At   time.Time       `json:"at"`
}

// ClassSummary is the REST listing view of an active session.
type ClassSummary struct {
	CourseID         string    `json:"course_id"`
	ParticipantCount int       `json:"participant_count"`
	IsRecording      bool      `json:"is_recording"`
	StartTime        time.Time `json:"start_time"`
}

// ClassSnapshot is the REST detail view of an active session.
type ClassSnapshot struct {
	CourseID     string        `json:"course_id"`
	Participants []Participant `json:"participants"`
	IsRecording  bool          `json:"is_recording"`
	StartTime    time.Time     `json:"start_time"`
	PollCount    int           `json:"poll_count"`
}
