package live

import (
	"context"
	"time"

	"github.com/google/uuid"

	"liveclass-backend/internal/models"
)

// Session-scoped interaction state: chat, polls, hand-raise, recording.
// Authorization violations and referential misses are silent no-ops
// with zero side effects, matching the fail-closed-and-quiet policy of
// the rest of the core.

// PostChat appends a message to the session's chat log and broadcasts
// it verbatim. The log is append-only and in-memory only; the archive
// write-through exists purely for analytics and is best effort.
func (m *Manager) PostChat(courseID, senderID, senderName, text, kind string) {
	session, ok := m.store.Get(courseID)
	if !ok {
		return
	}
	if kind == "" {
		kind = "text"
	}

	msg := models.ChatMessage{
		ID:         uuid.NewString(),
		SenderID:   senderID,
		SenderName: senderName,
		Text:       text,
		Timestamp:  time.Now(),
		Kind:       kind,
	}
	session.ChatMessages = append(session.ChatMessages, msg)

	m.bus.Broadcast(courseID, EventChatMessage, map[string]interface{}{"message": msg})

	m.persist("chat-archive", func(ctx context.Context) error {
		return m.durable.ArchiveChatMessage(ctx, courseID, msg)
	})
}

// CreatePoll is instructor-only. Poll ids are minted server-side as
// UUIDs so they are globally unique across sessions.
func (m *Manager) CreatePoll(courseID, callerRole, question string, options []string) {
	if callerRole != models.RoleInstructor {
		return
	}
	session, ok := m.store.Get(courseID)
	if !ok {
		return
	}

	poll := &models.Poll{
		ID:       uuid.NewString(),
		Question: question,
		Options:  options,
		Votes:    make(map[string]int),
		IsActive: true,
	}
	session.Polls = append(session.Polls, poll)

	m.bus.Broadcast(courseID, EventPollCreated, map[string]interface{}{"poll": poll})
}

// VotePoll upserts a vote: a repeated vote by the same user overwrites
// the previous selection, it never appends a duplicate. The updated
// poll goes out with its full vote map; tally computation is left to
// each client. Absent or closed polls and out-of-range options drop the
// vote silently.
func (m *Manager) VotePoll(courseID, pollID, userID string, optionIndex int) {
	session, ok := m.store.Get(courseID)
	if !ok {
		return
	}
	poll := findPoll(session, pollID)
	if poll == nil || !poll.IsActive {
		return
	}
	if optionIndex < 0 || optionIndex >= len(poll.Options) {
		return
	}

	poll.Votes[userID] = optionIndex
	m.bus.Broadcast(courseID, EventPollVoted, map[string]interface{}{"poll": poll})
}

// SetHandRaised flips the participant's flag and broadcasts a
// lightweight event rather than the full membership snapshot; hand
// raises are frequent and low stakes. A participant that raced a leave
// is a no-op.
func (m *Manager) SetHandRaised(courseID, userID, userName string, raised bool) {
	session, ok := m.store.Get(courseID)
	if !ok {
		return
	}
	p, ok := session.Participants[userID]
	if !ok {
		return
	}

	p.HandRaised = raised
	m.bus.Broadcast(courseID, EventHandRaised, map[string]interface{}{
		"userId":   userID,
		"userName": userName,
		"raised":   raised,
	})
}

// SetRecording is instructor-only, same silent policy as CreatePoll.
func (m *Manager) SetRecording(courseID, callerRole string, recording bool) {
	if callerRole != models.RoleInstructor {
		return
	}
	session, ok := m.store.Get(courseID)
	if !ok {
		return
	}

	session.IsRecording = recording
	event := EventRecordingStopped
	if recording {
		event = EventRecordingStarted
	}
	m.bus.Broadcast(courseID, event, nil)
}

func findPoll(session *models.Session, pollID string) *models.Poll {
	for _, poll := range session.Polls {
		if poll.ID == pollID {
			return poll
		}
	}
	return nil
}
