package live

import (
	"context"
	"log"
	"sort"
	"time"

	"liveclass-backend/internal/models"
)

const persistTimeout = 5 * time.Second

// DurableStore is the write-through side of the external persistence
// collaborator. Every call is best effort: the manager spawns it off
// the event path, logs failures and never retries or blocks on it.
type DurableStore interface {
	RecordAttendance(ctx context.Context, courseID, userID, role string, joinedAt time.Time) error
	MarkClassEnded(ctx context.Context, courseID string, endedAt time.Time) error
	ArchiveChatMessage(ctx context.Context, courseID string, msg models.ChatMessage) error
}

// Manager orchestrates the join/leave/end lifecycle of live classes:
// session creation and destruction, membership broadcasts, and the
// attendance write-through. All methods must be called from the hub's
// event loop.
type Manager struct {
	store    *Store
	registry *Registry
	bus      *Bus
	durable  DurableStore
}

func NewManager(store *Store, registry *Registry, bus *Bus, durable DurableStore) *Manager {
	return &Manager{store: store, registry: registry, bus: bus, durable: durable}
}

// Join adds a participant to the course's session, creating the session
// on first join. A re-join by the same user replaces the prior entry
// and rebinds the connection, which tolerates reconnects that never
// sent an explicit leave.
func (m *Manager) Join(courseID string, p models.Participant, connectionID string) {
	if p.Role == "" {
		p.Role = models.RoleStudent
	}
	p.ConnectionID = connectionID
	p.JoinedAt = time.Now()

	session := m.store.GetOrCreate(courseID)
	session.Participants[p.UserID] = &p
	m.registry.Bind(connectionID, courseID, p.UserID, p.Role)

	// Membership always goes out as a full snapshot, never a delta, so
	// clients stay trivially consistent after any missed message.
	m.bus.Broadcast(courseID, EventParticipantsUpdated, participantsPayload(session))

	// Only the joiner gets the backlog.
	m.bus.Unicast(connectionID, EventChatHistory, map[string]interface{}{
		"messages": session.ChatMessages,
	})

	joinedAt := p.JoinedAt
	m.persist("attendance", func(ctx context.Context) error {
		return m.durable.RecordAttendance(ctx, courseID, p.UserID, p.Role, joinedAt)
	})

	m.bus.BroadcastExcept(courseID, p.UserID, EventUserJoined, map[string]interface{}{
		"userId":   p.UserID,
		"userName": p.DisplayName,
		"role":     p.Role,
	})

	log.Printf("live: user %s joined class %s (%d participants)", p.UserID, courseID, len(session.Participants))
}

// Leave removes a participant; the session is destroyed the instant its
// participant map empties. Unknown course or user is a no-op.
func (m *Manager) Leave(courseID, userID string) {
	session, ok := m.store.Get(courseID)
	if !ok {
		return
	}
	p, ok := session.Participants[userID]
	if !ok {
		return
	}

	delete(session.Participants, userID)
	m.registry.Unbind(p.ConnectionID)

	if len(session.Participants) == 0 {
		m.store.Remove(courseID)
		log.Printf("live: class %s is empty, session destroyed", courseID)
		return
	}

	m.bus.Broadcast(courseID, EventParticipantsUpdated, participantsPayload(session))
	m.bus.Broadcast(courseID, EventUserLeft, map[string]interface{}{"userId": userID})
	log.Printf("live: user %s left class %s (%d participants)", userID, courseID, len(session.Participants))
}

// Disconnect is the abrupt-drop path. It resolves the connection via
// the registry (never guesses) and delegates to the leave cleanup.
// Idempotent: an unknown or already-cleaned connection is a no-op.
func (m *Manager) Disconnect(connectionID string) {
	binding, ok := m.registry.Lookup(connectionID)
	if !ok {
		return
	}
	m.registry.Unbind(connectionID)
	m.Leave(binding.CourseID, binding.UserID)
}

// EndClass is instructor-only; any other caller is silently ignored.
// The session is removed unconditionally, even with participants still
// present: the class-ended broadcast is their signal to self-evict.
func (m *Manager) EndClass(courseID, callerRole string) {
	if callerRole != models.RoleInstructor {
		return
	}
	if _, ok := m.store.Get(courseID); !ok {
		return
	}

	m.persist("class-ended", func(ctx context.Context) error {
		return m.durable.MarkClassEnded(ctx, courseID, time.Now())
	})

	m.bus.Broadcast(courseID, EventClassEnded, nil)
	m.store.Remove(courseID)
	m.registry.DropCourse(courseID)
	log.Printf("live: class %s ended by instructor", courseID)
}

// persist runs one write-through off the event path. The caller never
// waits on it and a failure degrades nothing but the durable record.
func (m *Manager) persist(op string, fn func(context.Context) error) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			log.Printf("live: %s write-through failed: %v", op, err)
		}
	}()
}

// SortedParticipants returns the membership in join order, which the
// UI relies on for stable display.
func SortedParticipants(session *models.Session) []models.Participant {
	participants := make([]models.Participant, 0, len(session.Participants))
	for _, p := range session.Participants {
		participants = append(participants, *p)
	}
	sort.Slice(participants, func(i, j int) bool {
		if participants[i].JoinedAt.Equal(participants[j].JoinedAt) {
			return participants[i].UserID < participants[j].UserID
		}
		return participants[i].JoinedAt.Before(participants[j].JoinedAt)
	})
	return participants
}

// participantsPayload renders the full membership snapshot.
func participantsPayload(session *models.Session) map[string]interface{} {
	return map[string]interface{}{"participants": SortedParticipants(session)}
}
