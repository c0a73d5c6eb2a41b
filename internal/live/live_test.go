package live

import (
	"context"
	"sync"
	"testing"
	"time"

	"liveclass-backend/internal/models"
)

// Shared fixtures: a recording gateway standing in for the websocket
// hub, and a stub durable store standing in for the persistence queue.

type sentEvent struct {
	connID string
	msg    models.WSMessage
}

type recorderGateway struct {
	sent []sentEvent
}

func (g *recorderGateway) Send(connectionID string, msg models.WSMessage) {
	g.sent = append(g.sent, sentEvent{connID: connectionID, msg: msg})
}

func (g *recorderGateway) eventsFor(connID string) []models.WSMessage {
	var out []models.WSMessage
	for _, e := range g.sent {
		if e.connID == connID {
			out = append(out, e.msg)
		}
	}
	return out
}

func (g *recorderGateway) namesFor(connID string) []string {
	var out []string
	for _, msg := range g.eventsFor(connID) {
		out = append(out, msg.Event)
	}
	return out
}

func (g *recorderGateway) lastFor(connID string) (models.WSMessage, bool) {
	events := g.eventsFor(connID)
	if len(events) == 0 {
		return models.WSMessage{}, false
	}
	return events[len(events)-1], true
}

func (g *recorderGateway) reset() {
	g.sent = nil
}

type stubDurable struct {
	mu         sync.Mutex
	err        error
	attendance []string
	ended      []string
	archived   []models.ChatMessage
	calls      chan string
}

func newStubDurable() *stubDurable {
	return &stubDurable{calls: make(chan string, 16)}
}

func (d *stubDurable) RecordAttendance(ctx context.Context, courseID, userID, role string, joinedAt time.Time) error {
	d.mu.Lock()
	d.attendance = append(d.attendance, courseID+"/"+userID)
	d.mu.Unlock()
	d.calls <- "attendance"
	return d.err
}

func (d *stubDurable) MarkClassEnded(ctx context.Context, courseID string, endedAt time.Time) error {
	d.mu.Lock()
	d.ended = append(d.ended, courseID)
	d.mu.Unlock()
	d.calls <- "class-ended"
	return d.err
}

func (d *stubDurable) ArchiveChatMessage(ctx context.Context, courseID string, msg models.ChatMessage) error {
	d.mu.Lock()
	d.archived = append(d.archived, msg)
	d.mu.Unlock()
	d.calls <- "chat-archive"
	return d.err
}

// waitFor blocks until the durable stub sees the named write-through,
// since the manager fires it off the event path.
func (d *stubDurable) waitFor(t *testing.T, op string) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case got := <-d.calls:
			if got == op {
				return
			}
		case <-deadline:
			t.Fatalf("Timed out waiting for %s write-through", op)
		}
	}
}

type harness struct {
	store    *Store
	registry *Registry
	manager  *Manager
	relay    *Relay
	gateway  *recorderGateway
	durable  *stubDurable
}

func newHarness() *harness {
	gateway := &recorderGateway{}
	durable := newStubDurable()
	store := NewStore()
	registry := NewRegistry()
	bus := NewBus(registry, gateway)
	return &harness{
		store:    store,
		registry: registry,
		manager:  NewManager(store, registry, bus, durable),
		relay:    NewRelay(registry, bus),
		gateway:  gateway,
		durable:  durable,
	}
}

func (h *harness) join(courseID, userID, name, role, connID string) {
	h.manager.Join(courseID, models.Participant{
		UserID:      userID,
		DisplayName: name,
		Role:        role,
	}, connID)
}
