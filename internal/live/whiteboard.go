package live

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"liveclass-backend/internal/models"
)

type whiteboardRoom struct {
	members map[string]string // userID -> connectionID
	strokes []models.Stroke
}

// Whiteboard is the simpler sibling of the live-class session: rooms
// keyed by course, joiners get the stroke backlog, strokes broadcast to
// everyone in the room, and the room dies when its last member leaves.
// Same single-writer contract as the Store.
type Whiteboard struct {
	gateway Gateway
	rooms   map[string]*whiteboardRoom
	byConn  map[string]Binding // connectionID -> (course, user, role)
}

func NewWhiteboard(gateway Gateway) *Whiteboard {
	return &Whiteboard{
		gateway: gateway,
		rooms:   make(map[string]*whiteboardRoom),
		byConn:  make(map[string]Binding),
	}
}

func (w *Whiteboard) Join(courseID, userID, role, connectionID string) {
	room, ok := w.rooms[courseID]
	if !ok {
		room = &whiteboardRoom{
			members: make(map[string]string),
			strokes: []models.Stroke{},
		}
		w.rooms[courseID] = room
	}

	if stale, ok := room.members[userID]; ok && stale != connectionID {
		delete(w.byConn, stale)
	}
	room.members[userID] = connectionID
	w.byConn[connectionID] = Binding{CourseID: courseID, UserID: userID, Role: role}

	w.gateway.Send(connectionID, models.WSMessage{
		Event: EventWhiteboardHistory,
		Data:  map[string]interface{}{"strokes": room.strokes},
	})
}

func (w *Whiteboard) Leave(courseID, userID string) {
	room, ok := w.rooms[courseID]
	if !ok {
		return
	}
	connectionID, ok := room.members[userID]
	if !ok {
		return
	}
	delete(room.members, userID)
	delete(w.byConn, connectionID)
	if len(room.members) == 0 {
		delete(w.rooms, courseID)
	}
}

// Lookup resolves a connection to the whiteboard room it joined.
func (w *Whiteboard) Lookup(connectionID string) (Binding, bool) {
	binding, ok := w.byConn[connectionID]
	return binding, ok
}

// DropConnection mirrors the live-class disconnect path: a pure
// lookup-then-delegate, no-op for connections that never joined a room.
func (w *Whiteboard) DropConnection(connectionID string) {
	binding, ok := w.byConn[connectionID]
	if !ok {
		return
	}
	w.Leave(binding.CourseID, binding.UserID)
}

// AddStroke appends one opaque drawing operation and broadcasts it.
// Strokes from users outside the room are dropped.
func (w *Whiteboard) AddStroke(courseID, userID string, data json.RawMessage) {
	room, ok := w.rooms[courseID]
	if !ok {
		return
	}
	if _, ok := room.members[userID]; !ok {
		return
	}

	stroke := models.Stroke{
		ID:   uuid.NewString(),
		By:   userID,
		Data: data,
		At:   time.Now(),
	}
	room.strokes = append(room.strokes, stroke)
	w.broadcast(room, models.WSMessage{
		Event: EventWhiteboardStroke,
		Data:  map[string]interface{}{"stroke": stroke},
	})
}

// Clear wipes the board, instructor-only with the usual silent no-op
// for anyone else.
func (w *Whiteboard) Clear(courseID, callerRole string) {
	if callerRole != models.RoleInstructor {
		return
	}
	room, ok := w.rooms[courseID]
	if !ok {
		return
	}

	room.strokes = []models.Stroke{}
	w.broadcast(room, models.WSMessage{Event: EventWhiteboardCleared})
}

func (w *Whiteboard) broadcast(room *whiteboardRoom, msg models.WSMessage) {
	for _, connectionID := range room.members {
		w.gateway.Send(connectionID, msg)
	}
}
