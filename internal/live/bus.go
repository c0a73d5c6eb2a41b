package live

import (
	"liveclass-backend/internal/models"
)

// Gateway delivers one event to one transport connection. The websocket
// hub implements it; tests substitute a recorder. Delivery is best
// effort: a connection that is mid-disconnect may miss an event, and
// the full-snapshot policy on the next join re-synchronizes the client.
type Gateway interface {
	Send(connectionID string, msg models.WSMessage)
}

// Bus is the room messaging primitive underlying chat, polls,
// hand-raise and membership delivery: broadcast to every connection
// bound to a course, or unicast to exactly one connection.
type Bus struct {
	registry *Registry
	gateway  Gateway
}

func NewBus(registry *Registry, gateway Gateway) *Bus {
	return &Bus{registry: registry, gateway: gateway}
}

func (b *Bus) Broadcast(courseID, event string, data interface{}) {
	msg := models.WSMessage{Event: event, Data: data}
	for _, connectionID := range b.registry.Connections(courseID) {
		b.gateway.Send(connectionID, msg)
	}
}

// BroadcastExcept delivers to every connection in the course except the
// one currently bound to excludeUserID.
func (b *Bus) BroadcastExcept(courseID, excludeUserID, event string, data interface{}) {
	excluded, _ := b.registry.Resolve(courseID, excludeUserID)
	msg := models.WSMessage{Event: event, Data: data}
	for _, connectionID := range b.registry.Connections(courseID) {
		if connectionID == excluded {
			continue
		}
		b.gateway.Send(connectionID, msg)
	}
}

func (b *Bus) Unicast(connectionID, event string, data interface{}) {
	b.gateway.Send(connectionID, models.WSMessage{Event: event, Data: data})
}
