package live

import (
	"encoding/json"
)

// Relay routes offer/answer/ice-candidate messages between exactly two
// named participants. It is stateless with respect to session content:
// the registry is the authoritative lookup for the target's connection,
// and a target with no live connection means the message is silently
// dropped. A stale offer to a departed peer is meaningless and must
// not resurrect state.
type Relay struct {
	registry *Registry
	bus      *Bus
}

func NewRelay(registry *Registry, bus *Bus) *Relay {
	return &Relay{registry: registry, bus: bus}
}

// payloadField maps a signaling kind to the field name the client
// expects the body under.
func payloadField(kind string) string {
	if kind == SignalICECandidate {
		return "candidate"
	}
	return kind
}

// Forward unicasts {kind, body, from} to toUserID's current connection
// in the course, performing no buffering or reordering, so signaling
// between a pair of peers preserves program order.
func (r *Relay) Forward(kind, courseID, fromUserID, toUserID string, body json.RawMessage) {
	connectionID, ok := r.registry.Resolve(courseID, toUserID)
	if !ok {
		return
	}
	r.bus.Unicast(connectionID, kind, map[string]interface{}{
		payloadField(kind): body,
		"from":             fromUserID,
	})
}
