package live

import (
	"encoding/json"
	"testing"
)

func TestRelayUnicastsToTargetOnly(t *testing.T) {
	h := newHarness()
	h.join("C1", "alice", "Alice", "instructor", "conn-a")
	h.join("C1", "bob", "Bob", "student", "conn-b")
	h.join("C1", "carol", "Carol", "student", "conn-c")
	h.gateway.reset()

	offer := json.RawMessage(`{"type":"offer","sdp":"v=0"}`)
	h.relay.Forward(SignalOffer, "C1", "alice", "bob", offer)

	events := h.gateway.eventsFor("conn-b")
	if len(events) != 1 || events[0].Event != SignalOffer {
		t.Fatalf("Expected one offer for conn-b, got %v", h.gateway.namesFor("conn-b"))
	}
	data := events[0].Data.(map[string]interface{})
	if data["from"] != "alice" {
		t.Errorf("Expected from=alice, got %v", data["from"])
	}
	if string(data["offer"].(json.RawMessage)) != string(offer) {
		t.Error("Expected the offer payload forwarded untouched")
	}

	if len(h.gateway.eventsFor("conn-a")) != 0 || len(h.gateway.eventsFor("conn-c")) != 0 {
		t.Error("Expected no delivery to the sender or third parties")
	}
}

func TestRelayPayloadFieldPerKind(t *testing.T) {
	h := newHarness()
	h.join("C1", "alice", "Alice", "instructor", "conn-a")
	h.join("C1", "bob", "Bob", "student", "conn-b")
	h.gateway.reset()

	tests := []struct {
		kind  string
		field string
	}{
		{SignalOffer, "offer"},
		{SignalAnswer, "answer"},
		{SignalICECandidate, "candidate"},
	}

	for _, tc := range tests {
		t.Run(tc.kind, func(t *testing.T) {
			h.relay.Forward(tc.kind, "C1", "alice", "bob", json.RawMessage(`{}`))
			msg, ok := h.gateway.lastFor("conn-b")
			if !ok || msg.Event != tc.kind {
				t.Fatalf("Expected %s event", tc.kind)
			}
			data := msg.Data.(map[string]interface{})
			if _, ok := data[tc.field]; !ok {
				t.Errorf("Expected payload under %q, got %v", tc.field, data)
			}
		})
	}
}

func TestRelayPreservesPairOrdering(t *testing.T) {
	h := newHarness()
	h.join("C1", "alice", "Alice", "instructor", "conn-a")
	h.join("C1", "bob", "Bob", "student", "conn-b")
	h.gateway.reset()

	h.relay.Forward(SignalOffer, "C1", "alice", "bob", json.RawMessage(`{}`))
	h.relay.Forward(SignalICECandidate, "C1", "alice", "bob", json.RawMessage(`{}`))
	h.relay.Forward(SignalAnswer, "C1", "bob", "alice", json.RawMessage(`{}`))

	names := h.gateway.namesFor("conn-b")
	if len(names) != 2 || names[0] != SignalOffer || names[1] != SignalICECandidate {
		t.Errorf("Expected [offer ice-candidate] in program order, got %v", names)
	}
	if got := h.gateway.namesFor("conn-a"); len(got) != 1 || got[0] != SignalAnswer {
		t.Errorf("Expected [answer] for conn-a, got %v", got)
	}
}

func TestRelayDropsForDepartedPeer(t *testing.T) {
	h := newHarness()
	h.join("C1", "alice", "Alice", "instructor", "conn-a")
	h.join("C1", "bob", "Bob", "student", "conn-b")
	h.manager.Leave("C1", "bob")
	h.gateway.reset()

	h.relay.Forward(SignalOffer, "C1", "alice", "bob", json.RawMessage(`{}`))

	if len(h.gateway.sent) != 0 {
		t.Errorf("Expected a stale offer silently dropped, got %d events", len(h.gateway.sent))
	}
}
