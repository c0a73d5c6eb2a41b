package websocket

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"liveclass-backend/internal/live"
	"liveclass-backend/internal/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Hub owns the live-class core and the transport connections feeding
// it. Every inbound message is handled to completion on a single event
// loop before the next is dequeued, so the session state underneath
// needs no locking and broadcasts within a class keep the order their
// triggering events were processed in.
type Hub struct {
	jwtSecret []byte

	store      *live.Store
	registry   *live.Registry
	manager    *live.Manager
	relay      *live.Relay
	whiteboard *live.Whiteboard

	tasks chan func()
	conns map[string]*websocket.Conn // connectionID -> socket, loop-owned
}

func NewHub(durable live.DurableStore, jwtSecret string) *Hub {
	h := &Hub{
		jwtSecret: []byte(jwtSecret),
		tasks:     make(chan func(), 256),
		conns:     make(map[string]*websocket.Conn),
	}
	h.store = live.NewStore()
	h.registry = live.NewRegistry()
	bus := live.NewBus(h.registry, h)
	h.manager = live.NewManager(h.store, h.registry, bus, durable)
	h.relay = live.NewRelay(h.registry, bus)
	h.whiteboard = live.NewWhiteboard(h)

	go h.run()
	return h
}

func (h *Hub) run() {
	for fn := range h.tasks {
		fn()
	}
}

// do schedules fn onto the event loop.
func (h *Hub) do(fn func()) {
	h.tasks <- fn
}

// Send implements live.Gateway. Only ever invoked from the event loop,
// which keeps gorilla's one-writer rule intact.
func (h *Hub) Send(connectionID string, msg models.WSMessage) {
	conn, ok := h.conns[connectionID]
	if !ok {
		return
	}
	if err := conn.WriteJSON(msg); err != nil {
		log.Printf("WebSocket write to %s failed: %v", connectionID, err)
	}
}

func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	// Authenticate via token query param
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return h.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	if _, ok := claims["user_id"].(string); !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	connectionID := uuid.NewString()
	h.do(func() { h.conns[connectionID] = conn })
	log.Printf("WebSocket connected: %s", connectionID)

	go func() {
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				break
			}
			msg := data
			h.do(func() { h.dispatch(connectionID, msg) })
		}
		h.do(func() { h.dropConnection(connectionID) })
	}()
}

// dropConnection is the transport-level disconnect path. It funnels
// through the lifecycle manager, which tolerates connections that never
// joined or were already cleaned up.
func (h *Hub) dropConnection(connectionID string) {
	h.manager.Disconnect(connectionID)
	h.whiteboard.DropConnection(connectionID)
	if conn, ok := h.conns[connectionID]; ok {
		conn.Close()
		delete(h.conns, connectionID)
	}
	log.Printf("WebSocket disconnected: %s", connectionID)
}

// Inbound payloads (client -> core).

type joinClassPayload struct {
	CourseID string `json:"courseId"`
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
	Role     string `json:"role"`
}

type leaveClassPayload struct {
	CourseID string `json:"courseId"`
	UserID   string `json:"userId"`
}

type signalPayload struct {
	Offer     json.RawMessage `json:"offer,omitempty"`
	Answer    json.RawMessage `json:"answer,omitempty"`
	Candidate json.RawMessage `json:"candidate,omitempty"`
	To        string          `json:"to"`
}

type chatMessagePayload struct {
	CourseID string `json:"courseId"`
	Message  struct {
		SenderID   string `json:"senderId"`
		SenderName string `json:"senderName"`
		Text       string `json:"text"`
		Kind       string `json:"kind"`
	} `json:"message"`
}

type raiseHandPayload struct {
	CourseID string `json:"courseId"`
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
	Raised   bool   `json:"raised"`
}

type createPollPayload struct {
	CourseID string `json:"courseId"`
	Poll     struct {
		Question string   `json:"question"`
		Options  []string `json:"options"`
	} `json:"poll"`
}

type votePollPayload struct {
	CourseID    string `json:"courseId"`
	PollID      string `json:"pollId"`
	OptionIndex int    `json:"optionIndex"`
	UserID      string `json:"userId"`
}

type courseOnlyPayload struct {
	CourseID string `json:"courseId"`
}

type whiteboardJoinPayload struct {
	CourseID string `json:"courseId"`
	UserID   string `json:"userId"`
	Role     string `json:"role"`
}

type whiteboardStrokePayload struct {
	CourseID string          `json:"courseId"`
	UserID   string          `json:"userId"`
	Stroke   json.RawMessage `json:"stroke"`
}

// dispatch routes one inbound message by event name. Malformed
// payloads drop the message; unknown events are logged and ignored.
func (h *Hub) dispatch(connectionID string, data []byte) {
	var env struct {
		Event string          `json:"event"`
		Data  json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		log.Printf("WebSocket message from %s unparseable: %v", connectionID, err)
		return
	}

	switch env.Event {
	case "join-class":
		var p joinClassPayload
		if json.Unmarshal(env.Data, &p) != nil || p.CourseID == "" || p.UserID == "" {
			return
		}
		h.manager.Join(p.CourseID, models.Participant{
			UserID:      p.UserID,
			DisplayName: p.UserName,
			Role:        p.Role,
		}, connectionID)

	case "leave-class":
		var p leaveClassPayload
		if json.Unmarshal(env.Data, &p) != nil {
			return
		}
		h.manager.Leave(p.CourseID, p.UserID)

	case live.SignalOffer, live.SignalAnswer, live.SignalICECandidate:
		var p signalPayload
		if json.Unmarshal(env.Data, &p) != nil || p.To == "" {
			return
		}
		binding, ok := h.registry.Lookup(connectionID)
		if !ok {
			return
		}
		body := p.Offer
		switch env.Event {
		case live.SignalAnswer:
			body = p.Answer
		case live.SignalICECandidate:
			body = p.Candidate
		}
		h.relay.Forward(env.Event, binding.CourseID, binding.UserID, p.To, body)

	case "chat-message":
		var p chatMessagePayload
		if json.Unmarshal(env.Data, &p) != nil {
			return
		}
		h.manager.PostChat(p.CourseID, p.Message.SenderID, p.Message.SenderName, p.Message.Text, p.Message.Kind)

	case "raise-hand":
		var p raiseHandPayload
		if json.Unmarshal(env.Data, &p) != nil {
			return
		}
		h.manager.SetHandRaised(p.CourseID, p.UserID, p.UserName, p.Raised)

	case "create-poll":
		var p createPollPayload
		if json.Unmarshal(env.Data, &p) != nil {
			return
		}
		binding, ok := h.registry.Lookup(connectionID)
		if !ok {
			return
		}
		h.manager.CreatePoll(p.CourseID, binding.Role, p.Poll.Question, p.Poll.Options)

	case "vote-poll":
		var p votePollPayload
		if json.Unmarshal(env.Data, &p) != nil {
			return
		}
		h.manager.VotePoll(p.CourseID, p.PollID, p.UserID, p.OptionIndex)

	case "recording-started", "recording-stopped":
		var p courseOnlyPayload
		if json.Unmarshal(env.Data, &p) != nil {
			return
		}
		binding, ok := h.registry.Lookup(connectionID)
		if !ok {
			return
		}
		h.manager.SetRecording(p.CourseID, binding.Role, env.Event == "recording-started")

	case "end-class":
		var p courseOnlyPayload
		if json.Unmarshal(env.Data, &p) != nil {
			return
		}
		binding, ok := h.registry.Lookup(connectionID)
		if !ok {
			return
		}
		h.manager.EndClass(p.CourseID, binding.Role)

	case "whiteboard-join":
		var p whiteboardJoinPayload
		if json.Unmarshal(env.Data, &p) != nil || p.CourseID == "" || p.UserID == "" {
			return
		}
		h.whiteboard.Join(p.CourseID, p.UserID, p.Role, connectionID)

	case "whiteboard-leave":
		var p whiteboardJoinPayload
		if json.Unmarshal(env.Data, &p) != nil {
			return
		}
		h.whiteboard.Leave(p.CourseID, p.UserID)

	case "whiteboard-stroke":
		var p whiteboardStrokePayload
		if json.Unmarshal(env.Data, &p) != nil {
			return
		}
		h.whiteboard.AddStroke(p.CourseID, p.UserID, p.Stroke)

	case "whiteboard-clear":
		var p courseOnlyPayload
		if json.Unmarshal(env.Data, &p) != nil {
			return
		}
		binding, ok := h.whiteboard.Lookup(connectionID)
		if !ok {
			return
		}
		h.whiteboard.Clear(p.CourseID, binding.Role)

	default:
		log.Printf("WebSocket event %q from %s ignored", env.Event, connectionID)
	}
}

// ActiveClasses reads the session store through the event loop so REST
// callers observe serialized state.
func (h *Hub) ActiveClasses() []models.ClassSummary {
	reply := make(chan []models.ClassSummary, 1)
	h.do(func() {
		sessions := h.store.Active()
		out := make([]models.ClassSummary, 0, len(sessions))
		for _, s := range sessions {
			out = append(out, models.ClassSummary{
				CourseID:         s.CourseID,
				ParticipantCount: len(s.Participants),
				IsRecording:      s.IsRecording,
				StartTime:        s.StartTime,
			})
		}
		reply <- out
	})
	return <-reply
}

// ClassSnapshot returns the detail view of one active class.
func (h *Hub) ClassSnapshot(courseID string) (models.ClassSnapshot, bool) {
	type result struct {
		snapshot models.ClassSnapshot
		ok       bool
	}
	reply := make(chan result, 1)
	h.do(func() {
		session, ok := h.store.Get(courseID)
		if !ok {
			reply <- result{}
			return
		}
		reply <- result{
			snapshot: models.ClassSnapshot{
				CourseID:     session.CourseID,
				Participants: live.SortedParticipants(session),
				IsRecording:  session.IsRecording,
				StartTime:    session.StartTime,
				PollCount:    len(session.Polls),
			},
			ok: true,
		}
	})
	r := <-reply
	return r.snapshot, r.ok
}
