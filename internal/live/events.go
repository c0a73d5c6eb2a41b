package live

// Outbound event names (core -> client).
const (
	EventParticipantsUpdated = "participants-updated"
	EventChatHistory         = "chat-history"
	EventUserJoined          = "user-joined"
	EventUserLeft            = "user-left"
	EventChatMessage         = "chat-message"
	EventHandRaised          = "hand-raised"
	EventPollCreated         = "poll-created"
	EventPollVoted           = "poll-voted"
	EventRecordingStarted    = "recording-started"
	EventRecordingStopped    = "recording-stopped"
	EventClassEnded          = "class-ended"

	EventWhiteboardHistory = "whiteboard-history"
	EventWhiteboardStroke  = "whiteboard-stroke"
	EventWhiteboardCleared = "whiteboard-cleared"
)

// Signaling kinds double as both inbound and outbound event names; the
// relay forwards them without interpreting the payload.
const (
	SignalOffer        = "offer"
	SignalAnswer       = "answer"
	SignalICECandidate = "ice-candidate"
)
