package models

// EventType tags every realtime event exchanged over a websocket connection.
type EventType string

// Inbound event types (client -> server).
const (
	EventRequestMatch    EventType = "request-match"
	EventCancelMatching  EventType = "cancel-matching"
	EventPeerMessage     EventType = "peer-message"
	EventAIGuidance      EventType = "ai-guidance"
	EventEndConversation EventType = "end-conversation"
)

// Outbound event types (server -> client).
const (
	EventWaitingForMatch       EventType = "waiting-for-match"
	EventMatchFound            EventType = "match-found"
	EventPeerEndedConversation EventType = "peer-ended-conversation"
	EventPeerDisconnected      EventType = "peer-disconnected"
	EventStartReflection       EventType = "start-reflection"
	EventCrisisResources       EventType = "crisis-resources"
	EventError                 EventType = "error"
)

// ClientEvent is a single inbound event from one connection. SenderID is
// stamped by the connection's read pump, never trusted from the payload.
type ClientEvent struct {
	SenderID string `json:"-"`

	Type EventType `json:"type"`
	Mood Mood      `json:"feeling,omitempty"`
	Text string    `json:"message,omitempty"`

	// Personalized guidance fan-out (ai-guidance only).
	UserMessage string `json:"userMessage,omitempty"`
	PeerMessage string `json:"peerMessage,omitempty"`
}

// ServerEvent is the single outbound notification type. The Type tag
// determines which of the optional fields are populated.
type ServerEvent struct {
	Type EventType `json:"type"`

	ConversationID string `json:"conversationId,omitempty"`
	Mood           Mood   `json:"feeling,omitempty"`
	Text           string `json:"message,omitempty"`
	Timestamp      int64  `json:"timestamp,omitempty"` // unix milliseconds

	// Reflection summary (start-reflection only).
	Duration     int64 `json:"duration,omitempty"` // milliseconds
	MessageCount int   `json:"messageCount,omitempty"`

	Resources []CrisisResource `json:"resources,omitempty"`
}

// CrisisResource is one entry of the crisis support catalog disclosed to a
// sender whose message tripped the crisis gate.
type CrisisResource struct {
	Name        string `json:"name"`
	Contact     string `json:"contact"`
	Description string `json:"description"`
	URL         string `json:"url"`
}
