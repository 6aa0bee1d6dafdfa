package models

import "time"

// Participant is the ephemeral record bound to one live connection. It is
// created on connect, mutated only by the hub's event loop, and destroyed on
// disconnect. Nothing about it survives the connection.
type Participant struct {
	// ConnID is the opaque per-connection identifier, never reused.
	ConnID string
	// Mood is the category from the last match request, empty before one.
	Mood Mood
	// ConversationID references the live conversation, empty when idle.
	ConversationID string
	// PeerID is the paired participant's ConnID, empty when idle.
	PeerID string
}

// InConversation reports whether the participant holds a session reference.
func (p *Participant) InConversation() bool {
	return p.ConversationID != ""
}

// ClearConversation drops the session reference, returning the participant
// to the idle state.
func (p *Participant) ClearConversation() {
	p.ConversationID = ""
	p.PeerID = ""
}

// WaitingEntry is one queued match request. A participant holds at most one
// entry across all mood queues.
type WaitingEntry struct {
	ConnID     string
	Mood       Mood
	EnqueuedAt time.Time
}

// PeerMessage is one relayed message, kept only in the conversation's
// in-memory log.
type PeerMessage struct {
	SenderID  string
	Text      string
	Timestamp time.Time
}

// Conversation is a paired ephemeral session between two participants.
// The message log lives in memory only and vanishes with the conversation.
type Conversation struct {
	ID        string
	UserA     string
	UserB     string
	Mood      Mood
	StartedAt time.Time
	Messages  []PeerMessage
}

// Has reports whether connID is one of the two participants.
func (c *Conversation) Has(connID string) bool {
	return connID == c.UserA || connID == c.UserB
}

// PeerOf returns the other participant's ConnID, or "" if connID is not a
// member of the conversation.
func (c *Conversation) PeerOf(connID string) string {
	switch connID {
	case c.UserA:
		return c.UserB
	case c.UserB:
		return c.UserA
	}
	return ""
}
