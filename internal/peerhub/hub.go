// Package peerhub pairs anonymous participants by mood and relays their
// conversations. All shared state (participant registry, waiting queues,
// conversation table, intervention windows) is owned by one event loop;
// every mutation happens as a discrete event processed to completion, so no
// locking is needed anywhere in the package.
package peerhub

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"nexus/backend/internal/guide"
	"nexus/backend/internal/models"
	"nexus/backend/internal/safety"
)

// Error messages surfaced to clients. Disconnects are not errors.
const (
	msgInvalidMood         = "Invalid feeling type"
	msgAlreadyMatched      = "Already waiting or in a conversation"
	msgNotInConversation   = "Not in a conversation"
	msgConversationMissing = "Conversation not found"
)

// sweepInterval is how often orphaned waiting entries are cleaned up.
const sweepInterval = 30 * time.Second

// HubService is the single owner of all realtime state. Channels are its
// only inputs; Run consumes them one event at a time.
type HubService struct {
	Log zerolog.Logger

	Clients       map[string]Client
	Participants  map[string]*models.Participant
	Conversations map[string]*models.Conversation

	Matcher *MatcherService
	Guide   *guide.Engine
	Gate    *safety.Gate

	EventCh      chan models.ClientEvent
	RegisterCh   chan Client
	UnregisterCh chan Client
}

func NewHubService(matcher *MatcherService, eng *guide.Engine, gate *safety.Gate, log zerolog.Logger) *HubService {
	return &HubService{
		Log:           log.With().Str("component", "hub").Logger(),
		Clients:       make(map[string]Client),
		Participants:  make(map[string]*models.Participant),
		Conversations: make(map[string]*models.Conversation),
		Matcher:       matcher,
		Guide:         eng,
		Gate:          gate,
		EventCh:       make(chan models.ClientEvent),
		RegisterCh:    make(chan Client),
		UnregisterCh:  make(chan Client),
	}
}

// Run is the event sequence. Everything that touches hub state happens here:
// client registration, inbound events, guidance continuations and the
// periodic queue sweep.
func (h *HubService) Run(ctx context.Context) {
	h.Log.Info().Msg("hub started")

	sweep := time.NewTicker(sweepInterval)
	defer sweep.Stop()

	for {
		select {
		case <-ctx.Done():
			h.Log.Info().Msg("hub stopped")
			return

		case client := <-h.RegisterCh:
			h.register(client)

		case client := <-h.UnregisterCh:
			h.unregister(client)

		case ev := <-h.EventCh:
			h.dispatch(ev)

		case res := <-h.Guide.Results():
			h.handleGuidanceResult(res)

		case <-sweep.C:
			h.Matcher.Sweep(func(connID string) bool {
				_, ok := h.Clients[connID]
				return ok
			})
		}
	}
}

func (h *HubService) dispatch(ev models.ClientEvent) {
	switch ev.Type {
	case models.EventRequestMatch:
		h.handleRequestMatch(ev)
	case models.EventCancelMatching:
		h.handleCancelMatching(ev)
	case models.EventPeerMessage:
		h.handlePeerMessage(ev)
	case models.EventAIGuidance:
		h.handleGuidanceFanout(ev)
	case models.EventEndConversation:
		h.handleEndConversation(ev)
	default:
		h.Log.Warn().Str("conn_id", ev.SenderID).Str("type", string(ev.Type)).Msg("unknown event type")
	}
}

func (h *HubService) register(client Client) {
	id := client.GetConnID()
	h.Clients[id] = client
	h.Participants[id] = &models.Participant{ConnID: id}
	h.Log.Info().Str("conn_id", id).Msg("participant connected")
}

// unregister handles a disconnect: the participant leaves any queue, its
// conversation (if any) is torn down with a peer-disconnected notification,
// and every trace of the connection is dropped.
func (h *HubService) unregister(client Client) {
	id := client.GetConnID()
	if _, ok := h.Clients[id]; !ok {
		return
	}

	h.Matcher.Cancel(id)

	if p := h.Participants[id]; p != nil && p.InConversation() {
		h.teardownOnDisconnect(p.ConversationID, id)
	}

	delete(h.Participants, id)
	delete(h.Clients, id)
	client.Close()
	h.Log.Info().Str("conn_id", id).Msg("participant disconnected")
}

// handleRequestMatch performs the atomic find-or-enqueue step. Because it
// runs inside the event loop, two simultaneous requests for the same mood
// can never both scan before either appends.
func (h *HubService) handleRequestMatch(ev models.ClientEvent) {
	p, ok := h.Participants[ev.SenderID]
	if !ok {
		return
	}

	if !ev.Mood.Valid() {
		h.sendError(ev.SenderID, msgInvalidMood)
		return
	}
	if p.InConversation() || h.Matcher.Waiting(ev.SenderID) {
		h.sendError(ev.SenderID, msgAlreadyMatched)
		return
	}

	p.Mood = ev.Mood

	peerID, matched := h.Matcher.FindOrEnqueue(ev.SenderID, ev.Mood, time.Now())
	if !matched {
		h.send(ev.SenderID, models.ServerEvent{
			Type: models.EventWaitingForMatch,
			Mood: ev.Mood,
		})
		h.Log.Info().Str("conn_id", ev.SenderID).Str("feeling", string(ev.Mood)).Msg("waiting for match")
		return
	}

	conv := &models.Conversation{
		ID:        uuid.NewString(),
		UserA:     peerID,
		UserB:     ev.SenderID,
		Mood:      ev.Mood,
		StartedAt: time.Now(),
	}
	h.Conversations[conv.ID] = conv

	for _, connID := range []string{conv.UserA, conv.UserB} {
		if member := h.Participants[connID]; member != nil {
			member.ConversationID = conv.ID
			member.PeerID = conv.PeerOf(connID)
		}
		h.send(connID, models.ServerEvent{
			Type:           models.EventMatchFound,
			ConversationID: conv.ID,
			Mood:           conv.Mood,
		})
	}

	h.Guide.StartMonitoring(conv.ID, conv.UserA, conv.UserB)
	h.Log.Info().
		Str("conversation_id", conv.ID).
		Str("user_a", conv.UserA).
		Str("user_b", conv.UserB).
		Str("feeling", string(conv.Mood)).
		Msg("match created")
}

func (h *HubService) handleCancelMatching(ev models.ClientEvent) {
	if h.Matcher.Cancel(ev.SenderID) {
		h.Log.Info().Str("conn_id", ev.SenderID).Msg("cancelled matching")
	}
}

// handlePeerMessage runs the crisis gate, appends to the conversation log
// and relays the text to exactly the paired peer, then hands the message to
// the guide engine as a side channel of the same stream.
func (h *HubService) handlePeerMessage(ev models.ClientEvent) {
	p, ok := h.Participants[ev.SenderID]
	if !ok || !p.InConversation() {
		h.sendError(ev.SenderID, msgNotInConversation)
		return
	}

	conv, ok := h.Conversations[p.ConversationID]
	if !ok {
		// Stale reference from a concurrent teardown; benign.
		p.ClearConversation()
		h.sendError(ev.SenderID, msgConversationMissing)
		return
	}

	// The gate never blocks the relay; a hit only discloses resources to
	// the sender of this specific message.
	if h.Gate.Detect(ev.Text) {
		h.send(ev.SenderID, models.ServerEvent{
			Type:      models.EventCrisisResources,
			Resources: safety.Resources(),
		})
		h.Log.Info().Str("conversation_id", conv.ID).Msg("crisis gate fired")
	}

	msg := models.PeerMessage{
		SenderID:  ev.SenderID,
		Text:      ev.Text,
		Timestamp: time.Now(),
	}
	conv.Messages = append(conv.Messages, msg)

	h.send(p.PeerID, models.ServerEvent{
		Type:      models.EventPeerMessage,
		Text:      ev.Text,
		Timestamp: msg.Timestamp.UnixMilli(),
	})

	h.Guide.Observe(conv.ID, ev.SenderID, ev.Text)
	h.Guide.Evaluate(conv.ID)
}

// handleGuidanceFanout serves the caller-computed guidance path: the sender
// supplies one message for itself and one for its peer, and the hub fans
// them out.
func (h *HubService) handleGuidanceFanout(ev models.ClientEvent) {
	p, ok := h.Participants[ev.SenderID]
	if !ok || !p.InConversation() {
		h.sendError(ev.SenderID, msgNotInConversation)
		return
	}
	if _, ok := h.Conversations[p.ConversationID]; !ok {
		p.ClearConversation()
		h.sendError(ev.SenderID, msgConversationMissing)
		return
	}

	h.send(ev.SenderID, models.ServerEvent{Type: models.EventAIGuidance, Text: ev.UserMessage})
	h.send(p.PeerID, models.ServerEvent{Type: models.EventAIGuidance, Text: ev.PeerMessage})
}

// handleEndConversation is the deliberate teardown: the peer learns the
// conversation ended, both sides get the reflection summary, and the
// conversation vanishes.
func (h *HubService) handleEndConversation(ev models.ClientEvent) {
	p, ok := h.Participants[ev.SenderID]
	if !ok || !p.InConversation() {
		h.sendError(ev.SenderID, msgNotInConversation)
		return
	}

	conv, ok := h.Conversations[p.ConversationID]
	if !ok {
		p.ClearConversation()
		h.sendError(ev.SenderID, msgConversationMissing)
		return
	}

	peerID := conv.PeerOf(ev.SenderID)
	h.send(peerID, models.ServerEvent{Type: models.EventPeerEndedConversation})

	summary := models.ServerEvent{
		Type:         models.EventStartReflection,
		Duration:     time.Since(conv.StartedAt).Milliseconds(),
		MessageCount: len(conv.Messages),
		Mood:         conv.Mood,
	}
	h.send(ev.SenderID, summary)
	h.send(peerID, summary)

	h.removeConversation(conv)
	h.Log.Info().Str("conversation_id", conv.ID).Msg("conversation ended")
}

// teardownOnDisconnect is the involuntary teardown: the surviving peer gets
// peer-disconnected instead of peer-ended-conversation, and no reflection
// summary is sent. Idempotent: a second trigger finds nothing to do.
func (h *HubService) teardownOnDisconnect(conversationID, leavingID string) {
	conv, ok := h.Conversations[conversationID]
	if !ok {
		return
	}

	h.send(conv.PeerOf(leavingID), models.ServerEvent{Type: models.EventPeerDisconnected})
	h.removeConversation(conv)
	h.Log.Info().Str("conversation_id", conv.ID).Msg("conversation torn down after disconnect")
}

// removeConversation deletes the conversation, stops its monitor and clears
// both participants' session references.
func (h *HubService) removeConversation(conv *models.Conversation) {
	delete(h.Conversations, conv.ID)
	h.Guide.StopMonitoring(conv.ID)

	for _, connID := range []string{conv.UserA, conv.UserB} {
		if member := h.Participants[connID]; member != nil {
			member.ClearConversation()
		}
	}
}

// handleGuidanceResult folds an asynchronous evaluation back into the loop.
// A result for an already-ended conversation is silently discarded.
func (h *HubService) handleGuidanceResult(res guide.Result) {
	h.Guide.Complete(res)

	conv, ok := h.Conversations[res.ConversationID]
	if !ok || !res.Intervene {
		return
	}

	h.send(conv.UserA, models.ServerEvent{Type: models.EventAIGuidance, Text: res.ForA})
	h.send(conv.UserB, models.ServerEvent{Type: models.EventAIGuidance, Text: res.ForB})
	h.Log.Info().Str("conversation_id", conv.ID).Msg("guidance injected")
}

// send delivers one event to one connection. A full send buffer means the
// client has stalled; the event is dropped rather than blocking the loop.
func (h *HubService) send(connID string, ev models.ServerEvent) {
	client, ok := h.Clients[connID]
	if !ok {
		return
	}
	select {
	case client.GetSendChannel() <- ev:
	default:
		h.Log.Warn().Str("conn_id", connID).Str("type", string(ev.Type)).Msg("send buffer full, event dropped")
	}
}

func (h *HubService) sendError(connID, message string) {
	h.send(connID, models.ServerEvent{Type: models.EventError, Text: message})
}
