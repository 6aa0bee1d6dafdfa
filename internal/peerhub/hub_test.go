package peerhub_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nexus/backend/internal/models"
)

func TestHubRegisterUnregister(t *testing.T) {
	hub := newTestHub(t)

	client := connect(t, hub, "user_A")
	assert.Contains(t, hub.Clients, "user_A")
	assert.Contains(t, hub.Participants, "user_A")

	hub.UnregisterCh <- client
	time.Sleep(50 * time.Millisecond)
	assert.NotContains(t, hub.Clients, "user_A")
	assert.NotContains(t, hub.Participants, "user_A")
}

func TestHubMatchFlow(t *testing.T) {
	hub := newTestHub(t)
	a := connect(t, hub, "user_A")
	b := connect(t, hub, "user_B")

	hub.EventCh <- models.ClientEvent{SenderID: "user_A", Type: models.EventRequestMatch, Mood: models.MoodLonely}
	waiting := a.expect(t, models.EventWaitingForMatch)
	assert.Equal(t, models.MoodLonely, waiting.Mood)

	hub.EventCh <- models.ClientEvent{SenderID: "user_B", Type: models.EventRequestMatch, Mood: models.MoodLonely}
	foundA := a.expect(t, models.EventMatchFound)
	foundB := b.expect(t, models.EventMatchFound)

	assert.Equal(t, foundA.ConversationID, foundB.ConversationID)
	assert.Equal(t, models.MoodLonely, foundA.Mood)
	assert.Contains(t, hub.Conversations, foundA.ConversationID)
}

func TestHubInvalidMood(t *testing.T) {
	hub := newTestHub(t)
	a := connect(t, hub, "user_A")

	hub.EventCh <- models.ClientEvent{SenderID: "user_A", Type: models.EventRequestMatch, Mood: "furious"}

	ev := a.expect(t, models.EventError)
	assert.Equal(t, "Invalid feeling type", ev.Text)
	assert.Empty(t, hub.Conversations)
}

func TestHubDuplicateMatchRequestRejected(t *testing.T) {
	hub := newTestHub(t)
	a := connect(t, hub, "user_A")

	hub.EventCh <- models.ClientEvent{SenderID: "user_A", Type: models.EventRequestMatch, Mood: models.MoodCalm}
	a.expect(t, models.EventWaitingForMatch)

	hub.EventCh <- models.ClientEvent{SenderID: "user_A", Type: models.EventRequestMatch, Mood: models.MoodCalm}
	ev := a.expect(t, models.EventError)
	assert.Equal(t, "Already waiting or in a conversation", ev.Text)
}

func TestHubCancelMatching(t *testing.T) {
	hub := newTestHub(t)
	a := connect(t, hub, "user_A")
	b := connect(t, hub, "user_B")

	hub.EventCh <- models.ClientEvent{SenderID: "user_A", Type: models.EventRequestMatch, Mood: models.MoodCurious}
	a.expect(t, models.EventWaitingForMatch)

	hub.EventCh <- models.ClientEvent{SenderID: "user_A", Type: models.EventCancelMatching}

	// The cancelled participant must not be matched anymore.
	hub.EventCh <- models.ClientEvent{SenderID: "user_B", Type: models.EventRequestMatch, Mood: models.MoodCurious}
	b.expect(t, models.EventWaitingForMatch)
	assert.Empty(t, a.drain())
}

func TestHubRelayRoundTrip(t *testing.T) {
	hub := newTestHub(t)
	a := connect(t, hub, "user_A")
	b := connect(t, hub, "user_B")
	pairUp(t, hub, a, b, models.MoodLonely)

	hub.EventCh <- models.ClientEvent{SenderID: "user_A", Type: models.EventPeerMessage, Text: "hi"}

	got := b.expect(t, models.EventPeerMessage)
	assert.Equal(t, "hi", got.Text)
	assert.NotZero(t, got.Timestamp)

	// Exactly one delivery: nothing else for B, never an echo to A.
	assert.Empty(t, b.drain())
	assert.Empty(t, a.drain())
}

func TestHubRelayPreservesOrder(t *testing.T) {
	hub := newTestHub(t)
	a := connect(t, hub, "user_A")
	b := connect(t, hub, "user_B")
	pairUp(t, hub, a, b, models.MoodCalm)

	for _, text := range []string{"one", "two", "three"} {
		hub.EventCh <- models.ClientEvent{SenderID: "user_A", Type: models.EventPeerMessage, Text: text}
	}

	assert.Equal(t, "one", b.expect(t, models.EventPeerMessage).Text)
	assert.Equal(t, "two", b.expect(t, models.EventPeerMessage).Text)
	assert.Equal(t, "three", b.expect(t, models.EventPeerMessage).Text)
}

func TestHubMessageWithoutConversation(t *testing.T) {
	hub := newTestHub(t)
	a := connect(t, hub, "user_A")

	hub.EventCh <- models.ClientEvent{SenderID: "user_A", Type: models.EventPeerMessage, Text: "hello?"}

	ev := a.expect(t, models.EventError)
	assert.Equal(t, "Not in a conversation", ev.Text)
}

func TestHubEndConversation(t *testing.T) {
	hub := newTestHub(t)
	a := connect(t, hub, "user_A")
	b := connect(t, hub, "user_B")
	convID := pairUp(t, hub, a, b, models.MoodStressed)

	hub.EventCh <- models.ClientEvent{SenderID: "user_A", Type: models.EventPeerMessage, Text: "rough week honestly"}
	b.expect(t, models.EventPeerMessage)

	hub.EventCh <- models.ClientEvent{SenderID: "user_A", Type: models.EventEndConversation}

	b.expect(t, models.EventPeerEndedConversation)
	reflA := a.expect(t, models.EventStartReflection)
	reflB := b.expect(t, models.EventStartReflection)

	for _, refl := range []models.ServerEvent{reflA, reflB} {
		assert.Equal(t, 1, refl.MessageCount)
		assert.Equal(t, models.MoodStressed, refl.Mood)
	}
	assert.NotContains(t, hub.Conversations, convID)

	// A stale follow-up message must fail cleanly.
	hub.EventCh <- models.ClientEvent{SenderID: "user_A", Type: models.EventPeerMessage, Text: "one more thing"}
	ev := a.expect(t, models.EventError)
	assert.Equal(t, "Not in a conversation", ev.Text)
	assert.Empty(t, b.drain())
}

func TestHubStaleSessionReference(t *testing.T) {
	hub := newTestHub(t)
	a := connect(t, hub, "user_A")
	b := connect(t, hub, "user_B")
	convID := pairUp(t, hub, a, b, models.MoodCalm)

	// Simulate the teardown race: the conversation is gone while both
	// participants still hold their session references.
	delete(hub.Conversations, convID)

	hub.EventCh <- models.ClientEvent{SenderID: "user_A", Type: models.EventPeerMessage, Text: "still there?"}
	ev := a.expect(t, models.EventError)
	assert.Equal(t, "Conversation not found", ev.Text)
	assert.False(t, hub.Participants["user_A"].InConversation(), "stale reference is cleared")
	assert.Empty(t, b.drain(), "nothing is relayed to the peer")

	// The peer's reference is just as stale; ending fails the same way.
	hub.EventCh <- models.ClientEvent{SenderID: "user_B", Type: models.EventEndConversation}
	ev = b.expect(t, models.EventError)
	assert.Equal(t, "Conversation not found", ev.Text)
	assert.False(t, hub.Participants["user_B"].InConversation())
	assert.Empty(t, a.drain())
}

func TestHubPeerDisconnect(t *testing.T) {
	hub := newTestHub(t)
	a := connect(t, hub, "user_A")
	b := connect(t, hub, "user_B")
	convID := pairUp(t, hub, a, b, models.MoodAnxious)

	hub.UnregisterCh <- a

	// Disconnect is not a deliberate end: no reflection summary for the peer.
	b.expect(t, models.EventPeerDisconnected)
	assert.Empty(t, b.drain())
	require.Eventually(t, func() bool {
		_, ok := hub.Conversations[convID]
		return !ok
	}, time.Second, 10*time.Millisecond)
}

func TestHubCrisisGateOnRelay(t *testing.T) {
	hub := newTestHub(t)
	a := connect(t, hub, "user_A")
	b := connect(t, hub, "user_B")
	pairUp(t, hub, a, b, models.MoodOverwhelmed)

	hub.EventCh <- models.ClientEvent{SenderID: "user_A", Type: models.EventPeerMessage, Text: "I want to end my life"}

	// The sender gets the resource disclosure; the relay still happens.
	resources := a.expect(t, models.EventCrisisResources)
	assert.NotEmpty(t, resources.Resources)
	relayed := b.expect(t, models.EventPeerMessage)
	assert.Equal(t, "I want to end my life", relayed.Text)
	assert.Empty(t, b.drain(), "resources go to the sender only")

	hub.EventCh <- models.ClientEvent{SenderID: "user_A", Type: models.EventPeerMessage, Text: "I'm having a normal day"}
	b.expect(t, models.EventPeerMessage)
	assert.Empty(t, a.drain())
}

func TestHubGuidanceFanout(t *testing.T) {
	hub := newTestHub(t)
	a := connect(t, hub, "user_A")
	b := connect(t, hub, "user_B")
	pairUp(t, hub, a, b, models.MoodLonely)

	hub.EventCh <- models.ClientEvent{
		SenderID:    "user_A",
		Type:        models.EventAIGuidance,
		UserMessage: "take a breath before answering",
		PeerMessage: "your peer seems to need a pause",
	}

	forSender := a.expect(t, models.EventAIGuidance)
	assert.Equal(t, "take a breath before answering", forSender.Text)
	forPeer := b.expect(t, models.EventAIGuidance)
	assert.Equal(t, "your peer seems to need a pause", forPeer.Text)
}

func TestHubGuidanceFanoutRequiresConversation(t *testing.T) {
	hub := newTestHub(t)
	a := connect(t, hub, "user_A")

	hub.EventCh <- models.ClientEvent{SenderID: "user_A", Type: models.EventAIGuidance, UserMessage: "x", PeerMessage: "y"}

	ev := a.expect(t, models.EventError)
	assert.Equal(t, "Not in a conversation", ev.Text)
}
