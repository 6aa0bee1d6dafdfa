package peerhub_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"nexus/backend/internal/guide"
	"nexus/backend/internal/models"
	"nexus/backend/internal/peerhub"
	"nexus/backend/internal/safety"
)

// mockClient is an in-memory test double for the peerhub.Client interface.
type mockClient struct {
	connID string
	send   chan models.ServerEvent
	closed bool
}

func newMockClient(id string) *mockClient {
	return &mockClient{
		connID: id,
		// Buffered to prevent blocking in tests.
		send: make(chan models.ServerEvent, 16),
	}
}

func (c *mockClient) GetConnID() string                         { return c.connID }
func (c *mockClient) GetSendChannel() chan<- models.ServerEvent { return c.send }
func (c *mockClient) Run()                                      {}

func (c *mockClient) Close() {
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// expect receives the next event and asserts its type.
func (c *mockClient) expect(t *testing.T, typ models.EventType) models.ServerEvent {
	t.Helper()
	select {
	case ev, ok := <-c.send:
		require.True(t, ok, "send channel closed while waiting for %s", typ)
		require.Equal(t, typ, ev.Type)
		return ev
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for %s", typ)
		return models.ServerEvent{}
	}
}

// drain empties the send channel and returns whatever was buffered.
func (c *mockClient) drain() []models.ServerEvent {
	var events []models.ServerEvent
	for {
		select {
		case ev, ok := <-c.send:
			if !ok {
				return events
			}
			events = append(events, ev)
		default:
			return events
		}
	}
}

// quietGenerator never triggers the intensity signal and returns canned
// guidance, keeping hub tests free of generation noise.
type quietGenerator struct{}

func (quietGenerator) Generate(_ context.Context, _ string) (string, error) {
	return "0.0", nil
}

// newTestHub builds a hub with real collaborators and starts its loop.
func newTestHub(t *testing.T) *peerhub.HubService {
	t.Helper()

	log := zerolog.Nop()
	gate, err := safety.NewGate()
	require.NoError(t, err)

	hub := peerhub.NewHubService(
		peerhub.NewMatcherService(log),
		guide.NewEngine(quietGenerator{}, log),
		gate,
		log,
	)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	return hub
}

// connect registers a mock client and waits for the loop to pick it up.
func connect(t *testing.T, hub *peerhub.HubService, id string) *mockClient {
	t.Helper()
	client := newMockClient(id)
	hub.RegisterCh <- client
	time.Sleep(50 * time.Millisecond)
	return client
}

// pairUp matches two connected clients in the given mood and returns the
// conversation ID both were told about.
func pairUp(t *testing.T, hub *peerhub.HubService, a, b *mockClient, mood models.Mood) string {
	t.Helper()

	hub.EventCh <- models.ClientEvent{SenderID: a.connID, Type: models.EventRequestMatch, Mood: mood}
	a.expect(t, models.EventWaitingForMatch)

	hub.EventCh <- models.ClientEvent{SenderID: b.connID, Type: models.EventRequestMatch, Mood: mood}
	foundA := a.expect(t, models.EventMatchFound)
	foundB := b.expect(t, models.EventMatchFound)

	require.Equal(t, foundA.ConversationID, foundB.ConversationID)
	require.NotEmpty(t, foundA.ConversationID)
	return foundA.ConversationID
}
