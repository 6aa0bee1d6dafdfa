package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"nexus/backend/internal/models"
)

func TestMoodValid(t *testing.T) {
	for _, mood := range models.Moods() {
		assert.True(t, mood.Valid(), "%s should be recognized", mood)
	}

	assert.False(t, models.Mood("furious").Valid())
	assert.False(t, models.Mood("").Valid())
	assert.False(t, models.Mood("Lonely").Valid(), "mood tags are case-sensitive")
}

func TestConversationPeerOf(t *testing.T) {
	conv := &models.Conversation{ID: "c1", UserA: "a", UserB: "b"}

	assert.Equal(t, "b", conv.PeerOf("a"))
	assert.Equal(t, "a", conv.PeerOf("b"))
	assert.Empty(t, conv.PeerOf("stranger"))
	assert.True(t, conv.Has("a"))
	assert.False(t, conv.Has("stranger"))
}

func TestParticipantClearConversation(t *testing.T) {
	p := &models.Participant{ConnID: "a", ConversationID: "c1", PeerID: "b"}
	assert.True(t, p.InConversation())

	p.ClearConversation()
	assert.False(t, p.InConversation())
	assert.Empty(t, p.PeerID)
}
