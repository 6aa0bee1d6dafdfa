package guide

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"nexus/backend/internal/models"
)

const intensityPrompt = `Analyze the emotional intensity of this conversation excerpt. Rate from 0.0 (calm) to 1.0 (very intense). Respond with ONLY a number.

Conversation:
%s

Emotional intensity (0.0-1.0):`

const speakerPrompt = `You are a supportive AI companion observing a peer conversation. Generate ONE brief message (1-2 sentences) that feels natural and helpful.

Your message should:
- First, acknowledge or validate what they're expressing (if emotional)
- Then either: ask a gentle, open question OR offer a brief insight/suggestion (vary between both styles)
- Sound conversational and warm, not robotic or clinical
- Use natural language: "It sounds like...", "I notice...", "How does it feel...", "Sometimes it helps to..."
- Keep it SHORT and genuine - like a supportive friend, not a therapist

Recent conversation (from their perspective):
%s

Brief supportive message:`

const listenerPrompt = `You are a supportive AI companion observing a peer conversation. Generate ONE brief message (1-2 sentences) that feels natural and helpful.

Your message should:
- First, acknowledge what their peer just shared (if significant)
- Then either: ask a gentle, open question OR offer a brief insight about how to respond supportively (vary between both)
- Sound conversational and warm, not robotic or clinical
- Use natural language: "Your peer seems...", "I notice...", "What might help them...", "Sometimes just listening..."
- Keep it SHORT and genuine - like a supportive friend, not a therapist

Recent conversation (from their perspective):
%s

Brief supportive message:`

// transcript renders the excerpt from one participant's point of view: their
// own messages are labeled "You", everything else "Peer".
func transcript(msgs []models.PeerMessage, viewer string) string {
	lines := lo.Map(msgs, func(m models.PeerMessage, _ int) string {
		label := "Peer"
		if m.SenderID == viewer {
			label = "You"
		}
		return label + ": " + m.Text
	})
	return strings.Join(lines, "\n")
}

// excerpt renders the raw message texts for the intensity rating call.
func excerpt(msgs []models.PeerMessage) string {
	texts := lo.Map(msgs, func(m models.PeerMessage, _ int) string {
		return m.Text
	})
	return strings.Join(texts, "\n")
}

func buildIntensityPrompt(msgs []models.PeerMessage) string {
	return fmt.Sprintf(intensityPrompt, excerpt(msgs))
}

// buildGuidancePrompt picks the template for one participant: the one who
// spoke last gets the speaker template, the other side gets the listener
// template that nudges a supportive response.
func buildGuidancePrompt(msgs []models.PeerMessage, viewer string) string {
	tmpl := listenerPrompt
	if len(msgs) > 0 && msgs[len(msgs)-1].SenderID == viewer {
		tmpl = speakerPrompt
	}
	return fmt.Sprintf(tmpl, transcript(msgs, viewer))
}
