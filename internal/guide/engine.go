// Package guide implements the conversational-health monitor. It watches each
// active conversation's message stream and occasionally injects a pair of
// personalized guidance messages generated by the local model.
package guide

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"nexus/backend/internal/llm"
	"nexus/backend/internal/models"
)

const (
	windowCapacity     = 20
	recentWindow       = 6
	minMessages        = 4
	intensityThreshold = 0.7

	// DefaultCooldown is the minimum gap between interventions per
	// conversation.
	DefaultCooldown = time.Minute
)

// monitorState is the per-conversation sliding window plus intervention
// bookkeeping. It exists from match to teardown.
type monitorState struct {
	userA string
	userB string

	window           []models.PeerMessage
	lastIntervention time.Time
	inFlight         bool
}

// Result is the continuation of one asynchronous evaluation, delivered back
// into the hub's event loop. When Intervene is false the evaluation fizzled
// (signals quiet, or generation failed) and the cooldown stays put.
type Result struct {
	ConversationID string
	Intervene      bool
	ForA           string
	ForB           string
}

// Engine owns all monitor state. Its methods other than the spawned
// evaluation goroutine must only be called from the hub's event loop; the
// goroutine works on a private snapshot and reports back via Results.
type Engine struct {
	Gen      llm.Generator
	Cooldown time.Duration

	log     zerolog.Logger
	states  map[string]*monitorState
	results chan Result
}

func NewEngine(gen llm.Generator, log zerolog.Logger) *Engine {
	return &Engine{
		Gen:      gen,
		Cooldown: DefaultCooldown,
		log:      log.With().Str("component", "guide").Logger(),
		states:   make(map[string]*monitorState),
		results:  make(chan Result, 16),
	}
}

// Results is the continuation channel the hub's loop selects on.
func (e *Engine) Results() <-chan Result {
	return e.results
}

// StartMonitoring begins observing a conversation. The cooldown clock starts
// now, so the first minute of a conversation is never interrupted.
func (e *Engine) StartMonitoring(conversationID, userA, userB string) {
	e.states[conversationID] = &monitorState{
		userA:            userA,
		userB:            userB,
		lastIntervention: time.Now(),
	}
	e.log.Debug().Str("conversation_id", conversationID).Msg("monitoring started")
}

// StopMonitoring drops all state for a conversation. A late evaluation
// result for it will be discarded by the hub.
func (e *Engine) StopMonitoring(conversationID string) {
	delete(e.states, conversationID)
}

// Observe appends a relayed message to the conversation's sliding window,
// evicting the oldest entry past capacity. No-op for unmonitored
// conversations.
func (e *Engine) Observe(conversationID, senderID, text string) {
	st, ok := e.states[conversationID]
	if !ok {
		return
	}
	st.window = append(st.window, models.PeerMessage{
		SenderID:  senderID,
		Text:      text,
		Timestamp: time.Now(),
	})
	if len(st.window) > windowCapacity {
		st.window = st.window[len(st.window)-windowCapacity:]
	}
}

// Evaluate checks the cheap gates synchronously and, when they clear, spawns
// one evaluation goroutine for the conversation. The cooldown gate runs
// before anything that could cost a generation call.
func (e *Engine) Evaluate(conversationID string) {
	st, ok := e.states[conversationID]
	if !ok || st.inFlight {
		return
	}
	if time.Since(st.lastIntervention) < e.Cooldown {
		return
	}
	if len(st.window) < minMessages {
		return
	}

	recent := make([]models.PeerMessage, 0, recentWindow)
	start := len(st.window) - recentWindow
	if start < 0 {
		start = 0
	}
	recent = append(recent, st.window[start:]...)

	st.inFlight = true
	go e.run(conversationID, st.userA, st.userB, recent)
}

// Complete folds an evaluation result back into the engine's state: the
// in-flight guard clears, and a successful intervention advances the
// cooldown. Safe to call after StopMonitoring.
func (e *Engine) Complete(res Result) {
	st, ok := e.states[res.ConversationID]
	if !ok {
		return
	}
	st.inFlight = false
	if res.Intervene {
		st.lastIntervention = time.Now()
	}
}

// run performs the generation-backed part of an evaluation on a snapshot of
// the recent window. It always posts exactly one Result.
func (e *Engine) run(conversationID, userA, userB string, recent []models.PeerMessage) {
	res := Result{ConversationID: conversationID}
	defer func() { e.results <- res }()

	if !e.shouldIntervene(recent) {
		return
	}

	ctx := context.Background()
	forA, err := e.Gen.Generate(ctx, buildGuidancePrompt(recent, userA))
	if err != nil {
		e.log.Warn().Err(err).Str("conversation_id", conversationID).Msg("guidance generation failed")
		return
	}
	forB, err := e.Gen.Generate(ctx, buildGuidancePrompt(recent, userB))
	if err != nil {
		// All-or-nothing: a half pair is never delivered.
		e.log.Warn().Err(err).Str("conversation_id", conversationID).Msg("guidance generation failed")
		return
	}

	res.Intervene = true
	res.ForA = strings.TrimSpace(forA)
	res.ForB = strings.TrimSpace(forB)
}

// shouldIntervene ORs the four signals. The three local detectors run first
// so a hit skips the generation-backed intensity rating.
func (e *Engine) shouldIntervene(recent []models.PeerMessage) bool {
	if DetectMisunderstanding(recent) || DetectShallow(recent) || DetectImbalance(recent) {
		return true
	}
	return e.detectEmotionalIntensity(recent)
}

// detectEmotionalIntensity asks the model to rate the excerpt 0.0-1.0. Any
// failure, including a non-numeric reply, reads as "signal off".
func (e *Engine) detectEmotionalIntensity(recent []models.PeerMessage) bool {
	out, err := e.Gen.Generate(context.Background(), buildIntensityPrompt(recent))
	if err != nil {
		e.log.Warn().Err(err).Msg("intensity rating failed")
		return false
	}
	intensity, err := strconv.ParseFloat(strings.TrimSpace(out), 64)
	if err != nil {
		return false
	}
	return intensity > intensityThreshold
}
