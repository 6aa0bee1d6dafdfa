package peerhub

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"nexus/backend/internal/models"
)

// MatcherService keeps one FIFO waiting queue per mood category. It holds no
// goroutine of its own: the hub's event loop calls it synchronously, which
// makes the find-or-enqueue step atomic with respect to every other event.
type MatcherService struct {
	Log zerolog.Logger

	// Queues maps each mood to its waiting entries, earliest first.
	Queues map[models.Mood][]models.WaitingEntry
}

func NewMatcherService(log zerolog.Logger) *MatcherService {
	queues := make(map[models.Mood][]models.WaitingEntry, len(models.Moods()))
	for _, mood := range models.Moods() {
		queues[mood] = nil
	}
	return &MatcherService{
		Log:    log.With().Str("component", "matcher").Logger(),
		Queues: queues,
	}
}

// FindOrEnqueue pairs the requester with the earliest waiting participant in
// the same mood queue whose ID differs, removing that entry. When nobody
// suitable waits, the requester is appended to the tail instead. An entry
// belonging to the requester itself is skipped, never matched.
func (m *MatcherService) FindOrEnqueue(connID string, mood models.Mood, now time.Time) (string, bool) {
	queue := m.Queues[mood]
	for i, entry := range queue {
		if entry.ConnID == connID {
			continue
		}
		m.Queues[mood] = append(queue[:i], queue[i+1:]...)
		return entry.ConnID, true
	}

	m.Queues[mood] = append(queue, models.WaitingEntry{
		ConnID:     connID,
		Mood:       mood,
		EnqueuedAt: now,
	})
	return "", false
}

// Cancel removes the participant's entry from whichever queue holds it.
// No-op (false) when the participant is not waiting.
func (m *MatcherService) Cancel(connID string) bool {
	for mood, queue := range m.Queues {
		kept := lo.Reject(queue, func(e models.WaitingEntry, _ int) bool {
			return e.ConnID == connID
		})
		if len(kept) != len(queue) {
			m.Queues[mood] = kept
			return true
		}
	}
	return false
}

// Waiting reports whether the participant currently holds a queue entry.
func (m *MatcherService) Waiting(connID string) bool {
	for _, queue := range m.Queues {
		if lo.SomeBy(queue, func(e models.WaitingEntry) bool { return e.ConnID == connID }) {
			return true
		}
	}
	return false
}

// Sweep drops entries whose connection is no longer live. It guards against
// entries orphaned by ungraceful disconnects that never surfaced as events.
func (m *MatcherService) Sweep(alive func(connID string) bool) int {
	removed := 0
	for mood, queue := range m.Queues {
		kept := lo.Filter(queue, func(e models.WaitingEntry, _ int) bool {
			return alive(e.ConnID)
		})
		removed += len(queue) - len(kept)
		m.Queues[mood] = kept
	}
	if removed > 0 {
		m.Log.Debug().Int("removed", removed).Msg("swept stale waiting entries")
	}
	return removed
}
