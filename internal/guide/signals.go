package guide

import (
	"strings"
	"unicode/utf8"

	"github.com/samber/lo"

	"nexus/backend/internal/models"
)

const (
	misunderstandingMin = 2
	shallowMeanLength   = 20
	imbalanceShare      = 0.8
	imbalanceMinTotal   = 4
)

var confusionPhrases = []string{
	"what do you mean",
	"i dont understand",
	"confused",
	"clarify",
	"explain",
	"wait what",
}

// DetectMisunderstanding fires when at least two messages in the excerpt
// contain a confusion phrase (case-insensitive substring match).
func DetectMisunderstanding(msgs []models.PeerMessage) bool {
	count := lo.CountBy(msgs, func(m models.PeerMessage) bool {
		lower := strings.ToLower(m.Text)
		return lo.SomeBy(confusionPhrases, func(p string) bool {
			return strings.Contains(lower, p)
		})
	})
	return count >= misunderstandingMin
}

// DetectShallow fires when the mean message length drops below 20 characters.
func DetectShallow(msgs []models.PeerMessage) bool {
	if len(msgs) == 0 {
		return false
	}
	total := lo.SumBy(msgs, func(m models.PeerMessage) int {
		return utf8.RuneCountInString(m.Text)
	})
	return float64(total)/float64(len(msgs)) < shallowMeanLength
}

// DetectImbalance fires when one sender holds more than 80% of the excerpt.
// With fewer than four messages there is not enough signal, so it stays off.
func DetectImbalance(msgs []models.PeerMessage) bool {
	total := len(msgs)
	if total < imbalanceMinTotal {
		return false
	}
	counts := lo.CountValuesBy(msgs, func(m models.PeerMessage) string {
		return m.SenderID
	})
	dominant := lo.Max(lo.Values(counts))
	return float64(dominant)/float64(total) > imbalanceShare
}
