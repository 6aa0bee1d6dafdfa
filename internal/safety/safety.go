// Package safety implements the crisis gate: a stateless keyword scan run on
// every inbound message. It never blocks the relay path; a hit only causes a
// resource disclosure to the sender.
package safety

import (
	"fmt"
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
)

// crisisPatterns contains self-harm and suicide related phrases. They are
// matched against normalized text, so punctuation and spacing variants
// ("self-harm", "self harm") collapse to the same pattern.
var crisisPatterns = []string{
	"suicid",
	"kill myself",
	"end my life",
	"self harm",
	"want to die",
	"better off dead",
}

// Gate scans single messages for crisis language using an Aho-Corasick
// automaton built once at startup.
type Gate struct {
	machine *goahocorasick.Machine
}

// NewGate builds the automaton over the normalized crisis pattern list.
func NewGate() (*Gate, error) {
	patterns := make([][]rune, len(crisisPatterns))
	for i, p := range crisisPatterns {
		patterns[i] = normalize(p)
	}

	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return nil, fmt.Errorf("safety: building crisis automaton: %w", err)
	}
	return &Gate{machine: m}, nil
}

// Detect reports whether the message contains crisis language. It is a pure
// predicate over a single message; callers decide what to do with a hit.
func (g *Gate) Detect(message string) bool {
	norm := normalize(message)
	if len(norm) == 0 {
		return false
	}
	return len(g.machine.MultiPatternSearch(norm, true)) > 0
}

// normalize lowercases and strips everything but letters and digits so the
// scan is insensitive to casing, spacing and punctuation.
func normalize(s string) []rune {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			out = append(out, unicode.ToLower(r))
		}
	}
	return out
}
