package score

import (
	"strings"
	"sync"

	ahocorasick "github.com/cloudflare/ahocorasick"
)

// PhraseMatcher finds which of a fixed phrase set occur in a text in one pass.
// The underlying matcher keeps per-call state, so Match is serialized.
type PhraseMatcher struct {
	mu      sync.Mutex
	phrases []string
	matcher *ahocorasick.Matcher
}

// NewPhraseMatcher compiles the phrases (lowercased) into an automaton
func NewPhraseMatcher(phrases []string) *PhraseMatcher {
	normalized := make([]string, 0, len(phrases))
	for _, p := range phrases {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			normalized = append(normalized, p)
		}
	}
	m := &PhraseMatcher{phrases: normalized}
	if len(normalized) > 0 {
		m.matcher = ahocorasick.NewStringMatcher(normalized)
	}
	return m
}

// Match returns the set of phrases present in text (case-insensitive substring)
func (m *PhraseMatcher) Match(text string) map[string]bool {
	found := make(map[string]bool)
	if m.matcher == nil || text == "" {
		return found
	}

	normalized := NormalizeText(text)

	m.mu.Lock()
	hits := m.matcher.Match([]byte(normalized))
	m.mu.Unlock()

	for _, idx := range hits {
		if idx < len(m.phrases) {
			found[m.phrases[idx]] = true
		}
	}
	return found
}

var apostrophes = strings.NewReplacer("’", "'", "‘", "'", "ʼ", "'")

// NormalizeText lowercases text and folds typographic apostrophes
func NormalizeText(text string) string {
	return apostrophes.Replace(strings.ToLower(text))
}
