package exchange

import (
	"strings"

	"github.com/ccollicutt/qsolog/pkg/config"
)

// Message is the tokenized form of a log line's free text.
type Message struct {
	Text   string
	Tokens []string

	// ContainsOwnCall is true when the own call sign appears anywhere in Text.
	ContainsOwnCall bool

	// IsCompletion is true when Text carries a completion marker.
	IsCompletion bool
}

// First returns the first token or "".
func (m *Message) First() string { return m.token(0) }

// Second returns the second token or "".
func (m *Message) Second() string { return m.token(1) }

// Third returns the third token or "".
func (m *Message) Third() string { return m.token(2) }

// Rest returns the tokens after the second.
func (m *Message) Rest() []string {
	if len(m.Tokens) <= 2 {
		return nil
	}
	return m.Tokens[2:]
}

func (m *Message) token(i int) string {
	if i < len(m.Tokens) {
		return m.Tokens[i]
	}
	return ""
}

// CompletionMatcher detects sign-off markers.
type CompletionMatcher struct {
	markers []string
	set     map[string]bool
	mode    config.MatchMode
}

// NewCompletionMatcher builds a matcher from the completion config.
func NewCompletionMatcher(cfg config.CompletionConfig) *CompletionMatcher {
	m := &CompletionMatcher{
		markers: cfg.Markers,
		set:     make(map[string]bool, len(cfg.Markers)),
		mode:    cfg.Match,
	}
	for _, marker := range cfg.Markers {
		m.set[marker] = true
	}
	return m
}

// IsMarker reports whether a single token is a completion marker.
func (m *CompletionMatcher) IsMarker(token string) bool {
	return m.set[token]
}

// Match reports whether a message signals completion.
// Matching is case-sensitive in both modes.
func (m *CompletionMatcher) Match(text string, tokens []string) bool {
	if m.mode == config.MatchSubstring {
		for _, marker := range m.markers {
			if strings.Contains(text, marker) {
				return true
			}
		}
		return false
	}

	for _, tok := range tokens {
		if m.set[tok] {
			return true
		}
	}
	return false
}

// ParseMessage tokenizes text on whitespace and classifies it.
func ParseMessage(text, ownCall string, completion *CompletionMatcher) *Message {
	tokens := strings.Fields(text)
	return &Message{
		Text:            text,
		Tokens:          tokens,
		ContainsOwnCall: ownCall != "" && strings.Contains(text, ownCall),
		IsCompletion:    completion.Match(text, tokens),
	}
}

// isSignalReport reports whether a token is a signed dB report such as -15 or +03.
func isSignalReport(token string) bool {
	return strings.HasPrefix(token, "+") || strings.HasPrefix(token, "-")
}
