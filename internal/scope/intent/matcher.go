// Package intent recovers UI actions from raw query text when the classifier misses them.
package intent

import (
	"sort"
	"strings"
	"unicode"
)

// DefaultThreshold is the minimum confidence for a match to be merged
const DefaultThreshold = 70

// MaxConfidence caps every match; a keyword hit is never treated as certain
const MaxConfidence = 95

const (
	baseConfidence  = 60
	substringBonus  = 20
	startBonus      = 10
	firstHalfBonus  = 5
	longPhraseBonus = 10
	midPhraseBonus  = 5
)

// ActionMatch is a handler recovered from the query
type ActionMatch struct {
	Handler        string `json:"handler"`
	Confidence     int    `json:"confidence"`
	MatchedPattern string `json:"matchedPattern"`
	RequiresItems  bool   `json:"requiresItems"`
}

// FallbackResult is the merge of classifier handlers with matcher output
type FallbackResult struct {
	Handlers        []string      `json:"handlers"`
	AppliedFallback bool          `json:"appliedFallback"`
	FallbackMatches []ActionMatch `json:"fallbackMatches"`
}

// Matcher is a priority-ordered keyword matcher.
// It is read-only after construction and safe for concurrent use.
type Matcher struct {
	patterns  []ActionPattern
	threshold int
}

// Option configures a Matcher
type Option func(*Matcher)

// WithThreshold sets the merge threshold; values outside [0,MaxConfidence] are clamped
func WithThreshold(threshold int) Option {
	return func(m *Matcher) {
		m.threshold = min(max(threshold, 0), MaxConfidence)
	}
}

// WithPatterns replaces the built-in action table
func WithPatterns(patterns []ActionPattern) Option {
	return func(m *Matcher) {
		m.patterns = patterns
	}
}

// NewMatcher creates a matcher over DefaultPatterns unless overridden
func NewMatcher(opts ...Option) *Matcher {
	m := &Matcher{patterns: DefaultPatterns(), threshold: DefaultThreshold}
	for _, opt := range opts {
		opt(m)
	}

	sorted := make([]ActionPattern, len(m.patterns))
	for i, p := range m.patterns {
		phrases := make([]string, 0, len(p.Phrases))
		for _, ph := range p.Phrases {
			if ph = Normalize(ph); ph != "" {
				phrases = append(phrases, ph)
			}
		}
		p.Phrases = phrases
		sorted[i] = p
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority > sorted[j].Priority
	})
	m.patterns = sorted
	return m
}

// Threshold returns the merge threshold
func (m *Matcher) Threshold() int {
	return m.threshold
}

// Match returns at most one match per handler, sorted by confidence descending.
// Patterns that require items are skipped when hasItems is false.
func (m *Matcher) Match(query string, hasItems bool) []ActionMatch {
	q := Normalize(query)
	matches := []ActionMatch{}
	if q == "" {
		return matches
	}

	for _, p := range m.patterns {
		if p.RequiresItems && !hasItems {
			continue
		}
		for _, phrase := range p.Phrases {
			idx := strings.Index(q, phrase)
			if idx < 0 {
				continue
			}
			matches = append(matches, ActionMatch{
				Handler:        p.Handler,
				Confidence:     confidence(p.Priority, phrase, idx, len(q)),
				MatchedPattern: phrase,
				RequiresItems:  p.RequiresItems,
			})
			break
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Confidence > matches[j].Confidence
	})
	return matches
}

// Apply unions the classifier's handlers with matches at or above the threshold.
// AppliedFallback reports whether any handler was added.
func (m *Matcher) Apply(classifierHandlers []string, rawQuery string, hasItems bool) FallbackResult {
	res := FallbackResult{Handlers: []string{}}
	seen := map[string]bool{}
	for _, h := range classifierHandlers {
		h = strings.TrimSpace(h)
		if h == "" || seen[h] {
			continue
		}
		seen[h] = true
		res.Handlers = append(res.Handlers, h)
	}

	res.FallbackMatches = m.Match(rawQuery, hasItems)
	for _, match := range res.FallbackMatches {
		if match.Confidence < m.threshold || seen[match.Handler] {
			continue
		}
		seen[match.Handler] = true
		res.Handlers = append(res.Handlers, match.Handler)
		res.AppliedFallback = true
	}
	return res
}

func confidence(priority int, phrase string, idx, queryLen int) int {
	c := baseConfidence + substringBonus

	switch {
	case priority >= 100:
		c += 15
	case priority >= 90:
		c += 10
	case priority >= 80:
		c += 5
	}

	switch {
	case len(phrase) > 10:
		c += longPhraseBonus
	case len(phrase) > 6:
		c += midPhraseBonus
	}

	switch {
	case idx == 0:
		c += startBonus
	case idx < queryLen/2:
		c += firstHalfBonus
	}

	return min(c, MaxConfidence)
}

// Normalize lowercases s, turns punctuation other than apostrophes into spaces and collapses whitespace
func Normalize(s string) string {
	mapped := strings.Map(func(r rune) rune {
		switch {
		case r == '\'' || r == '’':
			return '\''
		case unicode.IsLetter(r), unicode.IsDigit(r):
			return unicode.ToLower(r)
		default:
			return ' '
		}
	}, s)
	return strings.Join(strings.Fields(mapped), " ")
}
