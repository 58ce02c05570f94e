package intent

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchAddToCart(t *testing.T) {
	m := NewMatcher()

	got := m.Match("please add to cart", true)
	require.Len(t, got, 1)
	assert.Equal(t, CartAdd, got[0].Handler)
	assert.Equal(t, "add to cart", got[0].MatchedPattern)
	assert.GreaterOrEqual(t, got[0].Confidence, 80)
	assert.True(t, got[0].RequiresItems)

	res := m.Apply(nil, "please add to cart", true)
	assert.Equal(t, []string{CartAdd}, res.Handlers)
	assert.True(t, res.AppliedFallback)
	assert.Equal(t, got, res.FallbackMatches)
}

func TestMatchSkipsPatternsNeedingItems(t *testing.T) {
	m := NewMatcher()

	assert.Empty(t, m.Match("please add to cart", false))

	res := m.Apply(nil, "please add to cart", false)
	assert.Empty(t, res.Handlers)
	assert.False(t, res.AppliedFallback)
}

func TestMatchConfidence(t *testing.T) {
	m := NewMatcher()

	tests := []struct {
		name    string
		query   string
		handler string
		want    int
	}{
		{"capped at start of query", "Add to cart!", CartAdd, 95},
		{"short phrase at start", "login", AuthLogin, 90},
		{"first half bonus", "i want to see my orders please", OrdersView, 90},
		{"no position bonus", "could you please show me everything in my orders", OrdersView, 85},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := m.Match(tt.query, true)
			require.NotEmpty(t, got)
			assert.Equal(t, tt.handler, got[0].Handler)
			assert.Equal(t, tt.want, got[0].Confidence)
		})
	}
}

func TestMatchKeepsFirstPhrasePerHandler(t *testing.T) {
	m := NewMatcher()

	got := m.Match("buy this, add to cart", true)
	require.Len(t, got, 1)
	assert.Equal(t, "add to cart", got[0].MatchedPattern)

	got = m.Match("add it to my cart", true)
	require.Len(t, got, 1)
	assert.Equal(t, "add it to my cart", got[0].MatchedPattern)
}

func TestMatchSortsByConfidence(t *testing.T) {
	got := NewMatcher().Match("checkout and then log out", false)
	require.Len(t, got, 2)
	assert.Equal(t, CheckoutStart, got[0].Handler)
	assert.Equal(t, 95, got[0].Confidence)
	assert.Equal(t, AuthLogout, got[1].Handler)
	assert.Equal(t, 85, got[1].Confidence)
}

func TestConfidenceNeverExceedsCap(t *testing.T) {
	m := NewMatcher()
	prefixes := []string{"", "please ", "could you kindly go ahead and "}
	suffixes := []string{"", " now", " right away thanks a lot for the help"}

	for _, p := range DefaultPatterns() {
		for _, phrase := range p.Phrases {
			for _, pre := range prefixes {
				for _, suf := range suffixes {
					for _, match := range m.Match(pre+phrase+suf, true) {
						assert.GreaterOrEqual(t, match.Confidence, 0)
						assert.LessOrEqual(t, match.Confidence, MaxConfidence)
					}
				}
			}
		}
	}
}

func TestApplyDedupesAndRespectsThreshold(t *testing.T) {
	m := NewMatcher()

	res := m.Apply([]string{CartAdd, CartAdd, " "}, "add to cart", true)
	assert.Equal(t, []string{CartAdd}, res.Handlers)
	assert.False(t, res.AppliedFallback)
	assert.Len(t, res.FallbackMatches, 1)

	strict := NewMatcher(WithThreshold(90))
	res = strict.Apply([]string{CartView}, "could you please show me everything in my orders", true)
	assert.Equal(t, []string{CartView}, res.Handlers)
	assert.False(t, res.AppliedFallback)
	require.Len(t, res.FallbackMatches, 1)
	assert.Equal(t, OrdersView, res.FallbackMatches[0].Handler)

	assert.Equal(t, MaxConfidence, NewMatcher(WithThreshold(500)).Threshold())
	assert.Equal(t, 0, NewMatcher(WithThreshold(-3)).Threshold())
}

func TestWithPatterns(t *testing.T) {
	m := NewMatcher(WithPatterns([]ActionPattern{
		{Handler: "compare.open", Priority: 10, Phrases: []string{"Compare These", "  "}},
		{Handler: "help.open", Priority: 50, Phrases: []string{"help"}},
	}))

	got := m.Match("help me compare these", false)
	require.Len(t, got, 2)
	assert.Equal(t, "compare these", got[0].MatchedPattern)
	assert.Equal(t, 95, got[0].Confidence)
	assert.Equal(t, "help.open", got[1].Handler)
	assert.Equal(t, 90, got[1].Confidence)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "add to cart", Normalize("  Add-to-CART!!! "))
	assert.Equal(t, "i'll take it", Normalize("I’ll take it."))
	assert.Equal(t, "", Normalize("?!"))
	assert.True(t, strings.Contains(Normalize("What's in my cart?"), "what's in my cart"))
}
