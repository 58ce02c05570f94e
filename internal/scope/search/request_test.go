package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsjohal14/shopsearch/internal/scope/query"
)

func TestRequestIsClassified(t *testing.T) {
	tests := []struct {
		name string
		req  Request
		want bool
	}{
		{"raw query", Request{Query: "red jacket"}, false},
		{"limit alone", Request{Query: "red jacket", Constraints: &Constraints{Limit: 5}}, false},
		{"intent", Request{Intent: IntentGeneralChat}, true},
		{"category", Request{Category: "electronics"}, true},
		{"product items", Request{ProductItems: []string{"ssd"}}, true},
		{"gift", Request{Constraints: &Constraints{Gift: true}}, true},
		{"rating", Request{Constraints: &Constraints{Rating: floatPtr(4)}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.req.IsClassified())
		})
	}
}

func TestRequestFlagsDefaultOn(t *testing.T) {
	var r Request
	assert.True(t, r.FallbackEnabled())
	assert.True(t, r.BackupSearchEnabled())
	assert.False(t, r.GiftMode())
	assert.Equal(t, 0, r.Limit())

	r = Request{Fallback: boolPtr(false), BackupSearch: boolPtr(false), Constraints: &Constraints{Occasion: " anniversary "}}
	assert.False(t, r.FallbackEnabled())
	assert.False(t, r.BackupSearchEnabled())
	assert.True(t, r.GiftMode())
}

func TestRequestWithParsed(t *testing.T) {
	p := query.NewParser(storeCategories, query.WithBrands([]string{"SanDisk"}))
	parsed := p.Parse("cheapest SanDisk 1TB drive under 120 in black")

	req := Request{Query: parsed.Query, Constraints: &Constraints{Limit: 3}}.withParsed(parsed)

	assert.Equal(t, string(query.IntentSearchProducts), req.Intent)
	assert.Equal(t, []string{"electronics"}, req.Categories)
	assert.Contains(t, req.ProductItems, "drive")
	assert.Equal(t, []string{"SanDisk", "black", "1TB"}, req.Variants)
	require.NotNil(t, req.Constraints.Price)
	assert.Equal(t, 120.0, *req.Constraints.Price.Max)
	assert.Equal(t, 3, req.Constraints.Limit)
	assert.Equal(t, SortPriceLow, req.Sort)

	explicit := Request{Sort: SortRating}.withParsed(parsed)
	assert.Equal(t, SortRating, explicit.Sort)
}

func TestSearchPhrase(t *testing.T) {
	tests := []struct {
		name   string
		items  []string
		raw    string
		phrase string
		ok     bool
	}{
		{"product items win", []string{"jacket"}, "red jacket please", "jacket", true},
		{"category tokens stripped", []string{"women's", "dress"}, "", "dress", true},
		{"all stripped skips", []string{"electronics"}, "electronics deals", "", false},
		{"raw query", nil, " hard drive ", "hard drive", true},
		{"generic", nil, "items", "items", false},
		{"empty", nil, "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			phrase, ok := searchPhrase(tt.items, tt.raw, storeCategories)
			assert.Equal(t, tt.phrase, phrase)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestSignificantWords(t *testing.T) {
	assert.Equal(t, []string{"red", "jacket"}, significantWords("a Red JACKET to go"))
	assert.Empty(t, significantWords("a to"))
	assert.Equal(t, []string{"under"}, significantWords("under £4"))
	assert.Equal(t, []string{"été"}, significantWords("été ok"))
}
