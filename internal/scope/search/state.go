package search

import (
	"errors"
	"slices"

	"github.com/dsjohal14/shopsearch/internal/scope/catalog"
	"github.com/dsjohal14/shopsearch/internal/scope/query"
	"github.com/dsjohal14/shopsearch/internal/scope/scoring"
)

var (
	// ErrInvalidRequest is returned before stage 1 when the request is malformed
	ErrInvalidRequest = errors.New("invalid search request")

	// ErrStageFailed is returned when a stage errors or panics; the run is aborted
	ErrStageFailed = errors.New("pipeline stage failed")
)

// GiftQualityFloor is the minimum rating applied in gift mode
const GiftQualityFloor = 3.5

// AppliedConstraints records the constraint filters that took effect
type AppliedConstraints struct {
	PriceMin         *float64 `json:"priceMin,omitempty"`
	PriceMax         *float64 `json:"priceMax,omitempty"`
	RatingMin        *float64 `json:"ratingMin,omitempty"`
	GiftQualityFloor *float64 `json:"giftQualityFloor,omitempty"`
}

// AppliedFilters records what each stage actually applied
type AppliedFilters struct {
	Categories   []string           `json:"categories"`
	Constraints  AppliedConstraints `json:"constraints"`
	SearchQuery  string             `json:"searchQuery"`
	Variants     []string           `json:"variants"`
	Sort         string             `json:"sort,omitempty"`
	Preset       string             `json:"preset,omitempty"`
	Limit        int                `json:"limit,omitempty"`
	FallbackUsed bool               `json:"fallbackUsed"`
}

// Metadata holds the run's feature flags and the ordered stage trace
type Metadata struct {
	Steps               []string `json:"steps"`
	GiftMode            bool     `json:"giftMode"`
	FallbackEnabled     bool     `json:"fallbackEnabled"`
	BackupSearchEnabled bool     `json:"backupSearchEnabled"`
}

// State is the request-scoped search context threaded through the stages.
// Stages receive it by value and return a new one; item slices are never modified in place.
type State struct {
	OriginalQuery string
	Request       Request
	Parsed        *query.ParsedQuery

	AllItems      []catalog.Item
	BackupItems   []catalog.Item
	CurrentItems  []catalog.Item
	AllCategories []string
	Degraded      bool

	Filters  AppliedFilters
	Metadata Metadata

	Ranked     []scoring.Scored
	Results    []scoring.Scored
	TotalFound int
	UIHandlers []string
}

// Snapshot is a saved working set that a stage can restore
type Snapshot struct {
	items []catalog.Item
}

// Len returns the number of saved items
func (s Snapshot) Len() int {
	return len(s.items)
}

// Snapshot captures the current working set
func (s State) Snapshot() Snapshot {
	return Snapshot{items: slices.Clone(s.CurrentItems)}
}

// Restore reinstates a saved working set and marks the run as having used fallback
func (s State) Restore(snap Snapshot) State {
	s.CurrentItems = slices.Clone(snap.items)
	s.Filters.FallbackUsed = true
	return s
}
