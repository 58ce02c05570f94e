// Package catalog provides the product catalog model and the sources a search request reads it from.
package catalog

import (
	"context"
	"slices"

	"github.com/rs/zerolog"
)

// Rating holds the aggregate review data of an item
type Rating struct {
	Rate  float64 `json:"rate" yaml:"rate"`   // 0..5
	Count int     `json:"count" yaml:"count"` // number of reviews
}

// Item is a catalog product record.
// Items are values: stages copy and filter them but never mutate one in place.
type Item struct {
	ID          int     `json:"id" yaml:"id"`
	Title       string  `json:"title" yaml:"title"`
	Description string  `json:"description" yaml:"description"`
	Category    string  `json:"category" yaml:"category"`
	Price       float64 `json:"price" yaml:"price"`
	Image       string  `json:"image,omitempty" yaml:"image,omitempty"`
	Rating      Rating  `json:"rating" yaml:"rating"`
}

// Source supplies the catalog for a single request
type Source interface {
	// FetchAllItems returns every item in the catalog
	FetchAllItems(ctx context.Context) ([]Item, error)

	// FetchCategories returns the set of valid category names
	FetchCategories(ctx context.Context) ([]string, error)
}

// Snapshot is the immutable, request-private view of the catalog
type Snapshot struct {
	Items      []Item
	Categories []string

	// ItemsErr and CategoriesErr record upstream failures that were degraded to empty sets
	ItemsErr      error
	CategoriesErr error
}

// Degraded reports whether any part of the snapshot was replaced by an empty set
func (s Snapshot) Degraded() bool {
	return s.ItemsErr != nil || s.CategoriesErr != nil
}

// Fetch reads items and categories from src.
// Failures never propagate: the failed half of the snapshot is left empty and the error is recorded.
func Fetch(ctx context.Context, src Source, logger zerolog.Logger) Snapshot {
	var snap Snapshot
	if src == nil {
		snap.ItemsErr = ErrNoSource
		snap.CategoriesErr = ErrNoSource
		logger.Warn().Err(ErrNoSource).Msg("catalog fetch skipped")
		return snap
	}

	items, err := src.FetchAllItems(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to fetch catalog items, continuing with empty set")
		snap.ItemsErr = err
	} else {
		snap.Items = slices.Clone(items)
	}

	categories, err := src.FetchCategories(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to fetch categories, continuing with empty set")
		snap.CategoriesErr = err
	} else {
		snap.Categories = slices.Clone(categories)
	}

	logger.Debug().
		Int("items", len(snap.Items)).
		Int("categories", len(snap.Categories)).
		Msg("catalog snapshot fetched")

	return snap
}

// CategoriesOf returns the distinct categories of items in first-seen order
func CategoriesOf(items []Item) []string {
	seen := make(map[string]bool, len(items))
	var out []string
	for _, it := range items {
		if it.Category == "" || seen[it.Category] {
			continue
		}
		seen[it.Category] = true
		out = append(out, it.Category)
	}
	return out
}
