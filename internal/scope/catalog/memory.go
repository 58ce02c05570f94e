package catalog

import (
	"context"
	"slices"
	"sort"
	"sync"
)

// MemorySource is a thread-safe in-memory catalog.
// Every fetch returns a fresh copy so callers never share a backing array.
type MemorySource struct {
	mu         sync.RWMutex
	items      map[int]Item
	categories []string // explicit category set, derived from items when empty
}

// NewMemorySource creates a source holding the given items
func NewMemorySource(items []Item) *MemorySource {
	m := &MemorySource{
		items: make(map[int]Item, len(items)),
	}
	for _, it := range items {
		m.items[it.ID] = it
	}
	return m
}

// SetCategories overrides the category set reported by FetchCategories
func (m *MemorySource) SetCategories(categories []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.categories = slices.Clone(categories)
}

// Count returns the number of items
func (m *MemorySource) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

// All returns all items ordered by ID
func (m *MemorySource) All() []Item {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]Item, 0, len(m.items))
	for _, it := range m.items {
		result = append(result, it)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result
}

// FetchAllItems implements Source
func (m *MemorySource) FetchAllItems(ctx context.Context) ([]Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return m.All(), nil
}

// FetchCategories implements Source
func (m *MemorySource) FetchCategories(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	explicit := slices.Clone(m.categories)
	m.mu.RUnlock()

	if len(explicit) > 0 {
		return explicit, nil
	}
	return CategoriesOf(m.All()), nil
}
