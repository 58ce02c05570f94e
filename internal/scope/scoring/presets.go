package scoring

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// Preset names
const (
	PresetDefault       = "default"
	PresetBudget        = "budget"
	PresetPremium       = "premium"
	PresetSearchResults = "search_results"
	PresetGift          = "gift"
	PresetPopular       = "popular"
)

// Presets maps a preset name to its criteria
type Presets map[string]Criteria

// ErrInvalidPreset is returned when a loaded preset has a negative weight or unknown price preference
var ErrInvalidPreset = errors.New("invalid scoring preset")

// DefaultPresets returns a fresh copy of the built-in presets
func DefaultPresets() Presets {
	return Presets{
		PresetDefault: {
			Price: 0.15, Rating: 0.25, ReviewCount: 0.15, Popularity: 0.2, Availability: 0.05, Relevance: 0.2,
			PricePreference: PreferBalanced,
		},
		PresetBudget: {
			Price: 0.4, Rating: 0.2, ReviewCount: 0.1, Popularity: 0.2, Availability: 0.1, Relevance: 0,
			PricePreference: PreferLow,
		},
		PresetPremium: {
			Price: 0.2, Rating: 0.35, ReviewCount: 0.15, Popularity: 0.2, Availability: 0.1, Relevance: 0,
			PricePreference: PreferHigh,
		},
		PresetSearchResults: {
			Price: 0.1, Rating: 0.25, ReviewCount: 0.15, Popularity: 0.15, Availability: 0.1, Relevance: 0.25,
			PricePreference: PreferBalanced,
		},
		PresetGift: {
			Price: 0.1, Rating: 0.35, ReviewCount: 0.2, Popularity: 0.25, Availability: 0.1, Relevance: 0,
			PricePreference: PreferBalanced,
		},
		PresetPopular: {
			Price: 0.05, Rating: 0.2, ReviewCount: 0.3, Popularity: 0.35, Availability: 0.1, Relevance: 0,
			PricePreference: PreferBalanced,
		},
	}
}

// LoadPresets reads YAML preset overrides and merges them over the built-in presets.
//
//	budget:
//	  price: 0.5
//	  rating: 0.2
//	  price_preference: low
func LoadPresets(r io.Reader) (Presets, error) {
	var overrides Presets
	if err := yaml.NewDecoder(r).Decode(&overrides); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode presets: %w", err)
	}

	presets := DefaultPresets()
	for name, c := range overrides {
		if err := c.validate(); err != nil {
			return nil, fmt.Errorf("preset %q: %w", name, err)
		}
		if c.PricePreference == "" {
			c.PricePreference = PreferBalanced
		}
		presets[name] = c
	}
	return presets, nil
}

// LoadPresetsFile reads preset overrides from path; an empty path yields the built-in presets
func LoadPresetsFile(path string) (Presets, error) {
	if path == "" {
		return DefaultPresets(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open presets file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return LoadPresets(f)
}

// Names returns the configured preset names in sorted order
func (p Presets) Names() []string {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (c Criteria) validate() error {
	for _, w := range []float64{c.Price, c.Rating, c.ReviewCount, c.Popularity, c.Availability, c.Relevance} {
		if w < 0 {
			return fmt.Errorf("%w: negative weight %v", ErrInvalidPreset, w)
		}
	}
	switch c.PricePreference {
	case "", PreferLow, PreferHigh, PreferBalanced:
		return nil
	default:
		return fmt.Errorf("%w: unknown price preference %q", ErrInvalidPreset, c.PricePreference)
	}
}
