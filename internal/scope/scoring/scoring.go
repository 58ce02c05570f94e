// Package scoring ranks catalog items with a weighted multi-factor model.
package scoring

import (
	"math"
	"sort"
	"strings"

	"github.com/dsjohal14/shopsearch/internal/scope/catalog"
)

// PricePreference controls how the price sub-score is oriented
type PricePreference string

const (
	PreferLow      PricePreference = "low"
	PreferHigh     PricePreference = "high"
	PreferBalanced PricePreference = "balanced"
)

// Criteria weights the six scoring factors.
// Weights need not sum to 1; the total score is clamped to [0,1].
type Criteria struct {
	Price           float64         `json:"price" yaml:"price"`
	Rating          float64         `json:"rating" yaml:"rating"`
	ReviewCount     float64         `json:"reviewCount" yaml:"review_count"`
	Popularity      float64         `json:"popularity" yaml:"popularity"`
	Availability    float64         `json:"availability" yaml:"availability"`
	Relevance       float64         `json:"relevance" yaml:"relevance"`
	PricePreference PricePreference `json:"pricePreference" yaml:"price_preference"`
}

// Context carries the candidate-set statistics and request signals a score depends on
type Context struct {
	MinPrice    float64
	MaxPrice    float64
	AvgPrice    float64
	Budget      *float64
	SearchQuery string
}

// NewContext computes price statistics over the current candidate set
func NewContext(items []catalog.Item, budget *float64, searchQuery string) Context {
	ctx := Context{Budget: budget, SearchQuery: strings.TrimSpace(searchQuery)}
	if len(items) == 0 {
		return ctx
	}

	ctx.MinPrice = items[0].Price
	ctx.MaxPrice = items[0].Price
	var sum float64
	for _, it := range items {
		ctx.MinPrice = math.Min(ctx.MinPrice, it.Price)
		ctx.MaxPrice = math.Max(ctx.MaxPrice, it.Price)
		sum += it.Price
	}
	ctx.AvgPrice = sum / float64(len(items))
	return ctx
}

// Breakdown holds the six sub-scores of an item, each in [0,1]
type Breakdown struct {
	Price        float64 `json:"price"`
	Rating       float64 `json:"rating"`
	ReviewCount  float64 `json:"reviewCount"`
	Popularity   float64 `json:"popularity"`
	Availability float64 `json:"availability"`
	Relevance    float64 `json:"relevance"`
}

// Scored pairs an item with its total score
type Scored struct {
	catalog.Item
	Score float64 `json:"score"`
}

// Engine scores and ranks items.
// It holds no per-request state and is safe for concurrent use.
type Engine struct {
	presets Presets
}

// NewEngine creates an engine with the given presets; nil uses DefaultPresets
func NewEngine(presets Presets) *Engine {
	if presets == nil {
		presets = DefaultPresets()
	}
	return &Engine{presets: presets}
}

// Preset returns the named criteria, falling back to the default preset
func (e *Engine) Preset(name string) Criteria {
	if c, ok := e.presets[name]; ok {
		return c
	}
	return e.presets[PresetDefault]
}

// Score returns the weighted total for item, clamped to [0,1]
func (e *Engine) Score(item catalog.Item, c Criteria, ctx Context) float64 {
	b := e.Breakdown(item, c, ctx)
	total := c.Price*b.Price +
		c.Rating*b.Rating +
		c.ReviewCount*b.ReviewCount +
		c.Popularity*b.Popularity +
		c.Availability*b.Availability +
		c.Relevance*b.Relevance
	return clamp01(total)
}

// Breakdown returns the unweighted sub-scores for item
func (e *Engine) Breakdown(item catalog.Item, c Criteria, ctx Context) Breakdown {
	return Breakdown{
		Price:        priceScore(item.Price, c.PricePreference, ctx),
		Rating:       ratingScore(item.Rating.Rate),
		ReviewCount:  reviewCountScore(item.Rating.Count),
		Popularity:   popularityScore(item.Rating),
		Availability: 1.0, // every catalog item is treated as available
		Relevance:    relevanceScore(item, ctx.SearchQuery),
	}
}

// Rank scores every item and stable-sorts by descending score.
// Items with equal scores keep their input order.
func (e *Engine) Rank(items []catalog.Item, c Criteria, ctx Context) []Scored {
	out := make([]Scored, len(items))
	for i, it := range items {
		out[i] = Scored{Item: it, Score: e.Score(it, c, ctx)}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}

func priceScore(price float64, pref PricePreference, ctx Context) float64 {
	if ctx.Budget != nil && price > *ctx.Budget {
		return 0.1
	}

	rng := ctx.MaxPrice - ctx.MinPrice
	if rng <= 0 {
		// all candidates cost the same
		return 1.0
	}
	normalized := clamp01((price - ctx.MinPrice) / rng)

	switch pref {
	case PreferLow:
		return 1 - normalized
	case PreferHigh:
		return normalized
	default:
		return clamp01(1 - math.Abs(price-ctx.AvgPrice)/rng)
	}
}

func ratingScore(rate float64) float64 {
	return clamp01(rate / 5)
}

var logReviewCeiling = math.Log(1001)

func reviewCountScore(count int) float64 {
	if count <= 0 {
		return 0
	}
	if count >= 1000 {
		return 1
	}
	return clamp01(math.Log(float64(count)+1) / logReviewCeiling)
}

const (
	neutralRate     = 2.5
	popularityPrior = 10.0
)

// popularityScore blends the rating with a neutral prior, trusting the rating more as reviews accumulate
func popularityScore(r catalog.Rating) float64 {
	count := math.Max(0, float64(r.Count))
	confidence := count / (count + popularityPrior)
	blended := confidence*r.Rate + (1-confidence)*neutralRate
	return clamp01(blended / 5)
}

func relevanceScore(item catalog.Item, query string) float64 {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return 0.5
	}

	title := strings.ToLower(item.Title)
	category := strings.ToLower(item.Category)
	description := strings.ToLower(item.Description)

	var score float64
	if strings.Contains(title, q) {
		score += 0.6
	}
	if strings.Contains(category, q) {
		score += 0.3
	}
	if strings.Contains(description, q) {
		score += 0.2
	}

	for _, w := range strings.Fields(q) {
		if len(w) <= 2 {
			continue
		}
		if strings.Contains(title, w) {
			score += 0.1
		}
		if strings.Contains(category, w) {
			score += 0.05
		}
		if strings.Contains(description, w) {
			score += 0.03
		}
	}
	return math.Min(score, 1.0)
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}
