package search

import (
	"context"
	"slices"
	"sort"
	"strings"

	"github.com/dsjohal14/shopsearch/internal/scope/catalog"
	"github.com/dsjohal14/shopsearch/internal/scope/query"
	"github.com/dsjohal14/shopsearch/internal/scope/scoring"
)

// Stage names, in execution order
const (
	StageInitialize     = "initialize"
	StageCategoryFilter = "category_filter"
	StageConstraints    = "constraints"
	StageTextSearch     = "text_search"
	StageVariantFilter  = "variant_filter"
	StageScoring        = "scoring"
	StageFinalize       = "finalize"
)

// Stage summary reasons
const (
	ReasonParsed            = "parsed_query"
	ReasonDegradedCatalog   = "degraded_catalog"
	ReasonNoCategories      = "no_categories"
	ReasonNoKnownCategories = "no_known_categories"
	ReasonAllCategories     = "all_categories"
	ReasonNoMatch           = "no_match"
	ReasonNoConstraints     = "no_constraints"
	ReasonEmptySearch       = "empty_search"
	ReasonGenericSearch     = "generic_search"
	ReasonRestored          = "restored"
	ReasonBroaderSearch     = "broader_search"
	ReasonNoVariants        = "no_variants"
	ReasonSortOverride      = "sort_override"
)

// StepSummary describes what a stage did
type StepSummary struct {
	Stage        string   `json:"stage"`
	Before       int      `json:"before"`
	After        int      `json:"after"`
	Applied      []string `json:"applied,omitempty"`
	Skipped      bool     `json:"skipped,omitempty"`
	Reason       string   `json:"reason,omitempty"`
	FallbackUsed bool     `json:"fallbackUsed"`
	DurationMs   float64  `json:"durationMs"`
}

type stageFunc func(ctx context.Context, s State) (State, StepSummary, error)

type stage struct {
	name string
	run  stageFunc
}

func (p *Pipeline) defaultStages() []stage {
	return []stage{
		{StageInitialize, p.initialize},
		{StageCategoryFilter, p.filterCategories},
		{StageConstraints, p.applyConstraints},
		{StageTextSearch, p.textSearch},
		{StageVariantFilter, p.filterVariants},
		{StageScoring, p.score},
		{StageFinalize, p.finalize},
	}
}

// initialize fetches the catalog and seeds the working set
func (p *Pipeline) initialize(ctx context.Context, s State) (State, StepSummary, error) {
	req := s.Request
	snap := catalog.Fetch(ctx, p.source, p.logger)

	s.OriginalQuery = strings.TrimSpace(req.Query)
	s.AllItems = snap.Items
	s.BackupItems = slices.Clone(snap.Items)
	s.CurrentItems = slices.Clone(snap.Items)
	s.AllCategories = snap.Categories
	if len(s.AllCategories) == 0 {
		s.AllCategories = catalog.CategoriesOf(snap.Items)
	}
	s.Degraded = snap.Degraded()

	sum := StepSummary{Before: 0, After: len(s.CurrentItems)}
	if s.Degraded {
		sum.Reason = ReasonDegradedCatalog
	}

	if !req.IsClassified() && s.OriginalQuery != "" {
		parsed := query.NewParser(s.AllCategories, p.parserOpts...).Parse(s.OriginalQuery)
		s.Parsed = &parsed
		s.Request = req.withParsed(parsed)
		sum.Applied = append(sum.Applied, ReasonParsed)
	}

	s.Metadata.GiftMode = s.Request.GiftMode()
	s.Metadata.FallbackEnabled = s.Request.FallbackEnabled()
	s.Metadata.BackupSearchEnabled = s.Request.BackupSearchEnabled()
	s.Filters.Categories = []string{}
	s.Filters.Variants = []string{}
	s.UIHandlers = slices.Clone(s.Request.UIHandlers)

	return s, sum, nil
}

// filterCategories narrows to an explicit category, or to a strict subset of the known categories
func (p *Pipeline) filterCategories(_ context.Context, s State) (State, StepSummary, error) {
	sum := StepSummary{Before: len(s.CurrentItems)}
	req := s.Request

	var wanted []string
	switch {
	case strings.TrimSpace(req.Category) != "":
		wanted = []string{strings.TrimSpace(req.Category)}
		if known := canonicalCategories(wanted, s.AllCategories); len(known) > 0 {
			wanted = known
		}
	case len(req.Categories) > 0:
		wanted = canonicalCategories(req.Categories, s.AllCategories)
		if len(wanted) == 0 {
			return skip(s, sum, ReasonNoKnownCategories)
		}
		if len(wanted) >= distinctCount(s.AllCategories) {
			return skip(s, sum, ReasonAllCategories)
		}
	default:
		return skip(s, sum, ReasonNoCategories)
	}

	filtered := filterItems(s.CurrentItems, inCategories(wanted))
	if len(filtered) == 0 {
		return skip(s, sum, ReasonNoMatch)
	}

	s.CurrentItems = filtered
	s.Filters.Categories = wanted
	sum.Applied = wanted
	sum.After = len(filtered)
	return s, sum, nil
}

// applyConstraints applies price max, price min and rating floor, then the gift floor
func (p *Pipeline) applyConstraints(_ context.Context, s State) (State, StepSummary, error) {
	sum := StepSummary{Before: len(s.CurrentItems)}
	req := s.Request
	items := s.CurrentItems
	c := &s.Filters.Constraints

	if pr := req.price(); pr != nil {
		if pr.Max != nil {
			limit := *pr.Max
			items = filterItems(items, func(it catalog.Item) bool { return it.Price <= limit })
			c.PriceMax = &limit
			sum.Applied = append(sum.Applied, "priceMax")
		}
		if pr.Min != nil {
			floor := *pr.Min
			items = filterItems(items, func(it catalog.Item) bool { return it.Price >= floor })
			c.PriceMin = &floor
			sum.Applied = append(sum.Applied, "priceMin")
		}
	}
	if r := req.ratingMin(); r != nil {
		floor := *r
		items = filterItems(items, func(it catalog.Item) bool { return it.Rating.Rate >= floor })
		c.RatingMin = &floor
		sum.Applied = append(sum.Applied, "ratingMin")
	}
	if s.Metadata.GiftMode {
		floor := GiftQualityFloor
		items = filterItems(items, func(it catalog.Item) bool { return it.Rating.Rate >= floor })
		c.GiftQualityFloor = &floor
		sum.Applied = append(sum.Applied, "giftQualityFloor")
	}

	if len(sum.Applied) == 0 {
		return skip(s, sum, ReasonNoConstraints)
	}
	s.CurrentItems = items
	sum.After = len(items)
	return s, sum, nil
}

// textSearch filters by the search phrase, restoring and broadening when nothing matches
func (p *Pipeline) textSearch(_ context.Context, s State) (State, StepSummary, error) {
	sum := StepSummary{Before: len(s.CurrentItems)}

	// a parsed query has already spent its price, category and attribute words on earlier stages
	text := s.OriginalQuery
	if s.Parsed != nil {
		text = s.Parsed.FreeText
	}

	phrase, ok := searchPhrase(s.Request.ProductItems, text, s.AllCategories)
	if !ok {
		if phrase == "" {
			return skip(s, sum, ReasonEmptySearch)
		}
		return skip(s, sum, ReasonGenericSearch)
	}
	s.Filters.SearchQuery = phrase
	sum.Applied = []string{phrase}

	before := s.Snapshot()
	matched := filterItems(s.CurrentItems, containsText(phrase))
	if len(matched) > 0 || !s.Metadata.FallbackEnabled {
		s.CurrentItems = matched
		sum.After = len(matched)
		return s, sum, nil
	}

	s = s.Restore(before)
	sum.FallbackUsed = true
	sum.Reason = ReasonRestored
	p.metrics.ObserveFallback(StageTextSearch)

	if words := strings.Fields(phrase); s.Metadata.BackupSearchEnabled && len(words) > 1 {
		if broader := filterItems(s.CurrentItems, containsAnyWord(significantWords(phrase))); len(broader) > 0 {
			s.CurrentItems = broader
			sum.Reason = ReasonBroaderSearch
		}
	}

	sum.After = len(s.CurrentItems)
	return s, sum, nil
}

// filterVariants AND-chains every variant term, restoring the pre-stage set when the chain empties it
func (p *Pipeline) filterVariants(_ context.Context, s State) (State, StepSummary, error) {
	sum := StepSummary{Before: len(s.CurrentItems)}

	variants := cleanTerms(s.Request.Variants)
	if len(variants) == 0 {
		return skip(s, sum, ReasonNoVariants)
	}
	s.Filters.Variants = variants
	sum.Applied = variants

	before := s.Snapshot()
	items := s.CurrentItems
	for _, v := range variants {
		items = filterItems(items, containsText(v))
	}

	if len(items) == 0 && s.Metadata.FallbackEnabled {
		s = s.Restore(before)
		sum.FallbackUsed = true
		sum.Reason = ReasonRestored
		sum.After = len(s.CurrentItems)
		p.metrics.ObserveFallback(StageVariantFilter)
		return s, sum, nil
	}

	s.CurrentItems = items
	sum.After = len(items)
	return s, sum, nil
}

// score ranks the working set with the preset chosen for the request, or orders it by an explicit sort
func (p *Pipeline) score(_ context.Context, s State) (State, StepSummary, error) {
	sum := StepSummary{Before: len(s.CurrentItems), After: len(s.CurrentItems)}

	preset := selectPreset(s)
	criteria := p.engine.Preset(preset)
	sctx := scoring.NewContext(s.CurrentItems, s.Filters.Constraints.PriceMax, s.Filters.SearchQuery)
	ranked := p.engine.Rank(s.CurrentItems, criteria, sctx)

	s.Filters.Preset = preset
	sum.Applied = []string{preset}

	if override := s.Request.Sort; override != "" && override != SortRelevance {
		sortBy(ranked, override)
		s.Filters.Sort = override
		sum.Reason = ReasonSortOverride
	}

	s.Ranked = ranked
	s.CurrentItems = make([]catalog.Item, len(ranked))
	for i, r := range ranked {
		s.CurrentItems[i] = r.Item
	}
	return s, sum, nil
}

// finalize clips to the limit and records the pre-clip total
func (p *Pipeline) finalize(_ context.Context, s State) (State, StepSummary, error) {
	sum := StepSummary{Before: len(s.Ranked)}

	limit := p.clampLimit(s.Request.Limit())
	s.TotalFound = len(s.Ranked)
	s.Results = slices.Clone(s.Ranked[:min(limit, len(s.Ranked))])
	s.Filters.Limit = limit

	sum.After = len(s.Results)
	return s, sum, nil
}

func (p *Pipeline) clampLimit(limit int) int {
	if limit <= 0 {
		limit = p.defaultLimit
	}
	return min(max(limit, 1), p.maxLimit)
}

func skip(s State, sum StepSummary, reason string) (State, StepSummary, error) {
	sum.Skipped = true
	sum.Reason = reason
	sum.After = len(s.CurrentItems)
	return s, sum, nil
}

// selectPreset maps the request's intent and observed filters to a scoring preset
func selectPreset(s State) string {
	c := s.Filters.Constraints
	intent := s.Request.Intent
	switch {
	case s.Metadata.GiftMode:
		return scoring.PresetGift
	case c.PriceMax != nil || intent == string(query.IntentPriceFilter):
		return scoring.PresetBudget
	case c.PriceMin != nil:
		return scoring.PresetPremium
	case s.Filters.SearchQuery != "":
		return scoring.PresetSearchResults
	case intent == string(query.IntentBrowseCategory):
		return scoring.PresetPopular
	default:
		return scoring.PresetDefault
	}
}

func sortBy(ranked []scoring.Scored, order string) {
	var less func(a, b scoring.Scored) bool
	switch order {
	case SortPriceLow:
		less = func(a, b scoring.Scored) bool { return a.Price < b.Price }
	case SortPriceHigh:
		less = func(a, b scoring.Scored) bool { return a.Price > b.Price }
	case SortRating:
		less = func(a, b scoring.Scored) bool { return a.Rating.Rate > b.Rating.Rate }
	default:
		return
	}
	sort.SliceStable(ranked, func(i, j int) bool { return less(ranked[i], ranked[j]) })
}
