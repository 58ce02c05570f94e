// Package query turns free-text shopping queries into structured search signals.
package query

import (
	"fmt"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode"
)

// Gender is the detected audience of a query
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderBoth   Gender = "both"
)

// Intent is the coarse classification produced by the parser
type Intent string

const (
	IntentSearchProducts Intent = "search_products"
	IntentBrowseCategory Intent = "browse_category"
	IntentPriceFilter    Intent = "price_filter"
	IntentGeneral        Intent = "general"
)

// SortPreference is a sort order inferred from keyword cues
type SortPreference string

const (
	SortNone      SortPreference = ""
	SortPriceLow  SortPreference = "price-low"
	SortPriceHigh SortPreference = "price-high"
	SortRating    SortPreference = "rating"
)

// PriceRange holds optional price bounds
type PriceRange struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// IsZero reports whether neither bound is set
func (p PriceRange) IsZero() bool {
	return p.Min == nil && p.Max == nil
}

// Attributes holds auxiliary product attributes found in the query
type Attributes struct {
	Colors   []string `json:"colors"`
	Sizes    []string `json:"sizes"`
	Brands   []string `json:"brands"`
	Variants []string `json:"variants"`
}

// Constraints is the filter and sort guidance derived from the query
type Constraints struct {
	Budget    *float64       `json:"budget,omitempty"`
	RatingMin *float64       `json:"ratingMin,omitempty"`
	InStock   bool           `json:"inStock"`
	SortBy    SortPreference `json:"sortBy,omitempty"`
}

// ParsedQuery is the structured form of a free-text query
type ParsedQuery struct {
	Query            string      `json:"query"`
	Categories       []string    `json:"categories"`
	ProductTypes     []string    `json:"productTypes"`
	PriceRange       PriceRange  `json:"priceRange"`
	Gender           Gender      `json:"gender"`
	Intent           Intent      `json:"intent"`
	Confidence       float64     `json:"confidence"`
	Reasoning        string      `json:"reasoning"`
	Attributes       Attributes  `json:"attributes"`
	Constraints      Constraints `json:"constraints"`
	SuggestedActions []string    `json:"suggestedActions"`

	// FreeText is what remains of the query once every detected signal and filler word is removed
	FreeText string `json:"freeText"`
}

// Parser parses queries against a fixed category list.
// A Parser is immutable after construction and safe for concurrent use.
type Parser struct {
	categories  []string
	catPatterns []*regexp.Regexp
	brands      vocabulary
}

// Option configures a Parser
type Option func(*Parser)

// WithBrands supplies the brand vocabulary; without it no brands are detected
func WithBrands(brands []string) Option {
	return func(p *Parser) {
		var words []string
		for _, b := range brands {
			if b = strings.TrimSpace(b); b != "" {
				words = append(words, b)
			}
		}
		p.brands = newVocabulary(words...)
	}
}

// NewParser creates a parser for the given catalog categories.
// An empty category list is valid and yields no detected categories.
func NewParser(categories []string, opts ...Option) *Parser {
	p := &Parser{categories: slices.Clone(categories)}
	for _, opt := range opts {
		opt(p)
	}
	p.catPatterns = make([]*regexp.Regexp, len(p.categories))
	for i, cat := range p.categories {
		p.catPatterns[i] = wordPattern(cat, false)
	}
	return p
}

// Parse extracts structured signals from query
func (p *Parser) Parse(query string) ParsedQuery {
	q := strings.TrimSpace(query)

	parsed := ParsedQuery{
		Query:        q,
		Categories:   []string{},
		ProductTypes: []string{},
		Attributes: Attributes{
			Colors:   []string{},
			Sizes:    []string{},
			Brands:   []string{},
			Variants: []string{},
		},
	}

	parsed.PriceRange = extractPriceRange(q)
	parsed.Gender = detectGender(q)

	kinds := map[productKind]bool{}
	for _, pt := range matchProductTypes(q) {
		parsed.ProductTypes = append(parsed.ProductTypes, pt.name)
		kinds[pt.kind] = true
	}
	parsed.Categories = p.mapCategories(q, kinds, parsed.Gender)

	parsed.Intent = classify(parsed)
	parsed.Confidence = confidence(parsed)

	parsed.Attributes.Colors = colors.find(q)
	parsed.Attributes.Sizes = sizes.find(q)
	parsed.Attributes.Brands = p.brands.find(q)
	parsed.Attributes.Variants = extractVariants(q)

	parsed.Constraints = extractConstraints(q, parsed.PriceRange)
	parsed.SuggestedActions = suggestedActions(parsed.Intent)
	parsed.Reasoning = reasoning(parsed)
	parsed.FreeText = p.freeText(q)

	return parsed
}

// mapCategories resolves product kinds, department words and literal category names to catalog categories
func (p *Parser) mapCategories(q string, kinds map[productKind]bool, gender Gender) []string {
	for kind, alias := range kindAliases {
		if alias.MatchString(q) {
			kinds[kind] = true
		}
	}

	out := []string{}
	for i, cat := range p.categories {
		if p.catPatterns[i].MatchString(q) {
			out = append(out, cat)
			continue
		}
		kind, ok := kindOfCategory(cat)
		if !ok || !kinds[kind] {
			continue
		}
		if kind == kindClothing && !genderAllows(cat, gender) {
			continue
		}
		out = append(out, cat)
	}
	return out
}

// freeText strips every span the parser turned into a signal, then drops filler and generic words
func (p *Parser) freeText(q string) string {
	rest := q
	strip := func(re *regexp.Regexp) {
		rest = re.ReplaceAllString(rest, " ")
	}

	for _, re := range p.catPatterns {
		strip(re)
	}
	for _, re := range p.brands.patterns {
		strip(re)
	}
	for _, pt := range productTypes {
		strip(pt.pattern)
	}
	for _, re := range consumedSignals {
		strip(re)
	}
	for _, re := range kindAliases {
		strip(re)
	}

	var words []string
	for _, w := range strings.Fields(rest) {
		w = strings.TrimFunc(w, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if w == "" || fillerWords[strings.ToLower(w)] || IsGeneric(w) {
			continue
		}
		words = append(words, w)
	}
	return strings.Join(words, " ")
}

// matchProductTypes returns the product types found in q, in vocabulary order.
// A type whose every occurrence lies inside a longer matched type ("shirt" in "t-shirt") is dropped.
func matchProductTypes(q string) []productType {
	type hit struct {
		pt    productType
		spans [][]int
	}
	var hits []hit
	for _, pt := range productTypes {
		if spans := pt.pattern.FindAllStringIndex(q, -1); spans != nil {
			hits = append(hits, hit{pt: pt, spans: spans})
		}
	}

	enclosed := func(span []int, self int) bool {
		for j, other := range hits {
			if j == self {
				continue
			}
			for _, o := range other.spans {
				if o[0] <= span[0] && span[1] <= o[1] && o[1]-o[0] > span[1]-span[0] {
					return true
				}
			}
		}
		return false
	}

	out := make([]productType, 0, len(hits))
	for i, h := range hits {
		for _, span := range h.spans {
			if !enclosed(span, i) {
				out = append(out, h.pt)
				break
			}
		}
	}
	return out
}

// genderAllows reports whether a clothing category fits the gender preference
func genderAllows(category string, gender Gender) bool {
	c := strings.ToLower(category)
	female := strings.Contains(c, "women") || strings.Contains(c, "ladies")
	male := !female && maleIndicators.MatchString(c)

	switch gender {
	case GenderMale:
		return !female
	case GenderFemale:
		return !male
	default:
		return true
	}
}

func detectGender(q string) Gender {
	male := len(maleIndicators.FindAllString(q, -1))
	female := len(femaleIndicators.FindAllString(q, -1))
	switch {
	case male > female:
		return GenderMale
	case female > male:
		return GenderFemale
	default:
		return GenderBoth
	}
}

func extractPriceRange(q string) PriceRange {
	var pr PriceRange

	if m := priceBetween.FindStringSubmatch(q); m != nil {
		lo, errLo := strconv.ParseFloat(m[1], 64)
		hi, errHi := strconv.ParseFloat(m[2], 64)
		if errLo == nil && errHi == nil {
			if lo > hi {
				lo, hi = hi, lo
			}
			pr.Min, pr.Max = &lo, &hi
			return pr
		}
	}
	if m := priceUnder.FindStringSubmatch(q); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			pr.Max = &v
		}
	}
	if m := priceOver.FindStringSubmatch(q); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			pr.Min = &v
		}
	}
	return pr
}

func classify(p ParsedQuery) Intent {
	hasTypes := len(p.ProductTypes) > 0
	hasCats := len(p.Categories) > 0
	hasPrice := !p.PriceRange.IsZero()

	switch {
	case hasTypes, hasCats && hasPrice:
		return IntentSearchProducts
	case hasCats:
		return IntentBrowseCategory
	case hasPrice:
		return IntentPriceFilter
	default:
		return IntentGeneral
	}
}

func confidence(p ParsedQuery) float64 {
	c := 0.5
	if len(p.Categories) > 0 {
		c += 0.2
	}
	if len(p.ProductTypes) > 0 {
		c += 0.3
	}
	if p.Gender != GenderBoth {
		c += 0.1
	}
	if len(p.Categories) > 2 {
		c -= 0.1
	}
	c = math.Max(0, math.Min(1, c))
	return math.Round(c*100) / 100
}

func extractVariants(q string) []string {
	out := []string{}
	seen := map[string]bool{}
	for _, m := range variantToken.FindAllString(q, -1) {
		key := strings.ToLower(m)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, m)
	}
	return out
}

func extractConstraints(q string, pr PriceRange) Constraints {
	c := Constraints{Budget: pr.Max}

	if m := starRating.FindStringSubmatch(q); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			c.RatingMin = &v
		}
	} else if highRatingCues.MatchString(q) {
		v := 4.0
		c.RatingMin = &v
	} else if goodRatingCues.MatchString(q) {
		v := 3.5
		c.RatingMin = &v
	}

	c.InStock = inStockCues.MatchString(q)

	switch {
	case sortPriceLowCues.MatchString(q):
		c.SortBy = SortPriceLow
	case sortPriceHighCues.MatchString(q):
		c.SortBy = SortPriceHigh
	case sortRatingCues.MatchString(q):
		c.SortBy = SortRating
	}
	return c
}

var actionsByIntent = map[Intent][]string{
	IntentSearchProducts: {"show_products", "apply_filters", "sort_results"},
	IntentBrowseCategory: {"show_category", "show_subcategories"},
	IntentPriceFilter:    {"show_products", "sort_by_price"},
	IntentGeneral:        {"show_popular", "ask_clarification"},
}

func suggestedActions(intent Intent) []string {
	return slices.Clone(actionsByIntent[intent])
}

func reasoning(p ParsedQuery) string {
	var parts []string
	if len(p.ProductTypes) > 0 {
		parts = append(parts, "product types: "+strings.Join(p.ProductTypes, ", "))
	}
	if len(p.Categories) > 0 {
		parts = append(parts, "categories: "+strings.Join(p.Categories, ", "))
	}
	if p.PriceRange.Min != nil {
		parts = append(parts, fmt.Sprintf("price min %.2f", *p.PriceRange.Min))
	}
	if p.PriceRange.Max != nil {
		parts = append(parts, fmt.Sprintf("price max %.2f", *p.PriceRange.Max))
	}
	if p.Gender != GenderBoth {
		parts = append(parts, "gender: "+string(p.Gender))
	}
	if len(parts) == 0 {
		return "no product signals detected"
	}
	return strings.Join(parts, "; ")
}
