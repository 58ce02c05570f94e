package search

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dsjohal14/shopsearch/internal/scope/query"
)

// Classifier intents. Parser intents (query.Intent) are accepted as well.
const (
	IntentProductSearch = "product_search"
	IntentUIAction      = "ui_handling_action"
	IntentGeneralChat   = "general_chat"
)

// Sort overrides
const (
	SortRelevance = "relevance"
	SortPriceLow  = "price-low"
	SortPriceHigh = "price-high"
	SortRating    = "rating"
)

// PriceBounds is an optional price window
type PriceBounds struct {
	Min *float64 `json:"min,omitempty" validate:"omitempty,gte=0"`
	Max *float64 `json:"max,omitempty" validate:"omitempty,gte=0"`
}

// Constraints are the numeric and boolean filters of a request
type Constraints struct {
	Price    *PriceBounds `json:"price,omitempty"`
	Rating   *float64     `json:"rating,omitempty" validate:"omitempty,gte=0,lte=5"`
	Limit    int          `json:"limit,omitempty" validate:"gte=0"`
	Gift     bool         `json:"gift,omitempty"`
	Occasion string       `json:"occasion,omitempty" validate:"max=100"`
}

// Request is a search request, either raw text or pre-classified by an upstream classifier
type Request struct {
	Query        string       `json:"query,omitempty" validate:"max=500"`
	Intent       string       `json:"intent,omitempty" validate:"omitempty,oneof=product_search ui_handling_action general_chat search_products browse_category price_filter general"`
	Category     string       `json:"category,omitempty" validate:"max=100"`
	Categories   []string     `json:"categories,omitempty" validate:"max=50,dive,max=100"`
	ProductItems []string     `json:"product_items,omitempty" validate:"max=20,dive,max=100"`
	Variants     []string     `json:"variants,omitempty" validate:"max=20,dive,max=100"`
	Constraints  *Constraints `json:"constraints,omitempty"`
	UIHandlers   []string     `json:"ui_handlers,omitempty" validate:"max=20"`
	Sort         string       `json:"sort,omitempty" validate:"omitempty,oneof=relevance price-low price-high rating"`
	Fallback     *bool        `json:"fallback,omitempty"`
	BackupSearch *bool        `json:"backup_search,omitempty"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the request shape. Errors wrap ErrInvalidRequest.
func (r Request) Validate() error {
	if err := validate.Struct(r); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalidRequest, strings.Join(fields, "; "))
		}
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	if p := r.price(); p != nil && p.Min != nil && p.Max != nil && *p.Min > *p.Max {
		return fmt.Errorf("%w: price min %.2f exceeds max %.2f", ErrInvalidRequest, *p.Min, *p.Max)
	}
	return nil
}

// IsClassified reports whether the request carries any pre-classified filter.
// A limit alone does not count.
func (r Request) IsClassified() bool {
	if r.Intent != "" || r.Category != "" || len(r.Categories) > 0 || len(r.ProductItems) > 0 || len(r.Variants) > 0 {
		return true
	}
	c := r.Constraints
	return c != nil && (c.Price != nil || c.Rating != nil || c.Gift || c.Occasion != "")
}

// GiftMode reports whether the gift quality floor applies
func (r Request) GiftMode() bool {
	return r.Constraints != nil && (r.Constraints.Gift || strings.TrimSpace(r.Constraints.Occasion) != "")
}

// FallbackEnabled defaults to true
func (r Request) FallbackEnabled() bool {
	return r.Fallback == nil || *r.Fallback
}

// BackupSearchEnabled defaults to true
func (r Request) BackupSearchEnabled() bool {
	return r.BackupSearch == nil || *r.BackupSearch
}

// Limit returns the requested limit, or 0 when unset
func (r Request) Limit() int {
	if r.Constraints == nil {
		return 0
	}
	return r.Constraints.Limit
}

func (r Request) price() *PriceBounds {
	if r.Constraints == nil {
		return nil
	}
	return r.Constraints.Price
}

func (r Request) ratingMin() *float64 {
	if r.Constraints == nil {
		return nil
	}
	return r.Constraints.Rating
}

// withParsed folds parser output into an unclassified request
func (r Request) withParsed(p query.ParsedQuery) Request {
	r.Intent = string(p.Intent)
	r.Categories = append([]string(nil), p.Categories...)
	r.ProductItems = append([]string(nil), p.ProductTypes...)

	var variants []string
	variants = append(variants, p.Attributes.Brands...)
	variants = append(variants, p.Attributes.Colors...)
	variants = append(variants, p.Attributes.Sizes...)
	variants = append(variants, p.Attributes.Variants...)
	r.Variants = variants

	c := Constraints{}
	if r.Constraints != nil {
		c = *r.Constraints
	}
	if !p.PriceRange.IsZero() {
		c.Price = &PriceBounds{Min: p.PriceRange.Min, Max: p.PriceRange.Max}
	}
	if p.Constraints.RatingMin != nil {
		c.Rating = p.Constraints.RatingMin
	}
	r.Constraints = &c

	if r.Sort == "" && p.Constraints.SortBy != query.SortNone {
		r.Sort = string(p.Constraints.SortBy)
	}
	return r
}
