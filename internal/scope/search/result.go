package search

import (
	"slices"
	"time"

	"github.com/dsjohal14/shopsearch/internal/scope/query"
	"github.com/dsjohal14/shopsearch/internal/scope/scoring"
)

// Execution is the machine-readable trace of one run
type Execution struct {
	ID           string        `json:"id"`
	TimeMs       float64       `json:"timeMs"`
	Steps        []string      `json:"steps"`
	Summaries    []StepSummary `json:"summaries"`
	FallbackUsed bool          `json:"fallbackUsed"`
	CatalogSize  int           `json:"catalogSize"`
	Degraded     bool          `json:"degraded,omitempty"`
}

// Result is the outcome of Execute
type Result struct {
	Success    bool               `json:"success"`
	Data       []scoring.Scored   `json:"data"`
	TotalFound int                `json:"totalFound"`
	Filters    AppliedFilters     `json:"filters"`
	Execution  Execution          `json:"execution"`
	UIHandlers []string           `json:"uiHandlers,omitempty"`
	Parsed     *query.ParsedQuery `json:"parsed,omitempty"`
	Error      string             `json:"error,omitempty"`
}

// HasItems reports whether the run returned any items
func (r *Result) HasItems() bool {
	return r != nil && len(r.Data) > 0
}

func newResult(id string) *Result {
	return &Result{
		Data: []scoring.Scored{},
		Filters: AppliedFilters{
			Categories: []string{},
			Variants:   []string{},
		},
		Execution: Execution{
			ID:        id,
			Steps:     []string{},
			Summaries: []StepSummary{},
		},
	}
}

func (r *Result) succeed(s State, start time.Time) {
	r.Success = true
	r.Data = s.Results
	if r.Data == nil {
		r.Data = []scoring.Scored{}
	}
	r.TotalFound = s.TotalFound
	r.Filters = s.Filters
	r.UIHandlers = slices.Clone(s.UIHandlers)
	r.Parsed = s.Parsed
	r.Execution.Steps = slices.Clone(s.Metadata.Steps)
	r.Execution.FallbackUsed = s.Filters.FallbackUsed
	r.Execution.CatalogSize = len(s.AllItems)
	r.Execution.Degraded = s.Degraded
	r.Execution.TimeMs = msSince(start)
}

func (r *Result) fail(err error, start time.Time) {
	r.Success = false
	r.Data = []scoring.Scored{}
	r.TotalFound = 0
	r.Error = err.Error()
	r.Execution.TimeMs = msSince(start)
}
