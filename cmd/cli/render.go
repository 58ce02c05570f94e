package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/dsjohal14/shopsearch/internal/scope/intent"
	"github.com/dsjohal14/shopsearch/internal/scope/query"
	"github.com/dsjohal14/shopsearch/internal/scope/search"
)

var (
	heading = color.New(color.FgCyan, color.Bold)
	dim     = color.New(color.Faint)
	good    = color.New(color.FgGreen)
	warn    = color.New(color.FgYellow)
	bad     = color.New(color.FgRed, color.Bold)
)

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func success(w io.Writer, format string, args ...interface{}) {
	good.Fprintf(w, "✓ %s\n", fmt.Sprintf(format, args...))
}

func renderSearch(w io.Writer, res *search.Result, fb intent.FallbackResult) {
	if !res.Success {
		bad.Fprintf(w, "✗ search failed: %s\n", res.Error)
		dim.Fprintf(w, "  completed stages: %s\n", strings.Join(res.Execution.Steps, " → "))
		return
	}

	heading.Fprintf(w, "%d of %d results", len(res.Data), res.TotalFound)
	dim.Fprintf(w, "  (%s, %.1fms, preset %s)\n", res.Execution.ID, res.Execution.TimeMs, res.Filters.Preset)
	if res.Execution.Degraded {
		warn.Fprintln(w, "! catalog unavailable, results are empty")
	}
	if res.Execution.FallbackUsed {
		warn.Fprintln(w, "! fallback restored a filter that matched nothing")
	}

	for i, item := range res.Data {
		fmt.Fprintf(w, "%2d. %s\n", i+1, item.Title)
		dim.Fprintf(w, "    #%d  %s  £%.2f  ★ %.1f (%d)  score %.3f\n",
			item.ID, item.Category, item.Price, item.Rating.Rate, item.Rating.Count, item.Score)
	}

	renderFilters(w, res.Filters)

	if len(fb.Handlers) > 0 {
		fmt.Fprintf(w, "ui handlers: %s\n", good.Sprint(strings.Join(fb.Handlers, ", ")))
	}
}

func renderFilters(w io.Writer, f search.AppliedFilters) {
	var parts []string
	if len(f.Categories) > 0 {
		parts = append(parts, "categories="+strings.Join(f.Categories, "|"))
	}
	if c := f.Constraints.PriceMin; c != nil {
		parts = append(parts, fmt.Sprintf("min=%.2f", *c))
	}
	if c := f.Constraints.PriceMax; c != nil {
		parts = append(parts, fmt.Sprintf("max=%.2f", *c))
	}
	if c := f.Constraints.RatingMin; c != nil {
		parts = append(parts, fmt.Sprintf("rating>=%.1f", *c))
	}
	if f.Constraints.GiftQualityFloor != nil {
		parts = append(parts, "gift")
	}
	if f.SearchQuery != "" {
		parts = append(parts, fmt.Sprintf("text=%q", f.SearchQuery))
	}
	if len(f.Variants) > 0 {
		parts = append(parts, "variants="+strings.Join(f.Variants, "+"))
	}
	if f.Sort != "" {
		parts = append(parts, "sort="+f.Sort)
	}
	if len(parts) > 0 {
		dim.Fprintf(w, "filters: %s\n", strings.Join(parts, " "))
	}
}

func renderParsed(w io.Writer, p query.ParsedQuery) {
	heading.Fprintf(w, "%s", p.Intent)
	dim.Fprintf(w, "  confidence %.2f\n", p.Confidence)

	field := func(name string, values []string) {
		if len(values) > 0 {
			fmt.Fprintf(w, "  %-13s %s\n", name+":", strings.Join(values, ", "))
		}
	}
	field("categories", p.Categories)
	field("product types", p.ProductTypes)
	field("colors", p.Attributes.Colors)
	field("sizes", p.Attributes.Sizes)
	field("brands", p.Attributes.Brands)
	field("variants", p.Attributes.Variants)
	if p.PriceRange.Min != nil {
		fmt.Fprintf(w, "  %-13s %.2f\n", "price min:", *p.PriceRange.Min)
	}
	if p.PriceRange.Max != nil {
		fmt.Fprintf(w, "  %-13s %.2f\n", "price max:", *p.PriceRange.Max)
	}
	if p.Gender != query.GenderBoth {
		fmt.Fprintf(w, "  %-13s %s\n", "gender:", p.Gender)
	}
	if p.Constraints.SortBy != query.SortNone {
		fmt.Fprintf(w, "  %-13s %s\n", "sort:", p.Constraints.SortBy)
	}
	field("actions", p.SuggestedActions)
	dim.Fprintf(w, "  %s\n", p.Reasoning)
}

func renderFallback(w io.Writer, fb intent.FallbackResult) {
	if len(fb.FallbackMatches) == 0 {
		dim.Fprintln(w, "no UI intent matched")
	}
	for _, m := range fb.FallbackMatches {
		c := good
		if m.Confidence < intent.DefaultThreshold {
			c = warn
		}
		c.Fprintf(w, "%-16s %3d%%", m.Handler, m.Confidence)
		dim.Fprintf(w, "  %q\n", m.MatchedPattern)
	}
	if len(fb.Handlers) > 0 {
		fmt.Fprintf(w, "handlers: %s", strings.Join(fb.Handlers, ", "))
		if fb.AppliedFallback {
			warn.Fprint(w, "  (fallback applied)")
		}
		fmt.Fprintln(w)
	}
}
