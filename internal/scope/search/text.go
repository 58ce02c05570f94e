package search

import (
	"strings"
	"unicode/utf8"

	"github.com/dsjohal14/shopsearch/internal/scope/catalog"
	"github.com/dsjohal14/shopsearch/internal/scope/query"
)

// filterItems returns a new slice holding the items that satisfy keep
func filterItems(items []catalog.Item, keep func(catalog.Item) bool) []catalog.Item {
	out := make([]catalog.Item, 0, len(items))
	for _, it := range items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}

func searchableText(it catalog.Item) string {
	return strings.ToLower(it.Title + " " + it.Description)
}

// containsText matches phrase as a case-insensitive substring of title or description
func containsText(phrase string) func(catalog.Item) bool {
	p := strings.ToLower(strings.TrimSpace(phrase))
	return func(it catalog.Item) bool {
		return strings.Contains(searchableText(it), p)
	}
}

// containsAnyWord matches when at least one word longer than two characters is a substring
func containsAnyWord(words []string) func(catalog.Item) bool {
	return func(it catalog.Item) bool {
		text := searchableText(it)
		for _, w := range words {
			if strings.Contains(text, w) {
				return true
			}
		}
		return false
	}
}

// significantWords returns the lowercased words of phrase longer than two characters
func significantWords(phrase string) []string {
	var out []string
	for _, w := range strings.Fields(strings.ToLower(phrase)) {
		if utf8.RuneCountInString(w) > 2 {
			out = append(out, w)
		}
	}
	return out
}

// searchPhrase builds the stage 4 phrase.
// Product items win over the raw query; category-name tokens are stripped from them.
// ok is false when there is nothing worth filtering on.
func searchPhrase(productItems []string, rawQuery string, categories []string) (phrase string, ok bool) {
	if len(productItems) == 0 {
		phrase = strings.TrimSpace(rawQuery)
	} else {
		stop := categoryTokens(categories)
		var words []string
		for _, item := range productItems {
			for _, w := range strings.Fields(item) {
				if !stop[strings.ToLower(w)] {
					words = append(words, w)
				}
			}
		}
		phrase = strings.Join(words, " ")
	}

	if phrase == "" || query.IsGeneric(phrase) {
		return phrase, false
	}
	return phrase, true
}

func categoryTokens(categories []string) map[string]bool {
	stop := map[string]bool{}
	for _, c := range categories {
		for _, w := range strings.Fields(strings.ToLower(c)) {
			stop[w] = true
		}
	}
	return stop
}

// canonicalCategories resolves requested names against the catalog case-insensitively.
// The catalog's spelling is kept and duplicates are dropped.
func canonicalCategories(requested, all []string) []string {
	byLower := make(map[string]string, len(all))
	for _, c := range all {
		byLower[strings.ToLower(strings.TrimSpace(c))] = c
	}

	var out []string
	seen := map[string]bool{}
	for _, r := range requested {
		c, ok := byLower[strings.ToLower(strings.TrimSpace(r))]
		if !ok || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

// distinctCount counts distinct category names ignoring case
func distinctCount(categories []string) int {
	seen := map[string]bool{}
	for _, c := range categories {
		seen[strings.ToLower(strings.TrimSpace(c))] = true
	}
	return len(seen)
}

func inCategories(categories []string) func(catalog.Item) bool {
	set := make(map[string]bool, len(categories))
	for _, c := range categories {
		set[strings.ToLower(c)] = true
	}
	return func(it catalog.Item) bool {
		return set[strings.ToLower(it.Category)]
	}
}

func cleanTerms(terms []string) []string {
	var out []string
	for _, t := range terms {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
