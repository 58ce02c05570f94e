package query

import (
	"regexp"
	"strings"
)

type productKind int

const (
	kindClothing productKind = iota
	kindElectronics
	kindJewelry
)

type productType struct {
	name    string
	kind    productKind
	pattern *regexp.Regexp
}

// wordPattern matches term as a whole word, optionally pluralised with a trailing "s"
func wordPattern(term string, plural bool) *regexp.Regexp {
	suffix := ""
	if plural {
		suffix = "s?"
	}
	return regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(term) + suffix + `\b`)
}

func newProductTypes(kind productKind, names ...string) []productType {
	out := make([]productType, 0, len(names))
	for _, n := range names {
		out = append(out, productType{name: n, kind: kind, pattern: wordPattern(n, true)})
	}
	return out
}

var productTypes = concat(
	newProductTypes(kindClothing,
		"t-shirt", "shirt", "tee", "jacket", "coat", "raincoat", "hoodie", "sweater", "sweatshirt",
		"jumper", "dress", "skirt", "blouse", "jeans", "trousers", "pants", "shorts", "backpack", "bag"),
	newProductTypes(kindElectronics,
		"laptop", "monitor", "ssd", "hdd", "hard drive", "drive", "tv", "television", "phone",
		"smartphone", "tablet", "headphone", "speaker", "camera", "keyboard", "mouse", "charger"),
	newProductTypes(kindJewelry,
		"ring", "necklace", "bracelet", "earring", "pendant", "chain"),
)

// Category-level words that name a whole department rather than a product type
var kindAliases = map[productKind]*regexp.Regexp{
	kindClothing:    regexp.MustCompile(`(?i)\b(clothes|clothing|apparel|outfits?|fashion)\b`),
	kindElectronics: regexp.MustCompile(`(?i)\b(electronics?|gadgets?|tech)\b`),
	kindJewelry:     regexp.MustCompile(`(?i)\b(jewelry|jewellery|jewelery|jewels?)\b`),
}

// kindOfCategory reports which department a catalog category belongs to
func kindOfCategory(category string) (productKind, bool) {
	c := strings.ToLower(category)
	switch {
	case strings.Contains(c, "clothing"), strings.Contains(c, "apparel"), strings.Contains(c, "fashion"):
		return kindClothing, true
	case strings.Contains(c, "electronic"):
		return kindElectronics, true
	case strings.Contains(c, "jewel"):
		return kindJewelry, true
	default:
		return 0, false
	}
}

var (
	maleIndicators = regexp.MustCompile(`(?i)\b(men's|mens|men|man|male|males|him|his|boyfriend|husband|father|dad|boys?|gentlemen|gentleman)\b`)

	femaleIndicators = regexp.MustCompile(`(?i)\b(women's|womens|women|woman|female|females|her|hers|girlfriend|wife|mother|mum|mom|girls?|lady|ladies)\b`)
)

// vocabulary is a closed word list with precompiled whole-word patterns
type vocabulary struct {
	words    []string
	patterns []*regexp.Regexp
}

func newVocabulary(words ...string) vocabulary {
	v := vocabulary{words: words, patterns: make([]*regexp.Regexp, len(words))}
	for i, w := range words {
		v.patterns[i] = wordPattern(w, false)
	}
	return v
}

// find returns the words that occur in q, in vocabulary order
func (v vocabulary) find(q string) []string {
	out := []string{}
	for i, re := range v.patterns {
		if re.MatchString(q) {
			out = append(out, v.words[i])
		}
	}
	return out
}

var colors = newVocabulary(
	"red", "blue", "green", "black", "white", "yellow", "pink", "purple", "orange",
	"brown", "grey", "gray", "navy", "silver", "gold", "beige",
)

var sizes = newVocabulary("xs", "small", "medium", "large", "xl", "xxl", "xxxl")

var genericTerms = map[string]bool{
	"product": true, "products": true, "item": true, "items": true,
	"thing": true, "things": true, "stuff": true, "something": true, "anything": true,
}

// IsGeneric reports whether term carries no product signal on its own
func IsGeneric(term string) bool {
	return genericTerms[strings.ToLower(strings.TrimSpace(term))]
}

var (
	amount = `[£$€]?\s*(\d+(?:\.\d+)?)`

	priceBetween = regexp.MustCompile(`(?i)\bbetween\s*` + amount + `\s*(?:and|to|-)\s*` + amount)
	priceUnder   = regexp.MustCompile(`(?i)\b(?:under|below|less than|up to)\s*` + amount)
	priceOver    = regexp.MustCompile(`(?i)\b(?:over|above|more than)\s*` + amount)

	// model-number-like tokens: 16GB, 4K, 120Hz, V2, i7, PS5
	variantToken = regexp.MustCompile(`(?i)\b(\d+(?:gb|tb|mb|hz|mp|mah|w|k)|v\d+(?:\.\d+)?|[a-z]{1,3}\d{1,4}[a-z]?)\b`)

	starRating = regexp.MustCompile(`(?i)\b([0-5](?:\.\d)?)\s*\+?\s*stars?\b`)
)

// keyword cues, checked in order
var (
	highRatingCues = wordsPattern("highly rated", "top rated", "best rated", "highest rated", "well rated", "best reviewed")
	goodRatingCues = wordsPattern("good reviews", "good rating", "good ratings", "well reviewed", "decent reviews")
	inStockCues    = wordsPattern("in stock", "available now", "available")

	sortPriceLowCues  = wordsPattern("cheapest", "lowest price", "least expensive", "cheap", "affordable", "budget")
	sortPriceHighCues = wordsPattern("most expensive", "highest price", "premium", "luxury")
	sortRatingCues    = wordsPattern("best rated", "top rated", "highest rated", "best reviewed")
)

// consumedSignals are the cue patterns whose matches become filters, sort orders or attributes.
// Price patterns come first so their amounts are not read as variant tokens.
var consumedSignals = concat(
	[]*regexp.Regexp{
		priceBetween, priceUnder, priceOver, starRating,
		highRatingCues, goodRatingCues, inStockCues,
		sortPriceLowCues, sortPriceHighCues, sortRatingCues,
		maleIndicators, femaleIndicators, variantToken,
	},
	colors.patterns,
	sizes.patterns,
)

// fillerWords carry no product meaning once the signals are removed
var fillerWords = map[string]bool{
	"a": true, "an": true, "the": true, "and": true, "or": true, "of": true, "for": true,
	"to": true, "in": true, "on": true, "with": true, "at": true, "by": true, "from": true,
	"i": true, "i'm": true, "im": true, "me": true, "my": true, "we": true, "you": true,
	"is": true, "are": true, "do": true, "have": true, "can": true, "that": true, "what": true,
	"show": true, "find": true, "get": true, "buy": true, "want": true, "need": true,
	"looking": true, "look": true, "search": true, "see": true, "please": true,
	"some": true, "any": true, "all": true, "new": true,
	"price": true, "priced": true, "cost": true, "costs": true, "costing": true,
}

func wordsPattern(phrases ...string) *regexp.Regexp {
	quoted := make([]string, len(phrases))
	for i, p := range phrases {
		quoted[i] = regexp.QuoteMeta(p)
	}
	return regexp.MustCompile(`(?i)\b(` + strings.Join(quoted, "|") + `)\b`)
}

func concat[T any](parts ...[]T) []T {
	var out []T
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
