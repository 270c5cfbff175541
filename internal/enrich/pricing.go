// Package enrich fills in item data before it reaches the budget engine:
// price guesses, product images, and bookmark imports.
package enrich

import (
	"net/url"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"furniture-catalog/internal/budget"
	"furniture-catalog/internal/domain"
)

// PriceRange is the expected price band for one kind of furniture.
type PriceRange struct {
	Min     int64
	Max     int64
	Typical int64
}

// DefaultPriceRanges maps furniture keywords to their usual price band.
var DefaultPriceRanges = map[string]PriceRange{
	// seating
	"sofa":      {599, 2999, 1299},
	"couch":     {599, 2999, 1299},
	"sectional": {999, 4999, 2499},
	"loveseat":  {399, 1999, 899},
	"chair":     {199, 999, 399},
	"recliner":  {399, 1999, 799},
	"ottoman":   {99, 599, 299},
	"bench":     {149, 799, 349},
	// tables
	"dining table": {599, 3999, 1499},
	"coffee table": {199, 1499, 599},
	"end table":    {99, 599, 249},
	"side table":   {99, 599, 249},
	"console":      {299, 1499, 699},
	"desk":         {299, 1999, 699},
	"nightstand":   {149, 799, 349},
	"buffet":       {599, 2499, 1199},
	// storage
	"dresser":   {399, 2499, 999},
	"chest":     {399, 1999, 799},
	"wardrobe":  {599, 2999, 1499},
	"bookshelf": {149, 999, 399},
	"bookcase":  {149, 999, 399},
	"cabinet":   {299, 1999, 799},
	"hutch":     {699, 2999, 1499},
	// bedroom
	"bed":       {599, 3999, 1599},
	"king bed":  {999, 4999, 1999},
	"queen bed": {699, 3499, 1499},
	"mattress":  {399, 2999, 999},
	"headboard": {199, 1499, 599},
	// lighting
	"lamp":       {49, 499, 149},
	"floor lamp": {99, 699, 249},
	"table lamp": {49, 399, 149},
	"chandelier": {299, 2999, 899},
	"pendant":    {99, 999, 349},
	// decor
	"mirror":   {99, 799, 299},
	"rug":      {199, 1999, 599},
	"curtains": {49, 499, 149},
	"artwork":  {99, 999, 299},
	"vase":     {29, 299, 79},
	// office
	"office chair":   {199, 1499, 499},
	"filing cabinet": {149, 799, 349},
	"standing desk":  {399, 1999, 899},
	// outdoor
	"patio":    {299, 1999, 799},
	"outdoor":  {199, 1499, 599},
	"umbrella": {99, 699, 299},
	"fire pit": {199, 1499, 599},
}

// DefaultStoreMultipliers scales a typical price by retailer.
var DefaultStoreMultipliers = map[string]float64{
	"restorationhardware.com": 2.5,
	"rh.com":                  2.5,
	"westelm.com":             1.8,
	"potterybarn.com":         1.8,
	"crateandbarrel.com":      1.6,
	"cb2.com":                 1.5,
	"dwr.com":                 2.0,
	"article.com":             1.4,
	"wayfair.com":             1.0,
	"overstock.com":           0.9,
	"homedepot.com":           0.9,
	"lowes.com":               0.9,
	"target.com":              0.8,
	"costco.com":              0.9,
	"ashleyfurniture.com":     1.1,
	"raymour-flanigan.com":    1.2,
	"ikea.com":                0.7,
	"amazon.com":              0.8,
	"walmart.com":             0.6,
	"biglots.com":             0.6,
	"etsy.com":                1.3,
	"facebook.com":            0.5,
	"craigslist.org":          0.4,
	"nextdoor.com":            0.5,
}

// Suggestion is a guessed price and how it was derived.
type Suggestion struct {
	Keyword    string
	Range      PriceRange
	Multiplier decimal.Decimal
	Amount     decimal.Decimal
}

// Price renders the suggestion the way users type prices, e.g. "$1,299".
func (s Suggestion) Price() string {
	p := budget.FormatMoney(s.Amount)
	return strings.TrimSuffix(p, ".00")
}

// PriceSuggester guesses prices from an item's title and store.
type PriceSuggester struct {
	keywords    []string
	ranges      map[string]PriceRange
	multipliers map[string]decimal.Decimal
}

// NewPriceSuggester builds a suggester over the given tables.
func NewPriceSuggester(ranges map[string]PriceRange, multipliers map[string]float64) *PriceSuggester {
	s := &PriceSuggester{
		ranges:      ranges,
		multipliers: make(map[string]decimal.Decimal, len(multipliers)),
	}
	for k := range ranges {
		s.keywords = append(s.keywords, k)
	}
	// Longest phrase first so "office chair" beats "chair".
	sort.Slice(s.keywords, func(i, j int) bool {
		if len(s.keywords[i]) != len(s.keywords[j]) {
			return len(s.keywords[i]) > len(s.keywords[j])
		}
		return s.keywords[i] < s.keywords[j]
	})
	for host, m := range multipliers {
		s.multipliers[host] = decimal.NewFromFloat(m)
	}
	return s
}

// DefaultPriceSuggester uses the built-in tables.
func DefaultPriceSuggester() *PriceSuggester {
	return NewPriceSuggester(DefaultPriceRanges, DefaultStoreMultipliers)
}

// Suggest returns a price guess for title sold at pageURL.
func (s *PriceSuggester) Suggest(title, pageURL string) (Suggestion, bool) {
	kw, ok := s.match(strings.ToLower(title))
	if !ok {
		return Suggestion{}, false
	}
	r := s.ranges[kw]
	mult := decimal.NewFromInt(1)
	if m, ok := s.multipliers[StoreFromURL(pageURL)]; ok {
		mult = m
	}
	return Suggestion{
		Keyword:    kw,
		Range:      r,
		Multiplier: mult,
		Amount:     decimal.NewFromInt(r.Typical).Mul(mult).Round(0),
	}, true
}

func (s *PriceSuggester) match(title string) (string, bool) {
	if title == "" {
		return "", false
	}
	for _, kw := range s.keywords {
		if strings.Contains(title, kw) {
			return kw, true
		}
	}
	for _, word := range strings.Fields(title) {
		if len(word) < 3 {
			continue
		}
		for _, kw := range s.keywords {
			if strings.Contains(kw, word) || strings.Contains(word, kw) {
				return kw, true
			}
		}
	}
	return "", false
}

// Enricher fills empty prices with a suggestion and flags them as suggested.
func (s *PriceSuggester) Enricher() budget.Enricher {
	return func(it *domain.FurnitureItem) bool {
		if strings.TrimSpace(it.Price) != "" {
			return false
		}
		sug, ok := s.Suggest(it.Title, it.URL)
		if !ok {
			return false
		}
		it.Price = sug.Price()
		it.PriceAutoSuggested = true
		return true
	}
}

// StoreFromURL returns the hostname of raw without a leading "www.".
func StoreFromURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}
