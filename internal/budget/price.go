// Package budget turns a furniture collection into a priced, room-grouped
// aggregate and owns the mutations that keep that aggregate current.
package budget

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"

	"furniture-catalog/internal/domain"
)

// plainDecimal is the only shape ParsePrice accepts once symbols are stripped.
// Exponent notation is not a price.
var plainDecimal = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)$`)

// ParsePrice normalizes a free-text price. Currency symbols, thousands
// separators and whitespace are dropped; anything that is not then a plain
// decimal number is worth zero.
func ParsePrice(raw string) decimal.Decimal {
	cleaned := strings.Map(func(r rune) rune {
		if r == '$' || r == ',' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, raw)
	if !plainDecimal.MatchString(cleaned) {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// EffectiveQuantity is the quantity used for aggregation, never below one.
func EffectiveQuantity(q int) int {
	if q < 1 {
		return 1
	}
	return q
}

// LineTotal is the normalized price times the effective quantity.
func LineTotal(it domain.FurnitureItem) decimal.Decimal {
	return ParsePrice(it.Price).Mul(decimal.NewFromInt(int64(EffectiveQuantity(it.Quantity))))
}

// NewLineItem derives the monetary fields of one item.
func NewLineItem(it domain.FurnitureItem) domain.LineItem {
	qty := EffectiveQuantity(it.Quantity)
	unit := ParsePrice(it.Price)
	return domain.LineItem{
		Item:      it.Clone(),
		UnitPrice: unit,
		Quantity:  qty,
		LineTotal: unit.Mul(decimal.NewFromInt(int64(qty))),
	}
}

// FormatMoney renders d as dollars with a thousands separator, e.g. $1,234.56.
func FormatMoney(d decimal.Decimal) string {
	s := d.Abs().StringFixed(2)
	whole, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	if d.IsNegative() {
		b.WriteByte('-')
	}
	b.WriteByte('$')
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	b.WriteByte('.')
	b.WriteString(frac)
	return b.String()
}
