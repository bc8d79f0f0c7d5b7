// Package decimal holds the exact decimal helpers shared by the readers and
// writers. Amounts never pass through float64.
package decimal

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FromString parses decimal from string
func FromString(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.TrimSpace(s))
}

// Format renders d at full precision with trailing fractional zeros removed,
// then pads back to minScale fractional digits. minScale <= 0 disables padding.
//
//	Format(500.00, 0) == "500"
//	Format(500.00, 2) == "500.00"
//	Format(0.125, 2)  == "0.125"
func Format(d decimal.Decimal, minScale int) string {
	s := d.String()
	if minScale <= 0 {
		return s
	}
	if scaleOf(s) < minScale {
		return d.StringFixed(int32(minScale))
	}
	return s
}

func scaleOf(s string) int {
	if i := strings.IndexByte(s, '.'); i >= 0 {
		return len(s) - i - 1
	}
	return 0
}
