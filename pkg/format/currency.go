// Package format renders valuation figures for human-readable output.
package format

import (
	"strings"

	"github.com/iwvelando/corporate-valuation/pkg/constants"
	"github.com/shopspring/decimal"
)

// Currency returns a currency string with a dollar sign and thousands separators (e.g., "-$1,234.56").
func Currency(amount float64) string {
	d := decimal.NewFromFloat(amount).Round(constants.DecimalPlaces)
	if d.IsNegative() {
		return "-$" + groupThousands(d.Neg())
	}
	return "$" + groupThousands(d)
}

// Percent renders a decimal rate as a percentage (0.0525 -> "5.25%").
func Percent(rate float64) string {
	return decimal.NewFromFloat(rate).
		Mul(decimal.NewFromFloat(constants.PercentageMultiplier)).
		StringFixed(constants.DecimalPlaces) + "%"
}

// Multiple renders a valuation multiple with one decimal (8 -> "8.0x").
func Multiple(m float64) string {
	return decimal.NewFromFloat(m).StringFixed(1) + "x"
}

func groupThousands(d decimal.Decimal) string {
	formatted := d.StringFixed(constants.DecimalPlaces)
	intPart, decPart, _ := strings.Cut(formatted, ".")

	if len(intPart) > 3 {
		var builder strings.Builder
		for i, digit := range intPart {
			if i > 0 && (len(intPart)-i)%3 == 0 {
				builder.WriteByte(',')
			}
			builder.WriteRune(digit)
		}
		intPart = builder.String()
	}

	return intPart + "." + decPart
}

// Fixed renders amount with the report precision and no grouping, for
// machine-readable output.
func Fixed(amount float64) string {
	return decimal.NewFromFloat(amount).StringFixed(constants.DecimalPlaces)
}
