package estimates

import (
	"github.com/shopspring/decimal"
)

var percentDivisor = decimal.NewFromInt(100)

// LineAmounts carries the exact (unrounded) money amounts for one line item.
type LineAmounts struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// ComputeLine calculates a line's subtotal, tax, and total. Tax applies each
// rate to the subtotal independently (no compounding). Nothing is rounded
// here; rounding happens once, on the grand total.
func ComputeLine(quantity int, unitPrice decimal.Decimal, rates []decimal.Decimal) LineAmounts {
	subtotal := unitPrice.Mul(decimal.NewFromInt(int64(quantity)))

	tax := decimal.Zero
	for _, rate := range rates {
		tax = tax.Add(subtotal.Mul(rate).Div(percentDivisor))
	}

	return LineAmounts{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal.Add(tax),
	}
}

// GrandTotal sums line totals at full precision and rounds half-up to two
// decimal places as the final step.
func GrandTotal(lines []LineAmounts) decimal.Decimal {
	sum := decimal.Zero
	for _, line := range lines {
		sum = sum.Add(line.Total)
	}
	return sum.Round(2)
}
