// Package money centralises monetary arithmetic. All amounts are decimals
// with two fractional digits; rounding is half-up, applied through Round2
// so tax and totals use the same rule.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// TaxRate is the fixed 12% sales tax applied to the taxable amount.
var TaxRate = decimal.RequireFromString("0.12")

var printer = message.NewPrinter(language.English)

// Zero is the canonical zero amount.
var Zero = decimal.Zero

// Round2 rounds to two fractional digits, half away from zero.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Tax computes the rounded tax owed on a taxable amount.
func Tax(taxable decimal.Decimal) decimal.Decimal {
	return Round2(taxable.Mul(TaxRate))
}

// Parse converts a decimal string into an amount, rejecting negatives.
func Parse(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("money: parse %q: %w", s, err)
	}
	if d.IsNegative() {
		return decimal.Decimal{}, fmt.Errorf("money: amount %q must not be negative", s)
	}
	return d, nil
}

// Format renders an amount with thousands separators and two decimals,
// e.g. "1,234.50". Used in report summaries and receipt emails.
func Format(d decimal.Decimal) string {
	f, _ := Round2(d).Float64()
	return printer.Sprint(number.Decimal(f, number.Scale(2)))
}
