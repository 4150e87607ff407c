// Package core holds the domain model of the finance service: money,
// dates, expenses, budget aggregates, goals, tasks and profiles, plus
// the validation rules they carry.
package core

import (
	"math"

	"github.com/shopspring/decimal"
)

// Money is an amount in integer cents. Calculations stay in cents to
// avoid floating-point drift; decimal conversion happens only at the
// API and provider boundaries.
type Money struct {
	Cents int64
}

var centsFactor = decimal.NewFromInt(100)

// MoneyFromDecimal converts a decimal amount of currency units to cents,
// rounding half-up on the third decimal place.
func MoneyFromDecimal(d decimal.Decimal) Money {
	return Money{Cents: d.Mul(centsFactor).Round(0).IntPart()}
}

// ParseMoney parses a decimal string ("12.34") into cents.
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, &ValidationError{Field: "amount", Reason: "invalid amount"}
	}
	return MoneyFromDecimal(d), nil
}

// Decimal returns the amount as currency units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.NewFromInt(m.Cents).Div(centsFactor)
}

// String formats the amount as a plain decimal, e.g. "12.34".
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// Add returns m + other.
func (m Money) Add(other Money) Money {
	return Money{Cents: m.Cents + other.Cents}
}

// Sub returns m - other.
func (m Money) Sub(other Money) Money {
	return Money{Cents: m.Cents - other.Cents}
}

// Neg flips the sign, used when normalizing provider amounts.
func (m Money) Neg() Money {
	return Money{Cents: -m.Cents}
}

// Percent computes round(part/whole*100). A zero whole yields 0 so that
// callers never divide by zero on empty budgets or targets.
func Percent(part, whole int64) int {
	if whole == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(whole) * 100))
}
