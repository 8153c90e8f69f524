/*
Package engine provides the core primitives for the tariff resolution engine.

PURPOSE:
  This package contains the domain-agnostic building blocks shared by the
  contract and rates layers: decimal money, day-granular dates, half-open
  date ranges, the threshold-based temporal rule lookup, and the error
  taxonomy. Whether resolving a cancellation penalty or repricing a stay,
  the same primitives carry the values.

KEY CONCEPTS IN THIS FILE (types.go):
  - Money: A decimal amount paired with an ISO-4217-like currency code
  - Percent: A percentage expressed as a decimal (25 means 25%)
  - Contract/Version/Rate IDs: Type-safe identifiers

DESIGN PRINCIPLES:
  1. Purity: Every entry point is a pure function of its explicit inputs
  2. Precision: Uses decimal.Decimal to avoid floating-point errors
  3. Type Safety: Strong typing for IDs prevents mixing contract/rate IDs
  4. Determinism: No hidden clock reads; callers pass every reference instant

USAGE:
  price := engine.NewMoney(100, "EUR")
  total := price.Mul(decimal.NewFromInt(3))

SEE ALSO:
  - date.go: Date points and half-open date ranges
  - temporal.go: Threshold-based rule lookup
  - errors.go: Engine error taxonomy
*/
package engine

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY - Decimal amount with currency
// =============================================================================

type Money struct {
	Amount   decimal.Decimal
	Currency string
}

func NewMoney(value float64, currency string) Money {
	return Money{Amount: decimal.NewFromFloat(value), Currency: currency}
}

func NewMoneyFromDecimal(value decimal.Decimal, currency string) Money {
	return Money{Amount: value, Currency: currency}
}

func MustParseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func (m Money) Zero() Money                  { return Money{Amount: decimal.Zero, Currency: m.Currency} }
func (m Money) IsZero() bool                 { return m.Amount.IsZero() }
func (m Money) IsNegative() bool             { return m.Amount.IsNegative() }
func (m Money) IsPositive() bool             { return m.Amount.IsPositive() }
func (m Money) Neg() Money                   { return Money{Amount: m.Amount.Neg(), Currency: m.Currency} }
func (m Money) Mul(s decimal.Decimal) Money  { return Money{Amount: m.Amount.Mul(s), Currency: m.Currency} }
func (m Money) GreaterThan(o Money) bool     { return m.Amount.GreaterThan(o.Amount) }
func (m Money) LessThan(o Money) bool        { return m.Amount.LessThan(o.Amount) }

// Add returns the sum of two amounts. Mixing currencies is a caller bug the
// engine refuses to paper over.
func (m Money) Add(o Money) (Money, error) {
	if m.Currency != o.Currency {
		return Money{}, &CurrencyMismatchError{Left: m.Currency, Right: o.Currency}
	}
	return Money{Amount: m.Amount.Add(o.Amount), Currency: m.Currency}, nil
}

// Sub returns the difference of two amounts, with the same currency check.
func (m Money) Sub(o Money) (Money, error) {
	if m.Currency != o.Currency {
		return Money{}, &CurrencyMismatchError{Left: m.Currency, Right: o.Currency}
	}
	return Money{Amount: m.Amount.Sub(o.Amount), Currency: m.Currency}, nil
}

func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.Amount.String(), m.Currency)
}

// =============================================================================
// PERCENT HELPERS
// =============================================================================

var oneHundred = decimal.NewFromInt(100)

// PercentFactor converts an adjustment percentage into a multiplicative
// factor: +10 -> 1.10, -5 -> 0.95.
func PercentFactor(percent decimal.Decimal) decimal.Decimal {
	return decimal.NewFromInt(1).Add(percent.Div(oneHundred))
}

// ApplyPercent scales an amount by a percentage: (100 EUR, 25) -> 25 EUR.
func ApplyPercent(m Money, percent decimal.Decimal) Money {
	return m.Mul(percent.Div(oneHundred))
}

// =============================================================================
// IDENTIFIERS
// =============================================================================

type ContractID string
type VersionID string
type RateID string
type ProductOptionID string
