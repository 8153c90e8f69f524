/*
margin.go - Margin and markup calculations

PURPOSE:
  Combines a resolved price with a cost basis to report profitability, and
  derives selling prices from cost + markup for pricing-assistant workflows.
  PriceFromMarkup and MarkupFromPrice are symmetric: editing either the
  markup or the price keeps the other consistent (last writer wins on
  whichever field the caller edited).

MARGIN SEMANTICS:
  margin           = price - cost
  margin_percent   = margin / cost * 100      (nil when cost is zero or absent)

SEE ALSO:
  - pricing.go: Produces the price side of the calculation
*/
package rates

import (
	"github.com/shopspring/decimal"
	"github.com/voyago/tariff-engine/engine"
)

// =============================================================================
// MARGIN RESULT
// =============================================================================

// MarginResult reports profitability. MarginPercent is nil when the cost is
// zero or absent - a percentage of nothing is undefined, not zero.
type MarginResult struct {
	Cost          *engine.Money
	Price         engine.Money
	Margin        engine.Money
	MarginPercent *decimal.Decimal
}

// =============================================================================
// CALCULATIONS
// =============================================================================

// ComputeMargin reports margin amount and percentage for a price against an
// optional cost basis. A nil cost yields margin == price with no percentage.
func ComputeMargin(price engine.Money, cost *engine.Money) (MarginResult, error) {
	if cost == nil {
		return MarginResult{Price: price, Margin: price}, nil
	}
	margin, err := price.Sub(*cost)
	if err != nil {
		return MarginResult{}, err
	}

	result := MarginResult{Cost: cost, Price: price, Margin: margin}
	if cost.Amount.IsPositive() {
		percent := margin.Amount.Div(cost.Amount).Mul(decimal.NewFromInt(100))
		result.MarginPercent = &percent
	}
	return result, nil
}

// PriceFromMarkup derives a selling price from cost and markup percent:
// cost * (1 + markup/100).
func PriceFromMarkup(cost engine.Money, markupPercent decimal.Decimal) engine.Money {
	return cost.Mul(engine.PercentFactor(markupPercent))
}

// MarkupFromPrice derives the markup percent implied by a price:
// (price - cost) / cost * 100, or zero when the cost is not positive.
func MarkupFromPrice(cost, price engine.Money) decimal.Decimal {
	if !cost.Amount.IsPositive() {
		return decimal.Zero
	}
	return price.Amount.Sub(cost.Amount).Div(cost.Amount).Mul(decimal.NewFromInt(100))
}

// ApplyMarkup prices a cost under the rate's configured markup. MarkupNone
// returns the cost unchanged.
func ApplyMarkup(rate SellingRate, cost engine.Money) engine.Money {
	switch rate.MarkupType {
	case MarkupPercentage:
		return PriceFromMarkup(cost, rate.MarkupAmount)
	case MarkupFixedAmount:
		return engine.NewMoneyFromDecimal(cost.Amount.Add(rate.MarkupAmount), cost.Currency)
	default:
		return cost
	}
}

// RateMargin reports profitability of a resolved total against the rate's
// target cost, when one is configured.
func RateMargin(rate SellingRate, total engine.Money) (MarginResult, error) {
	if rate.TargetCost == nil {
		return ComputeMargin(total, nil)
	}
	cost := rate.Money(*rate.TargetCost)
	return ComputeMargin(total, &cost)
}
