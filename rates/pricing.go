/*
pricing.go - Base price resolution

PURPOSE:
  Computes the base price of a stay or booking under a selling rate: nightly
  expansion with daily overrides for date-expanded bases, unit pricing for
  the others, exact-match occupancy multipliers, and extras. The output is a
  PriceBreakdown listing every resolved line so the host application can show
  its work.

RESOLUTION ORDER (per line):
  1. Daily per-occupancy override price (most specific)
  2. Daily override flat price
  3. Rate base price
  then the occupancy multiplier, when one matches.

VALIDATION:
  - The stay must lie within the rate's validity window
  - The rate must be active
  - Date-expanded stays must respect minimum/maximum nights
  - A non-empty occupancy configuration must match exactly, or resolution
    fails - no nearest-match fallback

SEE ALSO:
  - modifiers.go: Adjusts the breakdown's subtotal
  - margin.go: Profitability over the resolved price
*/
package rates

import (
	"github.com/shopspring/decimal"
	"github.com/voyago/tariff-engine/engine"
)

// =============================================================================
// PRICE BREAKDOWN - Engine output, never persisted
// =============================================================================

// PriceLine is one resolved night or unit.
type PriceLine struct {
	// Date is set for date-expanded bases, nil otherwise.
	Date *engine.Date

	Description string
	UnitPrice   engine.Money

	// Multiplier is the occupancy multiplier applied to this line (1 when
	// none matched, or the person count for per-person pricing).
	Multiplier decimal.Decimal

	Amount engine.Money
}

// PriceBreakdown is the full audit trail of a price resolution.
type PriceBreakdown struct {
	RateID   engine.RateID
	Basis    RateBasis
	Currency string

	Lines    []PriceLine
	Subtotal engine.Money

	// Adjustments and Total are filled by the modifier pipeline; until then
	// Total equals Subtotal and Adjustments is empty.
	Adjustments []AppliedModifier
	Total       engine.Money
}

// =============================================================================
// BASE PRICE RESOLUTION
// =============================================================================

// ResolveBasePrice computes the nightly/unit prices for a stay and produces
// a subtotal. Pure: identical inputs always yield an identical breakdown.
func ResolveBasePrice(rate SellingRate, stay engine.DateRange, occupancy Occupancy) (*PriceBreakdown, error) {
	if err := stay.Validate(); err != nil {
		return nil, err
	}
	if !rate.IsActive {
		return nil, engine.ErrRateInactive
	}
	if !stay.Within(rate.Validity()) {
		return nil, &engine.RateNotValidError{
			RateID:    rate.ID,
			Requested: stay,
			ValidFrom: rate.ValidFrom,
			ValidTo:   rate.ValidTo,
		}
	}

	multiplier, err := occupancyMultiplier(rate.Pricing, occupancy)
	if err != nil {
		return nil, err
	}

	breakdown := &PriceBreakdown{
		RateID:   rate.ID,
		Basis:    rate.Basis,
		Currency: rate.Currency,
	}

	if rate.Basis.DateExpanded() {
		if err := checkStayLength(rate.Pricing, stay.Nights()); err != nil {
			return nil, err
		}
		for _, date := range stay.Dates() {
			line := nightlyLine(rate, date, occupancy, multiplier)
			breakdown.Lines = append(breakdown.Lines, line)
		}
	} else {
		breakdown.Lines = append(breakdown.Lines, unitLine(rate, occupancy, multiplier))
	}

	subtotal := decimal.Zero
	for _, line := range breakdown.Lines {
		subtotal = subtotal.Add(line.Amount.Amount)
	}
	breakdown.Subtotal = rate.Money(subtotal)
	breakdown.Total = breakdown.Subtotal
	return breakdown, nil
}

// ResolvePriceWithExtras resolves the base price, then adds the selected
// extras (by configured name) as additional lines.
func ResolvePriceWithExtras(rate SellingRate, stay engine.DateRange, occupancy Occupancy, extras []string) (*PriceBreakdown, error) {
	breakdown, err := ResolveBasePrice(rate, stay, occupancy)
	if err != nil {
		return nil, err
	}

	subtotal := breakdown.Subtotal.Amount
	for _, name := range extras {
		extra, ok := rate.Pricing.FindExtra(name)
		if !ok {
			return nil, engine.ErrUnknownExtra
		}
		breakdown.Lines = append(breakdown.Lines, PriceLine{
			Description: "extra: " + extra.Name,
			UnitPrice:   rate.Money(extra.Price),
			Multiplier:  decimal.NewFromInt(1),
			Amount:      rate.Money(extra.Price),
		})
		subtotal = subtotal.Add(extra.Price)
	}
	breakdown.Subtotal = rate.Money(subtotal)
	breakdown.Total = breakdown.Subtotal
	return breakdown, nil
}

// occupancyMultiplier resolves the multiplier for the requested composition.
// An empty configuration applies no multiplier; a non-empty one must match
// exactly.
func occupancyMultiplier(pricing PricingDetails, occupancy Occupancy) (decimal.Decimal, error) {
	if len(pricing.OccupancyPricing) == 0 {
		return decimal.NewFromInt(1), nil
	}
	match, ok := pricing.MatchOccupancy(occupancy)
	if !ok {
		return decimal.Decimal{}, &engine.NoMatchingOccupancyError{
			Adults:   occupancy.Adults,
			Children: occupancy.Children,
		}
	}
	return match.Multiplier, nil
}

func checkStayLength(pricing PricingDetails, nights int) error {
	if pricing.MinimumNights > 0 && nights < pricing.MinimumNights {
		return &engine.StayLengthError{Nights: nights, Min: pricing.MinimumNights, Max: pricing.MaximumNights}
	}
	if pricing.MaximumNights > 0 && nights > pricing.MaximumNights {
		return &engine.StayLengthError{Nights: nights, Min: pricing.MinimumNights, Max: pricing.MaximumNights}
	}
	return nil
}

// nightlyLine resolves one night: daily per-occupancy price, then daily flat
// override, then base price, then the occupancy multiplier.
func nightlyLine(rate SellingRate, date engine.Date, occupancy Occupancy, multiplier decimal.Decimal) PriceLine {
	price := rate.BasePrice
	description := "base rate"

	if override, ok := rate.Pricing.DailyOverride(date); ok {
		price = override.Price
		description = "daily override"
		if override.PricingTier != "" {
			description = "daily override (" + override.PricingTier + ")"
		}
		if occPrice, ok := override.OccupancyPrices[occupancy]; ok {
			price = occPrice
			description = "daily occupancy price"
		}
	}

	d := date
	return PriceLine{
		Date:        &d,
		Description: description,
		UnitPrice:   rate.Money(price),
		Multiplier:  multiplier,
		Amount:      rate.Money(price.Mul(multiplier)),
	}
}

// unitLine resolves a non-date-expanded booking. Per-person pricing
// multiplies by the person count unless an occupancy configuration matched.
func unitLine(rate SellingRate, occupancy Occupancy, multiplier decimal.Decimal) PriceLine {
	if rate.Basis == BasisPerPerson && len(rate.Pricing.OccupancyPricing) == 0 {
		persons := decimal.NewFromInt(int64(occupancy.Persons()))
		return PriceLine{
			Description: string(rate.Basis),
			UnitPrice:   rate.Money(rate.BasePrice),
			Multiplier:  persons,
			Amount:      rate.Money(rate.BasePrice.Mul(persons)),
		}
	}

	return PriceLine{
		Description: string(rate.Basis),
		UnitPrice:   rate.Money(rate.BasePrice),
		Multiplier:  multiplier,
		Amount:      rate.Money(rate.BasePrice.Mul(multiplier)),
	}
}
