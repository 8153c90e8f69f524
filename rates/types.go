/*
Package rates provides the selling-rate side of the tariff resolution engine.

PURPOSE:
  Models customer-facing price definitions (selling rates) and computes the
  effective price of a stay or booking under a rate's pricing rules: daily
  overrides, occupancy multipliers, extras, rate modifiers, markup, and
  margin. Everything here is a pure function of its inputs - the persistence
  collaborator owns the records, this package only reads snapshots.

KEY CONCEPTS IN THIS FILE (types.go):
  - SellingRate: A price definition for a product option, valid over a range
  - RateBasis: How the base price is counted (per night, per person, ...)
  - DailyRate: A per-calendar-date override that supersedes the base price
  - OccupancyPricing: A multiplier keyed on exact party composition
  - Extra: A named add-on priced alongside the stay

DESIGN PRINCIPLES:
  1. Exactness: Occupancy matching is exact-only; nearest-match risks silent
     mispricing
  2. Precision: decimal.Decimal for all money and percent math
  3. Immutability: Resolution never mutates a rate

SEE ALSO:
  - pricing.go: Base price resolution
  - modifiers.go: The rate modifier pipeline
  - margin.go: Margin and markup calculations
*/
package rates

import (
	"github.com/shopspring/decimal"
	"github.com/voyago/tariff-engine/engine"
)

// =============================================================================
// OCCUPANCY - Party composition
// =============================================================================

type Occupancy struct {
	Adults   int
	Children int
}

func (o Occupancy) Persons() int { return o.Adults + o.Children }

// =============================================================================
// RATE BASIS - How the base price is counted
// =============================================================================

type RateBasis string

const (
	BasisPerNight   RateBasis = "per_night"
	BasisPerPerson  RateBasis = "per_person"
	BasisPerUnit    RateBasis = "per_unit"
	BasisPerBooking RateBasis = "per_booking"
	BasisPerDay     RateBasis = "per_day"
	BasisPerVehicle RateBasis = "per_vehicle"
)

// DateExpanded reports whether pricing walks each date of the stay (nightly
// or daily bases) rather than pricing a single unit.
func (b RateBasis) DateExpanded() bool {
	return b == BasisPerNight || b == BasisPerDay
}

func (b RateBasis) Valid() bool {
	switch b {
	case BasisPerNight, BasisPerPerson, BasisPerUnit, BasisPerBooking, BasisPerDay, BasisPerVehicle:
		return true
	}
	return false
}

// =============================================================================
// MARKUP
// =============================================================================

type MarkupType string

const (
	MarkupNone        MarkupType = "none"
	MarkupPercentage  MarkupType = "percentage"
	MarkupFixedAmount MarkupType = "fixed_amount"
)

// =============================================================================
// PRICING DETAILS - The fine print of a selling rate
// =============================================================================

// DailyRate is a per-calendar-date price override. When the requested party
// composition has an entry in OccupancyPrices, that price wins over the flat
// override price.
type DailyRate struct {
	Price           decimal.Decimal
	PricingTier     string // e.g. "standard", "peak", "event"
	EventContext    string // Optional, e.g. "Independence Day weekend"
	OccupancyPrices map[Occupancy]decimal.Decimal
}

// OccupancyPricing multiplies the per-unit price for an exact party
// composition.
type OccupancyPricing struct {
	Adults      int
	Children    int
	Multiplier  decimal.Decimal
	Description string
}

// Extra is a named add-on (airport transfer, late checkout, ...).
type Extra struct {
	Name         string
	Price        decimal.Decimal
	Availability string
}

// PricingDetails carries the per-rate pricing configuration.
type PricingDetails struct {
	// DailyRates is keyed by ISO date ("2006-01-02").
	DailyRates map[string]DailyRate

	OccupancyPricing []OccupancyPricing
	Extras           []Extra

	// MinimumNights/MaximumNights bound date-expanded stays. Zero = unset.
	MinimumNights int
	MaximumNights int

	// Free-text overrides surfaced to the UI, not interpreted by the engine.
	CancellationPolicy string
	PaymentTerms       string

	Inclusions []string
}

// DailyOverride returns the override for a date, if any.
func (p PricingDetails) DailyOverride(d engine.Date) (DailyRate, bool) {
	dr, ok := p.DailyRates[d.String()]
	return dr, ok
}

// MatchOccupancy finds the entry exactly matching the party composition.
func (p PricingDetails) MatchOccupancy(o Occupancy) (OccupancyPricing, bool) {
	for _, op := range p.OccupancyPricing {
		if op.Adults == o.Adults && op.Children == o.Children {
			return op, true
		}
	}
	return OccupancyPricing{}, false
}

// FindExtra returns the configured extra with the given name.
func (p PricingDetails) FindExtra(name string) (Extra, bool) {
	for _, e := range p.Extras {
		if e.Name == name {
			return e, true
		}
	}
	return Extra{}, false
}

// =============================================================================
// SELLING RATE
// =============================================================================

// SellingRate is a customer-facing price definition for a product option,
// valid over the half-open window [ValidFrom, ValidTo).
type SellingRate struct {
	ID              engine.RateID
	ProductOptionID engine.ProductOptionID

	ValidFrom engine.Date
	ValidTo   engine.Date

	Basis     RateBasis
	BasePrice decimal.Decimal
	Currency  string

	// TargetCost is the cost basis for margin reporting, when known.
	TargetCost *decimal.Decimal

	MarkupType   MarkupType
	MarkupAmount decimal.Decimal

	IsActive bool

	Pricing PricingDetails
}

// Validity returns the rate's validity window as a range.
func (r SellingRate) Validity() engine.DateRange {
	return engine.DateRange{From: r.ValidFrom, To: r.ValidTo}
}

// Money wraps an amount in the rate's currency.
func (r SellingRate) Money(amount decimal.Decimal) engine.Money {
	return engine.NewMoneyFromDecimal(amount, r.Currency)
}
