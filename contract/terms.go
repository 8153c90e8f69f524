/*
terms.go - Cancellation and attrition term resolution

PURPOSE:
  Turns a contract version's policies into the concrete terms applicable at
  a point in time: "cancel today and this penalty applies", "release rooms
  today and this reduction is free, beyond it this charge applies". Both
  resolutions ride the same threshold lookup (engine.ResolveRule); the
  reference is whole days between the change instant and the service date.

DETERMINISM:
  The change instant is an explicit argument. The engine reads no clocks,
  so resolving the same cancellation twice yields the same term.

SEE ALSO:
  - rules.go: The rule and penalty types
  - engine/temporal.go: The shared lookup
*/
package contract

import (
	"github.com/shopspring/decimal"
	"github.com/voyago/tariff-engine/engine"
)

// =============================================================================
// CANCELLATION TERMS
// =============================================================================

// CancellationTerm is the penalty applicable to a cancellation at a given
// distance from the service date.
type CancellationTerm struct {
	// Free is set when the resolved penalty costs nothing.
	Free bool

	PenaltyPercent *decimal.Decimal
	PenaltyAmount  *decimal.Decimal
	Description    string

	// DaysBefore is the threshold of the resolved rule.
	DaysBefore int
}

// ResolveCancellationTerm resolves the penalty tier for cancelling at
// cancelAt a booking serviced on serviceDate.
func ResolveCancellationTerm(version ContractVersion, cancelAt, serviceDate engine.Date) (CancellationTerm, error) {
	daysBefore := engine.DaysBetween(cancelAt, serviceDate)

	rule, err := engine.ResolveRule(version.Cancellation.Rules, daysBefore)
	if err != nil {
		return CancellationTerm{}, err
	}

	term := CancellationTerm{
		Free:        rule.Penalty.IsFree(),
		Description: rule.Description,
		DaysBefore:  rule.DaysBefore,
	}
	if percent, ok := rule.Penalty.Percent(); ok {
		term.PenaltyPercent = &percent
	}
	if amount, ok := rule.Penalty.Amount(); ok {
		term.PenaltyAmount = &amount
	}
	return term, nil
}

// CancellationCharge applies a resolved term to a booking value: the percent
// component over the value plus the absolute component.
func CancellationCharge(term CancellationTerm, bookingValue engine.Money) engine.Money {
	charge := bookingValue.Zero()
	if term.PenaltyPercent != nil {
		charge = engine.ApplyPercent(bookingValue, *term.PenaltyPercent)
	}
	if term.PenaltyAmount != nil {
		charge = engine.NewMoneyFromDecimal(charge.Amount.Add(*term.PenaltyAmount), bookingValue.Currency)
	}
	return charge
}

// =============================================================================
// ATTRITION TERMS
// =============================================================================

// AttritionTerm is the reduction allowance and penalty applicable to a
// quantity change at a given distance from the service date.
type AttritionTerm struct {
	// AllowedReductionPercent of BasisQuantity may be released free of
	// charge. Under a cumulative policy this includes allowances from more
	// lenient tiers already passed.
	AllowedReductionPercent decimal.Decimal

	// AllowedUnits is the allowance in whole units, capped so the block
	// never drops below the policy's minimum quantity.
	AllowedUnits int

	// BasisQuantity is the quantity the percent applies to, per the
	// policy's calculation basis.
	BasisQuantity int

	PenaltyPerUnit *decimal.Decimal
	PenaltyPercent *decimal.Decimal
	Description    string

	DaysBefore int
}

// ResolveAttritionTerm resolves the attrition tier for a quantity change at
// changeAt against a service on serviceDate. currentQty and originalQty feed
// the policy's calculation basis.
func ResolveAttritionTerm(version ContractVersion, changeAt, serviceDate engine.Date, currentQty, originalQty int) (AttritionTerm, error) {
	policy := version.Attrition
	if !policy.Enabled {
		return AttritionTerm{}, engine.ErrNotApplicable
	}

	daysBefore := engine.DaysBetween(changeAt, serviceDate)
	rule, err := engine.ResolveRule(policy.Rules, daysBefore)
	if err != nil {
		return AttritionTerm{}, err
	}

	allowed := rule.AllowedReductionPercent
	if policy.Cumulative {
		// Tiers already passed (larger thresholds) stack their allowances
		// onto the resolved tier.
		allowed = decimal.Zero
		for _, r := range policy.Rules {
			if r.DaysBefore >= rule.DaysBefore {
				allowed = allowed.Add(r.AllowedReductionPercent)
			}
		}
	}

	basis := currentQty
	if policy.CalculationBasis == BasisOriginalQuantity {
		basis = originalQty
	}

	term := AttritionTerm{
		AllowedReductionPercent: allowed,
		BasisQuantity:           basis,
		AllowedUnits:            allowedUnits(basis, allowed, policy.MinimumQuantity),
		Description:             rule.Description,
		DaysBefore:              rule.DaysBefore,
	}
	if amount, ok := rule.Penalty.Amount(); ok {
		term.PenaltyPerUnit = &amount
	}
	if percent, ok := rule.Penalty.Percent(); ok {
		term.PenaltyPercent = &percent
	}
	return term, nil
}

// allowedUnits converts the percent allowance to whole units, never letting
// the block shrink below the contractual minimum.
func allowedUnits(basis int, allowedPercent decimal.Decimal, minimumQuantity int) int {
	units := int(decimal.NewFromInt(int64(basis)).
		Mul(allowedPercent).
		Div(decimal.NewFromInt(100)).
		IntPart())

	if minimumQuantity > 0 {
		maxReduction := basis - minimumQuantity
		if maxReduction < 0 {
			maxReduction = 0
		}
		if units > maxReduction {
			units = maxReduction
		}
	}
	return units
}

// =============================================================================
// OPERATIONAL TERM CHECKS
// =============================================================================

const hoursPerDay = 24

// CheckBookingWindow validates a prospective booking against the version's
// operational terms: lead time, advance-booking maximum, and service length
// bounds. Returns the first violation as a typed error, or nil.
func CheckBookingWindow(version ContractVersion, bookAt, serviceDate engine.Date, serviceDays int) error {
	terms := version.Operational
	leadDays := engine.DaysBetween(bookAt, serviceDate)

	if minDays := int(terms.LeadTime.Hours() / hoursPerDay); minDays > 0 && leadDays < minDays {
		return &engine.BookingWindowError{
			Term:    "lead_time",
			Message: "booking closer to the service date than the contractual lead time",
		}
	}
	if maxDays := int(terms.AdvanceBooking.Hours() / hoursPerDay); maxDays > 0 && leadDays > maxDays {
		return &engine.BookingWindowError{
			Term:    "advance_booking",
			Message: "booking further ahead than the contract allows",
		}
	}
	if terms.MinServiceLength > 0 && serviceDays < terms.MinServiceLength {
		return &engine.BookingWindowError{
			Term:    "min_length",
			Message: "service shorter than the contractual minimum",
		}
	}
	if terms.MaxServiceLength > 0 && serviceDays > terms.MaxServiceLength {
		return &engine.BookingWindowError{
			Term:    "max_length",
			Message: "service longer than the contractual maximum",
		}
	}
	return nil
}
