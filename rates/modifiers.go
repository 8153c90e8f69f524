/*
modifiers.go - The rate modifier pipeline

PURPOSE:
  Applies seasonal, length-of-stay, advance-purchase, day-of-week, and
  volume modifiers to a resolved base price. Order is fixed and documented;
  each matching entry compounds a multiplicative factor (1 + percent/100)
  onto the running total. Compounding, not summing, keeps every percentage
  relative to a single well-defined base.

PIPELINE ORDER:
  1. seasonal          stay dates intersect the modifier's date list
  2. length_based      stay length vs threshold/threshold type
  3. advance_purchase  days between booking and stay start vs days_advance
  4. day_of_week       per-weekday percent, applied per matching night
  5. volume_based      quantity vs threshold

  A category with no matching entry contributes a factor of 1. The applied
  factors are returned in order for auditability.

DAY-OF-WEEK NOTE:
  The weekday adjustment is per-night, not per-total: a Friday +20% only
  scales Friday nights. The pipeline folds the per-night result into a
  single effective factor so the applied-factor list stays uniform.

SEE ALSO:
  - pricing.go: Produces the PriceBreakdown this pipeline adjusts
*/
package rates

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/voyago/tariff-engine/engine"
)

// =============================================================================
// MODIFIER CATEGORIES
// =============================================================================

type SeasonalAdjustment struct {
	Name    string
	Dates   []engine.Date
	Percent decimal.Decimal
}

// Matches reports whether any stay date falls in the adjustment's date list.
func (s SeasonalAdjustment) Matches(stay engine.DateRange) bool {
	for _, d := range s.Dates {
		if stay.Contains(d) {
			return true
		}
	}
	return false
}

type LengthThresholdType string

const (
	LengthAtLeast LengthThresholdType = "at_least"
	LengthAtMost  LengthThresholdType = "at_most"
)

type LengthAdjustment struct {
	Name          string
	Threshold     int
	ThresholdType LengthThresholdType
	Percent       decimal.Decimal
}

func (l LengthAdjustment) Matches(nights int) bool {
	switch l.ThresholdType {
	case LengthAtMost:
		return nights <= l.Threshold
	default: // at_least or unset
		return nights >= l.Threshold
	}
}

type AdvancePurchaseAdjustment struct {
	Name        string
	DaysAdvance int
	Percent     decimal.Decimal
}

func (a AdvancePurchaseAdjustment) Matches(daysAdvance int) bool {
	return daysAdvance >= a.DaysAdvance
}

type DayOfWeekAdjustment struct {
	Enabled  bool
	Percents map[time.Weekday]decimal.Decimal
}

type VolumeAdjustment struct {
	Name      string
	Threshold int
	Percent   decimal.Decimal
}

func (v VolumeAdjustment) Matches(quantity int) bool {
	return quantity >= v.Threshold
}

// RateModifiers bundles the five categories configured on a contract version.
type RateModifiers struct {
	Seasonal        []SeasonalAdjustment
	LengthBased     []LengthAdjustment
	AdvancePurchase []AdvancePurchaseAdjustment
	DayOfWeek       DayOfWeekAdjustment
	VolumeBased     []VolumeAdjustment
}

// =============================================================================
// PIPELINE
// =============================================================================

// ModifierContext carries the booking facts the pipeline matches against.
// BookedAt is passed explicitly - the engine reads no clocks.
type ModifierContext struct {
	Stay     engine.DateRange
	BookedAt engine.Date
	Quantity int
}

// AppliedModifier records one compounded factor, in application order.
type AppliedModifier struct {
	Category string
	Name     string
	Factor   decimal.Decimal
}

var one = decimal.NewFromInt(1)

// ApplyModifiers compounds the matching modifiers onto the breakdown's
// subtotal in the fixed pipeline order and returns a new breakdown with the
// adjusted total and the ordered factor list. The input is not mutated.
func ApplyModifiers(breakdown PriceBreakdown, mods RateModifiers, ctx ModifierContext) PriceBreakdown {
	out := breakdown
	out.Adjustments = nil
	total := breakdown.Subtotal.Amount

	apply := func(category, name string, factor decimal.Decimal) {
		total = total.Mul(factor)
		out.Adjustments = append(out.Adjustments, AppliedModifier{
			Category: category,
			Name:     name,
			Factor:   factor,
		})
	}

	for _, s := range mods.Seasonal {
		if s.Matches(ctx.Stay) {
			apply("seasonal", s.Name, engine.PercentFactor(s.Percent))
		}
	}

	nights := ctx.Stay.Nights()
	for _, l := range mods.LengthBased {
		if l.Matches(nights) {
			apply("length_based", l.Name, engine.PercentFactor(l.Percent))
		}
	}

	daysAdvance := engine.DaysBetween(ctx.BookedAt, ctx.Stay.From)
	for _, a := range mods.AdvancePurchase {
		if a.Matches(daysAdvance) {
			apply("advance_purchase", a.Name, engine.PercentFactor(a.Percent))
		}
	}

	if factor, ok := dayOfWeekFactor(breakdown, mods.DayOfWeek); ok {
		apply("day_of_week", "weekday adjustment", factor)
	}

	for _, v := range mods.VolumeBased {
		if v.Matches(ctx.Quantity) {
			apply("volume_based", v.Name, engine.PercentFactor(v.Percent))
		}
	}

	out.Total = engine.NewMoneyFromDecimal(total, breakdown.Currency)
	return out
}

// dayOfWeekFactor folds the per-night weekday adjustment into one effective
// factor over the whole subtotal. Prior pipeline factors scale all lines
// uniformly, so the per-line proportions of the base breakdown still hold.
func dayOfWeekFactor(breakdown PriceBreakdown, adj DayOfWeekAdjustment) (decimal.Decimal, bool) {
	if !adj.Enabled || len(adj.Percents) == 0 {
		return one, false
	}

	base := decimal.Zero
	adjusted := decimal.Zero
	touched := false
	for _, line := range breakdown.Lines {
		base = base.Add(line.Amount.Amount)
		if line.Date == nil {
			adjusted = adjusted.Add(line.Amount.Amount)
			continue
		}
		if percent, ok := adj.Percents[line.Date.Weekday()]; ok {
			adjusted = adjusted.Add(line.Amount.Amount.Mul(engine.PercentFactor(percent)))
			touched = true
		} else {
			adjusted = adjusted.Add(line.Amount.Amount)
		}
	}

	if !touched || base.IsZero() {
		return one, false
	}
	return adjusted.Div(base), true
}
