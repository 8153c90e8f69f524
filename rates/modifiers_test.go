package rates_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/voyago/tariff-engine/engine"
	"github.com/voyago/tariff-engine/rates"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func pct(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

func baseBreakdown(amount int) rates.PriceBreakdown {
	subtotal := engine.NewMoney(float64(amount), "EUR")
	return rates.PriceBreakdown{
		RateID:   "rate-1",
		Basis:    rates.BasisPerBooking,
		Currency: "EUR",
		Lines: []rates.PriceLine{
			{Description: "per booking", UnitPrice: subtotal, Multiplier: decimal.NewFromInt(1), Amount: subtotal},
		},
		Subtotal: subtotal,
		Total:    subtotal,
	}
}

func julyStay() engine.DateRange {
	return engine.DateRange{
		From: engine.NewDate(2024, time.July, 3),
		To:   engine.NewDate(2024, time.July, 5),
	}
}

// =============================================================================
// COMPOUNDING
// =============================================================================

func TestApplyModifiers_Compounding(t *testing.T) {
	// GIVEN: base 200, seasonal +10%, length-based -5%
	// WHEN: Both match
	// THEN: 200 x 1.10 x 0.95 = 209, factors in pipeline order

	mods := rates.RateModifiers{
		Seasonal: []rates.SeasonalAdjustment{
			{Name: "high season", Dates: []engine.Date{engine.NewDate(2024, time.July, 4)}, Percent: pct(10)},
		},
		LengthBased: []rates.LengthAdjustment{
			{Name: "weekend deal", Threshold: 2, ThresholdType: rates.LengthAtLeast, Percent: pct(-5)},
		},
	}
	ctx := rates.ModifierContext{Stay: julyStay(), BookedAt: engine.NewDate(2024, time.June, 1)}

	out := rates.ApplyModifiers(baseBreakdown(200), mods, ctx)

	if !out.Total.Amount.Equal(decimal.NewFromInt(209)) {
		t.Errorf("expected 209, got %s", out.Total.Amount)
	}
	if len(out.Adjustments) != 2 {
		t.Fatalf("expected 2 applied factors, got %d", len(out.Adjustments))
	}
	if out.Adjustments[0].Category != "seasonal" || out.Adjustments[1].Category != "length_based" {
		t.Errorf("expected seasonal before length_based, got %s then %s",
			out.Adjustments[0].Category, out.Adjustments[1].Category)
	}
}

func TestApplyModifiers_NoMatch_TotalUnchanged(t *testing.T) {
	// GIVEN: A seasonal modifier whose dates miss the stay entirely
	// WHEN: Applying the pipeline
	// THEN: Total equals subtotal and no factors are recorded

	mods := rates.RateModifiers{
		Seasonal: []rates.SeasonalAdjustment{
			{Name: "christmas", Dates: []engine.Date{engine.NewDate(2024, time.December, 25)}, Percent: pct(25)},
		},
	}

	out := rates.ApplyModifiers(baseBreakdown(200), mods, rates.ModifierContext{
		Stay: julyStay(), BookedAt: engine.NewDate(2024, time.June, 1),
	})

	if !out.Total.Amount.Equal(decimal.NewFromInt(200)) {
		t.Errorf("expected 200 untouched, got %s", out.Total.Amount)
	}
	if len(out.Adjustments) != 0 {
		t.Errorf("expected no applied factors, got %d", len(out.Adjustments))
	}
}

func TestApplyModifiers_InputNotMutated(t *testing.T) {
	in := baseBreakdown(200)
	mods := rates.RateModifiers{
		VolumeBased: []rates.VolumeAdjustment{{Name: "group", Threshold: 10, Percent: pct(-15)}},
	}

	_ = rates.ApplyModifiers(in, mods, rates.ModifierContext{
		Stay: julyStay(), BookedAt: engine.NewDate(2024, time.June, 1), Quantity: 12,
	})

	if !in.Total.Amount.Equal(decimal.NewFromInt(200)) || in.Adjustments != nil {
		t.Error("ApplyModifiers must not mutate its input")
	}
}

// =============================================================================
// PER-CATEGORY MATCHING
// =============================================================================

func TestLengthAdjustment_Matching(t *testing.T) {
	tests := []struct {
		name    string
		adj     rates.LengthAdjustment
		nights  int
		matches bool
	}{
		{"at_least met", rates.LengthAdjustment{Threshold: 7, ThresholdType: rates.LengthAtLeast}, 7, true},
		{"at_least missed", rates.LengthAdjustment{Threshold: 7, ThresholdType: rates.LengthAtLeast}, 6, false},
		{"at_most met", rates.LengthAdjustment{Threshold: 3, ThresholdType: rates.LengthAtMost}, 2, true},
		{"at_most missed", rates.LengthAdjustment{Threshold: 3, ThresholdType: rates.LengthAtMost}, 4, false},
		{"unset type defaults to at_least", rates.LengthAdjustment{Threshold: 5}, 5, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.adj.Matches(tt.nights); got != tt.matches {
				t.Errorf("Matches(%d) = %v, want %v", tt.nights, got, tt.matches)
			}
		})
	}
}

func TestAdvancePurchase_UsesBookedAt(t *testing.T) {
	// GIVEN: An advance-purchase modifier requiring 30 days, -10%
	// WHEN: Booked 32 days out vs 10 days out
	// THEN: Only the early booking gets the factor

	mods := rates.RateModifiers{
		AdvancePurchase: []rates.AdvancePurchaseAdjustment{
			{Name: "early bird", DaysAdvance: 30, Percent: pct(-10)},
		},
	}

	early := rates.ApplyModifiers(baseBreakdown(100), mods, rates.ModifierContext{
		Stay: julyStay(), BookedAt: engine.NewDate(2024, time.June, 1),
	})
	if !early.Total.Amount.Equal(decimal.NewFromInt(90)) {
		t.Errorf("expected 90 for the early booking, got %s", early.Total.Amount)
	}

	late := rates.ApplyModifiers(baseBreakdown(100), mods, rates.ModifierContext{
		Stay: julyStay(), BookedAt: engine.NewDate(2024, time.June, 23),
	})
	if !late.Total.Amount.Equal(decimal.NewFromInt(100)) {
		t.Errorf("expected 100 for the late booking, got %s", late.Total.Amount)
	}
}

func TestVolumeAdjustment_QuantityThreshold(t *testing.T) {
	mods := rates.RateModifiers{
		VolumeBased: []rates.VolumeAdjustment{{Name: "group", Threshold: 10, Percent: pct(-15)}},
	}
	ctx := rates.ModifierContext{Stay: julyStay(), BookedAt: engine.NewDate(2024, time.June, 1), Quantity: 10}

	out := rates.ApplyModifiers(baseBreakdown(100), mods, ctx)
	if !out.Total.Amount.Equal(decimal.NewFromInt(85)) {
		t.Errorf("expected 85 at quantity 10, got %s", out.Total.Amount)
	}

	ctx.Quantity = 9
	out = rates.ApplyModifiers(baseBreakdown(100), mods, ctx)
	if !out.Total.Amount.Equal(decimal.NewFromInt(100)) {
		t.Errorf("expected 100 at quantity 9, got %s", out.Total.Amount)
	}
}

// =============================================================================
// DAY OF WEEK - Per-night application
// =============================================================================

func TestApplyModifiers_DayOfWeek_PerNight(t *testing.T) {
	// GIVEN: A 2-night stay Thu Jul 4 + Fri Jul 5 at 100/night, Friday +20%
	// WHEN: Applying the weekday adjustment
	// THEN: Only the Friday night scales: 100 + 120 = 220

	thu := engine.NewDate(2024, time.July, 4)
	fri := engine.NewDate(2024, time.July, 5)
	nightly := engine.NewMoney(100, "EUR")
	breakdown := rates.PriceBreakdown{
		RateID:   "rate-1",
		Basis:    rates.BasisPerNight,
		Currency: "EUR",
		Lines: []rates.PriceLine{
			{Date: &thu, UnitPrice: nightly, Multiplier: decimal.NewFromInt(1), Amount: nightly},
			{Date: &fri, UnitPrice: nightly, Multiplier: decimal.NewFromInt(1), Amount: nightly},
		},
		Subtotal: engine.NewMoney(200, "EUR"),
		Total:    engine.NewMoney(200, "EUR"),
	}
	mods := rates.RateModifiers{
		DayOfWeek: rates.DayOfWeekAdjustment{
			Enabled:  true,
			Percents: map[time.Weekday]decimal.Decimal{time.Friday: pct(20)},
		},
	}

	out := rates.ApplyModifiers(breakdown, mods, rates.ModifierContext{
		Stay:     engine.DateRange{From: thu, To: engine.NewDate(2024, time.July, 6)},
		BookedAt: engine.NewDate(2024, time.June, 1),
	})

	if !out.Total.Amount.Equal(decimal.NewFromInt(220)) {
		t.Errorf("expected 220, got %s", out.Total.Amount)
	}
	if len(out.Adjustments) != 1 || out.Adjustments[0].Category != "day_of_week" {
		t.Fatalf("expected one day_of_week factor, got %+v", out.Adjustments)
	}
}

func TestApplyModifiers_DayOfWeek_DisabledOrNoHit(t *testing.T) {
	// Disabled configuration contributes nothing even with percents present.
	mods := rates.RateModifiers{
		DayOfWeek: rates.DayOfWeekAdjustment{
			Enabled:  false,
			Percents: map[time.Weekday]decimal.Decimal{time.Friday: pct(20)},
		},
	}
	out := rates.ApplyModifiers(baseBreakdown(200), mods, rates.ModifierContext{
		Stay: julyStay(), BookedAt: engine.NewDate(2024, time.June, 1),
	})
	if len(out.Adjustments) != 0 {
		t.Error("disabled day_of_week must not apply")
	}

	// Enabled but no stay night lands on a configured weekday: undated lines
	// pass through and no factor is recorded.
	mods.DayOfWeek.Enabled = true
	out = rates.ApplyModifiers(baseBreakdown(200), mods, rates.ModifierContext{
		Stay: julyStay(), BookedAt: engine.NewDate(2024, time.June, 1),
	})
	if len(out.Adjustments) != 0 || !out.Total.Amount.Equal(decimal.NewFromInt(200)) {
		t.Errorf("expected untouched total 200, got %s with %d factors",
			out.Total.Amount, len(out.Adjustments))
	}
}
