package rates_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/voyago/tariff-engine/engine"
	"github.com/voyago/tariff-engine/rates"
)

// =============================================================================
// MARGIN CALCULATION
// =============================================================================

func TestComputeMargin(t *testing.T) {
	// GIVEN: price 100, cost 80
	// WHEN: Computing the margin
	// THEN: margin 20, percent 25

	cost := engine.NewMoney(80, "EUR")
	result, err := rates.ComputeMargin(engine.NewMoney(100, "EUR"), &cost)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.Margin.Amount.Equal(decimal.NewFromInt(20)) {
		t.Errorf("expected margin 20, got %s", result.Margin.Amount)
	}
	if result.MarginPercent == nil || !result.MarginPercent.Equal(decimal.NewFromInt(25)) {
		t.Errorf("expected margin percent 25, got %v", result.MarginPercent)
	}
}

func TestComputeMargin_NoCost(t *testing.T) {
	// GIVEN: A price with no cost basis
	// WHEN: Computing the margin
	// THEN: Margin equals the price, percent is absent - not zero

	result, err := rates.ComputeMargin(engine.NewMoney(100, "EUR"), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Margin.Amount.Equal(decimal.NewFromInt(100)) {
		t.Errorf("expected margin 100, got %s", result.Margin.Amount)
	}
	if result.MarginPercent != nil {
		t.Errorf("expected nil percent for absent cost, got %s", result.MarginPercent)
	}
}

func TestComputeMargin_ZeroCost_NoPercent(t *testing.T) {
	// A complimentary (zero-cost) component has a margin but no percentage.
	cost := engine.NewMoney(0, "EUR")
	result, err := rates.ComputeMargin(engine.NewMoney(50, "EUR"), &cost)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Margin.Amount.Equal(decimal.NewFromInt(50)) {
		t.Errorf("expected margin 50, got %s", result.Margin.Amount)
	}
	if result.MarginPercent != nil {
		t.Errorf("expected nil percent for zero cost, got %s", result.MarginPercent)
	}
}

func TestComputeMargin_NegativeMargin(t *testing.T) {
	// Selling below cost is reported, not rejected.
	cost := engine.NewMoney(120, "EUR")
	result, err := rates.ComputeMargin(engine.NewMoney(100, "EUR"), &cost)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Margin.Amount.Equal(decimal.NewFromInt(-20)) {
		t.Errorf("expected margin -20, got %s", result.Margin.Amount)
	}
	if result.MarginPercent == nil || !result.MarginPercent.Round(4).Equal(decimal.RequireFromString("-16.6667")) {
		t.Errorf("expected percent about -16.6667, got %v", result.MarginPercent)
	}
}

func TestComputeMargin_CurrencyMismatch(t *testing.T) {
	cost := engine.NewMoney(80, "USD")
	_, err := rates.ComputeMargin(engine.NewMoney(100, "EUR"), &cost)
	if !errors.Is(err, engine.ErrCurrencyMismatch) {
		t.Errorf("expected ErrCurrencyMismatch, got %v", err)
	}
}

// =============================================================================
// MARKUP - Symmetric cost/price editing
// =============================================================================

func TestMarkup_RoundTrip(t *testing.T) {
	// GIVEN: cost 80
	// WHEN: Deriving a price at 25% markup, then deriving the markup back
	// THEN: price 100 and markup 25 - editing either field keeps the other stable

	cost := engine.NewMoney(80, "EUR")

	price := rates.PriceFromMarkup(cost, decimal.NewFromInt(25))
	if !price.Amount.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected price 100, got %s", price.Amount)
	}

	markup := rates.MarkupFromPrice(cost, price)
	if !markup.Equal(decimal.NewFromInt(25)) {
		t.Errorf("expected markup 25 back, got %s", markup)
	}

	// Second round trip must be stable.
	if again := rates.PriceFromMarkup(cost, markup); !again.Amount.Equal(price.Amount) {
		t.Errorf("round trip drifted: %s vs %s", again.Amount, price.Amount)
	}
}

func TestMarkupFromPrice_ZeroCost(t *testing.T) {
	markup := rates.MarkupFromPrice(engine.NewMoney(0, "EUR"), engine.NewMoney(100, "EUR"))
	if !markup.IsZero() {
		t.Errorf("expected zero markup for non-positive cost, got %s", markup)
	}
}

func TestApplyMarkup_ByType(t *testing.T) {
	cost := engine.NewMoney(80, "EUR")
	tests := []struct {
		name     string
		rate     rates.SellingRate
		expected int64
	}{
		{"percentage", rates.SellingRate{MarkupType: rates.MarkupPercentage, MarkupAmount: decimal.NewFromInt(25)}, 100},
		{"fixed amount", rates.SellingRate{MarkupType: rates.MarkupFixedAmount, MarkupAmount: decimal.NewFromInt(15)}, 95},
		{"none", rates.SellingRate{MarkupType: rates.MarkupNone}, 80},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rates.ApplyMarkup(tt.rate, cost)
			if !got.Amount.Equal(decimal.NewFromInt(tt.expected)) {
				t.Errorf("expected %d, got %s", tt.expected, got.Amount)
			}
			if got.Currency != "EUR" {
				t.Errorf("markup must preserve currency, got %s", got.Currency)
			}
		})
	}
}

// =============================================================================
// RATE MARGIN - Target cost on the selling rate
// =============================================================================

func TestRateMargin_WithTargetCost(t *testing.T) {
	target := decimal.NewFromInt(160)
	rate := rates.SellingRate{Currency: "EUR", TargetCost: &target}

	result, err := rates.RateMargin(rate, engine.NewMoney(200, "EUR"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Margin.Amount.Equal(decimal.NewFromInt(40)) {
		t.Errorf("expected margin 40, got %s", result.Margin.Amount)
	}
	if result.MarginPercent == nil || !result.MarginPercent.Equal(decimal.NewFromInt(25)) {
		t.Errorf("expected percent 25, got %v", result.MarginPercent)
	}
}

func TestRateMargin_NoTargetCost(t *testing.T) {
	result, err := rates.RateMargin(rates.SellingRate{Currency: "EUR"}, engine.NewMoney(200, "EUR"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Cost != nil || result.MarginPercent != nil {
		t.Error("expected no cost basis and no percentage")
	}
}
