package contract_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/voyago/tariff-engine/contract"
	"github.com/voyago/tariff-engine/engine"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func percent(v int) decimal.Decimal { return decimal.NewFromInt(int64(v)) }

func standardCancellation(t *testing.T) contract.CancellationPolicy {
	t.Helper()

	var rules []contract.CancellationRule
	for _, tier := range []struct {
		days    int
		percent int
		desc    string
	}{
		{days: 30, percent: 0, desc: "free cancellation"},
		{days: 7, percent: 50, desc: "half charge"},
		{days: 0, percent: 100, desc: "full charge"},
	} {
		rule, err := contract.NewCancellationRule(tier.days, contract.PercentPenalty(percent(tier.percent)), tier.desc)
		if err != nil {
			t.Fatalf("building rule: %v", err)
		}
		rules = append(rules, rule)
	}

	policy, err := contract.NewCancellationPolicy(contract.CancellationStandard, rules, nil, "")
	if err != nil {
		t.Fatalf("building policy: %v", err)
	}
	return policy
}

func versionWithCancellation(t *testing.T) contract.ContractVersion {
	t.Helper()
	v := version("v1", date(2024, time.January, 1), date(2025, time.January, 1))
	v.Cancellation = standardCancellation(t)
	return v
}

// =============================================================================
// CANCELLATION TERM RESOLUTION
// =============================================================================

func TestResolveCancellationTerm_Tiers(t *testing.T) {
	// GIVEN: Service on 2024-08-01 and tiers [(30,0%), (7,50%), (0,100%)]
	// WHEN: Cancelling at varying distances
	// THEN: The tier penalties apply monotonically

	v := versionWithCancellation(t)
	serviceDate := date(2024, time.August, 1)

	cases := []struct {
		cancelAt    engine.Date
		wantPercent int
		wantFree    bool
	}{
		{cancelAt: date(2024, time.June, 17), wantPercent: 0, wantFree: true},    // 45 days out
		{cancelAt: date(2024, time.July, 22), wantPercent: 50, wantFree: false},  // 10 days out
		{cancelAt: date(2024, time.July, 29), wantPercent: 100, wantFree: false}, // 3 days out
		{cancelAt: serviceDate, wantPercent: 100, wantFree: false},               // day of
	}

	for _, tc := range cases {
		term, err := contract.ResolveCancellationTerm(v, tc.cancelAt, serviceDate)
		if err != nil {
			t.Fatalf("cancel at %s: unexpected error %v", tc.cancelAt, err)
		}
		if term.PenaltyPercent == nil {
			t.Fatalf("cancel at %s: expected a percent penalty", tc.cancelAt)
		}
		if !term.PenaltyPercent.Equal(percent(tc.wantPercent)) {
			t.Errorf("cancel at %s: expected %d%%, got %s", tc.cancelAt, tc.wantPercent, term.PenaltyPercent)
		}
		if term.Free != tc.wantFree {
			t.Errorf("cancel at %s: expected free=%v", tc.cancelAt, tc.wantFree)
		}
	}
}

func TestResolveCancellationTerm_AfterServiceDate(t *testing.T) {
	// GIVEN: A cancellation after the service date
	// THEN: The day-of tier applies

	v := versionWithCancellation(t)
	serviceDate := date(2024, time.August, 1)

	term, err := contract.ResolveCancellationTerm(v, date(2024, time.August, 3), serviceDate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if term.DaysBefore != 0 {
		t.Errorf("expected day-of tier, got %d-day tier", term.DaysBefore)
	}
}

func TestResolveCancellationTerm_NoRules_NotApplicable(t *testing.T) {
	v := version("v1", date(2024, time.January, 1), date(2025, time.January, 1))

	_, err := contract.ResolveCancellationTerm(v, date(2024, time.June, 1), date(2024, time.August, 1))
	if !errors.Is(err, engine.ErrNotApplicable) {
		t.Errorf("expected ErrNotApplicable, got %v", err)
	}
}

func TestCancellationCharge_PercentAndAmount(t *testing.T) {
	// GIVEN: A term of 50% plus a 25 EUR fixed fee
	// WHEN: Charging a 200 EUR booking
	// THEN: 100 + 25 = 125 EUR

	fifty := percent(50)
	fee := decimal.NewFromInt(25)
	term := contract.CancellationTerm{PenaltyPercent: &fifty, PenaltyAmount: &fee}

	charge := contract.CancellationCharge(term, engine.NewMoney(200, "EUR"))
	if !charge.Amount.Equal(decimal.NewFromInt(125)) {
		t.Errorf("expected 125, got %s", charge.Amount)
	}
	if charge.Currency != "EUR" {
		t.Errorf("expected EUR, got %s", charge.Currency)
	}
}

// =============================================================================
// ATTRITION TERM RESOLUTION
// =============================================================================

func attritionVersion(t *testing.T, basis contract.AttritionBasis, cumulative bool, minimumQty int) contract.ContractVersion {
	t.Helper()

	var rules []contract.AttritionRule
	for _, tier := range []struct {
		days    int
		allowed int
		perUnit int
	}{
		{days: 60, allowed: 20, perUnit: 0},
		{days: 30, allowed: 10, perUnit: 40},
		{days: 0, allowed: 0, perUnit: 80},
	} {
		rule, err := contract.NewAttritionRule(tier.days, percent(tier.allowed),
			contract.AmountPenalty(decimal.NewFromInt(int64(tier.perUnit))), "")
		if err != nil {
			t.Fatalf("building attrition rule: %v", err)
		}
		rules = append(rules, rule)
	}

	policy, err := contract.NewAttritionPolicy(true, rules, minimumQty, basis, cumulative)
	if err != nil {
		t.Fatalf("building attrition policy: %v", err)
	}

	v := version("v1", date(2024, time.January, 1), date(2025, time.January, 1))
	v.Attrition = policy
	return v
}

func TestResolveAttritionTerm_BasisSelection(t *testing.T) {
	// GIVEN: A 10%-at-30-days tier, original block 100, current block 50
	// WHEN: Resolving 40 days out under each calculation basis
	// THEN: original_quantity yields 10 allowed units, current_quantity 5

	serviceDate := date(2024, time.September, 1)
	changeAt := date(2024, time.July, 23) // 40 days out

	vOriginal := attritionVersion(t, contract.BasisOriginalQuantity, false, 0)
	term, err := contract.ResolveAttritionTerm(vOriginal, changeAt, serviceDate, 50, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if term.BasisQuantity != 100 || term.AllowedUnits != 10 {
		t.Errorf("original basis: expected 10 of 100 units, got %d of %d", term.AllowedUnits, term.BasisQuantity)
	}

	vCurrent := attritionVersion(t, contract.BasisCurrentQuantity, false, 0)
	term, err = contract.ResolveAttritionTerm(vCurrent, changeAt, serviceDate, 50, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if term.BasisQuantity != 50 || term.AllowedUnits != 5 {
		t.Errorf("current basis: expected 5 of 50 units, got %d of %d", term.AllowedUnits, term.BasisQuantity)
	}
}

func TestResolveAttritionTerm_Cumulative(t *testing.T) {
	// GIVEN: Tiers 60d/20%, 30d/10% with the cumulative flag
	// WHEN: Resolving 40 days out (30-day tier governs)
	// THEN: The passed 60-day allowance stacks: 20% + 10% = 30%

	v := attritionVersion(t, contract.BasisOriginalQuantity, true, 0)

	term, err := contract.ResolveAttritionTerm(v,
		date(2024, time.July, 23), date(2024, time.September, 1), 100, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !term.AllowedReductionPercent.Equal(percent(30)) {
		t.Errorf("expected cumulative 30%%, got %s", term.AllowedReductionPercent)
	}
	if term.AllowedUnits != 30 {
		t.Errorf("expected 30 allowed units, got %d", term.AllowedUnits)
	}
}

func TestResolveAttritionTerm_NonCumulative_TierStandsAlone(t *testing.T) {
	v := attritionVersion(t, contract.BasisOriginalQuantity, false, 0)

	term, err := contract.ResolveAttritionTerm(v,
		date(2024, time.July, 23), date(2024, time.September, 1), 100, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !term.AllowedReductionPercent.Equal(percent(10)) {
		t.Errorf("expected the 30-day tier's 10%%, got %s", term.AllowedReductionPercent)
	}
}

func TestResolveAttritionTerm_MinimumQuantityCapsAllowance(t *testing.T) {
	// GIVEN: 10% allowance on a block of 100 with a contractual minimum of 95
	// THEN: Only 5 units may be released, not 10

	v := attritionVersion(t, contract.BasisOriginalQuantity, false, 95)

	term, err := contract.ResolveAttritionTerm(v,
		date(2024, time.July, 23), date(2024, time.September, 1), 100, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if term.AllowedUnits != 5 {
		t.Errorf("expected allowance capped at 5 units, got %d", term.AllowedUnits)
	}
}

func TestResolveAttritionTerm_Disabled_NotApplicable(t *testing.T) {
	v := attritionVersion(t, contract.BasisOriginalQuantity, false, 0)
	v.Attrition.Enabled = false

	_, err := contract.ResolveAttritionTerm(v,
		date(2024, time.July, 23), date(2024, time.September, 1), 100, 100)
	if !errors.Is(err, engine.ErrNotApplicable) {
		t.Errorf("expected ErrNotApplicable, got %v", err)
	}
}

func TestResolveAttritionTerm_PenaltyComponents(t *testing.T) {
	v := attritionVersion(t, contract.BasisOriginalQuantity, false, 0)

	term, err := contract.ResolveAttritionTerm(v,
		date(2024, time.July, 23), date(2024, time.September, 1), 100, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if term.PenaltyPerUnit == nil || !term.PenaltyPerUnit.Equal(decimal.NewFromInt(40)) {
		t.Errorf("expected 40 per unit, got %v", term.PenaltyPerUnit)
	}
	if term.PenaltyPercent != nil {
		t.Errorf("expected no percent component, got %s", term.PenaltyPercent)
	}
}

// =============================================================================
// BOOKING WINDOW CHECKS
// =============================================================================

func TestCheckBookingWindow(t *testing.T) {
	v := version("v1", date(2024, time.January, 1), date(2025, time.January, 1))
	v.Operational = contract.OperationalTerms{
		LeadTime:         72 * time.Hour,       // 3 days
		AdvanceBooking:   365 * 24 * time.Hour, // 1 year
		MinServiceLength: 2,
		MaxServiceLength: 14,
	}

	serviceDate := date(2024, time.August, 1)

	// Inside every bound.
	if err := contract.CheckBookingWindow(v, date(2024, time.July, 1), serviceDate, 7); err != nil {
		t.Errorf("unexpected violation: %v", err)
	}

	// Too close to the service date.
	err := contract.CheckBookingWindow(v, date(2024, time.July, 31), serviceDate, 7)
	if !errors.Is(err, engine.ErrBookingWindow) {
		t.Errorf("expected lead time violation, got %v", err)
	}

	// Too far ahead.
	err = contract.CheckBookingWindow(v, date(2022, time.January, 1), serviceDate, 7)
	if !errors.Is(err, engine.ErrBookingWindow) {
		t.Errorf("expected advance booking violation, got %v", err)
	}

	// Too short and too long.
	if err := contract.CheckBookingWindow(v, date(2024, time.July, 1), serviceDate, 1); !errors.Is(err, engine.ErrBookingWindow) {
		t.Errorf("expected min length violation, got %v", err)
	}
	if err := contract.CheckBookingWindow(v, date(2024, time.July, 1), serviceDate, 21); !errors.Is(err, engine.ErrBookingWindow) {
		t.Errorf("expected max length violation, got %v", err)
	}
}

// =============================================================================
// RULE CONSTRUCTION
// =============================================================================

func TestNewCancellationRule_EmptyPenalty_Rejected(t *testing.T) {
	// GIVEN: A rule with neither percent nor amount
	// THEN: Construction fails - no runtime nil-checks downstream

	_, err := contract.NewCancellationRule(7, contract.PenaltyExpr{}, "broken")
	if !errors.Is(err, engine.ErrInvalidRuleSet) {
		t.Errorf("expected ErrInvalidRuleSet, got %v", err)
	}
}

func TestNewCancellationPolicy_DuplicateThresholds_Rejected(t *testing.T) {
	r1, _ := contract.NewCancellationRule(7, contract.PercentPenalty(percent(50)), "")
	r2, _ := contract.NewCancellationRule(7, contract.PercentPenalty(percent(25)), "")

	_, err := contract.NewCancellationPolicy(contract.CancellationStandard,
		[]contract.CancellationRule{r1, r2}, nil, "")
	if !errors.Is(err, engine.ErrInvalidRuleSet) {
		t.Errorf("expected ErrInvalidRuleSet, got %v", err)
	}
}

func TestPenaltyExpr_Components(t *testing.T) {
	both := contract.PercentAndAmountPenalty(percent(10), decimal.NewFromInt(25))

	p, ok := both.Percent()
	if !ok || !p.Equal(percent(10)) {
		t.Errorf("expected percent 10, got %s (present: %v)", p, ok)
	}
	a, ok := both.Amount()
	if !ok || !a.Equal(decimal.NewFromInt(25)) {
		t.Errorf("expected amount 25, got %s (present: %v)", a, ok)
	}

	if !contract.PercentPenalty(percent(0)).IsFree() {
		t.Error("zero percent penalty should report free")
	}
	if contract.PercentPenalty(percent(10)).IsFree() {
		t.Error("non-zero penalty must not report free")
	}
	if (contract.PenaltyExpr{}).IsFree() {
		t.Error("the empty expression is invalid, not free")
	}
}
