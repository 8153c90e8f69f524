/*
rules.go - Penalty rules and their construction-time validation

PURPOSE:
  Defines CancellationRule and AttritionRule, the threshold-keyed penalty
  tiers both policies are made of, and PenaltyExpr, the tagged penalty
  expression they carry. A penalty is a percent, an absolute amount, or
  both; a rule with neither is rejected when the rule is built, never
  discovered as a nil at a call site.

INVARIANTS (enforced here and by engine.ValidateThresholds):
  - days_before >= 0
  - at least one of percent/amount resolves to a value
  - within one policy, days_before values are distinct

SEE ALSO:
  - engine/temporal.go: The lookup these rules feed
  - terms.go: Turns a resolved rule into a caller-facing term
*/
package contract

import (
	"github.com/shopspring/decimal"
	"github.com/voyago/tariff-engine/engine"
)

// =============================================================================
// PENALTY EXPRESSION - Tagged: percent, amount, or both
// =============================================================================

// PenaltyExpr is a penalty as a percent of the booking value, an absolute
// per-booking (or per-unit, for attrition) amount, or both. The zero value
// is invalid; use the constructors.
type PenaltyExpr struct {
	percent *decimal.Decimal
	amount  *decimal.Decimal
}

func PercentPenalty(percent decimal.Decimal) PenaltyExpr {
	return PenaltyExpr{percent: &percent}
}

func AmountPenalty(amount decimal.Decimal) PenaltyExpr {
	return PenaltyExpr{amount: &amount}
}

func PercentAndAmountPenalty(percent, amount decimal.Decimal) PenaltyExpr {
	return PenaltyExpr{percent: &percent, amount: &amount}
}

// Percent returns the percent component, if present.
func (p PenaltyExpr) Percent() (decimal.Decimal, bool) {
	if p.percent == nil {
		return decimal.Decimal{}, false
	}
	return *p.percent, true
}

// Amount returns the absolute component, if present.
func (p PenaltyExpr) Amount() (decimal.Decimal, bool) {
	if p.amount == nil {
		return decimal.Decimal{}, false
	}
	return *p.amount, true
}

// IsEmpty reports whether neither component is present (the invalid zero
// value).
func (p PenaltyExpr) IsEmpty() bool {
	return p.percent == nil && p.amount == nil
}

// IsFree reports whether every present component is zero - the rule exists
// but costs nothing.
func (p PenaltyExpr) IsFree() bool {
	if p.IsEmpty() {
		return false
	}
	if p.percent != nil && !p.percent.IsZero() {
		return false
	}
	if p.amount != nil && !p.amount.IsZero() {
		return false
	}
	return true
}

// =============================================================================
// CANCELLATION RULE
// =============================================================================

// CancellationRule is one penalty tier: cancel at least DaysBefore days out
// (up to the next more lenient tier) and Penalty applies.
type CancellationRule struct {
	DaysBefore  int
	Penalty     PenaltyExpr
	Description string
}

// Threshold implements engine.ThresholdRule.
func (r CancellationRule) Threshold() int { return r.DaysBefore }

func (r CancellationRule) Validate() error {
	if r.DaysBefore < 0 {
		return &engine.InvalidRuleSetError{Reason: "negative days_before threshold", DaysBefore: r.DaysBefore}
	}
	if r.Penalty.IsEmpty() {
		return &engine.InvalidRuleSetError{Reason: "rule has neither percent nor amount penalty", DaysBefore: r.DaysBefore}
	}
	return nil
}

// NewCancellationRule builds a validated rule.
func NewCancellationRule(daysBefore int, penalty PenaltyExpr, description string) (CancellationRule, error) {
	r := CancellationRule{DaysBefore: daysBefore, Penalty: penalty, Description: description}
	if err := r.Validate(); err != nil {
		return CancellationRule{}, err
	}
	return r, nil
}

// =============================================================================
// ATTRITION RULE
// =============================================================================

// AttritionRule is one reduction tier: at least DaysBefore days out, up to
// AllowedReductionPercent of the basis quantity may be released without
// charge; reductions beyond that incur Penalty (per released unit and/or as
// a percent of the unit price).
type AttritionRule struct {
	DaysBefore              int
	AllowedReductionPercent decimal.Decimal
	Penalty                 PenaltyExpr
	Description             string
}

// Threshold implements engine.ThresholdRule.
func (r AttritionRule) Threshold() int { return r.DaysBefore }

func (r AttritionRule) Validate() error {
	if r.DaysBefore < 0 {
		return &engine.InvalidRuleSetError{Reason: "negative days_before threshold", DaysBefore: r.DaysBefore}
	}
	if r.Penalty.IsEmpty() {
		return &engine.InvalidRuleSetError{Reason: "rule has neither percent nor amount penalty", DaysBefore: r.DaysBefore}
	}
	if r.AllowedReductionPercent.IsNegative() {
		return &engine.InvalidRuleSetError{Reason: "negative allowed reduction", DaysBefore: r.DaysBefore}
	}
	return nil
}

// NewAttritionRule builds a validated rule.
func NewAttritionRule(daysBefore int, allowedReductionPercent decimal.Decimal, penalty PenaltyExpr, description string) (AttritionRule, error) {
	r := AttritionRule{
		DaysBefore:              daysBefore,
		AllowedReductionPercent: allowedReductionPercent,
		Penalty:                 penalty,
		Description:             description,
	}
	if err := r.Validate(); err != nil {
		return AttritionRule{}, err
	}
	return r, nil
}

// =============================================================================
// POLICY CONSTRUCTORS - Validation happens when policies are built
// =============================================================================

// NewCancellationPolicy builds a policy and validates its rule set.
func NewCancellationPolicy(policyType CancellationPolicyType, rules []CancellationRule, exceptionTags []string, notes string) (CancellationPolicy, error) {
	for _, r := range rules {
		if err := r.Validate(); err != nil {
			return CancellationPolicy{}, err
		}
	}
	if err := engine.ValidateThresholds(rules); err != nil {
		return CancellationPolicy{}, err
	}
	return CancellationPolicy{
		Type:          policyType,
		Rules:         engine.SortByThresholdDesc(rules),
		ExceptionTags: exceptionTags,
		Notes:         notes,
	}, nil
}

// NewAttritionPolicy builds a policy and validates its rule set.
func NewAttritionPolicy(enabled bool, rules []AttritionRule, minimumQuantity int, basis AttritionBasis, cumulative bool) (AttritionPolicy, error) {
	for _, r := range rules {
		if err := r.Validate(); err != nil {
			return AttritionPolicy{}, err
		}
	}
	if err := engine.ValidateThresholds(rules); err != nil {
		return AttritionPolicy{}, err
	}
	return AttritionPolicy{
		Enabled:          enabled,
		Rules:            engine.SortByThresholdDesc(rules),
		MinimumQuantity:  minimumQuantity,
		CalculationBasis: basis,
		Cumulative:       cumulative,
	}, nil
}
