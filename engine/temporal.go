/*
temporal.go - Threshold-based rule lookup

PURPOSE:
  Resolves the single applicable rule from an ordered set keyed by a
  "days-before" threshold. Both cancellation and attrition policies use this
  lookup: the rules differ, the algorithm does not.

KEY INSIGHT:
  A rule with threshold d covers reference instants at least d days before
  the service date, up to the next stricter tier. Walking the rules in
  descending threshold order, the applicable rule is the first whose
  threshold has been reached or passed (threshold <= reference).

EXAMPLE:
  Rules: 30 days -> 0%, 7 days -> 50%, 0 days -> 100%

    45 days out -> 30-day rule (0% - cancelling further out than any
                   stricter tier lands on the most lenient rule)
    10 days out -> 7-day rule (50%)
     3 days out -> 0-day rule (100%)
     0 days out -> 0-day rule (100%)

EDGE CASES:
  - Empty rule set: ErrNotApplicable (no rule data, not "no penalty")
  - Negative reference (change after the service date): maps to the
    zero-threshold rule if present, else ErrNotApplicable
  - Reference below every threshold (no zero rule): ErrNotApplicable
  - Duplicate thresholds: rejected at construction time (ValidateThresholds),
    never tie-broken at lookup time

SEE ALSO:
  - contract package: CancellationRule/AttritionRule implement ThresholdRule
*/
package engine

import "sort"

// =============================================================================
// THRESHOLD RULE - What the lookup needs to know about a rule
// =============================================================================

// ThresholdRule is implemented by any rule keyed on a days-before threshold.
type ThresholdRule interface {
	// Threshold returns the days-before-service value, >= 0.
	Threshold() int
}

// =============================================================================
// LOOKUP
// =============================================================================

// ResolveRule returns the rule with the largest threshold not exceeding
// referenceDaysBefore. referenceDaysBefore is whole days between the change
// instant and the service start date, as computed by the caller; negative
// values (post-service-date changes) resolve to the zero-threshold rule when
// one exists.
func ResolveRule[R ThresholdRule](rules []R, referenceDaysBefore int) (R, error) {
	var zero R
	if len(rules) == 0 {
		return zero, ErrNotApplicable
	}

	if referenceDaysBefore < 0 {
		for _, r := range rules {
			if r.Threshold() == 0 {
				return r, nil
			}
		}
		return zero, ErrNotApplicable
	}

	for _, r := range SortByThresholdDesc(rules) {
		if r.Threshold() <= referenceDaysBefore {
			return r, nil
		}
	}
	return zero, ErrNotApplicable
}

// SortByThresholdDesc returns a copy of the rules sorted by descending
// threshold. The input is never mutated (engine inputs are immutable
// snapshots).
func SortByThresholdDesc[R ThresholdRule](rules []R) []R {
	sorted := make([]R, len(rules))
	copy(sorted, rules)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Threshold() > sorted[j].Threshold()
	})
	return sorted
}

// ValidateThresholds enforces the construction-time invariants of a rule set:
// thresholds are non-negative and distinct within one policy. Duplicate
// thresholds are ambiguous and are a hard error, not a runtime tie-break.
func ValidateThresholds[R ThresholdRule](rules []R) error {
	seen := make(map[int]bool, len(rules))
	for _, r := range rules {
		d := r.Threshold()
		if d < 0 {
			return &InvalidRuleSetError{Reason: "negative days_before threshold", DaysBefore: d}
		}
		if seen[d] {
			return &InvalidRuleSetError{Reason: "duplicate days_before threshold", DaysBefore: d}
		}
		seen[d] = true
	}
	return nil
}
