/*
errors.go - Centralized error taxonomy for the resolution engine

PURPOSE:
  All engine failure kinds in one place for consistency and discoverability.
  Every failure is a recoverable, caller-reportable domain error - nothing in
  this engine is fatal to the process, and the engine never retries or logs.

ERROR CATEGORIES:
  1. Rule-set errors   - malformed policy data (validation at construction)
  2. Resolution errors - no applicable rule or version for the inputs
  3. Pricing errors    - a selling rate cannot price the requested stay

USAGE:
  Callers branch on sentinels:

    if errors.Is(err, engine.ErrNoMatchingOccupancy) {
        // render "no price configured for this party" to the user
    }

  and pull context from structured variants:

    var overlap *engine.AmbiguousOverlapError
    if errors.As(err, &overlap) {
        report(overlap.VersionIDs)
    }

SEE ALSO:
  - temporal.go: Returns ErrNotApplicable
  - contract package: Returns version and rule-set errors
  - rates package: Returns pricing errors
*/
package engine

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidRuleSet is returned when a policy's rules are malformed:
	// duplicate days-before thresholds, or a rule with neither a percent nor
	// an absolute penalty amount.
	ErrInvalidRuleSet = errors.New("invalid rule set")

	// ErrNotApplicable is returned when a rule set has no rule covering the
	// reference instant. Distinct from a zero-penalty resolution so callers
	// can tell "no penalty" apart from "no rule data".
	ErrNotApplicable = errors.New("no applicable rule")

	// ErrNoActiveVersion is returned when no contract version covers the
	// target date.
	ErrNoActiveVersion = errors.New("no active contract version")

	// ErrAmbiguousOverlap is returned when more than one un-superseded
	// version covers the target date. This is a data integrity fault and is
	// never resolved silently.
	ErrAmbiguousOverlap = errors.New("ambiguous contract version overlap")

	// ErrRateNotValidForDates is returned when the requested stay falls
	// outside the selling rate's validity window.
	ErrRateNotValidForDates = errors.New("rate not valid for requested dates")

	// ErrRateInactive is returned when pricing is requested against a
	// deactivated selling rate.
	ErrRateInactive = errors.New("rate is inactive")

	// ErrStayLengthOutOfBounds is returned when the stay violates the rate's
	// minimum/maximum nights.
	ErrStayLengthOutOfBounds = errors.New("stay length out of bounds")

	// ErrNoMatchingOccupancy is returned when occupancy pricing is configured
	// but no entry exactly matches the requested party composition. Exact
	// match only - fuzzy matching risks silent mispricing.
	ErrNoMatchingOccupancy = errors.New("no matching occupancy configuration")

	// ErrUnknownExtra is returned when a requested extra is not configured on
	// the rate.
	ErrUnknownExtra = errors.New("unknown extra")

	// ErrBookingWindow is returned when a booking violates the version's
	// operational terms (lead time, advance booking, service length).
	ErrBookingWindow = errors.New("booking outside operational terms")

	// ErrInvalidDateRange is returned for a malformed half-open range
	// (from >= to).
	ErrInvalidDateRange = errors.New("invalid date range: from must precede to")

	// ErrCurrencyMismatch is returned when amounts in different currencies
	// are combined.
	ErrCurrencyMismatch = errors.New("currency mismatch")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidRuleSetError describes why a rule set failed validation.
type InvalidRuleSetError struct {
	Reason     string
	DaysBefore int // Offending threshold, where relevant
}

func (e *InvalidRuleSetError) Error() string {
	return fmt.Sprintf("invalid rule set: %s (days_before: %d)", e.Reason, e.DaysBefore)
}

func (e *InvalidRuleSetError) Unwrap() error { return ErrInvalidRuleSet }

// AmbiguousOverlapError lists the un-superseded versions that all cover the
// target date.
type AmbiguousOverlapError struct {
	ContractID ContractID
	OnDate     Date
	VersionIDs []VersionID
}

func (e *AmbiguousOverlapError) Error() string {
	return fmt.Sprintf("ambiguous overlap: %d un-superseded versions of contract %s cover %s",
		len(e.VersionIDs), e.ContractID, e.OnDate)
}

func (e *AmbiguousOverlapError) Unwrap() error { return ErrAmbiguousOverlap }

// RateNotValidError reports the mismatch between a stay and a rate's validity.
type RateNotValidError struct {
	RateID    RateID
	Requested DateRange
	ValidFrom Date
	ValidTo   Date
}

func (e *RateNotValidError) Error() string {
	return fmt.Sprintf("rate %s valid [%s, %s) does not cover stay %s",
		e.RateID, e.ValidFrom, e.ValidTo, e.Requested)
}

func (e *RateNotValidError) Unwrap() error { return ErrRateNotValidForDates }

// StayLengthError reports a min/max nights violation.
type StayLengthError struct {
	Nights int
	Min    int // 0 = unset
	Max    int // 0 = unset
}

func (e *StayLengthError) Error() string {
	return fmt.Sprintf("stay of %d nights outside bounds [min %d, max %d]", e.Nights, e.Min, e.Max)
}

func (e *StayLengthError) Unwrap() error { return ErrStayLengthOutOfBounds }

// NoMatchingOccupancyError reports the party composition that found no entry.
type NoMatchingOccupancyError struct {
	Adults   int
	Children int
}

func (e *NoMatchingOccupancyError) Error() string {
	return fmt.Sprintf("no occupancy configuration for %d adults, %d children", e.Adults, e.Children)
}

func (e *NoMatchingOccupancyError) Unwrap() error { return ErrNoMatchingOccupancy }

// CurrencyMismatchError reports the two currencies that were combined.
type CurrencyMismatchError struct {
	Left  string
	Right string
}

func (e *CurrencyMismatchError) Error() string {
	return fmt.Sprintf("currency mismatch: %s vs %s", e.Left, e.Right)
}

func (e *CurrencyMismatchError) Unwrap() error { return ErrCurrencyMismatch }

// InvalidDateRangeError reports a malformed half-open range.
type InvalidDateRangeError struct {
	From Date
	To   Date
}

func (e *InvalidDateRangeError) Error() string {
	return fmt.Sprintf("invalid date range: from %s must precede to %s", e.From, e.To)
}

func (e *InvalidDateRangeError) Unwrap() error { return ErrInvalidDateRange }

// BookingWindowError reports which operational term a booking violates.
type BookingWindowError struct {
	Term    string // "lead_time", "advance_booking", "min_length", "max_length"
	Message string
}

func (e *BookingWindowError) Error() string {
	return fmt.Sprintf("booking window violation (%s): %s", e.Term, e.Message)
}

func (e *BookingWindowError) Unwrap() error { return ErrBookingWindow }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid caller input
// rather than broken policy data.
func IsClientError(err error) bool {
	return errors.Is(err, ErrRateNotValidForDates) ||
		errors.Is(err, ErrRateInactive) ||
		errors.Is(err, ErrStayLengthOutOfBounds) ||
		errors.Is(err, ErrNoMatchingOccupancy) ||
		errors.Is(err, ErrUnknownExtra) ||
		errors.Is(err, ErrBookingWindow) ||
		errors.Is(err, ErrInvalidDateRange) ||
		errors.Is(err, ErrCurrencyMismatch)
}

// IsDataFault returns true if the error indicates broken policy/rate data
// that an operator must fix.
func IsDataFault(err error) bool {
	return errors.Is(err, ErrInvalidRuleSet) ||
		errors.Is(err, ErrAmbiguousOverlap)
}

// IsNotFound returns true if the error indicates missing rule or version data.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotApplicable) ||
		errors.Is(err, ErrNoActiveVersion)
}
