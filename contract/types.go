/*
Package contract provides the contract side of the tariff resolution engine.

PURPOSE:
  Models versioned commercial terms between a tour operator and a supplier -
  cancellation and attrition policies, payment terms, operational terms, rate
  modifiers - and resolves which terms govern at a point in time: the
  effective version for a date, and the penalty tier applicable at a given
  distance from the service date.

KEY CONCEPTS IN THIS FILE (types.go):
  - ContractVersion: A dated snapshot of commercial terms, half-open validity
  - CancellationPolicy / AttritionPolicy: Ordered threshold-keyed rule sets
  - PaymentTerms / OperationalTerms / AdditionalTerms: The remaining blocks

OWNERSHIP:
  The persistence collaborator creates, edits, and deletes these records.
  This package only ever reads immutable snapshots and holds no state.

SEE ALSO:
  - rules.go: Rule construction and validation
  - version.go: Effective-version resolution
  - terms.go: Cancellation/attrition term resolution
*/
package contract

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/voyago/tariff-engine/engine"
	"github.com/voyago/tariff-engine/rates"
)

// =============================================================================
// POLICY BLOCKS
// =============================================================================

type CancellationPolicyType string

const (
	CancellationStandard      CancellationPolicyType = "standard"
	CancellationNonRefundable CancellationPolicyType = "non_refundable"
	CancellationFlexible      CancellationPolicyType = "flexible"
)

// CancellationPolicy is an ordered set of penalty tiers keyed by days before
// the service date, plus free-form exception tags ("force_majeure", ...).
type CancellationPolicy struct {
	Type          CancellationPolicyType
	Rules         []CancellationRule
	ExceptionTags []string
	Notes         string
}

type AttritionBasis string

const (
	BasisOriginalQuantity AttritionBasis = "original_quantity"
	BasisCurrentQuantity  AttritionBasis = "current_quantity"
)

// AttritionPolicy governs room-block / group-size reductions. When
// Cumulative is set, allowed reductions from more lenient tiers accumulate
// onto the resolved tier.
type AttritionPolicy struct {
	Enabled          bool
	Rules            []AttritionRule
	MinimumQuantity  int
	CalculationBasis AttritionBasis
	Cumulative       bool
}

// =============================================================================
// PAYMENT TERMS
// =============================================================================

type DueOffset string

const (
	DueAtBooking    DueOffset = "at_booking"
	Due30DaysBefore DueOffset = "30_days_before"
	Due60DaysBefore DueOffset = "60_days_before"
	Due90DaysBefore DueOffset = "90_days_before"
	DueAtService    DueOffset = "at_service"
	DueAfterService DueOffset = "after_service"
)

type CommissionType string

const (
	CommissionPercentage  CommissionType = "percentage"
	CommissionFixedAmount CommissionType = "fixed_amount"
)

type CommissionBase string

const (
	CommissionOnNet   CommissionBase = "net"
	CommissionOnGross CommissionBase = "gross"
)

type Commission struct {
	Rate      decimal.Decimal
	Type      CommissionType
	AppliesTo CommissionBase
}

type PaymentTerms struct {
	DepositPercent  decimal.Decimal
	DepositDue      DueOffset
	BalanceDue      DueOffset
	AcceptedMethods []string

	SupplierPaymentType string // e.g. "bank_transfer", "virtual_card"
	SupplierPaymentDay  int    // Day of month supplier invoices settle
	SupplierCurrency    string

	Commission Commission
}

// =============================================================================
// OPERATIONAL TERMS
// =============================================================================

// OperationalTerms bound when and how bookings may be placed against the
// contract. Durations arrive as strings from the persistence layer and are
// parsed by the factory.
type OperationalTerms struct {
	LeadTime         time.Duration // Minimum booking-to-service distance
	AdvanceBooking   time.Duration // Maximum booking-to-service distance (0 = unbounded)
	ConfirmationTime time.Duration // Supplier confirmation SLA

	AmendmentAllowed  bool
	AmendmentDeadline time.Duration // Before service date

	MinServiceLength int // Days; 0 = unset
	MaxServiceLength int // Days; 0 = unset
}

// =============================================================================
// ADDITIONAL TERMS
// =============================================================================

type AdditionalTerms struct {
	Restrictions          []string
	Inclusions            []string
	Exclusions            []string
	RequiredDocumentation []string
	Notes                 string
}

// =============================================================================
// CONTRACT VERSION
// =============================================================================

// ContractVersion is a dated snapshot of commercial terms, valid over the
// half-open window [ValidFrom, ValidTo). SupersedesID points at the older
// version this one replaces, when any.
type ContractVersion struct {
	ID         engine.VersionID
	ContractID engine.ContractID

	ValidFrom engine.Date
	ValidTo   engine.Date

	Cancellation CancellationPolicy
	Attrition    AttritionPolicy
	Payment      PaymentTerms
	Operational  OperationalTerms
	Modifiers    rates.RateModifiers
	Additional   AdditionalTerms

	SupersedesID engine.VersionID // Empty = supersedes nothing
}

// Validity returns the version's validity window as a range.
func (v ContractVersion) Validity() engine.DateRange {
	return engine.DateRange{From: v.ValidFrom, To: v.ValidTo}
}

// Covers reports whether the version governs the given date.
func (v ContractVersion) Covers(d engine.Date) bool {
	return v.Validity().Contains(d)
}

// Validate enforces the version-level invariants: a well-formed validity
// window and valid rule sets on both policies.
func (v ContractVersion) Validate() error {
	if err := v.Validity().Validate(); err != nil {
		return err
	}
	if err := engine.ValidateThresholds(v.Cancellation.Rules); err != nil {
		return err
	}
	for _, r := range v.Cancellation.Rules {
		if err := r.Validate(); err != nil {
			return err
		}
	}
	if err := engine.ValidateThresholds(v.Attrition.Rules); err != nil {
		return err
	}
	for _, r := range v.Attrition.Rules {
		if err := r.Validate(); err != nil {
			return err
		}
	}
	return nil
}
