/*
Package factory provides JSON to Go domain-object conversion.

PURPOSE:
  Converts JSON contract and rate definitions into contract.ContractVersion
  and rates.SellingRate values. This enables configuration without code
  changes - contracting teams can define terms in JSON, and the factory
  creates validated Go structs.

WHY JSON?
  - Non-developers can author and review terms
  - Easy integration with admin UI
  - Version control for contract definitions
  - Database storage of term documents

JSON SCHEMA (contract version):
  {
    "id": "v-2024-summer",
    "contract_id": "hotel-aurora",
    "valid_from": "2024-05-01",
    "valid_to": "2024-10-01",
    "supersedes_id": "",
    "cancellation": {
      "type": "standard",
      "rules": [
        {"days_before": 30, "penalty_percent": 0},
        {"days_before": 7,  "penalty_percent": 50},
        {"days_before": 0,  "penalty_percent": 100}
      ],
      "exception_tags": ["force_majeure"]
    },
    "attrition": {
      "enabled": true,
      "calculation_basis": "original_quantity",
      "rules": [
        {"days_before": 30, "allowed_reduction_percent": 10, "penalty_amount": 40}
      ]
    },
    "operational": {
      "lead_time": "72h",
      "advance_booking": "8760h"
    }
  }

KEY FEATURES:
  - Validates structure and rule invariants at parse time
  - Sets sensible defaults (standard cancellation, original-quantity basis)
  - Parses duration strings for operational terms
  - Round-trips: ToContractJSON inverts ParseContractVersion

USAGE:
  f := factory.New()

  version, err := f.ParseContractVersion(jsonString)

  // Back to the wire/storage form
  doc := f.ToContractJSON(version)

SEE ALSO:
  - contract/types.go: ContractVersion definition
  - rate.go: SellingRate conversion
  - store/sqlite: Persists these documents
*/
package factory

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/voyago/tariff-engine/contract"
	"github.com/voyago/tariff-engine/engine"
	"github.com/voyago/tariff-engine/rates"
)

// =============================================================================
// JSON SCHEMA TYPES - Contract version
// =============================================================================

// ContractVersionJSON is the JSON representation of a contract version.
type ContractVersionJSON struct {
	ID           string `json:"id"`
	ContractID   string `json:"contract_id"`
	ValidFrom    string `json:"valid_from"`
	ValidTo      string `json:"valid_to"`
	SupersedesID string `json:"supersedes_id,omitempty"`

	Cancellation *CancellationJSON `json:"cancellation,omitempty"`
	Attrition    *AttritionJSON    `json:"attrition,omitempty"`
	Payment      *PaymentJSON      `json:"payment,omitempty"`
	Operational  *OperationalJSON  `json:"operational,omitempty"`
	Modifiers    *ModifiersJSON    `json:"modifiers,omitempty"`
	Additional   *AdditionalJSON   `json:"additional,omitempty"`
}

// CancellationJSON represents a cancellation policy.
type CancellationJSON struct {
	Type          string            `json:"type,omitempty"` // standard, non_refundable, flexible
	Rules         []PenaltyRuleJSON `json:"rules,omitempty"`
	ExceptionTags []string          `json:"exception_tags,omitempty"`
	Notes         string            `json:"notes,omitempty"`
}

// AttritionJSON represents an attrition policy.
type AttritionJSON struct {
	Enabled          bool              `json:"enabled"`
	Rules            []PenaltyRuleJSON `json:"rules,omitempty"`
	MinimumQuantity  int               `json:"minimum_quantity,omitempty"`
	CalculationBasis string            `json:"calculation_basis,omitempty"` // original_quantity, current_quantity
	Cumulative       bool              `json:"cumulative,omitempty"`
}

// PenaltyRuleJSON is one penalty tier. At least one of penalty_percent /
// penalty_amount must be present; allowed_reduction_percent only applies to
// attrition rules.
type PenaltyRuleJSON struct {
	DaysBefore              int      `json:"days_before"`
	PenaltyPercent          *float64 `json:"penalty_percent,omitempty"`
	PenaltyAmount           *float64 `json:"penalty_amount,omitempty"`
	AllowedReductionPercent float64  `json:"allowed_reduction_percent,omitempty"`
	Description             string   `json:"description,omitempty"`
}

// PaymentJSON represents payment terms.
type PaymentJSON struct {
	DepositPercent  float64  `json:"deposit_percent,omitempty"`
	DepositDue      string   `json:"deposit_due,omitempty"`
	BalanceDue      string   `json:"balance_due,omitempty"`
	AcceptedMethods []string `json:"accepted_methods,omitempty"`

	SupplierPaymentType string `json:"supplier_payment_type,omitempty"`
	SupplierPaymentDay  int    `json:"supplier_payment_day,omitempty"`
	SupplierCurrency    string `json:"supplier_currency,omitempty"`

	CommissionRate      float64 `json:"commission_rate,omitempty"`
	CommissionType      string  `json:"commission_type,omitempty"`
	CommissionAppliesTo string  `json:"commission_applies_to,omitempty"`
}

// OperationalJSON represents operational terms. Durations are Go duration
// strings ("72h", "48h30m").
type OperationalJSON struct {
	LeadTime         string `json:"lead_time,omitempty"`
	AdvanceBooking   string `json:"advance_booking,omitempty"`
	ConfirmationTime string `json:"confirmation_time,omitempty"`

	AmendmentAllowed  bool   `json:"amendment_allowed,omitempty"`
	AmendmentDeadline string `json:"amendment_deadline,omitempty"`

	MinServiceLength int `json:"min_service_length,omitempty"`
	MaxServiceLength int `json:"max_service_length,omitempty"`
}

// ModifiersJSON represents the rate modifier configuration.
type ModifiersJSON struct {
	Seasonal        []SeasonalJSON        `json:"seasonal,omitempty"`
	LengthBased     []LengthJSON          `json:"length_based,omitempty"`
	AdvancePurchase []AdvancePurchaseJSON `json:"advance_purchase,omitempty"`
	DayOfWeek       *DayOfWeekJSON        `json:"day_of_week,omitempty"`
	VolumeBased     []VolumeJSON          `json:"volume_based,omitempty"`
}

type SeasonalJSON struct {
	Name    string   `json:"name"`
	Dates   []string `json:"dates"`
	Percent float64  `json:"percent"`
}

type LengthJSON struct {
	Name          string  `json:"name"`
	Threshold     int     `json:"threshold"`
	ThresholdType string  `json:"threshold_type,omitempty"` // at_least (default), at_most
	Percent       float64 `json:"percent"`
}

type AdvancePurchaseJSON struct {
	Name        string  `json:"name"`
	DaysAdvance int     `json:"days_advance"`
	Percent     float64 `json:"percent"`
}

// DayOfWeekJSON maps lowercase weekday names to percents.
type DayOfWeekJSON struct {
	Enabled  bool               `json:"enabled"`
	Percents map[string]float64 `json:"percents,omitempty"`
}

type VolumeJSON struct {
	Name      string  `json:"name"`
	Threshold int     `json:"threshold"`
	Percent   float64 `json:"percent"`
}

// AdditionalJSON represents the free-form terms block.
type AdditionalJSON struct {
	Restrictions          []string `json:"restrictions,omitempty"`
	Inclusions            []string `json:"inclusions,omitempty"`
	Exclusions            []string `json:"exclusions,omitempty"`
	RequiredDocumentation []string `json:"required_documentation,omitempty"`
	Notes                 string   `json:"notes,omitempty"`
}

// =============================================================================
// FACTORY
// =============================================================================

// Factory converts JSON documents to domain structs and back.
type Factory struct{}

// New creates a factory.
func New() *Factory {
	return &Factory{}
}

// ParseContractVersion parses a JSON string into a validated ContractVersion.
func (f *Factory) ParseContractVersion(jsonStr string) (contract.ContractVersion, error) {
	var vj ContractVersionJSON
	if err := json.Unmarshal([]byte(jsonStr), &vj); err != nil {
		return contract.ContractVersion{}, fmt.Errorf("failed to parse contract version JSON: %w", err)
	}
	return f.ContractVersionFromJSON(vj)
}

// ContractVersionFromJSON converts ContractVersionJSON into a validated
// ContractVersion. Rule-set invariants are enforced here, so a stored
// document that parses is a document the resolver can trust.
func (f *Factory) ContractVersionFromJSON(vj ContractVersionJSON) (contract.ContractVersion, error) {
	validFrom, err := engine.ParseDate(vj.ValidFrom)
	if err != nil {
		return contract.ContractVersion{}, fmt.Errorf("invalid valid_from: %w", err)
	}
	validTo, err := engine.ParseDate(vj.ValidTo)
	if err != nil {
		return contract.ContractVersion{}, fmt.Errorf("invalid valid_to: %w", err)
	}

	version := contract.ContractVersion{
		ID:           engine.VersionID(vj.ID),
		ContractID:   engine.ContractID(vj.ContractID),
		ValidFrom:    validFrom,
		ValidTo:      validTo,
		SupersedesID: engine.VersionID(vj.SupersedesID),
	}

	if vj.Cancellation != nil {
		version.Cancellation, err = parseCancellation(*vj.Cancellation)
		if err != nil {
			return contract.ContractVersion{}, err
		}
	}
	if vj.Attrition != nil {
		version.Attrition, err = parseAttrition(*vj.Attrition)
		if err != nil {
			return contract.ContractVersion{}, err
		}
	}
	if vj.Payment != nil {
		version.Payment = parsePayment(*vj.Payment)
	}
	if vj.Operational != nil {
		version.Operational, err = parseOperational(*vj.Operational)
		if err != nil {
			return contract.ContractVersion{}, err
		}
	}
	if vj.Modifiers != nil {
		version.Modifiers, err = parseModifiers(*vj.Modifiers)
		if err != nil {
			return contract.ContractVersion{}, err
		}
	}
	if vj.Additional != nil {
		version.Additional = contract.AdditionalTerms(*vj.Additional)
	}

	if err := version.Validate(); err != nil {
		return contract.ContractVersion{}, err
	}
	return version, nil
}

// ToContractJSON converts a ContractVersion back to its JSON document form.
func (f *Factory) ToContractJSON(v contract.ContractVersion) ContractVersionJSON {
	vj := ContractVersionJSON{
		ID:           string(v.ID),
		ContractID:   string(v.ContractID),
		ValidFrom:    v.ValidFrom.String(),
		ValidTo:      v.ValidTo.String(),
		SupersedesID: string(v.SupersedesID),
	}

	if len(v.Cancellation.Rules) > 0 || v.Cancellation.Type != "" {
		cj := CancellationJSON{
			Type:          string(v.Cancellation.Type),
			ExceptionTags: v.Cancellation.ExceptionTags,
			Notes:         v.Cancellation.Notes,
		}
		for _, r := range v.Cancellation.Rules {
			cj.Rules = append(cj.Rules, penaltyRuleJSON(r.DaysBefore, r.Penalty, decimal.Zero, r.Description))
		}
		vj.Cancellation = &cj
	}

	if v.Attrition.Enabled || len(v.Attrition.Rules) > 0 {
		aj := AttritionJSON{
			Enabled:          v.Attrition.Enabled,
			MinimumQuantity:  v.Attrition.MinimumQuantity,
			CalculationBasis: string(v.Attrition.CalculationBasis),
			Cumulative:       v.Attrition.Cumulative,
		}
		for _, r := range v.Attrition.Rules {
			aj.Rules = append(aj.Rules, penaltyRuleJSON(r.DaysBefore, r.Penalty, r.AllowedReductionPercent, r.Description))
		}
		vj.Attrition = &aj
	}

	vj.Payment = paymentJSON(v.Payment)
	vj.Operational = operationalJSON(v.Operational)
	vj.Modifiers = modifiersJSON(v.Modifiers)

	if len(v.Additional.Restrictions)+len(v.Additional.Inclusions)+len(v.Additional.Exclusions)+len(v.Additional.RequiredDocumentation) > 0 || v.Additional.Notes != "" {
		aj := AdditionalJSON(v.Additional)
		vj.Additional = &aj
	}

	return vj
}

// =============================================================================
// PARSING HELPERS
// =============================================================================

func parseCancellation(cj CancellationJSON) (contract.CancellationPolicy, error) {
	var rules []contract.CancellationRule
	for _, rj := range cj.Rules {
		penalty, err := parsePenalty(rj)
		if err != nil {
			return contract.CancellationPolicy{}, err
		}
		rule, err := contract.NewCancellationRule(rj.DaysBefore, penalty, rj.Description)
		if err != nil {
			return contract.CancellationPolicy{}, err
		}
		rules = append(rules, rule)
	}
	return contract.NewCancellationPolicy(parseCancellationType(cj.Type), rules, cj.ExceptionTags, cj.Notes)
}

func parseAttrition(aj AttritionJSON) (contract.AttritionPolicy, error) {
	var rules []contract.AttritionRule
	for _, rj := range aj.Rules {
		penalty, err := parsePenalty(rj)
		if err != nil {
			return contract.AttritionPolicy{}, err
		}
		rule, err := contract.NewAttritionRule(rj.DaysBefore,
			decimal.NewFromFloat(rj.AllowedReductionPercent), penalty, rj.Description)
		if err != nil {
			return contract.AttritionPolicy{}, err
		}
		rules = append(rules, rule)
	}
	return contract.NewAttritionPolicy(aj.Enabled, rules, aj.MinimumQuantity,
		parseAttritionBasis(aj.CalculationBasis), aj.Cumulative)
}

func parsePenalty(rj PenaltyRuleJSON) (contract.PenaltyExpr, error) {
	switch {
	case rj.PenaltyPercent != nil && rj.PenaltyAmount != nil:
		return contract.PercentAndAmountPenalty(
			decimal.NewFromFloat(*rj.PenaltyPercent),
			decimal.NewFromFloat(*rj.PenaltyAmount)), nil
	case rj.PenaltyPercent != nil:
		return contract.PercentPenalty(decimal.NewFromFloat(*rj.PenaltyPercent)), nil
	case rj.PenaltyAmount != nil:
		return contract.AmountPenalty(decimal.NewFromFloat(*rj.PenaltyAmount)), nil
	default:
		return contract.PenaltyExpr{}, &engine.InvalidRuleSetError{
			Reason:     "rule has neither percent nor amount penalty",
			DaysBefore: rj.DaysBefore,
		}
	}
}

func parseCancellationType(s string) contract.CancellationPolicyType {
	switch s {
	case "non_refundable":
		return contract.CancellationNonRefundable
	case "flexible":
		return contract.CancellationFlexible
	default:
		return contract.CancellationStandard
	}
}

func parseAttritionBasis(s string) contract.AttritionBasis {
	if s == "current_quantity" {
		return contract.BasisCurrentQuantity
	}
	return contract.BasisOriginalQuantity
}

func parsePayment(pj PaymentJSON) contract.PaymentTerms {
	return contract.PaymentTerms{
		DepositPercent:  decimal.NewFromFloat(pj.DepositPercent),
		DepositDue:      contract.DueOffset(pj.DepositDue),
		BalanceDue:      contract.DueOffset(pj.BalanceDue),
		AcceptedMethods: pj.AcceptedMethods,

		SupplierPaymentType: pj.SupplierPaymentType,
		SupplierPaymentDay:  pj.SupplierPaymentDay,
		SupplierCurrency:    pj.SupplierCurrency,

		Commission: contract.Commission{
			Rate:      decimal.NewFromFloat(pj.CommissionRate),
			Type:      contract.CommissionType(pj.CommissionType),
			AppliesTo: contract.CommissionBase(pj.CommissionAppliesTo),
		},
	}
}

func parseOperational(oj OperationalJSON) (contract.OperationalTerms, error) {
	terms := contract.OperationalTerms{
		AmendmentAllowed: oj.AmendmentAllowed,
		MinServiceLength: oj.MinServiceLength,
		MaxServiceLength: oj.MaxServiceLength,
	}

	var err error
	if terms.LeadTime, err = parseDuration(oj.LeadTime, "lead_time"); err != nil {
		return contract.OperationalTerms{}, err
	}
	if terms.AdvanceBooking, err = parseDuration(oj.AdvanceBooking, "advance_booking"); err != nil {
		return contract.OperationalTerms{}, err
	}
	if terms.ConfirmationTime, err = parseDuration(oj.ConfirmationTime, "confirmation_time"); err != nil {
		return contract.OperationalTerms{}, err
	}
	if terms.AmendmentDeadline, err = parseDuration(oj.AmendmentDeadline, "amendment_deadline"); err != nil {
		return contract.OperationalTerms{}, err
	}
	return terms, nil
}

func parseDuration(s, field string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s duration %q: %w", field, s, err)
	}
	return d, nil
}

func parseModifiers(mj ModifiersJSON) (rates.RateModifiers, error) {
	var mods rates.RateModifiers

	for _, sj := range mj.Seasonal {
		adj := rates.SeasonalAdjustment{Name: sj.Name, Percent: decimal.NewFromFloat(sj.Percent)}
		for _, ds := range sj.Dates {
			d, err := engine.ParseDate(ds)
			if err != nil {
				return rates.RateModifiers{}, fmt.Errorf("seasonal modifier %q: %w", sj.Name, err)
			}
			adj.Dates = append(adj.Dates, d)
		}
		mods.Seasonal = append(mods.Seasonal, adj)
	}

	for _, lj := range mj.LengthBased {
		mods.LengthBased = append(mods.LengthBased, rates.LengthAdjustment{
			Name:          lj.Name,
			Threshold:     lj.Threshold,
			ThresholdType: rates.LengthThresholdType(lj.ThresholdType),
			Percent:       decimal.NewFromFloat(lj.Percent),
		})
	}

	for _, aj := range mj.AdvancePurchase {
		mods.AdvancePurchase = append(mods.AdvancePurchase, rates.AdvancePurchaseAdjustment{
			Name:        aj.Name,
			DaysAdvance: aj.DaysAdvance,
			Percent:     decimal.NewFromFloat(aj.Percent),
		})
	}

	if mj.DayOfWeek != nil {
		mods.DayOfWeek.Enabled = mj.DayOfWeek.Enabled
		if len(mj.DayOfWeek.Percents) > 0 {
			mods.DayOfWeek.Percents = make(map[time.Weekday]decimal.Decimal, len(mj.DayOfWeek.Percents))
			for name, pct := range mj.DayOfWeek.Percents {
				wd, err := parseWeekday(name)
				if err != nil {
					return rates.RateModifiers{}, err
				}
				mods.DayOfWeek.Percents[wd] = decimal.NewFromFloat(pct)
			}
		}
	}

	for _, vj := range mj.VolumeBased {
		mods.VolumeBased = append(mods.VolumeBased, rates.VolumeAdjustment{
			Name:      vj.Name,
			Threshold: vj.Threshold,
			Percent:   decimal.NewFromFloat(vj.Percent),
		})
	}

	return mods, nil
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

func parseWeekday(s string) (time.Weekday, error) {
	if wd, ok := weekdays[strings.ToLower(s)]; ok {
		return wd, nil
	}
	return 0, fmt.Errorf("unknown weekday: %q", s)
}

// =============================================================================
// SERIALIZATION HELPERS
// =============================================================================

func penaltyRuleJSON(daysBefore int, penalty contract.PenaltyExpr, allowed decimal.Decimal, description string) PenaltyRuleJSON {
	rj := PenaltyRuleJSON{DaysBefore: daysBefore, Description: description}
	if pct, ok := penalty.Percent(); ok {
		v, _ := pct.Float64()
		rj.PenaltyPercent = &v
	}
	if amt, ok := penalty.Amount(); ok {
		v, _ := amt.Float64()
		rj.PenaltyAmount = &v
	}
	if !allowed.IsZero() {
		rj.AllowedReductionPercent, _ = allowed.Float64()
	}
	return rj
}

func paymentJSON(p contract.PaymentTerms) *PaymentJSON {
	deposit, _ := p.DepositPercent.Float64()
	commission, _ := p.Commission.Rate.Float64()
	pj := PaymentJSON{
		DepositPercent:  deposit,
		DepositDue:      string(p.DepositDue),
		BalanceDue:      string(p.BalanceDue),
		AcceptedMethods: p.AcceptedMethods,

		SupplierPaymentType: p.SupplierPaymentType,
		SupplierPaymentDay:  p.SupplierPaymentDay,
		SupplierCurrency:    p.SupplierCurrency,

		CommissionRate:      commission,
		CommissionType:      string(p.Commission.Type),
		CommissionAppliesTo: string(p.Commission.AppliesTo),
	}
	if deposit == 0 && commission == 0 && pj.DepositDue == "" && pj.BalanceDue == "" &&
		len(pj.AcceptedMethods) == 0 && pj.SupplierPaymentType == "" {
		return nil
	}
	return &pj
}

func operationalJSON(o contract.OperationalTerms) *OperationalJSON {
	if o == (contract.OperationalTerms{}) {
		return nil
	}
	return &OperationalJSON{
		LeadTime:         formatDuration(o.LeadTime),
		AdvanceBooking:   formatDuration(o.AdvanceBooking),
		ConfirmationTime: formatDuration(o.ConfirmationTime),

		AmendmentAllowed:  o.AmendmentAllowed,
		AmendmentDeadline: formatDuration(o.AmendmentDeadline),

		MinServiceLength: o.MinServiceLength,
		MaxServiceLength: o.MaxServiceLength,
	}
}

func formatDuration(d time.Duration) string {
	if d == 0 {
		return ""
	}
	return d.String()
}

func modifiersJSON(m rates.RateModifiers) *ModifiersJSON {
	mj := ModifiersJSON{}
	empty := true

	for _, s := range m.Seasonal {
		sj := SeasonalJSON{Name: s.Name}
		sj.Percent, _ = s.Percent.Float64()
		for _, d := range s.Dates {
			sj.Dates = append(sj.Dates, d.String())
		}
		mj.Seasonal = append(mj.Seasonal, sj)
		empty = false
	}
	for _, l := range m.LengthBased {
		lj := LengthJSON{Name: l.Name, Threshold: l.Threshold, ThresholdType: string(l.ThresholdType)}
		lj.Percent, _ = l.Percent.Float64()
		mj.LengthBased = append(mj.LengthBased, lj)
		empty = false
	}
	for _, a := range m.AdvancePurchase {
		aj := AdvancePurchaseJSON{Name: a.Name, DaysAdvance: a.DaysAdvance}
		aj.Percent, _ = a.Percent.Float64()
		mj.AdvancePurchase = append(mj.AdvancePurchase, aj)
		empty = false
	}
	if m.DayOfWeek.Enabled || len(m.DayOfWeek.Percents) > 0 {
		dj := DayOfWeekJSON{Enabled: m.DayOfWeek.Enabled}
		if len(m.DayOfWeek.Percents) > 0 {
			dj.Percents = make(map[string]float64, len(m.DayOfWeek.Percents))
			for wd, pct := range m.DayOfWeek.Percents {
				v, _ := pct.Float64()
				dj.Percents[strings.ToLower(wd.String())] = v
			}
		}
		mj.DayOfWeek = &dj
		empty = false
	}
	for _, v := range m.VolumeBased {
		vj := VolumeJSON{Name: v.Name, Threshold: v.Threshold}
		vj.Percent, _ = v.Percent.Float64()
		mj.VolumeBased = append(mj.VolumeBased, vj)
		empty = false
	}

	if empty {
		return nil
	}
	return &mj
}
