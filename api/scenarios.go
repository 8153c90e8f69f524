/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the database with realistic
	data for testing and demos. Each scenario creates contracts, versions,
	and selling rates that demonstrate specific resolution features.

AVAILABLE SCENARIOS:

	city-hotel:    Hotel allotment with seasonal versions, daily overrides,
	               occupancy pricing, and a modifier stack
	group-block:   Group series with an attrition schedule and per-person
	               rates
	coach-tour:    Per-vehicle touring product with tight booking windows
	               and markup-driven pricing

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Create the contract header
 3. Parse version and rate documents through the factory
 4. Save everything through the store

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "city-hotel"}

ADDING NEW SCENARIOS:
 1. Add to 'scenarios' slice with ID, name, description
 2. Create loader function: loadXxxScenario(ctx, h)
 3. Add case to LoadScenario handler

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Resolution handlers exercised by this data
  - factory: Document JSON definitions
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/voyago/tariff-engine/store/sqlite"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "city-hotel",
		Name:        "City Hotel Allotment",
		Description: "Seasonal contract versions, daily rate overrides, occupancy pricing, modifier stack",
		Category:    "accommodation",
	},
	{
		ID:          "group-block",
		Name:        "Group Series Block",
		Description: "Attrition schedule with cumulative release thresholds and per-person rates",
		Category:    "groups",
	},
	{
		ID:          "coach-tour",
		Name:        "Coach Touring Product",
		Description: "Per-vehicle rates, strict booking windows, markup-driven selling price",
		Category:    "touring",
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	if h.currentScenario == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}

	for _, s := range scenarios {
		if s.ID == h.currentScenario {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}

	// Scenario ID exists but not in list (shouldn't happen)
	writeJSON(w, http.StatusOK, ScenarioDTO{
		ID:          h.currentScenario,
		Name:        h.currentScenario,
		Description: "Currently loaded scenario",
	})
}

// LoadScenario loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ctx := r.Context()

	// Reset first
	if err := h.Store.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.currentScenario = ""

	var err error
	switch req.ScenarioID {
	case "city-hotel":
		err = h.loadCityHotelScenario(ctx)
	case "group-block":
		err = h.loadGroupBlockScenario(ctx)
	case "coach-tour":
		err = h.loadCoachTourScenario(ctx)
	default:
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to load scenario: %v", err), err)
		return
	}

	h.currentScenario = req.ScenarioID

	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// ResetDatabase clears all data.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.currentScenario = ""

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

// loadDocuments parses and saves a set of version and rate documents.
func (h *Handler) loadDocuments(ctx context.Context, versionDocs, rateDocs []string) error {
	for _, doc := range versionDocs {
		version, err := h.Factory.ParseContractVersion(doc)
		if err != nil {
			return fmt.Errorf("parse version: %w", err)
		}
		if _, err := h.Store.SaveVersion(ctx, version); err != nil {
			return fmt.Errorf("save version %s: %w", version.ID, err)
		}
	}
	for _, doc := range rateDocs {
		rate, err := h.Factory.ParseSellingRate(doc)
		if err != nil {
			return fmt.Errorf("parse rate: %w", err)
		}
		if _, err := h.Store.SaveRate(ctx, rate); err != nil {
			return fmt.Errorf("save rate %s: %w", rate.ID, err)
		}
	}
	return nil
}

func (h *Handler) loadCityHotelScenario(ctx context.Context) error {
	if _, err := h.Store.SaveContract(ctx, sqlite.Contract{
		ID:           "contract-grand-plaza",
		Name:         "Grand Plaza 2026 Allotment",
		SupplierName: "Grand Plaza Hotel",
		ProductType:  "accommodation",
		Status:       "active",
		Notes:        "20 rooms/night allotment, release 14 days before arrival",
	}); err != nil {
		return err
	}

	shoulderVersion := `{
		"id": "grand-plaza-v1",
		"contract_id": "contract-grand-plaza",
		"valid_from": "2026-01-01",
		"valid_to": "2026-06-01",
		"cancellation": {
			"type": "standard",
			"rules": [
				{"days_before": 14, "penalty_percent": 0, "description": "Free cancellation until 14 days before arrival"},
				{"days_before": 7, "penalty_percent": 50, "description": "50% of booking value"},
				{"days_before": 0, "penalty_percent": 100, "description": "Full charge"}
			]
		},
		"payment": {
			"deposit_percent": 20,
			"deposit_due": "at_booking",
			"balance_due": "30_days_before",
			"commission_rate": 15,
			"commission_type": "percentage"
		},
		"operational": {
			"lead_time": "48h",
			"min_service_length": 1,
			"max_service_length": 14
		}
	}`

	summerVersion := `{
		"id": "grand-plaza-v2",
		"contract_id": "contract-grand-plaza",
		"valid_from": "2026-06-01",
		"valid_to": "2026-10-01",
		"cancellation": {
			"type": "standard",
			"rules": [
				{"days_before": 30, "penalty_percent": 0, "description": "Free cancellation until 30 days before arrival"},
				{"days_before": 14, "penalty_percent": 50, "description": "50% of booking value"},
				{"days_before": 0, "penalty_percent": 100, "description": "Full charge"}
			]
		},
		"payment": {
			"deposit_percent": 30,
			"deposit_due": "at_booking",
			"balance_due": "45_days_before",
			"commission_rate": 15,
			"commission_type": "percentage"
		},
		"operational": {
			"lead_time": "72h",
			"min_service_length": 2,
			"max_service_length": 14
		},
		"modifiers": {
			"seasonal": [
				{"name": "trade fair dates", "dates": ["2026-07-13", "2026-07-14", "2026-07-15", "2026-08-14", "2026-08-15"], "percent": 15}
			],
			"length_based": [
				{"name": "weekly stay", "threshold": 7, "threshold_type": "at_least", "percent": -10}
			],
			"advance_purchase": [
				{"name": "early bird", "days_advance": 60, "percent": -5}
			],
			"day_of_week": {
				"enabled": true,
				"percents": {"friday": 20, "saturday": 20}
			}
		}
	}`

	nightlyRate := `{
		"id": "rate-plaza-double",
		"product_option_id": "plaza-double-room",
		"valid_from": "2026-06-01",
		"valid_to": "2026-10-01",
		"basis": "per_night",
		"base_price": 180,
		"currency": "EUR",
		"target_cost": 120,
		"is_active": true,
		"pricing": {
			"minimum_nights": 2,
			"maximum_nights": 14,
			"daily_rates": {
				"2026-07-14": {"price": 320, "pricing_tier": "event", "event_context": "Bastille Day"},
				"2026-08-15": {"price": 290, "pricing_tier": "event", "event_context": "Assumption weekend"}
			},
			"occupancy_pricing": [
				{"adults": 1, "children": 0, "multiplier": 0.85, "description": "Single use"},
				{"adults": 2, "children": 0, "multiplier": 1, "description": "Standard double"},
				{"adults": 2, "children": 1, "multiplier": 1.25, "description": "Extra child bed"}
			],
			"extras": [
				{"name": "breakfast", "price": 18, "availability": "daily"},
				{"name": "airport transfer", "price": 55, "availability": "on_request"}
			],
			"inclusions": ["city tax", "wifi"]
		}
	}`

	return h.loadDocuments(ctx,
		[]string{shoulderVersion, summerVersion},
		[]string{nightlyRate})
}

func (h *Handler) loadGroupBlockScenario(ctx context.Context) error {
	if _, err := h.Store.SaveContract(ctx, sqlite.Contract{
		ID:           "contract-alpine-series",
		Name:         "Alpine Coach Series 2026",
		SupplierName: "Alpenhof Resort",
		ProductType:  "group_series",
		Status:       "active",
		Notes:        "40-room block, weekly departures May-September",
	}); err != nil {
		return err
	}

	groupVersion := `{
		"id": "alpine-series-v1",
		"contract_id": "contract-alpine-series",
		"valid_from": "2026-05-01",
		"valid_to": "2026-10-01",
		"cancellation": {
			"type": "standard",
			"rules": [
				{"days_before": 60, "penalty_percent": 0, "description": "Free cancellation of the whole block"},
				{"days_before": 30, "penalty_percent": 25, "description": "25% of block value"},
				{"days_before": 14, "penalty_percent": 50, "description": "50% of block value"},
				{"days_before": 0, "penalty_percent": 100, "description": "Full charge"}
			]
		},
		"attrition": {
			"enabled": true,
			"minimum_quantity": 10,
			"calculation_basis": "original_quantity",
			"cumulative": true,
			"rules": [
				{"days_before": 60, "allowed_reduction_percent": 20, "penalty_percent": 100, "description": "Release up to 20% freely, full charge beyond"},
				{"days_before": 30, "allowed_reduction_percent": 10, "penalty_amount": 45, "description": "Further 10%, EUR 45/room penalty beyond"},
				{"days_before": 14, "allowed_reduction_percent": 0, "penalty_percent": 100, "description": "No further releases"}
			]
		},
		"payment": {
			"deposit_percent": 10,
			"deposit_due": "at_booking",
			"balance_due": "30_days_before",
			"supplier_payment_type": "invoice",
			"supplier_payment_day": 30,
			"supplier_currency": "EUR"
		},
		"operational": {
			"advance_booking": "2160h",
			"min_service_length": 3,
			"max_service_length": 7
		},
		"modifiers": {
			"volume_based": [
				{"name": "full coach", "threshold": 30, "percent": -8}
			]
		}
	}`

	perPersonRate := `{
		"id": "rate-alpine-halfboard",
		"product_option_id": "alpine-halfboard",
		"valid_from": "2026-05-01",
		"valid_to": "2026-10-01",
		"basis": "per_person",
		"base_price": 65,
		"currency": "EUR",
		"target_cost": 48,
		"is_active": true,
		"pricing": {
			"minimum_nights": 3,
			"maximum_nights": 7,
			"extras": [
				{"name": "gala dinner", "price": 35, "availability": "on_request"}
			],
			"inclusions": ["half board", "spa access"]
		}
	}`

	return h.loadDocuments(ctx,
		[]string{groupVersion},
		[]string{perPersonRate})
}

func (h *Handler) loadCoachTourScenario(ctx context.Context) error {
	if _, err := h.Store.SaveContract(ctx, sqlite.Contract{
		ID:           "contract-lakes-touring",
		Name:         "Italian Lakes Touring 2026",
		SupplierName: "Lario Coaches srl",
		ProductType:  "transport",
		Status:       "active",
	}); err != nil {
		return err
	}

	coachVersion := `{
		"id": "lakes-touring-v1",
		"contract_id": "contract-lakes-touring",
		"valid_from": "2026-04-01",
		"valid_to": "2026-11-01",
		"cancellation": {
			"type": "standard",
			"rules": [
				{"days_before": 21, "penalty_percent": 0, "description": "Free cancellation"},
				{"days_before": 7, "penalty_amount": 250, "description": "EUR 250 repositioning fee"},
				{"days_before": 0, "penalty_percent": 100, "description": "Full charge"}
			]
		},
		"operational": {
			"lead_time": "168h",
			"advance_booking": "4320h",
			"confirmation_time": "24h",
			"amendment_allowed": true,
			"amendment_deadline": "72h",
			"min_service_length": 1,
			"max_service_length": 10
		},
		"additional": {
			"restrictions": ["driver hours per EU regulation 561/2006"],
			"inclusions": ["driver accommodation", "fuel", "tolls"],
			"required_documentation": ["passenger manifest 48h before departure"]
		}
	}`

	vehicleRate := `{
		"id": "rate-lakes-49seater",
		"product_option_id": "lakes-coach-49",
		"valid_from": "2026-04-01",
		"valid_to": "2026-11-01",
		"basis": "per_day",
		"base_price": 780,
		"currency": "EUR",
		"target_cost": 610,
		"markup_type": "percentage",
		"markup_amount": 28,
		"is_active": true,
		"pricing": {
			"minimum_nights": 1,
			"maximum_nights": 10
		}
	}`

	return h.loadDocuments(ctx,
		[]string{coachVersion},
		[]string{vehicleRate})
}
