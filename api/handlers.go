/*
handlers.go - HTTP API handlers for the tariff resolution engine

PURPOSE:
  Exposes contract and rate management plus the resolution operations via
  REST API. Handles HTTP request/response, JSON serialization, and
  delegates to domain logic.

ENDPOINTS:
  Contracts:
    GET    /api/contracts                  List contract headers
    POST   /api/contracts                  Create/update a contract header
    GET    /api/contracts/{id}             Get contract details
    DELETE /api/contracts/{id}             Delete contract and versions
    GET    /api/contracts/{id}/versions    List versions
    POST   /api/contracts/{id}/versions    Create a version document

  Versions:
    GET    /api/versions/{id}              Get a version document
    DELETE /api/versions/{id}              Delete a version

  Rates:
    GET    /api/rates                      List rates (?product_option_id=)
    POST   /api/rates                      Create/update a rate document
    GET    /api/rates/{id}                 Get a rate document
    DELETE /api/rates/{id}                 Delete a rate
    POST   /api/rates/{id}/activate        Activate
    POST   /api/rates/{id}/deactivate      Deactivate

  Resolution:
    POST   /api/resolve/version            Effective version for a date
    POST   /api/resolve/cancellation       Cancellation term (+ charge)
    POST   /api/resolve/attrition          Attrition allowance and penalty
    POST   /api/resolve/price              Price a stay (+ modifiers, margin)
    POST   /api/resolve/booking-window     Operational-terms check
    POST   /api/resolve/margin             Margin / markup calculator

  Scenarios:
    GET    /api/scenarios                  List demo scenarios
    POST   /api/scenarios/load             Load a demo scenario
    POST   /api/scenarios/reset            Reset the database

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Store: Database access
  - Factory: JSON document conversion

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input
  3. Call domain logic (resolvers, pricing pipeline)
  4. Serialize response
  5. Handle errors

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found, no applicable rule or version
  - 409: Data integrity faults (ambiguous overlap, bad rule sets)
  - 422: Resolvable request the data cannot serve (inactive rate, no
         matching occupancy, booking-window violation)
  - 500: Internal errors

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/voyago/tariff-engine/contract"
	"github.com/voyago/tariff-engine/engine"
	"github.com/voyago/tariff-engine/factory"
	"github.com/voyago/tariff-engine/rates"
	"github.com/voyago/tariff-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store   *sqlite.Store
	Factory *factory.Factory

	// Track currently loaded scenario
	currentScenario string
}

// NewHandler creates a new handler with the given store.
func NewHandler(store *sqlite.Store) *Handler {
	return &Handler{
		Store:   store,
		Factory: factory.New(),
	}
}

// =============================================================================
// CONTRACT HANDLERS
// =============================================================================

// ListContracts returns all contract headers.
func (h *Handler) ListContracts(w http.ResponseWriter, r *http.Request) {
	contracts, err := h.Store.ListContracts(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list contracts", err)
		return
	}

	dtos := make([]ContractDTO, len(contracts))
	for i, c := range contracts {
		dtos[i] = toContractDTO(c)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetContract returns a single contract header.
func (h *Handler) GetContract(w http.ResponseWriter, r *http.Request) {
	id := engine.ContractID(chi.URLParam(r, "id"))

	c, err := h.Store.GetContract(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get contract", err)
		return
	}
	if c == nil {
		writeError(w, http.StatusNotFound, "Contract not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toContractDTO(*c))
}

// CreateContract creates or updates a contract header.
func (h *Handler) CreateContract(w http.ResponseWriter, r *http.Request) {
	var req CreateContractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" || req.SupplierName == "" {
		writeError(w, http.StatusBadRequest, "name and supplier_name are required", nil)
		return
	}

	saved, err := h.Store.SaveContract(r.Context(), sqlite.Contract{
		ID:           engine.ContractID(req.ID),
		Name:         req.Name,
		SupplierName: req.SupplierName,
		ProductType:  req.ProductType,
		Status:       req.Status,
		Notes:        req.Notes,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save contract", err)
		return
	}
	writeJSON(w, http.StatusCreated, toContractDTO(saved))
}

// DeleteContract removes a contract and its versions.
func (h *Handler) DeleteContract(w http.ResponseWriter, r *http.Request) {
	id := engine.ContractID(chi.URLParam(r, "id"))
	if err := h.Store.DeleteContract(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete contract", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// VERSION HANDLERS
// =============================================================================

// ListVersions returns all version documents of a contract.
func (h *Handler) ListVersions(w http.ResponseWriter, r *http.Request) {
	contractID := engine.ContractID(chi.URLParam(r, "id"))

	versions, err := h.Store.ListVersions(r.Context(), contractID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list versions", err)
		return
	}

	docs := make([]factory.ContractVersionJSON, len(versions))
	for i, v := range versions {
		docs[i] = h.Factory.ToContractJSON(v)
	}
	writeJSON(w, http.StatusOK, docs)
}

// CreateVersion stores a version document under a contract.
func (h *Handler) CreateVersion(w http.ResponseWriter, r *http.Request) {
	contractID := engine.ContractID(chi.URLParam(r, "id"))

	var doc factory.ContractVersionJSON
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	doc.ContractID = string(contractID)

	version, err := h.Factory.ContractVersionFromJSON(doc)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid version document", err)
		return
	}

	saved, err := h.Store.SaveVersion(r.Context(), version)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save version", err)
		return
	}
	writeJSON(w, http.StatusCreated, h.Factory.ToContractJSON(saved))
}

// GetVersion returns a version document by ID.
func (h *Handler) GetVersion(w http.ResponseWriter, r *http.Request) {
	id := engine.VersionID(chi.URLParam(r, "id"))

	v, err := h.Store.GetVersion(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get version", err)
		return
	}
	if v == nil {
		writeError(w, http.StatusNotFound, "Version not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, h.Factory.ToContractJSON(*v))
}

// DeleteVersion removes a version.
func (h *Handler) DeleteVersion(w http.ResponseWriter, r *http.Request) {
	id := engine.VersionID(chi.URLParam(r, "id"))
	if err := h.Store.DeleteVersion(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete version", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// RATE HANDLERS
// =============================================================================

// ListRates returns rate documents, optionally filtered by product option.
// When check_in and check_out are given, only active rates whose validity
// covers the whole stay are returned.
func (h *Handler) ListRates(w http.ResponseWriter, r *http.Request) {
	productOptionID := engine.ProductOptionID(r.URL.Query().Get("product_option_id"))

	list, err := h.listRates(r, productOptionID)
	if err != nil {
		if engine.IsClientError(err) {
			writeError(w, http.StatusBadRequest, "Invalid stay filter (use YYYY-MM-DD)", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to list rates", err)
		return
	}

	docs := make([]factory.SellingRateJSON, len(list))
	for i, rate := range list {
		docs[i] = h.Factory.ToRateJSON(rate)
	}
	writeJSON(w, http.StatusOK, docs)
}

func (h *Handler) listRates(r *http.Request, productOptionID engine.ProductOptionID) ([]rates.SellingRate, error) {
	checkIn := r.URL.Query().Get("check_in")
	if checkIn == "" {
		return h.Store.ListRates(r.Context(), productOptionID)
	}

	from, err := engine.ParseDate(checkIn)
	if err != nil {
		return nil, fmt.Errorf("%w: check_in: %v", engine.ErrInvalidDateRange, err)
	}
	to, err := engine.ParseDate(r.URL.Query().Get("check_out"))
	if err != nil {
		return nil, fmt.Errorf("%w: check_out: %v", engine.ErrInvalidDateRange, err)
	}
	return h.Store.RatesCovering(r.Context(), productOptionID, engine.DateRange{From: from, To: to})
}

// CreateRate stores a rate document.
func (h *Handler) CreateRate(w http.ResponseWriter, r *http.Request) {
	var doc factory.SellingRateJSON
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	rate, err := h.Factory.SellingRateFromJSON(doc)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid rate document", err)
		return
	}

	saved, err := h.Store.SaveRate(r.Context(), rate)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save rate", err)
		return
	}
	writeJSON(w, http.StatusCreated, h.Factory.ToRateJSON(saved))
}

// GetRate returns a rate document by ID.
func (h *Handler) GetRate(w http.ResponseWriter, r *http.Request) {
	id := engine.RateID(chi.URLParam(r, "id"))

	rate, err := h.Store.GetRate(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get rate", err)
		return
	}
	if rate == nil {
		writeError(w, http.StatusNotFound, "Rate not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, h.Factory.ToRateJSON(*rate))
}

// DeleteRate removes a rate.
func (h *Handler) DeleteRate(w http.ResponseWriter, r *http.Request) {
	id := engine.RateID(chi.URLParam(r, "id"))
	if err := h.Store.DeleteRate(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete rate", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ActivateRate flips a rate active.
func (h *Handler) ActivateRate(w http.ResponseWriter, r *http.Request) {
	h.setRateActive(w, r, true)
}

// DeactivateRate flips a rate inactive.
func (h *Handler) DeactivateRate(w http.ResponseWriter, r *http.Request) {
	h.setRateActive(w, r, false)
}

func (h *Handler) setRateActive(w http.ResponseWriter, r *http.Request, active bool) {
	id := engine.RateID(chi.URLParam(r, "id"))
	if err := h.Store.SetRateActive(r.Context(), id, active); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update rate", err)
		return
	}

	rate, err := h.Store.GetRate(r.Context(), id)
	if err != nil || rate == nil {
		writeError(w, http.StatusInternalServerError, "Failed to reload rate", err)
		return
	}
	writeJSON(w, http.StatusOK, h.Factory.ToRateJSON(*rate))
}

// =============================================================================
// RESOLUTION HANDLERS
// =============================================================================

// ResolveVersion returns the version governing a contract on a date.
// POST /api/resolve/version
func (h *Handler) ResolveVersion(w http.ResponseWriter, r *http.Request) {
	var req ResolveVersionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	onDate, err := engine.ParseDate(req.OnDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid on_date (use YYYY-MM-DD)", err)
		return
	}

	version, err := h.effectiveVersion(r, engine.ContractID(req.ContractID), onDate)
	if err != nil {
		writeResolutionError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, VersionResolutionDTO{
		ContractID: req.ContractID,
		OnDate:     onDate.String(),
		VersionID:  string(version.ID),
		ValidFrom:  version.ValidFrom.String(),
		ValidTo:    version.ValidTo.String(),
	})
}

// ResolveCancellation returns the cancellation term, and the charge when a
// booking value is supplied.
// POST /api/resolve/cancellation
func (h *Handler) ResolveCancellation(w http.ResponseWriter, r *http.Request) {
	var req ResolveCancellationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	cancelAt, err := engine.ParseDate(req.CancelAt)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid cancel_at (use YYYY-MM-DD)", err)
		return
	}
	serviceDate, err := engine.ParseDate(req.ServiceDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid service_date (use YYYY-MM-DD)", err)
		return
	}

	// Terms are resolved against the version governing the service date.
	version, err := h.effectiveVersion(r, engine.ContractID(req.ContractID), serviceDate)
	if err != nil {
		writeResolutionError(w, err)
		return
	}

	term, err := contract.ResolveCancellationTerm(*version, cancelAt, serviceDate)
	if err != nil {
		writeResolutionError(w, err)
		return
	}

	dto := CancellationTermDTO{
		VersionID:   string(version.ID),
		DaysBefore:  term.DaysBefore,
		Free:        term.Free,
		Description: term.Description,
	}
	if term.PenaltyPercent != nil {
		v, _ := term.PenaltyPercent.Float64()
		dto.PenaltyPercent = &v
	}
	if term.PenaltyAmount != nil {
		v, _ := term.PenaltyAmount.Float64()
		dto.PenaltyAmount = &v
	}
	if req.BookingValue != nil {
		currency := req.Currency
		if currency == "" {
			writeError(w, http.StatusBadRequest, "currency is required with booking_value", nil)
			return
		}
		charge := contract.CancellationCharge(term, engine.NewMoney(*req.BookingValue, currency))
		v, _ := charge.Amount.Float64()
		dto.Charge = &v
		dto.Currency = currency
	}

	writeJSON(w, http.StatusOK, dto)
}

// ResolveAttrition returns the attrition allowance and penalty.
// POST /api/resolve/attrition
func (h *Handler) ResolveAttrition(w http.ResponseWriter, r *http.Request) {
	var req ResolveAttritionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	checkAt, err := engine.ParseDate(req.CheckAt)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid check_at (use YYYY-MM-DD)", err)
		return
	}
	serviceDate, err := engine.ParseDate(req.ServiceDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid service_date (use YYYY-MM-DD)", err)
		return
	}
	if req.OriginalQuantity <= 0 {
		writeError(w, http.StatusBadRequest, "original_quantity must be positive", nil)
		return
	}
	if req.CurrentQuantity <= 0 {
		req.CurrentQuantity = req.OriginalQuantity
	}

	version, err := h.effectiveVersion(r, engine.ContractID(req.ContractID), serviceDate)
	if err != nil {
		writeResolutionError(w, err)
		return
	}

	term, err := contract.ResolveAttritionTerm(*version, checkAt, serviceDate,
		req.CurrentQuantity, req.OriginalQuantity)
	if err != nil {
		writeResolutionError(w, err)
		return
	}

	allowed, _ := term.AllowedReductionPercent.Float64()
	dto := AttritionTermDTO{
		VersionID:               string(version.ID),
		DaysBefore:              term.DaysBefore,
		AllowedReductionPercent: allowed,
		AllowedUnits:            term.AllowedUnits,
		BasisQuantity:           term.BasisQuantity,
		Description:             term.Description,
	}
	if term.PenaltyPerUnit != nil {
		v, _ := term.PenaltyPerUnit.Float64()
		dto.PenaltyPerUnit = &v
	}
	if term.PenaltyPercent != nil {
		v, _ := term.PenaltyPercent.Float64()
		dto.PenaltyPercent = &v
	}

	writeJSON(w, http.StatusOK, dto)
}

// ResolvePrice prices a stay under a rate, optionally applying the effective
// contract version's modifiers and reporting the margin.
// POST /api/resolve/price
func (h *Handler) ResolvePrice(w http.ResponseWriter, r *http.Request) {
	var req ResolvePriceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	checkIn, err := engine.ParseDate(req.CheckIn)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid check_in (use YYYY-MM-DD)", err)
		return
	}
	checkOut, err := engine.ParseDate(req.CheckOut)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid check_out (use YYYY-MM-DD)", err)
		return
	}
	if req.Adults <= 0 {
		writeError(w, http.StatusBadRequest, "adults must be positive", nil)
		return
	}

	rate, err := h.Store.GetRate(r.Context(), engine.RateID(req.RateID))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get rate", err)
		return
	}
	if rate == nil {
		writeError(w, http.StatusNotFound, "Rate not found", nil)
		return
	}

	stay := engine.DateRange{From: checkIn, To: checkOut}
	occupancy := rates.Occupancy{Adults: req.Adults, Children: req.Children}

	resolved, err := rates.ResolvePriceWithExtras(*rate, stay, occupancy, req.Extras)
	if err != nil {
		writeResolutionError(w, err)
		return
	}
	breakdown := *resolved

	if req.ContractID != "" {
		bookedAt := checkIn
		if req.BookedAt != "" {
			if bookedAt, err = engine.ParseDate(req.BookedAt); err != nil {
				writeError(w, http.StatusBadRequest, "Invalid booked_at (use YYYY-MM-DD)", err)
				return
			}
		}
		version, err := h.effectiveVersion(r, engine.ContractID(req.ContractID), checkIn)
		if err != nil {
			writeResolutionError(w, err)
			return
		}
		breakdown = rates.ApplyModifiers(breakdown, version.Modifiers, rates.ModifierContext{
			Stay:     stay,
			BookedAt: bookedAt,
			Quantity: req.Quantity,
		})
	}

	dto := toPriceDTO(breakdown)
	if req.IncludeMargin {
		margin, err := rates.RateMargin(*rate, breakdown.Total)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to compute margin", err)
			return
		}
		dto.Margin = toMarginDTO(margin, rate.Currency)
	}

	writeJSON(w, http.StatusOK, dto)
}

// CheckBookingWindow validates a prospective booking against the effective
// version's operational terms.
// POST /api/resolve/booking-window
func (h *Handler) CheckBookingWindow(w http.ResponseWriter, r *http.Request) {
	var req BookingWindowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	bookAt, err := engine.ParseDate(req.BookAt)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid book_at (use YYYY-MM-DD)", err)
		return
	}
	serviceDate, err := engine.ParseDate(req.ServiceDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid service_date (use YYYY-MM-DD)", err)
		return
	}

	version, err := h.effectiveVersion(r, engine.ContractID(req.ContractID), serviceDate)
	if err != nil {
		writeResolutionError(w, err)
		return
	}

	dto := BookingWindowDTO{VersionID: string(version.ID), Allowed: true}
	if err := contract.CheckBookingWindow(*version, bookAt, serviceDate, req.ServiceDays); err != nil {
		var windowErr *engine.BookingWindowError
		if !errors.As(err, &windowErr) {
			writeError(w, http.StatusInternalServerError, "Failed to check booking window", err)
			return
		}
		dto.Allowed = false
		dto.Term = windowErr.Term
		dto.Message = windowErr.Message
	}

	writeJSON(w, http.StatusOK, dto)
}

// ResolveMargin is the standalone margin / markup calculator.
// POST /api/resolve/margin
func (h *Handler) ResolveMargin(w http.ResponseWriter, r *http.Request) {
	var req MarginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Currency == "" {
		writeError(w, http.StatusBadRequest, "currency is required", nil)
		return
	}

	var price engine.Money
	switch {
	case req.Price != nil:
		price = engine.NewMoney(*req.Price, req.Currency)
	case req.MarkupPercent != nil && req.Cost != nil:
		// Markup editing: derive the price from cost + markup.
		price = rates.PriceFromMarkup(
			engine.NewMoney(*req.Cost, req.Currency),
			decimal.NewFromFloat(*req.MarkupPercent))
	default:
		writeError(w, http.StatusBadRequest, "price, or cost with markup_percent, is required", nil)
		return
	}

	var cost *engine.Money
	if req.Cost != nil {
		c := engine.NewMoney(*req.Cost, req.Currency)
		cost = &c
	}

	result, err := rates.ComputeMargin(price, cost)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to compute margin", err)
		return
	}

	dto := toMarginDTO(result, req.Currency)
	if cost != nil {
		markup, _ := rates.MarkupFromPrice(*cost, price).Float64()
		dto.MarkupPercent = &markup
	}
	writeJSON(w, http.StatusOK, dto)
}

// =============================================================================
// RESOLUTION PLUMBING
// =============================================================================

// effectiveVersion loads the covering versions and resolves the effective one.
func (h *Handler) effectiveVersion(r *http.Request, contractID engine.ContractID, onDate engine.Date) (*contract.ContractVersion, error) {
	candidates, err := h.Store.VersionsCovering(r.Context(), contractID, onDate)
	if err != nil {
		return nil, err
	}
	version, err := contract.ResolveVersion(candidates, onDate)
	if err != nil {
		return nil, err
	}
	return &version, nil
}

// writeResolutionError maps domain errors onto HTTP statuses.
func writeResolutionError(w http.ResponseWriter, err error) {
	switch {
	case engine.IsNotFound(err):
		writeError(w, http.StatusNotFound, "No applicable rule or version", err)
	case engine.IsDataFault(err):
		writeError(w, http.StatusConflict, "Contract data fault", err)
	case engine.IsClientError(err):
		writeError(w, http.StatusUnprocessableEntity, "Request cannot be served by this rate", err)
	default:
		writeError(w, http.StatusInternalServerError, "Resolution failed", err)
	}
}

// =============================================================================
// DTO CONVERSION
// =============================================================================

func toContractDTO(c sqlite.Contract) ContractDTO {
	dto := ContractDTO{
		ID:           string(c.ID),
		Name:         c.Name,
		SupplierName: c.SupplierName,
		ProductType:  c.ProductType,
		Status:       c.Status,
		Notes:        c.Notes,
	}
	if !c.CreatedAt.IsZero() {
		dto.CreatedAt = c.CreatedAt.Format(time.RFC3339)
	}
	if !c.UpdatedAt.IsZero() {
		dto.UpdatedAt = c.UpdatedAt.Format(time.RFC3339)
	}
	return dto
}

func toPriceDTO(b rates.PriceBreakdown) PriceResolutionDTO {
	dto := PriceResolutionDTO{
		RateID:   string(b.RateID),
		Basis:    string(b.Basis),
		Currency: b.Currency,
		Lines:    make([]PriceLineDTO, len(b.Lines)),
	}
	for i, line := range b.Lines {
		l := PriceLineDTO{Description: line.Description}
		if line.Date != nil {
			l.Date = line.Date.String()
		}
		l.UnitPrice, _ = line.UnitPrice.Amount.Float64()
		l.Multiplier, _ = line.Multiplier.Float64()
		l.Amount, _ = line.Amount.Amount.Float64()
		dto.Lines[i] = l
	}
	dto.Subtotal, _ = b.Subtotal.Amount.Float64()
	for _, adj := range b.Adjustments {
		factor, _ := adj.Factor.Float64()
		dto.Modifiers = append(dto.Modifiers, AppliedModifierDTO{
			Category: adj.Category,
			Name:     adj.Name,
			Factor:   factor,
		})
	}
	dto.Total, _ = b.Total.Amount.Float64()
	return dto
}

func toMarginDTO(m rates.MarginResult, currency string) *MarginDTO {
	dto := &MarginDTO{Currency: currency}
	if m.Cost != nil {
		v, _ := m.Cost.Amount.Float64()
		dto.Cost = &v
	}
	dto.Price, _ = m.Price.Amount.Float64()
	dto.Margin, _ = m.Margin.Amount.Float64()
	if m.MarginPercent != nil {
		v, _ := m.MarginPercent.Float64()
		dto.MarginPercent = &v
	}
	return dto
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
