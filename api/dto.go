/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

TYPES:
  Contracts:
    ContractDTO, CreateContractRequest

  Documents:
    Contract versions and selling rates travel as the factory package's
    JSON forms (ContractVersionJSON, SellingRateJSON) - the API contract
    and the storage format are the same document.

  Resolution:
    ResolveVersionRequest, ResolveCancellationRequest,
    ResolveAttritionRequest, ResolvePriceRequest, BookingWindowRequest,
    MarginRequest and their corresponding response DTOs.

VALIDATION:
  Validation is done in handlers and the factory, not in DTOs. DTOs are
  pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - factory: Document JSON types
*/
package api

// =============================================================================
// CONTRACT TYPES
// =============================================================================

// ContractDTO represents a contract header in API responses.
type ContractDTO struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	SupplierName string `json:"supplier_name"`
	ProductType  string `json:"product_type,omitempty"`
	Status       string `json:"status"`
	Notes        string `json:"notes,omitempty"`
	CreatedAt    string `json:"created_at,omitempty"`
	UpdatedAt    string `json:"updated_at,omitempty"`
}

// CreateContractRequest is the request to create or update a contract header.
type CreateContractRequest struct {
	ID           string `json:"id,omitempty"`
	Name         string `json:"name"`
	SupplierName string `json:"supplier_name"`
	ProductType  string `json:"product_type,omitempty"`
	Status       string `json:"status,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

// =============================================================================
// RESOLUTION REQUESTS
// =============================================================================

// ResolveVersionRequest asks which contract version governs a date.
type ResolveVersionRequest struct {
	ContractID string `json:"contract_id"`
	OnDate     string `json:"on_date"` // YYYY-MM-DD
}

// ResolveCancellationRequest asks for the cancellation term in force when a
// booking is cancelled at cancel_at for a service on service_date.
type ResolveCancellationRequest struct {
	ContractID  string `json:"contract_id"`
	CancelAt    string `json:"cancel_at"`    // YYYY-MM-DD
	ServiceDate string `json:"service_date"` // YYYY-MM-DD

	// Optional: when booking_value is present the response includes the
	// computed charge.
	BookingValue *float64 `json:"booking_value,omitempty"`
	Currency     string   `json:"currency,omitempty"`
}

// ResolveAttritionRequest asks how many units may be released without
// penalty at check_at for a service on service_date.
type ResolveAttritionRequest struct {
	ContractID       string `json:"contract_id"`
	CheckAt          string `json:"check_at"`     // YYYY-MM-DD
	ServiceDate      string `json:"service_date"` // YYYY-MM-DD
	OriginalQuantity int    `json:"original_quantity"`
	CurrentQuantity  int    `json:"current_quantity"`
}

// ResolvePriceRequest asks for the price of a stay under a selling rate.
// When contract_id is present, the effective version's rate modifiers are
// applied on top of the base price.
type ResolvePriceRequest struct {
	RateID   string `json:"rate_id"`
	CheckIn  string `json:"check_in"`  // YYYY-MM-DD
	CheckOut string `json:"check_out"` // YYYY-MM-DD
	Adults   int    `json:"adults"`
	Children int    `json:"children,omitempty"`

	Extras []string `json:"extras,omitempty"`

	ContractID string `json:"contract_id,omitempty"`
	BookedAt   string `json:"booked_at,omitempty"` // YYYY-MM-DD, defaults to check_in
	Quantity   int    `json:"quantity,omitempty"`  // Units booked, for volume modifiers

	IncludeMargin bool `json:"include_margin,omitempty"`
}

// BookingWindowRequest asks whether a booking placed at book_at for a
// service of service_days starting on service_date is inside the contract's
// operational bounds.
type BookingWindowRequest struct {
	ContractID  string `json:"contract_id"`
	BookAt      string `json:"book_at"`      // YYYY-MM-DD
	ServiceDate string `json:"service_date"` // YYYY-MM-DD
	ServiceDays int    `json:"service_days,omitempty"`
}

// MarginRequest asks for profitability of a price against a cost. When
// markup_percent is present instead of price, the price is derived from
// the cost.
type MarginRequest struct {
	Price    *float64 `json:"price,omitempty"`
	Cost     *float64 `json:"cost,omitempty"`
	Currency string   `json:"currency"`

	MarkupPercent *float64 `json:"markup_percent,omitempty"`
}

// =============================================================================
// RESOLUTION RESPONSES
// =============================================================================

// VersionResolutionDTO reports which version governs a date.
type VersionResolutionDTO struct {
	ContractID string `json:"contract_id"`
	OnDate     string `json:"on_date"`
	VersionID  string `json:"version_id"`
	ValidFrom  string `json:"valid_from"`
	ValidTo    string `json:"valid_to"`
}

// CancellationTermDTO is the resolved cancellation term.
type CancellationTermDTO struct {
	VersionID      string   `json:"version_id"`
	DaysBefore     int      `json:"days_before"`
	Free           bool     `json:"free"`
	PenaltyPercent *float64 `json:"penalty_percent,omitempty"`
	PenaltyAmount  *float64 `json:"penalty_amount,omitempty"`
	Description    string   `json:"description,omitempty"`

	Charge   *float64 `json:"charge,omitempty"`
	Currency string   `json:"currency,omitempty"`
}

// AttritionTermDTO is the resolved attrition term.
type AttritionTermDTO struct {
	VersionID               string   `json:"version_id"`
	DaysBefore              int      `json:"days_before"`
	AllowedReductionPercent float64  `json:"allowed_reduction_percent"`
	AllowedUnits            int      `json:"allowed_units"`
	BasisQuantity           int      `json:"basis_quantity"`
	PenaltyPerUnit          *float64 `json:"penalty_per_unit,omitempty"`
	PenaltyPercent          *float64 `json:"penalty_percent,omitempty"`
	Description             string   `json:"description,omitempty"`
}

// PriceLineDTO is one line of a price breakdown.
type PriceLineDTO struct {
	Date        string  `json:"date,omitempty"`
	Description string  `json:"description"`
	UnitPrice   float64 `json:"unit_price"`
	Multiplier  float64 `json:"multiplier"`
	Amount      float64 `json:"amount"`
}

// AppliedModifierDTO is one compounded modifier factor.
type AppliedModifierDTO struct {
	Category string  `json:"category"`
	Name     string  `json:"name"`
	Factor   float64 `json:"factor"`
}

// PriceResolutionDTO is the full pricing response.
type PriceResolutionDTO struct {
	RateID   string `json:"rate_id"`
	Basis    string `json:"basis"`
	Currency string `json:"currency"`

	Lines     []PriceLineDTO       `json:"lines"`
	Subtotal  float64              `json:"subtotal"`
	Modifiers []AppliedModifierDTO `json:"modifiers,omitempty"`
	Total     float64              `json:"total"`

	Margin *MarginDTO `json:"margin,omitempty"`
}

// MarginDTO reports profitability.
type MarginDTO struct {
	Cost          *float64 `json:"cost,omitempty"`
	Price         float64  `json:"price"`
	Margin        float64  `json:"margin"`
	MarginPercent *float64 `json:"margin_percent,omitempty"`
	MarkupPercent *float64 `json:"markup_percent,omitempty"`
	Currency      string   `json:"currency"`
}

// BookingWindowDTO reports a booking-window check.
type BookingWindowDTO struct {
	VersionID string `json:"version_id"`
	Allowed   bool   `json:"allowed"`
	Term      string `json:"term,omitempty"`
	Message   string `json:"message,omitempty"`
}

// =============================================================================
// SCENARIOS AND ERRORS
// =============================================================================

// ScenarioDTO describes a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category,omitempty"`
}

// LoadScenarioRequest selects a scenario to load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// ErrorResponse is the standard error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
