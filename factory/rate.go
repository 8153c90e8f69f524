/*
rate.go - JSON to SellingRate conversion

PURPOSE:
  Converts JSON rate documents into validated rates.SellingRate values and
  back. Daily overrides are keyed by ISO date; per-occupancy prices within
  an override are a list of {adults, children, price} entries so the JSON
  stays flat and diffable.

JSON SCHEMA (selling rate):
  {
    "id": "rate-deluxe-summer",
    "product_option_id": "room-deluxe",
    "valid_from": "2024-06-01",
    "valid_to": "2024-09-01",
    "basis": "per_night",
    "base_price": 100,
    "currency": "EUR",
    "target_cost": 80,
    "markup_type": "percentage",
    "markup_amount": 25,
    "is_active": true,
    "pricing": {
      "daily_rates": {
        "2024-07-04": {"price": 250, "pricing_tier": "event"}
      },
      "occupancy_pricing": [
        {"adults": 2, "children": 1, "multiplier": 1.3}
      ],
      "extras": [
        {"name": "airport transfer", "price": 30, "availability": "daily"}
      ],
      "minimum_nights": 2
    }
  }

SEE ALSO:
  - rates/types.go: SellingRate definition
  - contract.go: Contract version conversion
*/
package factory

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/voyago/tariff-engine/engine"
	"github.com/voyago/tariff-engine/rates"
)

// =============================================================================
// JSON SCHEMA TYPES - Selling rate
// =============================================================================

// SellingRateJSON is the JSON representation of a selling rate.
type SellingRateJSON struct {
	ID              string `json:"id"`
	ProductOptionID string `json:"product_option_id"`
	ValidFrom       string `json:"valid_from"`
	ValidTo         string `json:"valid_to"`

	Basis     string  `json:"basis"`
	BasePrice float64 `json:"base_price"`
	Currency  string  `json:"currency"`

	TargetCost *float64 `json:"target_cost,omitempty"`

	MarkupType   string  `json:"markup_type,omitempty"`
	MarkupAmount float64 `json:"markup_amount,omitempty"`

	IsActive bool `json:"is_active"`

	Pricing *PricingJSON `json:"pricing,omitempty"`
}

// PricingJSON represents the per-rate pricing configuration.
type PricingJSON struct {
	DailyRates       map[string]DailyRateJSON `json:"daily_rates,omitempty"`
	OccupancyPricing []OccupancyPricingJSON   `json:"occupancy_pricing,omitempty"`
	Extras           []ExtraJSON              `json:"extras,omitempty"`

	MinimumNights int `json:"minimum_nights,omitempty"`
	MaximumNights int `json:"maximum_nights,omitempty"`

	CancellationPolicy string   `json:"cancellation_policy,omitempty"`
	PaymentTerms       string   `json:"payment_terms,omitempty"`
	Inclusions         []string `json:"inclusions,omitempty"`
}

// DailyRateJSON is a per-date override.
type DailyRateJSON struct {
	Price           float64              `json:"price"`
	PricingTier     string               `json:"pricing_tier,omitempty"`
	EventContext    string               `json:"event_context,omitempty"`
	OccupancyPrices []OccupancyPriceJSON `json:"occupancy_prices,omitempty"`
}

// OccupancyPriceJSON is a per-date, per-composition absolute price.
type OccupancyPriceJSON struct {
	Adults   int     `json:"adults"`
	Children int     `json:"children"`
	Price    float64 `json:"price"`
}

// OccupancyPricingJSON is a per-composition multiplier.
type OccupancyPricingJSON struct {
	Adults      int     `json:"adults"`
	Children    int     `json:"children"`
	Multiplier  float64 `json:"multiplier"`
	Description string  `json:"description,omitempty"`
}

// ExtraJSON is a named add-on.
type ExtraJSON struct {
	Name         string  `json:"name"`
	Price        float64 `json:"price"`
	Availability string  `json:"availability,omitempty"`
}

// =============================================================================
// CONVERSION
// =============================================================================

// ParseSellingRate parses a JSON string into a validated SellingRate.
func (f *Factory) ParseSellingRate(jsonStr string) (rates.SellingRate, error) {
	var rj SellingRateJSON
	if err := json.Unmarshal([]byte(jsonStr), &rj); err != nil {
		return rates.SellingRate{}, fmt.Errorf("failed to parse selling rate JSON: %w", err)
	}
	return f.SellingRateFromJSON(rj)
}

// SellingRateFromJSON converts SellingRateJSON into a validated SellingRate.
func (f *Factory) SellingRateFromJSON(rj SellingRateJSON) (rates.SellingRate, error) {
	validFrom, err := engine.ParseDate(rj.ValidFrom)
	if err != nil {
		return rates.SellingRate{}, fmt.Errorf("invalid valid_from: %w", err)
	}
	validTo, err := engine.ParseDate(rj.ValidTo)
	if err != nil {
		return rates.SellingRate{}, fmt.Errorf("invalid valid_to: %w", err)
	}

	basis := rates.RateBasis(rj.Basis)
	if !basis.Valid() {
		return rates.SellingRate{}, fmt.Errorf("unknown rate basis: %q", rj.Basis)
	}
	if rj.BasePrice < 0 {
		return rates.SellingRate{}, fmt.Errorf("negative base price: %v", rj.BasePrice)
	}
	if rj.Currency == "" {
		return rates.SellingRate{}, fmt.Errorf("selling rate requires a currency")
	}

	rate := rates.SellingRate{
		ID:              engine.RateID(rj.ID),
		ProductOptionID: engine.ProductOptionID(rj.ProductOptionID),
		ValidFrom:       validFrom,
		ValidTo:         validTo,
		Basis:           basis,
		BasePrice:       decimal.NewFromFloat(rj.BasePrice),
		Currency:        rj.Currency,
		MarkupType:      parseMarkupType(rj.MarkupType),
		MarkupAmount:    decimal.NewFromFloat(rj.MarkupAmount),
		IsActive:        rj.IsActive,
	}
	if rj.TargetCost != nil {
		cost := decimal.NewFromFloat(*rj.TargetCost)
		rate.TargetCost = &cost
	}

	if rj.Pricing != nil {
		rate.Pricing, err = parsePricing(*rj.Pricing)
		if err != nil {
			return rates.SellingRate{}, err
		}
	}

	if err := rate.Validity().Validate(); err != nil {
		return rates.SellingRate{}, err
	}
	return rate, nil
}

// ToRateJSON converts a SellingRate back to its JSON document form.
func (f *Factory) ToRateJSON(r rates.SellingRate) SellingRateJSON {
	basePrice, _ := r.BasePrice.Float64()
	markup, _ := r.MarkupAmount.Float64()
	rj := SellingRateJSON{
		ID:              string(r.ID),
		ProductOptionID: string(r.ProductOptionID),
		ValidFrom:       r.ValidFrom.String(),
		ValidTo:         r.ValidTo.String(),
		Basis:           string(r.Basis),
		BasePrice:       basePrice,
		Currency:        r.Currency,
		MarkupType:      string(r.MarkupType),
		MarkupAmount:    markup,
		IsActive:        r.IsActive,
	}
	if r.TargetCost != nil {
		v, _ := r.TargetCost.Float64()
		rj.TargetCost = &v
	}
	if pj := pricingJSON(r.Pricing); pj != nil {
		rj.Pricing = pj
	}
	return rj
}

// =============================================================================
// PARSING HELPERS
// =============================================================================

func parseMarkupType(s string) rates.MarkupType {
	switch s {
	case "percentage":
		return rates.MarkupPercentage
	case "fixed_amount":
		return rates.MarkupFixedAmount
	default:
		return rates.MarkupNone
	}
}

func parsePricing(pj PricingJSON) (rates.PricingDetails, error) {
	details := rates.PricingDetails{
		MinimumNights:      pj.MinimumNights,
		MaximumNights:      pj.MaximumNights,
		CancellationPolicy: pj.CancellationPolicy,
		PaymentTerms:       pj.PaymentTerms,
		Inclusions:         pj.Inclusions,
	}
	if details.MinimumNights < 0 || details.MaximumNights < 0 {
		return rates.PricingDetails{}, fmt.Errorf("negative stay-length bound")
	}
	if details.MinimumNights > 0 && details.MaximumNights > 0 && details.MinimumNights > details.MaximumNights {
		return rates.PricingDetails{}, fmt.Errorf("minimum_nights %d exceeds maximum_nights %d",
			details.MinimumNights, details.MaximumNights)
	}

	if len(pj.DailyRates) > 0 {
		details.DailyRates = make(map[string]rates.DailyRate, len(pj.DailyRates))
		for dateKey, dj := range pj.DailyRates {
			if _, err := engine.ParseDate(dateKey); err != nil {
				return rates.PricingDetails{}, fmt.Errorf("daily rate key %q: %w", dateKey, err)
			}
			dr := rates.DailyRate{
				Price:        decimal.NewFromFloat(dj.Price),
				PricingTier:  dj.PricingTier,
				EventContext: dj.EventContext,
			}
			if len(dj.OccupancyPrices) > 0 {
				dr.OccupancyPrices = make(map[rates.Occupancy]decimal.Decimal, len(dj.OccupancyPrices))
				for _, op := range dj.OccupancyPrices {
					dr.OccupancyPrices[rates.Occupancy{Adults: op.Adults, Children: op.Children}] =
						decimal.NewFromFloat(op.Price)
				}
			}
			details.DailyRates[dateKey] = dr
		}
	}

	for _, oj := range pj.OccupancyPricing {
		if oj.Multiplier <= 0 {
			return rates.PricingDetails{}, fmt.Errorf("occupancy multiplier for %d+%d must be positive",
				oj.Adults, oj.Children)
		}
		details.OccupancyPricing = append(details.OccupancyPricing, rates.OccupancyPricing{
			Adults:      oj.Adults,
			Children:    oj.Children,
			Multiplier:  decimal.NewFromFloat(oj.Multiplier),
			Description: oj.Description,
		})
	}

	for _, ej := range pj.Extras {
		if ej.Name == "" {
			return rates.PricingDetails{}, fmt.Errorf("extra requires a name")
		}
		details.Extras = append(details.Extras, rates.Extra{
			Name:         ej.Name,
			Price:        decimal.NewFromFloat(ej.Price),
			Availability: ej.Availability,
		})
	}

	return details, nil
}

func pricingJSON(p rates.PricingDetails) *PricingJSON {
	pj := PricingJSON{
		MinimumNights:      p.MinimumNights,
		MaximumNights:      p.MaximumNights,
		CancellationPolicy: p.CancellationPolicy,
		PaymentTerms:       p.PaymentTerms,
		Inclusions:         p.Inclusions,
	}
	empty := pj.MinimumNights == 0 && pj.MaximumNights == 0 &&
		pj.CancellationPolicy == "" && pj.PaymentTerms == "" && len(pj.Inclusions) == 0

	if len(p.DailyRates) > 0 {
		pj.DailyRates = make(map[string]DailyRateJSON, len(p.DailyRates))
		for dateKey, dr := range p.DailyRates {
			dj := DailyRateJSON{PricingTier: dr.PricingTier, EventContext: dr.EventContext}
			dj.Price, _ = dr.Price.Float64()
			for occ, price := range dr.OccupancyPrices {
				op := OccupancyPriceJSON{Adults: occ.Adults, Children: occ.Children}
				op.Price, _ = price.Float64()
				dj.OccupancyPrices = append(dj.OccupancyPrices, op)
			}
			// Stable output for map-ordered occupancy prices.
			sort.Slice(dj.OccupancyPrices, func(i, j int) bool {
				a, b := dj.OccupancyPrices[i], dj.OccupancyPrices[j]
				if a.Adults != b.Adults {
					return a.Adults < b.Adults
				}
				return a.Children < b.Children
			})
			pj.DailyRates[dateKey] = dj
		}
		empty = false
	}

	for _, op := range p.OccupancyPricing {
		oj := OccupancyPricingJSON{Adults: op.Adults, Children: op.Children, Description: op.Description}
		oj.Multiplier, _ = op.Multiplier.Float64()
		pj.OccupancyPricing = append(pj.OccupancyPricing, oj)
		empty = false
	}
	for _, e := range p.Extras {
		ej := ExtraJSON{Name: e.Name, Availability: e.Availability}
		ej.Price, _ = e.Price.Float64()
		pj.Extras = append(pj.Extras, ej)
		empty = false
	}

	if empty {
		return nil
	}
	return &pj
}
