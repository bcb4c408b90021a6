// Package domain provides the core types of the analytics engine.
package domain

import "math"

// Column labels of the tabular import contract. Validation errors and the
// CSV importer both identify fields by these names.
const (
	ColAsset         = "Asset"
	ColCategory      = "Category"
	ColQuantity      = "Quantity"
	ColPurchasePrice = "Purchase Price"
	ColCurrentPrice  = "Current Price"
)

// RequiredColumns lists the five base columns an import source must supply,
// in canonical order.
var RequiredColumns = []string{ColAsset, ColCategory, ColQuantity, ColPurchasePrice, ColCurrentPrice}

// Categories are the suggested asset category labels. The enumeration is
// open: holdings may carry any non-empty label.
var Categories = []string{
	"Stocks", "ETFs", "Bonds", "Crypto", "Real Estate", "Commodities", "Cash", "Other",
}

// RawHolding is a caller-supplied holding before validation.
type RawHolding struct {
	AssetID       string  `json:"asset_id"`
	Category      string  `json:"category"`
	Quantity      float64 `json:"quantity"`
	PurchasePrice float64 `json:"purchase_price"`
	CurrentPrice  float64 `json:"current_price"`
}

// Holding is a validated holding with derived figures. The derived fields
// are computed by NewHolding from the base fields and must never be set
// independently; corrections replace the whole value.
type Holding struct {
	AssetID       string  `json:"asset_id"`
	Category      string  `json:"category"`
	Quantity      float64 `json:"quantity"`
	PurchasePrice float64 `json:"purchase_price"`
	CurrentPrice  float64 `json:"current_price"`

	CostBasis    float64 `json:"cost_basis"`
	CurrentValue float64 `json:"current_value"`
	GainLoss     float64 `json:"gain_loss"`
	ReturnPct    float64 `json:"return_pct"` // NaN when CostBasis == 0
}

// NewHolding validates a raw record and computes the derived fields.
// Zero quantities and prices are valid (they surface as a NaN ReturnPct);
// negative or non-finite numbers and an empty asset id are not.
func NewHolding(raw RawHolding) (Holding, error) {
	if raw.AssetID == "" {
		return Holding{}, &ValidationError{Field: ColAsset, Reason: "must not be empty"}
	}
	for _, f := range []struct {
		name  string
		value float64
	}{
		{ColQuantity, raw.Quantity},
		{ColPurchasePrice, raw.PurchasePrice},
		{ColCurrentPrice, raw.CurrentPrice},
	} {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return Holding{}, &ValidationError{AssetID: raw.AssetID, Field: f.name, Reason: "must be numeric"}
		}
		if f.value < 0 {
			return Holding{}, &ValidationError{AssetID: raw.AssetID, Field: f.name, Reason: "must not be negative"}
		}
	}

	h := Holding{
		AssetID:       raw.AssetID,
		Category:      raw.Category,
		Quantity:      raw.Quantity,
		PurchasePrice: raw.PurchasePrice,
		CurrentPrice:  raw.CurrentPrice,
	}
	h.CostBasis = h.Quantity * h.PurchasePrice
	h.CurrentValue = h.Quantity * h.CurrentPrice
	h.GainLoss = h.CurrentValue - h.CostBasis
	if h.CostBasis == 0 {
		h.ReturnPct = math.NaN()
	} else {
		h.ReturnPct = h.GainLoss / h.CostBasis * 100
	}
	return h, nil
}

// Normalize validates and enriches a batch of raw records, preserving
// order. The first invalid record aborts the batch.
func Normalize(raws []RawHolding) ([]Holding, error) {
	holdings := make([]Holding, 0, len(raws))
	for _, raw := range raws {
		h, err := NewHolding(raw)
		if err != nil {
			return nil, err
		}
		holdings = append(holdings, h)
	}
	return holdings, nil
}

// FilterByCategory returns the holdings whose category is in the given set,
// preserving order. An empty set selects nothing.
func FilterByCategory(holdings []Holding, categories []string) []Holding {
	allowed := make(map[string]bool, len(categories))
	for _, c := range categories {
		allowed[c] = true
	}

	filtered := make([]Holding, 0, len(holdings))
	for _, h := range holdings {
		if allowed[h.Category] {
			filtered = append(filtered, h)
		}
	}
	return filtered
}
