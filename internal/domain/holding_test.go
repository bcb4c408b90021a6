package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHoldingDerivedFields(t *testing.T) {
	h, err := NewHolding(RawHolding{
		AssetID:       "AAPL",
		Category:      "Stocks",
		Quantity:      10,
		PurchasePrice: 150,
		CurrentPrice:  180,
	})
	require.NoError(t, err)

	assert.Equal(t, 1500.0, h.CostBasis)
	assert.Equal(t, 1800.0, h.CurrentValue)
	assert.Equal(t, 300.0, h.GainLoss)
	assert.Equal(t, 20.0, h.ReturnPct)
}

func TestNewHoldingGainLossIdentity(t *testing.T) {
	// current_value - cost_basis == gain_loss must hold exactly for any input.
	for _, raw := range SampleRecords() {
		h, err := NewHolding(raw)
		require.NoError(t, err)
		assert.Equal(t, h.CurrentValue-h.CostBasis, h.GainLoss, "asset %s", h.AssetID)
	}
}

func TestNewHoldingZeroCostBasis(t *testing.T) {
	// Division by zero is not an error: the return carries a NaN sentinel.
	h, err := NewHolding(RawHolding{AssetID: "GIFT", Category: "Stocks", Quantity: 0, PurchasePrice: 100, CurrentPrice: 120})
	require.NoError(t, err)
	assert.Zero(t, h.CostBasis)
	assert.True(t, math.IsNaN(h.ReturnPct))

	h, err = NewHolding(RawHolding{AssetID: "FREE", Category: "Other", Quantity: 3, PurchasePrice: 0, CurrentPrice: 5})
	require.NoError(t, err)
	assert.Zero(t, h.CostBasis)
	assert.Equal(t, 15.0, h.CurrentValue)
	assert.True(t, math.IsNaN(h.ReturnPct))
}

func TestNewHoldingValidation(t *testing.T) {
	tests := []struct {
		name      string
		raw       RawHolding
		wantField string
	}{
		{"empty asset id", RawHolding{Category: "Stocks", Quantity: 1, PurchasePrice: 1, CurrentPrice: 1}, ColAsset},
		{"negative quantity", RawHolding{AssetID: "A", Quantity: -1, PurchasePrice: 1, CurrentPrice: 1}, ColQuantity},
		{"negative purchase price", RawHolding{AssetID: "A", Quantity: 1, PurchasePrice: -0.01, CurrentPrice: 1}, ColPurchasePrice},
		{"negative current price", RawHolding{AssetID: "A", Quantity: 1, PurchasePrice: 1, CurrentPrice: -5}, ColCurrentPrice},
		{"NaN quantity", RawHolding{AssetID: "A", Quantity: math.NaN(), PurchasePrice: 1, CurrentPrice: 1}, ColQuantity},
		{"infinite price", RawHolding{AssetID: "A", Quantity: 1, PurchasePrice: math.Inf(1), CurrentPrice: 1}, ColPurchasePrice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewHolding(tt.raw)
			require.Error(t, err)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantField, verr.Field)
		})
	}
}

func TestNormalizeBatch(t *testing.T) {
	holdings, err := Normalize(SampleRecords())
	require.NoError(t, err)
	require.Len(t, holdings, 10)

	// Order is preserved.
	assert.Equal(t, "AAPL", holdings[0].AssetID)
	assert.Equal(t, "Real Estate", holdings[9].AssetID)

	// BTC-USD: 0.5 * 35000 = 17500 cost, 0.5 * 40000 = 20000 value.
	btc := holdings[7]
	assert.Equal(t, 17500.0, btc.CostBasis)
	assert.Equal(t, 20000.0, btc.CurrentValue)
}

func TestNormalizeAbortsOnInvalidRecord(t *testing.T) {
	raws := []RawHolding{
		{AssetID: "OK", Category: "Stocks", Quantity: 1, PurchasePrice: 1, CurrentPrice: 1},
		{AssetID: "BAD", Category: "Stocks", Quantity: -1, PurchasePrice: 1, CurrentPrice: 1},
	}

	holdings, err := Normalize(raws)
	assert.Nil(t, holdings)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "BAD", verr.AssetID)
	assert.Equal(t, ColQuantity, verr.Field)
}

func TestFilterByCategory(t *testing.T) {
	holdings, err := Normalize(SampleRecords())
	require.NoError(t, err)

	stocks := FilterByCategory(holdings, []string{"Stocks"})
	require.Len(t, stocks, 5)
	assert.Equal(t, "AAPL", stocks[0].AssetID)
	assert.Equal(t, "TSLA", stocks[4].AssetID)

	mixed := FilterByCategory(holdings, []string{"Crypto", "Bonds"})
	require.Len(t, mixed, 3)
	assert.Equal(t, "AGG", mixed[0].AssetID) // input order, not filter order

	assert.Empty(t, FilterByCategory(holdings, nil))
	assert.Empty(t, FilterByCategory(holdings, []string{"Unknown"}))
}

func TestTemplateRecordsShape(t *testing.T) {
	recs := TemplateRecords()
	require.Len(t, recs, 2)
	assert.Equal(t, "AAPL", recs[0].AssetID)
	assert.Equal(t, "VTI", recs[1].AssetID)

	// The template must normalize cleanly.
	_, err := Normalize(recs)
	assert.NoError(t, err)
}
