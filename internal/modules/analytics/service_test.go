package analytics

import (
	"math"
	"testing"

	"github.com/nlagos/folio/internal/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustNormalize(t *testing.T, raws []domain.RawHolding) []domain.Holding {
	t.Helper()
	holdings, err := domain.Normalize(raws)
	require.NoError(t, err)
	return holdings
}

func TestAggregateSingleHolding(t *testing.T) {
	svc := NewService(zerolog.Nop())
	holdings := mustNormalize(t, []domain.RawHolding{
		{AssetID: "AAPL", Category: "Stocks", Quantity: 10, PurchasePrice: 150, CurrentPrice: 180},
	})

	m, err := svc.Aggregate(holdings)
	require.NoError(t, err)

	assert.Equal(t, 1800.0, m.TotalValue)
	assert.Equal(t, 1500.0, m.TotalCost)
	assert.Equal(t, 300.0, m.TotalGainLoss)
	assert.Equal(t, 20.0, m.TotalGainLossPct)
	assert.Equal(t, 20.0, m.WeightedReturn)
	assert.True(t, math.IsNaN(m.Volatility), "one holding has no defined volatility")
	assert.Equal(t, map[string]float64{"Stocks": 100.0}, m.CategoryAllocation)
	assert.Equal(t, 0.0, m.DiversificationScore)
	assert.Equal(t, 1, m.HoldingCount)
}

func TestAggregateTwoCategories(t *testing.T) {
	svc := NewService(zerolog.Nop())
	holdings := mustNormalize(t, []domain.RawHolding{
		{AssetID: "A", Category: "X", Quantity: 1, PurchasePrice: 100, CurrentPrice: 100},
		{AssetID: "B", Category: "Y", Quantity: 1, PurchasePrice: 100, CurrentPrice: 200},
	})

	m, err := svc.Aggregate(holdings)
	require.NoError(t, err)

	assert.Equal(t, 300.0, m.TotalValue)
	assert.Equal(t, 200.0, m.TotalCost)
	assert.Equal(t, 100.0, m.TotalGainLoss)
	assert.Equal(t, 50.0, m.TotalGainLossPct)
	// weights 1/3 and 2/3; returns 0% and 100%
	assert.InDelta(t, 66.67, m.WeightedReturn, 0.01)
	assert.InDelta(t, 33.33, m.CategoryAllocation["X"], 0.01)
	assert.InDelta(t, 66.67, m.CategoryAllocation["Y"], 0.01)
	assert.InDelta(t, 33.33, m.DiversificationScore, 0.01)
	// sample stddev of [0, 100]
	assert.InDelta(t, 70.71, m.Volatility, 0.01)
}

func TestAggregateEmptyPortfolio(t *testing.T) {
	svc := NewService(zerolog.Nop())

	m, err := svc.Aggregate(nil)
	assert.Nil(t, m)
	assert.ErrorIs(t, err, domain.ErrEmptyPortfolio)

	m, err = svc.Aggregate([]domain.Holding{})
	assert.Nil(t, m)
	assert.ErrorIs(t, err, domain.ErrEmptyPortfolio)
}

func TestAggregateSamplePortfolio(t *testing.T) {
	svc := NewService(zerolog.Nop())
	holdings := mustNormalize(t, domain.SampleRecords())

	m, err := svc.Aggregate(holdings)
	require.NoError(t, err)

	assert.Equal(t, 10, m.HoldingCount)
	assert.Greater(t, m.TotalValue, 0.0)
	assert.Greater(t, m.TotalCost, 0.0)
	assert.InDelta(t, m.TotalValue-m.TotalCost, m.TotalGainLoss, 1e-9)
	assert.False(t, math.IsNaN(m.Volatility))

	// allocations cover every category and sum to ~100%
	var allocated float64
	for _, pct := range m.CategoryAllocation {
		assert.GreaterOrEqual(t, pct, 0.0)
		allocated += pct
	}
	assert.InDelta(t, 100.0, allocated, 0.1)
	assert.GreaterOrEqual(t, m.DiversificationScore, 0.0)
	assert.LessOrEqual(t, m.DiversificationScore, 100.0)
}

func TestAggregateZeroCostBasis(t *testing.T) {
	svc := NewService(zerolog.Nop())
	holdings := mustNormalize(t, []domain.RawHolding{
		{AssetID: "FREE", Category: "Other", Quantity: 10, PurchasePrice: 0, CurrentPrice: 5},
	})

	m, err := svc.Aggregate(holdings)
	require.NoError(t, err)

	assert.Equal(t, 50.0, m.TotalValue)
	assert.Equal(t, 0.0, m.TotalCost)
	assert.True(t, math.IsNaN(m.TotalGainLossPct), "gain pct over zero cost is undefined")
}

func TestAggregateSkipsUndefinedReturns(t *testing.T) {
	svc := NewService(zerolog.Nop())
	holdings := mustNormalize(t, []domain.RawHolding{
		{AssetID: "FREE", Category: "Other", Quantity: 1, PurchasePrice: 0, CurrentPrice: 100},
		{AssetID: "A", Category: "Stocks", Quantity: 1, PurchasePrice: 100, CurrentPrice: 110},
		{AssetID: "B", Category: "Stocks", Quantity: 1, PurchasePrice: 100, CurrentPrice: 130},
	})

	m, err := svc.Aggregate(holdings)
	require.NoError(t, err)

	// FREE carries a NaN return: it is excluded from the weighted sum
	// and from volatility, but its value still counts toward weights.
	assert.Equal(t, 340.0, m.TotalValue)
	expected := (110.0/340.0)*10 + (130.0/340.0)*30
	assert.InDelta(t, expected, m.WeightedReturn, 0.01)
	assert.False(t, math.IsNaN(m.Volatility), "two defined returns survive")
	assert.InDelta(t, 14.14, m.Volatility, 0.01)
}

func TestAggregateZeroTotalValue(t *testing.T) {
	svc := NewService(zerolog.Nop())
	holdings := mustNormalize(t, []domain.RawHolding{
		{AssetID: "A", Category: "Stocks", Quantity: 1, PurchasePrice: 100, CurrentPrice: 0},
		{AssetID: "B", Category: "Bonds", Quantity: 1, PurchasePrice: 50, CurrentPrice: 0},
	})

	m, err := svc.Aggregate(holdings)
	require.NoError(t, err)

	// With zero total value every weight is undefined, so each category
	// allocates 0 and the score falls back to the empty-portfolio value.
	assert.Equal(t, 0.0, m.TotalValue)
	assert.Equal(t, 0.0, m.CategoryAllocation["Stocks"])
	assert.Equal(t, 0.0, m.CategoryAllocation["Bonds"])
	assert.Equal(t, 100.0, m.DiversificationScore)
	assert.Equal(t, 0.0, m.WeightedReturn)
}

func TestComputeWeightsSumToOne(t *testing.T) {
	holdings := mustNormalize(t, domain.SampleRecords())
	var totalValue float64
	for _, h := range holdings {
		totalValue += h.CurrentValue
	}

	weights := computeWeights(holdings, totalValue)
	require.Len(t, weights, len(holdings))

	var sum float64
	for _, w := range weights {
		sum += w
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestDiversificationScoreBounds(t *testing.T) {
	assert.Equal(t, 100.0, diversificationScore(map[string]float64{}))
	assert.Equal(t, 0.0, diversificationScore(map[string]float64{"Stocks": 100}))
	assert.Equal(t, 40.0, diversificationScore(map[string]float64{"Stocks": 60, "Bonds": 40}))
}

func TestRound(t *testing.T) {
	assert.Equal(t, 33.33, round(33.333333, 2))
	assert.Equal(t, 66.67, round(66.666666, 2))
	assert.True(t, math.IsNaN(round(math.NaN(), 2)))
	assert.True(t, math.IsInf(round(math.Inf(1), 2), 1))
}
