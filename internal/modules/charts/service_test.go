package charts

import (
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/nlagos/folio/internal/domain"
	"github.com/nlagos/folio/internal/modules/history"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLookup serves canned series and records requested periods.
// History is called from concurrent goroutines, so the record is
// mutex-guarded.
type fakeLookup struct {
	mu      sync.Mutex
	series  map[string][]history.PricePoint
	periods []string
	err     error
}

func (f *fakeLookup) History(assetID, period string) ([]history.PricePoint, error) {
	f.mu.Lock()
	f.periods = append(f.periods, period)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.series[assetID], nil
}

func (f *fakeLookup) requestedPeriods() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.periods...)
}

func testHoldings(t *testing.T) []domain.Holding {
	t.Helper()
	holdings, err := domain.Normalize([]domain.RawHolding{
		{AssetID: "AAPL", Category: "Stocks", Quantity: 10, PurchasePrice: 150, CurrentPrice: 180},
		{AssetID: "TSLA", Category: "Stocks", Quantity: 8, PurchasePrice: 800, CurrentPrice: 750},
		{AssetID: "BTC-USD", Category: "Crypto", Quantity: 0.5, PurchasePrice: 35000, CurrentPrice: 40000},
	})
	require.NoError(t, err)
	return holdings
}

func TestBuildAllocationDataset(t *testing.T) {
	svc := NewService(nil, nil, nil, zerolog.Nop())
	slices := svc.BuildAllocationDataset(testHoldings(t))

	// Ordered by category name.
	require.Len(t, slices, 2)
	assert.Equal(t, "Crypto", slices[0].Category)
	assert.Equal(t, 20000.0, slices[0].Value)
	assert.Equal(t, "Stocks", slices[1].Category)
	assert.Equal(t, 1800.0+6000.0, slices[1].Value)
}

func TestBuildAllocationDatasetEmpty(t *testing.T) {
	svc := NewService(nil, nil, nil, zerolog.Nop())
	assert.Empty(t, svc.BuildAllocationDataset(nil))
}

func TestBuildPerformanceDatasetSortAndSign(t *testing.T) {
	svc := NewService(nil, nil, nil, zerolog.Nop())
	bars := svc.BuildPerformanceDataset(testHoldings(t))

	require.Len(t, bars, 3)
	// TSLA lost money, sorts first.
	assert.Equal(t, "TSLA", bars[0].AssetID)
	assert.Equal(t, "negative", bars[0].Sign)
	assert.InDelta(t, -6.25, bars[0].ReturnPct, 0.001)
	assert.Equal(t, "BTC-USD", bars[1].AssetID)
	assert.Equal(t, "non-negative", bars[1].Sign)
	assert.Equal(t, "AAPL", bars[2].AssetID)
	assert.Equal(t, "non-negative", bars[2].Sign)
}

func TestBuildPerformanceDatasetNaNSortsFirst(t *testing.T) {
	holdings, err := domain.Normalize([]domain.RawHolding{
		{AssetID: "AAPL", Category: "Stocks", Quantity: 10, PurchasePrice: 150, CurrentPrice: 180},
		{AssetID: "GIFT", Category: "Other", Quantity: 1, PurchasePrice: 0, CurrentPrice: 50},
	})
	require.NoError(t, err)

	svc := NewService(nil, nil, nil, zerolog.Nop())
	bars := svc.BuildPerformanceDataset(holdings)

	require.Len(t, bars, 2)
	assert.Equal(t, "GIFT", bars[0].AssetID)
	assert.True(t, math.IsNaN(bars[0].ReturnPct))
	assert.Equal(t, "non-negative", bars[0].Sign)
}

func TestBuildRiskReturnDatasetSeeded(t *testing.T) {
	svc := NewService(nil, nil, NewSeededNoiseSource(42), zerolog.Nop())
	holdings := testHoldings(t)

	points := svc.BuildRiskReturnDataset(holdings)
	require.Len(t, points, 3)

	for i, p := range points {
		assert.Equal(t, holdings[i].AssetID, p.AssetID)
		assert.Equal(t, holdings[i].ReturnPct, p.Return)
		assert.Equal(t, holdings[i].CurrentValue, p.Size)
		assert.Equal(t, holdings[i].Category, p.Category)
		// risk = |return|/10 + U(1,5) is always positive for defined returns
		jitter := p.Risk - math.Abs(p.Return)/10
		assert.GreaterOrEqual(t, jitter, 1.0)
		assert.Less(t, jitter, 5.0)
	}

	// Same seed, same jitter.
	again := NewService(nil, nil, NewSeededNoiseSource(42), zerolog.Nop()).BuildRiskReturnDataset(holdings)
	assert.Equal(t, points, again)
}

func TestBuildRiskReturnDatasetNaNReturn(t *testing.T) {
	holdings, err := domain.Normalize([]domain.RawHolding{
		{AssetID: "GIFT", Category: "Other", Quantity: 1, PurchasePrice: 0, CurrentPrice: 50},
	})
	require.NoError(t, err)

	svc := NewService(nil, nil, NewSeededNoiseSource(1), zerolog.Nop())
	points := svc.BuildRiskReturnDataset(holdings)

	require.Len(t, points, 1)
	assert.True(t, math.IsNaN(points[0].Risk), "NaN return must yield NaN risk, not a masked value")
}

func TestBuildHistoricalDataset(t *testing.T) {
	day := 24 * time.Hour
	start := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	lookup := &fakeLookup{series: map[string][]history.PricePoint{
		"AAPL": {
			{Time: start, Price: 100},
			{Time: start.Add(day), Price: 110},
		},
		"BTC-USD": {
			{Time: start, Price: 40000},
			{Time: start.Add(day), Price: 42000},
		},
	}}

	svc := NewService(lookup, nil, nil, zerolog.Nop())
	series, err := svc.BuildHistoricalDataset([]string{"AAPL", "Real Estate", "BTC-USD", "UNKNOWN"}, "1y")
	require.NoError(t, err)

	// "Real Estate" fails the tradable rule; UNKNOWN has no series.
	require.Len(t, series, 2)
	assert.Equal(t, "AAPL", series[0].AssetID)
	assert.Equal(t, "BTC-USD", series[1].AssetID)

	assert.Equal(t, 0.0, series[0].Points[0].PctChange)
	assert.InDelta(t, 10.0, series[0].Points[1].PctChange, 1e-9)
	assert.InDelta(t, 5.0, series[1].Points[1].PctChange, 1e-9)
}

func TestBuildHistoricalDatasetNoTradableAssets(t *testing.T) {
	svc := NewService(&fakeLookup{}, nil, nil, zerolog.Nop())
	_, err := svc.BuildHistoricalDataset([]string{"Real Estate"}, "1y")
	assert.ErrorIs(t, err, domain.ErrNoData)
}

func TestBuildHistoricalDatasetAllLookupsFail(t *testing.T) {
	lookup := &fakeLookup{err: fmt.Errorf("provider down")}
	svc := NewService(lookup, nil, nil, zerolog.Nop())

	_, err := svc.BuildHistoricalDataset([]string{"AAPL"}, "1y")
	assert.ErrorIs(t, err, domain.ErrNoData)
}

func TestBuildHistoricalDatasetUnknownPeriodFallsBack(t *testing.T) {
	lookup := &fakeLookup{series: map[string][]history.PricePoint{
		"AAPL": {{Time: time.Now(), Price: 100}},
	}}
	svc := NewService(lookup, nil, nil, zerolog.Nop())

	_, err := svc.BuildHistoricalDataset([]string{"AAPL"}, "7y")
	require.NoError(t, err)
	periods := lookup.requestedPeriods()
	require.Len(t, periods, 1)
	assert.Equal(t, DefaultPeriod, periods[0])
}

func TestCustomTradablePredicate(t *testing.T) {
	lookup := &fakeLookup{series: map[string][]history.PricePoint{
		"real-estate-fund": {{Time: time.Now(), Price: 1}},
	}}
	allowAll := func(string) bool { return true }
	svc := NewService(lookup, allowAll, nil, zerolog.Nop())

	series, err := svc.BuildHistoricalDataset([]string{"real-estate-fund"}, "1y")
	require.NoError(t, err)
	assert.Len(t, series, 1)
}
