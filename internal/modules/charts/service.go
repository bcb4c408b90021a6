// Package charts builds the chart-ready datasets of the analytics engine:
// allocation, performance, risk/return and historical comparison.
package charts

import (
	"math"
	"sort"
	"sync"

	"github.com/nlagos/folio/internal/domain"
	"github.com/nlagos/folio/internal/modules/history"
	"github.com/rs/zerolog"
)

// PriceLookup fetches the historical price series for one asset over a
// period token (1m, 3m, 6m, 1y, 2y, 5y). An empty series and an error are
// both treated as "asset unavailable" by the historical dataset builder.
type PriceLookup interface {
	History(assetID, period string) ([]history.PricePoint, error)
}

// Periods lists the supported lookup period tokens.
var Periods = []string{"1m", "3m", "6m", "1y", "2y", "5y"}

// DefaultPeriod is used when a requested period token is not recognized.
const DefaultPeriod = "1y"

// AllocationSlice is one category's share of the allocation chart. Values
// are raw summed current values; the rendering layer computes percentages.
type AllocationSlice struct {
	Category string  `json:"category"`
	Value    float64 `json:"value"`
}

// PerformanceBar is one holding's bar in the performance chart. Sign only
// selects the visual encoding of the bar.
type PerformanceBar struct {
	AssetID   string  `json:"asset_id"`
	ReturnPct float64 `json:"return_pct"`
	Sign      string  `json:"sign"` // "negative" or "non-negative"
}

// RiskReturnPoint is one holding's point in the risk/return scatter.
type RiskReturnPoint struct {
	AssetID  string  `json:"asset_id"`
	Risk     float64 `json:"risk"`
	Return   float64 `json:"return_pct"`
	Size     float64 `json:"size"` // current value, scales the dot
	Category string  `json:"category"`
}

// HistoricalSeries is one asset's rebased price series for the comparison
// chart.
type HistoricalSeries struct {
	AssetID string                `json:"asset_id"`
	Points  []history.ChangePoint `json:"points"`
}

// Service builds chart datasets from a holdings snapshot. All builders are
// pure transforms; the only external call is the price lookup used by the
// historical comparison.
type Service struct {
	lookup   PriceLookup
	tradable TradablePredicate
	noise    NoiseSource
	log      zerolog.Logger
}

// NewService creates a new charts service. The tradable predicate and
// noise source fall back to the defaults when nil.
func NewService(lookup PriceLookup, tradable TradablePredicate, noise NoiseSource, log zerolog.Logger) *Service {
	if tradable == nil {
		tradable = DefaultTradable
	}
	if noise == nil {
		noise = NewNoiseSource()
	}
	return &Service{
		lookup:   lookup,
		tradable: tradable,
		noise:    noise,
		log:      log.With().Str("service", "charts").Logger(),
	}
}

// BuildAllocationDataset sums current value per category. Slices are
// ordered by category name so output is deterministic.
func (s *Service) BuildAllocationDataset(holdings []domain.Holding) []AllocationSlice {
	totals := make(map[string]float64)
	for _, h := range holdings {
		totals[h.Category] += h.CurrentValue
	}

	categories := make([]string, 0, len(totals))
	for category := range totals {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	slices := make([]AllocationSlice, 0, len(categories))
	for _, category := range categories {
		slices = append(slices, AllocationSlice{Category: category, Value: totals[category]})
	}
	return slices
}

// BuildPerformanceDataset returns one bar per holding, sorted ascending by
// return. The sort is stable so equal returns keep their snapshot order;
// NaN returns sort before everything (no comparison with NaN is true, and
// they carry the non-negative sign for the same reason).
func (s *Service) BuildPerformanceDataset(holdings []domain.Holding) []PerformanceBar {
	bars := make([]PerformanceBar, 0, len(holdings))
	for _, h := range holdings {
		sign := "non-negative"
		if h.ReturnPct < 0 {
			sign = "negative"
		}
		bars = append(bars, PerformanceBar{AssetID: h.AssetID, ReturnPct: h.ReturnPct, Sign: sign})
	}

	sort.SliceStable(bars, func(i, j int) bool {
		if math.IsNaN(bars[i].ReturnPct) {
			return !math.IsNaN(bars[j].ReturnPct)
		}
		return bars[i].ReturnPct < bars[j].ReturnPct
	})
	return bars
}

// BuildRiskReturnDataset produces one scatter point per holding. The risk
// value is |return|/10 plus uniform jitter from the noise source; it is a
// cosmetic placeholder for a real volatility estimate, kept seedable so
// output can be reproduced. A NaN return yields a NaN risk.
func (s *Service) BuildRiskReturnDataset(holdings []domain.Holding) []RiskReturnPoint {
	points := make([]RiskReturnPoint, 0, len(holdings))
	for _, h := range holdings {
		points = append(points, RiskReturnPoint{
			AssetID:  h.AssetID,
			Risk:     math.Abs(h.ReturnPct)/10 + s.noise.Uniform(1, 5),
			Return:   h.ReturnPct,
			Size:     h.CurrentValue,
			Category: h.Category,
		})
	}
	return points
}

// BuildRiskReturnDatasetSeeded is BuildRiskReturnDataset with a one-shot
// seeded noise source, for reproducible output.
func (s *Service) BuildRiskReturnDatasetSeeded(holdings []domain.Holding, seed int64) []RiskReturnPoint {
	seeded := &Service{lookup: s.lookup, tradable: s.tradable, noise: NewSeededNoiseSource(seed), log: s.log}
	return seeded.BuildRiskReturnDataset(holdings)
}

// BuildHistoricalDataset fetches and rebases the price series of every
// tradable asset id. Assets that fail the tradable predicate, whose lookup
// errors, or whose series comes back empty are silently dropped. Lookups
// run concurrently; the returned series keep the order of the input ids.
// Returns domain.ErrNoData when no asset survives.
func (s *Service) BuildHistoricalDataset(assetIDs []string, period string) ([]HistoricalSeries, error) {
	period = s.normalizePeriod(period)

	tradable := make([]string, 0, len(assetIDs))
	for _, id := range assetIDs {
		if s.tradable(id) {
			tradable = append(tradable, id)
		} else {
			s.log.Debug().Str("asset", id).Msg("Skipping non-tradable asset")
		}
	}
	if len(tradable) == 0 {
		return nil, domain.ErrNoData
	}

	results := make([]HistoricalSeries, len(tradable))
	found := make([]bool, len(tradable))

	var wg sync.WaitGroup
	for i, id := range tradable {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()

			points, err := s.lookup.History(id, period)
			if err != nil {
				s.log.Warn().Err(err).Str("asset", id).Msg("Price lookup failed, dropping asset")
				return
			}
			normalized, err := history.NormalizeSeries(points)
			if err != nil {
				s.log.Debug().Str("asset", id).Msg("Empty series, dropping asset")
				return
			}
			results[i] = HistoricalSeries{AssetID: id, Points: normalized}
			found[i] = true
		}(i, id)
	}
	wg.Wait()

	series := make([]HistoricalSeries, 0, len(tradable))
	for i := range results {
		if found[i] {
			series = append(series, results[i])
		}
	}
	if len(series) == 0 {
		return nil, domain.ErrNoData
	}
	return series, nil
}

// normalizePeriod falls back to the default period for unknown tokens.
func (s *Service) normalizePeriod(period string) string {
	for _, p := range Periods {
		if period == p {
			return period
		}
	}
	if period != "" {
		s.log.Warn().Str("period", period).Str("fallback", DefaultPeriod).Msg("Unknown period, using default")
	}
	return DefaultPeriod
}
