package analytics

import (
	"math"

	"github.com/nlagos/folio/internal/domain"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"
)

// Metrics is the portfolio-level summary computed from a holdings
// snapshot. It is recomputed on every request and never cached: the
// snapshot is the single source of truth and the computation is cheap.
//
// Undefined quantities are NaN, not zero. A portfolio bought for
// nothing has no defined return; a single holding has no defined
// volatility. Callers that serialize Metrics must map NaN themselves
// (JSON has no NaN literal).
type Metrics struct {
	TotalValue           float64            `json:"total_value"`
	TotalCost            float64            `json:"total_cost"`
	TotalGainLoss        float64            `json:"total_gain_loss"`
	TotalGainLossPct     float64            `json:"total_gain_loss_pct"`
	WeightedReturn       float64            `json:"weighted_return"`
	Volatility           float64            `json:"volatility"`
	CategoryAllocation   map[string]float64 `json:"category_allocation"`
	DiversificationScore float64            `json:"diversification_score"`
	HoldingCount         int                `json:"holding_count"`
}

// Service computes portfolio metrics. It is stateless: every call
// operates on the snapshot it is handed.
type Service struct {
	log zerolog.Logger
}

// NewService creates a new analytics service
func NewService(log zerolog.Logger) *Service {
	return &Service{
		log: log.With().Str("service", "analytics").Logger(),
	}
}

// Aggregate computes portfolio-level metrics from a holdings snapshot.
// Returns domain.ErrEmptyPortfolio when the snapshot has no holdings.
//
// NaN handling follows skip-NaN aggregation throughout: a holding with
// an undefined return contributes nothing to the weighted return or
// volatility, and an undefined weight contributes nothing to category
// allocation. Sums over an all-NaN set are 0; statistics over fewer
// than two defined values are NaN.
func (s *Service) Aggregate(holdings []domain.Holding) (*Metrics, error) {
	if len(holdings) == 0 {
		return nil, domain.ErrEmptyPortfolio
	}

	var totalValue, totalCost float64
	for _, h := range holdings {
		totalValue += h.CurrentValue
		totalCost += h.CostBasis
	}
	totalGainLoss := totalValue - totalCost

	totalGainLossPct := math.NaN()
	if totalCost != 0 {
		totalGainLossPct = totalGainLoss / totalCost * 100
	}

	weights := computeWeights(holdings, totalValue)

	m := &Metrics{
		TotalValue:         round(totalValue, 2),
		TotalCost:          round(totalCost, 2),
		TotalGainLoss:      round(totalGainLoss, 2),
		TotalGainLossPct:   round(totalGainLossPct, 2),
		WeightedReturn:     round(weightedReturn(holdings, weights), 2),
		Volatility:         round(volatility(holdings), 2),
		CategoryAllocation: categoryAllocation(holdings, weights),
		HoldingCount:       len(holdings),
	}
	m.DiversificationScore = diversificationScore(m.CategoryAllocation)

	s.log.Debug().
		Int("holdings", len(holdings)).
		Float64("total_value", m.TotalValue).
		Msg("aggregated portfolio metrics")

	return m, nil
}

// computeWeights returns each holding's share of total portfolio value.
// All weights are NaN when the total is zero: a worthless portfolio has
// no meaningful composition.
func computeWeights(holdings []domain.Holding, totalValue float64) []float64 {
	weights := make([]float64, len(holdings))
	for i, h := range holdings {
		if totalValue == 0 {
			weights[i] = math.NaN()
		} else {
			weights[i] = h.CurrentValue / totalValue
		}
	}
	return weights
}

// weightedReturn is the value-weighted average of per-holding returns.
// Terms where weight or return is NaN are skipped; an all-NaN set sums
// to 0.
func weightedReturn(holdings []domain.Holding, weights []float64) float64 {
	var sum float64
	for i, h := range holdings {
		term := weights[i] * h.ReturnPct
		if math.IsNaN(term) {
			continue
		}
		sum += term
	}
	return sum
}

// volatility is the sample standard deviation of per-holding returns,
// NaN-valued returns excluded first. NaN when fewer than two defined
// returns survive.
func volatility(holdings []domain.Holding) float64 {
	returns := make([]float64, 0, len(holdings))
	for _, h := range holdings {
		if math.IsNaN(h.ReturnPct) {
			continue
		}
		returns = append(returns, h.ReturnPct)
	}
	if len(returns) < 2 {
		return math.NaN()
	}
	return stat.StdDev(returns, nil)
}

// categoryAllocation sums weights per category and scales to percent.
// NaN weights are skipped, so a category whose every weight is NaN
// allocates 0.
func categoryAllocation(holdings []domain.Holding, weights []float64) map[string]float64 {
	allocation := make(map[string]float64)
	for i, h := range holdings {
		if _, ok := allocation[h.Category]; !ok {
			allocation[h.Category] = 0
		}
		if math.IsNaN(weights[i]) {
			continue
		}
		allocation[h.Category] += weights[i] * 100
	}
	for category, pct := range allocation {
		allocation[category] = round(pct, 2)
	}
	return allocation
}

// diversificationScore is 100 minus the largest category allocation:
// a single-category portfolio scores 0, an empty allocation scores 100.
func diversificationScore(allocation map[string]float64) float64 {
	if len(allocation) == 0 {
		return 100
	}
	maxPct := math.Inf(-1)
	for _, pct := range allocation {
		if pct > maxPct {
			maxPct = pct
		}
	}
	return round(100-maxPct, 2)
}

// round rounds a float to the specified number of decimal places
func round(val float64, decimals int) float64 {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return val
	}
	shift := math.Pow(10, float64(decimals))
	return math.Round(val*shift) / shift
}
