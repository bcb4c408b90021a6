package scheduler

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/nlagos/folio/internal/domain"
	"github.com/nlagos/folio/internal/modules/charts"
	"github.com/nlagos/folio/internal/modules/holdings"
)

// RefreshJob refreshes current prices for tradable holdings and warms the
// historical series cache so chart requests don't pay provider latency.
type RefreshJob struct {
	service  *holdings.Service
	lookup   charts.PriceLookup
	tradable func(string) bool
	log      zerolog.Logger
}

// NewRefreshJob creates a price refresh job. lookup is optional; when nil
// the history cache warm-up is skipped.
func NewRefreshJob(service *holdings.Service, lookup charts.PriceLookup, tradable func(string) bool, log zerolog.Logger) *RefreshJob {
	if tradable == nil {
		tradable = charts.DefaultTradable
	}
	return &RefreshJob{
		service:  service,
		lookup:   lookup,
		tradable: tradable,
		log:      log.With().Str("job", "price_refresh").Logger(),
	}
}

// Name returns the job name.
func (j *RefreshJob) Name() string {
	return "price_refresh"
}

// Run refreshes quote prices and pre-fetches the default-period series for
// every tradable holding. An empty portfolio is a no-op, not a failure.
func (j *RefreshJob) Run() error {
	updated, err := j.service.RefreshPrices()
	if err != nil {
		if errors.Is(err, domain.ErrEmptyPortfolio) {
			j.log.Debug().Msg("No holdings to refresh")
			return nil
		}
		return fmt.Errorf("failed to refresh prices: %w", err)
	}
	j.log.Info().Int("updated", updated).Msg("Refreshed holding prices")

	if j.lookup == nil {
		return nil
	}

	warmed := 0
	for _, h := range j.service.Store().Snapshot() {
		if !j.tradable(h.AssetID) {
			continue
		}
		if _, err := j.lookup.History(h.AssetID, charts.DefaultPeriod); err != nil {
			j.log.Warn().Err(err).Str("asset", h.AssetID).Msg("Failed to warm series cache")
			continue
		}
		warmed++
	}
	j.log.Debug().Int("warmed", warmed).Msg("Warmed historical series cache")

	return nil
}
