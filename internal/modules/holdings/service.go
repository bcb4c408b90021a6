package holdings

import (
	"fmt"

	"github.com/nlagos/folio/internal/domain"
	"github.com/rs/zerolog"
)

// Quoter fetches the latest price for one asset. Used by the price
// refresh; lookup failures leave the holding's prior price in place.
type Quoter interface {
	Quote(assetID string) (float64, error)
}

// Service drives portfolio lifecycle operations against the store. The
// engine's normalizer stays pure; this layer owns when snapshots change.
type Service struct {
	store    *Store
	quoter   Quoter
	tradable func(assetID string) bool
	log      zerolog.Logger
}

// NewService creates a new holdings service. quoter may be nil when price
// refresh is not wired (it then fails with an explicit error).
func NewService(store *Store, quoter Quoter, tradable func(string) bool, log zerolog.Logger) *Service {
	return &Service{
		store:    store,
		quoter:   quoter,
		tradable: tradable,
		log:      log.With().Str("service", "holdings").Logger(),
	}
}

// Store exposes the underlying snapshot store.
func (s *Service) Store() *Store {
	return s.store
}

// LoadSample replaces the snapshot with the built-in sample portfolio.
func (s *Service) LoadSample() error {
	holdings, err := domain.Normalize(domain.SampleRecords())
	if err != nil {
		return fmt.Errorf("failed to normalize sample records: %w", err)
	}
	s.store.ReplaceWithSample(holdings)
	s.log.Info().Int("holdings", len(holdings)).Msg("Loaded sample portfolio")
	return nil
}

// Import normalizes a batch of raw records and replaces the snapshot.
// The first invalid record aborts the whole import; prior state is kept.
func (s *Service) Import(raws []domain.RawHolding) ([]domain.Holding, error) {
	holdings, err := domain.Normalize(raws)
	if err != nil {
		return nil, err
	}
	s.store.Replace(holdings)
	s.log.Info().Int("holdings", len(holdings)).Str("snapshot", s.store.SnapshotID()).Msg("Imported portfolio")
	return holdings, nil
}

// Add normalizes a single record and appends it to the snapshot.
func (s *Service) Add(raw domain.RawHolding) (domain.Holding, error) {
	h, err := domain.NewHolding(raw)
	if err != nil {
		return domain.Holding{}, err
	}
	s.store.Append(h)
	s.log.Info().Str("asset", h.AssetID).Msg("Added holding")
	return h, nil
}

// Clear empties the portfolio.
func (s *Service) Clear() {
	s.store.Clear()
	s.log.Info().Msg("Cleared portfolio")
}

// RefreshPrices fetches the latest quote for every tradable holding and
// rebuilds the snapshot with updated current prices. Non-tradable and
// failed symbols keep their prior price. Returns the number of holdings
// whose price was updated.
func (s *Service) RefreshPrices() (int, error) {
	if s.quoter == nil {
		return 0, fmt.Errorf("no price provider configured")
	}

	snapshot := s.store.Snapshot()
	if len(snapshot) == 0 {
		return 0, domain.ErrEmptyPortfolio
	}

	updated := 0
	refreshed := make([]domain.Holding, 0, len(snapshot))
	for _, h := range snapshot {
		if s.tradable != nil && !s.tradable(h.AssetID) {
			refreshed = append(refreshed, h)
			continue
		}

		price, err := s.quoter.Quote(h.AssetID)
		if err != nil || price <= 0 {
			s.log.Warn().Err(err).Str("asset", h.AssetID).Msg("Quote unavailable, keeping prior price")
			refreshed = append(refreshed, h)
			continue
		}

		rebuilt, err := domain.NewHolding(domain.RawHolding{
			AssetID:       h.AssetID,
			Category:      h.Category,
			Quantity:      h.Quantity,
			PurchasePrice: h.PurchasePrice,
			CurrentPrice:  price,
		})
		if err != nil {
			refreshed = append(refreshed, h)
			continue
		}
		refreshed = append(refreshed, rebuilt)
		updated++
	}

	s.store.Replace(refreshed)
	s.log.Info().Int("updated", updated).Int("holdings", len(refreshed)).Msg("Refreshed prices")
	return updated, nil
}
