package di

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/nlagos/folio/internal/clientdata"
	"github.com/nlagos/folio/internal/clients/yahoo"
	"github.com/nlagos/folio/internal/config"
	"github.com/nlagos/folio/internal/database"
	"github.com/nlagos/folio/internal/modules/analytics"
	"github.com/nlagos/folio/internal/modules/charts"
	"github.com/nlagos/folio/internal/modules/holdings"
	"github.com/nlagos/folio/internal/scheduler"
)

// Wire initializes all dependencies and returns a fully configured container.
// Order of operations:
// 1. Open and migrate the cache database
// 2. Build the market-data client on top of the cache repository
// 3. Build services and seed the snapshot with the sample portfolio
// 4. Build background jobs
func Wire(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	cacheDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "cache.db"),
		Profile: database.ProfileCache,
		Name:    "cache",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	if err := cacheDB.Migrate(); err != nil {
		cacheDB.Close()
		return nil, fmt.Errorf("failed to migrate cache database: %w", err)
	}

	cacheRepo := clientdata.NewRepository(cacheDB.Conn())

	yahooClient := yahoo.NewClient(
		cfg.MarketDataURL,
		time.Duration(cfg.HTTPTimeoutSec)*time.Second,
		cacheRepo,
		log,
	)

	store := holdings.NewStore()
	holdingsService := holdings.NewService(store, yahooClient, charts.DefaultTradable, log)
	analyticsService := analytics.NewService(log)
	chartsService := charts.NewService(yahooClient, charts.DefaultTradable, charts.NewNoiseSource(), log)

	// First run shows the sample portfolio, flagged so clients can render
	// the "viewing sample data" notice.
	if err := holdingsService.LoadSample(); err != nil {
		cacheDB.Close()
		return nil, fmt.Errorf("failed to load sample portfolio: %w", err)
	}

	container := &Container{
		CacheDB:          cacheDB,
		CacheRepo:        cacheRepo,
		YahooClient:      yahooClient,
		HoldingsStore:    store,
		HoldingsService:  holdingsService,
		AnalyticsService: analyticsService,
		ChartsService:    chartsService,
		RefreshJob:       scheduler.NewRefreshJob(holdingsService, yahooClient, charts.DefaultTradable, log),
		CleanupJob:       clientdata.NewCleanupJob(cacheRepo, log),
	}

	log.Info().Msg("Dependency injection wiring completed successfully")
	return container, nil
}
