// Package di provides dependency injection wiring and initialization.
//
// The Container is the single source of truth for all service instances
// and is passed to the server for handler construction.
package di

import (
	"github.com/nlagos/folio/internal/clientdata"
	"github.com/nlagos/folio/internal/clients/yahoo"
	"github.com/nlagos/folio/internal/database"
	"github.com/nlagos/folio/internal/modules/analytics"
	"github.com/nlagos/folio/internal/modules/charts"
	"github.com/nlagos/folio/internal/modules/holdings"
	"github.com/nlagos/folio/internal/scheduler"
)

// Container holds all application dependencies.
type Container struct {
	// Databases
	CacheDB *database.DB

	// Repositories
	CacheRepo *clientdata.Repository

	// Clients
	YahooClient *yahoo.Client

	// Services
	HoldingsStore    *holdings.Store
	HoldingsService  *holdings.Service
	AnalyticsService *analytics.Service
	ChartsService    *charts.Service

	// Background jobs
	RefreshJob *scheduler.RefreshJob
	CleanupJob *clientdata.CleanupJob
}

// Close releases all resources held by the container.
func (c *Container) Close() error {
	if c.CacheDB != nil {
		return c.CacheDB.Close()
	}
	return nil
}
