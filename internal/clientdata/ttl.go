package clientdata

import "time"

// TTL constants for the cached provider data.
// These are added to time.Now() when storing to calculate expires_at.
const (
	// Daily close series only grow by one point per trading day; an hour
	// keeps intraday reloads cheap without going visibly stale.
	TTLPriceHistory = time.Hour

	// Current price cache for batch refresh operations.
	TTLCurrentPrice = 10 * time.Minute
)
