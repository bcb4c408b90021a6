// Package yahoo implements the price-series provider against the Yahoo
// Finance v8 chart API, with an SQLite-backed cache in front of it.
package yahoo

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/nlagos/folio/internal/clientdata"
	"github.com/nlagos/folio/internal/modules/history"
	"github.com/rs/zerolog"
)

// rangeForPeriod maps the engine's period tokens to Yahoo range values.
var rangeForPeriod = map[string]string{
	"1m": "1mo",
	"3m": "3mo",
	"6m": "6mo",
	"1y": "1y",
	"2y": "2y",
	"5y": "5y",
}

// Client fetches historical prices and quotes from Yahoo Finance.
// Responses are cached persistently; when the API fails, stale cached
// data is served instead (stale data beats no data).
type Client struct {
	baseURL   string
	client    *http.Client
	cacheRepo *clientdata.Repository
	log       zerolog.Logger
}

// NewClient creates a new Yahoo Finance client.
// cacheRepo is optional - if nil, caching is disabled.
func NewClient(baseURL string, timeout time.Duration, cacheRepo *clientdata.Repository, log zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = "https://query1.finance.yahoo.com/v8/finance/chart"
	}
	return &Client{
		baseURL:   baseURL,
		client:    &http.Client{Timeout: timeout},
		cacheRepo: cacheRepo,
		log:       log.With().Str("client", "yahoo").Logger(),
	}
}

// cachedSeries is the structure stored in the price_history cache table.
type cachedSeries struct {
	Points []history.PricePoint `json:"points"`
}

// cachedQuote is the structure stored in the current_prices cache table.
type cachedQuote struct {
	Price float64 `json:"price"`
}

// chartResponse mirrors the slice of the v8 chart payload we consume.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice float64 `json:"regularMarketPrice"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// History returns the daily close series for one symbol over a period
// token (1m..5y). An unknown symbol yields an empty series, not an error.
func (c *Client) History(assetID, period string) ([]history.PricePoint, error) {
	yahooRange, ok := rangeForPeriod[period]
	if !ok {
		return nil, fmt.Errorf("unknown period %q", period)
	}

	cacheKey := assetID + ":" + period
	if c.cacheRepo != nil {
		data, err := c.cacheRepo.GetIfFresh(clientdata.TablePriceHistory, cacheKey)
		if err == nil && data != nil {
			var cached cachedSeries
			if err := json.Unmarshal(data, &cached); err == nil {
				c.log.Debug().Str("asset", assetID).Str("period", period).Msg("Cache hit")
				return cached.Points, nil
			}
		}
	}

	points, err := c.fetchHistory(assetID, yahooRange)
	if err != nil {
		// API failed - try stale cached data as fallback
		if stale, ok := c.staleSeries(cacheKey); ok {
			c.log.Warn().Err(err).Str("asset", assetID).Msg("API failed, using stale cached series")
			return stale, nil
		}
		return nil, err
	}

	if c.cacheRepo != nil && len(points) > 0 {
		cached := cachedSeries{Points: points}
		if err := c.cacheRepo.Store(clientdata.TablePriceHistory, cacheKey, cached, clientdata.TTLPriceHistory); err != nil {
			c.log.Warn().Err(err).Str("asset", assetID).Msg("Failed to cache price series")
		}
	}

	return points, nil
}

// Quote returns the latest market price for one symbol.
func (c *Client) Quote(assetID string) (float64, error) {
	if c.cacheRepo != nil {
		data, err := c.cacheRepo.GetIfFresh(clientdata.TableCurrentPrices, assetID)
		if err == nil && data != nil {
			var cached cachedQuote
			if err := json.Unmarshal(data, &cached); err == nil {
				c.log.Debug().Str("asset", assetID).Float64("price", cached.Price).Msg("Cache hit")
				return cached.Price, nil
			}
		}
	}

	decoded, err := c.fetch(assetID, "1d")
	if err != nil {
		if stale, ok := c.staleQuote(assetID); ok {
			c.log.Warn().Err(err).Str("asset", assetID).Float64("price", stale).Msg("API failed, using stale cached quote")
			return stale, nil
		}
		return 0, err
	}

	if len(decoded.Chart.Result) == 0 {
		return 0, fmt.Errorf("no quote data for %s", assetID)
	}
	price := decoded.Chart.Result[0].Meta.RegularMarketPrice
	if price <= 0 {
		return 0, fmt.Errorf("no usable price for %s", assetID)
	}

	if c.cacheRepo != nil {
		if err := c.cacheRepo.Store(clientdata.TableCurrentPrices, assetID, cachedQuote{Price: price}, clientdata.TTLCurrentPrice); err != nil {
			c.log.Warn().Err(err).Str("asset", assetID).Msg("Failed to cache quote")
		}
	}

	c.log.Debug().Str("asset", assetID).Float64("price", price).Msg("Fetched quote")
	return price, nil
}

// fetchHistory fetches and decodes a daily close series.
func (c *Client) fetchHistory(assetID, yahooRange string) ([]history.PricePoint, error) {
	decoded, err := c.fetch(assetID, yahooRange)
	if err != nil {
		return nil, err
	}

	if decoded.Chart.Error != nil {
		// Yahoo reports unknown symbols in-band; treat as no data.
		c.log.Debug().Str("asset", assetID).Str("code", decoded.Chart.Error.Code).Msg("Provider reported no data")
		return nil, nil
	}
	if len(decoded.Chart.Result) == 0 {
		return nil, nil
	}

	result := decoded.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, nil
	}
	closes := result.Indicators.Quote[0].Close

	points := make([]history.PricePoint, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		// Yahoo pads holidays with null closes; skip them.
		if i >= len(closes) || closes[i] == nil {
			continue
		}
		points = append(points, history.PricePoint{
			Time:  time.Unix(ts, 0).UTC(),
			Price: *closes[i],
		})
	}
	return points, nil
}

// fetch performs one chart API call.
func (c *Client) fetch(assetID, yahooRange string) (*chartResponse, error) {
	reqURL := fmt.Sprintf("%s/%s?range=%s&interval=1d", c.baseURL, url.PathEscape(assetID), yahooRange)

	req, err := http.NewRequest(http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	// Yahoo rejects requests without a browser-ish user agent.
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; folio/1.0)")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		// Unknown symbol; an empty payload falls out as "no data".
		return &chartResponse{}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	var decoded chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &decoded, nil
}

func (c *Client) staleSeries(cacheKey string) ([]history.PricePoint, bool) {
	if c.cacheRepo == nil {
		return nil, false
	}
	data, err := c.cacheRepo.Get(clientdata.TablePriceHistory, cacheKey)
	if err != nil || data == nil {
		return nil, false
	}
	var cached cachedSeries
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, false
	}
	return cached.Points, true
}

func (c *Client) staleQuote(assetID string) (float64, bool) {
	if c.cacheRepo == nil {
		return 0, false
	}
	data, err := c.cacheRepo.Get(clientdata.TableCurrentPrices, assetID)
	if err != nil || data == nil {
		return 0, false
	}
	var cached cachedQuote
	if err := json.Unmarshal(data, &cached); err != nil {
		return 0, false
	}
	return cached.Price, true
}
