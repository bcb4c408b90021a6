// Package history normalizes raw price series for cross-asset comparison.
package history

import (
	"time"

	"github.com/nlagos/folio/internal/domain"
)

// PricePoint is one observation of an asset's price series.
type PricePoint struct {
	Time  time.Time `json:"time"`
	Price float64   `json:"price"`
}

// ChangePoint pairs a timestamp with the percentage change from the
// series start.
type ChangePoint struct {
	Time      time.Time `json:"time"`
	PctChange float64   `json:"pct_change"`
}

// NormalizeSeries rebases a chronological price series to percentage
// change from its first observation: (price/price[0] - 1) * 100. The
// first output value is exactly zero. Assets priced in different units
// become directly comparable after rebasing.
func NormalizeSeries(points []PricePoint) ([]ChangePoint, error) {
	if len(points) == 0 {
		return nil, domain.ErrEmptySeries
	}

	base := points[0].Price
	out := make([]ChangePoint, len(points))
	out[0] = ChangePoint{Time: points[0].Time} // anchor is zero by definition
	for i := 1; i < len(points); i++ {
		out[i] = ChangePoint{
			Time:      points[i].Time,
			PctChange: (points[i].Price/base - 1) * 100,
		}
	}
	return out, nil
}
