package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Recoverable engine errors. Callers match these with errors.Is/errors.As
// and decide whether to report and keep prior state or drop the record.
var (
	// ErrEmptyPortfolio is returned when aggregation is invoked on zero holdings.
	ErrEmptyPortfolio = errors.New("portfolio has no holdings")

	// ErrEmptySeries is returned when series normalization is given zero points.
	ErrEmptySeries = errors.New("price series has no points")

	// ErrNoData is returned when a historical dataset build yields zero usable assets.
	ErrNoData = errors.New("no historical data available")
)

// ValidationError reports a bad base-field value on a single holding.
type ValidationError struct {
	AssetID string // empty when the asset id itself is the offender
	Field   string // one of the Col* labels
	Reason  string
}

func (e *ValidationError) Error() string {
	if e.AssetID == "" {
		return fmt.Sprintf("invalid holding: %s %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid holding %q: %s %s", e.AssetID, e.Field, e.Reason)
}

// MissingColumnsError reports an import source that lacks required columns.
type MissingColumnsError struct {
	Missing []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("import source is missing required columns: %s", strings.Join(e.Missing, ", "))
}
