// Package display formats metric values for presentation. Undefined
// values (NaN) render as "N/A"; raw numbers stay on the JSON side.
package display

import (
	"fmt"
	"math"

	"github.com/Rhymond/go-money"
)

var usd = money.New(0, money.USD).Currency()

// FormatCurrency renders a USD amount with symbol and thousands
// separators ($1,234.56). NaN renders as "N/A".
func FormatCurrency(value float64) string {
	if math.IsNaN(value) {
		return "N/A"
	}
	cents := int64(math.Round(value * 100))
	return usd.Formatter().Format(cents)
}

// FormatPercent renders a percentage with two decimals (12.34%).
// NaN renders as "N/A".
func FormatPercent(value float64) string {
	if math.IsNaN(value) {
		return "N/A"
	}
	return fmt.Sprintf("%.2f%%", value)
}

// FormatScore renders a 0-100 score with one decimal.
func FormatScore(value float64) string {
	if math.IsNaN(value) {
		return "N/A"
	}
	return fmt.Sprintf("%.1f", value)
}
