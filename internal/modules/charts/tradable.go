package charts

import "unicode"

// TradablePredicate decides whether an asset id can be looked up at the
// price provider. It is pluggable so the shape-based default can be
// replaced with an explicit per-holding flag.
type TradablePredicate func(assetID string) bool

// DefaultTradable treats an id as tradable when it contains a hyphen
// (crypto pair naming, e.g. BTC-USD) or is all-uppercase with at least
// one letter (ticker naming). Free-text labels like "Real Estate" fail
// both shapes.
func DefaultTradable(assetID string) bool {
	for _, r := range assetID {
		if r == '-' {
			return true
		}
	}
	return isUpper(assetID)
}

// isUpper reports whether the string has at least one cased letter and
// no lowercase ones.
func isUpper(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			hasLetter = true
		}
	}
	return hasLetter
}
