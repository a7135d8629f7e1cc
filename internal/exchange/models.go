package exchange

import (
	"github.com/shopspring/decimal"
)

// Source tags where a rate came from, so callers and history entries can tell
// an official fetch from a staff-entered override.
type Source string

const (
	SourceAutomaticPrimary   Source = "automatic-primary"
	SourceAutomaticSecondary Source = "automatic-secondary"
	SourceManual             Source = "manual"
)

// Rate is a USD to Bs conversion rate and its origin.
type Rate struct {
	Value  decimal.Decimal `json:"value"`
	Source Source          `json:"source"`
}
