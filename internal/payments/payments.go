// Package payments wraps the payment provider behind a capability interface
// so handlers and tests never touch the provider SDK directly.
package payments

import (
	"context"
	"math"
)

// IntentCreator creates a provider-side payment intent for an amount in minor
// currency units and returns the client-side confirmation secret.
type IntentCreator interface {
	CreateIntent(ctx context.Context, amountMinor int64, currency string) (clientSecret string, err error)
}

// MinorUnits converts a major-unit decimal amount to minor units, rounded to
// the nearest integer (19.99 -> 1999).
func MinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
