// Package app contains the fee service and its ports.
package app

import "context"

// WithdrawalSource reads live withdrawal fees for one venue, keyed by symbol.
type WithdrawalSource interface {
	Venue() string
	WithdrawalFees(ctx context.Context) (map[string]float64, error)
}
