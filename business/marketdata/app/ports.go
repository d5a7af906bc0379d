// Package app contains the market data oracle and its ports.
package app

import "context"

// GasPriceSource reads the current gas price of an EVM chain in gwei.
type GasPriceSource interface {
	SuggestGwei(ctx context.Context, chain string) (float64, error)
}

// PriceSource returns a token's best bid in the stable asset.
type PriceSource interface {
	BestBid(ctx context.Context, venue, symbol string) (float64, bool)
}

// FxSource is one tier of the stable-to-fiat rate lookup.
type FxSource interface {
	Name() string
	Rate(ctx context.Context, fiat string) (float64, error)
}
