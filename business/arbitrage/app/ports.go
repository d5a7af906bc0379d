package app

import (
	"context"

	dexApp "github.com/fd1az/quote-engine/business/dex/app"
	dexDomain "github.com/fd1az/quote-engine/business/dex/domain"
	feesDomain "github.com/fd1az/quote-engine/business/fees/domain"
	mdDomain "github.com/fd1az/quote-engine/business/marketdata/domain"
	pricingApp "github.com/fd1az/quote-engine/business/pricing/app"
)

// Pricing fetches the token and pair CEX ladders.
type Pricing interface {
	GetLegs(ctx context.Context, venue, token, pair string) pricingApp.Legs
}

// Quoter returns a DEX quote or nil.
type Quoter interface {
	GetQuote(ctx context.Context, req dexApp.QuoteRequest) *dexDomain.Quote
}

// MarketData serves gas context and the fiat rate.
type MarketData interface {
	GetGasData(ctx context.Context, chains []string) map[string]mdDomain.GasData
	GetStableFxRate(ctx context.Context) float64
}

// FeeSchedule resolves trading and withdrawal fees.
type FeeSchedule interface {
	Resolve(venue, symbol string, o feesDomain.Override) feesDomain.Schedule
}

// Reporter consumes scan events.
type Reporter interface {
	// Start initializes the reporter.
	Start(ctx context.Context) error

	// Handle receives one event. It must not block the scan for long.
	Handle(ctx context.Context, ev Event)

	// Stop gracefully shuts down the reporter.
	Stop() error
}
