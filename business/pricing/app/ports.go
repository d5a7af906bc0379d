// Package app contains application services and port definitions for the pricing context.
package app

import (
	"context"

	"github.com/fd1az/quote-engine/business/pricing/domain"
)

// OrderbookProvider fetches a normalized ladder for symbol on venue, quoted
// against the venue's stable asset. A nil ladder means no price.
type OrderbookProvider interface {
	GetOrderbook(ctx context.Context, venue, symbol string) *domain.Ladder
}
