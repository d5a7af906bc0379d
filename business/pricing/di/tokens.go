// Package di contains dependency injection tokens for the pricing context.
package di

import (
	"github.com/fd1az/quote-engine/business/pricing/app"
	"github.com/fd1az/quote-engine/internal/di"
)

// Public service tokens - exposed to other modules
var (
	PricingService    = di.NewToken[*app.PricingService]("pricing.PricingService")
	OrderbookProvider = di.NewToken[app.OrderbookProvider]("pricing.OrderbookProvider")
)

// Helper functions for type-safe access
func GetPricingService(c di.ServiceRegistry) *app.PricingService {
	return di.GetToken(c, PricingService)
}

func GetOrderbookProvider(c di.ServiceRegistry) app.OrderbookProvider {
	return di.GetToken(c, OrderbookProvider)
}
