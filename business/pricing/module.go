// Package pricing implements the CEX order-book bounded context.
package pricing

import (
	"context"

	"github.com/fd1az/quote-engine/business/pricing/app"
	pricingDI "github.com/fd1az/quote-engine/business/pricing/di"
	"github.com/fd1az/quote-engine/business/pricing/infra/orderbook"
	"github.com/fd1az/quote-engine/internal/config"
	"github.com/fd1az/quote-engine/internal/delay"
	"github.com/fd1az/quote-engine/internal/di"
	"github.com/fd1az/quote-engine/internal/httpclient"
	"github.com/fd1az/quote-engine/internal/logger"
	"github.com/fd1az/quote-engine/internal/monolith"
)

// Module implements the pricing bounded context.
type Module struct{}

// RegisterServices registers all pricing services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, pricingDI.OrderbookProvider, func(sr di.ServiceRegistry) app.OrderbookProvider {
		cfg := sr.Get(monolith.ServiceConfig).(*config.Config)
		log := sr.Get(monolith.ServiceLogger).(logger.LoggerInterface)
		client := sr.Get(monolith.ServiceHTTPClient).(httpclient.Client)
		policy := sr.Get(monolith.ServiceDelayPolicy).(*delay.Policy)

		adapter, err := orderbook.NewAdapter(cfg.CEX, client, policy, log)
		if err != nil {
			panic("failed to create orderbook adapter: " + err.Error())
		}
		return adapter
	})

	di.RegisterToken(c, pricingDI.PricingService, func(sr di.ServiceRegistry) *app.PricingService {
		return app.NewPricingService(pricingDI.GetOrderbookProvider(sr))
	})

	return nil
}

// Startup initializes the pricing module.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	cfg := mono.Config()
	configured := 0
	for _, v := range cfg.CEX.Venues {
		if v.OrderbookURL != "" {
			configured++
		}
	}
	mono.Logger().Info(ctx, "pricing module started", "venues", configured, "stable_symbols", cfg.CEX.StableSymbols)
	return nil
}
