// Package marketdata implements the gas, native price and FX bounded context.
package marketdata

import (
	"context"

	"github.com/fd1az/quote-engine/business/marketdata/app"
	marketdataDI "github.com/fd1az/quote-engine/business/marketdata/di"
	"github.com/fd1az/quote-engine/business/marketdata/infra/ethereum"
	"github.com/fd1az/quote-engine/business/marketdata/infra/fx"
	pricingDI "github.com/fd1az/quote-engine/business/pricing/di"
	"github.com/fd1az/quote-engine/internal/config"
	"github.com/fd1az/quote-engine/internal/delay"
	"github.com/fd1az/quote-engine/internal/di"
	"github.com/fd1az/quote-engine/internal/httpclient"
	"github.com/fd1az/quote-engine/internal/logger"
	"github.com/fd1az/quote-engine/internal/monolith"
)

// Module implements the market data bounded context.
type Module struct{}

// RegisterServices registers all market data services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, marketdataDI.GasPriceSource, func(sr di.ServiceRegistry) app.GasPriceSource {
		cfg := sr.Get(monolith.ServiceConfig).(*config.Config)
		log := sr.Get(monolith.ServiceLogger).(logger.LoggerInterface)
		policy := sr.Get(monolith.ServiceDelayPolicy).(*delay.Policy)

		src, err := ethereum.NewGasSource(cfg.Chains, policy, log)
		if err != nil {
			panic("failed to create gas source: " + err.Error())
		}
		return src
	})

	di.RegisterToken(c, marketdataDI.FxSources, func(sr di.ServiceRegistry) []app.FxSource {
		cfg := sr.Get(monolith.ServiceConfig).(*config.Config)
		client := sr.Get(monolith.ServiceHTTPClient).(httpclient.Client)

		var sources []app.FxSource
		if u := cfg.MarketData.FX.PrimaryURL; u != "" {
			sources = append(sources, fx.NewExchangeRateAPI(u, client))
		}
		if u := cfg.MarketData.FX.SecondaryURL; u != "" {
			sources = append(sources, fx.NewYahoo(u, client))
		}
		return sources
	})

	di.RegisterToken(c, marketdataDI.Oracle, func(sr di.ServiceRegistry) *app.Oracle {
		cfg := sr.Get(monolith.ServiceConfig).(*config.Config)
		log := sr.Get(monolith.ServiceLogger).(logger.LoggerInterface)

		return app.NewOracle(
			cfg.Chains,
			cfg.MarketData,
			marketdataDI.GetGasPriceSource(sr),
			pricingDI.GetPricingService(sr),
			marketdataDI.GetFxSources(sr),
			log,
		)
	})

	return nil
}

// Startup initializes the market data module.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	cfg := mono.Config()
	evm := 0
	for _, chain := range cfg.Chains {
		if chain.IsEVM() && chain.RPCURL != "" {
			evm++
		}
	}
	mono.Logger().Info(ctx, "marketdata module started",
		"chains", len(cfg.Chains),
		"evm_rpc", evm,
		"fiat", cfg.MarketData.FX.Fiat,
		"cache_ttl", cfg.MarketData.CacheTTL.String(),
	)
	return nil
}
