// Package dex implements the swap-quote bounded context.
package dex

import (
	"context"

	"github.com/fd1az/quote-engine/business/dex/app"
	dexDI "github.com/fd1az/quote-engine/business/dex/di"
	"github.com/fd1az/quote-engine/business/dex/infra/strategies"
	"github.com/fd1az/quote-engine/internal/config"
	"github.com/fd1az/quote-engine/internal/delay"
	"github.com/fd1az/quote-engine/internal/di"
	"github.com/fd1az/quote-engine/internal/httpclient"
	"github.com/fd1az/quote-engine/internal/logger"
	"github.com/fd1az/quote-engine/internal/monolith"
)

// Module implements the dex bounded context.
type Module struct{}

// RegisterServices registers the strategy registry and the quoter.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, dexDI.Registry, func(sr di.ServiceRegistry) app.StrategyRegistry {
		return strategies.Registry()
	})

	di.RegisterToken(c, dexDI.Quoter, func(sr di.ServiceRegistry) *app.Quoter {
		cfg := sr.Get(monolith.ServiceConfig).(*config.Config)
		log := sr.Get(monolith.ServiceLogger).(logger.LoggerInterface)
		client := sr.Get(monolith.ServiceHTTPClient).(httpclient.Client)
		policy := sr.Get(monolith.ServiceDelayPolicy).(*delay.Policy)

		q, err := app.NewQuoter(cfg, dexDI.GetRegistry(sr), client, policy, log)
		if err != nil {
			panic("failed to create dex quoter: " + err.Error())
		}
		return q
	})

	return nil
}

// Startup logs strategies that are configured but unknown.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()
	reg := dexDI.GetRegistry(mono.Services())

	for venue, vc := range mono.Config().DEX.Venues {
		for _, name := range []string{vc.CEXToDEX.Primary, vc.CEXToDEX.Alternative, vc.DEXToCEX.Primary, vc.DEXToCEX.Alternative} {
			if name == "" {
				continue
			}
			if _, ok := reg.Lookup(name); !ok {
				log.Warn(ctx, "unknown quote strategy configured", "venue", venue, "strategy", name)
			}
		}
	}

	log.Info(ctx, "dex module started")
	return nil
}
