// Package arbitrage implements the opportunity evaluation bounded context.
package arbitrage

import (
	"context"

	"github.com/fd1az/quote-engine/business/arbitrage/app"
	arbDI "github.com/fd1az/quote-engine/business/arbitrage/di"
	"github.com/fd1az/quote-engine/business/arbitrage/infra"
	dexDI "github.com/fd1az/quote-engine/business/dex/di"
	feesDI "github.com/fd1az/quote-engine/business/fees/di"
	marketdataDI "github.com/fd1az/quote-engine/business/marketdata/di"
	pricingDI "github.com/fd1az/quote-engine/business/pricing/di"
	"github.com/fd1az/quote-engine/internal/config"
	"github.com/fd1az/quote-engine/internal/delay"
	"github.com/fd1az/quote-engine/internal/di"
	"github.com/fd1az/quote-engine/internal/logger"
	"github.com/fd1az/quote-engine/internal/monolith"
)

// Module implements the arbitrage bounded context.
type Module struct{}

// RegisterServices registers all arbitrage services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, arbDI.Calculator, func(sr di.ServiceRegistry) *app.Calculator {
		return app.NewCalculator()
	})

	di.RegisterToken(c, arbDI.Evaluator, func(sr di.ServiceRegistry) *app.Evaluator {
		cfg := sr.Get(monolith.ServiceConfig).(*config.Config)
		log := sr.Get(monolith.ServiceLogger).(logger.LoggerInterface)

		return app.NewEvaluator(
			pricingDI.GetPricingService(sr),
			dexDI.GetQuoter(sr),
			marketdataDI.GetOracle(sr),
			feesDI.GetFeeService(sr),
			arbDI.GetCalculator(sr),
			cfg.CEX.StableSymbols[0],
			log,
		)
	})

	di.RegisterToken(c, arbDI.Scanner, func(sr di.ServiceRegistry) *app.Scanner {
		cfg := sr.Get(monolith.ServiceConfig).(*config.Config)
		log := sr.Get(monolith.ServiceLogger).(logger.LoggerInterface)
		policy := sr.Get(monolith.ServiceDelayPolicy).(*delay.Policy)

		s := app.NewScanner(arbDI.GetEvaluator(sr), policy, cfg.Scan.BatchSize, log)
		s.ParallelTokens = cfg.Scan.ParallelTokens
		return s
	})

	di.RegisterToken(c, arbDI.Reporters, func(sr di.ServiceRegistry) []app.Reporter {
		cfg := sr.Get(monolith.ServiceConfig).(*config.Config)
		log := sr.Get(monolith.ServiceLogger).(logger.LoggerInterface)

		var reporters []app.Reporter
		if cfg.Reporting.Console {
			reporters = append(reporters, infra.NewConsoleReporter(nil))
		}
		if cfg.Reporting.Redis.Enabled {
			reporters = append(reporters, infra.NewRedisReporter(cfg.Reporting.Redis, log))
		}
		return reporters
	})

	return nil
}

// Startup starts the configured reporters.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	reporters := arbDI.GetReporters(mono.Services())
	for _, r := range reporters {
		if err := r.Start(ctx); err != nil {
			return err
		}
	}

	mono.Logger().Info(ctx, "arbitrage module started",
		"reporters", len(reporters),
		"batch_size", mono.Config().Scan.BatchSize,
		"stable", mono.Config().CEX.StableSymbols[0],
	)
	return nil
}

// Shutdown stops the reporters.
func (m *Module) Shutdown(ctx context.Context, mono monolith.Monolith) {
	for _, r := range arbDI.GetReporters(mono.Services()) {
		if err := r.Stop(); err != nil {
			mono.Logger().Warn(ctx, "reporter stop failed", "error", err)
		}
	}
}
