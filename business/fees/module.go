// Package fees implements the fee schedule bounded context.
package fees

import (
	"context"

	"github.com/fd1az/quote-engine/business/fees/app"
	feesDI "github.com/fd1az/quote-engine/business/fees/di"
	"github.com/fd1az/quote-engine/business/fees/domain"
	"github.com/fd1az/quote-engine/business/fees/infra/binance"
	"github.com/fd1az/quote-engine/internal/config"
	"github.com/fd1az/quote-engine/internal/di"
	"github.com/fd1az/quote-engine/internal/logger"
	"github.com/fd1az/quote-engine/internal/monolith"
)

// Module implements the fees bounded context.
type Module struct{}

// RegisterServices registers all fee services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, feesDI.Resolver, func(sr di.ServiceRegistry) *domain.Resolver {
		cfg := sr.Get(monolith.ServiceConfig).(*config.Config)
		return domain.NewResolver(VenueTable(cfg.Fees))
	})

	di.RegisterToken(c, feesDI.WithdrawalSources, func(sr di.ServiceRegistry) []app.WithdrawalSource {
		cfg := sr.Get(monolith.ServiceConfig).(*config.Config)

		var sources []app.WithdrawalSource
		if bn, ok := cfg.CEX.Venues["binance"]; ok && bn.APIKey != "" && bn.APISecret != "" {
			sources = append(sources, binance.NewWithdrawalSync(bn.APIKey, bn.APISecret, bn.APIURL, bn.WithdrawNetwork))
		}
		return sources
	})

	di.RegisterToken(c, feesDI.FeeService, func(sr di.ServiceRegistry) *app.FeeService {
		log := sr.Get(monolith.ServiceLogger).(logger.LoggerInterface)
		return app.NewFeeService(feesDI.GetResolver(sr), feesDI.GetWithdrawalSources(sr), log)
	})

	return nil
}

// Startup runs one withdrawal-fee sync when live sources are configured.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	sources := feesDI.GetWithdrawalSources(mono.Services())
	if len(sources) > 0 {
		ctx, cancel := context.WithTimeout(ctx, mono.Delay().Timeout())
		defer cancel()
		feesDI.GetFeeService(mono.Services()).Sync(ctx)
	}

	mono.Logger().Info(ctx, "fees module started",
		"configured_venues", len(mono.Config().Fees.Venues),
		"live_sources", len(sources),
	)
	return nil
}

// VenueTable converts the configured fee table.
func VenueTable(fc config.FeesConfig) map[string]domain.VenueFees {
	out := make(map[string]domain.VenueFees, len(fc.Venues))
	for name, vf := range fc.Venues {
		out[name] = domain.VenueFees{TradingFee: vf.TradingFee, Withdrawal: vf.Withdrawal}
	}
	return out
}
