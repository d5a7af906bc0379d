package app

import (
	"context"

	"github.com/fd1az/quote-engine/business/fees/domain"
	"github.com/fd1az/quote-engine/internal/logger"
)

// FeeService resolves fee schedules and refreshes venue tables from live sources.
type FeeService struct {
	resolver *domain.Resolver
	sources  []WithdrawalSource
	logger   logger.LoggerInterface
}

// NewFeeService creates a FeeService.
func NewFeeService(resolver *domain.Resolver, sources []WithdrawalSource, log logger.LoggerInterface) *FeeService {
	return &FeeService{resolver: resolver, sources: sources, logger: log}
}

// Resolve returns the schedule for symbol on venue.
func (s *FeeService) Resolve(venue, symbol string, o domain.Override) domain.Schedule {
	return s.resolver.Resolve(venue, symbol, o)
}

// Sync pulls every source once. A failing source leaves its table unchanged.
func (s *FeeService) Sync(ctx context.Context) {
	for _, src := range s.sources {
		fees, err := src.WithdrawalFees(ctx)
		if err != nil {
			s.logger.Warn(ctx, "withdrawal fee sync failed", "venue", src.Venue(), "error", err)
			continue
		}
		n := s.resolver.UpdateWithdrawals(src.Venue(), fees)
		s.logger.Info(ctx, "withdrawal fees synced", "venue", src.Venue(), "symbols", n)
	}
}
