// Package di contains dependency injection tokens for the fees context.
package di

import (
	"github.com/fd1az/quote-engine/business/fees/app"
	"github.com/fd1az/quote-engine/business/fees/domain"
	"github.com/fd1az/quote-engine/internal/di"
)

// Public service tokens - exposed to other modules
var (
	FeeService = di.NewToken[*app.FeeService]("fees.FeeService")
)

// Private dependency tokens - internal to fees module
var (
	Resolver          = di.NewToken[*domain.Resolver]("fees:resolver")
	WithdrawalSources = di.NewToken[[]app.WithdrawalSource]("fees:withdrawalSources")
)

// Helper functions for type-safe access
func GetFeeService(c di.ServiceRegistry) *app.FeeService {
	return di.GetToken(c, FeeService)
}

func GetResolver(c di.ServiceRegistry) *domain.Resolver {
	return di.GetToken(c, Resolver)
}

func GetWithdrawalSources(c di.ServiceRegistry) []app.WithdrawalSource {
	return di.GetToken(c, WithdrawalSources)
}
