// Package di contains dependency injection tokens for the market data context.
package di

import (
	"github.com/fd1az/quote-engine/business/marketdata/app"
	"github.com/fd1az/quote-engine/internal/di"
)

// Public service tokens - exposed to other modules
var (
	Oracle = di.NewToken[*app.Oracle]("marketdata.Oracle")
)

// Private dependency tokens - internal to marketdata module
var (
	GasPriceSource = di.NewToken[app.GasPriceSource]("marketdata:gasPriceSource")
	FxSources      = di.NewToken[[]app.FxSource]("marketdata:fxSources")
)

// Helper functions for type-safe access
func GetOracle(c di.ServiceRegistry) *app.Oracle {
	return di.GetToken(c, Oracle)
}

func GetGasPriceSource(c di.ServiceRegistry) app.GasPriceSource {
	return di.GetToken(c, GasPriceSource)
}

func GetFxSources(c di.ServiceRegistry) []app.FxSource {
	return di.GetToken(c, FxSources)
}
