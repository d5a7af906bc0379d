// Package di contains dependency injection tokens for the dex context.
package di

import (
	"github.com/fd1az/quote-engine/business/dex/app"
	"github.com/fd1az/quote-engine/internal/di"
)

// Public service tokens - exposed to other modules
var (
	Quoter = di.NewToken[*app.Quoter]("dex.Quoter")
)

// Private dependency tokens - internal to dex module
var (
	Registry = di.NewToken[app.StrategyRegistry]("dex:registry")
)

func GetQuoter(c di.ServiceRegistry) *app.Quoter {
	return di.GetToken(c, Quoter)
}

func GetRegistry(c di.ServiceRegistry) app.StrategyRegistry {
	return di.GetToken(c, Registry)
}
