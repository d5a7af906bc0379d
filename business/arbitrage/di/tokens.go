// Package di contains dependency injection tokens for the arbitrage context.
package di

import (
	"github.com/fd1az/quote-engine/business/arbitrage/app"
	"github.com/fd1az/quote-engine/internal/di"
)

// Public service tokens - exposed to other modules
var (
	Scanner   = di.NewToken[*app.Scanner]("arbitrage.Scanner")
	Reporters = di.NewToken[[]app.Reporter]("arbitrage.Reporters")
)

// Private dependency tokens - internal to arbitrage module
var (
	Calculator = di.NewToken[*app.Calculator]("arbitrage:calculator")
	Evaluator  = di.NewToken[*app.Evaluator]("arbitrage:evaluator")
)

func GetScanner(c di.ServiceRegistry) *app.Scanner {
	return di.GetToken(c, Scanner)
}

func GetReporters(c di.ServiceRegistry) []app.Reporter {
	return di.GetToken(c, Reporters)
}

func GetCalculator(c di.ServiceRegistry) *app.Calculator {
	return di.GetToken(c, Calculator)
}

func GetEvaluator(c di.ServiceRegistry) *app.Evaluator {
	return di.GetToken(c, Evaluator)
}
