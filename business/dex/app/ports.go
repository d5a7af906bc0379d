// Package app resolves, dispatches and chains DEX quote strategies.
package app

import "github.com/fd1az/quote-engine/business/dex/domain"

// StrategyRegistry resolves a strategy by vendor name or alias.
type StrategyRegistry interface {
	Lookup(name string) (domain.Strategy, bool)
}
