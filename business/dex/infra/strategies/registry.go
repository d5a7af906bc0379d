// Package strategies implements the per-vendor quote strategies.
package strategies

import (
	"strings"

	"github.com/fd1az/quote-engine/business/dex/domain"
)

// aliases maps alternate vendor spellings to registry keys.
var aliases = map[string]string{
	"oneinch":   "1inch",
	"zerox":     "0x",
	"kyber":     "kyberswap",
	"velora":    "paraswap",
	"jup":       "jupiter",
	"li.fi":     "lifi",
	"uniswap":   "uniswap_v3",
	"uniswapv3": "uniswap_v3",
}

// Set is a strategy registry keyed by vendor name.
type Set map[string]domain.Strategy

// Lookup resolves name, aliases included.
func (s Set) Lookup(name string) (domain.Strategy, bool) {
	st, ok := s[Canonical(name)]
	return st, ok
}

// Registry returns every built-in strategy keyed by vendor name.
func Registry() Set {
	all := []domain.Strategy{
		OneInch(),
		ZeroX(),
		Paraswap(),
		KyberSwap(),
		OKX(),
		Odos(),
		OpenOcean(),
		LiFi(),
		Jupiter(),
		UniswapV3(),
	}
	reg := make(Set, len(all))
	for _, s := range all {
		reg[s.Name] = s
	}
	return reg
}

// Canonical normalizes a vendor name to its registry key.
func Canonical(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	if a, ok := aliases[key]; ok {
		return a
	}
	return key
}
