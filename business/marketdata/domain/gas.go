// Package domain contains the market data values consumed by the calculator.
package domain

import (
	"math/big"
	"time"
)

// Source records where a value came from.
type Source string

const (
	SourceLive     Source = "live"
	SourceFallback Source = "fallback"
)

// GasData is the per-chain gas context.
type GasData struct {
	Chain     string
	GweiPrice float64
	NativeUSD float64
	GasLimit  uint64

	GasSource    Source
	NativeSource Source
	FetchedAt    time.Time
}

// CostUSD is the swap gas cost at GasLimit.
func (g GasData) CostUSD() float64 {
	return g.GweiPrice * float64(g.GasLimit) * 1e-9 * g.NativeUSD
}

// WeiToGwei converts a wei amount to gwei.
func WeiToGwei(wei *big.Int) float64 {
	if wei == nil {
		return 0
	}
	gwei := new(big.Float).SetInt(wei)
	gwei.Quo(gwei, big.NewFloat(1e9))
	f, _ := gwei.Float64()
	return f
}
