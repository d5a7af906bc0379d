// Package domain resolves trading and withdrawal fee schedules.
package domain

import (
	"math"
	"strings"
	"sync"
)

// Source records which lookup tier produced a fee.
type Source string

const (
	SourceToken    Source = "token"
	SourceConfig   Source = "config"
	SourceFallback Source = "fallback"
	SourceDefault  Source = "default"
)

// Last-resort values when no tier knows the venue or symbol.
const (
	DefaultTradingFee    = 0.001
	DefaultWithdrawalFee = 0.0
)

// VenueFees is one venue's trading-fee rate and per-symbol withdrawal fees
// in asset units. A nil TradingFee means "not set at this tier".
type VenueFees struct {
	TradingFee *float64
	Withdrawal map[string]float64
}

// Override carries token-level fee settings.
type Override struct {
	TradingFee     *float64
	WithdrawalFees map[string]float64
}

// Schedule is a resolved fee pair.
type Schedule struct {
	Venue            string
	Symbol           string
	TradingFee       float64
	WithdrawalFee    float64
	TradingSource    Source
	WithdrawalSource Source
}

// Resolver looks fees up in order: token override, venue table, built-in
// fallback table, constant. The venue table may be refreshed at runtime.
type Resolver struct {
	mu       sync.RWMutex
	venues   map[string]VenueFees
	fallback map[string]VenueFees
}

// NewResolver creates a resolver over the configured venue table.
func NewResolver(venues map[string]VenueFees) *Resolver {
	r := &Resolver{
		venues:   make(map[string]VenueFees, len(venues)),
		fallback: fallbackTable(),
	}
	for name, vf := range venues {
		r.venues[strings.ToLower(name)] = copyVenue(vf)
	}
	return r
}

// Resolve returns the fee schedule for symbol on venue.
func (r *Resolver) Resolve(venue, symbol string, o Override) Schedule {
	venue = strings.ToLower(strings.TrimSpace(venue))
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	s := Schedule{
		Venue:            venue,
		Symbol:           symbol,
		TradingFee:       DefaultTradingFee,
		WithdrawalFee:    DefaultWithdrawalFee,
		TradingSource:    SourceDefault,
		WithdrawalSource: SourceDefault,
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	tiers := []struct {
		src Source
		vf  VenueFees
	}{
		{SourceToken, VenueFees{TradingFee: o.TradingFee, Withdrawal: o.WithdrawalFees}},
		{SourceConfig, r.venues[venue]},
		{SourceFallback, r.fallback[venue]},
	}

	tradingSet, withdrawalSet := false, false
	for _, t := range tiers {
		if !tradingSet && t.vf.TradingFee != nil && valid(*t.vf.TradingFee) {
			s.TradingFee, s.TradingSource = *t.vf.TradingFee, t.src
			tradingSet = true
		}
		if !withdrawalSet {
			if fee, ok := lookup(t.vf.Withdrawal, symbol); ok {
				s.WithdrawalFee, s.WithdrawalSource = fee, t.src
				withdrawalSet = true
			}
		}
	}
	return s
}

// UpdateWithdrawals merges fees into the venue table and returns how many
// symbols were written. Invalid values are skipped.
func (r *Resolver) UpdateWithdrawals(venue string, fees map[string]float64) int {
	venue = strings.ToLower(venue)

	r.mu.Lock()
	defer r.mu.Unlock()

	vf := r.venues[venue]
	if vf.Withdrawal == nil {
		vf.Withdrawal = make(map[string]float64, len(fees))
	}
	n := 0
	for sym, fee := range fees {
		if !valid(fee) {
			continue
		}
		vf.Withdrawal[strings.ToUpper(sym)] = fee
		n++
	}
	r.venues[venue] = vf
	return n
}

func lookup(table map[string]float64, symbol string) (float64, bool) {
	if table == nil {
		return 0, false
	}
	fee, ok := table[symbol]
	if !ok {
		for k, v := range table {
			if strings.EqualFold(k, symbol) {
				fee, ok = v, true
				break
			}
		}
	}
	if !ok || !valid(fee) {
		return 0, false
	}
	return fee, true
}

func valid(f float64) bool {
	return f >= 0 && !math.IsInf(f, 0) && !math.IsNaN(f)
}

func copyVenue(vf VenueFees) VenueFees {
	out := VenueFees{}
	if vf.TradingFee != nil {
		f := *vf.TradingFee
		out.TradingFee = &f
	}
	if vf.Withdrawal != nil {
		out.Withdrawal = make(map[string]float64, len(vf.Withdrawal))
		for k, v := range vf.Withdrawal {
			out.Withdrawal[strings.ToUpper(k)] = v
		}
	}
	return out
}
