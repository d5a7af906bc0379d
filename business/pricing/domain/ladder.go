// Package domain contains the order-book ladder used by every CEX adapter.
package domain

import (
	"math"
	"sort"
	"time"
)

// StableDepth is the quantity carried by a synthetic stable ladder.
const StableDepth = 1e12

// Level is one price level of a ladder.
type Level struct {
	Price    float64
	Quantity float64
}

// Ladder is a normalized order book. Bids are sorted descending and asks
// ascending, so index 0 is always the best level.
type Ladder struct {
	Venue     string
	Symbol    string
	BestBid   float64
	BestAsk   float64
	Bids      []Level
	Asks      []Level
	Synthetic bool
	FetchedAt time.Time
}

// NewLadder drops non-finite or non-positive levels and sorts both sides.
func NewLadder(venue, symbol string, bids, asks []Level) *Ladder {
	l := &Ladder{
		Venue:     venue,
		Symbol:    symbol,
		Bids:      clean(bids),
		Asks:      clean(asks),
		FetchedAt: time.Now(),
	}

	sort.SliceStable(l.Bids, func(i, j int) bool { return l.Bids[i].Price > l.Bids[j].Price })
	sort.SliceStable(l.Asks, func(i, j int) bool { return l.Asks[i].Price < l.Asks[j].Price })

	if len(l.Bids) > 0 {
		l.BestBid = l.Bids[0].Price
	}
	if len(l.Asks) > 0 {
		l.BestAsk = l.Asks[0].Price
	}
	return l
}

// StableLadder is the ladder of a stable quote asset priced in itself.
func StableLadder(venue, symbol string) *Ladder {
	level := []Level{{Price: 1, Quantity: StableDepth}}
	l := NewLadder(venue, symbol, level, level)
	l.Synthetic = true
	return l
}

// Empty reports whether both sides are empty.
func (l *Ladder) Empty() bool {
	return len(l.Bids) == 0 && len(l.Asks) == 0
}

// MidPrice returns the midpoint of the best levels, or 0 if a side is empty.
func (l *Ladder) MidPrice() float64 {
	if l.BestBid <= 0 || l.BestAsk <= 0 {
		return 0
	}
	return (l.BestBid + l.BestAsk) / 2
}

// SpreadBps returns the bid/ask spread in basis points of the mid price.
func (l *Ladder) SpreadBps() float64 {
	mid := l.MidPrice()
	if mid == 0 {
		return 0
	}
	return (l.BestAsk - l.BestBid) / mid * 10000
}

func clean(levels []Level) []Level {
	out := make([]Level, 0, len(levels))
	for _, lv := range levels {
		if !positiveFinite(lv.Price) || !positiveFinite(lv.Quantity) {
			continue
		}
		out = append(out, lv)
	}
	return out
}

func positiveFinite(f float64) bool {
	return f > 0 && !math.IsInf(f, 0) && !math.IsNaN(f)
}
