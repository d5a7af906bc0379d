package domain

import (
	"math"
	"testing"
	"time"
)

func TestNewCosts(t *testing.T) {
	tests := []struct {
		name               string
		buy, wd, gas, sell float64
		wantTotal          float64
	}{
		{name: "all items", buy: 0.1, wd: 0.02, gas: 0.5, sell: 0.0485, wantTotal: 0.6685},
		{name: "gas only", gas: 17, wantTotal: 17},
		{name: "zero", wantTotal: 0},
		{name: "large notional", buy: 34, wd: 1.2, gas: 68, sell: 33.9, wantTotal: 137.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCosts(tt.buy, tt.wd, tt.gas, tt.sell)
			if math.Abs(c.Total-tt.wantTotal) > 1e-9 {
				t.Errorf("Total = %v, want %v", c.Total, tt.wantTotal)
			}
			if math.Abs(c.Total-c.Sum()) > 1e-12 {
				t.Errorf("Total %v != Sum %v", c.Total, c.Sum())
			}
		})
	}
}

func TestBest(t *testing.T) {
	now := time.Now()
	results := []Result{
		{DEXVenue: "a", PnL: 1.5, Timestamp: now},
		{DEXVenue: "b", PnL: 9, Error: "no DEX quote", Timestamp: now},
		{DEXVenue: "c", PnL: 2.5, Timestamp: now},
		{DEXVenue: "d", PnL: -4, Timestamp: now},
	}

	best, ok := Best(results)
	if !ok || best.DEXVenue != "c" {
		t.Errorf("Best = %+v, %v; want venue c", best, ok)
	}
	if _, ok := Best([]Result{{Error: "x"}}); ok {
		t.Error("Best of only failed results should report false")
	}
	if !results[0].Profitable() || results[1].Profitable() || results[3].Profitable() {
		t.Error("Profitable mismatch")
	}
}

func TestDirection(t *testing.T) {
	tests := []struct {
		in   string
		want Direction
		ok   bool
	}{
		{"cex_to_dex", DirectionCEXToDEX, true},
		{"DEX_TO_CEX", DirectionDEXToCEX, true},
		{"sideways", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseDirection(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseDirection(%q) = %v, %v", tt.in, got, ok)
		}
	}
	if DirectionDEXToCEX.Key() != "dex_to_cex" {
		t.Errorf("Key = %s", DirectionDEXToCEX.Key())
	}
}
