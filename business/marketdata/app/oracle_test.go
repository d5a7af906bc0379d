package app

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fd1az/quote-engine/business/marketdata/domain"
	"github.com/fd1az/quote-engine/internal/config"
	"github.com/fd1az/quote-engine/internal/logger"
)

type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, args ...any)              {}
func (m *mockLogger) Info(ctx context.Context, msg string, args ...any)               {}
func (m *mockLogger) Warn(ctx context.Context, msg string, args ...any)               {}
func (m *mockLogger) Error(ctx context.Context, msg string, args ...any)              {}
func (m *mockLogger) Debugc(ctx context.Context, caller int, msg string, args ...any) {}
func (m *mockLogger) Infoc(ctx context.Context, caller int, msg string, args ...any)  {}
func (m *mockLogger) Warnc(ctx context.Context, caller int, msg string, args ...any)  {}
func (m *mockLogger) Errorc(ctx context.Context, caller int, msg string, args ...any) {}

var _ logger.LoggerInterface = (*mockLogger)(nil)

type countingGas struct {
	calls int32
	gwei  float64
	err   error
	delay time.Duration
}

func (g *countingGas) SuggestGwei(ctx context.Context, chain string) (float64, error) {
	atomic.AddInt32(&g.calls, 1)
	time.Sleep(g.delay)
	return g.gwei, g.err
}

type fakePrices map[string]float64

func (p fakePrices) BestBid(_ context.Context, venue, symbol string) (float64, bool) {
	px, ok := p[symbol]
	return px, ok
}

type fakeFx struct {
	name  string
	rate  float64
	err   error
	calls int32
}

func (f *fakeFx) Name() string { return f.name }

func (f *fakeFx) Rate(ctx context.Context, fiat string) (float64, error) {
	atomic.AddInt32(&f.calls, 1)
	return f.rate, f.err
}

func testChains() map[string]config.ChainConfig {
	return map[string]config.ChainConfig{
		"ethereum": {ChainID: 1, RPCURL: "http://rpc.invalid", NativeSymbol: "ETH", GasLimit: 250000, FallbackGwei: 30, FallbackNativeUSD: 3000},
		"solana":   {NativeSymbol: "SOL", GasLimit: 5000, FallbackGwei: 1, FallbackNativeUSD: 150},
	}
}

func testMarketData() config.MarketDataConfig {
	return config.MarketDataConfig{
		PriceVenue: "binance",
		CacheTTL:   time.Minute,
		FX:         config.FXConfig{Fiat: "IDR", FallbackRate: 16000},
	}
}

func TestOracle_GetGasData_CachesPerChain(t *testing.T) {
	gas := &countingGas{gwei: 20, delay: 10 * time.Millisecond}
	o := NewOracle(testChains(), testMarketData(), gas, fakePrices{"ETH": 2500}, nil, &mockLogger{})
	defer o.Close()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			o.GetGasData(context.Background(), []string{"ethereum"})
		}()
	}
	wg.Wait()

	got := o.GetGasData(context.Background(), []string{"ethereum", "ETHEREUM"})
	if n := atomic.LoadInt32(&gas.calls); n != 1 {
		t.Errorf("gas source calls = %d, want 1", n)
	}
	if len(got) != 1 {
		t.Fatalf("entries = %d, want 1", len(got))
	}

	g := got["ethereum"]
	if g.GweiPrice != 20 || g.NativeUSD != 2500 || g.GasLimit != 250000 {
		t.Errorf("gas data = %+v", g)
	}
	if g.GasSource != domain.SourceLive || g.NativeSource != domain.SourceLive {
		t.Errorf("sources = %s/%s, want live/live", g.GasSource, g.NativeSource)
	}
}

func TestOracle_GetGasData_Fallbacks(t *testing.T) {
	gas := &countingGas{err: errors.New("rpc down")}
	o := NewOracle(testChains(), testMarketData(), gas, fakePrices{"SOL": 140}, nil, &mockLogger{})
	defer o.Close()

	got := o.GetGasData(context.Background(), []string{"ethereum", "solana"})

	eth := got["ethereum"]
	if eth.GweiPrice != 30 || eth.NativeUSD != 3000 {
		t.Errorf("ethereum = %+v, want fallback 30 gwei / 3000 usd", eth)
	}
	if eth.GasSource != domain.SourceFallback || eth.NativeSource != domain.SourceFallback {
		t.Errorf("ethereum sources = %s/%s", eth.GasSource, eth.NativeSource)
	}

	sol := got["solana"]
	if sol.GweiPrice != 1 || sol.NativeUSD != 140 || sol.GasLimit != 5000 {
		t.Errorf("solana = %+v", sol)
	}

	// Fallback values are cached too.
	o.GetGasData(context.Background(), []string{"ethereum"})
	if n := atomic.LoadInt32(&gas.calls); n != 1 {
		t.Errorf("gas source calls = %d, want 1 (solana never queried)", n)
	}
}

func TestOracle_GetStableFxRate(t *testing.T) {
	tests := []struct {
		name       string
		primary    *fakeFx
		secondary  *fakeFx
		want       float64
		wantSource string
		wantSecond int32
	}{
		{
			name:       "primary serves",
			primary:    &fakeFx{name: "er-api", rate: 16250},
			secondary:  &fakeFx{name: "yahoo", rate: 16300},
			want:       16250,
			wantSource: "er-api",
		},
		{
			name:       "primary error falls to secondary",
			primary:    &fakeFx{name: "er-api", err: errors.New("timeout")},
			secondary:  &fakeFx{name: "yahoo", rate: 16300},
			want:       16300,
			wantSource: "yahoo",
			wantSecond: 1,
		},
		{
			name:       "non-positive primary falls to secondary",
			primary:    &fakeFx{name: "er-api", rate: 0},
			secondary:  &fakeFx{name: "yahoo", rate: 16300},
			want:       16300,
			wantSource: "yahoo",
			wantSecond: 1,
		},
		{
			name:       "both fail uses constant",
			primary:    &fakeFx{name: "er-api", err: errors.New("down")},
			secondary:  &fakeFx{name: "yahoo", rate: -1},
			want:       16000,
			wantSource: string(domain.SourceFallback),
			wantSecond: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := NewOracle(testChains(), testMarketData(), nil, nil, []FxSource{tt.primary, tt.secondary}, &mockLogger{})
			defer o.Close()

			r := o.FxRate(context.Background())
			if r.Rate != tt.want || r.Source != tt.wantSource {
				t.Errorf("rate = %+v, want %v from %s", r, tt.want, tt.wantSource)
			}
			if got := o.GetStableFxRate(context.Background()); got != tt.want {
				t.Errorf("cached rate = %v, want %v", got, tt.want)
			}
			if n := atomic.LoadInt32(&tt.primary.calls); n != 1 {
				t.Errorf("primary calls = %d, want 1", n)
			}
			if n := atomic.LoadInt32(&tt.secondary.calls); n != tt.wantSecond {
				t.Errorf("secondary calls = %d, want %d", n, tt.wantSecond)
			}
			if !o.Cached(context.Background()) {
				t.Error("fx rate not cached")
			}
		})
	}
}
