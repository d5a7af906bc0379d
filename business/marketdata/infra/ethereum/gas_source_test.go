package ethereum

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fd1az/quote-engine/business/marketdata/app"
	"github.com/fd1az/quote-engine/business/marketdata/domain"
	"github.com/fd1az/quote-engine/internal/apperror"
	"github.com/fd1az/quote-engine/internal/config"
	"github.com/fd1az/quote-engine/internal/delay"
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

func testPolicy(timeoutMs float64) *delay.Policy {
	return delay.New(config.DelayTable{Timeout: &timeoutMs}, nil)
}

// hangingServer holds every request until the client gives up or release closes.
func hangingServer(release <-chan struct{}) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
}

// rpcServer answers eth_gasPrice with result.
func rpcServer(t *testing.T, result string, calls *int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		var req struct {
			ID     json.RawMessage `json:"id"`
			Method string          `json:"method"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
			return
		}
		if req.Method != "eth_gasPrice" {
			t.Errorf("method = %s, want eth_gasPrice", req.Method)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result":  result,
		})
	}))
}

func TestGasSource_SuggestGwei(t *testing.T) {
	tests := []struct {
		name   string
		result string
		want   float64
	}{
		{name: "20 gwei", result: "0x4a817c800", want: 20},
		{name: "fractional", result: "0x59682f00", want: 1.5},
		{name: "capped at max", result: "0x2540be40000", want: 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			srv := rpcServer(t, tt.result, &calls)
			defer srv.Close()

			g, err := NewGasSource(map[string]config.ChainConfig{
				"ethereum": {ChainID: 1, RPCURL: srv.URL, GasLimit: 250000},
			}, testPolicy(10_000), &mockLogger{})
			if err != nil {
				t.Fatalf("NewGasSource: %v", err)
			}
			defer g.Close()

			got, err := g.SuggestGwei(context.Background(), "Ethereum")
			if err != nil {
				t.Fatalf("SuggestGwei: %v", err)
			}
			if got != tt.want {
				t.Errorf("gwei = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGasSource_ReusesClient(t *testing.T) {
	var calls int32
	srv := rpcServer(t, "0x4a817c800", &calls)
	defer srv.Close()

	g, err := NewGasSource(map[string]config.ChainConfig{
		"base": {ChainID: 8453, RPCURL: srv.URL, GasLimit: 250000},
	}, testPolicy(10_000), &mockLogger{})
	if err != nil {
		t.Fatalf("NewGasSource: %v", err)
	}
	defer g.Close()

	for i := 0; i < 3; i++ {
		if _, err := g.SuggestGwei(context.Background(), "base"); err != nil {
			t.Fatalf("SuggestGwei: %v", err)
		}
	}
	if len(g.clients) != 1 {
		t.Errorf("clients = %d, want 1", len(g.clients))
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("rpc calls = %d, want 3", got)
	}
}

func TestGasSource_UnconfiguredChain(t *testing.T) {
	g, err := NewGasSource(map[string]config.ChainConfig{
		"solana": {GasLimit: 5000},
	}, testPolicy(10_000), &mockLogger{})
	if err != nil {
		t.Fatalf("NewGasSource: %v", err)
	}

	for _, chain := range []string{"solana", "unknown"} {
		if _, err := g.SuggestGwei(context.Background(), chain); err == nil {
			t.Errorf("%s: expected error", chain)
		}
	}
}

func TestGasSource_TimesOutHungNode(t *testing.T) {
	release := make(chan struct{})
	srv := hangingServer(release)
	defer srv.Close()
	defer close(release)

	g, err := NewGasSource(map[string]config.ChainConfig{
		"ethereum": {ChainID: 1, RPCURL: srv.URL},
	}, testPolicy(50), &mockLogger{})
	if err != nil {
		t.Fatalf("NewGasSource: %v", err)
	}
	defer g.Close()

	start := time.Now()
	_, err = g.SuggestGwei(context.Background(), "ethereum")
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("SuggestGwei returned after %v, want ~50ms", elapsed)
	}
	if code := apperror.GetCode(err); code != apperror.CodeServiceTimeout {
		t.Errorf("code = %s, want %s", code, apperror.CodeServiceTimeout)
	}
	if kind := apperror.KindOf(err); kind != apperror.KindNetwork {
		t.Errorf("kind = %s, want %s", kind, apperror.KindNetwork)
	}
}

func TestOracle_FallsBackWhenNodeHangs(t *testing.T) {
	release := make(chan struct{})
	srv := hangingServer(release)
	defer srv.Close()
	defer close(release)

	chains := map[string]config.ChainConfig{
		"ethereum": {ChainID: 1, RPCURL: srv.URL, GasLimit: 250000, FallbackGwei: 7},
	}
	g, err := NewGasSource(chains, testPolicy(50), &mockLogger{})
	if err != nil {
		t.Fatalf("NewGasSource: %v", err)
	}
	defer g.Close()

	o := app.NewOracle(chains, config.MarketDataConfig{}, g, nil, nil, &mockLogger{})
	defer o.Close()

	start := time.Now()
	got := o.GetGasData(context.Background(), []string{"ethereum"})["ethereum"]
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("GetGasData returned after %v, want ~50ms", elapsed)
	}
	if got.GweiPrice != 7 || got.GasSource != domain.SourceFallback {
		t.Errorf("gas = %v (%s), want 7 (fallback)", got.GweiPrice, got.GasSource)
	}
}
