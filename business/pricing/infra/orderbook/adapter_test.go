package orderbook

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/fd1az/quote-engine/internal/config"
	"github.com/fd1az/quote-engine/internal/delay"
	"github.com/fd1az/quote-engine/internal/httpclient"
	"github.com/fd1az/quote-engine/internal/logger"
)

// mockLogger implements logger.LoggerInterface for testing.
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

func newTestAdapter(t *testing.T, venues map[string]config.CEXVenueConfig) *Adapter {
	t.Helper()

	client, err := httpclient.NewInstrumentedClient(httpclient.WithProviderName("test"))
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	timeout := 2000.0
	zero := map[string]float64{}
	for name := range venues {
		zero[name] = 0
	}
	policy := delay.New(config.DelayTable{CEX: zero, Timeout: &timeout}, nil)

	a, err := NewAdapter(config.CEXConfig{
		StableSymbols: []string{"USDT", "USDC"},
		DepthLimit:    10,
		Venues:        venues,
	}, client, policy, &mockLogger{})
	if err != nil {
		t.Fatalf("failed to create adapter: %v", err)
	}
	return a
}

func serve(t *testing.T, status int, body string) (*httptest.Server, *int32) {
	t.Helper()
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestAdapter_Profiles(t *testing.T) {
	tests := []struct {
		name    string
		venue   string
		profile string
		body    string
		bid     float64
		ask     float64
	}{
		{
			name:  "standard string levels",
			venue: "binance",
			body:  `{"lastUpdateId":1,"bids":[["1.97","10"],["1.98","5"]],"asks":[["2.01","3"],["2.00","4"]]}`,
			bid:   1.98,
			ask:   2.00,
		},
		{
			name:  "nested data object",
			venue: "kucoin",
			body:  `{"code":"200000","data":{"bids":[["3400.5","1"]],"asks":[["3401","2"]]}}`,
			bid:   3400.5,
			ask:   3401,
		},
		{
			name:  "nested data array",
			venue: "okx",
			body:  `{"code":"0","data":[{"bids":[["99","1","0","1"]],"asks":[["100","1","0","1"]]}]}`,
			bid:   99,
			ask:   100,
		},
		{
			name:  "nested tick",
			venue: "htx",
			body:  `{"status":"ok","tick":{"bids":[[10.5,2]],"asks":[[10.6,1]]}}`,
			bid:   10.5,
			ask:   10.6,
		},
		{
			name:  "result short keys",
			venue: "bybit",
			body:  `{"retCode":0,"result":{"s":"ETHUSDT","b":[["2500","1"]],"a":[["2501","1"]]}}`,
			bid:   2500,
			ask:   2501,
		},
		{
			name:  "legacy buy sell tuples",
			venue: "indodax",
			body:  `{"buy":[[16000,"0.5"]],"sell":[[16100,"0.2"]]}`,
			bid:   16000,
			ask:   16100,
		},
		{
			name:    "legacy object levels with configured profile",
			venue:   "custom",
			profile: "dual_field_legacy",
			body:    `{"bids":[{"price":"5","amount":"1"}],"asks":[{"price":"6","size":2}]}`,
			bid:     5,
			ask:     6,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := serve(t, http.StatusOK, tt.body)
			a := newTestAdapter(t, map[string]config.CEXVenueConfig{
				tt.venue: {OrderbookURL: srv.URL + "/depth?symbol={symbol}", Profile: tt.profile},
			})

			l := a.GetOrderbook(context.Background(), tt.venue, "ETH")
			if l == nil {
				t.Fatal("expected ladder, got nil")
			}
			if l.BestBid != tt.bid {
				t.Errorf("best bid = %v, want %v", l.BestBid, tt.bid)
			}
			if l.BestAsk != tt.ask {
				t.Errorf("best ask = %v, want %v", l.BestAsk, tt.ask)
			}
		})
	}
}

func TestAdapter_StableSymbolSkipsNetwork(t *testing.T) {
	srv, hits := serve(t, http.StatusOK, `{"bids":[],"asks":[]}`)
	a := newTestAdapter(t, map[string]config.CEXVenueConfig{
		"binance": {OrderbookURL: srv.URL + "?symbol={symbol}"},
	})

	for _, sym := range []string{"USDT", "usdc"} {
		l := a.GetOrderbook(context.Background(), "binance", sym)
		if l == nil || l.BestBid != 1 || l.BestAsk != 1 || !l.Synthetic {
			t.Errorf("%s: expected synthetic ladder at 1, got %+v", sym, l)
		}
	}
	if n := atomic.LoadInt32(hits); n != 0 {
		t.Errorf("expected no network calls, got %d", n)
	}
}

func TestAdapter_FailuresReturnNil(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		venue  string
	}{
		{name: "http error", status: http.StatusInternalServerError, body: `{"msg":"boom"}`, venue: "binance"},
		{name: "malformed json", status: http.StatusOK, body: `{"bids":[[`, venue: "binance"},
		{name: "missing sides", status: http.StatusOK, body: `{"foo":1}`, venue: "binance"},
		{name: "empty data envelope", status: http.StatusOK, body: `{"code":"51001","data":[]}`, venue: "okx"},
		{name: "vendor ret code", status: http.StatusOK, body: `{"retCode":10001,"retMsg":"bad symbol"}`, venue: "bybit"},
		{name: "non numeric level", status: http.StatusOK, body: `{"bids":[["abc","1"]],"asks":[]}`, venue: "binance"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := serve(t, tt.status, tt.body)
			a := newTestAdapter(t, map[string]config.CEXVenueConfig{
				tt.venue: {OrderbookURL: srv.URL + "?symbol={symbol}"},
			})
			if l := a.GetOrderbook(context.Background(), tt.venue, "ETH"); l != nil {
				t.Errorf("expected nil ladder, got %+v", l)
			}
		})
	}
}

func TestAdapter_UnconfiguredVenue(t *testing.T) {
	a := newTestAdapter(t, map[string]config.CEXVenueConfig{"binance": {}})

	if l := a.GetOrderbook(context.Background(), "binance", "ETH"); l != nil {
		t.Error("expected nil for empty template")
	}
	if l := a.GetOrderbook(context.Background(), "nowhere", "ETH"); l != nil {
		t.Error("expected nil for unknown venue")
	}
}

func TestAdapter_RendersVenueSymbol(t *testing.T) {
	var gotSymbol, gotLimit string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSymbol = r.URL.Query().Get("instId")
		gotLimit = r.URL.Query().Get("sz")
		w.Write([]byte(`{"data":[{"bids":[["1","1"]],"asks":[["2","1"]]}]}`))
	}))
	defer srv.Close()

	a := newTestAdapter(t, map[string]config.CEXVenueConfig{
		"okx": {OrderbookURL: srv.URL + "/books?instId={symbol}&sz={limit}", SymbolFormat: "{BASE}-{QUOTE}"},
	})

	if l := a.GetOrderbook(context.Background(), "OKX", "eth"); l == nil {
		t.Fatal("expected ladder")
	}
	if gotSymbol != "ETH-USDT" {
		t.Errorf("symbol = %q, want ETH-USDT", gotSymbol)
	}
	if gotLimit != "10" {
		t.Errorf("limit = %q, want 10", gotLimit)
	}
}

func TestFormatMarket(t *testing.T) {
	tests := []struct {
		format string
		want   string
	}{
		{format: "{BASE}{QUOTE}", want: "ETHUSDT"},
		{format: "{BASE}_{QUOTE}", want: "ETH_USDT"},
		{format: "{base}{quote}", want: "ethusdt"},
		{format: "{base}_{quote}", want: "eth_usdt"},
	}
	for _, tt := range tests {
		if got := FormatMarket(tt.format, "eth", "USDT"); got != tt.want {
			t.Errorf("FormatMarket(%q) = %q, want %q", tt.format, got, tt.want)
		}
	}
}

func TestResolveProfile(t *testing.T) {
	tests := []struct {
		name       string
		venue      string
		configured string
		want       Profile
	}{
		{name: "configured wins", venue: "binance", configured: "nested_data", want: ProfileNestedData},
		{name: "venue table", venue: "Bybit", want: ProfileResultShortKeys},
		{name: "unknown venue", venue: "newdex", want: ProfileStandard},
		{name: "bad configured value", venue: "indodax", configured: "weird", want: ProfileDualFieldLegacy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveProfile(tt.venue, tt.configured); got != tt.want {
				t.Errorf("ResolveProfile = %q, want %q", got, tt.want)
			}
		})
	}
}
