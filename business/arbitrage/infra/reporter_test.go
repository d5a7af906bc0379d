package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/fd1az/quote-engine/business/arbitrage/app"
	"github.com/fd1az/quote-engine/business/arbitrage/domain"
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

func sampleResult() domain.Result {
	return domain.Result{
		ID:        "r-1",
		Direction: domain.DirectionCEXToDEX,
		Token:     "ETH",
		Chain:     "ethereum",
		CEXVenue:  "binance",
		DEXVenue:  "1inch",
		Modal:     100,
		Result:    149.33,
		PnL:       49.33,
		Timestamp: time.Unix(1700000000, 0).UTC(),
	}
}

func TestRedisReporter_Publish(t *testing.T) {
	mr := miniredis.RunT(t)

	r := NewRedisReporter(config.RedisConfig{Addr: mr.Addr(), Stream: "results", MaxLen: 100}, &mockLogger{})
	defer r.Stop()

	ctx := context.Background()
	if err := r.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	res := sampleResult()
	r.Handle(ctx, app.Event{Kind: app.EventDEXResult, ScanID: "scan-1", Result: &res})
	r.Handle(ctx, app.Event{Kind: app.EventTokenStarted, Token: "ETH"})
	r.Handle(ctx, app.Event{Kind: app.EventScanCompleted, ScanID: "scan-1", Evaluated: 1})

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	msgs, err := rdb.XRange(ctx, "results", "-", "+").Result()
	if err != nil {
		t.Fatalf("XRange() error = %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("stream length = %d, want 2", len(msgs))
	}

	first := msgs[0].Values
	if first["kind"] != string(app.EventDEXResult) || first["scan_id"] != "scan-1" {
		t.Errorf("first entry = %v", first)
	}
	if first["profitable"] != "true" {
		t.Errorf("profitable = %v, want true", first["profitable"])
	}

	var decoded domain.Result
	if err := json.Unmarshal([]byte(first["result"].(string)), &decoded); err != nil {
		t.Fatalf("result payload: %v", err)
	}
	if decoded.ID != "r-1" || decoded.PnL != 49.33 {
		t.Errorf("decoded = %+v", decoded)
	}

	if msgs[1].Values["kind"] != string(app.EventScanCompleted) {
		t.Errorf("second entry kind = %v", msgs[1].Values["kind"])
	}
}

func TestRedisReporter_DefaultStream(t *testing.T) {
	mr := miniredis.RunT(t)

	r := NewRedisReporter(config.RedisConfig{Addr: mr.Addr()}, &mockLogger{})
	defer r.Stop()

	if err := r.Publish(context.Background(), "scan", sampleResult()); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if !mr.Exists(defaultStream) {
		t.Errorf("stream %s not created", defaultStream)
	}
}

func TestRedisReporter_StartUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	r := NewRedisReporter(config.RedisConfig{Addr: addr}, &mockLogger{})
	defer r.Stop()

	if err := r.Start(context.Background()); err == nil {
		t.Fatal("expected error for unreachable redis")
	}
}

func TestConsoleReporter_Handle(t *testing.T) {
	res := sampleResult()
	failed := sampleResult()
	failed.DEXVenue = "kyberswap"
	failed.Error = "missing CEX ask"
	failed.PnL = 0

	tests := []struct {
		name     string
		ev       app.Event
		contains []string
	}{
		{
			name:     "token started",
			ev:       app.Event{Kind: app.EventTokenStarted, Token: "ETH"},
			contains: []string{"ETH"},
		},
		{
			name: "cex snapshot",
			ev: app.Event{Kind: app.EventCEXResult, CEX: &app.CEXSnapshot{
				Venue: "binance", Token: "ETH", Pair: "USDT", TokenBid: 2000, TokenAsk: 2001,
				TokenMid: 2000.5, TokenSpreadBps: 4.998,
			}},
			contains: []string{"binance", "2000", "2001", "USDT", "-", "spread 5.0bps"},
		},
		{
			name:     "dex result",
			ev:       app.Event{Kind: app.EventDEXResult, Result: &res},
			contains: []string{"cex_to_dex", "1inch", "+49.3300"},
		},
		{
			name:     "failed result",
			ev:       app.Event{Kind: app.EventDEXResult, Result: &failed},
			contains: []string{"kyberswap", "missing CEX ask"},
		},
		{
			name:     "scan completed",
			ev:       app.Event{Kind: app.EventScanCompleted, ScanID: "scan-9", Evaluated: 3},
			contains: []string{"scan-9", "3 tokens"},
		},
		{
			name:     "error",
			ev:       app.Event{Kind: app.EventError, Token: "BAD", Err: errors.New("boom")},
			contains: []string{"BAD", "boom"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			r := NewConsoleReporter(&buf)
			r.Handle(context.Background(), tt.ev)

			out := buf.String()
			for _, want := range tt.contains {
				if !strings.Contains(out, want) {
					t.Errorf("output %q missing %q", out, want)
				}
			}
		})
	}
}

func TestConsoleReporter_OnlyProfitable(t *testing.T) {
	losing := sampleResult()
	losing.PnL = -1

	var buf bytes.Buffer
	r := NewConsoleReporter(&buf)
	r.OnlyProfitable = true
	r.Handle(context.Background(), app.Event{Kind: app.EventDEXResult, Result: &losing})

	if buf.Len() != 0 {
		t.Errorf("expected losing result to be hidden, got %q", buf.String())
	}
}
