// Package orderbook fetches CEX order books over REST and normalizes every
// vendor shape into a domain.Ladder.
package orderbook

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/quote-engine/business/pricing/app"
	"github.com/fd1az/quote-engine/business/pricing/domain"
	"github.com/fd1az/quote-engine/internal/apperror"
	"github.com/fd1az/quote-engine/internal/circuitbreaker"
	"github.com/fd1az/quote-engine/internal/config"
	"github.com/fd1az/quote-engine/internal/delay"
	"github.com/fd1az/quote-engine/internal/httpclient"
	"github.com/fd1az/quote-engine/internal/logger"
)

const (
	tracerName = "pricing.orderbook"
	meterName  = "pricing.orderbook"

	defaultSymbolFormat = "{BASE}{QUOTE}"
	payloadLogLimit     = 256
)

// Ensure Adapter implements OrderbookProvider.
var _ app.OrderbookProvider = (*Adapter)(nil)

type adapterMetrics struct {
	fetchTotal   metric.Int64Counter
	fetchLatency metric.Float64Histogram
}

// Adapter implements OrderbookProvider for every configured CEX venue.
type Adapter struct {
	cfg    config.CEXConfig
	client httpclient.Client
	policy *delay.Policy
	logger logger.LoggerInterface

	mu       sync.Mutex
	breakers map[string]*circuitbreaker.CircuitBreaker[[]byte]

	tracer  trace.Tracer
	metrics *adapterMetrics
}

// NewAdapter creates an order-book adapter.
func NewAdapter(cfg config.CEXConfig, client httpclient.Client, policy *delay.Policy, log logger.LoggerInterface) (*Adapter, error) {
	a := &Adapter{
		cfg:      cfg,
		client:   client,
		policy:   policy,
		logger:   log,
		breakers: make(map[string]*circuitbreaker.CircuitBreaker[[]byte]),
		tracer:   otel.Tracer(tracerName),
	}
	if err := a.initMetrics(); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Adapter) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	a.metrics = &adapterMetrics{}

	a.metrics.fetchTotal, err = meter.Int64Counter(
		"orderbook_fetch_total",
		metric.WithDescription("Order-book fetches by venue and outcome"),
	)
	if err != nil {
		return err
	}

	a.metrics.fetchLatency, err = meter.Float64Histogram(
		"orderbook_fetch_latency_ms",
		metric.WithDescription("Order-book fetch latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	return err
}

// GetOrderbook returns the ladder for symbol on venue, or nil when the venue
// is not configured, unreachable or returned an unreadable payload.
func (a *Adapter) GetOrderbook(ctx context.Context, venue, symbol string) *domain.Ladder {
	ladder, err := a.Fetch(ctx, venue, symbol)
	if err != nil {
		args := append([]any{"venue", venue, "symbol", symbol}, logAttrs(err)...)
		switch apperror.KindOf(err) {
		case apperror.KindConfig:
			a.logger.Debug(ctx, "orderbook unavailable", args...)
		default:
			a.logger.Warn(ctx, "orderbook fetch failed", args...)
		}
		return nil
	}
	return ladder
}

// Fetch is GetOrderbook with the failure reason.
func (a *Adapter) Fetch(ctx context.Context, venue, symbol string) (*domain.Ladder, error) {
	venue = strings.ToLower(strings.TrimSpace(venue))
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	if a.cfg.IsStable(symbol) {
		return domain.StableLadder(venue, symbol), nil
	}

	vc, ok := a.cfg.Venues[venue]
	if !ok || vc.OrderbookURL == "" {
		return nil, apperror.Config(apperror.CodeVenueNotConfigured, "cex.venues."+venue+".orderbook_url")
	}

	ctx, span := a.tracer.Start(ctx, "orderbook.fetch",
		trace.WithAttributes(
			attribute.String("venue", venue),
			attribute.String("symbol", symbol),
		),
	)
	defer span.End()

	start := time.Now()
	ladder, err := a.fetch(ctx, venue, symbol, vc)
	a.metrics.fetchLatency.Record(ctx, float64(time.Since(start).Milliseconds()),
		metric.WithAttributes(attribute.String("venue", venue)))

	outcome := "ok"
	if err != nil {
		outcome = string(apperror.KindOf(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetAttributes(
			attribute.Int("bids", len(ladder.Bids)),
			attribute.Int("asks", len(ladder.Asks)),
		)
	}
	a.metrics.fetchTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("venue", venue),
		attribute.String("outcome", outcome),
	))

	return ladder, err
}

func (a *Adapter) fetch(ctx context.Context, venue, symbol string, vc config.CEXVenueConfig) (*domain.Ladder, error) {
	url := a.renderURL(vc, symbol)

	if err := a.policy.Await(ctx, delay.ScopeCEX, venue); err != nil {
		return nil, apperror.Network(apperror.CodeServiceTimeout, venue+" "+symbol, err)
	}

	ctx, cancel := context.WithTimeout(ctx, a.policy.Timeout())
	defer cancel()

	body, err := a.breaker(venue).Execute(func() ([]byte, error) {
		resp, err := a.client.NewRequestWithOptions(
			httpclient.WithLabels(
				httpclient.NewLabel("venue", venue),
				httpclient.NewLabel("endpoint", "orderbook"),
			),
		).Get(ctx, url)
		if err != nil {
			return nil, err
		}
		return resp.Body(), nil
	})
	if err != nil {
		if apperror.GetCode(err) == apperror.CodeCircuitOpen {
			return nil, err
		}
		return nil, apperror.Network(apperror.CodeOrderbookFetchFailed, venue+" "+symbol, err)
	}

	profile := ResolveProfile(venue, vc.Profile)
	bids, asks, err := Parse(profile, body)
	if err != nil {
		return nil, apperror.Parse(apperror.CodeInvalidOrderbook, venue+" "+symbol+" profile="+string(profile)+" payload="+snippet(body), err)
	}

	return domain.NewLadder(venue, symbol, bids, asks), nil
}

// renderURL fills the venue URL template.
func (a *Adapter) renderURL(vc config.CEXVenueConfig, symbol string) string {
	quote := a.quoteAsset()
	format := vc.SymbolFormat
	if format == "" {
		format = defaultSymbolFormat
	}

	limit := a.cfg.DepthLimit
	if limit <= 0 {
		limit = 20
	}

	return strings.NewReplacer(
		"{symbol}", FormatMarket(format, symbol, quote),
		"{base}", strings.ToLower(symbol),
		"{quote}", strings.ToLower(quote),
		"{BASE}", symbol,
		"{QUOTE}", quote,
		"{limit}", strconv.Itoa(limit),
	).Replace(vc.OrderbookURL)
}

func (a *Adapter) quoteAsset() string {
	if len(a.cfg.StableSymbols) > 0 {
		return strings.ToUpper(a.cfg.StableSymbols[0])
	}
	return "USDT"
}

func (a *Adapter) breaker(venue string) *circuitbreaker.CircuitBreaker[[]byte] {
	a.mu.Lock()
	defer a.mu.Unlock()

	cb, ok := a.breakers[venue]
	if !ok {
		cb = circuitbreaker.New[[]byte](circuitbreaker.DefaultConfig("orderbook-" + venue))
		a.breakers[venue] = cb
	}
	return cb
}

// FormatMarket renders a venue market symbol such as "{BASE}-{QUOTE}".
func FormatMarket(format, base, quote string) string {
	return strings.NewReplacer(
		"{BASE}", strings.ToUpper(base),
		"{QUOTE}", strings.ToUpper(quote),
		"{base}", strings.ToLower(base),
		"{quote}", strings.ToLower(quote),
	).Replace(format)
}

func snippet(body []byte) string {
	if len(body) <= payloadLogLimit {
		return string(body)
	}
	return string(body[:payloadLogLimit]) + "..."
}

func logAttrs(err error) []any {
	if ae, ok := err.(*apperror.AppError); ok {
		return ae.LogAttrs()
	}
	return []any{"error", err}
}
