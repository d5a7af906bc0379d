package app

import (
	"context"
	"math/big"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/quote-engine/business/dex/domain"
	"github.com/fd1az/quote-engine/internal/apperror"
	"github.com/fd1az/quote-engine/internal/circuitbreaker"
	"github.com/fd1az/quote-engine/internal/config"
	"github.com/fd1az/quote-engine/internal/delay"
	"github.com/fd1az/quote-engine/internal/httpclient"
	"github.com/fd1az/quote-engine/internal/logger"
)

const (
	tracerName = "dex.quoter"
	meterName  = "dex.quoter"
)

// Config keys for the two quote directions.
const (
	DirectionCEXToDEX = "cex_to_dex"
	DirectionDEXToCEX = "dex_to_cex"
)

// QuoteRequest asks one DEX venue for a swap quote.
type QuoteRequest struct {
	Venue     string
	Direction string
	// Primary and Alternative override the venue configuration when set.
	Primary     string
	Alternative string

	Chain    string
	TokenIn  domain.Token
	TokenOut domain.Token
	AmountIn *big.Int
	Gas      domain.GasContext
}

type quoterMetrics struct {
	quotesTotal    metric.Int64Counter
	fallbacksTotal metric.Int64Counter
	latency        metric.Float64Histogram
}

// Quoter dispatches quote requests to vendor strategies.
type Quoter struct {
	cfg      *config.Config
	registry StrategyRegistry
	client   httpclient.Client
	policy   *delay.Policy
	logger   logger.LoggerInterface
	now      func() time.Time

	mu       sync.Mutex
	breakers map[string]*circuitbreaker.CircuitBreaker[[]byte]

	tracer  trace.Tracer
	metrics *quoterMetrics
}

// NewQuoter creates a Quoter.
func NewQuoter(cfg *config.Config, registry StrategyRegistry, client httpclient.Client, policy *delay.Policy, log logger.LoggerInterface) (*Quoter, error) {
	q := &Quoter{
		cfg:      cfg,
		registry: registry,
		client:   client,
		policy:   policy,
		logger:   log,
		now:      time.Now,
		breakers: make(map[string]*circuitbreaker.CircuitBreaker[[]byte]),
		tracer:   otel.Tracer(tracerName),
	}
	if err := q.initMetrics(); err != nil {
		return nil, err
	}
	return q, nil
}

func (q *Quoter) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	q.metrics = &quoterMetrics{}

	q.metrics.quotesTotal, err = meter.Int64Counter(
		"dex_quotes_total",
		metric.WithDescription("Quote attempts by strategy and outcome"),
	)
	if err != nil {
		return err
	}

	q.metrics.fallbacksTotal, err = meter.Int64Counter(
		"dex_quote_fallbacks_total",
		metric.WithDescription("Quotes retried on the alternative strategy"),
	)
	if err != nil {
		return err
	}

	q.metrics.latency, err = meter.Float64Histogram(
		"dex_quote_latency_ms",
		metric.WithDescription("Quote latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	return err
}

// GetQuote returns a quote or nil. Failures are logged, never returned.
func (q *Quoter) GetQuote(ctx context.Context, req QuoteRequest) *domain.Quote {
	quote, err := q.Quote(ctx, req)
	if err != nil {
		return nil
	}
	return quote
}

// Quote tries the primary strategy and then the alternative once. The error
// is the last failure, for callers that want to show a reason.
func (q *Quoter) Quote(ctx context.Context, req QuoteRequest) (*domain.Quote, error) {
	if req.AmountIn == nil || req.AmountIn.Sign() <= 0 {
		q.logger.Debug(ctx, "dex quote skipped: zero amount", "venue", req.Venue, "direction", req.Direction)
		return nil, apperror.New(apperror.CodeZeroAmount, apperror.WithContext(req.Venue))
	}

	primary, alternative := q.ResolveStrategies(req)

	quote, err := q.attempt(ctx, primary, req)
	if err == nil {
		return quote, nil
	}
	args := append([]any{"venue", req.Venue, "strategy", primary, "direction", req.Direction}, errAttrs(err)...)
	q.logger.Warn(ctx, "primary quote strategy failed", args...)

	if alternative == "" || alternative == primary {
		return nil, err
	}

	q.metrics.fallbacksTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("venue", req.Venue)))
	quote, err = q.attempt(ctx, alternative, req)
	if err != nil {
		args := append([]any{"venue", req.Venue, "strategy", alternative, "direction", req.Direction}, errAttrs(err)...)
		q.logger.Warn(ctx, "alternative quote strategy failed", args...)
		return nil, err
	}
	q.logger.Info(ctx, "quote served by alternative strategy", "venue", req.Venue, "strategy", alternative)
	return quote, nil
}

// ResolveStrategies picks the strategy keys: request override, then
// dex.venues.<venue>.<direction>, then the venue name itself.
func (q *Quoter) ResolveStrategies(req QuoteRequest) (primary, alternative string) {
	primary, alternative = strings.TrimSpace(req.Primary), strings.TrimSpace(req.Alternative)

	if vc, ok := q.cfg.DEX.Venues[strings.ToLower(req.Venue)]; ok {
		keys := vc.CEXToDEX
		if req.Direction == DirectionDEXToCEX {
			keys = vc.DEXToCEX
		}
		if primary == "" {
			primary = keys.Primary
		}
		if alternative == "" {
			alternative = keys.Alternative
		}
	}

	if primary == "" {
		primary = req.Venue
	}
	return primary, alternative
}

func (q *Quoter) attempt(ctx context.Context, name string, req QuoteRequest) (*domain.Quote, error) {
	strategy, ok := q.registry.Lookup(name)
	if !ok {
		return nil, apperror.Config(apperror.CodeStrategyNotFound, name)
	}

	ctx, span := q.tracer.Start(ctx, "dex.quote",
		trace.WithAttributes(
			attribute.String("venue", req.Venue),
			attribute.String("strategy", strategy.Name),
			attribute.String("chain", req.Chain),
		),
	)
	defer span.End()

	start := time.Now()
	quote, err := q.execute(ctx, strategy, req)
	q.metrics.latency.Record(ctx, float64(time.Since(start).Milliseconds()),
		metric.WithAttributes(attribute.String("strategy", strategy.Name)))

	outcome := "ok"
	if err != nil {
		outcome = string(apperror.KindOf(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetAttributes(attribute.Float64("amount_out", quote.AmountOut), attribute.Float64("gas_usd", quote.GasFeeUSD))
	}
	q.metrics.quotesTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("strategy", strategy.Name),
		attribute.String("outcome", outcome),
	))
	return quote, err
}

func (q *Quoter) execute(ctx context.Context, strategy domain.Strategy, req QuoteRequest) (*domain.Quote, error) {
	params := q.params(strategy.Name, req)

	built, err := strategy.Build(params)
	if err != nil {
		return nil, apperror.New(apperror.CodeQuoteBuildFailed, apperror.WithContext(strategy.Name), apperror.WithCause(err))
	}

	if err := q.policy.Await(ctx, delay.ScopeDEX, strategy.Name); err != nil {
		return nil, apperror.Network(apperror.CodeServiceTimeout, strategy.Name, err)
	}

	ctx, cancel := context.WithTimeout(ctx, q.policy.Timeout())
	defer cancel()

	body, err := q.breaker(strategy.Name).Execute(func() ([]byte, error) {
		r := q.client.NewRequestWithOptions(
			httpclient.WithLabels(
				httpclient.NewLabel("strategy", strategy.Name),
				httpclient.NewLabel("venue", req.Venue),
			),
			httpclient.WithURLPrefix(q.cfg.DEX.ProxyFor(strings.ToLower(req.Venue))),
			httpclient.WithHeadersLogConfig(true),
		).SetHeaders(built.Headers)
		if len(built.Body) > 0 {
			r = r.SetBody(built.Body)
		}
		resp, err := r.Send(ctx, built.Method, built.URL)
		if err != nil {
			return nil, err
		}
		return resp.Body(), nil
	})
	if err != nil {
		if apperror.GetCode(err) == apperror.CodeCircuitOpen {
			return nil, err
		}
		return nil, apperror.Network(apperror.CodeQuoteFetchFailed, strategy.Name, err)
	}

	quote, err := strategy.Parse(body, params)
	if err != nil {
		return nil, apperror.Parse(apperror.CodeInvalidQuote, strategy.Name, err)
	}
	if !quote.Valid() {
		return nil, apperror.New(apperror.CodeInvalidQuote, apperror.WithContext(strategy.Name+": zero amount out"))
	}
	return &quote, nil
}

// params assembles strategy input. Credentials are read per call.
func (q *Quoter) params(strategy string, req QuoteRequest) domain.Params {
	chain := q.cfg.Chains[strings.ToLower(req.Chain)]
	creds := q.cfg.DEX.Credentials[strategy]

	baseURL := q.cfg.DEX.Strategies[strategy].BaseURL

	return domain.Params{
		Chain: domain.Chain{
			Name:          strings.ToLower(req.Chain),
			ID:            chain.ChainID,
			KyberSlug:     chain.KyberSlug,
			OpenOceanSlug: chain.OpenOceanSlug,
			RPCURL:        chain.RPCURL,
			QuoterAddress: chain.QuoterAddress,
		},
		TokenIn:     req.TokenIn,
		TokenOut:    req.TokenOut,
		AmountIn:    req.AmountIn,
		UserAddress: q.cfg.DEX.UserAddress,
		SlippageBps: q.cfg.DEX.SlippageBps,
		Credentials: domain.Credentials{
			APIKey:     creds.APIKey,
			Secret:     creds.Secret,
			Passphrase: creds.Passphrase,
			ProjectID:  creds.ProjectID,
		},
		Gas:     req.Gas,
		BaseURL: baseURL,
		Now:     q.now,
	}
}

func (q *Quoter) breaker(strategy string) *circuitbreaker.CircuitBreaker[[]byte] {
	q.mu.Lock()
	defer q.mu.Unlock()

	cb, ok := q.breakers[strategy]
	if !ok {
		cfg := circuitbreaker.DefaultConfig("dex-" + strategy)
		// Vendor 4xx such as "no route" says nothing about vendor health.
		cfg.IsExcluded = httpclient.IsClientError
		cb = circuitbreaker.New[[]byte](cfg)
		q.breakers[strategy] = cb
	}
	return cb
}

func errAttrs(err error) []any {
	if ae, ok := err.(*apperror.AppError); ok {
		return []any{"code", string(ae.Code), "kind", string(ae.Kind()), "error", ae.Error()}
	}
	return []any{"error", err.Error()}
}
