// Package ethereum reads gas prices from EVM JSON-RPC nodes.
package ethereum

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/ethclient"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/quote-engine/business/marketdata/app"
	"github.com/fd1az/quote-engine/business/marketdata/domain"
	"github.com/fd1az/quote-engine/internal/apperror"
	"github.com/fd1az/quote-engine/internal/circuitbreaker"
	"github.com/fd1az/quote-engine/internal/config"
	"github.com/fd1az/quote-engine/internal/delay"
	"github.com/fd1az/quote-engine/internal/logger"
)

const (
	tracerName = "marketdata.gas"
	meterName  = "marketdata.gas"
)

// 500 gwei
var maxGasPriceWei = big.NewInt(500_000_000_000)

// Ensure GasSource implements GasPriceSource.
var _ app.GasPriceSource = (*GasSource)(nil)

type gasSourceMetrics struct {
	gasPriceFetches metric.Int64Counter
	gasPriceGwei    metric.Float64Gauge
}

type chainClient struct {
	client *ethclient.Client
	cb     *circuitbreaker.CircuitBreaker[*big.Int]
}

// GasSource suggests gas prices for every configured EVM chain. Clients are
// dialed on first use and kept for the process lifetime.
type GasSource struct {
	chains map[string]config.ChainConfig
	policy *delay.Policy
	logger logger.LoggerInterface

	mu      sync.Mutex
	clients map[string]*chainClient

	tracer  trace.Tracer
	metrics *gasSourceMetrics
}

// NewGasSource creates a gas source over the configured chains. Each RPC call
// is bounded by the policy timeout.
func NewGasSource(chains map[string]config.ChainConfig, policy *delay.Policy, log logger.LoggerInterface) (*GasSource, error) {
	g := &GasSource{
		chains:  chains,
		policy:  policy,
		logger:  log,
		clients: make(map[string]*chainClient),
		tracer:  otel.Tracer(tracerName),
	}
	if err := g.initMetrics(); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *GasSource) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	g.metrics = &gasSourceMetrics{}

	g.metrics.gasPriceFetches, err = meter.Int64Counter(
		"gas_price_fetches_total",
		metric.WithDescription("Total gas price fetch attempts"),
		metric.WithUnit("{fetch}"),
	)
	if err != nil {
		return err
	}

	g.metrics.gasPriceGwei, err = meter.Float64Gauge(
		"gas_price_gwei",
		metric.WithDescription("Current gas price in gwei"),
		metric.WithUnit("gwei"),
	)
	return err
}

// SuggestGwei returns the node's suggested gas price for chain.
func (g *GasSource) SuggestGwei(ctx context.Context, chain string) (float64, error) {
	chain = strings.ToLower(chain)

	ctx, span := g.tracer.Start(ctx, "gas.suggest",
		trace.WithAttributes(attribute.String("chain", chain)))
	defer span.End()

	cc, err := g.client(ctx, chain)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "dial failed")
		g.record(ctx, chain, "dial_error")
		return 0, err
	}

	callCtx, cancel := context.WithTimeout(ctx, g.policy.Timeout())
	defer cancel()

	wei, err := cc.cb.Execute(func() (*big.Int, error) {
		return cc.client.SuggestGasPrice(callCtx)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		g.record(ctx, chain, "error")
		if apperror.GetCode(err) == apperror.CodeCircuitOpen {
			return 0, err
		}
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return 0, apperror.Network(apperror.CodeServiceTimeout, "gas "+chain, err)
		}
		return 0, apperror.Network(apperror.CodeGasPriceFailed, chain, err)
	}

	if wei.Cmp(maxGasPriceWei) > 0 {
		g.logger.Warn(ctx, "gas price exceeds max", "chain", chain, "wei", wei.String())
		wei = maxGasPriceWei
	}

	gwei := domain.WeiToGwei(wei)
	g.record(ctx, chain, "ok")
	g.metrics.gasPriceGwei.Record(ctx, gwei, metric.WithAttributes(attribute.String("chain", chain)))

	span.SetAttributes(attribute.Float64("gwei", gwei))
	span.SetStatus(codes.Ok, "fetched")
	return gwei, nil
}

func (g *GasSource) record(ctx context.Context, chain, outcome string) {
	g.metrics.gasPriceFetches.Add(ctx, 1, metric.WithAttributes(
		attribute.String("chain", chain),
		attribute.String("outcome", outcome),
	))
}

func (g *GasSource) client(ctx context.Context, chain string) (*chainClient, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if cc, ok := g.clients[chain]; ok {
		return cc, nil
	}

	cfg, ok := g.chains[chain]
	if !ok || cfg.RPCURL == "" {
		return nil, apperror.Config(apperror.CodeVenueNotConfigured, "chains."+chain+".rpc_url")
	}

	client, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, apperror.Network(apperror.CodeEthereumRPCError, "dial "+chain, err)
	}

	cc := &chainClient{
		client: client,
		cb:     circuitbreaker.New[*big.Int](circuitbreaker.DefaultConfig("gas-" + chain)),
	}
	g.clients[chain] = cc
	g.logger.Info(ctx, "gas source connected", "chain", chain)
	return cc, nil
}

// Close closes every dialed client.
func (g *GasSource) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	for chain, cc := range g.clients {
		cc.client.Close()
		delete(g.clients, chain)
	}
	return nil
}
