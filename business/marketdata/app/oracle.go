package app

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/fd1az/quote-engine/business/marketdata/domain"
	"github.com/fd1az/quote-engine/internal/cache"
	"github.com/fd1az/quote-engine/internal/config"
	"github.com/fd1az/quote-engine/internal/logger"
)

const defaultGasLimit = 250_000

// Oracle serves gas, native price and FX values behind a TTL cache. A miss
// triggers exactly one upstream fetch; concurrent misses share it.
type Oracle struct {
	chains map[string]config.ChainConfig
	md     config.MarketDataConfig
	gas    GasPriceSource
	prices PriceSource
	fx     []FxSource
	logger logger.LoggerInterface

	gasCache *cache.Cache[string, domain.GasData]
	fxCache  *cache.Cache[string, domain.FxRate]
	group    singleflight.Group
}

// NewOracle creates an Oracle. fx sources are tried in order.
func NewOracle(chains map[string]config.ChainConfig, md config.MarketDataConfig, gas GasPriceSource, prices PriceSource, fx []FxSource, log logger.LoggerInterface) *Oracle {
	ttl := md.CacheTTL
	if ttl <= 0 {
		ttl = 30 * time.Second
		md.CacheTTL = ttl
	}
	return &Oracle{
		chains:   chains,
		md:       md,
		gas:      gas,
		prices:   prices,
		fx:       fx,
		logger:   log,
		gasCache: cache.New[string, domain.GasData](2 * ttl),
		fxCache:  cache.New[string, domain.FxRate](2 * ttl),
	}
}

// GetGasData returns the gas context for every requested chain.
func (o *Oracle) GetGasData(ctx context.Context, chains []string) map[string]domain.GasData {
	out := make(map[string]domain.GasData, len(chains))
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, chain := range chains {
		chain = strings.ToLower(strings.TrimSpace(chain))
		if chain == "" {
			continue
		}
		mu.Lock()
		_, seen := out[chain]
		out[chain] = domain.GasData{}
		mu.Unlock()
		if seen {
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			g := o.gasFor(ctx, chain)
			mu.Lock()
			out[chain] = g
			mu.Unlock()
		}()
	}
	wg.Wait()
	return out
}

func (o *Oracle) gasFor(ctx context.Context, chain string) domain.GasData {
	if g, ok := o.gasCache.Get(ctx, chain); ok {
		return g
	}

	v, _, _ := o.group.Do("gas:"+chain, func() (any, error) {
		if g, ok := o.gasCache.Get(ctx, chain); ok {
			return g, nil
		}
		g := o.fetchGas(ctx, chain)
		o.gasCache.Set(ctx, chain, g, o.md.CacheTTL)
		return g, nil
	})
	return v.(domain.GasData)
}

func (o *Oracle) fetchGas(ctx context.Context, chain string) domain.GasData {
	cc, ok := o.chains[chain]
	if !ok {
		o.logger.Debug(ctx, "chain not configured, gas unknown", "chain", chain)
		return domain.GasData{Chain: chain, GasLimit: defaultGasLimit, GasSource: domain.SourceFallback, NativeSource: domain.SourceFallback, FetchedAt: time.Now()}
	}

	g := domain.GasData{
		Chain:        chain,
		GweiPrice:    cc.FallbackGwei,
		NativeUSD:    cc.FallbackNativeUSD,
		GasLimit:     cc.GasLimit,
		GasSource:    domain.SourceFallback,
		NativeSource: domain.SourceFallback,
		FetchedAt:    time.Now(),
	}
	if g.GasLimit == 0 {
		g.GasLimit = defaultGasLimit
	}

	if cc.IsEVM() && cc.RPCURL != "" && o.gas != nil {
		gwei, err := o.gas.SuggestGwei(ctx, chain)
		switch {
		case err != nil:
			o.logger.Warn(ctx, "gas price fetch failed, using fallback", "chain", chain, "fallback_gwei", cc.FallbackGwei, "error", err)
		case gwei > 0:
			g.GweiPrice = gwei
			g.GasSource = domain.SourceLive
		}
	}

	if cc.NativeSymbol != "" && o.prices != nil {
		if px, ok := o.prices.BestBid(ctx, o.md.PriceVenue, cc.NativeSymbol); ok {
			g.NativeUSD = px
			g.NativeSource = domain.SourceLive
		} else {
			o.logger.Warn(ctx, "native price unavailable, using fallback", "chain", chain, "symbol", cc.NativeSymbol, "fallback_usd", cc.FallbackNativeUSD)
		}
	}

	return g
}

// GetStableFxRate returns the stable-to-fiat rate, falling back through
// each source and finally the configured constant.
func (o *Oracle) GetStableFxRate(ctx context.Context) float64 {
	return o.FxRate(ctx).Rate
}

// FxRate is GetStableFxRate with the serving tier.
func (o *Oracle) FxRate(ctx context.Context) domain.FxRate {
	fiat := strings.ToUpper(o.md.FX.Fiat)
	if r, ok := o.fxCache.Get(ctx, fiat); ok {
		return r
	}

	v, _, _ := o.group.Do("fx:"+fiat, func() (any, error) {
		if r, ok := o.fxCache.Get(ctx, fiat); ok {
			return r, nil
		}
		r := o.fetchFx(ctx, fiat)
		o.fxCache.Set(ctx, fiat, r, o.md.CacheTTL)
		return r, nil
	})
	return v.(domain.FxRate)
}

func (o *Oracle) fetchFx(ctx context.Context, fiat string) domain.FxRate {
	for _, src := range o.fx {
		rate, err := src.Rate(ctx, fiat)
		if err != nil {
			o.logger.Warn(ctx, "fx source failed", "source", src.Name(), "fiat", fiat, "error", err)
			continue
		}
		if rate > 0 {
			return domain.FxRate{Fiat: fiat, Rate: rate, Source: src.Name()}
		}
		o.logger.Warn(ctx, "fx source returned non-positive rate", "source", src.Name(), "fiat", fiat, "rate", rate)
	}
	return domain.FxRate{Fiat: fiat, Rate: o.md.FX.FallbackRate, Source: string(domain.SourceFallback)}
}

// Cached reports whether the FX rate is currently cached.
func (o *Oracle) Cached(ctx context.Context) bool {
	_, ok := o.fxCache.Get(ctx, strings.ToUpper(o.md.FX.Fiat))
	return ok
}

// Close stops the cache janitors.
func (o *Oracle) Close() {
	o.gasCache.Close()
	o.fxCache.Close()
}
