package app

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/fd1az/quote-engine/business/arbitrage/domain"
	dexApp "github.com/fd1az/quote-engine/business/dex/app"
	dexDomain "github.com/fd1az/quote-engine/business/dex/domain"
	feesDomain "github.com/fd1az/quote-engine/business/fees/domain"
	mdDomain "github.com/fd1az/quote-engine/business/marketdata/domain"
	pricingApp "github.com/fd1az/quote-engine/business/pricing/app"
	"github.com/fd1az/quote-engine/internal/apperror"
	"github.com/fd1az/quote-engine/internal/asset"
	"github.com/fd1az/quote-engine/internal/logger"
)

// Filter narrows an evaluation. Empty fields mean "all".
type Filter struct {
	DEXVenues  []string
	Directions []domain.Direction
}

func (f Filter) venue(name string) bool {
	if len(f.DEXVenues) == 0 {
		return true
	}
	for _, v := range f.DEXVenues {
		if strings.EqualFold(v, name) {
			return true
		}
	}
	return false
}

func (f Filter) directions() []domain.Direction {
	if len(f.Directions) == 0 {
		return domain.Directions
	}
	return f.Directions
}

// Evaluator drives the adapters, oracle and calculator for one token.
type Evaluator struct {
	pricing Pricing
	quoter  Quoter
	market  MarketData
	fees    FeeSchedule
	calc    *Calculator
	stable  string
	logger  logger.LoggerInterface
}

// NewEvaluator creates an Evaluator. stable is the quote-stable asset.
func NewEvaluator(pricing Pricing, quoter Quoter, market MarketData, fees FeeSchedule, calc *Calculator, stable string, log logger.LoggerInterface) *Evaluator {
	return &Evaluator{
		pricing: pricing,
		quoter:  quoter,
		market:  market,
		fees:    fees,
		calc:    calc,
		stable:  strings.ToUpper(stable),
		logger:  log,
	}
}

// EvaluateToken evaluates every enabled DEX venue of token in each selected
// direction. Directions run concurrently; venues within a direction run in
// order so vendor spacing stays with the delay policy. Per-venue failures
// are reported in Result.Error; the returned error is only for invalid input.
func (e *Evaluator) EvaluateToken(ctx context.Context, token *domain.TokenDescriptor, filter Filter, events chan<- Event) ([]domain.Result, error) {
	if token == nil {
		return nil, apperror.New(apperror.CodeInvalidInput, apperror.WithContext("nil token"))
	}
	if strings.TrimSpace(token.Symbol) == "" || strings.TrimSpace(token.CEX) == "" {
		return nil, apperror.New(apperror.CodeInvalidToken, apperror.WithContext("token symbol and cex venue are required"))
	}

	emit(ctx, events, Event{Kind: EventTokenStarted, Token: token.Symbol})

	legs := e.pricing.GetLegs(ctx, token.CEX, token.TokenTicker(), token.PairTicker())
	emit(ctx, events, Event{Kind: EventCEXResult, Token: token.Symbol, CEX: snapshot(token, legs)})

	chain := strings.ToLower(token.Chain)
	gas := e.market.GetGasData(ctx, []string{chain})[chain]
	fx := e.market.GetStableFxRate(ctx)

	var venues []string
	for _, name := range token.EnabledVenues() {
		if filter.venue(name) {
			venues = append(venues, name)
		}
	}
	sort.Strings(venues)

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results []domain.Result
	)
	for _, dir := range filter.directions() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, venue := range venues {
				if ctx.Err() != nil {
					return
				}
				r := e.evaluate(ctx, token, venue, dir, legs, gas, fx)
				emit(ctx, events, Event{Kind: EventDEXResult, Token: token.Symbol, Result: &r})

				mu.Lock()
				results = append(results, r)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Direction != results[j].Direction {
			return results[i].Direction < results[j].Direction
		}
		return results[i].DEXVenue < results[j].DEXVenue
	})

	emit(ctx, events, Event{Kind: EventTokenCompleted, Token: token.Symbol, Results: results, Evaluated: len(results)})
	return results, nil
}

func (e *Evaluator) evaluate(ctx context.Context, token *domain.TokenDescriptor, venue string, dir domain.Direction, legs pricingApp.Legs, gas mdDomain.GasData, fx float64) domain.Result {
	cfg := token.DEX[venue]

	withdrawn := token.TokenTicker()
	if dir == domain.DirectionDEXToCEX {
		withdrawn = token.PairTicker()
	}
	sched := e.fees.Resolve(token.CEX, withdrawn, feesDomain.Override{
		TradingFee:     token.TradingFee,
		WithdrawalFees: token.WithdrawalFees,
	})

	in := Input{
		Direction:    dir,
		Token:        *token,
		DEXVenue:     venue,
		TokenLadder:  legs.Token,
		PairLadder:   legs.Pair,
		Modal:        cfg.ModalFor(dir),
		Fees:         Fees{TradingFee: sched.TradingFee, WithdrawalFee: sched.WithdrawalFee},
		Gas:          Gas{GweiPrice: gas.GweiPrice, NativeUSD: gas.NativeUSD, GasLimit: gas.GasLimit},
		StableSymbol: e.stable,
		FxRate:       fx,
	}

	qty, _, msg := e.calc.BuyAmount(in)
	if msg == "" && qty-sched.WithdrawalFee > 0 {
		in.Quote = e.quote(ctx, token, venue, dir, qty, gas)
	}

	r := e.calc.Evaluate(in)
	r.Details.TradingFeeTier = string(sched.TradingSource)
	r.Details.WithdrawalTier = string(sched.WithdrawalSource)
	r.Details.GasPriceSource = string(gas.GasSource)
	r.Details.NativePriceFrom = string(gas.NativeSource)
	return r
}

func (e *Evaluator) quote(ctx context.Context, token *domain.TokenDescriptor, venue string, dir domain.Direction, qty float64, gas mdDomain.GasData) *dexDomain.Quote {
	in, out, err := legAssets(token, dir)
	if err != nil {
		e.logger.Warn(ctx, "invalid dex leg", "token", token.Symbol, "venue", venue, "error", err)
		return nil
	}

	amount, err := asset.FromFloat(in, qty)
	if err != nil {
		e.logger.Warn(ctx, "cannot scale amount in", "token", token.Symbol, "venue", venue, "amount", qty, "error", err)
		return nil
	}
	if amount.IsZero() {
		e.logger.Debug(ctx, "amount in rounds to zero", "token", token.Symbol, "venue", venue, "amount", qty, "decimals", in.Decimals())
		return nil
	}
	e.logger.Debug(ctx, "requesting dex quote", "token", token.Symbol, "venue", venue, "direction", dir.Key(), "amount_in", amount.String())

	keys := token.DEX[venue].StrategiesFor(dir)
	return e.quoter.GetQuote(ctx, dexApp.QuoteRequest{
		Venue:       venue,
		Direction:   dir.Key(),
		Primary:     keys.Primary,
		Alternative: keys.Alternative,
		Chain:       strings.ToLower(token.Chain),
		TokenIn:     dexToken(in),
		TokenOut:    dexToken(out),
		AmountIn:    amount.Raw(),
		Gas:         dexDomain.GasContext{GweiPrice: gas.GweiPrice, NativeUSD: gas.NativeUSD},
	})
}

// legAssets returns the swap input and output for dir.
func legAssets(token *domain.TokenDescriptor, dir domain.Direction) (in, out *asset.Asset, err error) {
	tokenSide, err := asset.NewAsset(token.TokenTicker(), token.TokenAddress, token.TokenDecimals)
	if err != nil {
		return nil, nil, err
	}
	pairSide, err := asset.NewAsset(token.PairTicker(), token.PairAddress, token.PairDecimals)
	if err != nil {
		return nil, nil, err
	}
	if dir == domain.DirectionDEXToCEX {
		return pairSide, tokenSide, nil
	}
	return tokenSide, pairSide, nil
}

func dexToken(a *asset.Asset) dexDomain.Token {
	return dexDomain.Token{Symbol: a.Symbol(), Address: a.Address(), Decimals: a.Decimals()}
}

func snapshot(token *domain.TokenDescriptor, legs pricingApp.Legs) *CEXSnapshot {
	s := &CEXSnapshot{Venue: token.CEX, Token: token.TokenTicker(), Pair: token.PairTicker()}
	if legs.Token != nil && !legs.Token.Empty() {
		s.TokenBid, s.TokenAsk = legs.Token.BestBid, legs.Token.BestAsk
		s.TokenMid, s.TokenSpreadBps = legs.Token.MidPrice(), legs.Token.SpreadBps()
	}
	if legs.Pair != nil && !legs.Pair.Empty() {
		s.PairBid, s.PairAsk = legs.Pair.BestBid, legs.Pair.BestAsk
	}
	return s
}
