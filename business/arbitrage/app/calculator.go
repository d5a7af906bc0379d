// Package app contains application services and port definitions for the arbitrage context.
package app

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fd1az/quote-engine/business/arbitrage/domain"
	dexDomain "github.com/fd1az/quote-engine/business/dex/domain"
	pricingDomain "github.com/fd1az/quote-engine/business/pricing/domain"
)

// Calculation errors carried in Result.Error.
const (
	ErrModalNotPositive       = "modal must be positive"
	ErrMissingBuyPrice        = "missing CEX ask"
	ErrMissingSellPrice       = "missing CEX bid"
	ErrInsufficientWithdrawal = "insufficient amount after withdrawal"
	ErrNoDEXQuote             = "no DEX quote"
)

// Fees are the resolved fee inputs. WithdrawalFee is in units of the
// withdrawn asset: the token for CEX_TO_DEX, the pair for DEX_TO_CEX.
type Fees struct {
	TradingFee    float64
	WithdrawalFee float64
}

// Gas is the chain gas context used when the vendor reports no gas cost.
type Gas struct {
	GweiPrice float64
	NativeUSD float64
	GasLimit  uint64
}

// CostUSD is gwei * gasLimit * 1e-9 * nativeUSD.
func (g Gas) CostUSD() float64 {
	return g.GweiPrice * float64(g.GasLimit) * 1e-9 * g.NativeUSD
}

// Input is everything one evaluation needs. It is never mutated.
type Input struct {
	Direction   domain.Direction
	Token       domain.TokenDescriptor
	DEXVenue    string
	TokenLadder *pricingDomain.Ladder
	PairLadder  *pricingDomain.Ladder
	Quote       *dexDomain.Quote
	Modal       float64
	Fees        Fees
	Gas         Gas
	// StableSymbol is the quote-stable asset priced at exactly 1.
	StableSymbol string
	// FxRate converts PnL to fiat when positive.
	FxRate float64
}

// Calculator turns quotes, fees and gas into a PnL result. It does no I/O.
type Calculator struct {
	now   func() time.Time
	newID func() string
}

// NewCalculator creates a Calculator.
func NewCalculator() *Calculator {
	return &Calculator{
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// BuyAmount is the gross amount bought on the CEX for in.Modal: the token
// for CEX_TO_DEX, the pair for DEX_TO_CEX. It is the DEX leg's amount in.
func (c *Calculator) BuyAmount(in Input) (amount, price float64, errMsg string) {
	if !(in.Modal > 0) || math.IsInf(in.Modal, 0) {
		return 0, 0, ErrModalNotPositive
	}
	symbol, ladder := c.buyLeg(in)
	price, ok := askPrice(symbol, ladder, in.StableSymbol)
	if !ok {
		return 0, 0, ErrMissingBuyPrice + " for " + symbol
	}
	return in.Modal / price, price, ""
}

// Evaluate computes the result of in. Any condition that prevents a
// meaningful figure yields a zero-valued result with Error set.
func (c *Calculator) Evaluate(in Input) domain.Result {
	r := domain.Result{
		ID:        c.newID(),
		Direction: in.Direction,
		Token:     in.Token.Symbol,
		Chain:     in.Token.Chain,
		CEXVenue:  in.Token.CEX,
		DEXVenue:  in.DEXVenue,
		Modal:     in.Modal,
		Timestamp: c.now(),
	}

	buySymbol, _ := c.buyLeg(in)
	sellSymbol, sellLadder := c.sellLeg(in)

	qty, buyPrice, msg := c.BuyAmount(in)
	if msg != "" {
		return fail(r, msg)
	}
	buyFee := in.Modal * in.Fees.TradingFee

	after := qty - in.Fees.WithdrawalFee
	if after <= 0 {
		return fail(r, ErrInsufficientWithdrawal)
	}

	if !in.Quote.Valid() {
		return fail(r, ErrNoDEXQuote)
	}
	amountOut := in.Quote.AmountOut

	gas, gasSource := in.Quote.GasFeeUSD, domain.GasFromVendor
	if !(gas > 0) {
		gas, gasSource = in.Gas.CostUSD(), domain.GasFromComputed
	}

	sellPrice, ok := bidPrice(sellSymbol, sellLadder, in.StableSymbol)
	if !ok {
		return fail(r, ErrMissingSellPrice+" for "+sellSymbol)
	}
	proceeds := amountOut * sellPrice
	sellFee := proceeds * in.Fees.TradingFee

	withdrawalValue := in.Fees.WithdrawalFee * buyPrice
	costs := domain.NewCosts(buyFee, withdrawalValue, gas, sellFee)

	r.Result = proceeds
	r.Costs = costs
	r.PnL = proceeds - in.Modal - costs.Total
	r.PnLPercent = r.PnL / in.Modal * 100
	r.Details = domain.Details{
		BuySymbol:      buySymbol,
		SellSymbol:     sellSymbol,
		BuyPrice:       buyPrice,
		SellPrice:      sellPrice,
		AmountBought:   qty,
		AmountAfterFee: after,
		AmountOut:      amountOut,
		TradingFeeRate: in.Fees.TradingFee,
		WithdrawalFee:  in.Fees.WithdrawalFee,
		GasSource:      gasSource,
		Strategy:       in.Quote.Strategy,
	}
	if in.FxRate > 0 {
		r.Details.FxRate = in.FxRate
		r.Details.PnLFiat = r.PnL * in.FxRate
	}

	if !finite(r.Result, r.PnL, r.PnLPercent, costs.Total) {
		return fail(r, "non-finite result")
	}
	return r
}

func (c *Calculator) buyLeg(in Input) (string, *pricingDomain.Ladder) {
	if in.Direction == domain.DirectionDEXToCEX {
		return in.Token.PairTicker(), in.PairLadder
	}
	return in.Token.TokenTicker(), in.TokenLadder
}

func (c *Calculator) sellLeg(in Input) (string, *pricingDomain.Ladder) {
	if in.Direction == domain.DirectionDEXToCEX {
		return in.Token.TokenTicker(), in.TokenLadder
	}
	return in.Token.PairTicker(), in.PairLadder
}

func fail(r domain.Result, msg string) domain.Result {
	return domain.Result{
		ID:        r.ID,
		Direction: r.Direction,
		Token:     r.Token,
		Chain:     r.Chain,
		CEXVenue:  r.CEXVenue,
		DEXVenue:  r.DEXVenue,
		Modal:     r.Modal,
		Error:     msg,
		Timestamp: r.Timestamp,
	}
}

func isStable(symbol string, ladder *pricingDomain.Ladder, stable string) bool {
	if stable != "" && strings.EqualFold(symbol, stable) {
		return true
	}
	return ladder != nil && ladder.Synthetic
}

func askPrice(symbol string, ladder *pricingDomain.Ladder, stable string) (float64, bool) {
	if isStable(symbol, ladder, stable) {
		return 1, true
	}
	if ladder == nil || !(ladder.BestAsk > 0) || math.IsInf(ladder.BestAsk, 0) {
		return 0, false
	}
	return ladder.BestAsk, true
}

func bidPrice(symbol string, ladder *pricingDomain.Ladder, stable string) (float64, bool) {
	if isStable(symbol, ladder, stable) {
		return 1, true
	}
	if ladder == nil || !(ladder.BestBid > 0) || math.IsInf(ladder.BestBid, 0) {
		return 0, false
	}
	return ladder.BestBid, true
}

func finite(vals ...float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
