package domain

import "time"

// GasSource says where the gas cost came from.
type GasSource string

const (
	GasFromVendor   GasSource = "vendor"
	GasFromComputed GasSource = "computed"
)

// Details records the intermediate figures of an evaluation.
type Details struct {
	BuySymbol       string    `json:"buy_symbol"`
	SellSymbol      string    `json:"sell_symbol"`
	BuyPrice        float64   `json:"buy_price"`
	SellPrice       float64   `json:"sell_price"`
	AmountBought    float64   `json:"amount_bought"`
	AmountAfterFee  float64   `json:"amount_after_withdrawal"`
	AmountOut       float64   `json:"amount_out"`
	TradingFeeRate  float64   `json:"trading_fee_rate"`
	WithdrawalFee   float64   `json:"withdrawal_fee"`
	GasSource       GasSource `json:"gas_source,omitempty"`
	Strategy        string    `json:"strategy,omitempty"`
	FxRate          float64   `json:"fx_rate,omitempty"`
	PnLFiat         float64   `json:"pnl_fiat,omitempty"`
	TradingFeeTier  string    `json:"trading_fee_source,omitempty"`
	WithdrawalTier  string    `json:"withdrawal_fee_source,omitempty"`
	GasPriceSource  string    `json:"gas_price_source,omitempty"`
	NativePriceFrom string    `json:"native_price_source,omitempty"`
}

// Result is one direction of one token on one DEX venue. Results are
// values: callers copy, never mutate.
type Result struct {
	ID         string    `json:"id"`
	Direction  Direction `json:"direction"`
	Token      string    `json:"token"`
	Chain      string    `json:"chain"`
	CEXVenue   string    `json:"cex_venue"`
	DEXVenue   string    `json:"dex_venue"`
	Modal      float64   `json:"modal"`
	Result     float64   `json:"result"`
	PnL        float64   `json:"pnl"`
	PnLPercent float64   `json:"pnl_percent"`
	Costs      Costs     `json:"costs"`
	Details    Details   `json:"details"`
	Error      string    `json:"error,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// Failed reports whether the evaluation could not proceed.
func (r Result) Failed() bool {
	return r.Error != ""
}

// Profitable reports a successful evaluation with positive PnL.
func (r Result) Profitable() bool {
	return !r.Failed() && r.PnL > 0
}

// Best returns the highest-PnL successful result, if any.
func Best(results []Result) (Result, bool) {
	var (
		best  Result
		found bool
	)
	for _, r := range results {
		if r.Failed() {
			continue
		}
		if !found || r.PnL > best.PnL {
			best, found = r, true
		}
	}
	return best, found
}
