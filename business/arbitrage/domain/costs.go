package domain

// Costs is the itemized cost ledger of one evaluation, in the stable asset.
type Costs struct {
	TradingFeeBuy  float64 `json:"trading_fee_buy"`
	Withdrawal     float64 `json:"withdrawal"`
	Gas            float64 `json:"gas"`
	TradingFeeSell float64 `json:"trading_fee_sell"`
	Total          float64 `json:"total"`
}

// NewCosts builds a ledger whose Total is the sum of its items.
func NewCosts(buyFee, withdrawal, gas, sellFee float64) Costs {
	return Costs{
		TradingFeeBuy:  buyFee,
		Withdrawal:     withdrawal,
		Gas:            gas,
		TradingFeeSell: sellFee,
		Total:          buyFee + withdrawal + gas + sellFee,
	}
}

// Sum recomputes the item total.
func (c Costs) Sum() float64 {
	return c.TradingFeeBuy + c.Withdrawal + c.Gas + c.TradingFeeSell
}
