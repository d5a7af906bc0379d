package domain

func rate(f float64) *float64 { return &f }

// fallbackTable holds published spot taker rates and common withdrawal fees.
func fallbackTable() map[string]VenueFees {
	return map[string]VenueFees{
		"binance": {
			TradingFee: rate(0.001),
			Withdrawal: map[string]float64{"USDT": 1, "USDC": 1, "ETH": 0.0004, "BTC": 0.00002, "BNB": 0.0005, "SOL": 0.001},
		},
		"okx": {
			TradingFee: rate(0.001),
			Withdrawal: map[string]float64{"USDT": 1, "USDC": 1, "ETH": 0.0004, "BTC": 0.00004, "SOL": 0.008},
		},
		"bybit": {
			TradingFee: rate(0.001),
			Withdrawal: map[string]float64{"USDT": 1, "USDC": 1, "ETH": 0.0005, "BTC": 0.0001, "SOL": 0.01},
		},
		"kucoin": {
			TradingFee: rate(0.001),
			Withdrawal: map[string]float64{"USDT": 1.5, "USDC": 1.5, "ETH": 0.001, "BTC": 0.0001},
		},
		"gate":    {TradingFee: rate(0.002), Withdrawal: map[string]float64{"USDT": 1, "ETH": 0.001}},
		"mexc":    {TradingFee: rate(0.0005), Withdrawal: map[string]float64{"USDT": 1, "ETH": 0.001}},
		"htx":     {TradingFee: rate(0.002), Withdrawal: map[string]float64{"USDT": 1, "ETH": 0.001}},
		"bitget":  {TradingFee: rate(0.001), Withdrawal: map[string]float64{"USDT": 1, "ETH": 0.0006}},
		"indodax": {TradingFee: rate(0.003), Withdrawal: map[string]float64{"USDT": 2, "ETH": 0.003}},
	}
}
