package delay

// Milliseconds.
var globalDefaults = map[Scope]float64{
	ScopeCEX:     200,
	ScopeDEX:     500,
	ScopeToken:   1000,
	ScopeBatch:   3000,
	ScopeTimeout: 10000,
}

var vendorDefaults = map[Scope]map[string]float64{
	ScopeCEX: {
		"binance": 50,
		"mexc":    100,
		"gate":    150,
		"okx":     100,
		"kucoin":  150,
		"bitget":  100,
		"htx":     100,
		"bybit":   100,
		"indodax": 250,
	},
	ScopeDEX: {
		"1inch":      1000,
		"0x":         500,
		"paraswap":   400,
		"kyberswap":  300,
		"okx":        1100,
		"odos":       500,
		"openocean":  400,
		"lifi":       600,
		"jupiter":    250,
		"uniswap_v3": 100,
	},
}
