package config

import "github.com/spf13/viper"

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "quote-engine")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.log_max_size_mb", 100)
	v.SetDefault("app.log_max_age_days", 7)

	v.SetDefault("cex.stable_symbols", []string{"USDT"})
	v.SetDefault("cex.depth_limit", 20)
	setCEXVenue(v, "binance", "https://api.binance.com/api/v3/depth?symbol={symbol}&limit={limit}", "{BASE}{QUOTE}", "standard")
	setCEXVenue(v, "mexc", "https://api.mexc.com/api/v3/depth?symbol={symbol}&limit={limit}", "{BASE}{QUOTE}", "standard")
	setCEXVenue(v, "gate", "https://api.gateio.ws/api/v4/spot/order_book?currency_pair={symbol}&limit={limit}", "{BASE}_{QUOTE}", "standard")
	setCEXVenue(v, "okx", "https://www.okx.com/api/v5/market/books?instId={symbol}&sz={limit}", "{BASE}-{QUOTE}", "nested_data")
	setCEXVenue(v, "kucoin", "https://api.kucoin.com/api/v1/market/orderbook/level2_20?symbol={symbol}", "{BASE}-{QUOTE}", "nested_data")
	setCEXVenue(v, "bitget", "https://api.bitget.com/api/v2/spot/market/orderbook?symbol={symbol}&limit={limit}", "{BASE}{QUOTE}", "nested_data")
	setCEXVenue(v, "htx", "https://api.huobi.pro/market/depth?symbol={symbol}&type=step0", "{base}{quote}", "nested_data")
	setCEXVenue(v, "bybit", "https://api.bybit.com/v5/market/orderbook?category=spot&symbol={symbol}&limit={limit}", "{BASE}{QUOTE}", "result_short_keys")
	setCEXVenue(v, "indodax", "https://indodax.com/api/depth/{symbol}", "{base}{quote}", "dual_field_legacy")

	v.SetDefault("dex.slippage_bps", 50)
	v.SetDefault("dex.user_address", "0x0000000000000000000000000000000000000001")

	setChain(v, "ethereum", 1, "https://ethereum-rpc.publicnode.com", "ETH", 250_000, 20, 3000, "0x61fFE014bA17989E743c5F6cB21bF9697530B21e")
	setChain(v, "bsc", 56, "https://bsc-dataseed.bnbchain.org", "BNB", 250_000, 3, 600, "0x78D78E420Da98ad378D7799bE8f4AF69033EB077")
	setChain(v, "polygon", 137, "https://polygon-rpc.com", "POL", 250_000, 50, 0.5, "0x61fFE014bA17989E743c5F6cB21bF9697530B21e")
	setChain(v, "arbitrum", 42161, "https://arb1.arbitrum.io/rpc", "ETH", 1_000_000, 0.1, 3000, "0x61fFE014bA17989E743c5F6cB21bF9697530B21e")
	setChain(v, "base", 8453, "https://mainnet.base.org", "ETH", 250_000, 0.05, 3000, "0x3d4e44Eb1374240CE5F1B871ab261CD16335B76a")
	setChain(v, "solana", 0, "", "SOL", 5_000, 1, 150, "")
	v.SetDefault("chains.ethereum.openocean_slug", "eth")

	v.SetDefault("marketdata.price_venue", "binance")
	v.SetDefault("marketdata.cache_ttl", "30s")
	v.SetDefault("marketdata.fx.fiat", "IDR")
	v.SetDefault("marketdata.fx.primary_url", "https://open.er-api.com/v6/latest/USD")
	v.SetDefault("marketdata.fx.secondary_url", "https://query1.finance.yahoo.com/v8/finance/chart/")
	v.SetDefault("marketdata.fx.fallback_rate", 16000)

	v.SetDefault("scan.tokens_file", "config/tokens.yaml")
	v.SetDefault("scan.batch_size", 5)
	v.SetDefault("scan.parallel_tokens", false)

	v.SetDefault("reporting.console", true)
	v.SetDefault("reporting.redis.enabled", false)
	v.SetDefault("reporting.redis.stream", "quote-engine:results")
	v.SetDefault("reporting.redis.max_len", 10_000)

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "quote-engine")
	v.SetDefault("telemetry.trace_exporter", "zipkin")
	v.SetDefault("telemetry.otlp_endpoint", "http://localhost:9411/api/v2/spans")
	v.SetDefault("telemetry.prometheus_port", 9090)

	v.SetDefault("health.port", 8081)
}

func setCEXVenue(v *viper.Viper, name, url, format, profile string) {
	prefix := "cex.venues." + name + "."
	v.SetDefault(prefix+"orderbook_url", url)
	v.SetDefault(prefix+"symbol_format", format)
	v.SetDefault(prefix+"profile", profile)
}

func setChain(v *viper.Viper, name string, chainID uint64, rpc, native string, gasLimit uint64, gwei, nativeUSD float64, quoter string) {
	prefix := "chains." + name + "."
	v.SetDefault(prefix+"chain_id", chainID)
	v.SetDefault(prefix+"rpc_url", rpc)
	v.SetDefault(prefix+"native_symbol", native)
	v.SetDefault(prefix+"gas_limit", gasLimit)
	v.SetDefault(prefix+"fallback_gwei", gwei)
	v.SetDefault(prefix+"fallback_native_usd", nativeUSD)
	v.SetDefault(prefix+"quoter_address", quoter)
	v.SetDefault(prefix+"kyber_slug", name)
	v.SetDefault(prefix+"openocean_slug", name)
}
