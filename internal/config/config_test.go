package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if !cfg.CEX.IsStable("usdt") {
		t.Error("USDT should be the default stable symbol")
	}
	if cfg.CEX.Venues["binance"].Profile != "standard" {
		t.Errorf("binance profile = %q", cfg.CEX.Venues["binance"].Profile)
	}
	if cfg.CEX.Venues["bybit"].Profile != "result_short_keys" {
		t.Errorf("bybit profile = %q", cfg.CEX.Venues["bybit"].Profile)
	}
	if eth := cfg.Chains["ethereum"]; eth.ChainID != 1 || eth.GasLimit != 250_000 || eth.NativeSymbol != "ETH" {
		t.Errorf("ethereum chain = %+v", eth)
	}
	if cfg.MarketData.CacheTTL.Seconds() != 30 {
		t.Errorf("cache ttl = %v", cfg.MarketData.CacheTTL)
	}
	if cfg.Delays.Token != nil || len(cfg.Delays.DEX) != 0 {
		t.Error("no static delays expected by default")
	}
}

func TestLoadNormalizesFeesAndDelays(t *testing.T) {
	path := writeConfig(t, `
fees:
  venues:
    Binance:
      trading_fee: "0.00075"
      withdrawal:
        usdt: 1
        ETH: "0.0008"
delays:
  dex:
    1inch: 1200
  token: "0"
  timeout: 8000
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	bn := cfg.Fees.Venues["binance"]
	if bn.TradingFee == nil || *bn.TradingFee != 0.00075 {
		t.Errorf("trading fee = %v", bn.TradingFee)
	}
	if bn.Withdrawal["USDT"] != 1 || bn.Withdrawal["ETH"] != 0.0008 {
		t.Errorf("withdrawal = %v", bn.Withdrawal)
	}
	if cfg.Delays.DEX["1inch"] != 1200 {
		t.Errorf("dex delay = %v", cfg.Delays.DEX)
	}
	if cfg.Delays.Token == nil || *cfg.Delays.Token != 0 {
		t.Errorf("token delay = %v", cfg.Delays.Token)
	}
	if cfg.Delays.Timeout == nil || *cfg.Delays.Timeout != 8000 {
		t.Errorf("timeout = %v", cfg.Delays.Timeout)
	}
}

func TestLoadRejectsNonNumericValues(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{
			name: "fee_string",
			body: "fees:\n  venues:\n    okx:\n      trading_fee: cheap\n",
		},
		{
			name: "withdrawal_negative",
			body: "fees:\n  venues:\n    okx:\n      withdrawal:\n        usdt: -1\n",
		},
		{
			name: "delay_string",
			body: "delays:\n  cex:\n    binance: soon\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.body)); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestLoadStrategyBaseURL(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
dex:
  venues:
    uniswap:
      cex_to_dex: {primary: uniswap_v3}
  strategies:
    uniswap_v3:
      base_url: http://localhost:8545
`))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got := cfg.DEX.Strategies["uniswap_v3"].BaseURL; got != "http://localhost:8545" {
		t.Errorf("uniswap_v3 base_url = %q", got)
	}
	if got := cfg.DEX.Venues["uniswap"].CEXToDEX.Primary; got != "uniswap_v3" {
		t.Errorf("uniswap primary = %q", got)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("QE_LOG_LEVEL", "debug")
	t.Setenv("QE_OKX_SECRET", "s3cret")

	cfg, err := Load(writeConfig(t, "app:\n  name: test\n"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.App.LogLevel != "debug" {
		t.Errorf("log level = %q", cfg.App.LogLevel)
	}
	if cfg.DEX.Credentials["okx"].Secret != "s3cret" {
		t.Error("okx secret not bound from env")
	}
}

func TestValidate(t *testing.T) {
	cfg := Defaults()
	cfg.Reporting.Redis.Enabled = true
	cfg.Reporting.Redis.Addr = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for redis without addr")
	}

	cfg = Defaults()
	cfg.Scan.BatchSize = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for zero batch size")
	}
}
