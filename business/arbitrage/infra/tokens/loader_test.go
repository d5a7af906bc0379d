package tokens

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fd1az/quote-engine/internal/apperror"
	"github.com/fd1az/quote-engine/internal/config"
)

var testChains = map[string]config.ChainConfig{
	"ethereum": {ChainID: 1, GasLimit: 250000},
	"solana":   {GasLimit: 1},
}

const validDoc = `
tokens:
  - symbol: ETH
    chain: Ethereum
    cex: binance
    cex_pair: USDT
    token_address: "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"
    token_decimals: 18
    pair_address: "0xdAC17F958D2ee523a2206206994597C13D831ec7"
    pair_decimals: 6
    trading_fee: 0.00075
    withdrawal_fees:
      ETH: 0.0004
    dex:
      1inch:
        enabled: true
        modal:
          cex_to_dex: 100
          dex_to_cex: 100
        strategies:
          cex_to_dex:
            primary: aggregator
  - symbol: SOL
    chain: solana
    cex: binance
    cex_pair: USDT
    token_address: So11111111111111111111111111111111111111112
    token_decimals: 9
    pair_address: Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB
    pair_decimals: 6
    dex:
      jupiter:
        enabled: true
        modal:
          cex_to_dex: 50
`

func TestParse(t *testing.T) {
	tokens, err := Parse([]byte(validDoc), testChains)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(tokens) != 2 {
		t.Fatalf("len(tokens) = %d, want 2", len(tokens))
	}

	eth := tokens[0]
	if eth.Chain != "ethereum" {
		t.Errorf("chain = %q, want ethereum", eth.Chain)
	}
	if eth.TradingFee == nil || *eth.TradingFee != 0.00075 {
		t.Errorf("trading fee = %v", eth.TradingFee)
	}
	if eth.WithdrawalFees["ETH"] != 0.0004 {
		t.Errorf("withdrawal fee = %v", eth.WithdrawalFees["ETH"])
	}
	v := eth.DEX["1inch"]
	if !v.Enabled || v.Modal.CEXToDEX != 100 || v.Strategies.CEXToDEX.Primary != "aggregator" {
		t.Errorf("dex venue = %+v", v)
	}
	if tokens[1].TokenDecimals != 9 {
		t.Errorf("SOL decimals = %d", tokens[1].TokenDecimals)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		code apperror.Code
	}{
		{
			name: "malformed yaml",
			doc:  "tokens: [",
			code: apperror.CodeTokenFileInvalid,
		},
		{
			name: "unknown field",
			doc:  "tokens:\n  - symbol: ETH\n    modal: 100\n",
			code: apperror.CodeTokenFileInvalid,
		},
		{
			name: "empty",
			doc:  "tokens: []\n",
			code: apperror.CodeTokenFileInvalid,
		},
		{
			name: "unknown chain",
			doc:  "tokens:\n  - {symbol: ETH, chain: base, cex: binance, cex_pair: USDT, token_address: a, pair_address: b}\n",
			code: apperror.CodeInvalidToken,
		},
		{
			name: "bad evm address",
			doc:  "tokens:\n  - {symbol: ETH, chain: ethereum, cex: binance, cex_pair: USDT, token_address: nothex, pair_address: \"0xdAC17F958D2ee523a2206206994597C13D831ec7\"}\n",
			code: apperror.CodeInvalidToken,
		},
		{
			name: "duplicate",
			doc: "tokens:\n" +
				"  - {symbol: SOL, chain: solana, cex: binance, cex_pair: USDT, token_address: a, pair_address: b}\n" +
				"  - {symbol: SOL, chain: solana, cex: okx, cex_pair: USDT, token_address: a, pair_address: b}\n",
			code: apperror.CodeInvalidToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc), testChains)
			if err == nil {
				t.Fatal("expected error")
			}
			if got := apperror.GetCode(err); got != tt.code {
				t.Errorf("code = %s, want %s", got, tt.code)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.yaml")
	if err := os.WriteFile(path, []byte(validDoc), 0o600); err != nil {
		t.Fatal(err)
	}

	tokens, err := LoadFile(path, testChains)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if len(tokens) != 2 {
		t.Errorf("len(tokens) = %d", len(tokens))
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"), testChains); apperror.GetCode(err) != apperror.CodeTokenFileInvalid {
		t.Errorf("missing file code = %s", apperror.GetCode(err))
	}
}
