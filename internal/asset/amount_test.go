package asset_test

import (
	"errors"
	"math"
	"math/big"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/fd1az/quote-engine/internal/asset"
)

func TestToBaseUnitsExact(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		decimals uint8
		want     string
	}{
		{"zero_decimals", "42", 0, "42"},
		{"zero_decimals_truncates", "42.9", 0, "42"},
		{"usdc_6", "1.234567", 6, "1234567"},
		{"wbtc_8", "1.23456789", 8, "123456789"},
		{"eth_18", "1.23456789", 18, "1234567890000000000"},
		{"eth_18_full_precision", "0.123456789012345678", 18, "123456789012345678"},
		{"sub_unit_truncates", "0.0000001", 6, "0"},
		{"negative_is_zero", "-5", 6, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := asset.ToBaseUnits(decimal.RequireFromString(tt.amount), tt.decimals)
			if got.String() != tt.want {
				t.Errorf("ToBaseUnits(%s, %d) = %s, want %s", tt.amount, tt.decimals, got, tt.want)
			}
		})
	}
}

func TestFromFloat(t *testing.T) {
	tests := []struct {
		name     string
		amount   float64
		decimals uint8
		want     string
	}{
		{"eight_decimals_exact", 1.23456789, 8, "123456789"},
		{"point_one", 0.1, 18, "100000000000000000"},
		{"usdt_6", 49.99, 6, "49990000"},
		{"integer", 100, 0, "100"},
		{"sub_unit_is_zero", 0.0000001, 6, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := asset.NewAsset("tkn", "", tt.decimals)
			if err != nil {
				t.Fatalf("NewAsset() error: %v", err)
			}
			got, err := asset.FromFloat(a, tt.amount)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Raw().String() != tt.want {
				t.Errorf("FromFloat(%v, %d) = %s, want %s", tt.amount, tt.decimals, got.Raw(), tt.want)
			}
			if got.IsZero() != (tt.want == "0") {
				t.Errorf("IsZero() = %v for %s", got.IsZero(), got.Raw())
			}
		})
	}

	usdt, _ := asset.NewAsset("USDT", "", 6)
	for _, bad := range []float64{math.Inf(1), math.NaN()} {
		if _, err := asset.FromFloat(usdt, bad); !errors.Is(err, asset.ErrNotFinite) {
			t.Errorf("FromFloat(%v): err = %v, want ErrNotFinite", bad, err)
		}
	}
	if _, err := asset.FromFloat(usdt, -1); !errors.Is(err, asset.ErrNegativeAmount) {
		t.Errorf("negative: err = %v, want ErrNegativeAmount", err)
	}
}

func TestNewAsset(t *testing.T) {
	tests := []struct {
		name     string
		symbol   string
		decimals uint8
		wantErr  error
	}{
		{name: "normalizes symbol", symbol: " usdc ", decimals: 6},
		{name: "empty symbol", symbol: "  ", decimals: 6, wantErr: asset.ErrEmptySymbol},
		{name: "too many decimals", symbol: "X", decimals: asset.MaxDecimals + 1, wantErr: asset.ErrTooManyDecimals},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := asset.NewAsset(tt.symbol, "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", tt.decimals)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if err == nil && (a.Symbol() != "USDC" || a.Decimals() != 6) {
				t.Errorf("asset = %s/%d", a.Symbol(), a.Decimals())
			}
		})
	}
}

func TestAmountString(t *testing.T) {
	usdc, err := asset.NewAsset("usdc", "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", 6)
	if err != nil {
		t.Fatalf("NewAsset() error: %v", err)
	}

	amt, err := asset.FromHuman(usdc, decimal.RequireFromString("49.0000001"))
	if err != nil {
		t.Fatalf("FromHuman() error: %v", err)
	}
	if amt.Raw().Cmp(big.NewInt(49_000_000)) != 0 {
		t.Errorf("FromHuman truncation = %s", amt.Raw())
	}
	if !amt.ToDecimal().Equal(decimal.NewFromInt(49)) {
		t.Errorf("ToDecimal() = %s", amt.ToDecimal())
	}
	if amt.String() != "49 USDC" {
		t.Errorf("String() = %q", amt.String())
	}

	if _, err := asset.NewAmount(nil, big.NewInt(1)); !errors.Is(err, asset.ErrNilAsset) {
		t.Errorf("nil asset: err = %v", err)
	}
	if _, err := asset.NewAmount(usdc, big.NewInt(-1)); !errors.Is(err, asset.ErrNegativeAmount) {
		t.Errorf("negative raw: err = %v", err)
	}
}
