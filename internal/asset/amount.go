package asset

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

var (
	ErrNilAsset        = errors.New("asset: nil asset")
	ErrEmptySymbol     = errors.New("asset: empty symbol")
	ErrNegativeAmount  = errors.New("asset: negative amount")
	ErrTooManyDecimals = errors.New("asset: too many decimal places for asset")
	ErrNotFinite       = errors.New("asset: amount is not finite")
)

// Amount is an immutable quantity in the asset's smallest unit.
type Amount struct {
	raw   *big.Int
	asset *Asset
}

// NewAmount creates an Amount from base units.
func NewAmount(asset *Asset, raw *big.Int) (Amount, error) {
	if asset == nil {
		return Amount{}, ErrNilAsset
	}
	if raw == nil || raw.Sign() < 0 {
		return Amount{}, ErrNegativeAmount
	}
	return Amount{raw: new(big.Int).Set(raw), asset: asset}, nil
}

// FromHuman scales a human-readable amount down to base units, truncating
// precision beyond the asset's decimals.
func FromHuman(asset *Asset, human decimal.Decimal) (Amount, error) {
	if asset == nil {
		return Amount{}, ErrNilAsset
	}
	if human.IsNegative() {
		return Amount{}, ErrNegativeAmount
	}
	return NewAmount(asset, ToBaseUnits(human, asset.Decimals()))
}

// FromFloat is FromHuman for a float amount, converted through its shortest
// decimal representation so 1.23456789 at 8 decimals is exactly 123456789.
func FromFloat(asset *Asset, human float64) (Amount, error) {
	d, err := floatDecimal(human)
	if err != nil {
		return Amount{}, err
	}
	return FromHuman(asset, d)
}

// ToBaseUnits returns floor(human * 10^decimals) computed with exact decimal
// shifting. Negative input yields zero.
func ToBaseUnits(human decimal.Decimal, decimals uint8) *big.Int {
	if human.Sign() <= 0 {
		return big.NewInt(0)
	}
	return human.Shift(int32(decimals)).Truncate(0).BigInt()
}

// FromBaseUnits divides raw by 10^decimals exactly.
func FromBaseUnits(raw *big.Int, decimals uint8) decimal.Decimal {
	if raw == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(raw, -int32(decimals))
}

// Raw returns a copy of the base-unit value.
func (a Amount) Raw() *big.Int {
	if a.raw == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(a.raw)
}

// IsZero returns true if the amount is zero.
func (a Amount) IsZero() bool {
	return a.raw == nil || a.raw.Sign() == 0
}

// ToDecimal converts the amount back to human units.
func (a Amount) ToDecimal() decimal.Decimal {
	if a.raw == nil || a.asset == nil {
		return decimal.Zero
	}
	return FromBaseUnits(a.raw, a.asset.Decimals())
}

// String returns e.g. "1.5 ETH".
func (a Amount) String() string {
	if a.asset == nil {
		return "0 ???"
	}
	return fmt.Sprintf("%s %s", a.ToDecimal().String(), a.asset.Symbol())
}

func floatDecimal(f float64) (d decimal.Decimal, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = ErrNotFinite
		}
	}()
	return decimal.NewFromFloat(f), nil
}
