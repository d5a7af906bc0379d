package asset

import "strings"

// MaxDecimals bounds token precision; anything above is treated as a config error.
const MaxDecimals = 36

// Asset is the on-chain metadata needed to scale amounts for one token.
type Asset struct {
	symbol   string
	address  string
	decimals uint8
}

// NewAsset creates a new Asset.
func NewAsset(symbol, address string, decimals uint8) (*Asset, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return nil, ErrEmptySymbol
	}
	if decimals > MaxDecimals {
		return nil, ErrTooManyDecimals
	}
	return &Asset{
		symbol:   strings.ToUpper(symbol),
		address:  strings.TrimSpace(address),
		decimals: decimals,
	}, nil
}

// Symbol returns the ticker symbol (e.g., "ETH", "USDC").
func (a *Asset) Symbol() string {
	return a.symbol
}

// Address returns the contract address or mint as configured.
func (a *Asset) Address() string {
	return a.address
}

// Decimals returns the number of decimal places.
func (a *Asset) Decimals() uint8 {
	return a.decimals
}

func (a *Asset) String() string {
	return a.symbol
}
