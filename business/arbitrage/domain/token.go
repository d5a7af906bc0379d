package domain

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// StrategyKeys names the quote strategies for one direction.
type StrategyKeys struct {
	Primary     string `yaml:"primary"`
	Alternative string `yaml:"alternative"`
}

// Modal is the notional per direction, in the stable asset.
type Modal struct {
	CEXToDEX float64 `yaml:"cex_to_dex"`
	DEXToCEX float64 `yaml:"dex_to_cex"`
}

// Strategies overrides the venue strategy keys per direction.
type Strategies struct {
	CEXToDEX StrategyKeys `yaml:"cex_to_dex"`
	DEXToCEX StrategyKeys `yaml:"dex_to_cex"`
}

// DEXVenue is a token's settings for one DEX venue.
type DEXVenue struct {
	Enabled    bool       `yaml:"enabled"`
	Modal      Modal      `yaml:"modal"`
	Strategies Strategies `yaml:"strategies"`
}

// ModalFor returns the notional for d.
func (v DEXVenue) ModalFor(d Direction) float64 {
	if d == DirectionDEXToCEX {
		return v.Modal.DEXToCEX
	}
	return v.Modal.CEXToDEX
}

// StrategiesFor returns the strategy override for d.
func (v DEXVenue) StrategiesFor(d Direction) StrategyKeys {
	if d == DirectionDEXToCEX {
		return v.Strategies.DEXToCEX
	}
	return v.Strategies.CEXToDEX
}

// TokenDescriptor describes one token to scan. It is read-only input.
type TokenDescriptor struct {
	Symbol   string `yaml:"symbol"`
	Chain    string `yaml:"chain"`
	CEX      string `yaml:"cex"`
	CEXToken string `yaml:"cex_token"`
	CEXPair  string `yaml:"cex_pair"`

	TokenAddress  string `yaml:"token_address"`
	TokenDecimals uint8  `yaml:"token_decimals"`
	PairAddress   string `yaml:"pair_address"`
	PairDecimals  uint8  `yaml:"pair_decimals"`

	DEX map[string]DEXVenue `yaml:"dex"`

	TradingFee     *float64           `yaml:"trading_fee"`
	WithdrawalFees map[string]float64 `yaml:"withdrawal_fees"`
}

// TokenTicker is the CEX ticker of the token, defaulting to Symbol.
func (t TokenDescriptor) TokenTicker() string {
	if t.CEXToken != "" {
		return strings.ToUpper(t.CEXToken)
	}
	return strings.ToUpper(t.Symbol)
}

// PairTicker is the CEX ticker of the pair asset.
func (t TokenDescriptor) PairTicker() string {
	return strings.ToUpper(t.CEXPair)
}

// EnabledVenues returns the enabled DEX venue names.
func (t TokenDescriptor) EnabledVenues() []string {
	var out []string
	for name, v := range t.DEX {
		if v.Enabled {
			out = append(out, name)
		}
	}
	return out
}

// Validate checks the descriptor. evm selects hex address validation.
func (t TokenDescriptor) Validate(evm bool) error {
	switch {
	case strings.TrimSpace(t.Symbol) == "":
		return fmt.Errorf("symbol is required")
	case strings.TrimSpace(t.Chain) == "":
		return fmt.Errorf("%s: chain is required", t.Symbol)
	case strings.TrimSpace(t.CEX) == "":
		return fmt.Errorf("%s: cex is required", t.Symbol)
	case strings.TrimSpace(t.CEXPair) == "":
		return fmt.Errorf("%s: cex_pair is required", t.Symbol)
	case t.TokenAddress == "" || t.PairAddress == "":
		return fmt.Errorf("%s: token_address and pair_address are required", t.Symbol)
	}

	if evm {
		if !common.IsHexAddress(t.TokenAddress) {
			return fmt.Errorf("%s: invalid token_address %q", t.Symbol, t.TokenAddress)
		}
		if !common.IsHexAddress(t.PairAddress) {
			return fmt.Errorf("%s: invalid pair_address %q", t.Symbol, t.PairAddress)
		}
	}

	for name, v := range t.DEX {
		if !v.Enabled {
			continue
		}
		if v.Modal.CEXToDEX < 0 || v.Modal.DEXToCEX < 0 {
			return fmt.Errorf("%s: dex.%s modal must not be negative", t.Symbol, name)
		}
	}
	if t.TradingFee != nil && (*t.TradingFee < 0 || *t.TradingFee >= 1) {
		return fmt.Errorf("%s: trading_fee must be in [0, 1)", t.Symbol)
	}
	for sym, fee := range t.WithdrawalFees {
		if fee < 0 {
			return fmt.Errorf("%s: withdrawal_fees.%s must not be negative", t.Symbol, sym)
		}
	}
	return nil
}
