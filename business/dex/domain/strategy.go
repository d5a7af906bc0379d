// Package domain contains the quote-strategy contract shared by every DEX vendor.
package domain

import (
	"encoding/json"
	"math/big"
	"time"
)

// Strategy is a pure request builder and response parser for one vendor.
type Strategy struct {
	Name  string
	Build func(p Params) (Request, error)
	Parse func(body []byte, p Params) (Quote, error)
}

// Token is one side of a swap.
type Token struct {
	Symbol   string
	Address  string
	Decimals uint8
}

// Credentials are vendor secrets. They only ever travel in Params and
// request headers.
type Credentials struct {
	APIKey     string
	Secret     string
	Passphrase string
	ProjectID  string
}

// Chain carries the chain identity a vendor needs.
type Chain struct {
	Name          string
	ID            uint64
	KyberSlug     string
	OpenOceanSlug string
	RPCURL        string
	QuoterAddress string
}

// GasContext converts vendor gas figures to USD.
type GasContext struct {
	GweiPrice float64
	NativeUSD float64
}

// Params is everything a strategy needs to build one request.
type Params struct {
	Chain       Chain
	TokenIn     Token
	TokenOut    Token
	AmountIn    *big.Int
	UserAddress string
	SlippageBps int
	Credentials Credentials
	Gas         GasContext
	// BaseURL replaces the vendor's default endpoint root when set.
	BaseURL string
	Now     func() time.Time
}

// Timestamp returns p.Now() or the wall clock.
func (p Params) Timestamp() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

// Request is a fully built vendor call.
type Request struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    []byte
}

// Quote is a parsed vendor response. AmountOut is in human units of
// TokenOut and GasFeeUSD is always USD.
type Quote struct {
	AmountOut    float64
	AmountOutRaw *big.Int
	GasFeeUSD    float64
	Strategy     string
	Raw          json.RawMessage
}

// Valid reports whether the quote carries a positive output amount.
func (q *Quote) Valid() bool {
	return q != nil && q.AmountOut > 0
}
