package strategies

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/fd1az/quote-engine/business/dex/domain"
	"github.com/fd1az/quote-engine/internal/asset"
)

var (
	errNoAmount  = errors.New("amount in must be positive")
	errNoRoute   = errors.New("vendor returned no route")
	errMissing   = errors.New("required parameter missing")
	errBadAmount = errors.New("vendor amount is not an integer")
)

// vendorError is a structured rejection inside a 2xx response.
type vendorError struct {
	Vendor  string
	Code    string
	Message string
}

func (e *vendorError) Error() string {
	return fmt.Sprintf("%s rejected quote: code=%s %s", e.Vendor, e.Code, e.Message)
}

// numeric decodes JSON numbers and numeric strings alike.
type numeric string

func (n *numeric) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "null" {
		s = ""
	}
	*n = numeric(s)
	return nil
}

// Float returns the value or 0 when empty or malformed.
func (n numeric) Float() float64 {
	if n == "" {
		return 0
	}
	d, err := decimal.NewFromString(string(n))
	if err != nil {
		return 0
	}
	f, _ := d.Float64()
	return f
}

// Int parses an integer amount in base units.
func (n numeric) Int() (*big.Int, error) {
	if n == "" {
		return nil, errNoRoute
	}
	d, err := decimal.NewFromString(string(n))
	if err != nil || !d.Equal(d.Truncate(0)) {
		return nil, fmt.Errorf("%w: %q", errBadAmount, string(n))
	}
	return d.BigInt(), nil
}

func endpoint(p domain.Params, def string) string {
	if p.BaseURL != "" {
		return strings.TrimSuffix(p.BaseURL, "/")
	}
	return def
}

func withQuery(base string, q url.Values) string {
	return base + "?" + q.Encode()
}

func get(u string, headers map[string]string) domain.Request {
	return domain.Request{Method: http.MethodGet, URL: u, Headers: headers}
}

func checkAmount(p domain.Params) error {
	if p.AmountIn == nil || p.AmountIn.Sign() <= 0 {
		return errNoAmount
	}
	return nil
}

func require(values map[string]string) error {
	for k, v := range values {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("%w: %s", errMissing, k)
		}
	}
	return nil
}

// quote builds the domain quote from a base-unit output amount.
func quote(name string, raw numeric, p domain.Params, gasUSD float64, body []byte) (domain.Quote, error) {
	out, err := raw.Int()
	if err != nil {
		return domain.Quote{}, err
	}
	return quoteFromInt(name, out, p, gasUSD, body), nil
}

func quoteFromInt(name string, out *big.Int, p domain.Params, gasUSD float64, body []byte) domain.Quote {
	human, _ := asset.FromBaseUnits(out, p.TokenOut.Decimals).Float64()
	return domain.Quote{
		AmountOut:    human,
		AmountOutRaw: out,
		GasFeeUSD:    gasUSD,
		Strategy:     name,
		Raw:          json.RawMessage(body),
	}
}

func slippagePercent(bps int) string {
	if bps <= 0 {
		bps = 50
	}
	return decimal.New(int64(bps), -2).String()
}
