package strategies

import (
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/fd1az/quote-engine/business/dex/domain"
)

const paraswapBaseURL = "https://api.paraswap.io"

// Paraswap quotes through the Velora (ParaSwap) prices endpoint. Gas is in USD.
func Paraswap() domain.Strategy {
	return domain.Strategy{
		Name: "paraswap",
		Build: func(p domain.Params) (domain.Request, error) {
			if err := checkAmount(p); err != nil {
				return domain.Request{}, err
			}
			q := url.Values{}
			q.Set("srcToken", p.TokenIn.Address)
			q.Set("srcDecimals", strconv.Itoa(int(p.TokenIn.Decimals)))
			q.Set("destToken", p.TokenOut.Address)
			q.Set("destDecimals", strconv.Itoa(int(p.TokenOut.Decimals)))
			q.Set("amount", p.AmountIn.String())
			q.Set("side", "SELL")
			q.Set("network", strconv.FormatUint(p.Chain.ID, 10))
			q.Set("version", "6.2")
			return get(withQuery(endpoint(p, paraswapBaseURL)+"/prices", q), nil), nil
		},
		Parse: func(body []byte, p domain.Params) (domain.Quote, error) {
			var resp struct {
				Error      string `json:"error"`
				PriceRoute *struct {
					DestAmount numeric `json:"destAmount"`
					GasCostUSD numeric `json:"gasCostUSD"`
				} `json:"priceRoute"`
			}
			if err := json.Unmarshal(body, &resp); err != nil {
				return domain.Quote{}, err
			}
			if resp.Error != "" {
				return domain.Quote{}, &vendorError{Vendor: "paraswap", Message: resp.Error}
			}
			if resp.PriceRoute == nil {
				return domain.Quote{}, errNoRoute
			}
			return quote("paraswap", resp.PriceRoute.DestAmount, p, resp.PriceRoute.GasCostUSD.Float(), body)
		},
	}
}
