package strategies

import (
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/fd1az/quote-engine/business/dex/domain"
)

const jupiterBaseURL = "https://lite-api.jup.ag/swap/v1"

// Jupiter quotes Solana swaps. Mints travel in Token.Address and the vendor
// reports no gas, so GasFeeUSD is 0.
func Jupiter() domain.Strategy {
	return domain.Strategy{
		Name: "jupiter",
		Build: func(p domain.Params) (domain.Request, error) {
			if err := checkAmount(p); err != nil {
				return domain.Request{}, err
			}
			bps := p.SlippageBps
			if bps <= 0 {
				bps = 50
			}
			q := url.Values{}
			q.Set("inputMint", p.TokenIn.Address)
			q.Set("outputMint", p.TokenOut.Address)
			q.Set("amount", p.AmountIn.String())
			q.Set("slippageBps", strconv.Itoa(bps))
			q.Set("swapMode", "ExactIn")

			headers := map[string]string{}
			if p.Credentials.APIKey != "" {
				headers["x-api-key"] = p.Credentials.APIKey
			}
			return get(withQuery(endpoint(p, jupiterBaseURL)+"/quote", q), headers), nil
		},
		Parse: func(body []byte, p domain.Params) (domain.Quote, error) {
			var resp struct {
				OutAmount numeric `json:"outAmount"`
				Error     string  `json:"error"`
				ErrorCode string  `json:"errorCode"`
			}
			if err := json.Unmarshal(body, &resp); err != nil {
				return domain.Quote{}, err
			}
			if resp.Error != "" {
				return domain.Quote{}, &vendorError{Vendor: "jupiter", Code: resp.ErrorCode, Message: resp.Error}
			}
			return quote("jupiter", resp.OutAmount, p, 0, body)
		},
	}
}
