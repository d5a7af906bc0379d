package strategies

import (
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/fd1az/quote-engine/business/dex/domain"
)

const oneInchBaseURL = "https://api.1inch.dev/swap/v6.0"

// OneInch quotes through the 1inch swap API. Gas is reported in units.
func OneInch() domain.Strategy {
	return domain.Strategy{
		Name: "1inch",
		Build: func(p domain.Params) (domain.Request, error) {
			if err := checkAmount(p); err != nil {
				return domain.Request{}, err
			}
			q := url.Values{}
			q.Set("src", p.TokenIn.Address)
			q.Set("dst", p.TokenOut.Address)
			q.Set("amount", p.AmountIn.String())
			q.Set("includeGas", "true")

			headers := map[string]string{}
			if p.Credentials.APIKey != "" {
				headers["Authorization"] = "Bearer " + p.Credentials.APIKey
			}
			base := endpoint(p, oneInchBaseURL) + "/" + strconv.FormatUint(p.Chain.ID, 10) + "/quote"
			return get(withQuery(base, q), headers), nil
		},
		Parse: func(body []byte, p domain.Params) (domain.Quote, error) {
			var resp struct {
				DstAmount numeric `json:"dstAmount"`
				Gas       numeric `json:"gas"`
			}
			if err := json.Unmarshal(body, &resp); err != nil {
				return domain.Quote{}, err
			}
			return quote("1inch", resp.DstAmount, p, p.Gas.GasUnitsToUSD(resp.Gas.Float()), body)
		},
	}
}
