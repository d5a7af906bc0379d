package strategies

import (
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/fd1az/quote-engine/business/dex/domain"
)

const zeroXBaseURL = "https://api.0x.org"

// ZeroX quotes through the 0x permit2 price endpoint. Network fee is in wei.
func ZeroX() domain.Strategy {
	return domain.Strategy{
		Name: "0x",
		Build: func(p domain.Params) (domain.Request, error) {
			if err := checkAmount(p); err != nil {
				return domain.Request{}, err
			}
			q := url.Values{}
			q.Set("chainId", strconv.FormatUint(p.Chain.ID, 10))
			q.Set("sellToken", p.TokenIn.Address)
			q.Set("buyToken", p.TokenOut.Address)
			q.Set("sellAmount", p.AmountIn.String())
			if p.UserAddress != "" {
				q.Set("taker", p.UserAddress)
			}

			headers := map[string]string{"0x-version": "v2"}
			if p.Credentials.APIKey != "" {
				headers["0x-api-key"] = p.Credentials.APIKey
			}
			return get(withQuery(endpoint(p, zeroXBaseURL)+"/swap/permit2/price", q), headers), nil
		},
		Parse: func(body []byte, p domain.Params) (domain.Quote, error) {
			var resp struct {
				LiquidityAvailable *bool   `json:"liquidityAvailable"`
				BuyAmount          numeric `json:"buyAmount"`
				Gas                numeric `json:"gas"`
				GasPrice           numeric `json:"gasPrice"`
				TotalNetworkFee    numeric `json:"totalNetworkFee"`
			}
			if err := json.Unmarshal(body, &resp); err != nil {
				return domain.Quote{}, err
			}
			if resp.LiquidityAvailable != nil && !*resp.LiquidityAvailable {
				return domain.Quote{}, errNoRoute
			}

			wei := resp.TotalNetworkFee.Float()
			if wei == 0 {
				wei = resp.Gas.Float() * resp.GasPrice.Float()
			}
			return quote("0x", resp.BuyAmount, p, p.Gas.WeiToUSD(wei), body)
		},
	}
}
