package strategies

import (
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/fd1az/quote-engine/business/dex/domain"
)

const kyberBaseURL = "https://aggregator-api.kyberswap.com"

// KyberSwap quotes through the aggregator routes endpoint. Gas is in USD.
func KyberSwap() domain.Strategy {
	return domain.Strategy{
		Name: "kyberswap",
		Build: func(p domain.Params) (domain.Request, error) {
			if err := checkAmount(p); err != nil {
				return domain.Request{}, err
			}
			slug := p.Chain.KyberSlug
			if slug == "" {
				slug = p.Chain.Name
			}
			if err := require(map[string]string{"chain slug": slug}); err != nil {
				return domain.Request{}, err
			}
			q := url.Values{}
			q.Set("tokenIn", p.TokenIn.Address)
			q.Set("tokenOut", p.TokenOut.Address)
			q.Set("amountIn", p.AmountIn.String())
			q.Set("gasInclude", "true")

			headers := map[string]string{}
			if p.Credentials.APIKey != "" {
				headers["x-client-id"] = p.Credentials.APIKey
			}
			return get(withQuery(endpoint(p, kyberBaseURL)+"/"+slug+"/api/v1/routes", q), headers), nil
		},
		Parse: func(body []byte, p domain.Params) (domain.Quote, error) {
			var resp struct {
				Code    int    `json:"code"`
				Message string `json:"message"`
				Data    struct {
					RouteSummary *struct {
						AmountOut numeric `json:"amountOut"`
						GasUSD    numeric `json:"gasUsd"`
					} `json:"routeSummary"`
				} `json:"data"`
			}
			if err := json.Unmarshal(body, &resp); err != nil {
				return domain.Quote{}, err
			}
			if resp.Code != 0 {
				return domain.Quote{}, &vendorError{Vendor: "kyberswap", Code: strconv.Itoa(resp.Code), Message: resp.Message}
			}
			if resp.Data.RouteSummary == nil {
				return domain.Quote{}, errNoRoute
			}
			rs := resp.Data.RouteSummary
			return quote("kyberswap", rs.AmountOut, p, rs.GasUSD.Float(), body)
		},
	}
}
