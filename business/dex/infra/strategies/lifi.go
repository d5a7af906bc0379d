package strategies

import (
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/fd1az/quote-engine/business/dex/domain"
)

const lifiBaseURL = "https://li.quest/v1"

// LiFi quotes same-chain swaps through the LI.FI quote endpoint. Gas is the
// sum of the USD gas cost items.
func LiFi() domain.Strategy {
	return domain.Strategy{
		Name: "lifi",
		Build: func(p domain.Params) (domain.Request, error) {
			if err := checkAmount(p); err != nil {
				return domain.Request{}, err
			}
			chain := strconv.FormatUint(p.Chain.ID, 10)
			q := url.Values{}
			q.Set("fromChain", chain)
			q.Set("toChain", chain)
			q.Set("fromToken", p.TokenIn.Address)
			q.Set("toToken", p.TokenOut.Address)
			q.Set("fromAmount", p.AmountIn.String())
			q.Set("fromAddress", p.UserAddress)
			q.Set("slippage", decimalFraction(p.SlippageBps))

			headers := map[string]string{}
			if p.Credentials.APIKey != "" {
				headers["x-lifi-api-key"] = p.Credentials.APIKey
			}
			return get(withQuery(endpoint(p, lifiBaseURL)+"/quote", q), headers), nil
		},
		Parse: func(body []byte, p domain.Params) (domain.Quote, error) {
			var resp struct {
				Message  string `json:"message"`
				Estimate *struct {
					ToAmount numeric `json:"toAmount"`
					GasCosts []struct {
						AmountUSD numeric `json:"amountUSD"`
					} `json:"gasCosts"`
				} `json:"estimate"`
			}
			if err := json.Unmarshal(body, &resp); err != nil {
				return domain.Quote{}, err
			}
			if resp.Estimate == nil {
				if resp.Message != "" {
					return domain.Quote{}, &vendorError{Vendor: "lifi", Message: resp.Message}
				}
				return domain.Quote{}, errNoRoute
			}
			var gas float64
			for _, c := range resp.Estimate.GasCosts {
				gas += c.AmountUSD.Float()
			}
			return quote("lifi", resp.Estimate.ToAmount, p, gas, body)
		},
	}
}

func decimalFraction(bps int) string {
	if bps <= 0 {
		bps = 50
	}
	return strconv.FormatFloat(float64(bps)/10000, 'f', -1, 64)
}
