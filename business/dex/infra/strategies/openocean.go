package strategies

import (
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/fd1az/quote-engine/business/dex/domain"
)

const openOceanBaseURL = "https://open-api.openocean.finance/v4"

// OpenOcean quotes through the v4 quote endpoint. Gas is reported in units.
func OpenOcean() domain.Strategy {
	return domain.Strategy{
		Name: "openocean",
		Build: func(p domain.Params) (domain.Request, error) {
			if err := checkAmount(p); err != nil {
				return domain.Request{}, err
			}
			slug := p.Chain.OpenOceanSlug
			if slug == "" {
				slug = strconv.FormatUint(p.Chain.ID, 10)
			}
			q := url.Values{}
			q.Set("inTokenAddress", p.TokenIn.Address)
			q.Set("outTokenAddress", p.TokenOut.Address)
			q.Set("amountDecimals", p.AmountIn.String())
			q.Set("gasPriceDecimals", gweiToWei(p.Gas.GweiPrice))
			q.Set("slippage", slippagePercent(p.SlippageBps))
			return get(withQuery(endpoint(p, openOceanBaseURL)+"/"+slug+"/quote", q), nil), nil
		},
		Parse: func(body []byte, p domain.Params) (domain.Quote, error) {
			var resp struct {
				Code int    `json:"code"`
				Msg  string `json:"error"`
				Data *struct {
					OutAmount    numeric `json:"outAmount"`
					EstimatedGas numeric `json:"estimatedGas"`
				} `json:"data"`
			}
			if err := json.Unmarshal(body, &resp); err != nil {
				return domain.Quote{}, err
			}
			if resp.Code != 0 && resp.Code != 200 {
				return domain.Quote{}, &vendorError{Vendor: "openocean", Code: strconv.Itoa(resp.Code), Message: resp.Msg}
			}
			if resp.Data == nil {
				return domain.Quote{}, errNoRoute
			}
			return quote("openocean", resp.Data.OutAmount, p, p.Gas.GasUnitsToUSD(resp.Data.EstimatedGas.Float()), body)
		},
	}
}

func gweiToWei(gwei float64) string {
	if gwei <= 0 {
		gwei = 1
	}
	return decimal.NewFromFloat(gwei).Shift(9).Truncate(0).String()
}
