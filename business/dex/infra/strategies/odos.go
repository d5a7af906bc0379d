package strategies

import (
	"encoding/json"
	"net/http"

	"github.com/fd1az/quote-engine/business/dex/domain"
)

const odosBaseURL = "https://api.odos.xyz"

type odosToken struct {
	TokenAddress string  `json:"tokenAddress"`
	Amount       string  `json:"amount,omitempty"`
	Proportion   float64 `json:"proportion,omitempty"`
}

type odosQuoteRequest struct {
	ChainID              uint64      `json:"chainId"`
	InputTokens          []odosToken `json:"inputTokens"`
	OutputTokens         []odosToken `json:"outputTokens"`
	UserAddr             string      `json:"userAddr,omitempty"`
	SlippageLimitPercent float64     `json:"slippageLimitPercent"`
	Compact              bool        `json:"compact"`
}

// Odos quotes through the Odos SOR with a JSON POST body. Gas is in USD.
func Odos() domain.Strategy {
	return domain.Strategy{
		Name: "odos",
		Build: func(p domain.Params) (domain.Request, error) {
			if err := checkAmount(p); err != nil {
				return domain.Request{}, err
			}
			slippage := float64(p.SlippageBps) / 100
			if slippage <= 0 {
				slippage = 0.5
			}
			body, err := json.Marshal(odosQuoteRequest{
				ChainID:              p.Chain.ID,
				InputTokens:          []odosToken{{TokenAddress: p.TokenIn.Address, Amount: p.AmountIn.String()}},
				OutputTokens:         []odosToken{{TokenAddress: p.TokenOut.Address, Proportion: 1}},
				UserAddr:             p.UserAddress,
				SlippageLimitPercent: slippage,
				Compact:              true,
			})
			if err != nil {
				return domain.Request{}, err
			}
			return domain.Request{
				Method:  http.MethodPost,
				URL:     endpoint(p, odosBaseURL) + "/sor/quote/v2",
				Headers: map[string]string{"Content-Type": "application/json"},
				Body:    body,
			}, nil
		},
		Parse: func(body []byte, p domain.Params) (domain.Quote, error) {
			var resp struct {
				OutAmounts       []numeric `json:"outAmounts"`
				GasEstimateValue numeric   `json:"gasEstimateValue"`
				Detail           string    `json:"detail"`
			}
			if err := json.Unmarshal(body, &resp); err != nil {
				return domain.Quote{}, err
			}
			if len(resp.OutAmounts) == 0 {
				if resp.Detail != "" {
					return domain.Quote{}, &vendorError{Vendor: "odos", Message: resp.Detail}
				}
				return domain.Quote{}, errNoRoute
			}
			return quote("odos", resp.OutAmounts[0], p, resp.GasEstimateValue.Float(), body)
		},
	}
}
