package strategies

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/fd1az/quote-engine/business/dex/domain"
)

const (
	okxBaseURL   = "https://web3.okx.com"
	okxQuotePath = "/api/v5/dex/aggregator/quote"
	okxTimeFmt   = "2006-01-02T15:04:05.000Z"
)

// OKX quotes through the OKX DEX aggregator. Requests are HMAC-SHA256 signed
// and gas is reported in units.
func OKX() domain.Strategy {
	return domain.Strategy{
		Name: "okx",
		Build: func(p domain.Params) (domain.Request, error) {
			if err := checkAmount(p); err != nil {
				return domain.Request{}, err
			}
			c := p.Credentials
			if err := require(map[string]string{
				"okx api key":    c.APIKey,
				"okx secret":     c.Secret,
				"okx passphrase": c.Passphrase,
			}); err != nil {
				return domain.Request{}, err
			}

			q := url.Values{}
			q.Set("chainIndex", strconv.FormatUint(p.Chain.ID, 10))
			q.Set("amount", p.AmountIn.String())
			q.Set("fromTokenAddress", p.TokenIn.Address)
			q.Set("toTokenAddress", p.TokenOut.Address)
			pathWithQuery := okxQuotePath + "?" + q.Encode()

			ts := p.Timestamp().UTC().Format(okxTimeFmt)
			headers := map[string]string{
				"OK-ACCESS-KEY":        c.APIKey,
				"OK-ACCESS-SIGN":       SignOKX(c.Secret, ts, http.MethodGet, pathWithQuery, ""),
				"OK-ACCESS-TIMESTAMP":  ts,
				"OK-ACCESS-PASSPHRASE": c.Passphrase,
			}
			if c.ProjectID != "" {
				headers["OK-ACCESS-PROJECT"] = c.ProjectID
			}
			return get(endpoint(p, okxBaseURL)+pathWithQuery, headers), nil
		},
		Parse: func(body []byte, p domain.Params) (domain.Quote, error) {
			var resp struct {
				Code string `json:"code"`
				Msg  string `json:"msg"`
				Data []struct {
					ToTokenAmount  numeric `json:"toTokenAmount"`
					EstimateGasFee numeric `json:"estimateGasFee"`
				} `json:"data"`
			}
			if err := json.Unmarshal(body, &resp); err != nil {
				return domain.Quote{}, err
			}
			if resp.Code != "" && resp.Code != "0" {
				return domain.Quote{}, &vendorError{Vendor: "okx", Code: resp.Code, Message: resp.Msg}
			}
			if len(resp.Data) == 0 {
				return domain.Quote{}, errNoRoute
			}
			d := resp.Data[0]
			return quote("okx", d.ToTokenAmount, p, p.Gas.GasUnitsToUSD(d.EstimateGasFee.Float()), body)
		},
	}
}

// SignOKX returns base64(HMAC-SHA256(secret, timestamp+method+requestPath+body)).
func SignOKX(secret, timestamp, method, requestPath, body string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp + method + requestPath + body))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
