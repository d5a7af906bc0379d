// Package fx fetches stable-to-fiat rates from public REST endpoints.
package fx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/fd1az/quote-engine/business/marketdata/app"
	"github.com/fd1az/quote-engine/internal/apperror"
	"github.com/fd1az/quote-engine/internal/httpclient"
)

var (
	_ app.FxSource = (*ExchangeRateAPI)(nil)
	_ app.FxSource = (*Yahoo)(nil)
)

// ExchangeRateAPI reads rates[fiat] from an open.er-api.com style payload.
type ExchangeRateAPI struct {
	url    string
	client httpclient.Client
}

// NewExchangeRateAPI creates the source. url is the full USD latest endpoint.
func NewExchangeRateAPI(url string, client httpclient.Client) *ExchangeRateAPI {
	return &ExchangeRateAPI{url: url, client: client}
}

func (s *ExchangeRateAPI) Name() string { return "er-api" }

type erAPIResponse struct {
	Result string             `json:"result"`
	Rates  map[string]float64 `json:"rates"`
}

// Rate returns units of fiat per USD.
func (s *ExchangeRateAPI) Rate(ctx context.Context, fiat string) (float64, error) {
	fiat = strings.ToUpper(fiat)
	body, err := get(ctx, s.client, s.Name(), s.url)
	if err != nil {
		return 0, err
	}

	var resp erAPIResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, apperror.Parse(apperror.CodeFxRateFailed, s.Name(), err)
	}
	if resp.Result != "" && resp.Result != "success" {
		return 0, apperror.New(apperror.CodeFxRateFailed, apperror.WithContext(s.Name()+" result="+resp.Result))
	}
	rate, ok := resp.Rates[fiat]
	if !ok {
		return 0, apperror.New(apperror.CodeFxRateFailed, apperror.WithContext(s.Name()+" missing "+fiat))
	}
	return rate, nil
}

// Yahoo reads the regular market price of the USD<FIAT>=X chart.
type Yahoo struct {
	baseURL string
	client  httpclient.Client
}

// NewYahoo creates the source. baseURL ends at the chart path, the symbol is appended.
func NewYahoo(baseURL string, client httpclient.Client) *Yahoo {
	return &Yahoo{baseURL: baseURL, client: client}
}

func (s *Yahoo) Name() string { return "yahoo" }

type yahooResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice float64 `json:"regularMarketPrice"`
			} `json:"meta"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// Rate returns units of fiat per USD.
func (s *Yahoo) Rate(ctx context.Context, fiat string) (float64, error) {
	symbol := "USD" + strings.ToUpper(fiat) + "=X"
	u := strings.TrimSuffix(s.baseURL, "/") + "/" + url.PathEscape(symbol)

	body, err := get(ctx, s.client, s.Name(), u)
	if err != nil {
		return 0, err
	}

	var resp yahooResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, apperror.Parse(apperror.CodeFxRateFailed, s.Name(), err)
	}
	if resp.Chart.Error != nil {
		return 0, apperror.New(apperror.CodeFxRateFailed,
			apperror.WithContext(fmt.Sprintf("%s %s: %s", s.Name(), resp.Chart.Error.Code, resp.Chart.Error.Description)))
	}
	if len(resp.Chart.Result) == 0 {
		return 0, apperror.New(apperror.CodeFxRateFailed, apperror.WithContext(s.Name()+" empty result for "+symbol))
	}
	return resp.Chart.Result[0].Meta.RegularMarketPrice, nil
}

func get(ctx context.Context, client httpclient.Client, source, u string) ([]byte, error) {
	resp, err := client.NewRequestWithOptions(
		httpclient.WithLabels(
			httpclient.NewLabel("venue", source),
			httpclient.NewLabel("endpoint", "fx"),
		),
	).Get(ctx, u)
	if err != nil {
		return nil, apperror.Network(apperror.CodeFxRateFailed, source, err)
	}
	return resp.Body(), nil
}
