// Package binance syncs Binance withdrawal fees through the wallet API.
package binance

import (
	"context"
	"strings"

	gbinance "github.com/adshao/go-binance/v2"
	"github.com/shopspring/decimal"

	"github.com/fd1az/quote-engine/business/fees/app"
	"github.com/fd1az/quote-engine/internal/apperror"
)

const venue = "binance"

// Ensure WithdrawalSync implements WithdrawalSource.
var _ app.WithdrawalSource = (*WithdrawalSync)(nil)

// WithdrawalSync reads per-coin withdrawal fees. The endpoint is signed, so
// it needs an API key pair with read permission.
type WithdrawalSync struct {
	client  *gbinance.Client
	network string
}

// NewWithdrawalSync creates the source. network selects the withdrawal
// network (e.g. "ETH", "ARBITRUM"); empty uses each coin's default network.
// A non-empty baseURL replaces the production API host.
func NewWithdrawalSync(apiKey, secret, baseURL, network string) *WithdrawalSync {
	client := gbinance.NewClient(apiKey, secret)
	if baseURL != "" {
		client.BaseURL = strings.TrimSuffix(baseURL, "/")
	}
	return &WithdrawalSync{client: client, network: strings.ToUpper(network)}
}

func (s *WithdrawalSync) Venue() string { return venue }

// WithdrawalFees returns the fee for every coin with withdrawals enabled on
// the selected network.
func (s *WithdrawalSync) WithdrawalFees(ctx context.Context) (map[string]float64, error) {
	coins, err := s.client.NewGetAllCoinsInfoService().Do(ctx)
	if err != nil {
		return nil, apperror.Network(apperror.CodeFeeSyncFailed, venue, err)
	}

	out := make(map[string]float64, len(coins))
	for _, coin := range coins {
		n, ok := s.pick(coin.NetworkList)
		if !ok {
			continue
		}
		fee, err := decimal.NewFromString(n.WithdrawFee)
		if err != nil || fee.IsNegative() {
			continue
		}
		out[strings.ToUpper(coin.Coin)] = fee.InexactFloat64()
	}
	return out, nil
}

func (s *WithdrawalSync) pick(networks []gbinance.Network) (gbinance.Network, bool) {
	var fallback *gbinance.Network
	for i := range networks {
		n := networks[i]
		if !n.WithdrawEnable {
			continue
		}
		if s.network != "" && strings.EqualFold(n.Network, s.network) {
			return n, true
		}
		if n.IsDefault && fallback == nil {
			fallback = &networks[i]
		}
	}
	if fallback != nil && s.network == "" {
		return *fallback, true
	}
	return gbinance.Network{}, false
}
