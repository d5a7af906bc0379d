package orderbook

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/fd1az/quote-engine/business/pricing/domain"
)

// Profile names one response shape family.
type Profile string

const (
	// ProfileStandard: top-level "bids" / "asks".
	ProfileStandard Profile = "standard"
	// ProfileNestedData: book inside a "data" object, a one-element "data"
	// array, or a "tick" object.
	ProfileNestedData Profile = "nested_data"
	// ProfileResultShortKeys: book under "result" with "b" / "a" keys.
	ProfileResultShortKeys Profile = "result_short_keys"
	// ProfileDualFieldLegacy: "bids|buy" and "asks|sell", tuple or object levels.
	ProfileDualFieldLegacy Profile = "dual_field_legacy"
)

// venueProfiles is used when a venue has no configured profile.
var venueProfiles = map[string]Profile{
	"binance": ProfileStandard,
	"mexc":    ProfileStandard,
	"gate":    ProfileStandard,
	"okx":     ProfileNestedData,
	"kucoin":  ProfileNestedData,
	"bitget":  ProfileNestedData,
	"htx":     ProfileNestedData,
	"bybit":   ProfileResultShortKeys,
	"indodax": ProfileDualFieldLegacy,
}

var (
	errMissingSides   = errors.New("payload has no bids/asks fields")
	errEmptyEnvelope  = errors.New("payload envelope is empty")
	errVendorRejected = errors.New("vendor rejected request")
	errBadLevel       = errors.New("malformed level")
)

// ResolveProfile picks the configured profile, then the built-in venue
// table, then standard.
func ResolveProfile(venue, configured string) Profile {
	switch p := Profile(strings.ToLower(strings.TrimSpace(configured))); p {
	case ProfileStandard, ProfileNestedData, ProfileResultShortKeys, ProfileDualFieldLegacy:
		return p
	}
	if p, ok := venueProfiles[strings.ToLower(venue)]; ok {
		return p
	}
	return ProfileStandard
}

// Parse decodes body according to profile.
func Parse(profile Profile, body []byte) (bids, asks []domain.Level, err error) {
	switch profile {
	case ProfileNestedData:
		return parseNested(body)
	case ProfileResultShortKeys:
		return parseResult(body)
	case ProfileDualFieldLegacy:
		return parseLegacy(body)
	default:
		return parseStandard(body)
	}
}

type sides struct {
	Bids json.RawMessage `json:"bids"`
	Asks json.RawMessage `json:"asks"`
}

func parseStandard(body []byte) ([]domain.Level, []domain.Level, error) {
	var s sides
	if err := json.Unmarshal(body, &s); err != nil {
		return nil, nil, err
	}
	return decodeSides(s.Bids, s.Asks)
}

func parseNested(body []byte) ([]domain.Level, []domain.Level, error) {
	var env struct {
		Data json.RawMessage `json:"data"`
		Tick json.RawMessage `json:"tick"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, nil, err
	}

	inner := env.Data
	if isNull(inner) {
		inner = env.Tick
	}
	if isNull(inner) {
		return nil, nil, errEmptyEnvelope
	}

	if trimmed := bytes.TrimSpace(inner); len(trimmed) > 0 && trimmed[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, nil, err
		}
		if len(items) == 0 {
			return nil, nil, errEmptyEnvelope
		}
		inner = items[0]
	}

	return parseStandard(inner)
}

func parseResult(body []byte) ([]domain.Level, []domain.Level, error) {
	var env struct {
		RetCode *int   `json:"retCode"`
		RetMsg  string `json:"retMsg"`
		Result  struct {
			B json.RawMessage `json:"b"`
			A json.RawMessage `json:"a"`
		} `json:"result"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, nil, err
	}
	if env.RetCode != nil && *env.RetCode != 0 {
		return nil, nil, fmt.Errorf("%w: %d %s", errVendorRejected, *env.RetCode, env.RetMsg)
	}
	return decodeSides(env.Result.B, env.Result.A)
}

func parseLegacy(body []byte) ([]domain.Level, []domain.Level, error) {
	var env struct {
		Bids json.RawMessage `json:"bids"`
		Buy  json.RawMessage `json:"buy"`
		Asks json.RawMessage `json:"asks"`
		Sell json.RawMessage `json:"sell"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, nil, err
	}

	bids := env.Bids
	if isNull(bids) {
		bids = env.Buy
	}
	asks := env.Asks
	if isNull(asks) {
		asks = env.Sell
	}
	return decodeSides(bids, asks)
}

func decodeSides(rawBids, rawAsks json.RawMessage) ([]domain.Level, []domain.Level, error) {
	if isNull(rawBids) && isNull(rawAsks) {
		return nil, nil, errMissingSides
	}
	bids, err := decodeLevels(rawBids)
	if err != nil {
		return nil, nil, fmt.Errorf("bids: %w", err)
	}
	asks, err := decodeLevels(rawAsks)
	if err != nil {
		return nil, nil, fmt.Errorf("asks: %w", err)
	}
	return bids, asks, nil
}

func decodeLevels(raw json.RawMessage) ([]domain.Level, error) {
	if isNull(raw) {
		return nil, nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}

	levels := make([]domain.Level, 0, len(items))
	for _, item := range items {
		lv, err := decodeLevel(item)
		if err != nil {
			return nil, err
		}
		levels = append(levels, lv)
	}
	return levels, nil
}

// decodeLevel accepts [price, qty, ...] tuples and {price, quantity|amount|size} objects.
func decodeLevel(raw json.RawMessage) (domain.Level, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return domain.Level{}, errBadLevel
	}

	if trimmed[0] == '[' {
		var tuple []json.RawMessage
		if err := json.Unmarshal(trimmed, &tuple); err != nil {
			return domain.Level{}, err
		}
		if len(tuple) < 2 {
			return domain.Level{}, errBadLevel
		}
		return levelFrom(tuple[0], tuple[1])
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return domain.Level{}, err
	}
	price := firstOf(obj, "price", "p")
	qty := firstOf(obj, "quantity", "amount", "size", "qty", "q")
	if price == nil || qty == nil {
		return domain.Level{}, errBadLevel
	}
	return levelFrom(price, qty)
}

func levelFrom(rawPrice, rawQty json.RawMessage) (domain.Level, error) {
	price, err := number(rawPrice)
	if err != nil {
		return domain.Level{}, err
	}
	qty, err := number(rawQty)
	if err != nil {
		return domain.Level{}, err
	}
	return domain.Level{Price: price, Quantity: qty}, nil
}

// number decodes a JSON string or number.
func number(raw json.RawMessage) (float64, error) {
	s := strings.Trim(string(bytes.TrimSpace(raw)), `"`)
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", errBadLevel, s)
	}
	f, _ := d.Float64()
	return f, nil
}

func firstOf(obj map[string]json.RawMessage, keys ...string) json.RawMessage {
	for _, k := range keys {
		if v, ok := obj[k]; ok && !isNull(v) {
			return v
		}
	}
	return nil
}

func isNull(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}
