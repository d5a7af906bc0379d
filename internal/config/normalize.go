package config

import (
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// FeesConfig is the venue fee table, strictly numeric.
type FeesConfig struct {
	Venues map[string]VenueFees
}

// VenueFees holds one venue's trading-fee rate and per-symbol withdrawal fees.
// Withdrawal keys are upper-case symbols.
type VenueFees struct {
	TradingFee *float64
	Withdrawal map[string]float64
}

// DelayTable is the static delay configuration in milliseconds.
// Nil scalars and missing keys mean "not configured".
type DelayTable struct {
	CEX     map[string]float64
	DEX     map[string]float64
	Token   *float64
	Batch   *float64
	Timeout *float64
}

func normalizeFees(raw any) (FeesConfig, error) {
	out := FeesConfig{Venues: make(map[string]VenueFees)}
	if raw == nil {
		return out, nil
	}

	venues, err := cast.ToStringMapE(raw)
	if err != nil {
		return out, fmt.Errorf("fees.venues: %w", err)
	}

	for venue, rv := range venues {
		fields, err := cast.ToStringMapE(rv)
		if err != nil {
			return out, fmt.Errorf("fees.venues.%s: %w", venue, err)
		}

		vf := VenueFees{Withdrawal: make(map[string]float64)}
		if tf, ok := fields["trading_fee"]; ok {
			f, err := toNumber(tf)
			if err != nil {
				return out, fmt.Errorf("fees.venues.%s.trading_fee: %w", venue, err)
			}
			vf.TradingFee = &f
		}
		if wd, ok := fields["withdrawal"]; ok {
			table, err := cast.ToStringMapE(wd)
			if err != nil {
				return out, fmt.Errorf("fees.venues.%s.withdrawal: %w", venue, err)
			}
			for sym, val := range table {
				f, err := toNumber(val)
				if err != nil {
					return out, fmt.Errorf("fees.venues.%s.withdrawal.%s: %w", venue, sym, err)
				}
				vf.Withdrawal[strings.ToUpper(sym)] = f
			}
		}
		out.Venues[strings.ToLower(venue)] = vf
	}
	return out, nil
}

func normalizeDelays(v *viper.Viper) (DelayTable, error) {
	var (
		t   DelayTable
		err error
	)
	if t.CEX, err = numberMap(v.Get("delays.cex")); err != nil {
		return t, fmt.Errorf("delays.cex: %w", err)
	}
	if t.DEX, err = numberMap(v.Get("delays.dex")); err != nil {
		return t, fmt.Errorf("delays.dex: %w", err)
	}
	for key, dst := range map[string]**float64{
		"delays.token":   &t.Token,
		"delays.batch":   &t.Batch,
		"delays.timeout": &t.Timeout,
	} {
		if !v.IsSet(key) {
			continue
		}
		f, err := toNumber(v.Get(key))
		if err != nil {
			return t, fmt.Errorf("%s: %w", key, err)
		}
		*dst = &f
	}
	return t, nil
}

func numberMap(raw any) (map[string]float64, error) {
	out := make(map[string]float64)
	if raw == nil {
		return out, nil
	}
	m, err := cast.ToStringMapE(raw)
	if err != nil {
		return nil, err
	}
	for k, val := range m {
		f, err := toNumber(val)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
		out[strings.ToLower(k)] = f
	}
	return out, nil
}

// toNumber accepts numbers and numeric strings; anything else, NaN and
// negative values are rejected.
func toNumber(v any) (float64, error) {
	if s, ok := v.(string); ok {
		v = strings.TrimSpace(s)
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, fmt.Errorf("not numeric: %v", v)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0, fmt.Errorf("out of range: %v", v)
	}
	return f, nil
}
