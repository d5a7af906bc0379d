// Package domain contains the core domain types for the arbitrage context.
package domain

// Direction represents the arbitrage trade direction.
type Direction string

const (
	// DirectionCEXToDEX means buy on the CEX, sell through the DEX.
	DirectionCEXToDEX Direction = "CEX_TO_DEX"

	// DirectionDEXToCEX means buy the pair on the CEX, swap it for the
	// token on the DEX and sell the token back on the CEX.
	DirectionDEXToCEX Direction = "DEX_TO_CEX"
)

// Directions lists both directions in evaluation order.
var Directions = []Direction{DirectionCEXToDEX, DirectionDEXToCEX}

// Key returns the configuration key for the direction.
func (d Direction) Key() string {
	switch d {
	case DirectionCEXToDEX:
		return "cex_to_dex"
	case DirectionDEXToCEX:
		return "dex_to_cex"
	default:
		return ""
	}
}

// String returns a human-readable description of the direction.
func (d Direction) String() string {
	switch d {
	case DirectionCEXToDEX:
		return "CEX → DEX (buy on CEX, sell on DEX)"
	case DirectionDEXToCEX:
		return "DEX → CEX (buy on DEX, sell on CEX)"
	default:
		return "Unknown"
	}
}

// ParseDirection accepts either the constant or the configuration key.
func ParseDirection(s string) (Direction, bool) {
	for _, d := range Directions {
		if s == string(d) || s == d.Key() {
			return d, true
		}
	}
	return "", false
}
