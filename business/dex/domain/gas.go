package domain

// GasUnitsToUSD converts gas units at the context gas price.
func (g GasContext) GasUnitsToUSD(units float64) float64 {
	if units <= 0 {
		return 0
	}
	return units * g.GweiPrice * 1e-9 * g.NativeUSD
}

// WeiToUSD converts a native amount expressed in wei.
func (g GasContext) WeiToUSD(wei float64) float64 {
	if wei <= 0 {
		return 0
	}
	return wei * 1e-18 * g.NativeUSD
}
