package domain

// FxRate is the stable-to-fiat conversion rate.
type FxRate struct {
	Fiat   string
	Rate   float64
	Source string
}
