package models

// PricePoint is an analytic price.
type PricePoint struct {
	Price float64 `json:"price"`
}

// Interval is a two-sided confidence interval at Level.
type Interval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Level float64 `json:"level"`
}

// MonteCarloEstimate is a simulated price with the standard error of the estimator.
type MonteCarloEstimate struct {
	Price              float64   `json:"price"`
	StandardError      float64   `json:"standard_error"`
	ConfidenceInterval *Interval `json:"confidence_interval,omitempty"`
	Simulations        int       `json:"simulations"`
}

// Contains reports whether x lies inside the estimate's confidence interval.
func (e MonteCarloEstimate) Contains(x float64) bool {
	if e.ConfidenceInterval == nil {
		return false
	}
	return x >= e.ConfidenceInterval.Lower && x <= e.ConfidenceInterval.Upper
}

// Greek names used as keys by Greeks.Map.
const (
	GreekDelta = "delta"
	GreekGamma = "gamma"
	GreekVega  = "vega"
	GreekTheta = "theta"
	GreekRho   = "rho"
)

// Greeks holds the analytic sensitivities.
// Vega is per 1.00 of volatility, Rho per 1.00 of rate, Theta per calendar day.
type Greeks struct {
	Delta float64 `json:"delta" csv:"delta"`
	Gamma float64 `json:"gamma" csv:"gamma"`
	Vega  float64 `json:"vega" csv:"vega"`
	Theta float64 `json:"theta" csv:"theta"`
	Rho   float64 `json:"rho" csv:"rho"`
}

// Map returns the sensitivities keyed by Greek name; all five keys are always present.
func (g Greeks) Map() map[string]float64 {
	return map[string]float64{
		GreekDelta: g.Delta,
		GreekGamma: g.Gamma,
		GreekVega:  g.Vega,
		GreekTheta: g.Theta,
		GreekRho:   g.Rho,
	}
}
