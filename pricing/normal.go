package pricing

import (
	"math"

	"github.com/bcdannyboy/dprice/models"
	"gonum.org/v1/gonum/stat/distuv"
)

// normCDF is the standard normal cumulative distribution.
func normCDF(x float64) float64 {
	return distuv.UnitNormal.CDF(x)
}

// normPDF is the standard normal density.
func normPDF(x float64) float64 {
	return distuv.UnitNormal.Prob(x)
}

// D1D2 returns the Black-Scholes d1 and d2 terms. Degenerate inputs
// (zero expiry or zero volatility) have no finite d terms and return (0, 0).
func D1D2(p models.OptionParameters) (float64, float64) {
	if p.TimeToExpiry <= 0 || p.Volatility <= 0 {
		return 0, 0
	}
	d1, d2, _ := d1d2(p.Spot, p.Strike, p.TimeToExpiry, p.RiskFreeRate, p.Volatility)
	return d1, d2
}

// d1d2 also returns sigma*sqrt(T). Callers must ensure T > 0 and sigma > 0.
func d1d2(S, K, T, r, sigma float64) (float64, float64, float64) {
	volSqrtT := sigma * math.Sqrt(T)
	d1 := (math.Log(S/K) + (r+0.5*sigma*sigma)*T) / volSqrtT
	d2 := d1 - volSqrtT
	return d1, d2, volSqrtT
}

// forwardStep is the sigma -> 0 limit of N(d1) and N(d2): 1 when the spot is above
// the discounted strike, 0 below, 0.5 on the boundary.
func forwardStep(S, K, T, r float64) float64 {
	diff := S - K*math.Exp(-r*T)
	switch {
	case diff > 0:
		return 1
	case diff < 0:
		return 0
	default:
		return 0.5
	}
}
