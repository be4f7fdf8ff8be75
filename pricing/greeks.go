package pricing

import (
	"fmt"
	"math"

	"github.com/bcdannyboy/dprice/models"
)

// DaysPerYear converts annual theta to the per-calendar-day theta reported by GreeksCalculator.
const DaysPerYear = 365.0

// GreeksCalculator computes analytic Black-Scholes sensitivities.
//
// Units: Vega per 1.00 change in volatility, Rho per 1.00 change in rate,
// Theta per calendar day (annual theta / DaysPerYear).
//
// At expiry (T == 0) Delta is the payoff step (0.5 at the strike for a call,
// -0.5 for a put) and Gamma, Vega, Theta and Rho are 0. With zero volatility
// N(d1) and N(d2) become the step of S - K*exp(-rT), so Gamma and Vega are 0
// and Theta and Rho keep only their discounting terms.
type GreeksCalculator struct {
	opts options
}

func NewGreeksCalculator(opts ...Option) *GreeksCalculator {
	return &GreeksCalculator{opts: newOptions(opts)}
}

func (gc *GreeksCalculator) Delta(p models.OptionParameters) (float64, error) {
	return gc.single(p, "delta", calculateDelta)
}

func (gc *GreeksCalculator) Gamma(p models.OptionParameters) (float64, error) {
	return gc.single(p, "gamma", calculateGamma)
}

func (gc *GreeksCalculator) Vega(p models.OptionParameters) (float64, error) {
	return gc.single(p, "vega", calculateVega)
}

// Theta is per calendar day.
func (gc *GreeksCalculator) Theta(p models.OptionParameters) (float64, error) {
	return gc.single(p, "theta", calculateTheta)
}

// ThetaAnnual is theta per year, the raw -dV/dT.
func (gc *GreeksCalculator) ThetaAnnual(p models.OptionParameters) (float64, error) {
	return gc.single(p, "theta", calculateAnnualTheta)
}

func (gc *GreeksCalculator) Rho(p models.OptionParameters) (float64, error) {
	return gc.single(p, "rho", calculateRho)
}

// All returns the five Greeks at once.
func (gc *GreeksCalculator) All(p models.OptionParameters) (models.Greeks, error) {
	p, err := models.Validate(p)
	if err != nil {
		return models.Greeks{}, fmt.Errorf("greeks: %w", err)
	}
	return calculateGreeks(p), nil
}

// AllVectorized computes the Greeks of every option in a batch validated up front.
func (gc *GreeksCalculator) AllVectorized(batch models.Batch) ([]models.Greeks, error) {
	batch, err := models.ValidateBatch(batch)
	if err != nil {
		return nil, fmt.Errorf("greeks batch: %w", err)
	}
	return evaluate(gc.opts, batch.Len(), func(i int) models.Greeks {
		return calculateGreeks(batch.At(i))
	})
}

func (gc *GreeksCalculator) single(p models.OptionParameters, name string, fn func(models.OptionParameters) float64) (float64, error) {
	p, err := models.Validate(p)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return fn(p), nil
}

func calculateGreeks(p models.OptionParameters) models.Greeks {
	return models.Greeks{
		Delta: calculateDelta(p),
		Gamma: calculateGamma(p),
		Vega:  calculateVega(p),
		Theta: calculateTheta(p),
		Rho:   calculateRho(p),
	}
}

func calculateDelta(p models.OptionParameters) float64 {
	var nd1 float64
	switch {
	case p.TimeToExpiry == 0:
		nd1 = expiryStep(p.Spot, p.Strike)
	case p.Volatility == 0:
		nd1 = forwardStep(p.Spot, p.Strike, p.TimeToExpiry, p.RiskFreeRate)
	default:
		d1, _, _ := d1d2(p.Spot, p.Strike, p.TimeToExpiry, p.RiskFreeRate, p.Volatility)
		nd1 = normCDF(d1)
	}

	if p.Type == models.Call {
		return nd1
	}
	return nd1 - 1
}

func calculateGamma(p models.OptionParameters) float64 {
	if p.TimeToExpiry == 0 || p.Volatility == 0 {
		return 0
	}
	d1, _, volSqrtT := d1d2(p.Spot, p.Strike, p.TimeToExpiry, p.RiskFreeRate, p.Volatility)
	return normPDF(d1) / (p.Spot * volSqrtT)
}

func calculateVega(p models.OptionParameters) float64 {
	if p.TimeToExpiry == 0 || p.Volatility == 0 {
		return 0
	}
	d1, _, _ := d1d2(p.Spot, p.Strike, p.TimeToExpiry, p.RiskFreeRate, p.Volatility)
	return p.Spot * normPDF(d1) * math.Sqrt(p.TimeToExpiry)
}

func calculateTheta(p models.OptionParameters) float64 {
	return calculateAnnualTheta(p) / DaysPerYear
}

func calculateAnnualTheta(p models.OptionParameters) float64 {
	S, K, T, r, sigma := p.Spot, p.Strike, p.TimeToExpiry, p.RiskFreeRate, p.Volatility
	if T == 0 {
		return 0
	}

	discountedStrike := K * math.Exp(-r*T)

	var decay, nd2 float64
	if sigma == 0 {
		nd2 = forwardStep(S, K, T, r)
	} else {
		d1, d2, _ := d1d2(S, K, T, r, sigma)
		decay = -(S * normPDF(d1) * sigma) / (2 * math.Sqrt(T))
		nd2 = normCDF(d2)
	}

	if p.Type == models.Call {
		return decay - r*discountedStrike*nd2
	}
	return decay + r*discountedStrike*(1-nd2)
}

func calculateRho(p models.OptionParameters) float64 {
	S, K, T, r, sigma := p.Spot, p.Strike, p.TimeToExpiry, p.RiskFreeRate, p.Volatility
	if T == 0 {
		return 0
	}

	var nd2 float64
	if sigma == 0 {
		nd2 = forwardStep(S, K, T, r)
	} else {
		_, d2, _ := d1d2(S, K, T, r, sigma)
		nd2 = normCDF(d2)
	}

	if p.Type == models.Call {
		return K * T * math.Exp(-r*T) * nd2
	}
	return -K * T * math.Exp(-r*T) * (1 - nd2)
}

// expiryStep is N(d1) at expiry: 1 in the money, 0 out of the money, 0.5 at the strike.
func expiryStep(S, K float64) float64 {
	switch {
	case S > K:
		return 1
	case S < K:
		return 0
	default:
		return 0.5
	}
}
