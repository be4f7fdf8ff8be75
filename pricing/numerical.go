package pricing

import (
	"fmt"

	"github.com/bcdannyboy/dprice/models"
	"gonum.org/v1/gonum/diff/fd"
)

const (
	spotStep  = 1e-4 // relative to spot
	gammaStep = 1e-3 // relative to spot
	volStep   = 1e-5
	rateStep  = 1e-5
	timeStep  = 1e-5
)

// NumericalGreeks estimates the Greeks by finite differences of the Black-Scholes price,
// in the same units as GreeksCalculator. Central differences are used except where
// volatility or expiry sits within one step of zero, which fall back to forward
// differences; the at-expiry conventions of GreeksCalculator are not applied.
func NumericalGreeks(p models.OptionParameters) (models.Greeks, error) {
	p, err := models.Validate(p)
	if err != nil {
		return models.Greeks{}, fmt.Errorf("numerical greeks: %w", err)
	}

	bySpot := func(x float64) float64 {
		q := p
		q.Spot = x
		return calculateOptionPrice(q)
	}
	byVol := func(x float64) float64 {
		q := p
		q.Volatility = x
		return calculateOptionPrice(q)
	}
	byRate := func(x float64) float64 {
		q := p
		q.RiskFreeRate = x
		return calculateOptionPrice(q)
	}
	byExpiry := func(x float64) float64 {
		q := p
		q.TimeToExpiry = x
		return calculateOptionPrice(q)
	}

	return models.Greeks{
		Delta: fd.Derivative(bySpot, p.Spot, &fd.Settings{Formula: fd.Central, Step: spotStep * p.Spot}),
		Gamma: fd.Derivative(bySpot, p.Spot, &fd.Settings{Formula: fd.Central2nd, Step: gammaStep * p.Spot}),
		Vega:  fd.Derivative(byVol, p.Volatility, boundedSettings(p.Volatility, volStep)),
		Theta: -fd.Derivative(byExpiry, p.TimeToExpiry, boundedSettings(p.TimeToExpiry, timeStep)) / DaysPerYear,
		Rho:   fd.Derivative(byRate, p.RiskFreeRate, &fd.Settings{Formula: fd.Central, Step: rateStep}),
	}, nil
}

// boundedSettings picks a forward difference when x is too close to its lower bound of zero.
func boundedSettings(x, step float64) *fd.Settings {
	if x < step {
		return &fd.Settings{Formula: fd.Forward, Step: step}
	}
	return &fd.Settings{Formula: fd.Central, Step: step}
}
