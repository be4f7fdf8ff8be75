package models

import (
	"math"

	"golang.org/x/exp/rand"
)

// GeometricBrownianMotion is the risk-neutral GBM used by the Monte Carlo engine.
type GeometricBrownianMotion struct {
	R     float64 // Risk-free rate, also the risk-neutral drift
	Sigma float64 // Volatility
}

func NewGeometricBrownianMotion(r, sigma float64) *GeometricBrownianMotion {
	return &GeometricBrownianMotion{
		R:     r,
		Sigma: sigma,
	}
}

// SimulatePrice draws one terminal price after t years using steps log-normal increments.
// With one step this is S*exp((r - sigma^2/2)t + sigma*sqrt(t)*Z).
func (g *GeometricBrownianMotion) SimulatePrice(s0, t float64, steps int, rng *rand.Rand) float64 {
	w := g.brownian(t, steps, rng)
	return g.terminal(s0, t, w)
}

// SimulatePair draws one path and returns its terminal price together with the
// terminal price of the mirrored path (every increment negated).
func (g *GeometricBrownianMotion) SimulatePair(s0, t float64, steps int, rng *rand.Rand) (float64, float64) {
	w := g.brownian(t, steps, rng)
	return g.terminal(s0, t, w), g.terminal(s0, t, -w)
}

// brownian returns the scaled Brownian increment sigma*W(t) built from steps normal draws.
func (g *GeometricBrownianMotion) brownian(t float64, steps int, rng *rand.Rand) float64 {
	if steps <= 1 {
		return g.Sigma * math.Sqrt(t) * rng.NormFloat64()
	}

	dt := t / float64(steps)
	var z float64
	for i := 0; i < steps; i++ {
		z += rng.NormFloat64()
	}
	return g.Sigma * math.Sqrt(dt) * z
}

func (g *GeometricBrownianMotion) terminal(s0, t, w float64) float64 {
	return s0 * math.Exp((g.R-0.5*g.Sigma*g.Sigma)*t+w)
}
