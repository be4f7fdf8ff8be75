package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGreeksMap(t *testing.T) {
	m := Greeks{Delta: 0.5, Gamma: 0.01, Vega: 20, Theta: -0.03, Rho: 8}.Map()
	assert.Len(t, m, 5)
	for _, k := range []string{GreekDelta, GreekGamma, GreekVega, GreekTheta, GreekRho} {
		assert.Contains(t, m, k)
	}
	assert.Equal(t, 20.0, m["vega"])
}

func TestMonteCarloEstimateContains(t *testing.T) {
	e := MonteCarloEstimate{Price: 10, StandardError: 0.1, ConfidenceInterval: &Interval{Lower: 9.8, Upper: 10.2, Level: 0.95}}
	assert.True(t, e.Contains(10.1))
	assert.False(t, e.Contains(10.3))
	assert.False(t, MonteCarloEstimate{Price: 10}.Contains(10))
}
