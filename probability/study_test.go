package probability

import (
	"testing"

	"github.com/bcdannyboy/dprice/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvergence(t *testing.T) {
	p := params(100, 105, 0.25, 0.05, 0.2, models.Call)

	counts := []int{1000, 10000, 100000}
	if !testing.Short() {
		counts = append(counts, 1000000)
	}

	points, err := NewMonteCarloPricer(WithSeed(2024)).Convergence(p, counts)
	require.NoError(t, err)
	require.Len(t, points, len(counts))

	for i, pt := range points {
		assert.Equal(t, counts[i], pt.Simulations)
		assert.InDelta(t, 2.477901874073254, pt.BlackScholes, 1e-9)
		assert.LessOrEqual(t, pt.AbsError, 5*pt.StandardError, "n=%d", pt.Simulations)
		if i > 0 {
			// a tenfold increase in draws shrinks the standard error by about sqrt(10)
			assert.Less(t, pt.StandardError, points[i-1].StandardError)
		}
	}

	last := points[len(points)-1]
	assert.Less(t, last.RelError, 0.03)

	_, err = NewMonteCarloPricer().Convergence(p, []int{100, 0})
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestCoverage(t *testing.T) {
	if testing.Short() {
		t.Skip("coverage study is slow")
	}

	p := params(100, 105, 0.25, 0.05, 0.2, models.Call)

	var trials int
	mc := NewMonteCarloPricer(WithSeed(77), WithProgress(func() { trials++ }))
	report, err := mc.Coverage(p, 10000, 1000, 0.95)
	require.NoError(t, err)

	assert.Equal(t, 1000, trials)
	assert.Equal(t, 1000, report.Trials)
	// binomial sd of the hit count is about 7, so 920 is four sd below 950
	assert.GreaterOrEqual(t, report.Hits, 920)
	assert.InDelta(t, 0.95, report.Rate, 0.03)
	assert.InDelta(t, 0, report.MeanError, 0.008)
	assert.Greater(t, report.MeanStandardError, 0.0)
	assert.InDelta(t, report.MeanStandardError, report.MedianStandardError, 0.01)
}

func TestCoverageHundredTrials(t *testing.T) {
	p := params(100, 100, 1, 0.05, 0.2, models.Put)

	report, err := NewMonteCarloPricer(WithSeed(5)).Coverage(p, 5000, 100, 0.95, Antithetic())
	require.NoError(t, err)
	assert.Equal(t, 100, report.Trials)
	// 100 trials at 95% fall below 85 hits with probability under 1e-4
	assert.GreaterOrEqual(t, report.Hits, 85)
}

func TestCoverageValidation(t *testing.T) {
	p := params(100, 100, 1, 0.05, 0.2, models.Call)
	mc := NewMonteCarloPricer()

	_, err := mc.Coverage(p, 100, 0, 0.95)
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = mc.Coverage(p, 100, 10, 1.5)
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = mc.Coverage(p, 0, 10, 0.95)
	assert.ErrorIs(t, err, models.ErrValidation)
}
