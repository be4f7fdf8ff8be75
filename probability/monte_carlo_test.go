package probability

import (
	"errors"
	"math"
	"testing"

	"github.com/bcdannyboy/dprice/models"
	"github.com/bcdannyboy/dprice/pricing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func params(S, K, T, r, sigma float64, typ models.OptionType) models.OptionParameters {
	return models.OptionParameters{Spot: S, Strike: K, TimeToExpiry: T, RiskFreeRate: r, Volatility: sigma, Type: typ}
}

func blackScholes(t *testing.T, p models.OptionParameters) float64 {
	t.Helper()
	out, err := pricing.NewBlackScholesPricer().Price(p)
	require.NoError(t, err)
	return out.Price
}

func TestMonteCarloPrice(t *testing.T) {
	reference := params(100, 105, 0.25, 0.05, 0.2, models.Call)

	t.Run("close to the closed form", func(t *testing.T) {
		mc := NewMonteCarloPricer(WithSeed(42))
		est, err := mc.Price(reference, 200000)
		require.NoError(t, err)

		assert.Equal(t, 200000, est.Simulations)
		assert.Greater(t, est.StandardError, 0.0)
		// five standard errors keeps this deterministic-seed check far from the tail
		assert.InDelta(t, 2.477901874073254, est.Price, 5*est.StandardError)
	})

	t.Run("same seed reproduces the estimate", func(t *testing.T) {
		a, err := NewMonteCarloPricer(WithSeed(7)).Price(reference, 5000)
		require.NoError(t, err)
		b, err := NewMonteCarloPricer(WithSeed(7)).Price(reference, 5000)
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})

	t.Run("reseed replays the stream", func(t *testing.T) {
		mc := NewMonteCarloPricer(WithSeed(11))
		first, err := mc.Price(reference, 3000)
		require.NoError(t, err)
		second, err := mc.Price(reference, 3000)
		require.NoError(t, err)
		assert.NotEqual(t, first.Price, second.Price)

		mc.Reseed(11)
		replay, err := mc.Price(reference, 3000)
		require.NoError(t, err)
		assert.Equal(t, first, replay)
	})

	t.Run("expired option is its intrinsic value", func(t *testing.T) {
		mc := NewMonteCarloPricer(WithSeed(1))
		est, err := mc.Price(params(110, 100, 0, 0.05, 0.2, models.Call), 1000)
		require.NoError(t, err)
		assert.Equal(t, 10.0, est.Price)
		assert.Zero(t, est.StandardError)

		est, err = mc.Price(params(100, 100, 0, 0.05, 0.2, models.Call), 1000)
		require.NoError(t, err)
		assert.Zero(t, est.Price)
		assert.Zero(t, est.StandardError)
	})

	t.Run("zero volatility is deterministic and draws nothing", func(t *testing.T) {
		mc := NewMonteCarloPricer(WithSeed(3))
		est, err := mc.Price(params(100, 100, 1, 0.05, 0, models.Call), 1000)
		require.NoError(t, err)
		assert.InDelta(t, 4.877057549928594, est.Price, 1e-12)
		assert.Zero(t, est.StandardError)

		after, err := mc.Price(reference, 2000)
		require.NoError(t, err)
		fresh, err := NewMonteCarloPricer(WithSeed(3)).Price(reference, 2000)
		require.NoError(t, err)
		assert.Equal(t, fresh, after)
	})

	t.Run("single draw has no dispersion", func(t *testing.T) {
		est, err := NewMonteCarloPricer(WithSeed(5)).Price(reference, 1)
		require.NoError(t, err)
		assert.Zero(t, est.StandardError)
		assert.GreaterOrEqual(t, est.Price, 0.0)
	})

	t.Run("invalid simulation count", func(t *testing.T) {
		_, err := NewMonteCarloPricer().Price(reference, 0)
		var ve *models.ValidationError
		require.True(t, errors.As(err, &ve))
		assert.Equal(t, "numSimulations", ve.Field)
	})

	t.Run("invalid parameters", func(t *testing.T) {
		_, err := NewMonteCarloPricer().Price(params(100, 100, 1, math.NaN(), 0.2, models.Put), 10)
		assert.ErrorIs(t, err, models.ErrValidation)
	})

	t.Run("overflowing simulated prices are rejected", func(t *testing.T) {
		for _, p := range []models.OptionParameters{
			params(100, 100, 1500, 0.5, 0.2, models.Call),
			params(1e308, 100, 1, 0.05, 0.2, models.Call),
		} {
			est, err := NewMonteCarloPricer(WithSeed(1)).Price(p, 1000)
			assert.ErrorIs(t, err, models.ErrValidation)
			assert.Zero(t, est)
		}
	})
}

func TestAntithetic(t *testing.T) {
	p := params(100, 100, 1, 0.05, 0.2, models.Call)

	plain, err := NewMonteCarloPricer(WithSeed(99)).Price(p, 50000)
	require.NoError(t, err)
	paired, err := NewMonteCarloPricer(WithSeed(99)).Price(p, 50000, Antithetic())
	require.NoError(t, err)

	assert.Equal(t, 50000, paired.Simulations)
	assert.Less(t, paired.StandardError, plain.StandardError)
	assert.InDelta(t, 10.450583572185565, paired.Price, 5*paired.StandardError)
}

func TestTimeSteps(t *testing.T) {
	p := params(100, 95, 0.5, 0.03, 0.3, models.Put)

	est, err := NewMonteCarloPricer(WithSeed(8)).Price(p, 20000, TimeSteps(12))
	require.NoError(t, err)
	assert.InDelta(t, blackScholes(t, p), est.Price, 5*est.StandardError)

	// one step is the exact terminal draw
	single, err := NewMonteCarloPricer(WithSeed(8)).Price(p, 1000, TimeSteps(1))
	require.NoError(t, err)
	plain, err := NewMonteCarloPricer(WithSeed(8)).Price(p, 1000)
	require.NoError(t, err)
	assert.Equal(t, plain, single)
}

func TestPriceWithConfidenceInterval(t *testing.T) {
	p := params(100, 105, 0.25, 0.05, 0.2, models.Call)

	t.Run("interval brackets the estimate", func(t *testing.T) {
		est, err := NewMonteCarloPricer(WithSeed(21)).PriceWithConfidenceInterval(p, 10000, 0.95)
		require.NoError(t, err)
		require.NotNil(t, est.ConfidenceInterval)

		ci := est.ConfidenceInterval
		assert.Equal(t, 0.95, ci.Level)
		assert.LessOrEqual(t, ci.Lower, est.Price)
		assert.GreaterOrEqual(t, ci.Upper, est.Price)
		assert.InDelta(t, 2*1.959963984540054*est.StandardError, ci.Upper-ci.Lower, 1e-9)
	})

	t.Run("wider level gives a wider interval", func(t *testing.T) {
		narrow, err := NewMonteCarloPricer(WithSeed(4)).PriceWithConfidenceInterval(p, 2000, 0.9)
		require.NoError(t, err)
		wide, err := NewMonteCarloPricer(WithSeed(4)).PriceWithConfidenceInterval(p, 2000, 0.99)
		require.NoError(t, err)
		assert.Equal(t, narrow.Price, wide.Price)
		assert.Greater(t, wide.ConfidenceInterval.Upper-wide.ConfidenceInterval.Lower,
			narrow.ConfidenceInterval.Upper-narrow.ConfidenceInterval.Lower)
	})

	t.Run("invalid level is rejected before any draw", func(t *testing.T) {
		mc := NewMonteCarloPricer(WithSeed(6))
		for _, level := range []float64{0, 1, 1.2, -0.1} {
			_, err := mc.PriceWithConfidenceInterval(p, 100, level)
			var ve *models.ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, "confidenceLevel", ve.Field)
		}

		got, err := mc.Price(p, 500)
		require.NoError(t, err)
		want, err := NewMonteCarloPricer(WithSeed(6)).Price(p, 500)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})
}

func TestMonteCarloPutCallParity(t *testing.T) {
	p := params(100, 100, 1, 0.05, 0.25, models.Call)
	call, err := NewMonteCarloPricer(WithSeed(31)).PriceWithConfidenceInterval(p, 200000, 0.99)
	require.NoError(t, err)

	p.Type = models.Put
	put, err := NewMonteCarloPricer(WithSeed(32)).PriceWithConfidenceInterval(p, 200000, 0.99)
	require.NoError(t, err)

	forward := 100 - 100*math.Exp(-0.05)
	// the difference of independent estimates has sd sqrt(se1^2 + se2^2)
	tolerance := 4 * math.Hypot(call.StandardError, put.StandardError)
	assert.InDelta(t, forward, call.Price-put.Price, tolerance)
}

func TestMonteCarloPriceVectorized(t *testing.T) {
	batch := models.NewBatch(
		[]float64{90, 100, 110},
		[]float64{100, 100, 100},
		[]float64{0.5, 0, 1},
		[]float64{0.2, 0.3, 0.25},
		0.04, models.Put,
	)

	var ticks int
	mc := NewMonteCarloPricer(WithSeed(17), WithProgress(func() { ticks++ }))
	out, err := mc.PriceVectorized(batch, 4000)
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, 3, ticks)
	assert.Equal(t, 0.0, out[1].Price)

	// the same calls in order on a fresh stream give the same estimates
	ref := NewMonteCarloPricer(WithSeed(17))
	for i := 0; i < batch.Len(); i++ {
		want, err := ref.Price(batch.At(i), 4000)
		require.NoError(t, err)
		assert.Equal(t, want, out[i], "element %d", i)
	}

	t.Run("atomic validation", func(t *testing.T) {
		bad := batch
		bad.Volatilities = []float64{0.2, -1, 0.25}
		out, err := mc.PriceVectorized(bad, 100)
		assert.Nil(t, out)
		assert.ErrorIs(t, err, models.ErrValidation)

		_, err = mc.PriceVectorized(batch, 0)
		assert.ErrorIs(t, err, models.ErrValidation)
	})
}

func TestPriceVectorizedWithConfidenceInterval(t *testing.T) {
	batch := models.NewBatch([]float64{100, 100}, []float64{105, 95}, []float64{0.25, 0.25}, []float64{0.2, 0.2}, 0.05, models.Call)

	out, err := NewMonteCarloPricer(WithSeed(13)).PriceVectorizedWithConfidenceInterval(batch, 2000, 0.9)
	require.NoError(t, err)
	require.Len(t, out, 2)

	single := NewMonteCarloPricer(WithSeed(13))
	for i := range out {
		want, err := single.PriceWithConfidenceInterval(batch.At(i), 2000, 0.9)
		require.NoError(t, err)
		assert.Equal(t, want, out[i])
	}

	_, err = NewMonteCarloPricer().PriceVectorizedWithConfidenceInterval(batch, 2000, 1)
	assert.ErrorIs(t, err, models.ErrValidation)
}
