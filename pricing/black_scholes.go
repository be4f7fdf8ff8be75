package pricing

import (
	"fmt"
	"math"

	"github.com/bcdannyboy/dprice/models"
)

// BlackScholesPricer prices European options with the closed-form Black-Scholes model.
type BlackScholesPricer struct {
	opts options
}

func NewBlackScholesPricer(opts ...Option) *BlackScholesPricer {
	return &BlackScholesPricer{opts: newOptions(opts)}
}

// Price validates p and returns its Black-Scholes value.
// An expired option is worth its intrinsic value; with zero volatility the
// payoff is deterministic and discounted at r.
func (bs *BlackScholesPricer) Price(p models.OptionParameters) (models.PricePoint, error) {
	p, err := models.Validate(p)
	if err != nil {
		return models.PricePoint{}, fmt.Errorf("black-scholes price: %w", err)
	}
	return models.PricePoint{Price: calculateOptionPrice(p)}, nil
}

// PriceVectorized prices every option of the batch. The batch is validated as a whole
// first; element i is computed by the same kernel as Price(batch.At(i)).
func (bs *BlackScholesPricer) PriceVectorized(batch models.Batch) ([]models.PricePoint, error) {
	batch, err := models.ValidateBatch(batch)
	if err != nil {
		return nil, fmt.Errorf("black-scholes batch: %w", err)
	}
	return evaluate(bs.opts, batch.Len(), func(i int) models.PricePoint {
		return models.PricePoint{Price: calculateOptionPrice(batch.At(i))}
	})
}

func calculateOptionPrice(p models.OptionParameters) float64 {
	S, K, T, r, sigma := p.Spot, p.Strike, p.TimeToExpiry, p.RiskFreeRate, p.Volatility
	isCall := p.Type == models.Call

	if T == 0 {
		return p.Intrinsic()
	}

	discountedStrike := K * math.Exp(-r*T)
	if sigma == 0 {
		if isCall {
			return math.Max(S-discountedStrike, 0)
		}
		return math.Max(discountedStrike-S, 0)
	}

	d1, d2, _ := d1d2(S, K, T, r, sigma)

	var price float64
	if isCall {
		price = S*normCDF(d1) - discountedStrike*normCDF(d2)
	} else {
		price = discountedStrike*normCDF(-d2) - S*normCDF(-d1)
	}
	// rounding can leave deep out-of-the-money prices a hair below zero
	return math.Max(price, 0)
}
