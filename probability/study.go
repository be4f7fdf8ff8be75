package probability

import (
	"fmt"
	"math"
	"time"

	"github.com/bcdannyboy/dprice/models"
	"github.com/bcdannyboy/dprice/pricing"
	"github.com/montanaflynn/stats"
	"github.com/sirupsen/logrus"
)

// DefaultConvergenceCounts are the simulation counts compared against the closed form.
var DefaultConvergenceCounts = []int{1000, 10000, 100000, 1000000}

// ConvergencePoint compares one Monte Carlo run with the Black-Scholes price.
type ConvergencePoint struct {
	Simulations   int           `json:"simulations" csv:"simulations"`
	BlackScholes  float64       `json:"black_scholes" csv:"black_scholes"`
	MonteCarlo    float64       `json:"monte_carlo" csv:"monte_carlo"`
	StandardError float64       `json:"standard_error" csv:"standard_error"`
	AbsError      float64       `json:"abs_error" csv:"abs_error"`
	RelError      float64       `json:"rel_error" csv:"rel_error"`
	Elapsed       time.Duration `json:"elapsed" csv:"-"`
}

// Convergence prices p with the closed form once and with Monte Carlo at every count.
// RelError is 0 when the closed-form price is 0.
func (mc *MonteCarloPricer) Convergence(p models.OptionParameters, counts []int, opts ...SimOption) ([]ConvergencePoint, error) {
	if len(counts) == 0 {
		counts = DefaultConvergenceCounts
	}

	bs, err := pricing.NewBlackScholesPricer().Price(p)
	if err != nil {
		return nil, fmt.Errorf("convergence: %w", err)
	}
	for _, n := range counts {
		if err := models.ValidateSimulations(n); err != nil {
			return nil, fmt.Errorf("convergence: %w", err)
		}
	}

	points := make([]ConvergencePoint, 0, len(counts))
	for _, n := range counts {
		start := time.Now()
		est, err := mc.Price(p, n, opts...)
		if err != nil {
			return nil, fmt.Errorf("convergence: %w", err)
		}

		point := ConvergencePoint{
			Simulations:   n,
			BlackScholes:  bs.Price,
			MonteCarlo:    est.Price,
			StandardError: est.StandardError,
			AbsError:      math.Abs(est.Price - bs.Price),
			Elapsed:       time.Since(start),
		}
		if bs.Price > 0 {
			point.RelError = point.AbsError / bs.Price
		}
		points = append(points, point)

		mc.logger.WithFields(logrus.Fields{
			"simulations": n,
			"abs_error":   point.AbsError,
			"elapsed":     point.Elapsed,
		}).Debug("convergence point")

		if mc.progress != nil {
			mc.progress()
		}
	}
	return points, nil
}

// CoverageReport summarizes how often Monte Carlo intervals contained the closed-form price.
type CoverageReport struct {
	Trials              int     `json:"trials" csv:"trials"`
	Hits                int     `json:"hits" csv:"hits"`
	Level               float64 `json:"level" csv:"level"`
	Rate                float64 `json:"rate" csv:"rate"`
	BlackScholes        float64 `json:"black_scholes" csv:"black_scholes"`
	MeanError           float64 `json:"mean_error" csv:"mean_error"`
	MeanStandardError   float64 `json:"mean_standard_error" csv:"mean_standard_error"`
	MedianStandardError float64 `json:"median_standard_error" csv:"median_standard_error"`
}

// Coverage runs trials independent interval estimates on the pricer's stream and counts
// those containing the Black-Scholes price. For a well-calibrated estimator Rate is close to level.
func (mc *MonteCarloPricer) Coverage(p models.OptionParameters, numSimulations, trials int, level float64, opts ...SimOption) (CoverageReport, error) {
	if trials < 1 {
		return CoverageReport{}, fmt.Errorf("coverage: %w", &models.ValidationError{
			Field:      "trials",
			Constraint: "must be a positive integer",
			Value:      trials,
		})
	}
	if err := models.ValidateConfidence(level); err != nil {
		return CoverageReport{}, fmt.Errorf("coverage: %w", err)
	}

	bs, err := pricing.NewBlackScholesPricer().Price(p)
	if err != nil {
		return CoverageReport{}, fmt.Errorf("coverage: %w", err)
	}

	report := CoverageReport{Trials: trials, Level: level, BlackScholes: bs.Price}
	errs := make([]float64, 0, trials)
	ses := make([]float64, 0, trials)

	for i := 0; i < trials; i++ {
		est, err := mc.PriceWithConfidenceInterval(p, numSimulations, level, opts...)
		if err != nil {
			return CoverageReport{}, fmt.Errorf("coverage: %w", err)
		}
		if est.Contains(bs.Price) {
			report.Hits++
		}
		errs = append(errs, est.Price-bs.Price)
		ses = append(ses, est.StandardError)

		if mc.progress != nil {
			mc.progress()
		}
	}

	report.Rate = float64(report.Hits) / float64(trials)
	if report.MeanError, err = stats.Mean(errs); err != nil {
		return CoverageReport{}, fmt.Errorf("coverage: %w", err)
	}
	if report.MeanStandardError, err = stats.Mean(ses); err != nil {
		return CoverageReport{}, fmt.Errorf("coverage: %w", err)
	}
	if report.MedianStandardError, err = stats.Median(ses); err != nil {
		return CoverageReport{}, fmt.Errorf("coverage: %w", err)
	}

	mc.logger.WithFields(logrus.Fields{
		"trials": trials,
		"hits":   report.Hits,
		"level":  level,
	}).Debug("coverage study finished")

	return report, nil
}
