package probability

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/bcdannyboy/dprice/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// MonteCarloPricer estimates European option prices by simulating terminal prices
// under risk-neutral geometric Brownian motion. It owns a private random stream;
// calls are serialized and consume the stream in call order.
type MonteCarloPricer struct {
	mu       sync.Mutex
	rng      *rand.Rand
	logger   logrus.FieldLogger
	progress func()
}

type options struct {
	seed     uint64
	seeded   bool
	logger   logrus.FieldLogger
	progress func()
}

// Option configures a MonteCarloPricer.
type Option func(*options)

// WithSeed makes the pricer's stream reproducible. Without it the stream is seeded from the clock.
func WithSeed(seed uint64) Option {
	return func(o *options) {
		o.seed = seed
		o.seeded = true
	}
}

func WithLogger(logger logrus.FieldLogger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithProgress registers a callback invoked after each batch element or study trial.
func WithProgress(fn func()) Option {
	return func(o *options) {
		o.progress = fn
	}
}

func NewMonteCarloPricer(opts ...Option) *MonteCarloPricer {
	o := options{logger: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(&o)
	}
	if !o.seeded {
		o.seed = uint64(time.Now().UnixNano())
	}

	return &MonteCarloPricer{
		rng:      rand.New(rand.NewSource(o.seed)),
		logger:   o.logger,
		progress: o.progress,
	}
}

// Reseed resets the random stream. It is the only way to replay a sequence of calls.
func (mc *MonteCarloPricer) Reseed(seed uint64) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.rng.Seed(seed)
}

type simulation struct {
	antithetic bool
	steps      int
}

// SimOption tunes a single pricing call.
type SimOption func(*simulation)

// Antithetic pairs every draw Z with -Z. numSimulations then counts pairs, and each
// pair's mean payoff is one sample of the estimator.
func Antithetic() SimOption {
	return func(s *simulation) {
		s.antithetic = true
	}
}

// TimeSteps simulates each path with n log-normal increments instead of one terminal draw.
func TimeSteps(n int) SimOption {
	return func(s *simulation) {
		if n > 1 {
			s.steps = n
		}
	}
}

func newSimulation(opts []SimOption) simulation {
	s := simulation{steps: 1}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// Price returns the discounted mean payoff over numSimulations samples and its standard error.
// Expired options and zero-volatility options are priced exactly and consume no draws.
func (mc *MonteCarloPricer) Price(p models.OptionParameters, numSimulations int, opts ...SimOption) (models.MonteCarloEstimate, error) {
	p, err := validateRun(p, numSimulations)
	if err != nil {
		return models.MonteCarloEstimate{}, fmt.Errorf("monte carlo price: %w", err)
	}

	mc.mu.Lock()
	defer mc.mu.Unlock()

	est, err := mc.simulate(p, numSimulations, newSimulation(opts))
	if err != nil {
		return models.MonteCarloEstimate{}, fmt.Errorf("monte carlo price: %w", err)
	}
	return est, nil
}

// PriceWithConfidenceInterval adds the two-sided interval price -/+ z*SE, z = InvNormal((1+level)/2).
func (mc *MonteCarloPricer) PriceWithConfidenceInterval(p models.OptionParameters, numSimulations int, confidenceLevel float64, opts ...SimOption) (models.MonteCarloEstimate, error) {
	p, err := validateRun(p, numSimulations)
	if err == nil {
		err = models.ValidateConfidence(confidenceLevel)
	}
	if err != nil {
		return models.MonteCarloEstimate{}, fmt.Errorf("monte carlo interval: %w", err)
	}

	mc.mu.Lock()
	defer mc.mu.Unlock()

	est, err := mc.simulate(p, numSimulations, newSimulation(opts))
	if err != nil {
		return models.MonteCarloEstimate{}, fmt.Errorf("monte carlo interval: %w", err)
	}
	withInterval(&est, confidenceLevel)
	return est, nil
}

// PriceVectorized prices each batch element in order on the pricer's stream.
// The batch is validated as a whole before any draw.
func (mc *MonteCarloPricer) PriceVectorized(batch models.Batch, numSimulations int, opts ...SimOption) ([]models.MonteCarloEstimate, error) {
	batch, err := models.ValidateBatch(batch)
	if err == nil {
		err = models.ValidateSimulations(numSimulations)
	}
	if err != nil {
		return nil, fmt.Errorf("monte carlo batch: %w", err)
	}
	return mc.simulateBatch(batch, numSimulations, newSimulation(opts), 0)
}

// PriceVectorizedWithConfidenceInterval is PriceVectorized with an interval on every estimate.
func (mc *MonteCarloPricer) PriceVectorizedWithConfidenceInterval(batch models.Batch, numSimulations int, confidenceLevel float64, opts ...SimOption) ([]models.MonteCarloEstimate, error) {
	batch, err := models.ValidateBatch(batch)
	if err == nil {
		err = models.ValidateSimulations(numSimulations)
	}
	if err == nil {
		err = models.ValidateConfidence(confidenceLevel)
	}
	if err != nil {
		return nil, fmt.Errorf("monte carlo batch: %w", err)
	}
	return mc.simulateBatch(batch, numSimulations, newSimulation(opts), confidenceLevel)
}

// simulateBatch attaches intervals when level is non-zero.
func (mc *MonteCarloPricer) simulateBatch(batch models.Batch, n int, sim simulation, level float64) ([]models.MonteCarloEstimate, error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	out := make([]models.MonteCarloEstimate, batch.Len())
	for i := range out {
		est, err := mc.simulate(batch.At(i), n, sim)
		if err != nil {
			return nil, fmt.Errorf("monte carlo batch: element %d: %w", i, err)
		}
		out[i] = est
		if level != 0 {
			withInterval(&out[i], level)
		}
		if mc.progress != nil {
			mc.progress()
		}
	}
	return out, nil
}

func validateRun(p models.OptionParameters, numSimulations int) (models.OptionParameters, error) {
	p, err := models.Validate(p)
	if err != nil {
		return p, err
	}
	return p, models.ValidateSimulations(numSimulations)
}

func withInterval(est *models.MonteCarloEstimate, level float64) {
	z := distuv.UnitNormal.Quantile((1 + level) / 2)
	est.ConfidenceInterval = &models.Interval{
		Lower: est.Price - z*est.StandardError,
		Upper: est.Price + z*est.StandardError,
		Level: level,
	}
}

// simulate must be called with mc.mu held. It fails only when the estimate is not finite.
func (mc *MonteCarloPricer) simulate(p models.OptionParameters, n int, sim simulation) (models.MonteCarloEstimate, error) {
	S, K, T, r, sigma := p.Spot, p.Strike, p.TimeToExpiry, p.RiskFreeRate, p.Volatility

	if T == 0 {
		return models.MonteCarloEstimate{Price: p.Intrinsic(), Simulations: n}, nil
	}
	discount := math.Exp(-r * T)
	if sigma == 0 {
		return models.MonteCarloEstimate{Price: models.Payoff(p.Type, S, K*discount), Simulations: n}, nil
	}

	mc.logger.WithFields(logrus.Fields{
		"simulations": n,
		"antithetic":  sim.antithetic,
		"steps":       sim.steps,
		"type":        p.Type,
	}).Debug("simulating terminal prices")

	gbm := models.NewGeometricBrownianMotion(r, sigma)
	payoffs := make([]float64, n)
	for i := range payoffs {
		if sim.antithetic {
			up, down := gbm.SimulatePair(S, T, sim.steps, mc.rng)
			payoffs[i] = 0.5 * (models.Payoff(p.Type, up, K) + models.Payoff(p.Type, down, K))
		} else {
			payoffs[i] = models.Payoff(p.Type, gbm.SimulatePrice(S, T, sim.steps, mc.rng), K)
		}
	}

	mean, sd := stat.MeanStdDev(payoffs, nil)
	var se float64
	if n > 1 {
		se = sd / math.Sqrt(float64(n))
	}

	est := models.MonteCarloEstimate{
		Price:         discount * mean,
		StandardError: discount * se,
		Simulations:   n,
	}
	if math.IsNaN(est.Price) || math.IsInf(est.Price, 0) || math.IsNaN(est.StandardError) || math.IsInf(est.StandardError, 0) {
		return models.MonteCarloEstimate{}, &models.ValidationError{
			Field:      "spot",
			Constraint: "simulated payoffs must stay finite",
			Value:      S,
		}
	}
	return est, nil
}
