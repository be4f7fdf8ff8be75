package pricing

import (
	"runtime"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// parallelThreshold is the batch size below which elements are evaluated inline.
const parallelThreshold = 256

type options struct {
	workers  int
	progress func()
	logger   logrus.FieldLogger
}

// Option configures a BlackScholesPricer or GreeksCalculator.
type Option func(*options)

// WithWorkers bounds the goroutines used for vectorized evaluation. n <= 1 evaluates sequentially.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithProgress registers a callback invoked once per evaluated batch element.
// It may be called from several goroutines at once.
func WithProgress(fn func()) Option {
	return func(o *options) {
		o.progress = fn
	}
}

func WithLogger(logger logrus.FieldLogger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func newOptions(opts []Option) options {
	o := options{
		workers: runtime.GOMAXPROCS(0),
		logger:  logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// evaluate computes fn(i) for i in [0, n) and stores each result at index i.
// The error is the worker group's and is nil unless a worker fails.
// Chunks run on at most o.workers goroutines; every element goes through the same fn,
// so results do not depend on the worker count.
func evaluate[T any](o options, n int, fn func(i int) T) ([]T, error) {
	out := make([]T, n)

	run := func(start, end int) {
		for i := start; i < end; i++ {
			out[i] = fn(i)
			if o.progress != nil {
				o.progress()
			}
		}
	}

	if o.workers <= 1 || n < parallelThreshold {
		run(0, n)
		return out, nil
	}

	chunk := (n + o.workers*4 - 1) / (o.workers * 4)
	o.logger.WithFields(logrus.Fields{
		"elements": n,
		"workers":  o.workers,
		"chunk":    chunk,
	}).Debug("evaluating batch in parallel")

	var g errgroup.Group
	g.SetLimit(o.workers)
	for start := 0; start < n; start += chunk {
		start, end := start, start+chunk
		if end > n {
			end = n
		}
		g.Go(func() error {
			run(start, end)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
