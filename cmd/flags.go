package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bcdannyboy/dprice/models"
	"github.com/bcdannyboy/dprice/probability"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// contractFlags describe one option on the command line.
type contractFlags struct {
	symbol string
	spot   float64
	strike float64
	expiry float64
	rate   float64
	vol    float64
	typ    string
}

func (f *contractFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.symbol, "symbol", "", "Underlying symbol, used as a label")
	flags.Float64Var(&f.spot, "spot", 0, "Spot price of the underlying")
	flags.Float64Var(&f.strike, "strike", 0, "Strike price")
	flags.Float64Var(&f.expiry, "expiry", 0, "Time to expiry in years")
	flags.Float64Var(&f.rate, "rate", 0, "Continuously compounded risk-free rate (defaults to DPRICE_RISK_FREE_RATE)")
	flags.Float64Var(&f.vol, "vol", 0, "Annualized volatility")
	flags.StringVar(&f.typ, "type", "call", "Option type: call or put")

	cmd.MarkFlagRequired("spot")
	cmd.MarkFlagRequired("strike")
	cmd.MarkFlagRequired("expiry")
	cmd.MarkFlagRequired("vol")
}

func (f *contractFlags) quote(cmd *cobra.Command) models.Quote {
	rate := cfg.RiskFreeRate
	if cmd.Flags().Changed("rate") {
		rate = f.rate
	}
	return models.Quote{Symbol: f.symbol, Spot: f.spot, Volatility: f.vol, RiskFreeRate: rate}
}

// params resolves the flags through a static market-data source.
func (f *contractFlags) params(cmd *cobra.Command) (models.OptionParameters, error) {
	typ, err := models.ParseOptionType(f.typ)
	if err != nil {
		return models.OptionParameters{}, err
	}

	src := models.NewStaticSource(f.quote(cmd))
	q, err := src.Quote(f.symbol)
	if err != nil {
		return models.OptionParameters{}, err
	}
	return q.Params(f.strike, f.expiry, typ)
}

// simulationFlags configure Monte Carlo runs.
type simulationFlags struct {
	sims       int
	antithetic bool
	steps      int
	seed       uint64
	confidence float64
}

func (f *simulationFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.IntVar(&f.sims, "sims", 0, "Number of simulations, pairs when antithetic (defaults to DPRICE_SIMULATIONS)")
	flags.BoolVar(&f.antithetic, "antithetic", false, "Use antithetic variates")
	flags.IntVar(&f.steps, "steps", 1, "Time steps per simulated path")
	flags.Uint64Var(&f.seed, "seed", 0, "Seed for a reproducible run (defaults to DPRICE_SEED, else the clock)")
	flags.Float64Var(&f.confidence, "confidence", 0, "Confidence level of the interval (defaults to DPRICE_CONFIDENCE)")
}

func (f *simulationFlags) simulations(cmd *cobra.Command) int {
	if cmd.Flags().Changed("sims") {
		return f.sims
	}
	return cfg.Simulations
}

func (f *simulationFlags) level(cmd *cobra.Command) float64 {
	if cmd.Flags().Changed("confidence") {
		return f.confidence
	}
	return cfg.Confidence
}

func (f *simulationFlags) options() []probability.SimOption {
	var opts []probability.SimOption
	if f.antithetic {
		opts = append(opts, probability.Antithetic())
	}
	if f.steps > 1 {
		opts = append(opts, probability.TimeSteps(f.steps))
	}
	return opts
}

func (f *simulationFlags) pricer(cmd *cobra.Command, extra ...probability.Option) *probability.MonteCarloPricer {
	opts := []probability.Option{probability.WithLogger(log.StandardLogger())}
	switch {
	case cmd.Flags().Changed("seed"):
		opts = append(opts, probability.WithSeed(f.seed))
	case cfg.Seed != nil:
		opts = append(opts, probability.WithSeed(*cfg.Seed))
	}
	return probability.NewMonteCarloPricer(append(opts, extra...)...)
}

// parseQuotes builds a static source from SYMBOL=SPOT:VOL[:RATE] entries. It returns nil for no entries.
func parseQuotes(entries []string) (models.Source, error) {
	if len(entries) == 0 {
		return nil, nil
	}

	quotes := make([]models.Quote, 0, len(entries))
	for _, entry := range entries {
		symbol, values, ok := strings.Cut(entry, "=")
		fields := strings.Split(values, ":")
		if !ok || symbol == "" || len(fields) < 2 || len(fields) > 3 {
			return nil, fmt.Errorf("invalid --quote %q, want SYMBOL=SPOT:VOL[:RATE]", entry)
		}

		nums := make([]float64, len(fields))
		for i, f := range fields {
			v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
			if err != nil {
				return nil, fmt.Errorf("invalid --quote %q: %w", entry, err)
			}
			nums[i] = v
		}

		q := models.Quote{Symbol: strings.TrimSpace(symbol), Spot: nums[0], Volatility: nums[1], RiskFreeRate: cfg.RiskFreeRate}
		if len(nums) == 3 {
			q.RiskFreeRate = nums[2]
		}
		quotes = append(quotes, q)
	}
	return models.NewStaticSource(quotes...), nil
}
