package cmd

import (
	"fmt"

	"github.com/bcdannyboy/dprice/contracts"
	"github.com/bcdannyboy/dprice/pricing"
	"github.com/bcdannyboy/dprice/probability"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const (
	engineBlackScholes = "bs"
	engineMonteCarlo   = "mc"
	engineGreeks       = "greeks"
)

var (
	batchFile   string
	batchEngine string
	batchRate   float64
	batchQuotes []string
	batchSim    simulationFlags
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Price every contract of a CSV or YAML file",
	Long: `Price every contract of a CSV or YAML file with one engine.

CSV files carry a header of symbol,spot,strike,expiry,rate,volatility,type.
YAML files hold an optional top-level rate and a contracts list with the same keys.
Contracts without spot or volatility take them from --quote SYMBOL=SPOT:VOL[:RATE].`,
	Example: "  dprice batch --file book.csv --engine greeks --output json",
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := parseQuotes(batchQuotes)
		if err != nil {
			return err
		}

		rate := cfg.RiskFreeRate
		if cmd.Flags().Changed("rate") {
			rate = batchRate
		}

		list, err := contracts.ReadFile(batchFile)
		if err != nil {
			return err
		}
		book, err := contracts.Resolve(list, rate, src)
		if err != nil {
			return fmt.Errorf("contracts in %s: %w", batchFile, err)
		}

		logger := log.WithFields(log.Fields{
			"file":      batchFile,
			"engine":    batchEngine,
			"contracts": book.Batch.Len(),
			"workers":   cfg.Workers,
		})
		logger.Info("pricing batch")

		quiet, _ := cmd.Flags().GetBool("quiet")
		bar := newProgress(quiet, batchEngine, book.Batch.Len())
		defer bar.Wait()

		w := cmd.OutOrStdout()
		opts := []pricing.Option{
			pricing.WithWorkers(cfg.Workers),
			pricing.WithProgress(bar.Callback()),
			pricing.WithLogger(logger),
		}

		switch batchEngine {
		case engineBlackScholes:
			prices, err := pricing.NewBlackScholesPricer(opts...).PriceVectorized(book.Batch)
			if err != nil {
				return err
			}
			bar.Wait()
			rows := contracts.PriceRows(book, prices)
			return report(w, rows, priceTable(rows))

		case engineGreeks:
			greeks, err := pricing.NewGreeksCalculator(opts...).AllVectorized(book.Batch)
			if err != nil {
				return err
			}
			bar.Wait()
			rows := contracts.GreeksRows(book, greeks)
			return report(w, rows, greeksTable(rows))

		case engineMonteCarlo:
			mc := batchSim.pricer(cmd, probability.WithProgress(bar.Callback()), probability.WithLogger(logger))
			estimates, err := mc.PriceVectorizedWithConfidenceInterval(book.Batch, batchSim.simulations(cmd), batchSim.level(cmd), batchSim.options()...)
			if err != nil {
				return err
			}
			bar.Wait()
			rows := contracts.EstimateRows(book, estimates)
			return report(w, rows, estimateTable(rows))

		default:
			return fmt.Errorf("unknown engine %q, want bs, mc or greeks", batchEngine)
		}
	},
}

func init() {
	flags := batchCmd.Flags()
	flags.StringVar(&batchFile, "file", "", "Contract file (.csv, .yaml or .yml)")
	flags.StringVar(&batchEngine, "engine", engineBlackScholes, "Pricing engine: bs, mc or greeks")
	flags.Float64Var(&batchRate, "rate", 0, "Rate for contracts without one (defaults to DPRICE_RISK_FREE_RATE)")
	flags.StringSliceVar(&batchQuotes, "quote", nil, "Market data as SYMBOL=SPOT:VOL[:RATE], repeatable")
	batchSim.register(batchCmd)

	batchCmd.MarkFlagRequired("file")
}
