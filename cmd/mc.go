package cmd

import (
	"github.com/bcdannyboy/dprice/contracts"
	"github.com/bcdannyboy/dprice/models"
	"github.com/bcdannyboy/dprice/pricing"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	mcContract contractFlags
	mcSim      simulationFlags
)

var mcCmd = &cobra.Command{
	Use:     "mc",
	Short:   "Price one option by Monte Carlo simulation with a confidence interval",
	Example: "  dprice mc --spot 100 --strike 105 --expiry 0.25 --vol 0.2 --sims 100000 --antithetic --seed 42",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := mcContract.params(cmd)
		if err != nil {
			return err
		}

		mc := mcSim.pricer(cmd)
		est, err := mc.PriceWithConfidenceInterval(p, mcSim.simulations(cmd), mcSim.level(cmd), mcSim.options()...)
		if err != nil {
			return err
		}

		bs, err := pricing.NewBlackScholesPricer().Price(p)
		if err != nil {
			return err
		}
		log.WithFields(log.Fields{
			"monte_carlo":   est.Price,
			"black_scholes": bs.Price,
			"within_ci":     est.Contains(bs.Price),
		}).Info("monte carlo estimate")

		rows := contracts.EstimateRows(singleBook(mcContract.symbol, p), []models.MonteCarloEstimate{est})
		return report(cmd.OutOrStdout(), rows, estimateTable(rows))
	},
}

func init() {
	mcContract.register(mcCmd)
	mcSim.register(mcCmd)
}
