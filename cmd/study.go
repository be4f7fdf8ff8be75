package cmd

import (
	"strconv"

	"github.com/bcdannyboy/dprice/probability"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	compareContract contractFlags
	compareSim      simulationFlags
	compareCounts   []int

	coverageContract contractFlags
	coverageSim      simulationFlags
	coverageTrials   int
)

var compareCmd = &cobra.Command{
	Use:     "compare",
	Short:   "Compare Monte Carlo estimates with the Black-Scholes price across simulation counts",
	Example: "  dprice compare --spot 100 --strike 105 --expiry 0.25 --vol 0.2 --counts 1000,10000,100000",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := compareContract.params(cmd)
		if err != nil {
			return err
		}

		quiet, _ := cmd.Flags().GetBool("quiet")
		bar := newProgress(quiet, "compare", len(compareCounts))
		defer bar.Wait()

		mc := compareSim.pricer(cmd, probability.WithProgress(bar.Callback()))
		points, err := mc.Convergence(p, compareCounts, compareSim.options()...)
		if err != nil {
			return err
		}
		bar.Wait()

		return report(cmd.OutOrStdout(), points, func() ([]string, [][]string) {
			cells := make([][]string, 0, len(points))
			for _, pt := range points {
				cells = append(cells, []string{
					strconv.Itoa(pt.Simulations),
					fixed(pt.BlackScholes, 6),
					fixed(pt.MonteCarlo, 6),
					fixed(pt.StandardError, 6),
					fixed(pt.AbsError, 6),
					fixed(pt.RelError*100, 4) + "%",
					pt.Elapsed.String(),
				})
			}
			return []string{"Sims", "Black-Scholes", "Monte Carlo", "Std Err", "Abs Err", "Rel Err", "Elapsed"}, cells
		})
	},
}

var coverageCmd = &cobra.Command{
	Use:     "coverage",
	Short:   "Count how often Monte Carlo confidence intervals contain the Black-Scholes price",
	Example: "  dprice coverage --spot 100 --strike 105 --expiry 0.25 --vol 0.2 --sims 10000 --trials 100 --seed 1",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := coverageContract.params(cmd)
		if err != nil {
			return err
		}

		quiet, _ := cmd.Flags().GetBool("quiet")
		bar := newProgress(quiet, "coverage", coverageTrials)
		defer bar.Wait()

		mc := coverageSim.pricer(cmd, probability.WithProgress(bar.Callback()))
		level := coverageSim.level(cmd)
		res, err := mc.Coverage(p, coverageSim.simulations(cmd), coverageTrials, level, coverageSim.options()...)
		if err != nil {
			return err
		}
		bar.Wait()

		log.WithFields(log.Fields{
			"hits":   res.Hits,
			"trials": res.Trials,
			"rate":   res.Rate,
		}).Info("coverage study")

		return report(cmd.OutOrStdout(), []probability.CoverageReport{res}, func() ([]string, [][]string) {
			return []string{"Trials", "Hits", "Level", "Rate", "Black-Scholes", "Mean Err", "Mean Std Err", "Median Std Err"},
				[][]string{{
					strconv.Itoa(res.Trials),
					strconv.Itoa(res.Hits),
					fixed(res.Level, 4),
					fixed(res.Rate, 4),
					fixed(res.BlackScholes, 6),
					fixed(res.MeanError, 6),
					fixed(res.MeanStandardError, 6),
					fixed(res.MedianStandardError, 6),
				}}
		})
	},
}

func init() {
	compareContract.register(compareCmd)
	compareSim.register(compareCmd)
	compareCmd.Flags().IntSliceVar(&compareCounts, "counts", probability.DefaultConvergenceCounts, "Simulation counts to compare")

	coverageContract.register(coverageCmd)
	coverageSim.register(coverageCmd)
	coverageCmd.Flags().IntVar(&coverageTrials, "trials", 100, "Number of independent interval estimates")
}
