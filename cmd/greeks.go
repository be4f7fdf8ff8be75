package cmd

import (
	"math"

	"github.com/bcdannyboy/dprice/contracts"
	"github.com/bcdannyboy/dprice/models"
	"github.com/bcdannyboy/dprice/pricing"
	"github.com/spf13/cobra"
)

var (
	greeksContract  contractFlags
	greeksNumerical bool
)

// greekComparison sets an analytic Greek against its finite-difference estimate.
type greekComparison struct {
	Greek     string  `csv:"greek" json:"greek"`
	Analytic  float64 `csv:"analytic" json:"analytic"`
	Numerical float64 `csv:"numerical" json:"numerical"`
	AbsDiff   float64 `csv:"abs_diff" json:"abs_diff"`
}

var greeksCmd = &cobra.Command{
	Use:     "greeks",
	Short:   "Compute Black-Scholes Greeks for one option",
	Example: "  dprice greeks --spot 100 --strike 105 --expiry 0.25 --vol 0.2 --numerical",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := greeksContract.params(cmd)
		if err != nil {
			return err
		}

		g, err := pricing.NewGreeksCalculator().All(p)
		if err != nil {
			return err
		}

		if !greeksNumerical {
			rows := contracts.GreeksRows(singleBook(greeksContract.symbol, p), []models.Greeks{g})
			return report(cmd.OutOrStdout(), rows, greeksTable(rows))
		}

		fd, err := pricing.NumericalGreeks(p)
		if err != nil {
			return err
		}

		analytic, numeric := g.Map(), fd.Map()
		names := []string{models.GreekDelta, models.GreekGamma, models.GreekVega, models.GreekTheta, models.GreekRho}
		rows := make([]greekComparison, 0, len(names))
		for _, name := range names {
			rows = append(rows, greekComparison{
				Greek:     name,
				Analytic:  analytic[name],
				Numerical: numeric[name],
				AbsDiff:   math.Abs(analytic[name] - numeric[name]),
			})
		}

		return report(cmd.OutOrStdout(), rows, func() ([]string, [][]string) {
			cells := make([][]string, 0, len(rows))
			for _, r := range rows {
				cells = append(cells, []string{r.Greek, fixed(r.Analytic, 8), fixed(r.Numerical, 8), fixed(r.AbsDiff, 10)})
			}
			return []string{"Greek", "Analytic", "Finite Difference", "Abs Diff"}, cells
		})
	},
}

func init() {
	greeksContract.register(greeksCmd)
	greeksCmd.Flags().BoolVar(&greeksNumerical, "numerical", false, "Compare with finite-difference estimates")
}
