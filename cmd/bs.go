package cmd

import (
	"github.com/bcdannyboy/dprice/contracts"
	"github.com/bcdannyboy/dprice/models"
	"github.com/bcdannyboy/dprice/pricing"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var bsFlags contractFlags

var bsCmd = &cobra.Command{
	Use:     "bs",
	Short:   "Price one option with the Black-Scholes closed form",
	Example: "  dprice bs --spot 100 --strike 105 --expiry 0.25 --rate 0.05 --vol 0.2 --type call",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := bsFlags.params(cmd)
		if err != nil {
			return err
		}

		price, err := pricing.NewBlackScholesPricer().Price(p)
		if err != nil {
			return err
		}

		d1, d2 := pricing.D1D2(p)
		log.WithFields(log.Fields{"d1": d1, "d2": d2}).Debug("black-scholes terms")

		book := singleBook(bsFlags.symbol, p)
		rows := contracts.PriceRows(book, []models.PricePoint{price})
		return report(cmd.OutOrStdout(), rows, priceTable(rows))
	},
}

func init() {
	bsFlags.register(bsCmd)
}

func singleBook(symbol string, p models.OptionParameters) contracts.Book {
	book := contracts.Book{Symbols: []string{symbol}}
	book.Batch.Append(p)
	return book
}
