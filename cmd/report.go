package cmd

import (
	"io"
	"os"
	"strconv"

	"github.com/bcdannyboy/dprice/config"
	"github.com/bcdannyboy/dprice/contracts"
	"github.com/olekukonko/tablewriter"
	"github.com/shopspring/decimal"
	"github.com/vbauerster/mpb/v7"
	"github.com/vbauerster/mpb/v7/decor"
)

// report renders rows in the configured format. table builds the header and cells for table output.
func report(w io.Writer, rows interface{}, table func() ([]string, [][]string)) error {
	switch cfg.Output {
	case config.OutputJSON:
		return contracts.WriteJSON(w, rows)
	case config.OutputCSV:
		return contracts.WriteCSV(w, rows)
	}

	header, cells := table()
	t := tablewriter.NewWriter(w)
	t.SetHeader(header)
	t.SetAlignment(tablewriter.ALIGN_RIGHT)
	t.AppendBulk(cells)
	t.Render()
	return nil
}

func fixed(x float64, places int32) string {
	return decimal.NewFromFloat(x).StringFixed(places)
}

func termsHeader() []string {
	return []string{"Symbol", "Type", "Spot", "Strike", "Expiry", "Rate", "Vol"}
}

func termsCells(t contracts.Terms) []string {
	return []string{
		t.Symbol,
		t.Type,
		fixed(t.Spot, 2),
		fixed(t.Strike, 2),
		fixed(t.Expiry, 4),
		fixed(t.Rate, 4),
		fixed(t.Volatility, 4),
	}
}

func priceTable(rows []contracts.PriceRow) func() ([]string, [][]string) {
	return func() ([]string, [][]string) {
		cells := make([][]string, 0, len(rows))
		for _, r := range rows {
			cells = append(cells, append(termsCells(r.Terms), fixed(r.Price, 4)))
		}
		return append(termsHeader(), "Price"), cells
	}
}

func estimateTable(rows []contracts.EstimateRow) func() ([]string, [][]string) {
	return func() ([]string, [][]string) {
		cells := make([][]string, 0, len(rows))
		for _, r := range rows {
			cells = append(cells, append(termsCells(r.Terms),
				fixed(r.Price, 4),
				fixed(r.StandardError, 6),
				fixed(r.Lower, 4),
				fixed(r.Upper, 4),
				strconv.Itoa(r.Simulations),
			))
		}
		return append(termsHeader(), "Price", "Std Err", "CI Lower", "CI Upper", "Sims"), cells
	}
}

func greeksTable(rows []contracts.GreeksRow) func() ([]string, [][]string) {
	return func() ([]string, [][]string) {
		cells := make([][]string, 0, len(rows))
		for _, r := range rows {
			cells = append(cells, append(termsCells(r.Terms),
				fixed(r.Delta, 6),
				fixed(r.Gamma, 6),
				fixed(r.Vega, 6),
				fixed(r.Theta, 6),
				fixed(r.Rho, 6),
			))
		}
		return append(termsHeader(), "Delta", "Gamma", "Vega", "Theta/day", "Rho"), cells
	}
}

// progress is a stderr progress bar fed by the pricers' progress callbacks.
type progress struct {
	p    *mpb.Progress
	bar  *mpb.Bar
	done bool
}

// newProgress returns nil when progress output is disabled.
func newProgress(quiet bool, name string, total int) *progress {
	if quiet || total <= 0 {
		return nil
	}

	p := mpb.New(mpb.WithWidth(64), mpb.WithOutput(os.Stderr))
	bar := p.AddBar(int64(total),
		mpb.PrependDecorators(
			decor.Name(name),
			decor.Percentage(decor.WCSyncSpace),
		),
		mpb.AppendDecorators(
			decor.CountersNoUnit("(%d / %d)", decor.WCSyncSpace),
		),
	)
	return &progress{p: p, bar: bar}
}

// Increment is safe for concurrent use and a no-op on a nil progress.
func (pr *progress) Increment() {
	if pr != nil {
		pr.bar.Increment()
	}
}

// Callback returns Increment as a func, or nil when pr is nil.
func (pr *progress) Callback() func() {
	if pr == nil {
		return nil
	}
	return pr.Increment
}

// Wait flushes the bar, aborting it when it did not complete. Later calls do nothing.
func (pr *progress) Wait() {
	if pr == nil || pr.done {
		return
	}
	pr.done = true
	if !pr.bar.Completed() {
		pr.bar.Abort(false)
	}
	pr.p.Wait()
}
