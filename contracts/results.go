package contracts

import (
	"fmt"
	"io"

	"github.com/bcdannyboy/dprice/models"
	"github.com/gocarina/gocsv"
	"github.com/xhhuango/json"
)

// Terms are the resolved inputs of one priced contract.
type Terms struct {
	Symbol     string  `csv:"symbol" json:"symbol,omitempty"`
	Spot       float64 `csv:"spot" json:"spot"`
	Strike     float64 `csv:"strike" json:"strike"`
	Expiry     float64 `csv:"expiry" json:"expiry"`
	Rate       float64 `csv:"rate" json:"rate"`
	Volatility float64 `csv:"volatility" json:"volatility"`
	Type       string  `csv:"type" json:"type"`
}

type PriceRow struct {
	Terms
	Price float64 `csv:"price" json:"price"`
}

type EstimateRow struct {
	Terms
	Price         float64 `csv:"price" json:"price"`
	StandardError float64 `csv:"standard_error" json:"standard_error"`
	Lower         float64 `csv:"ci_lower" json:"ci_lower"`
	Upper         float64 `csv:"ci_upper" json:"ci_upper"`
	Simulations   int     `csv:"simulations" json:"simulations"`
}

type GreeksRow struct {
	Terms
	models.Greeks
}

func PriceRows(book Book, prices []models.PricePoint) []PriceRow {
	rows := make([]PriceRow, len(prices))
	for i, p := range prices {
		rows[i] = PriceRow{Terms: book.Terms(i), Price: p.Price}
	}
	return rows
}

// EstimateRows leaves the interval bounds at the price when an estimate carries no interval.
func EstimateRows(book Book, estimates []models.MonteCarloEstimate) []EstimateRow {
	rows := make([]EstimateRow, len(estimates))
	for i, e := range estimates {
		row := EstimateRow{
			Terms:         book.Terms(i),
			Price:         e.Price,
			StandardError: e.StandardError,
			Lower:         e.Price,
			Upper:         e.Price,
			Simulations:   e.Simulations,
		}
		if e.ConfidenceInterval != nil {
			row.Lower, row.Upper = e.ConfidenceInterval.Lower, e.ConfidenceInterval.Upper
		}
		rows[i] = row
	}
	return rows
}

func GreeksRows(book Book, greeks []models.Greeks) []GreeksRow {
	rows := make([]GreeksRow, len(greeks))
	for i, g := range greeks {
		rows[i] = GreeksRow{Terms: book.Terms(i), Greeks: g}
	}
	return rows
}

// WriteCSV writes a slice of row structs with a header line.
func WriteCSV(w io.Writer, rows interface{}) error {
	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("WriteCSV: %w", err)
	}
	return nil
}

// WriteJSON writes v as indented JSON followed by a newline.
func WriteJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("WriteJSON: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("WriteJSON: %w", err)
	}
	return nil
}
