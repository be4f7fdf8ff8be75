package contracts

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bcdannyboy/dprice/models"
	"github.com/gocarina/gocsv"
	"gopkg.in/yaml.v3"
)

// Contract is one option as written in a contract file. Nil Spot, Volatility or Rate
// are filled from the symbol's quote when a source is available, and Rate falls back
// to the file's or caller's default.
type Contract struct {
	Symbol     string   `yaml:"symbol"`
	Spot       *float64 `yaml:"spot"`
	Strike     float64  `yaml:"strike"`
	Expiry     float64  `yaml:"expiry"`
	Rate       *float64 `yaml:"rate"`
	Volatility *float64 `yaml:"volatility"`
	Type       string   `yaml:"type"`
}

// csvContract mirrors Contract with text columns so that empty cells stay unset.
type csvContract struct {
	Symbol     string  `csv:"symbol"`
	Spot       string  `csv:"spot"`
	Strike     float64 `csv:"strike"`
	Expiry     float64 `csv:"expiry"`
	Rate       string  `csv:"rate"`
	Volatility string  `csv:"volatility"`
	Type       string  `csv:"type"`
}

type yamlFile struct {
	Rate      *float64   `yaml:"rate"`
	Contracts []Contract `yaml:"contracts"`
}

// ReadFile reads contracts from a .csv, .yaml or .yml file.
func ReadFile(path string) ([]Contract, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ReadFile: failed to open %s: %w", path, err)
	}
	defer f.Close()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		return ReadCSV(f)
	case ".yaml", ".yml":
		return ReadYAML(f)
	default:
		return nil, fmt.Errorf("ReadFile: unsupported contract file extension %q", ext)
	}
}

// ReadCSV reads contracts from CSV with a header row of
// symbol,spot,strike,expiry,rate,volatility,type. Only strike, expiry and type are required columns.
func ReadCSV(r io.Reader) ([]Contract, error) {
	var rows []*csvContract
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("ReadCSV: %w", err)
	}

	out := make([]Contract, 0, len(rows))
	for i, row := range rows {
		c := Contract{
			Symbol: strings.TrimSpace(row.Symbol),
			Strike: row.Strike,
			Expiry: row.Expiry,
			Type:   row.Type,
		}

		var err error
		if c.Spot, err = optionalFloat(row.Spot); err != nil {
			return nil, fmt.Errorf("ReadCSV: row %d spot: %w", i+1, err)
		}
		if c.Rate, err = optionalFloat(row.Rate); err != nil {
			return nil, fmt.Errorf("ReadCSV: row %d rate: %w", i+1, err)
		}
		if c.Volatility, err = optionalFloat(row.Volatility); err != nil {
			return nil, fmt.Errorf("ReadCSV: row %d volatility: %w", i+1, err)
		}
		out = append(out, c)
	}
	return out, nil
}

// ReadYAML reads a document with an optional top-level rate and a contracts list.
// The top-level rate applies to contracts without their own.
func ReadYAML(r io.Reader) ([]Contract, error) {
	var doc yamlFile
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && err != io.EOF {
		return nil, fmt.Errorf("ReadYAML: %w", err)
	}

	for i := range doc.Contracts {
		if doc.Contracts[i].Rate == nil && doc.Rate != nil {
			rate := *doc.Rate
			doc.Contracts[i].Rate = &rate
		}
	}
	return doc.Contracts, nil
}

func optionalFloat(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Book is a validated batch together with the symbol of each element.
type Book struct {
	Symbols []string
	Batch   models.Batch
}

// Terms returns the resolved inputs of element i.
func (b Book) Terms(i int) Terms {
	p := b.Batch.At(i)
	return Terms{
		Symbol:     b.Symbols[i],
		Spot:       p.Spot,
		Strike:     p.Strike,
		Expiry:     p.TimeToExpiry,
		Rate:       p.RiskFreeRate,
		Volatility: p.Volatility,
		Type:       p.Type.String(),
	}
}

// Resolve turns contracts into a validated Book. Missing market inputs come from src
// (which may be nil); a missing rate without a quote uses defaultRate.
func Resolve(contracts []Contract, defaultRate float64, src models.Source) (Book, error) {
	var book Book
	for i, c := range contracts {
		typ, err := models.ParseOptionType(c.Type)
		if err != nil {
			return Book{}, indexed(err, i)
		}

		p := models.OptionParameters{
			Strike:       c.Strike,
			TimeToExpiry: c.Expiry,
			RiskFreeRate: defaultRate,
			Type:         typ,
		}

		quoted := false
		if (c.Spot == nil || c.Volatility == nil) && src != nil && c.Symbol != "" {
			q, err := src.Quote(c.Symbol)
			if err != nil {
				return Book{}, fmt.Errorf("contract %d: %w", i, err)
			}
			p.Spot, p.Volatility, p.RiskFreeRate = q.Spot, q.Volatility, q.RiskFreeRate
			quoted = true
		}

		switch {
		case c.Spot != nil:
			p.Spot = *c.Spot
		case !quoted:
			return Book{}, missing("spot", i)
		}
		switch {
		case c.Volatility != nil:
			p.Volatility = *c.Volatility
		case !quoted:
			return Book{}, missing("volatility", i)
		}
		if c.Rate != nil {
			p.RiskFreeRate = *c.Rate
		}

		book.Batch.Append(p)
		book.Symbols = append(book.Symbols, c.Symbol)
	}

	batch, err := models.ValidateBatch(book.Batch)
	if err != nil {
		return Book{}, err
	}
	book.Batch = batch
	return book, nil
}

func indexed(err error, i int) error {
	if ve, ok := err.(*models.ValidationError); ok {
		out := *ve
		out.Field = fmt.Sprintf("%s[%d]", ve.Field, i)
		return &out
	}
	return err
}

func missing(field string, i int) error {
	return &models.ValidationError{
		Field:      fmt.Sprintf("%s[%d]", field, i),
		Constraint: "required when no quote is available for the symbol",
	}
}
