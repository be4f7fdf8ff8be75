package contracts

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bcdannyboy/dprice/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `symbol,spot,strike,expiry,rate,volatility,type
SPY,100,105,0.25,0.05,0.2,call
SPY,100,95,0.5,,0.25,PUT
QQQ,,400,1,,,call
`

const sampleYAML = `
rate: 0.03
contracts:
  - symbol: SPY
    spot: 100
    strike: 105
    expiry: 0.25
    volatility: 0.2
    type: call
  - symbol: IWM
    spot: 200
    strike: 190
    expiry: 0.5
    rate: 0.01
    volatility: 0.3
    type: put
`

func TestReadCSV(t *testing.T) {
	contracts, err := ReadCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, contracts, 3)

	first := contracts[0]
	assert.Equal(t, "SPY", first.Symbol)
	require.NotNil(t, first.Spot)
	assert.Equal(t, 100.0, *first.Spot)
	require.NotNil(t, first.Rate)
	assert.Equal(t, 0.05, *first.Rate)

	assert.Nil(t, contracts[1].Rate)
	assert.Nil(t, contracts[2].Spot)
	assert.Nil(t, contracts[2].Volatility)

	_, err = ReadCSV(strings.NewReader("spot,strike,expiry,volatility,type\nabc,100,1,0.2,call\n"))
	assert.Error(t, err)
}

func TestReadYAML(t *testing.T) {
	contracts, err := ReadYAML(strings.NewReader(sampleYAML))
	require.NoError(t, err)
	require.Len(t, contracts, 2)

	require.NotNil(t, contracts[0].Rate)
	assert.Equal(t, 0.03, *contracts[0].Rate)
	assert.Equal(t, 0.01, *contracts[1].Rate)
	assert.Equal(t, "put", contracts[1].Type)

	_, err = ReadYAML(strings.NewReader("contracts: [1, 2"))
	assert.Error(t, err)
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()

	csvPath := filepath.Join(dir, "book.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(sampleCSV), 0o600))
	contracts, err := ReadFile(csvPath)
	require.NoError(t, err)
	assert.Len(t, contracts, 3)

	yamlPath := filepath.Join(dir, "book.yml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(sampleYAML), 0o600))
	contracts, err = ReadFile(yamlPath)
	require.NoError(t, err)
	assert.Len(t, contracts, 2)

	txtPath := filepath.Join(dir, "book.txt")
	require.NoError(t, os.WriteFile(txtPath, []byte(sampleCSV), 0o600))
	_, err = ReadFile(txtPath)
	assert.Error(t, err)

	_, err = ReadFile(filepath.Join(dir, "missing.csv"))
	assert.Error(t, err)
}

func TestResolve(t *testing.T) {
	contracts, err := ReadCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	t.Run("quotes fill missing inputs", func(t *testing.T) {
		src := models.NewStaticSource(models.Quote{Symbol: "QQQ", Spot: 410, Volatility: 0.22, RiskFreeRate: 0.045})
		book, err := Resolve(contracts, 0.04, src)
		require.NoError(t, err)
		require.Equal(t, 3, book.Batch.Len())

		assert.Equal(t, models.Put, book.Batch.At(1).Type)
		assert.Equal(t, 0.04, book.Batch.At(1).RiskFreeRate)

		qqq := book.Batch.At(2)
		assert.Equal(t, 410.0, qqq.Spot)
		assert.Equal(t, 0.22, qqq.Volatility)
		assert.Equal(t, 0.045, qqq.RiskFreeRate)

		terms := book.Terms(2)
		assert.Equal(t, "QQQ", terms.Symbol)
		assert.Equal(t, "call", terms.Type)
	})

	t.Run("missing spot without a source", func(t *testing.T) {
		_, err := Resolve(contracts, 0.04, nil)
		var ve *models.ValidationError
		require.True(t, errors.As(err, &ve))
		assert.Equal(t, "spot[2]", ve.Field)
	})

	t.Run("unknown symbol", func(t *testing.T) {
		_, err := Resolve(contracts, 0.04, models.NewStaticSource())
		assert.Error(t, err)
	})

	t.Run("bad option type is indexed", func(t *testing.T) {
		spot, vol := 100.0, 0.2
		_, err := Resolve([]Contract{
			{Spot: &spot, Strike: 100, Expiry: 1, Volatility: &vol, Type: "call"},
			{Spot: &spot, Strike: 100, Expiry: 1, Volatility: &vol, Type: "straddle"},
		}, 0.05, nil)
		var ve *models.ValidationError
		require.True(t, errors.As(err, &ve))
		assert.Equal(t, "optionType[1]", ve.Field)
	})

	t.Run("invalid values are rejected as a batch", func(t *testing.T) {
		spot, vol := 100.0, -0.2
		_, err := Resolve([]Contract{{Spot: &spot, Strike: 100, Expiry: 1, Volatility: &vol, Type: "put"}}, 0.05, nil)
		assert.ErrorIs(t, err, models.ErrValidation)
	})

	t.Run("empty file", func(t *testing.T) {
		_, err := Resolve(nil, 0.05, nil)
		assert.ErrorIs(t, err, models.ErrValidation)
	})
}

func TestWriters(t *testing.T) {
	spot, vol := 100.0, 0.2
	book, err := Resolve([]Contract{{Symbol: "SPY", Spot: &spot, Strike: 105, Expiry: 0.25, Volatility: &vol, Type: "call"}}, 0.05, nil)
	require.NoError(t, err)

	t.Run("csv", func(t *testing.T) {
		var buf bytes.Buffer
		rows := GreeksRows(book, []models.Greeks{{Delta: 0.38, Gamma: 0.04, Vega: 19, Theta: -0.03, Rho: 8.8}})
		require.NoError(t, WriteCSV(&buf, rows))

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		require.Len(t, lines, 2)
		assert.Equal(t, "symbol,spot,strike,expiry,rate,volatility,type,delta,gamma,vega,theta,rho", lines[0])
		assert.True(t, strings.HasPrefix(lines[1], "SPY,100,105,0.25,0.05,0.2,call,0.38"))
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		est := models.MonteCarloEstimate{
			Price:              2.48,
			StandardError:      0.01,
			ConfidenceInterval: &models.Interval{Lower: 2.46, Upper: 2.50, Level: 0.95},
			Simulations:        1000,
		}
		require.NoError(t, WriteJSON(&buf, EstimateRows(book, []models.MonteCarloEstimate{est})))

		out := buf.String()
		assert.Contains(t, out, `"symbol": "SPY"`)
		assert.Contains(t, out, `"ci_lower": 2.46`)
		assert.Contains(t, out, `"simulations": 1000`)
	})

	t.Run("estimate without interval", func(t *testing.T) {
		rows := EstimateRows(book, []models.MonteCarloEstimate{{Price: 3, Simulations: 10}})
		assert.Equal(t, 3.0, rows[0].Lower)
		assert.Equal(t, 3.0, rows[0].Upper)
	})

	t.Run("prices", func(t *testing.T) {
		rows := PriceRows(book, []models.PricePoint{{Price: 2.4779}})
		require.Len(t, rows, 1)
		assert.Equal(t, 105.0, rows[0].Strike)
		assert.Equal(t, 2.4779, rows[0].Price)
	})
}
