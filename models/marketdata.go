package models

import (
	"fmt"
	"strings"
)

// Quote is what a market-data source supplies for one underlying.
// Rates and volatilities are annualized decimals; Spot is in the strike's currency.
type Quote struct {
	Symbol       string  `json:"symbol" yaml:"symbol"`
	Spot         float64 `json:"spot" yaml:"spot"`
	Volatility   float64 `json:"volatility" yaml:"volatility"`
	RiskFreeRate float64 `json:"risk_free_rate" yaml:"risk_free_rate"`
}

// Params builds validated option parameters for a contract on the quoted underlying.
func (q Quote) Params(strike, timeToExpiry float64, optionType OptionType) (OptionParameters, error) {
	return Validate(OptionParameters{
		Spot:         q.Spot,
		Strike:       strike,
		TimeToExpiry: timeToExpiry,
		RiskFreeRate: q.RiskFreeRate,
		Volatility:   q.Volatility,
		Type:         optionType,
	})
}

// Source supplies market inputs. Retrieval itself lives outside this module.
type Source interface {
	Quote(symbol string) (Quote, error)
}

// StaticSource serves fixed quotes keyed by upper-cased symbol.
type StaticSource struct {
	quotes map[string]Quote
}

func NewStaticSource(quotes ...Quote) *StaticSource {
	s := &StaticSource{quotes: make(map[string]Quote, len(quotes))}
	for _, q := range quotes {
		s.quotes[strings.ToUpper(q.Symbol)] = q
	}
	return s
}

func (s *StaticSource) Quote(symbol string) (Quote, error) {
	q, ok := s.quotes[strings.ToUpper(symbol)]
	if !ok {
		return Quote{}, fmt.Errorf("no quote for %s", symbol)
	}
	return q, nil
}
