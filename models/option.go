package models

import (
	"fmt"
	"strings"
)

// OptionType is the exercise right of a European option.
type OptionType int

const (
	Call OptionType = iota
	Put
)

func (t OptionType) String() string {
	switch t {
	case Call:
		return "call"
	case Put:
		return "put"
	default:
		return fmt.Sprintf("OptionType(%d)", int(t))
	}
}

// ParseOptionType accepts "call" or "put", ignoring case and surrounding space.
func ParseOptionType(s string) (OptionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "call":
		return Call, nil
	case "put":
		return Put, nil
	}
	return 0, &ValidationError{Field: "optionType", Constraint: `must be "call" or "put"`, Value: s}
}

func (t OptionType) valid() bool {
	return t == Call || t == Put
}

// OptionParameters describes one European option on a non-dividend-paying underlying.
type OptionParameters struct {
	Spot         float64 // S, current underlying price
	Strike       float64 // K
	TimeToExpiry float64 // T, in years
	RiskFreeRate float64 // r, continuously compounded, may be negative
	Volatility   float64 // sigma, annualized
	Type         OptionType
}

// Intrinsic is the payoff if exercised at spot.
func (p OptionParameters) Intrinsic() float64 {
	return Payoff(p.Type, p.Spot, p.Strike)
}

// Payoff returns max(s-k, 0) for calls and max(k-s, 0) for puts.
func Payoff(t OptionType, s, k float64) float64 {
	if t == Call {
		if s > k {
			return s - k
		}
		return 0
	}
	if k > s {
		return k - s
	}
	return 0
}

// Batch holds equal-length parameter sequences, one element per option.
// Rates and Types either hold a single shared value or one value per option.
type Batch struct {
	Spots        []float64
	Strikes      []float64
	Expiries     []float64
	Volatilities []float64
	Rates        []float64
	Types        []OptionType
}

// NewBatch builds a batch sharing one rate and one option type.
func NewBatch(spots, strikes, expiries, vols []float64, rate float64, optionType OptionType) Batch {
	return Batch{
		Spots:        spots,
		Strikes:      strikes,
		Expiries:     expiries,
		Volatilities: vols,
		Rates:        []float64{rate},
		Types:        []OptionType{optionType},
	}
}

// WithRates returns a copy of b using per-option rates.
func (b Batch) WithRates(rates []float64) Batch {
	b.Rates = rates
	return b
}

// WithTypes returns a copy of b using per-option types.
func (b Batch) WithTypes(types []OptionType) Batch {
	b.Types = types
	return b
}

// Append adds one option to the batch, expanding shared rates and types as needed.
func (b *Batch) Append(p OptionParameters) {
	n := len(b.Spots)
	if n == 0 {
		b.Rates, b.Types = nil, nil
	}
	b.Rates = expand(b.Rates, n)
	b.Types = expandTypes(b.Types, n)

	b.Spots = append(b.Spots, p.Spot)
	b.Strikes = append(b.Strikes, p.Strike)
	b.Expiries = append(b.Expiries, p.TimeToExpiry)
	b.Volatilities = append(b.Volatilities, p.Volatility)
	b.Rates = append(b.Rates, p.RiskFreeRate)
	b.Types = append(b.Types, p.Type)
}

func (b Batch) Len() int {
	return len(b.Spots)
}

// At returns the i-th option. The batch must have passed ValidateBatch.
func (b Batch) At(i int) OptionParameters {
	p := OptionParameters{
		Spot:         b.Spots[i],
		Strike:       b.Strikes[i],
		TimeToExpiry: b.Expiries[i],
		Volatility:   b.Volatilities[i],
	}
	if len(b.Rates) == 1 {
		p.RiskFreeRate = b.Rates[0]
	} else {
		p.RiskFreeRate = b.Rates[i]
	}
	if len(b.Types) == 1 {
		p.Type = b.Types[0]
	} else {
		p.Type = b.Types[i]
	}
	return p
}

func expand(vals []float64, n int) []float64 {
	if len(vals) != 1 || n <= 1 {
		return vals
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = vals[0]
	}
	return out
}

func expandTypes(vals []OptionType, n int) []OptionType {
	if len(vals) != 1 || n <= 1 {
		return vals
	}
	out := make([]OptionType, n)
	for i := range out {
		out[i] = vals[0]
	}
	return out
}
