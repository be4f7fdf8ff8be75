package models

import (
	"fmt"
	"math"
)

// Validate returns p unchanged when every field satisfies its constraint.
// Zero expiry and zero volatility are valid; pricers resolve them with closed-form limits.
func Validate(p OptionParameters) (OptionParameters, error) {
	if err := validate(p, ""); err != nil {
		return OptionParameters{}, err
	}
	return p, nil
}

func validate(p OptionParameters, suffix string) error {
	switch {
	case !finite(p.Spot) || p.Spot <= 0:
		return &ValidationError{Field: "spot" + suffix, Constraint: "must be a finite number > 0", Value: p.Spot}
	case !finite(p.Strike) || p.Strike <= 0:
		return &ValidationError{Field: "strike" + suffix, Constraint: "must be a finite number > 0", Value: p.Strike}
	case !finite(p.TimeToExpiry) || p.TimeToExpiry < 0:
		return &ValidationError{Field: "timeToExpiry" + suffix, Constraint: "must be a finite number >= 0", Value: p.TimeToExpiry}
	case !finite(p.RiskFreeRate):
		return &ValidationError{Field: "riskFreeRate" + suffix, Constraint: "must be a finite number", Value: p.RiskFreeRate}
	case !finite(p.Volatility) || p.Volatility < 0:
		return &ValidationError{Field: "volatility" + suffix, Constraint: "must be a finite number >= 0", Value: p.Volatility}
	case !p.Type.valid():
		return &ValidationError{Field: "optionType" + suffix, Constraint: `must be "call" or "put"`, Value: p.Type}
	case math.IsInf(math.Exp(-p.RiskFreeRate*p.TimeToExpiry), 0):
		return &ValidationError{Field: "riskFreeRate" + suffix, Constraint: "discount factor exp(-rT) overflows", Value: p.RiskFreeRate}
	case math.IsInf(growth(p), 0):
		return &ValidationError{Field: "riskFreeRate" + suffix, Constraint: "growth factor exp(|r|T + 10σ√T) overflows", Value: p.RiskFreeRate}
	case math.IsInf(p.Spot*growth(p), 0):
		return &ValidationError{Field: "spot" + suffix, Constraint: "simulated price bound S*exp(|r|T + 10σ√T) overflows", Value: p.Spot}
	}
	return nil
}

// ValidateBatch checks the whole batch before any element is priced. The first
// violation is reported with its element index and nothing is returned partially.
func ValidateBatch(b Batch) (Batch, error) {
	n := len(b.Spots)
	if n == 0 {
		return Batch{}, &ValidationError{Field: "spots", Constraint: "batch must contain at least one option"}
	}

	lengths := []struct {
		field string
		n     int
	}{
		{"strikes", len(b.Strikes)},
		{"timeToExpiry", len(b.Expiries)},
		{"volatility", len(b.Volatilities)},
	}
	for _, l := range lengths {
		if l.n != n {
			return Batch{}, &ValidationError{
				Field:      l.field,
				Constraint: fmt.Sprintf("length must equal spots length %d", n),
				Value:      l.n,
			}
		}
	}
	if len(b.Rates) != 1 && len(b.Rates) != n {
		return Batch{}, &ValidationError{
			Field:      "riskFreeRate",
			Constraint: fmt.Sprintf("must hold 1 shared rate or %d per-option rates", n),
			Value:      len(b.Rates),
		}
	}
	if len(b.Types) != 1 && len(b.Types) != n {
		return Batch{}, &ValidationError{
			Field:      "optionType",
			Constraint: fmt.Sprintf("must hold 1 shared type or %d per-option types", n),
			Value:      len(b.Types),
		}
	}

	for i := 0; i < n; i++ {
		if err := validate(b.At(i), fmt.Sprintf("[%d]", i)); err != nil {
			return Batch{}, err
		}
	}
	return b, nil
}

// ValidateSimulations rejects simulation counts below one.
func ValidateSimulations(n int) error {
	if n < 1 {
		return &ValidationError{Field: "numSimulations", Constraint: "must be a positive integer", Value: n}
	}
	return nil
}

// ValidateConfidence requires a level strictly inside (0, 1).
func ValidateConfidence(level float64) error {
	if !finite(level) || level <= 0 || level >= 1 {
		return &ValidationError{Field: "confidenceLevel", Constraint: "must lie in (0, 1)", Value: level}
	}
	return nil
}

// tailSigmas is how far into the tail a simulated terminal price must stay finite.
const tailSigmas = 10

// growth bounds S_T/S for draws within tailSigmas of the mean, with either sign of r.
func growth(p OptionParameters) float64 {
	T := p.TimeToExpiry
	return math.Exp(math.Abs(p.RiskFreeRate*T) + tailSigmas*p.Volatility*math.Sqrt(T))
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
