// internal/matching/config.go
package matching

import "fmt"

// Weights of the score components. The defaults sum to 1.0.
type Weights struct {
	StyleExact float64
	StyleGroup float64
	Features   float64
	Theme      float64
	Complexity float64
	SingleForm float64
}

// Thresholds hold the dynamic tier boundaries.
type Thresholds struct {
	Exact         float64
	ExactComplex  float64
	Partial       float64
	PartialSimple float64
}

type Config struct {
	Weights    Weights
	Thresholds Thresholds
}

func DefaultConfig() Config {
	return Config{
		Weights: Weights{
			StyleExact: 0.25,
			StyleGroup: 0.15,
			Features:   0.30,
			Theme:      0.20,
			Complexity: 0.15,
			SingleForm: 0.10,
		},
		Thresholds: Thresholds{
			Exact:         0.7,
			ExactComplex:  0.8,
			Partial:       0.4,
			PartialSimple: 0.5,
		},
	}
}

// Validate checks that the full-credit weights sum to one and thresholds are ordered.
func (c Config) Validate() error {
	w := c.Weights
	sum := w.StyleExact + w.Features + w.Theme + w.Complexity + w.SingleForm
	if sum < 1-1e-6 || sum > 1+1e-6 {
		return fmt.Errorf("matching weights must sum to 1.0, got %.4f", sum)
	}
	if w.StyleGroup > w.StyleExact {
		return fmt.Errorf("style group weight %.2f exceeds exact weight %.2f", w.StyleGroup, w.StyleExact)
	}
	th := c.Thresholds
	for name, v := range map[string]float64{
		"exact": th.Exact, "exact_complex": th.ExactComplex,
		"partial": th.Partial, "partial_simple": th.PartialSimple,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("threshold %s must be within [0,1], got %.2f", name, v)
		}
	}
	if th.Partial > th.Exact || th.PartialSimple > th.Exact {
		return fmt.Errorf("partial thresholds must not exceed the exact threshold")
	}
	return nil
}
