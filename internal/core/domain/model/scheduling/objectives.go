package scheduling

import (
	"fmt"
	"math"

	"fieldservice/internal/pkg/errs"
)

// Objectives are the weights of the ranking terms. They need not sum to 1;
// the final score is clamped to [0, 1].
type Objectives struct {
	Skill           float64 `json:"skill" yaml:"skill"`
	Travel          float64 `json:"travel" yaml:"travel"`
	Availability    float64 `json:"availability" yaml:"availability"`
	Efficiency      float64 `json:"efficiency" yaml:"efficiency"`
	WorkloadBalance float64 `json:"workload_balance" yaml:"workload_balance"`
}

// DefaultObjectives returns the weights used when a caller supplies none:
// skill 0.30, travel 0.25, availability 0.20, efficiency 0.15, workload balance 0.10.
func DefaultObjectives() Objectives {
	return Objectives{
		Skill:           0.30,
		Travel:          0.25,
		Availability:    0.20,
		Efficiency:      0.15,
		WorkloadBalance: 0.10,
	}
}

// IsZero reports whether no weight is set, which callers treat as "use defaults".
func (o Objectives) IsZero() bool {
	return o == Objectives{}
}

// Validate requires every weight to be finite and non-negative.
func (o Objectives) Validate() error {
	for _, w := range []struct {
		name  string
		value float64
	}{
		{"skill weight", o.Skill},
		{"travel weight", o.Travel},
		{"availability weight", o.Availability},
		{"efficiency weight", o.Efficiency},
		{"workload balance weight", o.WorkloadBalance},
	} {
		if math.IsNaN(w.value) || math.IsInf(w.value, 0) || w.value < 0 {
			return errs.NewValueIsInvalidErrorWithCause(w.name, fmt.Errorf("%v is not a non-negative number", w.value))
		}
	}
	return nil
}
