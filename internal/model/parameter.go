package model

// ParameterSpec is the acceptable range for one measured parameter.
type ParameterSpec struct {
	Name    string   `json:"name" yaml:"name" mapstructure:"name" validate:"required"`
	Min     float64  `json:"min" yaml:"min" mapstructure:"min"`
	Max     float64  `json:"max" yaml:"max" mapstructure:"max" validate:"gtefield=Min"`
	Average *float64 `json:"average,omitempty" yaml:"average,omitempty" mapstructure:"average"`
	// Source records where the range came from ("data", "config", "process").
	Source string `json:"source,omitempty" yaml:"-" mapstructure:"-"`
}

// VerdictStatus is the outcome of evaluating one parameter on one row.
type VerdictStatus string

const (
	StatusPass    VerdictStatus = "pass"
	StatusFail    VerdictStatus = "fail"
	StatusMissing VerdictStatus = "missing"
)

// Bound names the side of a range a failing value fell off.
type Bound string

const (
	BoundNone Bound = ""
	BoundMin  Bound = "min"
	BoundMax  Bound = "max"
)

// ParameterVerdict is the evaluation of one parameter on one row.
// Status is Missing iff Observed is nil; otherwise Pass iff Min <= *Observed <= Max.
type ParameterVerdict struct {
	Parameter string        `json:"parameter"`
	Observed  *float64      `json:"observed_value"`
	Min       float64       `json:"min"`
	Max       float64       `json:"max"`
	Status    VerdictStatus `json:"status"`
	// Deviation is observed minus the violated bound for failures (negative
	// below min, positive above max) and 0 otherwise.
	Deviation float64 `json:"deviation"`
	Bound     Bound   `json:"bound,omitempty"`
	// Margin is the distance to the nearest bound for passing values.
	Margin  float64 `json:"margin"`
	Message string  `json:"message"`
}

// Direction returns "LOW" or "HIGH" for failures and "" otherwise.
func (v ParameterVerdict) Direction() string {
	switch v.Bound {
	case BoundMin:
		return "LOW"
	case BoundMax:
		return "HIGH"
	default:
		return ""
	}
}

// ComparisonResult aligns per-parameter verdicts across compared rows.
// Every slice in PerParameter has len(Rows) entries, indexed like Rows.
type ComparisonResult struct {
	Rows         []RowRef                      `json:"rows"`
	Parameters   []string                      `json:"parameters"`
	PerParameter map[string][]ParameterVerdict `json:"per_parameter"`
}
