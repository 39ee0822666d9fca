package model

// GradeUnknown is the grade reported when no strategy produced a value.
const GradeUnknown = "Unknown"

// SourceNone is the source strategy reported when every strategy failed.
const SourceNone = "none"

// AttemptOutcome is the result of trying one grade strategy on a row.
type AttemptOutcome string

const (
	OutcomeSuccess      AttemptOutcome = "success"
	OutcomeFieldMissing AttemptOutcome = "field_missing"
	OutcomeValueInvalid AttemptOutcome = "value_invalid"
)

// GradeAttempt records a single strategy attempt during grade resolution.
type GradeAttempt struct {
	Strategy string         `json:"strategy"`
	Outcome  AttemptOutcome `json:"outcome"`
	Value    string         `json:"value,omitempty"`
	Detail   string         `json:"detail,omitempty"`
}

// GradeResult is the outcome of grade resolution for one row.
// If Value is not GradeUnknown, SourceStrategy names the winning strategy.
type GradeResult struct {
	Value          string         `json:"value"`
	SourceStrategy string         `json:"source_strategy"`
	Attempts       []GradeAttempt `json:"attempts"`
}

// Resolved reports whether a strategy produced the grade.
func (g GradeResult) Resolved() bool {
	return g.SourceStrategy != "" && g.SourceStrategy != SourceNone
}
