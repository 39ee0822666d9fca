package model

import "time"

// OverallStatus is the roll-up status of an inspection.
type OverallStatus string

const (
	OverallPass OverallStatus = "PASS"
	OverallFail OverallStatus = "FAIL"
)

// InspectionSummary rolls up the parameter verdicts of one row.
type InspectionSummary struct {
	Evaluated      int           `json:"evaluated"`
	InRange        int           `json:"in_range"`
	OutOfRange     int           `json:"out_of_range"`
	Missing        int           `json:"missing"`
	ComplianceRate float64       `json:"compliance_rate"`
	Overall        OverallStatus `json:"overall"`
}

// GroupedVerdicts holds the verdicts of one parameter group.
type GroupedVerdicts struct {
	Group    string             `json:"group"`
	Verdicts []ParameterVerdict `json:"verdicts"`
}

// Inspection is the full evaluation of one row: grade, verdicts, and summary.
type Inspection struct {
	ID        string             `json:"id,omitempty"`
	Query     string             `json:"query"`
	Kind      IdentifierKind     `json:"kind"`
	Matches   int                `json:"matches"`
	Row       RowRef             `json:"row"`
	Grade     GradeResult        `json:"grade"`
	Passing   bool               `json:"passing"`
	Process   *ParameterVerdict  `json:"process,omitempty"`
	Verdicts  []ParameterVerdict `json:"verdicts"`
	Failures  []ParameterVerdict `json:"failures"`
	Groups    []GroupedVerdicts  `json:"groups,omitempty"`
	Summary   InspectionSummary  `json:"summary"`
	CreatedAt time.Time          `json:"created_at"`
}
