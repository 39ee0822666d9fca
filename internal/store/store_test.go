package store

import (
	"time"

	"github.com/sells-group/inspect-cli/internal/model"
)

// Compile-time interface checks.
var (
	_ Store = (*SQLiteStore)(nil)
	_ Store = (*PostgresStore)(nil)
)

func sampleInspection(track, jumbo string, overall model.OverallStatus, at time.Time) *model.Inspection {
	observed := 270.0
	return &model.Inspection{
		Query:   track,
		Kind:    model.TrackID,
		Matches: 1,
		Row:     model.RowRef{Index: 3, TrackID: track, JumboID: jumbo},
		Grade: model.GradeResult{
			Value:          "OK",
			SourceStrategy: "direct(Quality)",
			Attempts: []model.GradeAttempt{
				{Strategy: "direct(Quality)", Outcome: model.OutcomeSuccess, Value: "OK"},
			},
		},
		Passing: true,
		Verdicts: []model.ParameterVerdict{
			{Parameter: "CALIPER", Observed: &observed, Min: 250, Max: 300, Status: model.StatusPass, Margin: 20, Message: "value 270 within [250, 300] (margin 20)"},
			{Parameter: "BULK", Min: 250, Max: 350, Status: model.StatusMissing, Message: "BULK: no value"},
		},
		Failures: []model.ParameterVerdict{},
		Summary: model.InspectionSummary{
			Evaluated: 1, InRange: 1, Missing: 1, ComplianceRate: 100, Overall: overall,
		},
		CreatedAt: at,
	}
}
