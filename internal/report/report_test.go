package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/inspect-cli/internal/config"
	"github.com/sells-group/inspect-cli/internal/evaluate"
	"github.com/sells-group/inspect-cli/internal/grade"
	"github.com/sells-group/inspect-cli/internal/model"
)

func testInspector(t *testing.T) *Inspector {
	t.Helper()
	rules := config.DefaultRules()
	rules.Parameters = append(rules.Parameters, model.ParameterSpec{Name: "EXTRA", Min: 0, Max: 1})
	spec, err := grade.BuildSpec(rules.Grade.Strategies)
	require.NoError(t, err)
	catalog := evaluate.BuildCatalog(nil, rules.Process, rules.Parameters)
	return NewInspector(rules, spec, catalog).WithNow(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
}

func pm7Row(fields map[string]model.Value) model.Row {
	return model.Row{
		Index:       7,
		Identifiers: map[model.IdentifierKind]string{model.TrackID: "1001", model.JumboID: "AB1"},
		Fields:      fields,
	}
}

func TestInspect_FailingRow(t *testing.T) {
	in := testInspector(t)
	r := pm7Row(map[string]model.Value{
		"Quality":            model.String("ok"),
		"CALIPER":            model.Number(240),
		"BULK":               model.Number(400),
		"MOISTURE":           model.Number(250),
		"Process_Parameters": model.String("MOISTURE"),
		"Min":                model.Number(245),
		"Max":                model.Number(255),
	})

	insp, err := in.Inspect("1001", model.TrackID, []model.Row{r, pm7Row(nil)})
	require.NoError(t, err)

	assert.Equal(t, "1001", insp.Query)
	assert.Equal(t, model.TrackID, insp.Kind)
	assert.Equal(t, 2, insp.Matches)
	assert.Equal(t, 7, insp.Row.Index)
	assert.Equal(t, "OK", insp.Grade.Value)
	assert.True(t, insp.Passing)
	assert.Equal(t, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), insp.CreatedAt)

	require.Len(t, insp.Verdicts, 4)
	assert.Equal(t, 1, insp.Summary.InRange)
	assert.Equal(t, 2, insp.Summary.OutOfRange)
	assert.Equal(t, 1, insp.Summary.Missing)
	assert.Equal(t, 3, insp.Summary.Evaluated)
	assert.InDelta(t, 100.0/3, insp.Summary.ComplianceRate, 1e-9)
	assert.Equal(t, model.OverallFail, insp.Summary.Overall)

	// BULK is 50 over max; CALIPER is 10 under min.
	require.Len(t, insp.Failures, 2)
	assert.Equal(t, "BULK", insp.Failures[0].Parameter)
	assert.Equal(t, "HIGH", insp.Failures[0].Direction())
	assert.Equal(t, "CALIPER", insp.Failures[1].Parameter)

	require.NotNil(t, insp.Process)
	assert.Equal(t, "MOISTURE", insp.Process.Parameter)
	assert.Equal(t, model.StatusPass, insp.Process.Status)

	var groups []string
	for _, g := range insp.Groups {
		groups = append(groups, g.Group)
	}
	assert.Equal(t, []string{"Physical Properties", "Chemical Properties", OtherGroup}, groups)
}

func TestInspect_NoMatch(t *testing.T) {
	_, err := testInspector(t).Inspect("zzz", model.JumboID, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestInspectRow_UnknownGradeNotPassing(t *testing.T) {
	insp := testInspector(t).InspectRow(pm7Row(map[string]model.Value{"Quality": model.String("??")}))
	assert.Equal(t, model.GradeUnknown, insp.Grade.Value)
	assert.False(t, insp.Passing)
	assert.Nil(t, insp.Process)
	assert.Equal(t, model.OverallPass, insp.Summary.Overall)
	assert.Zero(t, insp.Summary.ComplianceRate)
}

func TestComplianceRate(t *testing.T) {
	assert.Zero(t, ComplianceRate(0, 0))
	assert.Zero(t, ComplianceRate(3, 0))
	assert.InDelta(t, 50.0, ComplianceRate(1, 2), 1e-12)
	assert.InDelta(t, 100.0, ComplianceRate(4, 4), 1e-12)
}

func TestFailures_SortedByAbsoluteDeviation(t *testing.T) {
	verdicts := []model.ParameterVerdict{
		{Parameter: "a", Status: model.StatusFail, Deviation: -3},
		{Parameter: "b", Status: model.StatusPass},
		{Parameter: "c", Status: model.StatusFail, Deviation: 5},
		{Parameter: "d", Status: model.StatusFail, Deviation: 3},
		{Parameter: "e", Status: model.StatusMissing},
	}
	got := Failures(verdicts)
	require.Len(t, got, 3)
	assert.Equal(t, "c", got[0].Parameter)
	assert.Equal(t, "a", got[1].Parameter, "ties keep evaluation order")
	assert.Equal(t, "d", got[2].Parameter)

	assert.NotNil(t, Failures(nil))
}

func TestFormatText(t *testing.T) {
	in := testInspector(t)
	insp, err := in.Inspect("AB1", model.JumboID, []model.Row{pm7Row(map[string]model.Value{
		"Quality": model.String("NOT OK"),
		"CALIPER": model.Number(310),
	})})
	require.NoError(t, err)

	out := FormatText(insp)
	assert.Contains(t, out, "# Inspection Report: T:1001 / J:AB1")
	assert.Contains(t, out, "Query: AB1 (Jumbo ID)")
	assert.Contains(t, out, "- Grade: NOT OK (FAIL)")
	assert.Contains(t, out, "direct(Quality): success")
	assert.Contains(t, out, "## Failures")
	assert.Contains(t, out, "**CALIPER** [250, 300]: FAIL (HIGH)")
	assert.Contains(t, out, "- Compliance: 0.0%")
	assert.Contains(t, out, "- Overall: FAIL")
}

func TestRenderTerminal(t *testing.T) {
	insp := testInspector(t).InspectRow(pm7Row(map[string]model.Value{
		"Quality": model.String("OK"),
		"BULK":    model.Number(300),
	}))
	out := RenderTerminal(insp)
	assert.Contains(t, out, "PASSING: OK")
	assert.Contains(t, out, "BULK")
	assert.Contains(t, out, "compliance 100.0%")
	assert.Contains(t, out, "PASS")
}

func TestFormatComparison(t *testing.T) {
	observed := 5.0
	res := model.ComparisonResult{
		Rows:       []model.RowRef{{Index: 0, TrackID: "1"}, {Index: 1, JumboID: "J2"}},
		Parameters: []string{"density"},
		PerParameter: map[string][]model.ParameterVerdict{
			"density": {
				{Parameter: "density", Min: 1, Max: 10, Status: model.StatusMissing},
				{Parameter: "density", Min: 1, Max: 10, Status: model.StatusPass, Observed: &observed},
			},
		},
	}
	out := FormatComparison(res)
	assert.Contains(t, out, "| Parameter | Range | T:1 | J:J2 |")
	assert.Contains(t, out, "| density | 1 - 10 | n/a | 5 ✓ |")
}
