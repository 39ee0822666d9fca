// Package report assembles and renders the inspection of a single row.
package report

import (
	"math"
	"sort"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/inspect-cli/internal/config"
	"github.com/sells-group/inspect-cli/internal/evaluate"
	"github.com/sells-group/inspect-cli/internal/grade"
	"github.com/sells-group/inspect-cli/internal/model"
)

// ErrNoMatch is returned when a query matches no rows.
var ErrNoMatch = eris.New("report: no rows match")

// OtherGroup collects verdicts for parameters outside every configured group.
const OtherGroup = "Other"

// Inspector evaluates rows against a grade spec and a range catalog.
type Inspector struct {
	rules   *config.Rules
	spec    grade.Spec
	catalog *evaluate.Catalog
	now     func() time.Time
}

// NewInspector creates an Inspector.
func NewInspector(rules *config.Rules, spec grade.Spec, catalog *evaluate.Catalog) *Inspector {
	return &Inspector{rules: rules, spec: spec, catalog: catalog, now: time.Now}
}

// WithNow sets a fixed clock for testing.
func (in *Inspector) WithNow(t time.Time) *Inspector {
	in.now = func() time.Time { return t }
	return in
}

// Catalog returns the range catalog used for evaluation.
func (in *Inspector) Catalog() *evaluate.Catalog { return in.catalog }

// GradeSpec returns the grade strategies used for resolution.
func (in *Inspector) GradeSpec() grade.Spec { return in.spec }

// Rules returns the rules the inspector was built from.
func (in *Inspector) Rules() *config.Rules { return in.rules }

// Inspect evaluates the first of matches. Matches are expected in ingestion
// order, as returned by a dataset search.
func (in *Inspector) Inspect(query string, kind model.IdentifierKind, matches []model.Row) (model.Inspection, error) {
	if len(matches) == 0 {
		return model.Inspection{}, eris.Wrapf(ErrNoMatch, "query %q", query)
	}
	insp := in.InspectRow(matches[0])
	insp.Query = query
	insp.Kind = kind
	insp.Matches = len(matches)
	return insp, nil
}

// InspectRow resolves the row's grade and evaluates every catalog parameter.
func (in *Inspector) InspectRow(row model.Row) model.Inspection {
	g := grade.Resolve(row, in.spec)
	verdicts := evaluate.EvaluateAll(row, in.catalog.Specs())

	insp := model.Inspection{
		Row:       row.Ref(),
		Matches:   1,
		Grade:     g,
		Passing:   grade.Passing(g, in.rules.Grade),
		Verdicts:  verdicts,
		Failures:  Failures(verdicts),
		Groups:    Group(verdicts, in.rules),
		Summary:   Summarize(verdicts),
		CreatedAt: in.now().UTC(),
	}
	if ps, ok := evaluate.ProcessSpec(row, in.rules.Process); ok {
		pv := evaluate.Evaluate(row, ps)
		insp.Process = &pv
	}
	return insp
}

// Summarize counts verdicts by status. The compliance rate is the percentage
// of evaluable (non-missing) parameters in range, 0 when none are evaluable.
func Summarize(verdicts []model.ParameterVerdict) model.InspectionSummary {
	var s model.InspectionSummary
	for _, v := range verdicts {
		switch v.Status {
		case model.StatusPass:
			s.InRange++
		case model.StatusFail:
			s.OutOfRange++
		default:
			s.Missing++
		}
	}
	s.Evaluated = s.InRange + s.OutOfRange
	s.ComplianceRate = ComplianceRate(s.InRange, s.Evaluated)
	s.Overall = model.OverallPass
	if s.OutOfRange > 0 {
		s.Overall = model.OverallFail
	}
	return s
}

// ComplianceRate returns inRange/total as a percentage, or 0 when total is 0.
func ComplianceRate(inRange, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(inRange) / float64(total) * 100
}

// Failures returns the failing verdicts ordered by absolute deviation,
// largest first. Ties keep evaluation order.
func Failures(verdicts []model.ParameterVerdict) []model.ParameterVerdict {
	out := make([]model.ParameterVerdict, 0)
	for _, v := range verdicts {
		if v.Status == model.StatusFail {
			out = append(out, v)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return math.Abs(out[i].Deviation) > math.Abs(out[j].Deviation)
	})
	return out
}

// Group buckets verdicts by the configured parameter groups, in group order.
// Empty groups are omitted; ungrouped parameters land in OtherGroup.
func Group(verdicts []model.ParameterVerdict, rules *config.Rules) []model.GroupedVerdicts {
	byGroup := make(map[string][]model.ParameterVerdict)
	for _, v := range verdicts {
		name := rules.GroupOf(v.Parameter)
		if name == "" {
			name = OtherGroup
		}
		byGroup[name] = append(byGroup[name], v)
	}

	out := make([]model.GroupedVerdicts, 0, len(byGroup))
	for _, g := range rules.Groups {
		if vs, ok := byGroup[g.Name]; ok {
			out = append(out, model.GroupedVerdicts{Group: g.Name, Verdicts: vs})
			delete(byGroup, g.Name)
		}
	}
	if vs, ok := byGroup[OtherGroup]; ok {
		out = append(out, model.GroupedVerdicts{Group: OtherGroup, Verdicts: vs})
	}
	return out
}
