package grade

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/inspect-cli/internal/config"
	"github.com/sells-group/inspect-cli/internal/model"
)

// Spec is an ordered list of grade strategies; earlier strategies win.
type Spec struct {
	Strategies []Strategy
}

// Validate rejects specs that could never produce a grade.
func (s Spec) Validate() error {
	if len(s.Strategies) == 0 {
		return eris.New("grade: spec has no strategies")
	}
	for i, st := range s.Strategies {
		if st == nil {
			return eris.Errorf("grade: strategy %d is nil", i)
		}
	}
	return nil
}

// Names returns the strategy names in priority order.
func (s Spec) Names() []string {
	names := make([]string, 0, len(s.Strategies))
	for _, st := range s.Strategies {
		names = append(names, st.Name())
	}
	return names
}

// BuildSpec converts configured strategies into a Spec.
func BuildSpec(cfgs []config.StrategyConfig) (Spec, error) {
	var spec Spec
	for i, c := range cfgs {
		switch c.Kind {
		case config.StrategyDirect:
			if c.Column == "" {
				return Spec{}, eris.Errorf("grade: strategy %d: direct needs a column", i)
			}
			spec.Strategies = append(spec.Strategies, DirectColumn{
				Column:     c.Column,
				Vocabulary: NewVocabulary(c.Vocabulary),
			})
		case config.StrategyDerived:
			if c.Column == "" || len(c.Buckets) == 0 {
				return Spec{}, eris.Errorf("grade: strategy %d: derived needs a column and buckets", i)
			}
			buckets := make([]Bucket, 0, len(c.Buckets))
			for _, b := range c.Buckets {
				buckets = append(buckets, Bucket{Grade: b.Grade, Min: b.Min})
			}
			d := NewDerivedFromScore(c.Column, buckets)
			d.Floor = c.Floor
			d.ScoreMin = c.ScoreMin
			d.ScoreMax = c.ScoreMax
			spec.Strategies = append(spec.Strategies, d)
		case config.StrategyLegacyAlias:
			if len(c.Columns) == 0 {
				return Spec{}, eris.Errorf("grade: strategy %d: legacy_alias needs columns", i)
			}
			spec.Strategies = append(spec.Strategies, LegacyAlias{
				Columns:    c.Columns,
				Vocabulary: NewVocabulary(c.Vocabulary),
			})
		default:
			return Spec{}, eris.Errorf("grade: strategy %d: unknown kind %q", i, c.Kind)
		}
	}
	if err := spec.Validate(); err != nil {
		return Spec{}, err
	}
	return spec, nil
}

// Resolve tries each strategy in order and stops at the first success.
// Every tried strategy is recorded in Attempts. When none succeeds the grade
// is model.GradeUnknown with source model.SourceNone. Resolve never fails.
func Resolve(row model.Row, spec Spec) model.GradeResult {
	result := model.GradeResult{
		Value:          model.GradeUnknown,
		SourceStrategy: model.SourceNone,
		Attempts:       make([]model.GradeAttempt, 0, len(spec.Strategies)),
	}

	for _, st := range spec.Strategies {
		if st == nil {
			result.Attempts = append(result.Attempts, model.GradeAttempt{
				Strategy: "nil",
				Outcome:  model.OutcomeValueInvalid,
				Detail:   "nil strategy",
			})
			continue
		}
		ex := st.Extract(row)
		result.Attempts = append(result.Attempts, model.GradeAttempt{
			Strategy: st.Name(),
			Outcome:  ex.Outcome,
			Value:    ex.Value,
			Detail:   ex.Detail,
		})
		if ex.Outcome == model.OutcomeSuccess {
			result.Value = ex.Value
			result.SourceStrategy = st.Name()
			break
		}
	}

	zap.L().Debug("grade: resolved",
		zap.String("row", row.Ref().Label()),
		zap.String("grade", result.Value),
		zap.String("source", result.SourceStrategy),
		zap.Any("attempts", result.Attempts),
	)
	return result
}

// Passing reports whether a resolved grade is one of the configured pass grades.
// Unresolved grades never pass.
func Passing(result model.GradeResult, rules config.GradeRules) bool {
	if !result.Resolved() {
		return false
	}
	return rules.IsPassGrade(result.Value)
}
