// Package compare evaluates several rows side by side against the same
// parameter ranges.
package compare

import (
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/inspect-cli/internal/evaluate"
	"github.com/sells-group/inspect-cli/internal/model"
)

// DefaultConcurrency is used when an Engine has no positive Concurrency.
const DefaultConcurrency = 4

// Engine compares rows parameter by parameter. Parameters are evaluated in
// parallel, bounded by Concurrency; the result never depends on scheduling.
type Engine struct {
	Concurrency int
}

// NewEngine creates an Engine with the given parallelism.
func NewEngine(concurrency int) *Engine {
	return &Engine{Concurrency: concurrency}
}

// Compare evaluates every spec against every row. For each parameter the
// verdict slice is aligned with rows by position. Specs repeating an earlier
// name are skipped. Empty rows or specs yield an empty result.
func (e *Engine) Compare(rows []model.Row, specs []model.ParameterSpec) model.ComparisonResult {
	result := model.ComparisonResult{
		Rows:         make([]model.RowRef, 0, len(rows)),
		Parameters:   make([]string, 0, len(specs)),
		PerParameter: make(map[string][]model.ParameterVerdict, len(specs)),
	}
	if len(rows) == 0 {
		return result
	}
	for _, r := range rows {
		result.Rows = append(result.Rows, r.Ref())
	}

	unique := make([]model.ParameterSpec, 0, len(specs))
	seen := make(map[string]bool, len(specs))
	for _, s := range specs {
		if seen[s.Name] {
			zap.L().Debug("compare: duplicate parameter skipped", zap.String("parameter", s.Name))
			continue
		}
		seen[s.Name] = true
		unique = append(unique, s)
	}

	// One pre-sized slot per parameter; goroutines only write their own slot.
	slots := make([][]model.ParameterVerdict, len(unique))

	limit := e.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	var g errgroup.Group
	g.SetLimit(limit)
	for i, spec := range unique {
		g.Go(func() error {
			verdicts := make([]model.ParameterVerdict, len(rows))
			for j, r := range rows {
				verdicts[j] = evaluate.Evaluate(r, spec)
			}
			slots[i] = verdicts
			return nil
		})
	}
	_ = g.Wait()

	for i, spec := range unique {
		result.Parameters = append(result.Parameters, spec.Name)
		result.PerParameter[spec.Name] = slots[i]
	}
	return result
}

// Compare runs a comparison with the default engine.
func Compare(rows []model.Row, specs []model.ParameterSpec) model.ComparisonResult {
	return NewEngine(DefaultConcurrency).Compare(rows, specs)
}

// Failing returns the parameters where at least one row failed, in result order.
func Failing(res model.ComparisonResult) []string {
	var out []string
	for _, p := range res.Parameters {
		for _, v := range res.PerParameter[p] {
			if v.Status == model.StatusFail {
				out = append(out, p)
				break
			}
		}
	}
	return out
}
