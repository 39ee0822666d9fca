// Package evaluate checks row values against parameter ranges.
package evaluate

import (
	"fmt"
	"math"
	"strconv"

	"github.com/sells-group/inspect-cli/internal/model"
)

// Evaluate checks the row's value for spec.Name against the inclusive range
// [spec.Min, spec.Max]. Absent, non-numeric, and NaN values are Missing.
// An inverted range is swapped before comparison.
func Evaluate(row model.Row, spec model.ParameterSpec) model.ParameterVerdict {
	lo, hi := spec.Min, spec.Max
	if lo > hi {
		lo, hi = hi, lo
	}
	v := model.ParameterVerdict{
		Parameter: spec.Name,
		Min:       lo,
		Max:       hi,
	}

	field := row.Field(spec.Name)
	value, ok := field.Float()
	if !ok {
		v.Status = model.StatusMissing
		if field.IsMissing() {
			v.Message = fmt.Sprintf("%s: no value", spec.Name)
		} else {
			v.Message = fmt.Sprintf("%s: %q is not numeric", spec.Name, field.Text())
		}
		return v
	}
	v.Observed = &value

	switch {
	case value < lo:
		v.Status = model.StatusFail
		v.Bound = model.BoundMin
		v.Deviation = value - lo
		v.Message = fmt.Sprintf("value %s is %s below min %s (deviation %s)",
			FormatNumber(value), FormatNumber(lo-value), FormatNumber(lo), FormatNumber(v.Deviation))
	case value > hi:
		v.Status = model.StatusFail
		v.Bound = model.BoundMax
		v.Deviation = value - hi
		v.Message = fmt.Sprintf("value %s is %s above max %s (deviation +%s)",
			FormatNumber(value), FormatNumber(v.Deviation), FormatNumber(hi), FormatNumber(v.Deviation))
	default:
		v.Status = model.StatusPass
		toMin, toMax := value-lo, hi-value
		v.Margin = math.Min(toMin, toMax)
		switch {
		case toMin == 0:
			v.Message = fmt.Sprintf("value %s at min boundary (margin 0)", FormatNumber(value))
		case toMax == 0:
			v.Message = fmt.Sprintf("value %s at max boundary (margin 0)", FormatNumber(value))
		default:
			v.Message = fmt.Sprintf("value %s within [%s, %s] (margin %s)",
				FormatNumber(value), FormatNumber(lo), FormatNumber(hi), FormatNumber(v.Margin))
		}
	}
	return v
}

// EvaluateAll evaluates every spec against the row, in spec order.
func EvaluateAll(row model.Row, specs []model.ParameterSpec) []model.ParameterVerdict {
	out := make([]model.ParameterVerdict, 0, len(specs))
	for _, s := range specs {
		out = append(out, Evaluate(row, s))
	}
	return out
}

// FormatNumber renders f rounded to six decimal places without trailing zeros.
// Magnitudes of 1e15 and up have no fractional digits left to round.
func FormatNumber(f float64) string {
	r := f
	if math.Abs(f) < 1e15 {
		r = math.Round(f*1e6) / 1e6
	}
	if r == 0 {
		r = 0 // drop negative zero
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}
