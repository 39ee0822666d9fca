// Package grade resolves a row's quality grade by trying an ordered list of
// detection strategies and recording every attempt.
package grade

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/sells-group/inspect-cli/internal/model"
)

// Extraction is the outcome of applying one strategy to a row.
type Extraction struct {
	Outcome model.AttemptOutcome
	Value   string
	Detail  string
}

func success(value string) Extraction {
	return Extraction{Outcome: model.OutcomeSuccess, Value: value}
}

func fieldMissing(format string, args ...any) Extraction {
	return Extraction{Outcome: model.OutcomeFieldMissing, Detail: fmt.Sprintf(format, args...)}
}

func valueInvalid(format string, args ...any) Extraction {
	return Extraction{Outcome: model.OutcomeValueInvalid, Detail: fmt.Sprintf(format, args...)}
}

// Strategy extracts a grade from a row.
type Strategy interface {
	// Name identifies the strategy in attempt trails, e.g. "direct(Quality)".
	Name() string
	Extract(row model.Row) Extraction
}

// Vocabulary maps accepted raw grade text (case-insensitive, trimmed) to a
// canonical grade. An empty vocabulary accepts any non-empty text unchanged.
type Vocabulary map[string]string

// NewVocabulary normalizes the keys of m.
func NewVocabulary(m map[string]string) Vocabulary {
	if len(m) == 0 {
		return nil
	}
	v := make(Vocabulary, len(m))
	for raw, canonical := range m {
		v[normalize(raw)] = strings.TrimSpace(canonical)
	}
	return v
}

// Canonical returns the canonical grade for raw, and whether raw is accepted.
func (v Vocabulary) Canonical(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}
	if len(v) == 0 {
		return s, true
	}
	g, ok := v[normalize(s)]
	return g, ok
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// DirectColumn reads the grade from a single column.
type DirectColumn struct {
	Column     string
	Vocabulary Vocabulary
}

// Name implements Strategy.
func (d DirectColumn) Name() string { return "direct(" + d.Column + ")" }

// Extract implements Strategy.
func (d DirectColumn) Extract(row model.Row) Extraction {
	return extractText(row, d.Column, d.Vocabulary)
}

func extractText(row model.Row, column string, vocab Vocabulary) Extraction {
	v := row.Field(column)
	if v.IsMissing() {
		return fieldMissing("column %s missing", column)
	}
	raw := v.Text()
	g, ok := vocab.Canonical(raw)
	if !ok {
		return valueInvalid("column %s: %q is not a recognized grade", column, raw)
	}
	return success(g)
}

// Bucket assigns Grade to scores at or above Min.
type Bucket struct {
	Grade string
	Min   float64
}

// DerivedFromScore buckets a numeric score column into grades.
type DerivedFromScore struct {
	Column string
	// Buckets are evaluated from the highest Min down.
	Buckets []Bucket
	// Floor is the grade for scores below every bucket. Empty makes them invalid.
	Floor    string
	ScoreMin *float64
	ScoreMax *float64
}

// NewDerivedFromScore returns a DerivedFromScore with buckets sorted by descending threshold.
func NewDerivedFromScore(column string, buckets []Bucket) DerivedFromScore {
	sorted := make([]Bucket, len(buckets))
	copy(sorted, buckets)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Min > sorted[j].Min })
	return DerivedFromScore{Column: column, Buckets: sorted}
}

// Name implements Strategy.
func (d DerivedFromScore) Name() string { return "derived(" + d.Column + ")" }

// Extract implements Strategy.
func (d DerivedFromScore) Extract(row model.Row) Extraction {
	v := row.Field(d.Column)
	if v.IsMissing() {
		return fieldMissing("column %s missing", d.Column)
	}
	score, ok := v.Float()
	if !ok {
		return valueInvalid("column %s: %q is not a numeric score", d.Column, v.Text())
	}
	if d.ScoreMin != nil && score < *d.ScoreMin {
		return valueInvalid("column %s: score %s below %s", d.Column, formatNum(score), formatNum(*d.ScoreMin))
	}
	if d.ScoreMax != nil && score > *d.ScoreMax {
		return valueInvalid("column %s: score %s above %s", d.Column, formatNum(score), formatNum(*d.ScoreMax))
	}
	for _, b := range d.Buckets {
		if score >= b.Min {
			return success(b.Grade)
		}
	}
	if d.Floor != "" {
		return success(d.Floor)
	}
	return valueInvalid("column %s: score %s below every bucket", d.Column, formatNum(score))
}

// LegacyAlias reads the grade from the first present column among older
// export column names.
type LegacyAlias struct {
	Columns    []string
	Vocabulary Vocabulary
}

// Name implements Strategy.
func (l LegacyAlias) Name() string { return "legacy_alias(" + strings.Join(l.Columns, ",") + ")" }

// Extract implements Strategy.
func (l LegacyAlias) Extract(row model.Row) Extraction {
	for _, col := range l.Columns {
		if row.Field(col).IsMissing() {
			continue
		}
		return extractText(row, col, l.Vocabulary)
	}
	return fieldMissing("none of %s present", strings.Join(l.Columns, ", "))
}

func formatNum(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
