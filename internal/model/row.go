package model

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// IdentifierKind names a lookup key carried by an inspection row.
type IdentifierKind string

const (
	TrackID IdentifierKind = "track_id"
	JumboID IdentifierKind = "jumbo_id"
)

// IdentifierKinds lists the supported identifier kinds in display order.
var IdentifierKinds = []IdentifierKind{TrackID, JumboID}

// Valid reports whether k is a supported identifier kind.
func (k IdentifierKind) Valid() bool {
	return k == TrackID || k == JumboID
}

// Label returns the human-facing name of the identifier kind.
func (k IdentifierKind) Label() string {
	switch k {
	case TrackID:
		return "Track ID"
	case JumboID:
		return "Jumbo ID"
	default:
		return string(k)
	}
}

// DetectIdentifierKind classifies free-form search input. Track IDs are
// numeric; anything else is treated as a Jumbo ID.
func DetectIdentifierKind(input string) IdentifierKind {
	s := strings.TrimSpace(input)
	if s == "" {
		return JumboID
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return JumboID
		}
	}
	return TrackID
}

// ValueKind discriminates the three shapes a raw field value can take.
type ValueKind string

const (
	ValueMissing ValueKind = "missing"
	ValueNumber  ValueKind = "number"
	ValueString  ValueKind = "string"
)

// Value is a single raw field value. The zero value is missing.
type Value struct {
	Kind ValueKind
	Num  float64
	Str  string
}

// Missing returns a missing value.
func Missing() Value { return Value{Kind: ValueMissing} }

// Number returns a numeric value.
func Number(f float64) Value { return Value{Kind: ValueNumber, Num: f} }

// String returns a string value.
func String(s string) Value { return Value{Kind: ValueString, Str: s} }

// missingTokens are cell contents that mean "no value" in inspection exports.
var missingTokens = map[string]bool{
	"":     true,
	"nan":  true,
	"na":   true,
	"n/a":  true,
	"null": true,
	"none": true,
	"-":    true,
}

// ParseValue converts a raw cell into a Value. Blank cells and the usual
// null tokens are missing; anything parseable as a finite float is a number.
// Infinities stay strings, so they evaluate as non-numeric.
func ParseValue(raw string) Value {
	s := strings.TrimSpace(raw)
	if missingTokens[strings.ToLower(s)] {
		return Missing()
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return Number(f)
	}
	return String(s)
}

// IsMissing reports whether the value is absent.
func (v Value) IsMissing() bool {
	return v.Kind == "" || v.Kind == ValueMissing
}

// Float returns the numeric value. ok is false for missing, string, and
// non-finite values.
func (v Value) Float() (float64, bool) {
	if v.Kind != ValueNumber || math.IsNaN(v.Num) || math.IsInf(v.Num, 0) {
		return 0, false
	}
	return v.Num, true
}

// Text returns the value as display text; missing values render empty.
func (v Value) Text() string {
	switch v.Kind {
	case ValueNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case ValueString:
		return v.Str
	default:
		return ""
	}
}

// MarshalJSON encodes numbers as JSON numbers, strings as strings, and
// missing (or NaN) values as null.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case ValueNumber:
		if math.IsNaN(v.Num) || math.IsInf(v.Num, 0) {
			return []byte("null"), nil
		}
		return json.Marshal(v.Num)
	case ValueString:
		return json.Marshal(v.Str)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch t := raw.(type) {
	case float64:
		*v = Number(t)
	case string:
		*v = String(t)
	default:
		*v = Missing()
	}
	return nil
}

// Row is one inspection record. Rows are built once at ingestion and never
// mutated afterwards.
type Row struct {
	// Index is the zero-based position of the row in ingestion order.
	Index       int                       `json:"index"`
	Identifiers map[IdentifierKind]string `json:"identifiers"`
	Fields      map[string]Value          `json:"fields"`
}

// Field returns the named field, or a missing value if the row lacks it.
func (r Row) Field(name string) Value {
	if r.Fields == nil {
		return Missing()
	}
	v, ok := r.Fields[name]
	if !ok {
		return Missing()
	}
	return v
}

// Identifier returns the identifier of the given kind, or "".
func (r Row) Identifier(kind IdentifierKind) string {
	return r.Identifiers[kind]
}

// HasIdentifier reports whether the row carries at least one non-empty identifier.
func (r Row) HasIdentifier() bool {
	for _, id := range r.Identifiers {
		if id != "" {
			return true
		}
	}
	return false
}

// Ref returns a compact reference to the row for results and reports.
func (r Row) Ref() RowRef {
	return RowRef{
		Index:   r.Index,
		TrackID: r.Identifier(TrackID),
		JumboID: r.Identifier(JumboID),
	}
}

// RowRef identifies a row without carrying its fields.
type RowRef struct {
	Index   int    `json:"index"`
	TrackID string `json:"track_id,omitempty"`
	JumboID string `json:"jumbo_id,omitempty"`
}

// Label renders the reference as "T:<track> / J:<jumbo>", omitting empty parts.
func (r RowRef) Label() string {
	var parts []string
	if r.TrackID != "" {
		parts = append(parts, "T:"+r.TrackID)
	}
	if r.JumboID != "" {
		parts = append(parts, "J:"+r.JumboID)
	}
	if len(parts) == 0 {
		return "row " + strconv.Itoa(r.Index)
	}
	return strings.Join(parts, " / ")
}
