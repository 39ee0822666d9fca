// Package dataset holds inspection records in an immutable in-memory store
// indexed by Track ID and Jumbo ID.
package dataset

import (
	"slices"
	"strings"

	"github.com/sells-group/inspect-cli/internal/model"
)

// Dataset is the loaded set of inspection rows. It is read-only after
// construction and safe for concurrent readers.
type Dataset struct {
	columns []string
	rows    []model.Row
	index   map[model.IdentifierKind]map[string][]int
}

// New indexes rows by identifier. Rows must already be in ingestion order.
func New(columns []string, rows []model.Row) *Dataset {
	d := &Dataset{
		columns: slices.Clone(columns),
		rows:    rows,
		index:   make(map[model.IdentifierKind]map[string][]int, len(model.IdentifierKinds)),
	}
	for _, kind := range model.IdentifierKinds {
		d.index[kind] = make(map[string][]int)
	}
	for i, r := range rows {
		for kind, id := range r.Identifiers {
			if id == "" || !kind.Valid() {
				continue
			}
			d.index[kind][id] = append(d.index[kind][id], i)
		}
	}
	return d
}

// Len returns the number of rows.
func (d *Dataset) Len() int { return len(d.rows) }

// Columns returns the source header in file order.
func (d *Dataset) Columns() []string { return slices.Clone(d.columns) }

// HasColumn reports whether the source header contained name.
func (d *Dataset) HasColumn(name string) bool {
	return slices.Contains(d.columns, name)
}

// Rows returns all rows in ingestion order.
func (d *Dataset) Rows() []model.Row { return slices.Clone(d.rows) }

// FindByIdentifier returns the rows whose identifier of the given kind equals
// value exactly (case-sensitive), in ingestion order. No match, an empty
// value, or an unknown kind yields an empty result.
func (d *Dataset) FindByIdentifier(kind model.IdentifierKind, value string) []model.Row {
	if value == "" {
		return nil
	}
	ids, ok := d.index[kind]
	if !ok {
		return nil
	}
	positions := ids[value]
	out := make([]model.Row, 0, len(positions))
	for _, p := range positions {
		out = append(out, d.rows[p])
	}
	return out
}

// Search detects the identifier kind of free-form input, trims it, and looks it up.
func (d *Dataset) Search(input string) (model.IdentifierKind, []model.Row) {
	q := strings.TrimSpace(input)
	kind := model.DetectIdentifierKind(q)
	return kind, d.FindByIdentifier(kind, q)
}

// SearchAll resolves several inputs and concatenates the matches, keeping
// input order and dropping rows already matched by an earlier input.
func (d *Dataset) SearchAll(inputs []string) []model.Row {
	seen := make(map[int]bool)
	var out []model.Row
	for _, in := range inputs {
		_, rows := d.Search(in)
		for _, r := range rows {
			if seen[r.Index] {
				continue
			}
			seen[r.Index] = true
			out = append(out, r)
		}
	}
	return out
}
