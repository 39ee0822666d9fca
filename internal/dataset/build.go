package dataset

import (
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/inspect-cli/internal/model"
)

// Schema names the identifier columns of an export.
type Schema struct {
	TrackColumn string
	JumboColumn string
}

// LoadStats summarizes an ingestion.
type LoadStats struct {
	Source      string `json:"source"`
	Records     int    `json:"records"`
	Rows        int    `json:"rows"`
	NoIdentity  int    `json:"dropped_no_identifier"`
	Columns     int    `json:"columns"`
	DupeColumns int    `json:"duplicate_columns"`
}

// Build converts a header and raw records into a Dataset. Rows without any
// identifier are dropped and counted. Identifiers are whitespace-trimmed;
// every other cell is parsed with model.ParseValue.
func Build(header []string, records [][]string, schema Schema) (*Dataset, LoadStats, error) {
	stats := LoadStats{Records: len(records)}

	colIdx := make(map[string]int, len(header))
	columns := make([]string, 0, len(header))
	for i, col := range header {
		name := strings.TrimSpace(col)
		if _, dup := colIdx[name]; dup {
			stats.DupeColumns++
			zap.L().Warn("dataset: duplicate column, keeping first", zap.String("column", name))
			continue
		}
		colIdx[name] = i
		columns = append(columns, name)
	}
	stats.Columns = len(columns)

	idCols := map[model.IdentifierKind]string{}
	if schema.TrackColumn != "" {
		if _, ok := colIdx[schema.TrackColumn]; ok {
			idCols[model.TrackID] = schema.TrackColumn
		}
	}
	if schema.JumboColumn != "" {
		if _, ok := colIdx[schema.JumboColumn]; ok {
			idCols[model.JumboID] = schema.JumboColumn
		}
	}
	if len(idCols) == 0 {
		return nil, stats, eris.Errorf("dataset: no identifier column found (want %q or %q)", schema.TrackColumn, schema.JumboColumn)
	}

	rows := make([]model.Row, 0, len(records))
	for _, rec := range records {
		row := model.Row{
			Index:       len(rows),
			Identifiers: make(map[model.IdentifierKind]string, len(idCols)),
			Fields:      make(map[string]model.Value, len(columns)),
		}
		for kind, col := range idCols {
			if id := strings.TrimSpace(cell(rec, colIdx[col])); id != "" {
				row.Identifiers[kind] = id
			}
		}
		if !row.HasIdentifier() {
			stats.NoIdentity++
			continue
		}
		for _, col := range columns {
			row.Fields[col] = model.ParseValue(cell(rec, colIdx[col]))
		}
		rows = append(rows, row)
	}
	stats.Rows = len(rows)

	return New(columns, rows), stats, nil
}

func cell(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return rec[i]
}
