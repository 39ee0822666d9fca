package dataset

import (
	"context"
	"path"
	"strings"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/inspect-cli/internal/config"
	"github.com/sells-group/inspect-cli/internal/fetcher"
)

// Loader reads an export from its configured source into a Dataset.
type Loader struct {
	opener *fetcher.Opener
}

// NewLoader creates a Loader that opens sources through opener.
func NewLoader(opener *fetcher.Opener) *Loader {
	if opener == nil {
		opener = &fetcher.Opener{}
	}
	return &Loader{opener: opener}
}

// Format returns the effective file format for cfg: the configured format,
// or one inferred from the source extension.
func Format(cfg config.DataConfig) string {
	if f := strings.ToLower(cfg.Format); f != "" {
		return f
	}
	src := cfg.Source
	if i := strings.IndexAny(src, "?#"); i >= 0 && fetcher.Scheme(src) != "" {
		src = src[:i]
	}
	switch strings.ToLower(path.Ext(src)) {
	case ".xlsx", ".xlsm":
		return "xlsx"
	default:
		return "csv"
	}
}

// Load opens, parses, and indexes the configured source.
func (l *Loader) Load(ctx context.Context, cfg config.DataConfig) (*Dataset, LoadStats, error) {
	if cfg.Source == "" {
		return nil, LoadStats{}, eris.New("dataset: no source configured")
	}

	rc, err := l.opener.Open(ctx, cfg.Source)
	if err != nil {
		return nil, LoadStats{}, eris.Wrap(err, "dataset: open source")
	}
	defer rc.Close() //nolint:errcheck

	var header []string
	var records [][]string
	switch format := Format(cfg); format {
	case "xlsx":
		header, records, err = fetcher.ReadXLSX(rc, fetcher.XLSXOptions{SheetName: cfg.Sheet})
		if err != nil {
			return nil, LoadStats{}, eris.Wrap(err, "dataset: read xlsx")
		}
	case "csv":
		r, decErr := decodeReader(rc, cfg.Encoding)
		if decErr != nil {
			return nil, LoadStats{}, decErr
		}
		delim, delimErr := delimiter(cfg.Delimiter)
		if delimErr != nil {
			return nil, LoadStats{}, delimErr
		}
		header, records, err = fetcher.ReadCSV(ctx, r, fetcher.CSVOptions{
			Delimiter:  delim,
			LazyQuotes: true,
		})
		if err != nil {
			return nil, LoadStats{}, eris.Wrap(err, "dataset: read csv")
		}
	default:
		return nil, LoadStats{}, eris.Errorf("dataset: unsupported format %q", format)
	}

	ds, stats, err := Build(header, records, Schema{
		TrackColumn: cfg.TrackColumn,
		JumboColumn: cfg.JumboColumn,
	})
	if err != nil {
		return nil, stats, err
	}
	stats.Source = cfg.Source

	zap.L().Info("dataset: loaded",
		zap.String("source", cfg.Source),
		zap.Int("records", stats.Records),
		zap.Int("rows", stats.Rows),
		zap.Int("dropped_no_identifier", stats.NoIdentity),
		zap.Int("columns", stats.Columns),
	)
	return ds, stats, nil
}

func delimiter(s string) (rune, error) {
	switch s {
	case "":
		return ',', nil
	case `\t`, "tab":
		return '\t', nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, eris.Errorf("dataset: delimiter must be a single character, got %q", s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, nil
}
