// Package fetcher opens inspection exports from local files, HTTP(S), and FTP,
// and parses them as CSV or XLSX.
package fetcher

import (
	"context"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/rotisserie/eris"
)

// Fetcher downloads a remote export.
type Fetcher interface {
	// Download fetches the URL and returns the response body.
	Download(ctx context.Context, url string) (io.ReadCloser, error)
}

// Opener resolves a source string to a readable stream, dispatching on the
// URL scheme. Sources without a scheme are local paths.
type Opener struct {
	HTTP Fetcher
	FTP  Fetcher
}

// Open returns a reader for source. The caller must close it.
func (o *Opener) Open(ctx context.Context, source string) (io.ReadCloser, error) {
	switch Scheme(source) {
	case "http", "https":
		if o.HTTP == nil {
			return nil, eris.Errorf("fetcher: no http fetcher configured for %s", source)
		}
		return o.HTTP.Download(ctx, source)
	case "ftp":
		if o.FTP == nil {
			return nil, eris.Errorf("fetcher: no ftp fetcher configured for %s", source)
		}
		return o.FTP.Download(ctx, source)
	case "", "file":
		path := strings.TrimPrefix(source, "file://")
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrapf(err, "fetcher: open %s", path)
		}
		return f, nil
	default:
		return nil, eris.Errorf("fetcher: unsupported scheme in %s", source)
	}
}

// Scheme returns the lower-cased URL scheme of source, or "" for plain paths.
func Scheme(source string) string {
	i := strings.Index(source, "://")
	if i <= 0 {
		return ""
	}
	u, err := url.Parse(source)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Scheme)
}
