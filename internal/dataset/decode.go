package dataset

import (
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// lookupEncoding maps a configured encoding name to a decoder. UTF-8 (or an
// empty name) returns nil: the bytes are used as-is.
func lookupEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), "-", "_")) {
	case "", "utf8", "utf_8":
		return nil, nil
	case "shift_jis", "sjis", "cp932", "windows_31j":
		return japanese.ShiftJIS, nil
	case "windows_1252", "cp1252":
		return charmap.Windows1252, nil
	case "latin1", "iso_8859_1":
		return charmap.ISO8859_1, nil
	case "utf16", "utf_16":
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM), nil
	default:
		return nil, eris.Errorf("dataset: unsupported encoding %q", name)
	}
}

// decodeReader wraps r so it yields UTF-8 text.
func decodeReader(r io.Reader, name string) (io.Reader, error) {
	enc, err := lookupEncoding(name)
	if err != nil {
		return nil, err
	}
	if enc == nil {
		return r, nil
	}
	return transform.NewReader(r, enc.NewDecoder()), nil
}
