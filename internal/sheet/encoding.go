package sheet

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Supported input encodings.
const (
	EncodingUTF8        = "utf-8"
	EncodingWindows1252 = "windows-1252"
	EncodingLatin1      = "iso-8859-1"
	EncodingUTF16       = "utf-16"
)

// decoder returns a transformer that converts the named encoding to UTF-8.
// A byte order mark, when present, wins over the name.
func decoder(name string) (transform.Transformer, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", EncodingUTF8, "utf8":
		return unicode.BOMOverride(unicode.UTF8.NewDecoder()), nil
	case EncodingWindows1252, "cp1252":
		return unicode.BOMOverride(charmap.Windows1252.NewDecoder()), nil
	case EncodingLatin1, "latin1", "latin-1":
		return unicode.BOMOverride(charmap.ISO8859_1.NewDecoder()), nil
	case EncodingUTF16, "utf16", "utf-16le":
		return unicode.BOMOverride(unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()), nil
	case "utf-16be":
		return unicode.BOMOverride(unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder()), nil
	}
	return nil, fmt.Errorf("unsupported encoding %q", name)
}

// NewDecodingReader wraps r so it yields UTF-8 text.
func NewDecodingReader(r io.Reader, encoding string) (io.Reader, error) {
	t, err := decoder(encoding)
	if err != nil {
		return nil, err
	}
	return transform.NewReader(r, t), nil
}
