package coding

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cast"
	"golang.org/x/text/unicode/norm"
)

var (
	// ErrMissing reports an empty cell or an explicit missing marker.
	ErrMissing = errors.New("missing value")
	// ErrUnparseable reports a value that does not fit the label's kind.
	ErrUnparseable = errors.New("unparseable value")
)

// missingTokens are uppercase markers that spreadsheet exports use for
// empty cells.
var missingTokens = map[string]bool{
	"NAN":     true,
	"NA":      true,
	"N/A":     true,
	"NONE":    true,
	"NULL":    true,
	"MISSING": true,
}

// Value is a normalized cell. Text is the canonical rendering; Num is the
// numeric code for binary and ordinal values and NaN for categorical ones.
type Value struct {
	Text string
	Num  float64
}

// Key is the form values are compared by. Text compares case-insensitively,
// so "Inform" and "inform" are the same category.
func (v Value) Key() string { return strings.ToUpper(v.Text) }

// IsNumeric reports whether the value carries a numeric code.
func (v Value) IsNumeric() bool { return !math.IsNaN(v.Num) }

// Canonical renders a raw cell in canonical form. Surrounding whitespace is
// trimmed, text is NFKC-normalized (non-breaking spaces from spreadsheet
// exports become plain spaces) and numbers with an integral value lose
// their decimal point, so "4.0" becomes "4". Missing cells render as "".
// Canonical is idempotent.
func Canonical(raw any) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case bool:
		if v {
			return "Y"
		}
		return "N"
	case string:
		s := cleanText(v)
		if s == "" {
			return ""
		}
		if f, ok := parseNumber(s); ok {
			return FormatNumber(f)
		}
		return s
	}

	f, err := cast.ToFloat64E(raw)
	if err != nil {
		return cleanText(cast.ToString(raw))
	}
	if math.IsNaN(f) {
		return ""
	}
	return FormatNumber(f)
}

// Normalize canonicalizes raw and interprets it under kind.
//
// Binary labels accept Y/YES and N/NO in any case, plus their own 1/0
// codes. Ordinal labels accept anything numeric. Categorical labels accept
// any non-missing text. Failures wrap ErrMissing or ErrUnparseable.
func Normalize(kind Kind, raw any) (Value, error) {
	text := Canonical(raw)
	upper := strings.ToUpper(text)
	if text == "" || missingTokens[upper] {
		return Value{}, ErrMissing
	}

	switch kind {
	case Binary:
		switch upper {
		case "Y", "YES", "1":
			return Value{Text: "1", Num: 1}, nil
		case "N", "NO", "0":
			return Value{Text: "0", Num: 0}, nil
		}
		return Value{}, fmt.Errorf("%w: %q is not a yes/no value", ErrUnparseable, text)
	case Ordinal:
		f, ok := parseNumber(text)
		if !ok {
			return Value{}, fmt.Errorf("%w: %q is not a rating", ErrUnparseable, text)
		}
		return Value{Text: text, Num: f}, nil
	default:
		return Value{Text: text, Num: math.NaN()}, nil
	}
}

// FormatNumber renders f the way Canonical does: integral values without a
// decimal point, everything else in the shortest exact form.
func FormatNumber(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// IsYesNo reports whether a canonical value is one of the binary tokens.
func IsYesNo(text string) bool {
	switch strings.ToUpper(text) {
	case "Y", "YES", "N", "NO":
		return true
	}
	return false
}

// IsMissing reports whether raw normalizes to a missing cell.
func IsMissing(raw any) bool {
	text := Canonical(raw)
	return text == "" || missingTokens[strings.ToUpper(text)]
}

// Number returns the numeric value of a raw cell, if it has one.
func Number(raw any) (float64, bool) {
	if IsMissing(raw) {
		return 0, false
	}
	return parseNumber(Canonical(raw))
}

// parseNumber accepts finite decimal numbers only; ParseFloat on its own
// would also take "NaN", "Inf" and hex floats.
func parseNumber(s string) (float64, bool) {
	if s == "" || strings.ContainsAny(s, "xXpP") {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func cleanText(s string) string {
	return strings.TrimSpace(norm.NFKC.String(s))
}
