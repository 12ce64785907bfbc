// Package sheet loads rater spreadsheets exported as CSV into codings.
package sheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/banshee-data/rater-agreement/internal/coding"
	"github.com/banshee-data/rater-agreement/internal/monitoring"
)

// Orientation describes how a sheet is laid out.
type Orientation string

const (
	// LabelsByItems has one row per label; the header row holds item IDs.
	LabelsByItems Orientation = "labels-by-items"
	// ItemsByLabels has one row per item; the header row holds labels.
	ItemsByLabels Orientation = "items-by-labels"
)

// ParseOrientation accepts the Orientation constants; "" is LabelsByItems.
func ParseOrientation(s string) (Orientation, error) {
	switch o := Orientation(strings.ToLower(strings.TrimSpace(s))); o {
	case "":
		return LabelsByItems, nil
	case LabelsByItems, ItemsByLabels:
		return o, nil
	}
	return "", fmt.Errorf("unknown sheet orientation %q", s)
}

// maxSheetSize bounds the size of an input file.
const maxSheetSize = 64 << 20

// ErrEmptySheet is returned for a sheet without a header row.
var ErrEmptySheet = errors.New("sheet has no header row")

// Options control how a sheet is read.
type Options struct {
	// Rater names the coding; Load defaults it to the file's base name.
	Rater       string
	Orientation Orientation
	Encoding    string
}

// Load reads a CSV file into a coding.
func Load(path string, opts Options) (coding.Coding, error) {
	info, err := os.Stat(path)
	if err != nil {
		return coding.Coding{}, fmt.Errorf("failed to stat sheet: %w", err)
	}
	if info.Size() > maxSheetSize {
		return coding.Coding{}, fmt.Errorf("sheet %s too large: %d bytes (max %d)", path, info.Size(), maxSheetSize)
	}
	f, err := os.Open(path)
	if err != nil {
		return coding.Coding{}, fmt.Errorf("failed to open sheet: %w", err)
	}
	defer f.Close()

	if opts.Rater == "" {
		opts.Rater = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	c, err := Read(f, opts)
	if err != nil {
		return coding.Coding{}, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Read parses CSV from r. Header cells that look numeric are normalized
// the way values are, so an item exported as "4.0" matches one written
// "4". Rows with a blank key cell are skipped.
func Read(r io.Reader, opts Options) (coding.Coding, error) {
	orientation, err := ParseOrientation(string(opts.Orientation))
	if err != nil {
		return coding.Coding{}, err
	}
	dec, err := NewDecodingReader(r, opts.Encoding)
	if err != nil {
		return coding.Coding{}, err
	}

	cr := csv.NewReader(dec)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err == io.EOF {
		return coding.Coding{}, ErrEmptySheet
	}
	if err != nil {
		return coding.Coding{}, fmt.Errorf("failed to read header: %w", err)
	}
	keys := make([]string, len(header))
	for i, h := range header {
		keys[i] = coding.Canonical(h)
	}

	b := coding.NewBuilder(opts.Rater)
	seenRows := make(map[string]bool)
	line := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return coding.Coding{}, fmt.Errorf("line %d: %w", line, err)
		}
		if len(row) == 0 {
			continue
		}
		rowKey := coding.Canonical(row[0])
		if rowKey == "" {
			continue
		}
		if seenRows[rowKey] {
			monitoring.Warnf("sheet %q line %d: duplicate row %q overrides earlier values", opts.Rater, line, rowKey)
		}
		seenRows[rowKey] = true

		for i := 1; i < len(keys); i++ {
			colKey := keys[i]
			if colKey == "" {
				continue
			}
			var cell string
			if i < len(row) {
				cell = row[i]
			}
			if orientation == LabelsByItems {
				b.Set(colKey, rowKey, cell)
			} else {
				b.Set(rowKey, colKey, cell)
			}
		}
	}
	return b.Build(), nil
}
