package coding

import "strings"

// Rubric declares the kind of each label. Labels it does not mention have
// their kind inferred from the data.
type Rubric map[string]Kind

// KindOf returns the declared kind of label or infers it from the raw
// values both raters gave it.
func (r Rubric) KindOf(label string, codings ...Coding) Kind {
	if k, ok := r[label]; ok {
		return k
	}
	cols := make([][]any, 0, len(codings))
	for _, c := range codings {
		cols = append(cols, c.Column(label))
	}
	return InferKind(cols...)
}

// InferKind classifies a label by the dominant class of its raw values:
// binary when Yes/No tokens make up more than half of the non-missing
// cells, ordinal when numbers do, categorical otherwise, including when
// there are no values at all. Stray cells outside the dominant class are
// left for the scorer to drop as unparseable.
func InferKind(columns ...[]any) Kind {
	seen, yesNo, numeric := 0, 0, 0
	for _, col := range columns {
		for _, raw := range col {
			if IsMissing(raw) {
				continue
			}
			text := Canonical(raw)
			seen++
			if IsYesNo(text) {
				yesNo++
			}
			if _, ok := parseNumber(text); ok {
				numeric++
			}
		}
	}
	switch {
	case seen == 0:
		return Categorical
	case 2*yesNo > seen:
		return Binary
	case 2*numeric > seen:
		return Ordinal
	default:
		return Categorical
	}
}

// LabelFilter drops bookkeeping columns and labels that should not be
// scored, such as free-text example columns.
type LabelFilter struct {
	// IgnoreLabels are compared case-insensitively.
	IgnoreLabels []string
	// ExcludePrefixes are matched case-sensitively so "EX:" columns go but
	// "Example Present" stays.
	ExcludePrefixes []string
}

// DefaultLabelFilter drops rater/ID bookkeeping columns and "EX" example
// columns.
func DefaultLabelFilter() LabelFilter {
	return LabelFilter{
		IgnoreLabels:    []string{"rater", "id", "nan"},
		ExcludePrefixes: []string{"EX"},
	}
}

// Keep reports whether label should be scored.
func (f LabelFilter) Keep(label string) bool {
	trimmed := strings.TrimSpace(label)
	if trimmed == "" {
		return false
	}
	for _, ig := range f.IgnoreLabels {
		if strings.EqualFold(trimmed, ig) {
			return false
		}
	}
	for _, p := range f.ExcludePrefixes {
		if p != "" && strings.HasPrefix(trimmed, p) {
			return false
		}
	}
	return true
}

// SharedLabels returns the labels present in both codings that pass the
// filter, in a's order.
func SharedLabels(a, b Coding, f LabelFilter) []string {
	var out []string
	for _, label := range a.labels {
		if b.HasLabel(label) && f.Keep(label) {
			out = append(out, label)
		}
	}
	return out
}

// SharedItems returns items present in both codings, in a's order.
func SharedItems(a, b Coding) []string {
	var out []string
	for _, item := range a.items {
		if b.HasItem(item) {
			out = append(out, item)
		}
	}
	return out
}
