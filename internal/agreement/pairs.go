package agreement

import (
	"errors"

	"github.com/banshee-data/rater-agreement/internal/coding"
)

// Pairs holds one label's retained values from both raters, aligned by item.
type Pairs struct {
	Items []string
	A     []coding.Value
	B     []coding.Value
	// Missing counts items dropped because a rater had no value.
	Missing int
	// Unparseable counts items dropped because a value did not fit the kind.
	Unparseable int
	// Rejected lists the raw values that failed to parse, for diagnostics.
	Rejected []string
}

// PairValues normalizes both raters' values for label under kind, applies
// recode to both sides and keeps the items where both raters have a valid
// value. Items coded by only one rater count as missing.
func PairValues(r1, r2 coding.Coding, label string, kind coding.Kind, recode coding.Recode) Pairs {
	var p Pairs
	for _, item := range r1.Items() {
		raw1, _ := r1.Value(item, label)
		raw2, _ := r2.Value(item, label)
		v1, err1 := coding.Normalize(kind, raw1)
		v2, err2 := coding.Normalize(kind, raw2)

		if errors.Is(err1, coding.ErrUnparseable) || errors.Is(err2, coding.ErrUnparseable) {
			p.Unparseable++
			if errors.Is(err1, coding.ErrUnparseable) {
				p.Rejected = append(p.Rejected, coding.Canonical(raw1))
			}
			if errors.Is(err2, coding.ErrUnparseable) {
				p.Rejected = append(p.Rejected, coding.Canonical(raw2))
			}
			continue
		}
		if err1 != nil || err2 != nil {
			p.Missing++
			continue
		}

		if recode != nil {
			v1, v2 = recode.Apply(v1), recode.Apply(v2)
		}
		p.Items = append(p.Items, item)
		p.A = append(p.A, v1)
		p.B = append(p.B, v2)
	}
	for _, item := range r2.Items() {
		if !r1.HasItem(item) {
			p.Missing++
		}
	}
	return p
}

// Len is the number of retained items.
func (p Pairs) Len() int { return len(p.Items) }

// Numbers returns the numeric codes of both sides. ok is false when a
// recode produced a non-numeric value.
func (p Pairs) Numbers() (a, b []float64, ok bool) {
	a = make([]float64, len(p.A))
	b = make([]float64, len(p.B))
	for i := range p.A {
		if !p.A[i].IsNumeric() || !p.B[i].IsNumeric() {
			return nil, nil, false
		}
		a[i], b[i] = p.A[i].Num, p.B[i].Num
	}
	return a, b, true
}

// Texts returns the category of both sides. Values equal under Value.Key
// share one category, spelled the way it was first seen.
func (p Pairs) Texts() (a, b []string) {
	a = make([]string, len(p.A))
	b = make([]string, len(p.B))
	spelling := make(map[string]string)
	category := func(v coding.Value) string {
		k := v.Key()
		if s, ok := spelling[k]; ok {
			return s
		}
		spelling[k] = v.Text
		return v.Text
	}
	for i := range p.A {
		a[i] = category(p.A[i])
		b[i] = category(p.B[i])
	}
	return a, b
}
