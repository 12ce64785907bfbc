package coding

import (
	"math"
	"sort"
)

// Recode maps canonical values to replacement values. It is applied to both
// raters before scoring, typically to collapse adjacent points on a rating
// scale.
type Recode map[string]string

// CollapseAdjacent is the recode used by the validation study before ICC:
// ratings of 4 count as 5 and ratings of 2 count as 1.
var CollapseAdjacent = Recode{"4": "5", "2": "1"}

// NewRecode canonicalizes the keys and values of m so that "4.0" and "4"
// select the same entry.
func NewRecode(m map[string]string) Recode {
	r := make(Recode, len(m))
	for from, to := range m {
		r[Canonical(from)] = Canonical(to)
	}
	return r
}

// Apply returns v with its replacement, if any. The lookup is a single
// pass: a value mapped to another key is not remapped again.
func (r Recode) Apply(v Value) Value {
	to, ok := r[v.Text]
	if !ok {
		return v
	}
	if f, ok := parseNumber(to); ok {
		return Value{Text: to, Num: f}
	}
	return Value{Text: to, Num: math.NaN()}
}

// Keys returns the recoded values in sorted order.
func (r Recode) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
