// Package mca runs multiple correspondence analysis over categorical
// codings: each label/value pair becomes an indicator column and the
// indicator matrix is decomposed by correspondence analysis.
package mca

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/banshee-data/rater-agreement/internal/coding"
	"gonum.org/v1/gonum/mat"
)

// DefaultComponents is the number of components kept by default.
const DefaultComponents = 3

// DefaultDropSubstrings remove free-text, goal and binary element columns
// before the analysis.
var DefaultDropSubstrings = []string{"EX:", "Other", "Goal", "Present"}

// CategorySep joins a label and a value into an indicator column name.
const CategorySep = "__"

// minSingular is the cutoff below which a component is treated as absent.
const minSingular = 1e-10

// ErrTooFewRows is returned when fewer than two items carry any value.
var ErrTooFewRows = errors.New("mca needs at least two rated items")

// FilterLabels returns the labels that contain none of drop.
func FilterLabels(labels []string, drop []string) []string {
	var out []string
	for _, label := range labels {
		keep := true
		for _, d := range drop {
			if d != "" && strings.Contains(label, d) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, label)
		}
	}
	return out
}

// Result holds the fitted coordinates.
type Result struct {
	Items      []string
	Categories []string
	// RowCoords is len(Items) x Components.
	RowCoords *mat.Dense
	// ColCoords is len(Categories) x Components.
	ColCoords   *mat.Dense
	Eigenvalues []float64
	// Explained is each component's share of TotalInertia.
	Explained    []float64
	TotalInertia float64
	// Skipped lists items with no value for any label.
	Skipped []string
}

// Components returns the number of fitted components.
func (r *Result) Components() int { return len(r.Eigenvalues) }

// Fit runs the analysis over labels of c, keeping up to n components. n is
// clamped to the rank of the data. Missing cells contribute no indicator;
// items missing every label are skipped.
func Fit(c coding.Coding, labels []string, n int) (*Result, error) {
	if n <= 0 {
		n = DefaultComponents
	}
	if len(labels) == 0 {
		return nil, errors.New("mca: no labels to analyse")
	}

	res := &Result{}
	catIndex := make(map[string]int)
	type cell struct{ row, col int }
	var hits []cell
	for _, item := range c.Items() {
		var row []int
		for _, label := range labels {
			raw, _ := c.Value(item, label)
			if coding.IsMissing(raw) {
				continue
			}
			name := label + CategorySep + coding.Canonical(raw)
			j, ok := catIndex[name]
			if !ok {
				j = len(res.Categories)
				catIndex[name] = j
				res.Categories = append(res.Categories, name)
			}
			row = append(row, j)
		}
		if len(row) == 0 {
			res.Skipped = append(res.Skipped, item)
			continue
		}
		for _, j := range row {
			hits = append(hits, cell{row: len(res.Items), col: j})
		}
		res.Items = append(res.Items, item)
	}
	if len(res.Items) < 2 {
		return nil, fmt.Errorf("%w (got %d)", ErrTooFewRows, len(res.Items))
	}
	if len(res.Categories) < 2 {
		return nil, errors.New("mca: data has a single category")
	}

	z := mat.NewDense(len(res.Items), len(res.Categories), nil)
	for _, h := range hits {
		z.Set(h.row, h.col, 1)
	}
	if err := res.fit(z, n); err != nil {
		return nil, err
	}
	return res, nil
}

func (res *Result) fit(z *mat.Dense, n int) error {
	rows, cols := z.Dims()
	total := mat.Sum(z)

	var p mat.Dense
	p.Scale(1/total, z)
	r := make([]float64, rows)
	for i := range r {
		r[i] = mat.Sum(p.RowView(i))
	}
	c := make([]float64, cols)
	for j := range c {
		c[j] = mat.Sum(p.ColView(j))
	}

	// standardized residuals D_r^-1/2 (P - r c') D_c^-1/2
	s := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			s.Set(i, j, (p.At(i, j)-r[i]*c[j])/math.Sqrt(r[i]*c[j]))
		}
	}

	var svd mat.SVD
	if ok := svd.Factorize(s, mat.SVDThin); !ok {
		return errors.New("mca: singular value decomposition failed")
	}
	values := svd.Values(nil)
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	for _, sv := range values {
		res.TotalInertia += sv * sv
	}
	rank := 0
	for _, sv := range values {
		if sv > minSingular {
			rank++
		}
	}
	if n > rank {
		n = rank
	}
	if n == 0 {
		return errors.New("mca: data has no variance")
	}

	res.RowCoords = mat.NewDense(rows, n, nil)
	res.ColCoords = mat.NewDense(cols, n, nil)
	for k := 0; k < n; k++ {
		sv := values[k]
		sign := orientation(u.ColView(k))
		for i := 0; i < rows; i++ {
			res.RowCoords.Set(i, k, sign*u.At(i, k)*sv/math.Sqrt(r[i]))
		}
		for j := 0; j < cols; j++ {
			res.ColCoords.Set(j, k, sign*v.At(j, k)*sv/math.Sqrt(c[j]))
		}
		res.Eigenvalues = append(res.Eigenvalues, sv*sv)
		res.Explained = append(res.Explained, sv*sv/res.TotalInertia)
	}
	return nil
}

// orientation fixes the sign of a singular vector pair so the largest
// row loading is positive; SVD signs are otherwise arbitrary.
func orientation(col mat.Vector) float64 {
	best, sign := 0.0, 1.0
	for i := 0; i < col.Len(); i++ {
		if a := math.Abs(col.AtVec(i)); a > best+minSingular {
			best = a
			if col.AtVec(i) < 0 {
				sign = -1
			} else {
				sign = 1
			}
		}
	}
	return sign
}
