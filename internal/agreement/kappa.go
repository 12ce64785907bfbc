package agreement

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrNoPairs reports that no item carried a usable value from both raters.
	ErrNoPairs = errors.New("no valid item pairs")
	// ErrDegenerate reports a statistic whose chance term is zero.
	ErrDegenerate = errors.New("degenerate ratings")
)

// Weighting selects the disagreement weights of Cohen's kappa.
type Weighting string

const (
	// WeightNone counts every disagreement equally.
	WeightNone Weighting = "none"
	// WeightLinear weights disagreements by category distance.
	WeightLinear Weighting = "linear"
	// WeightQuadratic weights disagreements by squared category distance.
	WeightQuadratic Weighting = "quadratic"
)

// ParseWeighting accepts "none", "linear" and "quadratic". An empty string
// means no weighting.
func ParseWeighting(s string) (Weighting, error) {
	switch w := Weighting(strings.ToLower(strings.TrimSpace(s))); w {
	case "", WeightNone:
		return WeightNone, nil
	case WeightLinear, WeightQuadratic:
		return w, nil
	default:
		return WeightNone, fmt.Errorf("unknown weighting %q (want none, linear or quadratic)", s)
	}
}

// CohenKappa returns Cohen's kappa for two equal-length labelings.
//
// The categories are the sorted union of observed values. Weights are
// computed from category index distance, so a scale with unused points
// between observed values is treated as if those points did not exist.
func CohenKappa(a, b []float64, w Weighting) (float64, error) {
	if len(a) != len(b) {
		return math.NaN(), fmt.Errorf("rater value counts differ: %d vs %d", len(a), len(b))
	}
	if len(a) == 0 {
		return math.NaN(), ErrNoPairs
	}

	cats := numericCategories(a, b)
	index := make(map[float64]int, len(cats))
	for i, c := range cats {
		index[c] = i
	}
	k := len(cats)

	observed := mat.NewDense(k, k, nil)
	for i := range a {
		r, c := index[a[i]], index[b[i]]
		observed.Set(r, c, observed.At(r, c)+1)
	}
	return kappaFromConfusion(observed, w)
}

// kappaFromConfusion computes kappa from a square confusion matrix whose
// rows are rater one and columns rater two.
func kappaFromConfusion(observed *mat.Dense, w Weighting) (float64, error) {
	k, _ := observed.Dims()
	n := mat.Sum(observed)
	if n == 0 {
		return math.NaN(), ErrNoPairs
	}

	rowSums := make([]float64, k)
	colSums := make([]float64, k)
	for i := 0; i < k; i++ {
		rowSums[i] = mat.Sum(observed.RowView(i))
		colSums[i] = mat.Sum(observed.ColView(i))
	}

	expected := mat.NewDense(k, k, nil)
	expected.Outer(1/n, mat.NewVecDense(k, rowSums), mat.NewVecDense(k, colSums))

	weights := weightMatrix(k, w)
	var wo, we mat.Dense
	wo.MulElem(weights, observed)
	we.MulElem(weights, expected)

	den := mat.Sum(&we)
	if den == 0 {
		return math.NaN(), ErrDegenerate
	}
	return 1 - mat.Sum(&wo)/den, nil
}

func weightMatrix(k int, w Weighting) *mat.Dense {
	m := mat.NewDense(k, k, nil)
	for i := 0; i < k; i++ {
		for j := 0; j < k; j++ {
			d := math.Abs(float64(i - j))
			switch w {
			case WeightLinear:
				m.Set(i, j, d)
			case WeightQuadratic:
				m.Set(i, j, d*d)
			default:
				if i != j {
					m.Set(i, j, 1)
				}
			}
		}
	}
	return m
}

func numericCategories(a, b []float64) []float64 {
	seen := make(map[float64]bool, len(a))
	var cats []float64
	for _, vs := range [][]float64{a, b} {
		for _, v := range vs {
			if !seen[v] {
				seen[v] = true
				cats = append(cats, v)
			}
		}
	}
	sort.Float64s(cats)
	return cats
}

// CodeCategories maps string labelings onto integer codes by sorted
// category name so nominal labels can be scored with CohenKappa.
func CodeCategories(a, b []string) (ca, cb []float64) {
	cats := stringCategories(a, b)
	index := make(map[string]float64, len(cats))
	for i, c := range cats {
		index[c] = float64(i)
	}
	ca = make([]float64, len(a))
	cb = make([]float64, len(b))
	for i, v := range a {
		ca[i] = index[v]
	}
	for i, v := range b {
		cb[i] = index[v]
	}
	return ca, cb
}

func stringCategories(a, b []string) []string {
	seen := make(map[string]bool, len(a))
	var cats []string
	for _, vs := range [][]string{a, b} {
		for _, v := range vs {
			if !seen[v] {
				seen[v] = true
				cats = append(cats, v)
			}
		}
	}
	sort.Strings(cats)
	return cats
}

// BoundaryScore applies the constant-labeling rule. ok is false when both
// raters used at least two distinct values and a statistic is defined.
// Otherwise score is 1.0 if both sequences are identical and 0.0 if not.
func BoundaryScore(a, b []float64) (score float64, ok bool) {
	if !isConstant(a) && !isConstant(b) {
		return 0, false
	}
	if len(a) != len(b) {
		return 0, true
	}
	for i := range a {
		if a[i] != b[i] {
			return 0, true
		}
	}
	return 1, true
}

func isConstant(vs []float64) bool {
	for _, v := range vs[min(1, len(vs)):] {
		if v != vs[0] {
			return false
		}
	}
	return true
}
