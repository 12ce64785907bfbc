package agreement

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Crosstab counts how often rater one's category (rows) met rater two's
// category (columns). Both axes use the same sorted category list so the
// diagonal holds the agreements.
type Crosstab struct {
	Categories []string
	Counts     *mat.Dense
	N          int
}

// NewCrosstab builds the item-level agreement matrix of two labelings.
func NewCrosstab(a, b []string) (*Crosstab, error) {
	if len(a) != len(b) {
		return nil, fmt.Errorf("rater value counts differ: %d vs %d", len(a), len(b))
	}
	if len(a) == 0 {
		return nil, ErrNoPairs
	}

	cats := stringCategories(a, b)
	index := make(map[string]int, len(cats))
	for i, c := range cats {
		index[c] = i
	}
	counts := mat.NewDense(len(cats), len(cats), nil)
	for i := range a {
		r, c := index[a[i]], index[b[i]]
		counts.Set(r, c, counts.At(r, c)+1)
	}
	return &Crosstab{Categories: cats, Counts: counts, N: len(a)}, nil
}

// Count returns the number of items rater one put in r1 and rater two in r2.
func (c *Crosstab) Count(r1, r2 string) int {
	i, j := c.indexOf(r1), c.indexOf(r2)
	if i < 0 || j < 0 {
		return 0
	}
	return int(c.Counts.At(i, j))
}

// Agreement is the share of items on the diagonal.
func (c *Crosstab) Agreement() float64 {
	if c.N == 0 {
		return 0
	}
	return mat.Trace(c.Counts) / float64(c.N)
}

// Kappa is unweighted Cohen's kappa over the table.
func (c *Crosstab) Kappa() (float64, error) {
	return kappaFromConfusion(c.Counts, WeightNone)
}

// RowTotals returns rater one's category counts.
func (c *Crosstab) RowTotals() []int {
	k := len(c.Categories)
	out := make([]int, k)
	for i := 0; i < k; i++ {
		out[i] = int(mat.Sum(c.Counts.RowView(i)))
	}
	return out
}

// ColTotals returns rater two's category counts.
func (c *Crosstab) ColTotals() []int {
	k := len(c.Categories)
	out := make([]int, k)
	for j := 0; j < k; j++ {
		out[j] = int(mat.Sum(c.Counts.ColView(j)))
	}
	return out
}

func (c *Crosstab) indexOf(cat string) int {
	for i, x := range c.Categories {
		if x == cat {
			return i
		}
	}
	return -1
}
