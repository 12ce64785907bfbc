package agreement

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// ICCResult is the ICC(3,1) row of a two-way mixed-effects intraclass
// correlation: fixed raters, consistency of ratings.
type ICCResult struct {
	// ICC is the single-rater consistency coefficient, ICC3.
	ICC float64 `json:"icc"`
	// ICC3k is the average-of-raters coefficient.
	ICC3k  float64    `json:"icc3k"`
	F      float64    `json:"f"`
	DF1    float64    `json:"df1"`
	DF2    float64    `json:"df2"`
	PValue float64    `json:"p_value"`
	CI95   [2]float64 `json:"ci95"`
	Items  int        `json:"items"`
	Raters int        `json:"raters"`
}

// ICC3 computes the consistency ICC for k fixed raters over the same n items.
// Each argument holds one rater's ratings in item order.
func ICC3(ratings ...[]float64) (ICCResult, error) {
	k := len(ratings)
	if k < 2 {
		return ICCResult{}, fmt.Errorf("icc3 needs at least 2 raters, got %d", k)
	}
	n := len(ratings[0])
	for j, r := range ratings {
		if len(r) != n {
			return ICCResult{}, fmt.Errorf("rater %d has %d ratings, want %d", j+1, len(r), n)
		}
	}
	if n == 0 {
		return ICCResult{}, ErrNoPairs
	}
	if n < 2 {
		return ICCResult{}, fmt.Errorf("%w: icc3 needs at least 2 items, got %d", ErrDegenerate, n)
	}

	all := make([]float64, 0, n*k)
	for _, r := range ratings {
		all = append(all, r...)
	}
	grand := stat.Mean(all, nil)

	var ssRows, ssCols, ssTotal float64
	row := make([]float64, k)
	for i := 0; i < n; i++ {
		for j := 0; j < k; j++ {
			row[j] = ratings[j][i]
		}
		d := stat.Mean(row, nil) - grand
		ssRows += d * d
	}
	ssRows *= float64(k)
	for _, r := range ratings {
		d := stat.Mean(r, nil) - grand
		ssCols += d * d
	}
	ssCols *= float64(n)
	for _, x := range all {
		d := x - grand
		ssTotal += d * d
	}
	ssErr := math.Max(ssTotal-ssRows-ssCols, 0)

	df1 := float64(n - 1)
	df2 := float64((n - 1) * (k - 1))
	msRows := ssRows / df1
	msErr := ssErr / df2

	den := msRows + float64(k-1)*msErr
	if den == 0 {
		return ICCResult{}, fmt.Errorf("%w: ratings have no variance", ErrDegenerate)
	}

	res := ICCResult{
		ICC:    (msRows - msErr) / den,
		ICC3k:  math.NaN(),
		DF1:    df1,
		DF2:    df2,
		Items:  n,
		Raters: k,
	}
	if msRows != 0 {
		res.ICC3k = (msRows - msErr) / msRows
	}

	if msErr == 0 {
		res.F = math.Inf(1)
		res.PValue = 0
		res.CI95 = [2]float64{math.NaN(), math.NaN()}
		return res, nil
	}

	res.F = msRows / msErr
	res.PValue = 1 - distuv.F{D1: df1, D2: df2}.CDF(res.F)

	fLower := res.F / distuv.F{D1: df1, D2: df2}.Quantile(0.975)
	fUpper := res.F * distuv.F{D1: df2, D2: df1}.Quantile(0.975)
	kf := float64(k)
	res.CI95 = [2]float64{
		(fLower - 1) / (fLower + kf - 1),
		(fUpper - 1) / (fUpper + kf - 1),
	}
	return res, nil
}
