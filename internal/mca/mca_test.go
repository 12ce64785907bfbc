package mca

import (
	"errors"
	"math"
	"testing"

	"github.com/banshee-data/rater-agreement/internal/coding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterLabels(t *testing.T) {
	labels := []string{"Clarity", "EX: quote", "Other notes", "Goal of articulation", "Action Present", "Depth"}
	assert.Equal(t, []string{"Clarity", "Depth"}, FilterLabels(labels, DefaultDropSubstrings))
	assert.Equal(t, labels, FilterLabels(labels, nil))
}

func TestFit_SingleBinaryVariable(t *testing.T) {
	c := coding.NewBuilder("m").
		Set("V1", "Tone", "A").
		Set("V2", "Tone", "A").
		Set("B1", "Tone", "B").
		Set("B2", "Tone", "B").
		Build()

	res, err := Fit(c, []string{"Tone"}, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Components())
	assert.Equal(t, []string{"Tone__A", "Tone__B"}, res.Categories)
	assert.InDelta(t, 1.0, res.Eigenvalues[0], 1e-9)
	assert.InDelta(t, 1.0, res.TotalInertia, 1e-9)
	assert.InDelta(t, 1.0, res.Explained[0], 1e-9)

	want := []float64{1, 1, -1, -1}
	for i, w := range want {
		assert.InDelta(t, w, res.RowCoords.At(i, 0), 1e-9, "row %d", i)
	}
	assert.InDelta(t, 1.0, res.ColCoords.At(0, 0), 1e-9)
	assert.InDelta(t, -1.0, res.ColCoords.At(1, 0), 1e-9)
}

func TestFit_TwoVariables(t *testing.T) {
	c := coding.NewBuilder("m").
		Set("V1", "Tone", "A").Set("V1", "Depth", "4").
		Set("V2", "Tone", "A").Set("V2", "Depth", "4.0").
		Set("B1", "Tone", "B").Set("B1", "Depth", "2").
		Set("C1", "Tone", "C").Set("C1", "Depth", "2").
		Set("W1", "Tone", "B").Set("W1", "Depth", "4").
		Set("W2", "Tone", "").Set("W2", "Depth", nil).
		Build()

	res, err := Fit(c, []string{"Tone", "Depth"}, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"W2"}, res.Skipped)
	assert.Len(t, res.Items, 5)
	assert.Len(t, res.Categories, 5)

	// complete indicator data: inertia is (categories - variables) / variables
	assert.InDelta(t, 1.5, res.TotalInertia, 1e-9)
	require.Equal(t, DefaultComponents, res.Components())
	sum := 0.0
	for k, e := range res.Eigenvalues {
		if k > 0 {
			assert.LessOrEqual(t, e, res.Eigenvalues[k-1]+1e-12)
		}
		sum += res.Explained[k]
	}
	assert.LessOrEqual(t, sum, 1.0+1e-9)

	// identical profiles share coordinates
	for k := 0; k < res.Components(); k++ {
		assert.InDelta(t, res.RowCoords.At(0, k), res.RowCoords.At(1, k), 1e-9)
	}
	r, cols := res.ColCoords.Dims()
	assert.Equal(t, 5, r)
	assert.Equal(t, 3, cols)
	for i := 0; i < r; i++ {
		for k := 0; k < cols; k++ {
			assert.False(t, math.IsNaN(res.ColCoords.At(i, k)))
		}
	}
}

func TestFit_Errors(t *testing.T) {
	one := coding.NewBuilder("m").Set("V1", "Tone", "A").Set("V2", "Tone", "").Build()
	_, err := Fit(one, []string{"Tone"}, 2)
	assert.True(t, errors.Is(err, ErrTooFewRows))

	same := coding.NewBuilder("m").Set("V1", "Tone", "A").Set("V2", "Tone", "A").Build()
	_, err = Fit(same, []string{"Tone"}, 2)
	assert.Error(t, err)

	_, err = Fit(same, nil, 2)
	assert.Error(t, err)
}
