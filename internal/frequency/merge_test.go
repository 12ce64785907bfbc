package frequency

import (
	"testing"

	"github.com/banshee-data/rater-agreement/internal/coding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMerge(t *testing.T) {
	r1 := coding.NewBuilder("Sophie").
		Set("V1", "Clarity", "4").
		Set("V1", "Goal", "Inform").
		Set("V2", "Clarity", "3").
		Set("V2", "Only1", "x").
		Build()
	r2 := coding.NewBuilder("Cat").
		Set("V1", "Clarity", "5").
		Set("V1", "Goal", "Teach").
		Set("V2", "Clarity", "").
		Set("B1", "Clarity", 2).
		Build()

	m := Merge(r1, r2)
	assert.Equal(t, MergedRater, m.Rater())
	assert.Equal(t, []string{"V1", "V2", "B1"}, m.Items())
	assert.Equal(t, []string{"Clarity", "Goal", "Only1"}, m.Labels())

	tests := []struct {
		item, label string
		want        string
	}{
		{"V1", "Clarity", "4.5"},
		{"V2", "Clarity", "3"},
		{"B1", "Clarity", "2"},
		{"V1", "Goal", "Inform"},
		{"V2", "Only1", "x"},
	}
	for _, tt := range tests {
		raw, ok := m.Value(tt.item, tt.label)
		require.True(t, ok, "%s/%s", tt.item, tt.label)
		assert.Equal(t, tt.want, coding.Canonical(raw), "%s/%s", tt.item, tt.label)
	}

	_, ok := m.Value("B1", "Goal")
	assert.False(t, ok)
}

func TestMerge_SecondRaterFillsMissing(t *testing.T) {
	r1 := coding.NewBuilder("a").Set("C1", "Goal", "nan").Build()
	r2 := coding.NewBuilder("b").Set("C1", "Goal", "Persuade").Build()

	raw, _ := Merge(r1, r2).Value("C1", "Goal")
	assert.Equal(t, "Persuade", raw)
}

func TestMerge_NumberWinsOverText(t *testing.T) {
	tests := []struct {
		name       string
		raw1, raw2 any
		want       string
	}{
		{"text then number", "x", 3, "3"},
		{"number then text", "4", "unsure", "4"},
		{"both text", "Inform", "Teach", "Inform"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r1 := coding.NewBuilder("a").Set("V1", "Clarity", tt.raw1).Build()
			r2 := coding.NewBuilder("b").Set("V1", "Clarity", tt.raw2).Build()
			raw, ok := Merge(r1, r2).Value("V1", "Clarity")
			require.True(t, ok)
			assert.Equal(t, tt.want, coding.Canonical(raw))
		})
	}
}
