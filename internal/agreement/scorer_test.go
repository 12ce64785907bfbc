package agreement

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/banshee-data/rater-agreement/internal/coding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// build creates a coding for one label from item -> value pairs given as
// alternating strings.
func build(rater, label string, kv ...string) coding.Coding {
	b := coding.NewBuilder(rater)
	for i := 0; i+1 < len(kv); i += 2 {
		b.Set(kv[i], label, kv[i+1])
	}
	return b.Build()
}

type logSink struct{ lines []string }

func (l *logSink) logf(format string, v ...interface{}) {
	l.lines = append(l.lines, fmt.Sprintf(format, v...))
}

func newTestScorer(t *testing.T, mutate func(*Options)) (*Scorer, *logSink) {
	t.Helper()
	sink := &logSink{}
	opts := DefaultOptions()
	opts.Logf = sink.logf
	if mutate != nil {
		mutate(&opts)
	}
	s, err := NewScorer(opts)
	require.NoError(t, err)
	return s, sink
}

func TestScore_BinaryIdentical(t *testing.T) {
	s, _ := newTestScorer(t, nil)
	r1 := build("Sophie", "Action Present", "V1", "Y", "V2", "N", "B1", "yes", "W1", "no")
	r2 := build("Cat", "Action Present", "V1", "YES", "V2", "n", "B1", "Y", "W1", "N")

	res := s.Score(r1, r2)
	ls, ok := res.Get("Action Present")
	require.True(t, ok)
	assert.Equal(t, coding.Binary, ls.Kind)
	assert.Equal(t, MethodKappa, ls.Method)
	assert.Equal(t, StatusOK, ls.Status)
	assert.InDelta(t, 1.0, ls.Score, 1e-12)
	assert.Equal(t, 4, ls.Items)
}

func TestScore_BinaryIdenticalConstant(t *testing.T) {
	s, _ := newTestScorer(t, nil)
	r1 := build("a", "Slogan Present", "V1", "N", "V2", "N")
	r2 := build("b", "Slogan Present", "V1", "N", "V2", "n")

	ls := s.Score(r1, r2).Scores["Slogan Present"]
	assert.Equal(t, StatusDegenerate, ls.Status)
	assert.Equal(t, 1.0, ls.Score)
}

func TestScore_SkewedBinaryScenario(t *testing.T) {
	s, _ := newTestScorer(t, nil)
	r1 := build("a", "Example Present", "A", "Y", "B", "N", "C", "Y")
	r2 := build("b", "Example Present", "A", "Y", "B", "Y", "C", "Y")

	ls := s.Score(r1, r2).Scores["Example Present"]
	assert.Equal(t, 3, ls.Items)
	assert.InDelta(t, 0.0, ls.Score, 1e-12)

	// same numbers through the raw statistic and the crosstab
	k, err := CohenKappa([]float64{1, 0, 1}, []float64{1, 1, 1}, WeightNone)
	require.NoError(t, err)
	assert.InDelta(t, ls.Score, k, 1e-12)
	ct, err := NewCrosstab([]string{"1", "0", "1"}, []string{"1", "1", "1"})
	require.NoError(t, err)
	assert.InDelta(t, 2.0/3.0, ct.Agreement(), 1e-12)
}

func TestScore_NoRetainedItems(t *testing.T) {
	s, sink := newTestScorer(t, nil)
	r1 := build("a", "Action Present", "V1", "", "V2", "nan")
	r2 := build("b", "Action Present", "V1", "Y", "V2", "N")

	ls := s.Score(r1, r2).Scores["Action Present"]
	assert.Equal(t, StatusNotComputable, ls.Status)
	assert.True(t, math.IsNaN(ls.Score))
	assert.Equal(t, 0, ls.Items)
	assert.Equal(t, 2, ls.Missing)
	assert.False(t, ls.Computable())
	assert.NotEmpty(t, sink.lines)
}

func TestScore_DisjointItems(t *testing.T) {
	s, _ := newTestScorer(t, nil)
	b1 := coding.NewBuilder("a")
	b1.Set("V1", "Clarity", "3").Set("V2", "Clarity", "4").Set("V3", "Clarity", "")
	b2 := coding.NewBuilder("b")
	b2.Set("V3", "Clarity", "2").Set("V4", "Clarity", "1").Set("V1", "Clarity", nil)

	ls := s.Score(b1.Build(), b2.Build()).Scores["Clarity"]
	assert.Equal(t, StatusNotComputable, ls.Status)
	assert.True(t, math.IsNaN(ls.Score))
	assert.Equal(t, 4, ls.Missing)
}

func TestScore_OrdinalRecode(t *testing.T) {
	s, _ := newTestScorer(t, func(o *Options) {
		o.Recode = coding.CollapseAdjacent
	})
	r1 := build("a", "Clarity", "V1", "1", "V2", "2", "V3", "2", "V4", "4")
	r2 := build("b", "Clarity", "V1", "1", "V2", "1", "V3", "2", "V4", "5")

	ls := s.Score(r1, r2).Scores["Clarity"]
	assert.Equal(t, coding.Ordinal, ls.Kind)
	assert.Equal(t, MethodWeightedKappa, ls.Method)
	assert.Equal(t, WeightQuadratic, ls.Weighting)
	assert.Equal(t, StatusOK, ls.Status)
	assert.InDelta(t, 1.0, ls.Score, 1e-12)

	pairs := PairValues(r1, r2, "Clarity", coding.Ordinal, coding.CollapseAdjacent)
	a, b, ok := pairs.Numbers()
	require.True(t, ok)
	assert.Equal(t, []float64{1, 1, 1, 5}, a)
	assert.Equal(t, []float64{1, 1, 1, 5}, b)
}

func TestScore_OrdinalWithoutRecode(t *testing.T) {
	s, _ := newTestScorer(t, nil)
	r1 := build("a", "Clarity", "V1", "1", "V2", "2", "V3", "2", "V4", "4")
	r2 := build("b", "Clarity", "V1", "1", "V2", "1", "V3", "2", "V4", "5")

	ls := s.Score(r1, r2).Scores["Clarity"]
	assert.Equal(t, StatusOK, ls.Status)
	assert.Less(t, ls.Score, 1.0)
	assert.Greater(t, ls.Score, 0.0)
}

func TestScore_ICC3(t *testing.T) {
	s, _ := newTestScorer(t, func(o *Options) {
		o.OrdinalMethod = MethodICC3
	})
	r1 := build("a", "Clarity", "V1", "1", "V2", "2", "V3", "3", "V4", "4")
	r2 := build("b", "Clarity", "V1", "1", "V2", "3", "V3", "2", "V4", "4.0")

	ls := s.Score(r1, r2).Scores["Clarity"]
	assert.Equal(t, MethodICC3, ls.Method)
	require.NotNil(t, ls.ICC)
	assert.InDelta(t, 0.8, ls.Score, 1e-9)
	assert.Equal(t, ls.ICC.ICC, ls.Score)
}

func TestScore_UnparseableLogged(t *testing.T) {
	s, sink := newTestScorer(t, func(o *Options) {
		o.Rubric = coding.Rubric{"Clarity": coding.Ordinal}
	})
	r1 := build("a", "Clarity", "V1", "1", "V2", "high", "V3", "3", "V4", "5")
	r2 := build("b", "Clarity", "V1", "1", "V2", "2", "V3", "3", "V4", "4")

	ls := s.Score(r1, r2).Scores["Clarity"]
	assert.Equal(t, 3, ls.Items)
	assert.Equal(t, 1, ls.Unparseable)
	assert.Equal(t, StatusOK, ls.Status)

	joined := strings.Join(sink.lines, "\n")
	assert.Contains(t, joined, `"high"`)
}

func TestScore_AllNonNumericOrdinal(t *testing.T) {
	s, _ := newTestScorer(t, func(o *Options) {
		o.Rubric = coding.Rubric{"Clarity": coding.Ordinal}
	})
	r1 := build("a", "Clarity", "V1", "low", "V2", "high")
	r2 := build("b", "Clarity", "V1", "mid", "V2", "high")

	ls := s.Score(r1, r2).Scores["Clarity"]
	assert.Equal(t, StatusNotComputable, ls.Status)
	assert.Equal(t, 2, ls.Unparseable)
}

func TestScore_Categorical(t *testing.T) {
	labelGoal := "Goal of articulation"
	r1 := build("a", labelGoal, "V1", "Inform", "V2", "Persuade", "V3", "Inform", "V4", "Teach")
	r2 := build("b", labelGoal, "V1", "Inform", "V2", "Inform", "V3", "Inform", "V4", "Teach")

	t.Run("crosstab", func(t *testing.T) {
		s, _ := newTestScorer(t, nil)
		ls := s.Score(r1, r2).Scores[labelGoal]
		assert.Equal(t, coding.Categorical, ls.Kind)
		assert.Equal(t, MethodCrosstab, ls.Method)
		require.NotNil(t, ls.Crosstab)
		assert.InDelta(t, 0.75, ls.Score, 1e-12)
		assert.Equal(t, 1, ls.Crosstab.Count("Persuade", "Inform"))
	})

	t.Run("nominal kappa", func(t *testing.T) {
		s, _ := newTestScorer(t, func(o *Options) { o.CategoricalMethod = MethodKappa })
		ls := s.Score(r1, r2).Scores[labelGoal]
		assert.Equal(t, StatusOK, ls.Status)
		ct, err := NewCrosstab([]string{"Inform", "Persuade", "Inform", "Teach"}, []string{"Inform", "Inform", "Inform", "Teach"})
		require.NoError(t, err)
		want, err := ct.Kappa()
		require.NoError(t, err)
		assert.InDelta(t, want, ls.Score, 1e-12)
	})

	t.Run("icc3 on text is not computable", func(t *testing.T) {
		s, _ := newTestScorer(t, func(o *Options) { o.CategoricalMethod = MethodICC3 })
		ls := s.Score(r1, r2).Scores[labelGoal]
		assert.Equal(t, StatusNotComputable, ls.Status)
		assert.Equal(t, 4, ls.Unparseable)
	})
}

func TestScore_FailureDoesNotStopBatch(t *testing.T) {
	s, _ := newTestScorer(t, nil)
	b1 := coding.NewBuilder("a")
	b2 := coding.NewBuilder("b")
	for i, v := range []string{"Y", "N", "Y", "N"} {
		item := fmt.Sprintf("V%d", i)
		b1.Set(item, "Action Present", v).Set(item, "Empty", "").Set(item, "EX: note", "free text")
		b2.Set(item, "Action Present", v).Set(item, "Empty", "")
	}
	b1.Set("V0", "rater", "1")
	b2.Set("V0", "rater", "2")

	res := s.Score(b1.Build(), b2.Build())
	assert.Equal(t, []string{"Action Present", "Empty"}, res.Labels)
	assert.Equal(t, StatusOK, res.Scores["Action Present"].Status)
	assert.Equal(t, StatusNotComputable, res.Scores["Empty"].Status)

	values := res.Values()
	assert.InDelta(t, 1.0, values["Action Present"], 1e-12)
	assert.True(t, math.IsNaN(values["Empty"]))
	assert.Equal(t, map[Status]int{StatusOK: 1, StatusNotComputable: 1}, res.Summary())
	assert.Len(t, res.Ordered(), 2)
}

func TestNewScorer_Validation(t *testing.T) {
	opts := DefaultOptions()
	opts.BinaryMethod = MethodCrosstab
	_, err := NewScorer(opts)
	assert.Error(t, err)

	opts = DefaultOptions()
	opts.Weighting = "cubic"
	_, err = NewScorer(opts)
	assert.Error(t, err)

	opts = DefaultOptions()
	opts.OrdinalMethod = MethodCrosstab
	_, err = NewScorer(opts)
	assert.Error(t, err)
}

func TestParseMethod(t *testing.T) {
	m, err := ParseMethod("icc3")
	require.NoError(t, err)
	assert.Equal(t, MethodICC3, m)
	_, err = ParseMethod("fleiss")
	assert.Error(t, err)
}

func TestScore_StrayValueKeepsKind(t *testing.T) {
	t.Run("binary", func(t *testing.T) {
		s, sink := newTestScorer(t, nil)
		r1 := build("a", "Action Present", "V1", "Y", "V2", "N", "V3", "Y", "V4", "N", "V5", "Maybe")
		r2 := build("b", "Action Present", "V1", "Y", "V2", "N", "V3", "N", "V4", "N", "V5", "Y")

		ls := s.Score(r1, r2).Scores["Action Present"]
		assert.Equal(t, coding.Binary, ls.Kind)
		assert.Equal(t, MethodKappa, ls.Method)
		assert.Equal(t, StatusOK, ls.Status)
		assert.Equal(t, 4, ls.Items)
		assert.Equal(t, 1, ls.Unparseable)
		assert.InDelta(t, 0.5, ls.Score, 1e-12)
		assert.Contains(t, strings.Join(sink.lines, "\n"), "Maybe")
	})

	t.Run("ordinal", func(t *testing.T) {
		s, sink := newTestScorer(t, nil)
		r1 := build("a", "Clarity", "V1", "1", "V2", "3", "V3", "5", "V4", "4", "V5", "unsure")
		r2 := build("b", "Clarity", "V1", "1", "V2", "3", "V3", "4", "V4", "5", "V5", "2")

		ls := s.Score(r1, r2).Scores["Clarity"]
		assert.Equal(t, coding.Ordinal, ls.Kind)
		assert.Equal(t, MethodWeightedKappa, ls.Method)
		assert.Equal(t, StatusOK, ls.Status)
		assert.Equal(t, 4, ls.Items)
		assert.Equal(t, 1, ls.Unparseable)
		assert.InDelta(t, 0.8, ls.Score, 1e-9)
		assert.Contains(t, strings.Join(sink.lines, "\n"), "unsure")
	})
}

func TestScore_CategoricalIgnoresCase(t *testing.T) {
	labelGoal := "Goal of articulation"
	r1 := build("a", labelGoal, "V1", "Inform", "V2", "persuade")
	r2 := build("b", labelGoal, "V1", "inform", "V2", "Persuade ")

	s, _ := newTestScorer(t, nil)
	ls := s.Score(r1, r2).Scores[labelGoal]
	assert.Equal(t, MethodCrosstab, ls.Method)
	require.NotNil(t, ls.Crosstab)
	assert.InDelta(t, 1.0, ls.Score, 1e-12)
	assert.Equal(t, 1, ls.Crosstab.Count("Inform", "Inform"))
	assert.Equal(t, 1, ls.Crosstab.Count("persuade", "persuade"))
}

func TestScore_ICC3ConstantIsNotComputable(t *testing.T) {
	s, _ := newTestScorer(t, func(o *Options) {
		o.Rubric = coding.Rubric{"Clarity": coding.Ordinal}
		o.OrdinalMethod = MethodICC3
	})
	r1 := build("a", "Clarity", "V1", "3", "V2", "3", "V3", "3")
	r2 := build("b", "Clarity", "V1", "3", "V2", "3", "V3", "3")

	ls := s.Score(r1, r2).Scores["Clarity"]
	assert.Equal(t, MethodICC3, ls.Method)
	assert.Equal(t, StatusNotComputable, ls.Status)
	assert.True(t, math.IsNaN(ls.Score))
	assert.Contains(t, ls.Reason, "no variance")
}

func TestScore_PanicIsRecovered(t *testing.T) {
	s, sink := newTestScorer(t, nil)
	next := s.numeric
	s.numeric = func(method Method, a, b []float64, ls *LabelScore) (float64, error) {
		if ls.Label == "Clarity" {
			panic("mat: dimension mismatch")
		}
		return next(method, a, b, ls)
	}

	b1 := coding.NewBuilder("a")
	b2 := coding.NewBuilder("b")
	for i, v := range []string{"Y", "N", "Y", "N"} {
		item := fmt.Sprintf("V%d", i)
		b1.Set(item, "Action Present", v).Set(item, "Clarity", fmt.Sprint(i+1))
		b2.Set(item, "Action Present", v).Set(item, "Clarity", fmt.Sprint(i+2))
	}

	res := s.Score(b1.Build(), b2.Build())
	failed := res.Scores["Clarity"]
	assert.Equal(t, StatusNotComputable, failed.Status)
	assert.True(t, math.IsNaN(failed.Score))
	assert.Contains(t, failed.Reason, "scoring failed")
	assert.Contains(t, failed.Reason, "dimension mismatch")
	assert.Contains(t, strings.Join(sink.lines, "\n"), `"Clarity"`)

	ok := res.Scores["Action Present"]
	assert.Equal(t, StatusOK, ok.Status)
	assert.InDelta(t, 1.0, ok.Score, 1e-12)
}
