package agreement

import (
	"errors"
	"fmt"
	"math"

	"github.com/banshee-data/rater-agreement/internal/coding"
	"github.com/banshee-data/rater-agreement/internal/monitoring"
)

// Method names the statistic used for a label.
type Method string

const (
	// MethodKappa is unweighted Cohen's kappa.
	MethodKappa Method = "kappa"
	// MethodWeightedKappa is Cohen's kappa with Options.Weighting.
	MethodWeightedKappa Method = "weighted_kappa"
	// MethodICC3 is the two-way mixed consistency ICC.
	MethodICC3 Method = "icc3"
	// MethodCrosstab reports the agreement matrix with raw agreement as score.
	MethodCrosstab Method = "crosstab"
)

// ParseMethod accepts the Method constants by name.
func ParseMethod(s string) (Method, error) {
	switch m := Method(s); m {
	case MethodKappa, MethodWeightedKappa, MethodICC3, MethodCrosstab:
		return m, nil
	}
	return "", fmt.Errorf("unknown scoring method %q", s)
}

// Status describes how a label's score was obtained.
type Status string

const (
	StatusOK            Status = "ok"
	StatusDegenerate    Status = "degenerate"
	StatusNotComputable Status = "not_computable"
)

// Options configures a Scorer. The zero value scores nothing sensible; start
// from DefaultOptions.
type Options struct {
	// Rubric declares label kinds; undeclared labels are inferred.
	Rubric coding.Rubric
	// Filter selects which shared labels are scored.
	Filter coding.LabelFilter
	// Recode is applied to both raters' values of numerically scored labels.
	Recode coding.Recode
	// Weighting is used by MethodWeightedKappa.
	Weighting Weighting

	BinaryMethod      Method
	OrdinalMethod     Method
	CategoricalMethod Method

	// Logf receives per-label warnings. Nil means monitoring.Warnf.
	Logf func(format string, v ...interface{})
}

// DefaultOptions scores binary labels with kappa, ordinal labels with
// quadratic-weighted kappa and categorical labels with a crosstab, without
// recoding.
func DefaultOptions() Options {
	return Options{
		Filter:            coding.DefaultLabelFilter(),
		Weighting:         WeightQuadratic,
		BinaryMethod:      MethodKappa,
		OrdinalMethod:     MethodWeightedKappa,
		CategoricalMethod: MethodCrosstab,
	}
}

// LabelScore is the outcome for one label.
type LabelScore struct {
	Label     string      `json:"label"`
	Kind      coding.Kind `json:"kind"`
	Method    Method      `json:"method"`
	Weighting Weighting   `json:"weighting,omitempty"`
	// Score is NaN when Status is StatusNotComputable.
	Score       float64    `json:"score"`
	Items       int        `json:"items"`
	Missing     int        `json:"missing"`
	Unparseable int        `json:"unparseable"`
	Status      Status     `json:"status"`
	Reason      string     `json:"reason,omitempty"`
	Crosstab    *Crosstab  `json:"-"`
	ICC         *ICCResult `json:"icc,omitempty"`
}

// Computable reports whether the label has a defined score.
func (s LabelScore) Computable() bool { return s.Status != StatusNotComputable }

// Result maps each scored label to its LabelScore.
type Result struct {
	Rater1 string
	Rater2 string
	Labels []string
	Scores map[string]LabelScore
}

// Get returns the score of label.
func (r Result) Get(label string) (LabelScore, bool) {
	s, ok := r.Scores[label]
	return s, ok
}

// Values returns label -> score, NaN for labels that were not computable.
func (r Result) Values() map[string]float64 {
	out := make(map[string]float64, len(r.Scores))
	for label, s := range r.Scores {
		out[label] = s.Score
	}
	return out
}

// Ordered returns the scores in label order.
func (r Result) Ordered() []LabelScore {
	out := make([]LabelScore, 0, len(r.Labels))
	for _, label := range r.Labels {
		out = append(out, r.Scores[label])
	}
	return out
}

// Summary counts labels by status.
func (r Result) Summary() map[Status]int {
	out := make(map[Status]int, 3)
	for _, s := range r.Scores {
		out[s.Status]++
	}
	return out
}

// Scorer scores a pair of codings label by label.
type Scorer struct {
	opts Options
	// numeric computes the kappa or ICC of one label's paired values.
	numeric func(method Method, a, b []float64, ls *LabelScore) (float64, error)
}

// NewScorer validates opts. Each kind's method must be one the kind
// supports: binary takes kappa or icc3; ordinal takes kappa,
// weighted_kappa or icc3; categorical takes any method.
func NewScorer(opts Options) (*Scorer, error) {
	if _, err := ParseWeighting(string(opts.Weighting)); err != nil {
		return nil, err
	}
	checks := []struct {
		kind    coding.Kind
		method  Method
		allowed []Method
	}{
		{coding.Binary, opts.BinaryMethod, []Method{MethodKappa, MethodICC3}},
		{coding.Ordinal, opts.OrdinalMethod, []Method{MethodKappa, MethodWeightedKappa, MethodICC3}},
		{coding.Categorical, opts.CategoricalMethod, []Method{MethodKappa, MethodWeightedKappa, MethodICC3, MethodCrosstab}},
	}
	for _, c := range checks {
		ok := false
		for _, m := range c.allowed {
			if c.method == m {
				ok = true
			}
		}
		if !ok {
			return nil, fmt.Errorf("method %q is not valid for %s labels", c.method, c.kind)
		}
	}
	if opts.Logf == nil {
		opts.Logf = monitoring.Warnf
	}
	s := &Scorer{opts: opts}
	s.numeric = s.numericScore
	return s, nil
}

// Options returns the scorer's configuration.
func (s *Scorer) Options() Options { return s.opts }

// Score scores every label shared by both codings that passes the filter.
func (s *Scorer) Score(r1, r2 coding.Coding) Result {
	labels := coding.SharedLabels(r1, r2, s.opts.Filter)
	res := Result{
		Rater1: r1.Rater(),
		Rater2: r2.Rater(),
		Labels: labels,
		Scores: make(map[string]LabelScore, len(labels)),
	}
	for _, label := range labels {
		res.Scores[label] = s.ScoreLabel(r1, r2, label)
	}
	return res
}

func (s *Scorer) methodFor(kind coding.Kind) Method {
	switch kind {
	case coding.Binary:
		return s.opts.BinaryMethod
	case coding.Ordinal:
		return s.opts.OrdinalMethod
	default:
		return s.opts.CategoricalMethod
	}
}

// ScoreLabel scores a single label. Failures are recorded on the returned
// LabelScore, never returned as errors.
func (s *Scorer) ScoreLabel(r1, r2 coding.Coding, label string) (ls LabelScore) {
	kind := s.opts.Rubric.KindOf(label, r1, r2)
	method := s.methodFor(kind)
	ls = LabelScore{
		Label:  label,
		Kind:   kind,
		Method: method,
		Score:  math.NaN(),
		Status: StatusNotComputable,
	}
	if method == MethodWeightedKappa {
		ls.Weighting = s.opts.Weighting
	}

	// gonum panics on malformed matrices; keep the batch going.
	defer func() {
		if p := recover(); p != nil {
			ls.Score = math.NaN()
			ls.Status = StatusNotComputable
			ls.Reason = fmt.Sprintf("scoring failed: %v", p)
			s.opts.Logf("label %q: %s", label, ls.Reason)
		}
	}()

	// Numeric methods read categorical labels as quasi-ordinal ratings.
	parseKind := kind
	if kind == coding.Categorical && (method == MethodWeightedKappa || method == MethodICC3) {
		parseKind = coding.Ordinal
	}
	var recode coding.Recode
	if parseKind == coding.Ordinal {
		recode = s.opts.Recode
	}

	pairs := PairValues(r1, r2, label, parseKind, recode)
	ls.Items = pairs.Len()
	ls.Missing = pairs.Missing
	ls.Unparseable = pairs.Unparseable
	if pairs.Unparseable > 0 {
		s.opts.Logf("label %q: %d item(s) dropped with values that are not %s: %q",
			label, pairs.Unparseable, parseKind, pairs.Rejected)
	}
	if pairs.Len() == 0 {
		ls.Reason = ErrNoPairs.Error()
		s.opts.Logf("label %q: not computable: %v", label, ErrNoPairs)
		return ls
	}

	if method == MethodCrosstab {
		a, b := pairs.Texts()
		ct, err := NewCrosstab(a, b)
		if err != nil {
			ls.Reason = err.Error()
			return ls
		}
		ls.Crosstab = ct
		ls.Score = ct.Agreement()
		ls.Status = StatusOK
		return ls
	}

	var a, b []float64
	if parseKind == coding.Categorical {
		ta, tb := pairs.Texts()
		a, b = CodeCategories(ta, tb)
	} else {
		var ok bool
		a, b, ok = pairs.Numbers()
		if !ok {
			ls.Reason = "recode produced non-numeric values"
			s.opts.Logf("label %q: not computable: %s", label, ls.Reason)
			return ls
		}
	}

	// The constant-labeling rule is a kappa rule; ICC3 reports no variance
	// as not computable instead.
	if method != MethodICC3 {
		if score, ok := BoundaryScore(a, b); ok {
			ls.Score = score
			ls.Status = StatusDegenerate
			ls.Reason = "constant labeling"
			return ls
		}
	}

	score, err := s.numeric(method, a, b, &ls)
	if err != nil {
		ls.Reason = err.Error()
		if errors.Is(err, ErrDegenerate) {
			s.opts.Logf("label %q: not computable: %v", label, err)
		}
		return ls
	}
	ls.Score = score
	ls.Status = StatusOK
	return ls
}

func (s *Scorer) numericScore(method Method, a, b []float64, ls *LabelScore) (float64, error) {
	switch method {
	case MethodKappa:
		return CohenKappa(a, b, WeightNone)
	case MethodWeightedKappa:
		return CohenKappa(a, b, s.opts.Weighting)
	case MethodICC3:
		res, err := ICC3(a, b)
		if err != nil {
			return math.NaN(), err
		}
		ls.ICC = &res
		return res.ICC, nil
	default:
		return math.NaN(), fmt.Errorf("unsupported method %q", method)
	}
}
