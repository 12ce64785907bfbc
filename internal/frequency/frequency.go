package frequency

import (
	"math"

	"github.com/banshee-data/rater-agreement/internal/coding"
	"gonum.org/v1/gonum/mat"
)

// DefaultBins returns the rating scale 1, 1.5, ..., 5. Half steps appear
// once two integer ratings are averaged.
func DefaultBins() []float64 {
	var bins []float64
	for v := 1.0; v <= 5; v += 0.5 {
		bins = append(bins, v)
	}
	return bins
}

// Table holds per-label counts of each rating bin for one source group.
type Table struct {
	Group  string
	Items  int
	Labels []string
	Bins   []float64
	// Counts is len(Labels) x len(Bins); nil when there are no labels.
	Counts *mat.Dense
}

// Row returns the counts of label across bins, or nil if the label is
// unknown.
func (t *Table) Row(label string) []float64 {
	i := indexOf(t.Labels, label)
	if i < 0 || t.Counts == nil {
		return nil
	}
	return mat.Row(nil, i, t.Counts)
}

// At returns the count of bin for label.
func (t *Table) At(label string, bin float64) float64 {
	i := indexOf(t.Labels, label)
	j := -1
	for k, b := range t.Bins {
		if b == bin {
			j = k
		}
	}
	if i < 0 || j < 0 || t.Counts == nil {
		return 0
	}
	return t.Counts.At(i, j)
}

// Frequencies counts, per source and per label, how many items of that
// source carry each bin value. Values outside the bins are ignored and
// bins nobody used are zero columns. Tables are returned in source order;
// a source without items still gets an all-zero table.
func Frequencies(c coding.Coding, sources coding.Sources, bins []float64) []*Table {
	if len(bins) == 0 {
		bins = DefaultBins()
	}
	keys := make(map[string]int, len(bins))
	for j, b := range bins {
		keys[coding.FormatNumber(b)] = j
	}

	groups, _ := sources.GroupItems(c.Items())
	labels := c.Labels()
	tables := make([]*Table, 0, len(sources))
	for _, src := range sources {
		items := groups[src.Name]
		t := &Table{
			Group:  src.Name,
			Items:  len(items),
			Labels: labels,
			Bins:   append([]float64(nil), bins...),
		}
		if len(labels) > 0 {
			t.Counts = mat.NewDense(len(labels), len(bins), nil)
			for i, label := range labels {
				for _, item := range items {
					raw, _ := c.Value(item, label)
					if j, ok := keys[coding.Canonical(raw)]; ok {
						t.Counts.Set(i, j, t.Counts.At(i, j)+1)
					}
				}
			}
		}
		tables = append(tables, t)
	}
	return tables
}

// Normalize returns a copy of t with each row scaled to sum to one. Rows
// with no counts stay zero.
func Normalize(t *Table) *Table {
	out := &Table{
		Group:  t.Group,
		Items:  t.Items,
		Labels: append([]string(nil), t.Labels...),
		Bins:   append([]float64(nil), t.Bins...),
	}
	if t.Counts == nil {
		return out
	}
	r, c := t.Counts.Dims()
	out.Counts = mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		row := mat.Row(nil, i, t.Counts)
		sum := 0.0
		for _, v := range row {
			sum += v
		}
		if sum == 0 {
			continue
		}
		for j, v := range row {
			out.Counts.Set(i, j, v/sum)
		}
	}
	return out
}

// AverageTable holds the weighted mean rating of each label per group.
type AverageTable struct {
	Labels []string
	Groups []string
	// Values is len(Labels) x len(Groups); NaN where a group has no
	// ratings for the label.
	Values *mat.Dense
	// Overall is the mean of each label's defined group averages.
	Overall []float64
}

// Averages computes sum(bin*count)/sum(count) per label and group from
// frequency tables sharing the same labels. Labels with no defined non-zero
// average in any group are dropped.
func Averages(tables []*Table) *AverageTable {
	out := &AverageTable{}
	if len(tables) == 0 {
		return out
	}
	for _, t := range tables {
		out.Groups = append(out.Groups, t.Group)
	}

	var rows [][]float64
	for _, label := range tables[0].Labels {
		row := make([]float64, len(tables))
		keep := false
		for g, t := range tables {
			row[g] = weightedMean(t.Bins, t.Row(label))
			if !math.IsNaN(row[g]) && row[g] != 0 {
				keep = true
			}
		}
		if !keep {
			continue
		}
		out.Labels = append(out.Labels, label)
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return out
	}

	out.Values = mat.NewDense(len(rows), len(tables), nil)
	out.Overall = make([]float64, len(rows))
	for i, row := range rows {
		out.Values.SetRow(i, row)
		sum, n := 0.0, 0
		for _, v := range row {
			if !math.IsNaN(v) {
				sum += v
				n++
			}
		}
		out.Overall[i] = sum / float64(n)
	}
	return out
}

// Get returns the average of label in group, NaN when undefined.
func (a *AverageTable) Get(label, group string) float64 {
	i, j := indexOf(a.Labels, label), indexOf(a.Groups, group)
	if i < 0 || j < 0 {
		return math.NaN()
	}
	return a.Values.At(i, j)
}

func weightedMean(bins, counts []float64) float64 {
	if len(counts) != len(bins) {
		return math.NaN()
	}
	num, den := 0.0, 0.0
	for j, c := range counts {
		num += bins[j] * c
		den += c
	}
	if den == 0 {
		return math.NaN()
	}
	return num / den
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}
