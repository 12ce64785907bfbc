package frequency

import "github.com/banshee-data/rater-agreement/internal/coding"

// MergedRater is the rater name given to merged codings.
const MergedRater = "merged"

// Merge combines two codings into one. Items and labels are the union of
// both, r1's order first. A cell rated numerically by both raters holds
// the mean of the two ratings. A numeric rating wins over text or a missing
// value from the other rater. When neither value is numeric, r1 wins unless
// it is missing.
func Merge(r1, r2 coding.Coding) coding.Coding {
	b := coding.NewBuilder(MergedRater)

	items := r1.Items()
	for _, item := range r2.Items() {
		if !r1.HasItem(item) {
			items = append(items, item)
		}
	}
	labels := r1.Labels()
	for _, label := range r2.Labels() {
		if !r1.HasLabel(label) {
			labels = append(labels, label)
		}
	}

	for _, item := range items {
		for _, label := range labels {
			raw1, ok1 := r1.Value(item, label)
			raw2, ok2 := r2.Value(item, label)
			if !ok1 && !ok2 {
				continue
			}
			b.Set(item, label, mergeCell(raw1, raw2))
		}
	}
	return b.Build()
}

func mergeCell(raw1, raw2 any) any {
	n1, num1 := coding.Number(raw1)
	n2, num2 := coding.Number(raw2)
	switch {
	case num1 && num2:
		return (n1 + n2) / 2
	case num1:
		return n1
	case num2:
		return n2
	case !coding.IsMissing(raw1):
		return raw1
	default:
		return raw2
	}
}
