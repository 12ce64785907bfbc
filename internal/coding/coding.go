package coding

// Coding is one rater's coding of a set of items against a set of labels.
// The zero value is an empty coding. Build one with a Builder.
type Coding struct {
	rater    string
	items    []string
	labels   []string
	itemSet  map[string]bool
	labelSet map[string]bool
	cells    map[cellKey]any
}

type cellKey struct {
	item  string
	label string
}

// Rater returns the rater's name.
func (c Coding) Rater() string { return c.rater }

// Items returns item IDs in first-seen order.
func (c Coding) Items() []string { return append([]string(nil), c.items...) }

// Labels returns labels in first-seen order.
func (c Coding) Labels() []string { return append([]string(nil), c.labels...) }

// Value returns the raw cell for (item, label). ok is false when the cell
// was never set; a set cell may still hold a missing marker.
func (c Coding) Value(item, label string) (any, bool) {
	v, ok := c.cells[cellKey{item: item, label: label}]
	return v, ok
}

// HasLabel reports whether any cell was set for label.
func (c Coding) HasLabel(label string) bool {
	return c.labelSet[label]
}

// HasItem reports whether any cell was set for item.
func (c Coding) HasItem(item string) bool {
	return c.itemSet[item]
}

// Column returns the raw values of label in item order; unset cells are nil.
func (c Coding) Column(label string) []any {
	out := make([]any, len(c.items))
	for i, item := range c.items {
		out[i] = c.cells[cellKey{item: item, label: label}]
	}
	return out
}

// Builder accumulates cells for a Coding.
type Builder struct {
	rater     string
	items     []string
	labels    []string
	seenItem  map[string]bool
	seenLabel map[string]bool
	cells     map[cellKey]any
}

// NewBuilder starts a coding for rater.
func NewBuilder(rater string) *Builder {
	return &Builder{
		rater:     rater,
		seenItem:  make(map[string]bool),
		seenLabel: make(map[string]bool),
		cells:     make(map[cellKey]any),
	}
}

// Set records the raw value for (item, label). A later Set for the same
// pair overwrites the earlier one.
func (b *Builder) Set(item, label string, v any) *Builder {
	if !b.seenItem[item] {
		b.seenItem[item] = true
		b.items = append(b.items, item)
	}
	if !b.seenLabel[label] {
		b.seenLabel[label] = true
		b.labels = append(b.labels, label)
	}
	b.cells[cellKey{item: item, label: label}] = v
	return b
}

// Build returns an immutable snapshot. The builder stays usable.
func (b *Builder) Build() Coding {
	cells := make(map[cellKey]any, len(b.cells))
	for k, v := range b.cells {
		cells[k] = v
	}
	return Coding{
		rater:    b.rater,
		items:    append([]string(nil), b.items...),
		labels:   append([]string(nil), b.labels...),
		itemSet:  copySet(b.seenItem),
		labelSet: copySet(b.seenLabel),
		cells:    cells,
	}
}

func copySet(m map[string]bool) map[string]bool {
	out := make(map[string]bool, len(m))
	for k := range m {
		out[k] = true
	}
	return out
}
