package coding

import "strings"

// Source is a document family, identified by the first letter of an item ID.
type Source struct {
	Prefix string `json:"prefix" yaml:"prefix"`
	Name   string `json:"name" yaml:"name"`
}

// Sources is an ordered list of document families. Order is the display
// order used by tables and charts.
type Sources []Source

// DefaultSources returns the four source families of the validation study.
func DefaultSources() Sources {
	return Sources{
		{Prefix: "V", Name: "VIS Papers"},
		{Prefix: "B", Name: "Books"},
		{Prefix: "C", Name: "Crowdsourced"},
		{Prefix: "W", Name: "Web Blogs"},
	}
}

// Classify returns the source of itemID by its leading letter.
func (s Sources) Classify(itemID string) (Source, bool) {
	id := strings.TrimSpace(itemID)
	if id == "" {
		return Source{}, false
	}
	lead := strings.ToUpper(id[:1])
	for _, src := range s {
		if strings.ToUpper(src.Prefix) == lead {
			return src, true
		}
	}
	return Source{}, false
}

// Names returns the display names in order.
func (s Sources) Names() []string {
	names := make([]string, len(s))
	for i, src := range s {
		names[i] = src.Name
	}
	return names
}

// GroupItems buckets item IDs by source name, keeping item order. Items
// with an unknown prefix are returned separately.
func (s Sources) GroupItems(items []string) (groups map[string][]string, unknown []string) {
	groups = make(map[string][]string, len(s))
	for _, item := range items {
		src, ok := s.Classify(item)
		if !ok {
			unknown = append(unknown, item)
			continue
		}
		groups[src.Name] = append(groups[src.Name], item)
	}
	return groups, unknown
}
