package frequency

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/banshee-data/rater-agreement/internal/coding"
	"gonum.org/v1/gonum/mat"
)

// DefaultElements are the binary element labels of the validation study.
var DefaultElements = []string{
	"Example Present",
	"Counter-example Present",
	"Action Present",
	"Slogan Present",
}

// DefaultGoalLabel is the categorical label counted by GoalCounts.
const DefaultGoalLabel = "Goal of articulation"

var (
	// ErrNoElements is returned when none of the requested element labels
	// exist in a coding.
	ErrNoElements = errors.New("no element labels found")
	// ErrNoGoalLabel is returned when the goal label is absent.
	ErrNoGoalLabel = errors.New("goal label not found")
)

// Presence holds the percentage of documents per source that contain each
// element.
type Presence struct {
	Rater    string
	Sources  []string
	Elements []string
	// Percent is len(Sources) x len(Elements), in 0..100.
	Percent *mat.Dense
}

// Get returns the percentage for (source, element).
func (p *Presence) Get(source, element string) float64 {
	i, j := indexOf(p.Sources, source), indexOf(p.Elements, element)
	if i < 0 || j < 0 {
		return 0
	}
	return p.Percent.At(i, j)
}

// ElementPresence computes, for each source, the share of its documents
// coded Yes for each element label. Anything other than a Yes counts as
// absent. Sources without documents report zero. Element labels missing
// from the coding are skipped.
func ElementPresence(c coding.Coding, elements []string, sources coding.Sources) (*Presence, error) {
	if len(elements) == 0 {
		elements = DefaultElements
	}
	var present []string
	for _, e := range elements {
		if c.HasLabel(e) {
			present = append(present, e)
		}
	}
	if len(present) == 0 {
		return nil, fmt.Errorf("rater %q: %w (looked for %s)", c.Rater(), ErrNoElements, strings.Join(elements, ", "))
	}

	if len(sources) == 0 {
		return nil, errors.New("no sources configured")
	}

	groups, _ := sources.GroupItems(c.Items())
	p := &Presence{
		Rater:    c.Rater(),
		Sources:  sources.Names(),
		Elements: present,
		Percent:  mat.NewDense(len(sources), len(present), nil),
	}
	for i, src := range sources {
		items := groups[src.Name]
		if len(items) == 0 {
			continue
		}
		for j, e := range present {
			yes := 0
			for _, item := range items {
				raw, _ := c.Value(item, e)
				if v, err := coding.Normalize(coding.Binary, raw); err == nil && v.Num == 1 {
					yes++
				}
			}
			p.Percent.Set(i, j, 100*float64(yes)/float64(len(items)))
		}
	}
	return p, nil
}

// GoalTable counts documents per source and goal.
type GoalTable struct {
	Rater   string
	Sources []string
	Goals   []string
	// Counts is len(Sources) x len(Goals).
	Counts *mat.Dense
}

// Get returns the count for (source, goal).
func (g *GoalTable) Get(source, goal string) int {
	i, j := indexOf(g.Sources, source), indexOf(g.Goals, goal)
	if i < 0 || j < 0 || g.Counts == nil {
		return 0
	}
	return int(g.Counts.At(i, j))
}

// SourceTotal returns the number of documents counted for source.
func (g *GoalTable) SourceTotal(source string) int {
	total := 0
	for _, goal := range g.Goals {
		total += g.Get(source, goal)
	}
	return total
}

// GoalCounts cross-tabulates source against the value of goalLabel.
// Documents with a missing goal or an unknown source are not counted.
func GoalCounts(c coding.Coding, goalLabel string, sources coding.Sources) (*GoalTable, error) {
	if goalLabel == "" {
		goalLabel = DefaultGoalLabel
	}
	if !c.HasLabel(goalLabel) {
		return nil, fmt.Errorf("rater %q: %w: %q", c.Rater(), ErrNoGoalLabel, goalLabel)
	}

	counts := make(map[string]map[string]int)
	seen := make(map[string]bool)
	for _, item := range c.Items() {
		src, ok := sources.Classify(item)
		if !ok {
			continue
		}
		raw, _ := c.Value(item, goalLabel)
		if coding.IsMissing(raw) {
			continue
		}
		goal := coding.Canonical(raw)
		if counts[src.Name] == nil {
			counts[src.Name] = make(map[string]int)
		}
		counts[src.Name][goal]++
		seen[goal] = true
	}

	goals := make([]string, 0, len(seen))
	for goal := range seen {
		goals = append(goals, goal)
	}
	sort.Strings(goals)
	return newGoalTable(c.Rater(), sources.Names(), goals, func(source, goal string) int {
		return counts[source][goal]
	}), nil
}

// AlignGoals reindexes both tables onto the sorted union of their goals and
// the union of their sources, filling gaps with zero, so the two raters can
// be charted on the same axes.
func AlignGoals(a, b *GoalTable) (*GoalTable, *GoalTable) {
	goalSet := make(map[string]bool)
	for _, g := range append(append([]string(nil), a.Goals...), b.Goals...) {
		goalSet[g] = true
	}
	goals := make([]string, 0, len(goalSet))
	for g := range goalSet {
		goals = append(goals, g)
	}
	sort.Strings(goals)

	sources := append([]string(nil), a.Sources...)
	for _, s := range b.Sources {
		if indexOf(sources, s) < 0 {
			sources = append(sources, s)
		}
	}
	return newGoalTable(a.Rater, sources, goals, a.Get),
		newGoalTable(b.Rater, sources, goals, b.Get)
}

func newGoalTable(rater string, sources, goals []string, count func(source, goal string) int) *GoalTable {
	g := &GoalTable{Rater: rater, Sources: sources, Goals: goals}
	if len(sources) == 0 || len(goals) == 0 {
		return g
	}
	g.Counts = mat.NewDense(len(sources), len(goals), nil)
	for i, s := range sources {
		for j, goal := range goals {
			g.Counts.Set(i, j, float64(count(s, goal)))
		}
	}
	return g
}
