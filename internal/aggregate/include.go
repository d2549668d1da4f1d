package aggregate

import (
	"sort"
	"strings"

	"buildprof/internal/diag"
)

// IncludeCost aggregates header-parse time for one included file across
// every unit trace in the run. Recomputed each run, never stored.
type IncludeCost struct {
	// Path is the resolved header path as first seen in the traces.
	Path string
	// TotalSelfTime is the summed self time of every Source span that
	// parsed this header, excluding time spent in nested includes.
	TotalSelfTime int64
	// InclusionCount is how many Source spans referenced this header.
	InclusionCount int
}

// AverageTime returns the mean parse cost per inclusion.
func (c IncludeCost) AverageTime() int64 {
	if c.InclusionCount == 0 {
		return 0
	}
	return c.TotalSelfTime / int64(c.InclusionCount)
}

// includeSet accumulates include costs keyed by case-folded path, the way
// the traces themselves are keyed on case-insensitive filesystems.
type includeSet map[string]*IncludeCost

func (s includeSet) add(path string, selfTime int64) {
	key := strings.ToLower(path)
	cost, ok := s[key]
	if !ok {
		cost = &IncludeCost{Path: path}
		s[key] = cost
	}
	cost.TotalSelfTime += selfTime
	cost.InclusionCount++
}

// collectIncludes walks header-parse nodes of the given trees and
// attributes each node's self time to the header named in its detail.
func collectIncludes(trees []Tree, set includeSet, bag *diag.Bag) {
	for i := range trees {
		tree := &trees[i]
		tree.Walk(func(id NodeID, node *CallNode) {
			ev := tree.EventOf(id)
			if !ev.IsSource() {
				return
			}
			header := ev.Detail()
			if header == "" {
				bag.Addf(diag.SevWarning, diag.CodeMalformedTrace,
					tree.Unit.SourcePath, ev.Name,
					"header-parse span has no resolved include path")
				return
			}
			set.add(header, node.SelfTime)
		})
	}
}

// RankIncludes produces a total, stable "most expensive include" order:
// self time descending, then inclusion count descending, then lexical
// path order.
func RankIncludes(set includeSet) []IncludeCost {
	out := make([]IncludeCost, 0, len(set))
	for _, c := range set {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		return includeLess(out[i], out[j])
	})
	return out
}

func includeLess(a, b IncludeCost) bool {
	if a.TotalSelfTime != b.TotalSelfTime {
		return a.TotalSelfTime > b.TotalSelfTime
	}
	if a.InclusionCount != b.InclusionCount {
		return a.InclusionCount > b.InclusionCount
	}
	return a.Path < b.Path
}
