package aggregate

import (
	"errors"
	"sort"

	"buildprof/internal/diag"
	"buildprof/internal/project"
	"buildprof/internal/traceevent"
)

// ErrNoInput is the fatal precondition failure for a run with no unit
// traces: every downstream total and ranking would be meaningless.
var ErrNoInput = errors.New("aggregate: no unit traces to analyze")

// Run is the project-wide model built from all unit traces of one build
// run: the reconstructed hierarchies, the target membership, and the
// include rollup. Tools consume it read-only.
type Run struct {
	// Units in lexical source-path order, the module's canonical input
	// ordering for reproducible output.
	Units  []*traceevent.UnitTrace
	ByPath map[string]*traceevent.UnitTrace
	// Trees holds the per-thread call hierarchies, keyed by source path.
	Trees map[string][]Tree
	// Membership is the external target-to-sources mapping.
	Membership *project.Membership
	// Includes is the project-wide include rollup in ranked order.
	Includes []IncludeCost

	includesByTarget map[string][]IncludeCost
}

// NewRun builds the aggregated model for one run. units are re-sorted
// lexically by source path; membership may be empty. Recoverable
// inconsistencies inside traces go to bag; a run with zero traces is a
// precondition failure.
func NewRun(units []*traceevent.UnitTrace, membership *project.Membership, bag *diag.Bag) (*Run, error) {
	if len(units) == 0 {
		return nil, ErrNoInput
	}
	if membership == nil {
		membership = project.NewMembership(nil)
	}

	sorted := make([]*traceevent.UnitTrace, len(units))
	copy(sorted, units)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].SourcePath < sorted[j].SourcePath })

	run := &Run{
		Units:      sorted,
		ByPath:     make(map[string]*traceevent.UnitTrace, len(sorted)),
		Trees:      make(map[string][]Tree, len(sorted)),
		Membership: membership,
	}

	projectSet := make(includeSet)
	run.includesByTarget = make(map[string][]IncludeCost)
	targetSets := make(map[string]includeSet)
	targetOf := sourceToTargets(membership)

	for _, unit := range sorted {
		run.ByPath[unit.SourcePath] = unit
		trees := BuildTrees(unit, bag)
		run.Trees[unit.SourcePath] = trees
		collectIncludes(trees, projectSet, bag)
		for _, targetName := range targetOf[unit.SourcePath] {
			set, ok := targetSets[targetName]
			if !ok {
				set = make(includeSet)
				targetSets[targetName] = set
			}
			collectIncludes(trees, set, bag)
		}
	}

	run.Includes = RankIncludes(projectSet)
	for name, set := range targetSets {
		run.includesByTarget[name] = RankIncludes(set)
	}
	return run, nil
}

// FileCost returns the compile cost of one unit: the duration of its root
// span, independent of category breakdown.
func FileCost(unit *traceevent.UnitTrace) int64 {
	return unit.TotalTime()
}

// TargetCost sums the file costs of the target's sources that are present
// in this run. A file belonging to several targets contributes to each;
// time is target-scoped, not globally deduplicated.
func (r *Run) TargetCost(t project.Target) int64 {
	var total int64
	for _, src := range t.Sources {
		if unit, ok := r.ByPath[src]; ok {
			total += FileCost(unit)
		}
	}
	return total
}

// IncludesForTarget returns the ranked include rollup restricted to the
// units belonging to one target. Nil when the target had no units.
func (r *Run) IncludesForTarget(name string) []IncludeCost {
	return r.includesByTarget[name]
}

// TopFiles returns up to n units by descending file cost; ties break
// lexically by source path so the ranking is total and stable.
func (r *Run) TopFiles(n int) []*traceevent.UnitTrace {
	top := NewTopN(n, func(a, b *traceevent.UnitTrace) bool {
		ca, cb := FileCost(a), FileCost(b)
		if ca != cb {
			return ca > cb
		}
		return a.SourcePath < b.SourcePath
	})
	for _, u := range r.Units {
		top.Push(u)
	}
	return top.Items()
}

// TopIncludes returns up to n entries of the project-wide include ranking.
func (r *Run) TopIncludes(n int) []IncludeCost {
	top := NewTopN(n, includeLess)
	for _, c := range r.Includes {
		top.Push(c)
	}
	return top.Items()
}

func sourceToTargets(m *project.Membership) map[string][]string {
	out := make(map[string][]string)
	for _, t := range m.Targets() {
		for _, src := range t.Sources {
			out[src] = append(out[src], t.Name)
		}
	}
	return out
}
