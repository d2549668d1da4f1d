package tools

import (
	"context"

	"buildprof/internal/aggregate"
	"buildprof/internal/diag"
	"buildprof/internal/tool"
	"buildprof/internal/traceevent"
)

// ExpensiveFiles ranks the most expensive source files to compile,
// project-wide and per target.
type ExpensiveFiles struct {
	topN int
}

func NewExpensiveFiles(topN int) *ExpensiveFiles {
	return &ExpensiveFiles{topN: topN}
}

func (t *ExpensiveFiles) ID() string { return "expensive-files" }

func (t *ExpensiveFiles) Description() string {
	return "Ranks the most expensive source files to compile."
}

func (t *ExpensiveFiles) DefaultEnabled() bool { return true }

func (t *ExpensiveFiles) Produce(_ context.Context, run *aggregate.Run, _ *diag.Bag) (tool.Summary, error) {
	summary := tool.NewSummary(t.ID(), "")
	summary.Metrics["files"] = float64(len(run.Units))

	top := summary.Group("top")
	for _, unit := range run.TopFiles(t.topN) {
		top[unit.SourcePath] = usToMs(aggregate.FileCost(unit))
	}

	for _, target := range run.Membership.Targets() {
		selector := aggregate.NewTopN(t.topN, fileCostLess)
		for _, src := range target.Sources {
			if unit, ok := run.ByPath[src]; ok {
				selector.Push(unit)
			}
		}
		if items := selector.Items(); len(items) > 0 {
			group := summary.Group(target.Name)
			for _, unit := range items {
				group[unit.SourcePath] = usToMs(aggregate.FileCost(unit))
			}
		}
	}
	return summary, nil
}

func fileCostLess(a, b *traceevent.UnitTrace) bool {
	ca, cb := aggregate.FileCost(a), aggregate.FileCost(b)
	if ca != cb {
		return ca > cb
	}
	return a.SourcePath < b.SourcePath
}
