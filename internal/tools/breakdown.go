package tools

import (
	"context"

	"buildprof/internal/aggregate"
	"buildprof/internal/diag"
	"buildprof/internal/tool"
)

// CompilerBreakdown sums the per-phase rollup events the compiler emits
// ("Total Frontend", "Total Backend", ...) across every translation unit,
// giving a project-wide view of where compile time goes.
type CompilerBreakdown struct{}

func NewCompilerBreakdown() *CompilerBreakdown {
	return &CompilerBreakdown{}
}

func (t *CompilerBreakdown) ID() string { return "compiler-breakdown" }

func (t *CompilerBreakdown) Description() string {
	return "Breaks total compile time down by compiler phase across the whole build."
}

func (t *CompilerBreakdown) DefaultEnabled() bool { return true }

func (t *CompilerBreakdown) Produce(_ context.Context, run *aggregate.Run, _ *diag.Bag) (tool.Summary, error) {
	summary := tool.NewSummary(t.ID(), "")
	var grand int64
	for _, unit := range run.Units {
		for i := range unit.Events {
			ev := &unit.Events[i]
			if !ev.IsTotal() {
				continue
			}
			summary.Metrics[ev.TotalName()] += usToMs(ev.Dur)
			grand += ev.Dur
		}
	}
	summary.Metrics[totalKey] = usToMs(grand)
	return summary, nil
}

func (t *CompilerBreakdown) Compare(current tool.Summary, prior *tool.Summary) []tool.ComparisonReport {
	var prev tool.Metrics
	if prior != nil {
		prev = prior.Metrics
	}
	return tool.CompareMetrics(t.ID(), current.Metrics, prev, tool.LowerIsBetter, tool.UnitMillis)
}
