package tools

import (
	"context"

	"buildprof/internal/aggregate"
	"buildprof/internal/diag"
	"buildprof/internal/tool"
)

// TargetTimes breaks down how long each build target took to compile.
type TargetTimes struct{}

func NewTargetTimes() *TargetTimes {
	return &TargetTimes{}
}

func (t *TargetTimes) ID() string { return "target-times" }

func (t *TargetTimes) Description() string {
	return "Breaks down how long each target in the build takes."
}

func (t *TargetTimes) DefaultEnabled() bool { return true }

func (t *TargetTimes) Produce(_ context.Context, run *aggregate.Run, bag *diag.Bag) (tool.Summary, error) {
	summary := tool.NewSummary(t.ID(), "")
	targets := run.Membership.Targets()
	if len(targets) == 0 {
		bag.Addf(diag.SevWarning, diag.CodeNoTargets, "", "", "no targets to determine times for")
	}

	var total int64
	for _, target := range targets {
		cost := run.TargetCost(target)
		total += cost
		summary.Metrics[target.Name] = usToMs(cost)
	}
	summary.Metrics[totalKey] = usToMs(total)
	return summary, nil
}

// Compare diffs per-target times; shorter is better.
func (t *TargetTimes) Compare(current tool.Summary, prior *tool.Summary) []tool.ComparisonReport {
	var prev tool.Metrics
	if prior != nil {
		prev = prior.Metrics
	}
	return tool.CompareMetrics(t.ID(), current.Metrics, prev, tool.LowerIsBetter, tool.UnitMillis)
}
