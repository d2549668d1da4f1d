package tools

import (
	"context"

	"buildprof/internal/aggregate"
	"buildprof/internal/diag"
	"buildprof/internal/tool"
	"buildprof/internal/traceevent"
)

// ProjectTrace stitches every per-file trace into one project-wide trace
// that can be opened in a trace viewer. Off by default; the merged
// document grows with the build.
type ProjectTrace struct {
	merged []byte
}

func NewProjectTrace() *ProjectTrace {
	return &ProjectTrace{}
}

func (t *ProjectTrace) ID() string { return "project-trace" }

func (t *ProjectTrace) Description() string {
	return "Merges all per-file traces into a single project-wide trace file."
}

func (t *ProjectTrace) DefaultEnabled() bool { return false }

func (t *ProjectTrace) Produce(_ context.Context, run *aggregate.Run, _ *diag.Bag) (tool.Summary, error) {
	merged := aggregate.Merge(run.Units)
	raw, err := traceevent.Marshal(merged)
	if err != nil {
		return tool.Summary{}, err
	}
	t.merged = raw

	var cpu int64
	for _, unit := range run.Units {
		cpu += unit.TotalTime()
	}
	summary := tool.NewSummary(t.ID(), "")
	summary.Metrics["files"] = float64(len(run.Units))
	summary.Metrics["totalCPUSeconds"] = usToSeconds(cpu)
	if n := len(run.Units); n > 0 {
		summary.Metrics["avgCPUSeconds"] = usToSeconds(cpu) / float64(n)
	}
	return summary, nil
}

// MergedTrace returns the merged trace built by the last Produce call,
// or nil if the tool has not run.
func (t *ProjectTrace) MergedTrace() []byte { return t.merged }

func (t *ProjectTrace) Compare(current tool.Summary, prior *tool.Summary) []tool.ComparisonReport {
	cur := tool.Metrics{"totalCPUSeconds": current.Metrics["totalCPUSeconds"]}
	var prev tool.Metrics
	if prior != nil {
		if v, ok := prior.Metrics["totalCPUSeconds"]; ok {
			prev = tool.Metrics{"totalCPUSeconds": v}
		}
	}
	return tool.CompareMetrics(t.ID(), cur, prev, tool.LowerIsBetter, tool.UnitSeconds)
}
