package tools

import (
	"context"

	"buildprof/internal/aggregate"
	"buildprof/internal/diag"
	"buildprof/internal/tool"
)

// ExpensiveIncludes summarizes which headers the build spends the most
// time parsing, in aggregate across every file that includes them.
type ExpensiveIncludes struct {
	topN int
}

func NewExpensiveIncludes(topN int) *ExpensiveIncludes {
	return &ExpensiveIncludes{topN: topN}
}

func (t *ExpensiveIncludes) ID() string { return "expensive-includes" }

func (t *ExpensiveIncludes) Description() string {
	return "Summarizes which headers are included and how long they take in aggregate."
}

func (t *ExpensiveIncludes) DefaultEnabled() bool { return true }

func (t *ExpensiveIncludes) Produce(_ context.Context, run *aggregate.Run, bag *diag.Bag) (tool.Summary, error) {
	summary := tool.NewSummary(t.ID(), "")
	if len(run.Includes) == 0 {
		bag.Addf(diag.SevWarning, diag.CodeNoIncludes, "", "", "no includes were found")
		return summary, nil
	}

	var totalParse int64
	for _, inc := range run.Includes {
		totalParse += inc.TotalSelfTime
	}
	summary.Metrics["includes"] = float64(len(run.Includes))
	summary.Metrics["totalParseMs"] = usToMs(totalParse)

	top := summary.Group("top")
	for _, inc := range run.TopIncludes(t.topN) {
		top[inc.Path] = usToMs(inc.TotalSelfTime)
	}
	counts := summary.Group("inclusions")
	for _, inc := range run.TopIncludes(t.topN) {
		counts[inc.Path] = float64(inc.InclusionCount)
	}

	for _, target := range run.Membership.Targets() {
		ranked := run.IncludesForTarget(target.Name)
		if len(ranked) == 0 {
			continue
		}
		group := summary.Group(target.Name)
		for i, inc := range ranked {
			if i >= t.topN {
				break
			}
			group[inc.Path] = usToMs(inc.TotalSelfTime)
		}
	}
	return summary, nil
}

// Compare diffs the aggregate parse time only; shorter is better.
func (t *ExpensiveIncludes) Compare(current tool.Summary, prior *tool.Summary) []tool.ComparisonReport {
	cur := tool.Metrics{"totalParseMs": current.Metrics["totalParseMs"]}
	var prev tool.Metrics
	if prior != nil {
		if v, ok := prior.Metrics["totalParseMs"]; ok {
			prev = tool.Metrics{"totalParseMs": v}
		}
	}
	return tool.CompareMetrics(t.ID(), cur, prev, tool.LowerIsBetter, tool.UnitMillis)
}
