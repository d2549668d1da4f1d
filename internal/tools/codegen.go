package tools

import (
	"context"

	"buildprof/internal/aggregate"
	"buildprof/internal/diag"
	"buildprof/internal/tool"
)

// ExpensiveCodegen ranks the functions that cost the most to generate
// code for. It scans every "CodeGen Function" event in the run, so it is
// off by default for large builds.
type ExpensiveCodegen struct {
	topN int
}

func NewExpensiveCodegen(topN int) *ExpensiveCodegen {
	return &ExpensiveCodegen{topN: topN}
}

func (t *ExpensiveCodegen) ID() string { return "expensive-codegen" }

func (t *ExpensiveCodegen) Description() string {
	return "Ranks the individual functions that take longest to generate code for."
}

func (t *ExpensiveCodegen) DefaultEnabled() bool { return false }

type codegenCost struct {
	name string
	dur  int64
}

func codegenLess(a, b codegenCost) bool {
	if a.dur != b.dur {
		return a.dur > b.dur
	}
	return a.name < b.name
}

func (t *ExpensiveCodegen) Produce(_ context.Context, run *aggregate.Run, _ *diag.Bag) (tool.Summary, error) {
	summary := tool.NewSummary(t.ID(), "")
	byName := make(map[string]int64)
	var total int64
	for _, unit := range run.Units {
		for i := range unit.Events {
			ev := &unit.Events[i]
			if !ev.IsCodeGenFunction() {
				continue
			}
			name := ev.Detail()
			if name == "" {
				name = ev.Name
			}
			byName[name] += ev.Dur
			total += ev.Dur
		}
	}
	summary.Metrics["functions"] = float64(len(byName))
	summary.Metrics["totalCodegenMs"] = usToMs(total)

	sel := aggregate.NewTopN(t.topN, codegenLess)
	for name, dur := range byName {
		sel.Push(codegenCost{name: name, dur: dur})
	}

	top := summary.Group("top")
	for _, c := range sel.Items() {
		top[c.name] = usToMs(c.dur)
	}
	return summary, nil
}

func (t *ExpensiveCodegen) Compare(current tool.Summary, prior *tool.Summary) []tool.ComparisonReport {
	cur := tool.Metrics{"totalCodegenMs": current.Metrics["totalCodegenMs"]}
	var prev tool.Metrics
	if prior != nil {
		if v, ok := prior.Metrics["totalCodegenMs"]; ok {
			prev = tool.Metrics{"totalCodegenMs": v}
		}
	}
	return tool.CompareMetrics(t.ID(), cur, prev, tool.LowerIsBetter, tool.UnitMillis)
}
