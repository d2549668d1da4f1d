// Package tools holds the built-in analysis tools. Each one consumes the
// aggregated run model and produces a summary; some also diff their
// summary against a prior run's. Project-specific tools implement the
// same contract and register alongside these.
package tools

import (
	"buildprof/internal/tool"
)

// The project-wide rollup line in a summary, kept distinct from any real
// target or phase name.
const totalKey = "*** Total ***"

// DefaultTopN bounds ranked output when the caller does not care.
const DefaultTopN = 20

// RegisterAll registers every built-in tool. topN bounds ranked output
// (files, includes, codegen functions); <= 0 falls back to DefaultTopN.
func RegisterAll(reg *tool.Registry, topN int) error {
	if topN <= 0 {
		topN = DefaultTopN
	}
	all := []tool.Tool{
		NewTargetTimes(),
		NewExpensiveFiles(topN),
		NewExpensiveIncludes(topN),
		NewCompilerBreakdown(),
		NewExpensiveCodegen(topN),
		NewProjectTrace(),
	}
	for _, t := range all {
		if err := reg.Register(t); err != nil {
			return err
		}
	}
	return nil
}

func usToMs(us int64) float64 {
	return float64(us) / 1000
}

func usToSeconds(us int64) float64 {
	return float64(us) / 1e6
}
