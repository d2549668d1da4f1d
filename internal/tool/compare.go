package tool

import "sort"

// Direction classifies a metric's movement between two runs.
type Direction uint8

const (
	// DirectionUnchanged means the value did not move.
	DirectionUnchanged Direction = iota
	// DirectionBetter means the value moved the way the tool's polarity
	// calls an improvement.
	DirectionBetter
	DirectionWorse
	// DirectionNew means no prior value exists for this metric.
	DirectionNew
)

func (d Direction) String() string {
	switch d {
	case DirectionUnchanged:
		return "unchanged"
	case DirectionBetter:
		return "better"
	case DirectionWorse:
		return "worse"
	case DirectionNew:
		return "new"
	}
	return "unknown"
}

// Polarity states which way a metric should move to count as better.
// The registry never assumes one globally; each tool declares its own.
type Polarity uint8

const (
	// LowerIsBetter suits time and size metrics.
	LowerIsBetter Polarity = iota
	HigherIsBetter
)

// Unit is a formatting hint for the rendering layer; it carries no
// comparison semantics.
type Unit uint8

const (
	// UnitCount is a plain number.
	UnitCount Unit = iota
	// UnitMillis is time in milliseconds.
	UnitMillis
	// UnitSeconds is CPU time in seconds.
	UnitSeconds
	// UnitBytes is a file size.
	UnitBytes
)

// ComparisonReport is the per-metric delta between the current run and a
// selected prior run.
type ComparisonReport struct {
	ToolID     string
	Metric     string
	Current    float64
	Previous   float64
	HasCurrent bool
	// HasPrevious is false when the metric is new in this run.
	HasPrevious bool
	// Delta is Current minus Previous, zero when either side is absent.
	Delta     float64
	Direction Direction
	Unit      Unit
}

// CompareMetrics diffs two metric sets under the given polarity. Metric
// names are the union of both sides, in sorted order; a metric present
// only in the current run reports DirectionNew, one present only in the
// prior run is kept with HasCurrent false so regressions to zero output
// stay visible.
func CompareMetrics(toolID string, current Metrics, prior Metrics, polarity Polarity, unit Unit) []ComparisonReport {
	names := make(map[string]bool, len(current)+len(prior))
	for name := range current {
		names[name] = true
	}
	for name := range prior {
		names[name] = true
	}
	sorted := make([]string, 0, len(names))
	for name := range names {
		sorted = append(sorted, name)
	}
	sort.Strings(sorted)

	out := make([]ComparisonReport, 0, len(sorted))
	for _, name := range sorted {
		cur, hasCur := current[name]
		prev, hasPrev := prior[name]
		report := ComparisonReport{
			ToolID:      toolID,
			Metric:      name,
			Current:     cur,
			Previous:    prev,
			HasCurrent:  hasCur,
			HasPrevious: hasPrev,
			Unit:        unit,
		}
		switch {
		case !hasPrev:
			report.Direction = DirectionNew
		case !hasCur:
			report.Direction = DirectionUnchanged
		default:
			report.Delta = cur - prev
			report.Direction = direction(report.Delta, polarity)
		}
		out = append(out, report)
	}
	return out
}

func direction(delta float64, polarity Polarity) Direction {
	if delta == 0 {
		return DirectionUnchanged
	}
	improved := delta < 0
	if polarity == HigherIsBetter {
		improved = !improved
	}
	if improved {
		return DirectionBetter
	}
	return DirectionWorse
}
