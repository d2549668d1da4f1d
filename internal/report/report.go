// Package report renders tool summaries and run comparisons as text.
// All comparison semantics live with the tools; this layer only formats.
package report

import (
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/fatih/color"

	"buildprof/internal/pathshort"
	"buildprof/internal/tool"
)

var (
	betterColor    = color.New(color.FgGreen)
	worseColor     = color.New(color.FgRed)
	unchangedColor = color.New(color.FgHiBlack)
	headerColor    = color.New(color.Bold)
)

// Writer renders run output to a single destination.
type Writer struct {
	out     io.Writer
	shorten *pathshort.Shortener
}

// NewWriter builds a Writer. shorten may be nil.
func NewWriter(out io.Writer, shorten *pathshort.Shortener) *Writer {
	return &Writer{out: out, shorten: shorten}
}

// WriteSummaries prints every tool's metrics and groups, tools in sorted
// order so output is stable across runs.
func (w *Writer) WriteSummaries(summaries map[string]tool.Summary) {
	ids := make([]string, 0, len(summaries))
	for id := range summaries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		w.writeSummary(summaries[id])
	}
}

func (w *Writer) writeSummary(s tool.Summary) {
	headerColor.Fprintf(w.out, "* %s\n", s.ToolID)
	w.writeMetrics(s.Metrics, "  ")
	groups := make([]string, 0, len(s.Groups))
	for name := range s.Groups {
		groups = append(groups, name)
	}
	sort.Strings(groups)
	for _, name := range groups {
		fmt.Fprintf(w.out, "  %s:\n", w.short(name))
		w.writeMetrics(s.Groups[name], "    ")
	}
	fmt.Fprintln(w.out)
}

func (w *Writer) writeMetrics(m tool.Metrics, indent string) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w.out, "%s%16s   %s\n", indent, FormatValue(tool.UnitCount, round2(m[name])), w.short(name))
	}
}

// WriteComparisons prints the per-tool diff tables. Reports arrive
// already grouped by tool from the registry.
func (w *Writer) WriteComparisons(reports []tool.ComparisonReport) {
	lastTool := ""
	for _, r := range reports {
		if r.ToolID != lastTool {
			if lastTool != "" {
				fmt.Fprintln(w.out)
			}
			headerColor.Fprintf(w.out, "* %s\n", r.ToolID)
			fmt.Fprintf(w.out, "%16s %16s %16s   %s\n", "Last", "Current", "Delta", "Name")
			lastTool = r.ToolID
		}
		w.writeComparison(r)
	}
	if lastTool != "" {
		fmt.Fprintln(w.out)
	}
}

func (w *Writer) writeComparison(r tool.ComparisonReport) {
	last := "-"
	if r.HasPrevious {
		last = FormatValue(r.Unit, r.Previous)
	}
	current := "-"
	if r.HasCurrent {
		current = FormatValue(r.Unit, r.Current)
	}
	c := unchangedColor
	switch r.Direction {
	case tool.DirectionBetter:
		c = betterColor
	case tool.DirectionWorse:
		c = worseColor
	}
	fmt.Fprintf(w.out, "%16s %16s %s   %s\n", last, current, c.Sprintf("%16s", deltaString(r)), w.short(r.Metric))
}

// deltaString renders the movement as a percentage of the prior value.
// A sign marks improvement the way the tool's polarity defines it, so a
// regression never reads as a win.
func deltaString(r tool.ComparisonReport) string {
	if !r.HasPrevious || !r.HasCurrent || (r.Previous == 0 && r.Current == 0) {
		return "n/a"
	}
	plus := ""
	if r.Direction == tool.DirectionBetter {
		plus = "+"
	}
	if r.Previous == 0 {
		return plus + "inf%"
	}
	pct := (r.Previous - r.Current) / r.Previous * 100
	if pct >= 100 || pct <= -100 {
		return fmt.Sprintf("%s%d%%", plus, int(pct))
	}
	return fmt.Sprintf("%s%.2f%%", plus, truncate2(pct))
}

func (w *Writer) short(s string) string {
	if w.shorten == nil {
		return s
	}
	return w.shorten.Apply(s)
}

// truncate2 cuts to two decimal places without rounding, so a 0.999%
// movement never prints as a full percent.
func truncate2(v float64) float64 {
	return math.Trunc(v*100) / 100
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
