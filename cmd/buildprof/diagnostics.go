package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"buildprof/internal/diag"
	"buildprof/internal/driver"
)

var (
	errorLabel   = color.New(color.FgRed, color.Bold)
	warningLabel = color.New(color.FgYellow)
	infoLabel    = color.New(color.FgHiBlack)
)

// printDiagnostics writes the bag's contents, deduplicated and in path
// order, one line per diagnostic.
func printDiagnostics(out io.Writer, bag *diag.Bag) {
	bag.Sort()
	bag.Dedup()
	for _, d := range bag.Items() {
		label := infoLabel
		switch d.Severity {
		case diag.SevError:
			label = errorLabel
		case diag.SevWarning:
			label = warningLabel
		}
		where := d.Path
		if d.Subject != "" {
			where = where + " (" + d.Subject + ")"
		}
		if where != "" {
			fmt.Fprintf(out, "%s %s: %s [%s]\n", label.Sprintf("%s:", d.Severity), where, d.Message, d.Code)
		} else {
			fmt.Fprintf(out, "%s %s [%s]\n", label.Sprintf("%s:", d.Severity), d.Message, d.Code)
		}
	}
	if dropped := bag.Dropped(); dropped > 0 {
		fmt.Fprintf(out, "%s %d more diagnostics dropped\n", infoLabel.Sprint("note:"), dropped)
	}
}

func timingSummary(result driver.Result) string {
	out := "timings:\n"
	for _, p := range result.Timings.Phases {
		out += fmt.Sprintf("  %-12s %8.2f ms", p.Name, p.DurationMS)
		if p.Note != "" {
			out += "  // " + p.Note
		}
		out += "\n"
	}
	out += fmt.Sprintf("  %-12s %8.2f ms\n", "total", result.Timings.TotalMS)
	return out
}
