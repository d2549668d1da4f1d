package observ

import (
	"strings"
	"testing"
)

func TestTimerPhases(t *testing.T) {
	tm := NewTimer()
	idx := tm.Begin(PhaseIngest)
	tm.End(idx, "3 files")
	tm.Track(PhaseTools, func() string { return "4 tools" })

	report := tm.Report()
	if len(report.Phases) != 2 {
		t.Fatalf("phases = %d, want 2", len(report.Phases))
	}
	if report.Phases[0].Name != PhaseIngest || report.Phases[0].Note != "3 files" {
		t.Fatalf("first phase = %+v", report.Phases[0])
	}
	if report.Phases[1].Name != PhaseTools {
		t.Fatalf("second phase = %+v", report.Phases[1])
	}
}

func TestTimerEndIgnoresBadIndex(t *testing.T) {
	tm := NewTimer()
	tm.End(-1, "")
	tm.End(5, "")
	if got := tm.Report(); len(got.Phases) != 0 {
		t.Fatalf("report = %+v", got)
	}
}

func TestSummaryMentionsEveryPhase(t *testing.T) {
	tm := NewTimer()
	tm.Track(PhaseAggregate, func() string { return "" })
	out := tm.Summary()
	if !strings.Contains(out, PhaseAggregate) || !strings.Contains(out, "total") {
		t.Fatalf("summary = %q", out)
	}
}
