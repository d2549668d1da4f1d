package history

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"buildprof/internal/diag"
	"buildprof/internal/tool"
)

func testRecord(runID string, ts time.Time, tag string) Record {
	summary := tool.NewSummary("target-times", runID)
	summary.Metrics["totalMs"] = 1234
	return NewRecord(runID, ts, tag, map[string]tool.Summary{"target-times": summary})
}

func mustOpen(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return s
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := mustOpen(t)
	ts := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	if err := s.Save(testRecord("r1", ts, "")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	rec, err := s.Load("r1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if rec.RunID != "r1" || !rec.Timestamp.Equal(ts) {
		t.Fatalf("record identity lost: %+v", rec)
	}
	got := rec.Summaries["target-times"]
	if got.Metrics["totalMs"] != 1234 {
		t.Fatalf("summary lost: %+v", got)
	}
}

func TestSaveDuplicateRunID(t *testing.T) {
	s := mustOpen(t)
	now := time.Now()
	if err := s.Save(testRecord("r1", now, "")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	err := s.Save(testRecord("r1", now.Add(time.Hour), ""))
	var dup *DuplicateRunIDError
	if !errors.As(err, &dup) || dup.RunID != "r1" {
		t.Fatalf("expected DuplicateRunIDError, got %v", err)
	}
}

func TestLoadPriorLatest(t *testing.T) {
	s := mustOpen(t)
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"r1", "r2", "r3"} {
		if err := s.Save(testRecord(id, base.Add(time.Duration(i)*time.Hour), "")); err != nil {
			t.Fatalf("Save %s: %v", id, err)
		}
	}
	// During r3's run, the latest prior must be r2, never r1 or r3.
	rec, ok := s.LoadPrior(LatestPrior(), "r3", diag.NewBag(10))
	if !ok || rec.RunID != "r2" {
		t.Fatalf("LoadPrior = %+v ok=%v, want r2", rec, ok)
	}
}

func TestLoadPriorExplicitAndTagged(t *testing.T) {
	s := mustOpen(t)
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	s.Save(testRecord("r1", base, "baseline"))
	s.Save(testRecord("r2", base.Add(time.Hour), ""))
	s.Save(testRecord("r3", base.Add(2*time.Hour), "baseline"))

	rec, ok := s.LoadPrior(ByRunID("r1"), "r4", diag.NewBag(10))
	if !ok || rec.RunID != "r1" {
		t.Fatalf("ByRunID = %+v, want r1", rec)
	}
	rec, ok = s.LoadPrior(LatestTagged("baseline"), "r4", diag.NewBag(10))
	if !ok || rec.RunID != "r3" {
		t.Fatalf("LatestTagged = %+v, want r3", rec)
	}
	// The current run never matches, even when tagged.
	rec, ok = s.LoadPrior(LatestTagged("baseline"), "r3", diag.NewBag(10))
	if !ok || rec.RunID != "r1" {
		t.Fatalf("LatestTagged excluding current = %+v, want r1", rec)
	}
}

func TestLoadPriorEmptyStore(t *testing.T) {
	s := mustOpen(t)
	if _, ok := s.LoadPrior(LatestPrior(), "r1", diag.NewBag(10)); ok {
		t.Fatalf("empty store must report absent")
	}
}

func TestCorruptRecordSkipped(t *testing.T) {
	s := mustOpen(t)
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	s.Save(testRecord("r1", base, ""))
	s.Save(testRecord("r2", base.Add(time.Hour), ""))

	// Clobber r2's bytes on disk.
	if err := os.WriteFile(s.pathFor("r2"), []byte("not msgpack"), 0o644); err != nil {
		t.Fatalf("corrupt: %v", err)
	}

	bag := diag.NewBag(10)
	rec, ok := s.LoadPrior(LatestPrior(), "r3", bag)
	if !ok || rec.RunID != "r1" {
		t.Fatalf("corrupt record must be treated as absent, got %+v", rec)
	}
	if bag.CountByCode(diag.CodeHistoryRecordCorrupt) != 1 {
		t.Fatalf("corruption must be reported: %v", bag.Items())
	}
}

func TestUnsupportedVersionSkipped(t *testing.T) {
	s := mustOpen(t)
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	s.Save(testRecord("r1", base, ""))

	future := testRecord("r2", base.Add(time.Hour), "")
	future.Schema = SchemaVersion + 1
	// Bypass Save's stamping; write the future-versioned record directly.
	if err := s.Save(future); err != nil {
		t.Fatalf("Save: %v", err)
	}

	bag := diag.NewBag(10)
	rec, ok := s.LoadPrior(LatestPrior(), "r3", bag)
	if !ok || rec.RunID != "r1" {
		t.Fatalf("future-versioned record must be skipped, got %+v", rec)
	}
	if bag.CountByCode(diag.CodeUnsupportedHistoryVersion) != 1 {
		t.Fatalf("version mismatch must be reported: %v", bag.Items())
	}
}

func TestPruneByCountAndAge(t *testing.T) {
	s := mustOpen(t)
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"r1", "r2", "r3", "r4"} {
		s.Save(testRecord(id, base.Add(time.Duration(i)*24*time.Hour), ""))
	}
	now := base.Add(5 * 24 * time.Hour)

	removed, err := s.Prune(RetentionPolicy{MaxAge: 3 * 24 * time.Hour}, now)
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if removed != 2 {
		t.Fatalf("age prune removed %d, want 2 (r1, r2)", removed)
	}

	removed, err = s.Prune(RetentionPolicy{MaxRecords: 1}, now)
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if removed != 1 {
		t.Fatalf("count prune removed %d, want 1 (r3)", removed)
	}

	records, err := s.List(diag.NewBag(10))
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 1 || records[0].RunID != "r4" {
		t.Fatalf("surviving records wrong: %+v", records)
	}
}
