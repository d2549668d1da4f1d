package aggregate

import (
	"testing"

	"buildprof/internal/diag"
	"buildprof/internal/project"
	"buildprof/internal/traceevent"
)

func sourceSpan(pid, tid, ts, dur int64, header string) traceevent.Event {
	ev := span(traceevent.NameSource, pid, tid, ts, dur)
	ev.SetDetail(header)
	return ev
}

func twoUnitFixture() []*traceevent.UnitTrace {
	a := &traceevent.UnitTrace{
		SourcePath: "a.cpp",
		Events: []traceevent.Event{
			span(traceevent.NameExecuteCompiler, 1, 1, 0, 500),
			sourceSpan(1, 1, 10, 200, "foo.h"),
		},
	}
	b := &traceevent.UnitTrace{
		SourcePath: "b.cpp",
		Events: []traceevent.Event{
			span(traceevent.NameExecuteCompiler, 1, 1, 0, 300),
			sourceSpan(1, 1, 20, 150, "foo.h"),
		},
	}
	return []*traceevent.UnitTrace{a, b}
}

func TestTargetCostAndIncludeRollup(t *testing.T) {
	units := twoUnitFixture()
	membership := project.NewMembership([]project.Target{
		{Name: "T1", Sources: []string{"a.cpp", "b.cpp"}},
	})
	bag := diag.NewBag(10)
	run, err := NewRun(units, membership, bag)
	if err != nil {
		t.Fatalf("NewRun: %v", err)
	}

	targets := membership.Targets()
	if got := run.TargetCost(targets[0]); got != 800 {
		t.Fatalf("TargetCost(T1) = %d, want 800", got)
	}

	if len(run.Includes) != 1 {
		t.Fatalf("expected one include, got %v", run.Includes)
	}
	foo := run.Includes[0]
	if foo.Path != "foo.h" || foo.TotalSelfTime != 350 || foo.InclusionCount != 2 {
		t.Fatalf("IncludeCost[foo.h] = %+v, want {foo.h 350 2}", foo)
	}
}

func TestTargetCostUnaffectedByOtherTargets(t *testing.T) {
	units := twoUnitFixture()
	units = append(units, &traceevent.UnitTrace{
		SourcePath: "c.cpp",
		Events: []traceevent.Event{
			span(traceevent.NameExecuteCompiler, 1, 1, 0, 9000),
		},
	})
	membership := project.NewMembership([]project.Target{
		{Name: "T1", Sources: []string{"a.cpp", "b.cpp"}},
		{Name: "T2", Sources: []string{"c.cpp"}},
	})
	run, err := NewRun(units, membership, diag.NewBag(10))
	if err != nil {
		t.Fatalf("NewRun: %v", err)
	}
	for _, target := range membership.Targets() {
		switch target.Name {
		case "T1":
			if got := run.TargetCost(target); got != 800 {
				t.Fatalf("TargetCost(T1) = %d, want 800 regardless of T2", got)
			}
		case "T2":
			if got := run.TargetCost(target); got != 9000 {
				t.Fatalf("TargetCost(T2) = %d, want 9000", got)
			}
		}
	}
}

func TestSharedFileCountsInEachTarget(t *testing.T) {
	units := twoUnitFixture()
	membership := project.NewMembership([]project.Target{
		{Name: "T1", Sources: []string{"a.cpp"}},
		{Name: "T2", Sources: []string{"a.cpp", "b.cpp"}},
	})
	run, err := NewRun(units, membership, diag.NewBag(10))
	if err != nil {
		t.Fatalf("NewRun: %v", err)
	}
	targets := membership.Targets()
	if got := run.TargetCost(targets[0]); got != 500 {
		t.Fatalf("TargetCost(T1) = %d, want 500", got)
	}
	if got := run.TargetCost(targets[1]); got != 800 {
		t.Fatalf("TargetCost(T2) = %d, want 800", got)
	}
}

func TestNewRunRequiresInput(t *testing.T) {
	membership := project.NewMembership([]project.Target{{Name: "T1", Sources: []string{"a.cpp"}}})
	if _, err := NewRun(nil, membership, diag.NewBag(10)); err != ErrNoInput {
		t.Fatalf("expected ErrNoInput, got %v", err)
	}
}

func TestIncludeRankingTotalOrder(t *testing.T) {
	set := make(includeSet)
	set.add("b.h", 100)
	set.add("a.h", 100)
	set.add("c.h", 100)
	set.add("c.h", 0) // second inclusion, same total
	ranked := RankIncludes(set)
	// c.h wins its tie on inclusion count, then a.h before b.h lexically.
	want := []string{"c.h", "a.h", "b.h"}
	for i, w := range want {
		if ranked[i].Path != w {
			t.Fatalf("rank %d = %s, want %s (full: %+v)", i, ranked[i].Path, w, ranked)
		}
	}
}

func TestIncludeKeyCaseFolded(t *testing.T) {
	set := make(includeSet)
	set.add("/Inc/Foo.h", 100)
	set.add("/inc/foo.h", 50)
	ranked := RankIncludes(set)
	if len(ranked) != 1 {
		t.Fatalf("case variants must accumulate together: %+v", ranked)
	}
	if ranked[0].Path != "/Inc/Foo.h" || ranked[0].TotalSelfTime != 150 || ranked[0].InclusionCount != 2 {
		t.Fatalf("unexpected accumulation: %+v", ranked[0])
	}
}

func TestTopFiles(t *testing.T) {
	units := twoUnitFixture()
	run, err := NewRun(units, nil, diag.NewBag(10))
	if err != nil {
		t.Fatalf("NewRun: %v", err)
	}
	top := run.TopFiles(1)
	if len(top) != 1 || top[0].SourcePath != "a.cpp" {
		t.Fatalf("TopFiles(1) = %v, want a.cpp", top)
	}
}

