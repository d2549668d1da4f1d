package aggregate

import (
	"reflect"
	"testing"

	"buildprof/internal/diag"
	"buildprof/internal/traceevent"
)

func span(name string, pid, tid, ts, dur int64) traceevent.Event {
	return traceevent.Event{
		Name:  name,
		Phase: traceevent.PhaseComplete,
		PID:   pid,
		TID:   tid,
		Start: ts,
		Dur:   dur,
	}
}

func TestBuildTreesNesting(t *testing.T) {
	unit := &traceevent.UnitTrace{
		SourcePath: "a.cpp",
		Events: []traceevent.Event{
			span("ExecuteCompiler", 1, 1, 0, 1000),
			span("Frontend", 1, 1, 0, 600),
			span("Source", 1, 1, 100, 200),
			span("Backend", 1, 1, 600, 400),
			span("OtherThread", 1, 2, 0, 50),
		},
	}
	bag := diag.NewBag(10)
	trees := BuildTrees(unit, bag)
	if len(trees) != 2 {
		t.Fatalf("expected 2 trees (one per thread), got %d", len(trees))
	}
	main := trees[0]
	if len(main.Roots) != 1 {
		t.Fatalf("expected single root, got %d", len(main.Roots))
	}
	root := main.Nodes[main.Roots[0]]
	if main.EventOf(main.Roots[0]).Name != "ExecuteCompiler" {
		t.Fatalf("wrong root: %s", main.EventOf(main.Roots[0]).Name)
	}
	if len(root.Children) != 2 {
		t.Fatalf("root should have Frontend and Backend, got %d children", len(root.Children))
	}
	frontend := main.Nodes[root.Children[0]]
	if main.EventOf(root.Children[0]).Name != "Frontend" {
		t.Fatalf("first child should be Frontend")
	}
	if len(frontend.Children) != 1 || main.EventOf(frontend.Children[0]).Name != "Source" {
		t.Fatalf("Source should nest under Frontend")
	}
	// Self times: root 1000-600-400=0, frontend 600-200=400, source 200.
	if root.SelfTime != 0 || frontend.SelfTime != 400 {
		t.Fatalf("self times wrong: root=%d frontend=%d", root.SelfTime, frontend.SelfTime)
	}
	if bag.Len() != 0 {
		t.Fatalf("clean trace produced diagnostics: %v", bag.Items())
	}
}

func TestBuildTreesTieBreakLongerFirst(t *testing.T) {
	// Same start: the longer span must become the parent.
	unit := &traceevent.UnitTrace{
		SourcePath: "a.cpp",
		Events: []traceevent.Event{
			span("Inner", 1, 1, 0, 100),
			span("Outer", 1, 1, 0, 500),
		},
	}
	bag := diag.NewBag(10)
	trees := BuildTrees(unit, bag)
	tree := trees[0]
	if len(tree.Roots) != 1 || tree.EventOf(tree.Roots[0]).Name != "Outer" {
		t.Fatalf("longer span must rank first at equal start")
	}
	children := tree.Nodes[tree.Roots[0]].Children
	if len(children) != 1 || tree.EventOf(children[0]).Name != "Inner" {
		t.Fatalf("shorter span must nest under the longer one")
	}
}

func TestBuildTreesDeterministic(t *testing.T) {
	unit := &traceevent.UnitTrace{
		SourcePath: "a.cpp",
		Events: []traceevent.Event{
			span("Root", 1, 1, 0, 1000),
			span("A", 1, 1, 10, 100),
			span("B", 1, 1, 10, 100),
			span("C", 1, 1, 200, 300),
		},
	}
	first := BuildTrees(unit, diag.NewBag(10))
	second := BuildTrees(unit, diag.NewBag(10))
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("reconstruction not deterministic")
	}
}

func TestBuildTreesOverlapWithoutContainment(t *testing.T) {
	unit := &traceevent.UnitTrace{
		SourcePath: "a.cpp",
		Events: []traceevent.Event{
			span("Parent", 1, 1, 0, 100),
			span("Straddler", 1, 1, 50, 100), // ends at 150, past parent
		},
	}
	bag := diag.NewBag(10)
	trees := BuildTrees(unit, bag)
	tree := trees[0]
	parent := tree.Nodes[tree.Roots[0]]
	if !parent.Overlap {
		t.Fatalf("parent must be flagged overlap-without-containment")
	}
	if len(parent.Children) != 1 {
		t.Fatalf("straddler must still be attached best-effort")
	}
	if bag.CountByCode(diag.CodeOverlapWithoutContainment) == 0 {
		t.Fatalf("overlap must be reported, got %v", bag.Items())
	}
}

func TestBuildTreesSkipsTotalsAndMetadata(t *testing.T) {
	unit := &traceevent.UnitTrace{
		SourcePath: "a.cpp",
		Events: []traceevent.Event{
			span("ExecuteCompiler", 1, 1, 0, 1000),
			span("Total Frontend", 1, 1, 0, 900),
			{Name: "process_name", Phase: traceevent.PhaseMetadata, PID: 1, TID: 1},
		},
	}
	trees := BuildTrees(unit, diag.NewBag(10))
	if len(trees) != 1 || len(trees[0].Nodes) != 1 {
		t.Fatalf("totals and metadata must not become call nodes: %+v", trees)
	}
}
