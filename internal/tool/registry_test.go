package tool

import (
	"context"
	"errors"
	"testing"

	"buildprof/internal/aggregate"
	"buildprof/internal/diag"
	"buildprof/internal/traceevent"
)

type fakeTool struct {
	id      string
	enabled bool
	produce func() (Summary, error)
}

func (f *fakeTool) ID() string           { return f.id }
func (f *fakeTool) Description() string  { return "fake" }
func (f *fakeTool) DefaultEnabled() bool { return f.enabled }
func (f *fakeTool) Produce(context.Context, *aggregate.Run, *diag.Bag) (Summary, error) {
	return f.produce()
}

func testRun(t *testing.T) *aggregate.Run {
	t.Helper()
	unit := &traceevent.UnitTrace{
		SourcePath: "a.cpp",
		Events: []traceevent.Event{{
			Name:  traceevent.NameExecuteCompiler,
			Phase: traceevent.PhaseComplete,
			PID:   1, TID: 1, Dur: 100,
		}},
	}
	run, err := aggregate.NewRun([]*traceevent.UnitTrace{unit}, nil, diag.NewBag(10))
	if err != nil {
		t.Fatalf("NewRun: %v", err)
	}
	return run
}

func TestRegisterDuplicate(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(&fakeTool{id: "x"}); err != nil {
		t.Fatalf("first register: %v", err)
	}
	err := r.Register(&fakeTool{id: "x"})
	var dup *DuplicateToolIDError
	if !errors.As(err, &dup) || dup.ID != "x" {
		t.Fatalf("expected DuplicateToolIDError, got %v", err)
	}
}

func TestRunAllIsolatesFailures(t *testing.T) {
	r := NewRegistry()
	ok1 := &fakeTool{id: "ok1", enabled: true, produce: func() (Summary, error) {
		s := NewSummary("ok1", "")
		s.Metrics["v"] = 1
		return s, nil
	}}
	failing := &fakeTool{id: "boom", enabled: true, produce: func() (Summary, error) {
		return Summary{}, errors.New("exploded")
	}}
	panicking := &fakeTool{id: "panic", enabled: true, produce: func() (Summary, error) {
		panic("unexpected")
	}}
	ok2 := &fakeTool{id: "ok2", enabled: true, produce: func() (Summary, error) {
		return NewSummary("ok2", ""), nil
	}}
	for _, tl := range []Tool{ok1, failing, panicking, ok2} {
		if err := r.Register(tl); err != nil {
			t.Fatalf("register: %v", err)
		}
	}

	bag := diag.NewBag(10)
	got := r.RunAll(context.Background(), r.Enabled(nil), testRun(t), "r1", bag)
	if _, ok := got["ok1"]; !ok {
		t.Fatalf("ok1 summary missing")
	}
	if _, ok := got["ok2"]; !ok {
		t.Fatalf("a failing tool must not block later tools")
	}
	if _, ok := got["boom"]; ok {
		t.Fatalf("failed tool must not produce a summary")
	}
	if bag.CountByCode(diag.CodeToolFailed) != 2 {
		t.Fatalf("both failures must be collected, got %v", bag.Items())
	}
	if got["ok1"].RunID != "r1" {
		t.Fatalf("registry must stamp the run id")
	}
}

func TestEnabledOverrides(t *testing.T) {
	r := NewRegistry()
	r.Register(&fakeTool{id: "on-by-default", enabled: true})
	r.Register(&fakeTool{id: "off-by-default", enabled: false})
	got := r.Enabled(map[string]bool{"off-by-default": true, "unknown": true})
	if !got["on-by-default"] || !got["off-by-default"] {
		t.Fatalf("overrides not applied: %v", got)
	}
	if _, ok := got["unknown"]; ok {
		t.Fatalf("unknown tool ids must be ignored")
	}
}

func TestRunAllSkipsDisabled(t *testing.T) {
	r := NewRegistry()
	called := false
	r.Register(&fakeTool{id: "off", enabled: false, produce: func() (Summary, error) {
		called = true
		return Summary{}, nil
	}})
	r.RunAll(context.Background(), r.Enabled(nil), testRun(t), "r1", diag.NewBag(10))
	if called {
		t.Fatalf("disabled tool must not run")
	}
}
