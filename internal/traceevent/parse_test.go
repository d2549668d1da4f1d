package traceevent

import (
	"testing"

	"buildprof/internal/diag"
)

func TestParseComplete(t *testing.T) {
	raw := []byte(`{
		"beginningOfTime": 1700000000,
		"traceEvents": [
			{"ph":"X","name":"ExecuteCompiler","pid":1,"tid":2,"ts":0,"dur":500},
			{"ph":"X","name":"Source","pid":1,"tid":2,"ts":10,"dur":200,"args":{"detail":"/usr/include/foo.h"}},
			{"ph":"M","name":"process_name","pid":1,"tid":0,"ts":0,"args":{"name":"clang"}}
		]
	}`)
	bag := diag.NewBag(10)
	unit, err := Parse(raw, "a.cpp", bag)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	if len(unit.Events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(unit.Events))
	}
	if got := unit.TotalTime(); got != 500 {
		t.Fatalf("TotalTime = %d, want 500", got)
	}
	if got := unit.Events[1].Detail(); got != "/usr/include/foo.h" {
		t.Fatalf("Detail = %q", got)
	}
}

func TestParseBeginEndPairs(t *testing.T) {
	raw := []byte(`{"traceEvents":[
		{"ph":"B","name":"Frontend","pid":1,"tid":1,"ts":100},
		{"ph":"B","name":"Source","pid":1,"tid":1,"ts":150},
		{"ph":"E","name":"Source","pid":1,"tid":1,"ts":250},
		{"ph":"E","name":"Frontend","pid":1,"tid":1,"ts":400}
	]}`)
	bag := diag.NewBag(10)
	unit, err := Parse(raw, "b.cpp", bag)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(unit.Events) != 2 {
		t.Fatalf("expected 2 paired events, got %d", len(unit.Events))
	}
	frontend, source := unit.Events[0], unit.Events[1]
	if frontend.Name != "Frontend" || frontend.Dur != 300 || frontend.Phase != PhaseComplete {
		t.Fatalf("frontend not paired correctly: %+v", frontend)
	}
	if source.Dur != 100 {
		t.Fatalf("source dur = %d, want 100", source.Dur)
	}
}

func TestParseTruncatesUnterminatedBegin(t *testing.T) {
	raw := []byte(`{"traceEvents":[
		{"ph":"B","name":"Frontend","pid":1,"tid":1,"ts":100},
		{"ph":"X","name":"Backend","pid":1,"tid":1,"ts":200,"dur":300}
	]}`)
	bag := diag.NewBag(10)
	unit, err := Parse(raw, "c.cpp", bag)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	var frontend *Event
	for i := range unit.Events {
		if unit.Events[i].Name == "Frontend" {
			frontend = &unit.Events[i]
		}
	}
	if frontend == nil {
		t.Fatalf("frontend span discarded, should be kept truncated")
	}
	if !frontend.Truncated() {
		t.Fatalf("frontend should be flagged truncated")
	}
	if frontend.Dur != 400 {
		t.Fatalf("frontend closed at wrong time: dur=%d, want 400 (last ts 500 - start 100)", frontend.Dur)
	}
	if bag.CountByCode(diag.CodeIncompleteSpan) != 1 {
		t.Fatalf("expected one incomplete-span diagnostic, got %v", bag.Items())
	}
}

func TestParseDropsStrayEnd(t *testing.T) {
	raw := []byte(`{"traceEvents":[
		{"ph":"E","name":"Frontend","pid":1,"tid":1,"ts":100},
		{"ph":"X","name":"Backend","pid":1,"tid":1,"ts":0,"dur":50}
	]}`)
	bag := diag.NewBag(10)
	unit, err := Parse(raw, "d.cpp", bag)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(unit.Events) != 1 || unit.Events[0].Name != "Backend" {
		t.Fatalf("stray end should be dropped, kept trace intact: %+v", unit.Events)
	}
	if bag.CountByCode(diag.CodeMalformedTrace) != 1 {
		t.Fatalf("stray end must be diagnosed")
	}
}

func TestParseMalformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", `{{{`},
		{"no traceEvents", `{"beginningOfTime": 5}`},
		{"events not a list", `{"traceEvents": {"a": 1}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bag := diag.NewBag(10)
			_, err := Parse([]byte(tt.raw), "x.cpp", bag)
			terr, ok := err.(*TraceError)
			if !ok {
				t.Fatalf("expected *TraceError, got %v", err)
			}
			if terr.Kind != TraceErrMalformed {
				t.Fatalf("expected malformed kind, got %d", terr.Kind)
			}
		})
	}
}

func TestParseDropsNegativeDuration(t *testing.T) {
	raw := []byte(`{"traceEvents":[
		{"ph":"X","name":"Bad","pid":1,"tid":1,"ts":10,"dur":-5},
		{"ph":"X","name":"Good","pid":1,"tid":1,"ts":0,"dur":5}
	]}`)
	bag := diag.NewBag(10)
	unit, err := Parse(raw, "e.cpp", bag)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(unit.Events) != 1 || unit.Events[0].Name != "Good" {
		t.Fatalf("negative-duration event must be dropped: %+v", unit.Events)
	}
	if bag.CountByCode(diag.CodeMalformedTrace) != 1 {
		t.Fatalf("dropped event must be diagnosed")
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	raw := []byte(`{"traceEvents":[
		{"ph":"X","name":"ExecuteCompiler","pid":3,"tid":7,"ts":0,"dur":500},
		{"ph":"X","name":"Source","pid":3,"tid":7,"ts":10,"dur":200,"args":{"detail":"foo.h"}}
	]}`)
	bag := diag.NewBag(10)
	unit, err := Parse(raw, "a.cpp", bag)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	out, err := Marshal(unit)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	again, err := Parse(out, "a.cpp", bag)
	if err != nil {
		t.Fatalf("re-Parse: %v", err)
	}
	if len(again.Events) != len(unit.Events) {
		t.Fatalf("round trip changed event count: %d vs %d", len(again.Events), len(unit.Events))
	}
	for i := range unit.Events {
		a, b := unit.Events[i], again.Events[i]
		if a.Name != b.Name || a.Start != b.Start || a.Dur != b.Dur || a.PID != b.PID || a.TID != b.TID {
			t.Fatalf("event %d changed: %+v vs %+v", i, a, b)
		}
	}
	if again.Events[1].Detail() != "foo.h" {
		t.Fatalf("args lost in round trip")
	}
}
