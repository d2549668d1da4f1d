package traceevent

import (
	"encoding/json"
	"fmt"

	"fortio.org/safecast"

	"buildprof/internal/diag"
)

// Top-level keys of a -ftime-trace document.
const (
	keyTraceEvents     = "traceEvents"
	keyBeginningOfTime = "beginningOfTime"
)

// wireEvent is the decoding shape of one trace event. Numeric fields go
// through json.Number because some producers emit them as strings of
// digits or as floats.
type wireEvent struct {
	Name     string         `json:"name"`
	Phase    Phase          `json:"ph"`
	Category string         `json:"cat"`
	PID      json.Number    `json:"pid"`
	TID      json.Number    `json:"tid"`
	Start    json.Number    `json:"ts"`
	Dur      json.Number    `json:"dur"`
	Args     map[string]any `json:"args"`
}

// Parse decodes one raw -ftime-trace payload into a UnitTrace.
//
// Structural failures (not JSON, no traceEvents key) return a *TraceError.
// Recoverable problems degrade instead: a begin with no matching end is
// closed at the last observed timestamp and flagged truncated, an end with
// no begin is dropped, and every such repair is recorded in bag. Parse
// performs no I/O.
func Parse(raw []byte, sourcePath string, bag *diag.Bag) (*UnitTrace, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, &TraceError{Kind: TraceErrMalformed, Path: sourcePath, Err: err}
	}

	eventsRaw, ok := doc[keyTraceEvents]
	if !ok {
		return nil, &TraceError{
			Kind: TraceErrMalformed,
			Path: sourcePath,
			Err:  fmt.Errorf("missing %q key", keyTraceEvents),
		}
	}
	for key := range doc {
		if key != keyTraceEvents && key != keyBeginningOfTime {
			bag.Addf(diag.SevWarning, diag.CodeMalformedTrace, sourcePath, key,
				"unknown top-level key ignored")
		}
	}

	var wire []wireEvent
	if err := json.Unmarshal(eventsRaw, &wire); err != nil {
		return nil, &TraceError{Kind: TraceErrMalformed, Path: sourcePath, Err: err}
	}
	if len(wire) == 0 {
		return nil, &TraceError{Kind: TraceErrEmpty, Path: sourcePath}
	}

	unit := &UnitTrace{
		SourcePath: sourcePath,
		Events:     make([]Event, 0, len(wire)),
	}

	// Open begin events per thread, as indices into unit.Events. Begin/end
	// pairs must nest per thread, so a stack is the whole reconstruction.
	open := make(map[ThreadID][]int)
	var lastTS int64

	for i := range wire {
		w := &wire[i]
		ev, err := w.toEvent()
		if err != nil {
			bag.Addf(diag.SevWarning, diag.CodeMalformedTrace, sourcePath, w.Name,
				"event %d dropped: %v", i, err)
			continue
		}
		if !ev.IsMetadata() {
			if ev.Start > lastTS {
				lastTS = ev.Start
			}
			if end := ev.End(); end > lastTS {
				lastTS = end
			}
		}

		switch ev.Phase {
		case PhaseBegin:
			unit.Events = append(unit.Events, ev)
			tid := ThreadID{PID: ev.PID, TID: ev.TID}
			open[tid] = append(open[tid], len(unit.Events)-1)
		case PhaseEnd:
			tid := ThreadID{PID: ev.PID, TID: ev.TID}
			stack := open[tid]
			if len(stack) == 0 {
				bag.Addf(diag.SevWarning, diag.CodeMalformedTrace, sourcePath, ev.Name,
					"end event %d has no open begin on pid=%d tid=%d", i, ev.PID, ev.TID)
				continue
			}
			idx := stack[len(stack)-1]
			open[tid] = stack[:len(stack)-1]
			begun := &unit.Events[idx]
			begun.Phase = PhaseComplete
			begun.Dur = ev.Start - begun.Start
			if begun.Dur < 0 {
				bag.Addf(diag.SevWarning, diag.CodeMalformedTrace, sourcePath, begun.Name,
					"begin/end pair runs backwards, clamped to zero")
				begun.Dur = 0
			}
		default:
			unit.Events = append(unit.Events, ev)
		}
	}

	// Close anything still open at the last timestamp we saw, innermost
	// first, so partial data still contributes to totals.
	for tid, stack := range open {
		for i := len(stack) - 1; i >= 0; i-- {
			ev := &unit.Events[stack[i]]
			ev.Phase = PhaseComplete
			ev.Dur = lastTS - ev.Start
			if ev.Dur < 0 {
				ev.Dur = 0
			}
			ev.markTruncated()
			bag.Addf(diag.SevWarning, diag.CodeIncompleteSpan, sourcePath, ev.Name,
				"begin at %dus on pid=%d tid=%d has no end, closed at %dus",
				ev.Start, tid.PID, tid.TID, lastTS)
		}
	}

	return unit, nil
}

func (w *wireEvent) toEvent() (Event, error) {
	pid, err := numToInt64(w.PID)
	if err != nil {
		return Event{}, fmt.Errorf("pid: %w", err)
	}
	tid, err := numToInt64(w.TID)
	if err != nil {
		return Event{}, fmt.Errorf("tid: %w", err)
	}
	ts, err := numToInt64(w.Start)
	if err != nil {
		return Event{}, fmt.Errorf("ts: %w", err)
	}
	dur, err := numToInt64(w.Dur)
	if err != nil {
		return Event{}, fmt.Errorf("dur: %w", err)
	}
	if ts < 0 {
		return Event{}, fmt.Errorf("negative timestamp %d", ts)
	}
	if dur < 0 {
		return Event{}, fmt.Errorf("negative duration %d", dur)
	}
	phase := w.Phase
	if phase == "" {
		phase = PhaseComplete
	}
	return Event{
		Name:     w.Name,
		Phase:    phase,
		Category: w.Category,
		PID:      pid,
		TID:      tid,
		Start:    ts,
		Dur:      dur,
		Args:     w.Args,
	}, nil
}

func numToInt64(n json.Number) (int64, error) {
	if n == "" {
		return 0, nil
	}
	if v, err := n.Int64(); err == nil {
		return v, nil
	}
	f, err := n.Float64()
	if err != nil {
		return 0, err
	}
	return safecast.Convert[int64](f)
}
