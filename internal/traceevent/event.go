package traceevent

import "strings"

// Phase is the single-letter event type from the Trace Event Format.
type Phase string

const (
	// PhaseComplete is a span with an explicit duration.
	PhaseComplete Phase = "X"
	// PhaseBegin marks the start of a begin/end span pair.
	PhaseBegin Phase = "B"
	// PhaseEnd closes the innermost open begin on the same thread.
	PhaseEnd Phase = "E"
	// PhaseInstant is a zero-duration marker.
	PhaseInstant Phase = "i"
	// PhaseMetadata carries viewer hints (process/thread names).
	PhaseMetadata Phase = "M"
)

// Well-known clang -ftime-trace event names.
const (
	NameExecuteCompiler = "ExecuteCompiler"
	NameSource          = "Source"
	NameCodeGenFunction = "CodeGen Function"
	totalPrefix         = "Total "
)

// argument keys used by clang inside "args".
const (
	argDetail    = "detail"
	argTruncated = "truncated"
)

// Event is one instrumented span from a compilation trace.
// Times are in microseconds, matching clang's -ftime-trace output.
type Event struct {
	Name     string         `json:"name,omitempty"`
	Phase    Phase          `json:"ph,omitempty"`
	Category string         `json:"cat,omitempty"`
	PID      int64          `json:"pid"`
	TID      int64          `json:"tid"`
	Start    int64          `json:"ts"`
	Dur      int64          `json:"dur,omitempty"`
	Args     map[string]any `json:"args,omitempty"`
}

// End returns the event's end timestamp.
func (e *Event) End() int64 {
	return e.Start + e.Dur
}

// Detail returns args.detail as a string, or "" when absent.
// For Source events this is the resolved path of the included header; for
// CodeGen Function events it is the mangled function name.
func (e *Event) Detail() string {
	if e.Args == nil {
		return ""
	}
	s, _ := e.Args[argDetail].(string)
	return s
}

// Truncated reports whether this span was closed artificially because its
// end event was missing from the trace.
func (e *Event) Truncated() bool {
	if e.Args == nil {
		return false
	}
	t, _ := e.Args[argTruncated].(bool)
	return t
}

func (e *Event) markTruncated() {
	if e.Args == nil {
		e.Args = make(map[string]any, 1)
	}
	e.Args[argTruncated] = true
}

// SetDetail stores args.detail, allocating Args on demand.
func (e *Event) SetDetail(detail string) {
	if e.Args == nil {
		e.Args = make(map[string]any, 1)
	}
	e.Args[argDetail] = detail
}

// IsMetadata reports whether the event is a viewer metadata record. These
// carry no timing and are excluded from all costing, but survive
// serialization round-trips.
func (e *Event) IsMetadata() bool {
	return e.Phase == PhaseMetadata
}

// IsExecuteCompiler reports whether this is the whole-invocation root span.
func (e *Event) IsExecuteCompiler() bool {
	return e.Name == NameExecuteCompiler
}

// IsSource reports whether this span is header parsing; its detail names
// the included file.
func (e *Event) IsSource() bool {
	return e.Name == NameSource
}

// IsCodeGenFunction reports whether this span is per-function code
// generation; its detail names the function.
func (e *Event) IsCodeGenFunction() bool {
	return e.Name == NameCodeGenFunction
}

// IsTotal reports whether this is one of clang's "Total X" aggregate
// events. Those are per-invocation CPU rollups anchored at timestamp zero;
// they are not real spans and never participate in nesting.
func (e *Event) IsTotal() bool {
	return strings.HasPrefix(e.Name, totalPrefix)
}

// TotalName returns X for a "Total X" event, or "" if this is not one.
func (e *Event) TotalName() string {
	if !e.IsTotal() {
		return ""
	}
	return e.Name[len(totalPrefix):]
}
