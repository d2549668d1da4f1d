package traceevent

// UnitTrace holds all events recorded while compiling one source file.
// It is produced by Parse and treated as read-only afterward.
type UnitTrace struct {
	// SourcePath identifies the compiled translation unit. This is the
	// caller-supplied identity, not the path of the raw trace file.
	SourcePath string
	Events     []Event
}

// TotalTime returns the compile cost of this unit: the duration of the
// ExecuteCompiler root span when present, otherwise the duration of the
// longest real span.
func (u *UnitTrace) TotalTime() int64 {
	var longest int64
	for i := range u.Events {
		ev := &u.Events[i]
		if ev.IsMetadata() || ev.IsTotal() {
			continue
		}
		if ev.IsExecuteCompiler() {
			return ev.Dur
		}
		if ev.Dur > longest {
			longest = ev.Dur
		}
	}
	return longest
}

// Extent returns the last timestamp covered by any real span, used as the
// time-shift quantum when units are concatenated into one merged trace.
func (u *UnitTrace) Extent() int64 {
	var max int64
	for i := range u.Events {
		ev := &u.Events[i]
		if ev.IsMetadata() || ev.IsTotal() {
			continue
		}
		if end := ev.End(); end > max {
			max = end
		}
	}
	return max
}

// Threads returns the distinct (pid, tid) pairs that carry real spans, in
// first-appearance order.
func (u *UnitTrace) Threads() []ThreadID {
	var out []ThreadID
	seen := make(map[ThreadID]bool)
	for i := range u.Events {
		ev := &u.Events[i]
		if ev.IsMetadata() || ev.IsTotal() {
			continue
		}
		id := ThreadID{PID: ev.PID, TID: ev.TID}
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// ThreadID identifies one event-carrying thread within a trace.
type ThreadID struct {
	PID int64
	TID int64
}
