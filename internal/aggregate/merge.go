package aggregate

import (
	"buildprof/internal/traceevent"
)

// Merge concatenates unit traces into one trace for project-wide
// visualization. Each input gets a disjoint virtual process id (1..N in
// input order) with its thread ids renumbered within it, and its events
// are shifted forward by the accumulated extent of all prior inputs, so
// no two inputs' real timestamps collide. Relative nesting and durations
// inside each input are preserved exactly.
//
// Merge is a pure function of the input sequence: callers wanting
// reproducible output must fix the input order (lexical by source path is
// the convention upstream of here).
func Merge(units []*traceevent.UnitTrace) *traceevent.UnitTrace {
	merged := &traceevent.UnitTrace{SourcePath: "project"}
	var offset int64

	for i, unit := range units {
		pid := int64(i + 1)
		tids := make(map[traceevent.ThreadID]int64)

		for j := range unit.Events {
			ev := unit.Events[j] // copy; inputs stay untouched
			if ev.IsMetadata() {
				continue
			}
			orig := traceevent.ThreadID{PID: ev.PID, TID: ev.TID}
			tid, ok := tids[orig]
			if !ok {
				tid = int64(len(tids) + 1)
				tids[orig] = tid
			}
			ev.PID = pid
			ev.TID = tid
			ev.Start += offset
			// Tag the per-file root with its source so the viewer can
			// tell the concatenated files apart.
			if ev.IsExecuteCompiler() {
				ev.Name = ev.Name + " - " + unit.SourcePath
			}
			merged.Events = append(merged.Events, ev)
		}

		offset += unit.Extent()
	}
	return merged
}
