package history

import (
	"time"

	"buildprof/internal/tool"
)

// SchemaVersion is the current record format. Increment when the Record
// layout changes; the store refuses to load versions it does not know
// rather than guessing.
const SchemaVersion uint16 = 1

// Record is the persisted outcome of one analysis run: every tool's
// summary keyed by tool id, under the run's identity. Records are
// immutable once saved.
type Record struct {
	Schema    uint16
	RunID     string
	Timestamp time.Time
	// Tag is an optional baseline label ("release-1.4") selectors can
	// target instead of plain recency.
	Tag       string
	Summaries map[string]tool.Summary
}

// NewRecord stamps a record with the current schema version.
func NewRecord(runID string, timestamp time.Time, tag string, summaries map[string]tool.Summary) Record {
	return Record{
		Schema:    SchemaVersion,
		RunID:     runID,
		Timestamp: timestamp,
		Tag:       tag,
		Summaries: summaries,
	}
}
