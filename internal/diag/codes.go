package diag

// Code identifies a class of analysis diagnostic.
type Code uint16

const (
	// CodeMalformedTrace indicates a trace payload that could not be decoded
	// at all, or an event inside it that had to be dropped.
	CodeMalformedTrace Code = iota + 1
	// CodeIncompleteSpan indicates a begin event with no matching end; the
	// span was closed at the last observed timestamp and flagged truncated.
	CodeIncompleteSpan
	// CodeOverlapWithoutContainment indicates sibling spans that overlap in
	// time without nesting; aggregation proceeded best-effort.
	CodeOverlapWithoutContainment
	// CodeToolFailed indicates a single analysis tool failed or panicked.
	CodeToolFailed
	// CodeHistoryRecordCorrupt indicates a stored run record that could not
	// be decoded; the record is treated as absent.
	CodeHistoryRecordCorrupt
	// CodeUnsupportedHistoryVersion indicates a stored record with a schema
	// version this build does not understand.
	CodeUnsupportedHistoryVersion
	CodeDuplicateRunID
	CodeNoIncludes
	CodeNoTargets
)

func (c Code) String() string {
	switch c {
	case CodeMalformedTrace:
		return "malformed-trace"
	case CodeIncompleteSpan:
		return "incomplete-span"
	case CodeOverlapWithoutContainment:
		return "overlap-without-containment"
	case CodeToolFailed:
		return "tool-failed"
	case CodeHistoryRecordCorrupt:
		return "history-record-corrupt"
	case CodeUnsupportedHistoryVersion:
		return "unsupported-history-version"
	case CodeDuplicateRunID:
		return "duplicate-run-id"
	case CodeNoIncludes:
		return "no-includes"
	case CodeNoTargets:
		return "no-targets"
	}
	return "unknown"
}
