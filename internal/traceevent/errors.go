package traceevent

import "fmt"

// TraceErrorKind enumerates reasons a trace payload is unusable.
type TraceErrorKind uint8

const (
	// TraceErrMalformed indicates the payload is not a valid trace document.
	TraceErrMalformed TraceErrorKind = iota + 1
	// TraceErrEmpty indicates a structurally valid document with no events.
	TraceErrEmpty
)

// TraceError is a fatal per-payload ingestion error. Recoverable problems
// (truncated spans, dropped events) go to the diagnostics bag instead.
type TraceError struct {
	Kind TraceErrorKind
	Path string
	Err  error
}

func (e *TraceError) Error() string {
	if e == nil {
		return "<nil>"
	}
	switch e.Kind {
	case TraceErrMalformed:
		if e.Err != nil {
			return fmt.Sprintf("malformed trace %s: %v", e.Path, e.Err)
		}
		return fmt.Sprintf("malformed trace %s", e.Path)
	case TraceErrEmpty:
		return fmt.Sprintf("trace %s contains no events", e.Path)
	default:
		return fmt.Sprintf("trace error kind=%d path=%s", e.Kind, e.Path)
	}
}

func (e *TraceError) Unwrap() error {
	return e.Err
}
