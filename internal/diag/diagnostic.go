package diag

import "fmt"

// Diagnostic is one recoverable problem found during a run.
// Path is the trace or record the problem was found in (may be empty for
// run-level problems); Subject narrows it further (an event name, a header
// path, a tool id, a run id).
type Diagnostic struct {
	Severity Severity
	Code     Code
	Path     string
	Subject  string
	Message  string
}

func (d Diagnostic) String() string {
	loc := d.Path
	if d.Subject != "" {
		if loc != "" {
			loc += ": "
		}
		loc += d.Subject
	}
	if loc == "" {
		return fmt.Sprintf("%s [%s] %s", d.Severity, d.Code, d.Message)
	}
	return fmt.Sprintf("%s [%s] %s: %s", d.Severity, d.Code, loc, d.Message)
}
