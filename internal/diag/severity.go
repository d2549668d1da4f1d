package diag

// Severity defines how much a diagnostic should worry the caller.
// Nothing above SevError exists: an unrecoverable problem is a returned
// error, not a diagnostic.
type Severity uint8

const (
	// SevInfo is for informational diagnostics.
	SevInfo Severity = iota
	// SevWarning is for findings that degrade results without invalidating
	// them.
	SevWarning
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "INFO"
	case SevWarning:
		return "WARNING"
	case SevError:
		return "ERROR"
	}
	return "UNKNOWN"
}
