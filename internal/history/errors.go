package history

import "fmt"

// DuplicateRunIDError reports an attempt to save a second record under an
// existing run id. Callers are expected to mint fresh run identifiers.
type DuplicateRunIDError struct {
	RunID string
}

func (e *DuplicateRunIDError) Error() string {
	return fmt.Sprintf("history record for run %q already exists", e.RunID)
}

// UnsupportedVersionError reports a stored record whose schema this build
// does not understand. The record is treated as absent.
type UnsupportedVersionError struct {
	Path   string
	Schema uint16
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("history record %s has unsupported schema version %d (supported: %d)",
		e.Path, e.Schema, SchemaVersion)
}

// CorruptRecordError reports a stored record that could not be decoded.
// It never aborts loading the other records.
type CorruptRecordError struct {
	Path string
	Err  error
}

func (e *CorruptRecordError) Error() string {
	return fmt.Sprintf("history record %s is unreadable: %v", e.Path, e.Err)
}

func (e *CorruptRecordError) Unwrap() error {
	return e.Err
}
