package tool

import "fmt"

// DuplicateToolIDError reports a second registration under an already
// registered tool id.
type DuplicateToolIDError struct {
	ID string
}

func (e *DuplicateToolIDError) Error() string {
	return fmt.Sprintf("tool id %q already registered", e.ID)
}

// ToolExecutionError wraps a single tool's failure. It is collected per
// tool and never aborts the other tools in the run.
type ToolExecutionError struct {
	ID  string
	Err error
}

func (e *ToolExecutionError) Error() string {
	return fmt.Sprintf("tool %q failed: %v", e.ID, e.Err)
}

func (e *ToolExecutionError) Unwrap() error {
	return e.Err
}
