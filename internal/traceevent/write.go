package traceevent

import "encoding/json"

// document is the serialized shape, matching what clang emits so merged
// traces round-trip through the same viewers as single-file traces.
type document struct {
	TraceEvents []Event `json:"traceEvents"`
}

// Marshal serializes a UnitTrace back into trace-event JSON.
func Marshal(u *UnitTrace) ([]byte, error) {
	return json.MarshalIndent(document{TraceEvents: u.Events}, "", " ")
}
