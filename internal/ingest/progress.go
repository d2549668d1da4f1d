package ingest

import "time"

// Status captures where one trace file is in the ingestion pipeline.
type Status string

const (
	// StatusQueued indicates the payload is waiting for a worker.
	StatusQueued Status = "queued"
	// StatusReading indicates a worker is decoding the payload.
	StatusReading Status = "reading"
	// StatusDone indicates the unit trace was produced.
	StatusDone Status = "done"
	// StatusFailed indicates the payload was rejected.
	StatusFailed Status = "failed"
)

// Event reports ingestion progress for one source file (or the overall
// batch when Source is empty).
type Event struct {
	Source  string
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events. Implementations must be safe for
// concurrent calls; workers report from separate goroutines.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

// nopSink swallows events when the caller supplies no sink.
type nopSink struct{}

func (nopSink) OnEvent(Event) {}
