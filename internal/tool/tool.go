package tool

import (
	"context"

	"buildprof/internal/aggregate"
	"buildprof/internal/diag"
)

// Metrics is a metric-name-to-value mapping. Values are float64 in the
// unit the owning tool declares (milliseconds unless stated otherwise).
type Metrics map[string]float64

// Summary is one tool's output for one run: the unit of historical
// comparison. Immutable once produced.
type Summary struct {
	ToolID string
	RunID  string
	// Metrics holds the tool's top-level numbers.
	Metrics Metrics
	// Groups holds optional nested metrics, keyed per target or file.
	Groups map[string]Metrics
}

// NewSummary creates an empty summary for a tool and run.
func NewSummary(toolID, runID string) Summary {
	return Summary{ToolID: toolID, RunID: runID, Metrics: make(Metrics)}
}

// Group returns the named nested metric set, allocating it on first use.
func (s *Summary) Group(name string) Metrics {
	if s.Groups == nil {
		s.Groups = make(map[string]Metrics)
	}
	m, ok := s.Groups[name]
	if !ok {
		m = make(Metrics)
		s.Groups[name] = m
	}
	return m
}

// Tool is one pluggable analysis. Implementations are stateless between
// runs; everything they need arrives through Produce.
type Tool interface {
	// ID is the stable identity used for registration, history keying and
	// configuration. Lowercase-hyphenated by convention.
	ID() string
	Description() string
	// DefaultEnabled is the policy default before any user override:
	// generic low-cost tools ship enabled, expensive or project-specific
	// ones ship disabled.
	DefaultEnabled() bool
	// Produce computes the tool's summary from the aggregated run.
	// Recoverable observations go to bag; a returned error fails only
	// this tool, never the run.
	Produce(ctx context.Context, run *aggregate.Run, bag *diag.Bag) (Summary, error)
}

// Comparer is the optional capability of diffing a summary against a
// prior run's. The tool, not the registry, owns better/worse polarity.
type Comparer interface {
	// Compare diffs current against prior; prior is nil when the history
	// holds no usable earlier summary.
	Compare(current Summary, prior *Summary) []ComparisonReport
}

// TraceEmitter is the optional capability of producing a serialized
// merged trace alongside the summary. MergedTrace returns nil when
// Produce has not run or chose not to emit one.
type TraceEmitter interface {
	MergedTrace() []byte
}
