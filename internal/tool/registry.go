package tool

import (
	"context"
	"fmt"

	"buildprof/internal/aggregate"
	"buildprof/internal/diag"
)

// Registry holds the tools for one process invocation. It is constructed
// at startup, passed explicitly to whoever needs it, and never global.
type Registry struct {
	tools map[string]Tool
	order []string
}

func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds a tool under its id.
func (r *Registry) Register(t Tool) error {
	id := t.ID()
	if _, exists := r.tools[id]; exists {
		return &DuplicateToolIDError{ID: id}
	}
	r.tools[id] = t
	r.order = append(r.order, id)
	return nil
}

// Tools returns registered tools in registration order.
func (r *Registry) Tools() []Tool {
	out := make([]Tool, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.tools[id])
	}
	return out
}

// Lookup returns a tool by id.
func (r *Registry) Lookup(id string) (Tool, bool) {
	t, ok := r.tools[id]
	return t, ok
}

// Enabled resolves the effective enabled set: every tool's declared
// default, then user overrides on top.
func (r *Registry) Enabled(overrides map[string]bool) map[string]bool {
	out := make(map[string]bool, len(r.order))
	for _, id := range r.order {
		out[id] = r.tools[id].DefaultEnabled()
	}
	for id, on := range overrides {
		if _, known := out[id]; known {
			out[id] = on
		}
	}
	return out
}

// RunAll executes every enabled tool against the aggregated run. A tool
// failing or panicking is recorded in bag as a ToolExecutionError and the
// remaining tools still run; the returned map holds the summaries of the
// tools that succeeded.
func (r *Registry) RunAll(ctx context.Context, enabled map[string]bool, run *aggregate.Run, runID string, bag *diag.Bag) map[string]Summary {
	out := make(map[string]Summary, len(r.order))
	for _, id := range r.order {
		if !enabled[id] {
			continue
		}
		if err := ctx.Err(); err != nil {
			return out
		}
		summary, err := r.runOne(ctx, r.tools[id], run, bag)
		if err != nil {
			bag.Addf(diag.SevError, diag.CodeToolFailed, "", id, "%v",
				&ToolExecutionError{ID: id, Err: err})
			continue
		}
		summary.ToolID = id
		summary.RunID = runID
		out[id] = summary
	}
	return out
}

func (r *Registry) runOne(ctx context.Context, t Tool, run *aggregate.Run, bag *diag.Bag) (summary Summary, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return t.Produce(ctx, run, bag)
}

// CompareAll diffs this run's summaries against a prior run's for every
// tool that implements Comparer. prior may be nil (first recorded run);
// each comparing tool then receives a nil prior summary and reports its
// metrics as new.
func (r *Registry) CompareAll(current map[string]Summary, prior map[string]Summary) []ComparisonReport {
	var out []ComparisonReport
	for _, id := range r.order {
		comparer, ok := r.tools[id].(Comparer)
		if !ok {
			continue
		}
		cur, ok := current[id]
		if !ok {
			continue
		}
		var prev *Summary
		if prior != nil {
			if p, ok := prior[id]; ok {
				prev = &p
			}
		}
		out = append(out, comparer.Compare(cur, prev)...)
	}
	return out
}
