// Package driver wires the analysis pipeline end to end: ingest the
// traces, aggregate them, run the tools, diff against history, and
// persist the new record.
package driver

import (
	"context"
	"fmt"
	"os"
	"time"

	"buildprof/internal/aggregate"
	"buildprof/internal/config"
	"buildprof/internal/diag"
	"buildprof/internal/history"
	"buildprof/internal/ingest"
	"buildprof/internal/observ"
	"buildprof/internal/pathshort"
	"buildprof/internal/project"
	"buildprof/internal/tool"
	"buildprof/internal/tools"
)

// Request carries everything one analysis run needs.
type Request struct {
	// Items are the trace payloads to ingest.
	Items []ingest.Item
	// Membership maps source files to targets; nil means no targets.
	Membership *project.Membership
	// Config is the resolved run configuration.
	Config config.Config
	// RunID identifies this run in history. Empty derives one from Now.
	RunID string
	// Now stamps the history record; the zero value means time.Now.
	Now time.Time
	// Registry overrides the built-in tool set. Nil registers the
	// built-ins with Config.TopN.
	Registry *tool.Registry
	// Progress receives per-file ingestion events.
	Progress ingest.ProgressSink
	// TraceOut is where a merged trace lands when an enabled tool emits
	// one. Empty discards emitted traces.
	TraceOut string
	// Shortener rewrites paths in the emitted trace. May be nil.
	Shortener *pathshort.Shortener
}

// Result is what a completed run produced.
type Result struct {
	RunID       string
	Run         *aggregate.Run
	Summaries   map[string]tool.Summary
	Comparisons []tool.ComparisonReport
	// BaselineRunID names the prior run the comparisons are against, or
	// "" when no baseline was found.
	BaselineRunID string
	// Saved reports whether a history record was written.
	Saved bool
	// Pruned counts history records removed by retention.
	Pruned  int
	Timings observ.Report
}

// Run executes the full pipeline. Recoverable problems land in bag; the
// returned error means the run as a whole could not complete, and
// nothing is written to history in that case.
func Run(ctx context.Context, req Request, bag *diag.Bag) (Result, error) {
	now := req.Now
	if now.IsZero() {
		now = time.Now()
	}
	runID := req.RunID
	if runID == "" {
		runID = now.UTC().Format("20060102T150405Z")
	}
	result := Result{RunID: runID}
	timer := observ.NewTimer()

	idx := timer.Begin(observ.PhaseIngest)
	units, err := ingest.Run(ctx, req.Items, ingest.Options{Jobs: req.Config.Jobs, Sink: req.Progress}, bag)
	timer.End(idx, fmt.Sprintf("%d traces", len(units)))
	if err != nil {
		return result, err
	}

	idx = timer.Begin(observ.PhaseAggregate)
	run, err := aggregate.NewRun(units, req.Membership, bag)
	timer.End(idx, "")
	if err != nil {
		return result, err
	}
	result.Run = run

	reg := req.Registry
	if reg == nil {
		reg = tool.NewRegistry()
		if err := tools.RegisterAll(reg, req.Config.TopN); err != nil {
			return result, err
		}
	}
	enabled := reg.Enabled(req.Config.Tools.Overrides())

	idx = timer.Begin(observ.PhaseTools)
	result.Summaries = reg.RunAll(ctx, enabled, run, runID, bag)
	timer.End(idx, fmt.Sprintf("%d tools", len(result.Summaries)))
	if err := ctx.Err(); err != nil {
		return result, err
	}

	if err := writeEmittedTrace(req, reg, enabled); err != nil {
		return result, err
	}

	if req.Config.History.Dir == "" {
		result.Timings = timer.Report()
		return result, nil
	}
	store, err := history.Open(req.Config.History.Dir)
	if err != nil {
		return result, err
	}

	idx = timer.Begin(observ.PhaseCompare)
	if prior, ok := store.LoadPrior(baselineSelector(req.Config.History), runID, bag); ok {
		result.BaselineRunID = prior.RunID
		result.Comparisons = reg.CompareAll(result.Summaries, prior.Summaries)
	}
	timer.End(idx, result.BaselineRunID)

	idx = timer.Begin(observ.PhaseHistory)
	if err := store.Save(history.NewRecord(runID, now, req.Config.History.Tag, result.Summaries)); err != nil {
		timer.End(idx, "")
		return result, err
	}
	result.Saved = true
	policy := history.RetentionPolicy{
		MaxRecords: req.Config.History.Keep,
		MaxAge:     req.Config.History.MaxAge(),
	}
	removed, err := store.Prune(policy, now)
	timer.End(idx, fmt.Sprintf("pruned %d", removed))
	if err != nil {
		return result, err
	}
	result.Pruned = removed

	result.Timings = timer.Report()
	return result, nil
}

// baselineSelector maps configuration onto a history selector. An
// explicit run ID wins over a tag.
func baselineSelector(h config.History) history.Selector {
	if h.CompareTo != "" {
		return history.ByRunID(h.CompareTo)
	}
	if h.CompareTag != "" {
		return history.LatestTagged(h.CompareTag)
	}
	return history.LatestPrior()
}

// writeEmittedTrace persists the merged trace from the first enabled
// tool that emitted one.
func writeEmittedTrace(req Request, reg *tool.Registry, enabled map[string]bool) error {
	if req.TraceOut == "" {
		return nil
	}
	for _, t := range reg.Tools() {
		if !enabled[t.ID()] {
			continue
		}
		emitter, ok := t.(tool.TraceEmitter)
		if !ok {
			continue
		}
		raw := emitter.MergedTrace()
		if len(raw) == 0 {
			continue
		}
		if req.Shortener != nil {
			raw = req.Shortener.ApplyBytes(raw)
		}
		if err := os.WriteFile(req.TraceOut, raw, 0o644); err != nil {
			return fmt.Errorf("writing merged trace: %w", err)
		}
		return nil
	}
	return nil
}
