package ingest

import (
	"context"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"buildprof/internal/diag"
	"buildprof/internal/traceevent"
)

// Item is one raw trace payload to ingest. Load defers the read so large
// batches do not hold every payload in memory at once; the loader runs on
// a worker goroutine.
type Item struct {
	SourcePath string
	Load       func() ([]byte, error)
}

// Bytes builds an Item around an in-memory payload.
func Bytes(sourcePath string, payload []byte) Item {
	return Item{SourcePath: sourcePath, Load: func() ([]byte, error) { return payload, nil }}
}

// Options configures an ingestion batch.
type Options struct {
	// Jobs bounds the worker count; <= 0 means GOMAXPROCS.
	Jobs int
	// Sink receives progress events; nil discards them.
	Sink ProgressSink
}

// Run parses every item concurrently into unit traces. Items are
// independent, so the only shared state is the bounded work distribution;
// results land in per-item slots and come back sorted lexically by source
// path regardless of completion order.
//
// A payload that fails to load or parse is reported to bag and skipped;
// it never fails the batch. Cancellation does: on context cancellation
// in-flight work is abandoned and the partial batch is discarded, so a
// partial run can never masquerade as a complete one.
func Run(ctx context.Context, items []Item, opts Options, bag *diag.Bag) ([]*traceevent.UnitTrace, error) {
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	sink := opts.Sink
	if sink == nil {
		sink = nopSink{}
	}

	sorted := make([]Item, len(items))
	copy(sorted, items)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].SourcePath < sorted[j].SourcePath })
	for _, item := range sorted {
		sink.OnEvent(Event{Source: item.SourcePath, Status: StatusQueued})
	}

	units := make([]*traceevent.UnitTrace, len(sorted))
	bags := make([]*diag.Bag, len(sorted))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, item := range sorted {
		i, item := i, item
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			sink.OnEvent(Event{Source: item.SourcePath, Status: StatusReading})
			started := time.Now()

			itemBag := diag.NewBag(256)
			bags[i] = itemBag

			raw, err := item.Load()
			if err == nil {
				units[i], err = traceevent.Parse(raw, item.SourcePath, itemBag)
			}
			if err != nil {
				itemBag.Addf(diag.SevError, diag.CodeMalformedTrace, item.SourcePath, "",
					"trace skipped: %v", err)
				sink.OnEvent(Event{Source: item.SourcePath, Status: StatusFailed, Err: err, Elapsed: time.Since(started)})
				return nil
			}
			sink.OnEvent(Event{Source: item.SourcePath, Status: StatusDone, Elapsed: time.Since(started)})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Merge per-item diagnostics in input order so the combined bag is
	// deterministic, then compact the result slice.
	out := make([]*traceevent.UnitTrace, 0, len(units))
	for i := range units {
		bag.Merge(bags[i])
		if units[i] != nil {
			out = append(out, units[i])
		}
	}
	return out, nil
}
