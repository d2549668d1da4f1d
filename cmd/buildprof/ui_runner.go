package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"buildprof/internal/diag"
	"buildprof/internal/driver"
	"buildprof/internal/ingest"
	"buildprof/internal/ui"
)

type runOutcome struct {
	result driver.Result
	err    error
}

// runDriverWithUI runs the pipeline with a live ingestion view. The
// pipeline owns the event channel; closing it quits the UI.
func runDriverWithUI(ctx context.Context, title string, files []string, req driver.Request, bag *diag.Bag) (driver.Result, error) {
	events := make(chan ingest.Event, 256)
	outcomeCh := make(chan runOutcome, 1)

	go func() {
		reqCopy := req
		reqCopy.Progress = ingest.ChannelSink{Ch: events}
		res, err := driver.Run(ctx, reqCopy, bag)
		outcomeCh <- runOutcome{result: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}
