package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"stackc/internal/driver"
	"stackc/internal/ui"
)

type buildOutcome struct {
	results []driver.UnitResult
	err     error
}

func runBuildWithUI(ctx context.Context, title string, units []string, opts driver.Options) ([]driver.UnitResult, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan buildOutcome, 1)

	go func() {
		optsCopy := opts
		optsCopy.Progress = driver.ChannelSink(events)
		res, err := driver.Build(ctx, units, optsCopy)
		outcomeCh <- buildOutcome{results: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, units, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	// The view may quit early (ctrl+c); keep draining so the build never
	// blocks on a full channel.
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.results, uiErr
	}
	return outcome.results, outcome.err
}
