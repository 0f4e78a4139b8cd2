package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"prettypy/internal/driver"
	"prettypy/internal/ui"
	"prettypy/internal/walker"
)

// runFixWithUI executes one fix operation while a bubbletea progress view
// renders its events. The operation itself runs in a single worker
// goroutine; the UI only consumes events, so files are still processed one
// at a time.
func runFixWithUI(ctx context.Context, dirs []string, opts *driver.Options, op fixOp) (*driver.FixResult, error) {
	keep := walker.Predicate(walker.PythonFiles)
	if opts != nil && opts.Predicate != nil {
		keep = opts.Predicate
	}
	files := walker.Walk(dirs, keep, nil)

	events := make(chan driver.Event, 64)

	uiOpts := *opts
	uiOpts.Progress = driver.ChannelSink{Ch: events}
	// Warnings would tear the live view. They resurface through the result.
	devnull, _ := os.OpenFile(os.DevNull, os.O_WRONLY, 0)
	if devnull != nil {
		defer devnull.Close()
		uiOpts.Stderr = devnull
	}

	type outcome struct {
		res *driver.FixResult
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := op.run(ctx, dirs, &uiOpts)
		close(events)
		done <- outcome{res: res, err: err}
	}()

	model := ui.NewProgressModel("fix "+string(op.rule), files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout), tea.WithContext(ctx))
	if _, uiErr := program.Run(); uiErr != nil {
		// Drain so the worker can finish even though the view is gone.
		go func() {
			for range events {
			}
		}()
		out := <-done
		if out.err != nil {
			return nil, out.err
		}
		return out.res, uiErr
	}

	out := <-done
	return out.res, out.err
}
