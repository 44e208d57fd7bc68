package main

import (
	"encoding/json"
	"fmt"
	"os/signal"
	"sync"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/rht/internal/debug"
	"github.com/standardbeagle/rht/internal/extract"
)

// watchEvent is one line of JSON watch output.
type watchEvent struct {
	Event string `json:"event"`
	fileReport
}

func watchCommand(c *cli.Context) error {
	format := c.String("format")
	if err := checkFormat(format); err != nil {
		return err
	}

	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}
	e, err := extract.New(cfg)
	if err != nil {
		return err
	}

	// Callbacks run on the watcher's goroutine.
	var mu sync.Mutex
	out := c.App.Writer
	enc := json.NewEncoder(out)
	emit := func(event string, report fileReport) {
		mu.Lock()
		defer mu.Unlock()
		if format == "json" {
			if err := enc.Encode(watchEvent{Event: event, fileReport: report}); err != nil {
				debug.Errorf("write: %v", err)
			}
			return
		}
		if event == "remove" {
			fmt.Fprintf(out, "removed %s\n", report.Path)
			return
		}
		if report.Error != "" {
			fmt.Fprintf(out, "error %s: %s\n", report.Path, report.Error)
			return
		}
		writeFactsText(out, report.Facts)
	}

	w, err := extract.NewWatcher(cfg, e,
		func(r extract.FileResult) { emit("change", newFileReport(r)) },
		func(path string) { emit("remove", fileReport{Path: path, Facts: []extract.Fact{}}) },
	)
	if err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	debug.Infof("shutting down file watcher")
	if err := w.Stop(); err != nil {
		return err
	}
	stats := w.Stats()
	debug.Infof("processed %d events, %d errors, %d unchanged files", stats.EventsProcessed, stats.ErrorCount, stats.CacheHits)
	return nil
}
