package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/Zuo-Peng/chatview/internal/config"
	"github.com/Zuo-Peng/chatview/internal/ingest"
	"github.com/Zuo-Peng/chatview/internal/logging"
	"github.com/Zuo-Peng/chatview/internal/source"
	"github.com/Zuo-Peng/chatview/internal/whatsapp"
)

// app carries what every command needs after flag parsing.
type app struct {
	configPath string
	cfg        *config.Config
	logFile    *os.File
}

// setup loads the config and starts logging. Logs go to log_file when
// set, otherwise to stderr; the TUI owns the terminal, so view discards
// them instead.
func (a *app) setup(tui bool) error {
	cfg, err := config.LoadFile(a.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	a.cfg = cfg

	lc := logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: os.Stderr}
	switch {
	case cfg.LogFile != "":
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		a.logFile = f
		lc.Output = f
	case tui:
		lc.Output = io.Discard
	}
	logging.Init(lc)
	return nil
}

func (a *app) close() {
	if a.logFile != nil {
		a.logFile.Close()
		a.logFile = nil
	}
}

func (a *app) parserOptions() whatsapp.Options {
	return whatsapp.Options{
		DaysFirst:        a.cfg.DaysFirst,
		ParseAttachments: a.cfg.ParseAttachments,
	}
}

func (a *app) orchestrator(pub ingest.Publisher, n ingest.Notifier) (*ingest.Orchestrator, error) {
	w, err := a.cfg.Window()
	if err != nil {
		return nil, err
	}
	return ingest.New(whatsapp.NewParser(a.parserOptions()), w, ingest.Options{
		Publisher: pub,
		Notifier:  n,
		Sample:    source.Sample,
	}), nil
}

// stderrNotifier reports ingestion failures on the terminal.
type stderrNotifier struct {
	w io.Writer
}

func (n stderrNotifier) Notify(message string, cause error) {
	fmt.Fprintln(n.w, message)
}

// load ingests path, or the bundled sample when path is empty, and
// returns the published state.
func load(ctx context.Context, o *ingest.Orchestrator, path string) (ingest.State, source.Info, error) {
	if path == "" {
		if err := <-o.LoadSample(ctx); err != nil {
			return ingest.State{}, source.Info{}, fmt.Errorf("ingest sample: %w", err)
		}
		return o.State(), source.SampleInfo(), nil
	}

	rc, info, err := source.Resolve(path)
	if err != nil {
		return ingest.State{}, source.Info{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer rc.Close()

	if err := o.Ingest(ctx, rc); err != nil {
		return ingest.State{}, info, fmt.Errorf("ingest %s: %w", info.Name, err)
	}
	return o.State(), info, nil
}

func fileArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}
