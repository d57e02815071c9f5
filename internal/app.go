// Package internal provides the App struct that wires the timeline engine,
// its storage collaborators, and observability together, and initializes
// the CLI layer.
package internal

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sayantanroy47/tasky-timeline/internal/cli"
	"github.com/sayantanroy47/tasky-timeline/internal/observability"
	"github.com/sayantanroy47/tasky-timeline/internal/storage"
	"github.com/sayantanroy47/tasky-timeline/internal/timeline"
)

// App holds all service dependencies for the timeline system.
type App struct {
	BasePath string

	// Storage layer
	Settings storage.SettingsStore
	DataSrc  *storage.FileDataSource

	// Engine
	Engine *timeline.Engine

	// Observability
	EventLog    observability.EventLog
	MetricsCalc observability.MetricsCalculator
}

// NewApp creates and wires all components. basePath is the directory
// holding projects.yaml, timeline.yaml, and the diagnostics log.
func NewApp(basePath string) (*App, error) {
	app := &App{BasePath: basePath}

	// --- Observability ---
	eventLog, err := observability.NewJSONLEventLog(filepath.Join(basePath, "timeline-events.jsonl"))
	if err != nil {
		// Diagnostics are best-effort; the timeline still works without them.
		eventLog = observability.NewNopEventLog()
	}
	app.EventLog = eventLog
	app.MetricsCalc = observability.NewMetricsCalculator(eventLog)

	// --- Storage layer ---
	app.Settings = storage.NewSettingsStore(basePath)
	app.DataSrc = storage.NewFileDataSource(basePath)

	// --- Engine ---
	app.Engine, err = timeline.NewEngine(app.DataSrc, app.Settings, app.EventLog)
	if err != nil {
		return nil, fmt.Errorf("initializing timeline engine: %w", err)
	}

	// --- CLI layer ---
	cli.BasePath = basePath
	cli.Engine = app.Engine
	cli.DataSrc = app.DataSrc
	cli.Settings = app.Settings
	cli.EventLog = app.EventLog
	cli.MetricsCalc = app.MetricsCalc

	return app, nil
}

// ResolveBasePath returns the data directory: TASKYLINE_HOME if set,
// otherwise the nearest ancestor directory containing projects.yaml,
// otherwise the working directory.
func ResolveBasePath() string {
	if home := os.Getenv("TASKYLINE_HOME"); home != "" {
		return home
	}
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	for cur := dir; ; {
		if _, err := os.Stat(filepath.Join(cur, "projects.yaml")); err == nil {
			return cur
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return dir
		}
		cur = parent
	}
}
