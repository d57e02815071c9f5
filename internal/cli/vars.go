package cli

import (
	"github.com/sayantanroy47/tasky-timeline/internal/observability"
	"github.com/sayantanroy47/tasky-timeline/internal/storage"
	"github.com/sayantanroy47/tasky-timeline/internal/timeline"
)

// Service instances, set during app initialization in app.go.
var (
	BasePath    string
	Engine      *timeline.Engine
	DataSrc     *storage.FileDataSource
	Settings    storage.SettingsStore
	EventLog    observability.EventLog
	MetricsCalc observability.MetricsCalculator
)
