// Package storage implements the timeline engine's external collaborators:
// a viper-backed settings store and a YAML file data source with push
// notifications.
package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/sayantanroy47/tasky-timeline/pkg/models"
)

// settingsFileName is the settings file inside the base path.
const settingsFileName = "timeline"

// SettingsStore persists TimelineSettings as timeline.yaml under a base
// directory. Missing files yield defaults; malformed values surface as
// validation errors rather than silently loading garbage.
type SettingsStore interface {
	Load() (models.TimelineSettings, error)
	Save(settings models.TimelineSettings) error
}

type viperSettingsStore struct {
	basePath string
}

// NewSettingsStore creates a SettingsStore reading timeline.yaml relative
// to basePath.
func NewSettingsStore(basePath string) SettingsStore {
	return &viperSettingsStore{basePath: basePath}
}

func (s *viperSettingsStore) filePath() string {
	return filepath.Join(s.basePath, settingsFileName+".yaml")
}

// Load reads timeline.yaml via viper, falling back to defaults for any
// missing key and to the full default set when the file does not exist.
func (s *viperSettingsStore) Load() (models.TimelineSettings, error) {
	cfg := models.DefaultTimelineSettings()

	v := viper.New()
	v.SetConfigName(settingsFileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(s.basePath)

	v.SetDefault("zoom_level", string(cfg.ZoomLevel))
	v.SetDefault("pixels_per_unit", cfg.PixelsPerUnit)
	v.SetDefault("task_row_height", cfg.TaskRowHeight)
	v.SetDefault("show_weekends", cfg.ShowWeekends)
	v.SetDefault("show_dependencies", cfg.ShowDependencies)
	v.SetDefault("show_milestones", cfg.ShowMilestones)
	v.SetDefault("show_progress", cfg.ShowProgress)
	v.SetDefault("show_critical_path", cfg.ShowCriticalPath)
	v.SetDefault("working_hours_start", cfg.WorkingHoursStart)
	v.SetDefault("working_hours_end", cfg.WorkingHoursEnd)
	v.SetDefault("color_theme", cfg.ColorTheme)
	v.SetDefault("drag_enabled", cfg.DragEnabled)
	v.SetDefault("auto_schedule", cfg.AutoSchedule)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading timeline settings: %w", err)
	}

	cfg.ZoomLevel = models.ZoomLevel(v.GetString("zoom_level"))
	cfg.PixelsPerUnit = v.GetFloat64("pixels_per_unit")
	cfg.TaskRowHeight = v.GetFloat64("task_row_height")
	cfg.ShowWeekends = v.GetBool("show_weekends")
	cfg.ShowDependencies = v.GetBool("show_dependencies")
	cfg.ShowMilestones = v.GetBool("show_milestones")
	cfg.ShowProgress = v.GetBool("show_progress")
	cfg.ShowCriticalPath = v.GetBool("show_critical_path")
	cfg.WorkingHoursStart = v.GetInt("working_hours_start")
	cfg.WorkingHoursEnd = v.GetInt("working_hours_end")
	cfg.ColorTheme = v.GetString("color_theme")
	cfg.DragEnabled = v.GetBool("drag_enabled")
	cfg.AutoSchedule = v.GetBool("auto_schedule")

	if err := cfg.Validate(); err != nil {
		return models.DefaultTimelineSettings(), err
	}
	return cfg, nil
}

// Save validates and writes the settings file, creating the base directory
// on first use.
func (s *viperSettingsStore) Save(settings models.TimelineSettings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(s.basePath, 0o750); err != nil {
		return fmt.Errorf("saving settings: creating directory: %w", err)
	}
	data, err := yaml.Marshal(&settings)
	if err != nil {
		return fmt.Errorf("saving settings: marshaling YAML: %w", err)
	}
	if err := os.WriteFile(s.filePath(), data, 0o600); err != nil {
		return fmt.Errorf("saving settings: writing file: %w", err)
	}
	return nil
}
