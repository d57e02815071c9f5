package models

import (
	"fmt"
	"strings"
)

// ZoomLevel is a named timeline granularity. It determines the duration one
// pixel column represents and the default viewport span.
type ZoomLevel string

const (
	ZoomHours  ZoomLevel = "hours"
	ZoomDays   ZoomLevel = "days"
	ZoomWeeks  ZoomLevel = "weeks"
	ZoomMonths ZoomLevel = "months"
)

// ValidZoomLevels is the set of allowed ZoomLevel values.
var ValidZoomLevels = map[ZoomLevel]bool{
	ZoomHours:  true,
	ZoomDays:   true,
	ZoomWeeks:  true,
	ZoomMonths: true,
}

// TimelineSettings holds all user-tunable timeline behavior. It is loaded
// once at engine init from the settings store, mutated only through the
// engine's UpdateSettings entry point, and persisted back on every change.
type TimelineSettings struct {
	ZoomLevel         ZoomLevel `yaml:"zoom_level"`
	PixelsPerUnit     float64   `yaml:"pixels_per_unit"`
	TaskRowHeight     float64   `yaml:"task_row_height"`
	ShowWeekends      bool      `yaml:"show_weekends"`
	ShowDependencies  bool      `yaml:"show_dependencies"`
	ShowMilestones    bool      `yaml:"show_milestones"`
	ShowProgress      bool      `yaml:"show_progress"`
	ShowCriticalPath  bool      `yaml:"show_critical_path"`
	WorkingHoursStart int       `yaml:"working_hours_start"`
	WorkingHoursEnd   int       `yaml:"working_hours_end"`
	ColorTheme        string    `yaml:"color_theme"`
	DragEnabled       bool      `yaml:"drag_enabled"`
	AutoSchedule      bool      `yaml:"auto_schedule"`
}

// DefaultTimelineSettings returns settings matching a fresh install.
func DefaultTimelineSettings() TimelineSettings {
	return TimelineSettings{
		ZoomLevel:         ZoomDays,
		PixelsPerUnit:     40,
		TaskRowHeight:     32,
		ShowWeekends:      true,
		ShowDependencies:  true,
		ShowMilestones:    true,
		ShowProgress:      true,
		ShowCriticalPath:  false,
		WorkingHoursStart: 9,
		WorkingHoursEnd:   17,
		ColorTheme:        "default",
		DragEnabled:       true,
		AutoSchedule:      false,
	}
}

// Validate checks the settings for invalid field values and returns a clear
// error message identifying every problem found.
func (s TimelineSettings) Validate() error {
	var errs []string

	if !ValidZoomLevels[s.ZoomLevel] {
		errs = append(errs, fmt.Sprintf(
			"zoom_level %q is invalid, must be one of: hours, days, weeks, months", s.ZoomLevel))
	}
	if s.PixelsPerUnit <= 0 {
		errs = append(errs, fmt.Sprintf("pixels_per_unit must be positive, got %g", s.PixelsPerUnit))
	}
	if s.TaskRowHeight <= 0 {
		errs = append(errs, fmt.Sprintf("task_row_height must be positive, got %g", s.TaskRowHeight))
	}
	if s.WorkingHoursStart < 0 || s.WorkingHoursStart > 24 {
		errs = append(errs, fmt.Sprintf("working_hours_start %d is invalid, must be between 0 and 24", s.WorkingHoursStart))
	}
	if s.WorkingHoursEnd < 0 || s.WorkingHoursEnd > 24 {
		errs = append(errs, fmt.Sprintf("working_hours_end %d is invalid, must be between 0 and 24", s.WorkingHoursEnd))
	}
	if s.WorkingHoursStart > s.WorkingHoursEnd {
		errs = append(errs, fmt.Sprintf(
			"working hours start %d must not be after end %d", s.WorkingHoursStart, s.WorkingHoursEnd))
	}

	if len(errs) > 0 {
		return fmt.Errorf("timeline settings validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
