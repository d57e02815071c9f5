package cli

import (
	"testing"

	"github.com/sayantanroy47/tasky-timeline/internal/timeline"
	"github.com/sayantanroy47/tasky-timeline/pkg/models"
)

func TestPatchFor_ParsesEveryKey(t *testing.T) {
	tests := []struct {
		key   string
		value string
		check func(p timeline.SettingsPatch) bool
	}{
		{"zoom_level", "weeks", func(p timeline.SettingsPatch) bool {
			return p.ZoomLevel != nil && *p.ZoomLevel == models.ZoomWeeks
		}},
		{"pixels_per_unit", "55.5", func(p timeline.SettingsPatch) bool {
			return p.PixelsPerUnit != nil && *p.PixelsPerUnit == 55.5
		}},
		{"task_row_height", "40", func(p timeline.SettingsPatch) bool {
			return p.TaskRowHeight != nil && *p.TaskRowHeight == 40
		}},
		{"show_weekends", "false", func(p timeline.SettingsPatch) bool {
			return p.ShowWeekends != nil && !*p.ShowWeekends
		}},
		{"show_dependencies", "true", func(p timeline.SettingsPatch) bool {
			return p.ShowDependencies != nil && *p.ShowDependencies
		}},
		{"show_milestones", "true", func(p timeline.SettingsPatch) bool {
			return p.ShowMilestones != nil && *p.ShowMilestones
		}},
		{"show_progress", "false", func(p timeline.SettingsPatch) bool {
			return p.ShowProgress != nil && !*p.ShowProgress
		}},
		{"show_critical_path", "true", func(p timeline.SettingsPatch) bool {
			return p.ShowCriticalPath != nil && *p.ShowCriticalPath
		}},
		{"working_hours_start", "8", func(p timeline.SettingsPatch) bool {
			return p.WorkingHoursStart != nil && *p.WorkingHoursStart == 8
		}},
		{"working_hours_end", "18", func(p timeline.SettingsPatch) bool {
			return p.WorkingHoursEnd != nil && *p.WorkingHoursEnd == 18
		}},
		{"color_theme", "dark", func(p timeline.SettingsPatch) bool {
			return p.ColorTheme != nil && *p.ColorTheme == "dark"
		}},
		{"drag_enabled", "false", func(p timeline.SettingsPatch) bool {
			return p.DragEnabled != nil && !*p.DragEnabled
		}},
		{"auto_schedule", "true", func(p timeline.SettingsPatch) bool {
			return p.AutoSchedule != nil && *p.AutoSchedule
		}},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			patch, err := patchFor(tt.key, tt.value)
			if err != nil {
				t.Fatalf("patchFor(%q, %q): %v", tt.key, tt.value, err)
			}
			if !tt.check(patch) {
				t.Errorf("patchFor(%q, %q) did not set the field: %+v", tt.key, tt.value, patch)
			}
		})
	}
}

func TestPatchFor_Errors(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "unknown key", key: "font_size", value: "12"},
		{name: "bad float", key: "pixels_per_unit", value: "wide"},
		{name: "bad bool", key: "show_weekends", value: "maybe"},
		{name: "bad int", key: "working_hours_start", value: "nine"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := patchFor(tt.key, tt.value); err == nil {
				t.Errorf("patchFor(%q, %q) accepted bad input", tt.key, tt.value)
			}
		})
	}
}
