package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sayantanroy47/tasky-timeline/internal/timeline"
	"github.com/sayantanroy47/tasky-timeline/pkg/models"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Inspect and update timeline display settings",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Engine == nil {
			return fmt.Errorf("timeline engine not initialized")
		}
		data, err := yaml.Marshal(Engine.Settings())
		if err != nil {
			return fmt.Errorf("encoding settings: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Update one setting",
	Long: `Update a single setting by key. All changes go through the engine's
settings entry point, so they are validated and persisted together.

Keys: zoom_level, pixels_per_unit, task_row_height, show_weekends,
show_dependencies, show_milestones, show_progress, show_critical_path,
working_hours_start, working_hours_end, color_theme, drag_enabled,
auto_schedule.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Engine == nil {
			return fmt.Errorf("timeline engine not initialized")
		}
		patch, err := patchFor(args[0], args[1])
		if err != nil {
			return err
		}
		if err := Engine.UpdateSettings(patch); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", args[0], args[1])
		return nil
	},
}

// patchFor parses one key/value pair into a SettingsPatch.
func patchFor(key, value string) (timeline.SettingsPatch, error) {
	patch := timeline.SettingsPatch{}

	parseFloat := func() (float64, error) {
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, fmt.Errorf("%s: expected a number, got %q", key, value)
		}
		return f, nil
	}
	parseBool := func() (bool, error) {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return false, fmt.Errorf("%s: expected true or false, got %q", key, value)
		}
		return b, nil
	}
	parseInt := func() (int, error) {
		n, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("%s: expected an integer, got %q", key, value)
		}
		return n, nil
	}

	switch key {
	case "zoom_level":
		z := models.ZoomLevel(value)
		patch.ZoomLevel = &z
	case "pixels_per_unit":
		f, err := parseFloat()
		if err != nil {
			return patch, err
		}
		patch.PixelsPerUnit = &f
	case "task_row_height":
		f, err := parseFloat()
		if err != nil {
			return patch, err
		}
		patch.TaskRowHeight = &f
	case "show_weekends":
		b, err := parseBool()
		if err != nil {
			return patch, err
		}
		patch.ShowWeekends = &b
	case "show_dependencies":
		b, err := parseBool()
		if err != nil {
			return patch, err
		}
		patch.ShowDependencies = &b
	case "show_milestones":
		b, err := parseBool()
		if err != nil {
			return patch, err
		}
		patch.ShowMilestones = &b
	case "show_progress":
		b, err := parseBool()
		if err != nil {
			return patch, err
		}
		patch.ShowProgress = &b
	case "show_critical_path":
		b, err := parseBool()
		if err != nil {
			return patch, err
		}
		patch.ShowCriticalPath = &b
	case "working_hours_start":
		n, err := parseInt()
		if err != nil {
			return patch, err
		}
		patch.WorkingHoursStart = &n
	case "working_hours_end":
		n, err := parseInt()
		if err != nil {
			return patch, err
		}
		patch.WorkingHoursEnd = &n
	case "color_theme":
		patch.ColorTheme = &value
	case "drag_enabled":
		b, err := parseBool()
		if err != nil {
			return patch, err
		}
		patch.DragEnabled = &b
	case "auto_schedule":
		b, err := parseBool()
		if err != nil {
			return patch, err
		}
		patch.AutoSchedule = &b
	default:
		return patch, fmt.Errorf("unknown settings key %q", key)
	}
	return patch, nil
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}
