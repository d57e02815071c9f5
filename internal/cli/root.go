package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// SetVersionInfo sets the version information injected via ldflags.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

var rootCmd = &cobra.Command{
	Use:   "taskyline",
	Short: "Tasky timeline - interactive Gantt timeline for task data",
	Long: `Tasky timeline (taskyline) renders project and task data as an
interactive Gantt timeline: a zoomable, scrollable time axis with
virtualized rows, drag-to-reschedule, milestone markers, and dependency
connectors.

Data is read from projects.yaml in the base directory (TASKYLINE_HOME or
the working directory); display settings persist in timeline.yaml.`,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("taskyline %s\ncommit: %s\nbuilt:  %s\n", appVersion, appCommit, appDate)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
