package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sayantanroy47/tasky-timeline/internal/timeline"
)

var (
	exportFormat string
	exportOut    string
	exportWidth  float64
	exportHeight float64
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the current timeline geometry",
	Long: `Export a snapshot of the timeline's renderable geometry: bars,
milestones, and dependency connectors in pixel coordinates.

Only the data format is produced here; image and pdf rendering is the
export service's job and is rejected with an explanatory error.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Engine == nil {
			return fmt.Errorf("timeline engine not initialized")
		}
		if err := Engine.Refresh(cmd.Context(), nil); err != nil {
			return err
		}

		payload, err := Engine.ExportSnapshot(timeline.ExportFormat(exportFormat), exportWidth, exportHeight)
		if err != nil {
			return err
		}

		data, err := yaml.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encoding export payload: %w", err)
		}

		if exportOut == "" || exportOut == "-" {
			_, err = cmd.OutOrStdout().Write(data)
			return err
		}
		if err := os.WriteFile(exportOut, data, 0o644); err != nil {
			return fmt.Errorf("writing export file: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "exported %d bars, %d milestones, %d connectors to %s\n",
			len(payload.Bars), len(payload.Milestones), len(payload.Connectors), exportOut)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "data", "export format: image, pdf, or data")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "-", "output file, - for stdout")
	exportCmd.Flags().Float64Var(&exportWidth, "width", 1600, "view width in pixels")
	exportCmd.Flags().Float64Var(&exportHeight, "height", 900, "view height in pixels")
	rootCmd.AddCommand(exportCmd)
}
