package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the data file for malformed items and dependency cycles",
	Long: `Load the data file and report everything the timeline would have to
exclude: items missing dates or with inverted ranges, and dependency
edges that would close a cycle. Exits non-zero when problems are found.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Engine == nil || MetricsCalc == nil {
			return fmt.Errorf("timeline engine not initialized")
		}
		since := time.Now()
		if err := Engine.Refresh(cmd.Context(), nil); err != nil {
			return err
		}

		m, err := MetricsCalc.Calculate(since)
		if err != nil {
			return fmt.Errorf("reading diagnostics: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "rows loaded:       %d\n", len(Engine.Rows()))
		fmt.Fprintf(out, "malformed items:   %d\n", m.MalformedItems)
		fmt.Fprintf(out, "rejected edges:    %d\n", m.RejectedEdges)
		for reason, count := range m.RejectedByReason {
			fmt.Fprintf(out, "  %-24s %d\n", reason, count)
		}

		if m.MalformedItems > 0 || m.RejectedEdges > 0 {
			return fmt.Errorf("data file has %d problem(s)", m.MalformedItems+m.RejectedEdges)
		}
		fmt.Fprintln(out, "ok")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
