package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"

	"mdclip/pkg/history"
	"mdclip/pkg/logger"

	"github.com/spf13/cobra"
)

var (
	historyLimit     int
	historyDirection string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show or clear the conversion history",
	Long: `mdclip records every conversion (direction, source format, outcome and a short
preview) in a local SQLite database when history.enabled is true.`,
}

var historyListCmd = NewCommand(
	"list",
	"List recent conversions",
	`List recent conversions, newest first.`,
).WithExample(`  mdclip history list --limit 5
  mdclip history list --direction to-rich --format json`).
	WithNoArgs().
	WithApp(appNeeds{historyAlways: true}, func(_ context.Context, cmd *cobra.Command, a *App) error {
		if historyDirection != "" && historyDirection != history.DirectionToMarkdown && historyDirection != history.DirectionToRich {
			return fmt.Errorf("unknown direction %q (want %s or %s)", historyDirection, history.DirectionToMarkdown, history.DirectionToRich)
		}

		entries, err := a.History.List(historyLimit, historyDirection)
		if err != nil {
			return err
		}
		logger.Debug().Int("count", len(entries)).Msg("Found history entries")

		output := NewOutputWriter(outputFormat)
		output.SetWriter(cmd.OutOrStdout())
		if output.IsStructured() {
			return output.Write(entries)
		}

		if len(entries) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No conversions recorded.")
			return nil
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "WHEN\tDIRECTION\tSOURCE\tSTATUS\tPREVIEW")
		for _, e := range entries {
			detail := e.Preview
			if e.Status == history.StatusFailed {
				detail = e.ErrorKind
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", FormatTimestamp(e.CreatedAt), e.Direction, dash(e.Source), e.Status, detail)
		}
		return tw.Flush()
	}).
	Build()

var historyClearCmd = NewCommand(
	"clear",
	"Delete all recorded conversions",
	`Delete every entry from the conversion history.`,
).WithNoArgs().
	WithApp(appNeeds{historyAlways: true}, func(_ context.Context, cmd *cobra.Command, a *App) error {
		if dryRunFlag {
			n, err := a.History.Count()
			if err != nil {
				return err
			}
			PrintDryRun(cmd.OutOrStdout(), "Would delete %d entries.", n)
			return nil
		}

		if err := RequireConfirmation(cmd, "delete the conversion history"); err != nil {
			return err
		}

		n, err := a.History.Clear()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d entries.\n", n)
		return nil
	}).
	Build()

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func init() {
	historyListCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of entries (0 for all)")
	historyListCmd.Flags().StringVar(&historyDirection, "direction", "", "Only show to-markdown or to-rich conversions")
	historyClearCmd.Flags().BoolVarP(&assumeYesFlag, "yes", "y", false, "Do not ask for confirmation")
}
