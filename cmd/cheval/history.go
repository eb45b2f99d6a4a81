package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/bnema/cheval/internal/adapter/storage/sqlite"
	"github.com/bnema/cheval/internal/domain"
	"github.com/bnema/cheval/internal/service"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded runs",
	Long: `List recorded runs, newest first.

Examples:
  cheval history                 # Last 20 runs
  cheval history show <run-id>   # Full command line of one run
  cheval history batch <id>      # Every run of one batch
  cheval history prune --keep 100`,
	Args: cobra.NoArgs,
	RunE: runHistoryCmd,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one run with its full command line",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShowCmd,
}

var historyBatchCmd = &cobra.Command{
	Use:   "batch <batch-id>",
	Short: "List the runs of one batch in order",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryBatchCmd,
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete all but the newest runs",
	Args:  cobra.NoArgs,
	RunE:  runHistoryPruneCmd,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyShowCmd, historyBatchCmd, historyPruneCmd)
	historyCmd.Flags().IntP("limit", "n", 20, "Number of runs to list")
	historyPruneCmd.Flags().Int("keep", 0, "Runs to keep (default from config)")
}

// openHistory opens the run store without the rest of the services.
func openHistory() (*service.History, func(), error) {
	store, err := sqlite.Open(cfg.Paths.DataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("open history: %w", err)
	}
	return service.NewHistory(store), func() { _ = store.Close() }, nil
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	history, closeFn, err := openHistory()
	if err != nil {
		return err
	}
	defer closeFn()

	runs, err := history.List(cmd.Context(), limit)
	if err != nil {
		return err
	}
	return printRuns(runs)
}

func runHistoryShowCmd(cmd *cobra.Command, args []string) error {
	history, closeFn, err := openHistory()
	if err != nil {
		return err
	}
	defer closeFn()

	run, err := history.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("run %s: %w", args[0], err)
	}
	if jsonOutput {
		return printJSON(run)
	}

	fmt.Printf("ID:        %s\n", run.ID)
	if run.BatchID != "" {
		fmt.Printf("Batch:     %s\n", run.BatchID)
	}
	fmt.Printf("Operation: %s\n", run.Operation)
	fmt.Printf("Status:    %s (exit %d)\n", run.Status, run.ExitCode)
	fmt.Printf("Started:   %s\n", run.StartedAt.Local().Format(time.DateTime))
	if run.FinishedAt != nil {
		fmt.Printf("Finished:  %s (%s)\n", run.FinishedAt.Local().Format(time.DateTime),
			run.FinishedAt.Sub(run.StartedAt).Round(time.Second))
	}
	if run.Output != "" {
		fmt.Printf("Output:    %s\n", run.Output)
	}
	if run.Message != "" {
		fmt.Printf("Message:   %s\n", run.Message)
	}
	fmt.Printf("Command:   %s %s\n", binaryFor(run.Program), shellJoin(run.Args))
	return nil
}

func runHistoryBatchCmd(cmd *cobra.Command, args []string) error {
	history, closeFn, err := openHistory()
	if err != nil {
		return err
	}
	defer closeFn()

	runs, err := history.Batch(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	return printRuns(runs)
}

func runHistoryPruneCmd(cmd *cobra.Command, _ []string) error {
	keep, _ := cmd.Flags().GetInt("keep")
	if keep <= 0 {
		keep = cfg.History.Keep
	}
	history, closeFn, err := openHistory()
	if err != nil {
		return err
	}
	defer closeFn()

	n, err := history.Prune(cmd.Context(), keep)
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(map[string]int64{"deleted": n})
	}
	fmt.Printf("Deleted %d run(s), kept the newest %d.\n", n, keep)
	return nil
}

func printRuns(runs []*domain.Run) error {
	if jsonOutput {
		if runs == nil {
			runs = []*domain.Run{}
		}
		return printJSON(runs)
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tSTARTED\tOPERATION\tSTATUS\tOUTPUT")
	for _, r := range runs {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.StartedAt.Local().Format(time.DateTime), r.Operation, r.Status, truncate(r.Output, 60))
	}
	return tw.Flush()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return "..." + strings.TrimLeft(s[len(s)-n+3:], "/")
}
