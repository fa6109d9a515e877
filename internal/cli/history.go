package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mvp-joe/project-hoist/internal/history"
	"github.com/spf13/cobra"
)

var (
	historyLimit int
	historyRun   string
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past refactoring runs",
	Long: `History lists recent runs recorded in the history database
(history.db_path, default .hoist/history.db). With --run, the actions of a
single run are shown.

Examples:
  hoist history
  hoist history --limit 5
  hoist history --run 3f1c...
`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum number of runs to list")
	historyCmd.Flags().StringVar(&historyRun, "run", "", "Show the actions of one run")
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	e, err := loadEnv()
	if err != nil {
		return err
	}
	defer e.logger.Sync()

	w := cmd.OutOrStdout()
	if !e.cfg.History.Enabled {
		fmt.Fprintln(w, "History is disabled (history.enabled=false)")
		return nil
	}

	store, err := history.Open(e.cfg.HistoryPath(e.rootDir))
	if err != nil {
		return err
	}
	defer store.Close()

	if historyRun != "" {
		run, err := store.GetRun(ctx, historyRun)
		if err != nil {
			return err
		}
		actions, err := store.Actions(ctx, historyRun)
		if err != nil {
			return err
		}
		writeRun(w, run)
		writeActions(w, actions)
		return nil
	}

	runs, err := store.ListRuns(ctx, historyLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded")
		return nil
	}
	for _, run := range runs {
		writeRun(w, run)
	}
	return nil
}

func writeRun(w io.Writer, run *history.Run) {
	fmt.Fprintf(w, "%s  %s  %-10s %d/%d  %s\n",
		run.ID,
		run.StartedAt.Local().Format(time.DateTime),
		run.Status,
		run.ActionsApplied,
		run.ActionsTotal,
		run.ModelPath)
}

func writeActions(w io.Writer, actions []*history.ActionRecord) {
	for _, a := range actions {
		status := "applied"
		if a.SkipReason != "" {
			status = "skipped: " + a.SkipReason
		}
		fmt.Fprintf(w, "  [%d] %s %s from %s (%s)\n", a.Seq+1, a.Kind, a.ConceptName, a.Representative, status)
		if len(a.MovedOperations) > 0 {
			fmt.Fprintf(w, "      operations: %s\n", strings.Join(a.MovedOperations, ", "))
		}
		if len(a.MovedAttributes) > 0 {
			fmt.Fprintf(w, "      attributes: %s\n", strings.Join(a.MovedAttributes, ", "))
		}
		if a.Rationale != "" {
			fmt.Fprintf(w, "      reason: %s\n", a.Rationale)
		}
	}
}
