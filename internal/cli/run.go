package cli

import (
	"fmt"
	"io"

	"github.com/mvp-joe/project-hoist/internal/pipeline"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run <model>",
	Short: "Extract, analyze and refactor a model",
	Long: `Run executes the whole pipeline:
  - Loads the model and writes its context document
  - Runs the analyzer script to produce a refactoring plan
  - Applies the plan and saves <model>-refactored.<ext>

The analyzer is configured in .hoist/config.yml (analyzer.mode, analyzer.python,
analyzer.script). An analyzer failure is reported but the run continues with
whatever plan document exists.

Examples:
  hoist run model.ecore
  HOIST_ANALYZER_SCRIPT=./rca.py hoist run model.yaml
`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().BoolVarP(&quietFlag, "quiet", "q", false, "Disable progress output")
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	e, err := loadEnv()
	if err != nil {
		return err
	}
	defer e.logger.Sync()

	an, err := buildAnalyzer(e)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	ctrl, closeFn, err := buildController(e, an, NewCLIProgressReporter(w, quietFlag))
	if err != nil {
		return err
	}
	defer closeFn()

	res, err := ctrl.Run(ctx, args[0])
	if err != nil {
		return err
	}
	writeResult(w, res)
	return nil
}

// writeResult prints the outcome of a pipeline run.
func writeResult(w io.Writer, res *pipeline.Result) {
	if res.AnalyzerErr != nil {
		fmt.Fprintf(w, "⚠ Analyzer failed: %v\n", res.AnalyzerErr)
	}
	if res.NoPlan || res.Report == nil {
		fmt.Fprintf(w, "• %s\n", res.Message)
		return
	}
	if res.ValidationErr != nil {
		fmt.Fprintf(w, "⚠ Hierarchy problems: %v\n", res.ValidationErr)
	}
	fmt.Fprintf(w, "✓ %s\n", res.Message)
	if res.OutputPath != "" {
		fmt.Fprintf(w, "  Saved: %s\n", res.OutputPath)
	}
	if res.RunID != "" {
		fmt.Fprintf(w, "  Run:   %s\n", res.RunID)
	}
}
