package cli

import (
	"github.com/spf13/cobra"
)

var (
	applyOutput string
	quietFlag   bool
)

// applyCmd represents the apply command
var applyCmd = &cobra.Command{
	Use:   "apply <model> <plan>",
	Short: "Apply an existing refactoring plan to a model",
	Long: `Apply reads a refactoring plan produced earlier and applies it to the model
without running the analyzer. The result is saved next to the model with a
-refactored suffix unless --output is given.

Examples:
  hoist apply model.ecore .hoist/plan.json
  hoist apply model.yaml plan.json -o refactored.yaml
`,
	Args: cobra.ExactArgs(2),
	RunE: runApply,
}

func init() {
	rootCmd.AddCommand(applyCmd)
	applyCmd.Flags().StringVarP(&applyOutput, "output", "o", "", "refactored model path")
	applyCmd.Flags().BoolVarP(&quietFlag, "quiet", "q", false, "Disable progress output")
}

func runApply(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	e, err := loadEnv()
	if err != nil {
		return err
	}
	defer e.logger.Sync()

	w := cmd.OutOrStdout()
	ctrl, closeFn, err := buildController(e, nil, NewCLIProgressReporter(w, quietFlag))
	if err != nil {
		return err
	}
	defer closeFn()

	res, err := ctrl.Apply(ctx, args[0], args[1], applyOutput)
	if err != nil {
		return err
	}
	writeResult(w, res)
	return nil
}
