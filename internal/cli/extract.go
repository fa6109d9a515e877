package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var extractOutput string

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract <model>",
	Short: "Write the relational context document for a model",
	Long: `Extract loads a class model (.ecore, .xmi, .yaml) and writes the relational
context document the analyzer consumes.

Examples:
  # Write to the configured context path (.hoist/context.rcft)
  hoist extract model.ecore

  # Write somewhere else
  hoist extract model.ecore -o /tmp/model.rcft
`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)
	extractCmd.Flags().StringVarP(&extractOutput, "output", "o", "", "context document path")
}

func runExtract(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	e, err := loadEnv()
	if err != nil {
		return err
	}
	defer e.logger.Sync()

	ctrl, closeFn, err := buildController(e, nil, nil)
	if err != nil {
		return err
	}
	defer closeFn()

	out := extractOutput
	if out == "" {
		out = e.cfg.ContextPath(e.rootDir)
	}

	doc, err := ctrl.Extract(ctx, args[0], out)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "✓ Context written to %s\n", out)
	writeDocumentSummary(w, doc, false)
	return nil
}
