package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mvp-joe/project-hoist/internal/rcft"
	"github.com/spf13/cobra"
)

var inspectRows bool

// inspectCmd represents the inspect command
var inspectCmd = &cobra.Command{
	Use:   "inspect <context.rcft>",
	Short: "Summarize a context document",
	Long: `Inspect decodes a relational context document and prints the size of each
context. With --rows, every class is listed with its properties and every
dependency link is shown.

Examples:
  hoist inspect .hoist/context.rcft
  hoist inspect .hoist/context.rcft --rows
`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().BoolVar(&inspectRows, "rows", false, "List the properties of every class")
}

func runInspect(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open context document: %w", err)
	}
	defer f.Close()

	doc, err := rcft.Decode(f)
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", args[0], err)
	}

	writeDocumentSummary(cmd.OutOrStdout(), doc, inspectRows)
	return nil
}

// writeDocumentSummary prints one line per context and, with rows set, the
// incidence of each class.
func writeDocumentSummary(w io.Writer, doc *rcft.Document, rows bool) {
	writeContextLine(w, doc.Classes)
	writeContextLine(w, doc.Types)
	if doc.Dependencies != nil {
		d := doc.Dependencies
		fmt.Fprintf(w, "  %-12s %d × %d  (%s → %s, %s)\n",
			d.Name, len(d.Objects), len(d.Attributes), d.Source, d.Target, d.Scaling)
	}
	if !rows {
		return
	}

	if doc.Classes != nil {
		fmt.Fprintln(w)
		for i, class := range doc.Classes.Objects {
			fmt.Fprintf(w, "  %s: %s\n", class, strings.Join(incident(doc.Classes, i), ", "))
		}
	}
	if doc.Dependencies != nil {
		fmt.Fprintln(w)
		for i, class := range doc.Dependencies.Objects {
			targets := incident(&doc.Dependencies.FormalContext, i)
			if len(targets) > 0 {
				fmt.Fprintf(w, "  %s → %s\n", class, strings.Join(targets, ", "))
			}
		}
	}
}

func writeContextLine(w io.Writer, c *rcft.FormalContext) {
	if c == nil {
		return
	}
	fmt.Fprintf(w, "  %-12s %d × %d\n", c.Name, len(c.Objects), len(c.Attributes))
}

// incident returns the attributes object i has.
func incident(c *rcft.FormalContext, i int) []string {
	var out []string
	for j, has := range c.Row(i) {
		if has {
			out = append(out, c.Attributes[j])
		}
	}
	return out
}
