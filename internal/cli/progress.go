package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mvp-joe/project-hoist/internal/refactor"
	"github.com/schollz/progressbar/v3"
)

// CLIProgressReporter shows a progress bar while a plan is applied and prints
// the members relocated by each action.
type CLIProgressReporter struct {
	quiet bool
	out   io.Writer
	bar   *progressbar.ProgressBar
}

// NewCLIProgressReporter creates a new CLI progress reporter writing to out.
func NewCLIProgressReporter(out io.Writer, quiet bool) *CLIProgressReporter {
	return &CLIProgressReporter{
		quiet: quiet,
		out:   out,
	}
}

func (c *CLIProgressReporter) OnApplyStart(total int) {
	if c.quiet {
		return
	}
	c.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(c.out),
		progressbar.OptionSetDescription("Applying plan"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(c.out)
		}),
	)
}

func (c *CLIProgressReporter) OnActionApplied(index int, result refactor.ActionResult) {
	if c.quiet {
		return
	}
	if c.bar != nil {
		_ = c.bar.Clear()
	}
	writeActionResult(c.out, index, result)
	if c.bar != nil {
		_ = c.bar.Add(1)
	}
}

func (c *CLIProgressReporter) OnApplyComplete(report *refactor.Report, duration time.Duration) {
	if c.quiet {
		return
	}
	if c.bar != nil {
		_ = c.bar.Finish()
		c.bar = nil
	}
	fmt.Fprintf(c.out, "✓ Applied %d of %d actions (took %.1fs)\n",
		report.Applied(), len(report.Actions), duration.Seconds())
}

// writeActionResult prints one action outcome.
func writeActionResult(w io.Writer, index int, r refactor.ActionResult) {
	concept := r.Action.ConceptName
	if !r.Applied {
		if r.Err != nil {
			fmt.Fprintf(w, "  [%d] %s skipped (%s): %v\n", index+1, concept, r.Skip, r.Err)
		} else {
			fmt.Fprintf(w, "  [%d] %s skipped (%s)\n", index+1, concept, r.Skip)
		}
		return
	}

	rep := r.Action.Representative()
	fmt.Fprintf(w, "  [%d] created %s %s\n", index+1, strings.ToLower(string(r.Action.Kind)), concept)
	for _, op := range r.MovedOperations {
		fmt.Fprintf(w, "      operation %s moved from %s\n", op, rep)
	}
	for _, attr := range r.MovedAttributes {
		fmt.Fprintf(w, "      attribute %s moved from %s\n", attr, rep)
	}
	if len(r.Linked) > 0 {
		fmt.Fprintf(w, "      supertype of %v\n", r.Linked)
	}
	if r.Action.Reason != "" {
		fmt.Fprintf(w, "      reason: %s\n", r.Action.Reason)
	}
}
