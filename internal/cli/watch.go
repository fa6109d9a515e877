package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/mvp-joe/project-hoist/internal/pipeline"
	"github.com/mvp-joe/project-hoist/internal/watcher"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var watchFull bool

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch <model>",
	Short: "Re-extract the context document whenever the model changes",
	Long: `Watch extracts the context document once, then again after every change to
the model file. Rapid saves are coalesced. With --run, the full pipeline
(analyze and refactor) runs on each change instead.

Press Ctrl+C to stop.

Examples:
  hoist watch model.ecore
  hoist watch model.yaml --run
`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().BoolVar(&watchFull, "run", false, "Run the full pipeline on each change")
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	e, err := loadEnv()
	if err != nil {
		return err
	}
	defer e.logger.Sync()

	w := cmd.OutOrStdout()

	var ctrl *pipeline.Controller
	var closeFn func()
	if watchFull {
		an, err := buildAnalyzer(e)
		if err != nil {
			return err
		}
		ctrl, closeFn, err = buildController(e, an, NewCLIProgressReporter(w, true))
		if err != nil {
			return err
		}
	} else {
		ctrl, closeFn, err = buildController(e, nil, nil)
		if err != nil {
			return err
		}
	}
	defer closeFn()

	mw, err := watcher.NewModelWatcher(args[0], watcher.WithLogger(e.logger.Named("watcher")))
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", args[0], err)
	}
	defer mw.Stop()

	return watchModel(ctx, w, mw, func(ctx context.Context, path string) {
		processChange(ctx, w, ctrl, e.logger, path, watchFull)
	}, args[0])
}

// watchModel processes path once, then on every change until ctx is done.
// Changes are processed one at a time on the watcher goroutine.
func watchModel(ctx context.Context, w io.Writer, mw watcher.Watcher, process func(context.Context, string), path string) error {
	process(ctx, path)

	err := mw.Start(ctx, func(changed string) {
		process(ctx, changed)
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Watching %s (Ctrl+C to stop)\n", path)
	<-ctx.Done()
	fmt.Fprintln(w, "\nStopping watcher...")
	return nil
}

func processChange(ctx context.Context, w io.Writer, ctrl *pipeline.Controller, logger *zap.Logger, path string, full bool) {
	if full {
		res, err := ctrl.Run(ctx, path)
		if err != nil {
			logger.Error("run failed", zap.String("model", path), zap.Error(err))
			return
		}
		writeResult(w, res)
		return
	}

	doc, err := ctrl.Extract(ctx, path, "")
	if err != nil {
		logger.Error("extraction failed", zap.String("model", path), zap.Error(err))
		return
	}
	fmt.Fprintf(w, "✓ Context updated from %s\n", path)
	writeDocumentSummary(w, doc, false)
}
