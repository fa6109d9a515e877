package cli

import (
	"fmt"

	"github.com/mvp-joe/project-hoist/internal/analyzer"
	"github.com/mvp-joe/project-hoist/internal/config"
	"github.com/mvp-joe/project-hoist/internal/history"
	"github.com/mvp-joe/project-hoist/internal/modelstore"
	"github.com/mvp-joe/project-hoist/internal/pipeline"
	"github.com/mvp-joe/project-hoist/internal/refactor"
	"go.uber.org/zap"
)

// buildAnalyzer selects the interpreter for the configured analyzer mode.
func buildAnalyzer(e *env) (analyzer.Analyzer, error) {
	var factory analyzer.CommandFactory
	switch e.cfg.Analyzer.Mode {
	case config.AnalyzerModeEmbedded:
		global, err := config.LoadGlobalConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to load global config: %w", err)
		}
		factory = analyzer.EmbeddedPython(global.Runtime.PythonDir)
	default:
		factory = analyzer.SystemPython(e.cfg.Analyzer.Python)
	}

	return analyzer.NewScriptAnalyzer(e.cfg.ScriptPath(e.rootDir),
		analyzer.WithCommandFactory(factory),
		analyzer.WithArgs(e.cfg.Analyzer.Args...),
		analyzer.WithTimeout(e.cfg.AnalyzerTimeout()),
		analyzer.WithLogger(e.logger.Named("analyzer")),
	), nil
}

// buildApplier configures plan application from the refactor section.
func buildApplier(e *env, reporter refactor.Reporter) (*refactor.Applier, error) {
	return refactor.New(
		refactor.WithLogger(e.logger.Named("refactor")),
		refactor.WithReporter(reporter),
		refactor.WithMarkerPatterns(e.cfg.Refactor.MarkerPatterns),
		refactor.WithSuperTypeDedup(e.cfg.Refactor.DedupeSupertypes),
	)
}

// buildController wires the pipeline. The returned close function releases
// the history store and must be called when done.
func buildController(e *env, an analyzer.Analyzer, reporter refactor.Reporter) (*pipeline.Controller, func(), error) {
	applier, err := buildApplier(e, reporter)
	if err != nil {
		return nil, nil, err
	}

	opts := []pipeline.Option{pipeline.WithLogger(e.logger.Named("pipeline"))}
	closeFn := func() {}

	if e.cfg.History.Enabled {
		store, err := history.Open(e.cfg.HistoryPath(e.rootDir))
		if err != nil {
			// Runs still work without a ledger
			e.logger.Warn("history disabled", zap.Error(err))
		} else {
			opts = append(opts, pipeline.WithHistory(store))
			closeFn = func() {
				if err := store.Close(); err != nil {
					e.logger.Warn("failed to close history", zap.Error(err))
				}
			}
		}
	}

	paths := pipeline.Paths{
		WorkDir:     e.cfg.WorkDir(e.rootDir),
		ContextPath: e.cfg.ContextPath(e.rootDir),
		PlanPath:    e.cfg.PlanPath(e.rootDir),
	}
	return pipeline.New(modelstore.New(), an, applier, paths, opts...), closeFn, nil
}
