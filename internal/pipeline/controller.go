// Package pipeline wires the stages of a refactoring run together: load the
// model, extract its contexts, run the analyzer, parse and apply the plan,
// then save the refactored model and record the run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/mvp-joe/project-hoist/internal/analyzer"
	"github.com/mvp-joe/project-hoist/internal/fsutil"
	"github.com/mvp-joe/project-hoist/internal/history"
	"github.com/mvp-joe/project-hoist/internal/model"
	"github.com/mvp-joe/project-hoist/internal/modelstore"
	"github.com/mvp-joe/project-hoist/internal/plan"
	"github.com/mvp-joe/project-hoist/internal/rcft"
	"github.com/mvp-joe/project-hoist/internal/refactor"
)

// User-facing outcome messages.
const (
	MsgNoPlan    = "analyzer produced no plan document"
	MsgEmptyPlan = "no refactoring actions found"
)

// Paths locates the intermediate documents of a run.
type Paths struct {
	WorkDir     string // analyzer working directory
	ContextPath string // context document written for the analyzer
	PlanPath    string // plan document the analyzer writes
}

// Result describes the outcome of a run. Model holds the mutated model even
// when saving failed.
type Result struct {
	RunID         string
	Status        string
	ModelPath     string
	OutputPath    string // empty when nothing was saved
	Model         *model.ClassModel
	Document      *rcft.Document
	Plan          *plan.Plan
	Report        *refactor.Report
	NoPlan        bool
	Message       string
	AnalyzerErr   error // analyzer failure, not fatal on its own
	ValidationErr error // hierarchy problems found after refactoring
}

// Controller runs the pipeline. It is not safe for concurrent use: each run
// owns its model exclusively.
type Controller struct {
	repo     modelstore.Repository
	analyzer analyzer.Analyzer
	applier  *refactor.Applier
	history  *history.Store
	logger   *zap.Logger
	paths    Paths
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithHistory records every run in store.
func WithHistory(store *history.Store) Option {
	return func(c *Controller) {
		c.history = store
	}
}

// New creates a Controller. an may be nil for controllers that only run the
// Extract and Apply sub-pipelines.
func New(repo modelstore.Repository, an analyzer.Analyzer, applier *refactor.Applier, paths Paths, opts ...Option) *Controller {
	c := &Controller{
		repo:     repo,
		analyzer: an,
		applier:  applier,
		logger:   zap.NewNop(),
		paths:    paths,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run executes the full pipeline for the model at modelPath. A missing or
// empty plan is a successful run that saves nothing. Load, extraction and
// save failures are returned as errors.
func (c *Controller) Run(ctx context.Context, modelPath string) (*Result, error) {
	started := time.Now()
	res := &Result{ModelPath: modelPath}
	log := c.logger.With(zap.String("model", modelPath))

	// A plan left over from an earlier run must not be applied to this one.
	if err := os.Remove(c.paths.PlanPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn("failed to remove stale plan", zap.String("plan", c.paths.PlanPath), zap.Error(err))
	}

	m, err := c.repo.Load(modelPath)
	if err != nil {
		c.fail(ctx, res, started)
		return res, fmt.Errorf("failed to load model: %w", err)
	}
	res.Model = m

	doc, err := c.writeContext(m, c.paths.ContextPath)
	if err != nil {
		c.fail(ctx, res, started)
		return res, err
	}
	res.Document = doc
	log.Info("context extracted",
		zap.String("context", c.paths.ContextPath),
		zap.Int("classes", len(doc.Classes.Objects)),
		zap.Int("properties", len(doc.Classes.Attributes)),
		zap.Int("types", len(doc.Types.Objects)))

	if c.analyzer == nil {
		res.AnalyzerErr = errors.New("no analyzer configured")
		log.Error("analysis skipped", zap.Error(res.AnalyzerErr))
	} else if err := c.analyzer.Analyze(ctx, analyzer.Request{
		ContextPath: c.paths.ContextPath,
		PlanPath:    c.paths.PlanPath,
		WorkDir:     c.paths.WorkDir,
	}); err != nil {
		res.AnalyzerErr = err
		log.Error("analyzer failed", zap.Error(err))
	}

	if info, err := os.Stat(c.paths.PlanPath); err != nil || info.Size() == 0 {
		res.NoPlan = true
		res.Message = MsgNoPlan
		res.Status = history.StatusNoPlan
		log.Warn(MsgNoPlan, zap.String("plan", c.paths.PlanPath))
		c.record(ctx, res, started)
		return res, nil
	}

	return c.applyPlan(ctx, res, c.paths.PlanPath, modelstore.RefactoredPath(modelPath), started)
}

// Extract loads the model and writes its context document to outPath, or to
// the configured context path when outPath is empty.
func (c *Controller) Extract(ctx context.Context, modelPath, outPath string) (*rcft.Document, error) {
	if outPath == "" {
		outPath = c.paths.ContextPath
	}

	m, err := c.repo.Load(modelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load model: %w", err)
	}

	doc, err := c.writeContext(m, outPath)
	if err != nil {
		return nil, err
	}
	c.logger.Info("context extracted",
		zap.String("model", modelPath),
		zap.String("context", outPath),
		zap.Int("classes", len(doc.Classes.Objects)))
	return doc, nil
}

// Apply loads the model, applies the plan at planPath and saves the result to
// outPath, or next to the model when outPath is empty.
func (c *Controller) Apply(ctx context.Context, modelPath, planPath, outPath string) (*Result, error) {
	started := time.Now()
	res := &Result{ModelPath: modelPath}
	if outPath == "" {
		outPath = modelstore.RefactoredPath(modelPath)
	}

	m, err := c.repo.Load(modelPath)
	if err != nil {
		c.fail(ctx, res, started)
		return res, fmt.Errorf("failed to load model: %w", err)
	}
	res.Model = m

	if _, err := os.Stat(planPath); err != nil {
		res.NoPlan = true
		res.Message = MsgNoPlan
		res.Status = history.StatusNoPlan
		c.logger.Warn(MsgNoPlan, zap.String("plan", planPath))
		c.record(ctx, res, started)
		return res, nil
	}

	return c.applyPlan(ctx, res, planPath, outPath, started)
}

// applyPlan parses, applies, validates, saves and records. res.Model must be
// loaded.
func (c *Controller) applyPlan(ctx context.Context, res *Result, planPath, outPath string, started time.Time) (*Result, error) {
	p, err := plan.ParseFile(planPath)
	if err != nil {
		c.logger.Error("failed to read plan", zap.String("plan", planPath), zap.Error(err))
	}
	res.Plan = p

	if p.Empty() {
		res.Message = MsgEmptyPlan
		res.Status = history.StatusEmptyPlan
		c.logger.Info(MsgEmptyPlan, zap.String("plan", planPath))
		c.record(ctx, res, started)
		return res, nil
	}

	res.Report = c.applier.Apply(res.Model, p)

	if err := model.Validate(res.Model); err != nil {
		res.ValidationErr = err
		c.logger.Warn("refactored model has hierarchy problems", zap.Error(err))
	}

	if err := c.repo.Save(res.Model, outPath); err != nil {
		c.fail(ctx, res, started)
		return res, fmt.Errorf("failed to save refactored model: %w", err)
	}
	res.OutputPath = outPath
	res.Status = history.StatusSucceeded
	res.Message = fmt.Sprintf("%d of %d actions applied", res.Report.Applied(), len(res.Report.Actions))
	c.logger.Info("refactored model saved",
		zap.String("output", outPath),
		zap.Int("applied", res.Report.Applied()),
		zap.Int("actions", len(res.Report.Actions)))

	c.record(ctx, res, started)
	return res, nil
}

// writeContext extracts the contexts of m and writes them to path.
func (c *Controller) writeContext(m *model.ClassModel, path string) (*rcft.Document, error) {
	doc := rcft.Extract(m)
	err := fsutil.WriteAtomic(path, func(w io.Writer) error {
		return rcft.Write(w, doc)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to write context document: %w", err)
	}
	return doc, nil
}

func (c *Controller) fail(ctx context.Context, res *Result, started time.Time) {
	res.Status = history.StatusFailed
	c.record(ctx, res, started)
}

// record stores the run when history is enabled. Failures are logged only.
func (c *Controller) record(ctx context.Context, res *Result, started time.Time) {
	if c.history == nil {
		return
	}
	id, err := c.history.RecordRun(ctx, history.Run{
		ModelPath:  res.ModelPath,
		OutputPath: res.OutputPath,
		StartedAt:  started,
		FinishedAt: time.Now(),
		Status:     res.Status,
	}, res.Report)
	if err != nil {
		c.logger.Warn("failed to record run", zap.Error(err))
		return
	}
	res.RunID = id
}
