// Package refactor applies refactoring plans to a class model: each action
// introduces an abstract concept, pulls features of a representative class up
// onto it and links the concerned classes to it.
package refactor

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mvp-joe/project-hoist/internal/model"
	"github.com/mvp-joe/project-hoist/internal/plan"
)

// Applier mutates a class model according to a plan.
type Applier struct {
	logger         *zap.Logger
	reporter       Reporter
	markerPatterns []string
	markers        *MarkerFilter
	dedupe         bool
}

// Option configures an Applier.
type Option func(*Applier)

// WithLogger sets the logger used for per-action diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(a *Applier) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithReporter configures progress reporting.
func WithReporter(reporter Reporter) Option {
	return func(a *Applier) {
		if reporter != nil {
			a.reporter = reporter
		}
	}
}

// WithMarkerPatterns replaces the relational marker patterns. An empty list
// keeps the defaults.
func WithMarkerPatterns(patterns []string) Option {
	return func(a *Applier) {
		if len(patterns) > 0 {
			a.markerPatterns = patterns
		}
	}
}

// WithSuperTypeDedup controls whether linking skips a supertype the class
// already lists. With dedup off, re-applying a plan appends the link again.
func WithSuperTypeDedup(enabled bool) Option {
	return func(a *Applier) {
		a.dedupe = enabled
	}
}

// New creates an Applier. It fails only when a marker pattern does not compile.
func New(opts ...Option) (*Applier, error) {
	a := &Applier{
		logger:         zap.NewNop(),
		reporter:       NoOpReporter{},
		markerPatterns: DefaultMarkerPatterns,
		dedupe:         true,
	}
	for _, opt := range opts {
		opt(a)
	}

	markers, err := NewMarkerFilter(a.markerPatterns)
	if err != nil {
		return nil, err
	}
	a.markers = markers
	return a, nil
}

// Apply runs every action of p against m in plan order. Each action sees the
// model left by the previous ones; a failing action is recorded and the rest
// still run.
func (a *Applier) Apply(m *model.ClassModel, p *plan.Plan) *Report {
	start := time.Now()
	report := &Report{}
	if p == nil {
		p = &plan.Plan{}
	}

	a.reporter.OnApplyStart(p.Len())
	for i, action := range p.Actions {
		result := a.applyIsolated(m, action)
		report.Actions = append(report.Actions, result)
		a.reporter.OnActionApplied(i, result)
	}
	a.reporter.OnApplyComplete(report, time.Since(start))

	a.logger.Info("plan applied",
		zap.Int("actions", p.Len()),
		zap.Int("applied", report.Applied()),
		zap.Int("skipped", report.Skipped()),
		zap.Duration("duration", time.Since(start)))
	return report
}

// applyIsolated recovers from a panic in a single action so that the
// remaining actions still run.
func (a *Applier) applyIsolated(m *model.ClassModel, action plan.Action) (result ActionResult) {
	defer func() {
		if r := recover(); r != nil {
			result.Applied = false
			result.Skip = SkipFailed
			result.Err = fmt.Errorf("action %q panicked: %v", action.ConceptName, r)
			a.logger.Error("action failed",
				zap.String("concept", action.ConceptName),
				zap.Error(result.Err))
		}
	}()
	return a.applyAction(m, action)
}

func (a *Applier) applyAction(m *model.ClassModel, action plan.Action) ActionResult {
	result := ActionResult{Action: action}
	log := a.logger.With(
		zap.String("type", action.RawKind),
		zap.String("concept", action.ConceptName))

	if len(action.ConcernedClasses) == 0 {
		result.Skip = SkipNoConcernedClasses
		log.Warn("action skipped", zap.String("reason", string(result.Skip)))
		return result
	}

	repName := action.Representative()
	rep, ok := m.Lookup(repName)
	if !ok {
		result.Skip = SkipRepresentativeMissing
		log.Warn("action skipped",
			zap.String("reason", string(result.Skip)),
			zap.String("representative", repName))
		return result
	}
	if _, exists := m.Lookup(action.ConceptName); exists {
		result.Skip = SkipConceptExists
		log.Warn("action skipped", zap.String("reason", string(result.Skip)))
		return result
	}

	concept := &model.Classifier{
		Name:      action.ConceptName,
		Abstract:  true,
		Interface: action.Kind == plan.KindInterface,
	}
	if err := m.Add(concept); err != nil {
		result.Skip = SkipFailed
		result.Err = fmt.Errorf("failed to add concept: %w", err)
		log.Error("action failed", zap.Error(result.Err))
		return result
	}
	result.Applied = true

	a.relocate(rep, concept, action.ElementsToMove, &result, log)
	a.link(m, rep, concept, action.ConcernedClasses, &result, log)
	return result
}

// relocate moves the named members of rep onto concept. Operations are
// matched first; attributes move only when the concept is not an interface.
func (a *Applier) relocate(rep, concept *model.Classifier, elements []string, result *ActionResult, log *zap.Logger) {
	for _, raw := range elements {
		if a.markers.IsMarker(raw) {
			result.Markers = append(result.Markers, raw)
			continue
		}

		name := Normalize(raw)
		if name == "" {
			continue
		}

		if op := model.MoveOperation(rep, concept, name); op != nil {
			result.MovedOperations = append(result.MovedOperations, name)
			log.Info("operation moved", zap.String("name", name), zap.String("from", rep.Name))
			continue
		}
		if !concept.Interface {
			if attr := model.MoveAttribute(rep, concept, name); attr != nil {
				result.MovedAttributes = append(result.MovedAttributes, name)
				log.Info("attribute moved", zap.String("name", name), zap.String("from", rep.Name))
				continue
			}
		}

		result.Unmatched = append(result.Unmatched, name)
		log.Debug("no member to move", zap.String("name", name), zap.String("from", rep.Name))
	}
}

// link adds concept as a supertype of every concerned class and removes the
// local copies of moved members from the non-representative ones.
func (a *Applier) link(m *model.ClassModel, rep, concept *model.Classifier, concerned []string, result *ActionResult, log *zap.Logger) {
	moved := result.Moved()

	for _, name := range concerned {
		cls, ok := m.Lookup(name)
		if !ok {
			result.Unresolved = append(result.Unresolved, name)
			log.Warn("concerned class not found", zap.String("class", name))
			continue
		}

		if !a.dedupe || !cls.HasSuperType(concept.Name) {
			cls.AddSuperType(concept.Name)
			result.Linked = append(result.Linked, cls.Name)
		}

		if cls == rep {
			continue
		}
		for _, member := range moved {
			removed := false
			if !concept.Interface && cls.RemoveAttribute(member) != nil {
				removed = true
			}
			if cls.RemoveOperation(member) != nil {
				removed = true
			}
			if removed {
				if result.Deduplicated == nil {
					result.Deduplicated = make(map[string][]string)
				}
				result.Deduplicated[cls.Name] = append(result.Deduplicated[cls.Name], member)
				log.Debug("duplicate removed", zap.String("class", cls.Name), zap.String("name", member))
			}
		}
	}
}
