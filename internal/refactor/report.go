package refactor

import (
	"time"

	"github.com/mvp-joe/project-hoist/internal/plan"
)

// SkipReason explains why an action was not applied.
type SkipReason string

const (
	SkipNone                  SkipReason = ""
	SkipNoConcernedClasses    SkipReason = "no concerned classes"
	SkipRepresentativeMissing SkipReason = "representative not found"
	SkipConceptExists         SkipReason = "concept already exists"
	SkipFailed                SkipReason = "action failed"
)

// ActionResult records what a single action did to the model.
type ActionResult struct {
	Action          plan.Action
	Applied         bool
	Skip            SkipReason
	MovedOperations []string
	MovedAttributes []string
	Unmatched       []string            // normalized names with no matching member
	Markers         []string            // relational markers dropped before lookup
	Unresolved      []string            // concerned classes absent from the model
	Linked          []string            // classes now listing the concept as supertype
	Deduplicated    map[string][]string // class name -> removed local copies
	Err             error
}

// Moved returns every relocated member name, operations first.
func (r *ActionResult) Moved() []string {
	out := make([]string, 0, len(r.MovedOperations)+len(r.MovedAttributes))
	out = append(out, r.MovedOperations...)
	return append(out, r.MovedAttributes...)
}

// Report is the outcome of applying a plan, one result per action in plan order.
type Report struct {
	Actions []ActionResult
}

// Applied returns the number of actions that created a concept.
func (r *Report) Applied() int {
	n := 0
	for _, a := range r.Actions {
		if a.Applied {
			n++
		}
	}
	return n
}

// Skipped returns the number of actions that left the model untouched.
func (r *Report) Skipped() int {
	return len(r.Actions) - r.Applied()
}

// Reporter receives progress callbacks while a plan is applied.
type Reporter interface {
	OnApplyStart(total int)
	OnActionApplied(index int, result ActionResult)
	OnApplyComplete(report *Report, duration time.Duration)
}

// NoOpReporter is a reporter that does nothing.
type NoOpReporter struct{}

func (NoOpReporter) OnApplyStart(total int)                                 {}
func (NoOpReporter) OnActionApplied(index int, result ActionResult)         {}
func (NoOpReporter) OnApplyComplete(report *Report, duration time.Duration) {}
