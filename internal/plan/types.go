// Package plan parses refactoring plans produced by the analyzer into an
// ordered list of actions.
package plan

import "strings"

// Kind is the kind of concept an action introduces.
type Kind string

const (
	KindClass     Kind = "CLASS"
	KindInterface Kind = "INTERFACE"
)

// ParseKind maps a raw plan type onto a Kind. Only INTERFACE produces an
// interface; CLASS, ABSTRACT_CLASS, HERITAGE and any other value produce an
// abstract class.
func ParseKind(raw string) Kind {
	if strings.EqualFold(strings.TrimSpace(raw), string(KindInterface)) {
		return KindInterface
	}
	return KindClass
}

// Action introduces one concept and pulls features of the representative
// class (the first concerned class) up onto it.
type Action struct {
	Kind             Kind
	RawKind          string   // type value as written in the plan
	ConceptName      string   // name of the classifier to create
	ConcernedClasses []string // first entry is the representative
	ElementsToMove   []string // raw feature signatures, may include relational markers
	Reason           string   // optional rationale from the analyzer
}

// Representative returns the first concerned class, or "" if there is none.
func (a *Action) Representative() string {
	if len(a.ConcernedClasses) == 0 {
		return ""
	}
	return a.ConcernedClasses[0]
}

// Plan is an ordered sequence of actions. Order matters: each action sees the
// model state left by the previous ones.
type Plan struct {
	Actions []Action
}

// Len returns the number of actions.
func (p *Plan) Len() int {
	return len(p.Actions)
}

// Empty reports whether the plan has no actions.
func (p *Plan) Empty() bool {
	return len(p.Actions) == 0
}
