package model

import (
	"errors"
	"fmt"

	"github.com/dominikbraun/graph"
)

var (
	// ErrDanglingSuperType indicates a supertype name that resolves to no classifier.
	ErrDanglingSuperType = errors.New("dangling supertype")

	// ErrInheritanceCycle indicates a classifier that (transitively) inherits from itself.
	ErrInheritanceCycle = errors.New("inheritance cycle")
)

// Validate checks the inheritance structure of the model: every supertype
// name must resolve to a classifier in the model and the hierarchy must be
// acyclic. All violations are reported together.
func Validate(m *ClassModel) error {
	g := graph.New(graph.StringHash, graph.Directed(), graph.PreventCycles())

	for _, c := range m.classifiers {
		if err := g.AddVertex(c.Name); err != nil {
			return fmt.Errorf("failed to add classifier %s: %w", c.Name, err)
		}
	}

	var errs []error
	for _, c := range m.classifiers {
		for _, super := range c.SuperTypes {
			if _, ok := m.index[super]; !ok {
				errs = append(errs, fmt.Errorf("%w: %s extends %s", ErrDanglingSuperType, c.Name, super))
				continue
			}

			err := g.AddEdge(c.Name, super)
			switch {
			case err == nil, errors.Is(err, graph.ErrEdgeAlreadyExists):
				// Repeated supertype links are tolerated here.
			case errors.Is(err, graph.ErrEdgeCreatesCycle):
				errs = append(errs, fmt.Errorf("%w: %s extends %s", ErrInheritanceCycle, c.Name, super))
			default:
				return fmt.Errorf("failed to link %s to %s: %w", c.Name, super, err)
			}
		}
	}

	return errors.Join(errs...)
}
