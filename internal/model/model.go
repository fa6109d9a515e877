package model

import (
	"errors"
	"fmt"
)

// ErrDuplicateClassifier is returned when a classifier name is already taken.
var ErrDuplicateClassifier = errors.New("duplicate classifier")

// ClassModel is a package of classifiers. Iteration order is insertion order
// and names are unique.
type ClassModel struct {
	Name     string
	NsURI    string
	NsPrefix string
	Ext      Extension // store content outside the classifiers, such as data types

	classifiers []*Classifier
	index       map[string]*Classifier
}

// New creates an empty class model with the given package name.
func New(name string) *ClassModel {
	return &ClassModel{
		Name:  name,
		index: make(map[string]*Classifier),
	}
}

// Add appends a classifier. Its name must not already exist in the model.
func (m *ClassModel) Add(c *Classifier) error {
	if c == nil || c.Name == "" {
		return fmt.Errorf("classifier must have a name")
	}
	if m.index == nil {
		m.index = make(map[string]*Classifier)
	}
	if _, exists := m.index[c.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateClassifier, c.Name)
	}
	for _, a := range c.Attributes {
		a.Owner = c.Name
	}
	for _, o := range c.Operations {
		o.Owner = c.Name
	}
	m.classifiers = append(m.classifiers, c)
	m.index[c.Name] = c
	return nil
}

// Lookup resolves a classifier by name.
func (m *ClassModel) Lookup(name string) (*Classifier, bool) {
	c, ok := m.index[name]
	return c, ok
}

// Classifiers returns the classifiers in model order. The slice is a copy;
// the classifiers are not.
func (m *ClassModel) Classifiers() []*Classifier {
	out := make([]*Classifier, len(m.classifiers))
	copy(out, m.classifiers)
	return out
}

// Len returns the number of classifiers.
func (m *ClassModel) Len() int {
	return len(m.classifiers)
}
