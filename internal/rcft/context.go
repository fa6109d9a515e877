// Package rcft builds and serializes relational context family (RCFT)
// documents: the formal contexts and relational contexts that describe which
// classes declare which properties and which classes depend on which types.
package rcft

const (
	// ClassesContext names the formal context of classifiers and their properties.
	ClassesContext = "Classes"
	// TypesContext names the formal context of declared types.
	TypesContext = "Types"
	// DependenciesRelation names the relational context linking classes to types.
	DependenciesRelation = "dependencies"
	// ScalingExist is the existential scaling operator: a link is present if
	// any matching member exists.
	ScalingExist = "exist"

	// AttrIsPrimitive and AttrIsObject are the fixed columns of the Types context.
	AttrIsPrimitive = "is_primitive"
	AttrIsObject    = "is_object"
)

// FormalContext relates objects (rows) to attributes (columns) through a
// boolean incidence relation.
type FormalContext struct {
	Name       string
	Objects    []string
	Attributes []string
	incidence  [][]bool
}

// NewFormalContext creates a context with the given rows and columns and an
// empty incidence relation.
func NewFormalContext(name string, objects, attributes []string) *FormalContext {
	return &FormalContext{
		Name:       name,
		Objects:    objects,
		Attributes: attributes,
		incidence:  newIncidence(len(objects), len(attributes)),
	}
}

// Has reports whether object i has attribute j.
func (c *FormalContext) Has(i, j int) bool {
	return c.incidence[i][j]
}

// Set marks object i as having attribute j.
func (c *FormalContext) Set(i, j int) {
	c.incidence[i][j] = true
}

// Row returns the incidence row for object i.
func (c *FormalContext) Row(i int) []bool {
	return c.incidence[i]
}

// Extent returns the objects that have the given attribute, in row order.
func (c *FormalContext) Extent(attribute string) []string {
	j := indexOf(c.Attributes, attribute)
	if j < 0 {
		return nil
	}
	var out []string
	for i, obj := range c.Objects {
		if c.incidence[i][j] {
			out = append(out, obj)
		}
	}
	return out
}

// RelationalContext is a formal context whose rows and columns come from two
// different object universes, linked by a named relation and scaling operator.
type RelationalContext struct {
	FormalContext
	Source  string
	Target  string
	Scaling string
}

// NewRelationalContext creates a relational context between source and target.
func NewRelationalContext(name, source, target, scaling string, objects, attributes []string) *RelationalContext {
	return &RelationalContext{
		FormalContext: *NewFormalContext(name, objects, attributes),
		Source:        source,
		Target:        target,
		Scaling:       scaling,
	}
}

// Document is the complete context family handed to the analyzer: the Classes
// and Types formal contexts and the dependencies relation, in that order.
type Document struct {
	Classes      *FormalContext
	Types        *FormalContext
	Dependencies *RelationalContext
}

func newIncidence(rows, cols int) [][]bool {
	m := make([][]bool, rows)
	for i := range m {
		m[i] = make([]bool, cols)
	}
	return m
}

func indexOf(items []string, s string) int {
	for i, item := range items {
		if item == s {
			return i
		}
	}
	return -1
}

// orderedSet keeps first-seen order and drops duplicates.
type orderedSet struct {
	items []string
	seen  map[string]struct{}
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: make(map[string]struct{})}
}

func (s *orderedSet) add(item string) {
	if _, ok := s.seen[item]; ok {
		return
	}
	s.seen[item] = struct{}{}
	s.items = append(s.items, item)
}
