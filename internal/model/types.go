// Package model defines the in-memory class model that hoist analyzes and
// rewrites: classifiers with attributes, operations and named supertypes.
package model

// primitiveTypes lists the type names treated as primitives.
var primitiveTypes = map[string]struct{}{
	"EInt":     {},
	"EString":  {},
	"EBoolean": {},
	"EDouble":  {},
	"int":      {},
	"boolean":  {},
	"String":   {},
}

// TypeRef refers to a declared type by name.
type TypeRef struct {
	Name string
}

// IsPrimitive reports whether the referenced type is a primitive.
func (t TypeRef) IsPrimitive() bool {
	_, ok := primitiveTypes[t.Name]
	return ok
}

// IsZero reports whether no type is declared.
func (t TypeRef) IsZero() bool {
	return t.Name == ""
}

// Extension is format-specific content a store attaches to a model element so
// the element can be written back with everything the model does not represent.
// The model never inspects it; it travels with the element when ownership moves.
type Extension any

// Attribute is a structural feature owned by exactly one classifier.
type Attribute struct {
	Name  string
	Owner string // Name of the owning classifier
	Type  TypeRef
	Ext   Extension
}

// Signature returns the attribute's property signature (its bare name).
func (a *Attribute) Signature() string {
	return a.Name
}

// Operation is a behavioral feature owned by exactly one classifier.
type Operation struct {
	Name  string
	Owner string // Name of the owning classifier
	Type  TypeRef
	Ext   Extension
}

// Signature returns the operation's property signature: the name suffixed
// with an empty parameter list, so it never collides with an attribute.
func (o *Operation) Signature() string {
	return o.Name + EmptyParams
}

// EmptyParams is the marker appended to operation signatures.
const EmptyParams = "()"
