package model

// Classifier is a named class-like entity: an ordinary class or a synthesized
// concept (abstract class or interface). Supertypes are stored by name and
// resolved through the owning ClassModel.
type Classifier struct {
	Name       string
	Abstract   bool
	Interface  bool
	Attributes []*Attribute
	Operations []*Operation
	SuperTypes []string
	Ext        Extension
}

// NewClass creates an empty, concrete, non-interface classifier.
func NewClass(name string) *Classifier {
	return &Classifier{Name: name}
}

// FindAttribute returns the directly owned attribute with the given name.
func (c *Classifier) FindAttribute(name string) *Attribute {
	for _, a := range c.Attributes {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// FindOperation returns the first directly owned operation with the given name.
func (c *Classifier) FindOperation(name string) *Operation {
	for _, o := range c.Operations {
		if o.Name == name {
			return o
		}
	}
	return nil
}

// AddAttribute appends an attribute and takes ownership of it.
func (c *Classifier) AddAttribute(a *Attribute) {
	a.Owner = c.Name
	c.Attributes = append(c.Attributes, a)
}

// AddOperation appends an operation and takes ownership of it.
func (c *Classifier) AddOperation(o *Operation) {
	o.Owner = c.Name
	c.Operations = append(c.Operations, o)
}

// RemoveAttribute removes the first attribute with the given name and
// returns it, or nil if there is none.
func (c *Classifier) RemoveAttribute(name string) *Attribute {
	for i, a := range c.Attributes {
		if a.Name == name {
			c.Attributes = append(c.Attributes[:i:i], c.Attributes[i+1:]...)
			return a
		}
	}
	return nil
}

// RemoveOperation removes the first operation with the given name and
// returns it, or nil if there is none.
func (c *Classifier) RemoveOperation(name string) *Operation {
	for i, o := range c.Operations {
		if o.Name == name {
			c.Operations = append(c.Operations[:i:i], c.Operations[i+1:]...)
			return o
		}
	}
	return nil
}

// HasSuperType reports whether name is already listed as a supertype.
func (c *Classifier) HasSuperType(name string) bool {
	for _, s := range c.SuperTypes {
		if s == name {
			return true
		}
	}
	return false
}

// AddSuperType appends a supertype reference. Duplicates are allowed; callers
// that want a set check HasSuperType first.
func (c *Classifier) AddSuperType(name string) {
	c.SuperTypes = append(c.SuperTypes, name)
}

// DependsOn reports whether any owned feature declares the named type.
func (c *Classifier) DependsOn(typeName string) bool {
	for _, a := range c.Attributes {
		if a.Type.Name == typeName {
			return true
		}
	}
	for _, o := range c.Operations {
		if o.Type.Name == typeName {
			return true
		}
	}
	return false
}

// HasProperty reports whether the classifier directly owns a feature whose
// signature equals sig.
func (c *Classifier) HasProperty(sig string) bool {
	for _, a := range c.Attributes {
		if a.Signature() == sig {
			return true
		}
	}
	for _, o := range c.Operations {
		if o.Signature() == sig {
			return true
		}
	}
	return false
}

// MoveOperation transfers ownership of the named operation from src to dst.
// It returns the moved operation, or nil if src has no such operation.
func MoveOperation(src, dst *Classifier, name string) *Operation {
	op := src.RemoveOperation(name)
	if op == nil {
		return nil
	}
	dst.AddOperation(op)
	return op
}

// MoveAttribute transfers ownership of the named attribute from src to dst.
// It returns the moved attribute, or nil if src has no such attribute.
func MoveAttribute(src, dst *Classifier, name string) *Attribute {
	attr := src.RemoveAttribute(name)
	if attr == nil {
		return nil
	}
	dst.AddAttribute(attr)
	return attr
}
