package rcft

import (
	"github.com/mvp-joe/project-hoist/internal/model"
)

// Extract projects a class model into its context document. It only reads
// the model, and repeated calls on an unchanged model produce identical
// documents. Only directly owned features are considered; inherited ones are
// not traversed.
func Extract(m *model.ClassModel) *Document {
	classifiers := m.Classifiers()

	properties := newOrderedSet()
	types := newOrderedSet()
	names := make([]string, 0, len(classifiers))

	for _, c := range classifiers {
		names = append(names, c.Name)
		for _, a := range c.Attributes {
			properties.add(a.Signature())
			if !a.Type.IsZero() {
				types.add(a.Type.Name)
			}
		}
		for _, o := range c.Operations {
			properties.add(o.Signature())
			if !o.Type.IsZero() {
				types.add(o.Type.Name)
			}
		}
	}

	doc := &Document{
		Classes: NewFormalContext(ClassesContext, names, properties.items),
		Types:   NewFormalContext(TypesContext, types.items, []string{AttrIsPrimitive, AttrIsObject}),
		Dependencies: NewRelationalContext(DependenciesRelation, ClassesContext, TypesContext, ScalingExist,
			names, types.items),
	}

	for i, c := range classifiers {
		for j, sig := range properties.items {
			if c.HasProperty(sig) {
				doc.Classes.Set(i, j)
			}
		}
		for j, typeName := range types.items {
			if c.DependsOn(typeName) {
				doc.Dependencies.Set(i, j)
			}
		}
	}

	for i, typeName := range types.items {
		if (model.TypeRef{Name: typeName}).IsPrimitive() {
			doc.Types.Set(i, 0)
		} else {
			doc.Types.Set(i, 1)
		}
	}

	return doc
}
