package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for ClassModel:
// - Add preserves insertion order and rejects duplicate names
// - Add assigns feature ownership to the classifier
// - Signatures distinguish attributes from operations of the same name
// - Primitive detection matches the fixed primitive set only
// - MoveOperation/MoveAttribute transfer ownership (never owned twice)
// - Remove helpers return nil when nothing matches
// - Validate reports dangling supertypes and inheritance cycles

func TestClassModel_AddPreservesOrder(t *testing.T) {
	t.Parallel()

	m := New("transport")
	for _, name := range []string{"Car", "Truck", "Bike"} {
		require.NoError(t, m.Add(NewClass(name)))
	}

	var names []string
	for _, c := range m.Classifiers() {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"Car", "Truck", "Bike"}, names)
	assert.Equal(t, 3, m.Len())

	err := m.Add(NewClass("Car"))
	require.ErrorIs(t, err, ErrDuplicateClassifier)
	assert.Equal(t, 3, m.Len())
}

func TestClassModel_AddRejectsUnnamed(t *testing.T) {
	t.Parallel()

	m := New("p")
	assert.Error(t, m.Add(&Classifier{}))
	assert.Error(t, m.Add(nil))
}

func TestClassModel_AddAssignsOwnership(t *testing.T) {
	t.Parallel()

	c := &Classifier{
		Name:       "Car",
		Attributes: []*Attribute{{Name: "speed", Type: TypeRef{Name: "EInt"}}},
		Operations: []*Operation{{Name: "drive"}},
	}
	m := New("p")
	require.NoError(t, m.Add(c))

	assert.Equal(t, "Car", c.Attributes[0].Owner)
	assert.Equal(t, "Car", c.Operations[0].Owner)

	got, ok := m.Lookup("Car")
	require.True(t, ok)
	assert.Same(t, c, got)

	_, ok = m.Lookup("Plane")
	assert.False(t, ok)
}

func TestSignatures(t *testing.T) {
	t.Parallel()

	attr := &Attribute{Name: "start"}
	op := &Operation{Name: "start"}

	assert.Equal(t, "start", attr.Signature())
	assert.Equal(t, "start()", op.Signature())

	c := NewClass("Engine")
	c.AddOperation(op)
	assert.True(t, c.HasProperty("start()"))
	assert.False(t, c.HasProperty("start"))
}

func TestTypeRef_IsPrimitive(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want bool
	}{
		{"EInt", true},
		{"EString", true},
		{"EBoolean", true},
		{"EDouble", true},
		{"int", true},
		{"boolean", true},
		{"String", true},
		{"Integer", false},
		{"string", false},
		{"Engine", false},
		{"", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, TypeRef{Name: tt.name}.IsPrimitive())
		})
	}
}

func TestMoveOperation_TransfersOwnership(t *testing.T) {
	t.Parallel()

	src := NewClass("Truck")
	src.AddOperation(&Operation{Name: "ship"})
	src.AddOperation(&Operation{Name: "haul"})
	dst := NewClass("Carrier")

	moved := MoveOperation(src, dst, "ship")
	require.NotNil(t, moved)
	assert.Equal(t, "Carrier", moved.Owner)
	assert.Nil(t, src.FindOperation("ship"))
	assert.Same(t, moved, dst.FindOperation("ship"))
	assert.Len(t, src.Operations, 1)

	assert.Nil(t, MoveOperation(src, dst, "ship"))
}

func TestMoveAttribute_TransfersOwnership(t *testing.T) {
	t.Parallel()

	src := NewClass("Truck")
	src.AddAttribute(&Attribute{Name: "weight", Type: TypeRef{Name: "int"}})
	dst := NewClass("Carrier")

	moved := MoveAttribute(src, dst, "weight")
	require.NotNil(t, moved)
	assert.Equal(t, "Carrier", moved.Owner)
	assert.Empty(t, src.Attributes)
	assert.Equal(t, "int", dst.Attributes[0].Type.Name)

	assert.Nil(t, MoveAttribute(src, dst, "missing"))
}

func TestRemoveKeepsOtherFeatures(t *testing.T) {
	t.Parallel()

	c := NewClass("Car")
	c.AddAttribute(&Attribute{Name: "a"})
	c.AddAttribute(&Attribute{Name: "b"})
	c.AddAttribute(&Attribute{Name: "c"})

	removed := c.RemoveAttribute("b")
	require.NotNil(t, removed)
	require.Len(t, c.Attributes, 2)
	assert.Equal(t, "a", c.Attributes[0].Name)
	assert.Equal(t, "c", c.Attributes[1].Name)
	assert.Nil(t, c.RemoveOperation("b"))
}

func TestDependsOn(t *testing.T) {
	t.Parallel()

	c := NewClass("Car")
	c.AddAttribute(&Attribute{Name: "engine", Type: TypeRef{Name: "Engine"}})
	c.AddOperation(&Operation{Name: "speed", Type: TypeRef{Name: "EInt"}})

	assert.True(t, c.DependsOn("Engine"))
	assert.True(t, c.DependsOn("EInt"))
	assert.False(t, c.DependsOn("EString"))
}

func TestValidate_Valid(t *testing.T) {
	t.Parallel()

	m := New("p")
	vehicle := NewClass("Vehicle")
	vehicle.Abstract = true
	car := NewClass("Car")
	car.AddSuperType("Vehicle")
	car.AddSuperType("Vehicle") // duplicate links are tolerated
	require.NoError(t, m.Add(vehicle))
	require.NoError(t, m.Add(car))

	assert.NoError(t, Validate(m))
}

func TestValidate_DanglingSuperType(t *testing.T) {
	t.Parallel()

	m := New("p")
	car := NewClass("Car")
	car.AddSuperType("Ghost")
	require.NoError(t, m.Add(car))

	err := Validate(m)
	require.ErrorIs(t, err, ErrDanglingSuperType)
	assert.Contains(t, err.Error(), "Car extends Ghost")
}

func TestValidate_Cycle(t *testing.T) {
	t.Parallel()

	m := New("p")
	a := NewClass("A")
	b := NewClass("B")
	a.AddSuperType("B")
	b.AddSuperType("A")
	require.NoError(t, m.Add(a))
	require.NoError(t, m.Add(b))

	err := Validate(m)
	require.ErrorIs(t, err, ErrInheritanceCycle)
}

func TestValidate_EmptyModel(t *testing.T) {
	t.Parallel()

	assert.NoError(t, Validate(New("empty")))
}
