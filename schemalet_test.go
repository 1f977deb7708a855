package typegen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetails_Accessors(t *testing.T) {
	c := ConstantDetails("widget")
	v, ok := c.AsConstant()
	assert.True(t, ok)
	assert.Equal(t, "widget", v)
	_, ok = c.AsReference()
	assert.False(t, ok)

	ref := NewSymbolRef("Target")
	r := ReferenceDetails(ref)
	got, ok := r.AsReference()
	assert.True(t, ok)
	assert.Equal(t, ref, got)

	branches := []SchemaRef{NewSymbolRef("A"), NewSymbolRef("B")}
	disc := &Discriminant{PropertyName: "kind"}
	oneOf := ExclusiveOneOfDetails(branches, disc)
	gotBranches, gotDisc, ok := oneOf.AsExclusiveOneOf()
	assert.True(t, ok)
	assert.Equal(t, branches, gotBranches)
	assert.Same(t, disc, gotDisc)

	sv := &SchemaletValue{Kind: ValueString}
	val := ValueDetails(sv)
	gotVal, ok := val.AsValue()
	assert.True(t, ok)
	assert.Same(t, sv, gotVal)
}

func TestDetailsKind_String(t *testing.T) {
	assert.Equal(t, "Anything", DetailsAnything.String())
	assert.Equal(t, "Reference", DetailsReference.String())
	assert.Contains(t, DetailsKind(99).String(), "DetailsKind(99)")
}

func TestAdditionalProperties_States(t *testing.T) {
	allowed := AllowedAdditionalProperties()
	assert.True(t, allowed.IsAllowed())
	assert.False(t, allowed.IsForbidden())

	forbidden := ForbiddenAdditionalProperties()
	assert.True(t, forbidden.IsForbidden())

	ref := NewSymbolRef("Extra")
	typed := TypedAdditionalProperties(ref)
	got, ok := typed.Schema()
	assert.True(t, ok)
	assert.Equal(t, ref, got)

	_, ok = allowed.Schema()
	assert.False(t, ok)
}

func TestOrderedSchemaRefMap_PreservesInsertionOrder(t *testing.T) {
	m := newOrderedSchemaRefMap()
	m.Set("zeta", NewSymbolRef("Z"))
	m.Set("alpha", NewSymbolRef("A"))
	m.Set("mu", NewSymbolRef("M"))

	assert.Equal(t, []string{"zeta", "alpha", "mu"}, m.Keys())
	assert.Equal(t, 3, m.Len())

	v, ok := m.Get("alpha")
	assert.True(t, ok)
	assert.Equal(t, NewSymbolRef("A"), v)
}

func TestOrderedSchemaRefMap_ReinsertDoesNotReorder(t *testing.T) {
	m := newOrderedSchemaRefMap()
	m.Set("a", NewSymbolRef("1"))
	m.Set("b", NewSymbolRef("2"))
	m.Set("a", NewSymbolRef("3"))

	assert.Equal(t, []string{"a", "b"}, m.Keys())
	v, _ := m.Get("a")
	assert.Equal(t, NewSymbolRef("3"), v)
}

func TestAppendOnlyMap_InsertAndGet(t *testing.T) {
	m := newAppendOnlyMap[string, int]()
	m.Insert("a", 1)
	m.Insert("b", 2)

	v, ok := m.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	assert.Equal(t, []string{"a", "b"}, m.Keys())
	assert.Equal(t, 2, m.Len())
	assert.True(t, m.Has("b"))
	assert.False(t, m.Has("z"))
}

func TestAppendOnlyMap_InsertPanicsOnDuplicate(t *testing.T) {
	m := newAppendOnlyMap[string, int]()
	m.Insert("a", 1)
	assert.Panics(t, func() { m.Insert("a", 2) })
}

func TestAppendOnlyMap_Overwrite(t *testing.T) {
	m := newAppendOnlyMap[string, int]()
	m.Insert("a", 1)
	m.Overwrite("a", 42)
	v, _ := m.Get("a")
	assert.Equal(t, 42, v)
	assert.Equal(t, []string{"a"}, m.Keys())
}

func TestAppendOnlyMap_OverwritePanicsOnAbsentKey(t *testing.T) {
	m := newAppendOnlyMap[string, int]()
	assert.Panics(t, func() { m.Overwrite("missing", 1) })
}
