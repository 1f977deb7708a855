package typegen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func canonicalizeDoc(t *testing.T, doc string) (*canonicalGraph, SchemaRef) {
	t.Helper()
	g := buildRawGraph(t, doc, nil)
	out, err := Canonicalize(g)
	require.NoError(t, err)
	return out, g.Root
}

func TestResolveNames_UsesTitleWhenPresent(t *testing.T) {
	graph, root := canonicalizeDoc(t, `{
		"title": "Veggie",
		"type": "object",
		"properties": {"name": {"type": "string"}}
	}`)
	names := ResolveNames(graph, root, map[string]bool{})
	name, ok := names.NameOf(root)
	require.True(t, ok)
	assert.Equal(t, "Veggie", name)
}

func TestResolveNames_NestedPropertyGetsSuggestedName(t *testing.T) {
	g := buildRawGraph(t, `{
		"title": "Widget",
		"type": "object",
		"properties": {
			"color": {"type": "string", "enum": ["red", "green"]}
		}
	}`, map[string]string{
		"root/properties/color": `{"type": "string", "enum": ["red", "green"]}`,
	})
	graph, err := Canonicalize(g)
	require.NoError(t, err)
	root := g.Root
	names := ResolveNames(graph, root, map[string]bool{})

	sl, _ := graph.Get(root)
	sv, _ := sl.Details.AsValue()
	colorRef, _ := sv.Properties.Get("color")

	name, ok := names.NameOf(colorRef)
	require.True(t, ok)
	assert.Equal(t, "WidgetColor", name)
}

func TestResolveNames_CollisionGetsAscendingSuffix(t *testing.T) {
	taken := map[string]bool{"Widget": true}
	graph, root := canonicalizeDoc(t, `{"title": "Widget", "type": "object", "properties": {"name": {"type": "string"}}}`)
	names := ResolveNames(graph, root, taken)
	name, ok := names.NameOf(root)
	require.True(t, ok)
	assert.Equal(t, "Widget2", name)
}

func TestNeedsName_PlainStringDoesNotNeedName(t *testing.T) {
	graph, root := canonicalizeDoc(t, `{"type": "string"}`)
	sl, _ := graph.Get(root)
	assert.False(t, needsName(sl))
}

func TestNeedsName_PatternConstrainedStringNeedsName(t *testing.T) {
	graph, root := canonicalizeDoc(t, `{"type": "string", "pattern": "^[0-9]+$"}`)
	sl, _ := graph.Get(root)
	assert.True(t, needsName(sl))
}

func TestNeedsName_ObjectAlwaysNeedsName(t *testing.T) {
	graph, root := canonicalizeDoc(t, `{"type": "object"}`)
	sl, _ := graph.Get(root)
	assert.True(t, needsName(sl))
}

func TestNeedsName_ExclusiveOneOfNeedsName(t *testing.T) {
	graph, root := canonicalizeDoc(t, `{"anyOf": [{"type": "string"}, {"type": "integer"}]}`)
	sl, _ := graph.Get(root)
	assert.True(t, needsName(sl))
}

func TestLastPointerSegment(t *testing.T) {
	assert.Equal(t, "name", lastPointerSegment("/properties/name"))
	assert.Equal(t, "", lastPointerSegment(""))
	assert.Equal(t, "0", lastPointerSegment("/anyOf/0"))
}

func TestIsNumeric(t *testing.T) {
	assert.True(t, isNumeric("123"))
	assert.False(t, isNumeric("12a"))
	assert.False(t, isNumeric(""))
}
