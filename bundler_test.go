package typegen

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustRawSchema(t *testing.T, doc string) *RawSchema {
	t.Helper()
	s, err := newRawSchema([]byte(doc))
	require.NoError(t, err)
	return s
}

func TestBundler_Resolve_LocalRef(t *testing.T) {
	root := mustRawSchema(t, `{
		"$defs": {"name": {"type": "string"}},
		"properties": {"who": {"$ref": "#/$defs/name"}}
	}`)
	b := NewBundler(nil)
	b.AddDocument("root.json", root)

	nameSchema := root.Defs["name"]
	target, err := b.Resolve(context.Background(), root, "#/$defs/name")
	require.NoError(t, err)
	assert.Same(t, nameSchema, target)
}

func TestBundler_Resolve_RootRef(t *testing.T) {
	root := mustRawSchema(t, `{"type": "object"}`)
	b := NewBundler(nil)
	b.AddDocument("root.json", root)

	target, err := b.Resolve(context.Background(), root, "#")
	require.NoError(t, err)
	assert.Same(t, root, target)
}

func TestBundler_Resolve_DanglingRef(t *testing.T) {
	root := mustRawSchema(t, `{"$defs": {}}`)
	b := NewBundler(nil)
	b.AddDocument("root.json", root)

	_, err := b.Resolve(context.Background(), root, "#/$defs/missing")
	require.Error(t, err)
	var dangling *DanglingRefError
	assert.ErrorAs(t, err, &dangling)
}

func TestBundler_Resolve_CrossDocument(t *testing.T) {
	loader := MapLoader{
		"other.json": []byte(`{"type": "string"}`),
	}
	b := NewBundler(loader)
	root := mustRawSchema(t, `{"properties": {"name": {"$ref": "other.json"}}}`)
	b.AddDocument("root.json", root)

	target, err := b.Resolve(context.Background(), root, "other.json")
	require.NoError(t, err)
	require.NotNil(t, target.Type)
	assert.Equal(t, "string", target.Type[0])
}

func TestBundle_FlattensReachableSchemas(t *testing.T) {
	root := mustRawSchema(t, `{
		"$id": "https://example.com/widget.json",
		"type": "object",
		"properties": {
			"name": {"type": "string"},
			"tags": {"type": "array", "items": {"type": "string"}}
		}
	}`)
	b := NewBundler(nil)
	b.AddDocument(root.ID, root)

	graph, err := Bundle(context.Background(), b, root, root.ID)
	require.NoError(t, err)

	assert.Equal(t, RefOf(root, ""), graph.Root)

	_, ok := graph.Schemas.Get(graph.Root.Child("properties", "name"))
	assert.True(t, ok)
	_, ok = graph.Schemas.Get(graph.Root.Child("properties", "tags"))
	assert.True(t, ok)
	_, ok = graph.Schemas.Get(graph.Root.Child("properties", "tags").Child("items"))
	assert.True(t, ok)
}

func TestBundle_RecordsRefTargets(t *testing.T) {
	root := mustRawSchema(t, `{
		"$id": "https://example.com/node.json",
		"$defs": {"name": {"type": "string"}},
		"properties": {"who": {"$ref": "#/$defs/name"}}
	}`)
	b := NewBundler(nil)
	b.AddDocument(root.ID, root)

	graph, err := Bundle(context.Background(), b, root, root.ID)
	require.NoError(t, err)

	refNodeRef := graph.Root.Child("properties", "who")
	target, ok := graph.RefTargets[refNodeRef]
	require.True(t, ok)
	resolved, ok := graph.Schemas.Get(target)
	require.True(t, ok)
	assert.Equal(t, []string{"string"}, []string(resolved.Type))
}

func TestBundle_DeduplicatesCycles(t *testing.T) {
	root := mustRawSchema(t, `{
		"$id": "https://example.com/cyclic.json",
		"properties": {"next": {"$ref": "#"}}
	}`)
	b := NewBundler(nil)
	b.AddDocument(root.ID, root)

	graph, err := Bundle(context.Background(), b, root, root.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, graph.Schemas.Keys())
}
