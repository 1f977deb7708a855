package typegen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyPatches_Rename(t *testing.T) {
	ts := New(Settings{
		Patches: map[string]PatchSpec{
			"Widget": {Rename: "Gadget", ExtraDerives: []string{"comparable"}},
		},
	})
	id, err := ts.AddRootSchema([]byte(`{"title": "Widget", "type": "object", "properties": {"name": {"type": "string"}}}`))
	require.NoError(t, err)

	typ, ok := ts.lookup(id)
	require.True(t, ok)
	assert.Equal(t, "Gadget", typ.Name)
	assert.Contains(t, typ.Aliases, "comparable")

	_, staleOk := ts.byName["Widget"]
	assert.False(t, staleOk)
	renamedId, renamedOk := ts.byName["Gadget"]
	require.True(t, renamedOk)
	assert.Equal(t, id, renamedId)
}

func TestApplyPatches_Replacement(t *testing.T) {
	ts := New(Settings{
		Replacements: map[string]ReplacementSpec{
			"Widget": {ImportPath: "github.com/google/uuid", TypeExpr: "uuid.UUID"},
		},
	})
	id, err := ts.AddRootSchema([]byte(`{"title": "Widget", "type": "object"}`))
	require.NoError(t, err)

	typ, ok := ts.lookup(id)
	require.True(t, ok)
	assert.Equal(t, TypeNative, typ.Kind)
	assert.Equal(t, "github.com/google/uuid", typ.NativeImportPath)
	assert.Equal(t, "uuid.UUID", typ.NativeExpr)
}

func TestApplyPatches_ConversionMatchesStructurally(t *testing.T) {
	ts := New(Settings{
		Conversions: []ConversionSpec{
			{
				Schema:     []byte(`{"type": "string", "format": "date-time"}`),
				ImportPath: "time",
				TypeExpr:   "time.Time",
			},
		},
	})
	id, err := ts.AddRootSchema([]byte(`{"title": "CreatedAt", "type": "string", "format": "date-time"}`))
	require.NoError(t, err)

	typ, ok := ts.lookup(id)
	require.True(t, ok)
	assert.Equal(t, TypeNative, typ.Kind)
	assert.Equal(t, "time.Time", typ.NativeExpr)
}

func TestApplyPatches_ConversionDoesNotMatchDifferentSchema(t *testing.T) {
	ts := New(Settings{
		Conversions: []ConversionSpec{
			{
				Schema:     []byte(`{"type": "string", "format": "date-time"}`),
				ImportPath: "time",
				TypeExpr:   "time.Time",
			},
		},
	})
	id, err := ts.AddRootSchema([]byte(`{"title": "Label", "type": "string"}`))
	require.NoError(t, err)

	typ, ok := ts.lookup(id)
	require.True(t, ok)
	assert.NotEqual(t, TypeNative, typ.Kind)
}
