package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/typelift/typegen"
)

func writePatchFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "patch.json")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestApplyPatchFile_MergesScalarFields(t *testing.T) {
	path := writePatchFile(t, `{
		"mapType": "orderedmap.OrderedMap[string, any]",
		"structBuilder": true,
		"derives": ["comparable"]
	}`)

	settings := &typegen.Settings{}
	require.NoError(t, applyPatchFile(settings, path))

	assert.Equal(t, "orderedmap.OrderedMap[string, any]", settings.MapType)
	assert.True(t, settings.StructBuilder)
	assert.Equal(t, []string{"comparable"}, settings.Derives)
}

func TestApplyPatchFile_MergesIntoExistingMaps(t *testing.T) {
	path := writePatchFile(t, `{
		"patches": {"Widget": {"rename": "Gadget"}},
		"replacements": {"Id": {"importPath": "github.com/google/uuid", "typeExpr": "uuid.UUID"}},
		"packages": {"acme": {"importPath": "github.com/acme/types"}}
	}`)

	settings := &typegen.Settings{
		Patches: map[string]typegen.PatchSpec{
			"Other": {Rename: "Kept"},
		},
	}
	require.NoError(t, applyPatchFile(settings, path))

	require.Contains(t, settings.Patches, "Other")
	require.Contains(t, settings.Patches, "Widget")
	assert.Equal(t, "Gadget", settings.Patches["Widget"].Rename)
	assert.Equal(t, "Kept", settings.Patches["Other"].Rename)

	require.Contains(t, settings.Replacements, "Id")
	assert.Equal(t, "uuid.UUID", settings.Replacements["Id"].TypeExpr)

	require.Contains(t, settings.Packages, "acme")
	assert.Equal(t, "github.com/acme/types", settings.Packages["acme"].ImportPath)
}

func TestApplyPatchFile_DoesNotClearStructBuilderWhenFalse(t *testing.T) {
	path := writePatchFile(t, `{"structBuilder": false}`)
	settings := &typegen.Settings{StructBuilder: true}
	require.NoError(t, applyPatchFile(settings, path))
	assert.True(t, settings.StructBuilder)
}

func TestApplyPatchFile_MissingFileErrors(t *testing.T) {
	settings := &typegen.Settings{}
	err := applyPatchFile(settings, filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestApplyPatchFile_InvalidJSONErrors(t *testing.T) {
	path := writePatchFile(t, `{not json`)
	settings := &typegen.Settings{}
	err := applyPatchFile(settings, path)
	assert.Error(t, err)
}
