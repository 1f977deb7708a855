package typegen

import (
	"testing"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromGoogleSchema_NilBecomesBooleanTrue(t *testing.T) {
	out := FromGoogleSchema(nil)
	require.NotNil(t, out.Boolean)
	assert.True(t, *out.Boolean)
}

func TestFromGoogleSchema_ScalarFields(t *testing.T) {
	src := &jsonschema.Schema{
		Title:       "Widget",
		Description: "a widget",
		Type:        "string",
	}
	out := FromGoogleSchema(src)
	require.NotNil(t, out.Title)
	assert.Equal(t, "Widget", *out.Title)
	require.NotNil(t, out.Description)
	assert.Equal(t, "a widget", *out.Description)
	assert.Equal(t, RawSchemaType{"string"}, out.Type)
}

func TestFromGoogleSchema_PropertiesAndRequiredCarriedOver(t *testing.T) {
	src := &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"b": {Type: "string"},
			"a": {Type: "integer"},
		},
		PropertyOrder: []string{"b", "a"},
		Required:      []string{"a"},
	}
	out := FromGoogleSchema(src)
	require.NotNil(t, out.Properties)
	props := *out.Properties
	require.Contains(t, props, "a")
	require.Contains(t, props, "b")
	assert.Equal(t, RawSchemaType{"integer"}, props["a"].Type)
	assert.Equal(t, RawSchemaType{"string"}, props["b"].Type)
	assert.Equal(t, []string{"a"}, out.Required)
}

func TestFromGoogleSchema_ItemsAndAdditionalProperties(t *testing.T) {
	src := &jsonschema.Schema{
		Type:                 "array",
		Items:                &jsonschema.Schema{Type: "string"},
		AdditionalProperties: &jsonschema.Schema{Type: "boolean"},
	}
	out := FromGoogleSchema(src)
	require.NotNil(t, out.Items)
	assert.Equal(t, RawSchemaType{"string"}, out.Items.Type)
	require.NotNil(t, out.AdditionalProperties)
	assert.Equal(t, RawSchemaType{"boolean"}, out.AdditionalProperties.Type)
}

func TestFromGoogleSchema_RefIsCarriedVerbatim(t *testing.T) {
	src := &jsonschema.Schema{Ref: "#/$defs/Name"}
	out := FromGoogleSchema(src)
	assert.Equal(t, "#/$defs/Name", out.Ref)
}
