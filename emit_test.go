package typegen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// generateSource runs the full pipeline over a schema document and returns the emitted Go
// source, failing the test on any pipeline error.
func generateSource(t *testing.T, schema string, settings Settings) string {
	t.Helper()
	ts := New(settings)
	_, err := ts.AddRootSchema([]byte(schema))
	require.NoError(t, err)
	src, err := ts.ToTokenStream()
	require.NoError(t, err)
	return src
}

// Grounded on spec.md §8's "Veggie" scenario: a plain object with required and optional
// properties lowers to a single named struct with encoding/json-compatible tags.
func TestEmit_Veggie(t *testing.T) {
	src := generateSource(t, `{
		"title": "Veggie",
		"type": "object",
		"properties": {
			"veggieName": {"type": "string"},
			"veggieLike": {"type": "boolean"}
		},
		"required": ["veggieName", "veggieLike"]
	}`, Settings{})

	assert.Contains(t, src, "type Veggie struct")
	assert.Contains(t, src, `json:"veggieName"`)
	assert.Contains(t, src, `json:"veggieLike"`)
}

// Grounded on spec.md §8's "Enum with default" scenario: a string property with both "enum" and
// "default" lowers to a named string-enum type plus a DefaultX accessor.
func TestEmit_EnumWithDefault(t *testing.T) {
	src := generateSource(t, `{
		"title": "Widget",
		"type": "object",
		"properties": {
			"color": {
				"title": "Color",
				"type": "string",
				"enum": ["red", "green", "blue"],
				"default": "red"
			}
		}
	}`, Settings{})

	assert.Contains(t, src, "type Color string")
	assert.Contains(t, src, "ColorRed Color")
	assert.Contains(t, src, "ValidColor(v Color) bool")
	assert.Contains(t, src, "func DefaultWidgetColor() any")
}

// Grounded on spec.md §8's "Pattern newtype" scenario: a string with only a pattern constraint
// lowers to a constrained newtype with a fallible constructor.
func TestEmit_PatternNewtype(t *testing.T) {
	src := generateSource(t, `{
		"title": "ZipCode",
		"type": "string",
		"pattern": "^[0-9]{5}$"
	}`, Settings{})

	assert.Contains(t, src, "type ZipCode struct")
	assert.Contains(t, src, "func NewZipCode(v string) (ZipCode, error)")
	assert.Contains(t, src, "regexp.MustCompile")
	assert.Contains(t, src, "func (v ZipCode) Value() string")
}

// Grounded on spec.md §8's "Untagged union of strings" scenario: anyOf branches of different
// primitive types (string, number) with no discriminating shape lower to an Untagged sum-type enum.
func TestEmit_UntaggedStringUnion(t *testing.T) {
	src := generateSource(t, `{
		"title": "StringOrNumber",
		"anyOf": [
			{"type": "string"},
			{"type": "number"}
		]
	}`, Settings{})

	assert.Contains(t, src, "type StringOrNumber struct")
	assert.Contains(t, src, "func (v StringOrNumber) MarshalJSON() ([]byte, error)")
	assert.Contains(t, src, "func (v *StringOrNumber) UnmarshalJSON(data []byte) error")
}

// Grounded on spec.md §8's "Recursive node" scenario: a self-referential object property
// requires the recursive field to be boxed with a pointer so the struct has a finite size.
func TestEmit_RecursiveNode(t *testing.T) {
	src := generateSource(t, `{
		"title": "Node",
		"type": "object",
		"$defs": {},
		"properties": {
			"value": {"type": "integer"},
			"next": {"$ref": "#"}
		}
	}`, Settings{})

	assert.Contains(t, src, "type Node struct")
	assert.True(t, strings.Contains(src, "Next *Node") || strings.Contains(src, "*Node `json:"),
		"expected the self-referential field to be pointer-boxed, got:\n%s", src)
}

func TestEmit_Determinism(t *testing.T) {
	schema := `{
		"title": "Sortable",
		"type": "object",
		"properties": {
			"zeta": {"type": "string"},
			"alpha": {"type": "string"},
			"mu": {"type": "string"}
		}
	}`
	first := generateSource(t, schema, Settings{})
	second := generateSource(t, schema, Settings{})
	assert.Equal(t, first, second)
}

func TestEmit_ConstantNewtype(t *testing.T) {
	src := generateSource(t, `{
		"title": "Kind",
		"type": "object",
		"properties": {
			"kind": {"const": "widget"}
		}
	}`, Settings{})

	assert.Contains(t, src, "MarshalJSON")
	assert.Contains(t, src, "widget")
}

func TestEmit_Builder(t *testing.T) {
	src := generateSource(t, `{
		"title": "Profile",
		"type": "object",
		"properties": {
			"name": {"type": "string"}
		},
		"required": ["name"]
	}`, Settings{StructBuilder: true})

	assert.Contains(t, src, "type ProfileBuilder struct")
	assert.Contains(t, src, "func NewProfileBuilder() *ProfileBuilder")
	assert.Contains(t, src, "func (b *ProfileBuilder) Build() (Profile, error)")
}
