package typegen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSchemaRef_IsSymbol(t *testing.T) {
	assert.True(t, NewSymbolRef("Widget").IsSymbol())
	assert.True(t, SchemaRef{}.IsSymbol())
	assert.False(t, NewDocumentRef("file:///a.json", "/properties/name").IsSymbol())
}

func TestSchemaRef_String(t *testing.T) {
	assert.Equal(t, "symbol:Widget", NewSymbolRef("Widget").String())
	assert.Equal(t, "symbol:<anonymous>", SchemaRef{}.String())
	assert.Equal(t, "file:///a.json#/properties/name", NewDocumentRef("file:///a.json", "/properties/name").String())
}

func TestSchemaRef_Child_Document(t *testing.T) {
	root := NewDocumentRef("file:///a.json", "")
	child := root.Child("properties", "name")
	assert.Equal(t, "/properties/name", child.Pointer)
	assert.Equal(t, "file:///a.json", child.DocumentURI)
}

func TestSchemaRef_Child_Symbol(t *testing.T) {
	root := NewSymbolRef("Widget")
	child := root.Child("oneOf", "0")
	assert.Equal(t, "Widget/oneOf/0", child.Symbol)
	assert.True(t, child.IsSymbol())
}

func TestSchemaRef_Child_EscapesPointerTokens(t *testing.T) {
	root := NewDocumentRef("file:///a.json", "")
	child := root.Child("a/b", "c~d")
	assert.Equal(t, "/a~1b/c~0d", child.Pointer)
}
