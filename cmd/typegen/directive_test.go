package main

import (
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const directiveFixtureSource = `package widgets

//typegen:schema widget.schema.json
type Widget struct {
	Name string
}

// An undirected type should be skipped.
type Plain struct {
	X int
}

//typegen:schema ./nested/color.schema.json
type Color string
`

func writeFixture(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "widgets.go")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestScanDirectives_FindsOnlyAnnotatedTypes(t *testing.T) {
	path := writeFixture(t, directiveFixtureSource)
	found, err := scanDirectives(path)
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, schemaDirective{TypeName: "Widget", Source: "widget.schema.json"}, found[0])
	assert.Equal(t, schemaDirective{TypeName: "Color", Source: "./nested/color.schema.json"}, found[1])
}

func TestScanDirectives_NoDirectivesReturnsEmpty(t *testing.T) {
	path := writeFixture(t, "package widgets\n\ntype Plain struct{ X int }\n")
	found, err := scanDirectives(path)
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestDirectiveSource_MatchesPrefixedComment(t *testing.T) {
	doc := &ast.CommentGroup{List: []*ast.Comment{
		{Text: "// unrelated comment"},
		{Text: "//typegen:schema foo.json"},
	}}
	source, ok := directiveSource(doc)
	assert.True(t, ok)
	assert.Equal(t, "foo.json", source)
}

func TestDirectiveSource_NilDocReturnsFalse(t *testing.T) {
	_, ok := directiveSource(nil)
	assert.False(t, ok)
}

func TestDirectiveSource_NoMatchingCommentReturnsFalse(t *testing.T) {
	doc := &ast.CommentGroup{List: []*ast.Comment{{Text: "// just a regular doc comment"}}}
	_, ok := directiveSource(doc)
	assert.False(t, ok)
}

func TestPackageNameOf_ReadsPackageClause(t *testing.T) {
	path := writeFixture(t, directiveFixtureSource)
	name, err := packageNameOf(path)
	require.NoError(t, err)
	assert.Equal(t, "widgets", name)
}

func TestPackageNameOf_ErrorsOnUnparsableFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.go")
	require.NoError(t, os.WriteFile(path, []byte("not valid go"), 0o644))
	_, err := packageNameOf(path)
	assert.Error(t, err)
}

// sanity-check the fixture itself parses as valid Go, so a future edit to directiveFixtureSource
// that breaks syntax fails loudly here rather than inside scanDirectives's own error path.
func TestFixtureParses(t *testing.T) {
	fset := token.NewFileSet()
	_, err := parser.ParseFile(fset, "widgets.go", directiveFixtureSource, parser.ParseComments)
	require.NoError(t, err)
}
