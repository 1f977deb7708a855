package main

import (
	"context"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"

	"github.com/typelift/typegen"
)

// schemaDirective names one `//typegen:schema <path>` magic comment found above a type
// declaration, the go:generate entry point's unit of work (SPEC_FULL.md §6). Grounded on the
// teacher's hasGoGenerateDirective (cmd/schemagen/analyzer.go), generalized from a bare presence
// check to one that also captures the directive's argument.
type schemaDirective struct {
	TypeName string
	Source   string
}

const directivePrefix = "//typegen:schema "

// scanDirectives walks file for every `//typegen:schema <path>` comment attached to a type
// declaration, the same go/ast + go/parser traversal the teacher's StructAnalyzer.analyzeFile
// uses to find //go:generate-annotated structs, generalized to any top-level type declaration
// (not just structs, since a directive may target an enum-shaped alias too).
func scanDirectives(path string) ([]schemaDirective, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, nil, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	var found []schemaDirective
	ast.Inspect(file, func(n ast.Node) bool {
		genDecl, ok := n.(*ast.GenDecl)
		if !ok || genDecl.Tok != token.TYPE {
			return true
		}
		source, ok := directiveSource(genDecl.Doc)
		if !ok {
			return true
		}
		for _, spec := range genDecl.Specs {
			typeSpec, ok := spec.(*ast.TypeSpec)
			if !ok {
				continue
			}
			found = append(found, schemaDirective{TypeName: typeSpec.Name.Name, Source: source})
		}
		return true
	})
	return found, nil
}

func directiveSource(doc *ast.CommentGroup) (string, bool) {
	if doc == nil {
		return "", false
	}
	for _, c := range doc.List {
		if strings.HasPrefix(c.Text, directivePrefix) {
			return strings.TrimSpace(strings.TrimPrefix(c.Text, directivePrefix)), true
		}
	}
	return "", false
}

// runGoGenerate implements the go:generate entry point: scan targetFile for directives, run the
// pipeline over each named schema, and splice the resulting declarations into a sibling
// "<base>_typegen.go" file in the same package (spec.md §1(b)'s "inlines generated types into a
// compilation unit" requirement).
func runGoGenerate(ctx context.Context, targetFile string) error {
	directives, err := scanDirectives(targetFile)
	if err != nil {
		return err
	}
	if len(directives) == 0 {
		return nil
	}

	pkgName, err := packageNameOf(targetFile)
	if err != nil {
		return err
	}

	var body strings.Builder
	for _, d := range directives {
		data, err := readSchemaInput(d.Source)
		if err != nil {
			return fmt.Errorf("typegen:schema %s: %w", d.Source, err)
		}

		ts := typegen.New(typegen.Settings{Loader: typegen.DefaultLoaders(), Context: ctx})
		if _, err := ts.AddRootSchema(data); err != nil {
			return fmt.Errorf("typegen:schema %s: %w", d.Source, err)
		}
		frag, err := ts.ToTokenStream()
		if err != nil {
			return fmt.Errorf("typegen:schema %s: %w", d.Source, err)
		}
		body.WriteString(frag)
		body.WriteString("\n")
	}

	outPath := strings.TrimSuffix(targetFile, ".go") + "_typegen.go"
	src := "package " + pkgName + "\n\n" + body.String()
	return os.WriteFile(outPath, []byte(src), 0o644)
}

func packageNameOf(path string) (string, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, nil, parser.PackageClauseOnly)
	if err != nil {
		return "", fmt.Errorf("parse package clause of %s: %w", path, err)
	}
	return file.Name.Name, nil
}

func newGoGenerateCmd() *generateFromDirectivesCmd {
	return &generateFromDirectivesCmd{}
}

// generateFromDirectivesCmd is a thin cobra-less helper used by main when typegen is invoked as
// a //go:generate line rather than through the generate subcommand: `go generate` sets
// GOFILE/GOPACKAGE in the environment, and convention is to accept the target file as the sole
// positional argument.
type generateFromDirectivesCmd struct{}

func (generateFromDirectivesCmd) run(ctx context.Context, args []string) error {
	target := os.Getenv("GOFILE")
	if len(args) > 0 {
		target = args[0]
	}
	if target == "" {
		return fmt.Errorf("no target file: pass one explicitly or run via go:generate (GOFILE unset)")
	}
	if !filepath.IsAbs(target) {
		if wd, err := os.Getwd(); err == nil {
			target = filepath.Join(wd, target)
		}
	}
	return runGoGenerate(ctx, target)
}
