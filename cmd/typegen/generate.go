package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/tools/imports"

	"github.com/typelift/typegen"
)

// generateOptions holds the flag values for the "generate" subcommand (SPEC_FULL.md §6):
//
//	typegen generate [flags] <schema-file>
//	  --output, -o   output path (stdout if absent)
//	  --builder      emit the builder section
//	  --map-type     override the generated map container type
//	  --patch        path to a JSON patch/settings file
type generateOptions struct {
	output  string
	builder bool
	mapType string
	patch   string
	pkg     string
	log     *logConfig
}

func newGenerateOptions() *generateOptions {
	return &generateOptions{log: newLogConfig()}
}

// run executes "typegen generate" against schemaPath, writing formatted Go source to o.output
// (or stdout). Returns a *typegen.Error-wrapping error for pipeline failures (CLI exit code 1)
// and a plain error for usage/IO failures (CLI exit code 2, enforced by cobra's own handling of
// a non-nil RunE return combined with the explicit os.Exit in main.go).
func (o *generateOptions) run(ctx context.Context, schemaPath string) error {
	handler, err := o.log.newHandler(os.Stderr)
	if err != nil {
		return err
	}
	logger := slog.New(handler)

	data, err := readSchemaInput(schemaPath)
	if err != nil {
		return fmt.Errorf("read schema: %w", err)
	}

	settings := typegen.Settings{
		MapType:       o.mapType,
		StructBuilder: o.builder,
		Logger:        slogWarner{logger: logger},
		Loader:        typegen.DefaultLoaders(),
		Context:       ctx,
	}
	if o.patch != "" {
		if err := applyPatchFile(&settings, o.patch); err != nil {
			return err
		}
	}

	ts := typegen.New(settings)
	if dir := filepath.Dir(schemaPath); dir != "." {
		ts = ts.WithPath(dir)
	}

	if _, err := ts.AddRootSchema(data); err != nil {
		return err
	}

	body, err := ts.ToTokenStream()
	if err != nil {
		return err
	}

	pkgName := o.pkg
	if pkgName == "" {
		pkgName = inferPackageName(o.output)
	}
	src := "package " + pkgName + "\n\n" + body

	formatted, err := imports.Process(outputFilename(o.output), []byte(src), nil)
	if err != nil {
		logger.Warn("goimports formatting failed, writing unformatted source", "error", err)
		formatted = []byte(src)
	}

	return writeOutput(o.output, formatted)
}

func readSchemaInput(path string) ([]byte, error) {
	if path == "-" || path == "" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func outputFilename(output string) string {
	if output == "" || output == "-" {
		return "generated.go"
	}
	return output
}

func writeOutput(output string, data []byte) error {
	if output == "" || output == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(output, data, 0o644)
}

// inferPackageName derives a default package name from the output path's containing directory,
// falling back to "main" when it can't be inferred — the same "best effort, never fatal" stance
// the teacher's own package-name auto-detection takes (cmd/schemagen's PackageName flag default).
func inferPackageName(outputPath string) string {
	if outputPath == "" || outputPath == "-" {
		return "main"
	}
	dir := filepath.Base(filepath.Dir(outputPath))
	dir = strings.ToLower(dir)
	if dir == "" || dir == "." || dir == string(filepath.Separator) {
		return "main"
	}
	return dir
}
