// Command typegen lowers a JSON Schema document to Go type declarations.
//
// Usage:
//
//	typegen generate [flags] <schema-file>
//
// See SPEC_FULL.md §6 for the full flag reference.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/typelift/typegen"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run builds and executes the root command, returning the process exit code: 0 success, 1 a
// pipeline *typegen.Error, 2 a CLI usage error — cobra's own exit-code convention, per
// SPEC_FULL.md §6.
func run(args []string) int {
	rootCmd := newRootCmd()
	rootCmd.SetArgs(args)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "typegen: %v\n", err)
		if _, ok := err.(*typegen.Error); ok {
			return 1
		}
		if isPipelineError(err) {
			return 1
		}
		return 2
	}
	return 0
}

// isPipelineError reports whether err originated from the generation pipeline itself (as opposed
// to CLI argument parsing or file IO), so main can distinguish exit code 1 from 2 even when the
// pipeline error has been wrapped with fmt.Errorf's %w (as runGoGenerate does).
func isPipelineError(err error) bool {
	var (
		aggregate   *typegen.Error
		unsupported *typegen.UnsupportedSchemaConstructionError
		load        *typegen.LoadError
		parse       *typegen.ParseError
		dangling    *typegen.DanglingRefError
		collision   *typegen.NameCollisionError
	)
	return errors.As(err, &aggregate) || errors.As(err, &unsupported) || errors.As(err, &load) ||
		errors.As(err, &parse) || errors.As(err, &dangling) || errors.As(err, &collision)
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "typegen",
		Short:         "Generate Go type declarations from a JSON Schema document",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	root.AddCommand(newGenerateCmd())
	root.AddCommand(newInlineCmd())
	return root
}

// newInlineCmd wires the go:generate entry point (SPEC_FULL.md §6) as its own subcommand, so a
// source file can carry `//go:generate typegen inline` the same way the teacher's examples carry
// `//go:generate schemagen`.
func newInlineCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inline [file]",
		Short: "Scan a file for //typegen:schema directives and splice generated types alongside it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return newGoGenerateCmd().run(cmd.Context(), args)
		},
	}
}

func newGenerateCmd() *cobra.Command {
	opts := newGenerateOptions()

	cmd := &cobra.Command{
		Use:   "generate [flags] <schema-file>",
		Short: "Generate Go type declarations from a single schema document",
		Long: `generate reads a JSON Schema document (a file path, or "-" for stdin)
and writes the Go type declarations it lowers to, either to stdout or to
the path named by --output.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd.Context(), args[0])
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.output, "output", "o", "", "output file path (stdout if absent)")
	flags.BoolVar(&opts.builder, "builder", false, "emit the builder section")
	flags.StringVar(&opts.mapType, "map-type", "", "set Settings.MapType (the emitter does not read it; maps render as map[string]V)")
	flags.StringVar(&opts.patch, "patch", "", "path to a JSON patch/settings file")
	flags.StringVar(&opts.pkg, "package", "", "generated file's package name (inferred from --output if absent)")
	opts.log.registerFlags(flags)

	if err := opts.log.registerCompletions(cmd); err != nil {
		fmt.Fprintf(os.Stderr, "typegen: register completions: %v\n", err)
	}

	return cmd
}
