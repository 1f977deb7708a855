package typegen

import "context"

// Logger is the interface for non-fatal pipeline warnings. No stage of this package's pipeline
// calls it: x-go-type extensions are not interpreted, and name collisions are resolved by
// suffixing without a warning. Deliberately the narrowest interface that covers the
// CLI's log/slog adapter as well as a test stub, rather than depending on a logging library
// from the core package itself.
type Logger interface {
	Warnf(format string, args ...any)
}

// discardLogger is the Logger used when Settings.Logger is nil.
type discardLogger struct{}

func (discardLogger) Warnf(string, ...any) {}

// UnknownCratePolicy names what to do when an x-go-type extension names a package that was not
// registered via Settings.Packages, per spec.md §6. The pipeline does not interpret x-go-type
// extensions, so no value of Settings.UnknownPackagePolicy changes the generated output.
type UnknownCratePolicy int

const (
	// PolicyGenerate: ignore the extension and generate a type normally.
	PolicyGenerate UnknownCratePolicy = iota
	// PolicyAllow: accept the extension's path verbatim without version checking.
	PolicyAllow
	// PolicyDeny: reject the schema with an UnsupportedSchemaConstructionError.
	PolicyDeny
)

// PatchSpec is a per-named-type modification applied after conversion and before emission
// (spec.md §4.5, §6).
type PatchSpec struct {
	Rename       string
	ExtraDerives []string // doc-comment annotations; Go has no derive macros, so these surface
	                       // as comment directives consumed by downstream `go generate` steps
	                       // (e.g. "stringer") rather than as language-level capabilities.
}

// ReplacementSpec replaces a generated type wholesale with a foreign (host-provided) Go type.
type ReplacementSpec struct {
	ImportPath string
	TypeExpr   string
	ExtraDerives []string
}

// ConversionSpec replaces any type whose canonical schema structurally equals Schema with the
// named foreign type, independent of the name the converter would otherwise have picked.
type ConversionSpec struct {
	Schema       []byte // canonical JSON Schema fragment to match against
	ImportPath   string
	TypeExpr     string
	ExtraDerives []string
}

// PackageSpec is the registration an x-go-type extension's "crate" field resolves against,
// analogous to typify's Cargo-crate registration but for a Go import path.
type PackageSpec struct {
	ImportPath       string
	VersionConstraint string // e.g. "v1.2.0"; "" means unconstrained
	Rename           string
}

// Settings configures every stage of the pipeline, threaded down by value (a read-only handle,
// per spec.md §9's "settings and patches are configuration, not mutable globals"). Grounded on
// spec.md §6's enumerated settings list.
type Settings struct {
	// MapType names a container for object-as-map schemalets (canonicalizer rule 6). The
	// emitter does not read it: maps always render as the built-in `map[string]V`.
	MapType string

	// StructBuilder toggles emission of the builder section (emit.go).
	StructBuilder bool

	// Derives lists extra derive directives for every generated struct/enum. The converter and
	// emitter do not read it, so generated declarations carry no trace of it.
	Derives []string

	// Patches is keyed by the type's resolved name.
	Patches map[string]PatchSpec

	// Replacements is keyed by the type's resolved name.
	Replacements map[string]ReplacementSpec

	// Conversions is tried in slice order; the first structural match wins.
	Conversions []ConversionSpec

	// Packages is keyed by the x-go-type "crate" field. No pipeline stage reads it (see
	// UnknownCratePolicy).
	Packages map[string]PackageSpec

	// UnknownPackagePolicy governs unregistered x-go-type "crate" references. No pipeline stage
	// reads it (see UnknownCratePolicy).
	UnknownPackagePolicy UnknownCratePolicy

	// Logger is handed non-fatal warnings (no pipeline stage emits any; see Logger). Defaults
	// to a no-op logger.
	Logger Logger

	// Loader resolves external $ref URIs. Defaults to NullLoader.
	Loader Loader

	// BasePath records the path given to WithPath. Nothing in the pipeline reads it.
	BasePath string

	// Context is used for Loader calls made during AddRootSchema/AddDefinitions. Defaults to
	// context.Background().
	Context context.Context
}

func (s Settings) logger() Logger {
	if s.Logger == nil {
		return discardLogger{}
	}
	return s.Logger
}

func (s Settings) loader() Loader {
	if s.Loader == nil {
		return NullLoader{}
	}
	return s.Loader
}

func (s Settings) ctx() context.Context {
	if s.Context == nil {
		return context.Background()
	}
	return s.Context
}
