package typegen

import (
	"errors"
	"fmt"
)

// === Network and IO related sentinels ===
var (
	// ErrNoLoaderRegistered is returned when no loader is registered for the requested URI scheme.
	ErrNoLoaderRegistered = errors.New("no loader registered for scheme")

	// ErrDataRead is returned when a loader fails to read document bytes.
	ErrDataRead = errors.New("data read failed")

	// ErrNetworkFetch is returned when an HTTP(S) loader fails to fetch a document.
	ErrNetworkFetch = errors.New("network fetch failed")

	// ErrInvalidStatusCode is returned when an HTTP(S) loader receives a non-200 response.
	ErrInvalidStatusCode = errors.New("invalid http status code")

	// ErrFileWrite is returned when the CLI fails to write the generated source file.
	ErrFileWrite = errors.New("file write failed")
)

// === Schema compilation and parsing sentinels ===
var (
	// ErrSchemaCompilation is returned when a schema document fails to parse.
	ErrSchemaCompilation = errors.New("schema compilation failed")

	// ErrReferenceResolution is returned when a $ref cannot be resolved within a loaded document.
	ErrReferenceResolution = errors.New("reference resolution failed")

	// ErrJSONPointerSegmentNotFound is returned when a JSON Pointer segment has no match.
	ErrJSONPointerSegmentNotFound = errors.New("json pointer segment not found")

	// ErrInvalidSchemaType is returned when the "type" keyword is neither a string nor an array of strings.
	ErrInvalidSchemaType = errors.New("invalid schema type")

	// ErrSchemaIsNil is returned when a nil schema is passed where one is required.
	ErrSchemaIsNil = errors.New("schema is nil")

	// ErrSchemaInternalsIsNil is an internal-invariant panic sentinel: it should never surface to a caller.
	ErrSchemaInternalsIsNil = errors.New("schema internals is nil")

	// ErrAppendOnlyReinsertion is an internal-invariant panic sentinel for the append-only map abstraction (spec §5).
	ErrAppendOnlyReinsertion = errors.New("append-only map: key already present")

	// ErrCanonicalizationDidNotConverge is an internal-invariant panic sentinel for a canonicalizer fixed point
	// that does not stabilize within the configured pass budget.
	ErrCanonicalizationDidNotConverge = errors.New("canonicalization did not converge")
)

// === Code generation sentinels ===
var (
	// ErrNilConfig is returned when a nil Settings/GeneratorConfig is supplied.
	ErrNilConfig = errors.New("config cannot be nil")

	// ErrCodeGeneration is a wrapping sentinel for emission failures.
	ErrCodeGeneration = errors.New("code generation failed")

	// ErrTemplateParsing is returned when an emitter template fails to parse.
	ErrTemplateParsing = errors.New("template parsing failed")

	// ErrTemplateExecution is returned when an emitter template fails to execute.
	ErrTemplateExecution = errors.New("template execution failed")

	// ErrCodeFormatting is returned by CLI/go:generate collaborators when gofmt/goimports fails.
	ErrCodeFormatting = errors.New("code formatting failed")
)

// UnsupportedSchemaConstructionError names the ErrorKind from spec.md §7: the converter or
// canonicalizer encountered a feature combination it does not handle.
type UnsupportedSchemaConstructionError struct {
	Ref     SchemaRef
	Message string
	Chain   []SchemaRef // enclosing refs, outermost first, for diagnosis
}

func (e *UnsupportedSchemaConstructionError) Error() string {
	return fmt.Sprintf("unsupported schema construction at %s: %s", e.Ref, e.Message)
}

// LoadError names the ErrorKind from spec.md §7: external resolution of a $ref failed.
type LoadError struct {
	URL    string
	Detail error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.URL, e.Detail)
}

func (e *LoadError) Unwrap() error { return e.Detail }

// ParseError names the ErrorKind from spec.md §7: a loaded document was not a valid schema.
type ParseError struct {
	URL    string
	Detail error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.URL, e.Detail)
}

func (e *ParseError) Unwrap() error { return e.Detail }

// DanglingRefError names the ErrorKind from spec.md §7: a $ref resolved to no pointer.
type DanglingRefError struct {
	From SchemaRef
	To   string
}

func (e *DanglingRefError) Error() string {
	return fmt.Sprintf("dangling $ref %q from %s", e.To, e.From)
}

// NameCollisionError names the ErrorKind from spec.md §7 for two schemas that want the same
// name. The name resolver settles every collision with pkg/identifier.Reserve's ascending
// numeric suffix, which always finds a free name, so nothing in this package constructs it.
type NameCollisionError struct {
	Wanted     string
	AssignedTo SchemaRef
}

func (e *NameCollisionError) Error() string {
	return fmt.Sprintf("name collision: %q already assigned to %s", e.Wanted, e.AssignedTo)
}

// Error aggregates an ordered list of pipeline errors, per spec.md §7. A single pipeline run
// may accumulate more than one ErrorKind (e.g. several UnsupportedSchemaConstruction findings)
// before returning to the caller.
type Error struct {
	Kinds []error
}

func (e *Error) Error() string {
	if len(e.Kinds) == 1 {
		return e.Kinds[0].Error()
	}
	msg := fmt.Sprintf("%d errors:", len(e.Kinds))
	for _, k := range e.Kinds {
		msg += "\n  - " + k.Error()
	}
	return msg
}

// Unwrap supports errors.Is/errors.As traversal of every aggregated ErrorKind (Go 1.20+
// multi-unwrap), per DESIGN.md's decision not to pull in a third-party multierror package.
func (e *Error) Unwrap() []error { return e.Kinds }

// newError wraps one or more ErrorKinds into an *Error, or returns nil if none were given.
func newError(kinds ...error) error {
	var filtered []error
	for _, k := range kinds {
		if k != nil {
			filtered = append(filtered, k)
		}
	}
	if len(filtered) == 0 {
		return nil
	}
	return &Error{Kinds: filtered}
}
