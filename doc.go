// Package typegen lowers JSON Schema documents into Go type declarations
// whose encoding/json serialization is bit-compatible with instances that
// conform to the input schema.
//
// The pipeline is a linear chain of stages, leaves first: a Loader fetches
// referenced documents, the Bundler resolves $ref and flattens the schema
// graph into schemalets, the canonicalizer rewrites schemalets into a small
// set of canonical shapes, the name resolver assigns identifiers, the
// converter lowers each schemalet to a Type, the type space interns and
// deduplicates Types, and the emitter lowers the type space to Go source
// text.
//
// Credit to github.com/kaptinlin/jsonschema, whose Schema/Compiler/Ref
// design this package's Bundler and RawSchema are grounded on.
package typegen
