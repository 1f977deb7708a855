package typegen

import "fmt"

// SchemaRef identifies a schema independent of where it sits in the document graph, per
// SPEC_FULL.md §3. It is either a symbolic name assigned internally (a synthesized schema, such
// as a subschema split out of an inline allOf branch) or a (document URI, JSON Pointer) pair
// pointing at a location in a loaded document. Grounded on the (uri, anchor) bookkeeping the
// teacher's schema.go/ref.go thread through resolution, generalized into a standalone value type
// so the Bundler, canonicalizer, and error types can all refer to "this schema" without holding
// a *RawSchema pointer.
type SchemaRef struct {
	// Symbol is set for schemas synthesized by the pipeline itself (canonicalizer splits,
	// converter-introduced variant types) that have no location in any loaded document.
	Symbol string

	// DocumentURI and Pointer are set for schemas that came from a loaded document: DocumentURI
	// is the base URI of the document (as resolved by the Bundler, following $id), and Pointer
	// is the JSON Pointer within that document, beginning with "/" (empty string for the
	// document root).
	DocumentURI string
	Pointer     string
}

// NewSymbolRef builds a SchemaRef for a schema with no document location.
func NewSymbolRef(symbol string) SchemaRef {
	return SchemaRef{Symbol: symbol}
}

// NewDocumentRef builds a SchemaRef for a schema at the given document URI and JSON Pointer.
func NewDocumentRef(documentURI, pointer string) SchemaRef {
	return SchemaRef{DocumentURI: documentURI, Pointer: pointer}
}

// IsSymbol reports whether this ref names a pipeline-synthesized schema rather than a document
// location.
func (r SchemaRef) IsSymbol() bool {
	return r.Symbol != "" || (r.DocumentURI == "" && r.Pointer == "")
}

// String renders the ref for diagnostics: "symbol:<name>" or "<uri>#<pointer>".
func (r SchemaRef) String() string {
	if r.IsSymbol() {
		if r.Symbol == "" {
			return "symbol:<anonymous>"
		}
		return "symbol:" + r.Symbol
	}
	return fmt.Sprintf("%s#%s", r.DocumentURI, r.Pointer)
}

// Child derives a SchemaRef for a subschema nested under this one at the given extra pointer
// tokens, used while walking into properties/items/allOf branches and similar.
func (r SchemaRef) Child(tokens ...string) SchemaRef {
	if r.IsSymbol() {
		sym := r.Symbol
		for _, t := range tokens {
			sym += "/" + t
		}
		return NewSymbolRef(sym)
	}
	ptr := r.Pointer
	for _, t := range tokens {
		ptr += "/" + escapePointerToken(t)
	}
	return NewDocumentRef(r.DocumentURI, ptr)
}

// escapePointerToken escapes "~" and "/" per RFC 6901.
func escapePointerToken(tok string) string {
	out := make([]byte, 0, len(tok))
	for i := 0; i < len(tok); i++ {
		switch tok[i] {
		case '~':
			out = append(out, '~', '0')
		case '/':
			out = append(out, '~', '1')
		default:
			out = append(out, tok[i])
		}
	}
	return string(out)
}
