package typegen

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/kaptinlin/jsonpointer"
)

// Bundler resolves $ref/$dynamicRef across one or more loaded documents and flattens the
// resulting schema graph so the canonicalizer can walk it without re-deriving document
// boundaries. Grounded on the teacher's Compiler (compiler.go) and the resolution methods in
// ref.go, restructured around SchemaRef identity instead of bare *Schema pointers, and stripped
// of the teacher's validator-only concerns (format registry, media type decoders, default-value
// functions).
//
// A Bundler is single-threaded and cooperative, like the rest of this pipeline (spec §5): it is
// not safe for concurrent use, and callers are expected to finish one AddDocument/Resolve pass
// before starting the next.
type Bundler struct {
	loader    Loader
	documents map[string]*RawSchema // by base URI
	pending   map[string][]SchemaRef // refs waiting on a not-yet-loaded document, by URI
}

// NewBundler constructs a Bundler backed by loader. A nil loader is replaced with NullLoader, so
// any $ref outside the documents added directly fails fast with ErrNoLoaderRegistered.
func NewBundler(loader Loader) *Bundler {
	if loader == nil {
		loader = NullLoader{}
	}
	return &Bundler{
		loader:    loader,
		documents: make(map[string]*RawSchema),
		pending:   make(map[string][]SchemaRef),
	}
}

// AddDocument registers an already-parsed document under uri, initializing its parent/baseURI/
// anchor bookkeeping. Used by AddDefinitions/AddRootSchema to install documents the caller
// already has in memory, without a round trip through the Loader.
func (b *Bundler) AddDocument(uri string, schema *RawSchema) {
	b.initializeSchema(schema, nil, uri, "")
	if schema.uri != "" {
		b.documents[schema.uri] = schema
	} else if uri != "" {
		b.documents[uri] = schema
	}
}

// LoadDocument fetches, parses, and registers the document at uri, returning the cached copy if
// one is already present. Grounded on Compiler.resolveSchemaURL.
func (b *Bundler) LoadDocument(ctx context.Context, uri string) (*RawSchema, error) {
	id, _ := splitRef(uri)

	if schema, ok := b.documents[id]; ok {
		return schema, nil
	}

	data, err := b.loader.Load(ctx, id)
	if err != nil {
		return nil, err
	}

	schema, err := newRawSchema(data)
	if err != nil {
		return nil, &ParseError{URL: id, Detail: err}
	}
	if schema.ID == "" {
		schema.ID = id
	}
	b.AddDocument(id, schema)
	return schema, nil
}

// initializeSchema walks s depth-first assigning parent pointers, computing each subschema's
// effective base URI from $id and its JSON Pointer from its document root, and registering
// $anchor names into the document root's anchor cache. Grounded on the teacher's
// Schema.initializeSchema. The pointer threading lets pointerOf report the exact location a
// resolved $ref target sits at, instead of collapsing every resolution to the document root.
func (b *Bundler) initializeSchema(s *RawSchema, parent *RawSchema, inheritedBaseURI, pointer string) {
	if s == nil || s.Boolean != nil {
		return
	}
	s.parent = parent
	s.pointer = pointer

	base := inheritedBaseURI
	if s.ID != "" {
		if resolved := getBaseURI(s.ID); resolved != "" {
			base = resolved
		} else if parent != nil {
			base = resolveRelativeURI(parent.getParentBaseURI(), s.ID)
		}
	}
	s.baseURI = base

	root := s.getRootSchema()
	if root.schemas == nil {
		root.schemas = make(map[string]*RawSchema)
	}
	if root.anchors == nil {
		root.anchors = make(map[string]*RawSchema)
	}
	if s.Anchor != "" {
		root.anchors[s.Anchor] = s
	}

	walk := func(child *RawSchema, tokens ...string) {
		b.initializeSchema(child, s, base, childPointer(pointer, tokens...))
	}
	walkMap := func(m map[string]*RawSchema, prefix string) {
		for _, name := range sortedKeys(m) {
			walk(m[name], prefix, name)
		}
	}
	walkSlice := func(children []*RawSchema, prefix string) {
		for i, child := range children {
			walk(child, prefix, itoa(i))
		}
	}

	walkMap(s.Defs, "$defs")
	walkMap(s.DependentSchemas, "dependentSchemas")
	if s.Properties != nil {
		walkMap(map[string]*RawSchema(*s.Properties), "properties")
	}
	if s.PatternProperties != nil {
		walkMap(map[string]*RawSchema(*s.PatternProperties), "patternProperties")
	}
	walk(s.AdditionalProperties, "additionalProperties")
	walk(s.PropertyNames, "propertyNames")
	walk(s.Items, "items")
	walk(s.Not, "not")
	walkSlice(s.PrefixItems, "prefixItems")
	walkSlice(s.AllOf, "allOf")
	walkSlice(s.AnyOf, "anyOf")
	walkSlice(s.OneOf, "oneOf")
}

// childPointer appends tokens (RFC 6901-escaped) to pointer.
func childPointer(pointer string, tokens ...string) string {
	for _, t := range tokens {
		pointer += "/" + escapePointerToken(t)
	}
	return pointer
}

// Resolve dereferences a $ref string seen within from, returning the target RawSchema.
// Grounded on the teacher's Schema.resolveRef/resolveAnchor/resolveJSONPointer chain
// (ref.go), generalized to consult the Bundler's document cache (and Loader, via ResolveCtx)
// rather than a shared Compiler.
func (b *Bundler) Resolve(ctx context.Context, from *RawSchema, ref string) (*RawSchema, error) {
	if ref == "#" {
		return from.getRootSchema(), nil
	}
	if strings.HasPrefix(ref, "#") {
		return b.resolveAnchor(ctx, from, ref[1:])
	}

	target := ref
	if !isAbsoluteURI(ref) && from.baseURI != "" {
		target = resolveRelativeURI(from.baseURI, ref)
	}
	return b.resolveFullURL(ctx, target)
}

func (b *Bundler) resolveAnchor(ctx context.Context, from *RawSchema, anchorName string) (*RawSchema, error) {
	if strings.HasPrefix(anchorName, "/") {
		found, err := resolveJSONPointer(from, anchorName)
		if err == nil {
			return found, nil
		}
		if from.parent != nil {
			return b.resolveAnchor(ctx, from.parent, anchorName)
		}
		if err == ErrJSONPointerSegmentNotFound {
			return nil, &DanglingRefError{From: NewDocumentRef(from.baseURI, ""), To: "#" + anchorName}
		}
		return nil, err
	}

	root := from.getRootSchema()
	if schema, ok := root.anchors[anchorName]; ok {
		return schema, nil
	}
	if from.parent != nil {
		return b.resolveAnchor(ctx, from.parent, anchorName)
	}
	return nil, &DanglingRefError{From: NewDocumentRef(from.baseURI, ""), To: "#" + anchorName}
}

func (b *Bundler) resolveFullURL(ctx context.Context, ref string) (*RawSchema, error) {
	baseURI, anchor := splitRef(ref)

	doc, ok := b.documents[baseURI]
	if !ok {
		loaded, err := b.LoadDocument(ctx, baseURI)
		if err != nil {
			return nil, err
		}
		doc = loaded
	}

	if anchor == "" {
		return doc, nil
	}
	return b.resolveAnchor(ctx, doc, anchor)
}

// resolveJSONPointer walks s along the JSON Pointer segments of pointer, using the same
// properties/prefixItems/$defs/items dispatch as the teacher's findSchemaInSegment.
func resolveJSONPointer(s *RawSchema, pointer string) (*RawSchema, error) {
	if pointer == "/" || pointer == "" {
		return s, nil
	}

	segments := jsonpointer.Parse(pointer)
	current := s
	previous := ""

	for i, segment := range segments {
		decoded, err := url.PathUnescape(segment)
		if err != nil {
			return nil, &ParseError{URL: pointer, Detail: err}
		}

		next, found := findSchemaAtSegment(current, decoded, previous)
		if found {
			current = next
			previous = decoded
			continue
		}
		if i == len(segments)-1 {
			return nil, ErrJSONPointerSegmentNotFound
		}
		previous = decoded
	}

	return current, nil
}

func findSchemaAtSegment(current *RawSchema, segment, previous string) (*RawSchema, bool) {
	switch previous {
	case "properties":
		if current.Properties != nil {
			if s, ok := (*current.Properties)[segment]; ok {
				return s, true
			}
		}
	case "prefixItems":
		if idx, err := strconv.Atoi(segment); err == nil && idx >= 0 && idx < len(current.PrefixItems) {
			return current.PrefixItems[idx], true
		}
	case "$defs", "definitions":
		if s, ok := current.Defs[segment]; ok {
			return s, true
		}
	case "items":
		if current.Items != nil {
			return current.Items, true
		}
	case "allOf":
		if idx, err := strconv.Atoi(segment); err == nil && idx >= 0 && idx < len(current.AllOf) {
			return current.AllOf[idx], true
		}
	case "anyOf":
		if idx, err := strconv.Atoi(segment); err == nil && idx >= 0 && idx < len(current.AnyOf) {
			return current.AnyOf[idx], true
		}
	case "oneOf":
		if idx, err := strconv.Atoi(segment); err == nil && idx >= 0 && idx < len(current.OneOf) {
			return current.OneOf[idx], true
		}
	case "not":
		if current.Not != nil {
			return current.Not, true
		}
	case "additionalProperties":
		if current.AdditionalProperties != nil {
			return current.AdditionalProperties, true
		}
	}
	return nil, false
}

// RefOf derives the SchemaRef a resolved RawSchema should be addressed by: its document base URI
// paired with the pointer the Bundler resolved it through, or a symbolic ref if it has none.
func RefOf(doc *RawSchema, pointer string) SchemaRef {
	if doc == nil || doc.baseURI == "" {
		return NewSymbolRef("")
	}
	return NewDocumentRef(doc.baseURI, pointer)
}

// rawGraph is the Bundler's output: every reachable sub-schema, flattened to a map keyed by
// SchemaRef, per spec.md §4.1's contract ("a mapping SchemaRef -> Schemalet covering every
// reachable sub-schema, and a distinguished root reference"). This is the pre-schemalet stage:
// entries are still RawSchema, with $ref nodes left as-is (their Ref field set) rather than
// inlined, so the canonicalizer's Reference handling (spec.md §4.2) operates uniformly whether
// the reference was local or cross-document.
type rawGraph struct {
	Root    SchemaRef
	Schemas *appendOnlyMap[SchemaRef, *RawSchema]
	// RefTargets maps the SchemaRef of a $ref node to the SchemaRef of what it resolves to.
	RefTargets map[SchemaRef]SchemaRef
}

// Bundle performs the breadth-first traversal spec.md §4.1 describes: starting at root (reachable
// under rootURI), every reachable sub-schema is assigned a SchemaRef and registered; $ref targets
// are resolved (loading new documents at most once per URI) and registered under the SchemaRef of
// their resolution target, without inlining. Cycles are permitted: a $ref back to an
// already-visited SchemaRef is not re-traversed.
func Bundle(ctx context.Context, b *Bundler, root *RawSchema, rootURI string) (*rawGraph, error) {
	g := &rawGraph{Schemas: newAppendOnlyMap[SchemaRef, *RawSchema](), RefTargets: make(map[SchemaRef]SchemaRef)}
	rootRef := RefOf(root, "")
	g.Root = rootRef

	var errs []error
	visited := make(map[SchemaRef]bool)

	type pendingVisit struct {
		s   *RawSchema
		ref SchemaRef
	}
	var queue []pendingVisit
	visit := func(s *RawSchema, ref SchemaRef) { queue = append(queue, pendingVisit{s, ref}) }
	process := func(s *RawSchema, ref SchemaRef) {
		if s == nil || visited[ref] {
			return
		}
		visited[ref] = true
		g.Schemas.Insert(ref, s)

		if s.Boolean != nil {
			return
		}

		if s.Ref != "" {
			target, err := b.Resolve(ctx, s, s.Ref)
			if err != nil {
				errs = append(errs, &DanglingRefError{From: ref, To: s.Ref})
				return
			}
			targetRef := RefOf(target, pointerOf(target))
			g.RefTargets[ref] = targetRef
			visit(target, targetRef)
			return
		}

		for _, name := range sortedKeys(s.Defs) {
			visit(s.Defs[name], ref.Child("$defs", name))
		}
		if s.Properties != nil {
			props := map[string]*RawSchema(*s.Properties)
			for _, name := range sortedKeys(props) {
				visit(props[name], ref.Child("properties", name))
			}
		}
		if s.PatternProperties != nil {
			pp := map[string]*RawSchema(*s.PatternProperties)
			for _, name := range sortedKeys(pp) {
				visit(pp[name], ref.Child("patternProperties", name))
			}
		}
		for _, name := range sortedKeys(s.DependentSchemas) {
			visit(s.DependentSchemas[name], ref.Child("dependentSchemas", name))
		}
		visit(s.AdditionalProperties, ref.Child("additionalProperties"))
		visit(s.PropertyNames, ref.Child("propertyNames"))
		visit(s.Items, ref.Child("items"))
		visit(s.Not, ref.Child("not"))
		for i, child := range s.PrefixItems {
			visit(child, ref.Child("prefixItems", itoa(i)))
		}
		for i, child := range s.AllOf {
			visit(child, ref.Child("allOf", itoa(i)))
		}
		for i, child := range s.AnyOf {
			visit(child, ref.Child("anyOf", itoa(i)))
		}
		for i, child := range s.OneOf {
			visit(child, ref.Child("oneOf", itoa(i)))
		}
	}

	visit(root, rootRef)
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		process(next.s, next.ref)
	}

	if err := newError(errs...); err != nil {
		return nil, err
	}
	return g, nil
}

// pointerOf returns the JSON Pointer of s relative to its own document root, computed once by
// initializeSchema when s was registered. "" for the document root itself or an schema that was
// never threaded through AddDocument (e.g. a bare synthesized RawSchema in a test).
func pointerOf(s *RawSchema) string {
	if s == nil {
		return ""
	}
	return s.pointer
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	var buf [20]byte
	pos := len(buf)
	n := i
	for n > 0 {
		pos--
		buf[pos] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[pos:])
}
