package typegen

import (
	"github.com/go-json-experiment/json"
)

// TypeSpace is the top-level handle the library API (spec.md §6) is built around: it owns the
// schemalet graph, the interned type table, and the settings/patch layer, and drives the pipeline
// stages (bundle -> canonicalize -> resolve names -> convert -> patch -> emit) in response to the
// AddXxx calls. Grounded on the teacher's Compiler (compiler.go) as "the thing that owns caches
// and orchestrates multi-document work", generalized from schema compilation to type generation.
type TypeSpace struct {
	settings Settings

	bundler *Bundler

	// types is the insertion-ordered, content-addressed type table (spec.md §4.5): TypeId ->
	// Type, plus the name->TypeId index used for collision detection and NameCollisionError.
	types     *appendOnlyMap[TypeId, Type]
	byName    map[string]TypeId
	reverseOf map[TypeId]map[TypeId]bool // TypeId -> set of TypeIds that depend on it

	// roots are the TypeIds returned to callers by AddRootSchema/AddType, in call order. The
	// emitter does not consult them: ToTokenStream renders every named type in the type table.
	roots []TypeId

	// convertMemo backs the converter's SchemaRef -> TypeId memoization (spec.md §4.4): state
	// machine Pending -> Built -> Patched -> Interned.
	convertMemo map[SchemaRef]*convertState

	// definitions holds named schemas registered via AddDefinitions, queryable by $ref but not
	// automatically rooted.
	definitions map[string]SchemaRef

	taken map[string]bool // names already reserved, for the name resolver (nameresolve.go)
}

// New constructs a TypeSpace per spec.md §6's `new(settings) -> TypeSpace`.
func New(settings Settings) *TypeSpace {
	return &TypeSpace{
		settings:    settings,
		bundler:     NewBundler(settings.loader()),
		types:       newAppendOnlyMap[TypeId, Type](),
		byName:      make(map[string]TypeId),
		reverseOf:   make(map[TypeId]map[TypeId]bool),
		convertMemo: make(map[SchemaRef]*convertState),
		definitions: make(map[string]SchemaRef),
		taken:       make(map[string]bool),
	}
}

// WithPath is spec.md §6's `with_path(filesystem path)`. It records fsPath in Settings.BasePath
// and, when Settings.Loader has a `WithBase(string) Loader` method, rebuilds the Bundler around
// the loader that method returns. None of this package's loaders has such a method, so with
// them WithPath does not change how external $ref values resolve. Returns ts for chaining.
func (ts *TypeSpace) WithPath(fsPath string) *TypeSpace {
	ts.settings.BasePath = fsPath
	if fsLoader, ok := ts.settings.Loader.(interface{ WithBase(string) Loader }); ok {
		ts.bundler = NewBundler(fsLoader.WithBase(fsPath))
	}
	return ts
}

// AddDefinitions registers named schemas without emitting them as roots, per spec.md §6's
// `add_definitions(map<name, schema>)`. Each definition becomes resolvable by
// `definitions:#/$defs/<name>` refs from later AddRootSchema/AddType calls, via a synthetic
// document the Bundler holds under the symbolic URI "definitions:".
func (ts *TypeSpace) AddDefinitions(defs map[string]json.RawMessage) error {
	const defsURI = "definitions:"
	doc := &RawSchema{ID: defsURI, Defs: make(map[string]*RawSchema)}
	for name, raw := range defs {
		sub, err := newRawSchema(raw)
		if err != nil {
			return &ParseError{URL: defsURI + "#/$defs/" + name, Detail: err}
		}
		doc.Defs[name] = sub
	}
	ts.bundler.AddDocument(defsURI, doc)
	for name := range defs {
		ts.definitions[name] = NewDocumentRef(defsURI, "/$defs/"+name)
	}
	return nil
}

// AddRootSchema runs the full pipeline over a root document: bundle, canonicalize, resolve
// names, convert, and intern, returning the TypeId of the root. Per spec.md §6's
// `add_root_schema(schema) -> TypeId`.
func (ts *TypeSpace) AddRootSchema(schema json.RawMessage) (TypeId, error) {
	raw, err := newRawSchema(schema)
	if err != nil {
		return TypeId{}, &ParseError{URL: "<root>", Detail: err}
	}
	return ts.addRoot(raw)
}

// AddRootSchemaValue accepts an already-parsed github.com/google/jsonschema-go/jsonschema value,
// bridging schemas produced by other ecosystem tooling without a JSON round-trip (spec.md §4.1
// [ADD]).
func (ts *TypeSpace) AddRootSchemaValue(schema *GoogleSchema) (TypeId, error) {
	raw := FromGoogleSchema(schema)
	return ts.addRoot(raw)
}

func (ts *TypeSpace) addRoot(raw *RawSchema) (TypeId, error) {
	ctx := ts.settings.ctx()
	uri := raw.ID
	if uri == "" {
		uri = "root:"
	}
	ts.bundler.AddDocument(uri, raw)

	schemalets, err := Bundle(ctx, ts.bundler, raw, uri)
	if err != nil {
		return TypeId{}, err
	}
	canonical, err := Canonicalize(schemalets)
	if err != nil {
		return TypeId{}, err
	}
	rootRef := RefOf(raw, "")
	names := ResolveNames(canonical, rootRef, ts.taken)

	id, err := ts.convert(canonical, rootRef, names)
	if err != nil {
		return TypeId{}, err
	}
	ts.roots = append(ts.roots, id)
	return id, nil
}

// AddType runs the pipeline over a single subschema (not necessarily a full document root), per
// spec.md §6's `add_type(schema) -> TypeId`.
func (ts *TypeSpace) AddType(schema json.RawMessage) (TypeId, error) {
	return ts.AddRootSchema(schema)
}

// convert drives the converter (convert.go) over the canonical schemalet graph starting at root,
// applies patches, and interns the result.
func (ts *TypeSpace) convert(graph *canonicalGraph, root SchemaRef, names *resolvedNames) (TypeId, error) {
	conv := &converter{ts: ts, graph: graph, names: names}
	id, err := conv.Convert(root)
	if err != nil {
		return TypeId{}, err
	}
	if err := ApplyPatches(ts); err != nil {
		return TypeId{}, err
	}
	return id, nil
}

// intern inserts t into the type table, collapsing onto an existing TypeId if one with the same
// structural hash already exists (spec.md §4.5's "insertion is the single source of uniqueness").
// When t.Name collides with a different, already-named TypeId, the name resolver's collision
// suffixing (nameresolve.go) is expected to have already made the names distinct; intern only
// records the alias relationship when two *different* schemas converge on the same TypeId.
func (ts *TypeSpace) intern(t Type) TypeId {
	id := hashType(t)
	if existing, ok := ts.types.Get(id); ok {
		if t.Name != "" && t.Name != existing.Name && !containsString(existing.Aliases, t.Name) {
			existing.Aliases = append(existing.Aliases, t.Name)
			ts.types.Overwrite(id, existing)
		}
		return id
	}
	ts.types.Insert(id, t)
	if t.Name != "" {
		ts.byName[t.Name] = id
	}
	for _, dep := range t.dependencies() {
		if ts.reverseOf[dep] == nil {
			ts.reverseOf[dep] = make(map[TypeId]bool)
		}
		ts.reverseOf[dep][id] = true
	}
	return id
}

// placeholder installs (or returns the existing) Pending placeholder type for id, used by the
// converter to break recursive cycles (spec.md §4.4's Pending/Built/Patched/Interned states).
func (ts *TypeSpace) placeholder(id TypeId) {
	if !ts.types.Has(id) {
		ts.types.Insert(id, Type{Kind: TypeNative, Name: "", NativeExpr: "/* pending */"})
	}
}

// overwrite replaces a previously-placeholder'd entry with its real value during recursive
// construction, without going through intern's dedup logic (the placeholder's TypeId is already
// the final TypeId by construction — see convert.go).
func (ts *TypeSpace) overwrite(id TypeId, t Type) {
	ts.types.Overwrite(id, t)
	for _, dep := range t.dependencies() {
		if ts.reverseOf[dep] == nil {
			ts.reverseOf[dep] = make(map[TypeId]bool)
		}
		ts.reverseOf[dep][id] = true
	}
}

func (ts *TypeSpace) lookup(id TypeId) (Type, bool) { return ts.types.Get(id) }

// dependencies lists the TypeIds t directly references, used for reverse-dependency tracking and
// the emitter's reachability/ordering pass.
func (t Type) dependencies() []TypeId {
	var out []TypeId
	switch t.Kind {
	case TypeStruct:
		for _, p := range t.Properties {
			out = append(out, p.Type)
		}
	case TypeEnum:
		for _, v := range t.Variants {
			switch v.Kind {
			case VariantNewtypeLike:
				out = append(out, v.Newtype)
			case VariantTuple:
				out = append(out, v.Tuple...)
			case VariantStruct:
				for _, p := range v.Fields {
					out = append(out, p.Type)
				}
			}
		}
	case TypeNewtype:
		out = append(out, t.Inner)
	case TypeOption, TypeVec:
		out = append(out, t.Elem)
	case TypeMap:
		out = append(out, t.MapKey, t.MapValue)
	case TypeTuple:
		out = append(out, t.Elems...)
	}
	return out
}

func containsString(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}

// ToTokenStream lowers the type space to Go source text, per spec.md §6's `to_token_stream() ->
// string`. The returned text is valid but unformatted Go (no gofmt/goimports pass): per spec.md
// §6 and SPEC_FULL.md §4.6, the pretty-printer is an external collaborator the core package does
// not depend on.
func (ts *TypeSpace) ToTokenStream() (string, error) {
	return Emit(ts)
}
