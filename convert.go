package typegen

import "fmt"

// convertStateKind is the converter's per-SchemaRef state machine, per spec.md §4.4: Pending ->
// Built -> Patched -> Interned. Only Interned entries are visible to the emitter.
type convertStateKind int

const (
	convertPending convertStateKind = iota
	convertBuilt
	convertPatched
	convertInterned
)

type convertState struct {
	Kind convertStateKind
	Id   TypeId
}

// converter drives spec.md §4.4's decision procedure over a canonical schemalet graph, memoizing
// on SchemaRef to cut cycles: a SchemaRef is marked Pending (with a placeholder TypeId already
// installed in the type space) before recursing into its children, so a self- or
// mutually-recursive schema resolves to the same TypeId its own fields reference.
type converter struct {
	ts    *TypeSpace
	graph *canonicalGraph
	names *resolvedNames

	chain []SchemaRef // enclosing refs, outermost first, for UnsupportedSchemaConstructionError
}

// Convert implements `convert(SchemaRef) -> TypeId` (spec.md §4.4).
func (c *converter) Convert(ref SchemaRef) (TypeId, error) {
	if state, ok := c.ts.convertMemo[ref]; ok {
		return state.Id, nil
	}

	sl, ok := c.graph.Get(ref)
	if !ok {
		return TypeId{}, &DanglingRefError{From: ref, To: ref.String()}
	}

	// Step 1: Reference indirection resolves before the Pending placeholder is installed for
	// ref itself, so a chain of references collapses onto the final named schemalet's TypeId
	// rather than allocating one TypeId per link.
	if target, isRef := sl.Details.AsReference(); isRef {
		id, err := c.Convert(target)
		if err != nil {
			return TypeId{}, err
		}
		c.ts.convertMemo[ref] = &convertState{Kind: convertInterned, Id: id}
		return id, nil
	}

	placeholderId := TypeId(fnv32PlaceholderSeed(ref))
	c.ts.convertMemo[ref] = &convertState{Kind: convertPending, Id: placeholderId}
	c.ts.placeholder(placeholderId)

	c.chain = append(c.chain, ref)
	t, err := c.buildType(ref, sl)
	c.chain = c.chain[:len(c.chain)-1]
	if err != nil {
		delete(c.ts.convertMemo, ref)
		return TypeId{}, err
	}

	if name, ok := c.names.NameOf(ref); ok && t.Name == "" {
		t.Name = name
	}
	t.SourceRef = ref
	t.Doc = sl.Metadata.Description
	if raw, ok := c.graph.rawSchemas[ref]; ok {
		t.SourceJSON = prettyJSONFragment(raw)
	}

	// placeholderId, not hashType(t), stays this ref's permanent identity: a self- or
	// mutually-recursive t's own Properties/Variants may already point at placeholderId (set by
	// the Pending step above), so rehashing now and redirecting to a different id would strand
	// those children pointing at a dead entry. Named (struct/enum) types are therefore identified
	// by the SchemaRef that produced them, not by structural content; only their unnamed scalar
	// components dedup structurally, via the explicit c.ts.intern() calls in convert_scalar.go.
	finalId := placeholderId
	c.ts.overwrite(placeholderId, t)
	if t.Name != "" {
		c.ts.byName[t.Name] = placeholderId
	}

	c.ts.convertMemo[ref] = &convertState{Kind: convertInterned, Id: finalId}
	return finalId, nil
}

// fnv32PlaceholderSeed derives a stable-for-this-run placeholder TypeId from ref's string form, so
// recursive children referencing ref via its memo entry see a consistent value before ref's real
// Type is known. It never needs to be globally unique across runs (only within one convertMemo),
// so a simple non-cryptographic hash is enough.
func fnv32PlaceholderSeed(ref SchemaRef) [32]byte {
	var out [32]byte
	h := uint64(1469598103934665603)
	for _, b := range []byte(ref.String()) {
		h ^= uint64(b)
		h *= 1099511628211
	}
	for i := 0; i < 32; i++ {
		out[i] = byte(h >> (8 * (i % 8)))
	}
	return out
}

func (c *converter) buildType(ref SchemaRef, sl Schemalet) (Type, error) {
	switch sl.Details.Kind {
	case DetailsAnything:
		return Type{Kind: TypeJsonValue}, nil
	case DetailsNothing:
		return Type{Kind: TypeEnum, TagType: TagUntagged}, nil
	case DetailsConstant:
		v, _ := sl.Details.AsConstant()
		return c.convertConstant(v), nil
	case DetailsExclusiveOneOf:
		return c.convertOneOf(ref, sl)
	case DetailsValue:
		v, _ := sl.Details.AsValue()
		return c.convertValue(ref, v)
	default:
		return Type{}, &UnsupportedSchemaConstructionError{Ref: ref, Message: "unrecognized schemalet kind", Chain: append([]SchemaRef{}, c.chain...)}
	}
}

// convertConstant implements step 3: a zero-field struct whose Marshal emits v literally and
// whose Unmarshal requires equality with v.
func (c *converter) convertConstant(v any) Type {
	return Type{
		Kind:       TypeNewtype,
		Inner:      c.ts.intern(Type{Kind: TypeJsonValue}),
		Constraints: Constraints{},
		NativeExpr: fmt.Sprintf("%#v", v), // captured by emit_newtype.go's constant-constructor template
	}
}

func (c *converter) err(ref SchemaRef, format string, args ...any) error {
	return &UnsupportedSchemaConstructionError{
		Ref:     ref,
		Message: fmt.Sprintf(format, args...),
		Chain:   append([]SchemaRef{}, c.chain...),
	}
}
