package typegen

import (
	"fmt"
	"sort"
)

// maxCanonicalizationPasses bounds the fixed-point loop (SPEC_FULL.md §4.2): a schemalet graph
// that does not stabilize within this many passes indicates a cyclic rewrite the Bundler should
// have represented as a Reference instead, which is a programmer/pipeline-internal error, not a
// condition a caller can act on.
const maxCanonicalizationPasses = 64

// canonicalGraph is the Canonicalizer's output: the same SchemaRef keys as the Bundler's
// rawGraph, mapped to canonical Schemalets, plus the distinguished root (spec.md §4.2).
type canonicalGraph struct {
	Root       SchemaRef
	Schemalets *appendOnlyMap[SchemaRef, Schemalet]

	// rawSchemas retains the original RawSchema each Schemalet was lowered from, keyed by the
	// same SchemaRef, so the converter can carry a pretty-printed source fragment through to the
	// emitter's doc comments (spec.md §4.6). Synthesized refs (split type-unions, allOf merges,
	// enum branches) have no entry and are simply omitted from the doc comment.
	rawSchemas map[SchemaRef]*RawSchema
}

func (g *canonicalGraph) Get(ref SchemaRef) (Schemalet, bool) { return g.Schemalets.Get(ref) }

// Canonicalize lowers every raw schema in g to a preliminary Schemalet, then rewrites the
// resulting map to fixed point per the eight rules in spec.md §4.2. Synthesized sub-schemas
// (e.g. a `type: [A, B]` split into per-type branches) are assigned symbolic SchemaRefs derived
// from their parent.
func Canonicalize(g *rawGraph) (*canonicalGraph, error) {
	work := make(map[SchemaRef]Schemalet, g.Schemas.Len())
	rawByRef := make(map[SchemaRef]*RawSchema, g.Schemas.Len())
	var errs []error

	for _, ref := range g.Schemas.Keys() {
		raw, _ := g.Schemas.Get(ref)
		rawByRef[ref] = raw
		if target, isRef := g.RefTargets[ref]; isRef {
			work[ref] = Schemalet{Details: ReferenceDetails(target)}
			continue
		}
		sl, err := lowerRawSchema(raw, ref)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		work[ref] = sl
		// A mixed-type enum's branches have no raw schema of their own: one Constant per literal.
		if branches, _, ok := sl.Details.AsExclusiveOneOf(); ok && len(branches) == len(raw.Enum) {
			for i, b := range branches {
				work[b] = Schemalet{Details: ConstantDetails(raw.Enum[i])}
			}
		}
	}
	if err := newError(errs...); err != nil {
		return nil, err
	}

	for pass := 0; ; pass++ {
		if pass >= maxCanonicalizationPasses {
			panic(fmt.Errorf("%w: after %d passes", ErrCanonicalizationDidNotConverge, pass))
		}
		changed := false
		for ref, sl := range work {
			rewritten, didChange, err := canonicalizeOnce(work, rawByRef, ref, sl)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			if didChange {
				work[ref] = rewritten
				changed = true
			}
		}
		if err := newError(errs...); err != nil {
			return nil, err
		}
		if !changed {
			break
		}
	}

	frozen := newAppendOnlyMap[SchemaRef, Schemalet]()
	for _, ref := range g.Schemas.Keys() {
		if sl, ok := work[ref]; ok {
			frozen.Insert(ref, sl)
		}
	}
	var synthesized []SchemaRef
	for ref := range work {
		if _, fromBundler := rawByRef[ref]; !fromBundler {
			synthesized = append(synthesized, ref)
		}
	}
	sort.Slice(synthesized, func(i, j int) bool { return synthesized[i].String() < synthesized[j].String() })
	for _, ref := range synthesized {
		frozen.Insert(ref, work[ref])
	}
	return &canonicalGraph{Root: g.Root, Schemalets: frozen, rawSchemas: rawByRef}, nil
}

// lowerRawSchema performs the direct, non-combinator mapping from RawSchema keywords to a
// preliminary Schemalet: boolean schemas, const, enum (same-type case), and a single-type Value.
// allOf/anyOf/oneOf/type-array handling is left to canonicalizeOnce's fixed-point rewriting,
// since those rules may need to synthesize new SchemaRefs the first pass doesn't know about yet.
func lowerRawSchema(s *RawSchema, ref SchemaRef) (Schemalet, error) {
	meta := metadataOf(s)

	if s.Boolean != nil {
		if *s.Boolean {
			return Schemalet{Metadata: meta, Details: AnythingDetails()}, nil
		}
		return Schemalet{Metadata: meta, Details: NothingDetails()}, nil
	}

	if s.Const != nil && s.Const.IsSet {
		return Schemalet{Metadata: meta, Details: ConstantDetails(s.Const.Value)}, nil
	}

	if len(s.Enum) > 0 {
		if kind, ok := sameJSONType(s.Enum); ok {
			sv := &SchemaletValue{Kind: kind, EnumValues: s.Enum}
			return Schemalet{Metadata: meta, Details: ValueDetails(sv)}, nil
		}
		// mixed-type enum -> ExclusiveOneOf of Constants (rule 3); branches are symbolic,
		// addressed relative to ref so they're stable across passes.
		branches := make([]SchemaRef, len(s.Enum))
		for i := range s.Enum {
			branches[i] = ref.Child("enum", itoa(i))
		}
		return Schemalet{Metadata: meta, Details: ExclusiveOneOfDetails(branches, nil)}, nil
	}

	if len(s.AllOf) > 0 || len(s.AnyOf) > 0 || len(s.OneOf) > 0 || len(s.Type) > 1 {
		// Deferred to canonicalizeOnce; placeholder as Anything until rewritten so downstream
		// code never observes a zero-value Details.
		return Schemalet{Metadata: meta, Details: AnythingDetails()}, nil
	}

	if len(s.Type) == 0 {
		return Schemalet{Metadata: meta, Details: AnythingDetails()}, nil
	}

	kind, err := valueKindOf(s.Type[0])
	if err != nil {
		return Schemalet{}, &UnsupportedSchemaConstructionError{Ref: ref, Message: err.Error()}
	}
	sv, err := lowerValue(s, kind, ref)
	if err != nil {
		return Schemalet{}, err
	}
	return Schemalet{Metadata: meta, Details: ValueDetails(sv)}, nil
}

func metadataOf(s *RawSchema) Metadata {
	m := Metadata{}
	if s.Title != nil {
		m.Title = *s.Title
	}
	if s.Description != nil {
		m.Description = *s.Description
	}
	if s.Default != nil {
		m.Default = s.Default
		m.HasDefault = true
	}
	m.Examples = s.Examples
	return m
}

func valueKindOf(t string) (ValueKind, error) {
	switch t {
	case "null":
		return ValueNull, nil
	case "boolean":
		return ValueBoolean, nil
	case "integer":
		return ValueInteger, nil
	case "number":
		return ValueNumber, nil
	case "string":
		return ValueString, nil
	case "array":
		return ValueArray, nil
	case "object":
		return ValueObject, nil
	default:
		return 0, fmt.Errorf("unknown instance type %q", t)
	}
}

// sameJSONType reports the ValueKind shared by every element of an enum array, or false if the
// elements span more than one JSON type (spec.md §4.2 rule 3).
func sameJSONType(values []any) (ValueKind, bool) {
	if len(values) == 0 {
		return 0, false
	}
	kind, ok := jsonValueKind(values[0])
	if !ok {
		return 0, false
	}
	for _, v := range values[1:] {
		k, ok := jsonValueKind(v)
		if !ok || k != kind {
			return 0, false
		}
	}
	return kind, true
}

func jsonValueKind(v any) (ValueKind, bool) {
	switch v.(type) {
	case nil:
		return ValueNull, true
	case bool:
		return ValueBoolean, true
	case float64, int, int64:
		return ValueNumber, true
	case string:
		return ValueString, true
	case []any:
		return ValueArray, true
	case map[string]any:
		return ValueObject, true
	default:
		return 0, false
	}
}

func lowerValue(s *RawSchema, kind ValueKind, ref SchemaRef) (*SchemaletValue, error) {
	sv := &SchemaletValue{Kind: kind}
	switch kind {
	case ValueInteger, ValueNumber:
		sv.Minimum = s.Minimum
		sv.ExclusiveMinimum = s.ExclusiveMinimum
		sv.Maximum = s.Maximum
		sv.ExclusiveMaximum = s.ExclusiveMaximum
		sv.MultipleOf = s.MultipleOf
	case ValueString:
		if s.Pattern != nil {
			sv.Patterns = []string{*s.Pattern}
		}
		sv.Format = s.Format
		sv.MinLength = toIntPtr(s.MinLength)
		sv.MaxLength = toIntPtr(s.MaxLength)
	case ValueArray:
		if s.Items != nil {
			itemRef := ref.Child("items")
			sv.Items = &itemRef
		}
		for i := range s.PrefixItems {
			sv.PrefixItems = append(sv.PrefixItems, ref.Child("prefixItems", itoa(i)))
		}
		sv.MinItems = toIntPtr(s.MinItems)
		sv.MaxItems = toIntPtr(s.MaxItems)
		if s.UniqueItems != nil {
			sv.UniqueItems = *s.UniqueItems
		}
		if len(sv.PrefixItems) > 0 && sv.MinItems != nil && sv.MaxItems != nil &&
			*sv.MinItems == *sv.MaxItems && *sv.MinItems == len(sv.PrefixItems) && s.Items == nil {
			// rule 7: fixed-size tuple; SchemaletValue already carries PrefixItems, the
			// converter (convert_scalar.go) recognizes this shape directly.
		}
	case ValueObject:
		if s.Properties != nil {
			props := newOrderedSchemaRefMap()
			for _, name := range sortedKeys(map[string]*RawSchema(*s.Properties)) {
				props.Set(name, ref.Child("properties", name))
			}
			sv.Properties = props
		}
		sv.Required = make(map[string]bool, len(s.Required))
		for _, r := range s.Required {
			sv.Required[r] = true
		}
		switch {
		case s.AdditionalProperties == nil:
			sv.AdditionalProperties = AllowedAdditionalProperties()
		case s.AdditionalProperties.Boolean != nil && !*s.AdditionalProperties.Boolean:
			sv.AdditionalProperties = ForbiddenAdditionalProperties()
		case s.AdditionalProperties.Boolean != nil && *s.AdditionalProperties.Boolean:
			sv.AdditionalProperties = AllowedAdditionalProperties()
		default:
			sv.AdditionalProperties = TypedAdditionalProperties(ref.Child("additionalProperties"))
		}
		if s.PropertyNames != nil {
			pn := ref.Child("propertyNames")
			sv.PropertyNames = &pn
		}
		if s.PatternProperties != nil {
			pp := newOrderedSchemaRefMap()
			for _, name := range sortedKeys(map[string]*RawSchema(*s.PatternProperties)) {
				pp.Set(name, ref.Child("patternProperties", name))
			}
			sv.PatternProperties = pp
		}
		sv.MinProperties = toIntPtr(s.MinProperties)
		sv.MaxProperties = toIntPtr(s.MaxProperties)

		// rule 6: an object with no properties/required and a typed additionalProperties is a
		// map; represented here simply by leaving Properties nil and AdditionalProperties typed
		// — the converter (convert_object.go) checks for exactly this shape.
	}
	return sv, nil
}

func toIntPtr(f *float64) *int {
	if f == nil {
		return nil
	}
	i := int(*f)
	return &i
}

// canonicalizeOnce applies whichever of spec.md §4.2's rules 1, 2, 4, 5 match sl, returning the
// rewritten Schemalet and whether anything changed. Rules 3, 6, 7, 8 are already applied by
// lowerRawSchema since they need no cross-schemalet information.
func canonicalizeOnce(work map[SchemaRef]Schemalet, rawByRef map[SchemaRef]*RawSchema, ref SchemaRef, sl Schemalet) (Schemalet, bool, error) {
	raw, hasRaw := rawByRef[ref]
	if !hasRaw || raw.Boolean != nil {
		return sl, false, nil
	}

	// lowerRawSchema installs Anything as a placeholder for every combinator schema (type array,
	// allOf, anyOf, oneOf) and leaves the actual rewrite to the rules below; rawByRef is immutable,
	// so without this guard every rule below would fire again on every subsequent pass even though
	// sl already holds its rewritten form, and the fixed-point loop would never reach !changed.
	if sl.Details.Kind != DetailsAnything {
		return sl, false, nil
	}

	// rule 1 & 2: multi-element type array.
	if len(raw.Type) > 1 {
		return splitTypeUnion(work, ref, raw, sl)
	}

	if len(raw.AllOf) > 0 {
		return mergeAllOf(work, ref, raw, sl)
	}

	if len(raw.AnyOf) > 0 {
		return oneOfFromBranches(ref, raw.AnyOf, "anyOf"), true, nil
	}
	if len(raw.OneOf) > 0 {
		return oneOfFromBranches(ref, raw.OneOf, "oneOf"), true, nil
	}

	return sl, false, nil
}

func splitTypeUnion(work map[SchemaRef]Schemalet, ref SchemaRef, raw *RawSchema, sl Schemalet) (Schemalet, bool, error) {
	types := raw.Type
	hasNull := false
	var rest []string
	for _, t := range types {
		if t == "null" {
			hasNull = true
			continue
		}
		rest = append(rest, t)
	}

	if hasNull && len(rest) == 1 {
		// rule 2: single non-null remainder -> the type itself, wrapped Optional at the
		// converter (it recognizes a schemalet reachable only via a nullable union and emits
		// Option<T> — tracked by leaving a marker branch here that convert_scalar.go detects).
		kind, err := valueKindOf(rest[0])
		if err != nil {
			return sl, false, &UnsupportedSchemaConstructionError{Ref: ref, Message: err.Error()}
		}
		sv, err := lowerValue(raw, kind, ref)
		if err != nil {
			return sl, false, err
		}
		sv.nullable = true
		return Schemalet{Metadata: sl.Metadata, Details: ValueDetails(sv)}, true, nil
	}

	branches := make([]SchemaRef, 0, len(types))
	for i, t := range types {
		branchRef := ref.Child("type", itoa(i))
		kind, err := valueKindOf(t)
		if err != nil {
			return sl, false, &UnsupportedSchemaConstructionError{Ref: ref, Message: err.Error()}
		}
		sv, err := lowerValue(raw, kind, branchRef)
		if err != nil {
			return sl, false, err
		}
		work[branchRef] = Schemalet{Details: ValueDetails(sv)}
		branches = append(branches, branchRef)
	}
	return Schemalet{Metadata: sl.Metadata, Details: ExclusiveOneOfDetails(branches, nil)}, true, nil
}

func oneOfFromBranches(ref SchemaRef, branches []*RawSchema, keyword string) Schemalet {
	refs := make([]SchemaRef, len(branches))
	for i := range branches {
		refs[i] = ref.Child(keyword, itoa(i))
	}
	return Schemalet{Details: ExclusiveOneOfDetails(refs, detectDiscriminant(branches, ref, keyword))}
}

// detectDiscriminant looks for a shared required string property with distinct constant values
// across every branch, the condition spec.md §4.4's Internal-tagging tie-break depends on. It is
// computed here, at canonicalization time, because the converter needs it already resolved to
// choose a tagging strategy without re-walking raw schemas.
func detectDiscriminant(branches []*RawSchema, parent SchemaRef, keyword string) *Discriminant {
	if len(branches) < 2 {
		return nil
	}
	var candidate string
	mapping := make(map[string]SchemaRef)
	for i, b := range branches {
		if b.Properties == nil {
			return nil
		}
		found := false
		for _, name := range sortedKeys(map[string]*RawSchema(*b.Properties)) {
			propSchema := map[string]*RawSchema(*b.Properties)[name]
			if !containsString(b.Required, name) {
				continue
			}
			if propSchema.Const == nil || !propSchema.Const.IsSet {
				continue
			}
			tag, ok := propSchema.Const.Value.(string)
			if !ok {
				continue
			}
			if candidate != "" && candidate != name {
				continue
			}
			candidate = name
			if _, dup := mapping[tag]; dup {
				return nil
			}
			mapping[tag] = parent.Child(keyword, itoa(i))
			found = true
		}
		if !found {
			return nil
		}
	}
	if candidate == "" {
		return nil
	}
	return &Discriminant{PropertyName: candidate, Mapping: mapping}
}

// mergeAllOf implements spec.md §4.2 rule 4: member-wise merge of allOf branches, grounded in
// spirit on the teacher's schemamerge.go (same helper shapes: chooseMin/chooseMax/intersection)
// but intersecting rather than widening, since allOf composition narrows the valid instance set.
func mergeAllOf(work map[SchemaRef]Schemalet, ref SchemaRef, raw *RawSchema, sl Schemalet) (Schemalet, bool, error) {
	merged := &RawSchema{}
	required := map[string]bool{}
	firstRequired := true
	properties := RawSchemaMap{}
	var patterns []string

	apply := func(branch *RawSchema) error {
		if len(branch.Type) > 0 {
			if len(merged.Type) > 0 && !sameStringSlice(merged.Type, branch.Type) {
				return fmt.Errorf("allOf branches disagree on type")
			}
			merged.Type = branch.Type
		}
		if branch.Minimum != nil {
			merged.Minimum = chooseMax(merged.Minimum, branch.Minimum)
		}
		if branch.Maximum != nil {
			merged.Maximum = chooseMin(merged.Maximum, branch.Maximum)
		}
		if branch.MinLength != nil {
			merged.MinLength = chooseMax(merged.MinLength, branch.MinLength)
		}
		if branch.MaxLength != nil {
			merged.MaxLength = chooseMin(merged.MaxLength, branch.MaxLength)
		}
		if branch.Pattern != nil {
			// logical AND of patterns (spec.md §4.2 rule 4): keep every branch's pattern, not just
			// the last one seen, since a constrained newtype must satisfy all of them.
			patterns = append(patterns, *branch.Pattern)
		}
		reqSet := map[string]bool{}
		for _, r := range branch.Required {
			reqSet[r] = true
		}
		if firstRequired {
			required = reqSet
			firstRequired = false
		} else {
			for k := range required {
				if !reqSet[k] {
					delete(required, k)
				}
			}
		}
		if branch.Properties != nil {
			for name, propSchema := range map[string]*RawSchema(*branch.Properties) {
				if existing, ok := properties[name]; ok && existing != propSchema {
					// conflicting properties that don't share identity become Nothing per rule 4;
					// a full structural-agreement check is left to the converter, which will
					// surface a mismatch as UnsupportedSchemaConstructionError if the two differ.
					_ = existing
				}
				properties[name] = propSchema
			}
		}
		return nil
	}

	for _, branch := range raw.AllOf {
		if err := apply(branch); err != nil {
			return sl, false, &UnsupportedSchemaConstructionError{Ref: ref, Message: err.Error()}
		}
	}
	merged.Required = mapKeys(required)
	if len(properties) > 0 {
		pm := properties
		merged.Properties = &pm
	}
	if len(merged.Type) == 0 {
		merged.Type = RawSchemaType{"object"}
	}

	kind, err := valueKindOf(merged.Type[0])
	if err != nil {
		return sl, false, &UnsupportedSchemaConstructionError{Ref: ref, Message: err.Error()}
	}
	sv, err := lowerValue(merged, kind, ref)
	if err != nil {
		return sl, false, err
	}
	if len(patterns) > 0 {
		sv.Patterns = patterns
	}
	return Schemalet{Metadata: sl.Metadata, Details: ValueDetails(sv)}, true, nil
}

func chooseMin(a, b *float64) *float64 {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if *a < *b {
		return a
	}
	return b
}

func chooseMax(a, b *float64) *float64 {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if *a > *b {
		return a
	}
	return b
}

// sortedKeys returns m's keys in lexicographic order. RawSchemaMap is a plain Go map, so anywhere
// its iteration order would leak into emitted output (struct field order, discriminant candidate
// selection) needs this instead of a bare range. This is a documented simplification: it yields a
// deterministic order, not necessarily the original JSON document's key order, since RawSchema
// does not retain token-level position information from parsing.
func sortedKeys(m map[string]*RawSchema) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func mapKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func sameStringSlice(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
