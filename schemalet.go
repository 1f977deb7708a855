package typegen

import "fmt"

// Metadata carries the annotation keywords from a schema that survive canonicalization
// unmodified: title, description, default value, and examples, per spec.md §3.
type Metadata struct {
	Title       string
	Description string
	Default     any
	HasDefault  bool
	Examples    []any
}

// DetailsKind tags the variant of a Details value. Details is expressed as a Kind-tagged struct
// rather than a Go interface{} sum, mirroring the teacher's SchemaType/ConstValue design in
// schema.go: the converter's switches stay exhaustive `switch d.Kind` statements instead of type
// switches over an interface.
type DetailsKind int

const (
	// DetailsAnything matches any JSON value.
	DetailsAnything DetailsKind = iota
	// DetailsNothing matches no JSON value.
	DetailsNothing
	// DetailsConstant is a single literal JSON value.
	DetailsConstant
	// DetailsReference is indirection to another schemalet by SchemaRef.
	DetailsReference
	// DetailsExclusiveOneOf is a discriminated union of subschemas.
	DetailsExclusiveOneOf
	// DetailsValue is a typed value (Null/Boolean/Integer/Number/String/Array/Object).
	DetailsValue
)

func (k DetailsKind) String() string {
	switch k {
	case DetailsAnything:
		return "Anything"
	case DetailsNothing:
		return "Nothing"
	case DetailsConstant:
		return "Constant"
	case DetailsReference:
		return "Reference"
	case DetailsExclusiveOneOf:
		return "ExclusiveOneOf"
	case DetailsValue:
		return "Value"
	default:
		return fmt.Sprintf("DetailsKind(%d)", int(k))
	}
}

// Discriminant names the property used to pick a branch of an ExclusiveOneOf, and the mapping
// from the property's literal values to branch SchemaRefs, when known.
type Discriminant struct {
	PropertyName string
	Mapping      map[string]SchemaRef // literal tag value -> branch; nil if not statically known
}

// Details is the tagged variant of a Schemalet's content. Exactly the fields relevant to Kind
// are populated; callers use the AsXxx accessors rather than touching fields directly.
type Details struct {
	Kind DetailsKind

	constant any // DetailsConstant

	reference SchemaRef // DetailsReference

	oneOfBranches     []SchemaRef // DetailsExclusiveOneOf
	oneOfDiscriminant *Discriminant

	value *SchemaletValue // DetailsValue
}

// AnythingDetails constructs Details{Kind: DetailsAnything}.
func AnythingDetails() Details { return Details{Kind: DetailsAnything} }

// NothingDetails constructs Details{Kind: DetailsNothing}.
func NothingDetails() Details { return Details{Kind: DetailsNothing} }

// ConstantDetails constructs Details carrying a literal JSON value.
func ConstantDetails(v any) Details { return Details{Kind: DetailsConstant, constant: v} }

// AsConstant returns the literal value and true if d is a Constant.
func (d Details) AsConstant() (any, bool) {
	if d.Kind != DetailsConstant {
		return nil, false
	}
	return d.constant, true
}

// ReferenceDetails constructs Details pointing at another schemalet.
func ReferenceDetails(ref SchemaRef) Details { return Details{Kind: DetailsReference, reference: ref} }

// AsReference returns the target ref and true if d is a Reference.
func (d Details) AsReference() (SchemaRef, bool) {
	if d.Kind != DetailsReference {
		return SchemaRef{}, false
	}
	return d.reference, true
}

// ExclusiveOneOfDetails constructs a discriminated-union Details.
func ExclusiveOneOfDetails(branches []SchemaRef, disc *Discriminant) Details {
	return Details{Kind: DetailsExclusiveOneOf, oneOfBranches: branches, oneOfDiscriminant: disc}
}

// AsExclusiveOneOf returns the branch list and discriminant (nil if absent), and true if d is an
// ExclusiveOneOf.
func (d Details) AsExclusiveOneOf() ([]SchemaRef, *Discriminant, bool) {
	if d.Kind != DetailsExclusiveOneOf {
		return nil, nil, false
	}
	return d.oneOfBranches, d.oneOfDiscriminant, true
}

// ValueDetails constructs Details wrapping a SchemaletValue.
func ValueDetails(v *SchemaletValue) Details { return Details{Kind: DetailsValue, value: v} }

// AsValue returns the SchemaletValue and true if d is a Value.
func (d Details) AsValue() (*SchemaletValue, bool) {
	if d.Kind != DetailsValue {
		return nil, false
	}
	return d.value, true
}

// ValueKind enumerates the instance types a SchemaletValue can take, per spec.md §3's
// `Null | Boolean | Integer{...} | Number{...} | String{...} | Array{...} | Object{...}`.
type ValueKind int

const (
	ValueNull ValueKind = iota
	ValueBoolean
	ValueInteger
	ValueNumber
	ValueString
	ValueArray
	ValueObject
)

func (k ValueKind) String() string {
	return [...]string{"Null", "Boolean", "Integer", "Number", "String", "Array", "Object"}[k]
}

// SchemaletValue is the post-canonicalization payload of a single-instance-type schemalet. Only
// the fields matching Kind are meaningful; the invariant (spec.md §3) is enforced by the
// canonicalizer, which splits any input schema with more than one instance type into an
// ExclusiveOneOf of single-type subschemas before a SchemaletValue is ever constructed.
type SchemaletValue struct {
	Kind ValueKind

	// nullable marks a value lowered from a `type: [T, "null"]` union (canonicalization rule 2):
	// the converter wraps it in Option at emission instead of creating a two-branch enum.
	nullable bool

	// Integer / Number
	Minimum          *float64
	ExclusiveMinimum *float64
	Maximum          *float64
	ExclusiveMaximum *float64
	MultipleOf       *float64

	// String
	Patterns   []string // ANDed regexes (spec.md §4.2 rule 4): a single pattern is a one-element list
	Format     *string
	MinLength  *int
	MaxLength  *int
	EnumValues []any // non-empty => finite literal set (spec.md §4.2 rule 3)

	// Array
	Items       *SchemaRef
	PrefixItems []SchemaRef
	MinItems    *int
	MaxItems    *int
	UniqueItems bool

	// Object
	Properties           *orderedSchemaRefMap
	Required             map[string]bool
	AdditionalProperties additionalProperties
	PropertyNames        *SchemaRef
	PatternProperties    *orderedSchemaRefMap
	MinProperties        *int
	MaxProperties        *int
}

// IsNullable reports whether v was lowered from a nullable type union.
func (v *SchemaletValue) IsNullable() bool { return v != nil && v.nullable }

// additionalProperties represents the tri-state additionalProperties keyword after
// canonicalization: absent/true (Allowed), false (Forbidden), or a schema (Typed).
type additionalProperties struct {
	kind   additionalPropertiesKind
	schema SchemaRef
}

type additionalPropertiesKind int

const (
	additionalPropertiesAllowed additionalPropertiesKind = iota
	additionalPropertiesForbidden
	additionalPropertiesTyped
)

func AllowedAdditionalProperties() additionalProperties {
	return additionalProperties{kind: additionalPropertiesAllowed}
}
func ForbiddenAdditionalProperties() additionalProperties {
	return additionalProperties{kind: additionalPropertiesForbidden}
}
func TypedAdditionalProperties(ref SchemaRef) additionalProperties {
	return additionalProperties{kind: additionalPropertiesTyped, schema: ref}
}

func (a additionalProperties) IsAllowed() bool   { return a.kind == additionalPropertiesAllowed }
func (a additionalProperties) IsForbidden() bool { return a.kind == additionalPropertiesForbidden }
func (a additionalProperties) Schema() (SchemaRef, bool) {
	if a.kind != additionalPropertiesTyped {
		return SchemaRef{}, false
	}
	return a.schema, true
}

// orderedSchemaRefMap preserves insertion order, which the name resolver and struct-field
// emission both follow (spec.md §4.3, §4.6). The canonicalizer inserts keys in lexicographic
// order (sortedKeys), since RawSchemaMap does not keep the document's source key order.
type orderedSchemaRefMap struct {
	keys   []string
	values map[string]SchemaRef
}

func newOrderedSchemaRefMap() *orderedSchemaRefMap {
	return &orderedSchemaRefMap{values: make(map[string]SchemaRef)}
}

func (m *orderedSchemaRefMap) Set(key string, ref SchemaRef) {
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = ref
}

func (m *orderedSchemaRefMap) Get(key string) (SchemaRef, bool) {
	v, ok := m.values[key]
	return v, ok
}

func (m *orderedSchemaRefMap) Keys() []string { return m.keys }

func (m *orderedSchemaRefMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Schemalet pairs Metadata with Details, per spec.md §3.
type Schemalet struct {
	Metadata Metadata
	Details  Details
}

// appendOnlyMap is the generic append-only map abstraction spec.md §5 requires: insert and get
// may interleave during a single depth-first traversal, but re-insertion of an existing key is a
// programmer error and panics, since it can only indicate a miscounted recursive-construction
// invariant (see TypeSpace.placeholder and TypeSpace.overwrite in typespace.go for the legitimate
// way to express recursion: install a placeholder value, then overwrite it in place, never
// re-insert under Insert).
type appendOnlyMap[K comparable, V any] struct {
	order []K
	data  map[K]V
}

func newAppendOnlyMap[K comparable, V any]() *appendOnlyMap[K, V] {
	return &appendOnlyMap[K, V]{data: make(map[K]V)}
}

// Insert adds key/value, panicking if key is already present.
func (m *appendOnlyMap[K, V]) Insert(key K, value V) {
	if _, exists := m.data[key]; exists {
		panic(fmt.Errorf("%w: %v", ErrAppendOnlyReinsertion, key))
	}
	m.order = append(m.order, key)
	m.data[key] = value
}

// Overwrite replaces the value for an existing key in place, without affecting insertion order.
// This is the sanctioned way to resolve a Pending placeholder (see convert.go) without violating
// the append-only-on-Insert invariant.
func (m *appendOnlyMap[K, V]) Overwrite(key K, value V) {
	if _, exists := m.data[key]; !exists {
		panic(fmt.Errorf("%w: overwrite of absent key %v", ErrSchemaInternalsIsNil, key))
	}
	m.data[key] = value
}

// Get returns the value for key and whether it is present.
func (m *appendOnlyMap[K, V]) Get(key K) (V, bool) {
	v, ok := m.data[key]
	return v, ok
}

// Has reports whether key is present.
func (m *appendOnlyMap[K, V]) Has(key K) bool {
	_, ok := m.data[key]
	return ok
}

// Keys returns every key in insertion order.
func (m *appendOnlyMap[K, V]) Keys() []K {
	out := make([]K, len(m.order))
	copy(out, m.order)
	return out
}

// Len returns the number of entries.
func (m *appendOnlyMap[K, V]) Len() int { return len(m.order) }
