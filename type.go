package typegen

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/go-json-experiment/json"
)

// TypeId identifies a Type in the type space. An interned Type's TypeId is the SHA-256 of its
// canonical JSON encoding, so structurally equal interned Types share one TypeId; a Type that
// converter.Convert builds for a SchemaRef keeps the placeholder TypeId derived from that
// SchemaRef, which is what breaks recursive cycles (spec.md §3, §4.5). Grounded on the
// teacher's own use of go-json-experiment/json's json.Deterministic(true) option in schema.go's
// MarshalJSON, generalized from "stable bytes for diffing" to "stable bytes for a content hash".
type TypeId [32]byte

func (id TypeId) String() string { return hex.EncodeToString(id[:]) }

func (id TypeId) IsZero() bool { return id == TypeId{} }

// hashType computes the TypeId of t from its canonical JSON projection. The projection is a
// plain struct built from t's exported identity fields so that two structurally-equal Types
// produce byte-identical JSON regardless of which order their fields were populated in.
func hashType(t Type) TypeId {
	data, err := json.Marshal(t.hashProjection(), json.Deterministic(true))
	if err != nil {
		// A Type's hash projection is built entirely from this package's own types; a marshal
		// failure here means a projection field holds something json-experiment cannot encode,
		// which is a programmer error, not a runtime condition callers can recover from.
		panic(fmt.Errorf("hashType: %w", err))
	}
	sum := sha256.Sum256(data)
	return TypeId(sum)
}

// TypeKind enumerates the shapes a schemalet can lower to, per spec.md §3.
type TypeKind int

const (
	TypeStruct TypeKind = iota
	TypeEnum
	TypeNewtype
	TypeVec
	TypeMap
	TypeTuple
	TypeOption
	TypePrimitive
	TypeJsonValue
	TypeUnit
	TypeNative
	TypeBuiltIn
)

func (k TypeKind) String() string {
	return [...]string{
		"Struct", "Enum", "Newtype", "Vec", "Map", "Tuple",
		"Option", "Primitive", "JsonValue", "Unit", "Native", "BuiltIn",
	}[k]
}

// PropertyState tags how a StructProperty participates in (de)serialization, per spec.md §3 and
// the nullable-vs-optional distinction in §9.
type PropertyState int

const (
	PropertyRequired PropertyState = iota
	PropertyOptional
	PropertyDefault
	PropertyFlatten
)

// StructProperty is one field of a Struct Type.
type StructProperty struct {
	Identifier   string
	SerdeRename  string // original JSON name, set only when it differs from Identifier
	State        PropertyState
	DefaultValue any // meaningful only when State == PropertyDefault
	Doc          string
	Type         TypeId
}

// EnumVariantKind tags the shape of a single EnumVariant's payload.
type EnumVariantKind int

const (
	VariantUnit EnumVariantKind = iota
	VariantNewtypeLike
	VariantTuple
	VariantStruct
)

// EnumVariant is one arm of an Enum Type.
type EnumVariant struct {
	Identifier string
	Rename     string
	Doc        string
	Kind       EnumVariantKind
	Newtype    TypeId           // VariantNewtypeLike
	Tuple      []TypeId         // VariantTuple
	Fields     []StructProperty // VariantStruct
}

// EnumTagType selects the wire-tagging convention for an Enum, per spec.md §3/§4.4.
type EnumTagType int

const (
	TagExternal EnumTagType = iota
	TagInternal
	TagAdjacent
	TagUntagged
)

// Constraints records the validation a Newtype's constructor enforces, carried through to the
// emitter so it can synthesize the fallible-constructor body (spec.md §4.4 rule 6-8, §9).
type Constraints struct {
	MinLength, MaxLength         *int
	Patterns                     []string // ANDed regexes; rendered as one MatchString check each
	Minimum, Maximum             *float64
	ExclusiveMinimum             *float64
	ExclusiveMaximum             *float64
	MultipleOf                   *float64
	OutOfRangeBigInt             bool // integer bounds exceed int64/uint64; wrap *big.Int instead
}

// Type is the target-language representation of a converted schemalet, per spec.md §3. Exactly
// the fields relevant to Kind are populated.
type Type struct {
	Kind TypeKind
	Name string // user-visible identifier; empty for structurally anonymous types (Vec, Map, ...)
	Doc  string

	// Struct
	Properties []StructProperty

	// Enum
	Variants []EnumVariant
	TagType  EnumTagType
	TagName  string // meaningful for Internal/Adjacent
	Content  string // meaningful for Adjacent

	// Newtype
	Inner       TypeId
	Constraints Constraints

	// Vec / Option
	Elem TypeId

	// Map
	MapKey   TypeId
	MapValue TypeId

	// Tuple
	Elems []TypeId

	// Primitive
	PrimitiveName string // e.g. "bool", "int64", "string", "float64"

	// Native (Replacement / x-go-type)
	NativeImportPath string
	NativeExpr       string

	// Aliased structural-dedup names recorded when a later insertion collapses onto an earlier
	// TypeId; tracked for the emitter's doc-comment surfacing (spec.md §4.5).
	Aliases []string

	// SourceRef traces this Type back to the Schemalet it was converted from, used by the
	// emitter's "pretty-printed source fragment" doc-comment requirement (spec.md §4.6).
	SourceRef SchemaRef

	// SourceJSON is the pretty-printed original JSON Schema fragment SourceRef resolved to, when
	// one exists (synthesized schemalets have none). Presentation only, excluded from the
	// structural hash.
	SourceJSON string
}

// hashProjection returns the subset of t that participates in structural-equality hashing:
// everything except Name, Doc, Aliases, SourceRef, and SourceJSON, which are presentation, not
// shape.
func (t Type) hashProjection() any {
	type projection struct {
		Kind          TypeKind
		Properties    []StructProperty `json:",omitempty"`
		Variants      []EnumVariant    `json:",omitempty"`
		TagType       EnumTagType
		TagName       string `json:",omitempty"`
		Content       string `json:",omitempty"`
		Inner         TypeId
		Constraints   Constraints
		Elem          TypeId
		MapKey        TypeId
		MapValue      TypeId
		Elems         []TypeId `json:",omitempty"`
		PrimitiveName string   `json:",omitempty"`
		NativeImport  string   `json:",omitempty"`
		NativeExpr    string   `json:",omitempty"`
	}
	return projection{
		Kind:          t.Kind,
		Properties:    t.Properties,
		Variants:      t.Variants,
		TagType:       t.TagType,
		TagName:       t.TagName,
		Content:       t.Content,
		Inner:         t.Inner,
		Constraints:   t.Constraints,
		Elem:          t.Elem,
		MapKey:        t.MapKey,
		MapValue:      t.MapValue,
		Elems:         t.Elems,
		PrimitiveName: t.PrimitiveName,
		NativeImport:  t.NativeImportPath,
		NativeExpr:    t.NativeExpr,
	}
}
