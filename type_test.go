package typegen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypeId_ZeroValue(t *testing.T) {
	var id TypeId
	assert.True(t, id.IsZero())
	assert.Equal(t, 64, len(id.String())) // hex-encoded 32 bytes
}

func TestTypeKind_String(t *testing.T) {
	assert.Equal(t, "Struct", TypeStruct.String())
	assert.Equal(t, "BuiltIn", TypeBuiltIn.String())
	assert.Equal(t, "Native", TypeNative.String())
}

func TestHashType_DeterministicAcrossFieldPopulationOrder(t *testing.T) {
	a := Type{Kind: TypePrimitive, PrimitiveName: "string"}
	b := Type{PrimitiveName: "string", Kind: TypePrimitive}
	assert.Equal(t, hashType(a), hashType(b))
}

func TestHashType_DiffersOnStructuralChange(t *testing.T) {
	a := Type{Kind: TypePrimitive, PrimitiveName: "string"}
	b := Type{Kind: TypePrimitive, PrimitiveName: "integer"}
	assert.NotEqual(t, hashType(a), hashType(b))
}

func TestHashType_IgnoresNonStructuralFields(t *testing.T) {
	a := Type{Kind: TypePrimitive, PrimitiveName: "string", Doc: "first"}
	b := Type{Kind: TypePrimitive, PrimitiveName: "string", Doc: "second"}
	assert.Equal(t, hashType(a), hashType(b))
}
