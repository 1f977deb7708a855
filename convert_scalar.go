package typegen

import "math"

// convertValue dispatches a canonical Value schemalet to the appropriate converter step
// (spec.md §4.4 steps 5-11). The nullable marker set by canonicalization rule 2 wraps the result
// in Option at every step, since "absent" vs "present but null" must stay distinguishable
// (spec.md §9).
func (c *converter) convertValue(ref SchemaRef, v *SchemaletValue) (Type, error) {
	if v == nil {
		return Type{}, c.err(ref, "nil SchemaletValue")
	}

	t, err := c.convertValueInner(ref, v)
	if err != nil {
		return Type{}, err
	}
	if v.IsNullable() {
		inner := c.ts.intern(t)
		return Type{Kind: TypeOption, Elem: inner}, nil
	}
	return t, nil
}

func (c *converter) convertValueInner(ref SchemaRef, v *SchemaletValue) (Type, error) {
	switch v.Kind {
	case ValueNull:
		return Type{Kind: TypeUnit}, nil
	case ValueBoolean:
		return Type{Kind: TypePrimitive, PrimitiveName: "bool"}, nil
	case ValueInteger:
		return c.convertInteger(v), nil
	case ValueNumber:
		return c.convertNumber(v), nil
	case ValueString:
		return c.convertString(ref, v)
	case ValueArray:
		return c.convertArray(ref, v)
	case ValueObject:
		return c.convertObject(ref, v)
	default:
		return Type{}, c.err(ref, "unknown value kind %v", v.Kind)
	}
}

// convertInteger implements step 6: narrowest signed/unsigned primitive covering the stated
// bounds, default int64 when unbounded, *big.Int Newtype when bounds exceed every primitive
// range — the resolution of the Open Question in spec.md §9 about oversized integer bounds.
func (c *converter) convertInteger(v *SchemaletValue) Type {
	if v.MultipleOf != nil {
		inner := c.ts.intern(c.narrowestInt(v))
		return Type{Kind: TypeNewtype, Inner: inner, Constraints: Constraints{MultipleOf: v.MultipleOf}}
	}
	return c.narrowestInt(v)
}

func (c *converter) narrowestInt(v *SchemaletValue) Type {
	lo, hi, ok := integerBounds(v)
	if !ok {
		return Type{Kind: TypePrimitive, PrimitiveName: "int64"}
	}

	candidates := []struct {
		name     string
		min, max float64
	}{
		{"int8", math.MinInt8, math.MaxInt8},
		{"uint8", 0, math.MaxUint8},
		{"int16", math.MinInt16, math.MaxInt16},
		{"uint16", 0, math.MaxUint16},
		{"int32", math.MinInt32, math.MaxInt32},
		{"uint32", 0, math.MaxUint32},
		{"int64", math.MinInt64, math.MaxInt64},
		{"uint64", 0, math.MaxUint64},
	}
	for _, cand := range candidates {
		if lo >= cand.min && hi <= cand.max {
			return Type{Kind: TypePrimitive, PrimitiveName: cand.name}
		}
	}
	bigInt := c.ts.intern(Type{Kind: TypePrimitive, PrimitiveName: "*big.Int"})
	return Type{Kind: TypeNewtype, Inner: bigInt, Constraints: Constraints{OutOfRangeBigInt: true}}
}

func integerBounds(v *SchemaletValue) (lo, hi float64, ok bool) {
	lo, hi = math.Inf(-1), math.Inf(1)
	hasBound := false
	if v.Minimum != nil {
		lo, hasBound = *v.Minimum, true
	}
	if v.ExclusiveMinimum != nil {
		lo, hasBound = *v.ExclusiveMinimum+1, true
	}
	if v.Maximum != nil {
		hi, hasBound = *v.Maximum, true
	}
	if v.ExclusiveMaximum != nil {
		hi, hasBound = *v.ExclusiveMaximum-1, true
	}
	return lo, hi, hasBound
}

// convertNumber implements step 7: 64-bit float, Newtype-wrapped when multipleOf is present.
func (c *converter) convertNumber(v *SchemaletValue) Type {
	base := Type{Kind: TypePrimitive, PrimitiveName: "float64"}
	if v.MultipleOf == nil {
		return base
	}
	inner := c.ts.intern(base)
	return Type{Kind: TypeNewtype, Inner: inner, Constraints: Constraints{MultipleOf: v.MultipleOf}}
}

// convertString implements step 8: enum values take precedence (C-style enum), then any
// constraint wraps a Newtype(string), otherwise a bare string primitive.
func (c *converter) convertString(ref SchemaRef, v *SchemaletValue) (Type, error) {
	if len(v.EnumValues) > 0 {
		return c.convertStringEnum(ref, v.EnumValues)
	}

	base := Type{Kind: TypePrimitive, PrimitiveName: "string"}
	if len(v.Patterns) == 0 && v.MinLength == nil && v.MaxLength == nil && v.Format == nil {
		return base, nil
	}
	inner := c.ts.intern(base)
	return Type{
		Kind:  TypeNewtype,
		Inner: inner,
		Constraints: Constraints{
			MinLength: v.MinLength,
			MaxLength: v.MaxLength,
			Patterns:  v.Patterns,
		},
	}, nil
}

// convertArray implements step 9, recognizing the fixed-size tuple rule (canonicalization rule 7)
// ahead of the general Vec case.
func (c *converter) convertArray(ref SchemaRef, v *SchemaletValue) (Type, error) {
	if len(v.PrefixItems) > 0 && v.MinItems != nil && v.MaxItems != nil &&
		*v.MinItems == *v.MaxItems && *v.MinItems == len(v.PrefixItems) && v.Items == nil {
		elems := make([]TypeId, len(v.PrefixItems))
		for i, p := range v.PrefixItems {
			id, err := c.Convert(p)
			if err != nil {
				return Type{}, err
			}
			elems[i] = id
		}
		return Type{Kind: TypeTuple, Elems: elems}, nil
	}

	if v.Items == nil {
		return Type{Kind: TypeVec, Elem: c.ts.intern(Type{Kind: TypeJsonValue})}, nil
	}
	elemId, err := c.Convert(*v.Items)
	if err != nil {
		return Type{}, err
	}
	return Type{Kind: TypeVec, Elem: elemId}, nil
}
