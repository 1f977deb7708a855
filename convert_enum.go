package typegen

import "github.com/typelift/typegen/pkg/identifier"

// convertOneOf implements spec.md §4.4 step 4: an ExclusiveOneOf lowers to an Enum, with tagging
// chosen by the fixed tie-break order in spec.md §4.4's "Enum tagging tie-breaks" paragraph:
// Adjacent (every branch is exactly {tag, content}) > Internal (discriminant already detected by
// the canonicalizer) > Untagged.
func (c *converter) convertOneOf(ref SchemaRef, sl Schemalet) (Type, error) {
	branches, discriminant, _ := sl.Details.AsExclusiveOneOf()
	if len(branches) == 0 {
		return Type{}, c.err(ref, "ExclusiveOneOf with no branches")
	}

	variants := make([]EnumVariant, 0, len(branches))
	taken := map[string]bool{}

	if adjacentTag, adjacentContent, ok := detectAdjacent(c.graph, branches); ok {
		for i, b := range branches {
			variant, err := c.buildVariant(b, i, taken)
			if err != nil {
				return Type{}, err
			}
			variants = append(variants, variant)
		}
		return Type{Kind: TypeEnum, TagType: TagAdjacent, TagName: adjacentTag, Content: adjacentContent, Variants: variants}, nil
	}

	if discriminant != nil {
		for i, b := range branches {
			variant, err := c.buildVariant(b, i, taken)
			if err != nil {
				return Type{}, err
			}
			for tag, branchRef := range discriminant.Mapping {
				if branchRef == b {
					variant.Rename = tag
				}
			}
			variants = append(variants, variant)
		}
		return Type{Kind: TypeEnum, TagType: TagInternal, TagName: discriminant.PropertyName, Variants: variants}, nil
	}

	for i, b := range branches {
		variant, err := c.buildVariant(b, i, taken)
		if err != nil {
			return Type{}, err
		}
		variants = append(variants, variant)
	}
	return Type{Kind: TypeEnum, TagType: TagUntagged, Variants: variants}, nil
}

// buildVariant converts a single oneOf/anyOf branch into an EnumVariant, choosing its shape from
// the branch's own Type the way the value itself would convert: a scalar becomes NewtypeLike, an
// object's properties become a Struct variant, Null becomes Unit.
func (c *converter) buildVariant(ref SchemaRef, index int, taken map[string]bool) (EnumVariant, error) {
	id, err := c.Convert(ref)
	if err != nil {
		return EnumVariant{}, err
	}
	t, _ := c.ts.lookup(id)

	name := t.Name
	if name == "" {
		name = "Variant" + itoa(index)
	}
	name = identifier.Reserve(identifier.Sanitize(name), taken)

	switch t.Kind {
	case TypeUnit:
		return EnumVariant{Identifier: name, Kind: VariantUnit}, nil
	case TypeStruct:
		return EnumVariant{Identifier: name, Kind: VariantStruct, Fields: t.Properties}, nil
	default:
		return EnumVariant{Identifier: name, Kind: VariantNewtypeLike, Newtype: id}, nil
	}
}

// detectAdjacent reports whether every branch is an object whose only properties are a string
// "type" property and a "value" property (the Adjacent{tag, content} tie-break, with those two
// property names as tag and content).
func detectAdjacent(g *canonicalGraph, branches []SchemaRef) (tag, content string, ok bool) {
	const candidateTag, candidateContent = "type", "value"
	for _, b := range branches {
		sl, found := g.Get(b)
		if !found {
			return "", "", false
		}
		v, isValue := sl.Details.AsValue()
		if !isValue || v.Kind != ValueObject || v.Properties == nil || v.Properties.Len() != 2 {
			return "", "", false
		}
		keys := v.Properties.Keys()
		has := map[string]bool{keys[0]: true, keys[1]: true}
		if !has[candidateTag] || !has[candidateContent] {
			return "", "", false
		}
	}
	return candidateTag, candidateContent, true
}

// convertStringEnum implements spec.md §4.4 step 8's enum_values branch: a non-empty finite
// string literal set becomes a C-style Enum of unit variants, each renamed to the literal.
func (c *converter) convertStringEnum(ref SchemaRef, values []any) (Type, error) {
	variants := make([]EnumVariant, 0, len(values))
	taken := map[string]bool{}
	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			return Type{}, c.err(ref, "mixed-type enum reached string-enum conversion")
		}
		variants = append(variants, EnumVariant{
			Identifier: identifier.Reserve(identifier.Sanitize(s), taken),
			Rename:     s,
			Kind:       VariantUnit,
		})
	}
	return Type{Kind: TypeEnum, TagType: TagExternal, Variants: variants}, nil
}
