package typegen

import "github.com/typelift/typegen/pkg/identifier"

// convertObject implements spec.md §4.4 step 10: a map-shaped object (canonicalization rule 6 —
// no properties, no required, typed additionalProperties) becomes a Map; otherwise a Struct with
// one StructProperty per property, converted in lexicographic property-name order (the order
// the canonicalizer inserts them in).
func (c *converter) convertObject(ref SchemaRef, v *SchemaletValue) (Type, error) {
	if v.Properties.Len() == 0 && len(v.Required) == 0 {
		if valueRef, ok := v.AdditionalProperties.Schema(); ok {
			valueId, err := c.Convert(valueRef)
			if err != nil {
				return Type{}, err
			}
			keyId := c.ts.intern(Type{Kind: TypePrimitive, PrimitiveName: "string"})
			return Type{Kind: TypeMap, MapKey: keyId, MapValue: valueId}, nil
		}
	}

	taken := map[string]bool{}
	properties := make([]StructProperty, 0, v.Properties.Len())

	for _, jsonName := range v.Properties.Keys() {
		propRef, _ := v.Properties.Get(jsonName)
		innerId, err := c.Convert(propRef)
		if err != nil {
			return Type{}, err
		}

		fieldName := identifier.Reserve(identifier.Sanitize(jsonName), taken)
		rename := ""
		if fieldName != jsonName {
			rename = jsonName
		}

		state := PropertyOptional
		var defaultValue any
		if v.Required[jsonName] && !propertyIsNullable(c.graph, propRef) {
			state = PropertyRequired
		} else if propSl, ok := c.graph.Get(propRef); ok && propSl.Metadata.HasDefault {
			state = PropertyDefault
			defaultValue = propSl.Metadata.Default
		}

		propSl, _ := c.graph.Get(propRef)
		properties = append(properties, StructProperty{
			Identifier:   fieldName,
			SerdeRename:  rename,
			State:        state,
			DefaultValue: defaultValue,
			Doc:          propSl.Metadata.Description,
			Type:         innerId,
		})
	}

	t := Type{Kind: TypeStruct, Properties: properties}
	if !v.AdditionalProperties.IsAllowed() && !v.AdditionalProperties.IsForbidden() {
		// typed-but-also-has-properties object: additionalProperties constrains unknown keys
		// beyond the declared set. Nothing about it is recorded on the Struct, so the generated
		// type neither stores nor checks keys beyond the declared properties.
	}
	return t, nil
}

// propertyIsNullable reports whether ref's schemalet was lowered from a nullable type union
// (canonicalization rule 2), in which case it stays Optional even when required — spec.md §9's
// "do not merge Option<Option<T>> away" rule means a required-but-nullable property is exactly
// the one case requiring both: the field is present in JSON but its value may be null, which in
// Go is already expressed by a pointer/Option type, so State stays Optional and the emitter does
// not add omitempty.
func propertyIsNullable(g *canonicalGraph, ref SchemaRef) bool {
	sl, ok := g.Get(ref)
	if !ok {
		return false
	}
	v, ok := sl.Details.AsValue()
	return ok && v.IsNullable()
}
