package typegen

import (
	"fmt"
	"strings"
)

// renderEnum emits an Enum Type. Two shapes, chosen by whether every variant is a bare unit
// (spec.md §4.4 step 8's string-literal case): a pure string enum renders as the idiomatic Go
// enum (defined string type + constants + validating UnmarshalJSON), matching spec.md §4.6's "For
// enumerations of string literals: ToString, FromStr, TryFrom" bullet translated to Go's own
// idiom (Stringer, a Valid<T> membership check and the validating UnmarshalJSON replace TryFrom,
// since Go has no fallible conversion trait). Anything else — mixed variant kinds, or a tagging strategy a plain string
// can't carry — renders as a one-field-per-variant wrapper struct with Marshal/Unmarshal
// implementing External/Internal/Adjacent/Untagged per spec.md §3/§4.4.
func renderEnum(ts *TypeSpace, id TypeId, t Type) (string, error) {
	if t.TagType == TagExternal && allUnitVariants(t.Variants) {
		return renderStringEnum(t), nil
	}
	return renderSumTypeEnum(ts, id, t)
}

func allUnitVariants(vs []EnumVariant) bool {
	for _, v := range vs {
		if v.Kind != VariantUnit {
			return false
		}
	}
	return len(vs) > 0
}

func renderStringEnum(t Type) string {
	var b strings.Builder
	b.WriteString(docComment(t))
	fmt.Fprintf(&b, "type %s string\n\n", t.Name)
	b.WriteString("const (\n")
	for _, v := range t.Variants {
		fmt.Fprintf(&b, "\t%s%s %s = %q\n", t.Name, v.Identifier, t.Name, v.Rename)
	}
	b.WriteString(")\n\n")

	fmt.Fprintf(&b, "func (v %s) String() string { return string(v) }\n\n", t.Name)

	fmt.Fprintf(&b, "// Valid%s reports whether v is one of the %s schema's declared enum values.\n", t.Name, t.Name)
	fmt.Fprintf(&b, "func Valid%s(v %s) bool {\n\tswitch v {\n\tcase", t.Name, t.Name)
	for i, v := range t.Variants {
		if i > 0 {
			b.WriteString(",")
		}
		fmt.Fprintf(&b, " %s%s", t.Name, v.Identifier)
	}
	b.WriteString(":\n\t\treturn true\n\t}\n\treturn false\n}\n\n")

	fmt.Fprintf(&b, "func (v *%s) UnmarshalJSON(data []byte) error {\n", t.Name)
	b.WriteString("\tvar s string\n\tif err := json.Unmarshal(data, &s); err != nil {\n\t\treturn err\n\t}\n")
	fmt.Fprintf(&b, "\tcandidate := %s(s)\n", t.Name)
	fmt.Fprintf(&b, "\tif !Valid%s(candidate) {\n\t\treturn &ConversionError{TypeName: %q, Reason: \"not a declared enum value: \" + s}\n\t}\n", t.Name, t.Name)
	b.WriteString("\t*v = candidate\n\treturn nil\n}\n")
	return b.String()
}

// renderSumTypeEnum emits a wrapper struct with one pointer field per variant — exactly one is
// non-nil in a valid value — plus Marshal/Unmarshal implementing t.TagType's wire convention.
// This is the idiomatic Go rendering of a sum type: Go has no enum-with-payload construct, and an
// interface-based rendering would force every variant into its own top-level named type even for
// anonymous newtype-like branches, so the pointer-fields-in-one-struct shape (the same one
// oapi-codegen and similar OpenAPI-to-Go generators use for oneOf) is preferred here.
func renderSumTypeEnum(ts *TypeSpace, id TypeId, t Type) (string, error) {
	var b strings.Builder
	b.WriteString(docComment(t))
	fmt.Fprintf(&b, "type %s struct {\n", t.Name)

	var fieldExprs []string
	for _, v := range t.Variants {
		expr, err := variantFieldType(ts, id, v)
		if err != nil {
			return "", err
		}
		fieldExprs = append(fieldExprs, expr)
		fmt.Fprintf(&b, "\t%s *%s `json:\"-\"`\n", v.Identifier, expr)
	}
	b.WriteString("}\n\n")

	if err := renderEnumMarshal(&b, ts, t, fieldExprs); err != nil {
		return "", err
	}
	if err := renderEnumUnmarshal(&b, ts, t, fieldExprs); err != nil {
		return "", err
	}
	return b.String(), nil
}

// variantFieldType resolves the Go type a wrapper struct's per-variant field holds: the
// variant's own converted TypeId for NewtypeLike, a synthesized nested struct for Struct
// variants (rendered inline since these payload shapes are never referenced independently), and
// an empty marker type for Unit.
func variantFieldType(ts *TypeSpace, ownerId TypeId, v EnumVariant) (string, error) {
	switch v.Kind {
	case VariantUnit:
		return "struct{}", nil
	case VariantNewtypeLike:
		return goTypeExprOf(ts, v.Newtype, ownerId)
	case VariantStruct:
		var fields []string
		for _, p := range v.Fields {
			ft, err := goTypeExprOf(ts, p.Type, ownerId)
			if err != nil {
				return "", err
			}
			jsonName := p.SerdeRename
			if jsonName == "" {
				jsonName = p.Identifier
			}
			fields = append(fields, fmt.Sprintf("%s %s `json:%q`", p.Identifier, ft, jsonName))
		}
		return "struct{ " + strings.Join(fields, "; ") + " }", nil
	default:
		return "", fmt.Errorf("emit: unhandled variant kind for %s", v.Identifier)
	}
}

func renderEnumMarshal(b *strings.Builder, ts *TypeSpace, t Type, fieldExprs []string) error {
	fmt.Fprintf(b, "func (v %s) MarshalJSON() ([]byte, error) {\n", t.Name)
	switch t.TagType {
	case TagUntagged:
		for _, variant := range t.Variants {
			fmt.Fprintf(b, "\tif v.%s != nil {\n\t\treturn json.Marshal(v.%s)\n\t}\n", variant.Identifier, variant.Identifier)
		}
		fmt.Fprintf(b, "\treturn nil, &ConversionError{TypeName: %q, Reason: \"no variant is set\"}\n}\n\n", t.Name)

	case TagExternal:
		for _, variant := range t.Variants {
			fmt.Fprintf(b, "\tif v.%s != nil {\n\t\treturn json.Marshal(map[string]any{%q: v.%s})\n\t}\n", variant.Identifier, variant.Rename, variant.Identifier)
		}
		fmt.Fprintf(b, "\treturn nil, &ConversionError{TypeName: %q, Reason: \"no variant is set\"}\n}\n\n", t.Name)

	case TagAdjacent:
		for _, variant := range t.Variants {
			tag := variant.Rename
			if tag == "" {
				tag = variant.Identifier
			}
			fmt.Fprintf(b, "\tif v.%s != nil {\n\t\treturn json.Marshal(map[string]any{%q: %q, %q: v.%s})\n\t}\n",
				variant.Identifier, t.TagName, tag, t.Content, variant.Identifier)
		}
		fmt.Fprintf(b, "\treturn nil, &ConversionError{TypeName: %q, Reason: \"no variant is set\"}\n}\n\n", t.Name)

	case TagInternal:
		for _, variant := range t.Variants {
			tag := variant.Rename
			if tag == "" {
				tag = variant.Identifier
			}
			b.WriteString(fmt.Sprintf("\tif v.%s != nil {\n", variant.Identifier))
			b.WriteString("\t\tdata, err := json.Marshal(v." + variant.Identifier + ")\n")
			b.WriteString("\t\tif err != nil {\n\t\t\treturn nil, err\n\t\t}\n")
			b.WriteString("\t\tvar m map[string]any\n")
			b.WriteString("\t\tif err := json.Unmarshal(data, &m); err != nil {\n\t\t\tm = map[string]any{}\n\t\t}\n")
			fmt.Fprintf(b, "\t\tm[%q] = %q\n", t.TagName, tag)
			b.WriteString("\t\treturn json.Marshal(m)\n\t}\n")
		}
		fmt.Fprintf(b, "\treturn nil, &ConversionError{TypeName: %q, Reason: \"no variant is set\"}\n}\n\n", t.Name)
	}
	return nil
}

func renderEnumUnmarshal(b *strings.Builder, ts *TypeSpace, t Type, fieldExprs []string) error {
	fmt.Fprintf(b, "func (v *%s) UnmarshalJSON(data []byte) error {\n", t.Name)
	switch t.TagType {
	case TagUntagged:
		for i, variant := range t.Variants {
			fmt.Fprintf(b, "\tvar c%d %s\n\tif err := json.Unmarshal(data, &c%d); err == nil {\n\t\tv.%s = &c%d\n\t\treturn nil\n\t}\n",
				i, fieldExprs[i], i, variant.Identifier, i)
		}
		fmt.Fprintf(b, "\treturn &ConversionError{TypeName: %q, Reason: \"no variant matched\"}\n}\n", t.Name)

	case TagExternal:
		b.WriteString("\tvar m map[string]json.RawMessage\n\tif err := json.Unmarshal(data, &m); err != nil {\n\t\treturn err\n\t}\n")
		for i, variant := range t.Variants {
			fmt.Fprintf(b, "\tif raw, ok := m[%q]; ok {\n", variant.Rename)
			fmt.Fprintf(b, "\t\tvar c%d %s\n\t\tif err := json.Unmarshal(raw, &c%d); err != nil {\n\t\t\treturn err\n\t\t}\n\t\tv.%s = &c%d\n\t\treturn nil\n\t}\n",
				i, fieldExprs[i], i, variant.Identifier, i)
		}
		fmt.Fprintf(b, "\treturn &ConversionError{TypeName: %q, Reason: \"no known variant tag present\"}\n}\n", t.Name)

	case TagAdjacent:
		b.WriteString("\tvar m map[string]json.RawMessage\n\tif err := json.Unmarshal(data, &m); err != nil {\n\t\treturn err\n\t}\n")
		fmt.Fprintf(b, "\tvar tag string\n\tif err := json.Unmarshal(m[%q], &tag); err != nil {\n\t\treturn err\n\t}\n", t.TagName)
		for i, variant := range t.Variants {
			tag := variant.Rename
			if tag == "" {
				tag = variant.Identifier
			}
			fmt.Fprintf(b, "\tif tag == %q {\n", tag)
			fmt.Fprintf(b, "\t\tvar c%d %s\n\t\tif err := json.Unmarshal(m[%q], &c%d); err != nil {\n\t\t\treturn err\n\t\t}\n\t\tv.%s = &c%d\n\t\treturn nil\n\t}\n",
				i, fieldExprs[i], t.Content, i, variant.Identifier, i)
		}
		fmt.Fprintf(b, "\treturn &ConversionError{TypeName: %q, Reason: \"unrecognized tag: \" + tag}\n}\n", t.Name)

	case TagInternal:
		b.WriteString("\tvar probe struct {\n\t\tTag string `json:\"" + t.TagName + "\"`\n\t}\n")
		b.WriteString("\tif err := json.Unmarshal(data, &probe); err != nil {\n\t\treturn err\n\t}\n")
		for i, variant := range t.Variants {
			tag := variant.Rename
			if tag == "" {
				tag = variant.Identifier
			}
			fmt.Fprintf(b, "\tif probe.Tag == %q {\n", tag)
			fmt.Fprintf(b, "\t\tvar c%d %s\n\t\tif err := json.Unmarshal(data, &c%d); err != nil {\n\t\t\treturn err\n\t\t}\n\t\tv.%s = &c%d\n\t\treturn nil\n\t}\n",
				i, fieldExprs[i], i, variant.Identifier, i)
		}
		fmt.Fprintf(b, "\treturn &ConversionError{TypeName: %q, Reason: \"unrecognized tag: \" + probe.Tag}\n}\n", t.Name)
	}
	return nil
}
