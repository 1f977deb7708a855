package typegen

import (
	"fmt"
	"strings"
)

// renderStruct emits a Go struct declaration for t, one field per StructProperty, with
// encoding/json-compatible struct tags encoding rename/omitempty the way spec.md §4.6 asks for
// "rename, default, skip_serializing_if" — Go's json tag vocabulary collapses default/omitempty
// into the same `omitempty` option, since unlike serde there's no separate default annotation at
// the tag level; the default value itself is handled by emitDefaultFunc and a comment.
func renderStruct(ts *TypeSpace, id TypeId, t Type) (string, error) {
	var b strings.Builder
	b.WriteString(docComment(t))
	fmt.Fprintf(&b, "type %s struct {\n", t.Name)

	for _, p := range t.Properties {
		goType, err := goTypeExprOf(ts, p.Type, id)
		if err != nil {
			return "", err
		}

		jsonName := p.SerdeRename
		if jsonName == "" {
			jsonName = p.Identifier
		}

		tagOpts := ""
		switch p.State {
		case PropertyOptional, PropertyDefault:
			tagOpts = ",omitempty"
		}

		if p.Doc != "" {
			for _, line := range strings.Split(strings.TrimRight(p.Doc, "\n"), "\n") {
				fmt.Fprintf(&b, "\t// %s\n", line)
			}
		}
		if p.State == PropertyDefault {
			fmt.Fprintf(&b, "\t// Default: see Default%s%s if absent from the wire.\n", t.Name, p.Identifier)
		}

		fmt.Fprintf(&b, "\t%s %s `json:\"%s%s\"`\n", p.Identifier, goType, jsonName, tagOpts)
	}

	b.WriteString("}\n")
	return b.String(), nil
}

// emitDefaultFunc renders a DefaultX function for every PropertyDefault field (spec.md §4.6's
// "defaults" section); Go struct tags cannot carry a default, so no field is skipped.
func emitDefaultFunc(t Type) string {
	if t.Kind != TypeStruct {
		return ""
	}
	var b strings.Builder
	for _, p := range t.Properties {
		if p.State != PropertyDefault {
			continue
		}
		fmt.Fprintf(&b, "// Default%s%s returns %s's schema default for %s.\n", t.Name, p.Identifier, t.Name, p.Identifier)
		fmt.Fprintf(&b, "func Default%s%s() any {\n\treturn %#v\n}\n\n", t.Name, p.Identifier, p.DefaultValue)
	}
	return b.String()
}

// emitBuilder renders the opt-in fluent constructor for t (spec.md §4.6's "builder" section): one
// setter per field and a Build() with an error result that performs no checks of its own and
// always returns a nil error; constrained newtype fields are validated by their own constructors.
func emitBuilder(ts *TypeSpace, t Type) string {
	var b strings.Builder
	builderName := t.Name + "Builder"
	fmt.Fprintf(&b, "// %s fluently constructs a %s.\n", builderName, t.Name)
	fmt.Fprintf(&b, "type %s struct {\n\tv %s\n}\n\n", builderName, t.Name)
	fmt.Fprintf(&b, "func New%s() *%s {\n\treturn &%s{}\n}\n\n", builderName, builderName, builderName)

	for _, p := range t.Properties {
		goType, err := goTypeExprOf(ts, p.Type, TypeId{})
		if err != nil {
			goType = "any"
		}
		fmt.Fprintf(&b, "func (b *%s) %s(v %s) *%s {\n\tb.v.%s = v\n\treturn b\n}\n\n", builderName, p.Identifier, goType, builderName, p.Identifier)
	}

	fmt.Fprintf(&b, "// Build returns the constructed %s. It never fails for this type; the return\n", t.Name)
	fmt.Fprintf(&b, "// signature matches every other generated builder's Build method.\n")
	fmt.Fprintf(&b, "func (b *%s) Build() (%s, error) {\n\treturn b.v, nil\n}\n", builderName, t.Name)
	return b.String()
}
