package typegen

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

// Emit lowers ts's interned type table to Go source text, per spec.md §4.6's four sections: main,
// builder, defaults, error. The returned text is unformatted (valid Go, arbitrary whitespace) —
// gofmt/goimports is left to an external collaborator (SPEC_FULL.md §4.6), so this package never
// imports golang.org/x/tools.
//
// Within a section, items are ordered by their assigned name, which keeps output stable and
// diffable across runs over the same input (spec.md §5's determinism requirement).
func Emit(ts *TypeSpace) (string, error) {
	named := namedTypes(ts)
	sort.Slice(named, func(i, j int) bool { return named[i].t.Name < named[j].t.Name })

	var main, defaults bytes.Buffer
	for _, nt := range named {
		frag, err := emitNamed(ts, nt.id, nt.t)
		if err != nil {
			return "", err
		}
		main.WriteString(frag)
		main.WriteString("\n")

		if def := emitDefaultFunc(nt.t); def != "" {
			defaults.WriteString(def)
			defaults.WriteString("\n")
		}
	}

	var out bytes.Buffer
	out.WriteString(main.String())

	if ts.settings.StructBuilder {
		var builders bytes.Buffer
		for _, nt := range named {
			if nt.t.Kind != TypeStruct {
				continue
			}
			builders.WriteString(emitBuilder(ts, nt.t))
			builders.WriteString("\n")
		}
		if builders.Len() > 0 {
			out.WriteString(builders.String())
		}
	}

	if defaults.Len() > 0 {
		out.WriteString(defaults.String())
	}

	if needsConversionError(named) {
		out.WriteString(conversionErrorType)
	}

	return out.String(), nil
}

type namedType struct {
	id TypeId
	t  Type
}

// namedTypes returns every interned, fully-built Type with a non-empty Name: the set the emitter
// treats as "main section" output. Placeholders left over from an aborted recursive build (which
// should never survive a successful pipeline run) are skipped defensively rather than emitted as
// garbage.
func namedTypes(ts *TypeSpace) []namedType {
	var out []namedType
	seen := map[TypeId]bool{}
	for _, id := range ts.types.Keys() {
		if seen[id] {
			continue
		}
		seen[id] = true
		t, ok := ts.types.Get(id)
		if !ok || t.Name == "" {
			continue
		}
		if t.Kind == TypeNative && t.NativeExpr == "/* pending */" {
			continue
		}
		out = append(out, namedType{id: id, t: t})
	}
	return out
}

// needsConversionError reports whether any emitted type references the shared ConversionError
// type: constrained/constant Newtypes and every Enum's Marshal/Unmarshal methods construct one.
func needsConversionError(named []namedType) bool {
	for _, nt := range named {
		switch nt.t.Kind {
		case TypeNewtype:
			if hasConstraint(nt.t.Constraints) || nt.t.NativeExpr != "" {
				return true
			}
		case TypeEnum:
			return true
		}
	}
	return false
}

func emitNamed(ts *TypeSpace, id TypeId, t Type) (string, error) {
	switch t.Kind {
	case TypeStruct:
		return renderStruct(ts, id, t)
	case TypeEnum:
		return renderEnum(ts, id, t)
	case TypeNewtype:
		return renderNewtype(ts, t)
	case TypeVec, TypeMap, TypeOption, TypeTuple, TypePrimitive, TypeJsonValue, TypeUnit:
		return renderAlias(ts, t)
	case TypeNative:
		return "", nil // Replacements/Conversions are never declared, only referenced.
	default:
		return "", fmt.Errorf("emit: unhandled top-level kind %s for %q", t.Kind, t.Name)
	}
}

func renderAlias(ts *TypeSpace, t Type) (string, error) {
	expr, err := inlineTypeExpr(ts, t, TypeId{})
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString(docComment(t))
	fmt.Fprintf(&b, "type %s %s\n", t.Name, expr)
	return b.String(), nil
}

// docComment renders a Type's doc comment: its schema description, followed by a collapsed
// <details> block containing the pretty-printed source JSON Schema fragment it was converted
// from (spec.md §4.6's "Documentation" requirement). Every emitted type carries one, even when
// Doc is empty, since the source fragment alone is still useful provenance.
func docComment(t Type) string {
	var b strings.Builder
	if t.Doc != "" {
		for _, line := range strings.Split(strings.TrimRight(t.Doc, "\n"), "\n") {
			fmt.Fprintf(&b, "// %s\n", line)
		}
	} else {
		fmt.Fprintf(&b, "// %s is generated from a JSON Schema document.\n", t.Name)
	}
	for _, alias := range t.Aliases {
		fmt.Fprintf(&b, "// Also known as %s (structurally identical schema, different name).\n", alias)
	}
	if t.SourceJSON != "" {
		b.WriteString("//\n")
		b.WriteString("// <details><summary>source schema</summary>\n")
		b.WriteString("//\n")
		b.WriteString("//\t")
		b.WriteString(strings.ReplaceAll(t.SourceJSON, "\n", "\n//\t"))
		b.WriteString("\n//\n")
		b.WriteString("// </details>\n")
	}
	return b.String()
}

// prettyJSONFragment renders raw as indented, deterministic JSON for doc-comment embedding.
// Grounded on the teacher's own use of jsontext.WithIndent for human-readable diagnostic output
// (struct_validation_test.go) and json.Deterministic(true) for stable key order (schema.go).
func prettyJSONFragment(raw *RawSchema) string {
	if raw == nil {
		return ""
	}
	data, err := json.Marshal(raw, jsontext.WithIndent("  "), json.Deterministic(true))
	if err != nil {
		return ""
	}
	return string(data)
}

// inlineTypeExpr resolves id to the Go type expression used wherever it's referenced (a struct
// field, a Vec element, a Map value, ...). from is the TypeId of the type doing the referencing,
// used only for the value-cycle check on struct/tuple fields; pass TypeId{} when there is no
// enclosing owner (e.g. rendering a top-level alias for t itself).
func inlineTypeExpr(ts *TypeSpace, t Type, from TypeId) (string, error) {
	switch t.Kind {
	case TypeStruct, TypeEnum, TypeNewtype:
		if t.Name == "" {
			return "", fmt.Errorf("emit: anonymous %s type has no declared name", t.Kind)
		}
		return t.Name, nil
	case TypePrimitive:
		return t.PrimitiveName, nil
	case TypeJsonValue:
		return "any", nil
	case TypeUnit:
		return "struct{}", nil
	case TypeNative:
		return t.NativeExpr, nil
	case TypeVec:
		elem, err := goTypeExprOf(ts, t.Elem, from)
		if err != nil {
			return "", err
		}
		return "[]" + elem, nil
	case TypeOption:
		elem, err := goTypeExprOf(ts, t.Elem, from)
		if err != nil {
			return "", err
		}
		return "*" + elem, nil
	case TypeMap:
		key, err := goTypeExprOf(ts, t.MapKey, from)
		if err != nil {
			return "", err
		}
		val, err := goTypeExprOf(ts, t.MapValue, from)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("map[%s]%s", key, val), nil
	case TypeTuple:
		var fields []string
		for i, elemId := range t.Elems {
			elem, err := goTypeExprOf(ts, elemId, from)
			if err != nil {
				return "", err
			}
			fields = append(fields, fmt.Sprintf("F%d %s", i, elem))
		}
		return "struct{ " + strings.Join(fields, "; ") + " }", nil
	default:
		return "", fmt.Errorf("emit: unhandled inline kind %s", t.Kind)
	}
}

// goTypeExprOf looks up id in ts and resolves its reference expression, boxing a named
// Struct/Tuple field with a leading pointer when taking it by value would make from's own size
// infinite (spec.md §4.6's recursive-indirection rule).
func goTypeExprOf(ts *TypeSpace, id TypeId, from TypeId) (string, error) {
	t, ok := ts.lookup(id)
	if !ok {
		return "", fmt.Errorf("emit: dangling TypeId %s", id)
	}
	expr, err := inlineTypeExpr(ts, t, from)
	if err != nil {
		return "", err
	}
	if from != (TypeId{}) && (t.Kind == TypeStruct || t.Kind == TypeTuple) && valueCycles(ts, from, id, map[TypeId]bool{}) {
		return "*" + expr, nil
	}
	return expr, nil
}

// valueCycles reports whether target is reachable from root by following only by-value
// containment edges (Struct field types, Tuple element types) — the edges that would make a Go
// struct's size depend on itself. Vec/Map/Option/pointer edges already indirect, so they are not
// followed: crossing one of those means the cycle, if any, does not need boxing at this point.
func valueCycles(ts *TypeSpace, root, target TypeId, seen map[TypeId]bool) bool {
	if root == target {
		return true
	}
	if seen[root] {
		return false
	}
	seen[root] = true
	t, ok := ts.lookup(root)
	if !ok {
		return false
	}
	switch t.Kind {
	case TypeStruct:
		for _, p := range t.Properties {
			if valueCycles(ts, p.Type, target, seen) {
				return true
			}
		}
	case TypeTuple:
		for _, e := range t.Elems {
			if valueCycles(ts, e, target, seen) {
				return true
			}
		}
	}
	return false
}

// conversionErrorType is the shared fallible-constructor error type (spec.md §4.6's "error"
// section), used by every constrained Newtype's constructor.
const conversionErrorType = `
// ConversionError reports a constrained value that failed validation during construction.
type ConversionError struct {
	TypeName string
	Reason   string
}

func (e *ConversionError) Error() string {
	return e.TypeName + ": " + e.Reason
}
`
