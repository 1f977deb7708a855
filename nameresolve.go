package typegen

import (
	"strings"

	"github.com/typelift/typegen/pkg/identifier"
)

// resolvedNames is the name resolver's output: a stable identifier for every schemalet that
// needs one, keyed by SchemaRef (spec.md §4.3).
type resolvedNames struct {
	byRef map[SchemaRef]string
}

func (n *resolvedNames) NameOf(ref SchemaRef) (string, bool) {
	name, ok := n.byRef[ref]
	return name, ok
}

// ResolveNames walks the canonical schemalet graph depth-first from root, in property-insertion
// order, assigning identifiers per spec.md §4.3: candidate names in priority order are the
// schema's title, the last JSON pointer segment of its SchemaRef, or a suggestion derived from
// the enclosing property (parent name + property name, camel-cased); collisions are resolved by
// an ascending integer suffix via pkg/identifier.Reserve.
func ResolveNames(g *canonicalGraph, root SchemaRef, taken map[string]bool) *resolvedNames {
	names := &resolvedNames{byRef: make(map[SchemaRef]string)}
	visited := make(map[SchemaRef]bool)

	var visit func(ref SchemaRef, suggestion string)
	visit = func(ref SchemaRef, suggestion string) {
		if visited[ref] {
			return
		}
		visited[ref] = true

		sl, ok := g.Get(ref)
		if !ok {
			return
		}

		if needsName(sl) {
			candidate := pickCandidateName(sl, ref, suggestion)
			names.byRef[ref] = identifier.Reserve(identifier.Sanitize(candidate), taken)
		}

		assignedOrSuggestion := suggestion
		if name, ok := names.byRef[ref]; ok {
			assignedOrSuggestion = name
		}

		switch sl.Details.Kind {
		case DetailsReference:
			if target, ok := sl.Details.AsReference(); ok {
				visit(target, assignedOrSuggestion)
			}
		case DetailsExclusiveOneOf:
			branches, _, _ := sl.Details.AsExclusiveOneOf()
			for i, b := range branches {
				visit(b, assignedOrSuggestion+"Variant"+itoa(i))
			}
		case DetailsValue:
			v, _ := sl.Details.AsValue()
			visitValueChildren(v, assignedOrSuggestion, visit)
		}
	}

	visit(root, "Root")
	return names
}

func visitValueChildren(v *SchemaletValue, parentName string, visit func(SchemaRef, string)) {
	if v == nil {
		return
	}
	switch v.Kind {
	case ValueArray:
		if v.Items != nil {
			visit(*v.Items, parentName+"Item")
		}
		for i, p := range v.PrefixItems {
			visit(p, parentName+"Item"+itoa(i))
		}
	case ValueObject:
		if v.Properties != nil {
			for _, key := range v.Properties.Keys() {
				ref, _ := v.Properties.Get(key)
				visit(ref, parentName+identifier.Sanitize(key))
			}
		}
		if ref, ok := v.AdditionalProperties.Schema(); ok {
			visit(ref, parentName+"Value")
		}
		if v.PropertyNames != nil {
			visit(*v.PropertyNames, parentName+"PropertyName")
		}
		if v.PatternProperties != nil {
			for _, key := range v.PatternProperties.Keys() {
				ref, _ := v.PatternProperties.Get(key)
				visit(ref, parentName+"Pattern")
			}
		}
	}
}

// needsName reports whether sl becomes a named top-level declaration, per spec.md §4.3: every
// schemalet except primitives inlined in place, Option/Vec/Map/Tuple wrappers, and anonymous
// enum variants.
func needsName(sl Schemalet) bool {
	switch sl.Details.Kind {
	case DetailsReference, DetailsAnything, DetailsNothing:
		return false
	case DetailsConstant:
		return true
	case DetailsExclusiveOneOf:
		return true
	case DetailsValue:
		v, _ := sl.Details.AsValue()
		if v == nil {
			return false
		}
		switch v.Kind {
		case ValueObject:
			return true
		case ValueString:
			return len(v.EnumValues) > 0 || len(v.Patterns) > 0 || v.MinLength != nil || v.MaxLength != nil
		case ValueInteger, ValueNumber:
			return v.MultipleOf != nil
		case ValueArray:
			return len(v.PrefixItems) > 0 && v.MinItems != nil && v.MaxItems != nil && *v.MinItems == *v.MaxItems
		default:
			return false
		}
	default:
		return false
	}
}

func pickCandidateName(sl Schemalet, ref SchemaRef, suggestion string) string {
	if sl.Metadata.Title != "" {
		return sl.Metadata.Title
	}
	if !ref.IsSymbol() && ref.Pointer != "" {
		if last := lastPointerSegment(ref.Pointer); last != "" && !isNumeric(last) {
			return last
		}
	}
	if suggestion != "" {
		return suggestion
	}
	return "Value"
}

func lastPointerSegment(pointer string) string {
	parts := strings.Split(strings.Trim(pointer, "/"), "/")
	if len(parts) == 0 {
		return ""
	}
	return parts[len(parts)-1]
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
