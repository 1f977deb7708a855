package typegen

import (
	"fmt"
	"strings"
)

func hasConstraint(c Constraints) bool {
	return c.MinLength != nil || c.MaxLength != nil || len(c.Patterns) > 0 ||
		c.Minimum != nil || c.Maximum != nil || c.ExclusiveMinimum != nil ||
		c.ExclusiveMaximum != nil || c.MultipleOf != nil || c.OutOfRangeBigInt
}

// renderNewtype emits a Newtype Type, per spec.md §4.4 rules 6-8 and §4.6's Newtype bullet:
//   - a constant schemalet (NativeExpr set, Inner is JsonValue): a zero-field type whose
//     MarshalJSON writes the literal and whose UnmarshalJSON requires equality with it.
//   - an unconstrained wrapper (no Constraints set): a plain defined type, `type Name Inner`,
//     which already gets Deref-like field access for free in Go (no wrapper struct needed) and
//     whose zero value is meaningful, unlike Rust's newtype pattern.
//   - a constrained wrapper: a private-field struct with a fallible constructor, a Value()
//     getter, and hand-written Marshal/Unmarshal so invalid wire values are rejected at the
//     boundary rather than silently constructed (spec.md §9's pattern-only-newtype decision).
func renderNewtype(ts *TypeSpace, t Type) (string, error) {
	if t.NativeExpr != "" && !hasConstraint(t.Constraints) {
		return renderConstantNewtype(t), nil
	}

	innerExpr, err := goTypeExprOf(ts, t.Inner, TypeId{})
	if err != nil {
		return "", err
	}

	if !hasConstraint(t.Constraints) {
		var b strings.Builder
		b.WriteString(docComment(t))
		fmt.Fprintf(&b, "type %s %s\n", t.Name, innerExpr)
		if innerExpr == "string" {
			fmt.Fprintf(&b, "\nfunc (v %s) String() string { return string(v) }\n", t.Name)
		}
		return b.String(), nil
	}

	return renderConstrainedNewtype(t, innerExpr), nil
}

func renderConstantNewtype(t Type) string {
	var b strings.Builder
	b.WriteString(docComment(t))
	fmt.Fprintf(&b, "type %s struct{}\n\n", t.Name)
	fmt.Fprintf(&b, "func (%s) MarshalJSON() ([]byte, error) {\n", t.Name)
	fmt.Fprintf(&b, "\treturn json.Marshal(%s)\n}\n\n", t.NativeExpr)
	fmt.Fprintf(&b, "func (%s) UnmarshalJSON(data []byte) error {\n", t.Name)
	b.WriteString("\tvar v any\n")
	b.WriteString("\tif err := json.Unmarshal(data, &v); err != nil {\n\t\treturn err\n\t}\n")
	fmt.Fprintf(&b, "\twant := %s\n", t.NativeExpr)
	b.WriteString("\tif fmt.Sprintf(\"%#v\", v) != fmt.Sprintf(\"%#v\", want) {\n")
	fmt.Fprintf(&b, "\t\treturn &ConversionError{TypeName: %q, Reason: \"value does not match the required constant\"}\n", t.Name)
	b.WriteString("\t}\n\treturn nil\n}\n")
	return b.String()
}

func renderConstrainedNewtype(t Type, innerExpr string) string {
	var b strings.Builder
	b.WriteString(docComment(t))
	fmt.Fprintf(&b, "type %s struct {\n\tvalue %s\n}\n\n", t.Name, innerExpr)

	fmt.Fprintf(&b, "// New%s constructs a %s, validating it against the schema's constraints.\n", t.Name, t.Name)
	fmt.Fprintf(&b, "func New%s(v %s) (%s, error) {\n", t.Name, innerExpr, t.Name)
	for _, line := range constraintChecks(t.Name, "v", t.Constraints, innerExpr) {
		fmt.Fprintf(&b, "\t%s\n", line)
	}
	fmt.Fprintf(&b, "\treturn %s{value: v}, nil\n}\n\n", t.Name)

	fmt.Fprintf(&b, "func (v %s) Value() %s { return v.value }\n\n", t.Name, innerExpr)
	if innerExpr == "string" {
		fmt.Fprintf(&b, "func (v %s) String() string { return v.value }\n\n", t.Name)
	}

	fmt.Fprintf(&b, "func (v %s) MarshalJSON() ([]byte, error) {\n\treturn json.Marshal(v.value)\n}\n\n", t.Name)
	fmt.Fprintf(&b, "func (v *%s) UnmarshalJSON(data []byte) error {\n", t.Name)
	fmt.Fprintf(&b, "\tvar inner %s\n", innerExpr)
	b.WriteString("\tif err := json.Unmarshal(data, &inner); err != nil {\n\t\treturn err\n\t}\n")
	fmt.Fprintf(&b, "\tbuilt, err := New%s(inner)\n\tif err != nil {\n\t\treturn err\n\t}\n", t.Name)
	b.WriteString("\t*v = built\n\treturn nil\n}\n")
	return b.String()
}

// constraintChecks renders the fallible-constructor validation body for a constrained newtype's
// inner value (spec.md §4.4 rules 6-8, §9's big.Int fallback for out-of-range integer bounds).
func constraintChecks(typeName, varName string, c Constraints, innerExpr string) []string {
	var lines []string
	fail := func(format string, args ...any) string {
		return fmt.Sprintf("return %s{}, &ConversionError{TypeName: %q, Reason: %s}", typeName, typeName, fmt.Sprintf(format, args...))
	}

	if c.MinLength != nil {
		lines = append(lines, fmt.Sprintf("if len(%s) < %d {\n\t\t%s\n\t}", varName, *c.MinLength, fail("%q", "below minimum length")))
	}
	if c.MaxLength != nil {
		lines = append(lines, fmt.Sprintf("if len(%s) > %d {\n\t\t%s\n\t}", varName, *c.MaxLength, fail("%q", "above maximum length")))
	}
	// Every pattern must match (spec.md §4.2 rule 4's logical AND of allOf-merged patterns); a
	// single-pattern schema is just the one-element case.
	for _, pattern := range c.Patterns {
		lines = append(lines, fmt.Sprintf("if !regexp.MustCompile(%q).MatchString(%s) {\n\t\t%s\n\t}", pattern, varName, fail("%q", "does not match the required pattern")))
	}
	if c.Minimum != nil {
		lines = append(lines, fmt.Sprintf("if float64(%s) < %v {\n\t\t%s\n\t}", varName, *c.Minimum, fail("%q", "below minimum")))
	}
	if c.ExclusiveMinimum != nil {
		lines = append(lines, fmt.Sprintf("if float64(%s) <= %v {\n\t\t%s\n\t}", varName, *c.ExclusiveMinimum, fail("%q", "at or below exclusive minimum")))
	}
	if c.Maximum != nil {
		lines = append(lines, fmt.Sprintf("if float64(%s) > %v {\n\t\t%s\n\t}", varName, *c.Maximum, fail("%q", "above maximum")))
	}
	if c.ExclusiveMaximum != nil {
		lines = append(lines, fmt.Sprintf("if float64(%s) >= %v {\n\t\t%s\n\t}", varName, *c.ExclusiveMaximum, fail("%q", "at or above exclusive maximum")))
	}
	if c.MultipleOf != nil {
		lines = append(lines, fmt.Sprintf("if math.Mod(float64(%s), %v) != 0 {\n\t\t%s\n\t}", varName, *c.MultipleOf, fail("%q", "not a multiple of the required step")))
	}
	return lines
}
