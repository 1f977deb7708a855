package typegen

import (
	"bytes"
	"maps"
	"regexp"
	"slices"
	"strconv"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/kaptinlin/jsonpointer"
)

// rawKnownFields lists every JSON Schema 2020-12 keyword RawSchema understands. Anything else
// collected during unmarshaling is preserved verbatim in Extra (e.g. x-go-type).
var rawKnownFields = map[string]struct{}{
	"$id": {}, "$schema": {}, "$ref": {}, "$dynamicRef": {}, "$anchor": {}, "$dynamicAnchor": {},
	"$defs": {}, "definitions": {}, "$comment": {},
	"allOf": {}, "anyOf": {}, "oneOf": {}, "not": {},
	"dependentSchemas": {}, "prefixItems": {}, "items": {}, "additionalItems": {},
	"properties": {}, "patternProperties": {}, "additionalProperties": {}, "propertyNames": {},
	"type": {}, "enum": {}, "const": {},
	"multipleOf": {}, "maximum": {}, "exclusiveMaximum": {}, "minimum": {}, "exclusiveMinimum": {},
	"maxLength": {}, "minLength": {}, "pattern": {},
	"maxItems": {}, "minItems": {}, "uniqueItems": {},
	"maxProperties": {}, "minProperties": {}, "required": {}, "dependentRequired": {},
	"format": {},
	"title": {}, "description": {}, "default": {}, "deprecated": {}, "readOnly": {}, "writeOnly": {}, "examples": {},
}

// RawSchema is the working JSON Schema AST produced by the Bundler's JSON/YAML parser, before
// canonicalization into Schemalets. Grounded on github.com/kaptinlin/jsonschema's Schema type
// (schema.go in that repo): same keyword surface, same $id/$anchor/$ref bookkeeping, trimmed to
// drop validator-only internals (compiled patterns, i18n, format assertion flags) this package
// has no use for.
type RawSchema struct {
	parent  *RawSchema
	uri     string
	baseURI string
	pointer string // JSON Pointer from this schema's document root, set by Bundler.initializeSchema
	anchors map[string]*RawSchema
	schemas map[string]*RawSchema // allocated on document roots by Bundler.initializeSchema; never filled or read

	ID     string `json:"$id,omitempty"`
	Schema string `json:"$schema,omitempty"`
	Format *string `json:"format,omitempty"`

	Ref         string      `json:"$ref,omitempty"`
	Anchor      string      `json:"$anchor,omitempty"`
	Defs        map[string]*RawSchema `json:"$defs,omitempty"`
	ResolvedRef *RawSchema  `json:"-"`

	Boolean *bool `json:"-"`

	AllOf []*RawSchema `json:"allOf,omitempty"`
	AnyOf []*RawSchema `json:"anyOf,omitempty"`
	OneOf []*RawSchema `json:"oneOf,omitempty"`
	Not   *RawSchema   `json:"not,omitempty"`

	DependentSchemas map[string]*RawSchema `json:"dependentSchemas,omitempty"`

	PrefixItems []*RawSchema `json:"prefixItems,omitempty"`
	Items       *RawSchema   `json:"items,omitempty"`

	Properties           *RawSchemaMap `json:"properties,omitempty"`
	PatternProperties    *RawSchemaMap `json:"patternProperties,omitempty"`
	AdditionalProperties *RawSchema    `json:"additionalProperties,omitempty"`
	PropertyNames        *RawSchema    `json:"propertyNames,omitempty"`

	Type  RawSchemaType  `json:"type,omitempty"`
	Enum  []any          `json:"enum,omitempty"`
	Const *RawConstValue `json:"const,omitempty"`

	MultipleOf       *float64 `json:"multipleOf,omitempty"`
	Maximum          *float64 `json:"maximum,omitempty"`
	ExclusiveMaximum *float64 `json:"exclusiveMaximum,omitempty"`
	Minimum          *float64 `json:"minimum,omitempty"`
	ExclusiveMinimum *float64 `json:"exclusiveMinimum,omitempty"`

	MaxLength *float64 `json:"maxLength,omitempty"`
	MinLength *float64 `json:"minLength,omitempty"`
	Pattern   *string  `json:"pattern,omitempty"`

	MaxItems    *float64 `json:"maxItems,omitempty"`
	MinItems    *float64 `json:"minItems,omitempty"`
	UniqueItems *bool    `json:"uniqueItems,omitempty"`

	MaxProperties     *float64            `json:"maxProperties,omitempty"`
	MinProperties     *float64            `json:"minProperties,omitempty"`
	Required          []string            `json:"required,omitempty"`
	DependentRequired map[string][]string `json:"dependentRequired,omitempty"`

	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Default     any     `json:"default,omitempty"`
	Examples    []any   `json:"examples,omitempty"`

	Extra map[string]any `json:"-"`
}

// newRawSchema parses a single JSON document into a RawSchema without resolving references;
// resolution is the Bundler's job once every referenced document is loaded.
func newRawSchema(data []byte) (*RawSchema, error) {
	s := &RawSchema{}
	if err := json.Unmarshal(data, s); err != nil {
		return nil, err
	}
	return s, nil
}

// MarshalJSON implements json.Marshaler, matching the teacher's boolean-schema special case.
func (s *RawSchema) MarshalJSON() ([]byte, error) {
	if s.Boolean != nil {
		return json.Marshal(s.Boolean, json.Deterministic(true))
	}
	type alias RawSchema
	data, err := json.Marshal((*alias)(s), json.Deterministic(true))
	if err != nil {
		return nil, err
	}
	var result map[string]any
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	if s.Const != nil {
		result["const"] = s.Const.Value
	}
	maps.Copy(result, s.Extra)
	return json.Marshal(result, json.Deterministic(true))
}

// UnmarshalJSON handles the boolean-schema form and the items array-vs-object polymorphism
// (Draft-07 tuple validation vs. 2020-12 prefixItems/items), mirroring the teacher's schema.go.
func (s *RawSchema) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		s.Boolean = &b
		return nil
	}

	type alias RawSchema
	aux := &struct {
		Items           jsontext.Value `json:"items,omitempty"`
		AdditionalItems *RawSchema     `json:"additionalItems,omitempty"`
		*alias
	}{alias: (*alias)(s)}

	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}

	if len(aux.Items) > 0 {
		trimmed := bytes.TrimSpace(aux.Items)
		if len(trimmed) > 0 && trimmed[0] == '[' {
			if err := json.Unmarshal(aux.Items, &s.PrefixItems); err != nil {
				return err
			}
			if aux.AdditionalItems != nil {
				s.Items = aux.AdditionalItems
			}
		} else if err := json.Unmarshal(aux.Items, &s.Items); err != nil {
			return err
		}
	}

	var raw map[string]jsontext.Value
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if defsData, ok := raw["definitions"]; ok && s.Defs == nil {
		var defs map[string]*RawSchema
		if err := json.Unmarshal(defsData, &defs); err != nil {
			return err
		}
		s.Defs = defs
	}

	if constData, ok := raw["const"]; ok {
		s.Const = &RawConstValue{}
		if err := s.Const.UnmarshalJSON(constData); err != nil {
			return err
		}
	}

	return s.collectExtraFields(data)
}

func (s *RawSchema) collectExtraFields(raw []byte) error {
	var allFields map[string]any
	if err := json.Unmarshal(raw, &allFields); err != nil {
		return err
	}
	for key := range rawKnownFields {
		delete(allFields, key)
	}
	if len(allFields) > 0 {
		s.Extra = allFields
	}
	return nil
}

// validateRegexSyntax validates every pattern/patternProperties key in the schema tree compiles
// as Go RE2 syntax, grounded on the teacher's schema.go collectRegexErrors walk.
func (s *RawSchema) validateRegexSyntax() error {
	visited := make(map[*RawSchema]bool)
	var errs []error
	s.collectRegexErrors(nil, visited, &errs)
	return newError(errs...)
}

func (s *RawSchema) collectRegexErrors(pathTokens []string, visited map[*RawSchema]bool, errs *[]error) {
	if s == nil || visited[s] {
		return
	}
	visited[s] = true

	if s.Pattern != nil {
		if _, err := regexp.Compile(*s.Pattern); err != nil {
			tokens := slices.Concat(pathTokens, []string{"pattern"})
			*errs = append(*errs, &ParseError{URL: "#" + jsonpointer.Format(tokens...), Detail: err})
		}
	}
	if s.PatternProperties != nil {
		for pattern, child := range *s.PatternProperties {
			tokens := slices.Concat(pathTokens, []string{"patternProperties", pattern})
			if _, err := regexp.Compile(pattern); err != nil {
				*errs = append(*errs, &ParseError{URL: "#" + jsonpointer.Format(tokens...), Detail: err})
				continue
			}
			child.collectRegexErrors(tokens, visited, errs)
		}
	}

	addSchema := func(child *RawSchema, token string) {
		child.collectRegexErrors(slices.Concat(pathTokens, []string{token}), visited, errs)
	}
	addSchemaMap := func(m map[string]*RawSchema, prefix string) {
		for key, child := range m {
			child.collectRegexErrors(slices.Concat(pathTokens, []string{prefix, key}), visited, errs)
		}
	}
	addSchemaSlice := func(children []*RawSchema, prefix string) {
		for i, child := range children {
			child.collectRegexErrors(slices.Concat(pathTokens, []string{prefix, strconv.Itoa(i)}), visited, errs)
		}
	}

	if s.Properties != nil {
		addSchemaMap(map[string]*RawSchema(*s.Properties), "properties")
	}
	addSchemaMap(s.Defs, "$defs")
	addSchemaMap(s.DependentSchemas, "dependentSchemas")
	addSchema(s.AdditionalProperties, "additionalProperties")
	addSchema(s.PropertyNames, "propertyNames")
	addSchema(s.Items, "items")
	addSchema(s.Not, "not")
	addSchemaSlice(s.PrefixItems, "prefixItems")
	addSchemaSlice(s.AllOf, "allOf")
	addSchemaSlice(s.AnyOf, "anyOf")
	addSchemaSlice(s.OneOf, "oneOf")
}

// RawSchemaMap is an ordered-on-the-wire map of property name to RawSchema.
type RawSchemaMap map[string]*RawSchema

func (sm RawSchemaMap) MarshalJSON() ([]byte, error) {
	m := make(map[string]*RawSchema, len(sm))
	maps.Copy(m, sm)
	return json.Marshal(m, json.Deterministic(true))
}

func (sm *RawSchemaMap) UnmarshalJSON(data []byte) error {
	m := make(map[string]*RawSchema)
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*sm = RawSchemaMap(m)
	return nil
}

// RawSchemaType holds the "type" keyword, which may be a single string or an array of strings.
type RawSchemaType []string

func (st RawSchemaType) MarshalJSON() ([]byte, error) {
	if len(st) == 1 {
		return json.Marshal(st[0])
	}
	return json.Marshal([]string(st))
}

func (st *RawSchemaType) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*st = RawSchemaType{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err == nil {
		*st = RawSchemaType(many)
		return nil
	}
	return ErrInvalidSchemaType
}

// RawConstValue distinguishes "const is absent" from "const is explicitly null".
type RawConstValue struct {
	Value any
	IsSet bool
}

func (cv *RawConstValue) UnmarshalJSON(data []byte) error {
	cv.IsSet = true
	if string(data) == "null" {
		cv.Value = nil
		return nil
	}
	return json.Unmarshal(data, &cv.Value)
}

func (cv RawConstValue) MarshalJSON() ([]byte, error) {
	if cv.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(cv.Value)
}

// getRootSchema returns the document-level ancestor of s.
func (s *RawSchema) getRootSchema() *RawSchema {
	if s.parent != nil {
		return s.parent.getRootSchema()
	}
	return s
}

// getParentBaseURI returns the nearest ancestor base URI, or "" if none is set.
func (s *RawSchema) getParentBaseURI() string {
	for p := s.parent; p != nil; p = p.parent {
		if p.baseURI != "" {
			return p.baseURI
		}
	}
	return ""
}
