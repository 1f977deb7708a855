package typegen

import (
	"github.com/google/jsonschema-go/jsonschema"
)

// GoogleSchema is the bridge type AddRootSchemaValue accepts: a schema produced by
// github.com/google/jsonschema-go, the library several ecosystem tools (MCP tool-schema
// generators among them) already emit in-memory. Grounded on MacroPower-x/magicschema's use of
// the same package as its schema value type (generator.go, helpers.go), which confirms this is a
// real, independently-used dependency in this pack rather than one wired in only for this
// adapter.
type GoogleSchema = jsonschema.Schema

// FromGoogleSchema converts a *jsonschema.Schema into a *RawSchema without a JSON round-trip,
// walking its fields directly. Covers the subset of fields MacroPower-x/magicschema's generator
// is seen constructing (Type, Title, Description, Ref, Required, Properties, Items,
// AdditionalProperties, PropertyOrder) — the conservative, confirmed-by-usage surface, rather
// than guessing at the rest of the upstream struct's shape.
func FromGoogleSchema(s *GoogleSchema) *RawSchema {
	if s == nil {
		return &RawSchema{Boolean: boolPtr(true)}
	}

	out := &RawSchema{}
	if s.Title != "" {
		out.Title = strPtr(s.Title)
	}
	if s.Description != "" {
		out.Description = strPtr(s.Description)
	}
	if s.Ref != "" {
		out.Ref = s.Ref
	}
	if s.Type != "" {
		out.Type = RawSchemaType{s.Type}
	}
	if len(s.Required) > 0 {
		out.Required = s.Required
	}
	if s.Items != nil {
		out.Items = FromGoogleSchema(s.Items)
	}
	if len(s.Properties) > 0 {
		props := RawSchemaMap{}
		names := s.PropertyOrder
		if len(names) == 0 {
			for name := range s.Properties {
				names = append(names, name)
			}
		}
		for _, name := range names {
			if propSchema, ok := s.Properties[name]; ok {
				props[name] = FromGoogleSchema(propSchema)
			}
		}
		out.Properties = &props
	}
	if s.AdditionalProperties != nil {
		out.AdditionalProperties = FromGoogleSchema(s.AdditionalProperties)
	}
	return out
}

func boolPtr(b bool) *bool    { return &b }
func strPtr(s string) *string { return &s }
