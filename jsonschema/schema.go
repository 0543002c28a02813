package jsonschema

// Schema is a minimal JSON Schema representation used for export.
// Keep this struct small and extend incrementally.
type Schema struct {
	// Document
	Schema string             `json:"$schema,omitempty"`
	Title  string             `json:"title,omitempty"`
	Defs   map[string]*Schema `json:"$defs,omitempty"`

	// Core
	Type      string `json:"type,omitempty"`
	Enum      []any  `json:"enum,omitempty"`
	MinLength *int   `json:"minLength,omitempty"`

	// Object
	Properties           map[string]*Schema `json:"properties,omitempty"`
	Required             []string           `json:"required,omitempty"`
	AdditionalProperties any                `json:"additionalProperties,omitempty"`

	// Array
	Items *Schema `json:"items,omitempty"`

	// Combinators
	AnyOf []*Schema `json:"anyOf,omitempty"`
	AllOf []*Schema `json:"allOf,omitempty"`
	Not   *Schema   `json:"not,omitempty"`
}

// Draft is the dialect written into exported documents.
const Draft = "https://json-schema.org/draft/2020-12/schema"
