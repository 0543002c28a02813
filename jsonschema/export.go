package jsonschema

import (
	"errors"
	"fmt"

	j "github.com/goccy/go-json"

	"github.com/reoring/guardgen"
	"github.com/reoring/guardgen/shape"
)

// ErrUnsupported is returned for rules JSON Schema cannot express, such as
// custom tags or the undefined value.
var ErrUnsupported = errors.New("jsonschema: unsupported rule")

var tagTypes = map[*shape.TypeTag]string{
	shape.NullValue: "null",
	shape.Boolean:   "boolean",
	shape.Number:    "number",
	shape.BigInt:    "integer",
	shape.String:    "string",
	shape.Object:    "object",
	shape.ChainEnd:  "object",
	shape.Array:     "array",
}

// FromNode exports n as a JSON Schema. Rules of one node are merged into a
// single schema while they touch different keywords and fall back to allOf
// otherwise. Object and array shapes only constrain "type" together with an
// exact Object or Array rule, since on their own they also accept other
// property bearing values.
func FromNode(n *guardgen.Node) (*Schema, error) {
	s := &Schema{}
	if n == nil {
		return s, nil
	}
	for _, r := range n.Rules {
		rs, err := fromRule(r)
		if err != nil {
			return nil, err
		}
		merge(s, rs)
	}
	return s, nil
}

// Document exports named nodes under $defs.
func Document(title string, names []string, nodes []*guardgen.Node) (*Schema, error) {
	if len(names) != len(nodes) {
		return nil, fmt.Errorf("jsonschema: %d names for %d nodes", len(names), len(nodes))
	}
	doc := &Schema{Schema: Draft, Title: title, Defs: make(map[string]*Schema, len(nodes))}
	for i, n := range nodes {
		s, err := FromNode(n)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", names[i], err)
		}
		doc.Defs[names[i]] = s
	}
	return doc, nil
}

// Marshal renders s as indented JSON.
func Marshal(s *Schema) ([]byte, error) {
	return j.MarshalIndent(s, "", "  ")
}

func typeOf(t *shape.TypeTag) (string, error) {
	if s, ok := tagTypes[t]; ok {
		return s, nil
	}
	return "", fmt.Errorf("%w: tag %s", ErrUnsupported, t.Name())
}

func fromRule(r guardgen.Rule) (*Schema, error) {
	switch r := r.(type) {
	case guardgen.ExactType:
		t, err := typeOf(r.Tag)
		if err != nil {
			return nil, err
		}
		return &Schema{Type: t}, nil
	case guardgen.TypeInAncestry:
		if r.Tag == shape.Object {
			// Every JSON value but null descends from Object.
			return &Schema{Not: &Schema{Type: "null"}}, nil
		}
		t, err := typeOf(r.Tag)
		if err != nil {
			return nil, err
		}
		return &Schema{Type: t}, nil
	case guardgen.Integer:
		return &Schema{Type: "integer"}, nil
	case guardgen.NonEmptyString:
		one := 1
		return &Schema{Type: "string", MinLength: &one}, nil
	case guardgen.ValueMembership:
		return fromValues(r)
	case guardgen.ObjectShape:
		return fromObject(r)
	case guardgen.ArrayShape:
		items, err := FromNode(r.Elem)
		if err != nil {
			return nil, err
		}
		return &Schema{Items: items}, nil
	case guardgen.Union:
		if len(r.Branches) == 0 {
			return &Schema{Not: &Schema{}}, nil
		}
		s := &Schema{AnyOf: make([]*Schema, len(r.Branches))}
		for i, b := range r.Branches {
			bs, err := FromNode(b)
			if err != nil {
				return nil, err
			}
			s.AnyOf[i] = bs
		}
		return s, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, r.Kind())
}

func fromValues(r guardgen.ValueMembership) (*Schema, error) {
	var (
		enum  []any
		types []*Schema
	)
	for _, o := range r.Options {
		if o.Tag == shape.Absent {
			return nil, fmt.Errorf("%w: undefined value", ErrUnsupported)
		}
		if o.HasValue {
			enum = append(enum, o.Value)
			continue
		}
		if o.Tag == shape.NullValue {
			enum = append(enum, nil)
			continue
		}
		t, err := typeOf(o.Tag)
		if err != nil {
			return nil, err
		}
		types = append(types, &Schema{Type: t})
	}
	if len(types) == 0 {
		return &Schema{Enum: enum}, nil
	}
	if len(enum) > 0 {
		types = append([]*Schema{{Enum: enum}}, types...)
	}
	if len(types) == 1 {
		return types[0], nil
	}
	return &Schema{AnyOf: types}, nil
}

func fromObject(r guardgen.ObjectShape) (*Schema, error) {
	s := &Schema{Properties: make(map[string]*Schema, len(r.Props))}
	for _, p := range r.Props {
		ps, err := FromNode(p.Node)
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", p.Name, err)
		}
		s.Properties[p.Name] = ps
		if p.Node == nil || !p.Node.Optional {
			s.Required = append(s.Required, p.Name)
		}
	}
	switch {
	case r.Default == nil:
		s.AdditionalProperties = false
	case len(r.Default.Rules) > 0:
		d, err := FromNode(r.Default)
		if err != nil {
			return nil, err
		}
		s.AdditionalProperties = d
	}
	return s, nil
}

// merge folds src into dst. Keywords already set in dst send src to allOf.
func merge(dst, src *Schema) {
	conflict := dst.Type != "" && src.Type != "" && dst.Type != src.Type && !(dst.Type == "number" && src.Type == "integer") ||
		dst.Enum != nil && src.Enum != nil ||
		dst.Properties != nil && src.Properties != nil ||
		dst.Items != nil && src.Items != nil ||
		dst.AnyOf != nil && src.AnyOf != nil ||
		dst.Not != nil && src.Not != nil
	if conflict {
		dst.AllOf = append(dst.AllOf, src)
		return
	}
	if src.Type != "" {
		dst.Type = src.Type
	}
	if src.Enum != nil {
		dst.Enum = src.Enum
	}
	if src.MinLength != nil {
		dst.MinLength = src.MinLength
	}
	if src.Properties != nil {
		dst.Properties = src.Properties
		dst.Required = src.Required
		dst.AdditionalProperties = src.AdditionalProperties
	}
	if src.Items != nil {
		dst.Items = src.Items
	}
	if src.AnyOf != nil {
		dst.AnyOf = src.AnyOf
	}
	if src.Not != nil {
		dst.Not = src.Not
	}
	dst.AllOf = append(dst.AllOf, src.AllOf...)
}
