package jsonschema

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/guardgen"
	"github.com/reoring/guardgen/shape"
)

func node(rules ...guardgen.Rule) *guardgen.Node { return guardgen.NewNode(rules...) }

func optional(n *guardgen.Node) *guardgen.Node {
	n.Optional = true
	return n
}

func TestFromNode_Object(t *testing.T) {
	n := node(guardgen.ObjectShape{
		Props: []guardgen.Prop{
			{Name: "name", Node: node(guardgen.ExactType{Tag: shape.String}, guardgen.NonEmptyString{})},
			{Name: "port", Node: node(guardgen.ExactType{Tag: shape.Number}, guardgen.Integer{})},
			{Name: "tags", Node: optional(node(guardgen.ArrayShape{Elem: node(guardgen.ExactType{Tag: shape.String})}))},
		},
	})
	s, err := FromNode(n)
	require.NoError(t, err)

	one := 1
	want := &Schema{
		Properties: map[string]*Schema{
			"name": {Type: "string", MinLength: &one},
			"port": {Type: "integer"},
			"tags": {Items: &Schema{Type: "string"}},
		},
		Required:             []string{"name", "port"},
		AdditionalProperties: false,
	}
	if diff := cmp.Diff(want, s); diff != "" {
		t.Fatalf("schema mismatch (-want +got):\n%s", diff)
	}
}

func TestFromNode_TypeNeedsExactRule(t *testing.T) {
	obj, err := FromNode(node(guardgen.ExactType{Tag: shape.Object}, guardgen.ObjectShape{}))
	require.NoError(t, err)
	assert.Equal(t, "object", obj.Type)
	assert.Equal(t, map[string]*Schema{}, obj.Properties)

	arr, err := FromNode(node(guardgen.ExactType{Tag: shape.Array}, guardgen.ArrayShape{Elem: node()}))
	require.NoError(t, err)
	assert.Equal(t, &Schema{Type: "array", Items: &Schema{}}, arr)

	loose, err := FromNode(node(guardgen.ArrayShape{Elem: node()}))
	require.NoError(t, err)
	assert.Empty(t, loose.Type)
}

func TestFromNode_AdditionalProperties(t *testing.T) {
	open, err := FromNode(node(guardgen.ObjectShape{Default: node()}))
	require.NoError(t, err)
	assert.Nil(t, open.AdditionalProperties)

	typed, err := FromNode(node(guardgen.ObjectShape{Default: node(guardgen.ExactType{Tag: shape.Boolean})}))
	require.NoError(t, err)
	assert.Equal(t, &Schema{Type: "boolean"}, typed.AdditionalProperties)
}

func TestFromNode_Values(t *testing.T) {
	s, err := FromNode(node(guardgen.ValueMembership{Options: []guardgen.ValueOption{
		{Tag: shape.String, Value: "dev", HasValue: true},
		{Tag: shape.Number, Value: 3, HasValue: true},
		{Tag: shape.NullValue},
	}}))
	require.NoError(t, err)
	assert.Equal(t, []any{"dev", 3, nil}, s.Enum)

	mixed, err := FromNode(node(guardgen.ValueMembership{Options: []guardgen.ValueOption{
		{Tag: shape.String, Value: "x", HasValue: true},
		{Tag: shape.Boolean},
	}}))
	require.NoError(t, err)
	require.Len(t, mixed.AnyOf, 2)
	assert.Equal(t, []any{"x"}, mixed.AnyOf[0].Enum)
	assert.Equal(t, "boolean", mixed.AnyOf[1].Type)
}

func TestFromNode_UnionAndAncestry(t *testing.T) {
	s, err := FromNode(node(guardgen.Union{Branches: []*guardgen.Node{
		node(guardgen.ExactType{Tag: shape.Number}),
		node(guardgen.TypeInAncestry{Tag: shape.Object}),
	}}))
	require.NoError(t, err)
	require.Len(t, s.AnyOf, 2)
	assert.Equal(t, "number", s.AnyOf[0].Type)
	assert.Equal(t, &Schema{Type: "null"}, s.AnyOf[1].Not)

	never, err := FromNode(node(guardgen.Union{}))
	require.NoError(t, err)
	assert.Equal(t, &Schema{}, never.Not)
}

func TestFromNode_ConflictsGoToAllOf(t *testing.T) {
	s, err := FromNode(node(
		guardgen.ExactType{Tag: shape.String},
		guardgen.ExactType{Tag: shape.Number},
	))
	require.NoError(t, err)
	assert.Equal(t, "string", s.Type)
	require.Len(t, s.AllOf, 1)
	assert.Equal(t, "number", s.AllOf[0].Type)
}

func TestFromNode_Unsupported(t *testing.T) {
	point := shape.NewTag("Point", shape.Object)
	cases := map[string]*guardgen.Node{
		"custom tag": node(guardgen.ExactType{Tag: point}),
		"undefined":  node(guardgen.ValueMembership{Options: []guardgen.ValueOption{{Tag: shape.Absent}}}),
		"nested":     node(guardgen.ArrayShape{Elem: node(guardgen.TypeInAncestry{Tag: shape.Function})}),
	}
	for name, n := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := FromNode(n)
			assert.True(t, errors.Is(err, ErrUnsupported), "got %v", err)
		})
	}
}

func TestDocument_Marshal(t *testing.T) {
	doc, err := Document("api", []string{"Name", "Flag"}, []*guardgen.Node{
		node(guardgen.ExactType{Tag: shape.String}),
		node(guardgen.ExactType{Tag: shape.Boolean}),
	})
	require.NoError(t, err)
	b, err := Marshal(doc)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"$schema": "https://json-schema.org/draft/2020-12/schema",
		"title": "api",
		"$defs": {
			"Name": {"type": "string"},
			"Flag": {"type": "boolean"}
		}
	}`, string(b))

	_, err = Document("x", []string{"A"}, nil)
	assert.Error(t, err)
}
