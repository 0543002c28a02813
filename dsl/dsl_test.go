package dsl_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/guardgen"
	"github.com/reoring/guardgen/dsl"
	"github.com/reoring/guardgen/shape"
)

func compile(t *testing.T, n *guardgen.Node) *guardgen.Validator {
	t.Helper()
	v := guardgen.NewValidator(n)
	require.NoError(t, v.Compile())
	return v
}

func TestFrom_Example(t *testing.T) {
	n := dsl.From(map[string]any{
		"name": "svc",
		"tags": []any{"a", 1},
		"any":  dsl.Any(),
	})
	assert.Equal(t, `{any: any, name: ("svc"), tags: (("a")|(1))[]}`, guardgen.TypeOf(n))

	v := compile(t, n)
	assert.True(t, v.Validate(map[string]any{"name": "svc", "tags": []any{1, "a", 1}, "any": struct{}{}}))
	assert.False(t, v.Validate(map[string]any{"name": "other", "tags": []any{}, "any": nil}))
	assert.False(t, v.Validate(map[string]any{"name": "svc", "tags": []any{}}))
}

func TestFrom_Sentinels(t *testing.T) {
	assert.Equal(t, "(null)", guardgen.TypeOf(dsl.Null()))
	assert.Equal(t, "(undefined)", guardgen.TypeOf(dsl.Undefined()))

	v := compile(t, dsl.Nullable(dsl.String()))
	assert.True(t, v.Validate(nil))
	assert.True(t, v.Validate("x"))
	assert.False(t, v.Validate(1))
}

func TestFrom_TagsAndFuncs(t *testing.T) {
	assert.Equal(t, []guardgen.Rule{guardgen.TypeInAncestry{Tag: shape.Object}}, dsl.From(shape.Object).Rules)
	assert.Equal(t, []guardgen.Rule{guardgen.ExactType{Tag: shape.Function}}, dsl.From(func() {}).Rules)

	v := compile(t, dsl.From(shape.Object))
	assert.True(t, v.Validate(map[string]any{}))
	assert.True(t, v.Validate([]any{}))
	assert.False(t, v.Validate(nil))
}

func TestFromJSON_KeepsOrder(t *testing.T) {
	n, err := dsl.FromJSON([]byte(`{"z": 1, "a": {"y": true, "b": null}}`))
	require.NoError(t, err)
	assert.Equal(t, "{z: (1), a: {y: (true), b: (null)}}", guardgen.TypeOf(n))

	v := compile(t, n)
	assert.True(t, v.Validate(map[string]any{"z": 1.0, "a": map[string]any{"y": true, "b": nil}}))
	assert.False(t, v.Validate(map[string]any{"z": 2, "a": map[string]any{"y": true, "b": nil}}))
}

func TestFromJSON_Errors(t *testing.T) {
	_, err := dsl.FromJSON([]byte(`{"a": 1, "a": 2}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dsl: decode JSON example")

	_, err = dsl.FromJSONReader(strings.NewReader(`[1, 2`))
	assert.Error(t, err)

	n, err := dsl.FromJSONReader(strings.NewReader(`[1, 2]`))
	require.NoError(t, err)
	assert.Equal(t, "((1)|(2))[]", guardgen.TypeOf(n))
}

func TestProps_Builder(t *testing.T) {
	n, err := dsl.Props().
		Field("id", dsl.Integer()).
		Field("note", dsl.String()).Optional().
		Default(dsl.Boolean()).
		Exact().
		Build()
	require.NoError(t, err)
	assert.Equal(t, "{id: number, note?: string, [key: string]: boolean}", guardgen.TypeOf(n))

	v := compile(t, n)
	assert.True(t, v.Validate(map[string]any{"id": 1}))
	assert.True(t, v.Validate(map[string]any{"id": 1, "note": "n", "flag": false}))
	assert.False(t, v.Validate(map[string]any{"id": 1.5}))
	assert.False(t, v.Validate(map[string]any{"id": 1, "flag": "yes"}))
}

func TestProps_DuplicateField(t *testing.T) {
	_, err := dsl.Props().Field("a", 1).Field("a", 2).Build()
	require.Error(t, err)
	assert.True(t, errors.Is(err, guardgen.ErrDuplicateProperty))
	assert.Panics(t, func() { dsl.Props().Field("a", 1).Field("a", 2).MustBuild() })
}

func TestOptional_DoesNotMutate(t *testing.T) {
	s := dsl.String()
	o := dsl.Optional(s)
	assert.True(t, o.Optional)
	assert.False(t, s.Optional)
	assert.False(t, dsl.Required(o).Optional)
	assert.True(t, o.Optional)
}

func TestValues_Tags(t *testing.T) {
	n := dsl.Values("a", shape.Number)
	assert.Equal(t, `("a"|number)`, guardgen.TypeOf(n))
	v := compile(t, n)
	assert.True(t, v.Validate("a"))
	assert.True(t, v.Validate(3.5))
	assert.False(t, v.Validate("b"))
}

func TestObject_AndArrayOf(t *testing.T) {
	n := dsl.Object(map[string]any{"xs": dsl.ArrayOf(dsl.Number(), dsl.String())})
	assert.Equal(t, "{xs: (number|string)[]}", guardgen.TypeOf(n))
	v := compile(t, n)
	assert.True(t, v.Validate(map[string]any{"xs": []any{1, "a"}}))
	assert.False(t, v.Validate(map[string]any{"xs": []any{true}}))
	assert.False(t, v.Validate(map[string]any{"xs": []any{}, "extra": 1}))
}
