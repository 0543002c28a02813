package guardgen_test

import (
	"bytes"
	"errors"
	"log/slog"
	"math/big"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/guardgen"
	g "github.com/reoring/guardgen/dsl"
	"github.com/reoring/guardgen/shape"
)

func compiled(t *testing.T, n *guardgen.Node, opts ...guardgen.Option) *guardgen.Validator {
	t.Helper()
	v := guardgen.NewValidator(n, opts...)
	require.NoError(t, v.Compile())
	return v
}

func configNode() *guardgen.Node {
	return g.Props().
		Field("a", g.Number()).
		Field("b", g.String()).Optional().
		MustBuild()
}

func TestValidator_ObjectShape(t *testing.T) {
	v := compiled(t, configNode())

	cases := []struct {
		name string
		in   any
		want bool
	}{
		{"required only", map[string]any{"a": 1}, true},
		{"with optional", map[string]any{"a": 1.5, "b": "x"}, true},
		{"missing required", map[string]any{"b": "x"}, false},
		{"wrong optional type", map[string]any{"a": 1, "b": 2}, false},
		{"unknown property", map[string]any{"a": 1, "c": true}, false},
		{"primitive", 1, false},
		{"null", nil, false},
		{"bare dictionary", shape.Bare{"a": 1}, true},
		{"optional present as undefined", map[string]any{"a": 1, "b": shape.Undefined}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, v.Validate(tc.in))
		})
	}
}

func TestValidator_DefaultProperties(t *testing.T) {
	v := compiled(t, g.Object(map[string]any{"id": g.Integer()}, g.String(), g.Boolean()))

	assert.True(t, v.Validate(map[string]any{"id": 3, "x": "s", "y": false}))
	assert.False(t, v.Validate(map[string]any{"id": 3.5}))
	assert.False(t, v.Validate(map[string]any{"id": 3, "x": 1}))
}

func TestValidator_Diagnostics_ObjectPaths(t *testing.T) {
	v := compiled(t, configNode(), guardgen.WithDiagnostics(true))

	ok, diags := v.Check(map[string]any{"b": 1, "c": true})
	require.False(t, ok)
	want := shape.Diagnostics{
		{Path: ".a", Rule: shape.RuleObjectShape, Message: "property is missing"},
		{Path: ".b", Rule: shape.RuleExactType, Message: "type is not 'String'"},
		{Path: ".c", Rule: shape.RuleObjectShape, Message: "property is not allowed"},
	}
	if diff := cmp.Diff(want, diags); diff != "" {
		t.Fatalf("diagnostics mismatch (-want +got):\n%s", diff)
	}
	assert.False(t, v.Validate(map[string]any{"b": 1}))
	assert.True(t, v.Validate(map[string]any{"a": 1}))
}

func TestValidator_Diagnostics_UnionReportsEveryBranch(t *testing.T) {
	v := compiled(t, g.Union(g.Number(), g.String()), guardgen.WithDiagnostics(true))

	ok, diags := v.Check(true)
	require.False(t, ok)
	want := shape.Diagnostics{
		{Path: "", Rule: shape.RuleExactType, Message: "type is not 'Number'"},
		{Path: "", Rule: shape.RuleExactType, Message: "type is not 'String'"},
	}
	if diff := cmp.Diff(want, diags); diff != "" {
		t.Fatalf("diagnostics mismatch (-want +got):\n%s", diff)
	}

	ok, diags = v.Check("x")
	assert.True(t, ok)
	assert.Empty(t, diags, "a matching branch discards the others' diagnostics")
}

func TestValidator_Arrays(t *testing.T) {
	v := compiled(t, g.ArrayOf(g.Number()), guardgen.WithDiagnostics(true))

	assert.True(t, v.Validate([]any{}))
	assert.True(t, v.Validate([]any{1, 2.5}))

	ok, diags := v.Check([]any{1, "x", 3})
	require.False(t, ok)
	assert.Equal(t, shape.Diagnostics{{Path: "[1]", Rule: shape.RuleExactType, Message: "type is not 'Number'"}}, diags)
}

func TestValidator_SparseArray(t *testing.T) {
	v := compiled(t, g.Custom(guardgen.ArrayShape{Elem: g.Number()}), guardgen.WithDiagnostics(true))

	assert.True(t, v.Validate(map[string]any{"0": 1, "1": 2}), "dense index map is an array shape")
	ok, diags := v.Check(map[string]any{"0": 1, "2": 3})
	require.False(t, ok)
	assert.Equal(t, shape.Diagnostics{{Path: "", Rule: shape.RuleArrayShape, Message: "not a sequentially strict array"}}, diags)
	assert.False(t, v.Validate("abc"))
}

func TestValidator_FailFastMatchesDiagnosticVerdict(t *testing.T) {
	point := shape.NewTag("Point", shape.Object)
	nodes := []*guardgen.Node{
		configNode(),
		g.ArrayOf(g.Union(g.Number(), g.Null())),
		g.Values("a", 1, nil, true),
		g.Union(),
		g.Class(point),
		g.From(map[string]any{"k": []any{1, "two"}, "n": big.NewInt(4)}),
		g.NonEmptyString(),
	}
	inputs := []any{
		nil, shape.Undefined, 1, "a", "", true, big.NewInt(4),
		[]any{1, nil}, []any{"x"}, map[string]any{"a": 1},
		map[string]any{"k": []any{1, "two"}, "n": big.NewInt(4)},
		map[string]any{"k": []any{"two", 1}, "n": big.NewInt(5)},
	}
	for i, n := range nodes {
		fast := compiled(t, n)
		diag := compiled(t, n, guardgen.WithDiagnostics(true))
		for j, in := range inputs {
			ok, diags := diag.Check(in)
			assert.Equal(t, fast.Validate(in), ok, "node %d input %d", i, j)
			assert.Equal(t, ok, len(diags) == 0, "node %d input %d", i, j)
		}
	}
}

func TestValidator_EmptyUnionRejects(t *testing.T) {
	v := compiled(t, g.Union(), guardgen.WithDiagnostics(true))
	ok, diags := v.Check(1)
	assert.False(t, ok)
	assert.Equal(t, shape.Diagnostics{{Path: "", Rule: shape.RuleUnion, Message: "union has no branch to match"}}, diags)
	assert.Equal(t, "never", v.StaticType())
}

func TestValidator_AnyAcceptsEverything(t *testing.T) {
	v := compiled(t, guardgen.Any())
	for _, in := range []any{nil, shape.Undefined, 0, "", []any{}, struct{}{}} {
		assert.True(t, v.Validate(in))
	}
	assert.Equal(t, "any", v.StaticType())
}

func TestValidator_CustomTagsAreLinked(t *testing.T) {
	base := shape.NewTag("Shape", shape.Object)
	circle := shape.NewTag("Circle", base)
	type circleValue struct{ R float64 }
	shape.Register(circleValue{}, circle)
	defer shape.Unregister(circleValue{})

	v := compiled(t, g.Class(base))
	assert.True(t, v.Validate(circleValue{R: 1}))
	assert.False(t, v.Validate(map[string]any{}))

	exact := compiled(t, g.ExactClass(base))
	assert.False(t, exact.Validate(circleValue{R: 1}))

	assert.Equal(t, map[string]any{"a": base}, v.Values())
	assert.Contains(t, v.LinksSummary(), `"a": nil, // tag Shape`)
}

func TestValidator_ValidateBeforeCompilePanics(t *testing.T) {
	v := guardgen.NewValidator(g.Number())
	assert.PanicsWithValue(t, "guardgen: Validate called before Compile", func() { v.Validate(1) })
}

func TestValidator_RejectsUnlinkableValues(t *testing.T) {
	type bag struct{ S []int }
	tag := shape.NewTag("Bag", shape.Object)
	shape.Register(bag{}, tag)
	defer shape.Unregister(bag{})

	err := guardgen.NewValidator(g.Values(bag{S: []int{1}})).Compile()
	require.Error(t, err)
	assert.True(t, errors.Is(err, guardgen.ErrUnlinkableValue))

	m := guardgen.NewModule()
	m.Add(g.Props().Field("b", g.Values(bag{})).MustBuild(), "HasBag")
	_, err = m.Compile()
	assert.True(t, errors.Is(err, guardgen.ErrUnlinkableValue))
}

func TestValidator_IntKeyedMaps(t *testing.T) {
	for _, diag := range []bool{false, true} {
		arr := compiled(t, g.ArrayOf(g.Number()), guardgen.WithDiagnostics(diag))
		assert.False(t, arr.Validate(map[int]any{0: 1, 5: 2}), "sparse int-keyed map")
		assert.False(t, arr.Validate(struct{ A, B int }{}), "struct with fields")

		shapeOnly := compiled(t, g.Object(map[string]any{"a": g.Optional(g.Number())}), guardgen.WithDiagnostics(diag))
		assert.False(t, shapeOnly.Validate(map[int]any{7: 1}))
		assert.True(t, shapeOnly.Validate(struct{}{}))
		assert.True(t, shapeOnly.Validate(struct{ a int }{}))

		dense := compiled(t, guardgen.NewNode(guardgen.ArrayShape{Elem: g.Number()}), guardgen.WithDiagnostics(diag))
		assert.True(t, dense.Validate(map[int]any{0: 1, 1: 2}))
		assert.False(t, dense.Validate(map[int]any{0: 1, 5: 2}))
		assert.False(t, dense.Validate(map[int]any{0: 1, 1: "x"}))
		assert.False(t, dense.Validate(struct{ A, B int }{}))
	}

	v := compiled(t, g.Object(map[string]any{"a": g.Optional(g.Number())}), guardgen.WithDiagnostics(true))
	_, diags := v.Check(map[int]any{7: 1})
	require.Len(t, diags, 1)
	assert.Equal(t, shape.Diagnostics{{Path: ".7", Rule: shape.RuleObjectShape, Message: diags[0].Message}}, diags)
}

func TestValidator_RejectsCycles(t *testing.T) {
	n := guardgen.NewNode()
	n.Rules = []guardgen.Rule{guardgen.ArrayShape{Elem: n}}
	err := guardgen.NewValidator(n).Compile()
	require.Error(t, err)
	assert.True(t, errors.Is(err, guardgen.ErrCyclicSchema))

	// Shared subtrees are not cycles.
	shared := g.Number()
	ok := guardgen.NewNode(guardgen.Union{Branches: []*guardgen.Node{shared, shared}})
	assert.NoError(t, guardgen.NewValidator(ok).Compile())
}

func TestValidator_RejectsDuplicateProperties(t *testing.T) {
	n := g.Custom(guardgen.ObjectShape{Props: []guardgen.Prop{{Name: "a"}, {Name: "a"}}})
	err := guardgen.NewValidator(n).Compile()
	assert.ErrorIs(t, err, guardgen.ErrDuplicateProperty)
}

func TestValidator_ConcurrentValidate(t *testing.T) {
	v := compiled(t, configNode(), guardgen.WithDiagnostics(true))
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				ok, diags := v.Check(map[string]any{"a": i, "c": j})
				if ok || len(diags) != 1 || diags[0].Path != ".c" {
					t.Errorf("unexpected result %v %v", ok, diags)
					return
				}
			}
		}(i)
	}
	wg.Wait()
}

func TestValidator_LogsCompile(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	compiled(t, g.Number(), guardgen.WithLogger(logger))
	assert.True(t, strings.Contains(buf.String(), "validator compiled"), buf.String())
	assert.Contains(t, buf.String(), "type=number")
}

func TestValidator_Source(t *testing.T) {
	v := guardgen.NewValidator(g.Number(), guardgen.WithPackage("checks"))
	src, err := v.Source()
	require.NoError(t, err)
	assert.Contains(t, string(src), "package checks\n")
	assert.Contains(t, string(src), "func Validate(obj any, links map[string]any) bool {\n")
}
