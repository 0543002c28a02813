package guardgen_test

import (
	"fmt"

	"github.com/reoring/guardgen"
	g "github.com/reoring/guardgen/dsl"
)

func ExampleModule() {
	m := guardgen.NewModule()
	m.Add(g.Number(), "IsNumber")
	src, err := m.Compile()
	if err != nil {
		panic(err)
	}
	fmt.Print(string(src))
	// Output:
	// // Code generated by guardgen. DO NOT EDIT.
	//
	// package validators
	//
	// import (
	// 	shape "github.com/reoring/guardgen/shape"
	// )
	//
	// var (
	// 	_a = shape.Classify
	// )
	//
	// // IsNumber reports whether obj has the static type
	// //
	// //	number
	// func IsNumber(obj any, links map[string]any) bool {
	// 	if _a(obj) != shape.Number {
	// 		return false
	// 	}
	// 	return true
	// }
}

func ExampleValidator_Check() {
	n := g.Props().
		Field("name", g.NonEmptyString()).
		Field("tags", g.ArrayOf(g.String())).Optional().
		MustBuild()
	v := guardgen.NewValidator(n, guardgen.WithDiagnostics(true))
	if err := v.Compile(); err != nil {
		panic(err)
	}
	ok, diags := v.Check(map[string]any{"name": "", "tags": []any{"a", 1}})
	fmt.Println(ok)
	for _, d := range diags {
		fmt.Println(d)
	}
	fmt.Println(v.StaticType())
	// Output:
	// false
	// NonEmptyString at .name: not a non-empty string
	// ExactType at .tags[1]: type is not 'String'
	// {name: string, tags?: string[]}
}
