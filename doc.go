package guardgen

// Package guardgen compiles shape descriptions into validators.
//
// A shape is a tree of *Node values, each holding rules (ExactType,
// TypeInAncestry, ValueMembership, ObjectShape, ArrayShape, Union, Integer,
// NonEmptyString). A tree compiles two ways:
//
// - Module flavor: Module.Compile renders Go source with one function per
//   entry. Generated code calls into the shape package and receives values it
//   cannot write as literals through a links map.
// - Closure flavor: Validator.Compile assembles Go closures that run the same
//   checks in process.
//
// Both flavors run in fail-fast mode (first failure returns false) or in
// diagnostic mode (every independent failure is reported with its path).
// TypeOf renders the static type of a tree.
//
// Design policy:
// - Keep the rule model and both compilers in the root package; put name
//   allocation, symbol tables and file rendering under internal/.
// - Place the builder DSL under dsl/, the YAML loader under loader/, JSON
//   Schema export under jsonschema/ and the CLI under cmd/guardgen.
//
// Typical usage:
//
//	n := dsl.Object(map[string]*guardgen.Node{"a": dsl.Number()})
//	v := guardgen.NewValidator(n, guardgen.WithDiagnostics(true))
//	if err := v.Compile(); err != nil { ... }
//	ok, diags := v.Check(value)
//
//	m := guardgen.NewModule(guardgen.WithPackage("validators"))
//	m.Add(n, "ValidateConfig")
//	src, err := m.Compile()
