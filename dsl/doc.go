// Package dsl builds guardgen rule trees.
//
// Overview
//   - From(example): derive a tree from an example value. Plain objects become
//     an exact Object check plus a property shape, []any an exact Array check
//     plus an element shape, primitives a one-value membership and anything
//     else an exact check on its tag. *guardgen.Node values pass through, so
//     examples can mix literal data with hand-built nodes.
//   - Go has no constructor values, so a *shape.TypeTag stands in for one:
//     From(shape.Object) accepts every value whose ancestry includes Object.
//     A func example is an ordinary value and yields an exact Function check.
//   - FromJSON(data): the same over a JSON document, keeping key order.
//   - Object/Props: property shapes without the exact Object check, either from
//     a map (keys sorted) or from a builder (declaration order).
//   - Class/ExactClass/Values/Union/Custom: single-rule helpers.
//   - Number()/String()/Integer()/NonEmptyString()/...: predefined nodes.
//
// Defaults
//
// Object and array helpers take default examples: none accepts anything, one
// example is used as is and several become a Union of their trees.
//
// Nodes are plain values; Optional returns a flagged copy and never mutates
// its argument, so predefined nodes may be shared freely.
package dsl
