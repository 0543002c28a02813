package dsl

import (
	"github.com/reoring/guardgen"
	"github.com/reoring/guardgen/shape"
)

// Predefined nodes. Each call returns a fresh node.

// Any accepts every value.
func Any() *guardgen.Node { return guardgen.Any() }

// Boolean accepts true and false.
func Boolean() *guardgen.Node { return ExactClass(shape.Boolean) }

// Number accepts every Go number kind and json.Number.
func Number() *guardgen.Node { return ExactClass(shape.Number) }

// BigInt accepts non-nil *big.Int values.
func BigInt() *guardgen.Node { return ExactClass(shape.BigInt) }

// String accepts strings, empty included.
func String() *guardgen.Node { return ExactClass(shape.String) }

// Function accepts func values.
func Function() *guardgen.Node { return ExactClass(shape.Function) }

// Integer accepts numbers without a fractional part.
func Integer() *guardgen.Node {
	return guardgen.NewNode(guardgen.ExactType{Tag: shape.Number}, guardgen.Integer{})
}

// NonEmptyString accepts strings other than "".
func NonEmptyString() *guardgen.Node { return guardgen.NewNode(guardgen.NonEmptyString{}) }

// Null accepts nil and typed nil pointers.
func Null() *guardgen.Node { return Values(nil) }

// Undefined accepts only shape.Undefined.
func Undefined() *guardgen.Node { return Values(shape.Undefined) }

// Nullable accepts null or whatever From(v) accepts.
func Nullable(v any) *guardgen.Node { return Union(nil, v) }
