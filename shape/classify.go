package shape

import (
	"encoding/json"
	"math/big"
	"reflect"
)

type undefined struct{}

func (undefined) String() string { return "undefined" }

// Undefined is the absent value: what Get returns for a missing property and
// what a present-but-unset property holds.
var Undefined any = undefined{}

// Bare is a dictionary without a class. It behaves like an object for property
// access but its ancestry chain is just ChainEnd.
type Bare map[string]any

// Classify maps v to its exact nominal tag. It never fails.
func Classify(v any) *TypeTag {
	switch x := v.(type) {
	case nil:
		return NullValue
	case undefined:
		return Absent
	case Bare:
		return ChainEnd
	case bool:
		return Boolean
	case string:
		return String
	case float64, float32, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, uintptr, json.Number:
		return Number
	case *big.Int:
		if x == nil {
			return NullValue
		}
		return BigInt
	case map[string]any:
		return Object
	case []any:
		return Array
	case Classed:
		if t := x.ShapeTag(); t != nil {
			return t
		}
		return NoClass
	}

	rt := reflect.TypeOf(v)
	if t, ok := registered(rt); ok {
		return t
	}
	rv := reflect.ValueOf(v)
	switch rt.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return NullValue
		}
		return NoClass
	case reflect.Bool:
		return Boolean
	case reflect.String:
		return String
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return Number
	case reflect.Map:
		if rt.Key().Kind() == reflect.String {
			return Object
		}
		return NoClass
	case reflect.Slice, reflect.Array:
		return Array
	case reflect.Func:
		return Function
	}
	return NoClass
}

// Chain returns the full ancestry walk of v, starting with Classify(v). Walks
// from a non-sentinel tag end with ChainEnd.
func Chain(v any) []*TypeTag {
	top := Classify(v)
	if top.sentinel {
		return []*TypeTag{top}
	}
	var chain []*TypeTag
	for t := top; t != nil; t = t.parent {
		chain = append(chain, t)
	}
	return append(chain, ChainEnd)
}

// Includes reports whether tag occurs anywhere in the ancestry chain of v,
// including v's own tag and the terminal sentinel.
func Includes(v any, tag *TypeTag) bool {
	if tag == nil {
		return false
	}
	top := Classify(v)
	if top.sentinel {
		return top == tag
	}
	if tag == ChainEnd {
		return true
	}
	for t := top; t != nil; t = t.parent {
		if t == tag {
			return true
		}
	}
	return false
}

// IsPrimitive reports whether v cannot carry properties.
func IsPrimitive(v any) bool {
	switch Classify(v) {
	case Absent, NullValue, Boolean, Number, BigInt, String:
		return true
	}
	return false
}
