package shape

// Package shape classifies runtime values against a nominal type hierarchy and
// provides the small set of routines generated validators call at run time.
//
// Every value maps to exactly one TypeTag. Built-in tags cover the values a
// decoded document can hold (booleans, numbers, strings, maps, slices); custom
// tags are declared with NewTag and attached to Go types with Register or by
// implementing Classed. Four sentinel tags cover values without a usable class.

import (
	"fmt"
	"reflect"
	"sync"
)

// TypeTag is the nominal identity of a value. Tags are compared by pointer.
type TypeTag struct {
	name     string
	parent   *TypeTag
	sentinel bool
}

// NewTag declares a custom tag deriving from parent. A nil parent makes the tag
// a root, so its ancestry chain ends right after it.
func NewTag(name string, parent *TypeTag) *TypeTag {
	return &TypeTag{name: name, parent: parent}
}

// Name returns the tag's display name.
func (t *TypeTag) Name() string {
	if t == nil {
		return ""
	}
	return t.name
}

// Parent returns the next more general tag, or nil at the top of the chain.
func (t *TypeTag) Parent() *TypeTag {
	if t == nil {
		return nil
	}
	return t.parent
}

// IsSentinel reports whether t is one of Absent, NullValue, NoClass, ChainEnd.
func (t *TypeTag) IsSentinel() bool { return t != nil && t.sentinel }

func (t *TypeTag) String() string { return t.Name() }

func sentinel(name string) *TypeTag { return &TypeTag{name: name, sentinel: true} }

// Sentinels.
var (
	Absent    = sentinel("Absent")
	NullValue = sentinel("Null")
	NoClass   = sentinel("NoClass")
	ChainEnd  = sentinel("ChainEnd")
)

// Built-in tags.
var (
	Object   = &TypeTag{name: "Object"}
	Boolean  = &TypeTag{name: "Boolean", parent: Object}
	Number   = &TypeTag{name: "Number", parent: Object}
	BigInt   = &TypeTag{name: "BigInt", parent: Object}
	String   = &TypeTag{name: "String", parent: Object}
	Array    = &TypeTag{name: "Array", parent: Object}
	Function = &TypeTag{name: "Function", parent: Object}
)

// Builtins lists the built-in and sentinel tags in a stable order.
var Builtins = []*TypeTag{
	Absent, NullValue, NoClass, ChainEnd,
	Object, Boolean, Number, BigInt, String, Array, Function,
}

// Classed lets a value report its own tag. Returning nil classifies the value
// as NoClass.
type Classed interface {
	ShapeTag() *TypeTag
}

var (
	registryMu sync.RWMutex
	registry   = map[reflect.Type]*TypeTag{}
)

// Register binds the dynamic Go type of sample to tag. Registered types take
// precedence over the built-in kind mapping.
func Register(sample any, tag *TypeTag) {
	if sample == nil || tag == nil {
		panic("shape: Register requires a non-nil sample and tag")
	}
	if tag.sentinel {
		panic(fmt.Sprintf("shape: cannot register sentinel tag %s", tag.name))
	}
	registryMu.Lock()
	registry[reflect.TypeOf(sample)] = tag
	registryMu.Unlock()
}

// Unregister removes a binding created by Register.
func Unregister(sample any) {
	if sample == nil {
		return
	}
	registryMu.Lock()
	delete(registry, reflect.TypeOf(sample))
	registryMu.Unlock()
}

func registered(rt reflect.Type) (*TypeTag, bool) {
	registryMu.RLock()
	t, ok := registry[rt]
	registryMu.RUnlock()
	return t, ok
}
