package dsl

import (
	"fmt"

	"github.com/reoring/guardgen"
	"github.com/reoring/guardgen/shape"
)

type objectBuilder struct {
	props    []guardgen.Prop
	index    map[string]int
	defaults []any
	checks   []guardgen.Rule
	exact    bool
	err      error
}

type fieldStep struct {
	b    *objectBuilder
	name string
}

// Props creates an object shape builder. Properties keep declaration order
// and are required unless marked Optional; undeclared properties are
// rejected unless Default is given.
func Props() *objectBuilder {
	return &objectBuilder{index: map[string]int{}}
}

// Field registers a property built with From(v).
func (b *objectBuilder) Field(name string, v any) *fieldStep {
	if _, dup := b.index[name]; dup {
		if b.err == nil {
			b.err = fmt.Errorf("dsl: property %q declared twice: %w", name, guardgen.ErrDuplicateProperty)
		}
		return &fieldStep{b: b, name: name}
	}
	b.index[name] = len(b.props)
	b.props = append(b.props, guardgen.Prop{Name: name, Node: From(v)})
	return &fieldStep{b: b, name: name}
}

// Optional marks the field as optional and returns the builder.
func (f *fieldStep) Optional() *objectBuilder {
	i := f.b.index[f.name]
	f.b.props[i].Node = Optional(f.b.props[i].Node)
	return f.b
}

// Required marks the field as required and returns the builder.
func (f *fieldStep) Required() *objectBuilder {
	i := f.b.index[f.name]
	f.b.props[i].Node = Required(f.b.props[i].Node)
	return f.b
}

func (f *fieldStep) Field(name string, v any) *fieldStep         { return f.b.Field(name, v) }
func (f *fieldStep) Default(vs ...any) *objectBuilder            { return f.b.Default(vs...) }
func (f *fieldStep) Check(rules ...guardgen.Rule) *objectBuilder { return f.b.Check(rules...) }
func (f *fieldStep) Exact() *objectBuilder                       { return f.b.Exact() }
func (f *fieldStep) Build() (*guardgen.Node, error)              { return f.b.Build() }
func (f *fieldStep) MustBuild() *guardgen.Node                   { return f.b.MustBuild() }

// Default sets the examples undeclared properties must match. Calling it with
// no examples accepts any undeclared property.
func (b *objectBuilder) Default(vs ...any) *objectBuilder {
	b.defaults = append(b.defaults, vs...)
	if len(vs) == 0 {
		b.defaults = []any{guardgen.Any()}
	}
	return b
}

// Check adds rules evaluated before the property shape.
func (b *objectBuilder) Check(rules ...guardgen.Rule) *objectBuilder {
	b.checks = append(b.checks, rules...)
	return b
}

// Exact additionally requires the value to be a plain object.
func (b *objectBuilder) Exact() *objectBuilder {
	b.exact = true
	return b
}

// Build validates the builder and returns the node.
func (b *objectBuilder) Build() (*guardgen.Node, error) {
	if b.err != nil {
		return nil, b.err
	}
	var rules []guardgen.Rule
	if b.exact {
		rules = append(rules, guardgen.ExactType{Tag: shape.Object})
	}
	rules = append(rules, b.checks...)
	s := guardgen.ObjectShape{Props: append([]guardgen.Prop(nil), b.props...)}
	if len(b.defaults) > 0 {
		s.Default = defaults(b.defaults)
	}
	return guardgen.NewNode(append(rules, s)...), nil
}

// MustBuild is like Build but panics on error.
func (b *objectBuilder) MustBuild() *guardgen.Node {
	n, err := b.Build()
	if err != nil {
		panic(err)
	}
	return n
}
