package dsl

import (
	"sort"

	"github.com/reoring/guardgen"
	eng "github.com/reoring/guardgen/internal/engine"
	"github.com/reoring/guardgen/shape"
)

// From derives a rule tree from an example value. A *shape.TypeTag yields an
// ancestry check for that tag; a func value yields an exact Function check.
func From(v any) *guardgen.Node {
	switch x := v.(type) {
	case *guardgen.Node:
		if x == nil {
			return guardgen.Any()
		}
		return x
	case *shape.TypeTag:
		return Class(x)
	case eng.Object:
		props := make([]guardgen.Prop, len(x))
		for i, m := range x {
			props[i] = guardgen.Prop{Name: m.Key, Node: From(m.Value)}
		}
		return guardgen.NewNode(guardgen.ExactType{Tag: shape.Object}, guardgen.ObjectShape{Props: props})
	case map[string]any:
		return guardgen.NewNode(guardgen.ExactType{Tag: shape.Object}, objectShape(x, nil))
	case []any:
		return guardgen.NewNode(guardgen.ExactType{Tag: shape.Array}, guardgen.ArrayShape{Elem: defaults(x)})
	}
	if shape.IsPrimitive(v) {
		return guardgen.NewNode(guardgen.ValueMembership{Options: []guardgen.ValueOption{option(v)}})
	}
	return ExactClass(shape.Classify(v))
}

// option accepts exactly v. Undefined and null are matched by tag alone since
// each stands for a single value.
func option(v any) guardgen.ValueOption {
	tag := shape.Classify(v)
	if tag.IsSentinel() {
		return guardgen.ValueOption{Tag: tag}
	}
	return guardgen.ValueOption{Tag: tag, Value: v, HasValue: true}
}

func objectShape(named map[string]any, defs []any) guardgen.ObjectShape {
	keys := make([]string, 0, len(named))
	for k := range named {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	props := make([]guardgen.Prop, len(keys))
	for i, k := range keys {
		props[i] = guardgen.Prop{Name: k, Node: From(named[k])}
	}
	s := guardgen.ObjectShape{Props: props}
	if len(defs) > 0 {
		s.Default = defaults(defs)
	}
	return s
}

// defaults turns default examples into one node.
func defaults(defs []any) *guardgen.Node {
	switch len(defs) {
	case 0:
		return guardgen.Any()
	case 1:
		return From(defs[0])
	}
	return Union(defs...)
}

// Optional returns a copy of From(v) flagged as an optional property.
func Optional(v any) *guardgen.Node {
	n := *From(v)
	n.Optional = true
	return &n
}

// Required returns a copy of From(v) with the optional flag cleared.
func Required(v any) *guardgen.Node {
	n := *From(v)
	n.Optional = false
	return &n
}

// Object accepts non-primitive values with the named properties. Properties
// not named must match one of defs; without defs they are rejected.
func Object(named map[string]any, defs ...any) *guardgen.Node {
	return guardgen.NewNode(objectShape(named, defs))
}

// ArrayOf accepts dense arrays whose elements match one of defs.
func ArrayOf(defs ...any) *guardgen.Node {
	return guardgen.NewNode(guardgen.ExactType{Tag: shape.Array}, guardgen.ArrayShape{Elem: defaults(defs)})
}

// Union accepts values matching any of the examples.
func Union(vs ...any) *guardgen.Node {
	branches := make([]*guardgen.Node, len(vs))
	for i, v := range vs {
		branches[i] = From(v)
	}
	return guardgen.NewNode(guardgen.Union{Branches: branches})
}

// Class accepts values whose ancestry includes tag.
func Class(tag *shape.TypeTag) *guardgen.Node {
	return guardgen.NewNode(guardgen.TypeInAncestry{Tag: tag})
}

// ExactClass accepts values whose own tag is tag.
func ExactClass(tag *shape.TypeTag) *guardgen.Node {
	return guardgen.NewNode(guardgen.ExactType{Tag: tag})
}

// Values accepts exactly the given primitive values. A *shape.TypeTag among
// them accepts every value of that tag.
func Values(vs ...any) *guardgen.Node {
	opts := make([]guardgen.ValueOption, len(vs))
	for i, v := range vs {
		if t, ok := v.(*shape.TypeTag); ok {
			opts[i] = guardgen.ValueOption{Tag: t}
			continue
		}
		opts[i] = option(v)
	}
	return guardgen.NewNode(guardgen.ValueMembership{Options: opts})
}

// Custom wraps hand-picked rules.
func Custom(rules ...guardgen.Rule) *guardgen.Node { return guardgen.NewNode(rules...) }
