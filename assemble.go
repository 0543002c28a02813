package guardgen

import (
	"github.com/reoring/guardgen/i18n"
	"github.com/reoring/guardgen/shape"
)

// check is one assembled rule. In fail-fast mode a false result stops the
// evaluation; in diagnostic mode checks record into st and always continue.
type check func(st *evalState, v any, path string) bool

// evalState is owned by a single Validate call.
type evalState struct {
	diagnostics bool
	out         shape.Diagnostics
}

func (st *evalState) fail(path, rule, message string) bool {
	if !st.diagnostics {
		return false
	}
	st.out = append(st.out, shape.Diagnostic{Path: path, Rule: rule, Message: message})
	return true
}

func (st *evalState) prop(path, name string) string {
	if !st.diagnostics {
		return ""
	}
	return shape.PropPath(path, name)
}

func (st *evalState) index(path string, i int) string {
	if !st.diagnostics {
		return ""
	}
	return shape.IndexPath(path, i)
}

func accept(*evalState, any, string) bool { return true }

// assembleNode composes the checks of every rule of n.
func (c *Context) assembleNode(n *Node) check {
	if n.empty() {
		return accept
	}
	if len(n.Rules) == 1 {
		return n.Rules[0].assemble(c)
	}
	checks := make([]check, len(n.Rules))
	for i, r := range n.Rules {
		checks[i] = r.assemble(c)
	}
	return func(st *evalState, v any, path string) bool {
		for _, ch := range checks {
			if !ch(st, v, path) {
				return false
			}
		}
		return true
	}
}

func (r ExactType) assemble(c *Context) check {
	tag, _ := c.bind(r.Tag).(*shape.TypeTag)
	msg := r.message()
	return func(st *evalState, v any, path string) bool {
		if shape.Classify(v) != tag {
			return st.fail(path, shape.RuleExactType, msg)
		}
		return true
	}
}

func (r TypeInAncestry) assemble(c *Context) check {
	tag, _ := c.bind(r.Tag).(*shape.TypeTag)
	msg := r.message()
	return func(st *evalState, v any, path string) bool {
		if !shape.Includes(v, tag) {
			return st.fail(path, shape.RuleTypeInAncestry, msg)
		}
		return true
	}
}

func (Integer) assemble(*Context) check {
	msg := i18n.T(i18n.NotInteger, nil)
	return func(st *evalState, v any, path string) bool {
		if !shape.IsInteger(v) {
			return st.fail(path, shape.RuleInteger, msg)
		}
		return true
	}
}

func (NonEmptyString) assemble(*Context) check {
	msg := i18n.T(i18n.EmptyString, nil)
	return func(st *evalState, v any, path string) bool {
		if shape.Classify(v) != shape.String || shape.StringOf(v) == "" {
			return st.fail(path, shape.RuleNonEmptyString, msg)
		}
		return true
	}
}

func (r ValueMembership) assemble(c *Context) check {
	type group struct {
		values   []any
		anyValue bool
	}
	groups := map[*shape.TypeTag]group{}
	for _, g := range r.groups() {
		c.bind(g.tag)
		for _, v := range g.values {
			c.bind(v)
		}
		groups[g.tag] = group{values: g.values, anyValue: g.anyValue}
	}
	msg := r.message()
	return func(st *evalState, v any, path string) bool {
		g, ok := groups[shape.Classify(v)]
		if !ok {
			return st.fail(path, shape.RuleValueMembership, msg)
		}
		if g.anyValue {
			return true
		}
		for _, want := range g.values {
			if shape.Same(v, want) {
				return true
			}
		}
		return st.fail(path, shape.RuleValueMembership, msg)
	}
}

func (r ObjectShape) assemble(c *Context) check {
	props := make(map[string]check, len(r.Props))
	var required []string
	for _, p := range r.Props {
		props[p.Name] = c.assembleNode(p.Node)
		if p.Node == nil || !p.Node.Optional {
			required = append(required, p.Name)
		}
	}
	var def check
	if r.Default != nil {
		def = c.assembleNode(r.Default)
	}
	primitiveMsg := i18n.T(i18n.PrimitiveValue, nil)
	missingMsg := i18n.T(i18n.PropertyMissing, nil)
	notAllowedMsg := i18n.T(i18n.PropertyNotAllowed, nil)

	return func(st *evalState, v any, path string) bool {
		if shape.IsPrimitive(v) {
			return st.fail(path, shape.RuleObjectShape, primitiveMsg)
		}
		for _, name := range required {
			if !shape.Has(v, name) && !st.fail(st.prop(path, name), shape.RuleObjectShape, missingMsg) {
				return false
			}
		}
		for _, k := range shape.Keys(v) {
			sub, named := props[k]
			switch {
			case named:
				if !sub(st, shape.Get(v, k), st.prop(path, k)) {
					return false
				}
			case def != nil:
				if !def(st, shape.Get(v, k), st.prop(path, k)) {
					return false
				}
			default:
				if !st.fail(st.prop(path, k), shape.RuleObjectShape, notAllowedMsg) {
					return false
				}
			}
		}
		return true
	}
}

func (r ArrayShape) assemble(c *Context) check {
	elem := c.assembleNode(r.Elem)
	primitiveMsg := i18n.T(i18n.PrimitiveValue, nil)
	sparseMsg := i18n.T(i18n.SparseArray, nil)
	return func(st *evalState, v any, path string) bool {
		if shape.IsPrimitive(v) {
			return st.fail(path, shape.RuleArrayShape, primitiveMsg)
		}
		i := 0
		for ; shape.HasIndex(v, i); i++ {
			if !elem(st, shape.At(v, i), st.index(path, i)) {
				return false
			}
		}
		if shape.Len(v) != i {
			return st.fail(path, shape.RuleArrayShape, sparseMsg)
		}
		return true
	}
}

func (r Union) assemble(c *Context) check {
	if len(r.Branches) == 0 {
		msg := i18n.T(i18n.NoBranch, nil)
		return func(st *evalState, _ any, path string) bool {
			return st.fail(path, shape.RuleUnion, msg)
		}
	}
	branches := make([]check, len(r.Branches))
	for i, b := range r.Branches {
		branches[i] = c.assembleNode(b)
	}
	return func(st *evalState, v any, path string) bool {
		if !st.diagnostics {
			for _, b := range branches {
				if b(st, v, path) {
					return true
				}
			}
			return false
		}
		var merged shape.Diagnostics
		for _, b := range branches {
			sub := &evalState{diagnostics: true}
			b(sub, v, path)
			if len(sub.out) == 0 {
				return true
			}
			merged = append(merged, sub.out...)
		}
		st.out = append(st.out, merged...)
		return true
	}
}
