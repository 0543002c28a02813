package guardgen

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/reoring/guardgen/i18n"
	"github.com/reoring/guardgen/shape"
)

// ExactType accepts values whose own tag is Tag.
type ExactType struct{ Tag *shape.TypeTag }

// TypeInAncestry accepts values whose ancestry chain includes Tag.
type TypeInAncestry struct{ Tag *shape.TypeTag }

// ValueOption is one accepted member of a ValueMembership rule: any value of Tag,
// or, with HasValue, exactly Value.
type ValueOption struct {
	Tag      *shape.TypeTag
	Value    any
	HasValue bool
}

// ValueMembership accepts values matching one of its options.
type ValueMembership struct{ Options []ValueOption }

// Prop is one declared object property.
type Prop struct {
	Name string
	Node *Node
}

// ObjectShape accepts non-primitive values whose properties match. Every
// non-optional property must be present; present properties dispatch to their
// node, then to Default, and are rejected when neither exists.
type ObjectShape struct {
	Props   []Prop
	Default *Node
}

// ArrayShape accepts non-primitive values whose properties are exactly the
// dense indices 0..n-1, each matching Elem.
type ArrayShape struct{ Elem *Node }

// Union accepts values matching any branch.
type Union struct{ Branches []*Node }

// Integer accepts numbers with no fractional part.
type Integer struct{}

// NonEmptyString accepts strings other than "".
type NonEmptyString struct{}

func (ExactType) Kind() string       { return shape.RuleExactType }
func (TypeInAncestry) Kind() string  { return shape.RuleTypeInAncestry }
func (ValueMembership) Kind() string { return shape.RuleValueMembership }
func (ObjectShape) Kind() string     { return shape.RuleObjectShape }
func (ArrayShape) Kind() string      { return shape.RuleArrayShape }
func (Union) Kind() string           { return shape.RuleUnion }
func (Integer) Kind() string         { return shape.RuleInteger }
func (NonEmptyString) Kind() string  { return shape.RuleNonEmptyString }

func (ExactType) precedence() int       { return precedenceIdentity }
func (TypeInAncestry) precedence() int  { return precedenceIdentity }
func (ValueMembership) precedence() int { return precedenceIdentity }
func (ObjectShape) precedence() int     { return precedenceShape }
func (ArrayShape) precedence() int      { return precedenceShape }
func (Union) precedence() int           { return precedenceShape }
func (Integer) precedence() int         { return precedenceIdentity }
func (NonEmptyString) precedence() int  { return precedenceIdentity }

func (ExactType) children() []*Node       { return nil }
func (TypeInAncestry) children() []*Node  { return nil }
func (ValueMembership) children() []*Node { return nil }
func (Integer) children() []*Node         { return nil }
func (NonEmptyString) children() []*Node  { return nil }

func (r ObjectShape) children() []*Node {
	out := make([]*Node, 0, len(r.Props)+1)
	for _, p := range r.Props {
		out = append(out, p.Node)
	}
	if r.Default != nil {
		out = append(out, r.Default)
	}
	return out
}

func (r ArrayShape) children() []*Node { return []*Node{r.Elem} }
func (r Union) children() []*Node      { return r.Branches }

// ---- static types ----

var leafTypes = map[*shape.TypeTag]string{
	shape.Absent:    "undefined",
	shape.NullValue: "null",
	shape.NoClass:   "any",
	shape.ChainEnd:  "object",
	shape.Boolean:   "boolean",
	shape.Number:    "number",
	shape.BigInt:    "bigint",
	shape.String:    "string",
}

func tagType(t *shape.TypeTag) string {
	if s, ok := leafTypes[t]; ok {
		return s
	}
	return t.Name()
}

// valueType renders a literal value as a static type.
func valueType(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return strconv.Quote(x)
	case bool:
		return strconv.FormatBool(x)
	case *big.Int:
		return x.String() + "n"
	}
	if v == shape.Undefined {
		return "undefined"
	}
	if shape.Classify(v) == shape.Number {
		return fmt.Sprint(v)
	}
	return tagType(shape.Classify(v))
}

func (r ExactType) StaticType(*Context) string      { return tagType(r.Tag) }
func (r TypeInAncestry) StaticType(*Context) string { return tagType(r.Tag) }
func (Integer) StaticType(*Context) string          { return "number" }
func (NonEmptyString) StaticType(*Context) string   { return "string" }

func (r ValueMembership) StaticType(*Context) string {
	parts := make([]string, len(r.Options))
	for i, o := range r.Options {
		if o.HasValue {
			parts[i] = valueType(o.Value)
		} else {
			parts[i] = tagType(o.Tag)
		}
	}
	return "(" + strings.Join(parts, "|") + ")"
}

func (r ObjectShape) StaticType(c *Context) string {
	parts := make([]string, 0, len(r.Props)+1)
	for _, p := range r.Props {
		opt := ""
		if p.Node != nil && p.Node.Optional {
			opt = "?"
		}
		parts = append(parts, propertyName(p.Name)+opt+": "+p.Node.StaticType(c))
	}
	if r.Default != nil {
		parts = append(parts, "[key: string]: "+r.Default.StaticType(c))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func (r ArrayShape) StaticType(c *Context) string { return r.Elem.StaticType(c) + "[]" }

func (r Union) StaticType(c *Context) string {
	switch len(r.Branches) {
	case 0:
		return "never"
	case 1:
		return r.Branches[0].StaticType(c)
	}
	parts := make([]string, len(r.Branches))
	for i, b := range r.Branches {
		parts[i] = b.StaticType(c)
	}
	return "(" + strings.Join(parts, "|") + ")"
}

func propertyName(name string) string {
	if name == "" {
		return `""`
	}
	for i, ch := range name {
		ok := ch == '_' || ch == '$' || ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z' || i > 0 && ch >= '0' && ch <= '9'
		if !ok {
			return strconv.Quote(name)
		}
	}
	return name
}

// ---- messages ----

func (r ExactType) message() string {
	return i18n.T(i18n.TypeMismatch, map[string]string{"expected": r.Tag.Name()})
}

func (r TypeInAncestry) message() string {
	return i18n.T(i18n.AncestryMismatch, map[string]string{"expected": r.Tag.Name()})
}

func (r ValueMembership) message() string {
	parts := make([]string, len(r.Options))
	for i, o := range r.Options {
		if o.HasValue {
			parts[i] = valueType(o.Value)
		} else {
			parts[i] = o.Tag.Name()
		}
	}
	return i18n.T(i18n.ValueNotAllowed, map[string]string{"expected": strings.Join(parts, " | ")})
}

// groups collects options by tag in first-appearance order.
func (r ValueMembership) groups() []optionGroup {
	var out []optionGroup
	idx := map[*shape.TypeTag]int{}
	for _, o := range r.Options {
		i, ok := idx[o.Tag]
		if !ok {
			i = len(out)
			idx[o.Tag] = i
			out = append(out, optionGroup{tag: o.Tag})
		}
		if o.HasValue {
			out[i].values = append(out[i].values, o.Value)
		} else {
			out[i].anyValue = true
		}
	}
	return out
}

type optionGroup struct {
	tag      *shape.TypeTag
	values   []any
	anyValue bool
}

// ---- emission ----

func (r ExactType) Emit(c *Context, path, diagPath string) string {
	return fmt.Sprintf("if %s != %s {\n%s}\n",
		c.call("Classify", path), c.tag(r.Tag), c.fail(diagPath, r.Kind(), r.message()))
}

func (r TypeInAncestry) Emit(c *Context, path, diagPath string) string {
	return fmt.Sprintf("if !%s {\n%s}\n",
		c.call("Includes", path, c.tag(r.Tag)), c.fail(diagPath, r.Kind(), r.message()))
}

func (r Integer) Emit(c *Context, path, diagPath string) string {
	return fmt.Sprintf("if !%s {\n%s}\n",
		c.call("IsInteger", path), c.fail(diagPath, r.Kind(), i18n.T(i18n.NotInteger, nil)))
}

func (r NonEmptyString) Emit(c *Context, path, diagPath string) string {
	return fmt.Sprintf("if %s != %s || %s == \"\" {\n%s}\n",
		c.call("Classify", path), c.tag(shape.String), c.call("StringOf", path),
		c.fail(diagPath, r.Kind(), i18n.T(i18n.EmptyString, nil)))
}

func (r ValueMembership) Emit(c *Context, path, diagPath string) string {
	failure := c.fail(diagPath, r.Kind(), r.message())
	var b strings.Builder
	fmt.Fprintf(&b, "switch %s {\n", c.call("Classify", path))
	for _, g := range r.groups() {
		fmt.Fprintf(&b, "case %s:\n", c.tag(g.tag))
		if g.anyValue {
			continue
		}
		conds := make([]string, len(g.values))
		for i, v := range g.values {
			conds[i] = "!" + c.call("Same", path, c.embed(v))
		}
		fmt.Fprintf(&b, "if %s {\n%s}\n", strings.Join(conds, " && "), failure)
	}
	fmt.Fprintf(&b, "default:\n%s}\n", failure)
	return b.String()
}

func (r ObjectShape) Emit(c *Context, path, diagPath string) string {
	c.names.Enter()
	defer c.names.Exit()

	var b strings.Builder
	fmt.Fprintf(&b, "if %s {\n%s} else {\n", c.call("IsPrimitive", path),
		c.fail(diagPath, r.Kind(), i18n.T(i18n.PrimitiveValue, nil)))
	for _, p := range r.Props {
		if p.Node != nil && p.Node.Optional {
			continue
		}
		fmt.Fprintf(&b, "if !%s {\n%s}\n", c.call("Has", path, strconv.Quote(p.Name)),
			c.fail(propPath(diagPath, p.Name), r.Kind(), i18n.T(i18n.PropertyMissing, nil)))
	}

	key := c.names.Fresh()
	fmt.Fprintf(&b, "for _, %s := range %s {\nswitch %s {\n", key, c.call("Keys", path), key)
	for _, p := range r.Props {
		fmt.Fprintf(&b, "case %s:\n", strconv.Quote(p.Name))
		b.WriteString(c.emitChild(p.Node, func() string { return c.call("Get", path, key) }, propPath(diagPath, p.Name)))
	}
	b.WriteString("default:\n")
	if r.Default != nil {
		b.WriteString(c.emitChild(r.Default, func() string { return c.call("Get", path, key) }, keyPath(diagPath, key)))
	} else {
		b.WriteString(c.fail(keyPath(diagPath, key), r.Kind(), i18n.T(i18n.PropertyNotAllowed, nil)))
	}
	b.WriteString("}\n}\n}\n")
	return b.String()
}

func (r ArrayShape) Emit(c *Context, path, diagPath string) string {
	c.names.Enter()
	defer c.names.Exit()

	var b strings.Builder
	fmt.Fprintf(&b, "if %s {\n%s} else {\n", c.call("IsPrimitive", path),
		c.fail(diagPath, r.Kind(), i18n.T(i18n.PrimitiveValue, nil)))
	index := c.names.Fresh()
	fmt.Fprintf(&b, "%s := 0\nfor ; %s; %s++ {\n", index, c.call("HasIndex", path, index), index)
	elemPath := `""`
	if c.diagnostics && !r.Elem.empty() {
		elemPath = c.call("IndexPath", diagPath, index)
	}
	b.WriteString(c.emitChild(r.Elem, func() string { return c.call("At", path, index) }, elemPath))
	fmt.Fprintf(&b, "}\nif %s != %s {\n%s}\n}\n", c.call("Len", path), index,
		c.fail(diagPath, r.Kind(), i18n.T(i18n.SparseArray, nil)))
	return b.String()
}

// emitChild binds the value produced by expr to a fresh scoped variable and
// emits n against it. Nodes without rules emit nothing, so no variable is left
// unused.
func (c *Context) emitChild(n *Node, expr func() string, diagPath string) string {
	if n.empty() {
		return ""
	}
	c.names.Enter()
	defer c.names.Exit()
	v := c.names.Fresh()
	return fmt.Sprintf("%s := %s\n%s", v, expr(), n.Emit(c, v, diagPath))
}

func (r Union) Emit(c *Context, path, diagPath string) string {
	if len(r.Branches) == 0 {
		// path may be a scoped variable bound only for this node.
		return fmt.Sprintf("_ = %s\n%s", path, c.fail(diagPath, r.Kind(), i18n.T(i18n.NoBranch, nil)))
	}
	c.names.Enter()
	defer c.names.Exit()

	if !c.diagnostics {
		calls := make([]string, len(r.Branches))
		for i, br := range r.Branches {
			c.names.Enter()
			calls[i] = fmt.Sprintf("!func(%s any) bool {\n%sreturn true\n}(%s)", subjectName, br.Emit(c, subjectName, diagPath), path)
			c.names.Exit()
		}
		return fmt.Sprintf("if %s {\nreturn false\n}\n", strings.Join(calls, " && "))
	}

	merged, inner := c.names.Fresh(), c.names.Fresh()
	outer := c.errList
	calls := make([]string, len(r.Branches))
	for i, br := range r.Branches {
		c.names.Enter()
		c.errList = inner
		body := br.Emit(c, subjectName, diagPath)
		c.errList = outer
		calls[i] = fmt.Sprintf("!func(%s any) bool {\nvar %s %s.Diagnostics\n%s%s = append(%s, %s...)\nreturn len(%s) == 0\n}(%s)",
			subjectName, inner, runtimeAlias, body, merged, merged, inner, inner, path)
		c.names.Exit()
	}
	c.runtimeUsed = true
	return fmt.Sprintf("{\nvar %s %s.Diagnostics\nif %s {\n%s = append(%s, %s...)\n}\n}\n",
		merged, runtimeAlias, strings.Join(calls, " && "), outer, outer, merged)
}
