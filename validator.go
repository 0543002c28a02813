package guardgen

import (
	"github.com/reoring/guardgen/shape"
)

// Validator is the closure flavor: a node compiled into a tree of Go closures.
//
// A Validator must be compiled before use. After Compile returns, Validate and
// Check are safe for concurrent use; Compile itself must not run concurrently
// with them.
type Validator struct {
	node *Node
	opts options

	fn       check
	values   map[string]any
	summary  string
	compiled bool
	diag     bool
}

// NewValidator returns an uncompiled validator for n.
func NewValidator(n *Node, opts ...Option) *Validator {
	return &Validator{node: n, opts: defaultOptions().with(opts)}
}

// Node returns the rule tree the validator was built from.
func (v *Validator) Node() *Node { return v.node }

// Compile assembles the closure tree. Compiling again rebuilds it from the
// current node and options.
func (v *Validator) Compile(opts ...Option) error {
	o := v.opts.with(opts)
	if err := checkTree(v.node); err != nil {
		return err
	}
	c := newContext()
	c.diagnostics = o.diagnostics
	fn := c.assembleNode(v.node)

	v.opts = o
	v.fn = fn
	v.values = c.links.Values()
	v.summary = c.links.Summary(label)
	v.diag = o.diagnostics
	v.compiled = true
	o.logger.Debug("validator compiled",
		"type", v.node.StaticType(c),
		"diagnostics", o.diagnostics,
		"links", len(v.values))
	return nil
}

func (v *Validator) mustCompiled() {
	if !v.compiled {
		panic("guardgen: Validate called before Compile")
	}
}

// Validate reports whether x matches. It panics when the validator has not
// been compiled.
func (v *Validator) Validate(x any) bool {
	v.mustCompiled()
	st := &evalState{diagnostics: v.diag}
	ok := v.fn(st, x, "")
	if v.diag {
		return len(st.out) == 0
	}
	return ok
}

// Check is Validate that also returns the diagnostics of the call. In
// fail-fast mode the diagnostics are always empty.
func (v *Validator) Check(x any) (bool, shape.Diagnostics) {
	v.mustCompiled()
	st := &evalState{diagnostics: v.diag}
	ok := v.fn(st, x, "")
	if v.diag {
		return len(st.out) == 0, st.out
	}
	return ok, nil
}

// StaticType returns the static type of the validated values.
func (v *Validator) StaticType() string { return TypeOf(v.node) }

// Values returns the values the compiled validator refers to by table key.
func (v *Validator) Values() map[string]any {
	v.mustCompiled()
	out := make(map[string]any, len(v.values))
	for k, x := range v.values {
		out[k] = x
	}
	return out
}

// LinksSummary describes the value table of the last compilation.
func (v *Validator) LinksSummary() string {
	v.mustCompiled()
	return v.summary
}

// Source renders the validator in the module flavor as a single function named
// Validate.
func (v *Validator) Source(opts ...Option) ([]byte, error) {
	m := NewModule()
	m.opts = v.opts.with(opts)
	m.Add(v.node, "Validate")
	return m.Compile()
}
