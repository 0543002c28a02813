package guardgen

import (
	"errors"
	"fmt"

	"github.com/reoring/guardgen/internal/link"
)

// Node is one slot of a shape: the whole value, an object property, an array
// element or a union branch. A value matches when it satisfies every rule; a
// node without rules accepts anything.
type Node struct {
	Rules []Rule
	// Optional marks the node as an optional object property.
	Optional bool
}

// NewNode returns a node holding rules.
func NewNode(rules ...Rule) *Node { return &Node{Rules: rules} }

// Any is the node that accepts every value.
func Any() *Node { return &Node{} }

// Rule is one atomic acceptance criterion. The set of rules is closed.
type Rule interface {
	// Kind returns the shape.Rule* constant naming the rule.
	Kind() string
	// StaticType describes the accepted values in the static type grammar.
	StaticType(c *Context) string
	// Emit renders the Go statements checking the value held in the variable
	// path; diagPath is a Go string expression locating it for diagnostics.
	Emit(c *Context, path, diagPath string) string

	assemble(c *Context) check
	children() []*Node
	precedence() int
}

// Rule precedence for static type selection; lower wins.
const (
	precedenceShape = iota
	precedenceIdentity
)

// StaticType describes the node. When several rules apply, the first shape
// rule wins over identity rules since only it captures the external shape.
func (n *Node) StaticType(c *Context) string {
	if n == nil || len(n.Rules) == 0 {
		return "any"
	}
	if len(n.Rules) == 1 {
		return n.Rules[0].StaticType(c)
	}
	main := n.Rules[0]
	for _, r := range n.Rules {
		if r.precedence() < main.precedence() {
			main = r
		}
	}
	return main.StaticType(c)
}

// Emit renders every rule of the node in order.
func (n *Node) Emit(c *Context, path, diagPath string) string {
	if n == nil {
		return ""
	}
	var code string
	for _, r := range n.Rules {
		code += r.Emit(c, path, diagPath)
	}
	return code
}

func (n *Node) empty() bool { return n == nil || len(n.Rules) == 0 }

// TypeOf returns the static type of n.
func TypeOf(n *Node) string { return n.StaticType(newContext()) }

// ErrCyclicSchema is returned when a node is reachable from itself.
var ErrCyclicSchema = errors.New("guardgen: cyclic schema")

// ErrDuplicateProperty is returned when an object shape declares a property
// twice.
var ErrDuplicateProperty = errors.New("guardgen: duplicate property")

// ErrUnlinkableValue is returned when a value rule names a value that is
// neither comparable nor a func, map or slice.
var ErrUnlinkableValue = errors.New("guardgen: value cannot be linked")

// checkTree rejects trees in which a node occurs on its own ancestor path or an
// object shape repeats a property or a value rule holds an unlinkable value.
// Shared subtrees are fine.
func checkTree(root *Node) error {
	onPath := map[*Node]bool{}
	done := map[*Node]bool{}
	var walk func(n *Node, depth int) error
	walk = func(n *Node, depth int) error {
		if n == nil || done[n] {
			return nil
		}
		if onPath[n] {
			return fmt.Errorf("%w: node revisited at depth %d", ErrCyclicSchema, depth)
		}
		onPath[n] = true
		for _, r := range n.Rules {
			if vm, ok := r.(ValueMembership); ok {
				for _, o := range vm.Options {
					if o.HasValue && !link.Linkable(o.Value) {
						return fmt.Errorf("%w: %T", ErrUnlinkableValue, o.Value)
					}
				}
			}
			if obj, ok := r.(ObjectShape); ok {
				seen := make(map[string]bool, len(obj.Props))
				for _, p := range obj.Props {
					if seen[p.Name] {
						return fmt.Errorf("%w: %q", ErrDuplicateProperty, p.Name)
					}
					seen[p.Name] = true
				}
			}
			for _, child := range r.children() {
				if err := walk(child, depth+1); err != nil {
					return err
				}
			}
		}
		onPath[n] = false
		done[n] = true
		return nil
	}
	return walk(root, 0)
}
