package loader

// Package loader reads schema documents written in YAML (or JSON) and turns
// them into named guardgen rule trees.
//
// A document holds a `types` mapping from entry name to type spec:
//
//	types:
//	  Config:
//	    type: object
//	    properties:
//	      name: {type: nonEmptyString}
//	      port: {type: integer}
//	      tags: {type: array, items: {type: string}, optional: true}
//	  Mode:
//	    values: [dev, prod, null]
//	  Either:
//	    union: [{ref: Config}, {ref: Mode}]
//
// Spec keys: type, properties, additional, items, values, union, class,
// exactClass, ref, example, optional. Entry order follows the document.

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/reoring/guardgen"
	"github.com/reoring/guardgen/dsl"
	"github.com/reoring/guardgen/shape"
)

var (
	// ErrUnknownType is returned for an unrecognised `type` value.
	ErrUnknownType = errors.New("loader: unknown type")
	// ErrUnknownRef is returned when a `ref` names no entry.
	ErrUnknownRef = errors.New("loader: unknown ref")
	// ErrCyclicRef is returned when refs form a cycle.
	ErrCyclicRef = errors.New("loader: cyclic ref")
	// ErrUnknownTag is returned when `class` names no known tag.
	ErrUnknownTag = errors.New("loader: unknown tag")
	// ErrInvalidSpec is returned for malformed specs.
	ErrInvalidSpec = errors.New("loader: invalid spec")
)

// Entry is one named type of a document.
type Entry struct {
	Name string
	Node *guardgen.Node
}

// Document is a loaded schema document.
type Document struct {
	Entries []Entry
}

// Lookup returns the node of the named entry.
func (d *Document) Lookup(name string) (*guardgen.Node, bool) {
	for _, e := range d.Entries {
		if e.Name == name {
			return e.Node, true
		}
	}
	return nil, false
}

// Options controls how specs resolve.
type Options struct {
	// Tags resolves `class` and `exactClass` names beyond the built-in ones.
	Tags map[string]*shape.TypeTag
}

var builtinTags = map[string]*shape.TypeTag{
	"Undefined": shape.Absent,
	"Null":      shape.NullValue,
	"NoClass":   shape.NoClass,
	"ChainEnd":  shape.ChainEnd,
	"Object":    shape.Object,
	"Boolean":   shape.Boolean,
	"Number":    shape.Number,
	"BigInt":    shape.BigInt,
	"String":    shape.String,
	"Array":     shape.Array,
	"Function":  shape.Function,
}

// LoadFile reads and loads the document at path.
func LoadFile(path string, opts Options) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loader: %w", err)
	}
	return Load(data, opts)
}

// Load parses one schema document.
func Load(data []byte, opts Options) (*Document, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	var root yaml.Node
	if err := dec.Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return &Document{}, nil
		}
		return nil, fmt.Errorf("loader: %w", err)
	}
	body := &root
	if body.Kind == yaml.DocumentNode && len(body.Content) > 0 {
		body = body.Content[0]
	}
	if body.Kind != yaml.MappingNode {
		return nil, specErr(body, "document must be a mapping")
	}
	top, err := mappingPairs(body)
	if err != nil {
		return nil, fmt.Errorf("loader: %w", err)
	}
	var types *yaml.Node
	for _, p := range top {
		if p[0].Value == "types" {
			types = p[1]
		}
	}
	if types == nil {
		return &Document{}, nil
	}
	if types.Kind != yaml.MappingNode {
		return nil, specErr(types, "types must be a mapping")
	}
	pairs, err := mappingPairs(types)
	if err != nil {
		return nil, fmt.Errorf("loader: %w", err)
	}

	r := &resolver{
		opts:     opts,
		specs:    map[string]*yaml.Node{},
		resolved: map[string]*guardgen.Node{},
		visiting: map[string]bool{},
	}
	for _, p := range pairs {
		r.specs[p[0].Value] = p[1]
	}
	doc := &Document{Entries: make([]Entry, 0, len(pairs))}
	for _, p := range pairs {
		n, err := r.named(p[0].Value, p[0])
		if err != nil {
			return nil, err
		}
		doc.Entries = append(doc.Entries, Entry{Name: p[0].Value, Node: n})
	}
	return doc, nil
}

type resolver struct {
	opts     Options
	specs    map[string]*yaml.Node
	resolved map[string]*guardgen.Node
	visiting map[string]bool
}

func specErr(n *yaml.Node, format string, args ...any) error {
	return fmt.Errorf("%w at line %d: %s", ErrInvalidSpec, n.Line, fmt.Sprintf(format, args...))
}

// named resolves an entry once; later refs share the node.
func (r *resolver) named(name string, at *yaml.Node) (*guardgen.Node, error) {
	if n, ok := r.resolved[name]; ok {
		return n, nil
	}
	spec, ok := r.specs[name]
	if !ok {
		return nil, fmt.Errorf("%w %q at line %d", ErrUnknownRef, name, at.Line)
	}
	if r.visiting[name] {
		return nil, fmt.Errorf("%w through %q at line %d", ErrCyclicRef, name, at.Line)
	}
	r.visiting[name] = true
	n, err := r.spec(spec)
	delete(r.visiting, name)
	if err != nil {
		return nil, err
	}
	r.resolved[name] = n
	return n, nil
}

func (r *resolver) tag(n *yaml.Node) (*shape.TypeTag, error) {
	if t, ok := r.opts.Tags[n.Value]; ok {
		return t, nil
	}
	if t, ok := builtinTags[n.Value]; ok {
		return t, nil
	}
	return nil, fmt.Errorf("%w %q at line %d", ErrUnknownTag, n.Value, n.Line)
}

// spec builds the node of one type spec. Shorthand scalars name a type.
func (r *resolver) spec(n *yaml.Node) (*guardgen.Node, error) {
	if n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	if n.Kind == yaml.ScalarNode {
		return typeNode(n)
	}
	if n.Kind != yaml.MappingNode {
		return nil, specErr(n, "type spec must be a mapping or a type name")
	}
	pairs, err := mappingPairs(n)
	if err != nil {
		return nil, fmt.Errorf("loader: %w", err)
	}
	fields := map[string]*yaml.Node{}
	for _, p := range pairs {
		switch p[0].Value {
		case "type", "properties", "additional", "items", "values", "union",
			"class", "exactClass", "ref", "example", "optional":
			fields[p[0].Value] = p[1]
		default:
			return nil, specErr(p[0], "unknown key %q", p[0].Value)
		}
	}

	node, err := r.body(n, fields)
	if err != nil {
		return nil, err
	}
	if opt, ok := fields["optional"]; ok {
		var b bool
		if err := opt.Decode(&b); err != nil {
			return nil, specErr(opt, "optional must be a boolean")
		}
		if b {
			node = dsl.Optional(node)
		}
	}
	return node, nil
}

func (r *resolver) body(at *yaml.Node, f map[string]*yaml.Node) (*guardgen.Node, error) {
	if ref, ok := f["ref"]; ok {
		if len(f) > 2 || len(f) == 2 && f["optional"] == nil {
			return nil, specErr(ref, "ref cannot be combined with other keys")
		}
		return r.named(ref.Value, ref)
	}
	if ex, ok := f["example"]; ok {
		if len(f) > 2 || len(f) == 2 && f["optional"] == nil {
			return nil, specErr(ex, "example cannot be combined with other keys")
		}
		v, err := exampleValue(ex)
		if err != nil {
			return nil, fmt.Errorf("loader: %w", err)
		}
		return dsl.From(v), nil
	}

	var rules []guardgen.Rule
	if t, ok := f["type"]; ok {
		tn, err := typeNode(t)
		if err != nil {
			return nil, err
		}
		rules = append(rules, tn.Rules...)
	}
	for _, key := range []string{"class", "exactClass"} {
		c, ok := f[key]
		if !ok {
			continue
		}
		tag, err := r.tag(c)
		if err != nil {
			return nil, err
		}
		if key == "class" {
			rules = append(rules, guardgen.TypeInAncestry{Tag: tag})
		} else {
			rules = append(rules, guardgen.ExactType{Tag: tag})
		}
	}
	if v, ok := f["values"]; ok {
		if v.Kind != yaml.SequenceNode {
			return nil, specErr(v, "values must be a sequence")
		}
		vals := make([]any, len(v.Content))
		for i, c := range v.Content {
			if c.Kind != yaml.ScalarNode {
				return nil, specErr(c, "values must be scalars")
			}
			vals[i] = scalarValue(c)
		}
		rules = append(rules, dsl.Values(vals...).Rules...)
	}
	if _, ok := f["properties"]; ok || f["additional"] != nil {
		s, err := r.objectShape(f["properties"], f["additional"])
		if err != nil {
			return nil, err
		}
		rules = append(rules, s)
	}
	if items, ok := f["items"]; ok {
		elem, err := r.defaults(items)
		if err != nil {
			return nil, err
		}
		rules = replaceArrayShape(rules, guardgen.ArrayShape{Elem: elem})
	}
	if u, ok := f["union"]; ok {
		if u.Kind != yaml.SequenceNode {
			return nil, specErr(u, "union must be a sequence")
		}
		branches := make([]*guardgen.Node, len(u.Content))
		for i, c := range u.Content {
			b, err := r.spec(c)
			if err != nil {
				return nil, err
			}
			branches[i] = b
		}
		rules = append(rules, guardgen.Union{Branches: branches})
	}
	if len(f) == 0 {
		return nil, specErr(at, "empty type spec")
	}
	return guardgen.NewNode(rules...), nil
}

// replaceArrayShape swaps the element-agnostic shape added by `type: array`
// for s, or appends s.
func replaceArrayShape(rules []guardgen.Rule, s guardgen.ArrayShape) []guardgen.Rule {
	for i, r := range rules {
		if _, ok := r.(guardgen.ArrayShape); ok {
			rules[i] = s
			return rules
		}
	}
	return append(rules, s)
}

func (r *resolver) objectShape(props, additional *yaml.Node) (guardgen.ObjectShape, error) {
	var s guardgen.ObjectShape
	if props != nil {
		if props.Kind != yaml.MappingNode {
			return s, specErr(props, "properties must be a mapping")
		}
		pairs, err := mappingPairs(props)
		if err != nil {
			return s, fmt.Errorf("loader: %w", err)
		}
		for _, p := range pairs {
			n, err := r.spec(p[1])
			if err != nil {
				return s, err
			}
			s.Props = append(s.Props, guardgen.Prop{Name: p[0].Value, Node: n})
		}
	}
	if additional != nil {
		d, err := r.defaults(additional)
		if err != nil {
			return s, err
		}
		s.Default = d
	}
	return s, nil
}

// defaults reads one spec or a sequence of specs; several become a union.
func (r *resolver) defaults(n *yaml.Node) (*guardgen.Node, error) {
	if n.Kind != yaml.SequenceNode {
		return r.spec(n)
	}
	nodes := make([]any, len(n.Content))
	for i, c := range n.Content {
		s, err := r.spec(c)
		if err != nil {
			return nil, err
		}
		nodes[i] = s
	}
	if len(nodes) == 1 {
		return nodes[0].(*guardgen.Node), nil
	}
	return dsl.Union(nodes...), nil
}

// typeNode maps a type name to its predefined node.
func typeNode(n *yaml.Node) (*guardgen.Node, error) {
	switch n.Value {
	case "any":
		return dsl.Any(), nil
	case "boolean":
		return dsl.Boolean(), nil
	case "number":
		return dsl.Number(), nil
	case "integer":
		return dsl.Integer(), nil
	case "bigint":
		return dsl.BigInt(), nil
	case "string":
		return dsl.String(), nil
	case "nonEmptyString":
		return dsl.NonEmptyString(), nil
	case "null":
		return dsl.Null(), nil
	case "undefined":
		return dsl.Undefined(), nil
	case "function":
		return dsl.Function(), nil
	case "object":
		return dsl.ExactClass(shape.Object), nil
	case "array":
		return dsl.ArrayOf(), nil
	}
	return nil, fmt.Errorf("%w %q at line %d", ErrUnknownType, n.Value, n.Line)
}
