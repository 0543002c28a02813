package link

// Package link decides how values referenced by generated code are embedded:
// inline as literals, through a statically imported alias, or through a key
// into a value table supplied at call time.

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/reoring/guardgen/internal/names"
)

// Kind is the binding strategy of a non-literal value.
type Kind int

const (
	StaticImport Kind = iota // Declared importable from a module; referenced via an alias.
	Dynamic                  // Looked up from the value table by key.
)

// Link is the bookkeeping record for one embedded value.
type Link struct {
	Kind       Kind
	Key        string // Alias (StaticImport) or table key (Dynamic); empty until first use.
	ImportName string
	ImportPath string
	Value      any
}

// Literal renders values that need no bookkeeping. ok=false sends the value
// through the table.
type Literal func(v any) (expr string, ok bool)

// Table is the per-artifact symbol table.
type Table struct {
	names   *names.Allocator
	literal Literal
	byKey   map[any]*Link
	order   []*Link
	// TableName is the identifier of the value table in generated code.
	TableName string
}

// New returns a table allocating aliases and keys from alloc.
func New(alloc *names.Allocator, literal Literal) *Table {
	return &Table{names: alloc, literal: literal, byKey: map[any]*Link{}, TableName: "links"}
}

// Linkable reports whether v can be stored in a table. Funcs, maps and slices
// are keyed by pointer; other values must be comparable.
func Linkable(v any) bool {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Invalid, reflect.Func, reflect.Map, reflect.Slice:
		return true
	}
	return rv.Type().Comparable()
}

// identity returns a comparable map key for v. Funcs compare by code pointer.
func identity(v any) any {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Func:
		return funcID{typ: rv.Type(), ptr: rv.Pointer()}
	case reflect.Map, reflect.Slice:
		return refID{typ: rv.Type(), ptr: rv.Pointer()}
	}
	if rv.IsValid() && !rv.Type().Comparable() {
		panic(fmt.Sprintf("link: cannot embed value of type %s", rv.Type()))
	}
	return v
}

type funcID struct {
	typ reflect.Type
	ptr uintptr
}

type refID struct {
	typ reflect.Type
	ptr uintptr
}

// AddStaticImport declares v as importable as importName from importPath.
func (t *Table) AddStaticImport(v any, importName, importPath string) {
	id := identity(v)
	if l, ok := t.byKey[id]; ok {
		l.Kind, l.ImportName, l.ImportPath, l.Key = StaticImport, importName, importPath, ""
		return
	}
	l := &Link{Kind: StaticImport, ImportName: importName, ImportPath: importPath, Value: v}
	t.byKey[id] = l
	t.order = append(t.order, l)
}

// Embed returns the expression generated code uses to reference v.
func (t *Table) Embed(v any) string {
	expr, _ := t.EmbedKind(v)
	return expr
}

// EmbedKind is Embed that also reports whether the value went through the
// value table (and therefore has static type any in generated code).
func (t *Table) EmbedKind(v any) (string, bool) {
	if t.literal != nil {
		if expr, ok := t.literal(v); ok {
			return expr, false
		}
	}
	id := identity(v)
	l, ok := t.byKey[id]
	if !ok {
		l = &Link{Kind: Dynamic, Value: v}
		t.byKey[id] = l
		t.order = append(t.order, l)
	}
	if l.Key == "" {
		if l.Kind == Dynamic {
			l.Key = t.names.FreshKey()
		} else {
			l.Key = t.names.FreshGlobal()
		}
	}
	if l.Kind == Dynamic {
		return fmt.Sprintf("%s[%q]", t.TableName, l.Key), true
	}
	return l.Key, false
}

// Reset forgets dynamic links and clears static aliases so a new pass
// allocates them again in order of use.
func (t *Table) Reset() {
	kept := t.order[:0]
	for _, l := range t.order {
		if l.Kind == Dynamic {
			delete(t.byKey, identity(l.Value))
			continue
		}
		l.Key = ""
		kept = append(kept, l)
	}
	t.order = kept
}

// Used returns the links referenced since the last Reset, in registration
// order.
func (t *Table) Used(kind Kind) []*Link {
	var out []*Link
	for _, l := range t.order {
		if l.Kind == kind && l.Key != "" {
			out = append(out, l)
		}
	}
	return out
}

// ImportGroup lists the aliases bound from one module.
type ImportGroup struct {
	Path    string
	Symbols []Symbol
}

// Symbol is one `ImportName as Alias` pair.
type Symbol struct {
	Name  string
	Alias string
}

// Imports groups the used static imports by module, sorted by path. Symbols
// keep first-use order.
func (t *Table) Imports() []ImportGroup {
	idx := map[string]int{}
	var groups []ImportGroup
	used := t.Used(StaticImport)
	sort.SliceStable(used, func(i, j int) bool { return aliasLess(used[i].Key, used[j].Key) })
	for _, l := range used {
		i, ok := idx[l.ImportPath]
		if !ok {
			i = len(groups)
			idx[l.ImportPath] = i
			groups = append(groups, ImportGroup{Path: l.ImportPath})
		}
		groups[i].Symbols = append(groups[i].Symbols, Symbol{Name: l.ImportName, Alias: l.Key})
	}
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Path < groups[j].Path })
	return groups
}

// aliasLess orders aliases by allocation order: shorter first, then by the
// least significant digit outward.
func aliasLess(a, b string) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	for i := len(a) - 1; i >= 0; i-- {
		if a[i] != b[i] {
			return digitRank(a[i]) < digitRank(b[i])
		}
	}
	return false
}

func digitRank(c byte) int {
	if i := strings.IndexByte(names.Digits, c); i >= 0 {
		return i
	}
	return -1
}

// Values returns the value table for the dynamic links in use.
func (t *Table) Values() map[string]any {
	out := map[string]any{}
	for _, l := range t.Used(Dynamic) {
		out[l.Key] = l.Value
	}
	return out
}

// Summary renders the dynamic keys as a Go map literal with one labelled line
// per key, for tooling that must supply the table.
func (t *Table) Summary(label func(any) string) string {
	b := &strings.Builder{}
	fmt.Fprintf(b, "%s := map[string]any{\n", t.TableName)
	for _, l := range t.Used(Dynamic) {
		fmt.Fprintf(b, "\t%q: nil, // %s\n", l.Key, label(l.Value))
	}
	b.WriteString("}")
	return b.String()
}
