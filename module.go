package guardgen

import (
	"errors"
	"fmt"
	"go/token"
	"strconv"

	"github.com/reoring/guardgen/internal/gen"
	"github.com/reoring/guardgen/internal/link"
)

// DefaultFuncName names entries added without a name.
const DefaultFuncName = "ValidateType"

// ErrInvalidName is returned when an entry name is not a Go identifier.
var ErrInvalidName = errors.New("guardgen: invalid function name")

// Module is the module flavor: it accumulates named entries and compiles them
// into one Go source file. Each entry becomes
//
//	func Name(obj any, links map[string]any) bool
//
// or, in diagnostic mode,
//
//	func Name(obj any, links map[string]any) (bool, shape.Diagnostics)
//
// Values that can neither be written as literals nor reached through a static
// import are looked up in links by the keys LinksSummary lists.
type Module struct {
	ctx      *Context
	opts     options
	entries  []entry
	reserved []string

	code  []byte
	names []string
}

type entry struct {
	node *Node
	name string
}

// NewModule returns an empty module.
func NewModule(opts ...Option) *Module {
	m := &Module{ctx: newContext(), opts: defaultOptions().with(opts)}
	m.ctx.addRuntimeImports()
	return m
}

// Add appends an entry and returns a closure flavor validator of the same
// node. An empty name means DefaultFuncName; clashing names get a numeric
// suffix at compile time.
func (m *Module) Add(n *Node, name string) *Validator {
	m.entries = append(m.entries, entry{node: n, name: name})
	return NewValidator(n, func(o *options) { *o = m.opts })
}

// AddStaticImport declares that v can be imported as importName from
// importPath instead of being passed through the value table.
func (m *Module) AddStaticImport(v any, importName, importPath string) {
	m.ctx.links.AddStaticImport(v, importName, importPath)
}

// Reserve keeps names away from every identifier the module allocates.
func (m *Module) Reserve(names ...string) {
	m.reserved = append(m.reserved, names...)
}

// Compile renders every entry into one gofmt'd Go file. Compiling the same
// entries twice yields identical bytes.
func (m *Module) Compile(opts ...Option) ([]byte, error) {
	o := m.opts.with(opts)
	for _, e := range m.entries {
		if err := checkTree(e.node); err != nil {
			return nil, fmt.Errorf("entry %q: %w", e.name, err)
		}
	}

	c := m.ctx
	c.Reset()
	c.diagnostics = o.diagnostics
	c.names.ResetReserved()
	c.names.Reserve(runtimeAlias, subjectName, tableName, errListName)
	c.names.Reserve(m.reserved...)

	fnNames, err := m.assignNames(c)
	if err != nil {
		return nil, err
	}
	c.names.Reserve(fnNames...)

	funcs := make([]gen.Func, len(m.entries))
	for i, e := range m.entries {
		funcs[i] = m.compileEntry(c, e.node, fnNames[i])
	}

	file := gen.File{Package: o.pkg, Header: o.header, Funcs: funcs}
	file.Imports, file.VarGroups = m.imports(c)
	code, err := gen.RenderFile(file)
	if err != nil {
		return nil, err
	}
	m.code, m.names = code, fnNames
	o.logger.Debug("module compiled",
		"entries", len(m.entries),
		"diagnostics", o.diagnostics,
		"imports", len(file.Imports),
		"links", len(c.links.Used(link.Dynamic)))
	return code, nil
}

func (m *Module) assignNames(c *Context) ([]string, error) {
	taken := map[string]bool{}
	out := make([]string, len(m.entries))
	for i, e := range m.entries {
		base := e.name
		if base == "" {
			base = DefaultFuncName
		}
		if !token.IsIdentifier(base) && !token.IsKeyword(base) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidName, base)
		}
		name := base
		for n := 0; taken[name] || c.names.Reserved(name); n++ {
			name = base + "_" + strconv.Itoa(n)
		}
		taken[name] = true
		out[i] = name
	}
	return out, nil
}

func (m *Module) compileEntry(c *Context, n *Node, name string) gen.Func {
	c.names.Enter()
	defer c.names.Exit()

	typ := n.StaticType(c)
	doc := []string{name + " reports whether obj has the static type", "", "\t" + typ}
	body := n.Emit(c, subjectName, `""`)
	if c.diagnostics {
		c.runtimeUsed = true
		return gen.Func{
			Doc:       doc,
			Signature: fmt.Sprintf("%s(%s any, %s map[string]any) (bool, %s.Diagnostics)", name, subjectName, tableName, runtimeAlias),
			Body: fmt.Sprintf("var %s %s.Diagnostics\n%sreturn len(%s) == 0, %s\n",
				errListName, runtimeAlias, body, errListName, errListName),
		}
	}
	return gen.Func{
		Doc:       doc,
		Signature: fmt.Sprintf("%s(%s any, %s map[string]any) bool", name, subjectName, tableName),
		Body:      body + "return true\n",
	}
}

// imports builds the import block and one var group per imported package.
func (m *Module) imports(c *Context) ([]gen.Import, [][]gen.Var) {
	var (
		imps   []gen.Import
		groups [][]gen.Var
	)
	runtimeImported := false
	for _, g := range c.links.Imports() {
		alias := runtimeAlias
		if g.Path == RuntimePath {
			runtimeImported = true
		} else {
			alias = c.names.FreshGlobal()
		}
		imps = append(imps, gen.Import{Name: alias, Path: g.Path})
		vars := make([]gen.Var, len(g.Symbols))
		for i, s := range g.Symbols {
			vars[i] = gen.Var{Name: s.Alias, Expr: alias + "." + s.Name}
		}
		groups = append(groups, vars)
	}
	if c.runtimeUsed && !runtimeImported {
		imps = append(imps, gen.Import{Name: runtimeAlias, Path: RuntimePath})
	}
	return imps, groups
}

// Code returns the source of the last successful Compile.
func (m *Module) Code() []byte { return m.code }

// Names returns the function names of the last successful Compile, in entry
// order.
func (m *Module) Names() []string { return append([]string(nil), m.names...) }

// Values returns the value table the compiled functions expect as links.
func (m *Module) Values() map[string]any { return m.ctx.links.Values() }

// LinksSummary describes the value table of the last compilation.
func (m *Module) LinksSummary() string { return m.ctx.links.Summary(label) }
