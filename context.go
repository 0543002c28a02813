package guardgen

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"runtime"
	"strconv"
	"strings"

	"github.com/reoring/guardgen/internal/link"
	"github.com/reoring/guardgen/internal/names"
	"github.com/reoring/guardgen/shape"
)

// RuntimePath is the import path of the package generated code calls into.
const RuntimePath = "github.com/reoring/guardgen/shape"

// Identifiers with a fixed meaning in generated code.
const (
	runtimeAlias = "shape"
	subjectName  = "obj"
	tableName    = "links"
	errListName  = "errs"
)

// runtimeFuncs are the routines generated code reaches through static
// imports of the runtime package.
var runtimeFuncs = []struct {
	name string
	fn   any
}{
	{"Classify", shape.Classify},
	{"Includes", shape.Includes},
	{"IsPrimitive", shape.IsPrimitive},
	{"Keys", shape.Keys},
	{"Has", shape.Has},
	{"Get", shape.Get},
	{"HasIndex", shape.HasIndex},
	{"At", shape.At},
	{"Len", shape.Len},
	{"Same", shape.Same},
	{"IsInteger", shape.IsInteger},
	{"StringOf", shape.StringOf},
	{"IndexPath", shape.IndexPath},
}

var runtimeFuncByName = func() map[string]any {
	m := make(map[string]any, len(runtimeFuncs))
	for _, f := range runtimeFuncs {
		m[f.name] = f.fn
	}
	return m
}()

// Context is the per-compilation state shared by every rule of one pass: the
// name allocator, the symbol table and the validation mode. A Context must not
// be shared by two concurrent passes; Reset it before reuse.
type Context struct {
	names       *names.Allocator
	links       *link.Table
	diagnostics bool
	errList     string
	runtimeUsed bool
}

func newContext() *Context {
	c := &Context{names: names.New()}
	c.links = link.New(c.names, c.literal)
	c.links.TableName = tableName
	c.errList = errListName
	return c
}

// Diagnostics reports whether the pass emits diagnostic-mode code.
func (c *Context) Diagnostics() bool { return c.diagnostics }

// Reset rewinds the allocator and symbol table to their initial state. Static
// imports and reserved names survive.
func (c *Context) Reset() {
	c.names.Reset()
	c.links.Reset()
	c.errList = errListName
	c.runtimeUsed = false
}

func (c *Context) addRuntimeImports() {
	for _, f := range runtimeFuncs {
		c.links.AddStaticImport(f.fn, f.name, RuntimePath)
	}
}

// literal renders values embedded without bookkeeping.
func (c *Context) literal(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "nil", true
	case bool:
		return strconv.FormatBool(x), true
	case string:
		return strconv.Quote(x), true
	case *shape.TypeTag:
		if isBuiltinTag(x) {
			c.runtimeUsed = true
			return runtimeAlias + "." + builtinTagIdent(x), true
		}
		return "", false
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return "", false
		}
		return numberLiteral(f)
	}
	if v == shape.Undefined {
		c.runtimeUsed = true
		return runtimeAlias + ".Undefined", true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return "uint64(" + strconv.FormatUint(u, 10) + ")", true
		}
		return strconv.FormatUint(u, 10), true
	case reflect.Float32, reflect.Float64:
		return numberLiteral(rv.Float())
	}
	return "", false
}

func numberLiteral(f float64) (string, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", false
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if f == math.Trunc(f) && math.Abs(f) <= math.MaxInt64/2 && !strings.ContainsAny(s, "e") {
		return s, true
	}
	// Keep fractional and exponent forms typed so they never become ints.
	return "float64(" + s + ")", true
}

func isBuiltinTag(t *shape.TypeTag) bool {
	for _, b := range shape.Builtins {
		if b == t {
			return true
		}
	}
	return false
}

func builtinTagIdent(t *shape.TypeTag) string {
	switch t {
	case shape.NullValue:
		return "NullValue"
	default:
		return t.Name()
	}
}

// embed returns the expression referencing v in generated code.
func (c *Context) embed(v any) string { return c.links.Embed(v) }

// call renders a call of a runtime routine.
func (c *Context) call(fn string, args ...string) string {
	f, ok := runtimeFuncByName[fn]
	if !ok {
		panic("guardgen: unknown runtime routine " + fn)
	}
	return c.links.Embed(f) + "(" + strings.Join(args, ", ") + ")"
}

// tag renders a tag reference typed as *shape.TypeTag.
func (c *Context) tag(t *shape.TypeTag) string {
	expr, dynamic := c.links.EmbedKind(t)
	if dynamic {
		c.runtimeUsed = true
		return expr + ".(*" + runtimeAlias + ".TypeTag)"
	}
	return expr
}

// bind registers v in the value table of a closure pass and returns it.
func (c *Context) bind(v any) any {
	c.links.Embed(v)
	return v
}

// fail renders the statement run when a rule rejects the value at diagPath.
func (c *Context) fail(diagPath, rule, message string) string {
	if !c.diagnostics {
		return "return false\n"
	}
	c.runtimeUsed = true
	return fmt.Sprintf("%s = append(%s, %s.Diagnostic{Path: %s, Rule: %s.Rule%s, Message: %s})\n",
		c.errList, c.errList, runtimeAlias, diagPath, runtimeAlias, rule, strconv.Quote(message))
}

// propPath renders the diagnostic path of a named property.
func propPath(base, name string) string {
	if s, err := strconv.Unquote(base); err == nil {
		return strconv.Quote(s + "." + name)
	}
	return base + " + " + strconv.Quote("."+name)
}

// keyPath renders the diagnostic path of a property whose name is held in the
// variable key.
func keyPath(base, key string) string {
	if base == `""` {
		return `"." + ` + key
	}
	return base + ` + "." + ` + key
}

// label describes a table value for the links summary.
func label(v any) string {
	switch x := v.(type) {
	case *shape.TypeTag:
		return "tag " + x.Name()
	case *big.Int:
		return "bigint " + x.String()
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Func {
		if fn := runtime.FuncForPC(rv.Pointer()); fn != nil {
			return "func " + fn.Name()
		}
	}
	return fmt.Sprintf("%T %v", v, v)
}
