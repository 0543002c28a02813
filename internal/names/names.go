package names

// Package names allocates short, deterministic identifiers for generated
// source. Counters are encoded as bijective numerals: the first digit comes from
// a letters-only alphabet so every name is a valid identifier.

const (
	FirstDigits = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	Digits      = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// Encode renders n (1-based) as a bijective numeral, least significant digit
// first. Digit i uses sets[i], the last set repeating. Encode(0) is "".
func Encode(n int, sets ...string) string {
	if len(sets) == 0 {
		sets = []string{FirstDigits, Digits}
	}
	var b []byte
	for i := 0; n > 0; i++ {
		set := sets[min(i, len(sets)-1)]
		n--
		b = append(b, set[n%len(set)])
		if n < len(set) {
			break
		}
		n /= len(set)
	}
	return string(b)
}

// Keywords are Go's reserved words plus the predeclared identifiers generated
// code must not shadow.
var Keywords = []string{
	"break", "case", "chan", "const", "continue", "default", "defer", "else",
	"fallthrough", "for", "func", "go", "goto", "if", "import", "interface",
	"map", "package", "range", "return", "select", "struct", "switch", "type", "var",

	"any", "append", "bool", "byte", "cap", "clear", "close", "complex", "copy",
	"delete", "error", "false", "float32", "float64", "imag", "int", "int8",
	"int16", "int32", "int64", "iota", "len", "make", "max", "min", "new", "nil",
	"panic", "print", "println", "real", "recover", "rune", "string", "true",
	"uint", "uint8", "uint16", "uint32", "uint64", "uintptr",
}

var keywordSet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(Keywords))
	for _, k := range Keywords {
		m[k] = struct{}{}
	}
	return m
}()

// IsKeyword reports whether name is a reserved word or predeclared identifier.
func IsKeyword(name string) bool {
	_, ok := keywordSet[name]
	return ok
}

// Allocator hands out scoped local names, artifact-wide global names and value
// table keys. It is not safe for concurrent use.
type Allocator struct {
	scopes   []int
	global   int
	key      int
	reserved map[string]struct{}
}

// New returns an allocator with an empty root scope.
func New() *Allocator {
	return &Allocator{scopes: []int{0}, reserved: map[string]struct{}{}}
}

// Reserve keeps the given names away from every allocation.
func (a *Allocator) Reserve(names ...string) {
	for _, n := range names {
		a.reserved[n] = struct{}{}
	}
}

// Reserved reports whether name was reserved or is a keyword.
func (a *Allocator) Reserved(name string) bool {
	if IsKeyword(name) {
		return true
	}
	_, ok := a.reserved[name]
	return ok
}

// Fresh returns a name unique within the active scope and all enclosing ones.
func (a *Allocator) Fresh() string {
	top := len(a.scopes) - 1
	for {
		a.scopes[top]++
		name := Encode(a.scopes[top])
		if !a.Reserved(name) {
			return name
		}
	}
}

// FreshGlobal returns a name unique across the whole artifact. Global names
// start with an underscore and never collide with scoped names.
func (a *Allocator) FreshGlobal() string {
	for {
		a.global++
		name := "_" + Encode(a.global)
		if !a.Reserved(name) {
			return name
		}
	}
}

// FreshKey returns the next value table key.
func (a *Allocator) FreshKey() string {
	for {
		a.key++
		name := Encode(a.key)
		if !a.Reserved(name) {
			return name
		}
	}
}

// Enter opens a nested scope. Names allocated inside continue after the
// enclosing scope's counter, so they never clash with live outer names.
func (a *Allocator) Enter() {
	a.scopes = append(a.scopes, a.scopes[len(a.scopes)-1])
}

// Exit closes the innermost scope; its names become reusable by siblings.
func (a *Allocator) Exit() {
	if len(a.scopes) == 1 {
		panic("names: Exit without matching Enter")
	}
	a.scopes = a.scopes[:len(a.scopes)-1]
}

// Depth returns the number of open nested scopes.
func (a *Allocator) Depth() int { return len(a.scopes) - 1 }

// Reset rewinds every counter. Reserved names are kept.
func (a *Allocator) Reset() {
	a.scopes = a.scopes[:1]
	a.scopes[0] = 0
	a.global = 0
	a.key = 0
}

// ResetReserved drops all caller-reserved names.
func (a *Allocator) ResetReserved() {
	a.reserved = map[string]struct{}{}
}
