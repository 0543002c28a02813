package shape

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"sort"
	"strconv"
)

// Keys returns the own property names of v in a stable order. Maps yield
// every key sorted, integer keys in decimal and other keys as fmt prints
// them; slices and arrays yield their indices; structs (and pointers to them)
// yield their exported field names. Primitives and other values have no
// properties.
func Keys(v any) []string {
	switch m := v.(type) {
	case map[string]any:
		return sortedKeys(m)
	case Bare:
		return sortedKeys(m)
	case []any:
		return indexKeys(len(m))
	}
	if IsPrimitive(v) {
		return nil
	}
	rv := container(v)
	switch rv.Kind() {
	case reflect.Map:
		keys := make([]string, 0, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			keys = append(keys, keyString(iter.Key()))
		}
		sort.Strings(keys)
		return keys
	case reflect.Slice, reflect.Array:
		return indexKeys(rv.Len())
	case reflect.Struct:
		var keys []string
		t := rv.Type()
		for i := 0; i < t.NumField(); i++ {
			if f := t.Field(i); ownField(f) {
				keys = append(keys, f.Name)
			}
		}
		sort.Strings(keys)
		return keys
	}
	return nil
}

// ownField reports whether f is a property: exported, declared directly on
// the struct and not embedded.
func ownField(f reflect.StructField) bool {
	return f.IsExported() && !f.Anonymous && len(f.Index) == 1
}

// container unwraps a non-nil pointer to a struct.
func container(v any) reflect.Value {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer && !rv.IsNil() && rv.Elem().Kind() == reflect.Struct {
		return rv.Elem()
	}
	return rv
}

// keyString renders a map key as a property name.
func keyString(k reflect.Value) string {
	switch k.Kind() {
	case reflect.String:
		return k.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(k.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(k.Uint(), 10)
	}
	return fmt.Sprint(k.Interface())
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func indexKeys(n int) []string {
	keys := make([]string, n)
	for i := range keys {
		keys[i] = strconv.Itoa(i)
	}
	return keys
}

// Has reports whether v owns a property named key.
func Has(v any, key string) bool {
	_, ok := lookup(v, key)
	return ok
}

// Get returns the property key of v, or Undefined when it is missing.
func Get(v any, key string) any {
	if x, ok := lookup(v, key); ok {
		return x
	}
	return Undefined
}

func lookup(v any, key string) (any, bool) {
	switch m := v.(type) {
	case map[string]any:
		x, ok := m[key]
		return x, ok
	case Bare:
		x, ok := m[key]
		return x, ok
	case []any:
		i, ok := sliceIndex(key, len(m))
		if !ok {
			return nil, false
		}
		return m[i], true
	}
	if IsPrimitive(v) {
		return nil, false
	}
	rv := container(v)
	switch rv.Kind() {
	case reflect.Map:
		return mapLookup(rv, key)
	case reflect.Slice, reflect.Array:
		i, ok := sliceIndex(key, rv.Len())
		if !ok {
			return nil, false
		}
		return rv.Index(i).Interface(), true
	case reflect.Struct:
		f, ok := rv.Type().FieldByName(key)
		if !ok || !ownField(f) {
			return nil, false
		}
		return rv.Field(f.Index[0]).Interface(), true
	}
	return nil, false
}

// mapLookup finds the entry whose key renders as key.
func mapLookup(rv reflect.Value, key string) (any, bool) {
	kt := rv.Type().Key()
	var k reflect.Value
	switch kt.Kind() {
	case reflect.String:
		k = reflect.ValueOf(key).Convert(kt)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := strconv.ParseInt(key, 10, kt.Bits())
		if err != nil || strconv.FormatInt(i, 10) != key {
			return nil, false
		}
		k = reflect.New(kt).Elem()
		k.SetInt(i)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u, err := strconv.ParseUint(key, 10, kt.Bits())
		if err != nil || strconv.FormatUint(u, 10) != key {
			return nil, false
		}
		k = reflect.New(kt).Elem()
		k.SetUint(u)
	default:
		iter := rv.MapRange()
		for iter.Next() {
			if keyString(iter.Key()) == key {
				return iter.Value().Interface(), true
			}
		}
		return nil, false
	}
	x := rv.MapIndex(k)
	if !x.IsValid() {
		return nil, false
	}
	return x.Interface(), true
}

// sliceIndex accepts only canonical decimal indices ("01" is a property name,
// not an index).
func sliceIndex(key string, n int) (int, bool) {
	i, err := strconv.Atoi(key)
	if err != nil || i < 0 || i >= n || strconv.Itoa(i) != key {
		return 0, false
	}
	return i, true
}

// HasIndex reports whether v owns the property named by index i.
func HasIndex(v any, i int) bool {
	switch s := v.(type) {
	case []any:
		return i >= 0 && i < len(s)
	}
	return Has(v, strconv.Itoa(i))
}

// At returns the element at index i, or Undefined.
func At(v any, i int) any {
	if s, ok := v.([]any); ok {
		if i >= 0 && i < len(s) {
			return s[i]
		}
		return Undefined
	}
	return Get(v, strconv.Itoa(i))
}

// Len returns the number of own properties of v.
func Len(v any) int {
	switch m := v.(type) {
	case map[string]any:
		return len(m)
	case Bare:
		return len(m)
	case []any:
		return len(m)
	}
	return len(Keys(v))
}

// Same reports whether a and b are the same value. Numbers compare by numeric
// value regardless of their Go representation.
func Same(a, b any) bool {
	if Classify(a) == Number && Classify(b) == Number {
		fa, oka := toFloat(a)
		fb, okb := toFloat(b)
		return oka && okb && fa == fb
	}
	if x, ok := a.(*big.Int); ok {
		y, ok := b.(*big.Int)
		return ok && x != nil && y != nil && x.Cmp(y) == 0
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if ta != nil && !ta.Comparable() {
		return false
	}
	return a == b
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

// IsInteger reports whether v is a finite number with no fractional part.
func IsInteger(v any) bool {
	if Classify(v) != Number {
		return false
	}
	if n, ok := v.(json.Number); ok {
		if _, err := n.Int64(); err == nil {
			return true
		}
	}
	f, ok := toFloat(v)
	return ok && !math.IsInf(f, 0) && f == math.Trunc(f)
}

// StringOf returns the text of a string-kinded value and "" otherwise.
func StringOf(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	rv := reflect.ValueOf(v)
	if rv.IsValid() && rv.Kind() == reflect.String {
		return rv.String()
	}
	return ""
}

// PropPath appends a property step to a diagnostic path.
func PropPath(base, key string) string { return base + "." + key }

// IndexPath appends an index step to a diagnostic path.
func IndexPath(base string, i int) string { return base + "[" + strconv.Itoa(i) + "]" }
