package loader

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	eng "github.com/reoring/guardgen/internal/engine"
)

// DuplicateKeyError reports a duplicate key found in a YAML mapping with both
// the first occurrence position and the duplicate occurrence position.
type DuplicateKeyError struct {
	Key       string
	FirstLine int
	FirstCol  int
	Line      int
	Col       int
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate YAML key %q at %d:%d (first at %d:%d)", e.Key, e.Line, e.Col, e.FirstLine, e.FirstCol)
}

// mappingPairs returns the key/value pairs of a mapping node in document
// order. Duplicate keys are an error.
func mappingPairs(n *yaml.Node) ([][2]*yaml.Node, error) {
	pairs := make([][2]*yaml.Node, 0, len(n.Content)/2)
	first := make(map[string][2]int, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		if pos, dup := first[k.Value]; dup {
			return nil, &DuplicateKeyError{Key: k.Value, FirstLine: pos[0], FirstCol: pos[1], Line: k.Line, Col: k.Column}
		}
		first[k.Value] = [2]int{k.Line, k.Column}
		pairs = append(pairs, [2]*yaml.Node{k, v})
	}
	return pairs, nil
}

// exampleValue converts an example subtree into a Go value. Mappings keep
// document order so derived object shapes list properties as written.
func exampleValue(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return exampleValue(n.Content[0])
	case yaml.AliasNode:
		return exampleValue(n.Alias)
	case yaml.MappingNode:
		pairs, err := mappingPairs(n)
		if err != nil {
			return nil, err
		}
		obj := make(eng.Object, 0, len(pairs))
		for _, p := range pairs {
			v, err := exampleValue(p[1])
			if err != nil {
				return nil, err
			}
			obj = append(obj, eng.Member{Key: p[0].Value, Value: v})
		}
		return obj, nil
	case yaml.SequenceNode:
		arr := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := exampleValue(c)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		return arr, nil
	case yaml.ScalarNode:
		return scalarValue(n), nil
	}
	return nil, nil
}

// scalarValue resolves a scalar by its YAML tag. Integers that overflow int64
// become *big.Int; "!bigint" forces a *big.Int.
func scalarValue(n *yaml.Node) any {
	switch n.ShortTag() {
	case "!!null":
		return nil
	case "!!bool":
		if n.Value == "true" || n.Value == "True" || n.Value == "TRUE" {
			return true
		}
		if n.Value == "false" || n.Value == "False" || n.Value == "FALSE" {
			return false
		}
		return n.Value
	case "!!int":
		s := strings.ReplaceAll(n.Value, "_", "")
		if i, err := strconv.ParseInt(s, 0, 64); err == nil {
			return i
		}
		if b, ok := new(big.Int).SetString(s, 0); ok {
			return b
		}
		return n.Value
	case "!!float":
		var f float64
		if err := n.Decode(&f); err == nil {
			return f
		}
		return n.Value
	case "!bigint":
		if b, ok := new(big.Int).SetString(n.Value, 0); ok {
			return b
		}
		return n.Value
	}
	return n.Value
}
