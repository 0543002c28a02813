package dsl

import (
	"fmt"
	"io"

	"github.com/reoring/guardgen"
	eng "github.com/reoring/guardgen/internal/engine"
)

// maxExampleDepth bounds nesting of JSON examples.
const maxExampleDepth = 256

// FromJSON derives a rule tree from a JSON example document. Object
// properties keep document order and numbers are matched by numeric value.
// Duplicate keys are rejected.
func FromJSON(data []byte) (*guardgen.Node, error) {
	v, err := eng.DecodeBytes(data, eng.Options{MaxDepth: maxExampleDepth})
	if err != nil {
		return nil, fmt.Errorf("dsl: decode JSON example: %w", err)
	}
	return From(v), nil
}

// FromJSONReader is FromJSON over a reader.
func FromJSONReader(r io.Reader) (*guardgen.Node, error) {
	v, err := eng.Decode(eng.NewReader(r), eng.Options{MaxDepth: maxExampleDepth})
	if err != nil {
		return nil, fmt.Errorf("dsl: decode JSON example: %w", err)
	}
	return From(v), nil
}
