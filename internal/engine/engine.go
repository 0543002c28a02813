package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Kind represents token kinds from a generic source.
type Kind int

const (
	KindBeginObject Kind = iota
	KindEndObject
	KindBeginArray
	KindEndArray
	KindKey
	KindString
	KindNumber
	KindBool
	KindNull
)

// Token represents a streaming token with approximate input offset.
type Token struct {
	Kind   Kind
	String string
	Number string
	Bool   bool
	Offset int64
}

// TokenSource is a minimal interface required by the engine.
type TokenSource interface {
	NextToken() (Token, error)
	Location() int64
}

// Member is one object entry in document order.
type Member struct {
	Key   string
	Value any
}

// Object is a decoded JSON object that keeps its members in document order.
type Object []Member

// Map flattens o, dropping the order.
func (o Object) Map() map[string]any {
	m := make(map[string]any, len(o))
	for _, mem := range o {
		m[mem.Key] = mem.Value
	}
	return m
}

// Plain replaces every Object in v, at any depth, with a map.
func Plain(v any) any {
	switch x := v.(type) {
	case Object:
		m := make(map[string]any, len(x))
		for _, mem := range x {
			m[mem.Key] = Plain(mem.Value)
		}
		return m
	case []any:
		for i, e := range x {
			x[i] = Plain(e)
		}
		return x
	}
	return v
}

// Options controls decoding limits.
type Options struct {
	// MaxDepth bounds container nesting; zero means unlimited.
	MaxDepth int
}

var (
	// ErrDuplicateKey is returned when an object repeats a key.
	ErrDuplicateKey = errors.New("engine: duplicate key")
	// ErrMaxDepth is returned when nesting exceeds Options.MaxDepth.
	ErrMaxDepth = errors.New("engine: max depth exceeded")
	// ErrTrailingData is returned when a value is followed by more tokens.
	ErrTrailingData = errors.New("engine: trailing data after value")
)

// Decode builds a value tree from src: objects become Object, arrays []any,
// numbers json.Number. Exactly one top-level value must be present.
func Decode(src TokenSource, opt Options) (any, error) {
	d := decoder{src: src, opt: opt}
	tok, err := src.NextToken()
	if err != nil {
		return nil, err
	}
	v, err := d.value(tok, "")
	if err != nil {
		return nil, err
	}
	if _, err := src.NextToken(); err != io.EOF {
		if err != nil {
			return nil, err
		}
		return nil, ErrTrailingData
	}
	return v, nil
}

type decoder struct {
	src   TokenSource
	opt   Options
	depth int
}

func (d *decoder) value(tok Token, path string) (any, error) {
	switch tok.Kind {
	case KindBeginObject:
		return d.object(path)
	case KindBeginArray:
		return d.array(path)
	case KindString:
		return tok.String, nil
	case KindNumber:
		return json.Number(tok.Number), nil
	case KindBool:
		return tok.Bool, nil
	case KindNull:
		return nil, nil
	default:
		return nil, io.ErrUnexpectedEOF
	}
}

func (d *decoder) enter(path string) error {
	d.depth++
	if d.opt.MaxDepth > 0 && d.depth > d.opt.MaxDepth {
		return fmt.Errorf("%w at %s", ErrMaxDepth, rooted(path))
	}
	return nil
}

func (d *decoder) object(path string) (any, error) {
	if err := d.enter(path); err != nil {
		return nil, err
	}
	defer func() { d.depth-- }()

	obj := Object{}
	seen := map[string]struct{}{}
	for {
		tok, err := d.src.NextToken()
		if err != nil {
			return nil, err
		}
		if tok.Kind == KindEndObject {
			return obj, nil
		}
		if tok.Kind != KindKey {
			return nil, io.ErrUnexpectedEOF
		}
		if _, dup := seen[tok.String]; dup {
			return nil, fmt.Errorf("%w %q at %s", ErrDuplicateKey, tok.String, rooted(path))
		}
		seen[tok.String] = struct{}{}
		vt, err := d.src.NextToken()
		if err != nil {
			return nil, err
		}
		v, err := d.value(vt, path+"/"+tok.String)
		if err != nil {
			return nil, err
		}
		obj = append(obj, Member{Key: tok.String, Value: v})
	}
}

func (d *decoder) array(path string) (any, error) {
	if err := d.enter(path); err != nil {
		return nil, err
	}
	defer func() { d.depth-- }()

	arr := []any{}
	for {
		tok, err := d.src.NextToken()
		if err != nil {
			return nil, err
		}
		if tok.Kind == KindEndArray {
			return arr, nil
		}
		v, err := d.value(tok, fmt.Sprintf("%s/%d", path, len(arr)))
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)
	}
}

func rooted(path string) string {
	if path == "" {
		return "/"
	}
	return path
}
