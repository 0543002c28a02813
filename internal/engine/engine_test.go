package engine

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDecodeBytes_KeepsMemberOrder(t *testing.T) {
	got, err := DecodeBytes([]byte(`{"b": 1, "a": [true, null, "x"], "c": {"z": 2.5, "y": {}}}`), Options{})
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	want := Object{
		{Key: "b", Value: json.Number("1")},
		{Key: "a", Value: []any{true, nil, "x"}},
		{Key: "c", Value: Object{
			{Key: "z", Value: json.Number("2.5")},
			{Key: "y", Value: Object{}},
		}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("decoded tree mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeBytes_RejectsDuplicateKeys(t *testing.T) {
	_, err := DecodeBytes([]byte(`{"a": {"k": 1, "k": 2}}`), Options{})
	if !errors.Is(err, ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}
}

func TestDecodeBytes_MaxDepth(t *testing.T) {
	if _, err := DecodeBytes([]byte(`[[[1]]]`), Options{MaxDepth: 3}); err != nil {
		t.Fatalf("depth 3 should pass: %v", err)
	}
	_, err := DecodeBytes([]byte(`[[[[1]]]]`), Options{MaxDepth: 3})
	if !errors.Is(err, ErrMaxDepth) {
		t.Fatalf("expected ErrMaxDepth, got %v", err)
	}
}

func TestDecodeBytes_TrailingData(t *testing.T) {
	_, err := DecodeBytes([]byte(`1 2`), Options{})
	if !errors.Is(err, ErrTrailingData) {
		t.Fatalf("expected ErrTrailingData, got %v", err)
	}
}

func TestObject_Map(t *testing.T) {
	o := Object{{Key: "a", Value: "x"}, {Key: "b", Value: nil}}
	m := o.Map()
	if len(m) != 2 || m["a"] != "x" {
		t.Fatalf("unexpected map %#v", m)
	}
}

func TestPlain(t *testing.T) {
	v, err := DecodeBytes([]byte(`{"a": [{"b": 1}], "c": "x"}`), Options{})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := map[string]any{
		"a": []any{map[string]any{"b": json.Number("1")}},
		"c": "x",
	}
	if diff := cmp.Diff(want, Plain(v)); diff != "" {
		t.Fatalf("plain mismatch (-want +got):\n%s", diff)
	}
}
