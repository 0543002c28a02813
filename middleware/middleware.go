// Package middleware validates JSON request bodies with a compiled
// guardgen.Validator. Framework adapters live in nested modules (echo, gin).
package middleware

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	j "github.com/goccy/go-json"

	"github.com/reoring/guardgen"
	eng "github.com/reoring/guardgen/internal/engine"
	"github.com/reoring/guardgen/shape"
)

// MaxDepth bounds nesting of request bodies.
const MaxDepth = 512

// ErrRejected is returned for bodies rejected by a fail-fast validator,
// which records no diagnostics.
var ErrRejected = errors.New("middleware: body rejected")

type ctxKeyBody struct{}

// body wraps the stored value so a JSON null body is still found.
type body struct{ v any }

// ContextWithBody attaches a validated body to the context.
func ContextWithBody(ctx context.Context, v any) context.Context {
	return context.WithValue(ctx, ctxKeyBody{}, body{v})
}

// BodyFromContext retrieves the body stored by ContextWithBody.
func BodyFromContext(ctx context.Context) (any, bool) {
	b, ok := ctx.Value(ctxKeyBody{}).(body)
	return b.v, ok
}

// DecodeBody reads one JSON value from r and checks it with v. Duplicate keys
// are errors. Objects decode to map[string]any and numbers to json.Number.
// A failed check returns shape.Diagnostics, or ErrRejected when v does not
// collect diagnostics.
func DecodeBody(r io.Reader, v *guardgen.Validator) (any, error) {
	raw, err := eng.Decode(eng.NewReader(r), eng.Options{MaxDepth: MaxDepth})
	if err != nil {
		return nil, fmt.Errorf("middleware: decode body: %w", err)
	}
	val := eng.Plain(raw)
	if ok, diags := v.Check(val); !ok {
		if len(diags) == 0 {
			return nil, ErrRejected
		}
		return nil, diags
	}
	return val, nil
}

// ErrorPayload shapes err for JSON responses: diagnostics under "issues",
// anything else under "error".
func ErrorPayload(err error) map[string]any {
	if ds, ok := shape.AsDiagnostics(err); ok {
		return map[string]any{"issues": ds}
	}
	return map[string]any{"error": err.Error()}
}

// ValidateJSON returns net/http middleware that rejects bodies failing v with
// 400 and stores accepted bodies in the request context.
func ValidateJSON(v *guardgen.Validator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, err := DecodeBody(r.Body, v)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, ErrorPayload(err))
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithBody(r.Context(), body)))
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = j.NewEncoder(w).Encode(payload)
}
