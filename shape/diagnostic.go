package shape

import (
	"errors"
	"fmt"
	"strings"
)

// Rule kinds recorded in Diagnostic.Rule.
const (
	RuleExactType       = "ExactType"
	RuleTypeInAncestry  = "TypeInAncestry"
	RuleValueMembership = "ValueMembership"
	RuleObjectShape     = "ObjectShape"
	RuleArrayShape      = "ArrayShape"
	RuleUnion           = "Union"
	RuleInteger         = "Integer"
	RuleNonEmptyString  = "NonEmptyString"
)

// Diagnostic records one failed rule evaluation.
type Diagnostic struct {
	Path    string `json:"path"` // e.g. .items[2].price; "" is the root value.
	Rule    string `json:"rule"` // One of the Rule* kinds.
	Message string `json:"message"`
}

func (d Diagnostic) String() string {
	p := d.Path
	if p == "" {
		p = "(root)"
	}
	return fmt.Sprintf("%s at %s: %s", d.Rule, p, d.Message)
}

// Diagnostics is a collection of validation failures that implements error.
type Diagnostics []Diagnostic

// Error summarizes the first few diagnostics.
func (ds Diagnostics) Error() string {
	if len(ds) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	lim := min(len(ds), maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(ds[i].String())
	}
	if len(ds) > lim {
		fmt.Fprintf(b, "; ... (total %d)", len(ds))
	}
	return b.String()
}

// Err returns ds as an error, or nil when it is empty.
func (ds Diagnostics) Err() error {
	if len(ds) == 0 {
		return nil
	}
	return ds
}

// AsDiagnostics extracts Diagnostics from an error using errors.As.
func AsDiagnostics(err error) (Diagnostics, bool) {
	if err == nil {
		return nil, false
	}
	var ds Diagnostics
	if errors.As(err, &ds) {
		return ds, true
	}
	return nil, false
}
