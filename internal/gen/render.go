package gen

// Package gen assembles generated Go source files. Callers hand over already
// generated declarations; gen lays them out and runs gofmt over the result.

import (
	"bytes"
	"fmt"
	"go/format"
	"strings"
)

// Import is one import spec. An empty Name imports under the package name.
type Import struct {
	Name string
	Path string
}

// Var is one entry of a var group.
type Var struct {
	Name string
	Expr string
}

// Func is a top-level function declaration.
type Func struct {
	Doc       []string // comment lines without the leading "//"; tab-indented lines form code blocks
	Signature string   // everything between "func " and the body
	Body      string
}

// File describes one generated source file.
type File struct {
	Package   string
	Header    []string
	Imports   []Import
	VarGroups [][]Var
	Prelude   string // free-form declarations placed before Funcs
	Funcs     []Func
}

// RenderFile renders f and formats it with gofmt.
func RenderFile(f File) ([]byte, error) {
	if f.Package == "" {
		return nil, fmt.Errorf("gen: package name is required")
	}
	var b bytes.Buffer
	for _, h := range f.Header {
		b.WriteString("// " + h + "\n")
	}
	if len(f.Header) > 0 {
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "package %s\n\n", f.Package)

	if len(f.Imports) > 0 {
		b.WriteString("import (\n")
		for _, im := range f.Imports {
			if im.Name != "" {
				fmt.Fprintf(&b, "\t%s %q\n", im.Name, im.Path)
			} else {
				fmt.Fprintf(&b, "\t%q\n", im.Path)
			}
		}
		b.WriteString(")\n\n")
	}

	for _, group := range f.VarGroups {
		if len(group) == 0 {
			continue
		}
		b.WriteString("var (\n")
		for _, v := range group {
			fmt.Fprintf(&b, "\t%s = %s\n", v.Name, v.Expr)
		}
		b.WriteString(")\n\n")
	}

	if f.Prelude != "" {
		b.WriteString(f.Prelude)
		b.WriteString("\n\n")
	}

	for _, fn := range f.Funcs {
		for _, d := range fn.Doc {
			if strings.HasPrefix(d, "\t") {
				b.WriteString("//" + d + "\n")
				continue
			}
			b.WriteString(strings.TrimRight("// "+d, " ") + "\n")
		}
		fmt.Fprintf(&b, "func %s {\n%s}\n\n", fn.Signature, ensureNewline(fn.Body))
	}

	out, err := format.Source(b.Bytes())
	if err != nil {
		return nil, fmt.Errorf("gen: formatting generated source: %w", err)
	}
	return out, nil
}

func ensureNewline(s string) string {
	if s == "" || strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}
