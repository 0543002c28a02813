package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/reoring/guardgen"
	"github.com/reoring/guardgen/i18n"
	"github.com/reoring/guardgen/jsonschema"
	"github.com/reoring/guardgen/loader"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

const usageText = `guardgen CLI

Usage:
  guardgen compile [-pkg name] [-diagnostics] [-type T1,T2] [-o out.go] schema.yaml
  guardgen types [-type T1,T2] schema.yaml
  guardgen jsonschema [-title name] [-type T1,T2] [-o out.json] schema.yaml
  guardgen links [-type T1,T2] schema.yaml

Common flags:
  -lang  message language for diagnostics (en, ja)
  -v     enable verbose logs`

var errUsage = errors.New("usage")

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		fmt.Fprintln(stderr, usageText)
		return 2
	}
	var err error
	switch args[0] {
	case "compile":
		err = compileCmd(args[1:], stdout, stderr)
	case "types":
		err = typesCmd(args[1:], stdout, stderr)
	case "jsonschema":
		err = jsonSchemaCmd(args[1:], stdout, stderr)
	case "links":
		err = linksCmd(args[1:], stdout, stderr)
	default:
		fmt.Fprintln(stderr, usageText)
		return 2
	}
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUsage):
		return 2
	}
	fmt.Fprintf(stderr, "guardgen: %v\n", err)
	return 1
}

// common holds the flags every subcommand accepts.
type common struct {
	fs      *flag.FlagSet
	types   string
	lang    string
	verbose bool
}

func newCommon(name string, stderr io.Writer) *common {
	c := &common{fs: flag.NewFlagSet(name, flag.ContinueOnError)}
	c.fs.SetOutput(stderr)
	c.fs.StringVar(&c.types, "type", "", "comma-separated type names (default: all)")
	c.fs.StringVar(&c.lang, "lang", "", "message language for diagnostics")
	c.fs.BoolVar(&c.verbose, "v", false, "enable verbose logs")
	return c
}

// parse parses args and loads the single schema file operand.
func (c *common) parse(args []string, stderr io.Writer) ([]loader.Entry, *slog.Logger, error) {
	if err := c.fs.Parse(args); err != nil {
		return nil, nil, errUsage
	}
	if c.fs.NArg() != 1 {
		c.fs.Usage()
		return nil, nil, errUsage
	}
	level := slog.LevelInfo
	if c.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	if c.lang != "" {
		i18n.SetLanguage(c.lang)
	}

	path := c.fs.Arg(0)
	doc, err := loader.LoadFile(path, loader.Options{})
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("schema loaded", "path", path, "types", len(doc.Entries))
	entries, err := selectEntries(doc, splitCSV(c.types))
	if err != nil {
		return nil, nil, err
	}
	return entries, logger, nil
}

func selectEntries(doc *loader.Document, names []string) ([]loader.Entry, error) {
	if len(names) == 0 {
		return doc.Entries, nil
	}
	out := make([]loader.Entry, 0, len(names))
	for _, name := range names {
		n, ok := doc.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", loader.ErrUnknownRef, name)
		}
		out = append(out, loader.Entry{Name: name, Node: n})
	}
	return out, nil
}

func compileCmd(args []string, stdout, stderr io.Writer) error {
	c := newCommon("compile", stderr)
	var pkg, out string
	var diagnostics bool
	c.fs.StringVar(&pkg, "pkg", "", "package name of the generated file")
	c.fs.StringVar(&out, "o", "", "output filename (default: stdout)")
	c.fs.BoolVar(&diagnostics, "diagnostics", false, "generate validators that collect diagnostics")
	entries, logger, err := c.parse(args, stderr)
	if err != nil {
		return err
	}
	m := guardgen.NewModule(guardgen.WithPackage(pkg), guardgen.WithDiagnostics(diagnostics), guardgen.WithLogger(logger))
	for _, e := range entries {
		m.Add(e.Node, e.Name)
	}
	code, err := m.Compile()
	if err != nil {
		return err
	}
	if n := len(m.Values()); n > 0 {
		logger.Info("generated code reads values from links", "keys", n)
	}
	return writeOutput(out, code, stdout)
}

func typesCmd(args []string, stdout, stderr io.Writer) error {
	c := newCommon("types", stderr)
	entries, _, err := c.parse(args, stderr)
	if err != nil {
		return err
	}
	for _, e := range entries {
		fmt.Fprintf(stdout, "%s: %s\n", e.Name, guardgen.TypeOf(e.Node))
	}
	return nil
}

func jsonSchemaCmd(args []string, stdout, stderr io.Writer) error {
	c := newCommon("jsonschema", stderr)
	var title, out string
	c.fs.StringVar(&title, "title", "", "document title")
	c.fs.StringVar(&out, "o", "", "output filename (default: stdout)")
	entries, _, err := c.parse(args, stderr)
	if err != nil {
		return err
	}
	names := make([]string, len(entries))
	nodes := make([]*guardgen.Node, len(entries))
	for i, e := range entries {
		names[i], nodes[i] = e.Name, e.Node
	}
	doc, err := jsonschema.Document(title, names, nodes)
	if err != nil {
		return err
	}
	b, err := jsonschema.Marshal(doc)
	if err != nil {
		return err
	}
	return writeOutput(out, append(b, '\n'), stdout)
}

func linksCmd(args []string, stdout, stderr io.Writer) error {
	c := newCommon("links", stderr)
	entries, logger, err := c.parse(args, stderr)
	if err != nil {
		return err
	}
	m := guardgen.NewModule(guardgen.WithLogger(logger))
	for _, e := range entries {
		m.Add(e.Node, e.Name)
	}
	if _, err := m.Compile(); err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout, m.LinksSummary())
	return err
}

func writeOutput(path string, b []byte, stdout io.Writer) error {
	if path == "" {
		_, err := stdout.Write(b)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
