package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const schemaDoc = `types:
  Config:
    type: object
    properties:
      name: string
      port: integer
  Mode:
    values: [dev, prod]
`

func writeSchema(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "schema.yaml")
	require.NoError(t, os.WriteFile(path, []byte(schemaDoc), 0o644))
	return path
}

func TestRun_Compile(t *testing.T) {
	path := writeSchema(t)
	var out, errOut bytes.Buffer
	code := run([]string{"compile", "-pkg", "api", "-diagnostics", path}, &out, &errOut)
	require.Equal(t, 0, code, errOut.String())
	s := out.String()
	assert.Contains(t, s, "package api\n")
	assert.Contains(t, s, "func Config(obj any, links map[string]any) (bool, shape.Diagnostics)")
	assert.Contains(t, s, "func Mode(obj any, links map[string]any) (bool, shape.Diagnostics)")
}

func TestRun_CompileToFile(t *testing.T) {
	path := writeSchema(t)
	dst := filepath.Join(t.TempDir(), "gen", "validators.go")
	var out, errOut bytes.Buffer
	require.Equal(t, 0, run([]string{"compile", "-type", "Mode", "-o", dst, path}, &out, &errOut), errOut.String())
	assert.Empty(t, out.String())
	b, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Contains(t, string(b), "package validators\n")
	assert.Contains(t, string(b), "func Mode(obj any, links map[string]any) bool")
	assert.NotContains(t, string(b), "func Config(")
}

func TestRun_Types(t *testing.T) {
	path := writeSchema(t)
	var out, errOut bytes.Buffer
	require.Equal(t, 0, run([]string{"types", path}, &out, &errOut), errOut.String())
	assert.Equal(t, "Config: {name: string, port: number}\nMode: (\"dev\"|\"prod\")\n", out.String())
}

func TestRun_JSONSchema(t *testing.T) {
	path := writeSchema(t)
	var out, errOut bytes.Buffer
	require.Equal(t, 0, run([]string{"jsonschema", "-type", "Mode", path}, &out, &errOut), errOut.String())
	assert.JSONEq(t, `{
		"$schema": "https://json-schema.org/draft/2020-12/schema",
		"$defs": {"Mode": {"enum": ["dev", "prod"]}}
	}`, out.String())
}

func TestRun_Links(t *testing.T) {
	path := writeSchema(t)
	var out, errOut bytes.Buffer
	require.Equal(t, 0, run([]string{"links", path}, &out, &errOut), errOut.String())
	assert.Equal(t, "links := map[string]any{\n}\n", out.String())
}

func TestRun_Errors(t *testing.T) {
	path := writeSchema(t)
	var out, errOut bytes.Buffer
	assert.Equal(t, 2, run(nil, &out, &errOut))
	assert.Equal(t, 2, run([]string{"bogus"}, &out, &errOut))
	assert.Equal(t, 2, run([]string{"types"}, &out, &errOut))
	assert.Equal(t, 1, run([]string{"types", "-type", "Missing", path}, &out, &errOut))
	assert.Equal(t, 1, run([]string{"types", filepath.Join(t.TempDir(), "none.yaml")}, &out, &errOut))
	assert.Contains(t, errOut.String(), "guardgen: ")
}
