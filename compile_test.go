package der_test

import (
	"bytes"
	"der"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmit(t *testing.T) {
	nodes := []der.IR{
		&der.IRVariable{Type: "int", Name: "a", Init: &der.IRInteger{Val: 5}},
		&der.IRFunctionCall{Callee: &der.IRIdent{Name: "f"}, Args: []der.IR{&der.IRIdent{Name: "a"}}},
	}
	var buf bytes.Buffer
	require.NoError(t, der.Emit(&buf, nodes, der.Options{}))
	assert.Equal(t, "int a = 5;\nf(a);\n", buf.String())

	buf.Reset()
	require.NoError(t, der.Emit(&buf, nodes[:1], der.Options{Headers: true}))
	assert.Equal(t, "#include <stdlib.h>\n#include <stdio.h>\nint a = 5;\n", buf.String())
}

func TestCompile(t *testing.T) {
	out, err := der.Compile("main.der", []byte("dir a: ra9m = 5;"), der.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "#include <stdlib.h>\n#include <stdio.h>\nint a = 5;\n", out)

	_, err = der.Compile("main.der", []byte("dir a: ra9m = 5"), der.DefaultOptions())
	var syntaxErr *der.SyntaxError
	assert.ErrorAs(t, err, &syntaxErr)

	_, err = der.Compile("main.der", []byte(`dir a: ra9m = "x";`), der.DefaultOptions())
	var ce *der.CompilationError
	assert.ErrorAs(t, err, &ce)
}

func TestCompileFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.der")
	require.NoError(t, os.WriteFile(path, []byte(`dir a: ra9m = "x";`), 0o644))

	_, err := der.CompileFile(path, der.Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "main.der:1:1: error:")

	_, err = der.CompileFile(filepath.Join(dir, "main.c"), der.Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "extension .der")

	_, err = der.CompileFile(filepath.Join(dir, "missing.der"), der.Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading source")
}

func TestOptions(t *testing.T) {
	opts, err := der.ParseOptions("")
	require.NoError(t, err)
	assert.Equal(t, der.DefaultOptions(), opts)

	opts, err = der.ParseOptions("emit.headers = false\nemit.output = out.c\ncheck.trace = true\n")
	require.NoError(t, err)
	assert.Equal(t, der.Options{Headers: false, Output: "out.c", Trace: true}, opts)

	path := filepath.Join(t.TempDir(), "der.properties")
	require.NoError(t, os.WriteFile(path, []byte("emit.headers = false\n"), 0o644))
	opts, err = der.LoadOptions(path)
	require.NoError(t, err)
	assert.False(t, opts.Headers)

	_, err = der.LoadOptions(filepath.Join(t.TempDir(), "missing.properties"))
	assert.Error(t, err)
}

func TestDumps(t *testing.T) {
	stmts := parseProgram(t, "dir a: ra9m = 5; dir b: ktba = \"s\";")
	var ast bytes.Buffer
	der.DumpAST(&ast, stmts)
	assert.Contains(t, ast.String(), "der.VarDecl")

	c := der.NewChecker()
	_, err := c.Run(stmts)
	require.NoError(t, err)
	var scope bytes.Buffer
	require.NoError(t, der.DumpScope(&scope, c.Scope))
	assert.Equal(t, "a: ra9m\nb: ktba\n", scope.String())
}
