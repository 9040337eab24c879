package mcp

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/cxxnav"
)

const source = `int twice(int x) { return x * 2; }
int main() { return twice(twice(1)); }
`

func request(name string, args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	return text.Text
}

func setup(t *testing.T) (*Tools, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "main.cpp")
	require.NoError(t, os.WriteFile(path, []byte(source), 0o644))
	tools := New(cxxnav.New(), filepath.Join(dir, ".cxxnav"))

	res, err := tools.parse(context.Background(), request("parse", map[string]any{"path": path}))
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(t, res))
	assert.Contains(t, resultText(t, res), "0 diagnostics")
	return tools, path
}

func TestFindReferences(t *testing.T) {
	tools, path := setup(t)

	res, err := tools.findReferences(context.Background(), request("find_references", map[string]any{
		"file": path, "line": 1, "column": 5,
	}))
	require.NoError(t, err)
	assert.Equal(t, path+":1:5\n"+path+":2:21\n"+path+":2:27\n", resultText(t, res))

	res, err = tools.findReferences(context.Background(), request("find_references", map[string]any{
		"file": "/elsewhere.cpp", "line": 1, "column": 1,
	}))
	require.NoError(t, err)
	assert.Equal(t, "No references found.", resultText(t, res))
}

func TestClassifyAndDefinition(t *testing.T) {
	tools, path := setup(t)
	ctx := context.Background()

	res, err := tools.classify(ctx, request("classify", map[string]any{
		"file": path, "line": 2, "column": 21,
	}))
	require.NoError(t, err)
	assert.Equal(t, "Function  FUNCTION_DECL  twice  "+path+":1:5", resultText(t, res))

	res, err = tools.definition(ctx, request("definition", map[string]any{
		"file": path, "line": 2, "column": 27,
	}))
	require.NoError(t, err)
	assert.Equal(t, path+":1:5", resultText(t, res))

	res, err = tools.classify(ctx, request("classify", map[string]any{"file": path}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestDiagnostics(t *testing.T) {
	tools, path := setup(t)
	ctx := context.Background()

	res, err := tools.diagnostics(ctx, request("diagnostics", map[string]any{"key": path}))
	require.NoError(t, err)
	assert.Equal(t, "No diagnostics.", resultText(t, res))

	res, err = tools.diagnostics(ctx, request("diagnostics", map[string]any{"key": "/missing.cpp"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestSaveLoad(t *testing.T) {
	tools, path := setup(t)
	ctx := context.Background()

	res, err := tools.save(ctx, request("save", nil))
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(t, res))
	assert.Contains(t, resultText(t, res), "Saved 1 units")

	tools.nav.DropAll()
	res, err = tools.load(ctx, request("load", nil))
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(t, res))
	assert.Contains(t, resultText(t, res), "Loaded 1 units")
	assert.Equal(t, []string{path}, tools.nav.Keys())
}

func TestParseDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.cpp"), []byte("int a;\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.h"), []byte("int b(\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	tools := New(cxxnav.New(), t.TempDir())

	res, err := tools.parse(context.Background(), request("parse", map[string]any{"path": dir}))
	require.NoError(t, err)
	text := resultText(t, res)
	assert.Contains(t, text, filepath.Join(dir, "a.cpp")+"  0 diagnostics")
	assert.Contains(t, text, filepath.Join(dir, "b.h"))
	assert.NotContains(t, text, "notes.txt")

	res, err = tools.parse(context.Background(), request("parse", map[string]any{"path": filepath.Join(dir, "nope")}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestNewServerRegistersTools(t *testing.T) {
	s := NewServer(New(cxxnav.New(), t.TempDir()), "test")
	tools := s.ListTools()
	for _, name := range []string{"parse", "find_references", "classify", "definition", "diagnostics", "save", "load"} {
		assert.Contains(t, tools, name)
	}
}
