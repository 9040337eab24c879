package runtime

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/risor-io/risor/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/cxxnav"
)

const cppSource = `int twice(int x) { return x * 2; }
int main() {
  int v = twice(3);
  return v + twice(v);
}
`

// newProject writes cppSource to a temp dir and returns a runtime whose
// navigator has parsed it, plus the file's key.
func newProject(t *testing.T) (*Runtime, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "main.cpp")
	require.NoError(t, os.WriteFile(path, []byte(cppSource), 0o644))

	nav := cxxnav.New()
	key := nav.ParseFile(path, nil)
	_, ok := nav.Unit(key)
	require.True(t, ok)
	return New(nav, dir), key
}

func TestRunSource_Units(t *testing.T) {
	rt, key := newProject(t)

	result, err := rt.RunSource(context.Background(), `
names := units()
assert(len(names) == 1, 'expected 1 unit, got {len(names)}')
names[0]
`, nil)
	require.NoError(t, err)
	assert.Equal(t, object.NewString(key), result)
}

func TestRunSource_Classify(t *testing.T) {
	rt, key := newProject(t)

	_, err := rt.RunSource(context.Background(), `
info := classify(file, 3, 11)
assert(info != nil, "expected a node")
assert(info["id"] == "Function", 'got {info["id"]}')
assert(info["spelling"] == "twice", 'got {info["spelling"]}')
assert(info["line"] == 1, 'got {info["line"]}')
assert(classify(file, 40, 1)["id"] == "Unsupported", "past the end is the unit itself")
assert(classify("/other.cpp", 1, 1) == nil, "unknown file")
`, map[string]any{"file": key})
	require.NoError(t, err)
}

func TestRunSource_ReferencesAndDefinition(t *testing.T) {
	rt, key := newProject(t)

	_, err := rt.RunSource(context.Background(), `
refs := references(file, 1, 5)
assert(len(refs) == 3, 'expected 3 references, got {len(refs)}')
assert(refs[0]["line"] == 1, "declaration comes first")
assert(refs[1]["line"] == 3)
assert(refs[2]["column"] == 14, 'got {refs[2]["column"]}')

loc := definition(file, 3, 11)
assert(loc["line"] == 1 && loc["column"] == 5, 'got {loc}')
`, map[string]any{"file": key})
	require.NoError(t, err)
}

func TestRunSource_NodesAndDiagnostics(t *testing.T) {
	rt, key := newProject(t)

	_, err := rt.RunSource(context.Background(), `
rows := nodes(file)
assert(len(rows) > 0, "expected nodes")
kinds := {}
for _, row := range rows {
    kinds[row["kind"]] = true
    if row["kind"] == "FUNCTION_DECL" {
        assert(row["declaration"], "function rows are declarations")
    }
    if row["kind"] == "CALL_EXPR" {
        assert(!row["declaration"], "call rows are not declarations")
    }
}
assert(kinds["FUNCTION_DECL"], "expected a function row")
assert(kinds["CALL_EXPR"], "expected a call row")

assert(len(diagnostics(file)) == 0, "expected a clean unit")
assert(diagnostics("/nowhere.cpp") == nil, "unknown key is nil")
`, map[string]any{"file": key})
	require.NoError(t, err)
}

func TestRunSource_ParseBuiltins(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.cpp")
	require.NoError(t, os.WriteFile(path, []byte("int f( {\n"), 0o644))

	rt := New(cxxnav.New(), dir)
	_, err := rt.RunSource(context.Background(), `
assert(parse("/bad.cpp", path, ["-DX=1"]), "parse stores the unit")
assert(len(diagnostics("/bad.cpp")) > 0, "syntax errors are diagnostics")
assert(!parse("/gone.cpp", path + ".missing"), "missing file stores nothing")
key := parse_file(path)
assert(key == path, 'got {key}')
assert(len(units()) == 2)
`, map[string]any{"path": path})
	require.NoError(t, err)
}

func TestRunSource_ArgumentErrors(t *testing.T) {
	rt, _ := newProject(t)
	ctx := context.Background()

	_, err := rt.RunSource(ctx, `classify("a.cpp", 1)`, nil)
	assert.Error(t, err)
	_, err = rt.RunSource(ctx, `references("a.cpp", "one", 1)`, nil)
	assert.ErrorContains(t, err, "line")
	_, err = rt.RunSource(ctx, `parse("k", "p", "not a list")`, nil)
	assert.ErrorContains(t, err, "args")
}

func TestRunSource_Log(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	rt := New(nil, "", WithLogger(logger))

	_, err := rt.RunSource(context.Background(), `log.Info("hello from script")`, nil)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "hello from script")
	assert.Contains(t, buf.String(), "source=script")
}

func TestRunScript_LoadsFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "test.risor"), []byte(`1 + 1`), 0o644))

	rt := New(nil, dir)
	result, err := rt.RunScript(context.Background(), "test.risor", nil)
	require.NoError(t, err)
	assert.Equal(t, object.NewInt(2), result)
}

func TestRunScript_MissingFile(t *testing.T) {
	rt := New(nil, t.TempDir())
	_, err := rt.RunScript(context.Background(), "nonexistent.risor", nil)
	assert.Error(t, err)
}

func TestRunScript_Import(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "helpers.risor"),
		[]byte("func double(n) { return n * 2 }\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.risor"),
		[]byte("import helpers\nhelpers.double(len(units()) + 1)\n"), 0o644))

	rt := New(cxxnav.New(), dir)
	result, err := rt.RunScript(context.Background(), "main.risor", nil)
	require.NoError(t, err)
	assert.Equal(t, object.NewInt(2), result)
}

func TestLoadScript_FromFS(t *testing.T) {
	content := `x := 42`
	rt := New(nil, "", WithFS(fstest.MapFS{
		"scripts/a.risor": &fstest.MapFile{Data: []byte(content)},
	}))

	got, err := rt.LoadScript("/scripts/a.risor")
	require.NoError(t, err)
	assert.Equal(t, content, got)

	_, err = rt.LoadScript("missing.risor")
	assert.ErrorContains(t, err, "from fs")
}
