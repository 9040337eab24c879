package scripts_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/risor-io/risor/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/cxxnav"
	"github.com/jward/cxxnav/internal/runtime"
	"github.com/jward/cxxnav/scripts"
)

const source = `struct Counter {
  int n;
  void bump() { n++; }
  void reset() { n = 0; }
};
int helper() { return 1; }
int main() {
  Counter c;
  c.bump();
  return 0;
}
`

func runBuiltin(t *testing.T, name string) object.Object {
	t.Helper()
	path := filepath.Join(t.TempDir(), "main.cpp")
	require.NoError(t, os.WriteFile(path, []byte(source), 0o644))
	nav := cxxnav.New()
	key := nav.ParseFile(path, nil)

	rt := runtime.New(nav, "", runtime.WithFS(scripts.FS))
	result, err := rt.RunScript(context.Background(), scripts.Path(name), map[string]any{
		"args": object.NewList([]object.Object{object.NewString(key)}),
	})
	require.NoError(t, err)
	return result
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"symbols", "unreferenced"}, scripts.Names())
}

func TestUnreferenced(t *testing.T) {
	result := runBuiltin(t, "unreferenced")
	list, ok := result.(*object.List)
	require.True(t, ok, "got %T", result)

	var names []string
	for _, item := range list.Value() {
		names = append(names, item.(*object.String).Value())
	}
	require.Len(t, names, 2)
	assert.Contains(t, names[0], "reset ")
	assert.Contains(t, names[1], "helper ")
}

func TestSymbols(t *testing.T) {
	result := runBuiltin(t, "symbols")
	list, ok := result.(*object.List)
	require.True(t, ok, "got %T", result)

	got := map[string]string{}
	for _, item := range list.Value() {
		m := item.(*object.Map).Value()
		got[m["name"].(*object.String).Value()] = m["semantic"].(*object.String).Value()
	}
	assert.Equal(t, "Struct", got["Counter"])
	assert.Equal(t, "Field", got["n"])
	assert.Equal(t, "Method", got["bump"])
	assert.Equal(t, "Function", got["helper"])
	assert.Equal(t, "LocalVariable", got["c"])
}
