package units

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/cxxnav/internal/ast/asttest"
)

func newTestStore(t *testing.T) (*Store, *asttest.Calls) {
	t.Helper()
	fx := asttest.NewCalls()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(fx.Frontend, WithLogger(logger)), fx
}

func TestKey(t *testing.T) {
	t.Parallel()
	tests := []struct{ in, want string }{
		{"a.cpp", "/a.cpp"},
		{"/a.cpp", "/a.cpp"},
		{"./a.cpp", "/a.cpp"},
		{"src/../lib/x.cc", "/lib/x.cc"},
		{"/home/u/p/main.cpp", "/home/u/p/main.cpp"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Key(tt.in), tt.in)
	}
}

func TestParse_PassesArguments(t *testing.T) {
	t.Parallel()
	fx := asttest.NewCalls()
	s := New(fx.Frontend,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithSystemIncludes([]string{"-isystem", "/usr/include"}))

	s.Parse("a.cpp", fx.A.Path, []string{"-DX=1"}, "/src")
	tu, ok := s.Get("a.cpp")
	require.True(t, ok)
	assert.Equal(t, []string{"-x", "c++", "-std=c++14", "-isystem", "/usr/include", "-DX=1"}, tu.Args())
}

func TestParse_FailureKeepsPreviousUnit(t *testing.T) {
	t.Parallel()
	s, fx := newTestStore(t)

	s.Parse("a.cpp", fx.A.Path, nil, "")
	first, ok := s.Get("a.cpp")
	require.True(t, ok)

	s.Parse("a.cpp", "/does/not/exist.cpp", nil, "")
	got, ok := s.Get("a.cpp")
	require.True(t, ok)
	assert.Same(t, first, got)
	assert.Equal(t, []string{fx.A.Path, "/does/not/exist.cpp"}, fx.Frontend.Parsed)
}

func TestParse_FailureOnNewKeyLeavesItAbsent(t *testing.T) {
	t.Parallel()
	s, _ := newTestStore(t)

	s.Parse("missing.cpp", "/does/not/exist.cpp", nil, "")
	_, ok := s.Get("missing.cpp")
	assert.False(t, ok)
	assert.Zero(t, s.Len())
}

func TestParse_ReplacesOnSuccess(t *testing.T) {
	t.Parallel()
	s, fx := newTestStore(t)

	s.Parse("x.cpp", fx.A.Path, nil, "")
	s.Parse("x.cpp", fx.B.Path, nil, "")
	tu, ok := s.Get("x.cpp")
	require.True(t, ok)
	assert.Equal(t, fx.B.Path, tu.Spelling())
	assert.Equal(t, 1, s.Len())
}

func TestDrop(t *testing.T) {
	t.Parallel()
	s, fx := newTestStore(t)

	s.Parse("a.cpp", fx.A.Path, nil, "")
	s.Parse("b.cpp", fx.B.Path, nil, "")
	s.Drop("a.cpp")

	_, ok := s.Get("a.cpp")
	assert.False(t, ok)
	assert.Equal(t, []string{"/b.cpp"}, s.Keys())

	s.Drop("never-parsed.cpp")
	s.DropAll()
	assert.Empty(t, s.Keys())
	assert.Nil(t, s.Diagnostics("b.cpp"))
}

func TestSaveAllLoadAll_RoundTripsKeys(t *testing.T) {
	t.Parallel()
	s, fx := newTestStore(t)
	s.Parse("a.cpp", fx.A.Path, nil, "")
	s.Parse("nested/dir/b.cpp", fx.B.Path, nil, "")

	root := t.TempDir()
	require.True(t, s.SaveAll(root))
	assert.FileExists(t, filepath.Join(root, "a.cpp.ast"))
	assert.FileExists(t, filepath.Join(root, "nested", "dir", "b.cpp.ast"))

	fresh := New(fx.Frontend, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	fresh.Parse("stale.cpp", fx.A.Path, nil, "")
	require.True(t, fresh.LoadAll(root))
	assert.Equal(t, s.Keys(), fresh.Keys())

	tu, ok := fresh.Get("nested/dir/b.cpp")
	require.True(t, ok)
	assert.Equal(t, fx.B.Path, tu.Spelling())
}

func TestSaveAll_BestEffort(t *testing.T) {
	t.Parallel()
	s, fx := newTestStore(t)
	s.Parse("a.cpp", fx.A.Path, nil, "")
	s.Parse("b.cpp", fx.B.Path, nil, "")

	fx.Frontend.Units[fx.A.Path].SaveErr = errors.New("disk full")

	root := t.TempDir()
	assert.False(t, s.SaveAll(root))
	assert.NoFileExists(t, filepath.Join(root, "a.cpp.ast"))
	assert.FileExists(t, filepath.Join(root, "b.cpp.ast"))
}

func TestLoadAll_SkipsCorruptArtifacts(t *testing.T) {
	t.Parallel()
	s, fx := newTestStore(t)
	s.Parse("a.cpp", fx.A.Path, nil, "")

	root := t.TempDir()
	require.True(t, s.SaveAll(root))
	require.NoError(t, os.WriteFile(filepath.Join(root, "bad.cpp.ast"), []byte("not a unit"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("ignored"), 0o644))

	assert.False(t, s.LoadAll(root))
	assert.Equal(t, []string{"/a.cpp"}, s.Keys())
}

func TestLoadAll_MissingRoot(t *testing.T) {
	t.Parallel()
	s, fx := newTestStore(t)
	s.Parse("a.cpp", fx.A.Path, nil, "")

	assert.False(t, s.LoadAll(filepath.Join(t.TempDir(), "nope")))
	assert.Zero(t, s.Len())
}

func TestKeyFromArtifact(t *testing.T) {
	t.Parallel()
	key, ok := KeyFromArtifact("/tmp/cache", "/tmp/cache/src/x.cpp.ast")
	require.True(t, ok)
	assert.Equal(t, "/src/x.cpp", key)

	_, ok = KeyFromArtifact("/tmp/cache", "/elsewhere/x.cpp.ast")
	assert.False(t, ok)

	assert.Equal(t, filepath.Join("/tmp/cache", "src", "x.cpp")+".ast", ArtifactPath("/tmp/cache", "src/x.cpp"))
}
