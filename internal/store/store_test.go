package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.ast")
	s, err := NewStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, s.Migrate())
	t.Cleanup(func() { s.Close() })
	return s
}

func testSnapshot() *Snapshot {
	return &Snapshot{
		MainFile:   "/src/a.cpp",
		WorkingDir: "/src",
		Args:       []string{"-x", "c++", "-std=c++14", "-I/src/include"},
		Sources: []Source{
			{Path: "/src/a.cpp", Content: []byte("#include \"a.h\"\nint main() { return f(); }\n")},
			{Path: "/src/include/a.h", Content: []byte("int f();\n")},
		},
		SavedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

// =============================================================================
// Schema & Lifecycle
// =============================================================================

func TestMigrate_AllTablesExist(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	for _, table := range []string{"unit", "args", "sources"} {
		var name string
		err := s.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
		assert.Equal(t, table, name)
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	require.NoError(t, s.Migrate())
}

// =============================================================================
// Snapshots
// =============================================================================

func TestSnapshot_WriteAndRead(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	want := testSnapshot()
	require.NoError(t, s.WriteSnapshot(want))

	got, err := s.ReadSnapshot()
	require.NoError(t, err)
	assert.Equal(t, want.MainFile, got.MainFile)
	assert.Equal(t, want.WorkingDir, got.WorkingDir)
	assert.Equal(t, want.Args, got.Args)
	assert.True(t, want.SavedAt.Equal(got.SavedAt))
	require.Len(t, got.Sources, 2)
	assert.Equal(t, "/src/include/a.h", got.Sources[1].Path)
	assert.Equal(t, ContentHash(want.Sources[1].Content), got.Sources[1].Hash)

	content, ok := got.Lookup("/src/a.cpp")
	require.True(t, ok)
	assert.Equal(t, want.Sources[0].Content, content)
	_, ok = got.Lookup("/src/missing.h")
	assert.False(t, ok)
}

func TestSnapshot_WriteReplaces(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	require.NoError(t, s.WriteSnapshot(testSnapshot()))

	next := &Snapshot{MainFile: "/src/b.cpp", Sources: []Source{{Path: "/src/b.cpp", Content: []byte("int b;\n")}}}
	require.NoError(t, s.WriteSnapshot(next))

	got, err := s.ReadSnapshot()
	require.NoError(t, err)
	assert.Equal(t, "/src/b.cpp", got.MainFile)
	assert.Empty(t, got.Args)
	assert.Len(t, got.Sources, 1)
}

func TestSnapshot_Empty(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	_, err := s.ReadSnapshot()
	assert.ErrorIs(t, err, ErrNoSnapshot)
}

func TestSnapshot_VersionMismatch(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	require.NoError(t, s.WriteSnapshot(testSnapshot()))
	_, err := s.db.Exec("UPDATE unit SET version = ?", SchemaVersion+1)
	require.NoError(t, err)

	_, err = s.ReadSnapshot()
	assert.ErrorIs(t, err, ErrVersion)
}

func TestSnapshot_CorruptContent(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	require.NoError(t, s.WriteSnapshot(testSnapshot()))
	_, err := s.db.Exec("UPDATE sources SET content = ? WHERE path = ?", []byte("tampered"), "/src/include/a.h")
	require.NoError(t, err)

	_, err = s.ReadSnapshot()
	assert.ErrorIs(t, err, ErrCorrupt)
}

// =============================================================================
// File helpers
// =============================================================================

func TestSaveLoad(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "a.cpp.ast")
	require.NoError(t, Save(path, testSnapshot()))
	// Saving again overwrites.
	require.NoError(t, Save(path, testSnapshot()))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/src/a.cpp", got.MainFile)
	assert.Len(t, got.Sources, 2)
}

func TestLoad_Missing(t *testing.T) {
	t.Parallel()
	_, err := Load(filepath.Join(t.TempDir(), "nope.ast"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_NotADatabase(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "bad.ast")
	require.NoError(t, os.WriteFile(path, []byte("this is not sqlite"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestContentHash(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", ContentHash(nil))
	assert.NotEqual(t, ContentHash([]byte("a")), ContentHash([]byte("b")))
}
