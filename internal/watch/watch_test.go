package watch

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterMatch(t *testing.T) {
	f, err := NewFilter([]string{"src/**"}, []string{"**/*_gen.cpp", "src/vendor"})
	require.NoError(t, err)

	tests := []struct {
		rel  string
		want bool
	}{
		{"src/a.cpp", true},
		{"src/sub/b.hpp", true},
		{"src/a.go", false},
		{"lib/a.cpp", false},
		{"src/x_gen.cpp", false},
	}
	for _, tt := range tests {
		t.Run(tt.rel, func(t *testing.T) {
			assert.Equal(t, tt.want, f.Match(tt.rel))
		})
	}
	assert.True(t, f.Excluded("src/vendor"))
	assert.False(t, f.Excluded("src"))
}

func TestFilterNoInclude(t *testing.T) {
	f, err := NewFilter(nil, nil)
	require.NoError(t, err)
	assert.True(t, f.Match("deep/dir/x.cc"))
	assert.False(t, f.Match("README.md"))
}

func TestFilterInvalid(t *testing.T) {
	_, err := NewFilter([]string{"[a"}, nil)
	assert.ErrorContains(t, err, "invalid include pattern")
	_, err = NewFilter(nil, []string{"[b"})
	assert.ErrorContains(t, err, "invalid exclude pattern")
}

func waitBatch(t *testing.T, ch <-chan Batch, want func(Batch) bool) Batch {
	t.Helper()
	timeout := time.After(3 * time.Second)
	for {
		select {
		case b := <-ch:
			if want(b) {
				return b
			}
		case <-timeout:
			t.Fatal("timed out waiting for change batch")
			return Batch{}
		}
	}
}

func TestWatcher(t *testing.T) {
	root := t.TempDir()
	filter, err := NewFilter(nil, []string{"skip"})
	require.NoError(t, err)

	batches := make(chan Batch, 16)
	w, err := New(root, filter, 50*time.Millisecond, func(b Batch) { batches <- b })
	require.NoError(t, err)
	require.NoError(t, w.Start())
	t.Cleanup(func() { w.Close() })

	src := filepath.Join(root, "a.cpp")
	require.NoError(t, os.WriteFile(src, []byte("int a;\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0o644))

	b := waitBatch(t, batches, func(b Batch) bool { return slices.Contains(b.Changed, src) })
	assert.NotContains(t, b.Changed, filepath.Join(root, "notes.txt"))
	assert.Empty(t, b.Removed)

	// Files in a directory created after Start are picked up.
	sub := filepath.Join(root, "sub")
	require.NoError(t, os.Mkdir(sub, 0o755))
	nested := filepath.Join(sub, "b.h")
	require.NoError(t, os.WriteFile(nested, []byte("int b;\n"), 0o644))
	waitBatch(t, batches, func(b Batch) bool { return slices.Contains(b.Changed, nested) })

	require.NoError(t, os.Remove(src))
	b = waitBatch(t, batches, func(b Batch) bool { return slices.Contains(b.Removed, src) })
	assert.NotContains(t, b.Changed, src)
}

func TestWatcherExcludedDir(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "skip"), 0o755))
	filter, err := NewFilter(nil, []string{"skip"})
	require.NoError(t, err)

	batches := make(chan Batch, 16)
	w, err := New(root, filter, 50*time.Millisecond, func(b Batch) { batches <- b })
	require.NoError(t, err)
	require.NoError(t, w.Start())
	t.Cleanup(func() { w.Close() })

	require.NoError(t, os.WriteFile(filepath.Join(root, "skip", "x.cpp"), []byte(""), 0o644))
	select {
	case b := <-batches:
		t.Fatalf("unexpected batch %+v", b)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcherCloseWithoutStart(t *testing.T) {
	w, err := New(t.TempDir(), nil, time.Second, nil)
	require.NoError(t, err)
	assert.NoError(t, w.Close())
	assert.NoError(t, w.Close())
}
