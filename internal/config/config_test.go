package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cxxnav.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
[parser]
default_args = ["-x", "c++", "-std=c++17"]
system_includes = ["-isystem", "/usr/include/c++/12"]
args = ["-Iinclude", "-DNDEBUG"]
working_dir = "/src/project"

[store]
root_dir = "out/ast"

[sources]
include = ["src/**"]
exclude = ["**/third_party/**"]

[watch]
debounce = "1s"

[log]
level = "debug"

[metrics]
address = "127.0.0.1:9102"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"-x", "c++", "-std=c++17"}, cfg.Parser.DefaultArgs)
	assert.Equal(t, []string{"-isystem", "/usr/include/c++/12"}, cfg.Parser.SystemIncludes)
	assert.Equal(t, []string{"-Iinclude", "-DNDEBUG"}, cfg.Parser.Args)
	assert.Equal(t, "/src/project", cfg.Parser.WorkingDir)
	assert.Equal(t, "out/ast", cfg.Store.RootDir)
	assert.Equal(t, []string{"src/**"}, cfg.Sources.Include)
	assert.Equal(t, time.Second, cfg.Watch.Debounce)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	assert.Equal(t, "127.0.0.1:9102", cfg.Metrics.Address)
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `[parser]`))
	require.NoError(t, err)
	assert.Equal(t, ".cxxnav", cfg.Store.RootDir)
	assert.Equal(t, 500*time.Millisecond, cfg.Watch.Debounce)
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
	assert.Empty(t, cfg.Parser.DefaultArgs)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"level", "[log]\nlevel = \"loud\"\n", "log.level"},
		{"pattern", "[sources]\ninclude = [\"[abc\"]\n", "invalid pattern"},
		{"debounce", "[watch]\ndebounce = \"5m\"\n", "watch.debounce"},
		{"syntax", "[parser\n", "config:"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadOrDefault(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadOrDefault("")
	require.NoError(t, err)
	assert.Equal(t, ".cxxnav", cfg.Store.RootDir)

	_, err = LoadOrDefault("missing.toml")
	assert.Error(t, err)
}
