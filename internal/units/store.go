// Package units is the keyed cache of parsed translation units and its
// on-disk layout of one .ast artifact per unit.
package units

import (
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/jward/cxxnav/internal/ast"
	"github.com/jward/cxxnav/internal/metrics"
)

// Ext is the suffix of persisted units.
const Ext = ".ast"

// DefaultArgs are prepended to every parse.
var DefaultArgs = []string{"-x", "c++", "-std=c++14"}

// Store maps keys to parsed translation units. It does no locking; callers
// serialize access.
type Store struct {
	frontend       ast.Frontend
	logger         *slog.Logger
	defaultArgs    []string
	systemIncludes []string
	units          map[string]ast.TranslationUnit
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger. Defaults to slog.Default.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithDefaultArgs replaces DefaultArgs.
func WithDefaultArgs(args []string) Option {
	return func(s *Store) { s.defaultArgs = slices.Clone(args) }
}

// WithSystemIncludes sets the precomputed system include flags appended
// after the default arguments.
func WithSystemIncludes(flags []string) Option {
	return func(s *Store) { s.systemIncludes = slices.Clone(flags) }
}

// New creates an empty store that parses through fe.
func New(fe ast.Frontend, opts ...Option) *Store {
	s := &Store{
		frontend:    fe,
		logger:      slog.Default(),
		defaultArgs: slices.Clone(DefaultArgs),
		units:       make(map[string]ast.TranslationUnit),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Key normalizes a key to a cleaned, slash-separated, rooted path so that
// "a.cpp", "/a.cpp" and "./a.cpp" name the same unit and the .ast layout
// round-trips.
func Key(key string) string {
	return path.Clean("/" + filepath.ToSlash(key))
}

// Parse parses sourcePath and stores the result under key. On failure the
// error is logged and any previous unit for key is kept.
func (s *Store) Parse(key, sourcePath string, args []string, workingDir string) {
	key = Key(key)
	full := make([]string, 0, len(s.defaultArgs)+len(s.systemIncludes)+len(args))
	full = append(full, s.defaultArgs...)
	full = append(full, s.systemIncludes...)
	full = append(full, args...)

	start := time.Now()
	tu, err := s.frontend.Parse(sourcePath, full, workingDir)
	metrics.ParseDuration.Observe(time.Since(start).Seconds())
	metrics.ParseTotal.WithLabelValues(metrics.Outcome(err)).Inc()
	if err != nil {
		s.logger.Error("parse failed",
			"key", key, "path", sourcePath, "kind", ast.KindOf(err).String(), "error", err)
		return
	}

	s.units[key] = tu
	s.logger.Debug("parsed", "key", key, "path", sourcePath, "diagnostics", len(tu.Diagnostics()))
	s.updateGauge()
}

// Get returns the unit stored under key.
func (s *Store) Get(key string) (ast.TranslationUnit, bool) {
	tu, ok := s.units[Key(key)]
	return tu, ok
}

// Len returns the number of stored units.
func (s *Store) Len() int {
	return len(s.units)
}

// Keys returns the stored keys in sorted order.
func (s *Store) Keys() []string {
	keys := make([]string, 0, len(s.units))
	for k := range s.units {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Units returns the stored units in key order.
func (s *Store) Units() []ast.TranslationUnit {
	out := make([]ast.TranslationUnit, 0, len(s.units))
	for _, k := range s.Keys() {
		out = append(out, s.units[k])
	}
	return out
}

// Drop removes key.
func (s *Store) Drop(key string) {
	delete(s.units, Key(key))
	s.updateGauge()
}

// DropAll removes every unit.
func (s *Store) DropAll() {
	clear(s.units)
	s.updateGauge()
}

// Diagnostics returns the diagnostics of key, or nil for an unknown key.
func (s *Store) Diagnostics(key string) []ast.Diagnostic {
	tu, ok := s.Get(key)
	if !ok {
		return nil
	}
	return tu.Diagnostics()
}

// ArtifactPath returns where SaveAll writes key under root.
func ArtifactPath(root, key string) string {
	return filepath.Join(root, filepath.FromSlash(strings.TrimPrefix(Key(key), "/"))) + Ext
}

// KeyFromArtifact recovers the key of an artifact found under root.
func KeyFromArtifact(root, artifact string) (string, bool) {
	rel, err := filepath.Rel(filepath.Clean(root), artifact)
	if err != nil || strings.HasPrefix(rel, "..") || !strings.HasSuffix(rel, Ext) {
		return "", false
	}
	return Key(strings.TrimSuffix(rel, Ext)), true
}

// SaveAll writes every unit to root. Each unit is attempted; it reports
// false if any failed.
func (s *Store) SaveAll(root string) bool {
	ok := true
	for _, key := range s.Keys() {
		dst := ArtifactPath(root, key)
		err := os.MkdirAll(filepath.Dir(dst), 0o755)
		if err == nil {
			err = s.units[key].Save(dst)
		}
		metrics.PersistTotal.WithLabelValues("save", metrics.Outcome(err)).Inc()
		if err != nil {
			s.logger.Error("save failed", "key", key, "path", dst, "error", err)
			ok = false
			continue
		}
		s.logger.Debug("saved", "key", key, "path", dst)
	}
	return ok
}

// LoadAll clears the store and loads every artifact under root. Each
// artifact is attempted; it reports false if any failed or root could not
// be walked.
func (s *Store) LoadAll(root string) bool {
	s.DropAll()
	ok := true
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(p, Ext) {
			return nil
		}
		key, valid := KeyFromArtifact(root, p)
		if !valid {
			return nil
		}
		tu, err := s.frontend.Load(p)
		metrics.PersistTotal.WithLabelValues("load", metrics.Outcome(err)).Inc()
		if err != nil {
			s.logger.Error("load failed", "key", key, "path", p, "kind", ast.KindOf(err).String(), "error", err)
			ok = false
			return nil
		}
		s.units[key] = tu
		return nil
	})
	if err != nil {
		s.logger.Error("load walk failed", "root", root, "error", err)
		ok = false
	}
	s.updateGauge()
	return ok
}

func (s *Store) updateGauge() {
	metrics.UnitsResident.Set(float64(len(s.units)))
}
