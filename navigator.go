package cxxnav

import (
	"log/slog"
	"path/filepath"
	"slices"

	"github.com/jward/cxxnav/internal/ast"
	"github.com/jward/cxxnav/internal/frontend"
	"github.com/jward/cxxnav/internal/refs"
	"github.com/jward/cxxnav/internal/units"
)

// Navigator answers navigation queries over a set of parsed translation
// units. It does no locking; callers serialize access.
type Navigator struct {
	frontend       ast.Frontend
	logger         *slog.Logger
	defaultArgs    []string
	systemIncludes []string
	workingDir     string

	units  *units.Store
	finder *refs.Finder
}

// Option configures a Navigator.
type Option func(*Navigator)

// WithFrontend replaces the tree-sitter front-end.
func WithFrontend(fe ast.Frontend) Option {
	return func(n *Navigator) { n.frontend = fe }
}

// WithLogger sets the logger for the navigator and its components.
func WithLogger(l *slog.Logger) Option {
	return func(n *Navigator) { n.logger = l }
}

// WithDefaultArgs replaces the arguments prepended to every parse
// (-x c++ -std=c++14).
func WithDefaultArgs(args ...string) Option {
	return func(n *Navigator) { n.defaultArgs = slices.Clone(args) }
}

// WithSystemIncludes sets the system include flags appended after the
// default arguments, for example "-isystem /usr/include/c++/12".
func WithSystemIncludes(flags ...string) Option {
	return func(n *Navigator) { n.systemIncludes = slices.Clone(flags) }
}

// WithWorkingDir sets the directory ParseFile resolves relative arguments
// against. By default each file's own directory is used.
func WithWorkingDir(dir string) Option {
	return func(n *Navigator) { n.workingDir = dir }
}

// New creates an empty Navigator.
func New(opts ...Option) *Navigator {
	n := &Navigator{
		logger:      slog.Default(),
		defaultArgs: slices.Clone(units.DefaultArgs),
	}
	for _, opt := range opts {
		opt(n)
	}
	if n.frontend == nil {
		n.frontend = frontend.New(frontend.WithLogger(n.logger))
	}
	n.units = units.New(n.frontend,
		units.WithLogger(n.logger),
		units.WithDefaultArgs(n.defaultArgs),
		units.WithSystemIncludes(n.systemIncludes),
	)
	n.finder = refs.NewFinder(n.units, n.logger)
	return n
}

// Parse parses sourcePath and stores the unit under key. Failures are
// logged and leave any previous unit for key in place.
func (n *Navigator) Parse(key, sourcePath string, args []string, workingDir string) {
	n.units.Parse(key, sourcePath, args, workingDir)
}

// ParseFile parses path keyed by its absolute path, so that reference
// queries can name the file by the paths its cursors carry. It returns
// the key.
func (n *Navigator) ParseFile(path string, args []string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = filepath.Clean(path)
	}
	wd := n.workingDir
	if wd == "" {
		wd = filepath.Dir(abs)
	}
	n.units.Parse(abs, abs, args, wd)
	return units.Key(abs)
}

// Unit returns the unit stored under key.
func (n *Navigator) Unit(key string) (TranslationUnit, bool) {
	return n.units.Get(key)
}

// Keys returns the stored keys in sorted order.
func (n *Navigator) Keys() []string {
	return n.units.Keys()
}

// Len returns the number of stored units.
func (n *Navigator) Len() int {
	return n.units.Len()
}

// Drop removes the unit stored under key, if any.
func (n *Navigator) Drop(key string) {
	n.units.Drop(key)
}

// DropAll removes every unit.
func (n *Navigator) DropAll() {
	n.units.DropAll()
}

// SaveAll writes every unit to <root>/<key>.ast. It attempts every unit
// and reports whether all of them were written.
func (n *Navigator) SaveAll(root string) bool {
	return n.units.SaveAll(root)
}

// LoadAll replaces the stored units with the .ast artifacts under root. It
// reports whether every artifact loaded.
func (n *Navigator) LoadAll(root string) bool {
	return n.units.LoadAll(root)
}

// Diagnostics returns the diagnostics of the unit stored under key, or nil
// if there is none.
func (n *Navigator) Diagnostics(key string) []Diagnostic {
	return n.units.Diagnostics(key)
}
