// Package refs finds every occurrence of a symbol across the resident
// translation units.
package refs

import (
	"log/slog"
	"slices"
	"time"

	"github.com/jward/cxxnav/internal/ast"
	"github.com/jward/cxxnav/internal/classify"
	"github.com/jward/cxxnav/internal/metrics"
	"github.com/jward/cxxnav/internal/traverse"
)

// Source supplies the units to search.
type Source interface {
	Get(key string) (ast.TranslationUnit, bool)
	Units() []ast.TranslationUnit
}

// Result is a set of confirmed occurrence locations.
type Result map[ast.SourceLocation]struct{}

// Add inserts loc.
func (r Result) Add(loc ast.SourceLocation) {
	r[loc] = struct{}{}
}

// Has reports whether loc is in the set.
func (r Result) Has(loc ast.SourceLocation) bool {
	_, ok := r[loc]
	return ok
}

// Sorted returns the locations in file, line, column order.
func (r Result) Sorted() []ast.SourceLocation {
	out := make([]ast.SourceLocation, 0, len(r))
	for loc := range r {
		out = append(out, loc)
	}
	slices.SortFunc(out, func(a, b ast.SourceLocation) int {
		switch {
		case a.Less(b):
			return -1
		case b.Less(a):
			return 1
		}
		return 0
	})
	return out
}

// Target identifies the symbol being searched for.
type Target struct {
	Spelling string
	USR      string
}

// TargetOf returns the symbol a cursor stands for.
func TargetOf(c ast.Cursor) Target {
	t := classify.Target(c)
	return Target{Spelling: t.Spelling(), USR: t.USR()}
}

// Finder answers find-all-references queries.
type Finder struct {
	src    Source
	logger *slog.Logger
}

// NewFinder creates a Finder over src.
func NewFinder(src Source, logger *slog.Logger) *Finder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Finder{src: src, logger: logger}
}

// FindAll returns the locations in file of every occurrence of the symbol
// at line and column. An unknown file yields an empty result.
func (f *Finder) FindAll(file string, line, column int) Result {
	start := time.Now()
	result := make(Result)
	defer func() {
		metrics.ReferenceQueryDuration.Observe(time.Since(start).Seconds())
		metrics.ReferencesFound.Observe(float64(len(result)))
	}()

	tu, ok := f.src.Get(file)
	if !ok {
		f.logger.Debug("references: unknown file", "file", file)
		return result
	}
	// The key may be spelled differently from the path the unit was
	// parsed from; positions are always in the unit's main file.
	main := tu.Spelling()
	origin := tu.CursorAt(main, line, column)
	if origin == nil {
		return result
	}
	target := TargetOf(origin)
	f.logger.Debug("references", "file", main, "line", line, "column", column,
		"spelling", target.Spelling, "usr", target.USR)

	for _, unit := range f.src.Units() {
		Collect(unit, main, target, result)
	}
	return result
}

// Collect adds to result every confirmed occurrence of target in unit
// located in file.
func Collect(unit ast.TranslationUnit, file string, target Target, result Result) {
	traverse.WalkUnit(unit, func(ctx traverse.Context) traverse.Action {
		node := ctx.Cursor
		if node.Location().File != file {
			return traverse.Recurse
		}
		if TargetOf(node) != target {
			return traverse.Recurse
		}
		if confirmed(node, target.Spelling) {
			result.Add(node.Location())
		}
		return traverse.Recurse
	})
}

// confirmed checks the token at the node's own location. Call expressions
// and their callee references share a location, and a member access is
// located at its base object; only nodes whose location token spells the
// target count.
func confirmed(node ast.Cursor, spelling string) bool {
	loc := node.Location()
	for _, tok := range node.Tokens() {
		if tok.Location() == loc {
			return tok.Spelling == spelling
		}
	}
	return false
}
