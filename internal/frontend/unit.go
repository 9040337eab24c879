package frontend

import (
	"slices"
	"time"

	"github.com/jward/cxxnav/internal/ast"
	"github.com/jward/cxxnav/internal/store"
)

type unit struct {
	spelling   string
	workingDir string
	args       []string
	root       *cursor
	diags      []ast.Diagnostic
	files      map[string]*sourceFile
	order      []string
	defs       map[string]*cursor
}

func newUnit(mainFile, workingDir string, args []string) *unit {
	return &unit{
		spelling:   mainFile,
		workingDir: workingDir,
		args:       slices.Clone(args),
		files:      make(map[string]*sourceFile),
		defs:       make(map[string]*cursor),
	}
}

func (u *unit) Spelling() string              { return u.spelling }
func (u *unit) Cursor() ast.Cursor            { return u.root }
func (u *unit) Diagnostics() []ast.Diagnostic { return u.diags }
func (u *unit) Args() []string                { return u.args }

func (u *unit) addFile(f *sourceFile) {
	u.files[f.path] = f
	u.order = append(u.order, f.path)
}

func (u *unit) diag(sev ast.Severity, loc ast.SourceLocation, msg string) {
	u.diags = append(u.diags, ast.Diagnostic{Severity: sev, Message: msg, Location: loc})
}

// CursorAt descends from the root through the children covering the
// position, returning the deepest one.
func (u *unit) CursorAt(file string, line, column int) ast.Cursor {
	f, ok := u.files[file]
	if !ok {
		return u.root
	}
	off, ok := f.offset(line, column)
	if !ok {
		return u.root
	}
	best := u.root
	for {
		next := best.childAt(f, off)
		if next == nil {
			return best
		}
		best = next
	}
}

func (c *cursor) childAt(f *sourceFile, off int) *cursor {
	for _, k := range c.children {
		if k.file == f && k.ext.Start.Offset <= off && off < k.ext.End.Offset {
			return k
		}
	}
	return nil
}

// Save writes the unit's snapshot to path.
func (u *unit) Save(path string) error {
	snap := &store.Snapshot{
		MainFile:   u.spelling,
		WorkingDir: u.workingDir,
		Args:       u.args,
		SavedAt:    time.Now(),
	}
	for _, p := range u.order {
		f := u.files[p]
		snap.Sources = append(snap.Sources, store.Source{Path: p, Content: f.content})
	}
	if err := store.Save(path, snap); err != nil {
		return &ast.Error{Op: "save", Path: path, Kind: ast.ErrorFailure, Err: err}
	}
	return nil
}
