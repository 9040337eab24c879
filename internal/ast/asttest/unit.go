package asttest

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"slices"

	"github.com/jward/cxxnav/internal/ast"
)

// Unit is an in-memory translation unit.
type Unit struct {
	Path    string
	Root    *Node
	Diags   []ast.Diagnostic
	ArgList []string
	SaveErr error

	ann map[*File][]*Node
}

// NewUnit wraps top-level nodes in a translation-unit root and annotates
// every token with the innermost node covering it.
func NewUnit(main *File, top ...*Node) *Unit {
	root := &Node{K: ast.KindTranslationUnit, Name: main.Path, Ext: main.Whole(), Kids: top, file: main}
	u := &Unit{Path: main.Path, Root: root, ann: make(map[*File][]*Node)}
	u.attach(root)
	return u
}

func (u *Unit) attach(n *Node) {
	n.unit = u
	if n.file != nil && n.K != ast.KindTranslationUnit {
		marks, ok := u.ann[n.file]
		if !ok {
			marks = make([]*Node, len(n.file.toks))
			u.ann[n.file] = marks
		}
		for i, t := range n.file.toks {
			if t.Extent.Start.Offset >= n.Ext.Start.Offset && t.Extent.End.Offset <= n.Ext.End.Offset {
				marks[i] = n
			}
		}
	}
	for _, k := range n.Kids {
		u.attach(k)
	}
}

func (u *Unit) annotation(f *File, i int) ast.Cursor {
	marks := u.ann[f]
	if marks == nil || marks[i] == nil {
		return nil
	}
	return marks[i]
}

func (u *Unit) Spelling() string              { return u.Path }
func (u *Unit) Cursor() ast.Cursor            { return u.Root }
func (u *Unit) Diagnostics() []ast.Diagnostic { return u.Diags }
func (u *Unit) Args() []string                { return u.ArgList }

// CursorAt returns the deepest node in file whose extent covers the position.
func (u *Unit) CursorAt(file string, line, column int) ast.Cursor {
	var best *Node
	var walk func(n *Node)
	walk = func(n *Node) {
		for _, k := range n.Kids {
			if k.Ext.Start.File == file && covers(k.Ext, line, column) {
				best = k
				walk(k)
				return
			}
		}
	}
	walk(u.Root)
	if best == nil {
		return u.Root
	}
	return best
}

func covers(e ast.Extent, line, col int) bool {
	afterStart := line > e.Start.Line || (line == e.Start.Line && col >= e.Start.Column)
	beforeEnd := line < e.End.Line || (line == e.End.Line && col < e.End.Column)
	return afterStart && beforeEnd
}

type savedUnit struct {
	Path string `json:"path"`
}

// Save writes a marker file naming the unit; Frontend.Load resolves it.
func (u *Unit) Save(path string) error {
	if u.SaveErr != nil {
		return u.SaveErr
	}
	b, err := json.Marshal(savedUnit{Path: u.Path})
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// Frontend serves pre-built units by source path.
type Frontend struct {
	Units  map[string]*Unit
	Parsed []string
}

// NewFrontend registers units under their main file path.
func NewFrontend(units ...*Unit) *Frontend {
	fe := &Frontend{Units: make(map[string]*Unit)}
	for _, u := range units {
		fe.Units[u.Path] = u
	}
	return fe
}

func (fe *Frontend) Parse(path string, args []string, workingDir string) (ast.TranslationUnit, error) {
	fe.Parsed = append(fe.Parsed, path)
	u, ok := fe.Units[path]
	if !ok {
		return nil, &ast.Error{Op: "parse", Path: path, Kind: ast.ErrorFailure, Err: fs.ErrNotExist}
	}
	u.ArgList = slices.Clone(args)
	return u, nil
}

func (fe *Frontend) Load(path string) (ast.TranslationUnit, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, &ast.Error{Op: "load", Path: path, Kind: ast.ErrorASTRead, Err: err}
	}
	var su savedUnit
	if err := json.Unmarshal(b, &su); err != nil {
		return nil, &ast.Error{Op: "load", Path: path, Kind: ast.ErrorASTRead, Err: err}
	}
	u, ok := fe.Units[su.Path]
	if !ok {
		return nil, &ast.Error{Op: "load", Path: path, Kind: ast.ErrorASTRead, Err: fmt.Errorf("unknown unit %s", su.Path)}
	}
	return u, nil
}
