package frontend

import (
	"os"
	"sort"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/cxxnav/internal/ast"
)

// Reader supplies file contents to the front-end.
type Reader interface {
	ReadFile(path string) ([]byte, error)
}

type osReader struct{}

func (osReader) ReadFile(path string) ([]byte, error) { return os.ReadFile(path) }

// snapshotReader serves only the sources recorded in a snapshot.
type snapshotReader map[string][]byte

func (r snapshotReader) ReadFile(path string) ([]byte, error) {
	if b, ok := r[path]; ok {
		return b, nil
	}
	return nil, &os.PathError{Op: "open", Path: path, Err: os.ErrNotExist}
}

// sourceFile is one file read into a unit, with its syntax tree and tokens.
type sourceFile struct {
	path    string
	content []byte
	lines   []int
	tree    *sitter.Tree
	tokens  []ast.Token
	owners  []*cursor
}

func newSourceFile(path string, content []byte) *sourceFile {
	f := &sourceFile{path: path, content: content, lines: []int{0}}
	for i, b := range content {
		if b == '\n' {
			f.lines = append(f.lines, i+1)
		}
	}
	return f
}

func (f *sourceFile) loc(off int) ast.SourceLocation {
	line := sort.Search(len(f.lines), func(i int) bool { return f.lines[i] > off })
	return ast.SourceLocation{File: f.path, Line: line, Column: off - f.lines[line-1] + 1, Offset: off}
}

func (f *sourceFile) offset(line, column int) (int, bool) {
	if line < 1 || line > len(f.lines) || column < 1 {
		return 0, false
	}
	off := f.lines[line-1] + column - 1
	if off > len(f.content) {
		return 0, false
	}
	return off, true
}

func (f *sourceFile) start(n *sitter.Node) ast.SourceLocation {
	return f.loc(int(n.StartByte()))
}

func (f *sourceFile) extent(n *sitter.Node) ast.Extent {
	return ast.Extent{Start: f.loc(int(n.StartByte())), End: f.loc(int(n.EndByte()))}
}

func (f *sourceFile) span(from, to *sitter.Node) ast.Extent {
	return ast.Extent{Start: f.loc(int(from.StartByte())), End: f.loc(int(to.EndByte()))}
}

func (f *sourceFile) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Content(f.content)
}
