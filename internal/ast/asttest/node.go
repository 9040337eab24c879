package asttest

import (
	"github.com/jward/cxxnav/internal/ast"
)

// Node is a hand-built cursor.
type Node struct {
	K         ast.CursorKind
	Name      string
	Type      ast.TypeKind
	Loc       ast.SourceLocation
	Ext       ast.Extent
	Ref       *Node
	SelfRef   bool
	Overloads []*Node
	Def       *Node
	Sig       string
	Kids      []*Node

	file *File
	unit *Unit
}

// Decl builds a declaration named by the nth token spelled name. The
// declaration references itself and carries usr.
func (f *File) Decl(kind ast.CursorKind, name string, nth int, usr string, ext ast.Extent, kids ...*Node) *Node {
	tok := f.Tok(name, nth)
	return &Node{
		K: kind, Name: name, Type: ast.TypeUnexposed, Loc: tok.Extent.Start, Ext: ext,
		SelfRef: true, Sig: usr, Kids: kids, file: f,
	}
}

// Ref builds a reference expression at the nth token spelled name.
func (f *File) Ref(kind ast.CursorKind, name string, nth int, target *Node, kids ...*Node) *Node {
	tok := f.Tok(name, nth)
	return &Node{
		K: kind, Name: name, Type: ast.TypeUnexposed, Loc: tok.Extent.Start, Ext: tok.Extent,
		Ref: target, Kids: kids, file: f,
	}
}

// Node builds an arbitrary cursor.
func (f *File) Node(kind ast.CursorKind, spelling string, loc ast.SourceLocation, ext ast.Extent, kids ...*Node) *Node {
	return &Node{K: kind, Name: spelling, Type: ast.TypeInvalid, Loc: loc, Ext: ext, Kids: kids, file: f}
}

// WithType sets the type kind.
func (n *Node) WithType(t ast.TypeKind) *Node {
	n.Type = t
	return n
}

// WithRef sets the referenced declaration.
func (n *Node) WithRef(target *Node) *Node {
	n.Ref = target
	return n
}

// WithOverloads turns n into an overload-set marker referencing itself.
func (n *Node) WithOverloads(candidates ...*Node) *Node {
	n.K = ast.KindOverloadedDeclRef
	n.SelfRef = true
	n.Overloads = candidates
	return n
}

func (n *Node) Kind() ast.CursorKind         { return n.K }
func (n *Node) Spelling() string             { return n.Name }
func (n *Node) TypeKind() ast.TypeKind       { return n.Type }
func (n *Node) Location() ast.SourceLocation { return n.Loc }
func (n *Node) Extent() ast.Extent           { return n.Ext }
func (n *Node) USR() string                  { return n.Sig }
func (n *Node) NumOverloadedDecls() int      { return len(n.Overloads) }

func (n *Node) Referenced() ast.Cursor {
	if n.SelfRef {
		return n
	}
	if n.Ref == nil {
		return nil
	}
	return n.Ref
}

func (n *Node) OverloadedDecl(i int) ast.Cursor {
	if i < 0 || i >= len(n.Overloads) {
		return nil
	}
	return n.Overloads[i]
}

func (n *Node) Definition() ast.Cursor {
	if n.Def != nil {
		return n.Def
	}
	if n.Ref != nil && n.Ref.Def != nil {
		return n.Ref.Def
	}
	return nil
}

func (n *Node) Children() []ast.Cursor {
	out := make([]ast.Cursor, len(n.Kids))
	for i, k := range n.Kids {
		out[i] = k
	}
	return out
}

// Tokens returns the file tokens inside the extent, annotated for the unit
// the node belongs to.
func (n *Node) Tokens() []ast.Token {
	if n.file == nil {
		return nil
	}
	var out []ast.Token
	for i, t := range n.file.toks {
		if t.Extent.Start.Offset < n.Ext.Start.Offset || t.Extent.End.Offset > n.Ext.End.Offset {
			continue
		}
		if n.unit != nil {
			if c := n.unit.annotation(n.file, i); c != nil {
				t.Cursor = c
			}
		}
		out = append(out, t)
	}
	return out
}
