// Package classify assigns semantic categories to AST nodes, looking
// through references, unresolved overload sets and dependent member
// accesses to the declaration a node stands for.
package classify

import (
	"github.com/jward/cxxnav/internal/ast"
	"github.com/jward/cxxnav/internal/resolve"
	"github.com/jward/cxxnav/internal/traverse"
)

// Resolution says how a node's effective declaration is found. It is one
// of Direct, Dependent or Overload.
type Resolution interface {
	resolution()
}

// Direct nodes are described by Cursor, which is the referenced
// declaration when there is one and the node itself otherwise.
type Direct struct {
	Cursor ast.Cursor
}

// Dependent nodes have a template-dependent type and go through the
// dependent construct resolver.
type Dependent struct {
	Context traverse.Context
}

// Overload nodes refer to an unresolved overload set. Marker is the set
// itself; Candidates is never empty.
type Overload struct {
	Marker     ast.Cursor
	Candidates []ast.Cursor
}

func (Direct) resolution()    {}
func (Dependent) resolution() {}
func (Overload) resolution()  {}

// Target returns the declaration c refers to, or c itself.
func Target(c ast.Cursor) ast.Cursor {
	if ref := c.Referenced(); ref != nil {
		return ref
	}
	return c
}

// Plan decides how the node in ctx resolves.
func Plan(ctx traverse.Context) Resolution {
	c := ctx.Cursor
	if c.TypeKind() == ast.TypeDependent {
		return Dependent{Context: ctx}
	}
	target := Target(c)
	if target.Kind() == ast.KindOverloadedDeclRef {
		if n := target.NumOverloadedDecls(); n > 0 {
			candidates := make([]ast.Cursor, 0, n)
			for i := range n {
				candidates = append(candidates, target.OverloadedDecl(i))
			}
			return Overload{Marker: target, Candidates: candidates}
		}
	}
	return Direct{Cursor: target}
}

// Info is the effective description of a node.
type Info struct {
	ID       ID
	Kind     ast.CursorKind
	Spelling string
	Location ast.SourceLocation
}

// Describe classifies the node in ctx and reports the name and location of
// the declaration it stands for.
func Describe(ctx traverse.Context) Info {
	switch r := Plan(ctx).(type) {
	case Dependent:
		res := resolve.Dependent(r.Context)
		return Info{ID: FromKind(res.Kind), Kind: res.Kind, Spelling: res.Spelling, Location: res.Location}
	case Overload:
		kind := r.Candidates[0].Kind()
		return Info{ID: FromKind(kind), Kind: kind, Spelling: r.Marker.Spelling(), Location: r.Marker.Location()}
	case Direct:
		kind := r.Cursor.Kind()
		return Info{ID: FromKind(kind), Kind: kind, Spelling: r.Cursor.Spelling(), Location: r.Cursor.Location()}
	}
	return Info{ID: Unsupported}
}

// Classify returns the semantic category of the node in ctx.
func Classify(ctx traverse.Context) ID {
	return Describe(ctx).ID
}

// Name returns the spelling of the declaration the node stands for.
func Name(ctx traverse.Context) string {
	return Describe(ctx).Spelling
}

// Line returns the 1-based line of the declaration the node stands for.
func Line(ctx traverse.Context) int {
	return Describe(ctx).Location.Line
}

// Column returns the 1-based column of the declaration the node stands for.
func Column(ctx traverse.Context) int {
	return Describe(ctx).Location.Column
}
