// Package traverse walks cursor trees depth-first, handing each visit an
// explicit context that carries the node's parent and owning unit.
package traverse

import "github.com/jward/cxxnav/internal/ast"

// Action tells Walk how to continue after a visit.
type Action int

const (
	// Break stops the whole traversal.
	Break Action = iota
	// Continue skips the node's children and moves to its next sibling.
	Continue
	// Recurse descends into the node's children.
	Recurse
)

func (a Action) String() string {
	switch a {
	case Break:
		return "break"
	case Continue:
		return "continue"
	case Recurse:
		return "recurse"
	default:
		return "unknown"
	}
}

// Context is the per-visit view of a node. It lives only as long as the
// visit; nodes themselves are never modified.
type Context struct {
	Cursor ast.Cursor
	Parent ast.Cursor
	Unit   ast.TranslationUnit
}

// Bare returns a context with no parent or unit, for callers holding a
// cursor obtained outside a traversal.
func Bare(c ast.Cursor) Context {
	return Context{Cursor: c}
}

// Visitor is called once per node, before its children.
type Visitor func(ctx Context) Action

// Walk visits every descendant of root depth-first in native child order.
// root itself is not visited. It reports false if a visitor returned Break.
func Walk(unit ast.TranslationUnit, root ast.Cursor, visit Visitor) bool {
	if root == nil {
		return true
	}
	return walk(unit, root, visit)
}

func walk(unit ast.TranslationUnit, parent ast.Cursor, visit Visitor) bool {
	for _, child := range parent.Children() {
		switch visit(Context{Cursor: child, Parent: parent, Unit: unit}) {
		case Break:
			return false
		case Recurse:
			if !walk(unit, child, visit) {
				return false
			}
		}
	}
	return true
}

// WalkUnit visits every node of unit.
func WalkUnit(unit ast.TranslationUnit, visit Visitor) bool {
	return Walk(unit, unit.Cursor(), visit)
}

// Children returns the direct children of parent, each with its context
// already attached.
func Children(unit ast.TranslationUnit, parent ast.Cursor) []Context {
	var out []Context
	Walk(unit, parent, func(ctx Context) Action {
		out = append(out, ctx)
		return Continue
	})
	return out
}

// Find returns the first node, in traversal order, for which match is true.
func Find(unit ast.TranslationUnit, root ast.Cursor, match func(Context) bool) (Context, bool) {
	var found Context
	var ok bool
	Walk(unit, root, func(ctx Context) Action {
		if match(ctx) {
			found, ok = ctx, true
			return Break
		}
		return Recurse
	})
	return found, ok
}
