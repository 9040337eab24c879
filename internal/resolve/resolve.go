// Package resolve recovers the kind, name and location of member accesses
// whose type depends on an uninstantiated template parameter. Front-ends
// report such nodes with an unreliable spelling and location; the token
// stream over the node's extent still identifies the member.
package resolve

import (
	"github.com/jward/cxxnav/internal/ast"
	"github.com/jward/cxxnav/internal/traverse"
)

// Result is the effective view of a node.
type Result struct {
	Kind     ast.CursorKind
	Spelling string
	Location ast.SourceLocation
	// Resolved is false when the native values were returned unchanged.
	Resolved bool
}

// Native returns the node's own kind, spelling and location.
func Native(c ast.Cursor) Result {
	return Result{Kind: c.Kind(), Spelling: c.Spelling(), Location: c.Location()}
}

// Dependent resolves a member access expression. Nodes of any other kind,
// and member accesses with no matching token, resolve to their native
// values.
func Dependent(ctx traverse.Context) Result {
	node := ctx.Cursor
	if node.Kind() != ast.KindMemberRefExpr {
		return Native(node)
	}

	tok, ok := memberToken(node)
	if !ok {
		return Native(node)
	}

	kind := ast.KindFieldDecl
	if ctx.Parent != nil && ctx.Parent.Kind() == ast.KindCallExpr {
		kind = ast.KindCXXMethod
	}
	return Result{Kind: kind, Spelling: tok.Spelling, Location: tok.Location(), Resolved: true}
}

// memberToken finds the identifier token annotated with this very member
// access. Matching the extent as well as the kind rules out tokens of
// nested or enclosing accesses that share part of the text.
func memberToken(node ast.Cursor) (ast.Token, bool) {
	ext := node.Extent()
	for _, tok := range node.Tokens() {
		if tok.Kind != ast.TokenIdentifier || tok.Cursor == nil {
			continue
		}
		if tok.Cursor.Kind() == ast.KindMemberRefExpr && tok.Cursor.Extent() == ext {
			return tok, true
		}
	}
	return ast.Token{}, false
}
