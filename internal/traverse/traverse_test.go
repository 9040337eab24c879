package traverse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/cxxnav/internal/ast"
	"github.com/jward/cxxnav/internal/ast/asttest"
)

func unitA(t *testing.T) ast.TranslationUnit {
	t.Helper()
	fx := asttest.NewCalls()
	tu, err := fx.Frontend.Parse(fx.A.Path, nil, "")
	require.NoError(t, err)
	return tu
}

func TestWalk_AttachesImmediateParent(t *testing.T) {
	t.Parallel()
	tu := unitA(t)

	visited := 0
	WalkUnit(tu, func(ctx Context) Action {
		visited++
		require.NotNil(t, ctx.Parent)
		assert.Same(t, tu, ctx.Unit)

		found := false
		for _, c := range ctx.Parent.Children() {
			if c == ctx.Cursor {
				found = true
			}
		}
		assert.True(t, found, "%s is not a child of its reported parent", ctx.Cursor.Kind())
		return Recurse
	})
	assert.Greater(t, visited, 20)
}

func TestWalk_ContinueSkipsChildren(t *testing.T) {
	t.Parallel()
	tu := unitA(t)

	var kinds []ast.CursorKind
	WalkUnit(tu, func(ctx Context) Action {
		kinds = append(kinds, ctx.Cursor.Kind())
		return Continue
	})
	assert.Len(t, kinds, len(tu.Cursor().Children()))
	for _, k := range kinds {
		assert.Equal(t, ast.KindFunctionDecl, k)
	}
}

func TestWalk_BreakStopsEverything(t *testing.T) {
	t.Parallel()
	tu := unitA(t)

	calls := 0
	completed := WalkUnit(tu, func(ctx Context) Action {
		calls++
		if ctx.Cursor.Kind() == ast.KindParmDecl {
			return Break
		}
		return Recurse
	})
	assert.False(t, completed)
	// foo(int), then its parameter.
	assert.Equal(t, 2, calls)
}

func TestWalk_DepthFirstOrder(t *testing.T) {
	t.Parallel()
	tu := unitA(t)

	var spellings []string
	WalkUnit(tu, func(ctx Context) Action {
		if ctx.Cursor.Kind() == ast.KindFunctionDecl || ctx.Cursor.Kind() == ast.KindParmDecl {
			spellings = append(spellings, ctx.Cursor.Spelling())
		}
		return Recurse
	})
	assert.Equal(t, []string{"foo", "x", "foo", "y", "one", "two", "three", "main"}, spellings)
}

func TestChildren(t *testing.T) {
	t.Parallel()
	tu := unitA(t)

	call, ok := Find(tu, tu.Cursor(), func(ctx Context) bool {
		return ctx.Cursor.Kind() == ast.KindCallExpr
	})
	require.True(t, ok)

	kids := Children(tu, call.Cursor)
	require.Len(t, kids, 2)
	assert.Equal(t, ast.KindUnexposedExpr, kids[0].Cursor.Kind())
	assert.Equal(t, ast.KindIntegerLiteral, kids[1].Cursor.Kind())
	for _, k := range kids {
		assert.Same(t, call.Cursor, k.Parent)
		assert.Same(t, tu, k.Unit)
	}
}

func TestFind_Missing(t *testing.T) {
	t.Parallel()
	tu := unitA(t)

	_, ok := Find(tu, tu.Cursor(), func(ctx Context) bool {
		return ctx.Cursor.Kind() == ast.KindNamespace
	})
	assert.False(t, ok)
}

func TestWalk_NilRoot(t *testing.T) {
	t.Parallel()
	assert.True(t, Walk(nil, nil, func(Context) Action { return Recurse }))
}
