package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/cxxnav/internal/ast"
	"github.com/jward/cxxnav/internal/ast/asttest"
	"github.com/jward/cxxnav/internal/traverse"
)

func contextOf(t *testing.T, u *asttest.Unit, n *asttest.Node) traverse.Context {
	t.Helper()
	ctx, ok := traverse.Find(u, u.Cursor(), func(ctx traverse.Context) bool {
		return ctx.Cursor == ast.Cursor(n)
	})
	require.True(t, ok)
	return ctx
}

func TestDependent_CallParentIsMethod(t *testing.T) {
	t.Parallel()
	fx := asttest.NewTemplate()

	got := Dependent(contextOf(t, fx.Unit, fx.Go))
	assert.True(t, got.Resolved)
	assert.Equal(t, ast.KindCXXMethod, got.Kind)
	assert.Equal(t, "go", got.Spelling)
	assert.Equal(t, fx.File.At("go", 0), got.Location)
}

func TestDependent_NonCallParentIsField(t *testing.T) {
	t.Parallel()
	fx := asttest.NewTemplate()

	ctx := contextOf(t, fx.Unit, fx.Size)
	require.Equal(t, ast.KindCompoundStmt, ctx.Parent.Kind())

	got := Dependent(ctx)
	assert.True(t, got.Resolved)
	assert.Equal(t, ast.KindFieldDecl, got.Kind)
	assert.Equal(t, "size", got.Spelling)
	assert.Equal(t, fx.File.At("size", 0), got.Location)
}

func TestDependent_NoParentIsField(t *testing.T) {
	t.Parallel()
	fx := asttest.NewTemplate()

	got := Dependent(traverse.Bare(fx.Go))
	assert.Equal(t, ast.KindFieldDecl, got.Kind)
	assert.Equal(t, "go", got.Spelling)
}

func TestDependent_NestedAccessPicksOwnToken(t *testing.T) {
	t.Parallel()
	fx := asttest.NewTemplate()

	outer := Dependent(contextOf(t, fx.Unit, fx.Outer))
	assert.Equal(t, "b", outer.Spelling)

	inner := Dependent(contextOf(t, fx.Unit, fx.Inner))
	assert.Equal(t, "a", inner.Spelling)
	assert.Equal(t, ast.KindFieldDecl, inner.Kind)
}

func TestDependent_NoMatchingTokenFallsBack(t *testing.T) {
	t.Parallel()
	f := asttest.NewFile("/src/x.h", "t.go;\n")
	// Not part of any unit, so no token carries an annotation.
	orphan := f.Node(ast.KindMemberRefExpr, "", f.At("t", 0), f.Span("t", 0, "go", 0)).WithType(ast.TypeDependent)

	got := Dependent(traverse.Bare(orphan))
	assert.False(t, got.Resolved)
	assert.Equal(t, Native(orphan), got)
	assert.Equal(t, ast.KindMemberRefExpr, got.Kind)
	assert.Empty(t, got.Spelling)
	assert.Equal(t, f.At("t", 0), got.Location)
}

func TestDependent_OtherKindsUnchanged(t *testing.T) {
	t.Parallel()
	fx := asttest.NewTemplate()

	got := Dependent(contextOf(t, fx.Unit, fx.Call))
	assert.False(t, got.Resolved)
	assert.Equal(t, ast.KindCallExpr, got.Kind)
	assert.Equal(t, fx.Call.Loc, got.Location)
}
