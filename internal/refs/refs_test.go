package refs

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/cxxnav/internal/ast"
	"github.com/jward/cxxnav/internal/ast/asttest"
	"github.com/jward/cxxnav/internal/units"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func loadCalls(t *testing.T, keys ...string) (*units.Store, *asttest.Calls) {
	t.Helper()
	fx := asttest.NewCalls()
	s := units.New(fx.Frontend, units.WithLogger(quiet))
	for _, k := range keys {
		s.Parse(k, k, nil, "/src")
		_, ok := s.Get(k)
		require.True(t, ok, k)
	}
	return s, fx
}

func TestFindAll_ThreeCallsAcrossUnits(t *testing.T) {
	t.Parallel()
	s, fx := loadCalls(t, "/src/calls.h", "/src/a.cpp", "/src/b.cpp")
	f := NewFinder(s, quiet)

	site := fx.Sites.At("foo", 2)
	got := f.FindAll(fx.Sites.Path, site.Line, site.Column)

	want := []ast.SourceLocation{fx.Sites.At("foo", 0), fx.Sites.At("foo", 1), fx.Sites.At("foo", 2)}
	assert.Equal(t, want, got.Sorted())
	// foo(4.5) calls the double overload.
	assert.False(t, got.Has(fx.Sites.At("foo", 3)))
}

func TestFindAll_FromDeclaration(t *testing.T) {
	t.Parallel()
	s, fx := loadCalls(t, "/src/decl.h", "/src/calls.h", "/src/a.cpp", "/src/b.cpp")
	f := NewFinder(s, quiet)

	// foo(int) is declared once in decl.h and called three times from
	// calls.h, which a.cpp and b.cpp both include. Only occurrences in the
	// queried file count, so from the declaration the result is the
	// declaration alone.
	decl := fx.Decl.At("foo", 0)
	got := f.FindAll(fx.Decl.Path, decl.Line, decl.Column)
	assert.Equal(t, []ast.SourceLocation{decl}, got.Sorted())
	assert.False(t, got.Has(fx.Decl.At("foo", 1)), "the double overload shares the spelling")

	// The same symbol queried in the file holding the calls yields each call
	// once, though three units contain them.
	site := fx.Sites.At("foo", 0)
	got = f.FindAll(fx.Sites.Path, site.Line, site.Column)
	assert.Equal(t, []ast.SourceLocation{fx.Sites.At("foo", 0), fx.Sites.At("foo", 1), fx.Sites.At("foo", 2)}, got.Sorted())
}

func TestFindAll_SameResultFromEverySite(t *testing.T) {
	t.Parallel()
	s, fx := loadCalls(t, "/src/calls.h", "/src/a.cpp")
	f := NewFinder(s, quiet)

	first := fx.Sites.At("foo", 0)
	base := f.FindAll(fx.Sites.Path, first.Line, first.Column)
	require.Len(t, base, 3)
	for nth := 1; nth < 3; nth++ {
		loc := fx.Sites.At("foo", nth)
		assert.Equal(t, base, f.FindAll(fx.Sites.Path, loc.Line, loc.Column))
	}
}

func TestFindAll_UnrelatedOverload(t *testing.T) {
	t.Parallel()
	s, fx := loadCalls(t, "/src/calls.h")
	f := NewFinder(s, quiet)

	loc := fx.Sites.At("foo", 3)
	got := f.FindAll(fx.Sites.Path, loc.Line, loc.Column)
	assert.Equal(t, []ast.SourceLocation{loc}, got.Sorted())
}

func TestFindAll_DeclarationIncludesItself(t *testing.T) {
	t.Parallel()
	s, fx := loadCalls(t, "/src/a.cpp", "/src/b.cpp")
	f := NewFinder(s, quiet)

	// main in a.cpp: one() is called from main; one is declared in calls.h,
	// so only the call in a.cpp is in the origin file.
	loc := fx.A.At("one", 0)
	got := f.FindAll(fx.A.Path, loc.Line, loc.Column)
	assert.Equal(t, []ast.SourceLocation{loc}, got.Sorted())

	decl := fx.A.At("main", 0)
	got = f.FindAll(fx.A.Path, decl.Line, decl.Column)
	assert.Equal(t, []ast.SourceLocation{decl}, got.Sorted())
}

func TestFindAll_UnknownFile(t *testing.T) {
	t.Parallel()
	s, _ := loadCalls(t, "/src/a.cpp")
	f := NewFinder(s, quiet)

	got := f.FindAll("/src/nowhere.cpp", 1, 1)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFindAll_MemberCallConfirmation(t *testing.T) {
	t.Parallel()
	src := "struct S { void foobar(); };\nvoid use() { S s; s.foobar(); }\n"
	f := asttest.NewFile("/src/m.cpp", src)

	method := f.Decl(ast.KindCXXMethod, "foobar", 0, "c:@S@S@F@foobar#", f.Until("void", 0, ";"))
	record := f.Decl(ast.KindStructDecl, "S", 0, "c:@S@S", f.Until("struct", 0, "}"), method)
	typeRef := f.Ref(ast.KindTypeRef, "S", 1, record)
	local := f.Decl(ast.KindVarDecl, "s", 0, "c:m.cpp@48@F@use#@s", f.Span("S", 1, "s", 0), typeRef)
	declStmt := f.Node(ast.KindDeclStmt, "", f.At("S", 1), f.Span("S", 1, ";", 2), local)

	// s.foobar(): CALL_EXPR located at s, MEMBER_REF_EXPR at foobar,
	// DECL_REF_EXPR for s.
	base := f.Ref(ast.KindDeclRefExpr, "s", 1, local)
	member := f.Ref(ast.KindMemberRefExpr, "foobar", 1, method, base)
	member.Ext = f.Span("s", 1, "foobar", 1)
	call := f.Ref(ast.KindCallExpr, "foobar", 1, method, member)
	call.Loc = f.At("s", 1)
	call.Ext = f.Until("s", 1, ")")

	body := f.Node(ast.KindCompoundStmt, "", f.At("{", 1), f.Until("{", 1, "}"), declStmt, call)
	use := f.Decl(ast.KindFunctionDecl, "use", 0, "c:@F@use#", f.Until("void", 1, "}"), body)
	fe := asttest.NewFrontend(asttest.NewUnit(f, record, use))

	s := units.New(fe, units.WithLogger(quiet))
	s.Parse(f.Path, f.Path, nil, "")
	finder := NewFinder(s, quiet)

	at := f.At("foobar", 1)
	got := finder.FindAll(f.Path, at.Line, at.Column)
	assert.Equal(t, []ast.SourceLocation{f.At("foobar", 0), at}, got.Sorted())
	assert.False(t, got.Has(f.At("s", 1)), "call expression located at the base object")
}

func TestResult(t *testing.T) {
	t.Parallel()
	r := make(Result)
	a := ast.SourceLocation{File: "/x", Line: 2, Column: 1, Offset: 10}
	b := ast.SourceLocation{File: "/x", Line: 1, Column: 5, Offset: 4}
	r.Add(a)
	r.Add(a)
	r.Add(b)
	assert.Len(t, r, 2)
	assert.Equal(t, []ast.SourceLocation{b, a}, r.Sorted())
}
