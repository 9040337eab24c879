package frontend

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/cxxnav/internal/ast"
	"github.com/jward/cxxnav/internal/resolve"
	"github.com/jward/cxxnav/internal/traverse"
)

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		p := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return dir
}

func parseFile(t *testing.T, dir, name string, args ...string) ast.TranslationUnit {
	t.Helper()
	tu, err := New().Parse(filepath.Join(dir, name), args, dir)
	require.NoError(t, err)
	return tu
}

// collect returns every cursor of the given kind, in traversal order.
func collect(tu ast.TranslationUnit, kind ast.CursorKind) []traverse.Context {
	var out []traverse.Context
	traverse.WalkUnit(tu, func(ctx traverse.Context) traverse.Action {
		if ctx.Cursor.Kind() == kind {
			out = append(out, ctx)
		}
		return traverse.Recurse
	})
	return out
}

func TestParseOverloadResolution(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"main.cpp": "int foo(int x);\nint foo(double y);\nint main() { return foo(1) + foo(2.5); }\n",
	})
	tu := parseFile(t, dir, "main.cpp")
	assert.Empty(t, tu.Diagnostics())

	calls := collect(tu, ast.KindCallExpr)
	require.Len(t, calls, 2)
	for i, want := range []string{"c:@F@foo#I#", "c:@F@foo#d#"} {
		c := calls[i].Cursor
		assert.Equal(t, "foo", c.Spelling())
		require.NotNil(t, c.Referenced())
		assert.Equal(t, want, c.Referenced().USR())
		assert.Equal(t, ast.KindFunctionDecl, c.Referenced().Kind())
	}
	assert.Equal(t, 3, calls[0].Cursor.Location().Line)
	assert.Equal(t, 21, calls[0].Cursor.Location().Column)
}

func TestParseRecordMembers(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"rec.cpp": "struct S {\n  int n;\n  int get() const { return n; }\n};\nint use(S s) { return s.get() + s.n; }\n",
	})
	tu := parseFile(t, dir, "rec.cpp")
	assert.Empty(t, tu.Diagnostics())

	byName := make(map[string]ast.Cursor)
	for _, ctx := range collect(tu, ast.KindMemberRefExpr) {
		byName[ctx.Cursor.Spelling()] = ctx.Cursor
	}
	require.Contains(t, byName, "get")
	require.Contains(t, byName, "n")
	assert.Equal(t, ast.KindCXXMethod, byName["get"].Referenced().Kind())
	assert.Equal(t, ast.KindFieldDecl, byName["n"].Referenced().Kind())
	assert.Equal(t, "c:@S@S@FI@n", byName["n"].Referenced().USR())
}

func TestParseDependentMember(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"tmpl.h": "template <typename T>\nvoid run(T t) {\n  t.go();\n  t.size;\n}\n",
	})
	tu := parseFile(t, dir, "tmpl.h")

	members := collect(tu, ast.KindMemberRefExpr)
	require.Len(t, members, 2)
	for _, ctx := range members {
		assert.Equal(t, "", ctx.Cursor.Spelling())
		assert.Equal(t, ast.TypeDependent, ctx.Cursor.TypeKind())
	}

	method := resolve.Dependent(members[0])
	assert.True(t, method.Resolved)
	assert.Equal(t, "go", method.Spelling)
	assert.Equal(t, ast.KindCXXMethod, method.Kind)

	field := resolve.Dependent(members[1])
	assert.True(t, field.Resolved)
	assert.Equal(t, "size", field.Spelling)
	assert.Equal(t, ast.KindFieldDecl, field.Kind)

	tmpls := collect(tu, ast.KindFunctionTemplate)
	require.Len(t, tmpls, 1)
	assert.Equal(t, "run", tmpls[0].Cursor.Spelling())
}

func TestParseIncludes(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"inc/decl.h": "int helper(int v);\n",
		"main.cpp":   "#include \"decl.h\"\n#include \"missing.h\"\nint main() { return helper(1); }\n",
	})
	tu := parseFile(t, dir, "main.cpp", "-Iinc")

	diags := tu.Diagnostics()
	require.Len(t, diags, 1)
	assert.Equal(t, ast.SeverityFatal, diags[0].Severity)
	assert.Equal(t, "'missing.h' file not found", diags[0].Message)

	incs := collect(tu, ast.KindInclusionDirective)
	require.Len(t, incs, 2)
	assert.Equal(t, "decl.h", incs[0].Cursor.Spelling())

	calls := collect(tu, ast.KindCallExpr)
	require.Len(t, calls, 1)
	decl := calls[0].Cursor.Referenced()
	require.NotNil(t, decl)
	assert.Equal(t, filepath.Join(dir, "inc", "decl.h"), decl.Location().File)
}

func TestParseUndeclaredIdentifier(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"bad.cpp": "int main() { return nope; }\n",
	})
	tu := parseFile(t, dir, "bad.cpp")
	require.Len(t, tu.Diagnostics(), 1)
	assert.Equal(t, ast.SeverityError, tu.Diagnostics()[0].Severity)
	assert.Contains(t, tu.Diagnostics()[0].Message, "nope")
}

func TestParseErrors(t *testing.T) {
	dir := writeFiles(t, map[string]string{"a.cpp": "int a;\n"})

	_, err := New().Parse(filepath.Join(dir, "a.cpp"), []string{"-x", "python"}, dir)
	require.Error(t, err)
	assert.Equal(t, ast.ErrorInvalidArguments, ast.KindOf(err))

	_, err = New().Parse(filepath.Join(dir, "absent.cpp"), nil, dir)
	require.Error(t, err)
	assert.Equal(t, ast.ErrorFailure, ast.KindOf(err))
}

func TestCursorAt(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"main.cpp": "int foo(int x);\nint main() { return foo(1); }\n",
	})
	tu := parseFile(t, dir, "main.cpp")
	file := filepath.Join(dir, "main.cpp")

	c := tu.CursorAt(file, 2, 22)
	require.NotNil(t, c)
	assert.Equal(t, ast.KindDeclRefExpr, c.Kind())
	assert.Equal(t, "foo", c.Spelling())

	c = tu.CursorAt(file, 1, 5)
	assert.Equal(t, ast.KindFunctionDecl, c.Kind())
}

func TestSaveLoad(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"inc.h":    "int twice(int v);\n",
		"main.cpp": "#include \"inc.h\"\nint main() { return twice(2); }\n",
	})
	tu := parseFile(t, dir, "main.cpp")
	artifact := filepath.Join(t.TempDir(), "main.cpp.ast")
	require.NoError(t, tu.Save(artifact))

	// The artifact carries its sources, so edits on disk do not leak in.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "inc.h"), []byte("int other();\n"), 0o644))

	loaded, err := New().Load(artifact)
	require.NoError(t, err)
	assert.Equal(t, tu.Spelling(), loaded.Spelling())
	assert.Equal(t, tu.Args(), loaded.Args())

	calls := collect(loaded, ast.KindCallExpr)
	require.Len(t, calls, 1)
	require.NotNil(t, calls[0].Cursor.Referenced())
	assert.Equal(t, "twice", calls[0].Cursor.Referenced().Spelling())

	_, err = New().Load(filepath.Join(t.TempDir(), "missing.ast"))
	require.Error(t, err)
	assert.Equal(t, ast.ErrorASTRead, ast.KindOf(err))
}

func TestParseFromReader(t *testing.T) {
	files := snapshotReader{
		"/virtual/inc.h":    []byte("int twice(int v);\n"),
		"/virtual/main.cpp": []byte("#include \"inc.h\"\nint main() { return twice(2); }\n"),
	}
	fe := New(WithReader(files))

	tu, err := fe.ParseContext(context.Background(), "main.cpp", nil, "/virtual")
	require.NoError(t, err)
	assert.Empty(t, tu.Diagnostics())
	assert.Equal(t, "/virtual/main.cpp", tu.Spelling())

	calls := collect(tu, ast.KindCallExpr)
	require.Len(t, calls, 1)
	require.NotNil(t, calls[0].Cursor.Referenced())
	assert.Equal(t, "/virtual/inc.h", calls[0].Cursor.Referenced().Location().File)

	// Nothing outside the reader is visible.
	_, err = fe.Parse("/virtual/other.cpp", nil, "")
	assert.Equal(t, ast.ErrorFailure, ast.KindOf(err))
}

func TestLanguageForFile(t *testing.T) {
	tests := []struct {
		path   string
		lang   string
		ok     bool
		header bool
	}{
		{"main.cpp", "c++", true, false},
		{"lib/x.CC", "c++", true, false},
		{"a/b.hpp", "c++-header", true, true},
		{"c.h", "c++-header", true, true},
		{"notes.txt", "", false, false},
		{"Makefile", "", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			lang, ok := LanguageForFile(tt.path)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.lang, lang)
			assert.Equal(t, tt.header, IsHeader(tt.path))
		})
	}
}
