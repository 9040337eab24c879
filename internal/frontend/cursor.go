package frontend

import (
	"github.com/jward/cxxnav/internal/ast"
)

// cursor is the concrete ast.Cursor. Fields past children are binding
// state used while the unit is built and by later lookups.
type cursor struct {
	kind      ast.CursorKind
	spelling  string
	typ       ast.TypeKind
	loc       ast.SourceLocation
	ext       ast.Extent
	ref       *cursor
	overloads []*cursor
	usr       string
	children  []*cursor

	unit *unit
	file *sourceFile

	ctype    *typeInfo // declared type of declarations, computed type of expressions
	members  *scope    // member scope of namespaces, records and enums
	params   []*cursor
	minArgs  int
	variadic bool
}

func (c *cursor) Kind() ast.CursorKind         { return c.kind }
func (c *cursor) Spelling() string             { return c.spelling }
func (c *cursor) TypeKind() ast.TypeKind       { return c.typ }
func (c *cursor) Location() ast.SourceLocation { return c.loc }
func (c *cursor) Extent() ast.Extent           { return c.ext }
func (c *cursor) USR() string                  { return c.usr }
func (c *cursor) NumOverloadedDecls() int      { return len(c.overloads) }

func (c *cursor) Referenced() ast.Cursor {
	if c.ref == nil {
		return nil
	}
	return c.ref
}

func (c *cursor) OverloadedDecl(i int) ast.Cursor {
	if i < 0 || i >= len(c.overloads) {
		return nil
	}
	return c.overloads[i]
}

func (c *cursor) Definition() ast.Cursor {
	usr := c.usr
	if usr == "" && c.ref != nil {
		usr = c.ref.usr
	}
	if usr == "" || c.unit == nil {
		return nil
	}
	if def, ok := c.unit.defs[usr]; ok {
		return def
	}
	return nil
}

func (c *cursor) Tokens() []ast.Token {
	if c.file == nil {
		return nil
	}
	return c.file.tokensIn(c.ext)
}

func (c *cursor) Children() []ast.Cursor {
	out := make([]ast.Cursor, len(c.children))
	for i, k := range c.children {
		out[i] = k
	}
	return out
}

func (c *cursor) add(kids ...*cursor) {
	for _, k := range kids {
		if k != nil {
			c.children = append(c.children, k)
		}
	}
}

// isDecl reports whether c declares something a name can resolve to.
func (c *cursor) isDecl() bool {
	return c.ref == c
}

func (c *cursor) isFunction() bool {
	switch c.kind {
	case ast.KindFunctionDecl, ast.KindFunctionTemplate, ast.KindCXXMethod,
		ast.KindConstructor, ast.KindDestructor:
		return true
	}
	return false
}

func (c *cursor) isRecord() bool {
	switch c.kind {
	case ast.KindClassDecl, ast.KindStructDecl, ast.KindUnionDecl,
		ast.KindClassTemplate, ast.KindClassTemplatePartialSpecialization:
		return true
	}
	return false
}

func (c *cursor) isType() bool {
	switch c.kind {
	case ast.KindEnumDecl, ast.KindTypedefDecl, ast.KindTypeAliasDecl,
		ast.KindTemplateTypeParameter, ast.KindTemplateTemplateParameter:
		return true
	}
	return c.isRecord()
}
