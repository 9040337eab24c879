// Package ast defines the contract between the navigation core and the
// compiler front-end that produces parsed C++ syntax trees.
//
// The core never parses anything itself. It consumes Cursors, Tokens and
// TranslationUnits through the interfaces below; internal/frontend provides
// the concrete tree-sitter implementation and internal/ast/asttest an
// in-memory one for tests.
package ast

// Cursor is an opaque handle to one AST node. Cursors are owned by their
// TranslationUnit and are immutable once the unit has been produced.
type Cursor interface {
	Kind() CursorKind
	Spelling() string
	TypeKind() TypeKind
	Location() SourceLocation
	Extent() Extent

	// Referenced returns the declaration a use refers to, or nil. As with
	// libclang, a declaration references itself and an unresolved overload
	// set references the marker cursor itself.
	Referenced() Cursor

	// NumOverloadedDecls and OverloadedDecl give indexed access to the
	// candidates of an OverloadedDeclRef marker. Other kinds report zero.
	NumOverloadedDecls() int
	OverloadedDecl(i int) Cursor

	// Definition returns the defining declaration of the entity, or nil.
	Definition() Cursor

	// USR returns the unique symbol signature of a declaration; references
	// and statements report "".
	USR() string

	// Tokens returns the tokens covered by the cursor's extent.
	Tokens() []Token

	// Children is the native one-level child enumeration primitive.
	Children() []Cursor
}

// Token is one lexical token. Cursor is the innermost AST node covering the
// token; it may be nil for tokens outside any node.
type Token struct {
	Kind     TokenKind
	Spelling string
	Extent   Extent
	Cursor   Cursor
}

// Location returns the token's start location.
func (t Token) Location() SourceLocation {
	return t.Extent.Start
}

// Diagnostic is one front-end diagnostic.
type Diagnostic struct {
	Severity Severity
	Message  string
	Location SourceLocation
}

func (d Diagnostic) String() string {
	return d.Location.String() + ": " + d.Severity.String() + ": " + d.Message
}

// TranslationUnit is the parsed AST and diagnostics of one source file.
type TranslationUnit interface {
	// Spelling is the path of the main file the unit was parsed from.
	Spelling() string
	Cursor() Cursor
	Diagnostics() []Diagnostic
	Args() []string

	// CursorAt maps a position in file to the most specific cursor covering
	// it. Units return their root cursor when nothing more specific matches.
	CursorAt(file string, line, column int) Cursor

	// Save serializes the unit to path.
	Save(path string) error
}

// Frontend parses sources into TranslationUnits and restores saved ones.
type Frontend interface {
	Parse(path string, args []string, workingDir string) (TranslationUnit, error)
	Load(path string) (TranslationUnit, error)
}
