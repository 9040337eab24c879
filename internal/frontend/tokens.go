package frontend

import (
	"sort"
	"unicode"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/cxxnav/internal/ast"
)

// Node types lexed as a single token even though the grammar gives them
// children.
var atomicTokens = map[string]ast.TokenKind{
	"string_literal":     ast.TokenLiteral,
	"raw_string_literal": ast.TokenLiteral,
	"char_literal":       ast.TokenLiteral,
	"system_lib_string":  ast.TokenLiteral,
	"number_literal":     ast.TokenLiteral,
	"preproc_arg":        ast.TokenLiteral,
	"comment":            ast.TokenComment,
}

var identifierTokens = map[string]bool{
	"identifier":           true,
	"field_identifier":     true,
	"type_identifier":      true,
	"namespace_identifier": true,
	"statement_identifier": true,
}

// lex collects the leaves of the file's syntax tree in source order.
func (f *sourceFile) lex() {
	f.tokens = f.tokens[:0]
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n.StartByte() == n.EndByte() {
			return
		}
		if kind, ok := atomicTokens[n.Type()]; ok {
			f.emit(kind, n)
			return
		}
		if n.ChildCount() == 0 {
			f.emit(leafKind(n), n)
			return
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(f.tree.RootNode())
}

func (f *sourceFile) emit(kind ast.TokenKind, n *sitter.Node) {
	f.tokens = append(f.tokens, ast.Token{Kind: kind, Spelling: f.text(n), Extent: f.extent(n)})
}

func leafKind(n *sitter.Node) ast.TokenKind {
	t := n.Type()
	switch {
	case identifierTokens[t]:
		return ast.TokenIdentifier
	case t == "primitive_type" || t == "true" || t == "false" || t == "nullptr" || t == "this" || t == "auto":
		return ast.TokenKeyword
	case !n.IsNamed() && len(t) > 0 && (unicode.IsLetter(rune(t[0])) || t[0] == '#'):
		return ast.TokenKeyword
	case n.IsNamed():
		return ast.TokenIdentifier
	}
	return ast.TokenPunctuation
}

// tokenRange returns the indexes of tokens lying inside ext.
func (f *sourceFile) tokenRange(ext ast.Extent) (int, int) {
	lo := sort.Search(len(f.tokens), func(i int) bool {
		return f.tokens[i].Extent.Start.Offset >= ext.Start.Offset
	})
	hi := lo
	for hi < len(f.tokens) && f.tokens[hi].Extent.End.Offset <= ext.End.Offset {
		hi++
	}
	return lo, hi
}

// annotate records, for every token, the innermost cursor covering it.
func (u *unit) annotate() {
	for _, f := range u.files {
		f.owners = make([]*cursor, len(f.tokens))
	}
	var walk func(c *cursor)
	walk = func(c *cursor) {
		if c.file != nil && c.kind != ast.KindTranslationUnit {
			lo, hi := c.file.tokenRange(c.ext)
			for i := lo; i < hi; i++ {
				c.file.owners[i] = c
			}
		}
		for _, k := range c.children {
			walk(k)
		}
	}
	walk(u.root)
}

// tokensIn returns the annotated tokens inside ext.
func (f *sourceFile) tokensIn(ext ast.Extent) []ast.Token {
	lo, hi := f.tokenRange(ext)
	out := make([]ast.Token, 0, hi-lo)
	for i := lo; i < hi; i++ {
		tok := f.tokens[i]
		if owner := f.owners[i]; owner != nil {
			tok.Cursor = owner
		}
		out = append(out, tok)
	}
	return out
}
