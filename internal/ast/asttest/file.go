// Package asttest provides an in-memory front-end for tests: hand-built
// cursor trees over real source text, with libclang-like token annotation.
package asttest

import (
	"fmt"
	"strings"

	"github.com/jward/cxxnav/internal/ast"
)

var keywords = map[string]bool{
	"int": true, "void": true, "return": true, "class": true, "struct": true,
	"template": true, "typename": true, "namespace": true, "using": true,
	"if": true, "else": true, "for": true, "while": true, "const": true,
	"this": true, "auto": true, "bool": true, "char": true,
}

// File is a source file whose text is lexed into tokens.
type File struct {
	Path       string
	Text       string
	lineStarts []int
	toks       []ast.Token
}

// NewFile lexes text. Token Cursor fields are filled in per unit.
func NewFile(path, text string) *File {
	f := &File{Path: path, Text: text, lineStarts: []int{0}}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			f.lineStarts = append(f.lineStarts, i+1)
		}
	}
	f.lex()
	return f
}

// Loc returns the location of a 1-based line and column.
func (f *File) Loc(line, col int) ast.SourceLocation {
	off := f.lineStarts[line-1] + col - 1
	return ast.SourceLocation{File: f.Path, Line: line, Column: col, Offset: off}
}

func (f *File) locAt(off int) ast.SourceLocation {
	line := 1
	for i, start := range f.lineStarts {
		if start > off {
			break
		}
		line = i + 1
	}
	return ast.SourceLocation{File: f.Path, Line: line, Column: off - f.lineStarts[line-1] + 1, Offset: off}
}

// Tok returns the nth (0-based) token spelled word.
func (f *File) Tok(word string, nth int) ast.Token {
	seen := 0
	for _, t := range f.toks {
		if t.Spelling != word {
			continue
		}
		if seen == nth {
			return t
		}
		seen++
	}
	panic(fmt.Sprintf("asttest: %s has no token %q #%d", f.Path, word, nth))
}

// At returns the start location of the nth token spelled word.
func (f *File) At(word string, nth int) ast.SourceLocation {
	return f.Tok(word, nth).Extent.Start
}

// Span returns the extent from the start of one token to the end of another.
func (f *File) Span(fromWord string, fromNth int, toWord string, toNth int) ast.Extent {
	return ast.Extent{
		Start: f.Tok(fromWord, fromNth).Extent.Start,
		End:   f.Tok(toWord, toNth).Extent.End,
	}
}

// Until returns the extent from the nth token spelled word through the
// first token spelled end that closes back to bracket depth zero.
func (f *File) Until(word string, nth int, end string) ast.Extent {
	start := f.Tok(word, nth)
	depth := 0
	for _, t := range f.toks {
		if t.Extent.Start.Offset < start.Extent.Start.Offset {
			continue
		}
		switch t.Spelling {
		case "(", "{", "[":
			depth++
		case ")", "}", "]":
			depth--
		}
		if depth == 0 && t.Spelling == end {
			return ast.Extent{Start: start.Extent.Start, End: t.Extent.End}
		}
	}
	panic(fmt.Sprintf("asttest: %s has no %q after %q #%d", f.Path, end, word, nth))
}

// Whole returns the extent of the entire file.
func (f *File) Whole() ast.Extent {
	return ast.Extent{Start: f.locAt(0), End: f.locAt(len(f.Text))}
}

func (f *File) lex() {
	text := f.Text
	i := 0
	for i < len(text) {
		c := text[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
			continue
		case isIdentStart(c):
			j := i + 1
			for j < len(text) && isIdentPart(text[j]) {
				j++
			}
			kind := ast.TokenIdentifier
			if keywords[text[i:j]] {
				kind = ast.TokenKeyword
			}
			f.emit(kind, i, j)
			i = j
		case c >= '0' && c <= '9':
			j := i + 1
			for j < len(text) && (isIdentPart(text[j]) || text[j] == '.') {
				j++
			}
			f.emit(ast.TokenLiteral, i, j)
			i = j
		case strings.HasPrefix(text[i:], "->") || strings.HasPrefix(text[i:], "::"):
			f.emit(ast.TokenPunctuation, i, i+2)
			i += 2
		default:
			f.emit(ast.TokenPunctuation, i, i+1)
			i++
		}
	}
}

func (f *File) emit(kind ast.TokenKind, start, end int) {
	f.toks = append(f.toks, ast.Token{
		Kind:     kind,
		Spelling: f.Text[start:end],
		Extent:   ast.Extent{Start: f.locAt(start), End: f.locAt(end)},
	})
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
