package frontend

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jward/cxxnav/internal/ast"
)

// USRs follow the shape of clang's so that they read familiarly in dumps,
// but only their uniqueness and stability across units matter.

var builtinCodes = map[string]string{
	"void": "v", "bool": "b", "char": "C", "signed char": "c", "unsigned char": "c",
	"short": "s", "unsigned short": "t", "int": "I", "unsigned": "i", "unsigned int": "i",
	"long": "l", "unsigned long": "m", "long long": "K", "unsigned long long": "k",
	"float": "f", "double": "d", "long double": "D", "wchar_t": "W",
	"size_t": "l", "auto": "v",
}

func typeCode(t *typeInfo) string {
	if t == nil {
		return "?"
	}
	var code string
	switch {
	case t.builtin != "":
		code = builtinCodes[t.builtin]
		if code == "" {
			code = "$" + sanitize(t.builtin)
		}
	case t.decl != nil && t.decl.usr != "":
		code = "$" + strings.TrimPrefix(t.decl.usr, "c:")
	default:
		code = "$" + sanitize(t.text)
	}
	if t.pointer {
		code = "*" + code
	}
	return code
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n':
			return -1
		}
		return r
	}, s)
}

func localUSR(f *sourceFile, off int, s *scope, tag, name string) string {
	owner := strings.TrimPrefix(s.prefix(), "c:")
	return fmt.Sprintf("c:%s@%d%s@%s%s", filepath.Base(f.path), off, owner, tag, name)
}

func namespaceUSR(s *scope, name string) string {
	if name == "" {
		return s.prefix() + "@aN"
	}
	return s.prefix() + "@N@" + name
}

func recordUSR(s *scope, kind ast.CursorKind, name string, off int) string {
	tag := "@S@"
	switch kind {
	case ast.KindUnionDecl:
		tag = "@U@"
	case ast.KindClassTemplate:
		tag = "@ST@"
	case ast.KindClassTemplatePartialSpecialization:
		tag = "@SP@"
	}
	if name == "" {
		return fmt.Sprintf("%s%s@%d", s.prefix(), strings.TrimSuffix(tag, "@")+"a", off)
	}
	return s.prefix() + tag + name
}

func functionUSR(s *scope, kind ast.CursorKind, name string, params []*cursor, templateParams int, constQual bool) string {
	var b strings.Builder
	b.WriteString(s.prefix())
	if kind == ast.KindFunctionTemplate {
		fmt.Fprintf(&b, "@FT@>%d#T%s#", templateParams, name)
	} else {
		fmt.Fprintf(&b, "@F@%s#", name)
	}
	for _, p := range params {
		b.WriteString(typeCode(p.ctype))
		b.WriteByte('#')
	}
	if constQual {
		b.WriteString("1")
	}
	return b.String()
}
