package frontend

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/cxxnav/internal/ast"
)

// lowerType resolves a type specifier, returning the type and the
// reference cursors naming its components.
func (b *builder) lowerType(f *sourceFile, s *scope, n *sitter.Node) (*typeInfo, []*cursor) {
	if n == nil {
		return &typeInfo{}, nil
	}
	switch n.Type() {
	case "primitive_type", "sized_type_specifier":
		return builtinType(strings.Join(strings.Fields(f.text(n)), " ")), nil
	case "placeholder_type_specifier", "auto":
		return builtinType("auto"), nil
	case "type_identifier":
		name := f.text(n)
		c := s.lookupType(name)
		if c == nil {
			if _, ok := builtinCodes[name]; ok {
				return builtinType(name), nil
			}
			return &typeInfo{text: name, dependent: s.inTemplate()}, nil
		}
		return typeOf(name, c), []*cursor{b.refTo(f, n, c)}
	case "qualified_identifier":
		owner, last, refs, dependent := b.qualifiedParts(f, s, n)
		t := &typeInfo{text: f.text(n), dependent: dependent}
		if owner == nil || last == nil {
			t.dependent = t.dependent || s.inTemplate()
			return t, refs
		}
		nameNode := last
		var argRefs []*cursor
		if last.Type() == "template_type" {
			nameNode = last.ChildByFieldName("name")
			argRefs = b.templateArgs(f, s, last.ChildByFieldName("arguments"))
		}
		c := firstScopeLike(owner.local(f.text(nameNode)))
		if c == nil {
			t.dependent = s.inTemplate()
			return t, append(refs, argRefs...)
		}
		refs = append(refs, b.refTo(f, nameNode, c))
		ct := typeOf(t.text, c)
		ct.dependent = ct.dependent || dependent
		return ct, append(refs, argRefs...)
	case "template_type":
		nameNode := n.ChildByFieldName("name")
		args := n.ChildByFieldName("arguments")
		t, refs := b.lowerType(f, s, nameNode)
		t.text = f.text(n)
		for _, a := range b.templateArgTypes(f, s, args) {
			t.dependent = t.dependent || a.dependent
		}
		return t, append(refs, b.templateArgs(f, s, args)...)
	case "type_descriptor":
		t, refs := b.lowerType(f, s, n.ChildByFieldName("type"))
		if d := n.ChildByFieldName("declarator"); d != nil && unwrapDeclarator(d).pointer {
			cp := *t
			cp.pointer = true
			t = &cp
		}
		return t, refs
	case "dependent_type":
		if n.NamedChildCount() == 0 {
			return &typeInfo{text: f.text(n), dependent: true}, nil
		}
		t, refs := b.lowerType(f, s, n.NamedChild(0))
		cp := *t
		cp.dependent = true
		return &cp, refs
	case "class_specifier", "struct_specifier", "union_specifier", "enum_specifier":
		nameNode := n.ChildByFieldName("name")
		if nameNode == nil {
			return &typeInfo{text: f.text(n)}, nil
		}
		return b.lowerType(f, s, nameNode)
	}
	return &typeInfo{text: f.text(n)}, nil
}

func typeOf(text string, c *cursor) *typeInfo {
	switch {
	case c.kind == ast.KindTemplateTypeParameter || c.kind == ast.KindTemplateTemplateParameter:
		return &typeInfo{text: text, decl: c, dependent: true}
	case (c.kind == ast.KindTypedefDecl || c.kind == ast.KindTypeAliasDecl) && c.ctype != nil:
		t := *c.ctype
		if t.decl == nil {
			t.decl = c
		}
		t.text = text
		return &t
	}
	return &typeInfo{text: text, decl: c}
}

// templateArgs lowers a template_argument_list into reference cursors.
func (b *builder) templateArgs(f *sourceFile, s *scope, args *sitter.Node) []*cursor {
	if args == nil {
		return nil
	}
	var refs []*cursor
	for i := 0; i < int(args.NamedChildCount()); i++ {
		a := args.NamedChild(i)
		if a.Type() == "type_descriptor" {
			_, r := b.lowerType(f, s, a)
			refs = append(refs, r...)
			continue
		}
		refs = append(refs, b.lowerExpr(exprCtx{f: f, s: s}, a))
	}
	return refs
}

func (b *builder) templateArgTypes(f *sourceFile, s *scope, args *sitter.Node) []*typeInfo {
	if args == nil {
		return nil
	}
	var out []*typeInfo
	for i := 0; i < int(args.NamedChildCount()); i++ {
		a := args.NamedChild(i)
		switch a.Type() {
		case "type_descriptor":
			t, _ := b.lowerType(f, s, a)
			out = append(out, t)
		case "identifier":
			if hits := s.lookup(f.text(a)); len(hits) > 0 && hits[0].kind == ast.KindTemplateNonTypeParameter {
				out = append(out, &typeInfo{dependent: true})
			}
		}
	}
	return out
}

// refTo builds the reference cursor for a name node naming target.
func (b *builder) refTo(f *sourceFile, n *sitter.Node, target *cursor) *cursor {
	kind := ast.KindTypeRef
	switch {
	case target.kind == ast.KindNamespace || target.kind == ast.KindNamespaceAlias:
		kind = ast.KindNamespaceRef
	case target.kind == ast.KindClassTemplate || target.kind == ast.KindTemplateTemplateParameter:
		kind = ast.KindTemplateRef
	case target.kind == ast.KindFieldDecl:
		kind = ast.KindMemberRef
	}
	c := b.newCursor(f, kind, f.text(n), n, n)
	c.ref = target
	c.ctype = target.ctype
	c.typ = target.typ
	return c
}

// qualifiedParts walks a qualified_identifier. It returns the scope the
// final component is looked up in, the final name node, the references
// for each qualifier, and whether a qualifier depends on a template
// parameter. A nil scope means the qualifier did not resolve.
func (b *builder) qualifiedParts(f *sourceFile, s *scope, n *sitter.Node) (*scope, *sitter.Node, []*cursor, bool) {
	var owner *scope
	var refs []*cursor
	dependent := false
	first := true
	for n != nil && n.Type() == "qualified_identifier" {
		scopeNode := n.ChildByFieldName("scope")
		switch {
		case scopeNode == nil:
			owner = b.global
		case !first && owner == nil:
		default:
			nameNode := scopeNode
			if scopeNode.Type() == "template_type" {
				nameNode = scopeNode.ChildByFieldName("name")
				refs = append(refs, b.templateArgs(f, s, scopeNode.ChildByFieldName("arguments"))...)
				for _, a := range b.templateArgTypes(f, s, scopeNode.ChildByFieldName("arguments")) {
					dependent = dependent || a.dependent
				}
			}
			var c *cursor
			if first {
				c = s.lookupType(f.text(nameNode))
			} else {
				c = firstScopeLike(owner.local(f.text(nameNode)))
			}
			if c == nil {
				dependent = dependent || s.inTemplate()
				owner = nil
				break
			}
			refs = append(refs, b.refTo(f, nameNode, c))
			if c.kind == ast.KindTemplateTypeParameter || c.kind == ast.KindTemplateTemplateParameter {
				dependent = true
				owner = nil
				break
			}
			owner = memberScope(c)
		}
		first = false
		n = n.ChildByFieldName("name")
	}
	return owner, n, refs, dependent
}

// memberScope is the scope that names qualified by c are looked up in.
func memberScope(c *cursor) *scope {
	if c == nil {
		return nil
	}
	if c.members != nil {
		return c.members
	}
	if rec := recordOf(c); rec != nil {
		return rec.members
	}
	return nil
}

type declarator struct {
	name    *sitter.Node
	fn      *sitter.Node
	pointer bool
	init    *sitter.Node
}

// unwrapDeclarator strips pointer, reference, array and parenthesis
// layers to reach the declared name. Outside a function declarator a
// pointer layer applies to the return type; inside one it declares a
// function pointer, reported as a pointer with no fn.
func unwrapDeclarator(n *sitter.Node) declarator {
	var d declarator
	for n != nil {
		switch n.Type() {
		case "init_declarator":
			d.init = n.ChildByFieldName("value")
			n = n.ChildByFieldName("declarator")
		case "pointer_declarator", "reference_declarator", "abstract_pointer_declarator",
			"abstract_reference_declarator", "array_declarator", "abstract_array_declarator":
			d.pointer = true
			d.fn = nil
			next := n.ChildByFieldName("declarator")
			if next == nil && n.NamedChildCount() > 0 {
				next = n.NamedChild(int(n.NamedChildCount()) - 1)
				if next.Type() == "type_qualifier" {
					next = nil
				}
			}
			if next == nil {
				return d
			}
			n = next
		case "function_declarator", "abstract_function_declarator":
			if d.fn == nil {
				d.fn = n
			}
			n = n.ChildByFieldName("declarator")
		case "parenthesized_declarator", "attributed_declarator", "abstract_parenthesized_declarator":
			if n.NamedChildCount() == 0 {
				return d
			}
			n = n.NamedChild(0)
		default:
			d.name = n
			return d
		}
	}
	return d
}
