package frontend

import (
	"fmt"
	"path/filepath"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/cxxnav/internal/ast"
)

type declCtx struct {
	f      *sourceFile
	s      *scope
	parent *cursor
	depth  int
	tmpl   *templateInfo
}

// templateInfo is set while lowering the entity a template_declaration
// introduces.
type templateInfo struct {
	node   *sitter.Node
	params []*cursor
	scope  *scope
}

func (dc declCtx) with(s *scope, parent *cursor) declCtx {
	return declCtx{f: dc.f, s: s, parent: parent, depth: dc.depth}
}

func (b *builder) lowerDecls(dc declCtx, n *sitter.Node) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		dc.parent.add(b.lowerDecl(dc, n.NamedChild(i))...)
	}
}

func (b *builder) lowerDecl(dc declCtx, n *sitter.Node) []*cursor {
	switch n.Type() {
	case "preproc_include":
		b.include(dc, n)
	case "preproc_def", "preproc_function_def":
		b.macro(dc, n)
	case "preproc_ifdef", "preproc_if", "preproc_else", "preproc_elif", "preproc_elifdef",
		"linkage_specification", "declaration_list", "ERROR":
		var out []*cursor
		for i := 0; i < int(n.NamedChildCount()); i++ {
			out = append(out, b.lowerDecl(dc, n.NamedChild(i))...)
		}
		return out
	case "namespace_definition":
		return one(b.namespace(dc, n))
	case "namespace_alias_definition":
		return one(b.namespaceAlias(dc, n))
	case "using_declaration":
		return one(b.using(dc, n))
	case "alias_declaration":
		return one(b.alias(dc, n))
	case "type_definition":
		return b.typedef(dc, n)
	case "class_specifier", "struct_specifier", "union_specifier":
		return one(b.record(dc, n))
	case "enum_specifier":
		return one(b.enum(dc, n))
	case "function_definition":
		return one(b.function(dc, n, n.ChildByFieldName("type"), n.ChildByFieldName("declarator"), n.ChildByFieldName("body")))
	case "declaration", "field_declaration":
		return b.declaration(dc, n)
	case "template_declaration":
		return b.template(dc, n)
	case "access_specifier":
		return one(b.newCursor(dc.f, ast.KindAccessSpecifier, "", n, n))
	}
	return nil
}

func one(c *cursor) []*cursor {
	if c == nil {
		return nil
	}
	return []*cursor{c}
}

func (b *builder) macro(dc declCtx, n *sitter.Node) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := dc.f.text(nameNode)
	c := b.newDecl(dc.f, ast.KindMacroDefinition, name, nameNode, n)
	c.ext.Start = c.loc
	c.usr = fmt.Sprintf("c:%s@%d@macro@%s", filepath.Base(dc.f.path), nameNode.StartByte(), name)
	if n.Type() == "preproc_function_def" {
		c.variadic = true
	}
	b.macros[name] = c
	b.define(c)
	b.u.root.add(c)
}

func (b *builder) define(c *cursor) {
	if c.usr == "" {
		return
	}
	if _, ok := b.u.defs[c.usr]; !ok {
		b.u.defs[c.usr] = c
	}
}

func (b *builder) namespace(dc declCtx, n *sitter.Node) *cursor {
	var names []*sitter.Node
	if nameNode := n.ChildByFieldName("name"); nameNode != nil {
		if nameNode.Type() == "nested_namespace_specifier" {
			for i := 0; i < int(nameNode.NamedChildCount()); i++ {
				names = append(names, nameNode.NamedChild(i))
			}
		} else {
			names = append(names, nameNode)
		}
	}
	if len(names) == 0 {
		names = append(names, nil)
	}

	s := dc.s
	var first, last *cursor
	for _, nm := range names {
		spelling, at := "", n
		if nm != nil {
			spelling, at = dc.f.text(nm), nm
		}
		c := b.newDecl(dc.f, ast.KindNamespace, spelling, at, n)
		c.usr = namespaceUSR(s, spelling)
		members, ok := b.nsScopes[c.usr]
		if !ok {
			members = newScope(scopeNamespace, s, c)
			b.nsScopes[c.usr] = members
			s.declare(c)
			if spelling == "" {
				s.using = append(s.using, members)
			}
			b.define(c)
		}
		c.members = members
		if last == nil {
			first = c
		} else {
			last.add(c)
		}
		last, s = c, members
	}
	if body := n.ChildByFieldName("body"); body != nil {
		b.lowerDecls(dc.with(s, last), body)
	}
	return first
}

func (b *builder) namespaceAlias(dc declCtx, n *sitter.Node) *cursor {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil || n.NamedChildCount() < 2 {
		return nil
	}
	target, refs := b.namespacePath(dc.f, dc.s, n.NamedChild(int(n.NamedChildCount())-1))

	c := b.newDecl(dc.f, ast.KindNamespaceAlias, dc.f.text(nameNode), nameNode, n)
	c.usr = dc.s.prefix() + "@NA@" + c.spelling
	if target != nil {
		c.members = target.members
	}
	c.add(refs...)
	dc.s.declare(c)
	b.define(c)
	return c
}

// namespacePath resolves a namespace name, possibly qualified or nested,
// returning the namespace and the NamespaceRefs for each component.
func (b *builder) namespacePath(f *sourceFile, s *scope, n *sitter.Node) (*cursor, []*cursor) {
	switch n.Type() {
	case "namespace_identifier", "identifier":
		c := s.lookupType(f.text(n))
		if c == nil {
			return nil, nil
		}
		return c, []*cursor{b.refTo(f, n, c)}
	case "nested_namespace_specifier":
		var cur *cursor
		var refs []*cursor
		for i := 0; i < int(n.NamedChildCount()); i++ {
			part := n.NamedChild(i)
			var next *cursor
			if cur == nil && i == 0 {
				next = s.lookupType(f.text(part))
			} else if cur != nil && cur.members != nil {
				next = firstScopeLike(cur.members.local(f.text(part)))
			}
			if next == nil {
				return nil, refs
			}
			refs = append(refs, b.refTo(f, part, next))
			cur = next
		}
		return cur, refs
	case "qualified_identifier":
		owner, name, refs, _ := b.qualifiedParts(f, s, n)
		if owner == nil || name == nil {
			return nil, refs
		}
		c := firstScopeLike(owner.local(f.text(name)))
		if c == nil {
			return nil, refs
		}
		return c, append(refs, b.refTo(f, name, c))
	}
	return nil, nil
}

func firstScopeLike(hits []*cursor) *cursor {
	for _, c := range hits {
		if c.members != nil || c.isType() {
			return c
		}
	}
	return nil
}

func (b *builder) using(dc declCtx, n *sitter.Node) *cursor {
	if n.NamedChildCount() == 0 {
		return nil
	}
	target := n.NamedChild(int(n.NamedChildCount()) - 1)
	directive := false
	for i := 0; i < int(n.ChildCount()); i++ {
		if n.Child(i).Type() == "namespace" {
			directive = true
		}
	}

	if directive {
		ns, refs := b.namespacePath(dc.f, dc.s, target)
		c := b.newDecl(dc.f, ast.KindUsingDirective, dc.f.text(target), target, n)
		c.add(refs...)
		if ns != nil && ns.members != nil {
			c.spelling = ns.spelling
			dc.s.using = append(dc.s.using, ns.members)
		}
		return c
	}

	var hits []*cursor
	var refs []*cursor
	nameNode := target
	if target.Type() == "qualified_identifier" {
		var owner *scope
		owner, nameNode, refs, _ = b.qualifiedParts(dc.f, dc.s, target)
		if owner != nil && nameNode != nil {
			hits = owner.local(dc.f.text(nameNode))
		}
	} else {
		hits = dc.s.lookup(dc.f.text(target))
	}
	if nameNode == nil {
		return nil
	}

	c := b.newDecl(dc.f, ast.KindUsingDeclaration, dc.f.text(nameNode), nameNode, n)
	c.usr = dc.s.prefix() + "@UD@" + c.spelling
	c.add(refs...)
	if len(hits) > 0 {
		set := b.newCursor(dc.f, ast.KindOverloadedDeclRef, c.spelling, nameNode, nameNode)
		set.ref = set
		set.overloads = hits
		c.add(set)
	}
	for _, h := range hits {
		dc.s.bind(c.spelling, h)
	}
	return c
}

func (b *builder) alias(dc declCtx, n *sitter.Node) *cursor {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	ts := dc.s
	if dc.tmpl != nil {
		ts = dc.tmpl.scope
	}
	t, refs := b.lowerType(dc.f, ts, n.ChildByFieldName("type"))

	c := b.newDecl(dc.f, ast.KindTypeAliasDecl, dc.f.text(nameNode), nameNode, n)
	c.usr = dc.s.prefix() + "@T@" + c.spelling
	c.ctype = t
	c.typ = ast.TypeTypedef
	c.add(refs...)
	dc.s.declare(c)
	b.define(c)
	return c
}

func (b *builder) typedef(dc declCtx, n *sitter.Node) []*cursor {
	typeNode := n.ChildByFieldName("type")
	var out []*cursor
	var t *typeInfo
	var refs []*cursor
	if isTagDefinition(typeNode) {
		out = b.lowerDecl(dc, typeNode)
		if len(out) > 0 {
			t = &typeInfo{text: out[0].spelling, decl: out[0]}
		}
	}
	if t == nil {
		t, refs = b.lowerType(dc.f, dc.s, typeNode)
	}

	for _, dn := range fieldChildren(n, "declarator") {
		d := unwrapDeclarator(dn)
		if d.name == nil {
			continue
		}
		c := b.newDecl(dc.f, ast.KindTypedefDecl, dc.f.text(d.name), d.name, n)
		c.usr = dc.s.prefix() + "@T@" + c.spelling
		c.ctype = t
		if d.pointer {
			c.ctype = &typeInfo{text: t.text + "*", decl: t.decl, builtin: t.builtin, pointer: true}
		}
		c.typ = ast.TypeTypedef
		c.add(refs...)
		if rec := recordOf(t.decl); rec != nil && rec.spelling == "" {
			rec.spelling = c.spelling
		}
		dc.s.declare(c)
		b.define(c)
		out = append(out, c)
	}
	return out
}

func isTagDefinition(n *sitter.Node) bool {
	if n == nil {
		return false
	}
	switch n.Type() {
	case "class_specifier", "struct_specifier", "union_specifier", "enum_specifier":
		return n.ChildByFieldName("body") != nil
	}
	return false
}

func fieldChildren(n *sitter.Node, field string) []*sitter.Node {
	var out []*sitter.Node
	for i := 0; i < int(n.ChildCount()); i++ {
		if n.FieldNameForChild(i) == field {
			out = append(out, n.Child(i))
		}
	}
	return out
}

func (b *builder) record(dc declCtx, n *sitter.Node) *cursor {
	kind := ast.KindClassDecl
	switch n.Type() {
	case "struct_specifier":
		kind = ast.KindStructDecl
	case "union_specifier":
		kind = ast.KindUnionDecl
	}

	nameNode := n.ChildByFieldName("name")
	body := n.ChildByFieldName("body")
	f := dc.f
	partial := false
	var nameRefs []*cursor
	name, at := "", n
	if nameNode != nil {
		switch nameNode.Type() {
		case "template_type":
			partial = dc.tmpl != nil
			inner := nameNode.ChildByFieldName("name")
			name, at = f.text(inner), inner
			nameRefs = b.templateArgs(f, b.scopeFor(dc), nameNode.ChildByFieldName("arguments"))
		case "qualified_identifier":
			_, last, refs, _ := b.qualifiedParts(f, dc.s, nameNode)
			nameRefs = refs
			if last != nil {
				name, at = f.text(last), last
			}
		default:
			name, at = f.text(nameNode), nameNode
		}
	}
	if dc.tmpl != nil {
		kind = ast.KindClassTemplate
		if partial {
			kind = ast.KindClassTemplatePartialSpecialization
		}
	}

	ext := n
	if dc.tmpl != nil {
		ext = dc.tmpl.node
	}
	c := b.newDecl(f, kind, name, at, ext)
	c.typ = ast.TypeRecord
	c.usr = recordUSR(dc.s, kind, name, int(n.StartByte()))
	if partial {
		c.usr += fmt.Sprintf("@%d", at.StartByte())
	}
	c.ctype = &typeInfo{text: name, decl: c}

	if prev := dc.s.find(name, c.usr); prev != nil && prev.members != nil {
		c.members = prev.members
	} else {
		c.members = newScope(scopeRecord, b.scopeFor(dc), c)
	}
	if !partial {
		dc.s.declare(c)
	}
	if dc.tmpl != nil {
		c.add(dc.tmpl.params...)
	}
	c.add(nameRefs...)

	for i := 0; i < int(n.NamedChildCount()); i++ {
		clause := n.NamedChild(i)
		if clause.Type() != "base_class_clause" {
			continue
		}
		for j := 0; j < int(clause.NamedChildCount()); j++ {
			bn := clause.NamedChild(j)
			if bn.Type() == "access_specifier" {
				continue
			}
			t, refs := b.lowerType(f, c.members.parent, bn)
			c.add(refs...)
			if t != nil && t.decl != nil {
				c.members.bases = append(c.members.bases, t.decl)
			}
		}
	}

	if body != nil {
		b.define(c)
		b.lowerDecls(dc.with(c.members, c), body)
	}
	return c
}

// scopeFor is the scope an entity's own scope nests in: the template
// parameter scope when lowering a template, else the declaring scope.
func (b *builder) scopeFor(dc declCtx) *scope {
	if dc.tmpl != nil {
		return dc.tmpl.scope
	}
	return dc.s
}

func (b *builder) enum(dc declCtx, n *sitter.Node) *cursor {
	f := dc.f
	scoped := false
	for i := 0; i < int(n.ChildCount()); i++ {
		if t := n.Child(i).Type(); t == "class" || t == "struct" {
			scoped = true
		}
	}
	name, at := "", n
	if nameNode := n.ChildByFieldName("name"); nameNode != nil {
		name, at = f.text(nameNode), nameNode
	}

	c := b.newDecl(f, ast.KindEnumDecl, name, at, n)
	c.typ = ast.TypeEnum
	if name == "" {
		c.usr = fmt.Sprintf("%s@Ea@%d", dc.s.prefix(), n.StartByte())
	} else {
		c.usr = dc.s.prefix() + "@E@" + name
	}
	c.ctype = &typeInfo{text: name, decl: c}
	if prev := dc.s.find(name, c.usr); prev != nil && prev.members != nil {
		c.members = prev.members
	} else {
		c.members = newScope(scopeEnum, dc.s, c)
	}
	dc.s.declare(c)
	if base := n.ChildByFieldName("base"); base != nil {
		_, refs := b.lowerType(f, dc.s, base)
		c.add(refs...)
	}

	body := n.ChildByFieldName("body")
	if body == nil {
		return c
	}
	b.define(c)
	for i := 0; i < int(body.NamedChildCount()); i++ {
		e := body.NamedChild(i)
		if e.Type() != "enumerator" {
			continue
		}
		en := e.ChildByFieldName("name")
		if en == nil {
			continue
		}
		k := b.newDecl(f, ast.KindEnumConstantDecl, f.text(en), en, e)
		k.usr = c.usr + "@" + k.spelling
		k.ctype = c.ctype
		k.typ = ast.TypeEnum
		c.members.declare(k)
		if !scoped {
			dc.s.declare(k)
		}
		b.define(k)
		if v := e.ChildByFieldName("value"); v != nil {
			s := dc.s
			b.jobs = append(b.jobs, func() { k.add(b.lowerExpr(exprCtx{f: f, s: s}, v)) })
		}
		c.add(k)
	}
	return c
}

func (b *builder) template(dc declCtx, n *sitter.Node) []*cursor {
	parent := dc.s
	if dc.tmpl != nil {
		parent = dc.tmpl.scope
	}
	ts := newScope(scopeTemplate, parent, nil)
	list := n.ChildByFieldName("parameters")
	info := &templateInfo{node: n, scope: ts}
	if list != nil {
		info.params = b.templateParams(dc.f, ts, list)
	}

	var out []*cursor
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if list != nil && child.StartByte() == list.StartByte() && child.Type() == list.Type() {
			continue
		}
		inner := dc
		inner.tmpl = info
		out = append(out, b.lowerDecl(inner, child)...)
	}
	return out
}

func (b *builder) templateParams(f *sourceFile, ts *scope, list *sitter.Node) []*cursor {
	var out []*cursor
	for i := 0; i < int(list.NamedChildCount()); i++ {
		p := list.NamedChild(i)
		var c *cursor
		switch p.Type() {
		case "type_parameter_declaration", "variadic_type_parameter_declaration", "optional_type_parameter_declaration":
			nameNode := p.ChildByFieldName("name")
			if nameNode == nil {
				nameNode = childOfType(p, "type_identifier")
			}
			c = b.templateParam(f, ast.KindTemplateTypeParameter, nameNode, p)
			if def := p.ChildByFieldName("default_type"); def != nil {
				_, refs := b.lowerType(f, ts, def)
				c.add(refs...)
			}
		case "template_template_parameter_declaration":
			var nameNode *sitter.Node
			if inner := childOfType(p, "type_parameter_declaration"); inner != nil {
				nameNode = childOfType(inner, "type_identifier")
			}
			c = b.templateParam(f, ast.KindTemplateTemplateParameter, nameNode, p)
		case "parameter_declaration", "optional_parameter_declaration", "variadic_parameter_declaration":
			var nameNode *sitter.Node
			if dn := p.ChildByFieldName("declarator"); dn != nil {
				nameNode = unwrapDeclarator(dn).name
			}
			c = b.templateParam(f, ast.KindTemplateNonTypeParameter, nameNode, p)
			t, refs := b.lowerType(f, ts, p.ChildByFieldName("type"))
			c.ctype, c.typ = t, t.kind()
			c.add(refs...)
		default:
			continue
		}
		ts.declare(c)
		out = append(out, c)
	}
	return out
}

func (b *builder) templateParam(f *sourceFile, kind ast.CursorKind, nameNode, p *sitter.Node) *cursor {
	name, at := "", p
	if nameNode != nil {
		name, at = f.text(nameNode), nameNode
	}
	c := b.newDecl(f, kind, name, at, p)
	c.usr = fmt.Sprintf("c:%s@%d@T@%s", filepath.Base(f.path), at.StartByte(), name)
	c.ctype = &typeInfo{text: name, decl: c, dependent: true}
	c.typ = ast.TypeUnexposed
	return c
}

func childOfType(n *sitter.Node, typ string) *sitter.Node {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if c := n.NamedChild(i); c.Type() == typ {
			return c
		}
	}
	return nil
}
