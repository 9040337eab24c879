package frontend

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/cxxnav/internal/ast"
)

// function lowers a function declaration or definition. body is nil for
// prototypes.
func (b *builder) function(dc declCtx, n, typeNode, declNode, body *sitter.Node) *cursor {
	f := dc.f
	d := unwrapDeclarator(declNode)
	if d.fn == nil || d.name == nil {
		return nil
	}

	s := dc.s
	nameNode := d.name
	var qualRefs []*cursor
	qualified := false
	if nameNode.Type() == "qualified_identifier" {
		owner, last, refs, _ := b.qualifiedParts(f, dc.s, nameNode)
		qualRefs = refs
		if owner != nil {
			s, qualified = owner, true
		}
		if last == nil {
			return nil
		}
		nameNode = last
	}
	if nameNode.Type() == "template_function" {
		nameNode = nameNode.ChildByFieldName("name")
	}
	name := f.text(nameNode)

	kind := ast.KindFunctionDecl
	if s.kind == scopeRecord && s.owner != nil {
		switch name {
		case s.owner.spelling:
			kind = ast.KindConstructor
		case "~" + s.owner.spelling:
			kind = ast.KindDestructor
		default:
			kind = ast.KindCXXMethod
		}
	}
	// The template header of an out-of-line member of a class template
	// belongs to the class, not the member.
	memberOfTemplate := qualified && s.owner != nil && s.owner.kind == ast.KindClassTemplate
	if dc.tmpl != nil && !memberOfTemplate {
		kind = ast.KindFunctionTemplate
	}

	ext := n
	if dc.tmpl != nil {
		ext = dc.tmpl.node
	}
	c := b.newDecl(f, kind, name, nameNode, ext)
	c.typ = ast.TypeFunctionProto

	outer := s
	if dc.tmpl != nil {
		dc.tmpl.scope.parent = s
		outer = dc.tmpl.scope
	}
	fnScope := newScope(scopeFunction, outer, c)

	ret, retRefs := b.lowerType(f, outer, typeNode)
	if d.pointer {
		cp := *ret
		cp.pointer = true
		ret = &cp
	}
	c.ctype = ret

	params, minArgs, variadic := b.params(f, fnScope, d.fn.ChildByFieldName("parameters"))
	c.params, c.minArgs, c.variadic = params, minArgs, variadic

	tparams := 0
	if kind == ast.KindFunctionTemplate {
		tparams = len(dc.tmpl.params)
	}
	c.usr = functionUSR(s, kind, name, params, tparams, hasQualifier(f, d.fn, "const"))
	for _, p := range params {
		if p.spelling != "" {
			p.usr = localUSR(f, p.loc.Offset, fnScope, "@", p.spelling)
			fnScope.declare(p)
		}
	}
	s.declare(c)

	if dc.tmpl != nil {
		c.add(dc.tmpl.params...)
	}
	c.add(retRefs...)
	c.add(qualRefs...)
	c.add(params...)

	if body == nil || body.Type() != "compound_statement" {
		return c
	}
	b.define(c)
	inits := childOfType(n, "field_initializer_list")
	b.jobs = append(b.jobs, func() {
		ec := exprCtx{f: f, s: fnScope}
		if inits != nil {
			c.add(b.initializers(ec, s, inits)...)
		}
		c.add(b.lowerStmt(ec, body))
	})
	return c
}

func hasQualifier(f *sourceFile, fn *sitter.Node, q string) bool {
	for i := 0; i < int(fn.NamedChildCount()); i++ {
		if k := fn.NamedChild(i); k.Type() == "type_qualifier" && f.text(k) == q {
			return true
		}
	}
	return false
}

// params lowers a parameter_list. minArgs counts the parameters before
// the first default argument.
func (b *builder) params(f *sourceFile, fnScope *scope, list *sitter.Node) ([]*cursor, int, bool) {
	if list == nil {
		return nil, 0, false
	}
	var out []*cursor
	minArgs, defaulted, variadic := 0, false, false
	for i := 0; i < int(list.ChildCount()); i++ {
		p := list.Child(i)
		switch p.Type() {
		case "...":
			variadic = true
			continue
		case "parameter_declaration", "optional_parameter_declaration", "variadic_parameter_declaration":
		default:
			continue
		}
		t, refs := b.lowerType(f, fnScope, p.ChildByFieldName("type"))
		name, at := "", p
		if dn := p.ChildByFieldName("declarator"); dn != nil {
			d := unwrapDeclarator(dn)
			if d.name != nil {
				name, at = f.text(d.name), d.name
			}
			if d.pointer || d.fn != nil {
				cp := *t
				cp.pointer = true
				t = &cp
			}
		} else if t.builtin == "void" && !t.pointer {
			continue
		}

		pc := b.newDecl(f, ast.KindParmDecl, name, at, p)
		pc.ctype = t
		pc.typ = t.kind()
		if t.dependent {
			pc.typ = ast.TypeDependent
		}
		pc.add(refs...)
		if p.Type() == "variadic_parameter_declaration" {
			variadic = true
		}
		if p.Type() == "optional_parameter_declaration" {
			defaulted = true
			if v := p.ChildByFieldName("default_value"); v != nil {
				pc.add(b.lowerExpr(exprCtx{f: f, s: fnScope.parent}, v))
			}
		} else if !defaulted && p.Type() != "variadic_parameter_declaration" {
			minArgs++
		}
		out = append(out, pc)
	}
	return out, minArgs, variadic
}

// initializers lowers a constructor's member initializer list.
func (b *builder) initializers(ec exprCtx, rec *scope, list *sitter.Node) []*cursor {
	var out []*cursor
	for i := 0; i < int(list.NamedChildCount()); i++ {
		fi := list.NamedChild(i)
		if fi.Type() != "field_initializer" || fi.NamedChildCount() == 0 {
			continue
		}
		nameNode := fi.NamedChild(0)
		if nameNode.Type() == "field_identifier" {
			if hits := rec.local(ec.f.text(nameNode)); len(hits) > 0 {
				out = append(out, b.refTo(ec.f, nameNode, hits[0]))
			}
		} else {
			_, refs := b.lowerType(ec.f, ec.s, nameNode)
			out = append(out, refs...)
		}
		for j := 1; j < int(fi.NamedChildCount()); j++ {
			out = append(out, b.lowerInit(ec, fi.NamedChild(j), nil))
		}
	}
	return out
}

func (b *builder) declaration(dc declCtx, n *sitter.Node) []*cursor {
	typeNode := n.ChildByFieldName("type")
	var out []*cursor
	if isTagDefinition(typeNode) {
		out = append(out, b.lowerDecl(dc, typeNode)...)
	}

	static, extern := false, false
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if k := n.NamedChild(i); k.Type() == "storage_class_specifier" {
			switch dc.f.text(k) {
			case "static":
				static = true
			case "extern":
				extern = true
			}
		}
	}

	for _, dn := range fieldChildren(n, "declarator") {
		d := unwrapDeclarator(dn)
		if d.name == nil {
			continue
		}
		if d.fn != nil {
			out = append(out, b.function(dc, n, typeNode, dn, nil))
			continue
		}
		out = append(out, b.variable(dc, n, typeNode, dn, d, static, extern))
	}
	return out
}

// variable lowers one declarator of a variable or field declaration.
func (b *builder) variable(dc declCtx, n, typeNode, declNode *sitter.Node, d declarator, static, extern bool) *cursor {
	f := dc.f
	s := dc.s
	nameNode := d.name
	var qualRefs []*cursor
	if nameNode.Type() == "qualified_identifier" {
		owner, last, refs, _ := b.qualifiedParts(f, dc.s, nameNode)
		qualRefs = refs
		if owner != nil {
			s = owner
		}
		if last == nil {
			return nil
		}
		nameNode = last
	}
	name := f.text(nameNode)

	kind := ast.KindVarDecl
	if s.kind == scopeRecord && !static && n.Type() == "field_declaration" {
		kind = ast.KindFieldDecl
	}
	c := b.newDecl(f, kind, name, nameNode, n)
	c.ext = f.span(n, declNode)

	t, refs := b.lowerType(f, dc.s, typeNode)
	if d.pointer {
		cp := *t
		cp.pointer = true
		t = &cp
	}
	c.ctype = t
	c.typ = t.kind()
	if t.dependent {
		c.typ = ast.TypeDependent
	}

	switch {
	case kind == ast.KindFieldDecl:
		c.usr = s.prefix() + "@FI@" + name
	case s.isLocal():
		c.usr = localUSR(f, c.loc.Offset, s, "@", name)
	default:
		c.usr = s.prefix() + "@" + name
	}
	s.declare(c)
	c.add(refs...)
	c.add(qualRefs...)
	if !extern {
		b.define(c)
	}

	init := d.init
	if init == nil {
		init = n.ChildByFieldName("default_value")
	}
	if init == nil {
		return c
	}
	lower := func() {
		ic := b.lowerInit(exprCtx{f: f, s: dc.s}, init, t)
		c.add(ic)
		if t.builtin == "auto" && ic != nil && ic.ctype != nil {
			c.ctype = ic.ctype
			c.typ = ic.ctype.kind()
		}
	}
	if dc.s.isLocal() {
		lower()
	} else {
		b.jobs = append(b.jobs, lower)
	}
	return c
}

// lowerInit lowers an initializer. A parenthesized argument list on a
// record type is a constructor call.
func (b *builder) lowerInit(ec exprCtx, n *sitter.Node, t *typeInfo) *cursor {
	if n.Type() != "argument_list" && n.Type() != "initializer_list" {
		return b.lowerExpr(ec, n)
	}
	args := b.arguments(ec, n)
	if rec := t.record(); rec != nil {
		c := b.newCursor(ec.f, ast.KindCallExpr, rec.spelling, n, n)
		c.ctype = t
		c.typ = t.kind()
		if ctor, _ := pickOverload(constructors(rec), args); ctor != nil {
			c.ref = ctor
		}
		c.add(args...)
		return c
	}
	c := b.newCursor(ec.f, ast.KindUnexposedExpr, "", n, n)
	c.ctype = t
	c.add(args...)
	return c
}

func constructors(rec *cursor) []*cursor {
	if rec == nil || rec.members == nil {
		return nil
	}
	var out []*cursor
	for _, c := range rec.members.names[rec.spelling] {
		if c.kind == ast.KindConstructor {
			out = append(out, c)
		}
	}
	return out
}
