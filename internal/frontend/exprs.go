package frontend

import (
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/cxxnav/internal/ast"
)

type exprCtx struct {
	f *sourceFile
	s *scope
}

var (
	boolType   = builtinType("bool")
	intType    = builtinType("int")
	doubleType = builtinType("double")
	charType   = builtinType("char")
)

func (b *builder) lowerExpr(ec exprCtx, n *sitter.Node) *cursor {
	if n == nil {
		return nil
	}
	f := ec.f
	switch n.Type() {
	case "identifier", "qualified_identifier", "template_function":
		return b.nameExpr(ec, n)
	case "call_expression":
		return b.call(ec, n)
	case "field_expression":
		return b.member(ec, n, nil, false)
	case "this":
		c := b.newCursor(f, ast.KindCXXThisExpr, "this", n, n)
		c.ctype = &typeInfo{text: "this", decl: ec.s.record(), pointer: true}
		c.typ = ast.TypeUnexposed
		return c
	case "number_literal":
		text := strings.ToLower(f.text(n))
		isHex := strings.HasPrefix(text, "0x")
		if !isHex && strings.ContainsAny(text, ".e") {
			return b.literal(ec, n, ast.KindFloatingLiteral, doubleType)
		}
		return b.literal(ec, n, ast.KindIntegerLiteral, intType)
	case "string_literal", "raw_string_literal", "concatenated_string":
		return b.literal(ec, n, ast.KindStringLiteral, &typeInfo{text: "const char *", builtin: "char", pointer: true})
	case "char_literal":
		return b.literal(ec, n, ast.KindCharacterLiteral, charType)
	case "true", "false":
		return b.literal(ec, n, ast.KindCXXBoolLiteralExpr, boolType)
	case "nullptr":
		return b.literal(ec, n, ast.KindCXXNullPtrLiteralExpr, &typeInfo{text: "nullptr_t", pointer: true})
	case "parenthesized_expression":
		c := b.newCursor(f, ast.KindParenExpr, "", n, n)
		if n.NamedChildCount() > 0 {
			inner := b.lowerExpr(ec, n.NamedChild(0))
			c.add(inner)
			b.typed(c, inner)
		}
		return c
	case "binary_expression", "assignment_expression":
		c := b.newCursor(f, ast.KindBinaryOperator, "", n, n)
		left := b.lowerExpr(ec, n.ChildByFieldName("left"))
		right := b.lowerExpr(ec, n.ChildByFieldName("right"))
		c.add(left, right)
		op := n.ChildByFieldName("operator")
		switch {
		case op != nil && isComparison(op.Type()):
			c.ctype, c.typ = boolType, ast.TypeBuiltin
		default:
			b.typed(c, left)
			if c.typ != ast.TypeDependent {
				b.promote(c, right)
			}
		}
		return c
	case "unary_expression", "update_expression", "pointer_expression":
		c := b.newCursor(f, ast.KindUnaryOperator, "", n, n)
		arg := b.lowerExpr(ec, n.ChildByFieldName("argument"))
		c.add(arg)
		b.typed(c, arg)
		if op := n.ChildByFieldName("operator"); op != nil && c.ctype != nil && c.typ != ast.TypeDependent {
			switch op.Type() {
			case "!":
				c.ctype, c.typ = boolType, ast.TypeBuiltin
			case "*":
				c.ctype = c.ctype.deref()
				c.typ = c.ctype.kind()
			case "&":
				cp := *c.ctype
				cp.pointer = true
				c.ctype, c.typ = &cp, ast.TypeUnexposed
			}
		}
		return c
	case "conditional_expression":
		c := b.newCursor(f, ast.KindConditionalOperator, "", n, n)
		cond := b.lowerExpr(ec, n.ChildByFieldName("condition"))
		yes := b.lowerExpr(ec, n.ChildByFieldName("consequence"))
		no := b.lowerExpr(ec, n.ChildByFieldName("alternative"))
		c.add(cond, yes, no)
		b.typed(c, yes)
		return c
	case "subscript_expression":
		c := b.unexposed(ec, n)
		if len(c.children) > 0 {
			b.typed(c, c.children[0])
			c.ctype = c.ctype.deref()
		}
		return c
	case "lambda_expression":
		return b.lambda(ec, n)
	}
	return b.unexposed(ec, n)
}

func isComparison(op string) bool {
	switch op {
	case "==", "!=", "<", ">", "<=", ">=", "&&", "||", "and", "or", "not_eq":
		return true
	}
	return false
}

func (b *builder) literal(ec exprCtx, n *sitter.Node, kind ast.CursorKind, t *typeInfo) *cursor {
	c := b.newCursor(ec.f, kind, "", n, n)
	c.ctype = t
	c.typ = t.kind()
	return c
}

// typed copies from's computed type onto c.
func (b *builder) typed(c, from *cursor) {
	if from == nil {
		return
	}
	c.ctype = from.ctype
	c.typ = from.typ
	if c.ctype != nil && c.ctype.dependent {
		c.typ = ast.TypeDependent
	}
}

// promote applies the usual arithmetic conversion between int and double.
func (b *builder) promote(c, other *cursor) {
	if other == nil || other.ctype == nil {
		return
	}
	if other.ctype.dependent {
		c.ctype, c.typ = other.ctype, ast.TypeDependent
		return
	}
	if c.ctype != nil && c.ctype.builtin == "int" && other.ctype.builtin == "double" {
		c.ctype = doubleType
	}
}

// unexposed lowers n generically, keeping the cursors of its children.
func (b *builder) unexposed(ec exprCtx, n *sitter.Node) *cursor {
	c := b.newCursor(ec.f, ast.KindUnexposedExpr, "", n, n)
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c.add(b.lowerAny(ec, n.NamedChild(i))...)
	}
	for _, k := range c.children {
		if k.typ == ast.TypeDependent {
			c.typ = ast.TypeDependent
			c.ctype = &typeInfo{dependent: true}
		}
	}
	return c
}

var typeNodes = map[string]bool{
	"primitive_type": true, "sized_type_specifier": true, "type_identifier": true,
	"template_type": true, "type_descriptor": true, "dependent_type": true,
	"placeholder_type_specifier": true,
}

// lowerAny dispatches a node of unknown category.
func (b *builder) lowerAny(ec exprCtx, n *sitter.Node) []*cursor {
	t := n.Type()
	switch {
	case t == "comment", t == "statement_identifier", t == "field_identifier", t == "operator_name":
		return nil
	case t == "condition_clause", t == "else_clause", t == "init_statement":
		var out []*cursor
		for i := 0; i < int(n.NamedChildCount()); i++ {
			out = append(out, b.lowerAny(ec, n.NamedChild(i))...)
		}
		return out
	case typeNodes[t]:
		_, refs := b.lowerType(ec.f, ec.s, n)
		return refs
	case isStatement(t):
		return one(b.lowerStmt(ec, n))
	}
	return one(b.lowerExpr(ec, n))
}

func isStatement(t string) bool {
	switch t {
	case "declaration", "type_definition", "alias_declaration", "using_declaration",
		"namespace_alias_definition", "for_range_loop", "class_specifier",
		"struct_specifier", "union_specifier", "enum_specifier", "catch_clause":
		return true
	}
	return strings.HasSuffix(t, "_statement")
}

func (b *builder) lowerStmt(ec exprCtx, n *sitter.Node) *cursor {
	f := ec.f
	switch n.Type() {
	case "compound_statement":
		c := b.newCursor(f, ast.KindCompoundStmt, "", n, n)
		inner := exprCtx{f: f, s: newScope(scopeBlock, ec.s, nil)}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			c.add(b.lowerAny(inner, n.NamedChild(i))...)
		}
		return c
	case "expression_statement":
		if n.NamedChildCount() == 0 {
			return nil
		}
		return b.lowerExpr(ec, n.NamedChild(0))
	case "declaration":
		c := b.newCursor(f, ast.KindDeclStmt, "", n, n)
		c.add(b.declaration(declCtx{f: f, s: ec.s, parent: c}, n)...)
		return c
	case "type_definition", "alias_declaration", "using_declaration", "namespace_alias_definition",
		"class_specifier", "struct_specifier", "union_specifier", "enum_specifier":
		c := b.newCursor(f, ast.KindDeclStmt, "", n, n)
		c.add(b.lowerDecl(declCtx{f: f, s: ec.s, parent: c}, n)...)
		return c
	case "return_statement":
		c := b.newCursor(f, ast.KindReturnStmt, "", n, n)
		if n.NamedChildCount() > 0 {
			c.add(b.lowerAny(ec, n.NamedChild(0))...)
		}
		return c
	case "if_statement":
		return b.scoped(ec, n, ast.KindIfStmt)
	case "for_statement":
		return b.scoped(ec, n, ast.KindForStmt)
	case "while_statement":
		return b.scoped(ec, n, ast.KindWhileStmt)
	case "do_statement":
		return b.scoped(ec, n, ast.KindDoStmt)
	case "switch_statement":
		return b.scoped(ec, n, ast.KindSwitchStmt)
	case "case_statement":
		return b.scoped(ec, n, ast.KindCaseStmt)
	case "break_statement":
		return b.newCursor(f, ast.KindBreakStmt, "", n, n)
	case "continue_statement":
		return b.newCursor(f, ast.KindContinueStmt, "", n, n)
	case "for_range_loop":
		return b.rangeFor(ec, n)
	}
	c := b.newCursor(f, ast.KindUnexposedStmt, "", n, n)
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c.add(b.lowerAny(ec, n.NamedChild(i))...)
	}
	return c
}

// scoped lowers a statement whose children share a block scope, such as
// the init-statement and body of a for loop.
func (b *builder) scoped(ec exprCtx, n *sitter.Node, kind ast.CursorKind) *cursor {
	c := b.newCursor(ec.f, kind, "", n, n)
	inner := exprCtx{f: ec.f, s: newScope(scopeBlock, ec.s, nil)}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c.add(b.lowerAny(inner, n.NamedChild(i))...)
	}
	return c
}

func (b *builder) rangeFor(ec exprCtx, n *sitter.Node) *cursor {
	f := ec.f
	c := b.newCursor(f, ast.KindForStmt, "", n, n)
	inner := exprCtx{f: f, s: newScope(scopeBlock, ec.s, nil)}
	if init := n.ChildByFieldName("initializer"); init != nil {
		c.add(b.lowerAny(inner, init)...)
	}
	rng := b.lowerExpr(inner, n.ChildByFieldName("right"))
	if dn := n.ChildByFieldName("declarator"); dn != nil {
		d := unwrapDeclarator(dn)
		if d.name != nil {
			v := b.variable(declCtx{f: f, s: inner.s, parent: c}, n, n.ChildByFieldName("type"), dn, d, false, false)
			if v != nil && v.ctype != nil && v.ctype.builtin == "auto" {
				v.ctype = &typeInfo{dependent: rng != nil && rng.typ == ast.TypeDependent}
				v.typ = v.ctype.kind()
			}
			c.add(v)
		}
	}
	c.add(rng)
	if body := n.ChildByFieldName("body"); body != nil {
		c.add(b.lowerStmt(inner, body))
	}
	return c
}

func (b *builder) lambda(ec exprCtx, n *sitter.Node) *cursor {
	f := ec.f
	c := b.newCursor(f, ast.KindUnexposedExpr, "", n, n)
	ls := newScope(scopeFunction, ec.s, nil)
	if caps := n.ChildByFieldName("captures"); caps != nil {
		for i := 0; i < int(caps.NamedChildCount()); i++ {
			c.add(b.lowerAny(ec, caps.NamedChild(i))...)
		}
	}
	if decl := n.ChildByFieldName("declarator"); decl != nil {
		params, _, _ := b.params(f, ls, decl.ChildByFieldName("parameters"))
		for _, p := range params {
			if p.spelling != "" {
				p.usr = localUSR(f, p.loc.Offset, ls, "@", p.spelling)
				ls.declare(p)
			}
		}
		c.add(params...)
	}
	if body := n.ChildByFieldName("body"); body != nil {
		c.add(b.lowerStmt(exprCtx{f: f, s: ls}, body))
	}
	return c
}

func (b *builder) arguments(ec exprCtx, n *sitter.Node) []*cursor {
	if n == nil {
		return nil
	}
	var out []*cursor
	for i := 0; i < int(n.NamedChildCount()); i++ {
		a := n.NamedChild(i)
		if a.Type() == "comment" {
			continue
		}
		if a.Type() == "initializer_list" {
			out = append(out, b.lowerInit(ec, a, nil))
			continue
		}
		out = append(out, b.lowerExpr(ec, a))
	}
	return out
}

// lookupName resolves an identifier, qualified identifier or template
// function name. It returns the node holding the final name, the
// declarations found, and the references for qualifiers and template
// arguments.
func (b *builder) lookupName(ec exprCtx, n *sitter.Node) (*sitter.Node, []*cursor, []*cursor) {
	f := ec.f
	switch n.Type() {
	case "template_function":
		name, hits, refs := b.lookupName(ec, n.ChildByFieldName("name"))
		return name, hits, append(refs, b.templateArgs(f, ec.s, n.ChildByFieldName("arguments"))...)
	case "qualified_identifier":
		owner, last, refs, _ := b.qualifiedParts(f, ec.s, n)
		if last == nil {
			return n, nil, refs
		}
		var targs []*cursor
		if last.Type() == "template_function" {
			targs = b.templateArgs(f, ec.s, last.ChildByFieldName("arguments"))
			last = last.ChildByFieldName("name")
		}
		if owner == nil {
			return last, nil, append(refs, targs...)
		}
		return last, owner.local(f.text(last)), append(refs, targs...)
	}
	return n, ec.s.lookup(f.text(n)), nil
}

func (b *builder) nameExpr(ec exprCtx, n *sitter.Node) *cursor {
	nameNode, hits, refs := b.lookupName(ec, n)
	c := b.declRef(ec, n, nameNode, hits, nil, false)
	c.add(refs...)
	return c
}

// declRef builds the cursor for a use of a name. Calls pass their
// arguments so that an overload can be chosen.
func (b *builder) declRef(ec exprCtx, whole, nameNode *sitter.Node, hits, args []*cursor, call bool) *cursor {
	f := ec.f
	name := f.text(nameNode)
	c := b.newCursor(f, ast.KindDeclRefExpr, name, nameNode, whole)

	if len(hits) == 0 {
		if m, ok := b.macros[name]; ok {
			c.kind = ast.KindMacroInstantiation
			c.ref = m
			return c
		}
		if ec.s.inTemplate() {
			c.kind = ast.KindOverloadedDeclRef
			c.ref = c
			c.typ = ast.TypeDependent
			c.ctype = &typeInfo{dependent: true}
			return c
		}
		c.typ = ast.TypeInvalid
		b.u.diag(ast.SeverityError, c.loc, fmt.Sprintf("use of undeclared identifier '%s'", name))
		return c
	}

	fns := functions(hits)
	if len(fns) == 0 {
		d := hits[0]
		c.ref = d
		switch {
		case d.kind == ast.KindFieldDecl:
			c.kind = ast.KindMemberRefExpr
		case d.isType():
			c.kind = ast.KindTypeRef
		}
		c.ctype = d.ctype
		c.typ = d.ctype.kind()
		if d.ctype != nil && d.ctype.dependent {
			c.typ = ast.TypeDependent
		}
		return c
	}

	if ec.s.inTemplate() && (anyDependent(args) || (!call && len(fns) > 1)) {
		c.kind = ast.KindOverloadedDeclRef
		c.ref = c
		c.overloads = fns
		c.typ = ast.TypeDependent
		c.ctype = &typeInfo{dependent: true}
		return c
	}

	chosen := fns[0]
	if call {
		if best, tied := pickOverload(fns, args); best != nil {
			chosen = best
		} else if len(tied) > 0 {
			chosen = tied[0]
		}
	}
	c.ref = chosen
	c.ctype = chosen.ctype
	c.typ = ast.TypeFunctionProto
	if chosen.kind == ast.KindCXXMethod {
		c.kind = ast.KindMemberRefExpr
	}
	return c
}

func functions(hits []*cursor) []*cursor {
	var out []*cursor
	for _, h := range hits {
		if h.isFunction() {
			out = append(out, h)
		}
	}
	return out
}

func anyDependent(args []*cursor) bool {
	for _, a := range args {
		if a != nil && (a.typ == ast.TypeDependent || (a.ctype != nil && a.ctype.dependent)) {
			return true
		}
	}
	return false
}

// pickOverload chooses among fns for a call with args. It returns the
// best candidate, or nil and the tied candidates when none is better.
func pickOverload(fns, args []*cursor) (*cursor, []*cursor) {
	var viable []*cursor
	for _, fn := range fns {
		n := len(args)
		if n >= fn.minArgs && (n <= len(fn.params) || fn.variadic) {
			viable = append(viable, fn)
		}
	}
	switch len(viable) {
	case 0:
		return nil, fns
	case 1:
		return viable[0], nil
	}
	best := -1
	var top []*cursor
	for _, fn := range viable {
		score := matchScore(fn, args)
		switch {
		case score > best:
			best, top = score, []*cursor{fn}
		case score == best:
			top = append(top, fn)
		}
	}
	if len(top) == 1 {
		return top[0], nil
	}
	return nil, top
}

func matchScore(fn *cursor, args []*cursor) int {
	score := 0
	for i, a := range args {
		if i >= len(fn.params) || a == nil {
			break
		}
		pt, at := fn.params[i].ctype, a.ctype
		if pt == nil || at == nil {
			continue
		}
		switch {
		case pt.builtin != "" && pt.builtin == at.builtin && pt.pointer == at.pointer:
			score += 3
		case pt.builtin != "" && at.builtin != "" && !pt.pointer && !at.pointer:
			score++
		case pt.record() != nil && pt.record() == at.record():
			score += 3
		}
	}
	return score
}

func (b *builder) call(ec exprCtx, n *sitter.Node) *cursor {
	f := ec.f
	fnNode := n.ChildByFieldName("function")
	args := b.arguments(ec, n.ChildByFieldName("arguments"))
	c := b.newCursor(f, ast.KindCallExpr, "", n, n)
	if fnNode == nil {
		c.add(args...)
		return c
	}

	switch fnNode.Type() {
	case "identifier", "qualified_identifier", "template_function":
		nameNode, hits, refs := b.lookupName(ec, fnNode)
		if rec := firstType(hits); rec != nil {
			c.spelling = rec.spelling
			c.ctype = typeOf(rec.spelling, rec)
			c.typ = c.ctype.kind()
			if ctor, tied := pickOverload(constructors(recordOf(rec)), args); ctor != nil {
				c.ref = ctor
			} else if len(tied) > 0 {
				c.ref = tied[0]
			}
			c.add(refs...)
			c.add(b.refTo(f, nameNode, rec))
			c.add(args...)
			return c
		}
		if m, ok := b.macros[f.text(nameNode)]; ok && len(hits) == 0 {
			mc := b.newCursor(f, ast.KindMacroInstantiation, m.spelling, nameNode, n)
			mc.ref = m
			mc.add(args...)
			return mc
		}

		callee := b.declRef(ec, fnNode, nameNode, hits, args, true)
		callee.add(refs...)
		c.spelling = callee.spelling
		if callee.kind == ast.KindOverloadedDeclRef {
			c.typ = ast.TypeDependent
			c.ctype = callee.ctype
			c.add(callee)
			c.add(args...)
			return c
		}
		c.ref = callee.ref
		c.ctype = callee.ctype
		c.typ = callee.ctype.kind()
		if callee.kind != ast.KindDeclRefExpr {
			c.add(callee)
			break
		}
		wrap := b.newCursor(f, ast.KindUnexposedExpr, callee.spelling, nameNode, fnNode)
		wrap.ref = callee.ref
		wrap.typ = callee.typ
		wrap.add(callee)
		c.add(wrap)
	case "field_expression":
		m := b.member(ec, fnNode, args, true)
		c.add(m)
		if m.typ == ast.TypeDependent {
			c.typ = ast.TypeDependent
			c.ctype = m.ctype
		} else {
			c.spelling = m.spelling
			c.ref = m.ref
			c.ctype = m.ctype
			c.typ = m.ctype.kind()
		}
	default:
		callee := b.lowerExpr(ec, fnNode)
		c.add(callee)
		if callee != nil && callee.typ == ast.TypeDependent {
			c.typ = ast.TypeDependent
		}
	}
	c.add(args...)
	return c
}

func firstType(hits []*cursor) *cursor {
	if len(hits) == 0 || !hits[0].isType() {
		return nil
	}
	return hits[0]
}

// member lowers a field_expression. A member of a type that depends on a
// template parameter cannot be looked up and stays unresolved, with an
// empty spelling and a dependent type.
func (b *builder) member(ec exprCtx, n *sitter.Node, args []*cursor, call bool) *cursor {
	f := ec.f
	base := b.lowerExpr(ec, n.ChildByFieldName("argument"))
	c := b.newCursor(f, ast.KindMemberRefExpr, "", n, n)
	c.add(base)

	var bt *typeInfo
	if base != nil {
		bt = base.ctype
		if base.typ == ast.TypeDependent {
			bt = &typeInfo{dependent: true}
		}
	}
	if op := n.ChildByFieldName("operator"); op != nil && op.Type() == "->" {
		bt = bt.deref()
	}

	field := n.ChildByFieldName("field")
	if field == nil {
		return c
	}
	nameNode := field
	switch field.Type() {
	case "template_method":
		nameNode = field.ChildByFieldName("name")
		c.add(b.templateArgs(f, ec.s, field.ChildByFieldName("arguments"))...)
	case "qualified_identifier":
		_, last, refs, _ := b.qualifiedParts(f, ec.s, field)
		c.add(refs...)
		if last != nil {
			nameNode = last
		}
	}

	if bt == nil || bt.dependent || (bt.record() == nil && bt.builtin == "" && ec.s.inTemplate()) {
		c.typ = ast.TypeDependent
		c.ctype = &typeInfo{dependent: true}
		return c
	}

	c.spelling = f.text(nameNode)
	c.loc = f.start(nameNode)
	rec := bt.record()
	if rec == nil || rec.members == nil {
		c.typ = ast.TypeInvalid
		return c
	}
	hits := rec.members.local(c.spelling)
	if len(hits) == 0 {
		c.typ = ast.TypeInvalid
		b.u.diag(ast.SeverityError, c.loc, fmt.Sprintf("no member named '%s' in '%s'", c.spelling, rec.spelling))
		return c
	}
	if fns := functions(hits); len(fns) > 0 {
		chosen := fns[0]
		if call {
			if best, tied := pickOverload(fns, args); best != nil {
				chosen = best
			} else if len(tied) > 0 {
				chosen = tied[0]
			}
		}
		c.ref = chosen
		c.ctype = chosen.ctype
		c.typ = ast.TypeFunctionProto
		return c
	}
	c.ref = hits[0]
	c.ctype = hits[0].ctype
	c.typ = c.ctype.kind()
	return c
}
