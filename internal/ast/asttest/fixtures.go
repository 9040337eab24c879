package asttest

import "github.com/jward/cxxnav/internal/ast"

// Calls is a three-unit corpus. decl.h declares foo(int) and an unrelated
// foo(double); calls.h calls foo(int) three times and foo(double) once.
// a.cpp and b.cpp both include the two headers, and calls.h and decl.h are
// also parsed as units of their own.
type Calls struct {
	Decl  *File
	Sites *File
	A     *File
	B     *File

	Frontend *Frontend
}

const (
	declSrc  = "int foo(int x);\nint foo(double y);\n"
	sitesSrc = "int one() { return foo(1); }\nint two() { return foo(2) + foo(3); }\nint three() { return foo(4.5); }\n"
	aSrc     = "#include \"decl.h\"\n#include \"calls.h\"\nint main() { return one(); }\n"
	bSrc     = "#include \"decl.h\"\n#include \"calls.h\"\nint other() { return two(); }\n"
)

// USRs of the fixture declarations.
const (
	FooIntUSR    = "c:@F@foo#I#"
	FooDoubleUSR = "c:@F@foo#d#"
)

// NewCalls builds the corpus with separate node trees per unit.
func NewCalls() *Calls {
	fx := &Calls{
		Decl:  NewFile("/src/decl.h", declSrc),
		Sites: NewFile("/src/calls.h", sitesSrc),
		A:     NewFile("/src/a.cpp", aSrc),
		B:     NewFile("/src/b.cpp", bSrc),
	}
	fx.Frontend = NewFrontend(
		fx.unit(fx.A, "main", "one"),
		fx.unit(fx.B, "other", "two"),
		fx.unit(fx.Sites, "", ""),
		fx.unit(fx.Decl, "", ""),
	)
	return fx
}

func (fx *Calls) unit(main *File, fn, callee string) *Unit {
	d, s := fx.Decl, fx.Sites

	fooInt := d.Decl(ast.KindFunctionDecl, "foo", 0, FooIntUSR, d.Until("int", 0, ";"),
		d.Decl(ast.KindParmDecl, "x", 0, "c:decl.h@12@F@foo#I#@x", d.Span("int", 1, "x", 0)))
	fooDouble := d.Decl(ast.KindFunctionDecl, "foo", 1, FooDoubleUSR, d.Until("int", 2, ";"),
		d.Decl(ast.KindParmDecl, "y", 0, "c:decl.h@28@F@foo#d#@y", d.Span("double", 0, "y", 0)))

	call := func(f *File, name string, nth int, target *Node, lit string) *Node {
		args := []*Node{}
		if lit != "" {
			tok := f.Tok(lit, 0)
			args = append(args, f.Node(ast.KindIntegerLiteral, "", tok.Extent.Start, tok.Extent))
		}
		return CallTo(f, name, nth, target, args...)
	}
	body := func(f *File, nth int, expr *Node) *Node {
		ret := f.Node(ast.KindReturnStmt, "", f.At("return", nth), f.Until("return", nth, ";"), expr)
		return f.Node(ast.KindCompoundStmt, "", f.At("{", nth), f.Until("{", nth, "}"), ret)
	}

	sum := func() *Node {
		l := call(s, "foo", 1, fooInt, "2")
		r := call(s, "foo", 2, fooInt, "3")
		return s.Node(ast.KindBinaryOperator, "", l.Loc, ast.Extent{Start: l.Ext.Start, End: r.Ext.End}, l, r)
	}()
	one := s.Decl(ast.KindFunctionDecl, "one", 0, "c:@F@one#", s.Until("int", 0, "}"),
		body(s, 0, call(s, "foo", 0, fooInt, "1")))
	two := s.Decl(ast.KindFunctionDecl, "two", 0, "c:@F@two#", s.Until("int", 1, "}"),
		body(s, 1, sum))
	three := s.Decl(ast.KindFunctionDecl, "three", 0, "c:@F@three#", s.Until("int", 2, "}"),
		body(s, 2, call(s, "foo", 3, fooDouble, "")))

	if main == d {
		return NewUnit(d, fooInt, fooDouble)
	}
	top := []*Node{fooInt, fooDouble, one, two, three}
	if fn != "" {
		target := one
		if callee == "two" {
			target = two
		}
		top = append(top, main.Decl(ast.KindFunctionDecl, fn, 0, "c:@F@"+fn+"#", main.Until("int", 0, "}"),
			body(main, 0, call(main, callee, 0, target, ""))))
	}
	return NewUnit(main, top...)
}

// CallTo builds a libclang-shaped call: a CALL_EXPR whose callee is an
// UNEXPOSED_EXPR wrapping a DECL_REF_EXPR, all three located at the callee
// name and referencing target.
func CallTo(f *File, name string, nth int, target *Node, args ...*Node) *Node {
	ref := f.Ref(ast.KindDeclRefExpr, name, nth, target)
	callee := f.Ref(ast.KindUnexposedExpr, name, nth, target, ref)
	c := f.Ref(ast.KindCallExpr, name, nth, target, append([]*Node{callee}, args...)...)
	c.Ext = f.Until(name, nth, ")")
	c.Type = ast.TypeBuiltin
	return c
}

// Template is a single-file unit with member accesses on a dependent
// object inside a function template.
type Template struct {
	File *File
	Unit *Unit

	Param  *Node
	Call   *Node // t.go()
	Go     *Node // member access under the call
	Size   *Node // t.size, parent is a compound statement
	Inner  *Node // t.a
	Outer  *Node // t.a.b
	Direct *Node // s.n on a non-dependent struct
	Field  *Node // the n field declaration
}

const templateSrc = `struct S { int n; };
template <typename T>
void run(T t, S s) {
  t.go();
  t.size;
  t.a.b;
  s.n;
}
`

// NewTemplate builds the dependent-access fixture.
func NewTemplate() *Template {
	f := NewFile("/src/tmpl.h", templateSrc)
	fx := &Template{File: f}

	fx.Field = f.Decl(ast.KindFieldDecl, "n", 0, "c:@S@S@FI@n", f.Span("int", 0, "n", 0))
	record := f.Decl(ast.KindStructDecl, "S", 0, "c:@S@S", f.Until("struct", 0, "}"), fx.Field)

	tparam := f.Decl(ast.KindTemplateTypeParameter, "T", 0, "c:tmpl.h@30@T", f.Span("typename", 0, "T", 0))
	fx.Param = f.Decl(ast.KindParmDecl, "t", 0, "c:tmpl.h@50@FT@>1#Trun#t0.0#$@S@S#v#@t", f.Span("T", 1, "t", 0))
	sParam := f.Decl(ast.KindParmDecl, "s", 0, "c:tmpl.h@55@FT@>1#Trun#t0.0#$@S@S#v#@s", f.Span("S", 1, "s", 0))
	sParam.Type = ast.TypeRecord

	base := func(nth int) *Node {
		return f.Ref(ast.KindDeclRefExpr, "t", nth, fx.Param).WithType(ast.TypeDependent)
	}
	member := func(nth int, last string, kids ...*Node) *Node {
		return f.Node(ast.KindMemberRefExpr, "", f.At("t", nth), f.Span("t", nth, last, 0), kids...).
			WithType(ast.TypeDependent)
	}

	fx.Go = member(1, "go", base(1))
	fx.Call = f.Node(ast.KindCallExpr, "", f.At("t", 1), f.Until("t", 1, ")"), fx.Go).WithType(ast.TypeDependent)
	fx.Size = member(2, "size", base(2))
	fx.Inner = member(3, "a", base(3))
	fx.Outer = member(3, "b", fx.Inner)

	sRef := f.Ref(ast.KindDeclRefExpr, "s", 1, sParam).WithType(ast.TypeRecord)
	fx.Direct = f.Ref(ast.KindMemberRefExpr, "n", 1, fx.Field, sRef).WithType(ast.TypeBuiltin)
	fx.Direct.Loc = f.At("n", 1)
	fx.Direct.Ext = f.Span("s", 1, "n", 1)

	body := f.Node(ast.KindCompoundStmt, "", f.At("{", 1), f.Until("{", 1, "}"), fx.Call, fx.Size, fx.Outer, fx.Direct)
	fn := f.Decl(ast.KindFunctionTemplate, "run", 0, "c:@FT@>1#Trun#t0.0#$@S@S#v#", f.Until("template", 0, "}"),
		tparam, fx.Param, sParam, body)

	fx.Unit = NewUnit(f, record, fn)
	return fx
}
