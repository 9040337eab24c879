package frontend

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/cpp"

	"github.com/jward/cxxnav/internal/ast"
)

const maxIncludeDepth = 200

// builder lowers tree-sitter syntax trees into a unit's cursor tree.
// Declarations are lowered in source order; function bodies and
// initializers are queued and lowered once every declaration is bound.
type builder struct {
	ctx      context.Context
	u        *unit
	reader   Reader
	opts     options
	parser   *sitter.Parser
	global   *scope
	nsScopes map[string]*scope
	macros   map[string]*cursor
	included map[string]bool
	jobs     []func()
	trees    []*sitter.Tree
}

func newBuilder(ctx context.Context, u *unit, reader Reader, opts options) *builder {
	p := sitter.NewParser()
	p.SetLanguage(cpp.GetLanguage())
	return &builder{
		ctx:      ctx,
		u:        u,
		reader:   reader,
		opts:     opts,
		parser:   p,
		global:   newScope(scopeGlobal, nil, nil),
		nsScopes: make(map[string]*scope),
		macros:   make(map[string]*cursor),
		included: make(map[string]bool),
	}
}

func (b *builder) close() {
	for _, t := range b.trees {
		t.Close()
	}
	b.trees = nil
	b.parser.Close()
}

// build lowers the main file and everything it includes.
func (b *builder) build(mainPath string) error {
	content, err := b.reader.ReadFile(mainPath)
	if err != nil {
		return err
	}
	f, err := b.parse(mainPath, content)
	if err != nil {
		return err
	}
	b.included[mainPath] = true

	root := &cursor{
		kind:     ast.KindTranslationUnit,
		spelling: mainPath,
		typ:      ast.TypeInvalid,
		loc:      f.loc(0),
		ext:      ast.Extent{Start: f.loc(0), End: f.loc(len(content))},
		unit:     b.u,
		file:     f,
	}
	b.u.root = root
	for name := range b.opts.defines {
		m := &cursor{kind: ast.KindMacroDefinition, spelling: name, usr: "c:@macro@" + name, unit: b.u}
		m.ref = m
		b.macros[name] = m
	}

	b.lowerDecls(declCtx{f: f, s: b.global, parent: root, depth: 0}, f.tree.RootNode())
	for len(b.jobs) > 0 {
		job := b.jobs[0]
		b.jobs = b.jobs[1:]
		job()
	}
	b.u.annotate()
	return nil
}

func (b *builder) parse(path string, content []byte) (*sourceFile, error) {
	tree, err := b.parser.ParseCtx(b.ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	b.trees = append(b.trees, tree)
	f := newSourceFile(path, content)
	f.tree = tree
	f.lex()
	b.u.addFile(f)
	b.syntaxDiagnostics(f)
	return f, nil
}

func (b *builder) syntaxDiagnostics(f *sourceFile) {
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		switch {
		case n.IsMissing():
			b.u.diag(ast.SeverityError, f.start(n), fmt.Sprintf("expected '%s'", n.Type()))
			return
		case n.IsError():
			b.u.diag(ast.SeverityError, f.start(n), "syntax error")
			return
		case !n.HasError():
			return
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(f.tree.RootNode())
}

func (b *builder) newCursor(f *sourceFile, kind ast.CursorKind, spelling string, at, ext *sitter.Node) *cursor {
	return &cursor{
		kind:     kind,
		spelling: spelling,
		loc:      f.start(at),
		ext:      f.extent(ext),
		unit:     b.u,
		file:     f,
	}
}

func (b *builder) newDecl(f *sourceFile, kind ast.CursorKind, spelling string, at, ext *sitter.Node) *cursor {
	c := b.newCursor(f, kind, spelling, at, ext)
	c.ref = c
	return c
}

// include resolves an #include directive and lowers the included file's
// declarations in place.
func (b *builder) include(dc declCtx, n *sitter.Node) {
	pathNode := n.ChildByFieldName("path")
	if pathNode == nil {
		return
	}
	raw := dc.f.text(pathNode)
	quoted := pathNode.Type() == "string_literal"
	name := strings.Trim(raw, "\"<>")

	dir := b.newCursor(dc.f, ast.KindInclusionDirective, name, n, n)
	dc.parent.add(dir)

	found, content, ok := b.resolveInclude(dc.f.path, name, quoted)
	if !ok {
		b.u.diag(ast.SeverityFatal, dc.f.start(pathNode), fmt.Sprintf("'%s' file not found", name))
		return
	}
	if b.included[found] {
		return
	}
	if dc.depth >= maxIncludeDepth {
		b.u.diag(ast.SeverityFatal, dc.f.start(pathNode), "#include nested too deeply")
		return
	}
	b.included[found] = true
	f, err := b.parse(found, content)
	if err != nil {
		b.u.diag(ast.SeverityFatal, dc.f.start(pathNode), err.Error())
		return
	}
	b.lowerDecls(declCtx{f: f, s: dc.s, parent: dc.parent, depth: dc.depth + 1}, f.tree.RootNode())
}

// resolveInclude searches the include path. Files already in the unit are
// returned without content.
func (b *builder) resolveInclude(from, name string, quoted bool) (string, []byte, bool) {
	if filepath.IsAbs(name) {
		return b.probe(filepath.Clean(name))
	}
	var dirs []string
	if quoted {
		dirs = append(dirs, filepath.Dir(from))
		dirs = append(dirs, b.opts.quoteDirs...)
	}
	dirs = append(dirs, b.opts.includeDirs...)
	dirs = append(dirs, b.opts.systemDirs...)
	for _, d := range dirs {
		if found, content, ok := b.probe(filepath.Join(d, name)); ok {
			return found, content, true
		}
	}
	return "", nil, false
}

func (b *builder) probe(path string) (string, []byte, bool) {
	path = filepath.Clean(path)
	if b.included[path] {
		return path, nil, true
	}
	content, err := b.reader.ReadFile(path)
	if err != nil {
		return "", nil, false
	}
	return path, content, true
}
