package frontend

import "github.com/jward/cxxnav/internal/ast"

type scopeKind int

const (
	scopeGlobal scopeKind = iota
	scopeNamespace
	scopeRecord
	scopeEnum
	scopeTemplate
	scopeFunction
	scopeBlock
)

// scope is a declarative region. Lookup walks outward through parents;
// record scopes also search their bases, and any scope searches the
// namespaces nominated by its using-directives.
type scope struct {
	kind   scopeKind
	parent *scope
	owner  *cursor
	names  map[string][]*cursor
	bases  []*cursor
	using  []*scope
}

func newScope(kind scopeKind, parent *scope, owner *cursor) *scope {
	return &scope{kind: kind, parent: parent, owner: owner, names: make(map[string][]*cursor)}
}

// declare binds c under its spelling. A redeclaration of an entity already
// bound here is ignored so that lookups return the first declaration.
func (s *scope) declare(c *cursor) {
	s.bind(c.spelling, c)
}

func (s *scope) bind(name string, c *cursor) {
	if name == "" {
		return
	}
	for _, prev := range s.names[name] {
		if prev == c || (c.usr != "" && prev.usr == c.usr) {
			return
		}
	}
	s.names[name] = append(s.names[name], c)
}

// find returns the declaration bound here with the given USR.
func (s *scope) find(name, usr string) *cursor {
	for _, c := range s.names[name] {
		if c.usr == usr {
			return c
		}
	}
	return nil
}

// local searches this scope, then bases of a record scope.
func (s *scope) local(name string) []*cursor {
	return s.localSeen(name, make(map[*scope]bool))
}

func (s *scope) localSeen(name string, seen map[*scope]bool) []*cursor {
	if s == nil || seen[s] {
		return nil
	}
	seen[s] = true
	if hits := s.names[name]; len(hits) > 0 {
		return hits
	}
	for _, base := range s.bases {
		if rec := recordOf(base); rec != nil && rec.members != nil {
			if hits := rec.members.localSeen(name, seen); len(hits) > 0 {
				return hits
			}
		}
	}
	return nil
}

// lookup performs unqualified lookup from s outward.
func (s *scope) lookup(name string) []*cursor {
	for cur := s; cur != nil; cur = cur.parent {
		if hits := cur.local(name); len(hits) > 0 {
			return hits
		}
		for _, u := range cur.using {
			if hits := u.local(name); len(hits) > 0 {
				return hits
			}
		}
	}
	return nil
}

// lookupType is lookup restricted to type and namespace names.
func (s *scope) lookupType(name string) *cursor {
	for _, c := range s.lookup(name) {
		if c.isType() || c.kind == ast.KindNamespace || c.kind == ast.KindNamespaceAlias {
			return c
		}
	}
	return nil
}

func (s *scope) inTemplate() bool {
	for cur := s; cur != nil; cur = cur.parent {
		if cur.kind == scopeTemplate {
			return true
		}
	}
	return false
}

// record returns the innermost enclosing record.
func (s *scope) record() *cursor {
	for cur := s; cur != nil; cur = cur.parent {
		if cur.kind == scopeRecord {
			return cur.owner
		}
	}
	return nil
}

// prefix returns the USR of the innermost named enclosing entity, or "c:".
func (s *scope) prefix() string {
	for cur := s; cur != nil; cur = cur.parent {
		switch cur.kind {
		case scopeNamespace, scopeRecord, scopeEnum:
			if cur.owner != nil && cur.owner.usr != "" {
				return cur.owner.usr
			}
		case scopeFunction:
			if cur.owner != nil && cur.owner.usr != "" {
				return cur.owner.usr
			}
		}
	}
	return "c:"
}

// isLocal reports whether declarations in s are function-local.
func (s *scope) isLocal() bool {
	for cur := s; cur != nil; cur = cur.parent {
		switch cur.kind {
		case scopeFunction, scopeBlock:
			return true
		case scopeRecord, scopeNamespace, scopeGlobal:
			return false
		}
	}
	return false
}

// typeInfo is the front-end's view of a C++ type.
type typeInfo struct {
	text      string
	builtin   string
	decl      *cursor
	dependent bool
	pointer   bool
}

func (t *typeInfo) kind() ast.TypeKind {
	switch {
	case t == nil:
		return ast.TypeInvalid
	case t.dependent:
		return ast.TypeUnexposed
	case t.pointer:
		return ast.TypeUnexposed
	case t.builtin != "":
		return ast.TypeBuiltin
	case t.decl == nil:
		return ast.TypeInvalid
	case t.decl.kind == ast.KindEnumDecl:
		return ast.TypeEnum
	case t.decl.kind == ast.KindTypedefDecl || t.decl.kind == ast.KindTypeAliasDecl:
		return ast.TypeTypedef
	case t.decl.isRecord():
		return ast.TypeRecord
	}
	return ast.TypeUnexposed
}

// record resolves t through typedefs to a record declaration.
func (t *typeInfo) record() *cursor {
	if t == nil || t.dependent {
		return nil
	}
	return recordOf(t.decl)
}

func recordOf(c *cursor) *cursor {
	for depth := 0; c != nil && depth < 16; depth++ {
		switch {
		case c.isRecord():
			return c
		case c.kind == ast.KindTypedefDecl || c.kind == ast.KindTypeAliasDecl:
			if c.ctype == nil {
				return nil
			}
			c = c.ctype.decl
		default:
			return nil
		}
	}
	return nil
}

func (t *typeInfo) deref() *typeInfo {
	if t == nil || !t.pointer {
		return t
	}
	cp := *t
	cp.pointer = false
	return &cp
}

func builtinType(name string) *typeInfo {
	return &typeInfo{text: name, builtin: name}
}
