package cxxnav

import (
	"github.com/jward/cxxnav/internal/ast"
	"github.com/jward/cxxnav/internal/classify"
	"github.com/jward/cxxnav/internal/traverse"
)

// NodeAt returns the most specific node covering a position in file,
// together with its parent. The unit is the one stored under file and the
// position is in that unit's main file.
func (n *Navigator) NodeAt(file string, line, column int) (Context, bool) {
	tu, ok := n.units.Get(file)
	if !ok {
		return Context{}, false
	}
	c := tu.CursorAt(tu.Spelling(), line, column)
	if c == nil {
		return Context{}, false
	}
	if ctx, ok := traverse.Find(tu, tu.Cursor(), func(ctx traverse.Context) bool {
		return ctx.Cursor == c
	}); ok {
		return ctx, true
	}
	return traverse.Context{Cursor: c, Unit: tu}, true
}

// Classify describes the declaration the node at a position stands for.
func (n *Navigator) Classify(file string, line, column int) (Info, bool) {
	ctx, ok := n.NodeAt(file, line, column)
	if !ok {
		return Info{}, false
	}
	info := classify.Describe(ctx)
	n.logger.Debug("classify", "file", file, "line", line, "column", column,
		"id", info.ID, "spelling", info.Spelling)
	return info, true
}

// FindAllReferences returns every location in file where the symbol at the
// position is referenced, across all stored units.
func (n *Navigator) FindAllReferences(file string, line, column int) ReferenceResult {
	return n.finder.FindAll(file, line, column)
}

// DefinitionAt returns the location of the definition of the symbol at a
// position. It reports false when the definition is not in any unit.
func (n *Navigator) DefinitionAt(file string, line, column int) (Location, bool) {
	tu, ok := n.units.Get(file)
	if !ok {
		return Location{}, false
	}
	c := tu.CursorAt(tu.Spelling(), line, column)
	if c == nil {
		return Location{}, false
	}
	if def := definition(c); def != nil {
		return def.Location(), true
	}
	// A declaration parsed in one unit may be defined in another.
	usr := classify.Target(c).USR()
	if usr == "" {
		return Location{}, false
	}
	for _, other := range n.units.Units() {
		if other == tu {
			continue
		}
		var found ast.Cursor
		traverse.WalkUnit(other, func(ctx traverse.Context) traverse.Action {
			if ctx.Cursor.USR() != usr {
				return traverse.Recurse
			}
			if def := ctx.Cursor.Definition(); def != nil {
				found = def
				return traverse.Break
			}
			return traverse.Recurse
		})
		if found != nil {
			return found.Location(), true
		}
	}
	return Location{}, false
}

func definition(c ast.Cursor) ast.Cursor {
	if def := c.Definition(); def != nil {
		return def
	}
	if t := classify.Target(c); t != c {
		return t.Definition()
	}
	return nil
}
