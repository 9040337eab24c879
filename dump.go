package cxxnav

import (
	"github.com/jward/cxxnav/internal/ast"
	"github.com/jward/cxxnav/internal/classify"
	"github.com/jward/cxxnav/internal/traverse"
)

// DumpRow describes one node for debugging.
type DumpRow struct {
	Location   Location   `json:"location"`
	Spelling   string     `json:"spelling"`
	Kind       string     `json:"kind"`
	TypeKind   string     `json:"type_kind"`
	USR        string     `json:"usr,omitempty"`
	Semantic   SemanticID `json:"semantic"`
	Decl       bool       `json:"declaration"`
	Referenced string     `json:"referenced,omitempty"`
	RefKind    string     `json:"referenced_kind,omitempty"`
	Candidate  string     `json:"candidate,omitempty"`
	Depth      int        `json:"depth"`
}

// Dump returns a row for every node of the unit stored under file that is
// located in file, in traversal order. Rows are also logged at debug
// level.
func (n *Navigator) Dump(file string) []DumpRow {
	tu, ok := n.units.Get(file)
	if !ok {
		return nil
	}
	main := tu.Spelling()
	depth := map[ast.Cursor]int{}
	var rows []DumpRow
	traverse.WalkUnit(tu, func(ctx traverse.Context) traverse.Action {
		c := ctx.Cursor
		d := 0
		if ctx.Parent != nil {
			d = depth[ctx.Parent] + 1
		}
		depth[c] = d
		if c.Location().File != main {
			return traverse.Recurse
		}
		row := DumpRow{
			Location: c.Location(),
			Spelling: c.Spelling(),
			Kind:     c.Kind().String(),
			TypeKind: c.TypeKind().String(),
			USR:      c.USR(),
			Semantic: classify.Classify(ctx),
			Decl:     c.Kind().IsDeclaration(),
			Depth:    d,
		}
		if ref := c.Referenced(); ref != nil {
			row.Referenced = ref.Spelling()
			row.RefKind = ref.Kind().String()
			if ref.NumOverloadedDecls() > 0 {
				row.Candidate = ref.OverloadedDecl(0).Spelling()
			}
		}
		n.logger.Debug("node", "location", row.Location.String(), "spelling", row.Spelling,
			"kind", row.Kind, "type", row.TypeKind, "usr", row.USR, "referenced", row.Referenced)
		rows = append(rows, row)
		return traverse.Recurse
	})
	return rows
}
