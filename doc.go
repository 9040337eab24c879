// Package cxxnav provides semantic navigation over C++ sources: classify
// the declaration a position refers to, find every reference to it, and
// jump to its definition. It looks through overload sets the front-end
// could not narrow and through member accesses on template-dependent
// objects, which have no declaration until instantiation.
//
// # Usage
//
// Create a Navigator, parse sources, and query by position:
//
//	nav := cxxnav.New(cxxnav.WithSystemIncludes("-isystem", "/usr/include/c++/12"))
//	keys, err := nav.ParseDirectory(ctx, "path/to/project", nil, nil, nil)
//	if err != nil { ... }
//
//	info, ok := nav.Classify("/abs/path/widget.h", 42, 7)
//	locs := nav.FindAllReferences("/abs/path/widget.h", 42, 7).Sorted()
//
// Units are keyed by the absolute path of their main file. Reference
// queries name a file that must itself be a parsed unit, and report only
// locations inside that file, gathered from every unit that includes it.
//
// # Persistence
//
// [Navigator.SaveAll] writes one <key>.ast artifact per unit under a root
// directory and [Navigator.LoadAll] restores them. Artifacts carry the
// sources they were parsed from, so a restored unit is independent of
// later edits on disk.
//
// # Front-end
//
// Parsing is done by internal/frontend, which lowers tree-sitter syntax
// trees into libclang-shaped cursors. Any [ast.Frontend] can be swapped
// in with [WithFrontend].
package cxxnav
