package cxxnav

import (
	"github.com/jward/cxxnav/internal/ast"
	"github.com/jward/cxxnav/internal/classify"
	"github.com/jward/cxxnav/internal/refs"
	"github.com/jward/cxxnav/internal/traverse"
)

// Public aliases for the internal types that appear in the Navigator API.

type Location = ast.SourceLocation
type Cursor = ast.Cursor
type TranslationUnit = ast.TranslationUnit
type Diagnostic = ast.Diagnostic
type Context = traverse.Context
type Info = classify.Info
type SemanticID = classify.ID
type ReferenceResult = refs.Result
