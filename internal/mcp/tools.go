// Package mcp exposes the navigator as Model Context Protocol tools.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/jward/cxxnav"
)

// Tools adapts a Navigator to MCP tool handlers. The navigator does no
// locking, so every call holds mu.
type Tools struct {
	nav       *cxxnav.Navigator
	storeRoot string
	args      []string
	include   []string
	exclude   []string
	logger    *slog.Logger

	mu sync.Mutex
}

// Option configures Tools.
type Option func(*Tools)

// WithLogger sets the logger. Defaults to slog.Default.
func WithLogger(l *slog.Logger) Option {
	return func(t *Tools) { t.logger = l }
}

// WithParseArgs sets the arguments used when a parse call gives none.
func WithParseArgs(args []string) Option {
	return func(t *Tools) { t.args = args }
}

// WithSources sets the include and exclude globs for directory parses.
func WithSources(include, exclude []string) Option {
	return func(t *Tools) {
		t.include = include
		t.exclude = exclude
	}
}

// New creates Tools over nav. storeRoot is where save and load go by
// default.
func New(nav *cxxnav.Navigator, storeRoot string, opts ...Option) *Tools {
	t := &Tools{nav: nav, storeRoot: storeRoot, logger: slog.Default()}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// NewServer returns an MCP server with every tool registered.
func NewServer(t *Tools, version string) *server.MCPServer {
	s := server.NewMCPServer("cxxnav", version, server.WithToolCapabilities(true))
	t.Register(s)
	return s
}

// Register adds the navigation tools to s.
func (t *Tools) Register(s *server.MCPServer) {
	s.AddTool(parseTool(), t.locked(t.parse))
	s.AddTool(positionTool("find_references",
		"Find every location in a file where the symbol at a position is referenced, across all parsed units."),
		t.locked(t.findReferences))
	s.AddTool(positionTool("classify",
		"Classify the node at a position: semantic category, name and location of the declaration it stands for."),
		t.locked(t.classify))
	s.AddTool(positionTool("definition",
		"Locate the definition of the symbol at a position."),
		t.locked(t.definition))
	s.AddTool(diagnosticsTool(), t.locked(t.diagnostics))
	s.AddTool(storeTool("save", "Write every parsed unit to the store directory."), t.locked(t.save))
	s.AddTool(storeTool("load", "Replace the parsed units with those in the store directory."), t.locked(t.load))
}

func (t *Tools) locked(h server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		t.mu.Lock()
		defer t.mu.Unlock()
		t.logger.Debug("mcp tool call", "tool", req.Params.Name)
		return h(ctx, req)
	}
}

// --- parse ---

func parseTool() mcp.Tool {
	return mcp.NewTool("parse",
		mcp.WithDescription("Parse a C++ source file, or every C++ file under a directory, and keep the units for querying."),
		mcp.WithString("path",
			mcp.Description("File or directory to parse"),
			mcp.Required(),
		),
		mcp.WithArray("args",
			mcp.Description("Compiler arguments such as -Iinclude or -DNAME=1"),
			mcp.Items(map[string]any{"type": "string"}),
		),
	)
}

func (t *Tools) parse(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return toolError(err)
	}
	args := req.GetStringSlice("args", t.args)

	info, err := os.Stat(path)
	if err != nil {
		return toolError(err)
	}
	var keys []string
	if info.IsDir() {
		keys, err = t.nav.ParseDirectory(ctx, path, t.include, t.exclude, args)
		if err != nil {
			return toolError(err)
		}
	} else {
		keys = []string{t.nav.ParseFile(path, args)}
	}

	var sb strings.Builder
	for _, key := range keys {
		tu, ok := t.nav.Unit(key)
		if !ok {
			fmt.Fprintf(&sb, "%s  failed\n", key)
			continue
		}
		fmt.Fprintf(&sb, "%s  %d diagnostics\n", key, len(tu.Diagnostics()))
	}
	if sb.Len() == 0 {
		return mcp.NewToolResultText("No files parsed."), nil
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// --- position queries ---

func positionTool(name, description string) mcp.Tool {
	return mcp.NewTool(name,
		mcp.WithDescription(description),
		mcp.WithString("file",
			mcp.Description("Absolute path of a parsed file"),
			mcp.Required(),
		),
		mcp.WithNumber("line",
			mcp.Description("1-based line"),
			mcp.Required(),
		),
		mcp.WithNumber("column",
			mcp.Description("1-based byte column"),
			mcp.Required(),
		),
	)
}

func position(req mcp.CallToolRequest) (string, int, int, error) {
	file, err := req.RequireString("file")
	if err != nil {
		return "", 0, 0, err
	}
	line, err := req.RequireInt("line")
	if err != nil {
		return "", 0, 0, err
	}
	col, err := req.RequireInt("column")
	if err != nil {
		return "", 0, 0, err
	}
	return file, line, col, nil
}

func (t *Tools) findReferences(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	file, line, col, err := position(req)
	if err != nil {
		return toolError(err)
	}
	locs := t.nav.FindAllReferences(file, line, col).Sorted()
	if len(locs) == 0 {
		return mcp.NewToolResultText("No references found."), nil
	}
	var sb strings.Builder
	for _, loc := range locs {
		sb.WriteString(formatLocation(loc))
		sb.WriteByte('\n')
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func (t *Tools) classify(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	file, line, col, err := position(req)
	if err != nil {
		return toolError(err)
	}
	info, ok := t.nav.Classify(file, line, col)
	if !ok {
		return toolError(fmt.Errorf("no parsed unit for %s", file))
	}
	text := fmt.Sprintf("%s  %s  %s", info.ID, info.Kind, info.Spelling)
	if info.Location.IsValid() {
		text += "  " + formatLocation(info.Location)
	}
	return mcp.NewToolResultText(text), nil
}

func (t *Tools) definition(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	file, line, col, err := position(req)
	if err != nil {
		return toolError(err)
	}
	loc, ok := t.nav.DefinitionAt(file, line, col)
	if !ok {
		return mcp.NewToolResultText("No definition found."), nil
	}
	return mcp.NewToolResultText(formatLocation(loc)), nil
}

// --- diagnostics ---

func diagnosticsTool() mcp.Tool {
	return mcp.NewTool("diagnostics",
		mcp.WithDescription("List the diagnostics of a parsed unit."),
		mcp.WithString("key",
			mcp.Description("Unit key, the absolute path for files parsed by path"),
			mcp.Required(),
		),
	)
}

func (t *Tools) diagnostics(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key, err := req.RequireString("key")
	if err != nil {
		return toolError(err)
	}
	if _, ok := t.nav.Unit(key); !ok {
		return toolError(fmt.Errorf("no parsed unit for %s", key))
	}
	diags := t.nav.Diagnostics(key)
	if len(diags) == 0 {
		return mcp.NewToolResultText("No diagnostics."), nil
	}
	var sb strings.Builder
	for _, d := range diags {
		sb.WriteString(d.String())
		sb.WriteByte('\n')
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// --- save / load ---

func storeTool(name, description string) mcp.Tool {
	return mcp.NewTool(name,
		mcp.WithDescription(description),
		mcp.WithString("root",
			mcp.Description("Store directory. Defaults to the configured store root."),
		),
	)
}

func (t *Tools) save(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	root := req.GetString("root", t.storeRoot)
	if !t.nav.SaveAll(root) {
		return toolError(fmt.Errorf("some units could not be saved to %s", root))
	}
	return mcp.NewToolResultText(fmt.Sprintf("Saved %d units to %s.", t.nav.Len(), root)), nil
}

func (t *Tools) load(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	root := req.GetString("root", t.storeRoot)
	if !t.nav.LoadAll(root) {
		return toolError(fmt.Errorf("some units could not be loaded from %s (%d loaded)", root, t.nav.Len()))
	}
	return mcp.NewToolResultText(fmt.Sprintf("Loaded %d units from %s.", t.nav.Len(), root)), nil
}

func formatLocation(loc cxxnav.Location) string {
	return fmt.Sprintf("%s:%d:%d", loc.File, loc.Line, loc.Column)
}

func toolError(err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(err.Error()), nil
}
