// Package frontend parses C++ sources with tree-sitter and lowers the
// syntax trees into the cursor model of package ast. Name binding covers
// what navigation needs: namespaces, records and their bases, overload
// sets chosen by arity and argument type, templates with dependent
// member access, and the preprocessor's #include and #define.
package frontend

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"

	"github.com/jward/cxxnav/internal/ast"
	"github.com/jward/cxxnav/internal/store"
)

// Frontend implements ast.Frontend.
type Frontend struct {
	logger *slog.Logger
	reader Reader
}

// Option configures a Frontend.
type Option func(*Frontend)

// WithLogger sets the logger used for parse events.
func WithLogger(l *slog.Logger) Option {
	return func(f *Frontend) { f.logger = l }
}

// WithReader replaces the file system the front-end reads sources from.
func WithReader(r Reader) Option {
	return func(f *Frontend) { f.reader = r }
}

// New creates a Frontend that reads from the local file system.
func New(opts ...Option) *Frontend {
	f := &Frontend{logger: slog.Default(), reader: osReader{}}
	for _, o := range opts {
		o(f)
	}
	return f
}

var _ ast.Frontend = (*Frontend)(nil)

// Parse parses the file at path, resolving it and relative include
// directories against workingDir.
func (fe *Frontend) Parse(path string, args []string, workingDir string) (ast.TranslationUnit, error) {
	return fe.ParseContext(context.Background(), path, args, workingDir)
}

// ParseContext is Parse with a context bounding the tree-sitter parse.
func (fe *Frontend) ParseContext(ctx context.Context, path string, args []string, workingDir string) (ast.TranslationUnit, error) {
	main := path
	if !filepath.IsAbs(main) && workingDir != "" {
		main = filepath.Join(workingDir, main)
	}
	main = filepath.Clean(main)

	opts, err := parseArgs(args, workingDir)
	if err != nil {
		return nil, &ast.Error{Op: "parse", Path: path, Kind: ast.ErrorInvalidArguments, Err: err}
	}
	u, err := fe.build(ctx, fe.reader, main, workingDir, args, opts)
	if err != nil {
		return nil, &ast.Error{Op: "parse", Path: path, Kind: errorKind(err), Err: err}
	}
	fe.logger.Debug("parsed unit", "path", main, "files", len(u.order), "diagnostics", len(u.diags))
	return u, nil
}

// Load restores a unit saved with Save by re-parsing the sources it
// recorded, exactly as they were when saved.
func (fe *Frontend) Load(path string) (ast.TranslationUnit, error) {
	snap, err := store.Load(path)
	if err != nil {
		return nil, &ast.Error{Op: "load", Path: path, Kind: ast.ErrorASTRead, Err: err}
	}
	opts, err := parseArgs(snap.Args, snap.WorkingDir)
	if err != nil {
		return nil, &ast.Error{Op: "load", Path: path, Kind: ast.ErrorASTRead, Err: err}
	}
	files := make(snapshotReader, len(snap.Sources))
	for _, src := range snap.Sources {
		files[src.Path] = src.Content
	}
	u, err := fe.build(context.Background(), files, snap.MainFile, snap.WorkingDir, snap.Args, opts)
	if err != nil {
		return nil, &ast.Error{Op: "load", Path: path, Kind: ast.ErrorASTRead, Err: err}
	}
	fe.logger.Debug("loaded unit", "path", path, "main", snap.MainFile)
	return u, nil
}

func (fe *Frontend) build(ctx context.Context, r Reader, main, workingDir string, args []string, opts options) (*unit, error) {
	u := newUnit(main, workingDir, args)
	b := newBuilder(ctx, u, r, opts)
	defer b.close()
	if err := b.build(main); err != nil {
		return nil, err
	}
	return u, nil
}

func errorKind(err error) ast.ErrorKind {
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) || errors.Is(err, fs.ErrNotExist) {
		return ast.ErrorFailure
	}
	return ast.ErrorCrashed
}
