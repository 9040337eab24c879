// Package runtime embeds a Risor VM and exposes the navigator's queries to
// scripts.
package runtime

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/risor-io/risor"
	"github.com/risor-io/risor/importer"
	"github.com/risor-io/risor/object"

	"github.com/jward/cxxnav"
)

// Runtime runs Risor scripts against a Navigator.
type Runtime struct {
	nav        *cxxnav.Navigator
	logger     *slog.Logger
	scriptsDir string
	fsys       fs.FS
	args       []string
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithFS loads scripts, and resolves their imports, from fsys instead of
// the scripts directory.
func WithFS(fsys fs.FS) Option {
	return func(r *Runtime) { r.fsys = fsys }
}

// WithLogger sets the logger behind the script-visible log object.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runtime) { r.logger = l }
}

// WithParseArgs sets the arguments parse_file uses when a script gives
// none.
func WithParseArgs(args []string) Option {
	return func(r *Runtime) { r.args = args }
}

// New creates a Runtime over nav. scriptsDir anchors relative script
// paths and imports; it may be empty.
func New(nav *cxxnav.Navigator, scriptsDir string, opts ...Option) *Runtime {
	r := &Runtime{
		nav:        nav,
		logger:     slog.Default(),
		scriptsDir: scriptsDir,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RunScript loads and executes a script with the standard globals plus
// extraGlobals. It returns the value of the script's last expression.
func (r *Runtime) RunScript(ctx context.Context, scriptPath string, extraGlobals map[string]any) (object.Object, error) {
	src, err := r.LoadScript(scriptPath)
	if err != nil {
		return nil, err
	}
	return r.eval(ctx, src, scriptPath, extraGlobals)
}

// RunSource executes Risor source directly.
func (r *Runtime) RunSource(ctx context.Context, source string, extraGlobals map[string]any) (object.Object, error) {
	return r.eval(ctx, source, "<inline>", extraGlobals)
}

func (r *Runtime) eval(ctx context.Context, source, label string, extraGlobals map[string]any) (object.Object, error) {
	globals := r.buildGlobals(extraGlobals)

	var opts []risor.Option
	for name, val := range globals {
		opts = append(opts, risor.WithGlobal(name, val))
	}
	if imp := r.buildImporter(globals); imp != nil {
		opts = append(opts, risor.WithImporter(imp))
	}

	result, err := risor.Eval(ctx, source, opts...)
	if err != nil {
		return nil, fmt.Errorf("runtime: script %s: %w", label, err)
	}
	return result, nil
}

func (r *Runtime) buildImporter(globals map[string]any) importer.Importer {
	names := make([]string, 0, len(globals))
	for name := range globals {
		names = append(names, name)
	}
	if r.fsys != nil {
		return importer.NewFSImporter(importer.FSImporterOptions{
			GlobalNames: names,
			SourceFS:    r.fsys,
			Extensions:  []string{".risor"},
		})
	}
	if r.scriptsDir != "" {
		return importer.NewLocalImporter(importer.LocalImporterOptions{
			GlobalNames: names,
			SourceDir:   r.scriptsDir,
			Extensions:  []string{".risor"},
		})
	}
	return nil
}

// LoadScript reads a .risor file. With an fs.FS configured the path is
// taken relative to its root.
func (r *Runtime) LoadScript(path string) (string, error) {
	if r.fsys != nil {
		fsPath := strings.TrimPrefix(filepath.ToSlash(path), "/")
		data, err := fs.ReadFile(r.fsys, fsPath)
		if err != nil {
			return "", fmt.Errorf("runtime: loading script %s from fs: %w", fsPath, err)
		}
		return string(data), nil
	}

	full := path
	if !filepath.IsAbs(path) && r.scriptsDir != "" {
		full = filepath.Join(r.scriptsDir, path)
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return "", fmt.Errorf("runtime: loading script %s: %w", full, err)
	}
	return string(data), nil
}

func (r *Runtime) buildGlobals(extra map[string]any) map[string]any {
	globals := map[string]any{
		"log": mustProxy(&logObject{logger: r.logger.With("source", "script")}),
	}
	if r.nav != nil {
		globals["units"] = makeUnitsFn(r.nav)
		globals["parse"] = makeParseFn(r.nav)
		globals["parse_file"] = makeParseFileFn(r.nav, r.args)
		globals["classify"] = makeClassifyFn(r.nav)
		globals["references"] = makeReferencesFn(r.nav)
		globals["definition"] = makeDefinitionFn(r.nav)
		globals["nodes"] = makeNodesFn(r.nav)
		globals["diagnostics"] = makeDiagnosticsFn(r.nav)
	}
	for k, v := range extra {
		globals[k] = v
	}
	return globals
}

func mustProxy(v any) object.Object {
	p, err := object.NewProxy(v)
	if err != nil {
		panic(fmt.Sprintf("runtime: proxy error: %v", err))
	}
	return p
}
