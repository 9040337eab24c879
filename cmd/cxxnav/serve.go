package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/risor-io/risor/object"
	"github.com/spf13/cobra"

	mcpadapter "github.com/jward/cxxnav/internal/mcp"
	"github.com/jward/cxxnav/internal/metrics"
	"github.com/jward/cxxnav/internal/runtime"
	"github.com/jward/cxxnav/internal/units"
	"github.com/jward/cxxnav/internal/watch"
	"github.com/jward/cxxnav/scripts"
)

func (a *app) scriptCmd() *cobra.Command {
	var (
		save    bool
		builtin string
	)
	cmd := &cobra.Command{
		Use:   "script <file.risor> [arg...]",
		Short: "Run a Risor script against the stored units",
		Long: "Loads the store and runs the script with the navigation globals (units, parse, parse_file, classify, references, definition, nodes, diagnostics, log). Remaining arguments are available to the script as the list args.\n\n" +
			"Built-in scripts: " + strings.Join(scripts.Names(), ", ") + ".",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := []runtime.Option{
				runtime.WithLogger(a.logger),
				runtime.WithParseArgs(a.cfg.Parser.Args),
			}
			var path, dir string
			if builtin != "" {
				opts = append(opts, runtime.WithFS(scripts.FS))
				path = scripts.Path(builtin)
			} else {
				if len(args) == 0 {
					return a.outputError("script", fmt.Errorf("requires a script path or --builtin"))
				}
				p, err := resolveFilePath(args[0])
				if err != nil {
					return a.outputError("script", err)
				}
				path, dir = p, filepath.Dir(p)
				args = args[1:]
			}
			a.load()

			scriptArgs := make([]object.Object, 0, len(args))
			for _, s := range args {
				scriptArgs = append(scriptArgs, object.NewString(s))
			}
			rt := runtime.New(a.nav, dir, opts...)
			result, err := rt.RunScript(cmd.Context(), path, map[string]any{
				"args": object.NewList(scriptArgs),
			})
			if err != nil {
				return a.outputError("script", err)
			}
			if save && !a.nav.SaveAll(a.storeRoot) {
				return a.outputError("script", fmt.Errorf("some units could not be saved to %s", a.storeRoot))
			}
			if result == nil || result == object.Nil {
				return a.output("script", nil)
			}
			if a.format == "text" {
				return a.output("script", result.Inspect())
			}
			return a.output("script", result.Interface())
		},
	}
	cmd.Flags().BoolVar(&save, "save", false, "save all units to the store after the script runs")
	cmd.Flags().StringVar(&builtin, "builtin", "", "run an embedded script by name instead of a file")
	return cmd
}

func (a *app) watchCmd() *cobra.Command {
	var metricsAddr string
	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Keep the store current as C++ files under a directory change",
		Long:  "Parses the directory, then re-parses changed sources and drops removed ones after each debounced batch of file events, saving the store each time. Serves Prometheus metrics when --metrics-addr or metrics.address is set.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			if metricsAddr == "" {
				metricsAddr = a.cfg.Metrics.Address
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.watch(ctx, dir, metricsAddr)
		},
	}
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve /metrics and /health on this address")
	return cmd
}

func (a *app) watch(ctx context.Context, dir, metricsAddr string) error {
	filter, err := watch.NewFilter(a.cfg.Sources.Include, a.cfg.Sources.Exclude)
	if err != nil {
		return err
	}
	flags := a.cfg.Parser.Args

	// The watcher calls back on its own goroutine; the navigator does no
	// locking.
	var mu sync.Mutex

	a.load()
	if _, err := a.nav.ParseDirectory(ctx, dir, a.cfg.Sources.Include, a.cfg.Sources.Exclude, flags); err != nil {
		return err
	}
	a.nav.SaveAll(a.storeRoot)

	if metricsAddr != "" {
		srv := metrics.NewServer(metricsAddr, func() map[string]any {
			mu.Lock()
			defer mu.Unlock()
			return map[string]any{"units": a.nav.Len(), "store": a.storeRoot}
		})
		if err := srv.Start(ctx); err != nil {
			return fmt.Errorf("metrics server: %w", err)
		}
		a.logger.Info("serving metrics", "addr", srv.Addr())
		defer func() {
			shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Stop(shutdown)
		}()
	}

	w, err := watch.New(dir, filter, a.cfg.Watch.Debounce, func(b watch.Batch) {
		mu.Lock()
		defer mu.Unlock()
		a.applyBatch(b, flags)
	}, watch.WithLogger(a.logger))
	if err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		return err
	}
	defer w.Close()

	<-ctx.Done()
	a.logger.Info("watch stopping", "units", a.nav.Len())
	if errors.Is(ctx.Err(), context.Canceled) {
		return nil
	}
	return ctx.Err()
}

// applyBatch re-parses changed files, drops removed ones along with their
// artifacts, and saves the store.
func (a *app) applyBatch(b watch.Batch, flags []string) {
	for _, p := range b.Changed {
		a.nav.ParseFile(p, flags)
	}
	for _, p := range b.Removed {
		key := units.Key(p)
		a.nav.Drop(key)
		if err := os.Remove(units.ArtifactPath(a.storeRoot, key)); err != nil && !errors.Is(err, os.ErrNotExist) {
			a.logger.Warn("remove artifact", "key", key, "error", err)
		}
	}
	if !a.nav.SaveAll(a.storeRoot) {
		a.logger.Warn("store saved with errors", "root", a.storeRoot)
	}
	a.logger.Info("store updated", "changed", len(b.Changed), "removed", len(b.Removed), "units", a.nav.Len())
}

func (a *app) mcpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the navigation tools over MCP on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.load()
			tools := mcpadapter.New(a.nav, a.storeRoot,
				mcpadapter.WithLogger(a.logger),
				mcpadapter.WithParseArgs(a.cfg.Parser.Args),
				mcpadapter.WithSources(a.cfg.Sources.Include, a.cfg.Sources.Exclude),
			)
			if err := server.ServeStdio(mcpadapter.NewServer(tools, version)); err != nil {
				return fmt.Errorf("mcp: %w", err)
			}
			return nil
		},
	}
}
