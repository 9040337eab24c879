package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jward/cxxnav"
	"github.com/jward/cxxnav/internal/config"
)

var version = "dev"

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		var handled errHandled
		if !errors.As(err, &handled) {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}
		os.Exit(1)
	}
}

// errHandled marks an error outputError has already reported.
type errHandled struct{ error }

func (e errHandled) Unwrap() error { return e.error }

// app is the state shared by every command of one invocation.
type app struct {
	stdout, stderr io.Writer

	configPath string
	format     string
	verbose    bool
	storeFlag  string

	cfg       *config.Config
	logger    *slog.Logger
	nav       *cxxnav.Navigator
	storeRoot string
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:           "cxxnav",
		Short:         "C++ source navigation: references, classification and definitions",
		Long:          "cxxnav parses C++ translation units, keeps them in an on-disk store, and answers find-all-references, classification and go-to-definition queries against them.",
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(a.format); err != nil {
				return err
			}
			return a.setup()
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default: "+config.DefaultFile+" if present)")
	root.PersistentFlags().StringVar(&a.format, "format", "json", "output format: json|text")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log at debug level")
	root.PersistentFlags().StringVar(&a.storeFlag, "store", "", "store directory (default: store.root_dir relative to the repository root)")

	root.AddCommand(
		a.parseCmd(),
		a.keysCmd(),
		a.refsCmd(),
		a.classifyCmd(),
		a.definitionCmd(),
		a.diagnosticsCmd(),
		a.dumpCmd(),
		a.scriptCmd(),
		a.watchCmd(),
		a.mcpCmd(),
	)
	return root
}

// setup loads the config and builds the logger and navigator.
func (a *app) setup() error {
	cfg, err := config.LoadOrDefault(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	level := cfg.SlogLevel()
	if a.verbose {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(a.logger)

	opts := []cxxnav.Option{
		cxxnav.WithLogger(a.logger),
		cxxnav.WithSystemIncludes(cfg.Parser.SystemIncludes...),
	}
	if len(cfg.Parser.DefaultArgs) > 0 {
		opts = append(opts, cxxnav.WithDefaultArgs(cfg.Parser.DefaultArgs...))
	}
	if cfg.Parser.WorkingDir != "" {
		opts = append(opts, cxxnav.WithWorkingDir(cfg.Parser.WorkingDir))
	}
	a.nav = cxxnav.New(opts...)

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting cwd: %w", err)
	}
	a.storeRoot = resolveStoreRoot(findRepoRoot(cwd), a.storeFlag, cfg.Store.RootDir)
	return nil
}

// load fills the navigator from the store. A partial load is reported
// but the units that did load are still queried.
func (a *app) load() {
	if _, err := os.Stat(a.storeRoot); errors.Is(err, os.ErrNotExist) {
		a.logger.Debug("store not created yet", "root", a.storeRoot)
		return
	}
	if !a.nav.LoadAll(a.storeRoot) {
		a.logger.Warn("store loaded with errors", "root", a.storeRoot, "units", a.nav.Len())
	}
}

// findRepoRoot walks up from startDir looking for a .git directory.
// Returns the directory containing .git, or startDir if not found.
func findRepoRoot(startDir string) string {
	dir := startDir
	for {
		if info, err := os.Stat(filepath.Join(dir, ".git")); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return startDir
		}
		dir = parent
	}
}

// resolveStoreRoot picks the --store flag over the configured root dir;
// relative paths are taken from the repository root.
func resolveStoreRoot(repoRoot, flag, configured string) string {
	dir := configured
	if flag != "" {
		dir = flag
	}
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(repoRoot, dir)
}
