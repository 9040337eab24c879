package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"
)

func (a *app) parseCmd() *cobra.Command {
	var (
		extraArgs []string
		fresh     bool
	)
	cmd := &cobra.Command{
		Use:   "parse [path...]",
		Short: "Parse C++ files or directories and save the units to the store",
		Long:  "Parses each file, or every C++ source under each directory admitted by [sources] include/exclude, and writes one .ast artifact per unit to the store. Units already in the store are kept unless --fresh is given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{"."}
			}
			if !fresh {
				a.load()
			}
			flags := append(append([]string{}, a.cfg.Parser.Args...), extraArgs...)

			var keys []string
			for _, p := range args {
				info, err := os.Stat(p)
				if err != nil {
					return a.outputError("parse", fmt.Errorf("path not found: %s", p))
				}
				if info.IsDir() {
					dirKeys, err := a.nav.ParseDirectory(cmd.Context(), p, a.cfg.Sources.Include, a.cfg.Sources.Exclude, flags)
					if err != nil {
						return a.outputError("parse", err)
					}
					keys = append(keys, dirKeys...)
					continue
				}
				keys = append(keys, a.nav.ParseFile(p, flags))
			}

			summary := CLIParseSummary{Store: a.storeRoot}
			for _, key := range keys {
				tu, ok := a.nav.Unit(key)
				if !ok {
					summary.Failed = append(summary.Failed, key)
					continue
				}
				summary.Units = append(summary.Units, CLIUnit{Key: key, Diagnostics: len(tu.Diagnostics())})
			}
			summary.Saved = a.nav.SaveAll(a.storeRoot)
			if err := a.output("parse", summary); err != nil {
				return err
			}
			if !summary.Saved {
				return errHandled{fmt.Errorf("some units could not be saved to %s", a.storeRoot)}
			}
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&extraArgs, "arg", nil, "extra compiler argument, repeatable (e.g. --arg=-Iinclude)")
	cmd.Flags().BoolVar(&fresh, "fresh", false, "ignore units already in the store")
	return cmd
}

func (a *app) keysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "List the units in the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.load()
			units := make([]CLIUnit, 0, a.nav.Len())
			for _, key := range a.nav.Keys() {
				units = append(units, CLIUnit{Key: key, Diagnostics: len(a.nav.Diagnostics(key))})
			}
			return a.output("keys", units)
		},
	}
}

func (a *app) refsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refs <file> <line> <col>",
		Short: "Find every reference in a file to the symbol at a position",
		Long:  "Searches every stored unit for occurrences, in <file>, of the symbol at the position. Lines and columns are 1-based.",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, line, col, err := positionArgs(args)
			if err != nil {
				return a.outputError("refs", err)
			}
			a.load()
			locs := a.nav.FindAllReferences(file, line, col).Sorted()
			return a.output("refs", toCLILocations(locs))
		},
	}
}

func (a *app) classifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify <file> <line> <col>",
		Short: "Classify the node at a position",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, line, col, err := positionArgs(args)
			if err != nil {
				return a.outputError("classify", err)
			}
			a.load()
			info, ok := a.nav.Classify(file, line, col)
			if !ok {
				return a.outputError("classify", fmt.Errorf("no unit for %s (run 'cxxnav parse' first)", file))
			}
			return a.output("classify", toCLIInfo(info))
		},
	}
}

func (a *app) definitionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "definition <file> <line> <col>",
		Short: "Locate the definition of the symbol at a position",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, line, col, err := positionArgs(args)
			if err != nil {
				return a.outputError("definition", err)
			}
			a.load()
			loc, ok := a.nav.DefinitionAt(file, line, col)
			if !ok {
				return a.output("definition", nil)
			}
			return a.output("definition", toCLILocation(loc))
		},
	}
}

func (a *app) diagnosticsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diagnostics <file>",
		Short: "Print the diagnostics of a stored unit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := resolveFilePath(args[0])
			if err != nil {
				return a.outputError("diagnostics", err)
			}
			a.load()
			if _, ok := a.nav.Unit(key); !ok {
				return a.outputError("diagnostics", fmt.Errorf("no unit for %s (run 'cxxnav parse' first)", key))
			}
			return a.output("diagnostics", toCLIDiagnostics(a.nav.Diagnostics(key)))
		},
	}
}

func (a *app) dumpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump <file>",
		Short: "Print every node of a stored unit located in the file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := resolveFilePath(args[0])
			if err != nil {
				return a.outputError("dump", err)
			}
			a.load()
			if _, ok := a.nav.Unit(key); !ok {
				return a.outputError("dump", fmt.Errorf("no unit for %s (run 'cxxnav parse' first)", key))
			}
			return a.output("dump", a.nav.Dump(key))
		},
	}
}

// positionArgs parses <file> <line> <col>.
func positionArgs(args []string) (string, int, int, error) {
	file, err := resolveFilePath(args[0])
	if err != nil {
		return "", 0, 0, err
	}
	line, err := parsePositiveArg(args[1], "line")
	if err != nil {
		return "", 0, 0, err
	}
	col, err := parsePositiveArg(args[2], "col")
	if err != nil {
		return "", 0, 0, err
	}
	return file, line, col, nil
}

// resolveFilePath converts a file argument to the absolute path the store
// keys it by.
func resolveFilePath(file string) (string, error) {
	if filepath.IsAbs(file) {
		return filepath.Clean(file), nil
	}
	abs, err := filepath.Abs(file)
	if err != nil {
		return "", fmt.Errorf("resolving file path %q: %w", file, err)
	}
	return abs, nil
}

func parsePositiveArg(value, name string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: must be a positive integer", name, value)
	}
	if n < 1 {
		return 0, fmt.Errorf("invalid %s %q: lines and columns are 1-based", name, value)
	}
	return n, nil
}
