package cxxnav

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jward/cxxnav/internal/watch"
)

var skipDirs = map[string]bool{
	"build":        true,
	"node_modules": true,
	"third_party":  true,
}

// ParseDirectory parses every C++ source and header under root admitted by
// the include and exclude globs, keying each by its absolute path. If root
// is inside a git repository, git ls-files is used so that .gitignore is
// respected. It returns the keys parsed; per-file parse failures are
// logged, not returned.
func (n *Navigator) ParseDirectory(ctx context.Context, root string, include, exclude []string, args []string) ([]string, error) {
	filter, err := watch.NewFilter(include, exclude)
	if err != nil {
		return nil, err
	}
	root, err = filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("cxxnav: parse directory: %w", err)
	}
	paths, err := gitListFiles(root, filter)
	if err != nil {
		paths, err = walkListFiles(root, filter)
		if err != nil {
			return nil, fmt.Errorf("cxxnav: parse directory: %w", err)
		}
	}

	keys := make([]string, 0, len(paths))
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return keys, err
		}
		key := n.ParseFile(p, args)
		if _, ok := n.units.Get(key); ok {
			keys = append(keys, key)
		}
	}
	n.logger.Info("parsed directory", "root", root, "files", len(paths), "units", n.Len())
	return keys, nil
}

// gitListFiles lists tracked and untracked (but not ignored) files under
// root.
func gitListFiles(root string, filter *watch.Filter) ([]string, error) {
	cmd := exec.Command("git", "ls-files", "--cached", "--others", "--exclude-standard")
	cmd.Dir = root
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("git ls-files: %w", err)
	}

	var paths []string
	for _, line := range strings.Split(stdout.String(), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || inSkippedDir(line) || !filter.Match(line) {
			continue
		}
		paths = append(paths, filepath.Join(root, filepath.FromSlash(line)))
	}
	sort.Strings(paths)
	return paths, nil
}

// inSkippedDir reports whether any directory of the slash-separated rel
// is hidden or one of skipDirs.
func inSkippedDir(rel string) bool {
	dirs := strings.Split(rel, "/")
	for _, d := range dirs[:len(dirs)-1] {
		if strings.HasPrefix(d, ".") || skipDirs[d] {
			return true
		}
	}
	return false
}

// walkListFiles discovers files by walking the file system, skipping
// hidden and build directories.
func walkListFiles(root string, filter *watch.Filter) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(root, path)
		if d.IsDir() {
			if path == root {
				return nil
			}
			name := d.Name()
			if strings.HasPrefix(name, ".") || skipDirs[name] || filter.Excluded(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if filter.Match(rel) {
			paths = append(paths, path)
		}
		return nil
	})
	return paths, err
}
