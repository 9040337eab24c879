package watch

import (
	"fmt"
	"path/filepath"

	"github.com/gobwas/glob"

	"github.com/jward/cxxnav/internal/frontend"
)

// Filter decides which files under a root are C++ sources of interest.
// Patterns match slash-separated paths relative to the root, with '/' as
// the separator so that '*' stays within one directory and '**' crosses
// them.
type Filter struct {
	include []glob.Glob
	exclude []glob.Glob
}

// NewFilter compiles the include and exclude patterns. No include pattern
// admits every C++ source.
func NewFilter(include, exclude []string) (*Filter, error) {
	f := &Filter{}
	for _, p := range include {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("watch: invalid include pattern %q: %w", p, err)
		}
		f.include = append(f.include, g)
	}
	for _, p := range exclude {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("watch: invalid exclude pattern %q: %w", p, err)
		}
		f.exclude = append(f.exclude, g)
	}
	return f, nil
}

// Match reports whether rel, a path relative to the root, is admitted.
func (f *Filter) Match(rel string) bool {
	if _, ok := frontend.LanguageForFile(rel); !ok {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, g := range f.exclude {
		if g.Match(rel) {
			return false
		}
	}
	if len(f.include) == 0 {
		return true
	}
	for _, g := range f.include {
		if g.Match(rel) {
			return true
		}
	}
	return false
}

// Excluded reports whether a directory, relative to the root, is excluded
// as a whole.
func (f *Filter) Excluded(relDir string) bool {
	relDir = filepath.ToSlash(relDir)
	for _, g := range f.exclude {
		if g.Match(relDir) || g.Match(relDir+"/") {
			return true
		}
	}
	return false
}
