package frontend

import (
	"fmt"
	"path/filepath"
	"strings"
)

// options is the subset of compiler arguments the front-end honors.
// Unknown flags are accepted and ignored.
type options struct {
	language    string
	std         string
	quoteDirs   []string
	includeDirs []string
	systemDirs  []string
	defines     map[string]string
}

var cxxLanguages = map[string]bool{"c++": true, "c++-header": true}

func parseArgs(args []string, workingDir string) (options, error) {
	opts := options{language: "c++", defines: make(map[string]string)}
	dir := func(p string) string {
		if !filepath.IsAbs(p) && workingDir != "" {
			p = filepath.Join(workingDir, p)
		}
		return filepath.Clean(p)
	}

	for i := 0; i < len(args); i++ {
		a := args[i]
		value := func(flag string) (string, error) {
			if len(a) > len(flag) {
				return a[len(flag):], nil
			}
			if i+1 >= len(args) {
				return "", fmt.Errorf("missing value for %s", flag)
			}
			i++
			return args[i], nil
		}

		switch {
		case strings.HasPrefix(a, "-x"):
			v, err := value("-x")
			if err != nil {
				return opts, err
			}
			if !cxxLanguages[v] {
				return opts, fmt.Errorf("unsupported language %q", v)
			}
			opts.language = v
		case strings.HasPrefix(a, "-std="):
			opts.std = strings.TrimPrefix(a, "-std=")
		case strings.HasPrefix(a, "-isystem"):
			v, err := value("-isystem")
			if err != nil {
				return opts, err
			}
			opts.systemDirs = append(opts.systemDirs, dir(v))
		case strings.HasPrefix(a, "-iquote"):
			v, err := value("-iquote")
			if err != nil {
				return opts, err
			}
			opts.quoteDirs = append(opts.quoteDirs, dir(v))
		case strings.HasPrefix(a, "-I"):
			v, err := value("-I")
			if err != nil {
				return opts, err
			}
			opts.includeDirs = append(opts.includeDirs, dir(v))
		case strings.HasPrefix(a, "-D"):
			v, err := value("-D")
			if err != nil {
				return opts, err
			}
			name, val, _ := strings.Cut(v, "=")
			if name == "" {
				return opts, fmt.Errorf("empty macro name in %q", a)
			}
			opts.defines[name] = val
		case strings.HasPrefix(a, "-U"):
			v, err := value("-U")
			if err != nil {
				return opts, err
			}
			delete(opts.defines, v)
		case a == "-o" || a == "-include" || a == "-MF":
			if i+1 >= len(args) {
				return opts, fmt.Errorf("missing value for %s", a)
			}
			i++
		}
	}
	return opts, nil
}
