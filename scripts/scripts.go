// Package scripts embeds the Risor scripts that ship with cxxnav. Run them
// with "cxxnav script --builtin <name>".
package scripts

import (
	"embed"
	"io/fs"
	"sort"
	"strings"
)

//go:embed *.risor
var FS embed.FS

// Names lists the embedded scripts without their extension.
func Names() []string {
	entries, _ := fs.ReadDir(FS, ".")
	var names []string
	for _, e := range entries {
		if name, ok := strings.CutSuffix(e.Name(), ".risor"); ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Path returns the path of a named script within FS.
func Path(name string) string {
	return name + ".risor"
}
