package frontend

import (
	"path/filepath"
	"strings"
)

// extToLanguage maps file extensions to the -x language the front-end
// parses them as.
var extToLanguage = map[string]string{
	".cpp": "c++",
	".cc":  "c++",
	".cxx": "c++",
	".c++": "c++",
	".cp":  "c++",
	".h":   "c++-header",
	".hh":  "c++-header",
	".hpp": "c++-header",
	".hxx": "c++-header",
	".h++": "c++-header",
	".inl": "c++-header",
	".ipp": "c++-header",
	".tpp": "c++-header",
}

// LanguageForFile returns the language a path is parsed as, based on its
// extension. Returns ("", false) if the extension is not recognized.
func LanguageForFile(path string) (string, bool) {
	lang, ok := extToLanguage[strings.ToLower(filepath.Ext(path))]
	return lang, ok
}

// IsHeader reports whether path is a header by extension.
func IsHeader(path string) bool {
	lang, _ := LanguageForFile(path)
	return lang == "c++-header"
}
