package ragindex

import (
	"path"
	"strings"
)

// exactNames maps whole filenames (no path component) to a language tag,
// checked before the extension table.
var exactNames = map[string]string{
	"Dockerfile": "dockerfile",
	"Makefile":   "make",
	"go.mod":     "gomod",
}

// extensionLanguages maps a lowercased final extension, including the dot,
// to a language tag. Reproduced verbatim from the original source's
// file_extension_to_language_map.
var extensionLanguages = map[string]string{
	".sh":         "bash",
	".bash":       "bash",
	".c":          "c",
	".h":          "c",
	".cs":         "c_sharp",
	".lisp":       "commonlisp",
	".lsp":        "commonlisp",
	".cpp":        "cpp",
	".cc":         "cpp",
	".cxx":        "cpp",
	".hpp":        "cpp",
	".css":        "css",
	".dockerfile": "dockerfile",
	".dot":        "dot",
	".el":         "elisp",
	".ex":         "elixir",
	".exs":        "elixir",
	".elm":        "elm",
	".ejs":        "embedded_template",
	".erl":        "erlang",
	".hrl":        "erlang",
	".f":          "fixed_form_fortran",
	".for":        "fixed_form_fortran",
	".f90":        "fortran",
	".f95":        "fortran",
	".go":         "go",
	".mod":        "gomod",
	".hack":       "hack",
	".hs":         "haskell",
	".hcl":        "hcl",
	".tf":         "hcl",
	".html":       "html",
	".htm":        "html",
	".java":       "java",
	".js":         "javascript",
	".jsx":        "javascript",
	".jsdoc":      "jsdoc",
	".json":       "json",
	".jl":         "julia",
	".kt":         "kotlin",
	".kts":        "kotlin",
	".lua":        "lua",
	".mk":         "make",
	".md":         "markdown",
	".m":          "objc",
	".mm":         "objc",
	".ml":         "ocaml",
	".mli":        "ocaml",
	".pl":         "perl",
	".pm":         "perl",
	".php":        "php",
	".py":         "python",
	".ql":         "ql",
	".r":          "r",
	".regex":      "regex",
	".rst":        "rst",
	".rb":         "ruby",
	".rs":         "rust",
	".scala":      "scala",
	".sc":         "scala",
	".sql":        "sql",
	".sqlite":     "sqlite",
	".db":         "sqlite",
	".toml":       "toml",
	".tsq":        "tsq",
	".ts":         "typescript",
	".tsx":        "typescript",
	".yaml":       "yaml",
	".yml":        "yaml",
}

// AllLanguages is the full tree-sitter-supported set this table produces,
// the shipping default for an unrestricted allowedLanguages configuration.
func AllLanguages() []string {
	seen := make(map[string]struct{}, len(extensionLanguages)+len(exactNames))
	for _, lang := range exactNames {
		seen[lang] = struct{}{}
	}
	for _, lang := range extensionLanguages {
		seen[lang] = struct{}{}
	}
	langs := make([]string, 0, len(seen))
	for lang := range seen {
		langs = append(langs, lang)
	}
	return langs
}

// Classify maps a path to a language tag. Resolution order: exact match on
// the base filename, then the lowercased final extension, then "" (no
// match).
func Classify(filename string) string {
	base := path.Base(filename)
	if lang, ok := exactNames[base]; ok {
		return lang
	}
	ext := strings.ToLower(path.Ext(base))
	if ext == "" {
		return ""
	}
	if lang, ok := extensionLanguages[ext]; ok {
		return lang
	}
	return ""
}
