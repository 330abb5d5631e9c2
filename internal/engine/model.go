package engine

import (
	"os"
	"path/filepath"
	"strings"
)

// DefKind classifies a definition in a module model.
type DefKind string

const (
	DefClass    DefKind = "class"
	DefFunction DefKind = "function"
	DefVariable DefKind = "variable"
)

// ModuleModel is the engine's semantic model of one module: the definitions
// that are live under the build configuration, in source order, plus the
// modules it imports.
type ModuleModel struct {
	FullName string
	Path     string
	Defs     []*Def
	Imports  []string
}

// Def is one definition. Functions are kept one-per-signature here even when
// decorated with @overload; grouping overloads under a single symbol is the
// extractor's job, not the engine's.
type Def struct {
	Name string
	Kind DefKind

	// Function fields.
	Params     []Param
	Returns    string
	IsAsync    bool
	Decorators []string

	// Class fields.
	Bases   []string
	Members []*Def

	// Variable fields.
	Type string
}

// Param is one formal parameter. Star is "", "*" or "**"; the bare "*" and
// "/" separators appear as parameters named "*" and "/".
type Param struct {
	Name       string
	Annotation string
	HasDefault bool
	Star       string
}

// resolveImport maps a dotted module name to a stub file under the search
// roots, trying each root in order. "a.b" resolves to a/b.pyi or
// a/b/__init__.pyi, the package file winning only when the module file is
// absent.
func resolveImport(name string, roots []string) (string, bool) {
	relBase := filepath.FromSlash(strings.ReplaceAll(name, ".", "/"))
	for _, root := range roots {
		for _, candidate := range []string{
			filepath.Join(root, relBase+".pyi"),
			filepath.Join(root, relBase, "__init__.pyi"),
		} {
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate, true
			}
		}
	}
	return "", false
}
