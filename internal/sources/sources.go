// Package sources discovers Python stub files (.pyi) under a root directory
// and derives each file's fully qualified module name from its path.
package sources

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// StubExtension is the only file suffix considered a type stub.
const StubExtension = ".pyi"

// ErrNotFound is returned by Enumerate when the root directory does not exist.
var ErrNotFound = errors.New("sources: root directory not found")

// Descriptor pairs a stub file's absolute path with the fully qualified
// module name derived from its location under the enumeration root.
type Descriptor struct {
	Path     string
	ModuleID string
}

// Enumerate walks root and returns a descriptor for every stub file, in a
// stable (lexical walk) order, plus the set of paths considered in scope.
// Subtrees whose dotted package path contains a "python2" segment are legacy
// stubs and are skipped entirely. Within one call, each path yields exactly
// one descriptor and each module identity maps to at most one path.
func Enumerate(root string) ([]Descriptor, map[string]bool, error) {
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("%w: %s", ErrNotFound, root)
		}
		return nil, nil, fmt.Errorf("sources: stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, nil, fmt.Errorf("%w: %s is not a directory", ErrNotFound, root)
	}

	var descriptors []Descriptor
	paths := make(map[string]bool)
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if isLegacySegment(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != StubExtension {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		descriptors = append(descriptors, Descriptor{
			Path:     abs,
			ModuleID: ModuleIDForRelPath(rel),
		})
		paths[abs] = true
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("sources: walk %s: %w", root, err)
	}
	return descriptors, paths, nil
}

// ModuleIDForRelPath derives the fully qualified module name for a stub file
// path relative to its enumeration root. Directory separators become dots and
// the extension is stripped; a package initializer (__init__.pyi) collapses
// to its containing package's identity.
//
//	pkg/sub/mod.pyi      → pkg.sub.mod
//	pkg/sub/__init__.pyi → pkg.sub
//	mod.pyi              → mod
func ModuleIDForRelPath(rel string) string {
	rel = filepath.ToSlash(rel)
	rel = strings.TrimSuffix(rel, StubExtension)
	pkg := strings.ReplaceAll(filepath.ToSlash(filepath.Dir(filepath.FromSlash(rel))), "/", ".")
	if pkg == "." {
		pkg = ""
	}
	base := rel[strings.LastIndex(rel, "/")+1:]
	if base == "__init__" {
		return pkg
	}
	if pkg == "" {
		return base
	}
	return pkg + "." + base
}

// isLegacySegment reports whether a path segment marks a legacy-Python-only
// stub subtree (typeshed's @python2 directories and the bare python2 layout).
func isLegacySegment(name string) bool {
	return name == "python2" || name == "@python2"
}
