package stubforge

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"stubforge/internal/engine"
)

// Layout locates the stub corpus on disk.
type Layout struct {
	// StdlibRoot is the standard library stub tree.
	StdlibRoot string
	// StubsRoot contains one subdirectory per third-party stub package.
	StubsRoot string
	// CustomRoot is the custom stubs tree.
	CustomRoot string
	// ImporterFile is the single synthetic module that imports every
	// supported third-party library.
	ImporterFile string
}

// TargetKind selects one serialization target.
type TargetKind string

const (
	TargetStdlib     TargetKind = "stdlib"
	TargetThirdParty TargetKind = "third_party"
	TargetCustom     TargetKind = "custom"
	TargetImporter   TargetKind = "importer"
)

// AllTargets lists every target kind in serialization order.
var AllTargets = []TargetKind{TargetStdlib, TargetThirdParty, TargetCustom, TargetImporter}

const (
	// ImporterModule is the synthetic importer's module identity. It exists
	// only to pull third-party modules into a build and is never serialized.
	ImporterModule = "third_party_importer"

	// FakeBaseStubModule satisfies the engine's expectations inside the
	// custom stub tree and is never serialized.
	FakeBaseStubModule = "StubForgeFakeStub"
)

// Skip reasons recorded in run reports.
const (
	SkipExcluded     = "excluded"
	SkipOutsideScope = "outside target sources"
	SkipPathMismatch = "path unresolved"
)

// targetSpec is one entry of the target strategy table: where to enumerate,
// where the engine may resolve imports, which modules to drop, and where
// results are saved. Specs are computed fresh at orchestration start, so the
// third-party package listing is read from disk then, not at load time.
type targetSpec struct {
	kind         TargetKind
	saveLocation string
	enumRoots    []string
	importerFile string
	searchRoots  []string
	exclude      func(fqn string, m *engine.ModuleModel, sourcePaths map[string]bool) (bool, string)
}

// newTargetSpec builds the spec for one target kind against the layout.
func (l Layout) newTargetSpec(kind TargetKind) (targetSpec, error) {
	switch kind {
	case TargetStdlib:
		return targetSpec{
			kind:         kind,
			saveLocation: string(kind),
			enumRoots:    []string{l.StdlibRoot},
			searchRoots:  []string{l.StdlibRoot},
			exclude: func(string, *engine.ModuleModel, map[string]bool) (bool, string) {
				return false, ""
			},
		}, nil

	case TargetThirdParty:
		pkgs, err := listStubPackages(l.StubsRoot)
		if err != nil {
			return targetSpec{}, err
		}
		return targetSpec{
			kind:         kind,
			saveLocation: string(kind),
			enumRoots:    pkgs,
			searchRoots:  append(pkgs, l.StdlibRoot),
			// A narrow third-party build legitimately pulls in stdlib modules
			// the engine resolved transitively; they are not part of the
			// target and must not be emitted.
			exclude: func(_ string, m *engine.ModuleModel, sourcePaths map[string]bool) (bool, string) {
				if !sourcePaths[m.Path] {
					return true, SkipOutsideScope
				}
				return false, ""
			},
		}, nil

	case TargetCustom:
		customRoot, err := filepath.Abs(l.CustomRoot)
		if err != nil {
			return targetSpec{}, fmt.Errorf("resolve custom root: %w", err)
		}
		return targetSpec{
			kind:         kind,
			saveLocation: string(kind),
			enumRoots:    []string{l.CustomRoot},
			searchRoots:  []string{l.CustomRoot, l.StdlibRoot},
			exclude: func(fqn string, m *engine.ModuleModel, _ map[string]bool) (bool, string) {
				if fqn == FakeBaseStubModule {
					return true, SkipExcluded
				}
				if m.Path == "" {
					// Exclusion checks are best-effort filters over the
					// engine result; an unresolvable path is a skip, never
					// an error.
					return true, SkipPathMismatch
				}
				if !strings.HasPrefix(m.Path, customRoot+string(filepath.Separator)) {
					return true, SkipOutsideScope
				}
				return false, ""
			},
		}, nil

	case TargetImporter:
		pkgs, err := listStubPackages(l.StubsRoot)
		if err != nil {
			return targetSpec{}, err
		}
		return targetSpec{
			kind:         kind,
			saveLocation: string(kind),
			importerFile: l.ImporterFile,
			searchRoots:  append(pkgs, l.StdlibRoot),
			// Only what the importer pulls in is kept, never the importer
			// itself.
			exclude: func(fqn string, _ *engine.ModuleModel, _ map[string]bool) (bool, string) {
				if fqn == ImporterModule {
					return true, SkipExcluded
				}
				return false, ""
			},
		}, nil
	}
	return targetSpec{}, fmt.Errorf("unknown target kind %q", kind)
}

// listStubPackages returns the absolute path of every third-party stub
// package directory under stubsRoot, sorted by name.
func listStubPackages(stubsRoot string) ([]string, error) {
	entries, err := os.ReadDir(stubsRoot)
	if err != nil {
		return nil, fmt.Errorf("list stub packages: %w", err)
	}
	var pkgs []string
	for _, e := range entries {
		if e.IsDir() {
			pkgs = append(pkgs, filepath.Join(stubsRoot, e.Name()))
		}
	}
	sort.Strings(pkgs)
	return pkgs, nil
}
