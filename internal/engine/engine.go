// Package engine builds semantic module models from Python stub files.
//
// It is the inference collaborator behind stubforge's build pipeline: given a
// set of source descriptors and a build configuration, it parses each stub
// with tree-sitter, evaluates interpreter-version and platform conditionals
// against the configuration, and returns an identity-keyed set of module
// models. Imports are followed into the configured search roots, so the
// result legitimately contains modules that were never part of the input
// descriptor set (e.g. stdlib modules pulled in by a third-party stub);
// callers distinguish those via the returned source-path set.
//
// Every Build call is a cold build. The engine keeps no state between calls,
// so results are reproducible and unrelated builds cannot leak into each
// other.
package engine

import (
	"context"
	"fmt"

	"stubforge/internal/sources"
)

// Config fixes one build's effective language semantics. A fresh Config must
// be constructed for every Build call; Configs are never reused across
// version builds.
type Config struct {
	// PythonMajor and PythonMinor select which sys.version_info conditionals
	// are live.
	PythonMajor int
	PythonMinor int

	// Platform is compared against sys.platform conditionals. stubforge
	// always builds for "linux".
	Platform string

	// SearchRoots are stub tree roots used to resolve imported modules that
	// are not in the descriptor set, in priority order.
	SearchRoots []string
}

// NewConfig returns a Config for one interpreter version with the fixed
// platform and the given import search roots.
func NewConfig(version [2]int, searchRoots ...string) Config {
	return Config{
		PythonMajor: version[0],
		PythonMinor: version[1],
		Platform:    "linux",
		SearchRoots: searchRoots,
	}
}

// Diagnostic is a non-fatal per-file finding (e.g. a syntax error region the
// parser recovered from). Diagnostics never fail a build; the caller decides
// what to do with them.
type Diagnostic struct {
	Path    string
	Line    int
	Message string
}

// Result is one build's output: module models keyed by fully qualified
// module name, the set of source paths that were fed in as descriptors (not
// including transitively pulled files), and any per-file diagnostics.
type Result struct {
	Modules     map[string]*ModuleModel
	SourcePaths map[string]bool
	Diagnostics []Diagnostic
}

// BuildError is a fatal failure to produce a model for a required source
// file. Per-file syntax issues are diagnostics, not BuildErrors; this is
// reserved for unreadable or unparseable input.
type BuildError struct {
	Path string
	Err  error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("engine: building %s: %v", e.Path, e.Err)
}

func (e *BuildError) Unwrap() error { return e.Err }

// Build constructs module models for every descriptor, then follows imports
// breadth-first into cfg.SearchRoots until no new modules resolve. The
// returned SourcePaths contains exactly the descriptor paths; transitively
// resolved modules appear in Modules but not in SourcePaths.
func Build(ctx context.Context, list []sources.Descriptor, cfg Config) (*Result, error) {
	res := &Result{
		Modules:     make(map[string]*ModuleModel),
		SourcePaths: make(map[string]bool),
	}

	// Pending imports discovered while parsing, in first-seen order.
	var pending []string
	seen := make(map[string]bool)

	add := func(m *ModuleModel) {
		res.Modules[m.FullName] = m
		seen[m.FullName] = true
		for _, imp := range m.Imports {
			if !seen[imp] {
				seen[imp] = true
				pending = append(pending, imp)
			}
		}
	}

	for _, d := range list {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		mod, diags, err := parseFile(ctx, d.Path, d.ModuleID, cfg)
		if err != nil {
			return nil, &BuildError{Path: d.Path, Err: err}
		}
		res.Diagnostics = append(res.Diagnostics, diags...)
		res.SourcePaths[d.Path] = true
		add(mod)
	}

	// Follow imports. A module that fails to resolve under any search root is
	// simply outside this build's universe, which is normal for stubs.
	for len(pending) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := pending[0]
		pending = pending[1:]
		if _, ok := res.Modules[name]; ok {
			continue
		}
		path, ok := resolveImport(name, cfg.SearchRoots)
		if !ok {
			continue
		}
		mod, diags, err := parseFile(ctx, path, name, cfg)
		if err != nil {
			return nil, &BuildError{Path: path, Err: err}
		}
		res.Diagnostics = append(res.Diagnostics, diags...)
		add(mod)
	}

	return res, nil
}
