package stubforge

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"stubforge/internal/engine"
	"stubforge/internal/sources"
	"stubforge/internal/symbols"
)

// BuildFunc is the inference engine contract: given source descriptors and a
// build configuration, produce module models keyed by identity, the set of
// source paths fed in, and per-file diagnostics. The engine is a black box
// to the orchestrator; stubforge's own engine is the default.
type BuildFunc func(ctx context.Context, list []sources.Descriptor, cfg engine.Config) (*engine.Result, error)

// BuildAllVersions runs the full pipeline for one target across every
// supported interpreter version, in canonical order, returning one
// PerVersionModel per version tag. Builds are sequential and each starts from
// a fresh engine configuration; a module missing from some version's model is
// a legitimate outcome, not an error.
func (s *Serializer) BuildAllVersions(ctx context.Context, kind TargetKind) (map[VersionTag]PerVersionModel, error) {
	spec, err := s.layout.newTargetSpec(kind)
	if err != nil {
		return nil, fmt.Errorf("target %s: %w", kind, err)
	}
	byVersion := make(map[VersionTag]PerVersionModel, len(symbols.SupportedVersions))
	for _, v := range symbols.SupportedVersions {
		model, err := s.buildVersion(ctx, spec, v, nil)
		if err != nil {
			return nil, err
		}
		byVersion[v] = model
	}
	return byVersion, nil
}

// buildVersion enumerates the target's sources, runs one engine build with
// the version's semantics, extracts symbols for every resulting module, and
// applies the target's exclusion rule. Skips are recorded on report when one
// is supplied.
func (s *Serializer) buildVersion(ctx context.Context, spec targetSpec, v VersionTag, report *RunReport) (PerVersionModel, error) {
	descriptors, _, err := s.enumerate(spec)
	if err != nil {
		return nil, fmt.Errorf("target %s: %w", spec.kind, err)
	}

	// Fresh configuration per build call; nothing is shared across versions.
	cfg := engine.NewConfig([2]int{v.Major, v.Minor}, spec.searchRoots...)
	result, err := s.build(ctx, descriptors, cfg)
	if err != nil {
		return nil, fmt.Errorf("target %s, python %s: %w", spec.kind, v.Display(), err)
	}
	for _, d := range result.Diagnostics {
		s.logger.Warn("stub diagnostic", "path", d.Path, "line", d.Line, "message", d.Message)
	}

	// Sorted module iteration keeps skip recording deterministic.
	names := make([]string, 0, len(result.Modules))
	for name := range result.Modules {
		names = append(names, name)
	}
	sort.Strings(names)

	model := make(PerVersionModel, len(names))
	for _, name := range names {
		m := result.Modules[name]
		if skip, reason := spec.exclude(name, m, result.SourcePaths); skip {
			if report != nil {
				report.recordSkip(name, reason)
			}
			continue
		}
		model[name] = symbols.Extract(m)
	}
	return model, nil
}

// enumerate produces the descriptor set for a target: a directory walk per
// enumeration root, or the single synthetic file for the importer target.
func (s *Serializer) enumerate(spec targetSpec) ([]sources.Descriptor, map[string]bool, error) {
	if spec.importerFile != "" {
		abs, err := filepath.Abs(spec.importerFile)
		if err != nil {
			return nil, nil, fmt.Errorf("resolve importer file: %w", err)
		}
		d := sources.Descriptor{Path: abs, ModuleID: ImporterModule}
		return []sources.Descriptor{d}, map[string]bool{abs: true}, nil
	}

	var descriptors []sources.Descriptor
	paths := make(map[string]bool)
	for _, root := range spec.enumRoots {
		ds, ps, err := sources.Enumerate(root)
		if err != nil {
			return nil, nil, err
		}
		descriptors = append(descriptors, ds...)
		for p := range ps {
			paths[p] = true
		}
	}
	return descriptors, paths, nil
}
