package stubforge

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/charmbracelet/log"

	"stubforge/internal/engine"
	"stubforge/internal/symbols"
)

// ModuleWriter is the persistence boundary the Serializer writes through.
// *store.Store satisfies it.
type ModuleWriter interface {
	SaveModule(target string, m *symbols.ModuleSymbol) error
	SaveMergedModule(target string, m *symbols.MergedModuleSymbol) error
}

// DebugWriter is the optional side channel for human-readable artifacts.
type DebugWriter func(target, fullname string, module any) error

// RunState tracks where a serialization run is in its lifecycle.
type RunState string

const (
	StateNotStarted RunState = "not_started"
	StateBuilding   RunState = "building"
	StateMerging    RunState = "merging"
	StateWriting    RunState = "writing"
	StateDone       RunState = "done"
)

// SkipEntry records one module dropped by a target's exclusion rule. Skips
// never abort a run.
type SkipEntry struct {
	Module string
	Reason string
}

// RunReport summarizes one serialization run for one target.
type RunReport struct {
	Target  TargetKind
	State   RunState
	Written []string
	Skipped []SkipEntry

	skipped map[string]bool
}

func (r *RunReport) recordSkip(module, reason string) {
	if r.skipped == nil {
		r.skipped = make(map[string]bool)
	}
	// The same module can be excluded in every version build; report it once.
	if r.skipped[module] {
		return
	}
	r.skipped[module] = true
	r.Skipped = append(r.Skipped, SkipEntry{Module: module, Reason: reason})
}

// Serializer drives the build/merge/write pipeline for the four stub
// targets. A Serializer is single-threaded: one run at a time, engine builds
// strictly sequential within a run.
type Serializer struct {
	layout  Layout
	writer  ModuleWriter
	build   BuildFunc
	logger  *log.Logger
	debug   DebugWriter
	version VersionTag
}

// Option configures a Serializer.
type Option func(*Serializer)

// WithBuildFunc replaces the inference engine. Used by tests to stand in a
// fake engine.
func WithBuildFunc(build BuildFunc) Option {
	return func(s *Serializer) { s.build = build }
}

// WithLogger sets the logger for build diagnostics and progress.
func WithLogger(logger *log.Logger) Option {
	return func(s *Serializer) { s.logger = logger }
}

// WithDebugWriter enables human-readable per-module artifacts alongside the
// primary persisted form.
func WithDebugWriter(w DebugWriter) Option {
	return func(s *Serializer) { s.debug = w }
}

// WithDirectVersion sets the interpreter version used by direct
// (single-version) serialization. Defaults to 3.8.
func WithDirectVersion(v VersionTag) Option {
	return func(s *Serializer) { s.version = v }
}

// NewSerializer creates a Serializer over a stub layout writing through w.
func NewSerializer(layout Layout, w ModuleWriter, opts ...Option) *Serializer {
	s := &Serializer{
		layout:  layout,
		writer:  w,
		build:   engine.Build,
		logger:  log.New(io.Discard),
		version: VersionTag{Major: 3, Minor: 8},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Serialize runs one target in direct mode: a single build for the
// configured version, symbols written immediately, no merge step. A fatal
// enumeration or engine failure aborts this target only; the report carries
// whatever state the run reached.
func (s *Serializer) Serialize(ctx context.Context, kind TargetKind) (*RunReport, error) {
	report := &RunReport{Target: kind, State: StateNotStarted}

	spec, err := s.layout.newTargetSpec(kind)
	if err != nil {
		return report, fmt.Errorf("target %s: %w", kind, err)
	}

	report.State = StateBuilding
	s.logger.Info("building", "target", kind, "python", s.version.Display())
	model, err := s.buildVersion(ctx, spec, s.version, report)
	if err != nil {
		return report, err
	}

	report.State = StateWriting
	for _, fqn := range sortedKeys(model) {
		if err := s.writer.SaveModule(spec.saveLocation, model[fqn]); err != nil {
			return report, fmt.Errorf("write %s: %w", fqn, err)
		}
		if err := s.writeDebug(spec.saveLocation, fqn, model[fqn]); err != nil {
			return report, err
		}
		report.Written = append(report.Written, fqn)
	}

	report.State = StateDone
	s.logger.Info("serialized", "target", kind, "modules", len(report.Written), "skipped", len(report.Skipped))
	return report, nil
}

// SerializeMerged runs one target in merged mode: one build per supported
// version, cross-version reconciliation, then one write per merged module.
func (s *Serializer) SerializeMerged(ctx context.Context, kind TargetKind) (*RunReport, error) {
	report := &RunReport{Target: kind, State: StateNotStarted}

	spec, err := s.layout.newTargetSpec(kind)
	if err != nil {
		return report, fmt.Errorf("target %s: %w", kind, err)
	}

	report.State = StateBuilding
	byVersion := make(map[VersionTag]PerVersionModel, len(symbols.SupportedVersions))
	for _, v := range symbols.SupportedVersions {
		s.logger.Info("building", "target", kind, "python", v.Display())
		model, err := s.buildVersion(ctx, spec, v, report)
		if err != nil {
			return report, err
		}
		byVersion[v] = model
	}

	report.State = StateMerging
	merged := symbols.Merge(byVersion)

	report.State = StateWriting
	saveLocation := spec.saveLocation + "_merged"
	for _, fqn := range sortedKeys(merged) {
		if err := s.writer.SaveMergedModule(saveLocation, merged[fqn]); err != nil {
			return report, fmt.Errorf("write %s: %w", fqn, err)
		}
		if err := s.writeDebug(saveLocation, fqn, merged[fqn]); err != nil {
			return report, err
		}
		report.Written = append(report.Written, fqn)
	}

	report.State = StateDone
	s.logger.Info("serialized", "target", kind, "modules", len(report.Written), "skipped", len(report.Skipped))
	return report, nil
}

func (s *Serializer) writeDebug(target, fqn string, module any) error {
	if s.debug == nil {
		return nil
	}
	if err := s.debug(target, fqn, module); err != nil {
		return fmt.Errorf("debug artifact %s: %w", fqn, err)
	}
	return nil
}

func sortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
