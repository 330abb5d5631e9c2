// Package stubforge builds a version-agnostic symbol model of a Python type
// stub corpus (standard library, third-party and custom stubs) and persists
// it to SQLite.
//
// # Pipeline
//
// For each supported interpreter version, stubforge enumerates the stub files
// of a target, drives the inference engine over them with that version's
// semantics, and extracts an engine-independent ModuleSymbol per module. The
// per-version models are then reconciled: declarations identical across every
// version are emitted once, and anything that differs (signature, kind, or
// sheer presence) is recorded with the exact set of versions it applies to.
//
// # Targets
//
// Four serialization targets share the pipeline: the full standard library
// tree, the union of all third-party stub packages, the custom stubs tree,
// and a synthetic importer module whose only purpose is to pull every
// third-party library into one build. Each target carries its own enumeration
// roots, exclusion rules and save location; see [Serializer].
//
// # Usage
//
//	st, err := store.NewStore("symbols.db")
//	...
//	s := stubforge.NewSerializer(layout, st)
//	report, err := s.SerializeMerged(ctx, stubforge.TargetStdlib)
//
// Builds are strictly sequential and always cold: no engine state survives a
// build call, so version A's analysis can never leak into version B's.
package stubforge
