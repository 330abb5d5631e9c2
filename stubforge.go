package stubforge

import (
	"stubforge/internal/sources"
	"stubforge/internal/symbols"
)

// Public type aliases for internal types that appear in the Serializer API,
// so callers need only this package on their import path.

type VersionTag = symbols.VersionTag
type ModuleSymbol = symbols.ModuleSymbol
type MergedModuleSymbol = symbols.MergedModuleSymbol
type PerVersionModel = symbols.PerVersionModel
type Declaration = symbols.Declaration
type SourceDescriptor = sources.Descriptor

// SupportedVersions is re-exported for callers iterating build output.
var SupportedVersions = symbols.SupportedVersions
