package symbols

import "fmt"

// VersionTag identifies one target Python interpreter version.
type VersionTag struct {
	Major int
	Minor int
}

// SupportedVersions is the fixed set of interpreter versions every merged
// build runs against, in canonical (ascending) order. All cross-version
// iteration in this package follows this order so output is deterministic.
var SupportedVersions = []VersionTag{
	{3, 8}, {3, 9}, {3, 10}, {3, 11}, {3, 12}, {3, 13},
}

// String returns the compact tag used for keys and persisted applicability
// sets, e.g. "38" or "313".
func (v VersionTag) String() string {
	return fmt.Sprintf("%d%d", v.Major, v.Minor)
}

// Display returns the dotted human-readable form, e.g. "3.10".
func (v VersionTag) Display() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Less reports whether v orders before o in the canonical version order.
func (v VersionTag) Less(o VersionTag) bool {
	if v.Major != o.Major {
		return v.Major < o.Major
	}
	return v.Minor < o.Minor
}
