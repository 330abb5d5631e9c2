package symbols

import "sort"

// PerVersionModel maps module identity to its ModuleSymbol for one version
// tag and one serialization target.
type PerVersionModel map[string]*ModuleSymbol

// MergedModuleSymbol is the version-reconciled representation of one module.
// An empty ValidFor means the module exists in every version that was built;
// otherwise it lists the tags (canonical order) the module exists in.
type MergedModuleSymbol struct {
	FullName     string               `json:"fullname"`
	ValidFor     []string             `json:"valid_for,omitempty"`
	Declarations []*MergedDeclaration `json:"declarations"`
}

// MergedDeclaration groups everything declared under one name across
// versions. A declaration that is structurally identical in every version
// defining the module has a single variant with an empty ValidFor
// (unconditioned). Anything else, whether a differing signature, presence in
// only some versions, or a different kind per version, appears as one
// variant per distinct structure, each recording exactly the versions it
// applies to.
type MergedDeclaration struct {
	Name     string                `json:"name"`
	Variants []*DeclarationVariant `json:"variants"`
}

// DeclarationVariant is one concrete structure of a declaration plus the
// version tags it is valid for. An empty ValidFor means all versions that
// define the containing module.
type DeclarationVariant struct {
	Declaration *Declaration `json:"declaration"`
	ValidFor    []string     `json:"valid_for,omitempty"`
}

// Merge reconciles per-version models into one merged symbol per module
// identity. The result covers the union of identities across all versions;
// a module absent from some versions contributes nothing for those versions
// and the absence is recorded in the merged symbol's applicability.
//
// Merge never consults Go map iteration order: versions are visited in
// canonical order and identities in sorted order, so the output for a given
// input is identical across runs.
func Merge(byVersion map[VersionTag]PerVersionModel) map[string]*MergedModuleSymbol {
	versions := make([]VersionTag, 0, len(byVersion))
	for _, v := range SupportedVersions {
		if _, ok := byVersion[v]; ok {
			versions = append(versions, v)
		}
	}

	identitySet := make(map[string]bool)
	for _, model := range byVersion {
		for id := range model {
			identitySet[id] = true
		}
	}
	identities := make([]string, 0, len(identitySet))
	for id := range identitySet {
		identities = append(identities, id)
	}
	sort.Strings(identities)

	merged := make(map[string]*MergedModuleSymbol, len(identities))
	for _, id := range identities {
		var defining []VersionTag
		for _, v := range versions {
			if _, ok := byVersion[v][id]; ok {
				defining = append(defining, v)
			}
		}
		merged[id] = mergeModule(id, defining, len(versions), byVersion)
	}
	return merged
}

func mergeModule(id string, defining []VersionTag, totalVersions int, byVersion map[VersionTag]PerVersionModel) *MergedModuleSymbol {
	out := &MergedModuleSymbol{FullName: id}
	if len(defining) < totalVersions {
		out.ValidFor = tagsOf(defining)
	}

	// Declaration names in first-seen order across defining versions, so the
	// oldest version's source order dominates and later-only names follow.
	var names []string
	perVersion := make(map[string]map[VersionTag]*Declaration)
	for _, v := range defining {
		for _, decl := range byVersion[v][id].Declarations {
			if perVersion[decl.Name] == nil {
				perVersion[decl.Name] = make(map[VersionTag]*Declaration)
				names = append(names, decl.Name)
			}
			perVersion[decl.Name][v] = decl
		}
	}

	for _, name := range names {
		md := &MergedDeclaration{Name: name}
		byFingerprint := make(map[string]*DeclarationVariant)
		for _, v := range defining {
			decl, ok := perVersion[name][v]
			if !ok {
				continue
			}
			fp := decl.Fingerprint()
			variant, ok := byFingerprint[fp]
			if !ok {
				variant = &DeclarationVariant{Declaration: decl}
				byFingerprint[fp] = variant
				md.Variants = append(md.Variants, variant)
			}
			variant.ValidFor = append(variant.ValidFor, v.String())
		}
		if len(md.Variants) == 1 && len(md.Variants[0].ValidFor) == len(defining) {
			// Structurally identical in every version defining the module:
			// emit once, unconditioned.
			md.Variants[0].ValidFor = nil
		}
		out.Declarations = append(out.Declarations, md)
	}
	return out
}

func tagsOf(versions []VersionTag) []string {
	tags := make([]string, len(versions))
	for i, v := range versions {
		tags[i] = v.String()
	}
	return tags
}
