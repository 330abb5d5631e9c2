package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stubforge/internal/symbols"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := NewStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, s.Migrate())
	t.Cleanup(func() { s.Close() })
	return s
}

func testModule() *symbols.ModuleSymbol {
	return &symbols.ModuleSymbol{
		FullName: "pkg.mod",
		Declarations: []*symbols.Declaration{
			{Name: "x", Kind: symbols.KindVariable, Variable: &symbols.VariableSymbol{Type: "int"}},
			{Name: "f", Kind: symbols.KindFunction, Function: &symbols.FunctionSymbol{
				Signatures: []symbols.Signature{{Returns: "str"}},
			}},
		},
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	require.NoError(t, s.Migrate())
}

func TestSaveModule_RoundTrip(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	require.NoError(t, s.SaveModule("stdlib", testModule()))

	row, err := s.ModuleByName("stdlib", "pkg.mod")
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Empty(t, row.ValidVersions)

	decls, err := s.DeclarationsByModule(row.ID)
	require.NoError(t, err)
	require.Len(t, decls, 2)
	assert.Equal(t, "x", decls[0].Name)
	assert.Equal(t, "variable", decls[0].Kind)
	assert.Equal(t, "f", decls[1].Name)

	var decoded symbols.Declaration
	require.NoError(t, json.Unmarshal([]byte(decls[1].Detail), &decoded))
	assert.Equal(t, "str", decoded.Function.Signatures[0].Returns)
}

func TestSaveModule_ReplacesPrevious(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	require.NoError(t, s.SaveModule("stdlib", testModule()))

	smaller := &symbols.ModuleSymbol{
		FullName: "pkg.mod",
		Declarations: []*symbols.Declaration{
			{Name: "only", Kind: symbols.KindVariable, Variable: &symbols.VariableSymbol{Type: "str"}},
		},
	}
	require.NoError(t, s.SaveModule("stdlib", smaller))

	row, err := s.ModuleByName("stdlib", "pkg.mod")
	require.NoError(t, err)
	decls, err := s.DeclarationsByModule(row.ID)
	require.NoError(t, err)
	require.Len(t, decls, 1)
	assert.Equal(t, "only", decls[0].Name)
}

func TestSaveModule_TargetsAreIndependent(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	require.NoError(t, s.SaveModule("stdlib", testModule()))
	require.NoError(t, s.SaveModule("custom", testModule()))

	rows, err := s.ModulesByTarget("stdlib")
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	missing, err := s.ModuleByName("third_party", "pkg.mod")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSaveMergedModule_RoundTrip(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	merged := &symbols.MergedModuleSymbol{
		FullName: "pkg.mod",
		ValidFor: []string{"39", "310"},
		Declarations: []*symbols.MergedDeclaration{
			{Name: "f", Variants: []*symbols.DeclarationVariant{
				{
					Declaration: &symbols.Declaration{Name: "f", Kind: symbols.KindFunction,
						Function: &symbols.FunctionSymbol{Signatures: []symbols.Signature{{Returns: "int"}}}},
					ValidFor: []string{"39"},
				},
				{
					Declaration: &symbols.Declaration{Name: "f", Kind: symbols.KindFunction,
						Function: &symbols.FunctionSymbol{Signatures: []symbols.Signature{{Returns: "str"}}}},
					ValidFor: []string{"310"},
				},
			}},
		},
	}
	require.NoError(t, s.SaveMergedModule("stdlib_merged", merged))

	row, err := s.ModuleByName("stdlib_merged", "pkg.mod")
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, []string{"39", "310"}, row.ValidVersions)

	decls, err := s.DeclarationsByModule(row.ID)
	require.NoError(t, err)
	require.Len(t, decls, 2)
	assert.Equal(t, 0, decls[0].Ordinal)
	assert.Equal(t, 0, decls[0].Variant)
	assert.Equal(t, []string{"39"}, decls[0].ValidVersions)
	assert.Equal(t, 1, decls[1].Variant)
	assert.Equal(t, []string{"310"}, decls[1].ValidVersions)
}

func TestMetadata(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	value, err := s.GetMetadata("absent")
	require.NoError(t, err)
	assert.Empty(t, value)

	require.NoError(t, s.SetMetadata("run", "1"))
	require.NoError(t, s.SetMetadata("run", "2"))
	value, err = s.GetMetadata("run")
	require.NoError(t, err)
	assert.Equal(t, "2", value)
}

func TestWriteDebugArtifact(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	require.NoError(t, WriteDebugArtifact(root, "stdlib", "pkg.mod", testModule()))

	data, err := os.ReadFile(filepath.Join(root, "stdlib", "pkg.mod.json"))
	require.NoError(t, err)

	var decoded symbols.ModuleSymbol
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "pkg.mod", decoded.FullName)
	require.Len(t, decoded.Declarations, 2)
}
