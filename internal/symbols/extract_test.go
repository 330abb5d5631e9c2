package symbols

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stubforge/internal/engine"
)

func TestExtract_PreservesDeclarationOrder(t *testing.T) {
	t.Parallel()
	m := &engine.ModuleModel{
		FullName: "mod",
		Defs: []*engine.Def{
			{Name: "b", Kind: engine.DefVariable, Type: "int"},
			{Name: "a", Kind: engine.DefFunction, Returns: "str"},
			{Name: "C", Kind: engine.DefClass},
		},
	}
	sym := Extract(m)
	assert.Equal(t, "mod", sym.FullName)
	require.Len(t, sym.Declarations, 3)
	assert.Equal(t, "b", sym.Declarations[0].Name)
	assert.Equal(t, "a", sym.Declarations[1].Name)
	assert.Equal(t, "C", sym.Declarations[2].Name)
}

func TestExtract_FlattensOverloads(t *testing.T) {
	t.Parallel()
	m := &engine.ModuleModel{
		FullName: "mod",
		Defs: []*engine.Def{
			{Name: "f", Kind: engine.DefFunction, Decorators: []string{"overload"},
				Params: []engine.Param{{Name: "x", Annotation: "int"}}, Returns: "int"},
			{Name: "g", Kind: engine.DefFunction, Returns: "None"},
			{Name: "f", Kind: engine.DefFunction, Decorators: []string{"overload"},
				Params: []engine.Param{{Name: "x", Annotation: "str"}}, Returns: "str"},
		},
	}
	sym := Extract(m)
	require.Len(t, sym.Declarations, 2)

	f := sym.Declarations[0]
	assert.Equal(t, "f", f.Name)
	assert.Equal(t, KindFunction, f.Kind)
	require.Len(t, f.Function.Signatures, 2)
	assert.Equal(t, "int", f.Function.Signatures[0].Returns)
	assert.Equal(t, "str", f.Function.Signatures[1].Returns)

	assert.Equal(t, "g", sym.Declarations[1].Name)
}

func TestExtract_RedefinitionReplacesInPlace(t *testing.T) {
	t.Parallel()
	m := &engine.ModuleModel{
		FullName: "mod",
		Defs: []*engine.Def{
			{Name: "x", Kind: engine.DefVariable, Type: "int"},
			{Name: "y", Kind: engine.DefVariable, Type: "str"},
			{Name: "x", Kind: engine.DefFunction, Returns: "int"},
		},
	}
	sym := Extract(m)
	require.Len(t, sym.Declarations, 2)
	// x keeps its original position but carries the later definition.
	assert.Equal(t, "x", sym.Declarations[0].Name)
	assert.Equal(t, KindFunction, sym.Declarations[0].Kind)
	assert.Equal(t, "y", sym.Declarations[1].Name)
}

func TestExtract_ClassMembers(t *testing.T) {
	t.Parallel()
	m := &engine.ModuleModel{
		FullName: "mod",
		Defs: []*engine.Def{
			{Name: "C", Kind: engine.DefClass, Bases: []string{"Base"}, Members: []*engine.Def{
				{Name: "value", Kind: engine.DefVariable, Type: "int"},
				{Name: "get", Kind: engine.DefFunction, Decorators: []string{"overload"}, Returns: "int"},
				{Name: "get", Kind: engine.DefFunction, Decorators: []string{"overload"}, Returns: "str"},
				{Name: "Inner", Kind: engine.DefClass},
			}},
		},
	}
	sym := Extract(m)
	require.Len(t, sym.Declarations, 1)
	cls := sym.Declarations[0]
	assert.Equal(t, []string{"Base"}, cls.Class.Bases)
	require.Len(t, cls.Class.Members, 3)
	assert.Equal(t, "value", cls.Class.Members[0].Name)
	require.Len(t, cls.Class.Members[1].Function.Signatures, 2)
	assert.Equal(t, KindClass, cls.Class.Members[2].Kind)
}

func TestExtract_Pure(t *testing.T) {
	t.Parallel()
	m := &engine.ModuleModel{
		FullName: "mod",
		Defs: []*engine.Def{
			{Name: "f", Kind: engine.DefFunction, Returns: "int",
				Params: []engine.Param{{Name: "x", Annotation: "int", Star: ""}}},
			{Name: "C", Kind: engine.DefClass, Members: []*engine.Def{
				{Name: "m", Kind: engine.DefFunction, IsAsync: true},
			}},
		},
	}
	first := Extract(m)
	second := Extract(m)
	assert.Equal(t, first, second)
}
