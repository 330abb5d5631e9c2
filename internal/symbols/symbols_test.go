package symbols

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func fn(name string, sigs ...Signature) *Declaration {
	return &Declaration{Name: name, Kind: KindFunction, Function: &FunctionSymbol{Signatures: sigs}}
}

func variable(name, typ string) *Declaration {
	return &Declaration{Name: name, Kind: KindVariable, Variable: &VariableSymbol{Type: typ}}
}

func class(name string, bases []string, members ...*Declaration) *Declaration {
	return &Declaration{Name: name, Kind: KindClass, Class: &ClassSymbol{Bases: bases, Members: members}}
}

func TestFingerprint_IdenticalDeclarations(t *testing.T) {
	t.Parallel()
	a := fn("f", Signature{Params: []Parameter{{Name: "x", Annotation: "int"}}, Returns: "str"})
	b := fn("f", Signature{Params: []Parameter{{Name: "x", Annotation: "int"}}, Returns: "str"})
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
}

func TestFingerprint_DetectsStructuralDifferences(t *testing.T) {
	t.Parallel()
	base := fn("f", Signature{Params: []Parameter{{Name: "x", Annotation: "int"}}, Returns: "str"})
	tests := []struct {
		name  string
		other *Declaration
	}{
		{"different return", fn("f", Signature{Params: []Parameter{{Name: "x", Annotation: "int"}}, Returns: "bytes"})},
		{"different annotation", fn("f", Signature{Params: []Parameter{{Name: "x", Annotation: "str"}}, Returns: "str"})},
		{"extra default", fn("f", Signature{Params: []Parameter{{Name: "x", Annotation: "int", HasDefault: true}}, Returns: "str"})},
		{"extra signature", fn("f",
			Signature{Params: []Parameter{{Name: "x", Annotation: "int"}}, Returns: "str"},
			Signature{Params: []Parameter{{Name: "x", Annotation: "str"}}, Returns: "str"},
		)},
		{"different kind", variable("f", "int")},
		{"async", fn("f", Signature{Params: []Parameter{{Name: "x", Annotation: "int"}}, Returns: "str", IsAsync: true})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotEqual(t, base.Fingerprint(), tt.other.Fingerprint())
		})
	}
}

func TestFingerprint_MemberOrderInsensitive(t *testing.T) {
	t.Parallel()
	a := class("C", []string{"Base"},
		variable("x", "int"),
		fn("get", Signature{Returns: "int"}),
	)
	b := class("C", []string{"Base"},
		fn("get", Signature{Returns: "int"}),
		variable("x", "int"),
	)
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
}

func TestFingerprint_MemberContentSensitive(t *testing.T) {
	t.Parallel()
	a := class("C", nil, variable("x", "int"))
	b := class("C", nil, variable("x", "str"))
	c := class("C", nil, variable("x", "int"), variable("y", "int"))
	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint())
}

func TestFingerprint_SignatureOrderSensitive(t *testing.T) {
	t.Parallel()
	s1 := Signature{Params: []Parameter{{Name: "x", Annotation: "int"}}, Returns: "str"}
	s2 := Signature{Params: []Parameter{{Name: "x", Annotation: "str"}}, Returns: "str"}
	a := fn("f", s1, s2)
	b := fn("f", s2, s1)
	// Overload order is part of the contract.
	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())
}

func TestVersionTag(t *testing.T) {
	t.Parallel()
	v := VersionTag{3, 10}
	assert.Equal(t, "310", v.String())
	assert.Equal(t, "3.10", v.Display())
	assert.True(t, VersionTag{3, 9}.Less(v))
	assert.False(t, v.Less(v))
	assert.True(t, v.Less(VersionTag{4, 0}))

	for i := 1; i < len(SupportedVersions); i++ {
		assert.True(t, SupportedVersions[i-1].Less(SupportedVersions[i]),
			"supported versions must be in canonical ascending order")
	}
}
