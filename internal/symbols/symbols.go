// Package symbols defines stubforge's engine-independent module symbol model,
// the extractor that builds it from an engine module model, and the
// cross-version merger that reconciles per-version models into one canonical
// symbol tree per module.
package symbols

import (
	"crypto/sha256"
	"fmt"
	"io"
	"sort"
)

// Kind classifies a top-level or class-level declaration.
type Kind string

const (
	KindClass    Kind = "class"
	KindFunction Kind = "function"
	KindVariable Kind = "variable"
)

// ModuleSymbol is the engine-independent representation of one module: its
// fully qualified name and its declarations in source order. Two
// ModuleSymbols with the same FullName built for different version tags are
// independent trees; they relate only by structural comparison.
type ModuleSymbol struct {
	FullName     string         `json:"fullname"`
	Declarations []*Declaration `json:"declarations"`
}

// Declaration is one named entry in a module or class body. Exactly one of
// Class, Function, Variable is set, matching Kind.
type Declaration struct {
	Name     string          `json:"name"`
	Kind     Kind            `json:"kind"`
	Class    *ClassSymbol    `json:"class,omitempty"`
	Function *FunctionSymbol `json:"function,omitempty"`
	Variable *VariableSymbol `json:"variable,omitempty"`
}

// ClassSymbol carries a class declaration's bases and members. Members follow
// the same declaration model one level down (methods, attributes, nested
// classes).
type ClassSymbol struct {
	Bases   []string       `json:"bases,omitempty"`
	Members []*Declaration `json:"members,omitempty"`
}

// FunctionSymbol holds the ordered signature list for a function entry.
// A plain function has one signature; a flattened @overload group has one
// per overload, in source order.
type FunctionSymbol struct {
	Signatures []Signature `json:"signatures"`
}

// Signature describes one callable shape.
type Signature struct {
	Params     []Parameter `json:"params,omitempty"`
	Returns    string      `json:"returns,omitempty"`
	IsAsync    bool        `json:"is_async,omitempty"`
	Decorators []string    `json:"decorators,omitempty"`
}

// Parameter is one formal parameter. Star is "", "*" or "**" for normal,
// star-args and keyword-args parameters. The bare "*" and "/" separators are
// kept as parameters named "*" and "/" so parameter order round-trips.
type Parameter struct {
	Name       string `json:"name"`
	Annotation string `json:"annotation,omitempty"`
	HasDefault bool   `json:"has_default,omitempty"`
	Star       string `json:"star,omitempty"`
}

// VariableSymbol carries a module- or class-level variable's declared type.
type VariableSymbol struct {
	Type string `json:"type,omitempty"`
}

// Fingerprint returns a deterministic hash of the declaration's structural
// identity: name, kind, signatures in order, bases, variable type, and class
// members (sorted by name and kind so member reordering alone is not a
// structural difference). Source locations never affect the fingerprint. Two
// declarations are structurally identical iff their fingerprints are equal;
// the merger records any fingerprint mismatch as a per-version variation.
func (d *Declaration) Fingerprint() string {
	h := sha256.New()
	d.writeTo(h)
	return fmt.Sprintf("%x", h.Sum(nil))
}

func (d *Declaration) writeTo(w io.Writer) {
	fmt.Fprintf(w, "name:%s\nkind:%s\n", d.Name, d.Kind)
	switch d.Kind {
	case KindFunction:
		for _, sig := range d.Function.Signatures {
			sig.writeTo(w)
		}
	case KindVariable:
		fmt.Fprintf(w, "type:%s\n", d.Variable.Type)
	case KindClass:
		for _, b := range d.Class.Bases {
			fmt.Fprintf(w, "base:%s\n", b)
		}
		members := make([]*Declaration, len(d.Class.Members))
		copy(members, d.Class.Members)
		sort.Slice(members, func(i, j int) bool {
			if members[i].Name != members[j].Name {
				return members[i].Name < members[j].Name
			}
			return members[i].Kind < members[j].Kind
		})
		for _, m := range members {
			fmt.Fprintf(w, "member{\n")
			m.writeTo(w)
			fmt.Fprintf(w, "}\n")
		}
	}
}

func (s Signature) writeTo(w io.Writer) {
	fmt.Fprintf(w, "signature:async=%v:returns=%s\n", s.IsAsync, s.Returns)
	for _, dec := range s.Decorators {
		fmt.Fprintf(w, "decorator:%s\n", dec)
	}
	for _, p := range s.Params {
		fmt.Fprintf(w, "param:%s%s:%s:default=%v\n", p.Star, p.Name, p.Annotation, p.HasDefault)
	}
}
