package symbols

import "stubforge/internal/engine"

// Extract converts an engine module model into a ModuleSymbol. The
// transformation is pure: the same model always yields a structurally
// identical symbol tree. Declaration order follows the source stub, and all
// function definitions sharing a name (an @overload group) collapse into one
// declaration carrying the ordered signature list.
func Extract(m *engine.ModuleModel) *ModuleSymbol {
	return &ModuleSymbol{
		FullName:     m.FullName,
		Declarations: extractDefs(m.Defs),
	}
}

func extractDefs(defs []*engine.Def) []*Declaration {
	var out []*Declaration
	byName := make(map[string]*Declaration)

	for _, d := range defs {
		existing := byName[d.Name]

		if d.Kind == engine.DefFunction && existing != nil && existing.Kind == KindFunction {
			existing.Function.Signatures = append(existing.Function.Signatures, signatureOf(d))
			continue
		}

		decl := declarationOf(d)
		if existing != nil {
			// A same-name redefinition (e.g. a variable later declared as a
			// function) replaces the earlier entry in place, keeping its
			// original position.
			*existing = *decl
			byName[d.Name] = existing
			continue
		}
		byName[d.Name] = decl
		out = append(out, decl)
	}
	return out
}

func declarationOf(d *engine.Def) *Declaration {
	decl := &Declaration{Name: d.Name}
	switch d.Kind {
	case engine.DefFunction:
		decl.Kind = KindFunction
		decl.Function = &FunctionSymbol{Signatures: []Signature{signatureOf(d)}}
	case engine.DefClass:
		decl.Kind = KindClass
		decl.Class = &ClassSymbol{
			Bases:   d.Bases,
			Members: extractDefs(d.Members),
		}
	case engine.DefVariable:
		decl.Kind = KindVariable
		decl.Variable = &VariableSymbol{Type: d.Type}
	}
	return decl
}

func signatureOf(d *engine.Def) Signature {
	sig := Signature{
		Returns:    d.Returns,
		IsAsync:    d.IsAsync,
		Decorators: d.Decorators,
	}
	for _, p := range d.Params {
		sig.Params = append(sig.Params, Parameter{
			Name:       p.Name,
			Annotation: p.Annotation,
			HasDefault: p.HasDefault,
			Star:       p.Star,
		})
	}
	return sig
}
