package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// parseFile reads and parses one stub file, returning its module model under
// the build configuration. Read or parse failures are fatal; recoverable
// syntax errors inside the file become diagnostics.
func parseFile(ctx context.Context, path, moduleID string, cfg Config) (*ModuleModel, []Diagnostic, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read stub: %w", err)
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, nil, fmt.Errorf("parse stub: %w", err)
	}
	defer tree.Close()

	mod := &ModuleModel{FullName: moduleID, Path: path}
	p := &fileParser{src: src, cfg: cfg, path: path, moduleID: moduleID, mod: mod}

	root := tree.RootNode()
	var diags []Diagnostic
	if root.HasError() {
		diags = collectErrorDiagnostics(root, path, nil)
	}
	p.collectBlock(root, &mod.Defs)
	return mod, diags, nil
}

// collectErrorDiagnostics gathers up to five ERROR regions from a recovered
// parse so the caller can report where the stub is malformed.
func collectErrorDiagnostics(node *sitter.Node, path string, acc []Diagnostic) []Diagnostic {
	if len(acc) >= 5 {
		return acc
	}
	if node.Type() == "ERROR" || node.IsMissing() {
		return append(acc, Diagnostic{
			Path:    path,
			Line:    int(node.StartPoint().Row) + 1,
			Message: "syntax error",
		})
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		acc = collectErrorDiagnostics(node.Child(i), path, acc)
	}
	return acc
}

// fileParser walks one parsed stub and accumulates definitions and imports.
type fileParser struct {
	src      []byte
	cfg      Config
	path     string
	moduleID string
	mod      *ModuleModel
}

func (p *fileParser) text(n *sitter.Node) string {
	return n.Content(p.src)
}

// norm collapses the whitespace inside an expression's source text so that
// formatting-only differences never register as structural differences.
func (p *fileParser) norm(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return strings.Join(strings.Fields(p.text(n)), " ")
}

// collectBlock dispatches every statement of a module or block body.
func (p *fileParser) collectBlock(node *sitter.Node, out *[]*Def) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		p.statement(node.NamedChild(i), out)
	}
}

func (p *fileParser) statement(node *sitter.Node, out *[]*Def) {
	switch node.Type() {
	case "import_statement", "import_from_statement":
		p.collectImports(node)
	case "if_statement":
		p.ifStatement(node, out)
	case "decorated_definition":
		p.decoratedDefinition(node, out)
	case "function_definition":
		p.functionDefinition(node, nil, out)
	case "class_definition":
		p.classDefinition(node, out)
	case "expression_statement":
		for i := 0; i < int(node.NamedChildCount()); i++ {
			child := node.NamedChild(i)
			if child.Type() == "assignment" {
				p.assignment(child, out)
			}
		}
	}
}

// ifStatement evaluates the condition chain against the build configuration
// and collects only the live branch. Conditions the engine cannot interpret
// (e.g. TYPE_CHECKING) take the if-branch, which is the stub convention.
func (p *fileParser) ifStatement(node *sitter.Node, out *[]*Def) {
	if branchLive(p.evalCondition(node.ChildByFieldName("condition"))) {
		p.collectBlock(node.ChildByFieldName("consequence"), out)
		return
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "elif_clause":
			if branchLive(p.evalCondition(child.ChildByFieldName("condition"))) {
				p.collectBlock(child.ChildByFieldName("consequence"), out)
				return
			}
		case "else_clause":
			p.collectBlock(child.ChildByFieldName("body"), out)
			return
		}
	}
}

func (p *fileParser) decoratedDefinition(node *sitter.Node, out *[]*Def) {
	var decorators []string
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() == "decorator" && child.NamedChildCount() > 0 {
			decorators = append(decorators, p.norm(child.NamedChild(0)))
		}
	}
	def := node.ChildByFieldName("definition")
	if def == nil {
		return
	}
	switch def.Type() {
	case "function_definition":
		p.functionDefinition(def, decorators, out)
	case "class_definition":
		p.classDefinition(def, out)
	}
}

func (p *fileParser) functionDefinition(node *sitter.Node, decorators []string, out *[]*Def) {
	name := node.ChildByFieldName("name")
	if name == nil {
		return
	}
	def := &Def{
		Name:       p.text(name),
		Kind:       DefFunction,
		Returns:    p.norm(node.ChildByFieldName("return_type")),
		Decorators: decorators,
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		if node.Child(i).Type() == "async" {
			def.IsAsync = true
			break
		}
	}
	if params := node.ChildByFieldName("parameters"); params != nil {
		def.Params = p.parseParams(params)
	}
	*out = append(*out, def)
}

func (p *fileParser) classDefinition(node *sitter.Node, out *[]*Def) {
	name := node.ChildByFieldName("name")
	if name == nil {
		return
	}
	def := &Def{Name: p.text(name), Kind: DefClass}
	if supers := node.ChildByFieldName("superclasses"); supers != nil {
		for i := 0; i < int(supers.NamedChildCount()); i++ {
			arg := supers.NamedChild(i)
			// Keyword arguments (metaclass=..., total=...) are not bases.
			if arg.Type() == "keyword_argument" {
				continue
			}
			def.Bases = append(def.Bases, p.norm(arg))
		}
	}
	if body := node.ChildByFieldName("body"); body != nil {
		p.collectBlock(body, &def.Members)
	}
	*out = append(*out, def)
}

// assignment handles `x: T`, `x: T = ...` and `x = expr` statements. Only
// single-identifier targets become variables; tuple targets do not occur in
// stub files.
func (p *fileParser) assignment(node *sitter.Node, out *[]*Def) {
	left := node.ChildByFieldName("left")
	if left == nil || left.Type() != "identifier" {
		return
	}
	*out = append(*out, &Def{
		Name: p.text(left),
		Kind: DefVariable,
		Type: p.norm(node.ChildByFieldName("type")),
	})
}

func (p *fileParser) parseParams(node *sitter.Node) []Param {
	var params []Param
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "identifier":
			params = append(params, Param{Name: p.text(child)})
		case "typed_parameter":
			prm := Param{Annotation: p.norm(child.ChildByFieldName("type"))}
			if inner := child.NamedChild(0); inner != nil {
				prm.Name, prm.Star = p.splatName(inner)
			}
			params = append(params, prm)
		case "default_parameter":
			if nameNode := child.ChildByFieldName("name"); nameNode != nil && nameNode.Type() == "identifier" {
				params = append(params, Param{Name: p.text(nameNode), HasDefault: true})
			}
		case "typed_default_parameter":
			if nameNode := child.ChildByFieldName("name"); nameNode != nil {
				params = append(params, Param{
					Name:       p.text(nameNode),
					Annotation: p.norm(child.ChildByFieldName("type")),
					HasDefault: true,
				})
			}
		case "list_splat_pattern", "dictionary_splat_pattern":
			name, star := p.splatName(child)
			params = append(params, Param{Name: name, Star: star})
		case "positional_separator":
			params = append(params, Param{Name: "/"})
		case "keyword_separator":
			params = append(params, Param{Name: "*"})
		}
	}
	return params
}

// splatName unwraps *args / **kwargs patterns to the bare parameter name and
// its star marker.
func (p *fileParser) splatName(node *sitter.Node) (name, star string) {
	switch node.Type() {
	case "list_splat_pattern":
		star = "*"
	case "dictionary_splat_pattern":
		star = "**"
	default:
		return p.text(node), ""
	}
	if node.NamedChildCount() > 0 {
		name = p.text(node.NamedChild(0))
	}
	return name, star
}

// collectImports records the modules referenced by an import statement.
// `from m import a` also records the candidate m.a, since a may itself be a
// submodule; candidates that resolve to nothing are ignored downstream.
func (p *fileParser) collectImports(node *sitter.Node) {
	addImport := func(name string) {
		if name == "" || name == "__future__" {
			return
		}
		p.mod.Imports = append(p.mod.Imports, name)
	}

	if node.Type() == "import_statement" {
		for i := 0; i < int(node.NamedChildCount()); i++ {
			child := node.NamedChild(i)
			switch child.Type() {
			case "dotted_name":
				addImport(p.text(child))
			case "aliased_import":
				if nameNode := child.ChildByFieldName("name"); nameNode != nil {
					addImport(p.text(nameNode))
				}
			}
		}
		return
	}

	// import_from_statement
	moduleNode := node.ChildByFieldName("module_name")
	if moduleNode == nil {
		return
	}
	base := ""
	switch moduleNode.Type() {
	case "dotted_name":
		base = p.text(moduleNode)
	case "relative_import":
		base = p.resolveRelative(moduleNode)
	}
	addImport(base)

	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Equal(moduleNode) {
			continue
		}
		imported := ""
		switch child.Type() {
		case "dotted_name":
			imported = p.text(child)
		case "aliased_import":
			if nameNode := child.ChildByFieldName("name"); nameNode != nil {
				imported = p.text(nameNode)
			}
		}
		if imported != "" && base != "" {
			addImport(base + "." + imported)
		}
	}
}

// resolveRelative turns `from .sub import x` / `from .. import y` into an
// absolute module name using the current module's package.
func (p *fileParser) resolveRelative(node *sitter.Node) string {
	dots := 0
	suffix := ""
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "import_prefix":
			dots = len(p.text(child))
		case "dotted_name":
			suffix = p.text(child)
		}
	}
	if dots == 0 {
		return suffix
	}

	// The package of a module file is its identity minus the last segment; a
	// package initializer is its own package.
	pkg := p.moduleID
	if filepath.Base(p.path) != "__init__.pyi" {
		if idx := strings.LastIndex(pkg, "."); idx >= 0 {
			pkg = pkg[:idx]
		} else {
			pkg = ""
		}
	}
	for d := 1; d < dots; d++ {
		if idx := strings.LastIndex(pkg, "."); idx >= 0 {
			pkg = pkg[:idx]
		} else {
			pkg = ""
		}
	}
	switch {
	case pkg == "":
		return suffix
	case suffix == "":
		return pkg
	default:
		return pkg + "." + suffix
	}
}
