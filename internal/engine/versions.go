package engine

import (
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// condValue is a three-valued condition result. Conditions the engine cannot
// interpret stay unknown; an unknown top-level condition takes the if-branch.
type condValue int

const (
	condUnknown condValue = iota
	condFalse
	condTrue
)

func branchLive(v condValue) bool { return v != condFalse }

func boolCond(b bool) condValue {
	if b {
		return condTrue
	}
	return condFalse
}

// evalCondition evaluates an if/elif condition against the build
// configuration. Recognized forms are comparisons on sys.version_info
// (whole tuple, [0] subscript, [:2] slice) and sys.platform, combined with
// and/or/not and parentheses.
func (p *fileParser) evalCondition(node *sitter.Node) condValue {
	if node == nil {
		return condUnknown
	}
	switch node.Type() {
	case "parenthesized_expression":
		if node.NamedChildCount() > 0 {
			return p.evalCondition(node.NamedChild(0))
		}
		return condUnknown
	case "not_operator":
		switch p.evalCondition(node.ChildByFieldName("argument")) {
		case condTrue:
			return condFalse
		case condFalse:
			return condTrue
		}
		return condUnknown
	case "boolean_operator":
		left := p.evalCondition(node.ChildByFieldName("left"))
		right := p.evalCondition(node.ChildByFieldName("right"))
		if op := node.ChildByFieldName("operator"); op != nil && op.Type() == "or" {
			if left == condTrue || right == condTrue {
				return condTrue
			}
			if left == condFalse && right == condFalse {
				return condFalse
			}
			return condUnknown
		}
		if left == condFalse || right == condFalse {
			return condFalse
		}
		if left == condTrue && right == condTrue {
			return condTrue
		}
		return condUnknown
	case "comparison_operator":
		return p.evalComparison(node)
	}
	return condUnknown
}

func (p *fileParser) evalComparison(node *sitter.Node) condValue {
	// Operands are the named children; the operator is the anonymous token
	// between them. Chained comparisons do not occur in stub conditionals.
	var operands []*sitter.Node
	op := ""
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.IsNamed() {
			operands = append(operands, child)
		} else if op == "" {
			op = child.Type()
		}
	}
	if len(operands) != 2 || op == "" {
		return condUnknown
	}
	left, right := operands[0], operands[1]

	if versionPart, ok := p.versionOperand(left); ok {
		literal, ok := p.intTuple(right)
		if !ok {
			return condUnknown
		}
		return boolCond(compareSatisfies(tupleCompare(versionPart, literal), op))
	}
	if p.text(left) == "sys.platform" {
		lit, ok := p.stringLiteral(right)
		if !ok {
			return condUnknown
		}
		switch op {
		case "==":
			return boolCond(p.cfg.Platform == lit)
		case "!=":
			return boolCond(p.cfg.Platform != lit)
		}
		return condUnknown
	}
	return condUnknown
}

// versionOperand maps a sys.version_info expression to the configured
// version components it denotes.
func (p *fileParser) versionOperand(node *sitter.Node) ([]int, bool) {
	full := []int{p.cfg.PythonMajor, p.cfg.PythonMinor}
	switch node.Type() {
	case "attribute":
		if p.text(node) == "sys.version_info" {
			return full, true
		}
	case "subscript":
		value := node.ChildByFieldName("value")
		if value == nil || p.text(value) != "sys.version_info" {
			return nil, false
		}
		sub := node.ChildByFieldName("subscript")
		if sub == nil {
			return nil, false
		}
		switch sub.Type() {
		case "integer":
			idx, err := strconv.Atoi(p.text(sub))
			if err != nil || idx < 0 || idx >= len(full) {
				return nil, false
			}
			return full[idx : idx+1], true
		case "slice":
			// Stubs only slice as version_info[:2].
			return full, true
		}
	}
	return nil, false
}

// intTuple reads an integer or an integer tuple literal like (3, 9).
func (p *fileParser) intTuple(node *sitter.Node) ([]int, bool) {
	switch node.Type() {
	case "integer":
		v, err := strconv.Atoi(p.text(node))
		if err != nil {
			return nil, false
		}
		return []int{v}, true
	case "tuple", "parenthesized_expression":
		var vals []int
		for i := 0; i < int(node.NamedChildCount()); i++ {
			child := node.NamedChild(i)
			if child.Type() != "integer" {
				return nil, false
			}
			v, err := strconv.Atoi(p.text(child))
			if err != nil {
				return nil, false
			}
			vals = append(vals, v)
		}
		return vals, len(vals) > 0
	}
	return nil, false
}

func (p *fileParser) stringLiteral(node *sitter.Node) (string, bool) {
	if node.Type() != "string" {
		return "", false
	}
	return strings.Trim(p.text(node), `"'`), true
}

// tupleCompare compares two version tuples with Python tuple semantics:
// elementwise, with the shorter tuple ordering first when it is a prefix of
// the longer one.
func tupleCompare(a, b []int) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	return 0
}

func compareSatisfies(cmp int, op string) bool {
	switch op {
	case "<":
		return cmp < 0
	case "<=":
		return cmp <= 0
	case ">":
		return cmp > 0
	case ">=":
		return cmp >= 0
	case "==":
		return cmp == 0
	case "!=":
		return cmp != 0
	}
	return false
}
