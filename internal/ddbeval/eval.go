// Package ddbeval is the DynamoDB expression AST interpreter (spec.md
// §4.I): path resolution, comparisons, logical operators and functions
// over condition/filter/key-condition ASTs, plus update-action application
// and projection reduction.
//
// Grounded on the teacher's in-memory aggregate mutation style
// (domain/core/valueobjects and infrastructure/persistence/dynamodb's item
// marshaling) for deep-copy-before-mutate discipline, adapted from a single
// aggregate's fields to an arbitrary attribute-value tree walked by a
// parsed path.
package ddbeval

import (
	"bytes"
	"strconv"
	"strings"

	"backend2/internal/apperr"
	"backend2/internal/ddbexpr"
	"backend2/internal/value"
)

// Evaluator binds the placeholder maps an expression is evaluated against
// (spec.md §4.I).
type Evaluator struct {
	Names  map[string]string               // #name -> real attribute name
	Values map[string]value.AttributeValue // :name -> attribute value
}

type resolvedStep struct {
	Field   string
	IsIndex bool
	Index   int
}

func (e *Evaluator) resolveSteps(path ddbexpr.Path) ([]resolvedStep, error) {
	steps := make([]resolvedStep, len(path))
	for i, el := range path {
		if el.IsIndex {
			steps[i] = resolvedStep{IsIndex: true, Index: el.Index}
			continue
		}
		name := el.Field
		if el.Placeholder {
			resolved, ok := e.Names[el.Field]
			if !ok {
				return nil, apperr.UnresolvedName(el.Field)
			}
			name = resolved
		}
		steps[i] = resolvedStep{Field: name}
	}
	return steps, nil
}

func getNested(cur value.AttributeValue, steps []resolvedStep) (value.AttributeValue, bool) {
	if len(steps) == 0 {
		return cur, true
	}
	step := steps[0]
	rest := steps[1:]
	if step.IsIndex {
		if cur.Kind != value.KindList || step.Index < 0 || step.Index >= len(cur.L) {
			return value.AttributeValue{}, false
		}
		return getNested(cur.L[step.Index], rest)
	}
	if cur.Kind != value.KindMap {
		return value.AttributeValue{}, false
	}
	child, ok := cur.M[step.Field]
	if !ok {
		return value.AttributeValue{}, false
	}
	return getNested(child, rest)
}

// ResolvePath walks path through item, returning the "absent" state
// (exists=false) rather than an error when any step fails to address a
// value (spec.md §4.I).
func (e *Evaluator) ResolvePath(item map[string]value.AttributeValue, path ddbexpr.Path) (value.AttributeValue, bool, error) {
	steps, err := e.resolveSteps(path)
	if err != nil {
		return value.AttributeValue{}, false, err
	}
	v, ok := getNested(value.Map(item), steps)
	return v, ok, nil
}

// resolveOperand evaluates an Operand against the item. exists is false
// when a path operand, or the path inside size(), is absent; value operands
// never report absent (an unresolved :name is a hard error instead).
func (e *Evaluator) resolveOperand(op ddbexpr.Operand, item map[string]value.AttributeValue) (value.AttributeValue, bool, error) {
	switch o := op.(type) {
	case ddbexpr.ValueOperand:
		v, ok := e.Values[o.Name]
		if !ok {
			return value.AttributeValue{}, false, apperr.UnresolvedValue(o.Name)
		}
		return v, true, nil
	case ddbexpr.PathOperand:
		return e.ResolvePath(item, o.Path)
	case ddbexpr.SizeOperand:
		v, exists, err := e.ResolvePath(item, o.Path)
		if err != nil {
			return value.AttributeValue{}, false, err
		}
		if !exists {
			return value.AttributeValue{}, false, nil
		}
		n, ok := v.Len()
		if !ok {
			return value.AttributeValue{}, false, apperr.TypeMismatch("size() is not defined for this attribute type")
		}
		return value.Number(strconv.Itoa(n)), true, nil
	default:
		return value.AttributeValue{}, false, apperr.InvalidOperand("unrecognized operand")
	}
}

// Evaluate runs a parsed condition/filter/key-condition AST against an item
// (spec.md §4.I).
func (e *Evaluator) Evaluate(cond ddbexpr.Condition, item map[string]value.AttributeValue) (bool, error) {
	switch n := cond.(type) {
	case ddbexpr.OrNode:
		left, err := e.Evaluate(n.Left, item)
		if err != nil {
			return false, err
		}
		if left {
			return true, nil
		}
		return e.Evaluate(n.Right, item)
	case ddbexpr.AndNode:
		left, err := e.Evaluate(n.Left, item)
		if err != nil {
			return false, err
		}
		if !left {
			return false, nil
		}
		return e.Evaluate(n.Right, item)
	case ddbexpr.NotNode:
		inner, err := e.Evaluate(n.Inner, item)
		if err != nil {
			return false, err
		}
		return !inner, nil
	case ddbexpr.CompareNode:
		return e.evaluateCompare(n, item)
	case ddbexpr.BetweenNode:
		return e.evaluateBetween(n, item)
	case ddbexpr.InNode:
		return e.evaluateIn(n, item)
	case ddbexpr.FuncNode:
		return e.evaluateFunc(n, item)
	default:
		return false, apperr.InvalidOperand("unrecognized condition node")
	}
}

func (e *Evaluator) evaluateCompare(n ddbexpr.CompareNode, item map[string]value.AttributeValue) (bool, error) {
	left, leftOK, err := e.resolveOperand(n.Left, item)
	if err != nil {
		return false, err
	}
	right, rightOK, err := e.resolveOperand(n.Right, item)
	if err != nil {
		return false, err
	}
	if !leftOK || !rightOK {
		return false, nil
	}

	switch n.Op {
	case "=":
		return value.Equal(left, right), nil
	case "<>":
		return !value.Equal(left, right), nil
	case "<", "<=", ">", ">=":
		return compareOrdered(n.Op, left, right)
	default:
		return false, apperr.InvalidOperand("unknown comparison operator: " + n.Op)
	}
}

// compareOrdered implements spec.md §4.I: ordering ops require matching
// types, else TypeMismatch.
func compareOrdered(op string, a, b value.AttributeValue) (bool, error) {
	if a.Kind != b.Kind {
		return false, apperr.TypeMismatch("comparison operands must be the same type")
	}
	sa, err := value.FromAttributeValue("left operand", a)
	if err != nil {
		return false, apperr.TypeMismatch("ordering comparisons require S, N, or B operands")
	}
	sb, err := value.FromAttributeValue("right operand", b)
	if err != nil {
		return false, apperr.TypeMismatch("ordering comparisons require S, N, or B operands")
	}
	c := value.Compare(sa, sb)
	switch op {
	case "<":
		return c < 0, nil
	case "<=":
		return c <= 0, nil
	case ">":
		return c > 0, nil
	case ">=":
		return c >= 0, nil
	default:
		return false, apperr.InvalidOperand("unknown comparison operator: " + op)
	}
}

func (e *Evaluator) evaluateBetween(n ddbexpr.BetweenNode, item map[string]value.AttributeValue) (bool, error) {
	v, vOK, err := e.resolveOperand(n.Operand, item)
	if err != nil {
		return false, err
	}
	lo, loOK, err := e.resolveOperand(n.Lo, item)
	if err != nil {
		return false, err
	}
	hi, hiOK, err := e.resolveOperand(n.Hi, item)
	if err != nil {
		return false, err
	}
	if !vOK || !loOK || !hiOK {
		return false, nil
	}
	if v.Kind != lo.Kind || v.Kind != hi.Kind {
		return false, apperr.TypeMismatch("BETWEEN requires operands of the same type")
	}
	sv, err := value.FromAttributeValue("operand", v)
	if err != nil {
		return false, apperr.TypeMismatch("BETWEEN requires S, N, or B operands")
	}
	slo, _ := value.FromAttributeValue("lo", lo)
	shi, _ := value.FromAttributeValue("hi", hi)
	return value.Compare(sv, slo) >= 0 && value.Compare(sv, shi) <= 0, nil
}

func (e *Evaluator) evaluateIn(n ddbexpr.InNode, item map[string]value.AttributeValue) (bool, error) {
	v, vOK, err := e.resolveOperand(n.Operand, item)
	if err != nil {
		return false, err
	}
	if !vOK {
		return false, nil
	}
	for _, candidate := range n.List {
		cv, cOK, err := e.resolveOperand(candidate, item)
		if err != nil {
			return false, err
		}
		if cOK && value.Equal(v, cv) {
			return true, nil
		}
	}
	return false, nil
}

func (e *Evaluator) evaluateFunc(n ddbexpr.FuncNode, item map[string]value.AttributeValue) (bool, error) {
	switch n.Name {
	case "attribute_exists":
		_, exists, err := e.ResolvePath(item, n.Path)
		return exists, err
	case "attribute_not_exists":
		_, exists, err := e.ResolvePath(item, n.Path)
		if err != nil {
			return false, err
		}
		return !exists, nil
	case "attribute_type":
		v, exists, err := e.ResolvePath(item, n.Path)
		if err != nil {
			return false, err
		}
		if !exists {
			return false, nil
		}
		tag, tagOK, err := e.resolveOperand(n.Operand, item)
		if err != nil {
			return false, err
		}
		if !tagOK || tag.Kind != value.KindString {
			return false, apperr.InvalidOperand("attribute_type expects a string type descriptor")
		}
		return v.Kind.TypeDescriptor() == tag.S, nil
	case "begins_with":
		v, exists, err := e.ResolvePath(item, n.Path)
		if err != nil {
			return false, err
		}
		if !exists {
			return false, nil
		}
		prefix, prefixOK, err := e.resolveOperand(n.Operand, item)
		if err != nil {
			return false, err
		}
		if !prefixOK {
			return false, nil
		}
		switch {
		case v.Kind == value.KindString && prefix.Kind == value.KindString:
			return strings.HasPrefix(v.S, prefix.S), nil
		case v.Kind == value.KindBinary && prefix.Kind == value.KindBinary:
			return bytes.HasPrefix(v.B, prefix.B), nil
		default:
			return false, apperr.TypeMismatch("begins_with requires both operands be S or both B")
		}
	case "contains":
		v, exists, err := e.ResolvePath(item, n.Path)
		if err != nil {
			return false, err
		}
		if !exists {
			return false, nil
		}
		needle, needleOK, err := e.resolveOperand(n.Operand, item)
		if err != nil {
			return false, err
		}
		if !needleOK {
			return false, nil
		}
		return evaluateContains(v, needle)
	default:
		return false, apperr.InvalidOperand("unknown function: " + n.Name)
	}
}

func evaluateContains(v, needle value.AttributeValue) (bool, error) {
	switch v.Kind {
	case value.KindString:
		if needle.Kind != value.KindString {
			return false, apperr.TypeMismatch("contains on a string requires a string operand")
		}
		return strings.Contains(v.S, needle.S), nil
	case value.KindBinary:
		if needle.Kind != value.KindBinary {
			return false, apperr.TypeMismatch("contains on binary requires a binary operand")
		}
		return bytes.Contains(v.B, needle.B), nil
	case value.KindStringSet:
		if needle.Kind != value.KindString {
			return false, apperr.TypeMismatch("contains on a string set requires a string operand")
		}
		for _, s := range v.SS {
			if s == needle.S {
				return true, nil
			}
		}
		return false, nil
	case value.KindNumberSet:
		if needle.Kind != value.KindNumber {
			return false, apperr.TypeMismatch("contains on a number set requires a number operand")
		}
		for _, n := range v.NS {
			if value.Equal(value.Number(n), needle) {
				return true, nil
			}
		}
		return false, nil
	case value.KindBinarySet:
		if needle.Kind != value.KindBinary {
			return false, apperr.TypeMismatch("contains on a binary set requires a binary operand")
		}
		for _, b := range v.BS {
			if bytes.Equal(b, needle.B) {
				return true, nil
			}
		}
		return false, nil
	case value.KindList:
		for _, el := range v.L {
			if value.Equal(el, needle) {
				return true, nil
			}
		}
		return false, nil
	default:
		return false, apperr.TypeMismatch("contains is not supported for this attribute type")
	}
}
