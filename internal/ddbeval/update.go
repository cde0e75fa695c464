package ddbeval

import (
	"strconv"

	"backend2/internal/apperr"
	"backend2/internal/ddbexpr"
	"backend2/internal/value"
)

// ApplyUpdate applies a parsed update expression to item, returning a new
// item (the input is never mutated) with SET/REMOVE/ADD/DELETE clauses
// applied in that order (spec.md §4.H/§4.I). DynamoDB itself rejects update
// expressions that name the same path in more than one clause; this
// evaluator is silent on cross-clause ordering beyond that, so callers are
// expected to have already rejected path collisions at parse time if they
// care to.
func (e *Evaluator) ApplyUpdate(item map[string]value.AttributeValue, update *ddbexpr.UpdateExpr) (map[string]value.AttributeValue, error) {
	working := value.CloneItem(item)

	for _, clause := range update.Set {
		rhs, err := e.evalSetRHS(clause.RHS, working)
		if err != nil {
			return nil, err
		}
		steps, err := e.resolveSteps(clause.Path)
		if err != nil {
			return nil, err
		}
		working = setNested(working, steps, rhs)
	}

	for _, path := range update.Remove {
		steps, err := e.resolveSteps(path)
		if err != nil {
			return nil, err
		}
		working = removeNested(working, steps)
	}

	for _, clause := range update.Add {
		if err := e.applyAdd(working, clause); err != nil {
			return nil, err
		}
	}

	for _, clause := range update.Delete {
		if err := e.applyDelete(working, clause); err != nil {
			return nil, err
		}
	}

	return working, nil
}

func (e *Evaluator) evalSetRHS(rhs ddbexpr.SetRHS, item map[string]value.AttributeValue) (value.AttributeValue, error) {
	switch r := rhs.(type) {
	case ddbexpr.OperandRHS:
		v, ok, err := e.resolveOperand(r.Operand, item)
		if err != nil {
			return value.AttributeValue{}, err
		}
		if !ok {
			return value.AttributeValue{}, apperr.InvalidOperand("SET right-hand side references a missing attribute")
		}
		return v, nil

	case ddbexpr.IfNotExistsRHS:
		existing, exists, err := e.ResolvePath(item, r.Path)
		if err != nil {
			return value.AttributeValue{}, err
		}
		if exists {
			return existing, nil
		}
		v, ok, err := e.resolveOperand(r.Operand, item)
		if err != nil {
			return value.AttributeValue{}, err
		}
		if !ok {
			return value.AttributeValue{}, apperr.InvalidOperand("if_not_exists() fallback references a missing attribute")
		}
		return v, nil

	case ddbexpr.ListAppendRHS:
		left, leftOK, err := e.resolveOperand(r.Left, item)
		if err != nil {
			return value.AttributeValue{}, err
		}
		right, rightOK, err := e.resolveOperand(r.Right, item)
		if err != nil {
			return value.AttributeValue{}, err
		}
		if !leftOK || !rightOK {
			return value.AttributeValue{}, apperr.InvalidOperand("list_append() references a missing attribute")
		}
		if left.Kind != value.KindList || right.Kind != value.KindList {
			return value.AttributeValue{}, apperr.TypeMismatch("list_append() requires both operands be lists")
		}
		merged := make([]value.AttributeValue, 0, len(left.L)+len(right.L))
		merged = append(merged, left.L...)
		merged = append(merged, right.L...)
		return value.List(merged), nil

	case ddbexpr.ArithRHS:
		left, leftOK, err := e.resolveOperand(r.Left, item)
		if err != nil {
			return value.AttributeValue{}, err
		}
		right, rightOK, err := e.resolveOperand(r.Right, item)
		if err != nil {
			return value.AttributeValue{}, err
		}
		if !leftOK || !rightOK {
			return value.AttributeValue{}, apperr.InvalidOperand("arithmetic SET references a missing attribute")
		}
		if left.Kind != value.KindNumber || right.Kind != value.KindNumber {
			return value.AttributeValue{}, apperr.TypeMismatch("arithmetic SET requires number operands")
		}
		switch r.Op {
		case "+":
			return addNumbers(left, right)
		case "-":
			return subNumbers(left, right)
		default:
			return value.AttributeValue{}, apperr.InvalidOperand("unknown arithmetic operator: " + r.Op)
		}

	default:
		return value.AttributeValue{}, apperr.InvalidOperand("unrecognized SET right-hand side")
	}
}

func addNumbers(a, b value.AttributeValue) (value.AttributeValue, error) {
	fa, err := strconv.ParseFloat(a.N, 64)
	if err != nil {
		return value.AttributeValue{}, apperr.TypeMismatch("not a valid number: " + a.N)
	}
	fb, err := strconv.ParseFloat(b.N, 64)
	if err != nil {
		return value.AttributeValue{}, apperr.TypeMismatch("not a valid number: " + b.N)
	}
	return value.Number(strconv.FormatFloat(fa+fb, 'f', -1, 64)), nil
}

func subNumbers(a, b value.AttributeValue) (value.AttributeValue, error) {
	fa, err := strconv.ParseFloat(a.N, 64)
	if err != nil {
		return value.AttributeValue{}, apperr.TypeMismatch("not a valid number: " + a.N)
	}
	fb, err := strconv.ParseFloat(b.N, 64)
	if err != nil {
		return value.AttributeValue{}, apperr.TypeMismatch("not a valid number: " + b.N)
	}
	return value.Number(strconv.FormatFloat(fa-fb, 'f', -1, 64)), nil
}

// setNested rebuilds item along steps, creating intermediate maps as needed,
// and returns the new top-level item map.
func setNested(item map[string]value.AttributeValue, steps []resolvedStep, newValue value.AttributeValue) map[string]value.AttributeValue {
	root := setNestedValue(value.Map(item), steps, newValue)
	return root.M
}

func setNestedValue(cur value.AttributeValue, steps []resolvedStep, newValue value.AttributeValue) value.AttributeValue {
	if len(steps) == 0 {
		return newValue
	}
	step := steps[0]
	rest := steps[1:]

	if step.IsIndex {
		list := append([]value.AttributeValue(nil), cur.L...)
		if step.Index < 0 {
			return cur
		}
		for len(list) <= step.Index {
			list = append(list, value.Null())
		}
		list[step.Index] = setNestedValue(list[step.Index], rest, newValue)
		return value.List(list)
	}

	m := make(map[string]value.AttributeValue, len(cur.M)+1)
	for k, v := range cur.M {
		m[k] = v
	}
	child := m[step.Field]
	m[step.Field] = setNestedValue(child, rest, newValue)
	return value.Map(m)
}

// removeNested deletes the attribute addressed by steps, shifting list
// elements left when the final step is an index (spec.md §4.I REMOVE).
// Removing an already-absent path is a no-op, never an error.
func removeNested(item map[string]value.AttributeValue, steps []resolvedStep) map[string]value.AttributeValue {
	root, _ := removeNestedValue(value.Map(item), steps)
	if root.M == nil {
		return item
	}
	return root.M
}

func removeNestedValue(cur value.AttributeValue, steps []resolvedStep) (value.AttributeValue, bool) {
	if len(steps) == 0 {
		return cur, true
	}
	step := steps[0]
	rest := steps[1:]

	if step.IsIndex {
		if cur.Kind != value.KindList || step.Index < 0 || step.Index >= len(cur.L) {
			return cur, false
		}
		if len(rest) == 0 {
			list := make([]value.AttributeValue, 0, len(cur.L)-1)
			list = append(list, cur.L[:step.Index]...)
			list = append(list, cur.L[step.Index+1:]...)
			return value.List(list), true
		}
		list := append([]value.AttributeValue(nil), cur.L...)
		updated, changed := removeNestedValue(list[step.Index], rest)
		if !changed {
			return cur, false
		}
		list[step.Index] = updated
		return value.List(list), true
	}

	if cur.Kind != value.KindMap {
		return cur, false
	}
	child, ok := cur.M[step.Field]
	if !ok {
		return cur, false
	}
	if len(rest) == 0 {
		m := make(map[string]value.AttributeValue, len(cur.M))
		for k, v := range cur.M {
			if k == step.Field {
				continue
			}
			m[k] = v
		}
		return value.Map(m), true
	}
	updated, changed := removeNestedValue(child, rest)
	if !changed {
		return cur, false
	}
	m := make(map[string]value.AttributeValue, len(cur.M))
	for k, v := range cur.M {
		m[k] = v
	}
	m[step.Field] = updated
	return value.Map(m), true
}

// applyAdd implements ADD (spec.md §4.I): numeric accumulation, or set
// union for SS/NS/BS, initializing an absent path from zero/empty.
func (e *Evaluator) applyAdd(item map[string]value.AttributeValue, clause ddbexpr.AddClause) error {
	operand, operandOK, err := e.resolveOperand(clause.Operand, item)
	if err != nil {
		return err
	}
	if !operandOK {
		return apperr.InvalidOperand("ADD operand references a missing attribute")
	}

	steps, err := e.resolveSteps(clause.Path)
	if err != nil {
		return err
	}
	existing, exists := getNested(value.Map(item), steps)

	var result value.AttributeValue
	switch operand.Kind {
	case value.KindNumber:
		if !exists {
			result = operand
		} else {
			if existing.Kind != value.KindNumber {
				return apperr.TypeMismatch("ADD to a non-number attribute requires a number operand")
			}
			result, err = addNumbers(existing, operand)
			if err != nil {
				return err
			}
		}
	case value.KindStringSet, value.KindNumberSet, value.KindBinarySet:
		if !exists {
			result = operand
		} else {
			if existing.Kind != operand.Kind {
				return apperr.TypeMismatch("ADD to a set attribute requires a set operand of the same type")
			}
			result = unionSets(existing, operand)
		}
	default:
		return apperr.TypeMismatch("ADD only supports number and set attribute types")
	}

	replaceTopLevel(item, steps, result)
	return nil
}

// applyDelete implements DELETE (spec.md §4.I): set difference only.
// Deleting from an absent attribute is a no-op.
func (e *Evaluator) applyDelete(item map[string]value.AttributeValue, clause ddbexpr.DeleteClause) error {
	operand, operandOK, err := e.resolveOperand(clause.Operand, item)
	if err != nil {
		return err
	}
	if !operandOK {
		return apperr.InvalidOperand("DELETE operand references a missing attribute")
	}
	switch operand.Kind {
	case value.KindStringSet, value.KindNumberSet, value.KindBinarySet:
	default:
		return apperr.TypeMismatch("DELETE requires a set operand")
	}

	steps, err := e.resolveSteps(clause.Path)
	if err != nil {
		return err
	}
	existing, exists := getNested(value.Map(item), steps)
	if !exists {
		return nil
	}
	if existing.Kind != operand.Kind {
		return apperr.TypeMismatch("DELETE requires the existing attribute be a set of the same type")
	}
	replaceTopLevel(item, steps, differenceSets(existing, operand))
	return nil
}

// replaceTopLevel overwrites item in place with the result of setting steps
// to newValue; item and the map produced by setNested always share the same
// top-level key set shape, so this just copies entries back.
func replaceTopLevel(item map[string]value.AttributeValue, steps []resolvedStep, newValue value.AttributeValue) {
	updated := setNested(item, steps, newValue)
	for k := range item {
		delete(item, k)
	}
	for k, v := range updated {
		item[k] = v
	}
}

func unionSets(a, b value.AttributeValue) value.AttributeValue {
	switch a.Kind {
	case value.KindStringSet:
		seen := make(map[string]bool, len(a.SS))
		out := append([]string(nil), a.SS...)
		for _, s := range a.SS {
			seen[s] = true
		}
		for _, s := range b.SS {
			if !seen[s] {
				seen[s] = true
				out = append(out, s)
			}
		}
		return value.StringSet(out)
	case value.KindNumberSet:
		out := append([]string(nil), a.NS...)
		for _, n := range b.NS {
			if !numberInSet(out, n) {
				out = append(out, n)
			}
		}
		return value.NumberSet(out)
	case value.KindBinarySet:
		out := append([][]byte(nil), a.BS...)
		for _, b2 := range b.BS {
			if !binaryInSet(out, b2) {
				out = append(out, b2)
			}
		}
		return value.BinarySet(out)
	default:
		return a
	}
}

func differenceSets(a, b value.AttributeValue) value.AttributeValue {
	switch a.Kind {
	case value.KindStringSet:
		remove := make(map[string]bool, len(b.SS))
		for _, s := range b.SS {
			remove[s] = true
		}
		var out []string
		for _, s := range a.SS {
			if !remove[s] {
				out = append(out, s)
			}
		}
		return value.StringSet(out)
	case value.KindNumberSet:
		var out []string
		for _, n := range a.NS {
			if !numberInSet(b.NS, n) {
				out = append(out, n)
			}
		}
		return value.NumberSet(out)
	case value.KindBinarySet:
		var out [][]byte
		for _, b1 := range a.BS {
			if !binaryInSet(b.BS, b1) {
				out = append(out, b1)
			}
		}
		return value.BinarySet(out)
	default:
		return a
	}
}

func numberInSet(set []string, n string) bool {
	for _, s := range set {
		if value.Equal(value.Number(s), value.Number(n)) {
			return true
		}
	}
	return false
}

func binaryInSet(set [][]byte, b []byte) bool {
	for _, s := range set {
		if string(s) == string(b) {
			return true
		}
	}
	return false
}

// ApplyProjection reduces item down to the attributes named by proj,
// silently skipping any path that does not resolve (spec.md §4.H/§4.I
// projection dialect).
func (e *Evaluator) ApplyProjection(item map[string]value.AttributeValue, proj ddbexpr.Projection) (map[string]value.AttributeValue, error) {
	out := make(map[string]value.AttributeValue)
	for _, path := range proj {
		v, exists, err := e.ResolvePath(item, path)
		if err != nil {
			return nil, err
		}
		if !exists || len(path) == 0 {
			continue
		}
		top := path[0]
		if top.IsIndex {
			continue
		}
		name := top.Field
		if top.Placeholder {
			resolved, ok := e.Names[top.Field]
			if !ok {
				return nil, apperr.UnresolvedName(top.Field)
			}
			name = resolved
		}
		if len(path) == 1 {
			out[name] = value.Clone(v)
			continue
		}
		steps, err := e.resolveSteps(path)
		if err != nil {
			return nil, err
		}
		mergeProjected(out, item, name, steps)
	}
	return out, nil
}

// mergeProjected re-resolves a multi-step path against the original item so
// that two projected paths sharing a map prefix (e.g. "a.b" and "a.c") merge
// into one partially-populated map rather than the last one winning outright.
func mergeProjected(out map[string]value.AttributeValue, item map[string]value.AttributeValue, topName string, steps []resolvedStep) {
	existing, ok := out[topName]
	if !ok {
		existing = item[topName]
		if existing.Kind != value.KindMap {
			out[topName] = value.Clone(item[topName])
			return
		}
		existing = value.Map(map[string]value.AttributeValue{})
	}
	cur := item[topName]
	merged := mergeProjectedValue(existing, cur, steps[1:])
	out[topName] = merged
}

func mergeProjectedValue(dst, src value.AttributeValue, rest []resolvedStep) value.AttributeValue {
	if len(rest) == 0 || src.Kind != value.KindMap {
		return value.Clone(src)
	}
	step := rest[0]
	if step.IsIndex {
		return value.Clone(src)
	}
	name := step.Field
	m := make(map[string]value.AttributeValue, len(dst.M)+1)
	for k, v := range dst.M {
		m[k] = v
	}
	childSrc, ok := src.M[name]
	if !ok {
		return value.Map(m)
	}
	childDst := m[name]
	m[name] = mergeProjectedValue(childDst, childSrc, rest[1:])
	return value.Map(m)
}
