package ddbitem

import (
	"backend2/internal/apperr"
	"backend2/internal/ddbexpr"
	"backend2/internal/ddbstore"
	"backend2/internal/ddbtable"
	"backend2/internal/value"
)

// ParseKeyCondition compiles a Query's KeyConditionExpression (spec.md §4.H
// key-condition dialect) against a table's key schema, extracting the
// mandatory partition-key equality and the optional sort-key predicate
// that internal/ddbstore.Query consumes as a structured SortKeyCondition.
//
// Grounded on spec.md §4.H's grammar: a key condition is always "pk = :v"
// or "pk = :v AND <sort-key predicate>", where the sort-key predicate is a
// comparison, BETWEEN, or begins_with over the sort key attribute. Anything
// else is rejected with InvalidOperand, matching a real KeyConditionExpression
// validation error.
func ParseKeyCondition(expr string, names map[string]string, values map[string]value.AttributeValue, table *ddbtable.Descriptor) (value.AttributeValue, *ddbstore.SortKeyCondition, error) {
	cond, err := ddbexpr.ParseCondition(expr)
	if err != nil {
		return value.AttributeValue{}, nil, err
	}

	var pkNode, skNode ddbexpr.Condition
	if and, ok := cond.(ddbexpr.AndNode); ok {
		pkNode, skNode = and.Left, and.Right
	} else {
		pkNode = cond
	}

	pkVal, pkName, err := equalityOperand(pkNode, names, values)
	if err != nil {
		return value.AttributeValue{}, nil, err
	}
	if pkName != table.KeySchema.PartitionKey {
		return value.AttributeValue{}, nil, apperr.InvalidOperand("key condition must start with an equality on the partition key")
	}

	if skNode == nil {
		return pkVal, nil, nil
	}
	if table.KeySchema.SortKey == "" {
		return value.AttributeValue{}, nil, apperr.InvalidOperand("table has no sort key to condition on")
	}

	sortCond, err := sortKeyPredicate(skNode, table.KeySchema.SortKey, names, values)
	if err != nil {
		return value.AttributeValue{}, nil, err
	}
	return pkVal, sortCond, nil
}

func resolveName(p ddbexpr.Path, names map[string]string) (string, error) {
	if len(p) != 1 || p[0].IsIndex {
		return "", apperr.InvalidOperand("key condition paths must be a single top-level attribute name")
	}
	if !p[0].Placeholder {
		return p[0].Field, nil
	}
	name, ok := names[p[0].Field]
	if !ok {
		return "", apperr.UnresolvedName(p[0].Field)
	}
	return name, nil
}

func resolveValue(name string, values map[string]value.AttributeValue) (value.AttributeValue, error) {
	v, ok := values[name]
	if !ok {
		return value.AttributeValue{}, apperr.UnresolvedValue(name)
	}
	return v, nil
}

func equalityOperand(cond ddbexpr.Condition, names map[string]string, values map[string]value.AttributeValue) (value.AttributeValue, string, error) {
	cmp, ok := cond.(ddbexpr.CompareNode)
	if !ok || cmp.Op != "=" {
		return value.AttributeValue{}, "", apperr.InvalidOperand("key condition must start with a partition-key equality")
	}
	pathOp, ok := cmp.Left.(ddbexpr.PathOperand)
	valOp, valOk := cmp.Right.(ddbexpr.ValueOperand)
	if !ok || !valOk {
		return value.AttributeValue{}, "", apperr.InvalidOperand("partition-key equality must compare a path to a value placeholder")
	}
	name, err := resolveName(pathOp.Path, names)
	if err != nil {
		return value.AttributeValue{}, "", err
	}
	v, err := resolveValue(valOp.Name, values)
	if err != nil {
		return value.AttributeValue{}, "", err
	}
	return v, name, nil
}

func pathOperandName(op ddbexpr.Operand, names map[string]string) (string, bool, error) {
	p, ok := op.(ddbexpr.PathOperand)
	if !ok {
		return "", false, nil
	}
	name, err := resolveName(p.Path, names)
	return name, true, err
}

func sortKeyPredicate(cond ddbexpr.Condition, sortKeyName string, names map[string]string, values map[string]value.AttributeValue) (*ddbstore.SortKeyCondition, error) {
	switch c := cond.(type) {
	case ddbexpr.CompareNode:
		name, isPath, err := pathOperandName(c.Left, names)
		if err != nil {
			return nil, err
		}
		if !isPath || name != sortKeyName {
			return nil, apperr.InvalidOperand("sort-key condition must reference the table's sort key")
		}
		valOp, ok := c.Right.(ddbexpr.ValueOperand)
		if !ok {
			return nil, apperr.InvalidOperand("sort-key condition must compare against a value placeholder")
		}
		v, err := resolveValue(valOp.Name, values)
		if err != nil {
			return nil, err
		}
		op, err := compareOpToSortKeyOp(c.Op)
		if err != nil {
			return nil, err
		}
		return &ddbstore.SortKeyCondition{Op: op, Value: v}, nil

	case ddbexpr.BetweenNode:
		name, isPath, err := pathOperandName(c.Operand, names)
		if err != nil {
			return nil, err
		}
		if !isPath || name != sortKeyName {
			return nil, apperr.InvalidOperand("sort-key condition must reference the table's sort key")
		}
		loOp, loOk := c.Lo.(ddbexpr.ValueOperand)
		hiOp, hiOk := c.Hi.(ddbexpr.ValueOperand)
		if !loOk || !hiOk {
			return nil, apperr.InvalidOperand("BETWEEN bounds must be value placeholders")
		}
		lo, err := resolveValue(loOp.Name, values)
		if err != nil {
			return nil, err
		}
		hi, err := resolveValue(hiOp.Name, values)
		if err != nil {
			return nil, err
		}
		return &ddbstore.SortKeyCondition{Op: ddbstore.OpBetween, Value: lo, Hi: hi}, nil

	case ddbexpr.FuncNode:
		if c.Name != "begins_with" {
			return nil, apperr.InvalidOperand("unsupported key condition function: " + c.Name)
		}
		name, err := resolveName(c.Path, names)
		if err != nil {
			return nil, err
		}
		if name != sortKeyName {
			return nil, apperr.InvalidOperand("begins_with must reference the table's sort key")
		}
		valOp, ok := c.Operand.(ddbexpr.ValueOperand)
		if !ok {
			return nil, apperr.InvalidOperand("begins_with must compare against a value placeholder")
		}
		v, err := resolveValue(valOp.Name, values)
		if err != nil {
			return nil, err
		}
		return &ddbstore.SortKeyCondition{Op: ddbstore.OpBeginsWith, Value: v}, nil

	default:
		return nil, apperr.InvalidOperand("unsupported sort-key condition shape")
	}
}

func compareOpToSortKeyOp(op string) (ddbstore.SortKeyOp, error) {
	switch op {
	case "=":
		return ddbstore.OpEq, nil
	case "<":
		return ddbstore.OpLt, nil
	case "<=":
		return ddbstore.OpLe, nil
	case ">":
		return ddbstore.OpGt, nil
	case ">=":
		return ddbstore.OpGe, nil
	default:
		return 0, apperr.InvalidOperand("unsupported sort-key comparison operator: " + op)
	}
}
