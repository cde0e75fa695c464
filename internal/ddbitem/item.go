package ddbitem

import (
	"backend2/internal/apperr"
	"backend2/internal/ddbeval"
	"backend2/internal/ddbexpr"
	"backend2/internal/ddbtable"
	"backend2/internal/value"
)

// Expression bundles the three pieces every conditional operation needs:
// the raw expression text plus its placeholder maps (spec.md §4.H/§4.I).
// An empty Expr means "no condition".
type Expression struct {
	Expr   string
	Names  map[string]string
	Values map[string]value.AttributeValue
}

func (e Expression) evaluator() *ddbeval.Evaluator {
	return &ddbeval.Evaluator{Names: e.Names, Values: e.Values}
}

func evaluateCondition(expr Expression, item map[string]value.AttributeValue) error {
	if expr.Expr == "" {
		return nil
	}
	cond, err := ddbexpr.ParseCondition(expr.Expr)
	if err != nil {
		return err
	}
	ok, err := expr.evaluator().Evaluate(cond, item)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.ConditionalCheckFailed()
	}
	return nil
}

func keyAttrs(table *ddbtable.Descriptor, key map[string]value.AttributeValue) (pk, sk value.AttributeValue, err error) {
	pk, ok := key[table.KeySchema.PartitionKey]
	if !ok {
		return value.AttributeValue{}, value.AttributeValue{}, apperr.MissingKeyAttribute(table.KeySchema.PartitionKey)
	}
	if table.KeySchema.SortKey == "" {
		return pk, value.AttributeValue{}, nil
	}
	sk, ok = key[table.KeySchema.SortKey]
	if !ok {
		return value.AttributeValue{}, value.AttributeValue{}, apperr.MissingKeyAttribute(table.KeySchema.SortKey)
	}
	return pk, sk, nil
}

// PutItemInput parameterizes PutItem (SPEC_FULL.md §5.K).
type PutItemInput struct {
	TableName string
	Item      map[string]value.AttributeValue
	Condition Expression
}

// PutItemOutput is PutItem's result: the item that was overwritten, if any.
type PutItemOutput struct {
	OldItem map[string]value.AttributeValue
}

// PutItem writes an item, optionally guarded by a condition expression
// evaluated against any existing item at the same key (an absent item
// evaluates against an empty map, so attribute_not_exists(pk) is the usual
// "create only" guard).
func (s *Service) PutItem(in PutItemInput) (*PutItemOutput, error) {
	table, err := s.Tables.DescribeTable(in.TableName)
	if err != nil {
		return nil, err
	}

	if in.Condition.Expr != "" {
		pk, sk, err := keyAttrs(table, in.Item)
		if err != nil {
			return nil, err
		}
		existing, err := table.Storage.GetItem(pk, sk)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			existing = map[string]value.AttributeValue{}
		}
		if err := evaluateCondition(in.Condition, existing); err != nil {
			return nil, err
		}
	}

	old, err := table.Storage.PutItem(in.Item)
	if err != nil {
		return nil, err
	}
	return &PutItemOutput{OldItem: old}, nil
}

// GetItemInput parameterizes GetItem.
type GetItemInput struct {
	TableName string
	Key       map[string]value.AttributeValue
	// ProjectionExpression, when non-empty, reduces the returned item
	// (spec.md §4.H/§4.I projection dialect).
	ProjectionExpression string
	ProjectionNames      map[string]string
}

// GetItemOutput is GetItem's result; Item is nil when no item matched.
type GetItemOutput struct {
	Item map[string]value.AttributeValue
}

// GetItem fetches a single item by its full primary key.
func (s *Service) GetItem(in GetItemInput) (*GetItemOutput, error) {
	table, err := s.Tables.DescribeTable(in.TableName)
	if err != nil {
		return nil, err
	}
	pk, sk, err := keyAttrs(table, in.Key)
	if err != nil {
		return nil, err
	}
	item, err := table.Storage.GetItem(pk, sk)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return &GetItemOutput{}, nil
	}
	if in.ProjectionExpression != "" {
		proj, err := ddbexpr.ParseProjection(in.ProjectionExpression)
		if err != nil {
			return nil, err
		}
		e := &ddbeval.Evaluator{Names: in.ProjectionNames}
		item, err = e.ApplyProjection(item, proj)
		if err != nil {
			return nil, err
		}
	}
	return &GetItemOutput{Item: item}, nil
}

// DeleteItemInput parameterizes DeleteItem.
type DeleteItemInput struct {
	TableName string
	Key       map[string]value.AttributeValue
	Condition Expression
}

// DeleteItemOutput is DeleteItem's result: the removed item, if any.
type DeleteItemOutput struct {
	OldItem map[string]value.AttributeValue
}

// DeleteItem removes an item by its full primary key. Deleting an absent
// item is not an error (spec.md §7 propagation rule).
func (s *Service) DeleteItem(in DeleteItemInput) (*DeleteItemOutput, error) {
	table, err := s.Tables.DescribeTable(in.TableName)
	if err != nil {
		return nil, err
	}
	pk, sk, err := keyAttrs(table, in.Key)
	if err != nil {
		return nil, err
	}

	if in.Condition.Expr != "" {
		existing, err := table.Storage.GetItem(pk, sk)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			existing = map[string]value.AttributeValue{}
		}
		if err := evaluateCondition(in.Condition, existing); err != nil {
			return nil, err
		}
	}

	old, err := table.Storage.DeleteItem(pk, sk)
	if err != nil {
		return nil, err
	}
	return &DeleteItemOutput{OldItem: old}, nil
}

// UpdateItemInput parameterizes UpdateItem.
type UpdateItemInput struct {
	TableName           string
	Key                 map[string]value.AttributeValue
	UpdateExpression    string
	ExpressionNames     map[string]string
	ExpressionValues    map[string]value.AttributeValue
	Condition           Expression
}

// UpdateItemOutput is UpdateItem's result: the item after applying the
// update.
type UpdateItemOutput struct {
	Item map[string]value.AttributeValue
}

// UpdateItem applies a parsed update expression to the item at Key,
// creating the item if it does not already exist (DynamoDB upsert
// semantics), optionally guarded by a condition expression evaluated
// against the pre-update item.
func (s *Service) UpdateItem(in UpdateItemInput) (*UpdateItemOutput, error) {
	table, err := s.Tables.DescribeTable(in.TableName)
	if err != nil {
		return nil, err
	}
	pk, sk, err := keyAttrs(table, in.Key)
	if err != nil {
		return nil, err
	}

	existing, err := table.Storage.GetItem(pk, sk)
	if err != nil {
		return nil, err
	}
	base := existing
	if base == nil {
		base = value.CloneItem(in.Key)
	}

	if err := evaluateCondition(in.Condition, base); err != nil {
		return nil, err
	}

	update, err := ddbexpr.ParseUpdate(in.UpdateExpression)
	if err != nil {
		return nil, err
	}
	e := &ddbeval.Evaluator{Names: in.ExpressionNames, Values: in.ExpressionValues}
	updated, err := e.ApplyUpdate(base, update)
	if err != nil {
		return nil, err
	}

	// The update must not be allowed to rewrite the primary key itself.
	updated[table.KeySchema.PartitionKey] = pk
	if table.KeySchema.SortKey != "" {
		updated[table.KeySchema.SortKey] = sk
	}

	if _, err := table.Storage.PutItem(updated); err != nil {
		return nil, err
	}
	return &UpdateItemOutput{Item: updated}, nil
}
