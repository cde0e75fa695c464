package ddbitem

import (
	"backend2/internal/ddbeval"
	"backend2/internal/ddbexpr"
	"backend2/internal/ddbstore"
	"backend2/internal/value"
)

// QueryInput parameterizes Query. KeyCondition selects the partition (and
// optionally narrows the sort key); FilterExpression, if set, is applied
// client-side to the page Query already read, after the limit — matching
// real DynamoDB's "filter narrows a page, it does not extend it" behavior.
type QueryInput struct {
	TableName           string
	PartitionKey        value.AttributeValue
	SortCondition       *ddbstore.SortKeyCondition
	ScanForward         bool
	Limit               int
	ExclusiveStartSort  *value.AttributeValue
	FilterExpression    string
	ExpressionNames     map[string]string
	ExpressionValues    map[string]value.AttributeValue
}

// QueryOutput is Query's result.
type QueryOutput struct {
	Items            []map[string]value.AttributeValue
	LastEvaluatedKey map[string]value.AttributeValue
}

// Query runs a partition query through the storage engine, then applies an
// optional filter expression to the returned page (SPEC_FULL.md §5.K).
func (s *Service) Query(in QueryInput) (*QueryOutput, error) {
	table, err := s.Tables.DescribeTable(in.TableName)
	if err != nil {
		return nil, err
	}

	res, err := table.Storage.Query(ddbstore.QueryInput{
		PartitionKey:       in.PartitionKey,
		Condition:          in.SortCondition,
		ScanForward:        in.ScanForward,
		Limit:              in.Limit,
		ExclusiveStartSort: in.ExclusiveStartSort,
	})
	if err != nil {
		return nil, err
	}

	items, err := applyFilter(res.Items, in.FilterExpression, in.ExpressionNames, in.ExpressionValues)
	if err != nil {
		return nil, err
	}
	return &QueryOutput{Items: items, LastEvaluatedKey: res.LastEvaluatedKey}, nil
}

// ScanInput parameterizes Scan.
type ScanInput struct {
	TableName         string
	Limit             int
	ExclusiveStartKey map[string]value.AttributeValue
	FilterExpression  string
	ExpressionNames   map[string]string
	ExpressionValues  map[string]value.AttributeValue
}

// ScanOutput is Scan's result.
type ScanOutput struct {
	Items            []map[string]value.AttributeValue
	LastEvaluatedKey map[string]value.AttributeValue
}

// Scan enumerates the whole table in the storage engine's deterministic
// order, then applies an optional filter expression to the returned page.
func (s *Service) Scan(in ScanInput) (*ScanOutput, error) {
	table, err := s.Tables.DescribeTable(in.TableName)
	if err != nil {
		return nil, err
	}

	res, err := table.Storage.Scan(ddbstore.ScanInput{
		Limit:             in.Limit,
		ExclusiveStartKey: in.ExclusiveStartKey,
	})
	if err != nil {
		return nil, err
	}

	items, err := applyFilter(res.Items, in.FilterExpression, in.ExpressionNames, in.ExpressionValues)
	if err != nil {
		return nil, err
	}
	return &ScanOutput{Items: items, LastEvaluatedKey: res.LastEvaluatedKey}, nil
}

func applyFilter(items []map[string]value.AttributeValue, expr string, names map[string]string, values map[string]value.AttributeValue) ([]map[string]value.AttributeValue, error) {
	if expr == "" {
		return items, nil
	}
	cond, err := ddbexpr.ParseCondition(expr)
	if err != nil {
		return nil, err
	}
	e := &ddbeval.Evaluator{Names: names, Values: values}
	out := make([]map[string]value.AttributeValue, 0, len(items))
	for _, item := range items {
		ok, err := e.Evaluate(cond, item)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, item)
		}
	}
	return out, nil
}
