package ddbitem_test

import (
	"testing"
	"time"

	"backend2/internal/apperr"
	"backend2/internal/ddbitem"
	"backend2/internal/ddbstore"
	"backend2/internal/ddbtable"
	"backend2/internal/value"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*ddbitem.Service, *ddbtable.Registry) {
	t.Helper()
	tables := ddbtable.NewRegistry()
	_, err := tables.CreateTable("orders", ddbstore.KeySchema{PartitionKey: "pk", SortKey: "sk"}, nil, time.Unix(0, 0))
	require.NoError(t, err)
	return ddbitem.New(tables), tables
}

func TestPutGetDeleteItem(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.PutItem(ddbitem.PutItemInput{
		TableName: "orders",
		Item: map[string]value.AttributeValue{
			"pk":   value.String("p"),
			"sk":   value.Number("1"),
			"name": value.String("widget"),
		},
	})
	require.NoError(t, err)

	got, err := svc.GetItem(ddbitem.GetItemInput{
		TableName: "orders",
		Key:       map[string]value.AttributeValue{"pk": value.String("p"), "sk": value.Number("1")},
	})
	require.NoError(t, err)
	require.NotNil(t, got.Item)
	assert.Equal(t, "widget", got.Item["name"].S)

	_, err = svc.DeleteItem(ddbitem.DeleteItemInput{
		TableName: "orders",
		Key:       map[string]value.AttributeValue{"pk": value.String("p"), "sk": value.Number("1")},
	})
	require.NoError(t, err)

	got, err = svc.GetItem(ddbitem.GetItemInput{
		TableName: "orders",
		Key:       map[string]value.AttributeValue{"pk": value.String("p"), "sk": value.Number("1")},
	})
	require.NoError(t, err)
	assert.Nil(t, got.Item)
}

func TestPutItemConditionalCreateOnly(t *testing.T) {
	svc, _ := newTestService(t)
	cond := ddbitem.Expression{Expr: "attribute_not_exists(pk)"}

	_, err := svc.PutItem(ddbitem.PutItemInput{
		TableName: "orders",
		Item:      map[string]value.AttributeValue{"pk": value.String("p"), "sk": value.Number("1")},
		Condition: cond,
	})
	require.NoError(t, err)

	_, err = svc.PutItem(ddbitem.PutItemInput{
		TableName: "orders",
		Item:      map[string]value.AttributeValue{"pk": value.String("p"), "sk": value.Number("1")},
		Condition: cond,
	})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CodeConditionalCheckFailed))
}

func TestUpdateItemCreatesWhenAbsentAndAppliesExpression(t *testing.T) {
	svc, _ := newTestService(t)

	out, err := svc.UpdateItem(ddbitem.UpdateItemInput{
		TableName:        "orders",
		Key:              map[string]value.AttributeValue{"pk": value.String("p"), "sk": value.Number("1")},
		UpdateExpression: "SET #c = if_not_exists(#c, :one)",
		ExpressionNames:  map[string]string{"#c": "count"},
		ExpressionValues: map[string]value.AttributeValue{":zero": value.Number("0"), ":one": value.Number("1")},
	})
	require.NoError(t, err)
	assert.Equal(t, "1", out.Item["count"].N)

	out, err = svc.UpdateItem(ddbitem.UpdateItemInput{
		TableName:        "orders",
		Key:              map[string]value.AttributeValue{"pk": value.String("p"), "sk": value.Number("1")},
		UpdateExpression: "SET #c = #c + :one",
		ExpressionNames:  map[string]string{"#c": "count"},
		ExpressionValues: map[string]value.AttributeValue{":one": value.Number("1")},
	})
	require.NoError(t, err)
	assert.Equal(t, "2", out.Item["count"].N)
}

func TestUpdateItemConditionFailurePreservesItem(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.PutItem(ddbitem.PutItemInput{
		TableName: "orders",
		Item:      map[string]value.AttributeValue{"pk": value.String("p"), "sk": value.Number("1"), "status": value.String("open")},
	})
	require.NoError(t, err)

	_, err = svc.UpdateItem(ddbitem.UpdateItemInput{
		TableName:        "orders",
		Key:              map[string]value.AttributeValue{"pk": value.String("p"), "sk": value.Number("1")},
		UpdateExpression: "SET #s = :closed",
		ExpressionNames:  map[string]string{"#s": "status"},
		ExpressionValues: map[string]value.AttributeValue{":closed": value.String("closed")},
		Condition:        ddbitem.Expression{Expr: "#s = :expected", Names: map[string]string{"#s": "status"}, Values: map[string]value.AttributeValue{":expected": value.String("already-closed")}},
	})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CodeConditionalCheckFailed))

	got, err := svc.GetItem(ddbitem.GetItemInput{TableName: "orders", Key: map[string]value.AttributeValue{"pk": value.String("p"), "sk": value.Number("1")}})
	require.NoError(t, err)
	assert.Equal(t, "open", got.Item["status"].S)
}

func TestGetItemProjection(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.PutItem(ddbitem.PutItemInput{
		TableName: "orders",
		Item: map[string]value.AttributeValue{
			"pk": value.String("p"), "sk": value.Number("1"),
			"secret": value.String("hidden"), "name": value.String("widget"),
		},
	})
	require.NoError(t, err)

	got, err := svc.GetItem(ddbitem.GetItemInput{
		TableName:            "orders",
		Key:                  map[string]value.AttributeValue{"pk": value.String("p"), "sk": value.Number("1")},
		ProjectionExpression: "name",
	})
	require.NoError(t, err)
	assert.Contains(t, got.Item, "name")
	assert.NotContains(t, got.Item, "secret")
}

func TestQueryWithFilterExpression(t *testing.T) {
	svc, _ := newTestService(t)
	for i := 1; i <= 5; i++ {
		_, err := svc.PutItem(ddbitem.PutItemInput{
			TableName: "orders",
			Item: map[string]value.AttributeValue{
				"pk": value.String("p"), "sk": value.Number(itoaSmall(i)),
				"active": value.Bool(i%2 == 0),
			},
		})
		require.NoError(t, err)
	}

	out, err := svc.Query(ddbitem.QueryInput{
		TableName:        "orders",
		PartitionKey:     value.String("p"),
		ScanForward:      true,
		FilterExpression: "active = :t",
		ExpressionValues: map[string]value.AttributeValue{":t": value.Bool(true)},
	})
	require.NoError(t, err)
	assert.Len(t, out.Items, 2)
}

func itoaSmall(i int) string {
	return string(rune('0' + i))
}

func TestBatchWriteItemSplitsIntoBatches(t *testing.T) {
	svc, _ := newTestService(t)
	var requests []ddbitem.BatchWriteRequest
	for i := 0; i < 30; i++ {
		requests = append(requests, ddbitem.BatchWriteRequest{
			TableName: "orders",
			Kind:      ddbitem.WriteRequestPut,
			Item: map[string]value.AttributeValue{
				"pk": value.String("p"), "sk": value.Number(itoaWide(i)),
			},
		})
	}

	out, err := svc.BatchWriteItem(requests)
	require.NoError(t, err)
	assert.Equal(t, 30, out.Processed)

	scanOut, err := svc.Scan(ddbitem.ScanInput{TableName: "orders"})
	require.NoError(t, err)
	assert.Len(t, scanOut.Items, 30)
}

func itoaWide(i int) string {
	digits := "0123456789"
	if i == 0 {
		return "0"
	}
	var out []byte
	for i > 0 {
		out = append([]byte{digits[i%10]}, out...)
		i /= 10
	}
	return string(out)
}

func TestBatchGetItemSkipsMissingKeys(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.PutItem(ddbitem.PutItemInput{
		TableName: "orders",
		Item:      map[string]value.AttributeValue{"pk": value.String("p"), "sk": value.Number("1")},
	})
	require.NoError(t, err)

	out, err := svc.BatchGetItem([]ddbitem.BatchGetRequest{
		{TableName: "orders", Key: map[string]value.AttributeValue{"pk": value.String("p"), "sk": value.Number("1")}},
		{TableName: "orders", Key: map[string]value.AttributeValue{"pk": value.String("p"), "sk": value.Number("999")}},
	})
	require.NoError(t, err)
	assert.Len(t, out.Items, 1)
}
