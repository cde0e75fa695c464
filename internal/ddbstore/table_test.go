package ddbstore_test

import (
	"testing"

	"backend2/internal/apperr"
	"backend2/internal/ddbstore"
	"backend2/internal/value"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withSortKey() ddbstore.KeySchema {
	return ddbstore.KeySchema{PartitionKey: "pk", SortKey: "sk"}
}

func noSortKey() ddbstore.KeySchema {
	return ddbstore.KeySchema{PartitionKey: "pk"}
}

func TestPutGetDeleteItem(t *testing.T) {
	tbl := ddbstore.New(noSortKey())
	item := map[string]value.AttributeValue{
		"pk":   value.String("a"),
		"name": value.String("widget"),
	}

	prior, err := tbl.PutItem(item)
	require.NoError(t, err)
	assert.Nil(t, prior)
	assert.EqualValues(t, 1, tbl.ItemCount())

	got, err := tbl.GetItem(value.String("a"), value.AttributeValue{})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "widget", got["name"].S)

	old, err := tbl.DeleteItem(value.String("a"), value.AttributeValue{})
	require.NoError(t, err)
	require.NotNil(t, old)
	assert.EqualValues(t, 0, tbl.ItemCount())

	got, err = tbl.GetItem(value.String("a"), value.AttributeValue{})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestPutItemMissingKeyAttribute(t *testing.T) {
	tbl := ddbstore.New(withSortKey())
	_, err := tbl.PutItem(map[string]value.AttributeValue{"pk": value.String("a")})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CodeMissingKeyAttribute))
}

func TestPutItemInvalidKeyType(t *testing.T) {
	tbl := ddbstore.New(noSortKey())
	_, err := tbl.PutItem(map[string]value.AttributeValue{"pk": value.Bool(true)})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CodeInvalidKeyType))
}

func TestPutItemReplacesAndReturnsPrior(t *testing.T) {
	tbl := ddbstore.New(noSortKey())
	_, err := tbl.PutItem(map[string]value.AttributeValue{"pk": value.String("a"), "v": value.Number("1")})
	require.NoError(t, err)

	prior, err := tbl.PutItem(map[string]value.AttributeValue{"pk": value.String("a"), "v": value.Number("2")})
	require.NoError(t, err)
	require.NotNil(t, prior)
	assert.Equal(t, "1", prior["v"].N)
	assert.EqualValues(t, 1, tbl.ItemCount())
}

func seedQueryTable(t *testing.T) *ddbstore.Table {
	t.Helper()
	tbl := ddbstore.New(withSortKey())
	for i := 1; i <= 10; i++ {
		_, err := tbl.PutItem(map[string]value.AttributeValue{
			"pk": value.String("p"),
			"sk": value.Number(itoa(i)),
		})
		require.NoError(t, err)
	}
	return tbl
}

func itoa(i int) string {
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

func TestQueryBetween(t *testing.T) {
	tbl := seedQueryTable(t)
	res, err := tbl.Query(ddbstore.QueryInput{
		PartitionKey: value.String("p"),
		Condition: &ddbstore.SortKeyCondition{
			Op:    ddbstore.OpBetween,
			Value: value.Number("3"),
			Hi:    value.Number("7"),
		},
		ScanForward: true,
	})
	require.NoError(t, err)
	require.Len(t, res.Items, 5)
	for i, item := range res.Items {
		assert.Equal(t, itoa(i+3), item["sk"].N)
	}
}

func TestQueryScanBackward(t *testing.T) {
	tbl := seedQueryTable(t)
	res, err := tbl.Query(ddbstore.QueryInput{
		PartitionKey: value.String("p"),
		Condition: &ddbstore.SortKeyCondition{
			Op:    ddbstore.OpGe,
			Value: value.Number("8"),
		},
		ScanForward: false,
	})
	require.NoError(t, err)
	require.Len(t, res.Items, 3)
	assert.Equal(t, "10", res.Items[0]["sk"].N)
	assert.Equal(t, "9", res.Items[1]["sk"].N)
	assert.Equal(t, "8", res.Items[2]["sk"].N)
}

func TestQueryBeginsWith(t *testing.T) {
	tbl := ddbstore.New(withSortKey())
	for _, sk := range []string{"alpha", "apple", "banana"} {
		_, err := tbl.PutItem(map[string]value.AttributeValue{
			"pk": value.String("p"),
			"sk": value.String(sk),
		})
		require.NoError(t, err)
	}

	res, err := tbl.Query(ddbstore.QueryInput{
		PartitionKey: value.String("p"),
		Condition:    &ddbstore.SortKeyCondition{Op: ddbstore.OpBeginsWith, Value: value.String("a")},
		ScanForward:  true,
	})
	require.NoError(t, err)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "alpha", res.Items[0]["sk"].S)
	assert.Equal(t, "apple", res.Items[1]["sk"].S)
}

func TestQueryPaginationRoundTrip(t *testing.T) {
	tbl := seedQueryTable(t)

	var collected []string
	var start *value.AttributeValue
	for {
		res, err := tbl.Query(ddbstore.QueryInput{
			PartitionKey:       value.String("p"),
			ScanForward:        true,
			Limit:              3,
			ExclusiveStartSort: start,
		})
		require.NoError(t, err)
		for _, item := range res.Items {
			collected = append(collected, item["sk"].N)
		}
		if res.LastEvaluatedKey == nil {
			break
		}
		sk := res.LastEvaluatedKey["sk"]
		start = &sk
	}

	require.Len(t, collected, 10)
	for i, n := range collected {
		assert.Equal(t, itoa(i+1), n)
	}
}

func TestScanDeterministicOrder(t *testing.T) {
	tbl := ddbstore.New(withSortKey())
	for _, pk := range []string{"b", "a", "c"} {
		_, err := tbl.PutItem(map[string]value.AttributeValue{
			"pk": value.String(pk),
			"sk": value.Number("1"),
		})
		require.NoError(t, err)
	}

	res, err := tbl.Scan(ddbstore.ScanInput{})
	require.NoError(t, err)
	require.Len(t, res.Items, 3)
	assert.Equal(t, "a", res.Items[0]["pk"].S)
	assert.Equal(t, "b", res.Items[1]["pk"].S)
	assert.Equal(t, "c", res.Items[2]["pk"].S)
}

func TestScanPagination(t *testing.T) {
	tbl := ddbstore.New(noSortKey())
	for _, pk := range []string{"a", "b", "c", "d", "e"} {
		_, err := tbl.PutItem(map[string]value.AttributeValue{"pk": value.String(pk)})
		require.NoError(t, err)
	}

	var collected []string
	var exclusiveStart map[string]value.AttributeValue
	for {
		res, err := tbl.Scan(ddbstore.ScanInput{Limit: 2, ExclusiveStartKey: exclusiveStart})
		require.NoError(t, err)
		for _, item := range res.Items {
			collected = append(collected, item["pk"].S)
		}
		if res.LastEvaluatedKey == nil {
			break
		}
		exclusiveStart = res.LastEvaluatedKey
	}

	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, collected)
}
