package ddbtable_test

import (
	"testing"
	"time"

	"backend2/internal/apperr"
	"backend2/internal/ddbstore"
	"backend2/internal/ddbtable"
	"backend2/internal/value"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func schema() ddbstore.KeySchema {
	return ddbstore.KeySchema{PartitionKey: "pk", SortKey: "sk"}
}

func TestCreateDescribeTableRoundTrips(t *testing.T) {
	r := ddbtable.NewRegistry()
	attrs := []ddbtable.AttributeDefinition{{Name: "pk", Type: "S"}, {Name: "sk", Type: "N"}}

	created, err := r.CreateTable("orders", schema(), attrs, time.Unix(0, 0))
	require.NoError(t, err)
	assert.Equal(t, "orders", created.Name)

	got, err := r.DescribeTable("orders")
	require.NoError(t, err)
	assert.Equal(t, schema(), got.KeySchema)
	assert.Equal(t, attrs, got.AttributeDefinitions)
}

func TestCreateTableDuplicateNameFails(t *testing.T) {
	r := ddbtable.NewRegistry()
	_, err := r.CreateTable("orders", schema(), nil, time.Unix(0, 0))
	require.NoError(t, err)

	_, err = r.CreateTable("orders", schema(), nil, time.Unix(0, 0))
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CodeResourceInUse))
}

func TestDeleteTableRemovesStorage(t *testing.T) {
	r := ddbtable.NewRegistry()
	d, err := r.CreateTable("orders", schema(), nil, time.Unix(0, 0))
	require.NoError(t, err)

	_, err = d.Storage.PutItem(map[string]value.AttributeValue{
		"pk": value.String("p"), "sk": value.Number("1"),
	})
	require.NoError(t, err)

	_, err = r.DeleteTable("orders")
	require.NoError(t, err)

	_, err = r.DescribeTable("orders")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CodeResourceNotFound))
}

func TestDeleteTableMissingReturnsResourceNotFound(t *testing.T) {
	r := ddbtable.NewRegistry()
	_, err := r.DeleteTable("missing")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CodeResourceNotFound))
}

func TestListTablesPagination(t *testing.T) {
	r := ddbtable.NewRegistry()
	for _, name := range []string{"c", "a", "b", "d"} {
		_, err := r.CreateTable(name, schema(), nil, time.Unix(0, 0))
		require.NoError(t, err)
	}

	names, last := r.ListTables("", 2)
	assert.Equal(t, []string{"a", "b"}, names)
	assert.Equal(t, "b", last)

	names, last = r.ListTables(last, 2)
	assert.Equal(t, []string{"c", "d"}, names)
	assert.Equal(t, "", last)
}

func TestItemCountAndSizeTrackLiveStorage(t *testing.T) {
	r := ddbtable.NewRegistry()
	d, err := r.CreateTable("orders", schema(), nil, time.Unix(0, 0))
	require.NoError(t, err)

	_, err = d.Storage.PutItem(map[string]value.AttributeValue{
		"pk": value.String("p"), "sk": value.Number("1"), "note": value.String("hello"),
	})
	require.NoError(t, err)

	assert.EqualValues(t, 1, d.ItemCount())
	assert.Greater(t, d.TableSizeBytes(), int64(0))
}
