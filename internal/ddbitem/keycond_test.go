package ddbitem_test

import (
	"testing"
	"time"

	"backend2/internal/ddbitem"
	"backend2/internal/ddbstore"
	"backend2/internal/ddbtable"
	"backend2/internal/value"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTable(t *testing.T) *ddbtable.Descriptor {
	reg := ddbtable.NewRegistry()
	d, err := reg.CreateTable("widgets", ddbstore.KeySchema{PartitionKey: "pk", SortKey: "sk"}, nil, time.Unix(0, 0))
	require.NoError(t, err)
	return d
}

func TestParseKeyConditionEqualityOnly(t *testing.T) {
	table := newTestTable(t)
	pk, sortCond, err := ddbitem.ParseKeyCondition(
		"pk = :pk",
		nil,
		map[string]value.AttributeValue{":pk": value.String("p")},
		table,
	)
	require.NoError(t, err)
	assert.Equal(t, value.String("p"), pk)
	assert.Nil(t, sortCond)
}

func TestParseKeyConditionBetween(t *testing.T) {
	table := newTestTable(t)
	pk, sortCond, err := ddbitem.ParseKeyCondition(
		"pk = :pk AND sk BETWEEN :lo AND :hi",
		nil,
		map[string]value.AttributeValue{
			":pk": value.String("p"),
			":lo": value.Number("3"),
			":hi": value.Number("7"),
		},
		table,
	)
	require.NoError(t, err)
	assert.Equal(t, value.String("p"), pk)
	require.NotNil(t, sortCond)
	assert.Equal(t, ddbstore.OpBetween, sortCond.Op)
}

func TestParseKeyConditionBeginsWith(t *testing.T) {
	table := newTestTable(t)
	_, sortCond, err := ddbitem.ParseKeyCondition(
		"#p = :pk AND begins_with(sk, :prefix)",
		map[string]string{"#p": "pk"},
		map[string]value.AttributeValue{
			":pk":     value.String("p"),
			":prefix": value.String("x"),
		},
		table,
	)
	require.NoError(t, err)
	require.NotNil(t, sortCond)
	assert.Equal(t, ddbstore.OpBeginsWith, sortCond.Op)
}

func TestParseKeyConditionRejectsMissingPartitionKey(t *testing.T) {
	table := newTestTable(t)
	_, _, err := ddbitem.ParseKeyCondition(
		"sk = :v",
		nil,
		map[string]value.AttributeValue{":v": value.Number("1")},
		table,
	)
	require.Error(t, err)
}
