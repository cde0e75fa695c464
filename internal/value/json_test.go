package value_test

import (
	"encoding/json"
	"testing"

	"backend2/internal/value"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttributeValueJSONRoundTrip(t *testing.T) {
	in := value.Map(map[string]value.AttributeValue{
		"name":  value.String("widget"),
		"count": value.Number("3"),
		"tags":  value.StringSet([]string{"a", "b"}),
		"blob":  value.Binary([]byte{1, 2, 3}),
		"ok":    value.Bool(true),
		"none":  value.Null(),
		"items": value.List([]value.AttributeValue{value.Number("1"), value.Number("2")}),
	})

	data, err := json.Marshal(in)
	require.NoError(t, err)

	var out value.AttributeValue
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in, out)
}

func TestAttributeValueJSONWireShape(t *testing.T) {
	data, err := json.Marshal(value.String("hello"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"S":"hello"}`, string(data))
}
