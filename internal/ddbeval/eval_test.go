package ddbeval_test

import (
	"testing"

	"backend2/internal/ddbeval"
	"backend2/internal/ddbexpr"
	"backend2/internal/value"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParseCondition(t *testing.T, expr string) ddbexpr.Condition {
	t.Helper()
	cond, err := ddbexpr.ParseCondition(expr)
	require.NoError(t, err)
	return cond
}

func mustParseUpdate(t *testing.T, expr string) *ddbexpr.UpdateExpr {
	t.Helper()
	update, err := ddbexpr.ParseUpdate(expr)
	require.NoError(t, err)
	return update
}

func TestEvaluateComparison(t *testing.T) {
	item := map[string]value.AttributeValue{
		"age":    value.Number("30"),
		"status": value.String("active"),
	}
	e := &ddbeval.Evaluator{Values: map[string]value.AttributeValue{":n": value.Number("18")}}

	cond := mustParseCondition(t, "age > :n")
	ok, err := e.Evaluate(cond, item)
	require.NoError(t, err)
	assert.True(t, ok)

	cond = mustParseCondition(t, "status = :s")
	e.Values[":s"] = value.String("inactive")
	ok, err = e.Evaluate(cond, item)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEvaluateComparisonTypeMismatch(t *testing.T) {
	item := map[string]value.AttributeValue{"age": value.Number("30")}
	e := &ddbeval.Evaluator{Values: map[string]value.AttributeValue{":s": value.String("30")}}
	cond := mustParseCondition(t, "age > :s")
	_, err := e.Evaluate(cond, item)
	require.Error(t, err)
}

func TestEvaluateMissingOperandIsFalseNotError(t *testing.T) {
	item := map[string]value.AttributeValue{}
	e := &ddbeval.Evaluator{Values: map[string]value.AttributeValue{":n": value.Number("1")}}
	cond := mustParseCondition(t, "missing = :n")
	ok, err := e.Evaluate(cond, item)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEvaluateAndOrNot(t *testing.T) {
	item := map[string]value.AttributeValue{
		"age":    value.Number("30"),
		"status": value.String("active"),
	}
	e := &ddbeval.Evaluator{Values: map[string]value.AttributeValue{
		":n":  value.Number("18"),
		":s":  value.String("active"),
		":s2": value.String("banned"),
	}}

	cond := mustParseCondition(t, "age > :n AND status = :s")
	ok, err := e.Evaluate(cond, item)
	require.NoError(t, err)
	assert.True(t, ok)

	cond = mustParseCondition(t, "NOT status = :s2")
	ok, err = e.Evaluate(cond, item)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEvaluateBetweenAndIn(t *testing.T) {
	item := map[string]value.AttributeValue{"score": value.Number("55")}
	e := &ddbeval.Evaluator{Values: map[string]value.AttributeValue{
		":lo": value.Number("0"),
		":hi": value.Number("100"),
		":a":  value.Number("10"),
		":b":  value.Number("55"),
	}}

	cond := mustParseCondition(t, "score BETWEEN :lo AND :hi")
	ok, err := e.Evaluate(cond, item)
	require.NoError(t, err)
	assert.True(t, ok)

	cond = mustParseCondition(t, "score IN (:a, :b)")
	ok, err = e.Evaluate(cond, item)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEvaluateFunctions(t *testing.T) {
	item := map[string]value.AttributeValue{
		"name": value.String("widget-pro"),
		"tags": value.StringSet([]string{"a", "b"}),
	}
	e := &ddbeval.Evaluator{Values: map[string]value.AttributeValue{
		":prefix": value.String("widget"),
		":tag":    value.String("a"),
		":type":   value.String("S"),
	}}

	ok, err := e.Evaluate(mustParseCondition(t, "attribute_exists(name)"), item)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = e.Evaluate(mustParseCondition(t, "attribute_not_exists(missing)"), item)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = e.Evaluate(mustParseCondition(t, "begins_with(name, :prefix)"), item)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = e.Evaluate(mustParseCondition(t, "contains(tags, :tag)"), item)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = e.Evaluate(mustParseCondition(t, "attribute_type(name, :type)"), item)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEvaluateNestedPathAndNamePlaceholder(t *testing.T) {
	item := map[string]value.AttributeValue{
		"profile": value.Map(map[string]value.AttributeValue{
			"emails": value.List([]value.AttributeValue{value.String("a@x.com"), value.String("b@x.com")}),
		}),
	}
	e := &ddbeval.Evaluator{
		Names:  map[string]string{"#p": "profile"},
		Values: map[string]value.AttributeValue{":e": value.String("b@x.com")},
	}
	cond := mustParseCondition(t, "#p.emails[1] = :e")
	ok, err := e.Evaluate(cond, item)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEvaluateSizeFunction(t *testing.T) {
	item := map[string]value.AttributeValue{"name": value.String("abcd")}
	e := &ddbeval.Evaluator{Values: map[string]value.AttributeValue{":n": value.Number("4")}}
	cond := mustParseCondition(t, "size(name) = :n")
	ok, err := e.Evaluate(cond, item)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestApplyUpdateSet(t *testing.T) {
	item := map[string]value.AttributeValue{"count": value.Number("1")}
	e := &ddbeval.Evaluator{Values: map[string]value.AttributeValue{":one": value.Number("1")}}
	update := mustParseUpdate(t, "SET count = count + :one")

	out, err := e.ApplyUpdate(item, update)
	require.NoError(t, err)
	assert.Equal(t, "2", out["count"].N)
	assert.Equal(t, "1", item["count"].N, "input item must not be mutated")
}

func TestApplyUpdateSetIfNotExistsAndListAppend(t *testing.T) {
	item := map[string]value.AttributeValue{
		"tags": value.List([]value.AttributeValue{value.String("x")}),
	}
	e := &ddbeval.Evaluator{Values: map[string]value.AttributeValue{
		":zero":  value.Number("0"),
		":extra": value.List([]value.AttributeValue{value.String("y")}),
	}}
	update := mustParseUpdate(t, "SET hits = if_not_exists(hits, :zero), tags = list_append(tags, :extra)")

	out, err := e.ApplyUpdate(item, update)
	require.NoError(t, err)
	assert.Equal(t, "0", out["hits"].N)
	require.Len(t, out["tags"].L, 2)
	assert.Equal(t, "x", out["tags"].L[0].S)
	assert.Equal(t, "y", out["tags"].L[1].S)
}

func TestApplyUpdateSetNestedCreatesIntermediateMaps(t *testing.T) {
	item := map[string]value.AttributeValue{}
	e := &ddbeval.Evaluator{Values: map[string]value.AttributeValue{":v": value.String("hi")}}
	update := mustParseUpdate(t, "SET profile.greeting = :v")

	out, err := e.ApplyUpdate(item, update)
	require.NoError(t, err)
	require.Contains(t, out, "profile")
	assert.Equal(t, "hi", out["profile"].M["greeting"].S)
}

func TestApplyUpdateRemove(t *testing.T) {
	item := map[string]value.AttributeValue{
		"a": value.String("keep"),
		"b": value.String("drop"),
	}
	e := &ddbeval.Evaluator{}
	update := mustParseUpdate(t, "REMOVE b")

	out, err := e.ApplyUpdate(item, update)
	require.NoError(t, err)
	assert.Contains(t, out, "a")
	assert.NotContains(t, out, "b")
}

func TestApplyUpdateRemoveListIndexShifts(t *testing.T) {
	item := map[string]value.AttributeValue{
		"l": value.List([]value.AttributeValue{value.String("a"), value.String("b"), value.String("c")}),
	}
	e := &ddbeval.Evaluator{}
	update := mustParseUpdate(t, "REMOVE l[1]")

	out, err := e.ApplyUpdate(item, update)
	require.NoError(t, err)
	require.Len(t, out["l"].L, 2)
	assert.Equal(t, "a", out["l"].L[0].S)
	assert.Equal(t, "c", out["l"].L[1].S)
}

func TestApplyUpdateAddNumberAndSet(t *testing.T) {
	item := map[string]value.AttributeValue{
		"count": value.Number("5"),
		"tags":  value.StringSet([]string{"a"}),
	}
	e := &ddbeval.Evaluator{Values: map[string]value.AttributeValue{
		":n": value.Number("3"),
		":t": value.StringSet([]string{"b"}),
	}}
	update := mustParseUpdate(t, "ADD count :n, tags :t")

	out, err := e.ApplyUpdate(item, update)
	require.NoError(t, err)
	assert.Equal(t, "8", out["count"].N)
	assert.ElementsMatch(t, []string{"a", "b"}, out["tags"].SS)
}

func TestApplyUpdateAddInitializesAbsentAttribute(t *testing.T) {
	item := map[string]value.AttributeValue{}
	e := &ddbeval.Evaluator{Values: map[string]value.AttributeValue{":n": value.Number("5")}}
	update := mustParseUpdate(t, "ADD counter :n")

	out, err := e.ApplyUpdate(item, update)
	require.NoError(t, err)
	assert.Equal(t, "5", out["counter"].N)
}

func TestApplyUpdateDeleteSetDifference(t *testing.T) {
	item := map[string]value.AttributeValue{"tags": value.StringSet([]string{"a", "b", "c"})}
	e := &ddbeval.Evaluator{Values: map[string]value.AttributeValue{":t": value.StringSet([]string{"b"})}}
	update := mustParseUpdate(t, "DELETE tags :t")

	out, err := e.ApplyUpdate(item, update)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "c"}, out["tags"].SS)
}

func TestApplyUpdateDeleteNonSetTypeMismatch(t *testing.T) {
	item := map[string]value.AttributeValue{"count": value.Number("1")}
	e := &ddbeval.Evaluator{Values: map[string]value.AttributeValue{":n": value.Number("1")}}
	update := mustParseUpdate(t, "DELETE count :n")

	_, err := e.ApplyUpdate(item, update)
	require.Error(t, err)
}

func TestApplyProjection(t *testing.T) {
	item := map[string]value.AttributeValue{
		"name": value.String("widget"),
		"profile": value.Map(map[string]value.AttributeValue{
			"email": value.String("a@x.com"),
			"phone": value.String("555"),
		}),
		"secret": value.String("hidden"),
	}
	e := &ddbeval.Evaluator{Names: map[string]string{"#n": "name"}}
	proj, err := ddbexpr.ParseProjection("#n, profile.email")
	require.NoError(t, err)

	out, err := e.ApplyProjection(item, proj)
	require.NoError(t, err)
	assert.Equal(t, "widget", out["name"].S)
	assert.Equal(t, "a@x.com", out["profile"].M["email"].S)
	assert.NotContains(t, out["profile"].M, "phone")
	assert.NotContains(t, out, "secret")
}

func TestApplyProjectionSkipsAbsentPaths(t *testing.T) {
	item := map[string]value.AttributeValue{"name": value.String("widget")}
	e := &ddbeval.Evaluator{}
	proj, err := ddbexpr.ParseProjection("name, missing")
	require.NoError(t, err)

	out, err := e.ApplyProjection(item, proj)
	require.NoError(t, err)
	assert.Contains(t, out, "name")
	assert.NotContains(t, out, "missing")
}
