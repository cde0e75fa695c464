package registry_test

import (
	"testing"

	"backend2/internal/registry"

	"github.com/stretchr/testify/assert"
)

func TestMapGetSetDelete(t *testing.T) {
	m := registry.New[string, int]()

	_, ok := m.Get("a")
	assert.False(t, ok)

	one := 1
	m.Set("a", &one)
	v, ok := m.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, *v)

	assert.True(t, m.Delete("a"))
	_, ok = m.Get("a")
	assert.False(t, ok)
}

func TestMapGetOrCreate(t *testing.T) {
	m := registry.New[string, int]()
	calls := 0
	create := func() *int {
		calls++
		v := 42
		return &v
	}

	v1 := m.GetOrCreate("x", create)
	v2 := m.GetOrCreate("x", create)
	assert.Same(t, v1, v2)
	assert.Equal(t, 1, calls)
}

func TestMapKeysAndValues(t *testing.T) {
	m := registry.New[string, int]()
	a, b := 1, 2
	m.Set("a", &a)
	m.Set("b", &b)

	assert.Equal(t, 2, m.Len())
	assert.ElementsMatch(t, []string{"a", "b"}, m.Keys())
	assert.ElementsMatch(t, []*int{&a, &b}, m.Values())
}
