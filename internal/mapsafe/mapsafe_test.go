package mapsafe

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookup_Int(t *testing.T) {
	m := map[string]any{
		"int":      8,
		"int64":    int64(16),
		"uint64":   uint64(2),
		"float":    float64(4),
		"fraction": 1.5,
		"string":   "8",
	}

	for _, key := range []string{"int", "int64", "uint64", "float"} {
		_, ok := Lookup[int](m, key)
		assert.True(t, ok, key)
	}

	v, _ := Lookup[int](m, "int64")
	assert.Equal(t, 16, v)

	_, ok := Lookup[int](m, "fraction")
	assert.False(t, ok)

	_, ok = Lookup[int](m, "string")
	assert.False(t, ok)

	_, ok = Lookup[int](m, "missing")
	assert.False(t, ok)
}

func TestLookup_IntFloatBounds(t *testing.T) {
	m := map[string]any{
		"two63":     float64(1 << 63),
		"neg two63": -float64(1 << 63),
		"huge":      1e300,
		"inf":       math.Inf(1),
		"nan":       math.NaN(),
		"largest":   float64(1<<62) + float64(1<<61),
	}

	_, ok := Lookup[int](m, "two63")
	assert.False(t, ok, "2^63 does not fit in int")

	v, ok := Lookup[int](m, "neg two63")
	assert.True(t, ok)
	assert.Equal(t, math.MinInt, v)

	for _, key := range []string{"huge", "inf", "nan"} {
		_, ok := Lookup[int](m, key)
		assert.False(t, ok, key)
	}

	v, ok = Lookup[int](m, "largest")
	assert.True(t, ok)
	assert.Equal(t, 1<<62+1<<61, v)
}

func TestLookup_String(t *testing.T) {
	m := map[string]any{"name": "Stereo", "count": 2, "nil": nil}

	v, ok := Lookup[string](m, "name")
	assert.True(t, ok)
	assert.Equal(t, "Stereo", v)

	_, ok = Lookup[string](m, "count")
	assert.False(t, ok)

	_, ok = Lookup[string](m, "nil")
	assert.False(t, ok)
}

func TestGet_Default(t *testing.T) {
	m := map[string]any{"enabled": true}

	assert.True(t, Get(m, "enabled", false))
	assert.Equal(t, "fallback", Get(m, "missing", "fallback"))
	assert.Equal(t, 7, Get(m, "enabled", 7))
}
