package mapsafe

import "math"

// Lookup retrieves a typed value from a map[string]any.
// It reports false if the key is missing or the value cannot be converted to T
// without loss. Integers decoded by YAML or JSON decoders (int, int64, uint64,
// integral float64) are all accepted as int.
func Lookup[T any](m map[string]any, key string) (T, bool) {
	var zero T

	val, ok := m[key]
	if !ok || val == nil {
		return zero, false
	}

	switch any(zero).(type) {
	case int:
		if n, ok := toInt(val); ok {
			return any(n).(T), true
		}
	case float64:
		switch x := val.(type) {
		case float64:
			return any(x).(T), true
		case int:
			return any(float64(x)).(T), true
		case int64:
			return any(float64(x)).(T), true
		}
	case string:
		if s, ok := val.(string); ok {
			return any(s).(T), true
		}
	case bool:
		if b, ok := val.(bool); ok {
			return any(b).(T), true
		}
	default:
		if v, ok := val.(T); ok {
			return v, true
		}
	}

	return zero, false
}

// Get retrieves a typed value from a map[string]any.
// If the key is missing or the type cannot be converted, it returns the default value.
func Get[T any](m map[string]any, key string, defaultValue T) T {
	if v, ok := Lookup[T](m, key); ok {
		return v
	}
	return defaultValue
}

func toInt(val any) (int, bool) {
	switch x := val.(type) {
	case int:
		return x, true
	case int32:
		return int(x), true
	case int64:
		if x < math.MinInt || x > math.MaxInt {
			return 0, false
		}
		return int(x), true
	case uint64:
		if x > math.MaxInt {
			return 0, false
		}
		return int(x), true
	case float64:
		// float64(math.MaxInt) rounds up to 2^63, so the upper bound is exclusive.
		if x != math.Trunc(x) || x < float64(math.MinInt) || x >= -float64(math.MinInt) {
			return 0, false
		}
		return int(x), true
	}
	return 0, false
}
