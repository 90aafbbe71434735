package putio

import (
	"math"
	"strconv"
	"strings"
)

// number is satisfied by encoding/json.Number and jsoniter's number type.
type number interface {
	Int64() (int64, error)
	Float64() (float64, error)
}

func asObject(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

func asArray(v any) ([]any, bool) {
	a, ok := v.([]any)
	return a, ok
}

func objectField(m map[string]any, key string) map[string]any {
	if obj, ok := asObject(m[key]); ok {
		return obj
	}
	return map[string]any{}
}

func arrayField(m map[string]any, key string) []any {
	if a, ok := asArray(m[key]); ok {
		return a
	}
	return nil
}

func stringField(m map[string]any, key, def string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return def
}

func optionalString(m map[string]any, key string) *string {
	if s, ok := m[key].(string); ok {
		return &s
	}
	return nil
}

func boolField(m map[string]any, key string) bool {
	b, _ := m[key].(bool)
	return b
}

func present(m map[string]any, key string) bool {
	v, ok := m[key]
	if !ok || v == nil {
		return false
	}
	if b, isBool := v.(bool); isBool {
		return b
	}
	return true
}

func intField(m map[string]any, key string) int64 {
	n, _ := toInt64(m[key])
	return n
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		if f, err := n.Float64(); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return int64(f), true
		}
	case float64:
		return int64(n), true
	case float32:
		return int64(n), true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return int64(n), true
	case string:
		if i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64); err == nil {
			return i, true
		}
	}
	return 0, false
}
