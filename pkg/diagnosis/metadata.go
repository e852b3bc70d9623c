package diagnosis

import "math"

// Metadata carries analyzer-specific facts for presentation. Summarize
// reads KeyHeavyCount and KeyTotalSizeBytes from it.
type Metadata map[string]any

// Int returns key as an int. JSON round trips turn integers into
// float64, so whole floats are accepted too.
func (m Metadata) Int(key string) (int, bool) {
	n, ok := m.Int64(key)
	if !ok {
		return 0, false
	}
	return int(n), true
}

// Int64 returns key as an int64.
func (m Metadata) Int64(key string) (int64, bool) {
	if m == nil {
		return 0, false
	}
	switch v := m[key].(type) {
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint64:
		if v > math.MaxInt64 {
			return 0, false
		}
		return int64(v), true
	case float64:
		if v != math.Trunc(v) {
			return 0, false
		}
		return int64(v), true
	default:
		return 0, false
	}
}

// DependencyInfo describes one installed package in bundle-size
// metadata.
type DependencyInfo struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	SizeBytes   int64  `json:"sizeBytes"`
	IsHeavy     bool   `json:"isHeavy"`
	Alternative string `json:"alternative,omitempty"`
}

// Dependencies returns key as a DependencyInfo slice. Only values
// produced in-process are recognised.
func (m Metadata) Dependencies(key string) []DependencyInfo {
	if m == nil {
		return nil
	}
	deps, _ := m[key].([]DependencyInfo)
	return deps
}

// Strings returns key as a string slice.
func (m Metadata) Strings(key string) []string {
	if m == nil {
		return nil
	}
	switch v := m[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
