package upload

import (
	"math"
	"reflect"
)

// NormalizeMap returns a copy of m holding only the value types a tracker
// file gives back: integers as int64, floats as float64, string-keyed maps
// as map[string]any and slices (byte slices too) as []any.
// Unsigned values above math.MaxInt64 stay uint64.
func NormalizeMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	n := make(map[string]any, len(m))
	for k, v := range m {
		n[k] = NormalizeValue(v)
	}
	return n
}

func NormalizeValue(v any) any {
	switch val := v.(type) {
	case nil, string, bool, int64, float64:
		return val
	case map[string]any:
		return NormalizeMap(val)
	case []any:
		s := make([]any, len(val))
		for i, item := range val {
			s[i] = NormalizeValue(item)
		}
		return s
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return u
		}
		return int64(u)
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return rv.Bool()
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String || rv.IsNil() {
			return v
		}
		n := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			n[iter.Key().String()] = NormalizeValue(iter.Value().Interface())
		}
		return n
	case reflect.Slice, reflect.Array:
		s := make([]any, rv.Len())
		for i := range s {
			s[i] = NormalizeValue(rv.Index(i).Interface())
		}
		return s
	default:
		return v
	}
}
