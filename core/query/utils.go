// Package query provides a set of utility functions to support the engine and
// the criteria builder. These helpers handle type coercion.
package query

import (
	"strconv"
	"time"

	"github.com/travelpass/dashboard/core/schema"
)

// ToFloat64 converts a value of any numeric type, or a string holding a
// number, to a float64.
func ToFloat64(v any) (float64, bool) {
	if f, ok := numberOf(v); ok {
		return f, true
	}
	if s, ok := v.(string); ok {
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	}
	return 0, false
}

// numberOf converts only genuine numeric types; strings are not numbers.
func numberOf(v any) (float64, bool) {
	switch val := v.(type) {
	case int:
		return float64(val), true
	case int8:
		return float64(val), true
	case int16:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case uint:
		return float64(val), true
	case uint8:
		return float64(val), true
	case uint16:
		return float64(val), true
	case uint32:
		return float64(val), true
	case uint64:
		return float64(val), true
	case float32:
		return float64(val), true
	case float64:
		return val, true
	default:
		return 0, false
	}
}

// ToTime converts a time.Time or a timestamp string to a time.Time.
func ToTime(v any) (time.Time, bool) {
	switch val := v.(type) {
	case time.Time:
		return val, true
	case *time.Time:
		if val == nil {
			return time.Time{}, false
		}
		return *val, true
	case string:
		return schema.ParseTime(val)
	default:
		return time.Time{}, false
	}
}
