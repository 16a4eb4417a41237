// Package sanitize normalizes arbitrary scalar values into JSON-safe
// primitives. Statistics libraries and spreadsheet cells produce values
// (NaN, infinities, native timestamps) that do not survive JSON encoding;
// everything persisted or serialized passes through Sanitize first.
package sanitize

import (
	"encoding/json"
	"math"
	"time"
)

// Sanitize converts v into a JSON-safe primitive. It is total: values it
// does not recognize pass through unchanged rather than failing.
//
// Rules, in priority order: integral types stay integral, non-finite
// floats become nil, numeric sequences are sanitized element-wise,
// timestamps become RFC3339 strings, booleans pass through, nil stays nil.
func Sanitize(v interface{}) interface{} {
	switch x := v.(type) {
	case nil:
		return nil
	case int:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case int64:
		return x
	case uint:
		return int64(x)
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	case uint64:
		return int64(x)
	case float32:
		return sanitizeFloat(float64(x))
	case float64:
		return sanitizeFloat(x)
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}
		if f, err := x.Float64(); err == nil {
			return sanitizeFloat(f)
		}
		return x.String()
	case time.Time:
		return x.Format(time.RFC3339)
	case *time.Time:
		if x == nil {
			return nil
		}
		return x.Format(time.RFC3339)
	case bool:
		return x
	case []float64:
		out := make([]interface{}, len(x))
		for i, f := range x {
			out[i] = sanitizeFloat(f)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(x))
		for i, e := range x {
			out[i] = Sanitize(e)
		}
		return out
	default:
		return v
	}
}

// SanitizeFloat maps non-finite floats to nil and returns a pointer
// otherwise, for optional statistic fields.
func SanitizeFloat(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func sanitizeFloat(f float64) interface{} {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return f
}
