package player

import (
	"math"
	"strconv"
	"strings"
)

// ID returns the upstream identifier rendered as a string. Integral JSON
// numbers render without a fraction. ok is false for missing, null, blank or
// non-scalar identifiers.
func (r Raw) ID() (string, bool) {
	return FormatID(r["id"])
}

// Text returns the string value at key, or fallback when it is missing or
// null. Non-string scalars are rendered.
func (r Raw) Text(key, fallback string) string {
	switch v := r[key].(type) {
	case nil:
		return fallback
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		if s, ok := FormatID(v); ok {
			return s
		}
		return fallback
	}
}

func FormatID(v any) (string, bool) {
	switch id := v.(type) {
	case nil:
		return "", false
	case string:
		id = strings.TrimSpace(id)
		return id, id != ""
	case float64:
		if math.IsNaN(id) || math.IsInf(id, 0) {
			return "", false
		}
		if id == math.Trunc(id) && math.Abs(id) < 1<<53 {
			return strconv.FormatInt(int64(id), 10), true
		}
		return strconv.FormatFloat(id, 'f', -1, 64), true
	case int:
		return strconv.Itoa(id), true
	case int64:
		return strconv.FormatInt(id, 10), true
	default:
		return "", false
	}
}
