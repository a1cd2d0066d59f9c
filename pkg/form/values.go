package form

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Values is the flat record of field values (the FormState). Values only ever
// hold string, float64, bool or nil.
type Values map[string]any

// Clone returns an independent copy
func (v Values) Clone() Values {
	out := make(Values, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// String returns a text value, or "" when absent or not a string
func (v Values) String(name string) string {
	s, _ := v[name].(string)
	return s
}

// Number returns a numeric value and whether it is set
func (v Values) Number(name string) (float64, bool) {
	f, ok := v[name].(float64)
	return f, ok
}

// Bool returns a boolean value
func (v Values) Bool(name string) bool {
	b, _ := v[name].(bool)
	return b
}

// Diff returns the entries of v that differ from base
func (v Values) Diff(base Values) Values {
	out := Values{}
	for k, val := range v {
		old, ok := base[k]
		if !ok || !equal(old, val) {
			out[k] = val
		}
	}
	return out
}

// Display renders a value the way text inputs show it
func Display(val any) string {
	switch x := val.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}

func equal(a, b any) bool {
	return a == b
}

// normalize converts a value coming from an entity or a caller into the
// canonical representation of the field's kind.
func normalize(f FieldSpec, val any) any {
	if val == nil {
		return f.DefaultValue()
	}
	switch f.Kind {
	case KindNumber:
		if n, ok := toNumber(val); ok {
			return n
		}
		return f.DefaultValue()
	case KindBoolean:
		switch x := val.(type) {
		case bool:
			return x
		case string:
			if b, err := strconv.ParseBool(strings.TrimSpace(x)); err == nil {
				return b
			}
		}
		return f.DefaultValue()
	case KindDate:
		return truncateDate(Display(val))
	default:
		return Display(val)
	}
}

func toNumber(val any) (float64, bool) {
	var f float64
	switch x := val.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int32:
		f = float64(x)
	case int64:
		f = float64(x)
	case json.Number:
		n, err := x.Float64()
		if err != nil {
			return 0, false
		}
		f = n
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		f = n
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// truncateDate keeps the date portion of an ISO timestamp
func truncateDate(s string) string {
	if i := strings.IndexAny(s, "T "); i >= 0 {
		return s[:i]
	}
	return s
}
