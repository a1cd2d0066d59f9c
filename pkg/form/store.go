package form

import (
	"math"
	"strconv"
	"strings"
)

// Store holds the current value of every field of one form instance. It is
// owned by a single controller and is not safe for concurrent mutation.
type Store struct {
	schema   *Schema
	values   Values
	revision uint64
}

// NewStore creates a store seeded from the schema's blank template
func NewStore(schema *Schema) *Store {
	return &Store{schema: schema, values: schema.Blank()}
}

// Schema returns the schema the store was built from
func (s *Store) Schema() *Schema { return s.schema }

// Get returns a snapshot of the current values
func (s *Store) Get() Values { return s.values.Clone() }

// Value returns the current value of a single field
func (s *Store) Value(name string) any { return s.values[name] }

// Revision increases on every applied mutation; equal revisions mean
// nothing needs re-rendering.
func (s *Store) Revision() uint64 { return s.revision }

// Set coerces raw according to the field's kind and stores it. It reports
// whether the stored value changed. Rejected input leaves the field untouched.
func (s *Store) Set(name, raw string) (bool, error) {
	spec, ok := s.schema.Field(name)
	if !ok {
		return false, &FieldError{Field: name, Raw: raw, Err: ErrUnknownField}
	}
	val, err := coerce(spec, raw)
	if err != nil {
		return false, &FieldError{Field: name, Raw: raw, Err: err}
	}
	return s.assign(name, val), nil
}

// SetValue stores an already typed value, normalized to the field's kind
func (s *Store) SetValue(name string, val any) (bool, error) {
	spec, ok := s.schema.Field(name)
	if !ok {
		return false, &FieldError{Field: name, Err: ErrUnknownField}
	}
	return s.assign(name, normalize(spec, val)), nil
}

// SetCoordinates updates the location name and its coordinates together
func (s *Store) SetCoordinates(location string, lat, lng *float64) bool {
	changed := false
	if _, ok := s.schema.Field("location"); ok {
		changed = s.assign("location", location) || changed
	}
	for name, p := range map[string]*float64{"latitude": lat, "longitude": lng} {
		if _, ok := s.schema.Field(name); !ok {
			continue
		}
		var val any
		if p != nil {
			val = *p
		}
		changed = s.assign(name, val) || changed
	}
	return changed
}

// Reset replaces the whole record. A nil source restores the blank template;
// fields missing from source take their defaults.
func (s *Store) Reset(source Values) {
	next := make(Values, len(s.schema.Fields))
	for _, f := range s.schema.Fields {
		next[f.Name] = normalize(f, source[f.Name])
	}
	s.values = next
	s.revision++
}

func (s *Store) assign(name string, val any) bool {
	if equal(s.values[name], val) {
		return false
	}
	s.values[name] = val
	s.revision++
	return true
}

func coerce(spec FieldSpec, raw string) (any, error) {
	switch spec.Kind {
	case KindNumber:
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			if spec.Nullable {
				return nil, nil
			}
			return 0.0, nil
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, ErrNotNumeric
		}
		return f, nil
	case KindBoolean:
		b, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			return nil, ErrNotBoolean
		}
		return b, nil
	default:
		return raw, nil
	}
}
