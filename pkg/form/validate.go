package form

import (
	"fmt"
	"strings"
	"time"
)

// Validate checks every field of values against the schema and runs the
// schema's cross-field checks.
func Validate(schema *Schema, values Values) ValidationErrors {
	errs := ValidationErrors{}
	for _, f := range schema.Fields {
		if msg := validateField(f, values[f.Name]); msg != "" {
			errs[f.Name] = msg
		}
	}
	cross := ValidationErrors{}
	for _, check := range schema.Checks {
		if field, msg := check(values); field != "" {
			cross[field] = msg
		}
	}
	errs.merge(cross)
	return errs
}

// SectionComplete validates only the fields of one section. Cross-field
// checks count when the blamed field lives in that section.
func SectionComplete(schema *Schema, values Values, section SectionID) (bool, ValidationErrors) {
	all := Validate(schema, values)
	errs := ValidationErrors{}
	for field, msg := range all {
		if spec, ok := schema.Field(field); ok && spec.Section == section {
			errs[field] = msg
		}
	}
	return len(errs) == 0, errs
}

func validateField(f FieldSpec, val any) string {
	if f.Required && isBlank(val) {
		return "This field is required."
	}
	if isBlank(val) {
		return ""
	}
	switch f.Kind {
	case KindNumber:
		n, ok := val.(float64)
		if !ok {
			return "Enter a number."
		}
		if f.NonNegative && n < 0 {
			return "Must not be negative."
		}
		if f.Min != nil && n < *f.Min {
			return fmt.Sprintf("Must be at least %s.", Display(*f.Min))
		}
		if f.Max != nil && n > *f.Max {
			return fmt.Sprintf("Must be at most %s.", Display(*f.Max))
		}
	case KindDate:
		if _, err := time.Parse(DateLayout, Display(val)); err != nil {
			return "Enter a date as YYYY-MM-DD."
		}
	case KindEnum:
		if !f.HasOption(Display(val)) {
			return fmt.Sprintf("%q is not a valid choice.", Display(val))
		}
	}
	return ""
}

func isBlank(val any) bool {
	switch x := val.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	}
	return false
}

// DateOrder returns a check requiring end to be on or after start
func DateOrder(start, end string) Check {
	return func(v Values) (string, string) {
		s, errS := time.Parse(DateLayout, v.String(start))
		e, errE := time.Parse(DateLayout, v.String(end))
		if errS != nil || errE != nil {
			return "", ""
		}
		if e.Before(s) {
			return end, "End date must not be before the start date."
		}
		return "", ""
	}
}

// Matching returns a check requiring two fields to hold the same value
func Matching(field, other, message string) Check {
	return func(v Values) (string, string) {
		if v.String(field) != v.String(other) {
			return other, message
		}
		return "", ""
	}
}
