package form

import (
	"fmt"
	"strings"
)

// FieldKind is the declared value kind of a field
type FieldKind string

const (
	KindText    FieldKind = "text"
	KindNumber  FieldKind = "number"
	KindDate    FieldKind = "date"
	KindBoolean FieldKind = "boolean"
	KindEnum    FieldKind = "enum"
)

// DateLayout is the wire and display format of date fields
const DateLayout = "2006-01-02"

// SectionID names one logical group of fields
type SectionID string

// Option is one allowed value of an enum field
type Option struct {
	Value string
	Label string
}

// FieldSpec declares one field of a form
type FieldSpec struct {
	Name        string
	Label       string
	Kind        FieldKind
	Section     SectionID
	Required    bool
	Nullable    bool // numeric fields only: empty input stores nil
	NonNegative bool
	Min, Max    *float64
	Multiline   bool
	Placeholder string
	Default     any
	Options     []Option
}

// DefaultValue returns the blank-template value of the field
func (f FieldSpec) DefaultValue() any {
	if f.Default != nil {
		return normalize(f, f.Default)
	}
	switch f.Kind {
	case KindNumber:
		if f.Nullable {
			return nil
		}
		return 0.0
	case KindBoolean:
		return false
	case KindEnum:
		if len(f.Options) > 0 {
			return f.Options[0].Value
		}
		return ""
	default:
		return ""
	}
}

// HasOption reports whether value is one of the enum options
func (f FieldSpec) HasOption(value string) bool {
	for _, o := range f.Options {
		if o.Value == value {
			return true
		}
	}
	return false
}

// Check is a cross-field rule. It returns the field to blame and a message,
// or an empty field when the values pass.
type Check func(Values) (field, message string)

// Schema is the static description of one form: its ordered sections and
// fields.
type Schema struct {
	Name     string
	Sections []SectionID
	Titles   map[SectionID]string
	Fields   []FieldSpec
	Checks   []Check

	index map[string]int
}

// NewSchema builds a schema and verifies every field belongs to a declared
// section.
func NewSchema(name string, sections []SectionID, fields []FieldSpec, checks ...Check) (*Schema, error) {
	if len(sections) == 0 {
		return nil, fmt.Errorf("schema %s: at least one section is required", name)
	}
	s := &Schema{
		Name:     name,
		Sections: sections,
		Titles:   make(map[SectionID]string, len(sections)),
		Fields:   fields,
		Checks:   checks,
		index:    make(map[string]int, len(fields)),
	}
	for _, sec := range sections {
		s.Titles[sec] = defaultTitle(sec)
	}
	for i, f := range fields {
		if _, dup := s.index[f.Name]; dup {
			return nil, fmt.Errorf("schema %s: duplicate field %q", name, f.Name)
		}
		if !s.HasSection(f.Section) {
			return nil, fmt.Errorf("schema %s: field %q uses undeclared section %q", name, f.Name, f.Section)
		}
		if f.Label == "" {
			s.Fields[i].Label = defaultTitle(SectionID(f.Name))
		}
		s.index[f.Name] = i
	}
	return s, nil
}

// MustSchema is NewSchema for package level declarations
func MustSchema(name string, sections []SectionID, fields []FieldSpec, checks ...Check) *Schema {
	s, err := NewSchema(name, sections, fields, checks...)
	if err != nil {
		panic(err)
	}
	return s
}

// WithTitles overrides section display titles
func (s *Schema) WithTitles(titles map[SectionID]string) *Schema {
	for id, t := range titles {
		s.Titles[id] = t
	}
	return s
}

// Field looks up a field by name
func (s *Schema) Field(name string) (FieldSpec, bool) {
	i, ok := s.index[name]
	if !ok {
		return FieldSpec{}, false
	}
	return s.Fields[i], true
}

// FieldsIn returns the fields of one section in declaration order
func (s *Schema) FieldsIn(section SectionID) []FieldSpec {
	var out []FieldSpec
	for _, f := range s.Fields {
		if f.Section == section {
			out = append(out, f)
		}
	}
	return out
}

// HasSection reports whether id is a declared section
func (s *Schema) HasSection(id SectionID) bool {
	return s.SectionIndex(id) >= 0
}

// SectionIndex returns the position of id in the declared order, or -1
func (s *Schema) SectionIndex(id SectionID) int {
	for i, sec := range s.Sections {
		if sec == id {
			return i
		}
	}
	return -1
}

// Title returns the display title of a section
func (s *Schema) Title(id SectionID) string {
	if t, ok := s.Titles[id]; ok {
		return t
	}
	return defaultTitle(id)
}

// Blank returns a fresh FormState holding every field's default
func (s *Schema) Blank() Values {
	v := make(Values, len(s.Fields))
	for _, f := range s.Fields {
		v[f.Name] = f.DefaultValue()
	}
	return v
}

func defaultTitle(id SectionID) string {
	words := strings.Fields(strings.ReplaceAll(string(id), "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
