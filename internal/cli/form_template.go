package cli

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/buildtrack/buildtrack-terminal/pkg/form"
)

// FormTemplate renders values as an editable YAML document, one key per
// field in schema order with a comment heading each section
func FormTemplate(schema *form.Schema, values form.Values) (string, error) {
	doc := &yaml.Node{Kind: yaml.MappingNode}
	var section form.SectionID
	for _, f := range schema.Fields {
		if form.Secret(f.Name) {
			continue
		}
		key := &yaml.Node{Kind: yaml.ScalarNode, Value: f.Name}
		if f.Section != section {
			section = f.Section
			key.HeadComment = schema.Title(section)
		}

		raw := form.Display(values[f.Name])
		val := &yaml.Node{Kind: yaml.ScalarNode, Value: raw, Tag: "!!str"}
		if strings.Contains(raw, "\n") {
			val.Style = yaml.LiteralStyle
		} else {
			val.Style = yaml.DoubleQuotedStyle
		}

		var notes []string
		if f.Required {
			notes = append(notes, "required")
		}
		if f.Kind == form.KindEnum {
			opts := make([]string, len(f.Options))
			for i, o := range f.Options {
				opts[i] = o.Value
			}
			notes = append(notes, "one of: "+strings.Join(opts, ", "))
		}
		if f.Kind == form.KindDate {
			notes = append(notes, "YYYY-MM-DD")
		}
		if len(notes) > 0 {
			val.LineComment = strings.Join(notes, "; ")
		}
		doc.Content = append(doc.Content, key, val)
	}

	out, err := yaml.Marshal(doc)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// ParseFormTemplate reads an edited template back into assignments. Keys
// keep the order they appear in.
func ParseFormTemplate(text string) ([]Assignment, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(text), &doc); err != nil {
		return nil, fmt.Errorf("parsing edited form: %w", err)
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, errors.New("edited form must be a mapping of field: value")
	}

	out := make([]Assignment, 0, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, val := root.Content[i], root.Content[i+1]
		if val.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("line %d: %s must be a single value", val.Line, key.Value)
		}
		raw := val.Value
		if val.Tag == "!!null" {
			raw = ""
		}
		out = append(out, Assignment{Field: key.Value, Value: raw})
	}
	return out, nil
}

// ApplyAssignments dispatches each assignment through the form controller.
// Every rejected value is reported, not just the first.
func ApplyAssignments(ctrl *form.Controller, assignments []Assignment) error {
	var errs []error
	for _, a := range assignments {
		if _, err := ctrl.Set(a.Field, a.Value); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
