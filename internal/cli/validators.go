package cli

import (
	"fmt"
	"net/mail"
	"slices"
	"strconv"
	"strings"
)

// ValidateOutputFormat validates the output format flag
func ValidateOutputFormat(format string) error {
	if slices.Contains([]string{"text", "json", "yaml"}, format) {
		return nil
	}
	return fmt.Errorf("invalid output format: %s (must be: text, json, or yaml)", format)
}

// Assignment is one field=value pair from a --set flag
type Assignment struct {
	Field string
	Value string
}

// ParseAssignments splits --set values on the first "=". Field names are
// trimmed, values are kept as typed so "title= x" keeps its space.
func ParseAssignments(raw []string) ([]Assignment, error) {
	out := make([]Assignment, 0, len(raw))
	for _, r := range raw {
		field, value, ok := strings.Cut(r, "=")
		field = strings.TrimSpace(field)
		if !ok || field == "" {
			return nil, fmt.Errorf("invalid --set %q (expected field=value)", r)
		}
		out = append(out, Assignment{Field: field, Value: value})
	}
	return out, nil
}

// ParseID parses a positive numeric id
func ParseID(kind, raw string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id: %q", kind, raw)
	}
	return id, nil
}

// ValidateEmail checks that s is a bare email address
func ValidateEmail(s string) error {
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return fmt.Errorf("invalid email address: %q", s)
	}
	return nil
}

// Place is a location name with optional coordinates
type Place struct {
	Location string
	Lat, Lng *float64
}

// ParsePlace parses "<location>[@lat,lng]". The coordinates are split off at
// the last "@", so a place without them clears any stored coordinates.
func ParsePlace(raw string) (Place, error) {
	location, coords, ok := cutLast(raw, "@")
	place := Place{Location: strings.TrimSpace(location)}
	if !ok {
		return place, nil
	}
	latRaw, lngRaw, ok := strings.Cut(coords, ",")
	if !ok {
		return Place{}, fmt.Errorf("invalid --place %q (expected location@lat,lng)", raw)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latRaw), 64)
	if err != nil {
		return Place{}, fmt.Errorf("invalid --place %q: latitude must be a number", raw)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(lngRaw), 64)
	if err != nil {
		return Place{}, fmt.Errorf("invalid --place %q: longitude must be a number", raw)
	}
	place.Lat, place.Lng = &lat, &lng
	return place, nil
}

func cutLast(s, sep string) (before, after string, found bool) {
	if i := strings.LastIndex(s, sep); i >= 0 {
		return s[:i], s[i+len(sep):], true
	}
	return s, "", false
}
