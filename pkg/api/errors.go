package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Error is a non-2xx response. Detail holds the top level message; Fields
// holds per-field messages from validation failures.
type Error struct {
	Status int
	Detail string
	Fields map[string][]string
}

func (e *Error) Error() string {
	msg := e.Detail
	if msg == "" && len(e.Fields) > 0 {
		parts := make([]string, 0, len(e.Fields))
		for _, f := range e.fieldNames() {
			parts = append(parts, fmt.Sprintf("%s: %s", f, strings.Join(e.Fields[f], " ")))
		}
		msg = strings.Join(parts, "; ")
	}
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	return fmt.Sprintf("api: %d %s", e.Status, msg)
}

// DetailMessage returns the top level message
func (e *Error) DetailMessage() string { return e.Detail }

// FieldMessages joins each field's messages into one string
func (e *Error) FieldMessages() map[string]string {
	out := make(map[string]string, len(e.Fields))
	for f, msgs := range e.Fields {
		out[f] = strings.Join(msgs, " ")
	}
	return out
}

func (e *Error) fieldNames() []string {
	names := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		names = append(names, f)
	}
	sort.Strings(names)
	return names
}

// IsStatus reports whether err is an *Error with the given status
func IsStatus(err error, status int) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// IsUnauthorized reports a 401 response
func IsUnauthorized(err error) bool { return IsStatus(err, http.StatusUnauthorized) }

// IsNotFound reports a 404 response
func IsNotFound(err error) bool { return IsStatus(err, http.StatusNotFound) }

// parseError understands both {"detail": "..."} bodies and field maps such
// as {"title": ["This field is required."]}.
func parseError(status int, body []byte) *Error {
	e := &Error{Status: status}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		e.Detail = http.StatusText(status)
		return e
	}

	for key, val := range raw {
		msgs := messages(val)
		if len(msgs) == 0 {
			continue
		}
		switch key {
		case "detail", "error", "message":
			if e.Detail == "" {
				e.Detail = strings.Join(msgs, " ")
			}
		case "non_field_errors":
			if e.Detail == "" {
				e.Detail = strings.Join(msgs, " ")
			}
		default:
			if e.Fields == nil {
				e.Fields = map[string][]string{}
			}
			e.Fields[key] = msgs
		}
	}
	return e
}

func messages(val json.RawMessage) []string {
	var s string
	if err := json.Unmarshal(val, &s); err == nil {
		if s == "" {
			return nil
		}
		return []string{s}
	}
	var list []any
	if err := json.Unmarshal(val, &list); err == nil {
		out := make([]string, 0, len(list))
		for _, item := range list {
			out = append(out, fmt.Sprint(item))
		}
		return out
	}
	var nested map[string]any
	if err := json.Unmarshal(val, &nested); err == nil {
		return []string{fmt.Sprint(nested)}
	}
	return nil
}
