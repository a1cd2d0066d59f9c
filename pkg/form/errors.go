package form

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrUnknownField   = errors.New("unknown field")
	ErrNotNumeric     = errors.New("must be a number")
	ErrNotBoolean     = errors.New("must be true or false")
	ErrKindMismatch   = errors.New("value kind does not match field")
	ErrSubmitInFlight = errors.New("a submission is already in progress")
	ErrNotSignedIn    = errors.New("you must be signed in")
	ErrNoChanges      = errors.New("nothing to save")
)

// FieldError reports a rejected raw value for a single field
type FieldError struct {
	Field string
	Raw   string
	Err   error
}

func (e *FieldError) Error() string {
	if e.Raw == "" {
		return fmt.Sprintf("%s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("%s: %q %v", e.Field, e.Raw, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// ValidationErrors maps field names to a human readable message
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return "no validation errors"
	}
	parts := make([]string, 0, len(v))
	for _, f := range v.Fields() {
		parts = append(parts, fmt.Sprintf("%s: %s", f, v[f]))
	}
	return strings.Join(parts, "; ")
}

// Fields returns the failing field names in sorted order
func (v ValidationErrors) Fields() []string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// merge copies other into v, keeping existing messages
func (v ValidationErrors) merge(other ValidationErrors) {
	for f, msg := range other {
		if _, ok := v[f]; !ok {
			v[f] = msg
		}
	}
}

// IncompleteSectionError is returned by gated navigation when the active
// section still has failing fields.
type IncompleteSectionError struct {
	Section SectionID
	Missing ValidationErrors
}

func (e *IncompleteSectionError) Error() string {
	return fmt.Sprintf("section %q is incomplete: %s", e.Section, strings.Join(e.Missing.Fields(), ", "))
}

// DetailedError is implemented by collaborator errors that carry a top level
// message and optional per-field messages.
type DetailedError interface {
	error
	DetailMessage() string
	FieldMessages() map[string]string
}

// SubmitError is returned by Gateway.Submit when the submission failed. Message
// is the text stored in the error slot.
type SubmitError struct {
	Message string
	Fields  ValidationErrors
	Err     error
}

func (e *SubmitError) Error() string { return e.Message }

func (e *SubmitError) Unwrap() error { return e.Err }
