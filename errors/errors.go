// Package errors defines the error kinds shared across the dashboard packages.
// Errors carry a Kind so callers can tell programmer mistakes (bad criteria,
// bad aggregate requests) apart from source failures without string matching.
package errors

import (
	stderrors "errors"
	"fmt"
	"sort"
	"strings"
)

// Kind classifies an error.
type Kind string

const (
	Other           Kind = "other"
	Invalid         Kind = "invalid"
	InvalidCriteria Kind = "invalid_criteria"
	InvalidSpec     Kind = "invalid_spec"
	NotFound        Kind = "not_found"
	Internal        Kind = "internal"
)

// Error is a classified error with an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// E builds a classified error.
func E(kind Kind, message string, err error) error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the kind of the outermost classified error in err's chain,
// or Other when there is none.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return Other
}

// Is reports whether any classified error in err's chain has the given kind.
func Is(kind Kind, err error) bool {
	for err != nil {
		var e *Error
		if !stderrors.As(err, &e) {
			return false
		}
		if e.Kind == kind {
			return true
		}
		err = e.Err
	}
	return false
}

// ValidationErrors collects per-field problems before failing once.
type ValidationErrors struct {
	fields map[string][]string
}

// ValidationErrs returns an empty collector.
func ValidationErrs() *ValidationErrors {
	return &ValidationErrors{fields: make(map[string][]string)}
}

// Add records a problem for field.
func (v *ValidationErrors) Add(field, message string) {
	v.fields[field] = append(v.fields[field], message)
}

// Len returns the number of fields with problems.
func (v *ValidationErrors) Len() int {
	return len(v.fields)
}

// Fields returns the problems recorded per field.
func (v *ValidationErrors) Fields() map[string][]string {
	return v.fields
}

// Err returns nil when nothing was recorded, otherwise an error listing every
// problem sorted by field name.
func (v *ValidationErrors) Err() error {
	if len(v.fields) == 0 {
		return nil
	}
	return v
}

func (v *ValidationErrors) Error() string {
	names := make([]string, 0, len(v.fields))
	for name := range v.fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, strings.Join(v.fields[name], ", ")))
	}
	return strings.Join(parts, "; ")
}
