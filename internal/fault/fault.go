// Package fault defines the typed errors the engine and repo return.
// The HTTP layer maps them onto status codes; nothing here knows about HTTP.
package fault

import "fmt"

// ValidationError reports a rejected input value.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// NotFoundError reports a missing entity. Kind names the entity type
// ("project", "task", ...) and Ref identifies what was looked up.
type NotFoundError struct {
	Kind string
	Ref  string
}

func (e NotFoundError) Error() string {
	if e.Ref == "" {
		return e.Kind + " not found"
	}
	return fmt.Sprintf("%s %s not found", e.Kind, e.Ref)
}

// ConflictError reports a uniqueness violation.
type ConflictError struct {
	Reason string
}

func (e ConflictError) Error() string { return e.Reason }

// Invalid builds a ValidationError for a field.
func Invalid(field, reason string) ValidationError {
	return ValidationError{Field: field, Reason: reason}
}

// Missing builds a NotFoundError with a formatted reference.
func Missing(kind string, ref any) NotFoundError {
	return NotFoundError{Kind: kind, Ref: fmt.Sprint(ref)}
}
