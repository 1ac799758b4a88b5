package schema

import (
	"errors"
	"fmt"
)

// ErrUnknownResource is returned when validation is requested for a resource
// type that has never been registered. This is a programmer fault: resource
// schemas are built from an explicit registration table at startup, so an
// unknown resource name means a wiring bug, not bad client input.
var ErrUnknownResource = errors.New("unknown resource type")

// ErrorKind classifies a single field validation failure.
type ErrorKind string

// Validation error kinds. Each failed check produces exactly one FieldError
// carrying one of these kinds; a request may accumulate several.
const (
	// KindMissing indicates a required field was absent from the payload.
	KindMissing ErrorKind = "missing"

	// KindTypeMismatch indicates the value could not be coerced to the
	// field's declared type. Lossy coercions (e.g. a fractional value into
	// an integer field) are reported as a type mismatch, never truncated.
	KindTypeMismatch ErrorKind = "type_mismatch"

	// KindRangeViolation indicates a numeric value outside the declared range.
	KindRangeViolation ErrorKind = "range_violation"

	// KindPatternMismatch indicates a string value that does not match the
	// declared regular expression.
	KindPatternMismatch ErrorKind = "pattern_mismatch"

	// KindEnumViolation indicates a value outside the declared enumeration.
	KindEnumViolation ErrorKind = "enum_violation"

	// KindCrossField indicates a violated rule spanning multiple fields
	// (e.g. an end date preceding a start date).
	KindCrossField ErrorKind = "cross_field"

	// KindUnknown indicates a payload key not declared in the schema.
	// Undeclared fields are rejected rather than dropped so client/schema
	// drift surfaces immediately.
	KindUnknown ErrorKind = "unknown_field"
)

// FieldError describes one failed validation check on one field.
// Validation returns an ordered slice of these, matching field declaration
// order, so callers always see every violation in a single pass.
type FieldError struct {
	Field   string    `json:"field"`
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

// Error implements the error interface for FieldError.
func (e FieldError) Error() string {
	return fmt.Sprintf("field %q: %s: %s", e.Field, e.Kind, e.Message)
}
