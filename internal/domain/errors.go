package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an identifier is malformed or missing.
	ErrInvalidID = errors.New("invalid ID")

	// ErrMissingField is returned when a payload lacks a field the entity
	// requires. Payloads reaching this package have already passed schema
	// validation, so hitting this indicates a schema/entity mismatch.
	ErrMissingField = errors.New("missing payload field")
)
