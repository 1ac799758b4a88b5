package api

import (
	"errors"
	"net/http"

	"github.com/pitchdata/pitchdata-api/internal/api/shared"
	"github.com/pitchdata/pitchdata-api/internal/domain"
	"github.com/pitchdata/pitchdata-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrMissingField),
		errors.Is(err, shared.ErrMalformedBody):
		return http.StatusBadRequest

	// Pool exhaustion is transient; tell the client to retry.
	case errors.Is(err, store.ErrPoolTimeout):
		return http.StatusServiceUnavailable

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, store.ErrLeagueNotFound):
		return "League not found"
	case errors.Is(err, store.ErrSeasonNotFound):
		return "Season not found"
	case errors.Is(err, store.ErrTeamNotFound):
		return "Team not found"
	case errors.Is(err, store.ErrPlayerNotFound):
		return "Player not found"
	case errors.Is(err, store.ErrFixtureNotFound):
		return "Fixture not found"
	case errors.Is(err, store.ErrNotFound):
		return "Resource not found"

	case errors.Is(err, store.ErrLeagueExists):
		return "League already exists"
	case errors.Is(err, store.ErrSeasonExists):
		return "Season already exists for this league and year"
	case errors.Is(err, store.ErrTeamExists):
		return "Team already exists"
	case errors.Is(err, store.ErrPlayerExists):
		return "Player already exists"
	case errors.Is(err, store.ErrFixtureExists):
		return "Fixture already exists"
	case errors.Is(err, store.ErrDuplicate):
		return "Resource already exists"

	case errors.Is(err, shared.ErrMalformedBody):
		return "Request body must be a single JSON object"
	case errors.Is(err, domain.ErrInvalidID):
		return "Invalid identifier"
	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrMissingField):
		return "Invalid entity data"

	case errors.Is(err, store.ErrPoolTimeout):
		return "Service temporarily unavailable, please retry"

	default:
		return "An unexpected error occurred"
	}
}
