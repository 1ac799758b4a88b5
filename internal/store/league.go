package store

import (
	"context"

	"github.com/pitchdata/pitchdata-api/internal/domain"
)

// LeagueFilter narrows a league listing. Nil fields match everything.
type LeagueFilter struct {
	Country *string
	Type    *string
}

// LeagueStore defines the interface for league data persistence.
// Implementations wrap each operation in a single database transaction;
// partial writes are never observable. Inputs are domain entities built
// from validated payloads only.
type LeagueStore interface {
	// Create saves a new league to the store.
	// Returns ErrLeagueExists if the league ID is already present.
	Create(ctx context.Context, league *domain.League) error

	// GetByID retrieves a league by its provider ID.
	// Returns ErrLeagueNotFound if the league does not exist.
	GetByID(ctx context.Context, id int64) (*domain.League, error)

	// Update saves changes to an existing league.
	// Returns ErrLeagueNotFound if the league does not exist.
	Update(ctx context.Context, league *domain.League) error

	// Delete removes a league from the store by its ID.
	// Returns ErrLeagueNotFound if the league does not exist.
	Delete(ctx context.Context, id int64) error

	// List returns leagues matching the filter, ordered by ID, bounded by
	// the page. An empty result is a nil or empty slice, not an error.
	List(ctx context.Context, filter LeagueFilter, page Page) ([]*domain.League, error)
}
