package store

import (
	"context"

	"github.com/pitchdata/pitchdata-api/internal/domain"
)

// PlayerFilter narrows a player listing. Nil fields match everything.
type PlayerFilter struct {
	Nationality *string
	Injured     *bool
}

// PlayerStore defines the interface for player data persistence.
type PlayerStore interface {
	// Create saves a new player to the store.
	// Returns ErrPlayerExists if the player ID is already present.
	Create(ctx context.Context, player *domain.Player) error

	// GetByID retrieves a player by its provider ID.
	// Returns ErrPlayerNotFound if the player does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Player, error)

	// Update saves changes to an existing player.
	// Returns ErrPlayerNotFound if the player does not exist.
	Update(ctx context.Context, player *domain.Player) error

	// Delete removes a player from the store by its ID.
	// Returns ErrPlayerNotFound if the player does not exist.
	Delete(ctx context.Context, id int64) error

	// List returns players matching the filter, ordered by ID, bounded by
	// the page.
	List(ctx context.Context, filter PlayerFilter, page Page) ([]*domain.Player, error)
}
