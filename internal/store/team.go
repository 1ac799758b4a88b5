package store

import (
	"context"

	"github.com/pitchdata/pitchdata-api/internal/domain"
)

// TeamFilter narrows a team listing. Nil fields match everything.
type TeamFilter struct {
	Country  *string
	National *bool
}

// TeamStore defines the interface for team data persistence.
type TeamStore interface {
	// Create saves a new team to the store.
	// Returns ErrTeamExists if the team ID is already present.
	Create(ctx context.Context, team *domain.Team) error

	// GetByID retrieves a team by its provider ID.
	// Returns ErrTeamNotFound if the team does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Team, error)

	// Update saves changes to an existing team.
	// Returns ErrTeamNotFound if the team does not exist.
	Update(ctx context.Context, team *domain.Team) error

	// Delete removes a team from the store by its ID.
	// Returns ErrTeamNotFound if the team does not exist.
	Delete(ctx context.Context, id int64) error

	// List returns teams matching the filter, ordered by ID, bounded by
	// the page.
	List(ctx context.Context, filter TeamFilter, page Page) ([]*domain.Team, error)
}
