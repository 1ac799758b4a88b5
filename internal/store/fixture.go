package store

import (
	"context"

	"github.com/pitchdata/pitchdata-api/internal/domain"
)

// FixtureFilter narrows a fixture listing. Nil fields match everything;
// TeamID matches either side of the fixture.
type FixtureFilter struct {
	LeagueID *int64
	Season   *int64
	TeamID   *int64
	Status   *string
}

// FixtureStore defines the interface for fixture data persistence.
type FixtureStore interface {
	// Create saves a new fixture to the store.
	// Returns ErrFixtureExists if the fixture ID is already present.
	Create(ctx context.Context, fixture *domain.Fixture) error

	// GetByID retrieves a fixture by its provider ID.
	// Returns ErrFixtureNotFound if the fixture does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Fixture, error)

	// Update saves changes to an existing fixture.
	// Returns ErrFixtureNotFound if the fixture does not exist.
	Update(ctx context.Context, fixture *domain.Fixture) error

	// Delete removes a fixture from the store by its ID.
	// Returns ErrFixtureNotFound if the fixture does not exist.
	Delete(ctx context.Context, id int64) error

	// List returns fixtures matching the filter, ordered by kickoff time
	// then ID, bounded by the page.
	List(ctx context.Context, filter FixtureFilter, page Page) ([]*domain.Fixture, error)
}
