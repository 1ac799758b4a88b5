package store

import (
	"context"

	"github.com/pitchdata/pitchdata-api/internal/domain"
)

// SeasonFilter narrows a season listing. Nil fields match everything.
type SeasonFilter struct {
	LeagueID *int64
	Year     *int64
	Current  *bool
}

// SeasonStore defines the interface for season data persistence.
type SeasonStore interface {
	// Create saves a new season and assigns its surrogate ID.
	// Returns ErrSeasonExists when (league_id, year) is already present.
	Create(ctx context.Context, season *domain.Season) error

	// GetByID retrieves a season by its surrogate ID.
	// Returns ErrSeasonNotFound if the season does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Season, error)

	// Update saves changes to an existing season.
	// Returns ErrSeasonNotFound if the season does not exist and
	// ErrSeasonExists if the change would collide on (league_id, year).
	Update(ctx context.Context, season *domain.Season) error

	// Delete removes a season by its surrogate ID.
	// Returns ErrSeasonNotFound if the season does not exist.
	Delete(ctx context.Context, id int64) error

	// List returns seasons matching the filter, ordered by ID, bounded by
	// the page.
	List(ctx context.Context, filter SeasonFilter, page Page) ([]*domain.Season, error)
}
