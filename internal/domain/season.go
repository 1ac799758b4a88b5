package domain

import (
	"fmt"
	"time"

	"github.com/pitchdata/pitchdata-api/internal/schema"
)

// Season represents one year of a league's competition. Seasons have a
// surrogate ID; (LeagueID, Year) is unique.
type Season struct {
	ID        int64     `json:"id"`
	LeagueID  int64     `json:"league_id"`
	Year      int64     `json:"year"`
	StartDate time.Time `json:"start_date,omitempty"`
	EndDate   time.Time `json:"end_date,omitempty"`
	Current   bool      `json:"current"`
	Coverage  any       `json:"coverage,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SeasonFromPayload builds a Season from a validated payload. The surrogate
// ID is assigned by the store on create.
func SeasonFromPayload(p schema.Payload) (*Season, error) {
	leagueID, ok := p.GetInt("league_id")
	if !ok {
		return nil, fmt.Errorf("%w: league_id", ErrMissingField)
	}
	year, ok := p.GetInt("year")
	if !ok {
		return nil, fmt.Errorf("%w: year", ErrMissingField)
	}

	season := &Season{
		LeagueID:  leagueID,
		Year:      year,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	season.StartDate, _ = p.GetTime("start_date")
	season.EndDate, _ = p.GetTime("end_date")
	season.Current, _ = p.GetBool("current")
	if coverage, ok := p["coverage"]; ok {
		season.Coverage = coverage
	}
	return season, nil
}
