package domain

import (
	"fmt"
	"time"

	"github.com/pitchdata/pitchdata-api/internal/schema"
)

// Fixture represents a single scheduled or played match between two teams.
// The provider's numeric identifier is the natural key; kickoff time is
// stored in UTC.
type Fixture struct {
	FixtureID  int64     `json:"fixture_id"`
	LeagueID   int64     `json:"league_id"`
	Season     int64     `json:"season"`
	Date       time.Time `json:"date"`
	Referee    string    `json:"referee,omitempty"`
	Venue      string    `json:"venue,omitempty"`
	Status     string    `json:"status"`
	HomeTeamID int64     `json:"home_team_id"`
	AwayTeamID int64     `json:"away_team_id"`
	GoalsHome  int64     `json:"goals_home"`
	GoalsAway  int64     `json:"goals_away"`
	Elapsed    int64     `json:"elapsed,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// FixtureStatusScheduled is the status of a fixture that has not kicked
// off. It is the default when a payload omits the field.
const FixtureStatusScheduled = "NS"

// FixtureFromPayload builds a Fixture from a validated payload.
func FixtureFromPayload(p schema.Payload) (*Fixture, error) {
	id, ok := p.GetInt("fixture_id")
	if !ok {
		return nil, fmt.Errorf("%w: fixture_id", ErrMissingField)
	}
	leagueID, ok := p.GetInt("league_id")
	if !ok {
		return nil, fmt.Errorf("%w: league_id", ErrMissingField)
	}
	season, ok := p.GetInt("season")
	if !ok {
		return nil, fmt.Errorf("%w: season", ErrMissingField)
	}
	date, ok := p.GetTime("date")
	if !ok {
		return nil, fmt.Errorf("%w: date", ErrMissingField)
	}
	home, ok := p.GetInt("home_team_id")
	if !ok {
		return nil, fmt.Errorf("%w: home_team_id", ErrMissingField)
	}
	away, ok := p.GetInt("away_team_id")
	if !ok {
		return nil, fmt.Errorf("%w: away_team_id", ErrMissingField)
	}

	fixture := &Fixture{
		FixtureID:  id,
		LeagueID:   leagueID,
		Season:     season,
		Date:       date.UTC(),
		Status:     FixtureStatusScheduled,
		HomeTeamID: home,
		AwayTeamID: away,
		CreatedAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	}
	if status, ok := p.GetString("status"); ok {
		fixture.Status = status
	}
	fixture.Referee, _ = p.GetString("referee")
	fixture.Venue, _ = p.GetString("venue")
	fixture.GoalsHome, _ = p.GetInt("goals_home")
	fixture.GoalsAway, _ = p.GetInt("goals_away")
	fixture.Elapsed, _ = p.GetInt("elapsed")
	return fixture, nil
}
