package domain

import (
	"fmt"
	"time"

	"github.com/pitchdata/pitchdata-api/internal/schema"
)

// League represents a football competition (a league or a cup) as supplied
// by the upstream data provider. The provider's numeric identifier is the
// natural key.
type League struct {
	LeagueID    int64     `json:"league_id"`
	Name        string    `json:"name"`
	Type        string    `json:"type,omitempty"`
	Logo        string    `json:"logo,omitempty"`
	CountryName string    `json:"country_name,omitempty"`
	CountryCode string    `json:"country_code,omitempty"`
	CountryFlag string    `json:"country_flag,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// LeagueFromPayload builds a League from a validated payload. The payload
// has already passed schema validation, so absence of the identifier or the
// name indicates a schema/entity mismatch, not bad client input.
func LeagueFromPayload(p schema.Payload) (*League, error) {
	id, ok := p.GetInt("league_id")
	if !ok {
		return nil, fmt.Errorf("%w: league_id", ErrMissingField)
	}
	name, ok := p.GetString("name")
	if !ok {
		return nil, fmt.Errorf("%w: name", ErrMissingField)
	}

	league := &League{
		LeagueID:  id,
		Name:      name,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	league.Type, _ = p.GetString("type")
	league.Logo, _ = p.GetString("logo")
	league.CountryName, _ = p.GetString("country_name")
	league.CountryCode, _ = p.GetString("country_code")
	league.CountryFlag, _ = p.GetString("country_flag")
	return league, nil
}
