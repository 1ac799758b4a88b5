package domain

import (
	"fmt"
	"time"

	"github.com/pitchdata/pitchdata-api/internal/schema"
)

// Team represents a football club or national side. The provider's numeric
// identifier is the natural key.
type Team struct {
	TeamID    int64     `json:"team_id"`
	Name      string    `json:"name"`
	Code      string    `json:"code,omitempty"`
	Country   string    `json:"country,omitempty"`
	Founded   int64     `json:"founded,omitempty"`
	National  bool      `json:"national"`
	Logo      string    `json:"logo,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TeamFromPayload builds a Team from a validated payload.
func TeamFromPayload(p schema.Payload) (*Team, error) {
	id, ok := p.GetInt("team_id")
	if !ok {
		return nil, fmt.Errorf("%w: team_id", ErrMissingField)
	}
	name, ok := p.GetString("name")
	if !ok {
		return nil, fmt.Errorf("%w: name", ErrMissingField)
	}

	team := &Team{
		TeamID:    id,
		Name:      name,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	team.Code, _ = p.GetString("code")
	team.Country, _ = p.GetString("country")
	team.Founded, _ = p.GetInt("founded")
	team.National, _ = p.GetBool("national")
	team.Logo, _ = p.GetString("logo")
	return team, nil
}
