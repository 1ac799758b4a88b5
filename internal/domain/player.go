package domain

import (
	"fmt"
	"time"

	"github.com/pitchdata/pitchdata-api/internal/schema"
)

// Player represents a registered player. The provider's numeric identifier
// is the natural key.
type Player struct {
	PlayerID    int64     `json:"player_id"`
	Name        string    `json:"name"`
	Firstname   string    `json:"firstname,omitempty"`
	Lastname    string    `json:"lastname,omitempty"`
	Age         int64     `json:"age,omitempty"`
	BirthDate   time.Time `json:"birth_date,omitempty"`
	Nationality string    `json:"nationality,omitempty"`
	Height      string    `json:"height,omitempty"`
	Weight      string    `json:"weight,omitempty"`
	Injured     bool      `json:"injured"`
	Photo       string    `json:"photo,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PlayerFromPayload builds a Player from a validated payload.
func PlayerFromPayload(p schema.Payload) (*Player, error) {
	id, ok := p.GetInt("player_id")
	if !ok {
		return nil, fmt.Errorf("%w: player_id", ErrMissingField)
	}
	name, ok := p.GetString("name")
	if !ok {
		return nil, fmt.Errorf("%w: name", ErrMissingField)
	}

	player := &Player{
		PlayerID:  id,
		Name:      name,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	player.Firstname, _ = p.GetString("firstname")
	player.Lastname, _ = p.GetString("lastname")
	player.Age, _ = p.GetInt("age")
	player.BirthDate, _ = p.GetTime("birth_date")
	player.Nationality, _ = p.GetString("nationality")
	player.Height, _ = p.GetString("height")
	player.Weight, _ = p.GetString("weight")
	player.Injured, _ = p.GetBool("injured")
	player.Photo, _ = p.GetString("photo")
	return player, nil
}
