package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pitchdata/pitchdata-api/internal/schema"
)

func TestBuildRegistry(t *testing.T) {
	t.Parallel()

	reg := BuildRegistry()
	assert.Equal(t,
		[]string{ResourceFixtures, ResourceLeagues, ResourcePlayers, ResourceSeasons, ResourceTeams},
		reg.Resources())
}

func TestLeagueSchemaContract(t *testing.T) {
	t.Parallel()

	reg := BuildRegistry()

	t.Run("accepts a complete league", func(t *testing.T) {
		t.Parallel()
		_, fieldErrors, err := reg.Validate(ResourceLeagues, map[string]any{
			"league_id":    39,
			"name":         "Premier League",
			"type":         "Cup",
			"logo":         "https://media.example.com/leagues/39.png",
			"country_code": "GB",
		})
		require.NoError(t, err)
		assert.Empty(t, fieldErrors)
	})

	t.Run("rejects a non-URL logo", func(t *testing.T) {
		t.Parallel()
		_, fieldErrors, err := reg.Validate(ResourceLeagues, map[string]any{
			"league_id": 39,
			"name":      "Premier League",
			"logo":      "not-a-url",
		})
		require.NoError(t, err)
		require.Len(t, fieldErrors, 1)
		assert.Equal(t, "logo", fieldErrors[0].Field)
		assert.Equal(t, schema.KindPatternMismatch, fieldErrors[0].Kind)
	})
}

func TestTeamSchemaContract(t *testing.T) {
	t.Parallel()

	reg := BuildRegistry()

	t.Run("code must be short uppercase alphanumeric", func(t *testing.T) {
		t.Parallel()
		_, fieldErrors, err := reg.Validate(ResourceTeams, map[string]any{
			"team_id": 33,
			"name":    "Manchester United",
			"code":    "mun",
		})
		require.NoError(t, err)
		require.Len(t, fieldErrors, 1)
		assert.Equal(t, "code", fieldErrors[0].Field)
		assert.Equal(t, schema.KindPatternMismatch, fieldErrors[0].Kind)
	})

	t.Run("founded year is range checked", func(t *testing.T) {
		t.Parallel()
		_, fieldErrors, err := reg.Validate(ResourceTeams, map[string]any{
			"team_id": 33,
			"name":    "Manchester United",
			"founded": 1492,
		})
		require.NoError(t, err)
		require.Len(t, fieldErrors, 1)
		assert.Equal(t, schema.KindRangeViolation, fieldErrors[0].Kind)
	})
}

func TestFixtureSchemaContract(t *testing.T) {
	t.Parallel()

	reg := BuildRegistry()

	validFixture := func() map[string]any {
		return map[string]any{
			"fixture_id":   157201,
			"league_id":    39,
			"season":       2024,
			"date":         "2024-08-16T19:00:00Z",
			"status":       "FT",
			"home_team_id": 33,
			"away_team_id": 34,
			"goals_home":   2,
			"goals_away":   1,
			"elapsed":      90,
		}
	}

	t.Run("accepts a complete fixture", func(t *testing.T) {
		t.Parallel()
		payload, fieldErrors, err := reg.Validate(ResourceFixtures, validFixture())
		require.NoError(t, err)
		assert.Empty(t, fieldErrors)

		kickoff, ok := payload.GetTime("date")
		require.True(t, ok, "date must coerce to a timestamp")
		assert.Equal(t, 2024, kickoff.Year())
	})

	t.Run("rejects a team playing itself", func(t *testing.T) {
		t.Parallel()
		raw := validFixture()
		raw["away_team_id"] = raw["home_team_id"]

		_, fieldErrors, err := reg.Validate(ResourceFixtures, raw)
		require.NoError(t, err)
		require.Len(t, fieldErrors, 1)
		assert.Equal(t, "away_team_id", fieldErrors[0].Field)
		assert.Equal(t, schema.KindCrossField, fieldErrors[0].Kind)
	})

	t.Run("rejects an unknown status code", func(t *testing.T) {
		t.Parallel()
		raw := validFixture()
		raw["status"] = "HALFTIME"

		_, fieldErrors, err := reg.Validate(ResourceFixtures, raw)
		require.NoError(t, err)
		require.Len(t, fieldErrors, 1)
		assert.Equal(t, "status", fieldErrors[0].Field)
		assert.Equal(t, schema.KindEnumViolation, fieldErrors[0].Kind)
	})

	t.Run("rejects a non-timestamp kickoff", func(t *testing.T) {
		t.Parallel()
		raw := validFixture()
		raw["date"] = "yesterday"

		_, fieldErrors, err := reg.Validate(ResourceFixtures, raw)
		require.NoError(t, err)
		require.Len(t, fieldErrors, 1)
		assert.Equal(t, "date", fieldErrors[0].Field)
		assert.Equal(t, schema.KindTypeMismatch, fieldErrors[0].Kind)
	})
}

func TestPlayerSchemaContract(t *testing.T) {
	t.Parallel()

	reg := BuildRegistry()

	_, fieldErrors, err := reg.Validate(ResourcePlayers, map[string]any{
		"player_id": 874,
		"name":      "B. Fernandes",
		"age":       12,
	})
	require.NoError(t, err)
	require.Len(t, fieldErrors, 1)
	assert.Equal(t, "age", fieldErrors[0].Field)
	assert.Equal(t, schema.KindRangeViolation, fieldErrors[0].Kind)
}
