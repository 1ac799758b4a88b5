package domain

import "github.com/pitchdata/pitchdata-api/internal/schema"

// Resource type names as they appear in the schema registry and in URLs.
const (
	ResourceLeagues  = "leagues"
	ResourceSeasons  = "seasons"
	ResourceTeams    = "teams"
	ResourcePlayers  = "players"
	ResourceFixtures = "fixtures"
)

// fixtureStatuses are the provider's short match-state codes, from
// scheduled (NS) through live phases to final and abandoned outcomes.
var fixtureStatuses = []string{
	"NS", "1H", "HT", "2H", "ET", "P", "FT", "AET", "PEN",
	"SUSP", "INT", "PST", "CANC", "ABD", "AWD", "WO",
}

// urlPattern is a permissive check for provider asset URLs (logos, flags,
// photos). Format-level sanity only; reachability is not our concern.
const urlPattern = `^https?://\S+$`

// BuildRegistry declares the authoritative field contract for every
// resource type. This is the single registration table: a resource absent
// here cannot be validated and therefore cannot be written.
func BuildRegistry() *schema.Registry {
	r := schema.NewRegistry()

	r.MustRegister(&schema.Schema{
		Resource: ResourceLeagues,
		Fields: []schema.Field{
			{Name: "league_id", Type: schema.TypeInt, Required: true, Constraints: []schema.Constraint{schema.RangeMin(1)}},
			{Name: "name", Type: schema.TypeString, Required: true},
			{Name: "type", Type: schema.TypeString, Constraints: []schema.Constraint{schema.OneOf("League", "Cup")}},
			{Name: "logo", Type: schema.TypeString, Constraints: []schema.Constraint{schema.Pattern(urlPattern)}},
			{Name: "country_name", Type: schema.TypeString},
			{Name: "country_code", Type: schema.TypeString, Constraints: []schema.Constraint{schema.Pattern(`^[A-Z]{2}$`)}},
			{Name: "country_flag", Type: schema.TypeString, Constraints: []schema.Constraint{schema.Pattern(urlPattern)}},
		},
	})

	r.MustRegister(&schema.Schema{
		Resource: ResourceSeasons,
		Fields: []schema.Field{
			{Name: "league_id", Type: schema.TypeInt, Required: true, Constraints: []schema.Constraint{schema.RangeMin(1)}},
			{Name: "year", Type: schema.TypeInt, Required: true, Constraints: []schema.Constraint{schema.Range(1900, 2100)}},
			{Name: "start_date", Type: schema.TypeDate},
			{Name: "end_date", Type: schema.TypeDate},
			{Name: "current", Type: schema.TypeBool},
			{Name: "coverage", Type: schema.TypeJSON},
		},
		CrossField: []schema.CrossFieldRule{
			schema.DateOrder("start_date", "end_date"),
		},
	})

	r.MustRegister(&schema.Schema{
		Resource: ResourceTeams,
		Fields: []schema.Field{
			{Name: "team_id", Type: schema.TypeInt, Required: true, Constraints: []schema.Constraint{schema.RangeMin(1)}},
			{Name: "name", Type: schema.TypeString, Required: true},
			{Name: "code", Type: schema.TypeString, Constraints: []schema.Constraint{schema.Pattern(`^[A-Z0-9]{2,5}$`)}},
			{Name: "country", Type: schema.TypeString},
			{Name: "founded", Type: schema.TypeInt, Constraints: []schema.Constraint{schema.Range(1800, 2100)}},
			{Name: "national", Type: schema.TypeBool},
			{Name: "logo", Type: schema.TypeString, Constraints: []schema.Constraint{schema.Pattern(urlPattern)}},
		},
	})

	r.MustRegister(&schema.Schema{
		Resource: ResourcePlayers,
		Fields: []schema.Field{
			{Name: "player_id", Type: schema.TypeInt, Required: true, Constraints: []schema.Constraint{schema.RangeMin(1)}},
			{Name: "name", Type: schema.TypeString, Required: true},
			{Name: "firstname", Type: schema.TypeString},
			{Name: "lastname", Type: schema.TypeString},
			{Name: "age", Type: schema.TypeInt, Constraints: []schema.Constraint{schema.Range(15, 60)}},
			{Name: "birth_date", Type: schema.TypeDate},
			{Name: "nationality", Type: schema.TypeString},
			{Name: "height", Type: schema.TypeString},
			{Name: "weight", Type: schema.TypeString},
			{Name: "injured", Type: schema.TypeBool},
			{Name: "photo", Type: schema.TypeString, Constraints: []schema.Constraint{schema.Pattern(urlPattern)}},
		},
	})

	r.MustRegister(&schema.Schema{
		Resource: ResourceFixtures,
		Fields: []schema.Field{
			{Name: "fixture_id", Type: schema.TypeInt, Required: true, Constraints: []schema.Constraint{schema.RangeMin(1)}},
			{Name: "league_id", Type: schema.TypeInt, Required: true, Constraints: []schema.Constraint{schema.RangeMin(1)}},
			{Name: "season", Type: schema.TypeInt, Required: true, Constraints: []schema.Constraint{schema.Range(1900, 2100)}},
			{Name: "date", Type: schema.TypeDateTime, Required: true},
			{Name: "referee", Type: schema.TypeString},
			{Name: "venue", Type: schema.TypeString},
			{Name: "status", Type: schema.TypeString, Constraints: []schema.Constraint{schema.OneOf(fixtureStatuses...)}},
			{Name: "home_team_id", Type: schema.TypeInt, Required: true, Constraints: []schema.Constraint{schema.RangeMin(1)}},
			{Name: "away_team_id", Type: schema.TypeInt, Required: true, Constraints: []schema.Constraint{schema.RangeMin(1)}},
			{Name: "goals_home", Type: schema.TypeInt, Constraints: []schema.Constraint{schema.RangeMin(0)}},
			{Name: "goals_away", Type: schema.TypeInt, Constraints: []schema.Constraint{schema.RangeMin(0)}},
			{Name: "elapsed", Type: schema.TypeInt, Constraints: []schema.Constraint{schema.Range(0, 150)}},
		},
		CrossField: []schema.CrossFieldRule{
			distinctTeams("home_team_id", "away_team_id"),
		},
	})

	return r
}

// distinctTeams returns a cross-field rule rejecting fixtures where one
// team is listed on both sides.
func distinctTeams(homeField, awayField string) schema.CrossFieldRule {
	return schema.CrossFieldRule{
		Field: awayField,
		Check: func(p schema.Payload) string {
			home, okHome := p.GetInt(homeField)
			away, okAway := p.GetInt(awayField)
			if okHome && okAway && home == away {
				return "must differ from " + homeField
			}
			return ""
		},
	}
}
