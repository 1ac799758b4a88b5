package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pitchdata/pitchdata-api/internal/api"
	apiMiddleware "github.com/pitchdata/pitchdata-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)
	r.Use(apiMiddleware.MetricsMiddleware(app.metrics))

	leagueHandler := api.NewLeagueHandler(app.leagueStore, app.registry, app.metrics, app.logger)
	seasonHandler := api.NewSeasonHandler(app.seasonStore, app.registry, app.metrics, app.logger)
	teamHandler := api.NewTeamHandler(app.teamStore, app.registry, app.metrics, app.logger)
	playerHandler := api.NewPlayerHandler(app.playerStore, app.registry, app.metrics, app.logger)
	fixtureHandler := api.NewFixtureHandler(app.fixtureStore, app.registry, app.metrics, app.logger)

	r.Route("/api", func(r chi.Router) {
		r.Route("/leagues", func(r chi.Router) {
			r.Post("/", leagueHandler.CreateLeague)
			r.Get("/", leagueHandler.ListLeagues)
			r.Get("/{id}", leagueHandler.GetLeague)
			r.Put("/{id}", leagueHandler.UpdateLeague)
			r.Delete("/{id}", leagueHandler.DeleteLeague)
		})
		r.Route("/seasons", func(r chi.Router) {
			r.Post("/", seasonHandler.CreateSeason)
			r.Get("/", seasonHandler.ListSeasons)
			r.Get("/{id}", seasonHandler.GetSeason)
			r.Put("/{id}", seasonHandler.UpdateSeason)
			r.Delete("/{id}", seasonHandler.DeleteSeason)
		})
		r.Route("/teams", func(r chi.Router) {
			r.Post("/", teamHandler.CreateTeam)
			r.Get("/", teamHandler.ListTeams)
			r.Get("/{id}", teamHandler.GetTeam)
			r.Put("/{id}", teamHandler.UpdateTeam)
			r.Delete("/{id}", teamHandler.DeleteTeam)
		})
		r.Route("/players", func(r chi.Router) {
			r.Post("/", playerHandler.CreatePlayer)
			r.Get("/", playerHandler.ListPlayers)
			r.Get("/{id}", playerHandler.GetPlayer)
			r.Put("/{id}", playerHandler.UpdatePlayer)
			r.Delete("/{id}", playerHandler.DeletePlayer)
		})
		r.Route("/fixtures", func(r chi.Router) {
			r.Post("/", fixtureHandler.CreateFixture)
			r.Get("/", fixtureHandler.ListFixtures)
			r.Get("/{id}", fixtureHandler.GetFixture)
			r.Put("/{id}", fixtureHandler.UpdateFixture)
			r.Delete("/{id}", fixtureHandler.DeleteFixture)
		})
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
