package main

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pitchdata/pitchdata-api/internal/config"
	"github.com/pitchdata/pitchdata-api/internal/domain"
	"github.com/pitchdata/pitchdata-api/internal/platform/metrics"
	"github.com/pitchdata/pitchdata-api/internal/platform/postgres"
)

func testApplication(t *testing.T) *application {
	t.Helper()
	return &application{
		config:       &config.Config{Server: config.ServerConfig{Port: 0}},
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		registry:     domain.BuildRegistry(),
		metrics:      metrics.NewWithRegisterer(prometheus.NewRegistry()),
		leagueStore:  postgres.NewPostgresLeagueStore(nil, 0),
		seasonStore:  postgres.NewPostgresSeasonStore(nil, 0),
		teamStore:    postgres.NewPostgresTeamStore(nil, 0),
		playerStore:  postgres.NewPostgresPlayerStore(nil, 0),
		fixtureStore: postgres.NewPostgresFixtureStore(nil, 0),
	}
}

func TestRouterHealthCheck(t *testing.T) {
	router := testApplication(t).setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestRouterMetricsEndpoint(t *testing.T) {
	router := testApplication(t).setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouterRejectsMalformedResourceID(t *testing.T) {
	router := testApplication(t).setupRouter()

	for _, path := range []string{
		"/api/leagues/abc",
		"/api/seasons/-1",
		"/api/teams/0",
		"/api/players/1.5",
	} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code, "path %s", path)
	}
}
