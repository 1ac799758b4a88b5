package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pitchdata/pitchdata-api/internal/api/shared"
	"github.com/pitchdata/pitchdata-api/internal/domain"
	"github.com/pitchdata/pitchdata-api/internal/platform/logger"
	"github.com/pitchdata/pitchdata-api/internal/platform/metrics"
	"github.com/pitchdata/pitchdata-api/internal/schema"
	"github.com/pitchdata/pitchdata-api/internal/store"
)

// FixtureHandler handles fixture-related HTTP requests
type FixtureHandler struct {
	fixtureStore store.FixtureStore
	registry     *schema.Registry
	metrics      *metrics.Metrics
	logger       *slog.Logger
}

// NewFixtureHandler creates a new FixtureHandler
func NewFixtureHandler(
	fixtureStore store.FixtureStore,
	registry *schema.Registry,
	m *metrics.Metrics,
	logger *slog.Logger,
) *FixtureHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for FixtureHandler")
	}

	return &FixtureHandler{
		fixtureStore: fixtureStore,
		registry:     registry,
		metrics:      m,
		logger:       logger.With(slog.String("component", "fixture_handler")),
	}
}

// CreateFixture handles POST /fixtures requests
func (h *FixtureHandler) CreateFixture(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	payload, ok := h.validatePayload(w, r)
	if !ok {
		return
	}

	fixture, err := domain.FixtureFromPayload(payload)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	if err := h.fixtureStore.Create(r.Context(), fixture); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("fixture created", slog.Int64("fixture_id", fixture.FixtureID))
	shared.RespondWithJSON(w, r, http.StatusCreated, fixture)
}

// GetFixture handles GET /fixtures/{id} requests
func (h *FixtureHandler) GetFixture(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParsePathID(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	fixture, err := h.fixtureStore.GetByID(r.Context(), id)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, fixture)
}

// UpdateFixture handles PUT /fixtures/{id} requests
func (h *FixtureHandler) UpdateFixture(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, err := shared.ParsePathID(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	payload, ok := h.validatePayload(w, r)
	if !ok {
		return
	}
	if bodyID, _ := payload.GetInt("fixture_id"); bodyID != id {
		shared.RespondWithError(w, r, http.StatusBadRequest,
			"fixture_id in body does not match the path")
		return
	}

	fixture, err := domain.FixtureFromPayload(payload)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	if err := h.fixtureStore.Update(r.Context(), fixture); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("fixture updated", slog.Int64("fixture_id", fixture.FixtureID))
	shared.RespondWithJSON(w, r, http.StatusOK, fixture)
}

// DeleteFixture handles DELETE /fixtures/{id} requests
func (h *FixtureHandler) DeleteFixture(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParsePathID(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.fixtureStore.Delete(r.Context(), id); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListFixtures handles GET /fixtures requests with optional league, season,
// team, and status query filters.
func (h *FixtureHandler) ListFixtures(w http.ResponseWriter, r *http.Request) {
	var filter store.FixtureFilter
	if v := r.URL.Query().Get("league_id"); v != "" {
		leagueID, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "league_id must be an integer")
			return
		}
		filter.LeagueID = &leagueID
	}
	if v := r.URL.Query().Get("season"); v != "" {
		season, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "season must be an integer")
			return
		}
		filter.Season = &season
	}
	if v := r.URL.Query().Get("team_id"); v != "" {
		teamID, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "team_id must be an integer")
			return
		}
		filter.TeamID = &teamID
	}
	if v := r.URL.Query().Get("status"); v != "" {
		filter.Status = &v
	}

	fixtures, err := h.fixtureStore.List(r.Context(), filter, shared.ParsePage(r))
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	if fixtures == nil {
		fixtures = []*domain.Fixture{}
	}

	shared.RespondWithJSON(w, r, http.StatusOK, fixtures)
}

func (h *FixtureHandler) validatePayload(w http.ResponseWriter, r *http.Request) (schema.Payload, bool) {
	raw, err := shared.DecodeJSONMap(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, GetSafeErrorMessage(err))
		return nil, false
	}

	payload, fieldErrors, err := h.registry.Validate(domain.ResourceFixtures, raw)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, GetSafeErrorMessage(err), err)
		return nil, false
	}
	if len(fieldErrors) > 0 {
		h.metrics.IncrementValidationFailures(domain.ResourceFixtures)
		shared.RespondWithValidationErrors(w, r, fieldErrors)
		return nil, false
	}
	return payload, true
}
