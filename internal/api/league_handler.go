package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pitchdata/pitchdata-api/internal/api/shared"
	"github.com/pitchdata/pitchdata-api/internal/domain"
	"github.com/pitchdata/pitchdata-api/internal/platform/logger"
	"github.com/pitchdata/pitchdata-api/internal/platform/metrics"
	"github.com/pitchdata/pitchdata-api/internal/schema"
	"github.com/pitchdata/pitchdata-api/internal/store"
)

// LeagueHandler handles league-related HTTP requests
type LeagueHandler struct {
	leagueStore store.LeagueStore
	registry    *schema.Registry
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

// NewLeagueHandler creates a new LeagueHandler
func NewLeagueHandler(
	leagueStore store.LeagueStore,
	registry *schema.Registry,
	m *metrics.Metrics,
	logger *slog.Logger,
) *LeagueHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for LeagueHandler")
	}

	return &LeagueHandler{
		leagueStore: leagueStore,
		registry:    registry,
		metrics:     m,
		logger:      logger.With(slog.String("component", "league_handler")),
	}
}

// CreateLeague handles POST /leagues requests
func (h *LeagueHandler) CreateLeague(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	payload, ok := h.validatePayload(w, r)
	if !ok {
		return
	}

	league, err := domain.LeagueFromPayload(payload)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	if err := h.leagueStore.Create(r.Context(), league); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("league created", slog.Int64("league_id", league.LeagueID))
	shared.RespondWithJSON(w, r, http.StatusCreated, league)
}

// GetLeague handles GET /leagues/{id} requests
func (h *LeagueHandler) GetLeague(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParsePathID(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	league, err := h.leagueStore.GetByID(r.Context(), id)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, league)
}

// UpdateLeague handles PUT /leagues/{id} requests. The payload is validated
// against the full schema; a league_id in the body must match the path.
func (h *LeagueHandler) UpdateLeague(w http.ResponseWriter, r *http.Request) {
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
	if bodyID, _ := payload.GetInt("league_id"); bodyID != id {
		shared.RespondWithError(w, r, http.StatusBadRequest,
			"league_id in body does not match the path")
		return
	}

	league, err := domain.LeagueFromPayload(payload)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	if err := h.leagueStore.Update(r.Context(), league); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("league updated", slog.Int64("league_id", league.LeagueID))
	shared.RespondWithJSON(w, r, http.StatusOK, league)
}

// DeleteLeague handles DELETE /leagues/{id} requests
func (h *LeagueHandler) DeleteLeague(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParsePathID(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.leagueStore.Delete(r.Context(), id); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListLeagues handles GET /leagues requests with optional country and type
// query filters.
func (h *LeagueHandler) ListLeagues(w http.ResponseWriter, r *http.Request) {
	var filter store.LeagueFilter
	if v := r.URL.Query().Get("country"); v != "" {
		filter.Country = &v
	}
	if v := r.URL.Query().Get("type"); v != "" {
		filter.Type = &v
	}

	leagues, err := h.leagueStore.List(r.Context(), filter, shared.ParsePage(r))
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	if leagues == nil {
		leagues = []*domain.League{}
	}

	shared.RespondWithJSON(w, r, http.StatusOK, leagues)
}

// validatePayload decodes and validates the request body, writing the error
// response itself when the payload is rejected.
func (h *LeagueHandler) validatePayload(w http.ResponseWriter, r *http.Request) (schema.Payload, bool) {
	raw, err := shared.DecodeJSONMap(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, GetSafeErrorMessage(err))
		return nil, false
	}

	payload, fieldErrors, err := h.registry.Validate(domain.ResourceLeagues, raw)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, GetSafeErrorMessage(err), err)
		return nil, false
	}
	if len(fieldErrors) > 0 {
		h.metrics.IncrementValidationFailures(domain.ResourceLeagues)
		shared.RespondWithValidationErrors(w, r, fieldErrors)
		return nil, false
	}
	return payload, true
}
