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

// TeamHandler handles team-related HTTP requests
type TeamHandler struct {
	teamStore store.TeamStore
	registry  *schema.Registry
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// NewTeamHandler creates a new TeamHandler
func NewTeamHandler(
	teamStore store.TeamStore,
	registry *schema.Registry,
	m *metrics.Metrics,
	logger *slog.Logger,
) *TeamHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for TeamHandler")
	}

	return &TeamHandler{
		teamStore: teamStore,
		registry:  registry,
		metrics:   m,
		logger:    logger.With(slog.String("component", "team_handler")),
	}
}

// CreateTeam handles POST /teams requests
func (h *TeamHandler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	payload, ok := h.validatePayload(w, r)
	if !ok {
		return
	}

	team, err := domain.TeamFromPayload(payload)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	if err := h.teamStore.Create(r.Context(), team); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("team created", slog.Int64("team_id", team.TeamID))
	shared.RespondWithJSON(w, r, http.StatusCreated, team)
}

// GetTeam handles GET /teams/{id} requests
func (h *TeamHandler) GetTeam(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParsePathID(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	team, err := h.teamStore.GetByID(r.Context(), id)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, team)
}

// UpdateTeam handles PUT /teams/{id} requests
func (h *TeamHandler) UpdateTeam(w http.ResponseWriter, r *http.Request) {
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
	if bodyID, _ := payload.GetInt("team_id"); bodyID != id {
		shared.RespondWithError(w, r, http.StatusBadRequest,
			"team_id in body does not match the path")
		return
	}

	team, err := domain.TeamFromPayload(payload)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	if err := h.teamStore.Update(r.Context(), team); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("team updated", slog.Int64("team_id", team.TeamID))
	shared.RespondWithJSON(w, r, http.StatusOK, team)
}

// DeleteTeam handles DELETE /teams/{id} requests
func (h *TeamHandler) DeleteTeam(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParsePathID(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.teamStore.Delete(r.Context(), id); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListTeams handles GET /teams requests with optional country and national
// query filters.
func (h *TeamHandler) ListTeams(w http.ResponseWriter, r *http.Request) {
	var filter store.TeamFilter
	if v := r.URL.Query().Get("country"); v != "" {
		filter.Country = &v
	}
	if v := r.URL.Query().Get("national"); v != "" {
		national, err := strconv.ParseBool(v)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "national must be a boolean")
			return
		}
		filter.National = &national
	}

	teams, err := h.teamStore.List(r.Context(), filter, shared.ParsePage(r))
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	if teams == nil {
		teams = []*domain.Team{}
	}

	shared.RespondWithJSON(w, r, http.StatusOK, teams)
}

func (h *TeamHandler) validatePayload(w http.ResponseWriter, r *http.Request) (schema.Payload, bool) {
	raw, err := shared.DecodeJSONMap(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, GetSafeErrorMessage(err))
		return nil, false
	}

	payload, fieldErrors, err := h.registry.Validate(domain.ResourceTeams, raw)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, GetSafeErrorMessage(err), err)
		return nil, false
	}
	if len(fieldErrors) > 0 {
		h.metrics.IncrementValidationFailures(domain.ResourceTeams)
		shared.RespondWithValidationErrors(w, r, fieldErrors)
		return nil, false
	}
	return payload, true
}
