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

// SeasonHandler handles season-related HTTP requests. Seasons are addressed
// by their surrogate ID, unlike the provider-keyed resources.
type SeasonHandler struct {
	seasonStore store.SeasonStore
	registry    *schema.Registry
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

// NewSeasonHandler creates a new SeasonHandler
func NewSeasonHandler(
	seasonStore store.SeasonStore,
	registry *schema.Registry,
	m *metrics.Metrics,
	logger *slog.Logger,
) *SeasonHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for SeasonHandler")
	}

	return &SeasonHandler{
		seasonStore: seasonStore,
		registry:    registry,
		metrics:     m,
		logger:      logger.With(slog.String("component", "season_handler")),
	}
}

// CreateSeason handles POST /seasons requests
func (h *SeasonHandler) CreateSeason(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	payload, ok := h.validatePayload(w, r)
	if !ok {
		return
	}

	season, err := domain.SeasonFromPayload(payload)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	if err := h.seasonStore.Create(r.Context(), season); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("season created",
		slog.Int64("season_id", season.ID),
		slog.Int64("league_id", season.LeagueID),
		slog.Int64("year", season.Year))
	shared.RespondWithJSON(w, r, http.StatusCreated, season)
}

// GetSeason handles GET /seasons/{id} requests
func (h *SeasonHandler) GetSeason(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParsePathID(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	season, err := h.seasonStore.GetByID(r.Context(), id)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, season)
}

// UpdateSeason handles PUT /seasons/{id} requests
func (h *SeasonHandler) UpdateSeason(w http.ResponseWriter, r *http.Request) {
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

	season, err := domain.SeasonFromPayload(payload)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	season.ID = id

	if err := h.seasonStore.Update(r.Context(), season); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("season updated", slog.Int64("season_id", season.ID))
	shared.RespondWithJSON(w, r, http.StatusOK, season)
}

// DeleteSeason handles DELETE /seasons/{id} requests
func (h *SeasonHandler) DeleteSeason(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParsePathID(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.seasonStore.Delete(r.Context(), id); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListSeasons handles GET /seasons requests with optional league_id, year
// and current query filters.
func (h *SeasonHandler) ListSeasons(w http.ResponseWriter, r *http.Request) {
	var filter store.SeasonFilter
	if v := r.URL.Query().Get("league_id"); v != "" {
		leagueID, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "league_id must be an integer")
			return
		}
		filter.LeagueID = &leagueID
	}
	if v := r.URL.Query().Get("year"); v != "" {
		year, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "year must be an integer")
			return
		}
		filter.Year = &year
	}
	if v := r.URL.Query().Get("current"); v != "" {
		current, err := strconv.ParseBool(v)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "current must be a boolean")
			return
		}
		filter.Current = &current
	}

	seasons, err := h.seasonStore.List(r.Context(), filter, shared.ParsePage(r))
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	if seasons == nil {
		seasons = []*domain.Season{}
	}

	shared.RespondWithJSON(w, r, http.StatusOK, seasons)
}

func (h *SeasonHandler) validatePayload(w http.ResponseWriter, r *http.Request) (schema.Payload, bool) {
	raw, err := shared.DecodeJSONMap(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, GetSafeErrorMessage(err))
		return nil, false
	}

	payload, fieldErrors, err := h.registry.Validate(domain.ResourceSeasons, raw)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, GetSafeErrorMessage(err), err)
		return nil, false
	}
	if len(fieldErrors) > 0 {
		h.metrics.IncrementValidationFailures(domain.ResourceSeasons)
		shared.RespondWithValidationErrors(w, r, fieldErrors)
		return nil, false
	}
	return payload, true
}
