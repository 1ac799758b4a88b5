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

// PlayerHandler handles player-related HTTP requests
type PlayerHandler struct {
	playerStore store.PlayerStore
	registry    *schema.Registry
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

// NewPlayerHandler creates a new PlayerHandler
func NewPlayerHandler(
	playerStore store.PlayerStore,
	registry *schema.Registry,
	m *metrics.Metrics,
	logger *slog.Logger,
) *PlayerHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for PlayerHandler")
	}

	return &PlayerHandler{
		playerStore: playerStore,
		registry:    registry,
		metrics:     m,
		logger:      logger.With(slog.String("component", "player_handler")),
	}
}

// CreatePlayer handles POST /players requests
func (h *PlayerHandler) CreatePlayer(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	payload, ok := h.validatePayload(w, r)
	if !ok {
		return
	}

	player, err := domain.PlayerFromPayload(payload)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	if err := h.playerStore.Create(r.Context(), player); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("player created", slog.Int64("player_id", player.PlayerID))
	shared.RespondWithJSON(w, r, http.StatusCreated, player)
}

// GetPlayer handles GET /players/{id} requests
func (h *PlayerHandler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParsePathID(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	player, err := h.playerStore.GetByID(r.Context(), id)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, player)
}

// UpdatePlayer handles PUT /players/{id} requests
func (h *PlayerHandler) UpdatePlayer(w http.ResponseWriter, r *http.Request) {
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
	if bodyID, _ := payload.GetInt("player_id"); bodyID != id {
		shared.RespondWithError(w, r, http.StatusBadRequest,
			"player_id in body does not match the path")
		return
	}

	player, err := domain.PlayerFromPayload(payload)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	if err := h.playerStore.Update(r.Context(), player); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("player updated", slog.Int64("player_id", player.PlayerID))
	shared.RespondWithJSON(w, r, http.StatusOK, player)
}

// DeletePlayer handles DELETE /players/{id} requests
func (h *PlayerHandler) DeletePlayer(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParsePathID(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.playerStore.Delete(r.Context(), id); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListPlayers handles GET /players requests with optional nationality and
// injured query filters.
func (h *PlayerHandler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	var filter store.PlayerFilter
	if v := r.URL.Query().Get("nationality"); v != "" {
		filter.Nationality = &v
	}
	if v := r.URL.Query().Get("injured"); v != "" {
		injured, err := strconv.ParseBool(v)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "injured must be a boolean")
			return
		}
		filter.Injured = &injured
	}

	players, err := h.playerStore.List(r.Context(), filter, shared.ParsePage(r))
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	if players == nil {
		players = []*domain.Player{}
	}

	shared.RespondWithJSON(w, r, http.StatusOK, players)
}

func (h *PlayerHandler) validatePayload(w http.ResponseWriter, r *http.Request) (schema.Payload, bool) {
	raw, err := shared.DecodeJSONMap(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, GetSafeErrorMessage(err))
		return nil, false
	}

	payload, fieldErrors, err := h.registry.Validate(domain.ResourcePlayers, raw)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, GetSafeErrorMessage(err), err)
		return nil, false
	}
	if len(fieldErrors) > 0 {
		h.metrics.IncrementValidationFailures(domain.ResourcePlayers)
		shared.RespondWithValidationErrors(w, r, fieldErrors)
		return nil, false
	}
	return payload, true
}
