package handler

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/hexwar/internal/auth"
	"github.com/freeeve/hexwar/internal/logger"
	"github.com/freeeve/hexwar/internal/service"
	"github.com/freeeve/hexwar/pkg/hexwar"
)

// EventHandler accepts player input for active games.
type EventHandler struct {
	eventSvc *service.EventService
}

// NewEventHandler creates an EventHandler.
func NewEventHandler(eventSvc *service.EventService) *EventHandler {
	return &EventHandler{eventSvc: eventSvc}
}

// eventErrorStatus maps a rejected event to its HTTP status. Engine errors
// are mapped by class, everything else by sentinel.
func eventErrorStatus(err error) int {
	switch hexwar.Classify(err) {
	case hexwar.ClassValidation, hexwar.ClassPrecondition:
		return http.StatusBadRequest
	case hexwar.ClassTurn:
		return http.StatusForbidden
	case hexwar.ClassNotFound:
		return http.StatusNotFound
	case hexwar.ClassIntegrity:
		return http.StatusInternalServerError
	}
	return gameErrorStatus(err)
}

// PostEvent handles POST /api/v1/games/{id}/events
func (h *EventHandler) PostEvent(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	userID := auth.UserIDFromContext(r.Context())

	var ev hexwar.Event
	if err := decodeJSON(r, &ev); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	game, err := h.eventSvc.HandleEvent(r.Context(), gameID, userID, ev)
	if err != nil {
		status := eventErrorStatus(err)
		if status == http.StatusInternalServerError {
			l := logger.ForRequest(r.Context())
			l.Error().Err(err).Str("gameId", gameID).Str("eventType", string(ev.Type)).Msg("Event failed")
		}
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, game)
}

// GetRange handles GET /api/v1/games/{id}/units/{unitId}/range
func (h *EventHandler) GetRange(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	unitID := r.PathValue("unitId")
	userID := auth.UserIDFromContext(r.Context())

	rng, err := h.eventSvc.MovementRange(r.Context(), gameID, userID, unitID)
	if err != nil {
		status := eventErrorStatus(err)
		if status == http.StatusInternalServerError {
			log.Error().Err(err).Str("gameId", gameID).Str("unitId", unitID).Msg("Range lookup failed")
		}
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"unitId": unitID,
		"hexes":  rng,
	})
}
